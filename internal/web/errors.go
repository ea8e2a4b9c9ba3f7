package web

// errors.go maps failures to user-facing JSON error responses.
//
// Error codes:
//
//	REQ001  - Malformed request (bad multipart body, missing or invalid config)
//	REQ002  - The request ran past SERVER_REQUEST_TIMEOUT or was cancelled
//	FILE001 - Upload exceeds UPLOAD_MAX_BYTES
//	FILE010 - Unsupported file or download format
//	FILE011 - A file could not be parsed
//	MRG001  - Fewer than two files to merge
//	MRG002  - The merge itself failed (unknown column, incompatible keys, ...)
//	INT001  - Anything else

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/logging"
	"github.com/gopalraj000/excelfusion/internal/table"
)

// UserMessage is an error rewritten for the person using the service.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// requestError marks a request the server could not interpret.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

// MapError returns the user message and HTTP status for err.
func MapError(err error) (UserMessage, int) {
	var (
		maxBytes *http.MaxBytesError
		fe       *table.FormatError
		pe       *table.ParseError
		ie       *table.InsufficientInputError
		me       *table.MergeError
		re       *requestError
	)

	switch {
	case errors.As(err, &maxBytes), isTooLarge(err):
		return UserMessage{
			Message: "Upload is too large",
			Action:  "Upload fewer or smaller files",
			Code:    "FILE001",
		}, http.StatusRequestEntityTooLarge

	case errors.As(err, &fe):
		return UserMessage{
			Message: fe.Error(),
			Action:  fmt.Sprintf("Use one of: %s", strings.Join(fe.Supported, ", ")),
			Code:    "FILE010",
		}, http.StatusUnsupportedMediaType

	case errors.As(err, &pe):
		return UserMessage{
			Message: pe.Error(),
			Action:  "Check that the file is not corrupted and has a header row",
			Code:    "FILE011",
		}, http.StatusUnprocessableEntity

	case errors.As(err, &ie):
		return UserMessage{
			Message: ie.Error(),
			Action:  "Upload at least two files",
			Code:    "MRG001",
		}, http.StatusBadRequest

	case errors.As(err, &me):
		return UserMessage{
			Message: me.Error(),
			Action:  "Check the merge columns and column selections",
			Code:    "MRG002",
		}, http.StatusUnprocessableEntity

	case errors.As(err, &re):
		return UserMessage{
			Message: re.Error(),
			Action:  "Send files as multipart field \"files\" and the merge settings as JSON field \"config\"",
			Code:    "REQ001",
		}, http.StatusBadRequest

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return UserMessage{
			Message: "The request took too long to process",
			Action:  "Upload fewer or smaller files",
			Code:    "REQ002",
		}, http.StatusGatewayTimeout
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again",
		Code:    "INT001",
	}, http.StatusInternalServerError
}

// isTooLarge catches size errors that reach us without the typed wrapper.
func isTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

// respondError logs the technical error and writes the mapped JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg, status := MapError(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
