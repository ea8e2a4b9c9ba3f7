package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gopalraj000/excelfusion/internal/config"
	"github.com/gopalraj000/excelfusion/internal/export"
	"github.com/gopalraj000/excelfusion/internal/loader"
	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fileA = "id,name\n1,x\n2,y\n3,z\n"
	fileB = "id,score\n2,10\n3,20\n4,30\n"
)

type upload struct {
	name, data string
}

func testConfig() *config.Server {
	return &config.Server{
		HTTP: config.HTTPConfig{
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Upload: config.UploadConfig{
			MaxBytes:    1 << 20,
			MaxFiles:    5,
			PreviewRows: 2,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testConfig(), merger.NewSequentialMerger(nil))
}

func multipartRequest(t *testing.T, target string, files []upload, cfg string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	if cfg != "" {
		require.NoError(t, mw.WriteField("config", cfg))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestInspect(t *testing.T) {
	req := multipartRequest(t, "/api/inspect", []upload{{"a.csv", fileA}, {"b.csv", fileB}}, "")
	rec := serve(newTestServer(t), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "a.csv", resp.Files[0].Label)
	assert.Equal(t, 3, resp.Files[0].Rows)
	require.Len(t, resp.Files[1].Columns, 2)
	assert.Equal(t, table.KindInt, resp.Files[1].Columns[1].Type)

	raw := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	cols := raw["files"].([]any)[1].(map[string]any)["columns"].([]any)
	assert.Equal(t, map[string]any{"name": "score", "type": "int"}, cols[1])
}

func TestInspect_NoFiles(t *testing.T) {
	rec := serve(newTestServer(t), multipartRequest(t, "/api/inspect", nil, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)
}

func TestMerge(t *testing.T) {
	cfg := `{"keys":{"0":"id","1":"id"},"columns":{"1":["score"]},"how":"outer"}`
	req := multipartRequest(t, "/api/merge", []upload{{"a.csv", fileA}, {"b.csv", fileB}}, cfg)
	rec := serve(newTestServer(t), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mergeID := rec.Header().Get("X-Merge-ID")
	_, err := uuid.Parse(mergeID)
	require.NoError(t, err)

	var resp struct {
		MergeID string           `json:"merge_id"`
		Stats   merger.Stats     `json:"stats"`
		Columns []map[string]any `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, mergeID, resp.MergeID)
	assert.Equal(t, 6, resp.Stats.TotalRowsOriginal)
	assert.Equal(t, 4, resp.Stats.TotalRowsMerged)
	assert.Equal(t, 1, resp.Stats.NewRowsPerFile[1])
	assert.Equal(t, 1, resp.Stats.MissingRowsPerFile[1])

	names := make([]any, len(resp.Columns))
	for i, c := range resp.Columns {
		names[i] = c["name"]
	}
	assert.Equal(t, []any{"id", "a_name", "b_score"}, names)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, map[string]any{"id": float64(1), "a_name": "x", "b_score": nil}, resp.Rows[0])
}

func TestMerge_Errors(t *testing.T) {
	good := `{"keys":{"0":"id","1":"id"}}`
	tests := []struct {
		name     string
		files    []upload
		cfg      string
		status   int
		code     string
		noMultip bool
	}{
		{
			name:   "single file",
			files:  []upload{{"a.csv", fileA}},
			cfg:    `{"keys":{"0":"id"}}`,
			status: http.StatusBadRequest,
			code:   "MRG001",
		},
		{
			name:   "unsupported extension",
			files:  []upload{{"a.csv", fileA}, {"b.txt", fileB}},
			cfg:    good,
			status: http.StatusUnsupportedMediaType,
			code:   "FILE010",
		},
		{
			name:   "unparseable file",
			files:  []upload{{"a.csv", fileA}, {"b.xlsx", "not a workbook"}},
			cfg:    good,
			status: http.StatusUnprocessableEntity,
			code:   "FILE011",
		},
		{
			name:   "unknown key column",
			files:  []upload{{"a.csv", fileA}, {"b.csv", fileB}},
			cfg:    `{"keys":{"0":"id","1":"missing"}}`,
			status: http.StatusUnprocessableEntity,
			code:   "MRG002",
		},
		{
			name:   "missing config",
			files:  []upload{{"a.csv", fileA}, {"b.csv", fileB}},
			status: http.StatusBadRequest,
			code:   "REQ001",
		},
		{
			name:   "bad merge type",
			files:  []upload{{"a.csv", fileA}, {"b.csv", fileB}},
			cfg:    `{"keys":{"0":"id","1":"id"},"how":"cross"}`,
			status: http.StatusBadRequest,
			code:   "REQ001",
		},
		{
			name:     "not multipart",
			status:   http.StatusBadRequest,
			code:     "REQ001",
			noMultip: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.noMultip {
				req = httptest.NewRequest(http.MethodPost, "/api/merge", bytes.NewBufferString("{}"))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = multipartRequest(t, "/api/merge", tt.files, tt.cfg)
			}
			rec := serve(newTestServer(t), req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.NotEmpty(t, rec.Header().Get("X-Merge-ID"))
		})
	}
}

func TestMerge_TooManyFiles(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Upload.MaxFiles = 2
	files := []upload{{"a.csv", fileA}, {"b.csv", fileB}, {"c.csv", fileB}}
	rec := serve(s, multipartRequest(t, "/api/merge", files, `{"keys":{"0":"id","1":"id","2":"id"}}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)
}

func TestMerge_TooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Upload.MaxBytes = 64
	big := "id,name\n" + string(bytes.Repeat([]byte("1,abcdefghij\n"), 100))
	rec := serve(s, multipartRequest(t, "/api/merge", []upload{{"a.csv", big}, {"b.csv", fileB}}, `{"keys":{"0":"id","1":"id"}}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestDownload(t *testing.T) {
	cfg := `{"keys":{"0":"id","1":"id"},"how":"inner"}`
	for _, format := range []export.Format{export.CSV, export.XLSX} {
		t.Run(string(format), func(t *testing.T) {
			target := fmt.Sprintf("/api/merge/download?format=%s", format)
			req := multipartRequest(t, target, []upload{{"a.csv", fileA}, {"b.csv", fileB}}, cfg)
			rec := serve(newTestServer(t), req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Equal(t, export.MIME(format), rec.Header().Get("Content-Type"))
			assert.Equal(t,
				fmt.Sprintf("attachment; filename=%q", export.Filename(format)),
				rec.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, rec.Header().Get("X-Merge-ID"))

			back, err := loader.Load(rec.Body, export.Filename(format))
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "a_name", "b_score"}, back.ColumnNames())
			assert.Equal(t, 2, back.NumRows())
		})
	}
}

func TestDownload_DefaultsToCSV(t *testing.T) {
	req := multipartRequest(t, "/api/merge/download",
		[]upload{{"a.csv", fileA}, {"b.csv", fileB}}, `{"keys":{"0":"id","1":"id"},"how":"inner"}`)
	rec := serve(newTestServer(t), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id,a_name,b_score\n2,y,10\n3,z,20\n", rec.Body.String())
}

func TestDownload_BadFormat(t *testing.T) {
	req := multipartRequest(t, "/api/merge/download?format=pdf",
		[]upload{{"a.csv", fileA}, {"b.csv", fileB}}, `{"keys":{"0":"id","1":"id"}}`)
	rec := serve(newTestServer(t), req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "FILE010", decodeError(t, rec).Code)
}

func TestMapError_Unknown(t *testing.T) {
	msg, status := MapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INT001", msg.Code)
}

func TestMapError_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", &table.MergeError{Step: 1, Err: errors.New("x")})
	msg, status := MapError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "MRG002", msg.Code)
}

func TestMerge_ContextDone(t *testing.T) {
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	for name, ctx := range map[string]context.Context{"deadline": expired, "cancelled": cancelled} {
		t.Run(name, func(t *testing.T) {
			cfg := `{"keys":{"0":"id","1":"id"}}`
			req := multipartRequest(t, "/api/merge", []upload{{"a.csv", fileA}, {"b.csv", fileB}}, cfg)
			rec := serve(newTestServer(t), req.WithContext(ctx))

			assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
			assert.Equal(t, "REQ002", decodeError(t, rec).Code)
		})
	}
}

func TestWithDefaultColumns(t *testing.T) {
	a := table.New("a.csv")
	require.NoError(t, a.AddColumn(table.ColumnFromValues("id", []any{1})))
	require.NoError(t, a.AddColumn(table.ColumnFromValues("x", []any{2})))
	b := table.New("b.csv")
	require.NoError(t, b.AddColumn(table.ColumnFromValues("id", []any{1})))

	spec := withDefaultColumns(merger.Spec{Columns: map[int][]string{1: {}}}, []*table.Table{a, b})
	assert.Equal(t, []string{"id", "x"}, spec.Columns[0])
	assert.Equal(t, []string{}, spec.Columns[1])
}
