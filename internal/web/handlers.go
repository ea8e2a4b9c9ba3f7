package web

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gopalraj000/excelfusion/internal/export"
	"github.com/gopalraj000/excelfusion/internal/loader"
	"github.com/gopalraj000/excelfusion/internal/logging"
	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/table"
)

// multipart parts above this size spill to temporary files
const maxFormMemory = 32 << 20

// ColumnInfo describes one column of an uploaded file.
type ColumnInfo struct {
	Name string     `json:"name"`
	Type table.Kind `json:"type"`
}

// FileInfo describes one uploaded file.
type FileInfo struct {
	Label   string       `json:"label"`
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

type InspectResponse struct {
	Files []FileInfo `json:"files"`
}

// MergeResponse is the preview returned by /api/merge.
type MergeResponse struct {
	MergeID string           `json:"merge_id"`
	Stats   *merger.Stats    `json:"stats"`
	Columns []ColumnInfo     `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	tables, err := s.readUploads(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(tables) == 0 {
		respondError(w, r, badRequest("no files uploaded", nil))
		return
	}

	resp := InspectResponse{Files: make([]FileInfo, len(tables))}
	for i, t := range tables {
		resp.Files[i] = FileInfo{
			Label:   t.Name,
			Rows:    t.NumRows(),
			Columns: columnInfo(t),
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	mergeID := uuid.NewString()
	w.Header().Set("X-Merge-ID", mergeID)

	merged, stats, err := s.merge(w, r, mergeID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, MergeResponse{
		MergeID: mergeID,
		Stats:   stats,
		Columns: columnInfo(merged),
		Rows:    previewRows(merged, s.cfg.Upload.PreviewRows),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	mergeID := uuid.NewString()
	w.Header().Set("X-Merge-ID", mergeID)

	format := export.CSV
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			respondError(w, r, err)
			return
		}
		format = f
	}

	merged, _, err := s.merge(w, r, mergeID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, mime, err := export.Encode(merged, format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format)))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("download write failed", "merge_id", mergeID, "error", err)
	}
}

// merge reads the uploads and the "config" field of r and runs the merge.
func (s *Server) merge(w http.ResponseWriter, r *http.Request, mergeID string) (*table.Table, *merger.Stats, error) {
	logger := logging.WithFields(r.Context(), "merge_id", mergeID)
	start := time.Now()

	tables, err := s.readUploads(w, r)
	if err != nil {
		return nil, nil, err
	}

	raw := r.FormValue("config")
	if raw == "" {
		return nil, nil, badRequest("missing config field", nil)
	}
	var spec merger.Spec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, nil, badRequest("invalid config", err)
	}
	spec = withDefaultColumns(spec, tables)

	logger.Info("merge started", "files", len(tables), "how", spec.Mode.String())

	merged, stats, err := s.merger.Merge(tables, spec)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("merge finished",
		"rows", merged.NumRows(),
		"columns", merged.NumCols(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return merged, stats, nil
}

// readUploads parses the multipart body and loads every "files" part. It
// gives up before the next file once the request context is done.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]*table.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if isTooLarge(err) {
			return nil, err
		}
		return nil, badRequest("invalid multipart form", err)
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) > s.cfg.Upload.MaxFiles {
		return nil, badRequest(fmt.Sprintf("%d files uploaded, at most %d allowed", len(headers), s.cfg.Upload.MaxFiles), nil)
	}

	ctx := r.Context()
	tables := make([]*table.Table, 0, len(headers))
	for _, fh := range headers {
		// RequestTimeout bounds the whole upload, so stop between files
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load %s: %w", fh.Filename, err)
		}
		if !loader.IsSupported(fh.Filename) {
			return nil, &table.FormatError{Name: fh.Filename, Supported: loader.Supported()}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, &table.ParseError{Name: fh.Filename, Err: err}
		}
		t, err := loader.Load(f, fh.Filename)
		f.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// withDefaultColumns selects every column of a table the request left
// unconfigured. An explicit empty list still means key only.
func withDefaultColumns(spec merger.Spec, tables []*table.Table) merger.Spec {
	cols := make(map[int][]string, len(tables))
	for i, t := range tables {
		if sel, ok := spec.Columns[i]; ok && sel != nil {
			cols[i] = sel
			continue
		}
		cols[i] = merger.AllColumns(t)
	}
	spec.Columns = cols
	return spec
}

func columnInfo(t *table.Table) []ColumnInfo {
	info := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		info[i] = ColumnInfo{Name: c.Name, Type: c.Kind}
	}
	return info
}

// previewRows returns the first n rows as JSON-safe maps.
func previewRows(t *table.Table, n int) []map[string]any {
	rows := t.Rows(n)
	for _, row := range rows {
		for k, v := range row {
			switch val := v.(type) {
			case time.Time:
				row[k] = table.FormatValue(val)
			case float64:
				if math.IsNaN(val) || math.IsInf(val, 0) {
					row[k] = nil
				}
			}
		}
	}
	return rows
}
