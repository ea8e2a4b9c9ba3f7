package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gopalraj000/excelfusion/internal/config"
	"github.com/gopalraj000/excelfusion/internal/export"
	"github.com/gopalraj000/excelfusion/internal/loader"
	"github.com/gopalraj000/excelfusion/internal/logging"
	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/report"
	"github.com/gopalraj000/excelfusion/internal/table"
)

type Output struct {
	Success    bool          `json:"success"`
	OutputFile string        `json:"output_file,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   string        `json:"duration"`
	RowCount   int           `json:"row_count,omitempty"`
	Stats      *merger.Stats `json:"stats,omitempty"`
}

func main() {

	start := time.Now()

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fail(start, fmt.Errorf("configuration error: %w", err))
	}

	cleanup := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat, os.Getenv("LOG_SEQ_URL"))
	defer cleanup()

	logger := slog.Default().With("run_id", uuid.NewString())

	merged, stats, err := run(cfg, logger)
	if err != nil {
		logger.Error("merge failed", "error", err)
		cleanup()
		fail(start, err)
	}

	emitJSON(Output{
		Success:    true,
		OutputFile: cfg.OutputPath,
		RowCount:   merged.NumRows(),
		Stats:      stats,
		Duration:   time.Since(start).String(),
	})
}

func run(cfg *config.Config, logger *slog.Logger) (*table.Table, *merger.Stats, error) {
	tables := make([]*table.Table, 0, len(cfg.Inputs))
	for _, path := range cfg.Inputs {
		t, err := loader.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("file loaded", "file", path, "rows", t.NumRows(), "columns", t.NumCols())
		tables = append(tables, t)
	}

	spec := cfg.MergeSpec(tables)
	merged, stats, err := merger.NewSequentialMerger(logger).Merge(tables, spec)
	if err != nil {
		return nil, nil, err
	}

	data, _, err := export.Encode(merged, cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.OutputPath, data, 0o644); err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", cfg.OutputPath, err)
	}
	logger.Info("result written", "file", cfg.OutputPath, "format", string(cfg.Format), "bytes", len(data))

	if cfg.PreviewRows > 0 {
		labels := make([]string, len(tables))
		for i, t := range tables {
			labels[i] = t.Name
			if i < len(spec.Labels) && spec.Labels[i] != "" {
				labels[i] = spec.Labels[i]
			}
		}
		report.Preview(os.Stderr, merged, cfg.PreviewRows)
		report.Summary(os.Stderr, labels, stats)
	}

	return merged, stats, nil
}

func fail(start time.Time, err error) {
	emitJSON(Output{
		Success:  false,
		Error:    err.Error(),
		Duration: time.Since(start).String(),
	})
	os.Exit(1)
}

func emitJSON(out Output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("JSON output error: %v", err)
	}
}
