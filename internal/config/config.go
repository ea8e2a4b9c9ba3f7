package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/export"
	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/table"
)

// Config holds the command-line settings of one merge run.
type Config struct {
	Inputs      []string
	Keys        []string   // one merge column per input
	Columns     [][]string // nil entry selects every column
	Labels      []string
	How         merger.JoinMode
	Format      export.Format
	OutputPath  string
	PreviewRows int
	LogLevel    string
	LogFormat   string
}

// columnsFlag collects one -cols value per input file.
type columnsFlag [][]string

func (c *columnsFlag) String() string {
	parts := make([]string, len(*c))
	for i, cols := range *c {
		if cols == nil {
			parts[i] = "*"
			continue
		}
		parts[i] = strings.Join(cols, ",")
	}
	return strings.Join(parts, " ")
}

func (c *columnsFlag) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "*" {
		*c = append(*c, nil)
		return nil
	}
	sel := splitList(v)
	if sel == nil {
		sel = []string{} // key only
	}
	*c = append(*c, sel)
	return nil
}

// ParseFlags parses args (without the program name) into a validated Config.
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("excelfusion", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: excelfusion [flags] <file> <file> [...]\n")
		fs.PrintDefaults()
	}

	var (
		keys, labels, how, format string
		cols                      columnsFlag
	)
	fs.StringVar(&keys, "key", "", "merge column per file, comma separated; a single name applies to every file")
	fs.Var(&cols, "cols", "columns to keep from the next file, comma separated; * keeps all (repeat once per file)")
	fs.StringVar(&labels, "labels", "", "labels used to prefix columns, comma separated (default: file names)")
	fs.StringVar(&how, "how", "outer", "merge type: outer, inner, left or right")
	fs.StringVar(&format, "format", "csv", "output format: csv or xlsx")
	fs.StringVar(&cfg.OutputPath, "out", "", "result file (default: merged_data.<format>)")
	fs.IntVar(&cfg.PreviewRows, "preview", 0, "number of merged rows to print to stderr")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for _, p := range fs.Args() {
		cfg.Inputs = append(cfg.Inputs, filepath.Clean(p))
	}
	n := len(cfg.Inputs)
	if n < 2 {
		return nil, &table.InsufficientInputError{Got: n}
	}

	cfg.Keys = splitList(keys)
	switch len(cfg.Keys) {
	case 0:
		return nil, fmt.Errorf("a merge column must be given with -key")
	case 1:
		for len(cfg.Keys) < n {
			cfg.Keys = append(cfg.Keys, cfg.Keys[0])
		}
	case n:
	default:
		return nil, fmt.Errorf("-key lists %d columns for %d files", len(cfg.Keys), n)
	}

	if len(cols) > 0 && len(cols) != n {
		return nil, fmt.Errorf("-cols given %d times for %d files", len(cols), n)
	}
	cfg.Columns = make([][]string, n)
	copy(cfg.Columns, cols)

	cfg.Labels = splitList(labels)
	if len(cfg.Labels) > 0 && len(cfg.Labels) != n {
		return nil, fmt.Errorf("-labels lists %d labels for %d files", len(cfg.Labels), n)
	}

	var err error
	if cfg.How, err = merger.ParseJoinMode(how); err != nil {
		return nil, err
	}
	if cfg.Format, err = export.ParseFormat(format); err != nil {
		return nil, err
	}

	if cfg.PreviewRows < 0 {
		return nil, fmt.Errorf("-preview must not be negative")
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = export.Filename(cfg.Format)
	}
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)

	return cfg, nil
}

// MergeSpec builds the merge description for the loaded tables, which must be
// in input order. Inputs without a column selection keep all their columns.
func (c *Config) MergeSpec(tables []*table.Table) merger.Spec {
	spec := merger.Spec{
		Keys:    make(map[int]string, len(tables)),
		Columns: make(map[int][]string, len(tables)),
		Labels:  c.Labels,
		Mode:    c.How,
	}
	for i, t := range tables {
		if i < len(c.Keys) {
			spec.Keys[i] = c.Keys[i]
		}
		if i < len(c.Columns) && c.Columns[i] != nil {
			spec.Columns[i] = c.Columns[i]
		} else {
			spec.Columns[i] = merger.AllColumns(t)
		}
	}
	return spec
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
