// Package loader turns uploaded files into tables, dispatching on the file
// extension.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/table"
)

type decodeFunc func(name string, data []byte) (*table.Table, error)

var decoders = map[string]decodeFunc{
	".csv":     decodeCSV,
	".xlsx":    decodeXLSX,
	".xls":     decodeXLS,
	".parquet": decodeParquet,
}

// Supported returns the recognised file extensions in sorted order.
func Supported() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether filename has a recognised extension.
func IsSupported(filename string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Load reads r fully and decodes it according to the extension of filename.
// The table is named after the base of filename.
//
// Unknown extensions yield a *table.FormatError; undecodable content yields
// a *table.ParseError wrapping the cause.
func Load(r io.Reader, filename string) (*table.Table, error) {
	name := filepath.Base(filename)
	decode, ok := decoders[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, &table.FormatError{Name: name, Supported: Supported()}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &table.ParseError{Name: name, Err: err}
	}

	t, err := decode(name, data)
	if err != nil {
		return nil, &table.ParseError{Name: name, Err: err}
	}
	t.Name = name
	return t, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (*table.Table, error) {
	if !IsSupported(path) {
		return nil, &table.FormatError{Name: filepath.Base(path), Supported: Supported()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Load(bytes.NewReader(data), path)
}
