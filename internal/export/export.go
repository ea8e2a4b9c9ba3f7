// Package export encodes a table as a downloadable CSV or XLSX file.
package export

import (
	"fmt"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/table"
)

// Format is a download file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts csv and xlsx, plus excel and spreadsheet for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel", "spreadsheet":
		return XLSX, nil
	}
	return "", &table.FormatError{Name: s, Supported: []string{string(CSV), string(XLSX)}}
}

// MIME returns the content type of f.
func MIME(f Format) string {
	switch f {
	case CSV:
		return MIMECSV
	case XLSX:
		return MIMEXLSX
	}
	return ""
}

// Filename returns the download name for a merged file in format f.
func Filename(f Format) string {
	return "merged_data." + string(f)
}

// Encode serialises t without any synthetic index column and returns the
// bytes with their MIME type.
func Encode(t *table.Table, f Format) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case CSV:
		data, err = encodeCSV(t)
	case XLSX:
		data, err = encodeXLSX(t)
	default:
		return nil, "", &table.FormatError{Name: string(f), Supported: []string{string(CSV), string(XLSX)}}
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", f, err)
	}
	return data, MIME(f), nil
}
