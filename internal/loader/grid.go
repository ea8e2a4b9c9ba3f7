package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/table"
)

var errNoColumns = errors.New("no columns to parse from file")

// columnFunc converts the cells of column j into a typed column.
type columnFunc func(j int, name string, cells []string) *table.Column

// buildTable turns a row-major text grid whose first row is the header into
// a table. Empty rows are skipped and short rows are padded. Data under a
// blank trailing header cell gets an "Unnamed: j" column. With strict set, a
// row wider than the raw header record is rejected.
func buildTable(rows [][]string, convert columnFunc, strict bool) (*table.Table, error) {
	start := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errNoColumns
	}

	width := len(trimTrailingEmpty(rows[start]))
	for i := start + 1; i < len(rows); i++ {
		n := len(trimTrailingEmpty(rows[i]))
		if strict && n > len(rows[start]) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", i+1, len(rows[start]), n)
		}
		if n > width {
			width = n
		}
	}

	headerRow := make([]string, width)
	copy(headerRow, rows[start])
	header := headerNames(headerRow)

	cols := make([][]string, width)
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		for j := 0; j < width; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			cols[j] = append(cols[j], cell)
		}
	}

	if convert == nil {
		convert = func(_ int, name string, cells []string) *table.Column {
			return table.InferColumn(name, cells)
		}
	}

	t := table.New("")
	for j, name := range header {
		if err := t.AddColumn(convert(j, name, cols[j])); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// headerNames cleans header cells: blanks become "Unnamed: j" and repeated
// names get a ".n" suffix.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	used := make(map[string]bool, len(row))
	counts := make(map[string]int)
	for j, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(j)
		}
		if used[name] {
			base := name
			for used[name] {
				counts[base]++
				name = base + "." + strconv.Itoa(counts[base])
			}
		}
		used[name] = true
		names[j] = name
	}
	return names
}

func trimTrailingEmpty(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
