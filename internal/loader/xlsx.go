package loader

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/xuri/excelize/v2"
)

func decodeXLSX(_ string, data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheetList[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from %s: %w", sheet, err)
	}

	headerRow := 0
	for headerRow < len(rows) && isEmptyRow(rows[headerRow]) {
		headerRow++
	}

	return buildTable(rows, func(j int, name string, cells []string) *table.Column {
		if isDateColumn(f, sheet, j, headerRow, rows) {
			if col, ok := dateColumn(name, cells); ok {
				return col
			}
		}
		return table.InferColumn(name, cells)
	}, false)
}

// isDateColumn reports whether the first non-empty data cell of column j is
// styled with a built-in date number format.
func isDateColumn(f *excelize.File, sheet string, j, headerRow int, rows [][]string) bool {
	for i := headerRow + 1; i < len(rows); i++ {
		if j >= len(rows[i]) || strings.TrimSpace(rows[i][j]) == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, i+1)
		if err != nil {
			return false
		}
		styleID, err := f.GetCellStyle(sheet, cell)
		if err != nil || styleID == 0 {
			return false
		}
		style, err := f.GetStyle(styleID)
		if err != nil || style == nil {
			return false
		}
		return isDateFormat(style.NumFmt)
	}
	return false
}

// dateColumn converts Excel serial dates. It fails when any non-empty cell is
// not a serial number.
func dateColumn(name string, cells []string) (*table.Column, bool) {
	values := make([]any, len(cells))
	for i, s := range cells {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, false
		}
		values[i] = t
	}
	return &table.Column{Name: name, Kind: table.KindTime, Values: values}, true
}

func isDateFormat(fmtID int) bool {
	switch fmtID {
	case 14, 15, 16, 17, 22, 27, 30, 36, 45, 46, 47:
		return true
	}
	return false
}
