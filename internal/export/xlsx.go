package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName   = "Sheet1"
	minColWidth = 8
	maxColWidth = 60
)

// xlsxWriter streams a table into a single-sheet workbook.
type xlsxWriter struct {
	file        *excelize.File
	stream      *excelize.StreamWriter
	headerStyle int
	dateStyle   int
	colWidths   map[int]int
}

func encodeXLSX(t *table.Table) ([]byte, error) {
	if t.NumRows()+1 > excelize.TotalRows {
		return nil, fmt.Errorf("%d rows exceed the sheet limit of %d", t.NumRows(), excelize.TotalRows-1)
	}

	w := &xlsxWriter{file: excelize.NewFile()}
	defer w.file.Close()

	if err := w.init(t); err != nil {
		return nil, err
	}
	if err := w.writeRows(t); err != nil {
		return nil, err
	}
	if err := w.stream.Flush(); err != nil {
		return nil, fmt.Errorf("final flush: %w", err)
	}

	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *xlsxWriter) init(t *table.Table) error {
	var err error
	w.headerStyle, err = w.file.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	w.dateStyle, err = w.file.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	w.stream, err = w.file.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	// widths must be set before the first row is written
	w.analyzeWidths(t)
	for colIdx := 1; colIdx <= t.NumCols(); colIdx++ {
		if err := w.stream.SetColWidth(colIdx, colIdx, float64(w.colWidths[colIdx])); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}

// analyzeWidths sizes each column to its longest header or value.
func (w *xlsxWriter) analyzeWidths(t *table.Table) {
	w.colWidths = make(map[int]int, t.NumCols())
	for j, c := range t.Columns {
		width := utf8.RuneCountInString(c.Name)
		for _, v := range c.Values {
			if n := utf8.RuneCountInString(table.FormatValue(v)); n > width {
				width = n
			}
			if width >= maxColWidth {
				break
			}
		}
		width += 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		w.colWidths[j+1] = width
	}
}

func (w *xlsxWriter) writeRows(t *table.Table) error {
	headerRow := make([]interface{}, t.NumCols())
	for i, name := range t.ColumnNames() {
		headerRow[i] = excelize.Cell{Value: name, StyleID: w.headerStyle}
	}
	if err := w.stream.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rowData := make([]interface{}, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			switch v := c.Values[i].(type) {
			case nil:
				rowData[j] = nil
			case time.Time:
				rowData[j] = excelize.Cell{Value: v, StyleID: w.dateStyle}
			default:
				rowData[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.stream.SetRow(cell, rowData); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}
