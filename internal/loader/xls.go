package loader

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/gopalraj000/excelfusion/internal/table"
)

// decodeXLS reads the first sheet of a legacy BIFF workbook as text cells.
func decodeXLS(_ string, data []byte) (t *table.Table, err error) {
	// the BIFF reader panics on some truncated streams
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("corrupt workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	return buildTable(rows, nil, false)
}
