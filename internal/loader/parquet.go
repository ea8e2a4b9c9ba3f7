package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/segmentio/parquet-go"
)

const parquetBatchSize = 256

// decodeParquet reads every row of a flat parquet file. Column order follows
// the schema fields.
func decodeParquet(_ string, data []byte) (*table.Table, error) {
	pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pqFile.Schema()
	fields := schema.Fields()
	if len(fields) == 0 {
		return nil, errNoColumns
	}
	if len(schema.Columns()) != len(fields) {
		return nil, fmt.Errorf("nested parquet schemas are not supported")
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	values := make([][]any, len(fields))
	for i := range values {
		values[i] = []any{}
	}

	buf := make([]parquet.Row, parquetBatchSize)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(values) {
					continue
				}
				values[col] = append(values[col], parquetValue(v))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if n == 0 {
			break
		}
	}

	t := table.New("")
	for i, f := range fields {
		if err := t.AddColumn(table.ColumnFromValues(f.Name(), values[i])); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parquetValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
