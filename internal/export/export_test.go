package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/gopalraj000/excelfusion/internal/loader"
	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New("merged")
	cols := []*table.Column{
		table.ColumnFromValues("id", []any{1, 2, 3}),
		table.ColumnFromValues("a_name", []any{"x", nil, "z, with comma"}),
		table.ColumnFromValues("b_score", []any{1.5, 2.0, nil}),
		table.ColumnFromValues("b_when", []any{
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			nil,
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		}),
	}
	for _, c := range cols {
		require.NoError(t, tbl.AddColumn(c))
	}
	return tbl
}

func TestEncode_CSV(t *testing.T) {
	data, mime, err := Encode(sampleTable(t), CSV)
	require.NoError(t, err)
	assert.Equal(t, MIMECSV, mime)

	want := "id,a_name,b_score,b_when\n" +
		"1,x,1.5,2024-01-02\n" +
		"2,,2,\n" +
		"3,\"z, with comma\",,2024-03-04\n"
	assert.Equal(t, want, string(data))
}

func TestEncode_CSVRoundTrip(t *testing.T) {
	data, _, err := Encode(sampleTable(t), CSV)
	require.NoError(t, err)

	back, err := loader.Load(bytes.NewReader(data), "merged_data.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "a_name", "b_score", "b_when"}, back.ColumnNames())
	assert.Equal(t, 3, back.NumRows())

	id, _ := back.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)
	when, _ := back.Column("b_when")
	assert.Equal(t, table.KindTime, when.Kind)
}

func TestEncode_XLSXRoundTrip(t *testing.T) {
	data, mime, err := Encode(sampleTable(t), XLSX)
	require.NoError(t, err)
	assert.Equal(t, MIMEXLSX, mime)

	back, err := loader.Load(bytes.NewReader(data), "merged_data.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "a_name", "b_score", "b_when"}, back.ColumnNames())
	require.Equal(t, 3, back.NumRows())

	id, _ := back.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)

	name, _ := back.Column("a_name")
	assert.Equal(t, []any{"x", nil, "z, with comma"}, name.Values)

	score, _ := back.Column("b_score")
	assert.Equal(t, table.KindFloat, score.Kind)
	assert.Equal(t, []any{1.5, float64(2), nil}, score.Values)

	when, _ := back.Column("b_when")
	require.Equal(t, table.KindTime, when.Kind)
	assert.Equal(t, "2024-01-02", table.FormatValue(when.Values[0]))
	assert.Nil(t, when.Values[1])
}

func TestEncode_EmptyTable(t *testing.T) {
	tbl := table.New("merged")
	require.NoError(t, tbl.AddColumn(&table.Column{Name: "id", Kind: table.KindInt, Values: []any{}}))

	data, _, err := Encode(tbl, CSV)
	require.NoError(t, err)
	assert.Equal(t, "id\n", string(data))

	data, _, err = Encode(tbl, XLSX)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, _, err := Encode(sampleTable(t), Format("pdf"))
	var fe *table.FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: CSV},
		{in: " CSV ", want: CSV},
		{in: "xlsx", want: XLSX},
		{in: "excel", want: XLSX},
		{in: "Spreadsheet", want: XLSX},
		{in: "json", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				var fe *table.FormatError
				assert.True(t, errors.As(err, &fe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameAndMIME(t *testing.T) {
	assert.Equal(t, "merged_data.csv", Filename(CSV))
	assert.Equal(t, "merged_data.xlsx", Filename(XLSX))
	assert.Equal(t, MIMECSV, MIME(CSV))
	assert.Equal(t, MIMEXLSX, MIME(XLSX))
	assert.Empty(t, MIME(Format("pdf")))
}

func TestAnalyzeWidths(t *testing.T) {
	tbl := table.New("w")
	require.NoError(t, tbl.AddColumn(table.ColumnFromValues("id", []any{1})))
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, tbl.AddColumn(table.ColumnFromValues("note", []any{string(long)})))

	w := &xlsxWriter{}
	w.analyzeWidths(tbl)
	assert.Equal(t, minColWidth, w.colWidths[1])
	assert.Equal(t, maxColWidth, w.colWidths[2])
}
