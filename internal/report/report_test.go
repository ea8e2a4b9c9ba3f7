package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New("merged")
	require.NoError(t, tbl.AddColumn(table.ColumnFromValues("id", []any{1, 2, 3})))
	require.NoError(t, tbl.AddColumn(table.ColumnFromValues("a_name", []any{"alpha", nil, "gamma"})))
	return tbl
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, sample(t), 2)
	out := buf.String()

	assert.Contains(t, out, "id")
	assert.Contains(t, out, "a_name")
	assert.Contains(t, out, "alpha")
	assert.NotContains(t, out, "gamma")
	assert.Contains(t, out, "... 1 more rows")
}

func TestPreview_AllRows(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, sample(t), 10)
	out := buf.String()

	assert.Contains(t, out, "gamma")
	assert.NotContains(t, out, "more rows")
}

func TestPreview_NothingForZero(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, sample(t), 0)
	assert.Empty(t, buf.String())
}

func TestSummary(t *testing.T) {
	stats := &merger.Stats{
		TotalRowsOriginal:  6,
		TotalRowsMerged:    4,
		FilesMerged:        3,
		NewRowsPerFile:     map[int]int{2: 0, 1: 1},
		MissingRowsPerFile: map[int]int{1: 1, 2: 2},
	}

	var buf bytes.Buffer
	Summary(&buf, []string{"a.csv", "b.csv"}, stats)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	assert.Equal(t, []string{
		"Files merged: 3",
		"Total rows (original): 6",
		"Total rows (merged): 4",
		"File 2 (b.csv): new rows 1, missing rows 1",
		"File 3: new rows 0, missing rows 2",
	}, lines)
}
