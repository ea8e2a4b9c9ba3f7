// Package report renders human-readable views of a merge: an ASCII preview of
// the merged rows and a per-file summary of the merge statistics.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/gopalraj000/excelfusion/internal/merger"
	"github.com/gopalraj000/excelfusion/internal/table"
	"github.com/olekukonko/tablewriter"
)

// Preview writes the first n rows of t as an ASCII table. A non-positive n
// writes nothing.
func Preview(w io.Writer, t *table.Table, n int) {
	if n <= 0 || t == nil {
		return
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.ColumnNames())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)

	for i := 0; i < n; i++ {
		record := make([]string, t.NumCols())
		for j, c := range t.Columns {
			record[j] = table.FormatValue(c.Values[i])
		}
		tw.Append(record)
	}
	tw.Render()

	if rest := t.NumRows() - n; rest > 0 {
		fmt.Fprintf(w, "... %d more rows\n", rest)
	}
}

// Summary writes the merge totals followed by one line per joined file.
// Files are numbered from 1 in input order; labels name them when present.
func Summary(w io.Writer, labels []string, stats *merger.Stats) {
	if stats == nil {
		return
	}
	fmt.Fprintf(w, "Files merged: %d\n", stats.FilesMerged)
	fmt.Fprintf(w, "Total rows (original): %d\n", stats.TotalRowsOriginal)
	fmt.Fprintf(w, "Total rows (merged): %d\n", stats.TotalRowsMerged)

	steps := make([]int, 0, len(stats.NewRowsPerFile))
	for i := range stats.NewRowsPerFile {
		steps = append(steps, i)
	}
	sort.Ints(steps)

	for _, i := range steps {
		name := fmt.Sprintf("File %d", i+1)
		if i < len(labels) && labels[i] != "" {
			name = fmt.Sprintf("File %d (%s)", i+1, labels[i])
		}
		fmt.Fprintf(w, "%s: new rows %d, missing rows %d\n",
			name, stats.NewRowsPerFile[i], stats.MissingRowsPerFile[i])
	}
}
