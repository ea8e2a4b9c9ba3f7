package merger

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gopalraj000/excelfusion/internal/table"
)

// project keeps the selected columns of t plus its key, in t's column order,
// and prefixes every non-key column with the stem of label.
func project(t *table.Table, key string, selected []string, label string) (*table.Table, error) {
	if _, ok := t.Column(key); !ok {
		return nil, fmt.Errorf("merge column %q not found in %s", key, t.Name)
	}

	keep := make(map[string]bool, len(selected)+1)
	for _, name := range selected {
		if _, ok := t.Column(name); !ok {
			return nil, fmt.Errorf("column %q not found in %s", name, t.Name)
		}
		keep[name] = true
	}
	keep[key] = true

	prefix := Stem(label) + "_"
	p := table.New(t.Name)
	for _, c := range t.Columns {
		if !keep[c.Name] {
			continue
		}
		name := c.Name
		if name != key {
			name = prefix + name
		}
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		if err := p.AddColumn(&table.Column{Name: name, Kind: c.Kind, Values: values}); err != nil {
			return nil, fmt.Errorf("renaming columns of %s: %w", t.Name, err)
		}
	}
	return p, nil
}

// Stem strips the directory and the trailing extension from a label, so
// "orders.csv" becomes "orders".
func Stem(label string) string {
	base := filepath.Base(label)
	if base == "." || base == string(filepath.Separator) {
		return label
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
