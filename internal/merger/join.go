package merger

import (
	"fmt"

	"github.com/gopalraj000/excelfusion/internal/table"
)

// join combines left and right on leftKey = rightKey. The key appears once
// in the output, under leftKey, holding the right-side value for rows that
// exist only on the right.
func join(left, right *table.Table, leftKey, rightKey string, mode JoinMode) (*table.Table, error) {
	lk, ok := left.Column(leftKey)
	if !ok {
		return nil, fmt.Errorf("merge column %q not found in merged result", leftKey)
	}
	rk, ok := right.Column(rightKey)
	if !ok {
		return nil, fmt.Errorf("merge column %q not found in %s", rightKey, right.Name)
	}
	if !table.Comparable(lk.Kind, rk.Kind) {
		return nil, fmt.Errorf("cannot merge %s column %q with %s column %q",
			lk.Kind, leftKey, rk.Kind, rightKey)
	}
	for _, c := range right.Columns {
		if c.Name != rightKey && left.Index(c.Name) >= 0 {
			return nil, fmt.Errorf("column %q of %s already exists in merged result", c.Name, right.Name)
		}
	}

	li, ri, err := pairRows(lk, rk, mode)
	if err != nil {
		return nil, err
	}

	out := table.New("")
	for _, c := range left.Columns {
		col := c.Gather(c.Name, li)
		if c.Name == leftKey {
			col = coalesceKey(leftKey, lk, rk, li, ri)
		}
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	for _, c := range right.Columns {
		if c.Name == rightKey {
			continue
		}
		if err := out.AddColumn(c.Gather(c.Name, ri)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// pairRows returns aligned row indexes into the left and right key columns;
// -1 marks the absent side of an unmatched row. Duplicate keys produce one
// pair per matching combination.
func pairRows(lk, rk *table.Column, mode JoinMode) (li, ri []int, err error) {
	switch mode {
	case Inner, Left, Outer:
		index := buildIndex(rk)
		matchedRight := make([]bool, rk.Len())

		for l, v := range lk.Values {
			var matches []int
			if key, ok := table.KeyOf(v); ok {
				matches = index[key]
			}
			if len(matches) == 0 {
				if mode != Inner {
					li = append(li, l)
					ri = append(ri, -1)
				}
				continue
			}
			for _, r := range matches {
				li = append(li, l)
				ri = append(ri, r)
				matchedRight[r] = true
			}
		}

		if mode == Outer {
			for r, matched := range matchedRight {
				if !matched {
					li = append(li, -1)
					ri = append(ri, r)
				}
			}
		}

	case Right:
		index := buildIndex(lk)
		for r, v := range rk.Values {
			var matches []int
			if key, ok := table.KeyOf(v); ok {
				matches = index[key]
			}
			if len(matches) == 0 {
				li = append(li, -1)
				ri = append(ri, r)
				continue
			}
			for _, l := range matches {
				li = append(li, l)
				ri = append(ri, r)
			}
		}

	default:
		return nil, nil, fmt.Errorf("unknown merge type %v", mode)
	}

	if li == nil {
		li, ri = []int{}, []int{}
	}
	return li, ri, nil
}

// buildIndex maps each non-null key to its row positions in order.
func buildIndex(c *table.Column) map[string][]int {
	index := make(map[string][]int, c.Len())
	for i, v := range c.Values {
		key, ok := table.KeyOf(v)
		if !ok {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}

func coalesceKey(name string, lk, rk *table.Column, li, ri []int) *table.Column {
	values := make([]any, len(li))
	for i := range li {
		switch {
		case li[i] >= 0:
			values[i] = lk.Values[li[i]]
		case ri[i] >= 0:
			values[i] = rk.Values[ri[i]]
		}
	}
	col := table.ColumnFromValues(name, values)
	if col.Kind == table.KindNull {
		col.Kind = table.Widen(lk.Kind, rk.Kind)
	}
	return col
}
