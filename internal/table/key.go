package table

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// KeyOf returns the canonical join-key form of a cell value. Nulls (and NaN)
// have no key and never match anything, including other nulls. Integers and
// floats of the same numeric value share a key, so 1 joins with 1.0.
func KeyOf(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return "s:" + val, true
	case int64:
		return "n:" + decimal.NewFromInt(val).String(), true
	case float64:
		switch {
		case math.IsNaN(val):
			return "", false
		case math.IsInf(val, 1):
			return "n:+inf", true
		case math.IsInf(val, -1):
			return "n:-inf", true
		}
		return "n:" + decimal.NewFromFloat(val).String(), true
	case bool:
		if val {
			return "b:1", true
		}
		return "b:0", true
	case time.Time:
		return "t:" + val.UTC().Format(time.RFC3339Nano), true
	default:
		nv, _ := normalize(v)
		if nv == nil {
			return "", false
		}
		return KeyOf(nv)
	}
}

// KeySet returns the distinct non-null keys of a column.
func KeySet(c *Column) map[string]struct{} {
	set := make(map[string]struct{}, c.Len())
	for _, v := range c.Values {
		if k, ok := KeyOf(v); ok {
			set[k] = struct{}{}
		}
	}
	return set
}

// Comparable reports whether two key columns of the given kinds can be
// joined. Null columns join with anything; numbers only with numbers.
func Comparable(a, b Kind) bool {
	if a == KindNull || b == KindNull || a == b {
		return true
	}
	return a.Numeric() && b.Numeric()
}
