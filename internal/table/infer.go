package table

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the timestamp shapes recognised in text cells. Ambiguous
// day/month orders are deliberately absent.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// InferColumn builds a column from raw text cells. Empty cells are nulls; the
// remaining cells decide the kind, trying int, float, bool and timestamp
// before falling back to string.
func InferColumn(name string, cells []string) *Column {
	values := make([]any, len(cells))
	nonNull := 0
	for _, s := range cells {
		if strings.TrimSpace(s) != "" {
			nonNull++
		}
	}
	if nonNull == 0 {
		return &Column{Name: name, Kind: KindNull, Values: values}
	}

	if parseAll(cells, values, parseInt) {
		return &Column{Name: name, Kind: KindInt, Values: values}
	}
	if parseAll(cells, values, parseFloat) {
		return &Column{Name: name, Kind: KindFloat, Values: values}
	}
	if parseAll(cells, values, parseBool) {
		return &Column{Name: name, Kind: KindBool, Values: values}
	}
	if parseAll(cells, values, parseTime) {
		return &Column{Name: name, Kind: KindTime, Values: values}
	}

	for i, s := range cells {
		if strings.TrimSpace(s) == "" {
			values[i] = nil
		} else {
			values[i] = s
		}
	}
	return &Column{Name: name, Kind: KindString, Values: values}
}

func parseAll(cells []string, out []any, parse func(string) (any, bool)) bool {
	for i, s := range cells {
		s = strings.TrimSpace(s)
		if s == "" {
			out[i] = nil
			continue
		}
		v, ok := parse(s)
		if !ok {
			return false
		}
		out[i] = v
	}
	return true
}

func parseInt(s string) (any, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat(s string) (any, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseBool(s string) (any, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return nil, false
}

func parseTime(s string) (any, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return nil, false
}

// FormatValue renders a cell as text. Nulls render as the empty string,
// floats in their shortest round-tripping form, timestamps as a date when
// they fall on midnight.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		s, _ := normalize(v)
		if str, ok := s.(string); ok {
			return str
		}
		return FormatValue(s)
	}
}
