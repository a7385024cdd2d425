package common

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CellText returns the plain textual form of a cell value.
// Nested values are rendered as compact JSON.
func CellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case *Row, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// CheckFlat returns an UnsupportedShape error when a row of the sheet holds
// a nested value in one of the given columns.
func CheckFlat(format string, s *Sheet, columns []string) error {
	for i, row := range s.Rows {
		for _, col := range columns {
			if v, ok := row.Get(col); ok && IsNested(v) {
				return Unsupported(format, "row %d column %q holds a nested value", i+1, col)
			}
		}
	}
	return nil
}
