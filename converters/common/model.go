package common

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is an ordered mapping from column name to cell value.
// Cell values are one of: string, json.Number, bool, nil, *Row (nested
// object) or []interface{} (nested array). Key order is insertion order.
type Row struct {
	keys   []string
	values map[string]interface{}
}

// NewRow creates an empty row with room for n columns.
func NewRow(n int) *Row {
	return &Row{
		keys:   make([]string, 0, n),
		values: make(map[string]interface{}, n),
	}
}

// RowOf builds a row from alternating key/value pairs. It is mostly useful in tests.
func RowOf(kv ...interface{}) *Row {
	r := NewRow(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Set assigns value to key. An existing key keeps its position.
func (r *Row) Set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in insertion order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON writes the row as a JSON object preserving key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sheet is a named, ordered sequence of rows.
type Sheet struct {
	Name string
	Rows []*Row
}

// Columns returns the column list used by encoders that need a uniform
// schema: the keys of the first row. Later rows are not consulted.
func (s *Sheet) Columns() []string {
	if s == nil || len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0].Keys()
}

// Workbook is an ordered collection of sheets.
type Workbook struct {
	Sheets []*Sheet
}

// NewWorkbook creates a workbook from the given sheets.
func NewWorkbook(sheets ...*Sheet) *Workbook {
	return &Workbook{Sheets: sheets}
}

// Unique collapses sheets sharing a name. The first occurrence keeps its
// position and the last occurrence's rows win.
func (w *Workbook) Unique() []*Sheet {
	index := make(map[string]int, len(w.Sheets))
	out := make([]*Sheet, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

// MarshalJSON writes the workbook as an object keyed by sheet name.
func (w *Workbook) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range w.Unique() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		rows := s.Rows
		if rows == nil {
			rows = []*Row{}
		}
		vb, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sheet %q: %w", s.Name, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IsNested reports whether v is an object or array value.
func IsNested(v interface{}) bool {
	switch v.(type) {
	case *Row, []interface{}:
		return true
	}
	return false
}

// Artifact is a generated output file.
type Artifact struct {
	Name        string
	Data        []byte
	ContentType string
}
