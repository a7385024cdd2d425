package html

import (
	"errors"
	"strings"
	"testing"

	"github.com/darianmavgo/tabconv/converters/common"
)

const page = `
<html>
<body>
<table id="people">
<tr><th>Name</th><th>Age</th></tr>
<tr><td>Alice</td><td> 30 </td></tr>
<tr><td><b>Bob</b></td></tr>
</table>
<table>
<tr><td>only</td></tr>
<tr><td><table id="inner"><tr><th>x</th></tr><tr><td>1</td></tr></table></td></tr>
</table>
</body>
</html>
`

func TestDecodeTables(t *testing.T) {
	wb, err := Decode(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	var names []string
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "people,table1,inner" {
		t.Fatalf("sheets = %s, want people,table1,inner", got)
	}

	people := wb.Sheets[0]
	if len(people.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(people.Rows))
	}
	if v, _ := people.Rows[0].Get("Age"); v != "30" {
		t.Errorf("Age = %q, want 30", v)
	}
	if v, _ := people.Rows[1].Get("Name"); v != "Bob" {
		t.Errorf("Name = %q, want Bob", v)
	}
	if v, ok := people.Rows[1].Get("Age"); !ok || v != "" {
		t.Errorf("short row Age = %q (present %v), want empty", v, ok)
	}

	inner := wb.Sheets[2]
	if len(inner.Rows) != 1 {
		t.Errorf("inner table rows = %d, want 1", len(inner.Rows))
	}
}

func TestDecodeNoTables(t *testing.T) {
	_, err := Decode(strings.NewReader("<p>nothing here</p>"))
	if !errors.Is(err, common.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
