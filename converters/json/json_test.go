package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/darianmavgo/tabconv/converters/common"
)

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		shape  common.Shape
		sheets []string
	}{
		{"Array", `[{"id":1}]`, common.ShapeTable, []string{"people"}},
		{"EmptyArray", `[]`, common.ShapeTable, []string{"people"}},
		{"Workbook", `{"b":[{"x":1}],"a":[]}`, common.ShapeWorkbook, []string{"b", "a"}},
		{"BareObject", `{"id":1,"name":"Ann"}`, common.ShapeTree, nil},
		{"MixedObject", `{"a":[],"b":1}`, common.ShapeTree, nil},
		{"EmptyObject", `{}`, common.ShapeTree, nil},
		{"Scalar", `42`, common.ShapeTree, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Decode([]byte(tt.input), "people")
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if ds.Shape != tt.shape {
				t.Fatalf("shape = %s, want %s", ds.Shape, tt.shape)
			}
			if tt.sheets == nil {
				if ds.Workbook != nil {
					t.Errorf("tree input should not produce a workbook")
				}
				return
			}
			var names []string
			for _, s := range ds.Workbook.Sheets {
				names = append(names, s.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.sheets, ",") {
				t.Errorf("sheets = %v, want %v", names, tt.sheets)
			}
		})
	}
}

func TestDecodePreservesOrderAndNumbers(t *testing.T) {
	ds, err := Decode([]byte(`[{"z":1.50,"a":"x","m":null,"n":{"q":true,"b":[1,2]}}]`), "data")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	row := ds.Workbook.Sheets[0].Rows[0]
	if got := strings.Join(row.Keys(), ","); got != "z,a,m,n" {
		t.Errorf("key order = %s", got)
	}
	if v, _ := row.Get("z"); v != json.Number("1.50") {
		t.Errorf("number = %#v, want json.Number(1.50)", v)
	}
	nested, _ := row.Get("n")
	obj, ok := nested.(*common.Row)
	if !ok {
		t.Fatalf("nested value is %T, want *common.Row", nested)
	}
	if got := strings.Join(obj.Keys(), ","); got != "q,b" {
		t.Errorf("nested key order = %s", got)
	}
}

func TestDecodeScalarElements(t *testing.T) {
	ds, err := Decode([]byte(`[1,"two"]`), "data")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	rows := ds.Workbook.Sheets[0].Rows
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v, _ := rows[1].Get("value"); v != "two" {
		t.Errorf("value = %#v", v)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, input := range []string{"", "   ", `[{"a":1}`, `{"a" 1}`, `[1] [2]`, `nope`} {
		_, err := Decode([]byte(input), "x")
		if !errors.Is(err, common.ErrMalformedInput) {
			t.Errorf("Decode(%q): expected ErrMalformedInput, got %v", input, err)
		}
	}
}

func TestEncodeSheetAsArray(t *testing.T) {
	sheet := &common.Sheet{Name: "s", Rows: []*common.Row{
		common.RowOf("id", json.Number("1"), "name", "Ann"),
	}}
	got, err := EncodeSheetAsArray(sheet)
	if err != nil {
		t.Fatalf("EncodeSheetAsArray failed: %v", err)
	}
	want := "[\n  {\n    \"id\": 1,\n    \"name\": \"Ann\"\n  }\n]"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	empty, err := EncodeSheetAsArray(&common.Sheet{Name: "e"})
	if err != nil || empty != "[]" {
		t.Errorf("empty sheet = %q, %v", empty, err)
	}
}

func TestEncodeWorkbookAsMultiSheetObject(t *testing.T) {
	wb := common.NewWorkbook(
		&common.Sheet{Name: "Sheet1", Rows: []*common.Row{common.RowOf("a", json.Number("1"))}},
		&common.Sheet{Name: "Sheet2"},
	)
	got, err := EncodeWorkbookAsMultiSheetObject(wb)
	if err != nil {
		t.Fatalf("EncodeWorkbookAsMultiSheetObject failed: %v", err)
	}
	want := "{\n  \"Sheet1\": [\n    {\n      \"a\": 1\n    }\n  ],\n  \"Sheet2\": []\n}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDriverRoundTrip(t *testing.T) {
	input := `{"b":[{"x":1}],"a":[{"y":"z"}]}`
	d := &jsonDriver{}
	ds, err := d.Decode([]byte(input), &common.ConversionConfig{Name: "book"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	arts, err := d.Encode(ds, &common.ConversionConfig{Name: "book"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if arts[0].Name != "book.json" || arts[0].ContentType != ContentType {
		t.Errorf("artifact = %s %s", arts[0].Name, arts[0].ContentType)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, arts[0].Data); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if compact.String() != input {
		t.Errorf("round trip = %s, want %s", compact.String(), input)
	}
}
