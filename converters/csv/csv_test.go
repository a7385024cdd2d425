package csv

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/darianmavgo/tabconv/converters/common"
)

const quotedSample = "name,city\nO'Brien,\"New York, NY\"\n"

func get(t *testing.T, row *common.Row, key string) interface{} {
	t.Helper()
	v, ok := row.Get(key)
	if !ok {
		t.Fatalf("row has no key %q (keys %v)", key, row.Keys())
	}
	return v
}

func TestDecodeStrictHonorsQuotes(t *testing.T) {
	sheet, err := Decode([]byte(quotedSample), &common.ConversionConfig{Name: "people", CSVMode: common.CSVStrict})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if sheet.Name != "people" {
		t.Errorf("sheet name = %q, want people", sheet.Name)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sheet.Rows))
	}
	row := sheet.Rows[0]
	if got := get(t, row, "name"); got != "O'Brien" {
		t.Errorf("name = %q", got)
	}
	if got := get(t, row, "city"); got != "New York, NY" {
		t.Errorf("city = %q", got)
	}
}

func TestDecodeNaiveSplitsQuotedComma(t *testing.T) {
	line := strings.Split(quotedSample, "\n")[1]
	fields := SplitNaive(line, ',')
	want := []string{"O'Brien", `"New York`, ` NY"`}
	if len(fields) != len(want) {
		t.Fatalf("SplitNaive = %q, want %q", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, fields[i], want[i])
		}
	}

	sheet, err := Decode([]byte(quotedSample), &common.ConversionConfig{Name: "people", CSVMode: common.CSVNaive})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sheet.Rows))
	}
	if got := get(t, sheet.Rows[0], "city"); got != `"New York` {
		t.Errorf("naive city = %q, want %q", got, `"New York`)
	}
}

func TestDecodeNaiveNeverFails(t *testing.T) {
	inputs := []string{"", "\n\n", "a,b", "a,b\r\n1\r\n", "\"unterminated,x\n1,2"}
	for _, in := range inputs {
		sheet := DecodeNaive(in, "n", ',')
		if sheet == nil {
			t.Fatalf("DecodeNaive(%q) returned nil", in)
		}
	}

	sheet := DecodeNaive("a,b\r\n1\r\n\r\n2,3,4\n", "n", ',')
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	if keys := sheet.Rows[0].Keys(); len(keys) != 1 || keys[0] != "a" {
		t.Errorf("short row keys = %v, want [a]", keys)
	}
	if keys := sheet.Rows[1].Keys(); len(keys) != 2 {
		t.Errorf("long row keys = %v, want [a b]", keys)
	}
}

func TestDecodeStrictMalformed(t *testing.T) {
	_, err := Decode([]byte("a,b\n\"bad\"quote,1\n"), &common.ConversionConfig{Name: "x"})
	if !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "line") {
		t.Errorf("error should carry position context: %v", err)
	}
}

func TestDecodeStrictSkipsEmptyLines(t *testing.T) {
	src := "\xef\xbb\xbfid,name\n\n1,Ann\n,\n2\n"
	sheet, err := Decode([]byte(src), &common.ConversionConfig{Name: "x"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	if cols := sheet.Columns(); cols[0] != "id" {
		t.Errorf("BOM not stripped from header: %q", cols[0])
	}
	if got := get(t, sheet.Rows[1], "name"); got != "" {
		t.Errorf("missing column should be empty, got %q", got)
	}
}

func TestDecodeStrictDuplicateHeaders(t *testing.T) {
	sheet, err := Decode([]byte("a,a,b,\n1,2,3,4\n"), &common.ConversionConfig{Name: "d"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []string{"a", "a_1", "b", "__EMPTY"}
	if got := sheet.Columns(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	row := sheet.Rows[0]
	for i, col := range want {
		if got := get(t, row, col); got != string(rune('1'+i)) {
			t.Errorf("%s = %q, want %q", col, got, string(rune('1'+i)))
		}
	}
}

func TestDecodeNaiveDuplicateHeaders(t *testing.T) {
	sheet := DecodeNaive("a,a,b\n1,2,3\n", "d", ',')
	if got := sheet.Columns(); strings.Join(got, ",") != "a,a_1,b" {
		t.Fatalf("columns = %v, want [a a_1 b]", got)
	}
	if got := get(t, sheet.Rows[0], "a"); got != "1" {
		t.Errorf("a = %q, want 1", got)
	}
}

func TestDecodeStrictDetectsDelimiter(t *testing.T) {
	sheet, err := Decode([]byte("a;b\n1;2\n"), &common.ConversionConfig{Name: "x", DetectDelim: true})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := get(t, sheet.Rows[0], "b"); got != "2" {
		t.Errorf("b = %q, want 2", got)
	}
}

func TestEncodeNaive(t *testing.T) {
	sheet := &common.Sheet{Name: "s", Rows: []*common.Row{
		common.RowOf("a", "1", "b", "x,y"),
		common.RowOf("a", "2"),
	}}
	got, err := Encode(sheet)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "a,b\n1,x,y\n2,"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}

	empty, err := Encode(&common.Sheet{Name: "e"})
	if err != nil || empty != "" {
		t.Errorf("Encode(empty) = %q, %v", empty, err)
	}
}

func TestEncodeRejectsNested(t *testing.T) {
	sheet := &common.Sheet{Name: "s", Rows: []*common.Row{
		common.RowOf("a", common.RowOf("b", "c")),
	}}
	if _, err := Encode(sheet); !errors.Is(err, common.ErrUnsupportedShape) {
		t.Errorf("expected ErrUnsupportedShape, got %v", err)
	}
}

func TestEncodeQuoted(t *testing.T) {
	sheet := &common.Sheet{Name: "s", Rows: []*common.Row{
		common.RowOf("name", "O'Brien", "city", "New York, NY"),
	}}
	got, err := EncodeQuoted(sheet)
	if err != nil {
		t.Fatalf("EncodeQuoted failed: %v", err)
	}
	want := "name,city\nO'Brien,\"New York, NY\"\n"
	if got != want {
		t.Errorf("EncodeQuoted = %q, want %q", got, want)
	}
}

func TestDriverPerSheet(t *testing.T) {
	ds := &common.Dataset{
		Shape: common.ShapeWorkbook,
		Workbook: common.NewWorkbook(
			&common.Sheet{Name: "Sheet1", Rows: []*common.Row{common.RowOf("a", "1")}},
			&common.Sheet{Name: "Sheet2", Rows: []*common.Row{common.RowOf("a", "2")}},
		),
	}
	d := &csvDriver{}

	arts, err := d.Encode(ds, &common.ConversionConfig{Name: "book", PerSheet: true})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(arts) != 2 || arts[0].Name != "book-Sheet1.csv" || arts[1].Name != "book-Sheet2.csv" {
		t.Fatalf("unexpected artifacts: %+v", arts)
	}

	if _, err := d.Encode(ds, &common.ConversionConfig{Name: "book"}); !errors.Is(err, common.ErrUnsupportedShape) {
		t.Errorf("multi-sheet single CSV should be unsupported, got %v", err)
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected rune
	}{
		{"Empty", "", ','},
		{"Comma", "a,b,c", ','},
		{"Tab", "a\tb\tc", '\t'},
		{"Semicolon", "a;b;c", ';'},
		{"Pipe", "a|b|c", '|'},
		{"MixedPreferComma", "a,b;c", ','},
		{"NoDelimiter", "abc", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter(tt.line); got != tt.expected {
				t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.line, got, tt.expected)
			}
		})
	}
}

func TestValidDelimiter(t *testing.T) {
	for _, r := range []rune{',', ';', '\t', '|', ' '} {
		if !ValidDelimiter(r) {
			t.Errorf("ValidDelimiter(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{0, '"', '\r', '\n', utf8.RuneError} {
		if ValidDelimiter(r) {
			t.Errorf("ValidDelimiter(%q) = true, want false", r)
		}
	}
}
