package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
)

const format = "csv"

func init() {
	converters.RegisterDecoder(format, &csvDriver{})
	converters.RegisterEncoder(format, &csvDriver{})
}

type csvDriver struct{}

func (d *csvDriver) Decode(src []byte, config *common.ConversionConfig) (*common.Dataset, error) {
	sheet, err := Decode(src, config)
	if err != nil {
		return nil, err
	}
	return &common.Dataset{Shape: common.ShapeTable, Workbook: common.NewWorkbook(sheet)}, nil
}

// Encode writes one naive CSV file, or one quoted CSV file per sheet when
// config.PerSheet is set.
func (d *csvDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	if ds.Workbook == nil {
		return nil, common.Unsupported(format, "input is not tabular (%s)", ds.Shape)
	}

	if config.PerSheet {
		sheets := ds.Workbook.Unique()
		artifacts := make([]common.Artifact, 0, len(sheets))
		for _, sheet := range sheets {
			text, err := EncodeQuoted(sheet)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, common.Artifact{
				Name:        common.FileComponent(config.Name+"-"+sheet.Name) + ".csv",
				Data:        []byte(text),
				ContentType: "text/csv",
			})
		}
		return artifacts, nil
	}

	if ds.Shape != common.ShapeTable || len(ds.Workbook.Sheets) != 1 {
		return nil, common.Unsupported(format, "expected a single array of records, got %d sheets", len(ds.Workbook.Sheets))
	}
	text, err := Encode(ds.Workbook.Sheets[0])
	if err != nil {
		return nil, err
	}
	return []common.Artifact{{
		Name:        config.Name + ".csv",
		Data:        []byte(text),
		ContentType: "text/csv",
	}}, nil
}

// Decode parses delimited text with a header row into a sheet named after
// config.Name. The parse mode is taken from config.CSVMode.
func Decode(src []byte, config *common.ConversionConfig) (*common.Sheet, error) {
	if config == nil {
		config = &common.ConversionConfig{}
	}
	if config.CSVMode == common.CSVNaive {
		return DecodeNaive(string(src), config.Name, config.Comma()), nil
	}
	return DecodeStrict(src, config)
}

// DecodeNaive splits text on '\n' and every line on comma, with no quote or
// escape handling. A quoted field holding a comma is split in two: this is
// a known limitation of the mode, kept on purpose. Empty lines are skipped
// and missing trailing fields leave the key unset. Header names go through
// common.HeaderNames. It never fails.
func DecodeNaive(text, name string, comma rune) *common.Sheet {
	sheet := &common.Sheet{Name: name}
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSuffix(lines[0], "\r") == "" {
		return sheet
	}

	headers := common.HeaderNames(SplitNaive(lines[0], comma))
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		values := SplitNaive(line, comma)
		row := common.NewRow(len(headers))
		for i, h := range headers {
			if i < len(values) {
				row.Set(h, values[i])
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// SplitNaive splits one line on the delimiter.
func SplitNaive(line string, comma rune) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), string(comma))
}

// DecodeStrict parses RFC 4180 CSV. Quoted fields may hold delimiters and
// newlines. Lines whose fields are all empty are skipped. Short records get
// "" for the missing columns and extra fields are dropped. Empty and
// repeated header names are made unique with common.HeaderNames.
func DecodeStrict(src []byte, config *common.ConversionConfig) (*common.Sheet, error) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))

	comma := config.Comma()
	if config.DetectDelim {
		first := src
		if idx := bytes.IndexAny(first, "\r\n"); idx != -1 {
			first = first[:idx]
		}
		comma = DetectDelimiter(string(first))
	}

	reader := csv.NewReader(bytes.NewReader(src))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	sheet := &common.Sheet{Name: config.Name}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return sheet, nil
		}
		return nil, common.Malformed(format, err)
	}
	headers = common.HeaderNames(headers)

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// *csv.ParseError carries the line and column.
			return nil, common.Malformed(format, err)
		}
		if blank(record) {
			continue
		}

		row := common.NewRow(len(headers))
		for i, h := range headers {
			if i < len(record) {
				row.Set(h, record[i])
			} else {
				row.Set(h, "")
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}

// Encode writes a header row from the first row's keys followed by one line
// per record. Fields are joined with literal commas and are not quoted or
// escaped, mirroring DecodeNaive. A sheet with no rows encodes to "".
func Encode(sheet *common.Sheet) (string, error) {
	columns := sheet.Columns()
	if err := common.CheckFlat(format, sheet, columns); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(sheet.Rows)+1)
	if len(columns) > 0 {
		lines = append(lines, strings.Join(columns, ","))
	}
	fields := make([]string, len(columns))
	for _, row := range sheet.Rows {
		for i, col := range columns {
			v, _ := row.Get(col)
			fields[i] = common.CellText(v)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n"), nil
}

// EncodeQuoted writes the sheet as RFC 4180 CSV, quoting fields that hold
// commas, quotes or newlines.
func EncodeQuoted(sheet *common.Sheet) (string, error) {
	columns := sheet.Columns()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(columns) > 0 {
		if err := w.Write(columns); err != nil {
			return "", common.Encoding(format, err)
		}
	}
	fields := make([]string, len(columns))
	for _, row := range sheet.Rows {
		for i, col := range columns {
			v, _ := row.Get(col)
			fields[i] = common.CellText(v)
		}
		if err := w.Write(fields); err != nil {
			return "", common.Encoding(format, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", common.Encoding(format, err)
	}
	return buf.String(), nil
}

// ValidDelimiter reports whether r can separate fields in strict mode.
func ValidDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// DetectDelimiter attempts to detect the delimiter from a raw line of text.
// It checks common delimiters and returns the one that produces the most fields.
// Defaults to comma if line is empty or no clear winner.
func DetectDelimiter(line string) rune {
	if line == "" {
		return ','
	}

	delimiters := []rune{',', '\t', ';', '|'}
	maxCount := 0
	winner := ','

	for _, delim := range delimiters {
		count := strings.Count(line, string(delim))
		if count > maxCount {
			maxCount = count
			winner = delim
		}
	}
	return winner
}
