package excel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
	"github.com/darianmavgo/tabconv/converters/csv"

	"github.com/xuri/excelize/v2"
)

const (
	format      = "excel"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func init() {
	converters.RegisterDecoder(format, &excelDriver{})
	converters.RegisterEncoder(format, &excelDriver{})
}

type excelDriver struct{}

func (d *excelDriver) Decode(src []byte, config *common.ConversionConfig) (*common.Dataset, error) {
	wb, err := Decode(src)
	if err != nil {
		return nil, err
	}
	return &common.Dataset{Shape: common.ShapeWorkbook, Workbook: wb}, nil
}

func (d *excelDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	if ds.Workbook == nil {
		return nil, common.Unsupported(format, "input is not tabular (%s)", ds.Shape)
	}
	data, err := Encode(ds.Workbook)
	if err != nil {
		return nil, err
	}
	return []common.Artifact{{Name: config.Name + ".xlsx", Data: data, ContentType: ContentType}}, nil
}

// Decode reads every sheet of an xlsx workbook. The first row holding any
// value is the header row; each later non-blank row becomes a record keyed
// by those headers. Cells stored as numbers decode to json.Number and
// boolean cells to bool; everything else is the formatted cell text.
func Decode(src []byte) (*common.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(src))
	if err != nil {
		return nil, common.Malformed(format, fmt.Errorf("failed to open Excel stream: %w", err))
	}
	defer f.Close()

	wb := common.NewWorkbook()
	for _, sheetName := range f.GetSheetList() {
		sheet, err := decodeSheet(f, sheetName)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func decodeSheet(f *excelize.File, sheetName string) (*common.Sheet, error) {
	sheet := &common.Sheet{Name: sheetName}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, common.Malformed(format, fmt.Errorf("failed to get rows iterator for sheet %s: %w", sheetName, err))
	}
	defer rows.Close()

	var headers []string
	for rowNum := 1; rows.Next(); rowNum++ {
		cols, err := rows.Columns()
		if err != nil {
			return nil, common.Malformed(format, fmt.Errorf("failed to read row %d of sheet %s: %w", rowNum, sheetName, err))
		}
		if headers == nil {
			// Blank rows before the header are skipped.
			if !blank(cols) {
				headers = common.HeaderNames(cols)
			}
			continue
		}

		row := common.NewRow(len(headers))
		for i, h := range headers {
			if i >= len(cols) || cols[i] == "" {
				row.Set(h, "")
				continue
			}
			row.Set(h, cellValue(f, sheetName, i+1, rowNum, cols[i]))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// cellValue types the formatted text of one cell using its stored type.
func cellValue(f *excelize.File, sheetName string, col, row int, text string) interface{} {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return text
	}
	typ, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return text
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		// Number formats such as dates or currency keep their text.
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return json.Number(text)
		}
	case excelize.CellTypeBool:
		switch strings.ToUpper(text) {
		case "TRUE", "1":
			return true
		case "FALSE", "0":
			return false
		}
	}
	return text
}

func blank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

// Encode writes one worksheet per unique sheet name, in order. Each sheet
// gets a header row from its first row's keys followed by one row per
// record; a sheet without rows is written empty.
func Encode(wb *common.Workbook) ([]byte, error) {
	sheets := wb.Unique()
	if len(sheets) == 0 {
		return nil, common.Empty(format, "workbook has no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := SheetName(s.Name, i, used)
		if i == 0 {
			if name != defaultSheet {
				if err := f.SetSheetName(defaultSheet, name); err != nil {
					return nil, common.Encoding(format, fmt.Errorf("failed to rename sheet %q: %w", name, err))
				}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, common.Encoding(format, fmt.Errorf("failed to create sheet %q: %w", name, err))
		}
		if err := writeSheet(f, name, s); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.Encoding(format, err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, s *common.Sheet) error {
	columns := s.Columns()
	if len(columns) == 0 {
		return nil
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return common.Encoding(format, fmt.Errorf("failed to write header of sheet %q: %w", name, err))
	}

	for r, row := range s.Rows {
		values := make([]interface{}, len(columns))
		for i, col := range columns {
			v, _ := row.Get(col)
			values[i] = excelValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return common.Encoding(format, err)
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return common.Encoding(format, fmt.Errorf("failed to write row %d of sheet %q: %w", r+1, name, err))
		}
	}
	return nil
}

func excelValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if n, err := val.Float64(); err == nil {
			return n
		}
		return val.String()
	case string, bool, float64, int, int64:
		return val
	default:
		return common.CellText(val)
	}
}

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName makes name acceptable as a worksheet name: no :\/?*[]
// characters, no leading or trailing quote, at most 31 UTF-16 units, and
// not already in used. The result is recorded in used.
func SheetName(name string, idx int, used map[string]bool) string {
	name = strings.Trim(sheetNameReplacer.Replace(name), "'")
	name = truncateUTF16(name, maxSheetName)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", idx+1)
	}

	candidate := name
	for n := 1; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncateUTF16(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateUTF16(s string, limit int) string {
	units := 0
	for i, r := range s {
		units += len(utf16.Encode([]rune{r}))
		if units > limit {
			return s[:i]
		}
	}
	return s
}

// EncodeSheetAsDelimitedText renders one sheet as quoted CSV, the form used
// when a workbook is split into one CSV file per sheet.
func EncodeSheetAsDelimitedText(sheet *common.Sheet) (string, error) {
	return csv.EncodeQuoted(sheet)
}
