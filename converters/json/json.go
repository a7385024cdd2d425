package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
)

const (
	format      = "json"
	ContentType = "application/json"
	indent      = "  "
)

func init() {
	converters.RegisterDecoder(format, &jsonDriver{})
	converters.RegisterEncoder(format, &jsonDriver{})
}

type jsonDriver struct{}

func (d *jsonDriver) Decode(src []byte, config *common.ConversionConfig) (*common.Dataset, error) {
	name := ""
	if config != nil {
		name = config.Name
	}
	return Decode(src, name)
}

// Encode writes a single sheet as an array and a workbook as an object of
// arrays keyed by sheet name. A non-tabular tree is written back as is.
func (d *jsonDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	var (
		text string
		err  error
	)
	switch {
	case ds.Shape == common.ShapeTable && ds.Workbook != nil && len(ds.Workbook.Sheets) == 1:
		text, err = EncodeSheetAsArray(ds.Workbook.Sheets[0])
	case ds.Workbook != nil:
		text, err = EncodeWorkbookAsMultiSheetObject(ds.Workbook)
	default:
		text, err = EncodeValue(ds.Tree)
	}
	if err != nil {
		return nil, err
	}
	return []common.Artifact{{Name: config.Name + ".json", Data: []byte(text), ContentType: ContentType}}, nil
}

// Decode parses JSON text and classifies its shape:
//   - a top-level array is one sheet named name (ShapeTable);
//   - a non-empty object whose values are all arrays is a workbook keyed by
//     sheet name (ShapeWorkbook);
//   - anything else is kept only as a tree (ShapeTree).
//
// Object key order is preserved and numbers are kept as json.Number.
func Decode(src []byte, name string) (*common.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, common.Malformed(format, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, common.Malformed(format, fmt.Errorf("unexpected data after top-level value"))
	}

	ds := &common.Dataset{Shape: common.ShapeTree, Tree: value}
	switch v := value.(type) {
	case []interface{}:
		ds.Shape = common.ShapeTable
		ds.Workbook = common.NewWorkbook(&common.Sheet{Name: name, Rows: records(v)})
	case *common.Row:
		if wb, ok := workbookOf(v); ok {
			ds.Shape = common.ShapeWorkbook
			ds.Workbook = wb
		}
	}
	return ds, nil
}

// workbookOf reports whether obj maps sheet names to arrays of records.
func workbookOf(obj *common.Row) (*common.Workbook, bool) {
	if obj.Len() == 0 {
		return nil, false
	}
	wb := common.NewWorkbook()
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		arr, ok := v.([]interface{})
		if !ok {
			return nil, false
		}
		wb.Sheets = append(wb.Sheets, &common.Sheet{Name: key, Rows: records(arr)})
	}
	return wb, true
}

// records turns array elements into rows. A non-object element becomes a
// single-column row {"value": element}.
func records(arr []interface{}) []*common.Row {
	rows := make([]*common.Row, 0, len(arr))
	for _, elem := range arr {
		if row, ok := elem.(*common.Row); ok {
			rows = append(rows, row)
			continue
		}
		rows = append(rows, common.RowOf("value", elem))
	}
	return rows
}

// decodeValue reads one JSON value token by token so that objects keep
// their key order.
func decodeValue(dec *json.Decoder) (interface{}, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}

	switch delim {
	case '[':
		arr := make([]interface{}, 0)
		for dec.More() {
			elem, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("expected closing ']': %w", err)
		}
		return arr, nil
	case '{':
		obj := common.NewRow(0)
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to read key: %w", err)
			}
			key, ok := keyToken.(string)
			if !ok {
				return nil, fmt.Errorf("expected string key")
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("failed to decode value for key %s: %w", key, err)
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("expected closing '}': %w", err)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unexpected delimiter: %v", delim)
}

// EncodeSheetAsArray writes the sheet's rows as a JSON array indented with
// two spaces.
func EncodeSheetAsArray(sheet *common.Sheet) (string, error) {
	rows := sheet.Rows
	if rows == nil {
		rows = []*common.Row{}
	}
	return EncodeValue(rows)
}

// EncodeWorkbookAsMultiSheetObject writes one top-level key per sheet whose
// value is the sheet's array of row objects.
func EncodeWorkbookAsMultiSheetObject(wb *common.Workbook) (string, error) {
	return EncodeValue(wb)
}

// EncodeValue writes any decoded value with two-space indentation.
func EncodeValue(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return "", common.Encoding(format, err)
	}
	return string(b), nil
}
