// Package xml renders tabular and nested data as XML text.
//
// Three layouts are provided. Tabular and nested output write values
// unescaped; flat output escapes text with encoding/xml.
package xml

import (
	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
)

const (
	format      = "xml"
	ContentType = "application/xml"

	workbookTag = "workbook"
	sheetTag    = "sheet"
	rowTag      = "row"
	itemTag     = "item"
	defaultRoot = "root"
	emptyTag    = "_"
)

func init() {
	converters.RegisterEncoder(format, &xmlDriver{})
}

type xmlDriver struct{}

func (d *xmlDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	var text string
	switch config.XMLStrategy {
	case common.XMLNested:
		text = EncodeNested(treeOf(ds), config.Name)
	case common.XMLFlat:
		if ds.Workbook == nil || len(ds.Workbook.Sheets) != 1 {
			return nil, common.Unsupported(format, "flat layout needs exactly one sheet (%s)", ds.Shape)
		}
		text = EncodeFlat(ds.Workbook.Sheets[0], config.Name)
	default:
		if ds.Workbook == nil {
			return nil, common.Unsupported(format, "input is not tabular (%s)", ds.Shape)
		}
		text = EncodeTabular(ds.Workbook)
	}
	return []common.Artifact{{Name: config.Name + ".xml", Data: []byte(text), ContentType: ContentType}}, nil
}

// treeOf returns the raw tree of a JSON source, or rebuilds one from the
// workbook of any other source.
func treeOf(ds *common.Dataset) interface{} {
	if ds.Tree != nil || ds.Workbook == nil {
		return ds.Tree
	}
	toArray := func(s *common.Sheet) []interface{} {
		arr := make([]interface{}, len(s.Rows))
		for i, r := range s.Rows {
			arr[i] = r
		}
		return arr
	}
	if ds.Shape == common.ShapeTable && len(ds.Workbook.Sheets) == 1 {
		return toArray(ds.Workbook.Sheets[0])
	}
	obj := common.NewRow(len(ds.Workbook.Sheets))
	for _, s := range ds.Workbook.Sheets {
		obj.Set(s.Name, toArray(s))
	}
	return obj
}

// EncodeTabular wraps every sheet in one <workbook> element. Each sheet is
// a <sheet name=".."> element with one <row> per record, and each column a
// child named after the raw column key. Nothing is escaped.
func EncodeTabular(wb *common.Workbook) string {
	b := NewBuilder(false)
	b.Open(workbookTag)
	for _, sheet := range wb.Unique() {
		b.Open(sheetTag, Attr{Name: "name", Value: sheet.Name})
		for _, row := range sheet.Rows {
			b.Open(rowTag)
			for _, key := range row.Keys() {
				v, _ := row.Get(key)
				b.Leaf(key, common.CellText(v))
			}
			b.Close(rowTag)
		}
		b.Close(sheetTag)
	}
	b.Close(workbookTag)
	return b.String()
}

// EncodeNested walks an arbitrary decoded JSON value. The root element is
// named after name; object keys become child elements through
// common.SanitizeTag; each array item repeats its parent's tag, with
// top-level items tagged <item>. Nothing is escaped.
func EncodeNested(value interface{}, name string) string {
	root := tagName(name, defaultRoot)
	b := NewBuilder(false)
	switch v := value.(type) {
	case []interface{}:
		b.Open(root)
		for _, item := range v {
			writeNested(b, itemTag, item)
		}
		b.Close(root)
	default:
		writeNested(b, root, v)
	}
	return b.String()
}

func writeNested(b *Builder, tag string, value interface{}) {
	switch v := value.(type) {
	case *common.Row:
		b.Open(tag)
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			writeNested(b, tagName(key, emptyTag), child)
		}
		b.Close(tag)
	case []interface{}:
		for _, item := range v {
			writeNested(b, tag, item)
		}
	default:
		b.Leaf(tag, common.CellText(v))
	}
}

// EncodeFlat writes one root element named after name with an <item> per
// record. Column elements use the raw key of the first row's columns and
// text is escaped.
func EncodeFlat(sheet *common.Sheet, name string) string {
	root := tagName(name, defaultRoot)
	columns := sheet.Columns()

	b := NewBuilder(true)
	b.Open(root)
	for _, row := range sheet.Rows {
		b.Open(itemTag)
		for _, col := range columns {
			v, _ := row.Get(col)
			b.Leaf(col, common.CellText(v))
		}
		b.Close(itemTag)
	}
	b.Close(root)
	return b.String()
}

func tagName(raw, fallback string) string {
	if tag := common.SanitizeTag(raw); tag != "" {
		return tag
	}
	return fallback
}
