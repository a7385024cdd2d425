package html

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"

	"golang.org/x/net/html"
)

const format = "html"

func init() {
	converters.RegisterDecoder(format, &htmlDriver{})
}

type htmlDriver struct{}

// Decode turns every <table> of the document into a sheet. A table's id
// attribute names its sheet; unnamed tables become table0, table1, ...
// The first <tr> holds the headers.
func (d *htmlDriver) Decode(src []byte, config *common.ConversionConfig) (*common.Dataset, error) {
	wb, err := Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	return &common.Dataset{Shape: common.ShapeWorkbook, Workbook: wb}, nil
}

type tableData struct {
	rawName string
	headers []string
	rows    [][]string
}

// Decode parses an HTML document into a workbook with one sheet per table.
func Decode(r io.Reader) (*common.Workbook, error) {
	tables, err := parseHTML(r)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, common.Empty(format, "no tables found in HTML")
	}

	wb := common.NewWorkbook()
	for i, t := range tables {
		name := t.rawName
		if name == "" {
			name = fmt.Sprintf("table%d", i)
		}
		sheet := &common.Sheet{Name: name}
		headers := common.HeaderNames(t.headers)
		for _, cells := range t.rows {
			row := common.NewRow(len(headers))
			for c, h := range headers {
				if c < len(cells) {
					row.Set(h, cells[c])
				} else {
					row.Set(h, "")
				}
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func parseHTML(reader io.Reader) ([]tableData, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, common.Malformed(format, fmt.Errorf("failed to parse HTML: %w", err))
	}

	var tables []tableData
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, extractTable(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return tables, nil
}

func extractTable(n *html.Node) tableData {
	var name string
	for _, attr := range n.Attr {
		if attr.Key == "id" {
			name = attr.Val
			break
		}
	}

	var rows [][]string
	var visitRows func(*html.Node)
	visitRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, extractText(c))
				}
			}
			rows = append(rows, row)
			return
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			// Nested tables are sheets of their own.
			if c.Type == html.ElementNode && c.Data == "table" {
				continue
			}
			visitRows(c)
		}
	}
	visitRows(n)

	if len(rows) == 0 {
		return tableData{rawName: name}
	}
	return tableData{
		rawName: name,
		headers: rows[0],
		rows:    rows[1:],
	}
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	extractTextRecursive(n, &sb)
	return strings.TrimSpace(sb.String())
}

func extractTextRecursive(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextRecursive(c, sb)
	}
}
