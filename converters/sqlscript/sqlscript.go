// Package sqlscript emits SQL text: an optional CREATE TABLE followed by one
// INSERT statement per record.
package sqlscript

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
)

const (
	format      = "sql"
	ContentType = "application/sql"
)

func init() {
	converters.RegisterEncoder(format, &sqlDriver{})
}

// Policy selects how statements are written.
type Policy struct {
	Quote       common.IdentQuote // identifier quoting, bare or backticks
	CreateTable bool              // emit CREATE TABLE before the inserts
}

// PolicyFor returns the policy carried by a conversion config.
func PolicyFor(config *common.ConversionConfig) Policy {
	return Policy{Quote: config.SQLQuote, CreateTable: config.SQLCreateTable}
}

type sqlDriver struct{}

// Encode writes every sheet of the dataset into one script, sheets
// separated by a blank line.
func (d *sqlDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	if ds.Workbook == nil {
		return nil, common.Unsupported(format, "input is not an array of records (%s)", ds.Shape)
	}
	policy := PolicyFor(config)

	var parts []string
	for _, sheet := range ds.Workbook.Unique() {
		text, err := policy.Emit(sheet)
		if err != nil {
			return nil, err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return []common.Artifact{{
		Name:        config.Name + ".sql",
		Data:        []byte(strings.Join(parts, "\n")),
		ContentType: ContentType,
	}}, nil
}

// Emit writes the sheet according to the policy.
func (p Policy) Emit(sheet *common.Sheet) (string, error) {
	if p.CreateTable {
		return EmitCreateAndInserts(sheet, p.Quote)
	}
	return EmitInsertsOnly(sheet, p.Quote)
}

// EmitInsertsOnly writes one INSERT statement per row, one per line. The
// column list is the first row's keys; a key missing from a later row is
// written as NULL. A sheet with no rows yields "".
func EmitInsertsOnly(sheet *common.Sheet, quote common.IdentQuote) (string, error) {
	if len(sheet.Rows) == 0 {
		return "", nil
	}
	columns := sheet.Columns()
	if err := common.CheckFlat(format, sheet, columns); err != nil {
		return "", err
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = Ident(col, quote)
	}
	prefix := "INSERT INTO " + Ident(sheet.Name, quote) + " (" + strings.Join(quoted, ", ") + ") VALUES ("

	var sb strings.Builder
	values := make([]string, len(columns))
	for _, row := range sheet.Rows {
		for i, col := range columns {
			v, ok := row.Get(col)
			if !ok {
				v = nil
			}
			values[i] = Literal(v)
		}
		sb.WriteString(prefix)
		sb.WriteString(strings.Join(values, ", "))
		sb.WriteString(");\n")
	}
	return sb.String(), nil
}

// EmitCreateAndInserts writes CREATE TABLE with every column declared TEXT,
// a blank line, then the same statements as EmitInsertsOnly. A sheet with
// no rows has no column list and fails with ErrEmptyInput.
func EmitCreateAndInserts(sheet *common.Sheet, quote common.IdentQuote) (string, error) {
	if len(sheet.Rows) == 0 {
		return "", common.Empty(format, "sheet %q has no rows to derive columns from", sheet.Name)
	}

	inserts, err := EmitInsertsOnly(sheet, quote)
	if err != nil {
		return "", err
	}

	columns := sheet.Columns()
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = Ident(col, quote)
	}
	create := common.GenCreateTableSQL(Ident(sheet.Name, quote), quoted)
	return create + ";\n\n" + inserts, nil
}

// Ident writes an identifier verbatim or wrapped in backticks.
func Ident(name string, quote common.IdentQuote) string {
	if quote == common.QuoteBacktick {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return name
}

// Literal writes a cell value as a SQL literal. Strings are single-quoted
// with embedded quotes doubled; numbers and booleans are unquoted and nil
// is NULL.
func Literal(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64, int, int64:
		return common.CellText(val)
	default:
		return "'" + strings.ReplaceAll(common.CellText(val), "'", "''") + "'"
	}
}
