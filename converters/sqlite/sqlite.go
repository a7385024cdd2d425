package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"

	_ "modernc.org/sqlite"
)

const (
	format      = "sqlite"
	ContentType = "application/vnd.sqlite3"
)

func init() {
	converters.RegisterEncoder(format, &sqliteDriver{})
}

type sqliteDriver struct{}

func (d *sqliteDriver) Encode(ds *common.Dataset, config *common.ConversionConfig) ([]common.Artifact, error) {
	if ds.Workbook == nil {
		return nil, common.Unsupported(format, "input is not tabular (%s)", ds.Shape)
	}
	data, err := Encode(ds.Workbook, config)
	if err != nil {
		return nil, err
	}
	return []common.Artifact{{Name: config.Name + ".db", Data: data, ContentType: ContentType}}, nil
}

// Encode builds a SQLite database with one table per sheet and returns its
// bytes. Table and column names are made SQL-safe with
// common.GenTableNames / common.GenColumnNames and every column is TEXT.
// Sheets without rows have no column list and are skipped.
func Encode(wb *common.Workbook, config *common.ConversionConfig) ([]byte, error) {
	sheets := wb.Unique()

	tmpFile, err := os.CreateTemp(config.WorkDir, "tabconv-*.db")
	if err != nil {
		return nil, common.Encoding(format, fmt.Errorf("failed to create temp file: %w", err))
	}
	dbPath := tmpFile.Name()
	tmpFile.Close() // Close it so sql.Open can use it
	defer os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, common.Encoding(format, fmt.Errorf("failed to open database: %w", err))
	}
	// Limit to 1 connection to avoid locking issues and improve tx.Stmt performance
	db.SetMaxOpenConns(1)

	err = populateDB(db, sheets, batchSize(config))
	db.Close()
	if err != nil {
		return nil, common.Encoding(format, err)
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, common.Encoding(format, fmt.Errorf("failed to read database: %w", err))
	}
	return data, nil
}

func batchSize(config *common.ConversionConfig) int {
	if config == nil || config.BatchSize <= 0 {
		return common.DefaultBatchSize
	}
	return config.BatchSize
}

func populateDB(db *sql.DB, sheets []*common.Sheet, batch int) error {
	rawNames := make([]string, len(sheets))
	for i, s := range sheets {
		rawNames[i] = s.Name
	}
	tableNames := common.GenTableNames(rawNames)

	for i, sheet := range sheets {
		columns := sheet.Columns()
		if len(columns) == 0 {
			continue
		}
		if err := writeTable(db, tableNames[i], sheet, columns, batch); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(db *sql.DB, tableName string, sheet *common.Sheet, columns []string, batch int) error {
	headers := common.GenColumnNames(columns)

	if _, err := db.Exec(common.GenCreateTableSQL(tableName, headers)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	insertSQL, err := common.GenPreparedStmt(tableName, headers, common.InsertStmt)
	if err != nil {
		return fmt.Errorf("failed to generate insert statement for table %s: %w", tableName, err)
	}
	mainStmt, err := db.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement for table %s: %w", tableName, err)
	}
	defer mainStmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.Stmt(mainStmt)

	args := make([]interface{}, len(columns))
	for n, row := range sheet.Rows {
		for i, col := range columns {
			v, ok := row.Get(col)
			if !ok || v == nil {
				args[i] = nil
				continue
			}
			args[i] = common.CellText(v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d into %s: %w", n+1, tableName, err)
		}

		// Commit every batch rows.
		if (n+1)%batch == 0 {
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			if tx, err = db.Begin(); err != nil {
				return fmt.Errorf("failed to begin transaction: %w", err)
			}
			stmt = tx.Stmt(mainStmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
