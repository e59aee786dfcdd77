package analyzer

import (
	"context"
	"fmt"

	"github.com/vitebski/project-snapshot/internal/connector"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// SQLiteIntrospector reads the catalog of an embedded SQLite database file
type SQLiteIntrospector struct {
	DB     *connector.DatabaseConnector
	Params models.SQLiteParams
}

// NewSQLiteIntrospector creates a new SQLite introspector
func NewSQLiteIntrospector(db *connector.DatabaseConnector, params models.SQLiteParams) *SQLiteIntrospector {
	return &SQLiteIntrospector{DB: db, Params: params}
}

func (si *SQLiteIntrospector) Kind() models.BackendKind { return models.SQLiteBackend }

func (si *SQLiteIntrospector) Header() string {
	return "SQLite Database: " + si.Params.FilePath
}

func (si *SQLiteIntrospector) ErrorContext() string {
	return "Error reading SQLite database"
}

func (si *SQLiteIntrospector) Validate() error {
	if si.Params.FilePath == "" {
		return fmt.Errorf("%w: missing database file", ErrIncompleteSelection)
	}
	return nil
}

func (si *SQLiteIntrospector) Connect(ctx context.Context) error {
	return si.DB.Connect(ctx)
}

// ListTables returns user tables in catalog order. Internal sqlite_* tables
// are left out.
func (si *SQLiteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	return si.DB.QueryFirstColumn(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
	`)
}

// ListColumns returns the declared columns of a table in cid order
func (si *SQLiteIntrospector) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := si.DB.ExecuteQuery(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	return columnsFromRows(rows, "name", "type"), nil
}

func (si *SQLiteIntrospector) Close() {
	si.DB.Disconnect()
}
