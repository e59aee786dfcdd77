package analyzer

import (
	"context"
	"strings"

	"github.com/vitebski/project-snapshot/internal/connector"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// MySQLIntrospector lists tables and columns with MySQL's SHOW statements
type MySQLIntrospector struct {
	DB     *connector.DatabaseConnector
	Params models.NetworkParams
}

// NewMySQLIntrospector creates a new MySQL introspector
func NewMySQLIntrospector(db *connector.DatabaseConnector, params models.NetworkParams) *MySQLIntrospector {
	return &MySQLIntrospector{DB: db, Params: params}
}

func (mi *MySQLIntrospector) Kind() models.BackendKind { return models.MySQLBackend }

func (mi *MySQLIntrospector) Header() string {
	return "MySQL Database on " + mi.Params.Host + " - " + mi.Params.Database
}

func (mi *MySQLIntrospector) ErrorContext() string {
	return "Error connecting/reading MySQL database"
}

func (mi *MySQLIntrospector) Validate() error {
	return validateNetworkParams(mi.Params)
}

func (mi *MySQLIntrospector) Connect(ctx context.Context) error {
	return mi.DB.Connect(ctx)
}

func (mi *MySQLIntrospector) ListTables(ctx context.Context) ([]string, error) {
	return mi.DB.QueryFirstColumn(ctx, "SHOW TABLES")
}

func (mi *MySQLIntrospector) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := mi.DB.ExecuteQuery(ctx, "SHOW COLUMNS FROM "+quoteMySQLIdentifier(table))
	if err != nil {
		return nil, err
	}
	return columnsFromRows(rows, "Field", "Type"), nil
}

func (mi *MySQLIntrospector) Close() {
	mi.DB.Disconnect()
}

// SHOW statements take no placeholders, so table names are backtick-quoted
func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
