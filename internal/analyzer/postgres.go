package analyzer

import (
	"context"

	"github.com/vitebski/project-snapshot/internal/connector"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// PostgresIntrospector lists the tables of the connection's current schema
// through information_schema
type PostgresIntrospector struct {
	DB     *connector.DatabaseConnector
	Params models.NetworkParams
}

// NewPostgresIntrospector creates a new PostgreSQL introspector
func NewPostgresIntrospector(db *connector.DatabaseConnector, params models.NetworkParams) *PostgresIntrospector {
	return &PostgresIntrospector{DB: db, Params: params}
}

func (pi *PostgresIntrospector) Kind() models.BackendKind { return models.PostgresBackend }

func (pi *PostgresIntrospector) Header() string {
	return "PostgreSQL Database on " + pi.Params.Host + " - " + pi.Params.Database
}

func (pi *PostgresIntrospector) ErrorContext() string {
	return "Error connecting/reading PostgreSQL database"
}

func (pi *PostgresIntrospector) Validate() error {
	return validateNetworkParams(pi.Params)
}

func (pi *PostgresIntrospector) Connect(ctx context.Context) error {
	return pi.DB.Connect(ctx)
}

// ListTables sorts by name because PostgreSQL has no stable catalog order
func (pi *PostgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	return pi.DB.QueryFirstColumn(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
}

func (pi *PostgresIntrospector) ListColumns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := pi.DB.ExecuteQuery(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	return columnsFromRows(rows, "column_name", "data_type"), nil
}

func (pi *PostgresIntrospector) Close() {
	pi.DB.Disconnect()
}
