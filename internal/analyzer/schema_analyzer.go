package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/internal/connector"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// ErrNoDatabase is returned by New for a selection without a backend
var ErrNoDatabase = errors.New("no database selected")

// ErrIncompleteSelection is reported when a selection lacks what its backend
// needs to connect
var ErrIncompleteSelection = errors.New("incomplete connection parameters")

// Introspector is the capability set every backend provides
type Introspector interface {
	Kind() models.BackendKind
	// Header is the first line of the backend's report
	Header() string
	// ErrorContext prefixes the error line that replaces the table listing
	ErrorContext() string
	// Validate checks the selection before any connection attempt
	Validate() error
	Connect(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]models.Column, error)
	Close()
}

// SchemaAnalyzer lists the tables and columns of one database
type SchemaAnalyzer struct {
	Introspector Introspector
	Tables       []string
	TableColumns map[string][]models.Column
	Logger       *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(introspector Introspector, logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		Introspector: introspector,
		TableColumns: make(map[string][]models.Column),
		Logger:       logger,
	}
}

// New builds the analyzer matching the selection's backend
func New(sel models.DatabaseSelection, logger *logrus.Logger) (*SchemaAnalyzer, error) {
	var introspector Introspector
	switch sel.Kind {
	case models.SQLiteBackend:
		introspector = NewSQLiteIntrospector(connector.NewSQLiteConnector(sel.SQLite, logger), sel.SQLite)
	case models.MySQLBackend:
		introspector = NewMySQLIntrospector(connector.NewMySQLConnector(sel.Network, logger), sel.Network)
	case models.PostgresBackend:
		introspector = NewPostgresIntrospector(connector.NewPostgresConnector(sel.Network, logger), sel.Network)
	case models.NoBackend:
		return nil, ErrNoDatabase
	default:
		return nil, fmt.Errorf("unsupported backend kind %d", sel.Kind)
	}
	return NewSchemaAnalyzer(introspector, logger), nil
}

// AnalyzeSchema connects, lists every table and its columns, and disconnects.
// The first failure discards everything gathered so far.
func (sa *SchemaAnalyzer) AnalyzeSchema(ctx context.Context) error {
	sa.Tables = nil
	sa.TableColumns = make(map[string][]models.Column)

	defer sa.Introspector.Close()

	if err := sa.Introspector.Validate(); err != nil {
		sa.Logger.Warnf("Skipping %s introspection: %v", sa.Introspector.Kind(), err)
		return err
	}
	if err := sa.Introspector.Connect(ctx); err != nil {
		return err
	}

	tables, err := sa.Introspector.ListTables(ctx)
	if err != nil {
		sa.Logger.Errorf("Error getting tables: %v", err)
		return err
	}

	columnsByTable := make(map[string][]models.Column, len(tables))
	for _, table := range tables {
		columns, err := sa.Introspector.ListColumns(ctx, table)
		if err != nil {
			sa.Logger.Errorf("Error getting columns for table %s: %v", table, err)
			return err
		}
		columnsByTable[table] = columns
	}

	sa.Tables = tables
	sa.TableColumns = columnsByTable
	sa.Logger.Debugf("Analyzed %d tables in %s database", len(tables), sa.Introspector.Kind())
	return nil
}

// Report runs the analysis and renders its outcome. Errors end up in the
// report, never in the return value.
func (sa *SchemaAnalyzer) Report(ctx context.Context) models.DatabaseReport {
	report := models.DatabaseReport{
		Kind:         sa.Introspector.Kind(),
		Header:       sa.Introspector.Header(),
		ErrorContext: sa.Introspector.ErrorContext(),
	}

	if err := sa.AnalyzeSchema(ctx); err != nil {
		report.Err = err
		return report
	}

	for _, table := range sa.Tables {
		report.Tables = append(report.Tables, models.TableSchema{
			Name:    table,
			Columns: sa.TableColumns[table],
		})
	}
	return report
}

// validateNetworkParams names every field a networked backend cannot connect
// without. The password may be empty.
func validateNetworkParams(params models.NetworkParams) error {
	var missing []string
	if params.Host == "" {
		missing = append(missing, "host")
	}
	if params.User == "" {
		missing = append(missing, "user")
	}
	if params.Database == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteSelection, strings.Join(missing, ", "))
	}
	return nil
}

// columnsFromRows maps query rows to columns using the given field names
func columnsFromRows(rows []map[string]interface{}, nameField, typeField string) []models.Column {
	columns := make([]models.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, models.Column{
			Name: connector.AsString(row[nameField]),
			Type: connector.AsString(row[typeField]),
		})
	}
	return columns
}
