package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/pkg/models"
)

const (
	SQLiteDriver   = "sqlite3"
	MySQLDriver    = "mysql"
	PostgresDriver = "pgx"

	DefaultMySQLPort    = "3306"
	DefaultPostgresPort = "5432"
)

// ErrBackendUnavailable is returned when the driver for a backend is not
// compiled into the binary
var ErrBackendUnavailable = errors.New("backend unavailable")

// DatabaseConnector handles database connection and query execution
type DatabaseConnector struct {
	Driver   string
	DSN      string
	Database string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector for a registered driver
func NewDatabaseConnector(driver, dsn, database string, logger *logrus.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Driver:   driver,
		DSN:      dsn,
		Database: database,
		Logger:   logger,
	}
}

// sqliteURIEscaper escapes the characters SQLite URIs treat as delimiters
var sqliteURIEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// SQLiteURI builds a file: URI for path opened with the given SQLite mode
// (ro, rw, rwc)
func SQLiteURI(path, mode string) string {
	u := url.URL{
		Scheme:   "file",
		Opaque:   sqliteURIEscaper.Replace(path),
		RawQuery: "mode=" + mode,
	}
	return u.String()
}

// NewSQLiteConnector opens the database file read-only so a wrong path is
// reported instead of silently creating an empty database
func NewSQLiteConnector(params models.SQLiteParams, logger *logrus.Logger) *DatabaseConnector {
	return NewDatabaseConnector(SQLiteDriver, SQLiteURI(params.FilePath, "ro"), params.FilePath, logger)
}

// NewMySQLConnector creates a connector for a MySQL server
func NewMySQLConnector(params models.NetworkParams, logger *logrus.Logger) *DatabaseConnector {
	if params.Port == "" {
		params.Port = DefaultMySQLPort
	}
	return NewDatabaseConnector(MySQLDriver, mysqlDSN(params), params.Database, logger)
}

// NewPostgresConnector creates a connector for a PostgreSQL server
func NewPostgresConnector(params models.NetworkParams, logger *logrus.Logger) *DatabaseConnector {
	if params.Port == "" {
		params.Port = DefaultPostgresPort
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(params.User, params.Password),
		Host:   net.JoinHostPort(params.Host, params.Port),
		Path:   "/" + params.Database,
	}
	return NewDatabaseConnector(PostgresDriver, u.String(), params.Database, logger)
}

// DriverAvailable reports whether a database/sql driver is registered
func DriverAvailable(driver string) bool {
	return slices.Contains(sql.Drivers(), driver)
}

// Connect establishes a connection to the database. A handle that was
// injected beforehand is only pinged.
func (dc *DatabaseConnector) Connect(ctx context.Context) error {
	if dc.DB == nil {
		if !DriverAvailable(dc.Driver) {
			return fmt.Errorf("%w: driver %q is not compiled into this build", ErrBackendUnavailable, dc.Driver)
		}

		db, err := sql.Open(dc.Driver, dc.DSN)
		if err != nil {
			dc.Logger.Errorf("Error opening %s database: %v", dc.Driver, err)
			return err
		}
		dc.DB = db
	}

	// Test the connection
	if err := dc.DB.PingContext(ctx); err != nil {
		dc.Logger.Errorf("Error pinging %s database: %v", dc.Driver, err)
		return err
	}

	dc.Logger.Infof("Connected to %s database: %s", dc.Driver, dc.Database)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB != nil {
		err := dc.DB.Close()
		if err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Debugf("%s connection closed", dc.Driver)
		}
		dc.DB = nil
	}
}

// ExecuteQuery executes a SQL query and returns the rows keyed by column name
func (dc *DatabaseConnector) ExecuteQuery(ctx context.Context, query string, params ...interface{}) ([]map[string]interface{}, error) {
	columns, rows, err := dc.query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for _, values := range rows {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, nil
}

// QueryFirstColumn executes a SQL query and returns the first column of every
// row as a string, in the order the server returned them
func (dc *DatabaseConnector) QueryFirstColumn(ctx context.Context, query string, params ...interface{}) ([]string, error) {
	_, rows, err := dc.query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	var results []string
	for _, values := range rows {
		if len(values) == 0 {
			continue
		}
		results = append(results, AsString(values[0]))
	}
	return results, nil
}

func (dc *DatabaseConnector) query(ctx context.Context, query string, params ...interface{}) ([]string, [][]interface{}, error) {
	if dc.DB == nil {
		return nil, nil, fmt.Errorf("not connected to %s database", dc.Driver)
	}

	rows, err := dc.DB.QueryContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Errorf("Error getting columns: %v", err)
		return nil, nil, err
	}

	var results [][]interface{}
	for rows.Next() {
		// Create a slice of interface{} to hold the values
		values := make([]interface{}, len(columns))
		// Create a slice of pointers to the values
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			dc.Logger.Errorf("Error scanning row: %v", err)
			return nil, nil, err
		}

		// Convert []byte to string for text fields
		for i, val := range values {
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		results = append(results, values)
	}

	if err := rows.Err(); err != nil {
		dc.Logger.Errorf("Error iterating rows: %v", err)
		return nil, nil, err
	}

	return columns, results, nil
}

// ExecuteStatement executes a SQL statement and returns the number of affected rows
func (dc *DatabaseConnector) ExecuteStatement(ctx context.Context, query string, params ...interface{}) (int64, error) {
	if dc.DB == nil {
		return 0, fmt.Errorf("not connected to %s database", dc.Driver)
	}

	result, err := dc.DB.ExecContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		dc.Logger.Errorf("Error getting affected rows: %v", err)
		return 0, err
	}

	return affected, nil
}

// AsString converts a scanned value to its textual form. NULL becomes "".
func AsString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
