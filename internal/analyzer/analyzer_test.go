package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/internal/connector"
	"github.com/vitebski/project-snapshot/pkg/models"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

// createSQLiteFixture writes a database file built from the given statements
func createSQLiteFixture(t *testing.T, statements ...string) string {
	t.Helper()
	return createNamedSQLiteFixture(t, "fixture.db", statements...)
}

func createNamedSQLiteFixture(t *testing.T, name string, statements ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), name)

	dsn := connector.SQLiteURI(path, "rwc")
	db := connector.NewDatabaseConnector(connector.SQLiteDriver, dsn, path, createTestLogger())
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("Failed to create fixture database: %v", err)
	}
	defer db.Disconnect()

	for _, stmt := range statements {
		if _, err := db.ExecuteStatement(ctx, stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}
	return path
}

// newMockAnalyzer wires a sqlmock handle into a networked introspector
func newMockAnalyzer(t *testing.T, kind models.BackendKind) (*SchemaAnalyzer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	logger := createTestLogger()
	params := models.NetworkParams{Host: "db.example.com", User: "reader", Password: "pw", Database: "shop"}

	var introspector Introspector
	switch kind {
	case models.MySQLBackend:
		conn := connector.NewMySQLConnector(params, logger)
		conn.DB = db
		introspector = NewMySQLIntrospector(conn, params)
	case models.PostgresBackend:
		conn := connector.NewPostgresConnector(params, logger)
		conn.DB = db
		introspector = NewPostgresIntrospector(conn, params)
	default:
		t.Fatalf("Unsupported kind %v", kind)
	}
	return NewSchemaAnalyzer(introspector, logger), mock
}

func TestNew(t *testing.T) {
	logger := createTestLogger()

	tests := []struct {
		sel  models.DatabaseSelection
		kind models.BackendKind
	}{
		{models.SQLiteSelection("app.db"), models.SQLiteBackend},
		{models.MySQLSelection(models.NetworkParams{Host: "h", Database: "d"}), models.MySQLBackend},
		{models.PostgresSelection(models.NetworkParams{Host: "h", Database: "d"}), models.PostgresBackend},
	}

	for _, tt := range tests {
		analyzer, err := New(tt.sel, logger)
		if err != nil {
			t.Fatalf("Expected no error for %v, got %v", tt.kind, err)
		}
		if analyzer.Introspector.Kind() != tt.kind {
			t.Errorf("Expected introspector kind %v, got %v", tt.kind, analyzer.Introspector.Kind())
		}
		if analyzer.TableColumns == nil {
			t.Error("Expected analyzer.TableColumns to be initialized")
		}
		if analyzer.Logger != logger {
			t.Error("Expected analyzer.Logger to be the test logger")
		}
	}

	if _, err := New(models.NoDatabase(), logger); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Expected ErrNoDatabase, got %v", err)
	}
}

func TestSQLiteReport(t *testing.T) {
	path := createSQLiteFixture(t, "CREATE TABLE users (id INTEGER, name TEXT)")

	analyzer, err := New(models.SQLiteSelection(path), createTestLogger())
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	if len(report.Tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(report.Tables))
	}
	table := report.Tables[0]
	if table.Name != "users" {
		t.Errorf("Expected table 'users', got '%s'", table.Name)
	}
	want := []models.Column{{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "TEXT"}}
	if len(table.Columns) != len(want) {
		t.Fatalf("Expected %d columns, got %d", len(want), len(table.Columns))
	}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Errorf("Expected column %d to be %v, got %v", i, col, table.Columns[i])
		}
	}

	expected := "SQLite Database: " + path + "\n" +
		"    Table: users\n" +
		"        Column: id (INTEGER)\n" +
		"        Column: name (TEXT)"
	if report.String() != expected {
		t.Errorf("Unexpected rendering:\n%s\nwant:\n%s", report.String(), expected)
	}
}

func TestSQLiteReportWithURIDelimitersInPath(t *testing.T) {
	for _, name := range []string{"my#app.db", "what?.db", "100%.db", "a%23b.db"} {
		path := createNamedSQLiteFixture(t, name, "CREATE TABLE users (id INTEGER, name TEXT)")

		analyzer, _ := New(models.SQLiteSelection(path), createTestLogger())
		report := analyzer.Report(context.Background())

		if report.Err != nil {
			t.Errorf("Expected no error for %s, got %v", name, report.Err)
			continue
		}
		if len(report.Tables) != 1 || report.Tables[0].Name != "users" {
			t.Errorf("Expected table 'users' in %s, got %v", name, report.Tables)
		}
	}
}

func TestSQLiteZeroTables(t *testing.T) {
	path := createSQLiteFixture(t, "PRAGMA user_version = 7")

	analyzer, _ := New(models.SQLiteSelection(path), createTestLogger())
	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	if len(report.Tables) != 0 {
		t.Errorf("Expected 0 tables, got %d", len(report.Tables))
	}
	if report.String() != "SQLite Database: "+path+"\n" {
		t.Errorf("Expected header only, got %q", report.String())
	}
}

func TestSQLiteCatalogOrderAndInternalTables(t *testing.T) {
	path := createSQLiteFixture(t,
		"CREATE TABLE zeta (id INTEGER PRIMARY KEY AUTOINCREMENT, z_value REAL)",
		"CREATE TABLE alpha (code VARCHAR(10), created_at DATETIME, flag)",
		"INSERT INTO zeta (z_value) VALUES (1.5)",
	)

	analyzer, _ := New(models.SQLiteSelection(path), createTestLogger())
	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	var names []string
	for _, table := range report.Tables {
		names = append(names, table.Name)
	}
	if strings.Join(names, ",") != "zeta,alpha" {
		t.Errorf("Expected catalog order [zeta alpha] without sqlite_sequence, got %v", names)
	}

	alpha := report.Tables[1]
	if alpha.Columns[0].Type != "VARCHAR(10)" {
		t.Errorf("Expected declared type 'VARCHAR(10)', got '%s'", alpha.Columns[0].Type)
	}
	if alpha.Columns[2].Name != "flag" || alpha.Columns[2].Type != "" {
		t.Errorf("Expected untyped column 'flag', got %v", alpha.Columns[2])
	}
}

func TestSQLiteMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	analyzer, _ := New(models.SQLiteSelection(path), createTestLogger())
	report := analyzer.Report(context.Background())

	if report.Err == nil {
		t.Fatal("Expected an error for a missing database file")
	}
	prefix := "SQLite Database: " + path + "\n\n    Error reading SQLite database: "
	if !strings.HasPrefix(report.String(), prefix) {
		t.Errorf("Expected error rendering to start with %q, got %q", prefix, report.String())
	}
	if strings.Count(report.String(), "\n") != 2 {
		t.Errorf("Expected a single error line, got %q", report.String())
	}
}

func TestSQLiteReportIsDeterministic(t *testing.T) {
	path := createSQLiteFixture(t,
		"CREATE TABLE b (x INT)",
		"CREATE TABLE a (y TEXT, z BLOB)",
	)

	first, _ := New(models.SQLiteSelection(path), createTestLogger())
	second, _ := New(models.SQLiteSelection(path), createTestLogger())

	if first.Report(context.Background()).String() != second.Report(context.Background()).String() {
		t.Error("Expected identical reports for an unmodified database")
	}
}

func TestMySQLReport(t *testing.T) {
	analyzer, mock := newMockAnalyzer(t, models.MySQLBackend)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("users").AddRow("orders"))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "int", "NO", "PRI", nil, "auto_increment").
			AddRow("email", "varchar(255)", "NO", "UNI", nil, ""))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `orders`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "").
			AddRow("total", "decimal(10,2)", "YES", "", "0.00", ""))
	mock.ExpectClose()

	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	expected := "MySQL Database on db.example.com - shop\n" +
		"    Table: users\n" +
		"        Column: id (int)\n" +
		"        Column: email (varchar(255))\n" +
		"    Table: orders\n" +
		"        Column: id (bigint unsigned)\n" +
		"        Column: total (decimal(10,2))"
	if report.String() != expected {
		t.Errorf("Unexpected rendering:\n%s\nwant:\n%s", report.String(), expected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMySQLColumnFailureDiscardsPartialTables(t *testing.T) {
	analyzer, mock := newMockAnalyzer(t, models.MySQLBackend)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow("users").AddRow("orders"))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}).AddRow("id", "int"))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `orders`")).
		WillReturnError(errors.New("Error 1142: SELECT command denied"))
	mock.ExpectClose()

	report := analyzer.Report(context.Background())

	if report.Err == nil {
		t.Fatal("Expected an error")
	}
	if len(report.Tables) != 0 {
		t.Errorf("Expected partial tables to be discarded, got %d", len(report.Tables))
	}
	if len(analyzer.Tables) != 0 {
		t.Errorf("Expected analyzer.Tables to be reset, got %v", analyzer.Tables)
	}
	expected := "MySQL Database on db.example.com - shop\n\n" +
		"    Error connecting/reading MySQL database: Error 1142: SELECT command denied"
	if report.String() != expected {
		t.Errorf("Unexpected rendering:\n%q\nwant:\n%q", report.String(), expected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMySQLZeroTables(t *testing.T) {
	analyzer, mock := newMockAnalyzer(t, models.MySQLBackend)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}))
	mock.ExpectClose()

	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	if report.String() != "MySQL Database on db.example.com - shop\n" {
		t.Errorf("Expected header only, got %q", report.String())
	}
}

func TestMySQLUnavailableDriver(t *testing.T) {
	params := models.NetworkParams{Host: "db.example.com", User: "u", Password: "p", Database: "shop"}
	conn := connector.NewMySQLConnector(params, createTestLogger())
	conn.Driver = "mysql-not-linked"

	analyzer := NewSchemaAnalyzer(NewMySQLIntrospector(conn, params), createTestLogger())

	var report models.DatabaseReport
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Expected no panic, got %v", r)
			}
		}()
		report = analyzer.Report(context.Background())
	}()

	if !errors.Is(report.Err, connector.ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", report.Err)
	}
	if !strings.Contains(report.String(), "Error connecting/reading MySQL database: backend unavailable") {
		t.Errorf("Expected unavailable error line, got %q", report.String())
	}
}

func TestPostgresReport(t *testing.T) {
	analyzer, mock := newMockAnalyzer(t, models.PostgresBackend)

	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("accounts"))
	mock.ExpectQuery("SELECT column_name, data_type FROM information_schema.columns").
		WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id", "uuid").
			AddRow("balance", "numeric"))
	mock.ExpectClose()

	report := analyzer.Report(context.Background())

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	expected := "PostgreSQL Database on db.example.com - shop\n" +
		"    Table: accounts\n" +
		"        Column: id (uuid)\n" +
		"        Column: balance (numeric)"
	if report.String() != expected {
		t.Errorf("Unexpected rendering:\n%s\nwant:\n%s", report.String(), expected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestPostgresListTablesFailure(t *testing.T) {
	analyzer, mock := newMockAnalyzer(t, models.PostgresBackend)

	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WillReturnError(errors.New("permission denied for schema public"))
	mock.ExpectClose()

	report := analyzer.Report(context.Background())

	expected := "PostgreSQL Database on db.example.com - shop\n\n" +
		"    Error connecting/reading PostgreSQL database: permission denied for schema public"
	if report.String() != expected {
		t.Errorf("Unexpected rendering:\n%q\nwant:\n%q", report.String(), expected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestQuoteMySQLIdentifier(t *testing.T) {
	if got := quoteMySQLIdentifier("we`ird"); got != "`we``ird`" {
		t.Errorf("Expected escaped identifier, got %s", got)
	}
}

func TestIncompleteSelectionReportsErrorLine(t *testing.T) {
	tests := []struct {
		sel      models.DatabaseSelection
		expected string
	}{
		{
			models.MySQLSelection(models.NetworkParams{Password: "pw"}),
			"MySQL Database on  - \n\n" +
				"    Error connecting/reading MySQL database: incomplete connection parameters: missing host, user, database",
		},
		{
			models.PostgresSelection(models.NetworkParams{Host: "db.example.com", Database: "shop"}),
			"PostgreSQL Database on db.example.com - shop\n\n" +
				"    Error connecting/reading PostgreSQL database: incomplete connection parameters: missing user",
		},
		{
			models.SQLiteSelection(""),
			"SQLite Database: \n\n" +
				"    Error reading SQLite database: incomplete connection parameters: missing database file",
		},
	}

	for _, tt := range tests {
		analyzer, err := New(tt.sel, createTestLogger())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		report := analyzer.Report(context.Background())
		if !errors.Is(report.Err, ErrIncompleteSelection) {
			t.Errorf("Expected ErrIncompleteSelection, got %v", report.Err)
		}
		if report.String() != tt.expected {
			t.Errorf("Unexpected rendering:\n%q\nwant:\n%q", report.String(), tt.expected)
		}
	}
}

func TestValidateNetworkParamsAllowsEmptyPassword(t *testing.T) {
	params := models.NetworkParams{Host: "db.example.com", User: "reader", Database: "shop"}
	if err := validateNetworkParams(params); err != nil {
		t.Errorf("Expected no error without a password, got %v", err)
	}
}
