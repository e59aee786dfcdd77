package models

import (
	"fmt"
	"strings"
)

// PathFilterConfig holds the allow-list of file extensions and the set of
// directory names pruned from every traversal
type PathFilterConfig struct {
	AllowedExtensions []string
	ExcludedDirs      []string
}

// ParsedFile is a file path paired with its text, or an error placeholder
// when the file could not be read
type ParsedFile struct {
	Path    string
	Content string
	Err     error
}

// Column represents a database column as reported by the backend
type Column struct {
	Name string
	Type string
}

// TableSchema represents a table and its columns in backend order
type TableSchema struct {
	Name    string
	Columns []Column
}

// BackendKind identifies which schema introspector a selection targets
type BackendKind int

const (
	NoBackend BackendKind = iota
	SQLiteBackend
	MySQLBackend
	PostgresBackend
)

// String returns the display name used in report headers
func (k BackendKind) String() string {
	switch k {
	case SQLiteBackend:
		return "SQLite"
	case MySQLBackend:
		return "MySQL"
	case PostgresBackend:
		return "PostgreSQL"
	default:
		return "none"
	}
}

// ParseBackendKind maps a flag value to a BackendKind
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoBackend, nil
	case "sqlite", "sqlite3":
		return SQLiteBackend, nil
	case "mysql":
		return MySQLBackend, nil
	case "postgres", "postgresql", "pg":
		return PostgresBackend, nil
	}
	return NoBackend, fmt.Errorf("unknown database type %q (expected sqlite, mysql, postgres or none)", s)
}

// SQLiteParams are the connection parameters of the embedded backend
type SQLiteParams struct {
	FilePath string
}

// NetworkParams are the connection parameters of a networked backend
type NetworkParams struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// DatabaseSelection is a tagged variant over the supported connection shapes.
// Only the payload matching Kind is meaningful.
type DatabaseSelection struct {
	Kind    BackendKind
	SQLite  SQLiteParams
	Network NetworkParams
}

// NoDatabase returns a selection that skips schema introspection
func NoDatabase() DatabaseSelection {
	return DatabaseSelection{Kind: NoBackend}
}

// SQLiteSelection selects the embedded backend
func SQLiteSelection(filePath string) DatabaseSelection {
	return DatabaseSelection{Kind: SQLiteBackend, SQLite: SQLiteParams{FilePath: filePath}}
}

// MySQLSelection selects the MySQL backend
func MySQLSelection(params NetworkParams) DatabaseSelection {
	return DatabaseSelection{Kind: MySQLBackend, Network: params}
}

// PostgresSelection selects the PostgreSQL backend
func PostgresSelection(params NetworkParams) DatabaseSelection {
	return DatabaseSelection{Kind: PostgresBackend, Network: params}
}

// DatabaseReport is the outcome of one schema introspection. When Err is set
// the table listing is replaced by a single error line.
type DatabaseReport struct {
	Kind         BackendKind
	Header       string
	Tables       []TableSchema
	Err          error
	ErrorContext string
}

// String renders the report in its fixed textual layout
func (r DatabaseReport) String() string {
	var sb strings.Builder
	sb.WriteString(r.Header)
	sb.WriteString("\n")

	if r.Err != nil {
		fmt.Fprintf(&sb, "\n    %s: %v", r.ErrorContext, r.Err)
		return sb.String()
	}

	var lines []string
	for _, table := range r.Tables {
		lines = append(lines, "    Table: "+table.Name)
		for _, col := range table.Columns {
			lines = append(lines, fmt.Sprintf("        Column: %s (%s)", col.Name, col.Type))
		}
	}
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}

// Report is a composed project snapshot
type Report struct {
	Text            string
	Files           int
	UnreadableFiles int
	Tables          int
	Database        BackendKind
	DatabaseErr     error
}
