// Package config persists the last-used project and database selections
// between runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file used when none is given
const DefaultPath = "config.json"

// MySQLSettings holds the last MySQL connection parameters
type MySQLSettings struct {
	Server   string `json:"server,omitempty" yaml:"server,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
}

// Settings represents the persisted selections. Every key is optional.
type Settings struct {
	LastCodeFolder string         `json:"last_code_folder,omitempty" yaml:"last_code_folder,omitempty"`
	LastDBFolder   string         `json:"last_db_folder,omitempty" yaml:"last_db_folder,omitempty"`
	LastDBFile     string         `json:"last_db_file,omitempty" yaml:"last_db_file,omitempty"`
	MySQL          *MySQLSettings `json:"mysql,omitempty" yaml:"mysql,omitempty"`
}

// Load reads settings from path. A missing file yields empty settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := &Settings{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// Save merges the non-empty fields of updates into the settings stored at
// path and writes the result back
func Save(path string, updates Settings) error {
	current, err := Load(path)
	if err != nil {
		// An unreadable file is replaced rather than blocking the save
		current = &Settings{}
	}
	current.Merge(updates)

	var data []byte
	if isYAML(path) {
		data, err = yaml.Marshal(current)
	} else {
		data, err = json.MarshalIndent(current, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Merge copies every non-empty field of updates into s
func (s *Settings) Merge(updates Settings) {
	setIfNotEmpty(&s.LastCodeFolder, updates.LastCodeFolder)
	setIfNotEmpty(&s.LastDBFolder, updates.LastDBFolder)
	setIfNotEmpty(&s.LastDBFile, updates.LastDBFile)

	if updates.MySQL != nil {
		if s.MySQL == nil {
			s.MySQL = &MySQLSettings{}
		}
		setIfNotEmpty(&s.MySQL.Server, updates.MySQL.Server)
		setIfNotEmpty(&s.MySQL.User, updates.MySQL.User)
		setIfNotEmpty(&s.MySQL.Password, updates.MySQL.Password)
		setIfNotEmpty(&s.MySQL.Database, updates.MySQL.Database)
	}
}

// Store binds a settings path to a logger. Failures are logged, never
// returned, so a broken settings file cannot stop a report.
type Store struct {
	Path   string
	Logger *logrus.Logger
}

// NewStore creates a new settings store
func NewStore(path string, logger *logrus.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path, Logger: logger}
}

// Load returns the stored settings, or empty settings on failure
func (st *Store) Load() *Settings {
	settings, err := Load(st.Path)
	if err != nil {
		st.Logger.Warningf("Ignoring settings file: %v", err)
		return &Settings{}
	}
	st.Logger.Debugf("Loaded settings from %s", st.Path)
	return settings
}

// Save persists updates and logs any failure
func (st *Store) Save(updates Settings) {
	if err := Save(st.Path, updates); err != nil {
		st.Logger.Warningf("Could not save settings: %v", err)
		return
	}
	st.Logger.Debugf("Saved settings to %s", st.Path)
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
