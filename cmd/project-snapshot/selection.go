package main

import (
	"os"
	"path/filepath"

	"github.com/vitebski/project-snapshot/internal/config"
	"github.com/vitebski/project-snapshot/internal/utils"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// dbOptions are the database flags shared by every command
type dbOptions struct {
	dbType     string
	sqlitePath string
	network    models.NetworkParams
}

// resolveSelection turns flags, environment and persisted settings into a
// selection. Precedence is flag, then environment, then settings.
func resolveSelection(opts dbOptions, settings *config.Settings) (models.DatabaseSelection, error) {
	kind, err := models.ParseBackendKind(opts.dbType)
	if err != nil {
		return models.NoDatabase(), err
	}
	if opts.dbType == "" {
		switch {
		case opts.sqlitePath != "":
			kind = models.SQLiteBackend
		case opts.network.Host != "":
			kind = models.MySQLBackend
		}
	}

	switch kind {
	case models.SQLiteBackend:
		// An empty path is left for the report to flag
		path := firstNonEmpty(opts.sqlitePath, os.Getenv("SQLITE_PATH"), settings.LastDBFile)
		return models.SQLiteSelection(path), nil

	case models.MySQLBackend:
		params := opts.network
		utils.FillNetworkParams(&params, utils.NetworkParamsFromEnv("MYSQL_"))
		if settings.MySQL != nil {
			utils.FillNetworkParams(&params, models.NetworkParams{
				Host:     settings.MySQL.Server,
				User:     settings.MySQL.User,
				Password: settings.MySQL.Password,
				Database: settings.MySQL.Database,
			})
		}
		return models.MySQLSelection(params), nil

	case models.PostgresBackend:
		params := opts.network
		utils.FillNetworkParams(&params, utils.NetworkParamsFromEnv("POSTGRES_"))
		return models.PostgresSelection(params), nil
	}

	return models.NoDatabase(), nil
}

// settingsUpdate records what a run used so the next run can reuse it
func settingsUpdate(rootPath string, sel models.DatabaseSelection) config.Settings {
	var updates config.Settings
	if rootPath != "" {
		if abs, err := filepath.Abs(rootPath); err == nil {
			updates.LastCodeFolder = abs
		}
	}

	switch sel.Kind {
	case models.SQLiteBackend:
		if sel.SQLite.FilePath == "" {
			break
		}
		if abs, err := filepath.Abs(sel.SQLite.FilePath); err == nil {
			updates.LastDBFile = abs
			updates.LastDBFolder = filepath.Dir(abs)
		}
	case models.MySQLBackend:
		updates.MySQL = &config.MySQLSettings{
			Server:   sel.Network.Host,
			User:     sel.Network.User,
			Password: sel.Network.Password,
			Database: sel.Network.Database,
		}
	}
	return updates
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
