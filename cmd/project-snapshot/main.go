// Package main implements the project-snapshot command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/project-snapshot/internal/config"
	"github.com/vitebski/project-snapshot/internal/pathfilter"
	"github.com/vitebski/project-snapshot/internal/report"
	"github.com/vitebski/project-snapshot/internal/utils"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// options collects every flag value
type options struct {
	db         dbOptions
	envFile    string
	logLevel   string
	configPath string
	timeout    time.Duration

	output     string
	compare    string
	prompt     bool
	brief      report.Brief
	extensions []string
	excluded   []string
}

func main() {
	cmd := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "project-snapshot [project-root]",
		Short: "Snapshot a project's layout, sources and database schema as text",
		Long: `Project Snapshot

Produces one text report of a software project: its directory map, the
contents of its source files and the tables and columns of an associated
SQLite, MySQL or PostgreSQL database.`,
		Example: `project-snapshot ./webapp --sqlite ./webapp/app.db -o snapshot.txt
project-snapshot . --db-type mysql -H localhost -u root -d shop --prompt --objective "Add paging"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, args, opts)
		},
	}

	// Database and environment flags apply to every command
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.db.dbType, "db-type", "", "Database type: sqlite, mysql, postgres or none")
	pf.StringVar(&opts.db.sqlitePath, "sqlite", "", "Path to a SQLite database file")
	pf.StringVarP(&opts.db.network.Host, "host", "H", "", "Database host")
	pf.StringVarP(&opts.db.network.User, "user", "u", "", "Database user")
	pf.StringVarP(&opts.db.network.Password, "password", "p", "", "Database password")
	pf.StringVarP(&opts.db.network.Database, "database", "d", "", "Database name")
	pf.StringVarP(&opts.db.network.Port, "port", "P", "", "Database port (default: 3306 for MySQL, 5432 for PostgreSQL)")
	pf.StringVarP(&opts.envFile, "env-file", "e", ".env", "Path to .env file")
	pf.StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	pf.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Settings file remembering the last selections (.json, .yaml or .yml)")
	pf.DurationVar(&opts.timeout, "timeout", time.Duration(utils.GetEnvInt("SNAPSHOT_TIMEOUT_SECONDS", 30))*time.Second, "Deadline for database introspection")

	// Report flags
	f := rootCmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.StringVar(&opts.compare, "compare", "", "Compare the new report with a previously saved one")
	f.BoolVar(&opts.prompt, "prompt", false, "Wrap the report in a prompt built from the brief flags")
	f.StringVar(&opts.brief.Context, "context", "", "Prompt context")
	f.StringVar(&opts.brief.Objective, "objective", "", "Prompt objective")
	f.StringVar(&opts.brief.Constraints, "constraints", "", "Prompt constraints")
	f.StringVar(&opts.brief.OutputFormat, "output-format", "", "Prompt output format")
	f.StringSliceVar(&opts.extensions, "ext", nil, "Additional file extensions to include (e.g. .go,.ts)")
	f.StringSliceVar(&opts.excluded, "exclude", nil, "Additional directory names to skip")

	rootCmd.AddCommand(newCheckDBCmd(opts))
	return rootCmd
}

func newCheckDBCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Connect to the selected database and print its schema report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckDB(cmd, opts)
		},
	}
}

// setup prepares logging, environment and persisted settings
func setup(opts *options) (*logrus.Logger, *config.Store, *config.Settings) {
	logger := utils.SetupLogging(opts.logLevel)
	utils.LoadEnvironmentVariables(opts.envFile, logger)
	store := config.NewStore(opts.configPath, logger)
	return logger, store, store.Load()
}

func runSnapshot(cmd *cobra.Command, args []string, opts *options) error {
	logger, store, settings := setup(opts)

	rootPath, err := resolveRoot(args, settings)
	if err != nil {
		return err
	}
	if info, err := os.Stat(rootPath); err != nil || !info.IsDir() {
		return fmt.Errorf("project root %s is not a readable directory", rootPath)
	}

	// An incomplete selection still yields a report, its database section
	// carries the error
	sel, err := resolveSelection(opts.db, settings)
	if err != nil {
		return err
	}

	filter := pathfilter.New(&models.PathFilterConfig{
		AllowedExtensions: opts.extensions,
		ExcludedDirs:      opts.excluded,
	})
	rules := filter.Config()
	logger.Debugf("Including extensions %v, skipping directories %v", rules.AllowedExtensions, rules.ExcludedDirs)
	composer := report.NewComposer(filter, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var r *models.Report
	if opts.prompt {
		r = composer.Prompt(ctx, opts.brief, rootPath, sel)
	} else {
		r = composer.Compose(ctx, rootPath, sel)
	}

	// Read the previous report first, --output may point at the same file
	var previous []byte
	if opts.compare != "" {
		if previous, err = os.ReadFile(opts.compare); err != nil {
			return fmt.Errorf("failed to read report to compare: %w", err)
		}
	}

	if err := writeReport(cmd, opts.output, r.Text); err != nil {
		return err
	}
	store.Save(settingsUpdate(rootPath, sel))

	utils.PrintSummary(cmd.ErrOrStderr(), r, opts.output)
	if opts.compare != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), report.Compare(string(previous), r.Text).String())
	}
	return nil
}

func runCheckDB(cmd *cobra.Command, opts *options) error {
	logger, store, settings := setup(opts)

	sel, err := resolveSelection(opts.db, settings)
	if err != nil {
		return err
	}
	if sel.Kind == models.NoBackend {
		return errors.New("no database selected (use --db-type, --sqlite or --host)")
	}
	if sel.Kind == models.SQLiteBackend && sel.SQLite.FilePath == "" {
		return errors.New("no SQLite database file given (use --sqlite or SQLITE_PATH)")
	}
	if isNetworked(sel) && !utils.ValidateConnectionParams(sel.Network, true, logger) {
		return fmt.Errorf("please provide host, user, password and database for %s", sel.Kind)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	text, dbReport := report.NewComposer(nil, logger).DatabaseSection(ctx, sel)
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if dbReport != nil && dbReport.Err != nil {
		return fmt.Errorf("database check failed: %w", dbReport.Err)
	}
	store.Save(settingsUpdate("", sel))
	logger.Infof("%s connection successful", sel.Kind)
	return nil
}

// resolveRoot picks the argument, then the last used folder, then the
// working directory
func resolveRoot(args []string, settings *config.Settings) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if settings.LastCodeFolder != "" {
		return settings.LastCodeFolder, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}

func writeReport(cmd *cobra.Command, output, text string) error {
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func isNetworked(sel models.DatabaseSelection) bool {
	return sel.Kind == models.MySQLBackend || sel.Kind == models.PostgresBackend
}
