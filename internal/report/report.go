// Package report assembles directory maps, file contents and database
// schemas into a single text snapshot of a project.
package report

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/internal/analyzer"
	"github.com/vitebski/project-snapshot/internal/collector"
	"github.com/vitebski/project-snapshot/internal/pathfilter"
	"github.com/vitebski/project-snapshot/internal/tree"
	"github.com/vitebski/project-snapshot/pkg/models"
)

const (
	DirectoryMapHeader   = "Project Directory Map:"
	ParsedFilesHeader    = "Parsed Files:"
	DatabaseReportHeader = "===== Database Report ====="
	NoDatabaseSelected   = "No database selected."
)

// Composer builds reports for a project root and an optional database
type Composer struct {
	Tree      *tree.Renderer
	Collector *collector.FileCollector
	Logger    *logrus.Logger
}

// NewComposer creates a composer whose tree and collector share one filter
func NewComposer(filter *pathfilter.PathFilter, logger *logrus.Logger) *Composer {
	if filter == nil {
		filter = pathfilter.New(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Composer{
		Tree:      tree.NewRenderer(filter, logger),
		Collector: collector.NewFileCollector(filter, logger),
		Logger:    logger,
	}
}

// Compose renders the full report: directory map, file contents, then the
// database section
func (c *Composer) Compose(ctx context.Context, rootPath string, sel models.DatabaseSelection) *models.Report {
	code, files := c.CodeReport(rootPath)
	dbText, dbReport := c.DatabaseSection(ctx, sel)

	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("\n\n")
	sb.WriteString(DatabaseReportHeader)
	sb.WriteString("\n")
	sb.WriteString(dbText)

	return newReport(sb.String(), files, dbReport)
}

// CodeReport renders the directory map and the parsed files sections
func (c *Composer) CodeReport(rootPath string) (string, []models.ParsedFile) {
	c.Logger.Infof("Scanning project directory: %s", rootPath)

	var sb strings.Builder
	sb.WriteString(DirectoryMapHeader)
	sb.WriteString("\n")
	sb.WriteString(rule(DirectoryMapHeader))
	sb.WriteString("\n")
	sb.WriteString(c.Tree.Render(rootPath))
	sb.WriteString("\n\n")
	sb.WriteString(ParsedFilesHeader)
	sb.WriteString("\n")
	sb.WriteString(rule(ParsedFilesHeader))

	files := c.Collector.Collect(rootPath)
	for _, file := range files {
		header := "File: " + file.Path
		sb.WriteString("\n")
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(rule(header))
		sb.WriteString("\n")
		sb.WriteString(file.Content)
	}

	c.Logger.Debugf("Parsed %d files under %s", len(files), rootPath)
	return sb.String(), files
}

// DatabaseSection renders the body of the database section. A selection
// without a backend yields the placeholder and a nil report.
func (c *Composer) DatabaseSection(ctx context.Context, sel models.DatabaseSelection) (string, *models.DatabaseReport) {
	if sel.Kind == models.NoBackend {
		return NoDatabaseSelected, nil
	}

	schemaAnalyzer, err := analyzer.New(sel, c.Logger)
	if err != nil {
		c.Logger.Errorf("Failed to create schema analyzer: %v", err)
		return NoDatabaseSelected, nil
	}

	c.Logger.Infof("Inspecting %s database schema", sel.Kind)
	dbReport := schemaAnalyzer.Report(ctx)
	if dbReport.Err != nil {
		c.Logger.Errorf("%s: %v", dbReport.ErrorContext, dbReport.Err)
	}
	return dbReport.String(), &dbReport
}

func newReport(text string, files []models.ParsedFile, dbReport *models.DatabaseReport) *models.Report {
	r := &models.Report{
		Text:  text,
		Files: len(files),
	}
	for _, file := range files {
		if file.Err != nil {
			r.UnreadableFiles++
		}
	}
	if dbReport != nil {
		r.Database = dbReport.Kind
		r.Tables = len(dbReport.Tables)
		r.DatabaseErr = dbReport.Err
	}
	return r
}

// rule underlines a header with one dash per character
func rule(header string) string {
	return strings.Repeat("-", utf8.RuneCountInString(header))
}
