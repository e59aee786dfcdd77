package report

import (
	"context"
	"strings"

	"github.com/vitebski/project-snapshot/pkg/models"
)

const (
	promptPreamble    = "Create / modify a software program based on the parameters indicated below: \n\n"
	CodeReportHeader  = "===== Code Report ====="
	NoProjectSelected = "(No project folder selected for code analysis)"
)

// Brief holds the free-text instructions placed ahead of the reports
type Brief struct {
	Context      string
	Objective    string
	Constraints  string
	OutputFormat string
}

// BuildPrompt wraps a code report and a database report in the brief. An
// empty code report is replaced by a notice.
func BuildPrompt(brief Brief, codeReport, databaseReport string) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("Context: " + brief.Context + "\n\n")
	sb.WriteString("Objective: " + brief.Objective + "\n\n")
	sb.WriteString("Constraints: " + brief.Constraints + "\n\n")
	sb.WriteString("Output format: " + brief.OutputFormat + "\n\n")

	if codeReport != "" {
		sb.WriteString("\n" + CodeReportHeader + "\n")
		sb.WriteString(codeReport)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("\n" + NoProjectSelected + "\n\n")
	}

	sb.WriteString("\n" + DatabaseReportHeader + "\n")
	sb.WriteString(databaseReport)
	return sb.String()
}

// Prompt composes the reports for rootPath and sel and wraps them in the
// brief. An empty rootPath skips the code report.
func (c *Composer) Prompt(ctx context.Context, brief Brief, rootPath string, sel models.DatabaseSelection) *models.Report {
	var (
		code  string
		files []models.ParsedFile
	)
	if rootPath != "" {
		code, files = c.CodeReport(rootPath)
	}
	dbText, dbReport := c.DatabaseSection(ctx, sel)

	return newReport(BuildPrompt(brief, code, dbText), files, dbReport)
}
