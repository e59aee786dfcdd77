package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Comparison is the line-level difference between two reports
type Comparison struct {
	Identical bool
	Inserted  int
	Deleted   int
	Diffs     []diffmatchpatch.Diff
}

// Compare diffs previous against current line by line
func Compare(previous, current string) Comparison {
	dmp := diffmatchpatch.New()
	prevChars, curChars, lines := dmp.DiffLinesToChars(previous, current)
	diffs := dmp.DiffMain(prevChars, curChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	cmp := Comparison{Identical: previous == current, Diffs: diffs}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			cmp.Inserted += len(splitLines(d.Text))
		case diffmatchpatch.DiffDelete:
			cmp.Deleted += len(splitLines(d.Text))
		}
	}
	return cmp
}

// Summary is a one-line description of the comparison
func (c Comparison) Summary() string {
	if c.Identical {
		return "Reports are identical"
	}
	return fmt.Sprintf("Reports differ: %d line(s) added, %d line(s) removed", c.Inserted, c.Deleted)
}

// String lists changed lines prefixed with + or -
func (c Comparison) String() string {
	var sb strings.Builder
	sb.WriteString(c.Summary())
	for _, d := range c.Diffs {
		var marker string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			marker = "+ "
		case diffmatchpatch.DiffDelete:
			marker = "- "
		default:
			continue
		}
		for _, line := range splitLines(d.Text) {
			sb.WriteString("\n" + marker + line)
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
