// Package collector gathers the contents of the source files in a project.
package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/internal/pathfilter"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// FileCollector walks a project and reads every file accepted by the filter
type FileCollector struct {
	Filter *pathfilter.PathFilter
	Logger *logrus.Logger
}

// NewFileCollector creates a new file collector
func NewFileCollector(filter *pathfilter.PathFilter, logger *logrus.Logger) *FileCollector {
	if filter == nil {
		filter = pathfilter.New(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileCollector{
		Filter: filter,
		Logger: logger,
	}
}

// Collect walks rootPath top-down and returns one ParsedFile per included
// file. Files of a directory come before its subdirectories. A file that
// cannot be read gets a placeholder content and the walk goes on.
func (fc *FileCollector) Collect(rootPath string) []models.ParsedFile {
	var parsed []models.ParsedFile

	stack := []string{rootPath}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			fc.Logger.Debugf("Skipping unlistable directory %s: %v", dir, err)
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())

			if entry.Type()&os.ModeSymlink != 0 {
				// Linked directories are neither read nor descended into
				if info, err := os.Stat(full); err == nil && info.IsDir() {
					continue
				}
			} else if entry.IsDir() {
				if fc.Filter.IsExcludedDir(entry.Name()) {
					fc.Logger.Debugf("Pruning excluded directory %s", full)
					continue
				}
				subdirs = append(subdirs, full)
				continue
			}

			if !fc.Filter.IsIncludedFile(entry.Name()) {
				continue
			}
			parsed = append(parsed, fc.readFile(full))
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return parsed
}

// readFile reads a file as text, dropping byte sequences that are not valid UTF-8
func (fc *FileCollector) readFile(path string) models.ParsedFile {
	data, err := os.ReadFile(path)
	if err != nil {
		fc.Logger.Warningf("Error reading file %s: %v", path, err)
		return models.ParsedFile{
			Path:    path,
			Content: fmt.Sprintf("Error reading file: %v", err),
			Err:     err,
		}
	}

	return models.ParsedFile{
		Path:    path,
		Content: strings.ToValidUTF8(string(data), ""),
	}
}
