// Package pathfilter decides which files are read into a snapshot and which
// directories are skipped while walking a project.
package pathfilter

import (
	"sort"
	"strings"

	"github.com/vitebski/project-snapshot/pkg/models"
)

// DefaultAllowedExtensions are the source file suffixes included in a report
var DefaultAllowedExtensions = []string{".html", ".css", ".js", ".php", ".py", ".java"}

// DefaultExcludedDirs are directory names pruned at any depth
var DefaultExcludedDirs = []string{".git", "node_modules"}

// PathFilter classifies file and directory names
type PathFilter struct {
	allowedExtensions []string
	excludedDirs      map[string]bool
}

// New creates a PathFilter with the default rules plus anything in config
func New(config *models.PathFilterConfig) *PathFilter {
	pf := &PathFilter{
		excludedDirs: make(map[string]bool),
	}

	extensions := append([]string{}, DefaultAllowedExtensions...)
	excluded := append([]string{}, DefaultExcludedDirs...)
	if config != nil {
		extensions = append(extensions, config.AllowedExtensions...)
		excluded = append(excluded, config.ExcludedDirs...)
	}

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		pf.allowedExtensions = append(pf.allowedExtensions, ext)
	}
	for _, dir := range excluded {
		if dir != "" {
			pf.excludedDirs[dir] = true
		}
	}

	return pf
}

// IsIncludedFile reports whether the lower-cased name ends with an allowed extension
func (pf *PathFilter) IsIncludedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range pf.allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsExcludedDir reports whether a directory with this exact name is pruned
func (pf *PathFilter) IsExcludedDir(name string) bool {
	return pf.excludedDirs[name]
}

// Config returns a copy of the effective rules, exclusions sorted by name
func (pf *PathFilter) Config() models.PathFilterConfig {
	cfg := models.PathFilterConfig{
		AllowedExtensions: append([]string{}, pf.allowedExtensions...),
	}
	for dir := range pf.excludedDirs {
		cfg.ExcludedDirs = append(cfg.ExcludedDirs, dir)
	}
	sort.Strings(cfg.ExcludedDirs)
	return cfg
}
