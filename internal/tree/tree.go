// Package tree renders a project directory as an indented text tree.
package tree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/internal/pathfilter"
)

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	branchIndent    = "│   "
	lastIndent      = "    "
)

// Renderer draws directory trees, skipping excluded directories
type Renderer struct {
	Filter *pathfilter.PathFilter
	Logger *logrus.Logger
}

// NewRenderer creates a new tree renderer
func NewRenderer(filter *pathfilter.PathFilter, logger *logrus.Logger) *Renderer {
	if filter == nil {
		filter = pathfilter.New(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Renderer{
		Filter: filter,
		Logger: logger,
	}
}

// node is one pending line of output
type node struct {
	path    string
	name    string
	prefix  string
	last    bool
	isDir   bool
	symlink bool
}

// Render returns the tree for rootPath. The first line is the absolute root
// path. Unlistable directories contribute no children.
func (r *Renderer) Render(rootPath string) string {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		absRoot = rootPath
	}
	lines := []string{absRoot}

	stack := r.pushChildren(nil, rootPath, "")
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		connector := branchConnector
		indent := branchIndent
		if n.last {
			connector = lastConnector
			indent = lastIndent
		}
		lines = append(lines, n.prefix+connector+n.name)

		if n.isDir && !n.symlink {
			stack = r.pushChildren(stack, n.path, n.prefix+indent)
		}
	}

	return strings.Join(lines, "\n")
}

// pushChildren lists dir and pushes its visible entries so the first entry
// is popped first
func (r *Renderer) pushChildren(stack []node, dir, prefix string) []node {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.Logger.Debugf("Skipping unlistable directory %s: %v", dir, err)
		return stack
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var visible []node
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		isDir, symlink := entryKind(full, entry)
		if isDir && r.Filter.IsExcludedDir(entry.Name()) {
			continue
		}
		visible = append(visible, node{
			path:    full,
			name:    entry.Name(),
			prefix:  prefix,
			isDir:   isDir,
			symlink: symlink,
		})
	}

	for i := len(visible) - 1; i >= 0; i-- {
		visible[i].last = i == len(visible)-1
		stack = append(stack, visible[i])
	}
	return stack
}

// entryKind reports whether the entry resolves to a directory and whether it
// is a symbolic link. Linked directories are listed but never descended into.
func entryKind(full string, entry os.DirEntry) (isDir bool, symlink bool) {
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(full)
		return err == nil && info.IsDir(), true
	}
	return entry.IsDir(), false
}
