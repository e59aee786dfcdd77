package pathfilter

import (
	"strings"
	"testing"

	"github.com/vitebski/project-snapshot/pkg/models"
)

func TestPathFilter_IncludesSourceFiles(t *testing.T) {
	filter := New(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"index.html", true},
		{"style.css", true},
		{"app.js", true},
		{"index.php", true},
		{"main.py", true},
		{"Main.java", true},
		{"main.go", false},
		{"README.md", false},
		{"Makefile", false},
		{"script.py.bak", false},
		{"archive.jsx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsIncludedFile(tt.name); got != tt.want {
				t.Errorf("IsIncludedFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPathFilter_ExtensionIsCaseInsensitive(t *testing.T) {
	filter := New(nil)

	pairs := [][2]string{
		{"Foo.PY", "foo.py"},
		{"INDEX.HTML", "index.html"},
		{"App.Js", "app.js"},
	}

	for _, pair := range pairs {
		if filter.IsIncludedFile(pair[0]) != filter.IsIncludedFile(pair[1]) {
			t.Errorf("IsIncludedFile(%q) and IsIncludedFile(%q) disagree", pair[0], pair[1])
		}
		if !filter.IsIncludedFile(pair[0]) {
			t.Errorf("IsIncludedFile(%q) = false, want true", pair[0])
		}
	}
}

func TestPathFilter_ExcludedDirs(t *testing.T) {
	filter := New(nil)

	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{"node_modules", true},
		{"Node_Modules", false},
		{".github", false},
		{"src", false},
		{"node_modules_backup", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsExcludedDir(tt.name); got != tt.want {
				t.Errorf("IsExcludedDir(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPathFilter_CustomConfig(t *testing.T) {
	filter := New(&models.PathFilterConfig{
		AllowedExtensions: []string{"go", ".TS"},
		ExcludedDirs:      []string{"vendor"},
	})

	if !filter.IsIncludedFile("main.go") {
		t.Error("Expected main.go to be included with custom extension")
	}
	if !filter.IsIncludedFile("index.ts") {
		t.Error("Expected index.ts to be included with custom extension")
	}
	if !filter.IsIncludedFile("app.py") {
		t.Error("Expected default extensions to remain active")
	}
	if !filter.IsExcludedDir("vendor") {
		t.Error("Expected vendor to be excluded")
	}
	if !filter.IsExcludedDir(".git") {
		t.Error("Expected default exclusions to remain active")
	}
}

func TestPathFilter_Config(t *testing.T) {
	cfg := New(&models.PathFilterConfig{
		AllowedExtensions: []string{"Go"},
		ExcludedDirs:      []string{"vendor", "build"},
	}).Config()

	wantExt := append(append([]string{}, DefaultAllowedExtensions...), ".go")
	if strings.Join(cfg.AllowedExtensions, ",") != strings.Join(wantExt, ",") {
		t.Errorf("Expected extensions %v, got %v", wantExt, cfg.AllowedExtensions)
	}
	wantDirs := ".git,build,node_modules,vendor"
	if strings.Join(cfg.ExcludedDirs, ",") != wantDirs {
		t.Errorf("Expected sorted exclusions %s, got %v", wantDirs, cfg.ExcludedDirs)
	}
}
