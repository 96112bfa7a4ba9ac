package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"Bytes", "100", 100},
		{"Kilobytes", "1K", 1024},
		{"Kilobytes lowercase", "1k", 1024},
		{"Megabytes", "1M", 1024 * 1024},
		{"Megabytes lowercase", "1m", 1024 * 1024},
		{"Gigabytes", "1G", 1024 * 1024 * 1024},
		{"Multiple KB", "650K", 650 * 1024},
		{"Multiple MB", "10M", 10 * 1024 * 1024},
		{"Invalid format", "abc", 0},
		{"Empty string", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/path/to/file.css", "css"},
		{"/path/to/file.JS", "JS"}, // Extension preserves case
		{"/path/to/file.js", "js"},
		{"/path/to/.eslintrc", "eslintrc"},
		{"/path/to/file", ""},
		{"/path/to/app.min.js", "js"},
		{"index.html", "html"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := GetExtension(tt.path); got != tt.expected {
				t.Errorf("GetExtension(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestReadTarget(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "app.js")
	testContent := "fetch(\"/x\");"

	if err := os.WriteFile(testFile, []byte(testContent), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	target, err := ReadTarget(&models.FileInfo{Path: testFile, RelativePath: "app.js"})
	if err != nil {
		t.Fatalf("ReadTarget() error = %v", err)
	}

	if string(target.Content) != testContent {
		t.Errorf("Target content = %q, want %q", string(target.Content), testContent)
	}
	if target.Name != "app.js" {
		t.Errorf("Target name = %q, want %q", target.Name, "app.js")
	}

	// Without a relative path the full path names the target
	target, err = ReadTarget(&models.FileInfo{Path: testFile})
	if err != nil {
		t.Fatalf("ReadTarget() error = %v", err)
	}
	if target.Name != testFile {
		t.Errorf("Target name = %q, want %q", target.Name, testFile)
	}
}

func TestReadTarget_NonExistent(t *testing.T) {
	_, err := ReadTarget(&models.FileInfo{Path: "/nonexistent/file.js"})
	if err == nil {
		t.Error("ReadTarget() expected error for non-existent file, got nil")
	}
}

func TestReadTargets(t *testing.T) {
	tmpDir := t.TempDir()
	var files []*models.FileInfo
	for _, name := range []string{"b.css", "a.js"} {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		files = append(files, &models.FileInfo{Path: path, RelativePath: name})
	}

	targets, err := ReadTargets(files)
	if err != nil {
		t.Fatalf("ReadTargets() error = %v", err)
	}
	if len(targets) != 2 || targets[0].Name != "b.css" || targets[1].Name != "a.js" {
		t.Errorf("ReadTargets() did not preserve input order: %+v", targets)
	}
}
