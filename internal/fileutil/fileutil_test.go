package fileutil_test

// Notes:
// - TestWriteTempFile_CreateTempError changes TMPDIR with t.Setenv and so
//   cannot run in parallel.
// - Write and Close failures inside WriteTempFile are not covered; triggering
//   them is platform specific.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mathsnap/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{"png", "png", nil},
		{"html", "html", nil},
		{"empty", "", fileutil.ErrExtensionEmpty},
		{"slash", "../x", fileutil.ErrExtensionPathTraversal},
		{"backslash", `a\b`, fileutil.ErrExtensionPathTraversal},
		{"null byte", "p\x00ng", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temp file lifecycle
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<p>x</p>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.HasSuffix(path, ".html") || !strings.Contains(filepath.Base(path), "mathsnap-") {
		t.Errorf("path = %q", path)
	}
	if data, _ := os.ReadFile(path); string(data) != "<p>x</p>" {
		t.Errorf("content = %q", data)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("content", "")
	if cleanup != nil {
		t.Error("cleanup must be nil on error")
	}
	if !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("WriteTempFile() error = %v", err)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, cleanup, err := fileutil.WriteTempFile("content", "tex")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil || !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %v, want creating temp file", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - Regular files only
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true")
	}
	if fileutil.FileExists(filepath.Join(dir, "none")) {
		t.Error("FileExists(missing) = true")
	}
}

// ---------------------------------------------------------------------------
// TestExpandHome - Tilde expansion
// ---------------------------------------------------------------------------

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/Pictures/latex-renders", filepath.Join(home, "Pictures", "latex-renders")},
		{"/abs/path", "/abs/path"},
		{"rel/~/x", "rel/~/x"},
		{"~user/x", "~user/x"},
	}

	for _, tt := range tests {
		got, err := fileutil.ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestEnsureDir - Directory creation
// ---------------------------------------------------------------------------

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := fileutil.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("Stat(%s) = %v, %v", dir, info, err)
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir() on existing dir = %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := fileutil.EnsureDir(filepath.Join(file, "sub")); err == nil {
		t.Error("EnsureDir() under a file should fail")
	}
}

// ---------------------------------------------------------------------------
// TestUniquePath - Collision avoidance
// ---------------------------------------------------------------------------

func TestUniquePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := "latex_render_20240101_120000"

	first, err := fileutil.UniquePath(dir, base, "png")
	if err != nil || first != filepath.Join(dir, base+".png") {
		t.Fatalf("UniquePath() = %q, %v", first, err)
	}
	if err := os.WriteFile(first, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	second, err := fileutil.UniquePath(dir, base, "png")
	if err != nil || second != filepath.Join(dir, base+"_1.png") {
		t.Fatalf("UniquePath() = %q, %v, want _1 suffix", second, err)
	}
	if err := os.WriteFile(second, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	third, _ := fileutil.UniquePath(dir, base, "png")
	if third != filepath.Join(dir, base+"_2.png") {
		t.Errorf("UniquePath() = %q, want _2 suffix", third)
	}

	if _, err := fileutil.UniquePath(dir, base, ""); !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("UniquePath() with empty extension = %v", err)
	}
}
