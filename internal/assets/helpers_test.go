package assets

import (
	"os"
	"path/filepath"
	"testing"
)

// writeAsset writes content to base/rel, creating parent directories.
func writeAsset(t *testing.T, base, rel, content string) {
	t.Helper()
	path := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
