package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// LoadFixture reads a JSON fixture for the given package under
// internal/exchange/<pkg>/testdata/fixtures.
func LoadFixture(t *testing.T, pkg, name string) string {
	t.Helper()

	// Get path relative to this file
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename)) // up to exchange/

	path := filepath.Join(baseDir, pkg, "testdata", "fixtures", name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to load fixture %s/%s: %v", pkg, name, err)
	}
	return string(data)
}
