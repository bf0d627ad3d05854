// Package testsupport holds small helpers shared by this module's tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// TempFile creates a temporary file with the given content, removed when the
// test finishes.
func TempFile(t *testing.T, content []byte) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "fixture-*")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatalf("failed to write to temp file: %v", err)
	}

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	return tmpfile.Name()
}

// FixturePath constructs a path to a fixture file relative to the testdata
// directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
