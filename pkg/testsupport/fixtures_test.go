package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTempFile(t *testing.T) {
	content := []byte("hello")
	path := TempFile(t, content)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestLoadFixture(t *testing.T) {
	path := TempFile(t, []byte("fixture-content"))

	data := LoadFixture(t, path)
	if string(data) != "fixture-content" {
		t.Errorf("got %q, want %q", data, "fixture-content")
	}
}

func TestFixturePath(t *testing.T) {
	want := filepath.Join("testdata", "sample.yml")
	if got := FixturePath("sample.yml"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
