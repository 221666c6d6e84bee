package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.ts")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSourcePlain(t *testing.T) {
	path := writeSourceFile(t, []byte("const x = 1;"))
	got, err := ReadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "const x = 1;" {
		t.Errorf("got %q", got)
	}
}

func TestReadSourceUTF8BOM(t *testing.T) {
	path := writeSourceFile(t, []byte("\xEF\xBB\xBFconst x = 1;"))
	got, err := ReadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "const x = 1;" {
		t.Errorf("BOM not stripped: %q", got)
	}
}

func TestReadSourceUTF16LE(t *testing.T) {
	// "hi" in UTF-16LE with a BOM.
	path := writeSourceFile(t, []byte{0xFF, 0xFE, 'h', 0, 'i', 0})
	got, err := ReadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("got %q", got)
	}
}

func TestReadSourceMissingFile(t *testing.T) {
	if _, err := ReadSource(filepath.Join(t.TempDir(), "absent.ts")); err == nil {
		t.Error("expected error for missing file")
	}
}
