package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/tspath"
)

func TestStripTSExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/main.ts", "src/main"},
		{"src/app.tsx", "src/app"},
		{"src/mod.mts", "src/mod"},
		{"src/legacy.cts", "src/legacy"},
		{"src/plain.js", "src/plain.js"},
	}
	for _, tt := range tests {
		if got := stripTSExtension(tt.in); got != tt.want {
			t.Errorf("stripTSExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildOutputToSource(t *testing.T) {
	env := setupDetect(t, `export const x = 1;`)
	defer env.release()

	src := env.sourceFile.FileName()
	rootDir := filepath.ToSlash(filepath.Dir(src))

	m := BuildOutputToSource([]*ast.SourceFile{env.sourceFile}, rootDir, "/out")
	key := tspath.NormalizePath("/out/test.js")
	if m[key] != src {
		t.Errorf("outDir mapping: got %q for %q, want %q", m[key], key, src)
	}

	// Without outDir the .js lands next to the source.
	m = BuildOutputToSource([]*ast.SourceFile{env.sourceFile}, rootDir, "")
	key = tspath.NormalizePath(stripTSExtension(src) + ".js")
	if m[key] != src {
		t.Errorf("sibling mapping: got %q for %q, want %q", m[key], key, src)
	}
}

func TestWriteFileToDiskCreatesParents(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "deep", "nested", "out.js")

	if err := writeFileToDisk(target, "ok", false); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ok" {
		t.Errorf("content: got %q", got)
	}
}

func TestWriteFileToDiskBOM(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.js")
	if err := writeFileToDisk(target, "x", true); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "\xEF\xBB\xBFx" {
		t.Errorf("content: got %q", got)
	}
}
