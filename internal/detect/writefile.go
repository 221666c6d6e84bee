package detect

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/tspath"
)

// SpliceContext holds everything the WriteFile callback needs to splice
// generated code into emitted JavaScript. All fields are read-only after
// construction, so the callback is safe for concurrent emit.
type SpliceContext struct {
	// Module is the marker import specifier.
	Module string

	// Generated maps source file path to the ordered generated snippets for
	// that file.
	Generated map[string][]Generated

	// OutputToSource maps emitted .js paths back to their source files.
	OutputToSource map[string]string
}

// MakeWriteFile returns a WriteFile callback that splices generated code
// into .js outputs during emit and then writes them to disk.
func (ctx *SpliceContext) MakeWriteFile() shimcompiler.WriteFile {
	return func(fileName string, text string, bom bool, data *shimcompiler.WriteFileData) error {
		if strings.HasSuffix(fileName, ".js") {
			sourcePath := ctx.OutputToSource[tspath.NormalizePath(fileName)]
			if gen, ok := ctx.Generated[sourcePath]; ok && len(gen) > 0 {
				text = SpliceEmitted(text, ctx.Module, gen)
			}
		}
		return writeFileToDisk(fileName, text, bom)
	}
}

// writeFileToDisk replicates the default behavior of tsgo's host.WriteFile,
// creating parent directories as needed.
func writeFileToDisk(fileName string, text string, writeByteOrderMark bool) error {
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	content := text
	if writeByteOrderMark {
		content = "\xEF\xBB\xBF" + content
	}

	return os.WriteFile(fileName, []byte(content), 0644)
}

// BuildOutputToSource predicts each source file's emitted .js path from the
// rootDir/outDir pair the way the compiler mirrors directory structure, and
// returns the reverse map keyed by normalized output path.
func BuildOutputToSource(sourceFiles []*ast.SourceFile, rootDir, outDir string) map[string]string {
	result := make(map[string]string, len(sourceFiles))
	for _, sf := range sourceFiles {
		src := sf.FileName()
		noExt := stripTSExtension(src)

		out := noExt
		if outDir != "" {
			rel := noExt
			if rootDir != "" {
				if r, err := filepath.Rel(rootDir, noExt); err == nil && !strings.HasPrefix(r, "..") {
					rel = r
				} else {
					rel = filepath.Base(noExt)
				}
			} else {
				rel = filepath.Base(noExt)
			}
			out = filepath.Join(outDir, rel)
		}
		result[tspath.NormalizePath(out+".js")] = src
	}
	return result
}

func stripTSExtension(path string) string {
	for _, ext := range []string{".ts", ".tsx", ".mts", ".cts"} {
		if strings.HasSuffix(path, ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}
