package detect

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadSource reads a TypeScript source file as UTF-8 for the pre-filter.
// Files saved with a UTF-8 or UTF-16 byte order mark decode transparently;
// the returned text never starts with a BOM.
func ReadSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	defer f.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return "", fmt.Errorf("decode source %s: %w", path, err)
	}
	return string(data), nil
}
