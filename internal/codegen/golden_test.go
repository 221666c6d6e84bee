package codegen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"golang.org/x/tools/txtar"

	"github.com/tscodec/tscodec/internal/metadata"
)

// Golden fixtures pair an analyzed type (type.json) with the lines both
// generators must emit for it (validator.contains, codec.contains). Lines
// starting with # are comments.
func TestGoldenFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden fixtures under testdata/")
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}

			var at metadata.AnalyzedType
			var validatorWant, codecWant []string
			seenType := false
			for _, f := range ar.Files {
				switch f.Name {
				case "type.json":
					if err := json.Unmarshal(f.Data, &at); err != nil {
						t.Fatalf("type.json: %v", err)
					}
					seenType = true
				case "validator.contains":
					validatorWant = fixtureLines(f.Data)
				case "codec.contains":
					codecWant = fixtureLines(f.Data)
				default:
					t.Fatalf("unexpected fixture file %q", f.Name)
				}
			}
			if !seenType {
				t.Fatal("fixture has no type.json")
			}

			if len(validatorWant) > 0 {
				code := GenerateValidator(&at, nil)
				for _, want := range validatorWant {
					assertContains(t, code, want)
				}
			}
			if len(codecWant) > 0 {
				code := GenerateCodec(&at, nil)
				for _, want := range codecWant {
					assertContains(t, code, want)
				}
			}
		})
	}
}

func fixtureLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
