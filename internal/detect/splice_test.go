package detect

import (
	"strings"
	"testing"
)

func TestSpliceReplacesCodecCall(t *testing.T) {
	js := "import { codec } from \"tscodec\";\nexport const c = codec();\n"
	out := SpliceEmitted(js, "tscodec", []Generated{{Kind: CallCodec, Code: "GEN"}})

	if !strings.HasPrefix(out, spliceSentinel+"\n") {
		t.Error("missing sentinel")
	}
	if !strings.Contains(out, "export const c = GEN;") {
		t.Errorf("call not replaced:\n%s", out)
	}
	if strings.Contains(out, "codec()") {
		t.Errorf("original call survived:\n%s", out)
	}
	if strings.Contains(out, "import { codec }") {
		t.Errorf("marker import survived:\n%s", out)
	}
}

func TestSpliceOccurrenceOrder(t *testing.T) {
	js := "const a = codec();\nconst b = codec();\n"
	out := SpliceEmitted(js, "tscodec", []Generated{
		{Kind: CallCodec, Code: "FIRST"},
		{Kind: CallCodec, Code: "SECOND"},
	})

	if !strings.Contains(out, "const a = FIRST;") || !strings.Contains(out, "const b = SECOND;") {
		t.Errorf("order mismatch:\n%s", out)
	}
}

func TestSpliceValidatorAndCodec(t *testing.T) {
	js := "const v = validator.build();\nconst c = codec();\n"
	out := SpliceEmitted(js, "tscodec", []Generated{
		{Kind: CallCodec, Code: "C"},
		{Kind: CallValidator, Code: "V"},
	})

	if !strings.Contains(out, "const v = V;") {
		t.Errorf("validator not replaced:\n%s", out)
	}
	if !strings.Contains(out, "const c = C;") {
		t.Errorf("codec not replaced:\n%s", out)
	}
}

func TestSpliceIdempotent(t *testing.T) {
	js := "const c = codec();\n"
	once := SpliceEmitted(js, "tscodec", []Generated{{Kind: CallCodec, Code: "GEN"}})
	twice := SpliceEmitted(once, "tscodec", []Generated{{Kind: CallCodec, Code: "OTHER"}})

	if once != twice {
		t.Errorf("second splice changed output:\n%s", twice)
	}
}

func TestSpliceNoGenerated(t *testing.T) {
	js := "const x = 1;\n"
	if out := SpliceEmitted(js, "tscodec", nil); out != js {
		t.Errorf("got %q", out)
	}
}

func TestSpliceWordBoundary(t *testing.T) {
	js := "const a = mycodec();\nconst b = codec();\n"
	out := SpliceEmitted(js, "tscodec", []Generated{{Kind: CallCodec, Code: "GEN"}})

	if !strings.Contains(out, "mycodec()") {
		t.Errorf("longer identifier was replaced:\n%s", out)
	}
	if !strings.Contains(out, "const b = GEN;") {
		t.Errorf("real call not replaced:\n%s", out)
	}
}

func TestSpliceBalancedParens(t *testing.T) {
	// The argument list contains nested parens and a paren inside a string.
	js := "const v = validator.build((data, report) => { report(\")(\", f(data)); });\n"
	out := SpliceEmitted(js, "tscodec", []Generated{{Kind: CallValidator, Code: "V"}})

	if !strings.Contains(out, "const v = V;") {
		t.Errorf("call with nested parens not replaced:\n%s", out)
	}
	if strings.Contains(out, "report(") {
		t.Errorf("argument text survived:\n%s", out)
	}
}

func TestStripMarkerImport(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"esm double quote", `import { codec } from "tscodec";`, true},
		{"esm single quote", `import { validator } from 'tscodec';`, true},
		{"cjs const", `const tscodec_1 = require("tscodec");`, true},
		{"cjs var", `var m = require('tscodec');`, true},
		{"other module", `import { codec } from "protobufjs";`, false},
		{"unrelated", `const x = 1;`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMarkerImportLine(tt.line, "tscodec"); got != tt.want {
				t.Errorf("isMarkerImportLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestStripMarkerImportRemovesOnlyFirst(t *testing.T) {
	js := "import { codec } from \"tscodec\";\nimport { other } from \"elsewhere\";\nconst x = 1;"
	out := stripMarkerImport(js, "tscodec")

	if strings.Contains(out, "tscodec") {
		t.Errorf("marker import survived:\n%s", out)
	}
	if !strings.Contains(out, "elsewhere") {
		t.Errorf("unrelated import dropped:\n%s", out)
	}
}
