package codegen

import "testing"

func TestJSLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"hello", `"hello"`},
		{`with "quotes"`, `"with \"quotes\""`},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{true, "true"},
		{false, "false"},
		{7, "7"},
	}
	for _, tt := range tests {
		if got := jsLiteral(tt.in); got != tt.want {
			t.Errorf("jsLiteral(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsJSIdentifier(t *testing.T) {
	valid := []string{"foo", "_bar", "$x", "a1", "camelCase"}
	for _, s := range valid {
		if !isJSIdentifier(s) {
			t.Errorf("isJSIdentifier(%q) = false", s)
		}
	}
	invalid := []string{"", "1a", "has space", "kebab-case", "dot.ted", "ütf"}
	for _, s := range invalid {
		if isJSIdentifier(s) {
			t.Errorf("isJSIdentifier(%q) = true", s)
		}
	}
}

func TestJSPropAccess(t *testing.T) {
	if got := jsPropAccess("obj", "foo"); got != "obj.foo" {
		t.Errorf("got %q", got)
	}
	if got := jsPropAccess("obj", "has space"); got != `obj["has space"]` {
		t.Errorf("got %q", got)
	}
	if got := jsPropAccess("obj", "__proto__"); got != `obj["__proto__"]` {
		t.Errorf("__proto__ must use bracket notation, got %q", got)
	}
}

func TestJSObjectKey(t *testing.T) {
	if got := jsObjectKey("foo"); got != "foo" {
		t.Errorf("got %q", got)
	}
	if got := jsObjectKey("has space"); got != `"has space"` {
		t.Errorf("got %q", got)
	}
	if got := jsObjectKey("__proto__"); got != `["__proto__"]` {
		t.Errorf("__proto__ must use computed key, got %q", got)
	}
}

func TestJSPropPathSuffix(t *testing.T) {
	if got := jsPropPathSuffix("foo"); got != ".foo" {
		t.Errorf("got %q", got)
	}
	if got := jsPropPathSuffix("has space"); got != `["has space"]` {
		t.Errorf("got %q", got)
	}
	if got := jsPropPathSuffix("__proto__"); got != `["__proto__"]` {
		t.Errorf("got %q", got)
	}
}

func TestJSStringEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"tab\there", `tab\there`},
		{"\r\b\f", `\r\b\f`},
		{" ", `\u2028`},
		{" ", `\u2029`},
		{"\x01", `\x01`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := jsStringEscape(tt.in); got != tt.want {
			t.Errorf("jsStringEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
