package detect

import (
	"testing"
)

func TestParseFunctionSourceArrow(t *testing.T) {
	bv, ok := parseFunctionSource(`(value) => { if (!value) errors.push("bad"); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Param != "value" {
		t.Errorf("param: got %q", bv.Param)
	}
	if bv.Body != `if (!value) errors.push("bad");` {
		t.Errorf("body: got %q", bv.Body)
	}
	if bv.Async {
		t.Error("should not be async")
	}
}

func TestParseFunctionSourceBareParam(t *testing.T) {
	bv, ok := parseFunctionSource(`value => value.length > 0`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Param != "value" {
		t.Errorf("param: got %q", bv.Param)
	}
	if bv.Body != "value.length > 0;" {
		t.Errorf("body: got %q", bv.Body)
	}
}

func TestParseFunctionSourceExpressionBody(t *testing.T) {
	bv, ok := parseFunctionSource(`(v) => v.trim();`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Body != "v.trim();" {
		t.Errorf("body: got %q", bv.Body)
	}
}

func TestParseFunctionSourceFunctionKeyword(t *testing.T) {
	bv, ok := parseFunctionSource(`function (v) { return v; }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Param != "v" {
		t.Errorf("param: got %q", bv.Param)
	}
	if bv.Body != "return v;" {
		t.Errorf("body: got %q", bv.Body)
	}

	bv, ok = parseFunctionSource(`function check(v) { return v; }`)
	if !ok {
		t.Fatal("named function parse failed")
	}
	if bv.Param != "v" {
		t.Errorf("named param: got %q", bv.Param)
	}
}

func TestParseFunctionSourceAsync(t *testing.T) {
	bv, ok := parseFunctionSource(`async (v) => { await probe(v); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if !bv.Async {
		t.Error("async prefix not detected")
	}

	// Await in the body promotes even without the async keyword, which
	// happens when the registration site itself was not marked async.
	bv, ok = parseFunctionSource(`(v) => { await probe(v); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if !bv.Async {
		t.Error("await in body not detected")
	}
}

func TestParseFunctionSourceAwaitWordBoundary(t *testing.T) {
	bv, ok := parseFunctionSource(`(v) => { awaiting(v); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Async {
		t.Error("identifier containing 'await' must not promote to async")
	}
}

func TestParseFunctionSourceMultipleParams(t *testing.T) {
	bv, ok := parseFunctionSource(`(value, extra) => { use(value); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Param != "value" {
		t.Errorf("param: got %q", bv.Param)
	}
}

func TestParseFunctionSourceBraceInString(t *testing.T) {
	bv, ok := parseFunctionSource(`(v) => { check(v, "}"); }`)
	if !ok {
		t.Fatal("parse failed")
	}
	if bv.Body != `check(v, "}");` {
		t.Errorf("body: got %q", bv.Body)
	}
}

func TestParseFunctionSourceNotAFunction(t *testing.T) {
	if _, ok := parseFunctionSource(`42`); ok {
		t.Error("literal should not parse as a function")
	}
	if _, ok := parseFunctionSource(`(v) => `); ok {
		t.Error("empty body should not parse")
	}
	if _, ok := parseFunctionSource(`(v => {}`); ok {
		t.Error("unbalanced parens should not parse")
	}
}

func TestMatchDelimsSkipsStrings(t *testing.T) {
	s := `(a, ")", b)`
	if got := matchingParen(s, 0); got != len(s)-1 {
		t.Errorf("got %d, want %d", got, len(s)-1)
	}
	if got := matchingParen(`(unterminated`, 0); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestContainsMarker(t *testing.T) {
	positives := []string{
		"const c = codec<User>();",
		"const c = codec();",
		"const v = validator.build<User>();",
	}
	for _, src := range positives {
		if !ContainsMarker(src) {
			t.Errorf("ContainsMarker(%q) = false", src)
		}
	}
	negatives := []string{
		"const c = encode(data);",
		"// nothing here",
	}
	for _, src := range negatives {
		if ContainsMarker(src) {
			t.Errorf("ContainsMarker(%q) = true", src)
		}
	}
}
