package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryMarkerInvalid,
		File:     "src/user.ts",
		Line:     12,
		Message:  "codec requires exactly one type argument",
	}
	got := d.String()
	want := "src/user.ts:12 - warning: [marker-invalid] codec requires exactly one type argument"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDiagnosticStringWithHint(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryBrandUnregistered,
		Message:  "no validator registered for brand \"email\"",
		Hint:     "register one with validator.set(\"email\", (value) => { ... })",
	}
	got := d.String()
	if !strings.Contains(got, "hint: register one") {
		t.Errorf("missing hint in %q", got)
	}
}

func TestDiagnosticStringNoFile(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Message: "boom"}
	if got := d.String(); got != "error: boom" {
		t.Errorf("got %q", got)
	}
}

func TestCollectorWarn(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryMarkerInvalid, "a.ts", 1, "bad call")

	if c.HasErrors() {
		t.Error("warning should not count as error")
	}
	if c.WarningCount() != 1 {
		t.Errorf("WarningCount = %d", c.WarningCount())
	}
}

func TestCollectorStrictPromotesWarnings(t *testing.T) {
	c := NewCollector(true, false)
	c.Warn(CategoryMarkerInvalid, "a.ts", 1, "bad call")
	c.WarnWithHint(CategoryBrandUnregistered, "a.ts", 2, "no brand", "register it")

	if !c.HasErrors() {
		t.Error("strict mode should promote warnings to errors")
	}
	if c.ErrorCount() != 2 {
		t.Errorf("ErrorCount = %d", c.ErrorCount())
	}
	if c.WarningCount() != 0 {
		t.Errorf("WarningCount = %d", c.WarningCount())
	}
}

func TestCollectorQuietSuppressesWarnings(t *testing.T) {
	c := NewCollector(false, true)
	c.Warn(CategoryMarkerInvalid, "a.ts", 1, "bad call")
	c.Error(CategoryConfigInvalid, "", 0, "broken config")

	if len(c.Diagnostics()) != 1 {
		t.Fatalf("expected only the error to survive, got %v", c.Diagnostics())
	}
	if !c.HasErrors() {
		t.Error("errors must not be suppressed by quiet")
	}
}

func TestCollectorNilSafe(t *testing.T) {
	var c *Collector
	c.Warn(CategoryMarkerInvalid, "a.ts", 1, "bad")
	c.Error(CategoryMarkerInvalid, "a.ts", 1, "bad")
	if c.HasErrors() || c.ErrorCount() != 0 || c.WarningCount() != 0 {
		t.Error("nil collector should report nothing")
	}
	if c.FormatAll() != "" || c.Summary() != "" {
		t.Error("nil collector should format empty")
	}
}

func TestFormatAllAndSummary(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryTypeUnsupported, "a.ts", 3, "unsupported type")
	c.Error(CategoryConfigInvalid, "", 0, "broken")

	out := c.FormatAll()
	if !strings.Contains(out, "a.ts:3") || !strings.Contains(out, "broken") {
		t.Errorf("FormatAll = %q", out)
	}
	if got := c.Summary(); got != "1 error(s), 1 warning(s)" {
		t.Errorf("Summary = %q", got)
	}

	empty := NewCollector(false, false)
	if got := empty.Summary(); got != "no issues" {
		t.Errorf("Summary = %q", got)
	}
}
