package codegen

import (
	"fmt"
	"strings"
)

func jsLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return "\"" + jsStringEscape(val) + "\""
	case float64:
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isJSIdentifier reports whether s is a valid JavaScript identifier that can
// be used in dot-notation property access (e.g., `obj.foo`). Names containing
// spaces, hyphens, or starting with a digit must use bracket notation instead.
func isJSIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$') {
				return false
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$') {
				return false
			}
		}
	}
	return true
}

// jsPropAccess returns a JavaScript property access expression. It uses dot
// notation for valid identifiers (`obj.foo`) and bracket notation for names
// that are not valid identifiers (`obj["antall ansatte"]`).
// The special name `__proto__` always uses bracket notation to make the
// access explicit and avoid confusion with the prototype accessor.
func jsPropAccess(accessor, propName string) string {
	if propName == "__proto__" {
		return accessor + "[\"__proto__\"]"
	}
	if isJSIdentifier(propName) {
		return accessor + "." + propName
	}
	return accessor + "[\"" + jsStringEscape(propName) + "\"]"
}

// jsObjectKey returns a JavaScript object literal key. For valid identifiers
// it returns the name as-is (`foo`), for others it returns a quoted string
// (`"antall ansatte"`). The special name `__proto__` uses computed property
// name syntax (`["__proto__"]`) to avoid triggering the prototype setter
// in object literals.
func jsObjectKey(propName string) string {
	if propName == "__proto__" {
		return `["__proto__"]`
	}
	if isJSIdentifier(propName) {
		return propName
	}
	return "\"" + jsStringEscape(propName) + "\""
}

// jsPropPathSuffix returns the path suffix for a property name as it would
// appear in human-readable error paths. Valid identifiers use ".foo", while
// non-identifiers use `["antall ansatte"]`.
func jsPropPathSuffix(propName string) string {
	if propName == "__proto__" {
		return "[\"__proto__\"]"
	}
	if isJSIdentifier(propName) {
		return "." + propName
	}
	return "[\"" + jsStringEscape(propName) + "\"]"
}

// jsStringEscape escapes a string so it can be safely embedded inside a
// JavaScript double-quoted string literal. It handles backslashes, quotes,
// control characters (< 0x20), and Unicode line/paragraph separators.
func jsStringEscape(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\u2028':
			buf.WriteString(`\u2028`)
		case '\u2029':
			buf.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				buf.WriteString(fmt.Sprintf(`\x%02x`, r))
			} else {
				buf.WriteRune(r)
			}
		}
	}
	return buf.String()
}
