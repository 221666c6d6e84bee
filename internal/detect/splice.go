package detect

import (
	"strings"
)

// spliceSentinel marks a file as already rewritten so a second pass leaves
// it untouched.
const spliceSentinel = "/* tscodec generated */"

// Generated pairs a call kind with its generated replacement source.
type Generated struct {
	Kind CallKind
	Code string
}

// SpliceEmitted rewrites emitted JavaScript: the Nth codec(...) call is
// replaced by the Nth generated codec snippet, and likewise for
// validator.build(...). Type arguments are erased during emit, so matching
// is by occurrence order, which the extraction pass produced sorted by
// source position.
//
// The marker import line is dropped and a sentinel comment prepended.
func SpliceEmitted(js string, module string, generated []Generated) string {
	if len(generated) == 0 {
		return js
	}
	if strings.Contains(js, spliceSentinel) {
		return js
	}

	js = stripMarkerImport(js, module)

	var codecs, validators []string
	for _, g := range generated {
		if g.Kind == CallCodec {
			codecs = append(codecs, g.Code)
		} else {
			validators = append(validators, g.Code)
		}
	}

	// validator.build first: a plain "codec(" scan must not fire inside
	// text that mentions it, and the longer marker is unambiguous.
	js = replaceCalls(js, "validator.build(", validators)
	js = replaceCalls(js, "codec(", codecs)

	return spliceSentinel + "\n" + js
}

// replaceCalls substitutes each occurrence of marker + balanced argument
// list with the next replacement, in order.
func replaceCalls(text, marker string, replacements []string) string {
	if len(replacements) == 0 {
		return text
	}
	var b strings.Builder
	idx := 0
	pos := 0
	for idx < len(replacements) {
		i := indexCall(text, pos, marker)
		if i < 0 {
			break
		}
		open := i + len(marker) - 1
		end := matchingParen(text, open)
		if end < 0 {
			break
		}
		b.WriteString(text[pos:i])
		b.WriteString(replacements[idx])
		idx++
		pos = end + 1
	}
	b.WriteString(text[pos:])
	return b.String()
}

// indexCall finds the next occurrence of marker at or after pos that is not
// part of a longer identifier.
func indexCall(text string, pos int, marker string) int {
	for {
		i := strings.Index(text[pos:], marker)
		if i < 0 {
			return -1
		}
		i += pos
		if i > 0 && isWordByte(text[i-1]) {
			pos = i + len(marker)
			continue
		}
		return i
	}
}

// stripMarkerImport removes the import/require line for the marker module
// from emitted JavaScript.
func stripMarkerImport(js, module string) string {
	lines := strings.Split(js, "\n")
	out := lines[:0]
	removed := false
	for _, line := range lines {
		if !removed && isMarkerImportLine(line, module) {
			removed = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// isMarkerImportLine detects ESM or CJS import lines for the marker module.
func isMarkerImportLine(line, module string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "import ") &&
		(strings.Contains(trimmed, `from "`+module+`"`) || strings.Contains(trimmed, `from '`+module+`'`)) {
		return true
	}
	if (strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "var ") || strings.HasPrefix(trimmed, "let ")) &&
		(strings.Contains(trimmed, `require("`+module+`")`) || strings.Contains(trimmed, `require('`+module+`')`)) {
		return true
	}
	return false
}
