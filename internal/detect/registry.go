package detect

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tscodec/tscodec/internal/codegen"
	"github.com/tscodec/tscodec/internal/diagnostic"
)

// ScanRegistrations finds validator.set("brand", fn) calls in a source file
// and returns the registered brand validators. Only files importing
// validator from the marker module are considered. The function argument is
// captured textually: parameter name, body source and async-ness.
func ScanRegistrations(sf *ast.SourceFile, module string, diags *diagnostic.Collector) map[string]codegen.BrandValidator {
	imports := markerImports(sf, module)
	local := ""
	for name, orig := range imports {
		if orig == "validator" {
			local = name
			break
		}
	}
	if local == "" {
		return nil
	}

	var out map[string]codegen.BrandValidator
	walk(sf.AsNode(), func(node *ast.Node) {
		if node.Kind != ast.KindCallExpression {
			return
		}
		call := node.AsCallExpression()
		if call.Expression.Kind != ast.KindPropertyAccessExpression {
			return
		}
		pa := call.Expression.AsPropertyAccessExpression()
		if pa.Expression.Kind != ast.KindIdentifier || pa.Expression.AsIdentifier().Text != local {
			return
		}
		name := pa.Name()
		if name == nil || name.Kind != ast.KindIdentifier || name.AsIdentifier().Text != "set" {
			return
		}
		if call.Arguments == nil || len(call.Arguments.Nodes) != 2 {
			diags.Warn(diagnostic.CategoryMarkerInvalid, sf.FileName(), lineOf(sf, node.Pos()),
				"validator.set requires a brand name and a validator function; registration skipped")
			return
		}
		brandArg := call.Arguments.Nodes[0]
		if brandArg.Kind != ast.KindStringLiteral {
			diags.Warn(diagnostic.CategoryMarkerInvalid, sf.FileName(), lineOf(sf, node.Pos()),
				"validator.set brand name must be a string literal; registration skipped")
			return
		}
		brand := brandArg.AsStringLiteral().Text

		bv, ok := parseFunctionSource(nodeText(sf, call.Arguments.Nodes[1]))
		if !ok {
			diags.Warn(diagnostic.CategoryMarkerInvalid, sf.FileName(), lineOf(sf, node.Pos()),
				"validator.set argument is not a function expression; registration skipped")
			return
		}
		if out == nil {
			out = make(map[string]codegen.BrandValidator)
		}
		out[brand] = bv
	})
	return out
}

// parseFunctionSource decomposes a function expression's source text into
// parameter name, body statements and async-ness. Handles arrow functions
// (parenthesized, bare-parameter and expression-bodied) and function
// expressions.
func parseFunctionSource(src string) (codegen.BrandValidator, bool) {
	s := strings.TrimSpace(src)
	var bv codegen.BrandValidator

	if strings.HasPrefix(s, "async") {
		bv.Async = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "async"))
	}
	if strings.HasPrefix(s, "function") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "function"))
		// skip an optional function name
		if i := strings.IndexByte(s, '('); i > 0 {
			s = s[i:]
		}
	}

	// Parameter list.
	if strings.HasPrefix(s, "(") {
		close := matchingParen(s, 0)
		if close < 0 {
			return bv, false
		}
		params := strings.TrimSpace(s[1:close])
		if i := strings.IndexByte(params, ','); i >= 0 {
			params = params[:i]
		}
		bv.Param = strings.TrimSpace(params)
		s = strings.TrimSpace(s[close+1:])
	} else if i := strings.Index(s, "=>"); i > 0 {
		bv.Param = strings.TrimSpace(s[:i])
		s = s[i:]
	} else {
		return bv, false
	}

	s = strings.TrimSpace(strings.TrimPrefix(s, "=>"))

	if strings.HasPrefix(s, "{") {
		end := matchingBrace(s, 0)
		if end < 0 {
			return bv, false
		}
		bv.Body = strings.TrimSpace(s[1:end])
	} else if s != "" {
		// Expression-bodied arrow: keep the expression as a statement.
		bv.Body = strings.TrimSuffix(s, ";") + ";"
	} else {
		return bv, false
	}

	if !bv.Async && containsAwait(bv.Body) {
		bv.Async = true
	}
	return bv, true
}

func containsAwait(body string) bool {
	idx := 0
	for {
		i := strings.Index(body[idx:], "await")
		if i < 0 {
			return false
		}
		i += idx
		before := byte(' ')
		if i > 0 {
			before = body[i-1]
		}
		after := byte(' ')
		if i+5 < len(body) {
			after = body[i+5]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = i + 5
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// matchingParen returns the index of the parenthesis closing the one at
// open, skipping string and template literals. -1 if unbalanced.
func matchingParen(s string, open int) int {
	return matchDelims(s, open, '(', ')')
}

// matchingBrace returns the index of the brace closing the one at open.
func matchingBrace(s string, open int) int {
	return matchDelims(s, open, '{', '}')
}

func matchDelims(s string, open int, lo, hi byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case lo:
			depth++
		case hi:
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'', '`':
			j := skipString(s, i)
			if j < 0 {
				return -1
			}
			i = j
		}
	}
	return -1
}

// skipString returns the index of the closing quote of the string starting
// at i, honoring backslash escapes. -1 if unterminated.
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return -1
}
