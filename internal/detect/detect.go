// Package detect finds codec<T>() and validator.build<T>() call sites in
// TypeScript source, resolves their generation inputs (type argument, custom
// messages, custom tail, brand registrations) and matches them back into the
// emitted JavaScript for splicing.
package detect

import (
	"sort"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tscodec/tscodec/internal/diagnostic"
)

// MarkerModule is the import specifier that marks codec/validator calls as
// ours.
const MarkerModule = "tscodec"

// CallKind distinguishes the two marker call shapes.
type CallKind int

const (
	CallCodec CallKind = iota
	CallValidator
)

func (k CallKind) String() string {
	if k == CallCodec {
		return "codec"
	}
	return "validator.build"
}

// Call is one detected, well-formed marker call site.
type Call struct {
	Kind CallKind

	// TypeArg is the sole generation type argument.
	TypeArg *ast.Node

	// Messages maps dotted property paths to custom error messages,
	// extracted from the second type argument of validator.build.
	Messages map[string]string

	// TailSource is the literal source text of the optional value argument
	// of validator.build, empty when absent.
	TailSource string

	// Pos orders calls by source position.
	Pos int

	// Line is the 1-based source line of the call.
	Line int
}

// ContainsMarker is the raw-text pre-filter: a file is only parsed for
// marker calls when one of these substrings occurs.
func ContainsMarker(src string) bool {
	return strings.Contains(src, "codec<") ||
		strings.Contains(src, "codec(") ||
		strings.Contains(src, "validator.build")
}

// Extract finds marker calls in a source file. Only calls whose callee is
// imported from the given marker module count. Malformed call shapes are
// reported and skipped.
func Extract(sf *ast.SourceFile, checker *shimchecker.Checker, module string, diags *diagnostic.Collector) []Call {
	imports := markerImports(sf, module)
	if len(imports) == 0 {
		return nil
	}

	var calls []Call
	walk(sf.AsNode(), func(node *ast.Node) {
		if node.Kind != ast.KindCallExpression {
			return
		}
		call := node.AsCallExpression()
		if c, ok := extractCall(sf, checker, call, node, imports, diags); ok {
			calls = append(calls, c)
		}
	})

	sort.Slice(calls, func(i, j int) bool { return calls[i].Pos < calls[j].Pos })
	return calls
}

// markerImports scans top-level import declarations from the marker module
// and maps local names back to the original exported names ("codec",
// "validator").
func markerImports(sf *ast.SourceFile, module string) map[string]string {
	result := make(map[string]string)

	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindImportDeclaration {
			continue
		}
		decl := stmt.AsImportDeclaration()
		if decl.ModuleSpecifier == nil || decl.ModuleSpecifier.Kind != ast.KindStringLiteral {
			continue
		}
		if decl.ModuleSpecifier.AsStringLiteral().Text != module {
			continue
		}
		if decl.ImportClause == nil {
			continue
		}
		clause := decl.ImportClause.AsImportClause()
		if clause.NamedBindings == nil || clause.NamedBindings.Kind != ast.KindNamedImports {
			continue
		}
		named := clause.NamedBindings.AsNamedImports()
		if named.Elements == nil {
			continue
		}
		for _, elem := range named.Elements.Nodes {
			spec := elem.AsImportSpecifier()
			if spec.IsTypeOnly {
				continue
			}
			localName := spec.Name().Text()
			originalName := localName
			if spec.PropertyName != nil {
				originalName = spec.PropertyName.AsIdentifier().Text
			}
			if originalName == "codec" || originalName == "validator" {
				result[localName] = originalName
			}
		}
	}

	return result
}

func extractCall(sf *ast.SourceFile, checker *shimchecker.Checker, call *ast.CallExpression, node *ast.Node, imports map[string]string, diags *diagnostic.Collector) (Call, bool) {
	switch call.Expression.Kind {
	case ast.KindIdentifier:
		if imports[call.Expression.AsIdentifier().Text] != "codec" {
			return Call{}, false
		}
		return extractCodecCall(sf, call, node, diags)
	case ast.KindPropertyAccessExpression:
		pa := call.Expression.AsPropertyAccessExpression()
		if pa.Expression.Kind != ast.KindIdentifier {
			return Call{}, false
		}
		if imports[pa.Expression.AsIdentifier().Text] != "validator" {
			return Call{}, false
		}
		name := pa.Name()
		if name == nil || name.Kind != ast.KindIdentifier || name.AsIdentifier().Text != "build" {
			return Call{}, false
		}
		return extractBuildCall(sf, checker, call, node, diags)
	}
	return Call{}, false
}

func extractCodecCall(sf *ast.SourceFile, call *ast.CallExpression, node *ast.Node, diags *diagnostic.Collector) (Call, bool) {
	if call.TypeArguments == nil || len(call.TypeArguments.Nodes) != 1 {
		skipCall(sf, node, diags, "codec requires exactly one type argument")
		return Call{}, false
	}
	if call.Arguments != nil && len(call.Arguments.Nodes) > 0 {
		skipCall(sf, node, diags, "codec takes no value arguments")
		return Call{}, false
	}
	return Call{
		Kind:    CallCodec,
		TypeArg: call.TypeArguments.Nodes[0],
		Pos:     node.Pos(),
		Line:    lineOf(sf, node.Pos()),
	}, true
}

func extractBuildCall(sf *ast.SourceFile, checker *shimchecker.Checker, call *ast.CallExpression, node *ast.Node, diags *diagnostic.Collector) (Call, bool) {
	if call.TypeArguments == nil || len(call.TypeArguments.Nodes) < 1 || len(call.TypeArguments.Nodes) > 2 {
		skipCall(sf, node, diags, "validator.build requires one or two type arguments")
		return Call{}, false
	}
	c := Call{
		Kind:    CallValidator,
		TypeArg: call.TypeArguments.Nodes[0],
		Pos:     node.Pos(),
		Line:    lineOf(sf, node.Pos()),
	}
	if len(call.TypeArguments.Nodes) == 2 {
		c.Messages = messagesFromTypeNode(checker, call.TypeArguments.Nodes[1])
	}
	if call.Arguments != nil {
		switch len(call.Arguments.Nodes) {
		case 0:
		case 1:
			c.TailSource = nodeText(sf, call.Arguments.Nodes[0])
		default:
			skipCall(sf, node, diags, "validator.build takes at most one value argument")
			return Call{}, false
		}
	}
	return c, true
}

func skipCall(sf *ast.SourceFile, node *ast.Node, diags *diagnostic.Collector, msg string) {
	diags.Warn(diagnostic.CategoryMarkerInvalid, sf.FileName(), lineOf(sf, node.Pos()), msg+"; call site skipped")
}

// messagesFromTypeNode flattens the second type argument of validator.build
// into a dotted-path map: every string-literal leaf contributes its value
// under the path of property names leading to it.
func messagesFromTypeNode(checker *shimchecker.Checker, node *ast.Node) map[string]string {
	t := shimchecker.Checker_getTypeFromTypeNode(checker, node)
	if t == nil {
		return nil
	}
	out := make(map[string]string)
	collectMessages(checker, t, "", out, 0)
	if len(out) == 0 {
		return nil
	}
	return out
}

func collectMessages(checker *shimchecker.Checker, t *shimchecker.Type, prefix string, out map[string]string, depth int) {
	if t == nil || depth > 8 {
		return
	}
	if t.Flags()&shimchecker.TypeFlagsStringLiteral != 0 {
		if lit := t.AsLiteralType(); lit != nil {
			if s, ok := lit.Value().(string); ok && prefix != "" {
				out[prefix] = s
			}
		}
		return
	}
	if t.Flags()&shimchecker.TypeFlagsObject == 0 {
		return
	}
	for _, prop := range shimchecker.Checker_getPropertiesOfType(checker, t) {
		path := prop.Name
		if prefix != "" {
			path = prefix + "." + prop.Name
		}
		collectMessages(checker, shimchecker.Checker_getTypeOfSymbol(checker, prop), path, out, depth+1)
	}
}

// walk visits every node in pre-order.
func walk(node *ast.Node, visit func(*ast.Node)) {
	if node == nil {
		return
	}
	visit(node)
	node.ForEachChild(func(child *ast.Node) bool {
		walk(child, visit)
		return false
	})
}

// nodeText slices a node's source text, trimming the leading trivia included
// in Pos().
func nodeText(sf *ast.SourceFile, node *ast.Node) string {
	text := sf.Text()
	start, end := node.Pos(), node.End()
	if start < 0 || end > len(text) || start >= end {
		return ""
	}
	return strings.TrimSpace(text[start:end])
}

func lineOf(sf *ast.SourceFile, pos int) int {
	text := sf.Text()
	if pos > len(text) {
		pos = len(text)
	}
	return 1 + strings.Count(text[:pos], "\n")
}
