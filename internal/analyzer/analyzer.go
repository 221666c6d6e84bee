// Package analyzer resolves TypeScript types into the structural model the
// code generators consume. It walks checker types, never the syntax tree,
// so mapped types, generics and conditional types arrive already resolved.
//
// The analyzer never fails: any shape it cannot classify degrades to the
// "unknown" kind, which downstream generators treat as "emit nothing".
package analyzer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tscodec/tscodec/internal/metadata"
)

// maxDepth bounds type recursion independently of the cycle guard. It
// protects against types that expand to a fresh anonymous type at every
// level, which the visited-set cannot catch.
const maxDepth = 24

// Analyzer converts checker types into AnalyzedType trees. One Analyzer is
// bound to one checker (one program snapshot); results are memoized by the
// type-argument syntax node and must be discarded with the program. Not safe
// for concurrent use: analysis runs on the pipeline's single-threaded
// program pass, like the checker it wraps.
type Analyzer struct {
	checker *shimchecker.Checker

	cache map[*ast.Node]*metadata.AnalyzedType

	// visiting tracks object types on the current analysis path. A type
	// seen again while still on the path is a cycle and collapses to a
	// bare object leaf. Scoped to one top-level analysis, not global.
	visiting map[shimchecker.TypeId]bool
	depth    int
}

// New creates an Analyzer bound to the given checker.
func New(checker *shimchecker.Checker) *Analyzer {
	return &Analyzer{
		checker:  checker,
		cache:    make(map[*ast.Node]*metadata.AnalyzedType),
		visiting: make(map[shimchecker.TypeId]bool),
	}
}

// AnalyzeTypeNode resolves the type behind a type-argument node and analyzes
// it. Results are cached by the syntax node: within one program instance the
// same node always resolves to the same type.
func (a *Analyzer) AnalyzeTypeNode(node *ast.Node) *metadata.AnalyzedType {
	if cached, ok := a.cache[node]; ok {
		return cached
	}

	t := shimchecker.Checker_getTypeFromTypeNode(a.checker, node)
	result := a.AnalyzeType(typeNodeName(node), t)

	a.cache[node] = result
	return result
}

// AnalyzeType analyzes a resolved type as a generation root: its own
// properties become the top-level property list, sorted by name.
func (a *Analyzer) AnalyzeType(name string, t *shimchecker.Type) *metadata.AnalyzedType {
	result := &metadata.AnalyzedType{Name: name}
	if t == nil {
		return result
	}

	root := a.analyze(name, t)
	if root.Type == metadata.KindObject {
		result.Properties = root.Properties
	}
	return result
}

// analyze classifies one resolved type. The first matching rule wins.
func (a *Analyzer) analyze(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	p := &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
	if t == nil {
		return p
	}
	if a.depth >= maxDepth {
		return p
	}
	a.depth++
	defer func() { a.depth-- }()

	flags := t.Flags()

	switch {
	case flags&shimchecker.TypeFlagsAny != 0:
		p.Type = metadata.KindAny
		return p
	case flags&shimchecker.TypeFlagsUnknown != 0:
		return p
	case flags&shimchecker.TypeFlagsNever != 0:
		p.Type = metadata.KindNever
		return p
	case flags&shimchecker.TypeFlagsNull != 0:
		p.Type = metadata.KindNull
		return p
	}

	// Branded intersections resolve before any other classification so that
	// `string & { __brand: 'Email' }` never reads as a plain intersection.
	if flags&shimchecker.TypeFlagsIntersection != 0 {
		return a.analyzeIntersection(name, t)
	}

	// Enum literals carry their primitive literal flag too; classify them
	// first so they surface as enum, not literal.
	if flags&shimchecker.TypeFlagsEnumLiteral != 0 {
		if lit, ok := literalOf(t); ok {
			p.Type = metadata.KindEnum
			p.Literals = []metadata.Literal{lit}
			return p
		}
	}

	if flags&(shimchecker.TypeFlagsStringLiteral|shimchecker.TypeFlagsNumberLiteral|shimchecker.TypeFlagsBooleanLiteral) != 0 {
		if lit, ok := literalOf(t); ok {
			p.Type = metadata.KindLiteral
			p.Literals = []metadata.Literal{lit}
			return p
		}
		// A lone intrinsic true/false without a literal value degrades to
		// the boolean primitive.
		p.Type = metadata.KindBoolean
		return p
	}

	switch {
	case flags&shimchecker.TypeFlagsString != 0:
		p.Type = metadata.KindString
		return p
	case flags&shimchecker.TypeFlagsNumber != 0:
		p.Type = metadata.KindNumber
		return p
	case flags&shimchecker.TypeFlagsBoolean != 0:
		p.Type = metadata.KindBoolean
		return p
	case flags&shimchecker.TypeFlagsTemplateLiteral != 0:
		p.Type = metadata.KindString
		p.Brand = metadata.BrandTemplate
		return p
	case flags&(shimchecker.TypeFlagsBigInt|shimchecker.TypeFlagsBigIntLiteral) != 0:
		p.Type = metadata.KindBigint
		return p
	}

	if flags&shimchecker.TypeFlagsUnion != 0 {
		return a.analyzeUnion(name, t)
	}

	if flags&shimchecker.TypeFlagsObject != 0 {
		return a.analyzeObjectLike(name, t)
	}

	// Type parameters and friends: fall back to the base constraint.
	if flags&(shimchecker.TypeFlagsTypeParameter|shimchecker.TypeFlagsConditional|shimchecker.TypeFlagsIndexedAccess|shimchecker.TypeFlagsIndex) != 0 {
		constraint := shimchecker.Checker_getBaseConstraintOfType(a.checker, t)
		if constraint != nil && constraint != t {
			return a.analyze(name, constraint)
		}
	}

	return p
}

// analyzeUnion partitions a union into null presence, undefined presence,
// literal members and remaining ("other") members, then collapses:
//
//	literals only        -> literal (or enum when every literal is one)
//	one other, no lits   -> that member, annotated nullable/optional
//	others remain        -> union carrying both literals and members
//	nothing left         -> unknown, optional
func (a *Analyzer) analyzeUnion(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	members := t.Types()

	var literals []metadata.Literal
	var others []*metadata.AnalyzedProperty
	nullable := false
	optional := false
	allEnum := true
	sawBoolean := false

	for _, member := range members {
		f := member.Flags()
		switch {
		case f&shimchecker.TypeFlagsNull != 0:
			nullable = true
			continue
		case f&shimchecker.TypeFlagsUndefined != 0:
			optional = true
			continue
		}

		// The checker models boolean as the union true | false. When both
		// halves are present, fold them into a single boolean member.
		if f&shimchecker.TypeFlagsBooleanLiteral != 0 && hasBothBooleans(members) {
			if !sawBoolean {
				sawBoolean = true
				others = append(others, &metadata.AnalyzedProperty{Name: name, Type: metadata.KindBoolean})
				allEnum = false
			}
			continue
		}

		if f&(shimchecker.TypeFlagsStringLiteral|shimchecker.TypeFlagsNumberLiteral|shimchecker.TypeFlagsBooleanLiteral) != 0 {
			if lit, ok := literalOf(member); ok {
				literals = append(literals, lit)
				if f&shimchecker.TypeFlagsEnumLiteral == 0 {
					allEnum = false
				}
				continue
			}
		}

		others = append(others, a.analyze(name, member))
		allEnum = false
	}

	switch {
	case len(literals) > 0 && len(others) == 0:
		kind := metadata.KindLiteral
		if allEnum {
			kind = metadata.KindEnum
		}
		return &metadata.AnalyzedProperty{
			Name:     name,
			Type:     kind,
			Literals: literals,
			Nullable: nullable,
			Optional: optional,
		}

	case len(others) == 1 && len(literals) == 0:
		// T | null, T | undefined: the union disappears into flags on T.
		r := others[0]
		r.Name = name
		r.Nullable = r.Nullable || nullable
		r.Optional = r.Optional || optional
		return r

	case len(others) > 0:
		return &metadata.AnalyzedProperty{
			Name:       name,
			Type:       metadata.KindUnion,
			UnionTypes: others,
			Literals:   literals,
			Nullable:   nullable,
			Optional:   optional,
		}
	}

	// Pure null | undefined.
	return &metadata.AnalyzedProperty{
		Name:     name,
		Type:     metadata.KindUnknown,
		Optional: true,
		Nullable: nullable,
	}
}

// analyzeObjectLike handles everything carrying the Object flag: tuples,
// arrays, recognized natives, records and plain objects.
func (a *Analyzer) analyzeObjectLike(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	if shimchecker.IsTupleType(t) {
		return a.analyzeTuple(name, t)
	}
	if shimchecker.Checker_isArrayType(a.checker, t) {
		return a.analyzeArray(name, t)
	}

	if sym := t.Symbol(); sym != nil {
		switch sym.Name {
		case "Date":
			return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindDate}
		case "Array", "ReadonlyArray":
			return a.analyzeArray(name, t)
		case "Function", "Promise":
			return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
		}
	}

	// Call-signature-only types (function expressions) carry no data.
	callSigs := shimchecker.Checker_getSignaturesOfType(a.checker, t, shimchecker.SignatureKindCall)
	props := shimchecker.Checker_getPropertiesOfType(a.checker, t)
	if len(callSigs) > 0 && len(props) == 0 {
		return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
	}

	// A pure string index signature with no named properties is a record.
	if len(props) == 0 {
		if infos := shimchecker.Checker_getIndexInfosOfType(a.checker, t); len(infos) > 0 {
			info := infos[0]
			keyType := shimchecker.IndexInfo_keyType(info)
			if keyType != nil && keyType.Flags()&shimchecker.TypeFlagsString != 0 {
				value := a.analyze("value", shimchecker.IndexInfo_valueType(info))
				return &metadata.AnalyzedProperty{
					Name:      name,
					Type:      metadata.KindRecord,
					IndexType: value,
				}
			}
		}
	}

	// Cyclic object: collapse to a bare leaf instead of recursing forever.
	if a.visiting[t.Id()] {
		return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindObject}
	}
	a.visiting[t.Id()] = true
	defer delete(a.visiting, t.Id())

	obj := &metadata.AnalyzedProperty{Name: name, Type: metadata.KindObject}
	for _, prop := range props {
		propType := shimchecker.Checker_getTypeOfSymbol(a.checker, prop)
		analyzed := a.analyze(prop.Name, propType)
		// Optionality comes from the symbol's own flag, not from scanning
		// the union for undefined: mapped types adjust this flag without
		// materializing undefined members.
		if prop.Flags&ast.SymbolFlagsOptional != 0 {
			analyzed.Optional = true
		}
		obj.Properties = append(obj.Properties, analyzed)
	}

	// Alphabetical order is load-bearing: the codec assigns wire field
	// numbers by position in this list.
	sortProperties(obj.Properties)
	return obj
}

func sortProperties(props []*metadata.AnalyzedProperty) {
	sort.Slice(props, func(i, j int) bool {
		return props[i].Name < props[j].Name
	})
}

func (a *Analyzer) analyzeTuple(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	args := shimchecker.Checker_getTypeArguments(a.checker, t)
	tuple := &metadata.AnalyzedProperty{Name: name, Type: metadata.KindTuple}
	for i, arg := range args {
		elem := a.analyze(strconv.Itoa(i), arg)
		elem.Optional = false
		tuple.TupleTypes = append(tuple.TupleTypes, elem)
	}
	return tuple
}

func (a *Analyzer) analyzeArray(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	arr := &metadata.AnalyzedProperty{Name: name, Type: metadata.KindArray}
	args := shimchecker.Checker_getTypeArguments(a.checker, t)
	if len(args) > 0 {
		arr.ItemType = a.analyze("item", args[0])
	} else {
		arr.ItemType = &metadata.AnalyzedProperty{Name: "item", Type: metadata.KindUnknown}
	}
	return arr
}

// hasBothBooleans reports whether a union contains at least two distinct
// boolean-literal members (i.e. both true and false).
func hasBothBooleans(members []*shimchecker.Type) bool {
	count := 0
	for _, m := range members {
		if m.Flags()&shimchecker.TypeFlagsBooleanLiteral != 0 {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// literalOf extracts a literal value from a literal type, normalizing the
// checker's numeric representation to float64.
func literalOf(t *shimchecker.Type) (metadata.Literal, bool) {
	// AsLiteralType panics rather than returning nil when the type's data is
	// not a LiteralType (e.g. an enum type, which is a union carrying the
	// EnumLiteral flag), so gate on the literal flags first.
	if t.Flags()&shimchecker.TypeFlagsLiteral == 0 {
		return metadata.Literal{}, false
	}
	lit := t.AsLiteralType()
	if lit == nil {
		return metadata.Literal{}, false
	}
	switch v := lit.Value().(type) {
	case string:
		return metadata.Literal{Type: metadata.LiteralString, Value: v}, true
	case bool:
		return metadata.Literal{Type: metadata.LiteralBoolean, Value: v}, true
	case float64:
		return metadata.Literal{Type: metadata.LiteralNumber, Value: v}, true
	case int:
		return metadata.Literal{Type: metadata.LiteralNumber, Value: float64(v)}, true
	default:
		// The checker's own numeric wrapper stringifies cleanly.
		var f float64
		if _, err := fmt.Sscanf(fmt.Sprintf("%v", v), "%g", &f); err == nil {
			return metadata.Literal{Type: metadata.LiteralNumber, Value: f}, true
		}
	}
	return metadata.Literal{}, false
}

// typeNodeName extracts a display name from a type-argument node. Anonymous
// type literals get an empty name.
func typeNodeName(node *ast.Node) string {
	if node == nil || node.Kind != ast.KindTypeReference {
		return ""
	}
	ref := node.AsTypeReferenceNode()
	if ref.TypeName != nil && ref.TypeName.Kind == ast.KindIdentifier {
		return ref.TypeName.Text()
	}
	return ""
}
