package analyzer

import (
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tscodec/tscodec/internal/metadata"
)

// brandProperty is the phantom member that marks a nominal type:
// `string & { __brand: 'Email' }`.
const brandProperty = "__brand"

// analyzeIntersection recognizes the branded-primitive pattern: exactly one
// primitive member plus phantom object members carrying a string-literal
// __brand. Anything else flattens into a merged object when every member is
// object-like, and degrades to unknown otherwise.
func (a *Analyzer) analyzeIntersection(name string, t *shimchecker.Type) *metadata.AnalyzedProperty {
	members := t.Types()

	base := metadata.KindUnknown
	brand := ""
	objectMembers := 0

	for _, m := range members {
		f := m.Flags()
		switch {
		case f&shimchecker.TypeFlagsString != 0:
			if base != metadata.KindUnknown {
				base = metadata.KindUnknown
				goto merge
			}
			base = metadata.KindString
		case f&shimchecker.TypeFlagsNumber != 0:
			if base != metadata.KindUnknown {
				base = metadata.KindUnknown
				goto merge
			}
			base = metadata.KindNumber
		case f&shimchecker.TypeFlagsBoolean != 0:
			if base != metadata.KindUnknown {
				base = metadata.KindUnknown
				goto merge
			}
			base = metadata.KindBoolean
		case f&(shimchecker.TypeFlagsBigInt|shimchecker.TypeFlagsBigIntLiteral) != 0:
			if base != metadata.KindUnknown {
				base = metadata.KindUnknown
				goto merge
			}
			base = metadata.KindBigint
		case f&shimchecker.TypeFlagsObject != 0:
			objectMembers++
			if brand == "" {
				brand = a.brandOf(m)
			}
		default:
			// A member that is neither primitive nor object disqualifies
			// the branded reading.
			return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
		}
	}

	if base != metadata.KindUnknown {
		return &metadata.AnalyzedProperty{Name: name, Type: base, Brand: brand}
	}

merge:
	if objectMembers == len(members) && objectMembers > 0 {
		return a.mergeObjectIntersection(name, members)
	}
	return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
}

// brandOf probes an object member for a string-literal __brand property.
func (a *Analyzer) brandOf(t *shimchecker.Type) string {
	sym := shimchecker.Checker_getPropertyOfType(a.checker, t, brandProperty)
	if sym == nil {
		return ""
	}
	bt := shimchecker.Checker_getTypeOfSymbol(a.checker, sym)
	if bt == nil || bt.Flags()&shimchecker.TypeFlagsStringLiteral == 0 {
		return ""
	}
	lit := bt.AsLiteralType()
	if lit == nil {
		return ""
	}
	if s, ok := lit.Value().(string); ok {
		return s
	}
	return ""
}

// mergeObjectIntersection flattens `A & B` of object types into one object
// whose property set is the union of the members'. Duplicate names keep the
// first occurrence, matching the checker's apparent-member order.
func (a *Analyzer) mergeObjectIntersection(name string, members []*shimchecker.Type) *metadata.AnalyzedProperty {
	merged := &metadata.AnalyzedProperty{Name: name, Type: metadata.KindObject}
	seen := make(map[string]bool)

	for _, m := range members {
		part := a.analyzeObjectLike(name, m)
		if part.Type != metadata.KindObject {
			return &metadata.AnalyzedProperty{Name: name, Type: metadata.KindUnknown}
		}
		for _, p := range part.Properties {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			merged.Properties = append(merged.Properties, p)
		}
	}

	sortProperties(merged.Properties)
	return merged
}
