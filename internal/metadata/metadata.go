// Package metadata defines the structural type representation produced by the
// analyzer and consumed by the code generators. An AnalyzedType is a fully
// resolved, checker-independent description of a TypeScript type: once built,
// generators never need to touch the type checker again.
package metadata

// Kind classifies an analyzed property.
type Kind string

const (
	KindAny     Kind = "any"
	KindArray   Kind = "array"
	KindBigint  Kind = "bigint"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindEnum    Kind = "enum"
	KindLiteral Kind = "literal"
	KindNever   Kind = "never"
	KindNull    Kind = "null"
	KindNumber  Kind = "number"
	KindObject  Kind = "object"
	KindRecord  Kind = "record"
	KindString  Kind = "string"
	KindTuple   Kind = "tuple"
	KindUnion   Kind = "union"
	KindUnknown Kind = "unknown"
)

// Reserved brand names with built-in wire-format meaning. Any other brand
// name refers to a user-registered validator.
const (
	BrandInteger  = "integer"
	BrandFloat    = "float"
	BrandTemplate = "template"
)

// LiteralKind is the primitive category of a literal value.
type LiteralKind string

const (
	LiteralBoolean LiteralKind = "boolean"
	LiteralNumber  LiteralKind = "number"
	LiteralString  LiteralKind = "string"
)

// Literal is a single literal union member or enum value.
type Literal struct {
	Type  LiteralKind `json:"type"`
	Value any         `json:"value"`
}

// AnalyzedProperty is the structural unit of the model. Exactly one of
// ItemType, IndexType, Properties, TupleTypes, UnionTypes or Literals is
// populated, selected by Type.
type AnalyzedProperty struct {
	// Name is the property key, or a synthetic name ("item", "value", an
	// index string) when the property does not come from an object member.
	Name string `json:"name"`

	// Type is the property's kind.
	Type Kind `json:"type"`

	// Optional is true when the declaring context allows the slot to be
	// absent (the symbol's own optionality flag, or an undefined union
	// member). It is a separate axis from Nullable.
	Optional bool `json:"optional"`

	// Nullable is true when the type admits null as a union member.
	Nullable bool `json:"nullable,omitempty"`

	// Brand carries the nominal brand name for branded primitives, or
	// "template" for template-literal string types.
	Brand string `json:"brand,omitempty"`

	// ItemType is the element type. Set when Type == KindArray.
	ItemType *AnalyzedProperty `json:"itemType,omitempty"`

	// IndexType is the index-signature value type. Set when Type == KindRecord.
	IndexType *AnalyzedProperty `json:"indexType,omitempty"`

	// Properties are the object members, sorted ascending by Name. Set when
	// Type == KindObject. A cyclic object reference leaves this nil.
	Properties []*AnalyzedProperty `json:"properties,omitempty"`

	// TupleTypes are the tuple positions in declaration order (not sorted).
	// Set when Type == KindTuple.
	TupleTypes []*AnalyzedProperty `json:"tupleTypes,omitempty"`

	// UnionTypes are the non-literal union members, after null, undefined
	// and literals have been stripped. Set when Type == KindUnion.
	UnionTypes []*AnalyzedProperty `json:"unionTypes,omitempty"`

	// Literals are the literal members for KindLiteral, KindEnum and
	// literal-bearing unions.
	Literals []Literal `json:"literals,omitempty"`
}

// AnalyzedType is the root of one analysis: the named type behind a single
// call site, with its top-level properties sorted ascending by name.
type AnalyzedType struct {
	Name       string              `json:"name"`
	Properties []*AnalyzedProperty `json:"properties"`
}

// Scalar reports whether k is a primitive value kind.
func Scalar(k Kind) bool {
	switch k {
	case KindBigint, KindBoolean, KindNumber, KindString:
		return true
	}
	return false
}

// Skippable reports whether a property carries no runtime contract: both
// generators emit nothing for it (no validation, no wire representation).
func Skippable(k Kind) bool {
	return k == KindAny || k == KindUnknown || k == KindNever
}
