package codegen

import (
	"github.com/tscodec/tscodec/internal/metadata"
)

// Wire types, protobuf framing: tag byte = field<<3 | wire.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// fieldWire maps a property to its wire type. Anything without a native
// representation falls back to JSON-encoded bytes on wire 2.
func fieldWire(p *metadata.AnalyzedProperty) int {
	switch p.Type {
	case metadata.KindNumber:
		switch p.Brand {
		case metadata.BrandInteger:
			return wireVarint
		case metadata.BrandFloat:
			return wireFixed32
		}
		return wireFixed64
	case metadata.KindBigint, metadata.KindBoolean:
		return wireVarint
	case metadata.KindDate:
		return wireFixed64
	case metadata.KindString, metadata.KindObject:
		return wireBytes
	case metadata.KindEnum, metadata.KindLiteral:
		if allNumberLiterals(p.Literals) {
			return wireVarint
		}
		return wireBytes
	case metadata.KindArray:
		return wireBytes
	default:
		// tuple, record, union, null: JSON fallback bytes.
		return wireBytes
	}
}

// jsonFallback reports whether a field has no native wire representation and
// rides as JSON-encoded UTF-8 bytes.
func jsonFallback(p *metadata.AnalyzedProperty) bool {
	switch p.Type {
	case metadata.KindTuple, metadata.KindRecord, metadata.KindUnion:
		return true
	case metadata.KindEnum, metadata.KindLiteral:
		return !allNumberLiterals(p.Literals)
	case metadata.KindObject:
		// A cycle leaf has no property list to generate a message for.
		return false
	}
	return false
}

// packedArray reports whether an array field is packed: one tag, one block
// length, back-to-back payloads. Applies to elements on wires 0, 1 and 5.
func packedArray(p *metadata.AnalyzedProperty) bool {
	if p.Type != metadata.KindArray || p.ItemType == nil {
		return false
	}
	if jsonFallback(p.ItemType) {
		return false
	}
	switch fieldWire(p.ItemType) {
	case wireVarint, wireFixed64, wireFixed32:
		return p.ItemType.Type != metadata.KindObject && p.ItemType.Type != metadata.KindArray
	}
	return false
}

func allNumberLiterals(lits []metadata.Literal) bool {
	if len(lits) == 0 {
		return false
	}
	for _, l := range lits {
		if l.Type != metadata.LiteralNumber {
			return false
		}
	}
	return true
}

// helperSet records which runtime helper routines the generated codec needs.
// Varint read and the generic skip ride with every decoder; the rest are
// emitted only when a field makes them reachable.
type helperSet struct {
	Varint bool // _vs size + _wv write
	Utf8   bool // _u8 encode + _rs decode
	F32    bool // _wf + _rf
	F64    bool // _wd + _rd
	Bigint bool // _bs size + _wb write + _rb read
}

// scanHelpers walks the analyzed type and marks every helper a field can
// reach.
func scanHelpers(at *metadata.AnalyzedType) helperSet {
	var h helperSet
	scanHelperProps(&h, at.Properties)
	return h
}

func scanHelperProps(h *helperSet, props []*metadata.AnalyzedProperty) {
	for _, p := range props {
		scanHelperProp(h, p)
	}
}

func scanHelperProp(h *helperSet, p *metadata.AnalyzedProperty) {
	if p == nil || metadata.Skippable(p.Type) || p.Type == metadata.KindNull {
		return
	}
	if jsonFallback(p) {
		h.Utf8 = true
		h.Varint = true
		return
	}
	switch p.Type {
	case metadata.KindString:
		h.Utf8 = true
		h.Varint = true
	case metadata.KindNumber:
		switch p.Brand {
		case metadata.BrandInteger:
			h.Varint = true
		case metadata.BrandFloat:
			h.F32 = true
		default:
			h.F64 = true
		}
	case metadata.KindDate:
		h.F64 = true
	case metadata.KindBigint:
		h.Bigint = true
	case metadata.KindEnum, metadata.KindLiteral:
		h.Varint = true
	case metadata.KindObject:
		h.Varint = true
		scanHelperProps(h, p.Properties)
	case metadata.KindArray:
		h.Varint = true
		if p.ItemType != nil && p.ItemType.Type == metadata.KindArray {
			// Nested arrays have no native element framing and ride as
			// JSON-encoded elements.
			h.Utf8 = true
			return
		}
		scanHelperProp(h, p.ItemType)
	}
}
