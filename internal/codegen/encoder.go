package codegen

import (
	"fmt"
	"strings"

	"github.com/tscodec/tscodec/internal/metadata"
)

// codecGen holds the state of one codec generation run: the flattened
// message list (root first) and the mapping from nested object properties
// to their message indices.
type codecGen struct {
	e        *Emitter
	messages []codecMessage
	msgIndex map[*metadata.AnalyzedProperty]int
	uid      int
}

type codecMessage struct {
	index int
	props []*metadata.AnalyzedProperty
}

// Element encodings for array fields. Scalars on wires 0/1/5 pack into one
// length-prefixed block; strings, messages and JSON fallbacks repeat with
// per-element tags.
type elemEnc int

const (
	elemFixed64 elemEnc = iota
	elemFixed32
	elemVarint
	elemBool
	elemBigint
	elemDate
	elemString
	elemMessage
	elemJSON
)

// CodecOptions adjusts codec generation. A nil options value means defaults.
type CodecOptions struct {
	// SkipDecodeDefaults drops the post-decode defaults fill, so decode
	// ignores its optional second argument.
	SkipDecodeDefaults bool
}

// GenerateCodec emits the IIFE replacing a codec<T>() call: an object
// literal { encode, decode } closed over the helper routines and the
// per-message size/write/read functions.
func GenerateCodec(at *metadata.AnalyzedType, opts *CodecOptions) string {
	if opts == nil {
		opts = &CodecOptions{}
	}
	g := &codecGen{e: NewEmitter(), msgIndex: make(map[*metadata.AnalyzedProperty]int)}
	root := g.collect(at.Properties)
	h := scanHelpers(at)

	g.e.Block("(() =>")
	emitHelpers(g.e, h)
	for _, m := range g.messages {
		g.emitSize(m)
		g.emitWrite(m)
	}
	for _, m := range g.messages {
		g.emitDecode(m)
	}

	g.e.Line("return {")
	g.e.Indent()
	g.e.Block("encode: (data) =>")
	g.e.Line("const c = [];")
	g.e.Line("const n = _s%d(data, c);", root)
	g.e.Line("const b = new Uint8Array(n);")
	g.e.Line("c.i = 0;")
	g.e.Line("_w%d(data, b, 0, c);", root)
	g.e.Line("return b;")
	g.e.EndBlockSuffix(",")
	if opts.SkipDecodeDefaults {
		g.e.Block("decode: (bytes) =>")
	} else {
		g.e.Block("decode: (bytes, defaults) =>")
	}
	g.e.Line("const s = { p: 0 };")
	g.e.Line("const out = _d%d(bytes, s, bytes.length);", root)
	if !opts.SkipDecodeDefaults {
		g.e.Line("if (defaults) for (const k in defaults) if (out[k] === undefined) out[k] = defaults[k];")
	}
	g.e.Line("return out;")
	g.e.EndBlockSuffix(",")
	g.e.Dedent()
	g.e.Line("};")
	g.e.EndBlockSuffix(")()")
	return strings.TrimRight(g.e.String(), "\n")
}

// collect registers a message for a property list and, recursively, for
// every nested object reachable from it. Returns the message index.
func (g *codecGen) collect(props []*metadata.AnalyzedProperty) int {
	idx := len(g.messages)
	g.messages = append(g.messages, codecMessage{index: idx})
	for _, p := range props {
		g.collectProp(p)
	}
	g.messages[idx].props = props
	return idx
}

func (g *codecGen) collectProp(p *metadata.AnalyzedProperty) {
	if p == nil || metadata.Skippable(p.Type) {
		return
	}
	switch p.Type {
	case metadata.KindObject:
		if !jsonFallback(p) {
			g.msgIndex[p] = g.collect(p.Properties)
		}
	case metadata.KindArray:
		if p.ItemType != nil && elementEncoding(p.ItemType) == elemMessage {
			g.msgIndex[p.ItemType] = g.collect(p.ItemType.Properties)
		}
	}
}

func elementEncoding(item *metadata.AnalyzedProperty) elemEnc {
	switch item.Type {
	case metadata.KindString:
		return elemString
	case metadata.KindObject:
		return elemMessage
	case metadata.KindDate:
		return elemDate
	case metadata.KindBoolean:
		return elemBool
	case metadata.KindBigint:
		return elemBigint
	case metadata.KindNumber:
		switch item.Brand {
		case metadata.BrandInteger:
			return elemVarint
		case metadata.BrandFloat:
			return elemFixed32
		}
		return elemFixed64
	case metadata.KindEnum, metadata.KindLiteral:
		if allNumberLiterals(item.Literals) {
			return elemVarint
		}
		return elemJSON
	default:
		return elemJSON
	}
}

func (g *codecGen) nextUID() int {
	id := g.uid
	g.uid++
	return id
}

// wireField is one non-skippable field with its assigned number and tag.
// Numbers are positions in the sorted property list; skippable properties
// consume a number but never reach the wire.
type wireField struct {
	prop  *metadata.AnalyzedProperty
	num   int
	tag   int
	acc   string // d.<name> access expression
	guard string
}

func (g *codecGen) fields(m codecMessage) []wireField {
	var out []wireField
	for i, p := range m.props {
		if metadata.Skippable(p.Type) || p.Type == metadata.KindNull {
			continue
		}
		num := i + 1
		acc := jsPropAccess("d", p.Name)
		out = append(out, wireField{
			prop:  p,
			num:   num,
			tag:   num<<3 | fieldWire(p),
			acc:   acc,
			guard: fmt.Sprintf("%s !== undefined && %s !== null", acc, acc),
		})
	}
	return out
}

// emitSize generates the size-computation pass. Besides the byte count it
// caches every expensive intermediate (UTF-8 bytes, nested message sizes,
// packed varint block lengths) on c for the write pass, in push order.
func (g *codecGen) emitSize(m codecMessage) {
	g.e.Block("const _s%d = (d, c) =>", m.index)
	g.e.Line("let n = 0;")
	for _, f := range g.fields(m) {
		g.emitSizeField(f)
	}
	g.e.Line("return n;")
	g.e.EndBlockSuffix(";")
}

func (g *codecGen) emitSizeField(f wireField) {
	p := f.prop
	if jsonFallback(p) {
		g.sizeBytesField(f.guard, fmt.Sprintf("JSON.stringify(%s)", f.acc))
		return
	}
	switch p.Type {
	case metadata.KindNumber:
		switch p.Brand {
		case metadata.BrandInteger:
			g.e.Line("if (%s) n += 1 + _vs(%s);", f.guard, f.acc)
		case metadata.BrandFloat:
			g.e.Line("if (%s) n += 5;", f.guard)
		default:
			g.e.Line("if (%s) n += 9;", f.guard)
		}
	case metadata.KindDate:
		g.e.Line("if (%s) n += 9;", f.guard)
	case metadata.KindBoolean:
		g.e.Line("if (%s) n += 2;", f.guard)
	case metadata.KindBigint:
		g.e.Line("if (%s) n += 1 + _bs(%s);", f.guard, f.acc)
	case metadata.KindEnum, metadata.KindLiteral:
		g.e.Line("if (%s) n += 1 + _vs(%s);", f.guard, f.acc)
	case metadata.KindString:
		g.sizeBytesField(f.guard, f.acc)
	case metadata.KindObject:
		g.sizeMessageField(f.guard, f.acc, g.msgIndex[p])
	case metadata.KindArray:
		g.emitSizeArray(f)
	}
}

// sizeBytesField sizes a length-delimited field whose payload is the UTF-8
// encoding of expr, caching the bytes for the write pass.
func (g *codecGen) sizeBytesField(guard, expr string) {
	id := g.nextUID()
	g.e.Block("if (%s)", guard)
	g.e.Line("const u%d = _u8(%s);", id, expr)
	g.e.Line("c.push(u%d);", id)
	g.e.Line("n += 1 + _vs(u%d.length) + u%d.length;", id, id)
	g.e.EndBlock()
}

// sizeMessageField sizes a nested message. The size slot is reserved before
// recursing so cache entries stay in write-pass order.
func (g *codecGen) sizeMessageField(guard, expr string, msg int) {
	id := g.nextUID()
	g.e.Block("if (%s)", guard)
	g.e.Line("const i%d = c.length;", id)
	g.e.Line("c.push(0);")
	g.e.Line("const m%d = _s%d(%s, c);", id, msg, expr)
	g.e.Line("c[i%d] = m%d;", id, id)
	g.e.Line("n += 1 + _vs(m%d) + m%d;", id, id)
	g.e.EndBlock()
}

func (g *codecGen) emitSizeArray(f wireField) {
	item := f.prop.ItemType
	if item == nil {
		return
	}
	id := g.nextUID()
	switch elementEncoding(item) {
	case elemFixed64, elemDate:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("const l%d = %s.length * 8;", id, f.acc)
		g.e.Line("n += 1 + _vs(l%d) + l%d;", id, id)
		g.e.EndBlock()
	case elemFixed32:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("const l%d = %s.length * 4;", id, f.acc)
		g.e.Line("n += 1 + _vs(l%d) + l%d;", id, id)
		g.e.EndBlock()
	case elemBool:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("const l%d = %s.length;", id, f.acc)
		g.e.Line("n += 1 + _vs(l%d) + l%d;", id, id)
		g.e.EndBlock()
	case elemVarint:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("let l%d = 0;", id)
		g.e.Line("for (const x%d of %s) l%d += _vs(x%d);", id, f.acc, id, id)
		g.e.Line("c.push(l%d);", id)
		g.e.Line("n += 1 + _vs(l%d) + l%d;", id, id)
		g.e.EndBlock()
	case elemBigint:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("let l%d = 0;", id)
		g.e.Line("for (const x%d of %s) l%d += _bs(x%d);", id, f.acc, id, id)
		g.e.Line("c.push(l%d);", id)
		g.e.Line("n += 1 + _vs(l%d) + l%d;", id, id)
		g.e.EndBlock()
	case elemString:
		g.e.Block("if (%s)", f.guard)
		g.e.Block("for (const x%d of %s)", id, f.acc)
		g.e.Line("const u%d = _u8(x%d);", id, id)
		g.e.Line("c.push(u%d);", id)
		g.e.Line("n += 1 + _vs(u%d.length) + u%d.length;", id, id)
		g.e.EndBlock()
		g.e.EndBlock()
	case elemMessage:
		msg := g.msgIndex[item]
		g.e.Block("if (%s)", f.guard)
		g.e.Block("for (const x%d of %s)", id, f.acc)
		g.e.Line("const i%d = c.length;", id)
		g.e.Line("c.push(0);")
		g.e.Line("const m%d = _s%d(x%d, c);", id, msg, id)
		g.e.Line("c[i%d] = m%d;", id, id)
		g.e.Line("n += 1 + _vs(m%d) + m%d;", id, id)
		g.e.EndBlock()
		g.e.EndBlock()
	case elemJSON:
		g.e.Block("if (%s)", f.guard)
		g.e.Block("for (const x%d of %s)", id, f.acc)
		g.e.Line("const u%d = _u8(JSON.stringify(x%d));", id, id)
		g.e.Line("c.push(u%d);", id)
		g.e.Line("n += 1 + _vs(u%d.length) + u%d.length;", id, id)
		g.e.EndBlock()
		g.e.EndBlock()
	}
}

// emitWrite generates the write pass. Every guard matches the size pass
// exactly so cache entries are consumed in the order they were pushed.
func (g *codecGen) emitWrite(m codecMessage) {
	g.e.Block("const _w%d = (d, b, p, c) =>", m.index)
	for _, f := range g.fields(m) {
		g.emitWriteField(f)
	}
	g.e.Line("return p;")
	g.e.EndBlockSuffix(";")
}

func (g *codecGen) emitWriteField(f wireField) {
	p := f.prop
	if jsonFallback(p) {
		g.writeBytesField(f)
		return
	}
	switch p.Type {
	case metadata.KindNumber:
		switch p.Brand {
		case metadata.BrandInteger:
			g.e.Line("if (%s) { b[p++] = %d; p = _wv(b, p, %s); }", f.guard, f.tag, f.acc)
		case metadata.BrandFloat:
			g.e.Line("if (%s) { b[p++] = %d; p = _wf(b, p, %s); }", f.guard, f.tag, f.acc)
		default:
			g.e.Line("if (%s) { b[p++] = %d; p = _wd(b, p, %s); }", f.guard, f.tag, f.acc)
		}
	case metadata.KindDate:
		g.e.Line("if (%s) { b[p++] = %d; p = _wd(b, p, %s.getTime()); }", f.guard, f.tag, f.acc)
	case metadata.KindBoolean:
		g.e.Line("if (%s) { b[p++] = %d; b[p++] = %s ? 1 : 0; }", f.guard, f.tag, f.acc)
	case metadata.KindBigint:
		g.e.Line("if (%s) { b[p++] = %d; p = _wb(b, p, %s); }", f.guard, f.tag, f.acc)
	case metadata.KindEnum, metadata.KindLiteral:
		g.e.Line("if (%s) { b[p++] = %d; p = _wv(b, p, %s); }", f.guard, f.tag, f.acc)
	case metadata.KindString:
		g.writeBytesField(f)
	case metadata.KindObject:
		g.writeMessageField(f, f.acc, g.msgIndex[p])
	case metadata.KindArray:
		g.emitWriteArray(f)
	}
}

// writeBytesField writes a length-delimited field from its cached UTF-8
// bytes.
func (g *codecGen) writeBytesField(f wireField) {
	id := g.nextUID()
	g.e.Block("if (%s)", f.guard)
	g.e.Line("const u%d = c[c.i++];", id)
	g.e.Line("b[p++] = %d;", f.tag)
	g.e.Line("p = _wv(b, p, u%d.length);", id)
	g.e.Line("b.set(u%d, p);", id)
	g.e.Line("p += u%d.length;", id)
	g.e.EndBlock()
}

func (g *codecGen) writeMessageField(f wireField, expr string, msg int) {
	id := g.nextUID()
	g.e.Block("if (%s)", f.guard)
	g.e.Line("const m%d = c[c.i++];", id)
	g.e.Line("b[p++] = %d;", f.tag)
	g.e.Line("p = _wv(b, p, m%d);", id)
	g.e.Line("p = _w%d(%s, b, p, c);", msg, expr)
	g.e.EndBlock()
}

func (g *codecGen) emitWriteArray(f wireField) {
	item := f.prop.ItemType
	if item == nil {
		return
	}
	id := g.nextUID()
	switch elementEncoding(item) {
	case elemFixed64:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, %s.length * 8);", f.acc)
		g.e.Line("for (const x%d of %s) p = _wd(b, p, x%d);", id, f.acc, id)
		g.e.EndBlock()
	case elemDate:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, %s.length * 8);", f.acc)
		g.e.Line("for (const x%d of %s) p = _wd(b, p, x%d.getTime());", id, f.acc, id)
		g.e.EndBlock()
	case elemFixed32:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, %s.length * 4);", f.acc)
		g.e.Line("for (const x%d of %s) p = _wf(b, p, x%d);", id, f.acc, id)
		g.e.EndBlock()
	case elemBool:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, %s.length);", f.acc)
		g.e.Line("for (const x%d of %s) b[p++] = x%d ? 1 : 0;", id, f.acc, id)
		g.e.EndBlock()
	case elemVarint:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, c[c.i++]);")
		g.e.Line("for (const x%d of %s) p = _wv(b, p, x%d);", id, f.acc, id)
		g.e.EndBlock()
	case elemBigint:
		g.e.Block("if (%s)", f.guard)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, c[c.i++]);")
		g.e.Line("for (const x%d of %s) p = _wb(b, p, x%d);", id, f.acc, id)
		g.e.EndBlock()
	case elemString, elemJSON:
		g.e.Block("if (%s)", f.guard)
		g.e.Block("for (const x%d of %s)", id, f.acc)
		g.e.Line("const u%d = c[c.i++];", id)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, u%d.length);", id)
		g.e.Line("b.set(u%d, p);", id)
		g.e.Line("p += u%d.length;", id)
		g.e.EndBlock()
		g.e.EndBlock()
	case elemMessage:
		msg := g.msgIndex[item]
		g.e.Block("if (%s)", f.guard)
		g.e.Block("for (const x%d of %s)", id, f.acc)
		g.e.Line("const m%d = c[c.i++];", id)
		g.e.Line("b[p++] = %d;", f.tag)
		g.e.Line("p = _wv(b, p, m%d);", id)
		g.e.Line("p = _w%d(x%d, b, p, c);", msg, id)
		g.e.EndBlock()
		g.e.EndBlock()
	}
}
