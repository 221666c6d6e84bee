package codegen

import (
	"strings"
	"testing"

	"github.com/tscodec/tscodec/internal/metadata"
)

func TestCodecShape(t *testing.T) {
	at := objectType("User", prop("name", metadata.KindString))
	code := GenerateCodec(at, nil)

	if !strings.HasPrefix(code, "(() => {") {
		t.Errorf("expected IIFE prefix, got %q", code[:20])
	}
	if !strings.HasSuffix(code, "})()") {
		t.Errorf("expected IIFE suffix, got %q", code[len(code)-10:])
	}
	assertContains(t, code, "encode: (data) => {")
	assertContains(t, code, "const c = [];")
	assertContains(t, code, "const n = _s0(data, c);")
	assertContains(t, code, "const b = new Uint8Array(n);")
	assertContains(t, code, "c.i = 0;")
	assertContains(t, code, "_w0(data, b, 0, c);")
	assertContains(t, code, "return b;")
	assertContains(t, code, "decode: (bytes, defaults) => {")
	assertContains(t, code, "const s = { p: 0 };")
	assertContains(t, code, "const out = _d0(bytes, s, bytes.length);")
	assertContains(t, code, "if (defaults) for (const k in defaults) if (out[k] === undefined) out[k] = defaults[k];")
}

func TestCodecSkipDecodeDefaults(t *testing.T) {
	at := objectType("User", prop("name", metadata.KindString))
	code := GenerateCodec(at, &CodecOptions{SkipDecodeDefaults: true})

	assertContains(t, code, "decode: (bytes) => {")
	assertNotContains(t, code, "defaults")
}

func TestCodecFieldNumbering(t *testing.T) {
	// Skippable and null properties consume a field number but never reach
	// the wire, so later fields keep stable numbers.
	at := objectType("T",
		prop("a", metadata.KindString),
		prop("b", metadata.KindAny),
		prop("c", metadata.KindString),
	)
	code := GenerateCodec(at, nil)

	assertContains(t, code, "b[p++] = 10;") // field 1, wire 2
	assertContains(t, code, "b[p++] = 26;") // field 3, wire 2
	assertContains(t, code, "case 1: {")
	assertContains(t, code, "case 3: {")
	assertNotContains(t, code, "case 2:")
	assertNotContains(t, code, "d.b")
}

func TestCodecNullFieldSkipped(t *testing.T) {
	at := objectType("T",
		prop("gone", metadata.KindNull),
		prop("kept", metadata.KindString),
	)
	code := GenerateCodec(at, nil)

	assertNotContains(t, code, "d.gone")
	assertContains(t, code, "b[p++] = 18;") // field 2, wire 2
}

func TestCodecDoubleField(t *testing.T) {
	at := objectType("T", prop("x", metadata.KindNumber))
	code := GenerateCodec(at, nil)

	guard := "d.x !== undefined && d.x !== null"
	assertContains(t, code, "if ("+guard+") n += 9;")
	assertContains(t, code, "if ("+guard+") { b[p++] = 9; p = _wd(b, p, d.x); }")
	assertContains(t, code, "out.x = _rd(b, s);")
}

func TestCodecIntegerField(t *testing.T) {
	p := prop("x", metadata.KindNumber)
	p.Brand = metadata.BrandInteger
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "n += 1 + _vs(d.x);")
	assertContains(t, code, "{ b[p++] = 8; p = _wv(b, p, d.x); }")
	assertContains(t, code, "out.x = _rv(b, s);")
}

func TestCodecFloatField(t *testing.T) {
	p := prop("x", metadata.KindNumber)
	p.Brand = metadata.BrandFloat
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "n += 5;")
	assertContains(t, code, "{ b[p++] = 13; p = _wf(b, p, d.x); }") // field 1, wire 5
	assertContains(t, code, "out.x = _rf(b, s);")
	assertContains(t, code, "const _wf = (b, p, v) => {")
	assertContains(t, code, "const _fv = new DataView(new ArrayBuffer(8));")
}

func TestCodecBooleanField(t *testing.T) {
	at := objectType("T", prop("ok", metadata.KindBoolean))
	code := GenerateCodec(at, nil)

	assertContains(t, code, "n += 2;")
	assertContains(t, code, "{ b[p++] = 8; b[p++] = d.ok ? 1 : 0; }")
	assertContains(t, code, "out.ok = _rv(b, s) !== 0;")
}

func TestCodecDateField(t *testing.T) {
	at := objectType("T", prop("when", metadata.KindDate))
	code := GenerateCodec(at, nil)

	assertContains(t, code, "n += 9;")
	assertContains(t, code, "p = _wd(b, p, d.when.getTime());")
	assertContains(t, code, "out.when = new Date(_rd(b, s));")
}

func TestCodecBigintField(t *testing.T) {
	at := objectType("T", prop("big", metadata.KindBigint))
	code := GenerateCodec(at, nil)

	assertContains(t, code, "n += 1 + _bs(d.big);")
	assertContains(t, code, "p = _wb(b, p, d.big);")
	assertContains(t, code, "out.big = _rb(b, s);")
	assertContains(t, code, "BigInt.asIntN(64, r);")
}

func TestCodecStringField(t *testing.T) {
	at := objectType("T", prop("name", metadata.KindString))
	code := GenerateCodec(at, nil)

	// Size pass caches the UTF-8 bytes; write pass consumes the cache.
	assertContains(t, code, "const u0 = _u8(d.name);")
	assertContains(t, code, "c.push(u0);")
	assertContains(t, code, "n += 1 + _vs(u0.length) + u0.length;")
	assertContains(t, code, "const u1 = c[c.i++];")
	assertContains(t, code, "b[p++] = 10;")
	assertContains(t, code, "p = _wv(b, p, u1.length);")
	assertContains(t, code, "b.set(u1, p);")
	assertContains(t, code, "const l = _rv(b, s);")
	assertContains(t, code, "out.name = _rs(b, s.p, s.p + l);")
	assertContains(t, code, "s.p += l;")
}

func TestCodecNumberEnumField(t *testing.T) {
	p := prop("color", metadata.KindEnum)
	p.Literals = []metadata.Literal{
		{Type: metadata.LiteralNumber, Value: float64(0)},
		{Type: metadata.LiteralNumber, Value: float64(1)},
	}
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "n += 1 + _vs(d.color);")
	assertContains(t, code, "p = _wv(b, p, d.color);")
	assertContains(t, code, "out.color = _rv(b, s);")
}

func TestCodecJSONFallback(t *testing.T) {
	p := prop("pair", metadata.KindTuple)
	p.TupleTypes = []*metadata.AnalyzedProperty{
		prop("0", metadata.KindString),
		prop("1", metadata.KindNumber),
	}
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "_u8(JSON.stringify(d.pair));")
	assertContains(t, code, "out.pair = JSON.parse(_rs(b, s.p, s.p + l));")
}

func TestCodecStringEnumJSONFallback(t *testing.T) {
	p := prop("mode", metadata.KindEnum)
	p.Literals = []metadata.Literal{{Type: metadata.LiteralString, Value: "fast"}}
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "_u8(JSON.stringify(d.mode));")
	assertNotContains(t, code, "p = _wv(b, p, d.mode);")
}

func TestCodecNestedMessage(t *testing.T) {
	addr := prop("addr", metadata.KindObject)
	addr.Properties = []*metadata.AnalyzedProperty{prop("city", metadata.KindString)}
	code := GenerateCodec(objectType("T", addr), nil)

	// Size reserves the cache slot before recursing so the write pass
	// consumes entries in push order.
	assertContains(t, code, "const i0 = c.length;")
	assertContains(t, code, "c.push(0);")
	assertContains(t, code, "const m0 = _s1(d.addr, c);")
	assertContains(t, code, "c[i0] = m0;")
	assertContains(t, code, "n += 1 + _vs(m0) + m0;")
	assertContains(t, code, "p = _w1(d.addr, b, p, c);")
	assertContains(t, code, "out.addr = _d1(b, s, s.p + l);")
	assertContains(t, code, "const _s1 = (d, c) => {")
	assertContains(t, code, "const _d1 = (b, s, e) => {")
}

func TestCodecPackedDoubleArray(t *testing.T) {
	p := prop("xs", metadata.KindArray)
	p.ItemType = prop("item", metadata.KindNumber)
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "const l0 = d.xs.length * 8;")
	assertContains(t, code, "n += 1 + _vs(l0) + l0;")
	assertContains(t, code, "b[p++] = 10;")
	assertContains(t, code, "p = _wv(b, p, d.xs.length * 8);")
	assertContains(t, code, "for (const x1 of d.xs) p = _wd(b, p, x1);")
	assertContains(t, code, "const n = l / 8;")
	assertContains(t, code, "const a = new Array(n);")
	assertContains(t, code, "for (let i = 0; i < n; i++) a[i] = _rd(b, s);")
	assertContains(t, code, "out.xs = a;")
}

func TestCodecPackedVarintArray(t *testing.T) {
	item := prop("item", metadata.KindNumber)
	item.Brand = metadata.BrandInteger
	p := prop("xs", metadata.KindArray)
	p.ItemType = item
	code := GenerateCodec(objectType("T", p), nil)

	// Block length depends on element values, so the size pass caches it.
	assertContains(t, code, "let l0 = 0;")
	assertContains(t, code, "for (const x0 of d.xs) l0 += _vs(x0);")
	assertContains(t, code, "c.push(l0);")
	assertContains(t, code, "p = _wv(b, p, c[c.i++]);")
	assertContains(t, code, "for (const x1 of d.xs) p = _wv(b, p, x1);")
	assertContains(t, code, "const q = s.p + l;")
	assertContains(t, code, "while (s.p < q) a.push(_rv(b, s));")
}

func TestCodecPackedBoolArray(t *testing.T) {
	p := prop("flags", metadata.KindArray)
	p.ItemType = prop("item", metadata.KindBoolean)
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "const l0 = d.flags.length;")
	assertContains(t, code, "for (const x1 of d.flags) b[p++] = x1 ? 1 : 0;")
	assertContains(t, code, "a[i] = b[s.p++] !== 0;")
}

func TestCodecPackedDateArray(t *testing.T) {
	p := prop("when", metadata.KindArray)
	p.ItemType = prop("item", metadata.KindDate)
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "p = _wv(b, p, d.when.length * 8);")
	assertContains(t, code, "for (const x1 of d.when) p = _wd(b, p, x1.getTime());")
	assertContains(t, code, "a[i] = new Date(_rd(b, s));")
}

func TestCodecStringArrayRepeated(t *testing.T) {
	p := prop("names", metadata.KindArray)
	p.ItemType = prop("item", metadata.KindString)
	code := GenerateCodec(objectType("T", p), nil)

	// Strings repeat with per-element tags rather than packing.
	assertContains(t, code, "for (const x0 of d.names) {")
	assertContains(t, code, "const u0 = _u8(x0);")
	assertContains(t, code, "for (const x1 of d.names) {")
	assertContains(t, code, "const u1 = c[c.i++];")
	assertContains(t, code, "(out.names || (out.names = [])).push(v);")
}

func TestCodecMessageArrayRepeated(t *testing.T) {
	item := prop("item", metadata.KindObject)
	item.Properties = []*metadata.AnalyzedProperty{prop("id", metadata.KindString)}
	p := prop("items", metadata.KindArray)
	p.ItemType = item
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "const m0 = _s1(x0, c);")
	assertContains(t, code, "p = _w1(x1, b, p, c);")
	assertContains(t, code, "(out.items || (out.items = [])).push(_d1(b, s, s.p + l));")
}

func TestCodecNestedArrayJSONElements(t *testing.T) {
	inner := prop("item", metadata.KindArray)
	inner.ItemType = prop("item", metadata.KindNumber)
	p := prop("grid", metadata.KindArray)
	p.ItemType = inner
	code := GenerateCodec(objectType("T", p), nil)

	assertContains(t, code, "_u8(JSON.stringify(x0));")
	assertContains(t, code, "const v = JSON.parse(_rs(b, s.p, s.p + l));")
}

func TestCodecDecodeSkeleton(t *testing.T) {
	at := objectType("T", prop("x", metadata.KindNumber))
	code := GenerateCodec(at, nil)

	assertContains(t, code, "const _d0 = (b, s, e) => {")
	assertContains(t, code, "while (s.p < e) {")
	assertContains(t, code, "const t = b[s.p++];")
	assertContains(t, code, "switch (t >> 3) {")
	assertContains(t, code, "_sk(b, s, t & 7);")
}

func TestCodecHelperMinimality(t *testing.T) {
	// A double-only message never writes a varint (its single-byte tag is a
	// literal), so _vs/_wv stay out. The decoder's unknown-tag path still
	// ships _rv and _sk.
	code := GenerateCodec(objectType("T", prop("x", metadata.KindNumber)), nil)

	assertContains(t, code, "const _rv = (b, s) => {")
	assertContains(t, code, "const _sk = (b, s, w) => {")
	assertContains(t, code, "const _wd = (b, p, v) => {")
	assertNotContains(t, code, "const _vs")
	assertNotContains(t, code, "const _wf")
	assertNotContains(t, code, "const _te")
	assertNotContains(t, code, "const _bs")
}

func TestCodecHelperUtf8OnlyWhenStrings(t *testing.T) {
	code := GenerateCodec(objectType("T", prop("ok", metadata.KindBoolean)), nil)
	assertNotContains(t, code, "TextEncoder")

	code = GenerateCodec(objectType("T", prop("s", metadata.KindString)), nil)
	assertContains(t, code, "const _te = new TextEncoder();")
	assertContains(t, code, "const _td = new TextDecoder();")
}

func TestCodecNonIdentifierProperty(t *testing.T) {
	code := GenerateCodec(objectType("T", prop("first name", metadata.KindString)), nil)
	assertContains(t, code, `d["first name"]`)
	assertContains(t, code, `out["first name"]`)
}

func TestCodecEmptyObject(t *testing.T) {
	code := GenerateCodec(objectType("Empty"), nil)

	assertContains(t, code, "const _s0 = (d, c) => {")
	assertContains(t, code, "return n;")
	assertContains(t, code, "const _d0 = (b, s, e) => {")
	assertNotContains(t, code, "case 1:")
}
