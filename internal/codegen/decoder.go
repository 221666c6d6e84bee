package codegen

import (
	"github.com/tscodec/tscodec/internal/metadata"
)

// emitDecode generates the read function for one message: a forward scan
// over one tag byte at a time, dispatched by field number, with unknown
// tags skipped by wire type.
func (g *codecGen) emitDecode(m codecMessage) {
	g.e.Block("const _d%d = (b, s, e) =>", m.index)
	g.e.Line("const out = {};")
	g.e.Block("while (s.p < e)")
	g.e.Line("const t = b[s.p++];")
	g.e.Block("switch (t >> 3)")
	for _, f := range g.fields(m) {
		g.e.Block("case %d:", f.num)
		g.emitDecodeField(f)
		g.e.Line("break;")
		g.e.EndBlock()
	}
	g.e.Line("default:")
	g.e.Indent()
	g.e.Line("_sk(b, s, t & 7);")
	g.e.Dedent()
	g.e.EndBlock()
	g.e.EndBlock()
	g.e.Line("return out;")
	g.e.EndBlockSuffix(";")
}

func (g *codecGen) emitDecodeField(f wireField) {
	p := f.prop
	out := jsPropAccess("out", p.Name)
	if jsonFallback(p) {
		g.decodeJSONInto(out)
		return
	}
	switch p.Type {
	case metadata.KindNumber:
		switch p.Brand {
		case metadata.BrandInteger:
			g.e.Line("%s = _rv(b, s);", out)
		case metadata.BrandFloat:
			g.e.Line("%s = _rf(b, s);", out)
		default:
			g.e.Line("%s = _rd(b, s);", out)
		}
	case metadata.KindDate:
		g.e.Line("%s = new Date(_rd(b, s));", out)
	case metadata.KindBoolean:
		g.e.Line("%s = _rv(b, s) !== 0;", out)
	case metadata.KindBigint:
		g.e.Line("%s = _rb(b, s);", out)
	case metadata.KindEnum, metadata.KindLiteral:
		g.e.Line("%s = _rv(b, s);", out)
	case metadata.KindString:
		g.e.Line("const l = _rv(b, s);")
		g.e.Line("%s = _rs(b, s.p, s.p + l);", out)
		g.e.Line("s.p += l;")
	case metadata.KindObject:
		g.e.Line("const l = _rv(b, s);")
		g.e.Line("%s = _d%d(b, s, s.p + l);", out, g.msgIndex[p])
	case metadata.KindArray:
		g.emitDecodeArray(f, out)
	}
}

func (g *codecGen) decodeJSONInto(out string) {
	g.e.Line("const l = _rv(b, s);")
	g.e.Line("%s = JSON.parse(_rs(b, s.p, s.p + l));", out)
	g.e.Line("s.p += l;")
}

func (g *codecGen) emitDecodeArray(f wireField, out string) {
	item := f.prop.ItemType
	if item == nil {
		return
	}
	switch elementEncoding(item) {
	case elemFixed64:
		g.decodePackedFixed(out, 8, "a[i] = _rd(b, s);")
	case elemDate:
		g.decodePackedFixed(out, 8, "a[i] = new Date(_rd(b, s));")
	case elemFixed32:
		g.decodePackedFixed(out, 4, "a[i] = _rf(b, s);")
	case elemBool:
		g.decodePackedFixed(out, 1, "a[i] = b[s.p++] !== 0;")
	case elemVarint:
		g.decodePackedVar(out, "a.push(_rv(b, s));")
	case elemBigint:
		g.decodePackedVar(out, "a.push(_rb(b, s));")
	case elemString:
		g.e.Line("const l = _rv(b, s);")
		g.e.Line("const v = _rs(b, s.p, s.p + l);")
		g.e.Line("s.p += l;")
		g.e.Line("(%s || (%s = [])).push(v);", out, out)
	case elemJSON:
		g.e.Line("const l = _rv(b, s);")
		g.e.Line("const v = JSON.parse(_rs(b, s.p, s.p + l));")
		g.e.Line("s.p += l;")
		g.e.Line("(%s || (%s = [])).push(v);", out, out)
	case elemMessage:
		g.e.Line("const l = _rv(b, s);")
		g.e.Line("(%s || (%s = [])).push(_d%d(b, s, s.p + l));", out, out, g.msgIndex[item])
	}
}

// decodePackedFixed reads a packed block of fixed-width elements, pre-sizing
// the output array from the block's byte length.
func (g *codecGen) decodePackedFixed(out string, width int, read string) {
	g.e.Line("const l = _rv(b, s);")
	if width == 1 {
		g.e.Line("const n = l;")
	} else {
		g.e.Line("const n = l / %d;", width)
	}
	g.e.Line("const a = new Array(n);")
	g.e.Line("for (let i = 0; i < n; i++) %s", read)
	g.e.Line("%s = a;", out)
}

// decodePackedVar reads a packed block of variable-width elements to the end
// of the block, accumulating via push.
func (g *codecGen) decodePackedVar(out string, read string) {
	g.e.Line("const l = _rv(b, s);")
	g.e.Line("const q = s.p + l;")
	g.e.Line("const a = [];")
	g.e.Line("while (s.p < q) %s", read)
	g.e.Line("%s = a;", out)
}
