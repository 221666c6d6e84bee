package codegen

// emitHelpers writes the runtime helper routines the generated codec
// reaches. Varint read and the wire-type skip always ship: the decoder's
// unknown-tag path needs them regardless of the field set. Everything else
// is gated on the helper scan.
func emitHelpers(e *Emitter, h helperSet) {
	// _rv reads one varint. Accumulation uses 32-bit | so the 10-byte
	// negative encoding reconstructs its value from the low five groups;
	// trailing sign-extension groups are consumed and discarded.
	e.Block("const _rv = (b, s) =>")
	e.Line("let r = 0, sh = 0, x;")
	e.Block("for (;;)")
	e.Line("x = b[s.p++];")
	e.Line("if (sh < 32) r |= (x & 127) << sh;")
	e.Line("if ((x & 128) === 0) break;")
	e.Line("sh += 7;")
	e.EndBlock()
	e.Line("return r;")
	e.EndBlockSuffix(";")

	e.Block("const _sk = (b, s, w) =>")
	e.Line("if (w === 0) { while (b[s.p++] & 128); }")
	e.Line("else if (w === 1) s.p += 8;")
	e.Line("else if (w === 2) { const l = _rv(b, s); s.p += l; }")
	e.Line("else if (w === 5) s.p += 4;")
	e.EndBlockSuffix(";")

	if h.Varint {
		e.Line("const _vs = (n) => n < 0 ? 10 : n < 128 ? 1 : n < 16384 ? 2 : n < 2097152 ? 3 : n < 268435456 ? 4 : 5;")
		// Negatives emit nine sign-propagating groups plus a literal 1;
		// non-negatives use division so lengths above 2^31 still encode.
		e.Block("const _wv = (b, p, n) =>")
		e.Block("if (n < 0)")
		e.Line("for (let i = 0; i < 9; i++) { b[p++] = (n & 127) | 128; n >>= 7; }")
		e.Line("b[p++] = 1;")
		e.Line("return p;")
		e.EndBlock()
		e.Line("while (n > 127) { b[p++] = (n %% 128) | 128; n = Math.floor(n / 128); }")
		e.Line("b[p++] = n;")
		e.Line("return p;")
		e.EndBlockSuffix(";")
	}

	if h.Utf8 {
		e.Line("const _te = new TextEncoder();")
		e.Line("const _td = new TextDecoder();")
		e.Line("const _u8 = (v) => _te.encode(v);")
		e.Line("const _rs = (b, f, t) => _td.decode(b.subarray(f, t));")
	}

	if h.F32 || h.F64 {
		e.Line("const _fv = new DataView(new ArrayBuffer(8));")
	}
	if h.F64 {
		e.Block("const _wd = (b, p, v) =>")
		e.Line("_fv.setFloat64(0, v, true);")
		e.Line("for (let i = 0; i < 8; i++) b[p + i] = _fv.getUint8(i);")
		e.Line("return p + 8;")
		e.EndBlockSuffix(";")
		e.Block("const _rd = (b, s) =>")
		e.Line("for (let i = 0; i < 8; i++) _fv.setUint8(i, b[s.p + i]);")
		e.Line("s.p += 8;")
		e.Line("return _fv.getFloat64(0, true);")
		e.EndBlockSuffix(";")
	}
	if h.F32 {
		e.Block("const _wf = (b, p, v) =>")
		e.Line("_fv.setFloat32(0, v, true);")
		e.Line("for (let i = 0; i < 4; i++) b[p + i] = _fv.getUint8(i);")
		e.Line("return p + 4;")
		e.EndBlockSuffix(";")
		e.Block("const _rf = (b, s) =>")
		e.Line("for (let i = 0; i < 4; i++) _fv.setUint8(i, b[s.p + i]);")
		e.Line("s.p += 4;")
		e.Line("return _fv.getFloat32(0, true);")
		e.EndBlockSuffix(";")
	}

	if h.Bigint {
		e.Block("const _bs = (n) =>")
		e.Line("if (n < 0n) return 10;")
		e.Line("let c = 1;")
		e.Line("while (n > 127n) { n >>= 7n; c++; }")
		e.Line("return c;")
		e.EndBlockSuffix(";")
		e.Block("const _wb = (b, p, n) =>")
		e.Block("if (n < 0n)")
		e.Line("for (let i = 0; i < 9; i++) { b[p++] = Number(n & 127n) | 128; n >>= 7n; }")
		e.Line("b[p++] = 1;")
		e.Line("return p;")
		e.EndBlock()
		e.Line("while (n > 127n) { b[p++] = Number(n & 127n) | 128; n >>= 7n; }")
		e.Line("b[p++] = Number(n);")
		e.Line("return p;")
		e.EndBlockSuffix(";")
		// Nine groups carry 63 bits; the final literal 1 lands on bit 63,
		// which asIntN folds back into the sign.
		e.Block("const _rb = (b, s) =>")
		e.Line("let r = 0n, sh = 0n, x;")
		e.Block("do")
		e.Line("x = b[s.p++];")
		e.Line("if (sh < 64n) r |= BigInt(x & 127) << sh;")
		e.Line("sh += 7n;")
		e.EndBlockSuffix(" while (x & 128);")
		e.Line("return BigInt.asIntN(64, r);")
		e.EndBlockSuffix(";")
	}
}
