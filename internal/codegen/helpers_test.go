package codegen

import (
	"strings"
	"testing"

	"github.com/tscodec/tscodec/internal/metadata"
)

func TestVarintHelperBodies(t *testing.T) {
	p := prop("id", metadata.KindNumber)
	p.Brand = metadata.BrandInteger
	code := GenerateCodec(objectType("T", p), nil)

	// Size boundaries at each 7-bit group.
	assertContains(t, code, "const _vs = (n) => n < 0 ? 10 : n < 128 ? 1 : n < 16384 ? 2 : n < 2097152 ? 3 : n < 268435456 ? 4 : 5;")
	// Non-negative write path uses % and division so lengths above 2^31
	// still encode.
	assertContains(t, code, "while (n > 127) { b[p++] = (n % 128) | 128; n = Math.floor(n / 128); }")
	assertContains(t, code, "b[p++] = n;")
	// Negative write path: nine sign-propagating groups plus a literal 1.
	assertContains(t, code, "for (let i = 0; i < 9; i++) { b[p++] = (n & 127) | 128; n >>= 7; }")
	assertContains(t, code, "b[p++] = 1;")
	// Read accumulates the low five groups and discards the sign-extension
	// tail of the 10-byte negative encoding.
	assertContains(t, code, "if (sh < 32) r |= (x & 127) << sh;")
	assertContains(t, code, "if ((x & 128) === 0) break;")
}

func TestBigintVarintHelperBodies(t *testing.T) {
	code := GenerateCodec(objectType("T", prop("n", metadata.KindBigint)), nil)

	assertContains(t, code, "if (n < 0n) return 10;")
	assertContains(t, code, "while (n > 127n) { b[p++] = Number(n & 127n) | 128; n >>= 7n; }")
	assertContains(t, code, "for (let i = 0; i < 9; i++) { b[p++] = Number(n & 127n) | 128; n >>= 7n; }")
	assertContains(t, code, "return BigInt.asIntN(64, r);")
}

// Helper bodies pass through the emitter's printf-style Line, so a stray
// format verb in a template corrupts the emitted JavaScript. Sweep a
// generator run over every wire shape for fmt expansion artifacts.
func TestGeneratedCodeFreeOfFormatArtifacts(t *testing.T) {
	nested := prop("addr", metadata.KindObject)
	nested.Properties = []*metadata.AnalyzedProperty{prop("city", metadata.KindString)}
	arr := prop("tags", metadata.KindArray)
	arr.ItemType = prop("item", metadata.KindString)
	intp := prop("id", metadata.KindNumber)
	intp.Brand = metadata.BrandInteger
	at := objectType("T",
		nested,
		prop("big", metadata.KindBigint),
		intp,
		prop("name", metadata.KindString),
		arr,
		prop("when", metadata.KindDate),
	)

	for _, code := range []string{GenerateCodec(at, nil), GenerateValidator(at, nil)} {
		for _, artifact := range []string{"%!", "(MISSING)", "(EXTRA"} {
			if strings.Contains(code, artifact) {
				t.Errorf("emitted code contains formatting artifact %q:\n%s", artifact, code)
			}
		}
	}
}
