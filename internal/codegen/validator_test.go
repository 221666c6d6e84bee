package codegen

import (
	"strings"
	"testing"

	"github.com/tscodec/tscodec/internal/metadata"
)

func prop(name string, kind metadata.Kind) *metadata.AnalyzedProperty {
	return &metadata.AnalyzedProperty{Name: name, Type: kind}
}

func objectType(name string, props ...*metadata.AnalyzedProperty) *metadata.AnalyzedType {
	return &metadata.AnalyzedType{Name: name, Properties: props}
}

func TestValidatorSimpleObject(t *testing.T) {
	at := objectType("User",
		prop("age", metadata.KindNumber),
		prop("name", metadata.KindString),
	)

	code := GenerateValidator(at, nil)

	assertContains(t, code, "(input) => {")
	assertContains(t, code, "let errors;")
	assertContains(t, code, "const _p = (message, path) => { (errors || (errors = [])).push({ message, path }); };")
	assertContains(t, code, "const out = {};")
	assertContains(t, code, `if (input === null || typeof input !== "object" || Array.isArray(input))`)
	assertContains(t, code, `_p("must be an object", "");`)
	assertContains(t, code, "let v0 = input.age;")
	assertContains(t, code, "let v1 = input.name;")
	assertContains(t, code, `typeof v1 !== "string"`)
	assertContains(t, code, `_p("must be a string", "name");`)
	assertContains(t, code, "if (errors) return { ok: false, data: input, errors };")
	assertContains(t, code, "return { ok: true, data: out, errors: undefined };")
}

func TestValidatorNumberCoercion(t *testing.T) {
	at := objectType("T", prop("n", metadata.KindNumber))
	code := GenerateValidator(at, nil)

	assertContains(t, code, `if (typeof v0 !== "number" && isNaN(v0 = +v0))`)
	assertContains(t, code, `_p("must be a number", "n");`)
	assertContains(t, code, "out.n = v0;")
}

func TestValidatorIntegerBrand(t *testing.T) {
	p := prop("n", metadata.KindNumber)
	p.Brand = metadata.BrandInteger
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, `if ((typeof v0 !== "number" && isNaN(v0 = +v0)) || v0 % 1 !== 0)`)
	assertContains(t, code, `_p("must be an integer", "n");`)
}

func TestValidatorBooleanCoercion(t *testing.T) {
	at := objectType("T", prop("flag", metadata.KindBoolean))
	code := GenerateValidator(at, nil)

	assertContains(t, code, "const s = String(v0).toLowerCase();")
	assertContains(t, code, `if (s === "true" || s === "1") v0 = true;`)
	assertContains(t, code, `else if (s === "false" || s === "0") v0 = false;`)
	assertContains(t, code, `else _p("must be true or false", "flag");`)
	assertContains(t, code, `if (typeof v0 === "boolean") out.flag = v0;`)
}

func TestValidatorBigint(t *testing.T) {
	code := GenerateValidator(objectType("T", prop("big", metadata.KindBigint)), nil)
	assertContains(t, code, `typeof v0 !== "bigint"`)
	assertContains(t, code, `_p("must be a bigint", "big");`)
}

func TestValidatorDate(t *testing.T) {
	code := GenerateValidator(objectType("T", prop("when", metadata.KindDate)), nil)
	assertContains(t, code, "if (!(v0 instanceof Date) || isNaN(v0.getTime()))")
	assertContains(t, code, `_p("invalid date type", "when");`)
}

func TestValidatorNull(t *testing.T) {
	code := GenerateValidator(objectType("T", prop("nil", metadata.KindNull)), nil)
	assertContains(t, code, "if (v0 !== null)")
	assertContains(t, code, `_p("invalid null type", "nil");`)
	assertContains(t, code, "out.nil = null;")
}

func TestValidatorLiteralAndEnum(t *testing.T) {
	lit := prop("mode", metadata.KindLiteral)
	lit.Literals = []metadata.Literal{{Type: metadata.LiteralString, Value: "fast"}}
	code := GenerateValidator(objectType("T", lit), nil)
	assertContains(t, code, `if (v0 !== "fast")`)
	assertContains(t, code, `_p("invalid literal type", "mode");`)

	enum := prop("color", metadata.KindEnum)
	enum.Literals = []metadata.Literal{
		{Type: metadata.LiteralNumber, Value: float64(0)},
		{Type: metadata.LiteralNumber, Value: float64(1)},
	}
	code = GenerateValidator(objectType("T", enum), nil)
	assertContains(t, code, "if (v0 !== 0 && v0 !== 1)")
	assertContains(t, code, `_p("invalid enum type", "color");`)
}

func TestValidatorOptional(t *testing.T) {
	p := prop("bio", metadata.KindString)
	p.Optional = true
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, "if (v0 !== undefined)")
	// Absent optional properties never land in the output object.
	assertNotContains(t, code, "out.bio = undefined")
}

func TestValidatorNullable(t *testing.T) {
	p := prop("nick", metadata.KindString)
	p.Nullable = true
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, "if (v0 === null)")
	assertContains(t, code, "out.nick = null;")
	// The base check only runs on the non-null branch.
	assertContains(t, code, "} else {")
}

func TestValidatorArray(t *testing.T) {
	p := prop("tags", metadata.KindArray)
	p.ItemType = prop("item", metadata.KindString)
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, "if (!Array.isArray(v0))")
	assertContains(t, code, `_p("must be an array", "tags");`)
	assertContains(t, code, "const a1 = [];")
	assertContains(t, code, "for (let i1 = 0; i1 < v0.length; i1++)")
	assertContains(t, code, "const n1 = errors ? errors.length : 0;")
	// Element paths are dynamic; the message path stays the property's.
	assertContains(t, code, `"tags" + "[" + i1 + "]"`)
	assertContains(t, code, "if (errors && errors.length !== n1) break;")
	assertContains(t, code, "out.tags = a1;")
}

func TestValidatorTuple(t *testing.T) {
	p := prop("pair", metadata.KindTuple)
	p.TupleTypes = []*metadata.AnalyzedProperty{
		prop("0", metadata.KindString),
		prop("1", metadata.KindNumber),
	}
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, "if (!Array.isArray(v0) || v0.length !== 2)")
	assertContains(t, code, `_p("invalid tuple type", "pair");`)
	assertContains(t, code, `"pair" + "[0]"`)
	assertContains(t, code, `"pair" + "[1]"`)
}

func TestValidatorNestedObject(t *testing.T) {
	addr := prop("addr", metadata.KindObject)
	addr.Properties = []*metadata.AnalyzedProperty{prop("city", metadata.KindString)}
	code := GenerateValidator(objectType("T", addr), nil)

	assertContains(t, code, `if (v0 === null || typeof v0 !== "object" || Array.isArray(v0))`)
	assertContains(t, code, `_p("must be an object", "addr");`)
	assertContains(t, code, "const o1 = {};")
	// Child paths concatenate onto the parent's path expression.
	assertContains(t, code, `"addr" + ".city"`)
	assertContains(t, code, "out.addr = o1;")
}

func TestValidatorRecord(t *testing.T) {
	p := prop("counts", metadata.KindRecord)
	p.IndexType = prop("value", metadata.KindNumber)
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, "for (const k1 in v0)")
	assertContains(t, code, "if (!Object.prototype.hasOwnProperty.call(v0, k1)) continue;")
	assertContains(t, code, `if (typeof v0[k1] !== "number")`)
	assertContains(t, code, `_p("must be a number", "counts" + "." + k1);`)
	assertContains(t, code, "break;")
	assertContains(t, code, "out.counts = { ...v0 };")
}

func TestValidatorRecordUncheckedValueKind(t *testing.T) {
	p := prop("meta", metadata.KindRecord)
	p.IndexType = prop("value", metadata.KindUnion)
	code := GenerateValidator(objectType("T", p), nil)

	// Non-primitive value kinds pass unconditionally.
	assertNotContains(t, code, "for (const k")
	assertContains(t, code, "out.meta = { ...v0 };")
}

func TestValidatorUnion(t *testing.T) {
	p := prop("id", metadata.KindUnion)
	p.UnionTypes = []*metadata.AnalyzedProperty{
		prop("", metadata.KindString),
		prop("", metadata.KindNumber),
	}
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, `if (!(typeof v0 === "string" || typeof v0 === "number"))`)
	assertContains(t, code, `_p("invalid union type", "id");`)
	assertContains(t, code, "out.id = v0;")
}

func TestValidatorUnionWithLiterals(t *testing.T) {
	p := prop("status", metadata.KindUnion)
	p.Literals = []metadata.Literal{{Type: metadata.LiteralString, Value: "auto"}}
	p.UnionTypes = []*metadata.AnalyzedProperty{prop("", metadata.KindNumber)}
	code := GenerateValidator(objectType("T", p), nil)

	assertContains(t, code, `v0 === "auto" || typeof v0 === "number"`)
}

func TestValidatorCustomMessages(t *testing.T) {
	addr := prop("addr", metadata.KindObject)
	addr.Properties = []*metadata.AnalyzedProperty{prop("city", metadata.KindString)}
	at := objectType("T", addr, prop("age", metadata.KindNumber))

	code := GenerateValidator(at, &ValidatorContext{
		CustomMessages: map[string]string{
			"age":       "age must be numeric",
			"addr.city": "city is required",
		},
	})

	assertContains(t, code, `_p("age must be numeric", "age");`)
	assertContains(t, code, `_p("city is required"`)
	assertNotContains(t, code, `_p("must be a number", "age")`)
}

func TestValidatorCustomTail(t *testing.T) {
	at := objectType("T", prop("name", metadata.KindString))
	code := GenerateValidator(at, &ValidatorContext{
		CustomTail: "(data, report) => { if (data.name === \"root\") report(\"reserved\", \"name\"); }",
	})

	assertContains(t, code, "if (!errors)")
	assertContains(t, code, ")(out, (message, path) => _p(message, path));")
}

func TestValidatorBrandInlining(t *testing.T) {
	p := prop("em", metadata.KindString)
	p.Brand = "email"
	code := GenerateValidator(objectType("T", p), &ValidatorContext{
		BrandValidators: map[string]BrandValidator{
			"email": {Param: "value", Body: `if (!value.includes("@")) errors.push("not an email");`},
		},
	})

	assertContains(t, code, `const _b1 = (m) => _p(m, "em");`)
	assertContains(t, code, `if (!v0.includes("@")) _b1("not an email");`)
	// The brand body runs only after the base string check passed.
	assertContains(t, code, `typeof v0 !== "string"`)
}

func TestValidatorUnregisteredBrandSkipsInline(t *testing.T) {
	p := prop("em", metadata.KindString)
	p.Brand = "email"
	code := GenerateValidator(objectType("T", p), nil)

	assertNotContains(t, code, "_b1")
	assertContains(t, code, `typeof v0 !== "string"`)
}

func TestValidatorAsyncPromotion(t *testing.T) {
	p := prop("em", metadata.KindString)
	p.Brand = "email"
	ctx := &ValidatorContext{
		BrandValidators: map[string]BrandValidator{
			"email": {Param: "v", Body: "await check(v);", Async: true},
		},
		CustomTail: "(data, report) => {}",
	}
	code := GenerateValidator(objectType("T", p), ctx)

	assertContains(t, code, "async (input) => {")
	assertContains(t, code, "await (")
}

func TestValidatorSyncByDefault(t *testing.T) {
	code := GenerateValidator(objectType("T", prop("x", metadata.KindString)), nil)
	if strings.HasPrefix(code, "async") {
		t.Errorf("expected sync header, got %q", code[:40])
	}
}

func TestValidatorSkippableKinds(t *testing.T) {
	at := objectType("T",
		prop("a", metadata.KindAny),
		prop("n", metadata.KindNever),
		prop("u", metadata.KindUnknown),
	)
	code := GenerateValidator(at, nil)

	// any/unknown copy when present; never vanishes entirely.
	assertContains(t, code, "if (v0 !== undefined) out.a = v0;")
	assertNotContains(t, code, "out.n")
}

func TestValidatorNonIdentifierProperty(t *testing.T) {
	code := GenerateValidator(objectType("T", prop("antall ansatte", metadata.KindNumber)), nil)
	assertContains(t, code, `input["antall ansatte"]`)
	assertContains(t, code, `out["antall ansatte"]`)
}

func assertContains(t *testing.T, haystack string, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected output to contain %q.\nGot:\n%s", needle, haystack)
	}
}

func assertNotContains(t *testing.T, haystack string, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("expected output NOT to contain %q.\nGot:\n%s", needle, haystack)
	}
}
