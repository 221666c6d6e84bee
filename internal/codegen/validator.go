package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tscodec/tscodec/internal/metadata"
)

// BrandValidator is a user validator registered via validator.set("name", fn).
// Body is the function body source (between the braces), Param the declared
// parameter name, Async whether the function was declared async or awaits.
type BrandValidator struct {
	Body  string
	Param string
	Async bool
}

// ValidatorContext carries the per-call-site inputs of validator generation.
type ValidatorContext struct {
	// BrandValidators maps brand names to registered validator functions.
	BrandValidators map[string]BrandValidator

	// CustomMessages maps dotted property paths to override messages. Root
	// properties join with "."; array elements contribute no path segment.
	CustomMessages map[string]string

	// CustomTail is the literal source text of the optional value argument
	// of validator.build, invoked after structural checks pass.
	CustomTail string

	// HasAsync forces the generated function to be async.
	HasAsync bool
}

type valGen struct {
	e     *Emitter
	ctx   *ValidatorContext
	uid   int
	async bool
}

// GenerateValidator emits the function expression replacing a
// validator.build<T>() call: (input) => { ok, data, errors }.
func GenerateValidator(at *metadata.AnalyzedType, ctx *ValidatorContext) string {
	if ctx == nil {
		ctx = &ValidatorContext{}
	}
	g := &valGen{e: NewEmitter(), ctx: ctx}
	g.async = ctx.HasAsync || g.anyAsyncBrand(at.Properties)

	header := "(input) =>"
	if g.async {
		header = "async (input) =>"
	}
	g.e.Block("%s", header)
	g.e.Line("let errors;")
	g.e.Line("const _p = (message, path) => { (errors || (errors = [])).push({ message, path }); };")
	g.e.Line("const out = {};")

	g.e.Block("if (input === null || typeof input !== \"object\" || Array.isArray(input))")
	g.e.Line("_p(%s, \"\");", jsLiteral(g.message("", "must be an object")))
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()
	for _, p := range at.Properties {
		g.emitProperty(p, "input", "out")
	}
	g.e.EndBlock()

	if ctx.CustomTail != "" {
		g.e.Block("if (!errors)")
		call := fmt.Sprintf("(%s)(out, (message, path) => _p(message, path));", ctx.CustomTail)
		if g.async {
			call = "await " + call
		}
		g.e.Line("%s", call)
		g.e.EndBlock()
	}

	g.e.Line("if (errors) return { ok: false, data: input, errors };")
	g.e.Line("return { ok: true, data: out, errors: undefined };")
	g.e.EndBlock()
	return strings.TrimRight(g.e.String(), "\n")
}

// anyAsyncBrand reports whether any reachable branded property consults an
// async registered validator, which forces the whole function async.
func (g *valGen) anyAsyncBrand(props []*metadata.AnalyzedProperty) bool {
	for _, p := range props {
		if p == nil {
			continue
		}
		if p.Brand != "" {
			if bv, ok := g.ctx.BrandValidators[p.Brand]; ok && bv.Async {
				return true
			}
		}
		if g.anyAsyncBrand(p.Properties) || g.anyAsyncBrand(p.TupleTypes) || g.anyAsyncBrand(p.UnionTypes) {
			return true
		}
		if p.ItemType != nil && g.anyAsyncBrand([]*metadata.AnalyzedProperty{p.ItemType}) {
			return true
		}
		if p.IndexType != nil && g.anyAsyncBrand([]*metadata.AnalyzedProperty{p.IndexType}) {
			return true
		}
	}
	return false
}

// message resolves the effective error message for a static path.
func (g *valGen) message(staticPath, def string) string {
	if m, ok := g.ctx.CustomMessages[staticPath]; ok {
		return m
	}
	return def
}

func (g *valGen) nextUID() int {
	id := g.uid
	g.uid++
	return id
}

// emitProperty handles one declared object member: optionality, then the
// kind check, then extraction into the output object.
func (g *valGen) emitProperty(p *metadata.AnalyzedProperty, src, dst string) {
	if p.Type == metadata.KindNever {
		return
	}

	g.emitMember(p, jsPropAccess(src, p.Name), jsPropAccess(dst, p.Name), p.Name, jsLiteral(p.Name))
}

// emitMember validates one value slot. val is the source expression, target
// the extraction lvalue, staticPath the dotted path for message lookup, and
// pathExpr a JS expression producing the runtime error path.
func (g *valGen) emitMember(p *metadata.AnalyzedProperty, val, target, staticPath, pathExpr string) {
	id := g.nextUID()
	v := fmt.Sprintf("v%d", id)

	g.e.Block("")
	g.e.Line("let %s = %s;", v, val)

	body := func() {
		if p.Nullable {
			g.e.Block("if (%s === null)", v)
			g.e.Line("%s = null;", target)
			g.e.EndBlockSuffix(" else {")
			g.e.Indent()
			g.emitKind(p, v, target, staticPath, pathExpr)
			g.e.EndBlock()
		} else {
			g.emitKind(p, v, target, staticPath, pathExpr)
		}
	}

	if p.Optional {
		g.e.Block("if (%s !== undefined)", v)
		body()
		g.e.EndBlock()
	} else {
		body()
	}
	g.e.EndBlock()
}

// emitKind dispatches one kind's check/coercion/extraction.
func (g *valGen) emitKind(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	switch p.Type {
	case metadata.KindAny, metadata.KindUnknown:
		g.e.Line("if (%s !== undefined) %s = %s;", v, target, v)

	case metadata.KindString:
		g.e.Block("if (typeof %s !== \"string\")", v)
		g.pushError(staticPath, "must be a string", pathExpr)
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.emitBrand(p, v, pathExpr)
		g.e.Line("%s = %s;", target, v)
		g.e.EndBlock()

	case metadata.KindNumber:
		if p.Brand == metadata.BrandInteger {
			g.e.Block("if ((typeof %s !== \"number\" && isNaN(%s = +%s)) || %s %% 1 !== 0)", v, v, v, v)
			g.pushError(staticPath, "must be an integer", pathExpr)
		} else {
			g.e.Block("if (typeof %s !== \"number\" && isNaN(%s = +%s))", v, v, v)
			g.pushError(staticPath, "must be a number", pathExpr)
		}
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.emitBrand(p, v, pathExpr)
		g.e.Line("%s = %s;", target, v)
		g.e.EndBlock()

	case metadata.KindBoolean:
		g.e.Block("if (typeof %s !== \"boolean\")", v)
		g.e.Line("const s = String(%s).toLowerCase();", v)
		g.e.Line("if (s === \"true\" || s === \"1\") %s = true;", v)
		g.e.Line("else if (s === \"false\" || s === \"0\") %s = false;", v)
		g.e.Line("else _p(%s, %s);", jsLiteral(g.message(staticPath, "must be true or false")), pathExpr)
		g.e.EndBlock()
		g.e.Line("if (typeof %s === \"boolean\") %s = %s;", v, target, v)

	case metadata.KindBigint:
		g.e.Block("if (typeof %s !== \"bigint\")", v)
		g.pushError(staticPath, "must be a bigint", pathExpr)
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.e.Line("%s = %s;", target, v)
		g.e.EndBlock()

	case metadata.KindDate:
		g.e.Block("if (!(%s instanceof Date) || isNaN(%s.getTime()))", v, v)
		g.pushError(staticPath, "invalid date type", pathExpr)
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.e.Line("%s = %s;", target, v)
		g.e.EndBlock()

	case metadata.KindNull:
		g.e.Block("if (%s !== null)", v)
		g.pushError(staticPath, "invalid null type", pathExpr)
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.e.Line("%s = null;", target)
		g.e.EndBlock()

	case metadata.KindLiteral, metadata.KindEnum:
		def := "invalid literal type"
		if p.Type == metadata.KindEnum {
			def = "invalid enum type"
		}
		g.e.Block("if (%s)", negatedEquality(v, p.Literals))
		g.pushError(staticPath, def, pathExpr)
		g.e.EndBlockSuffix(" else {")
		g.e.Indent()
		g.e.Line("%s = %s;", target, v)
		g.e.EndBlock()

	case metadata.KindArray:
		g.emitArray(p, v, target, staticPath, pathExpr)

	case metadata.KindTuple:
		g.emitTuple(p, v, target, staticPath, pathExpr)

	case metadata.KindObject:
		g.emitObject(p, v, target, staticPath, pathExpr)

	case metadata.KindRecord:
		g.emitRecord(p, v, target, staticPath, pathExpr)

	case metadata.KindUnion:
		g.emitUnion(p, v, target, staticPath, pathExpr)

	default:
		g.e.Line("%s = %s;", target, v)
	}
}

func (g *valGen) pushError(staticPath, def, pathExpr string) {
	g.e.Line("_p(%s, %s);", jsLiteral(g.message(staticPath, def)), pathExpr)
}

// emitBrand inlines a registered brand validator body after the base type
// check has passed. The body's error pushes are rewritten to push
// {message, path} at the current path, its parameter to the value variable.
func (g *valGen) emitBrand(p *metadata.AnalyzedProperty, v, pathExpr string) {
	if p.Brand == "" || p.Brand == metadata.BrandTemplate {
		return
	}
	bv, ok := g.ctx.BrandValidators[p.Brand]
	if !ok {
		return
	}
	id := g.nextUID()
	push := fmt.Sprintf("_b%d", id)
	g.e.Line("const %s = (m) => _p(m, %s);", push, pathExpr)
	g.e.Block("")
	for _, line := range strings.Split(rewriteBrandBody(bv, v, push), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		g.e.Line("%s", line)
	}
	g.e.EndBlock()
}

var brandPushRe = regexp.MustCompile(`\berrors\s*\.\s*push\s*\(`)

// rewriteBrandBody rewrites a registered validator body for inlining: its
// parameter becomes the current value variable and errors.push(msg) becomes
// a call to the path-capturing push closure.
func rewriteBrandBody(bv BrandValidator, valueVar, push string) string {
	body := brandPushRe.ReplaceAllString(bv.Body, push+"(")
	if bv.Param != "" {
		paramRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(bv.Param) + `\b`)
		body = paramRe.ReplaceAllString(body, valueVar)
	}
	return body
}

func (g *valGen) emitArray(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	g.e.Block("if (!Array.isArray(%s))", v)
	g.pushError(staticPath, "must be an array", pathExpr)
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()

	id := g.nextUID()
	arr := fmt.Sprintf("a%d", id)
	idx := fmt.Sprintf("i%d", id)
	mark := fmt.Sprintf("n%d", id)
	g.e.Line("const %s = [];", arr)
	g.e.Block("for (let %s = 0; %s < %s.length; %s++)", idx, idx, v, idx)
	g.e.Line("const %s = errors ? errors.length : 0;", mark)
	if p.ItemType != nil && p.ItemType.Type != metadata.KindNever {
		elemPath := fmt.Sprintf("%s + \"[\" + %s + \"]\"", pathExpr, idx)
		g.emitMember(p.ItemType, fmt.Sprintf("%s[%s]", v, idx), fmt.Sprintf("%s[%s]", arr, idx), staticPath, elemPath)
	} else {
		g.e.Line("%s[%s] = %s[%s];", arr, idx, v, idx)
	}
	// First failing element stops the scan.
	g.e.Line("if (errors && errors.length !== %s) break;", mark)
	g.e.EndBlock()
	g.e.Line("%s = %s;", target, arr)
	g.e.EndBlock()
}

func (g *valGen) emitTuple(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	g.e.Block("if (!Array.isArray(%s) || %s.length !== %d)", v, v, len(p.TupleTypes))
	g.pushError(staticPath, "invalid tuple type", pathExpr)
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()

	id := g.nextUID()
	tup := fmt.Sprintf("t%d", id)
	g.e.Line("const %s = [];", tup)
	for i, elem := range p.TupleTypes {
		if elem.Type == metadata.KindNever {
			continue
		}
		elemPath := fmt.Sprintf("%s + \"[%d]\"", pathExpr, i)
		g.emitMember(elem, fmt.Sprintf("%s[%d]", v, i), fmt.Sprintf("%s[%d]", tup, i), staticPath, elemPath)
	}
	g.e.Line("%s = %s;", target, tup)
	g.e.EndBlock()
}

func (g *valGen) emitObject(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	g.e.Block("if (%s === null || typeof %s !== \"object\" || Array.isArray(%s))", v, v, v)
	g.pushError(staticPath, "must be an object", pathExpr)
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()

	id := g.nextUID()
	obj := fmt.Sprintf("o%d", id)
	g.e.Line("const %s = {};", obj)
	for _, child := range p.Properties {
		if child.Type == metadata.KindNever {
			continue
		}
		childStatic := child.Name
		if staticPath != "" {
			childStatic = staticPath + "." + child.Name
		}
		childPath := fmt.Sprintf("%s + %s", pathExpr, jsLiteral(jsPropPathSuffix(child.Name)))
		g.emitMember(child, jsPropAccess(v, child.Name), jsPropAccess(obj, child.Name), childStatic, childPath)
	}
	g.e.Line("%s = %s;", target, obj)
	g.e.EndBlock()
}

func (g *valGen) emitRecord(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	g.e.Block("if (%s === null || typeof %s !== \"object\" || Array.isArray(%s))", v, v, v)
	g.pushError(staticPath, "must be an object", pathExpr)
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()

	// Only primitive value kinds are enforceable per key; anything else
	// passes unconditionally.
	valueKind := ""
	if p.IndexType != nil {
		switch p.IndexType.Type {
		case metadata.KindBoolean, metadata.KindNumber, metadata.KindString:
			valueKind = string(p.IndexType.Type)
		}
	}
	if valueKind != "" {
		id := g.nextUID()
		key := fmt.Sprintf("k%d", id)
		def := fmt.Sprintf("must be a %s", valueKind)
		g.e.Block("for (const %s in %s)", key, v)
		g.e.Line("if (!Object.prototype.hasOwnProperty.call(%s, %s)) continue;", v, key)
		g.e.Block("if (typeof %s[%s] !== %q)", v, key, valueKind)
		g.e.Line("_p(%s, %s + \".\" + %s);", jsLiteral(g.message(staticPath, def)), pathExpr, key)
		g.e.Line("break;")
		g.e.EndBlock()
		g.e.EndBlock()
	}
	g.e.Line("%s = { ...%s };", target, v)
	g.e.EndBlock()
}

func (g *valGen) emitUnion(p *metadata.AnalyzedProperty, v, target, staticPath, pathExpr string) {
	var tests []string
	for _, lit := range p.Literals {
		tests = append(tests, fmt.Sprintf("%s === %s", v, jsLiteral(lit.Value)))
	}
	for _, m := range p.UnionTypes {
		tests = append(tests, memberTest(m, v))
	}
	if len(tests) == 0 {
		tests = append(tests, "true")
	}
	g.e.Block("if (!(%s))", strings.Join(tests, " || "))
	g.pushError(staticPath, "invalid union type", pathExpr)
	g.e.EndBlockSuffix(" else {")
	g.e.Indent()
	g.e.Line("%s = %s;", target, v)
	g.e.EndBlock()
}

// memberTest builds the positive shape test for one union member.
func memberTest(m *metadata.AnalyzedProperty, v string) string {
	switch m.Type {
	case metadata.KindString:
		return fmt.Sprintf("typeof %s === \"string\"", v)
	case metadata.KindNumber:
		return fmt.Sprintf("typeof %s === \"number\"", v)
	case metadata.KindBoolean:
		return fmt.Sprintf("typeof %s === \"boolean\"", v)
	case metadata.KindBigint:
		return fmt.Sprintf("typeof %s === \"bigint\"", v)
	case metadata.KindDate:
		return fmt.Sprintf("%s instanceof Date", v)
	case metadata.KindNull:
		return fmt.Sprintf("%s === null", v)
	case metadata.KindArray:
		return fmt.Sprintf("Array.isArray(%s)", v)
	case metadata.KindTuple:
		return fmt.Sprintf("(Array.isArray(%s) && %s.length === %d)", v, v, len(m.TupleTypes))
	case metadata.KindObject, metadata.KindRecord:
		return fmt.Sprintf("(typeof %s === \"object\" && %s !== null && !Array.isArray(%s))", v, v, v)
	case metadata.KindLiteral, metadata.KindEnum:
		var parts []string
		for _, lit := range m.Literals {
			parts = append(parts, fmt.Sprintf("%s === %s", v, jsLiteral(lit.Value)))
		}
		if len(parts) == 0 {
			return "false"
		}
		return "(" + strings.Join(parts, " || ") + ")"
	case metadata.KindUnion:
		var parts []string
		for _, lit := range m.Literals {
			parts = append(parts, fmt.Sprintf("%s === %s", v, jsLiteral(lit.Value)))
		}
		for _, mm := range m.UnionTypes {
			parts = append(parts, memberTest(mm, v))
		}
		if len(parts) == 0 {
			return "true"
		}
		return "(" + strings.Join(parts, " || ") + ")"
	default:
		return "true"
	}
}

// negatedEquality builds the "matches no literal" condition.
func negatedEquality(v string, lits []metadata.Literal) string {
	if len(lits) == 0 {
		return "true"
	}
	parts := make([]string, len(lits))
	for i, lit := range lits {
		parts[i] = fmt.Sprintf("%s !== %s", v, jsLiteral(lit.Value))
	}
	return strings.Join(parts, " && ")
}
