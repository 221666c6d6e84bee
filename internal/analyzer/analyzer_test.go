package analyzer_test

import (
	"testing"

	"github.com/tscodec/tscodec/internal/analyzer"
	"github.com/tscodec/tscodec/internal/metadata"
)

func TestAnalyzePrimitives(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  s: string;
  n: number;
  b: boolean;
  big: bigint;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if got := findProp(t, at, "s").Type; got != metadata.KindString {
		t.Errorf("s: got %s", got)
	}
	if got := findProp(t, at, "n").Type; got != metadata.KindNumber {
		t.Errorf("n: got %s", got)
	}
	if got := findProp(t, at, "b").Type; got != metadata.KindBoolean {
		t.Errorf("b: got %s", got)
	}
	if got := findProp(t, at, "big").Type; got != metadata.KindBigint {
		t.Errorf("big: got %s", got)
	}
}

func TestAnalyzePropertySorting(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  z: string;
  a: string;
  m: string;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if len(at.Properties) != 3 {
		t.Fatalf("got %d properties", len(at.Properties))
	}
	want := []string{"a", "m", "z"}
	for i, name := range want {
		if at.Properties[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, at.Properties[i].Name, name)
		}
	}
}

func TestAnalyzeOptionalProperty(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  bio?: string;
  name: string;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	bio := findProp(t, at, "bio")
	if !bio.Optional {
		t.Error("bio should be optional")
	}
	if bio.Type != metadata.KindString {
		t.Errorf("bio: got %s", bio.Type)
	}
	if findProp(t, at, "name").Optional {
		t.Error("name should not be optional")
	}
}

func TestAnalyzeNullableCollapse(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  nick: string | null;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	nick := findProp(t, at, "nick")
	if nick.Type != metadata.KindString {
		t.Errorf("string | null should collapse to string, got %s", nick.Type)
	}
	if !nick.Nullable {
		t.Error("nick should be nullable")
	}
	if len(nick.UnionTypes) != 0 {
		t.Error("collapsed union should carry no members")
	}
}

func TestAnalyzeLiteralUnion(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  mode: "fast" | "slow";
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	mode := findProp(t, at, "mode")
	if mode.Type != metadata.KindLiteral {
		t.Fatalf("got %s", mode.Type)
	}
	if len(mode.Literals) != 2 {
		t.Fatalf("got %d literals", len(mode.Literals))
	}
	values := map[any]bool{}
	for _, lit := range mode.Literals {
		if lit.Type != metadata.LiteralString {
			t.Errorf("literal type %s", lit.Type)
		}
		values[lit.Value] = true
	}
	if !values["fast"] || !values["slow"] {
		t.Errorf("got values %v", values)
	}
}

func TestAnalyzeNumericEnum(t *testing.T) {
	env := setupAnalyzer(t, `
enum Color { Red, Green, Blue }
export type T = {
  c: Color;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	c := findProp(t, at, "c")
	if c.Type != metadata.KindEnum {
		t.Fatalf("got %s", c.Type)
	}
	if len(c.Literals) != 3 {
		t.Fatalf("got %d literals", len(c.Literals))
	}
	for _, lit := range c.Literals {
		if lit.Type != metadata.LiteralNumber {
			t.Errorf("enum literal type %s", lit.Type)
		}
	}
}

func TestAnalyzeBooleanFoldsInUnion(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  flag: boolean | null;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	flag := findProp(t, at, "flag")
	if flag.Type != metadata.KindBoolean {
		t.Errorf("true | false should fold to boolean, got %s", flag.Type)
	}
	if !flag.Nullable {
		t.Error("flag should be nullable")
	}
}

func TestAnalyzeMixedUnion(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  id: string | number;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	id := findProp(t, at, "id")
	if id.Type != metadata.KindUnion {
		t.Fatalf("got %s", id.Type)
	}
	if len(id.UnionTypes) != 2 {
		t.Fatalf("got %d members", len(id.UnionTypes))
	}
}

func TestAnalyzeArray(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  tags: string[];
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	tags := findProp(t, at, "tags")
	if tags.Type != metadata.KindArray {
		t.Fatalf("got %s", tags.Type)
	}
	if tags.ItemType == nil || tags.ItemType.Type != metadata.KindString {
		t.Errorf("item: got %+v", tags.ItemType)
	}
	if tags.ItemType.Name != "item" {
		t.Errorf("item name: got %q", tags.ItemType.Name)
	}
}

func TestAnalyzeTuple(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  pair: [string, number];
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	pair := findProp(t, at, "pair")
	if pair.Type != metadata.KindTuple {
		t.Fatalf("got %s", pair.Type)
	}
	if len(pair.TupleTypes) != 2 {
		t.Fatalf("got %d elements", len(pair.TupleTypes))
	}
	if pair.TupleTypes[0].Type != metadata.KindString || pair.TupleTypes[0].Name != "0" {
		t.Errorf("element 0: %+v", pair.TupleTypes[0])
	}
	if pair.TupleTypes[1].Type != metadata.KindNumber || pair.TupleTypes[1].Name != "1" {
		t.Errorf("element 1: %+v", pair.TupleTypes[1])
	}
}

func TestAnalyzeRecord(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  counts: Record<string, number>;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	counts := findProp(t, at, "counts")
	if counts.Type != metadata.KindRecord {
		t.Fatalf("got %s", counts.Type)
	}
	if counts.IndexType == nil || counts.IndexType.Type != metadata.KindNumber {
		t.Errorf("index type: %+v", counts.IndexType)
	}
	if counts.IndexType.Name != "value" {
		t.Errorf("index name: got %q", counts.IndexType.Name)
	}
}

func TestAnalyzeNestedObject(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  addr: {
    zip: string;
    city: string;
  };
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	addr := findProp(t, at, "addr")
	if addr.Type != metadata.KindObject {
		t.Fatalf("got %s", addr.Type)
	}
	if len(addr.Properties) != 2 {
		t.Fatalf("got %d nested properties", len(addr.Properties))
	}
	// Nested properties sort too.
	if addr.Properties[0].Name != "city" || addr.Properties[1].Name != "zip" {
		t.Errorf("order: %q, %q", addr.Properties[0].Name, addr.Properties[1].Name)
	}
}

func TestAnalyzeDate(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  when: Date;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if got := findProp(t, at, "when").Type; got != metadata.KindDate {
		t.Errorf("got %s", got)
	}
}

func TestAnalyzeBrandedString(t *testing.T) {
	env := setupAnalyzer(t, `
export type Email = string & { __brand: "email" };
export type T = {
  contact: Email;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	contact := findProp(t, at, "contact")
	if contact.Type != metadata.KindString {
		t.Errorf("got %s", contact.Type)
	}
	if contact.Brand != "email" {
		t.Errorf("brand: got %q", contact.Brand)
	}
}

func TestAnalyzeBrandedNumber(t *testing.T) {
	env := setupAnalyzer(t, `
export type UserId = number & { __brand: "integer" };
export type T = {
  id: UserId;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	id := findProp(t, at, "id")
	if id.Type != metadata.KindNumber {
		t.Errorf("got %s", id.Type)
	}
	if id.Brand != metadata.BrandInteger {
		t.Errorf("brand: got %q", id.Brand)
	}
}

func TestAnalyzeTemplateLiteral(t *testing.T) {
	env := setupAnalyzer(t, "export type T = {\n  id: `user-${string}`;\n};\n")
	defer env.release()

	at := env.analyzeNamed(t, "T")
	id := findProp(t, at, "id")
	if id.Type != metadata.KindString {
		t.Errorf("got %s", id.Type)
	}
	if id.Brand != metadata.BrandTemplate {
		t.Errorf("brand: got %q", id.Brand)
	}
}

func TestAnalyzeIntersectionMerge(t *testing.T) {
	env := setupAnalyzer(t, `
type A = { a: string };
type B = { b: number };
export type T = {
  v: A & B;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	v := findProp(t, at, "v")
	if v.Type != metadata.KindObject {
		t.Fatalf("got %s", v.Type)
	}
	if len(v.Properties) != 2 {
		t.Fatalf("got %d merged properties", len(v.Properties))
	}
	if v.Properties[0].Name != "a" || v.Properties[1].Name != "b" {
		t.Errorf("order: %q, %q", v.Properties[0].Name, v.Properties[1].Name)
	}
}

func TestAnalyzeSkippableKinds(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  a: any;
  u: unknown;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if got := findProp(t, at, "a").Type; got != metadata.KindAny {
		t.Errorf("a: got %s", got)
	}
	if got := findProp(t, at, "u").Type; got != metadata.KindUnknown {
		t.Errorf("u: got %s", got)
	}
}

func TestAnalyzeFunctionAndPromise(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  f: () => void;
  p: Promise<string>;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if got := findProp(t, at, "f").Type; got != metadata.KindUnknown {
		t.Errorf("f: got %s", got)
	}
	if got := findProp(t, at, "p").Type; got != metadata.KindUnknown {
		t.Errorf("p: got %s", got)
	}
}

func TestAnalyzeCycleCollapses(t *testing.T) {
	env := setupAnalyzer(t, `
export type Chain = {
  value: string;
  next: Chain | null;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "Chain")
	next := findProp(t, at, "next")
	if next.Type != metadata.KindObject {
		t.Fatalf("got %s", next.Type)
	}
	if !next.Nullable {
		t.Error("next should be nullable")
	}
	// The cyclic reference collapses to a bare object leaf.
	if len(next.Properties) != 0 {
		t.Errorf("cycle leaf should carry no properties, got %d", len(next.Properties))
	}
}

func TestAnalyzeInterface(t *testing.T) {
	env := setupAnalyzer(t, `
export interface User {
  name: string;
  id: number;
}
`)
	defer env.release()

	at := env.analyzeNamed(t, "User")
	if at.Name != "User" {
		t.Errorf("name: got %q", at.Name)
	}
	if len(at.Properties) != 2 {
		t.Fatalf("got %d properties", len(at.Properties))
	}
	if at.Properties[0].Name != "id" || at.Properties[1].Name != "name" {
		t.Errorf("order: %q, %q", at.Properties[0].Name, at.Properties[1].Name)
	}
}

func TestAnalyzeMappedOptional(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = {
  v: Partial<{ a: string }>;
};
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	v := findProp(t, at, "v")
	if v.Type != metadata.KindObject {
		t.Fatalf("got %s", v.Type)
	}
	if len(v.Properties) != 1 || !v.Properties[0].Optional {
		t.Errorf("Partial property should be optional: %+v", v.Properties)
	}
}

func TestAnalyzeRootNonObject(t *testing.T) {
	env := setupAnalyzer(t, `
export type T = string;
`)
	defer env.release()

	at := env.analyzeNamed(t, "T")
	if at == nil {
		t.Fatal("nil result")
	}
	if len(at.Properties) != 0 {
		t.Errorf("non-object root should have no properties, got %d", len(at.Properties))
	}
}

func TestAnalyzeTypeNodeMemoizesByNode(t *testing.T) {
	env := setupAnalyzer(t, `
export type User = { id: number; name: string };
export type Other = { flag: boolean };
`)
	defer env.release()

	a := analyzer.New(env.checker)
	userNode := typeAliasNode(t, env, "User")

	first := a.AnalyzeTypeNode(userNode)
	if first == nil || len(first.Properties) != 2 {
		t.Fatalf("got %+v", first)
	}
	if second := a.AnalyzeTypeNode(userNode); second != first {
		t.Error("repeat analysis of the same node did not return the memoized result")
	}

	// Path-tracking state must fully unwind so the same Analyzer can run
	// further analyses.
	other := a.AnalyzeTypeNode(typeAliasNode(t, env, "Other"))
	if len(other.Properties) != 1 || other.Properties[0].Name != "flag" {
		t.Errorf("got %+v", other)
	}
}
