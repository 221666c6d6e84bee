package detect

import (
	"context"
	"path"
	"runtime"
	"strings"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tscodec/tscodec/internal/diagnostic"
	"github.com/tscodec/tscodec/internal/testutil"
)

type detectEnv struct {
	sourceFile *ast.SourceFile
	checker    *shimchecker.Checker
	release    func()
}

// setupDetect builds a tsgo program from inline TypeScript and returns the
// parsed source file plus checker. The caller must call env.release().
func setupDetect(t *testing.T, tsSource string) *detectEnv {
	t.Helper()

	_, filename, _, _ := runtime.Caller(0)
	rootDir := path.Join(path.Dir(filename), "..", "..", "testdata", "analyze")
	fileName := "test.ts"
	filePath := tspath.ResolvePath(rootDir, fileName)

	// The marker module resolves to a virtual stub so imports type-check.
	stubPath := tspath.ResolvePath(rootDir, "node_modules/tscodec/index.d.ts")
	virtualFiles := map[string]string{
		filePath: tsSource,
		stubPath: `
export declare function codec<T>(): { encode(data: T): Uint8Array; decode(bytes: Uint8Array): T };
export declare const validator: {
  build<T, M = {}>(tail?: unknown): (input: unknown) => { ok: boolean; data: T; errors?: unknown[] };
  set(brand: string, fn: (value: never) => void): void;
};
`,
	}
	fs := testutil.NewDefaultOverlayVFS(virtualFiles)
	host := shimcompiler.NewCompilerHost(rootDir, fs, bundled.LibPath(), nil, nil)

	configParseResult, diags := tsoptions.GetParsedCommandLineOfConfigFile(
		"tsconfig.json", &core.CompilerOptions{}, nil, host, nil,
	)
	if len(diags) > 0 {
		t.Fatalf("tsconfig parse errors: %v", diags[0].String())
	}

	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:                      configParseResult,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	})
	if program == nil {
		t.Fatal("failed to create program")
	}
	program.BindSourceFiles()

	sourceFile := program.GetSourceFile(fileName)
	if sourceFile == nil {
		t.Fatalf("source file %q not found in program", fileName)
	}

	checker, release := shimcompiler.Program_GetTypeChecker(program, context.Background())
	if checker == nil {
		t.Fatal("failed to get type checker")
	}

	return &detectEnv{sourceFile: sourceFile, checker: checker, release: release}
}

func TestExtractFindsBothCallKinds(t *testing.T) {
	env := setupDetect(t, `
import { codec, validator } from "tscodec";
export type User = { id: number };
export const c = codec<User>();
export const v = validator.build<User>();
`)
	defer env.release()

	diags := diagnostic.NewCollector(false, false)
	calls := Extract(env.sourceFile, env.checker, MarkerModule, diags)

	if len(calls) != 2 {
		t.Fatalf("got %d calls", len(calls))
	}
	if calls[0].Kind != CallCodec || calls[1].Kind != CallValidator {
		t.Errorf("kinds: %v, %v", calls[0].Kind, calls[1].Kind)
	}
	for _, c := range calls {
		if c.TypeArg == nil {
			t.Error("missing type argument node")
		}
		if c.Line <= 0 {
			t.Errorf("line: got %d", c.Line)
		}
	}
	if calls[0].Pos >= calls[1].Pos {
		t.Error("calls not sorted by position")
	}
	if diags.WarningCount() != 0 {
		t.Errorf("unexpected diagnostics: %s", diags.FormatAll())
	}
}

func TestExtractAliasedImport(t *testing.T) {
	env := setupDetect(t, `
import { codec as make } from "tscodec";
export type User = { id: number };
export const c = make<User>();
`)
	defer env.release()

	calls := Extract(env.sourceFile, env.checker, MarkerModule, nil)
	if len(calls) != 1 || calls[0].Kind != CallCodec {
		t.Fatalf("got %+v", calls)
	}
}

func TestExtractIgnoresOtherModules(t *testing.T) {
	env := setupDetect(t, `
declare function codec<T>(): unknown;
export type User = { id: number };
export const c = codec<User>();
`)
	defer env.release()

	if calls := Extract(env.sourceFile, env.checker, MarkerModule, nil); len(calls) != 0 {
		t.Errorf("locally declared codec was detected: %+v", calls)
	}
}

func TestExtractIgnoresTypeOnlyImport(t *testing.T) {
	env := setupDetect(t, `
import { type codec } from "tscodec";
export type User = { id: number };
`)
	defer env.release()

	if calls := Extract(env.sourceFile, env.checker, MarkerModule, nil); len(calls) != 0 {
		t.Errorf("type-only import produced calls: %+v", calls)
	}
}

func TestExtractMissingTypeArgument(t *testing.T) {
	env := setupDetect(t, `
import { codec } from "tscodec";
export const c = codec();
`)
	defer env.release()

	diags := diagnostic.NewCollector(false, false)
	calls := Extract(env.sourceFile, env.checker, MarkerModule, diags)

	if len(calls) != 0 {
		t.Errorf("malformed call extracted: %+v", calls)
	}
	if diags.WarningCount() != 1 {
		t.Errorf("want 1 warning, got: %s", diags.FormatAll())
	}
}

func TestExtractCodecRejectsValueArguments(t *testing.T) {
	env := setupDetect(t, `
import { codec } from "tscodec";
export type User = { id: number };
export const c = codec<User>(undefined as never);
`)
	defer env.release()

	diags := diagnostic.NewCollector(false, false)
	if calls := Extract(env.sourceFile, env.checker, MarkerModule, diags); len(calls) != 0 {
		t.Errorf("call with value argument extracted: %+v", calls)
	}
	if diags.WarningCount() != 1 {
		t.Errorf("want 1 warning, got: %s", diags.FormatAll())
	}
}

func TestExtractBuildMessages(t *testing.T) {
	env := setupDetect(t, `
import { validator } from "tscodec";
export type User = { id: number; addr: { city: string } };
export const v = validator.build<User, { id: "bad id"; addr: { city: "bad city" } }>();
`)
	defer env.release()

	calls := Extract(env.sourceFile, env.checker, MarkerModule, nil)
	if len(calls) != 1 {
		t.Fatalf("got %d calls", len(calls))
	}
	m := calls[0].Messages
	if m["id"] != "bad id" {
		t.Errorf("id message: got %q", m["id"])
	}
	if m["addr.city"] != "bad city" {
		t.Errorf("nested message: got %q", m["addr.city"])
	}
}

func TestExtractBuildTail(t *testing.T) {
	env := setupDetect(t, `
import { validator } from "tscodec";
export type User = { id: number };
export const v = validator.build<User>((data, report) => { report("odd", "id"); });
`)
	defer env.release()

	calls := Extract(env.sourceFile, env.checker, MarkerModule, nil)
	if len(calls) != 1 {
		t.Fatalf("got %d calls", len(calls))
	}
	tail := calls[0].TailSource
	if tail == "" || !strings.Contains(tail, "report(") {
		t.Errorf("tail: got %q", tail)
	}
}

func TestScanRegistrations(t *testing.T) {
	env := setupDetect(t, `
import { validator } from "tscodec";
validator.set("email", (value) => { if (!value.includes("@")) errors.push("not an email"); });
declare const errors: string[];
`)
	defer env.release()

	diags := diagnostic.NewCollector(false, false)
	regs := ScanRegistrations(env.sourceFile, MarkerModule, diags)

	bv, ok := regs["email"]
	if !ok {
		t.Fatalf("email not registered: %+v", regs)
	}
	if bv.Param != "value" {
		t.Errorf("param: got %q", bv.Param)
	}
	if !strings.Contains(bv.Body, "includes") {
		t.Errorf("body: got %q", bv.Body)
	}
	if bv.Async {
		t.Error("should not be async")
	}
}

func TestScanRegistrationsAsync(t *testing.T) {
	env := setupDetect(t, `
import { validator } from "tscodec";
validator.set("handle", async (value) => { await Promise.resolve(value); });
`)
	defer env.release()

	regs := ScanRegistrations(env.sourceFile, MarkerModule, nil)
	if bv, ok := regs["handle"]; !ok || !bv.Async {
		t.Errorf("got %+v", regs)
	}
}

func TestScanRegistrationsNonLiteralBrand(t *testing.T) {
	env := setupDetect(t, `
import { validator } from "tscodec";
const name = "email";
validator.set(name, (value) => {});
`)
	defer env.release()

	diags := diagnostic.NewCollector(false, false)
	regs := ScanRegistrations(env.sourceFile, MarkerModule, diags)

	if len(regs) != 0 {
		t.Errorf("non-literal brand registered: %+v", regs)
	}
	if diags.WarningCount() != 1 {
		t.Errorf("want 1 warning, got: %s", diags.FormatAll())
	}
}

func TestScanRegistrationsWithoutImport(t *testing.T) {
	env := setupDetect(t, `
const validator = { set(a: string, b: unknown) {} };
validator.set("email", (value: string) => {});
`)
	defer env.release()

	if regs := ScanRegistrations(env.sourceFile, MarkerModule, nil); len(regs) != 0 {
		t.Errorf("local validator object registered brands: %+v", regs)
	}
}
