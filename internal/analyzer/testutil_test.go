package analyzer_test

import (
	"context"
	"path"
	"runtime"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tscodec/tscodec/internal/analyzer"
	"github.com/tscodec/tscodec/internal/metadata"
	"github.com/tscodec/tscodec/internal/testutil"
)

// analyzeTestDir returns the absolute path to testdata/analyze/.
func analyzeTestDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "..", "..", "testdata", "analyze")
}

// analyzeEnv holds a tsgo program, checker, and source file for analyzer tests.
type analyzeEnv struct {
	program    *shimcompiler.Program
	checker    *shimchecker.Checker
	sourceFile *ast.SourceFile
	release    func()
}

// setupAnalyzer creates a tsgo program from inline TypeScript source code,
// obtains the type checker, and returns the environment for testing.
// The caller must call env.release() when done.
func setupAnalyzer(t *testing.T, tsSource string) *analyzeEnv {
	t.Helper()

	rootDir := analyzeTestDir()
	fileName := "test.ts"
	filePath := tspath.ResolvePath(rootDir, fileName)

	virtualFiles := map[string]string{
		filePath: tsSource,
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

	return &analyzeEnv{
		program:    program,
		checker:    checker,
		sourceFile: sourceFile,
		release:    release,
	}
}

// analyzeNamed looks up a top-level type alias, interface or enum by name and
// runs it through a fresh Analyzer as a generation root.
func (env *analyzeEnv) analyzeNamed(t *testing.T, typeName string) *metadata.AnalyzedType {
	t.Helper()

	a := analyzer.New(env.checker)

	for _, stmt := range env.sourceFile.Statements.Nodes {
		if stmt.Kind == ast.KindTypeAliasDeclaration {
			decl := stmt.AsTypeAliasDeclaration()
			if decl.Name().Text() == typeName {
				resolvedType := shimchecker.Checker_getTypeFromTypeNode(env.checker, decl.Type)
				return a.AnalyzeType(typeName, resolvedType)
			}
		}
		if stmt.Kind == ast.KindInterfaceDeclaration {
			decl := stmt.AsInterfaceDeclaration()
			if decl.Name().Text() == typeName {
				sym := env.checker.GetSymbolAtLocation(decl.Name())
				if sym != nil {
					resolvedType := shimchecker.Checker_getDeclaredTypeOfSymbol(env.checker, sym)
					return a.AnalyzeType(typeName, resolvedType)
				}
			}
		}
		if stmt.Kind == ast.KindEnumDeclaration {
			decl := stmt.AsEnumDeclaration()
			if decl.Name().Text() == typeName {
				sym := env.checker.GetSymbolAtLocation(decl.Name())
				if sym != nil {
					resolvedType := shimchecker.Checker_getDeclaredTypeOfSymbol(env.checker, sym)
					return a.AnalyzeType(typeName, resolvedType)
				}
			}
		}
	}

	t.Fatalf("type %q not found in source file", typeName)
	return nil
}

// typeAliasNode returns the type node behind a top-level type alias.
func typeAliasNode(t *testing.T, env *analyzeEnv, typeName string) *ast.Node {
	t.Helper()
	for _, stmt := range env.sourceFile.Statements.Nodes {
		if stmt.Kind == ast.KindTypeAliasDeclaration {
			decl := stmt.AsTypeAliasDeclaration()
			if decl.Name().Text() == typeName {
				return decl.Type
			}
		}
	}
	t.Fatalf("type alias %q not found", typeName)
	return nil
}

// findProp returns the named top-level property or fails the test.
func findProp(t *testing.T, at *metadata.AnalyzedType, name string) *metadata.AnalyzedProperty {
	t.Helper()
	for _, p := range at.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %q not found in %q (have %d properties)", name, at.Name, len(at.Properties))
	return nil
}
