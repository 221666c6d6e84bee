// Package compiler wraps tsgo program construction and emit for the
// transform pipeline: parse tsconfig, build a program, hand out the shared
// type checker, and emit JavaScript through a write hook so generated code
// can be spliced in before anything reaches disk.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	shimincremental "github.com/microsoft/typescript-go/shim/execute/incremental"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
)

// Diagnostic represents a compilation diagnostic message.
type Diagnostic struct {
	FilePath string
	Message  string
}

func (d Diagnostic) String() string {
	if d.FilePath != "" {
		return fmt.Sprintf("%s: %s", d.FilePath, d.Message)
	}
	return d.Message
}

// CreateProgramResult contains the program and the parsed tsconfig for
// downstream use.
type CreateProgramResult struct {
	Program      *shimcompiler.Program
	ParsedConfig *tsoptions.ParsedCommandLine
}

// ParseTSConfig parses a tsconfig.json file using tsgo's native JSONC
// parser (comments, trailing commas and extends chains included). If
// cliOverrides is non-nil, those compiler options take precedence over
// tsconfig values.
func ParseTSConfig(fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost, cliOverrides *core.CompilerOptions) (*tsoptions.ParsedCommandLine, []Diagnostic, error) {
	resolvedConfigPath := tspath.ResolvePath(cwd, tsconfigPath)
	if !fs.FileExists(resolvedConfigPath) {
		return nil, nil, fmt.Errorf("could not find tsconfig at %v", resolvedConfigPath)
	}

	if cliOverrides == nil {
		cliOverrides = &core.CompilerOptions{}
	}

	configParseResult, diagnostics := tsoptions.GetParsedCommandLineOfConfigFile(tsconfigPath, cliOverrides, nil, host, nil)

	if len(diagnostics) > 0 {
		return nil, convertDiagnostics(diagnostics), nil
	}

	if configParseResult != nil && len(configParseResult.Errors) > 0 {
		return nil, convertDiagnostics(configParseResult.Errors), nil
	}

	return configParseResult, nil, nil
}

// CreateProgramFromConfig creates a TypeScript program from an
// already-parsed tsconfig.
func CreateProgramFromConfig(singleThreaded bool, parsedConfig *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, []Diagnostic, error) {
	opts := shimcompiler.ProgramOptions{
		Config:                      parsedConfig,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	}
	if !singleThreaded {
		opts.SingleThreaded = core.TSFalse
	}

	program := shimcompiler.NewProgram(opts)
	if program == nil {
		return nil, nil, errors.New("failed to create program")
	}

	programDiags := program.GetProgramDiagnostics()
	if len(programDiags) > 0 {
		return nil, convertDiagnostics(programDiags), nil
	}

	program.BindSourceFiles()

	return program, nil, nil
}

// CreateProgram parses config and creates a program in one step.
func CreateProgram(singleThreaded bool, fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost) (*CreateProgramResult, []Diagnostic, error) {
	parsedConfig, diags, err := ParseTSConfig(fs, cwd, tsconfigPath, host, nil)
	if err != nil || len(diags) > 0 {
		return nil, diags, err
	}

	program, programDiags, err := CreateProgramFromConfig(singleThreaded, parsedConfig, host)
	if err != nil || len(programDiags) > 0 {
		return nil, programDiags, err
	}

	return &CreateProgramResult{
		Program:      program,
		ParsedConfig: parsedConfig,
	}, nil, nil
}

// GetTypeChecker returns the program's shared checker and its release
// function. All analysis for one build runs against this single checker
// snapshot; the release must happen before the program is discarded.
func GetTypeChecker(program *shimcompiler.Program) (*shimchecker.Checker, func()) {
	return shimcompiler.Program_GetTypeChecker(program, context.Background())
}

// EmitResult wraps tsgo's EmitResult.
type EmitResult struct {
	EmittedFiles []string
	Diagnostics  []*ast.Diagnostic
	EmitSkipped  bool
}

// EmitProgram writes the compiled JavaScript output using tsgo's emitter.
// If writeFile is non-nil it replaces the default host.WriteFile, which is
// how generated code gets spliced into emitted files before they land on
// disk.
func EmitProgram(program *shimcompiler.Program, writeFile ...shimcompiler.WriteFile) *EmitResult {
	opts := shimcompiler.EmitOptions{}
	if len(writeFile) > 0 && writeFile[0] != nil {
		opts.WriteFile = writeFile[0]
	}
	result := program.Emit(context.Background(), opts)
	return &EmitResult{
		EmittedFiles: result.EmittedFiles,
		Diagnostics:  result.Diagnostics,
		EmitSkipped:  result.EmitSkipped,
	}
}

// GatherDiagnostics collects all diagnostics from a program using the same
// cascade tsgo itself uses. When noCheck=true only syntactic diagnostics
// are collected, avoiding checker creation for all files.
func GatherDiagnostics(program *shimcompiler.Program, noCheck bool) []*ast.Diagnostic {
	ctx := context.Background()

	if noCheck {
		return shimcompiler.Program_GetSyntacticDiagnostics(program, ctx, nil)
	}

	return shimcompiler.GetDiagnosticsOfAnyProgram(
		ctx,
		program,
		nil,
		false,
		func(ctx context.Context, file *ast.SourceFile) []*ast.Diagnostic {
			// Bind already ran via BindSourceFiles.
			return nil
		},
		func(ctx context.Context, file *ast.SourceFile) []*ast.Diagnostic {
			return shimcompiler.Program_GetSemanticDiagnostics(program, ctx, file)
		},
	)
}

// CreateIncrementalProgram wraps a compiler.Program with incremental state,
// reading prior state from .tsbuildinfo on disk. In watch mode, pass the
// previous incremental.Program as oldProgram instead of nil.
func CreateIncrementalProgram(
	program *shimcompiler.Program,
	oldProgram *shimincremental.Program,
	host shimcompiler.CompilerHost,
	parsedConfig *tsoptions.ParsedCommandLine,
) *shimincremental.Program {
	if oldProgram == nil {
		reader := shimincremental.NewBuildInfoReader(host)
		oldProgram = shimincremental.ReadBuildInfoProgram(parsedConfig, reader, host)
		// oldProgram may still be nil if no .tsbuildinfo exists.
	}
	incrHost := shimincremental.CreateHost(host)
	return shimincremental.NewProgram(program, oldProgram, incrHost, false)
}

// EmitIncrementalProgram emits only changed files through the incremental
// program and writes the updated .tsbuildinfo. The optional writeFile hook
// works as in EmitProgram.
func EmitIncrementalProgram(incrProgram *shimincremental.Program, writeFile ...shimcompiler.WriteFile) *EmitResult {
	opts := shimcompiler.EmitOptions{}
	if len(writeFile) > 0 && writeFile[0] != nil {
		opts.WriteFile = writeFile[0]
	}
	result := incrProgram.Emit(context.Background(), opts)
	return &EmitResult{
		EmittedFiles: result.EmittedFiles,
		Diagnostics:  result.Diagnostics,
		EmitSkipped:  result.EmitSkipped,
	}
}

// GetSourceFiles returns the program's source files, excluding declaration
// files.
func GetSourceFiles(program *shimcompiler.Program) []*ast.SourceFile {
	var files []*ast.SourceFile
	for _, f := range program.GetSourceFiles() {
		if !f.IsDeclarationFile {
			files = append(files, f)
		}
	}
	return files
}

func convertDiagnostics(tsdiags []*ast.Diagnostic) []Diagnostic {
	diags := make([]Diagnostic, len(tsdiags))
	for i, d := range tsdiags {
		var filePath string
		if d.File() != nil {
			filePath = d.File().FileName()
		}
		diags[i] = Diagnostic{
			FilePath: filePath,
			Message:  d.String(),
		}
	}
	return diags
}

// FormatDiagnostics formats diagnostics into human-readable strings.
func FormatDiagnostics(diags []Diagnostic) string {
	var result string
	for _, d := range diags {
		result += d.String() + "\n"
	}
	return result
}
