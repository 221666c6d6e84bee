package main

import (
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tscodec/tscodec/internal/analyzer"
	"github.com/tscodec/tscodec/internal/compiler"
	"github.com/tscodec/tscodec/internal/config"
	"github.com/tscodec/tscodec/internal/detect"
	"github.com/tscodec/tscodec/internal/diagnostic"
	"github.com/tscodec/tscodec/internal/metadata"
)

// typeDump is the JSON output structure of the dump command.
type typeDump struct {
	Files []fileDump `json:"files"`
}

type fileDump struct {
	FileName string     `json:"fileName"`
	Calls    []callDump `json:"calls"`
}

type callDump struct {
	Kind     string                 `json:"kind"`
	Line     int                    `json:"line"`
	Type     *metadata.AnalyzedType `json:"type"`
	Messages map[string]string      `json:"messages,omitempty"`
}

// runDump analyzes every marker call in the project and prints the resolved
// type trees as JSON to stdout, without emitting anything.
func runDump(args []string) int {
	opts, _ := parseBuildFlags("dump", args)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}
	cfg, _, err := loadConfig(cwd, opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	tsconfigPath := opts.tsconfigPath
	if tsconfigPath == "" {
		tsconfigPath = cfg.Tsconfig
	}

	tsFS := compiler.CreateDefaultFS()
	host := compiler.CreateDefaultHost(cwd, tsFS)
	result, diagsList, err := compiler.CreateProgram(true, tsFS, cwd, tsconfigPath, host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(diagsList) > 0 {
		fmt.Fprint(os.Stderr, compiler.FormatDiagnostics(diagsList))
		return 1
	}

	checker, release := compiler.GetTypeChecker(result.Program)
	if checker == nil {
		fmt.Fprintln(os.Stderr, "error: could not get type checker")
		return 1
	}
	defer release()

	anlz := analyzer.New(checker)
	diags := diagnostic.NewCollector(false, opts.quiet)

	var files []fileDump
	for _, sf := range compiler.GetSourceFiles(result.Program) {
		if !config.MatchesGlob(sf.FileName(), cfg.Transform.Include, cfg.Transform.Exclude) {
			continue
		}
		if !detect.ContainsMarker(sf.Text()) {
			continue
		}
		var calls []callDump
		for _, call := range detect.Extract(sf, checker, cfg.MarkerModule, diags) {
			calls = append(calls, callDump{
				Kind:     call.Kind.String(),
				Line:     call.Line,
				Type:     anlz.AnalyzeTypeNode(call.TypeArg),
				Messages: call.Messages,
			})
		}
		if len(calls) > 0 {
			files = append(files, fileDump{FileName: sf.FileName(), Calls: calls})
		}
	}

	if out := diags.FormatAll(); out != "" {
		fmt.Fprint(os.Stderr, out)
	}

	if err := json.MarshalWrite(os.Stdout, typeDump{Files: files}, jsontext.WithIndent("  ")); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
		return 1
	}
	fmt.Println()
	return 0
}
