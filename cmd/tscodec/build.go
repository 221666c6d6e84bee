package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/core"
	"github.com/tscodec/tscodec/internal/analyzer"
	"github.com/tscodec/tscodec/internal/buildcache"
	"github.com/tscodec/tscodec/internal/codegen"
	"github.com/tscodec/tscodec/internal/compiler"
	"github.com/tscodec/tscodec/internal/config"
	"github.com/tscodec/tscodec/internal/detect"
	"github.com/tscodec/tscodec/internal/diagnostic"
	"github.com/tscodec/tscodec/internal/metadata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type buildOptions struct {
	configPath   string
	tsconfigPath string
	strict       bool
	quiet        bool
	verbose      bool
	noCache      bool
	check        bool
}

func parseBuildFlags(name string, args []string) (*buildOptions, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	opts := &buildOptions{}

	fs.StringVar(&opts.configPath, "config", "", "Path to tscodec config file (tscodec.config.json)")
	fs.StringVar(&opts.tsconfigPath, "project", "", "Path to tsconfig.json (or use -p)")
	fs.StringVar(&opts.tsconfigPath, "p", "", "Path to tsconfig.json (shorthand for --project)")
	fs.BoolVar(&opts.strict, "strict", false, "Treat transform warnings as errors")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress transform warnings")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log pipeline phases and timings")
	fs.BoolVar(&opts.noCache, "no-cache", false, "Ignore and rebuild the transform cache")
	fs.BoolVar(&opts.check, "check", false, "Run full type checking before emitting")

	fs.Usage = func() {
		fmt.Printf("Usage: tscodec %s [flags]\n\n", name)
		fmt.Println("Flags:")
		fs.PrintDefaults()
	}

	fs.Parse(args)
	return opts, fs
}

// newLogger builds the pipeline logger. Without --verbose only warnings and
// errors reach stderr.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runBuild(args []string) int {
	opts, _ := parseBuildFlags("build", args)
	log := newLogger(opts.verbose)
	defer log.Sync()
	return buildOnce(opts, log)
}

// buildOnce runs one full transform pipeline pass: parse tsconfig, create a
// program, scan for marker calls, analyze and generate, then emit with the
// splice hook. Shared between build and watch.
func buildOnce(opts *buildOptions, log *zap.Logger) int {
	buildStart := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}

	cfg, rawConfig, err := loadConfig(cwd, opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	tsconfigPath := opts.tsconfigPath
	if tsconfigPath == "" {
		tsconfigPath = cfg.Tsconfig
	}

	// Parse tsconfig with tsgo's native JSONC parser (comments, trailing
	// commas and extends chains included).
	parseStart := time.Now()
	tsFS := compiler.CreateDefaultFS()
	host := compiler.CreateDefaultHost(cwd, tsFS)

	parsedConfig, parseDiags, err := compiler.ParseTSConfig(tsFS, cwd, tsconfigPath, host, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(parseDiags) > 0 {
		fmt.Fprint(os.Stderr, compiler.FormatDiagnostics(parseDiags))
		return 1
	}
	log.Debug("parsed tsconfig",
		zap.String("path", tsconfigPath),
		zap.Duration("took", time.Since(parseStart)))

	programStart := time.Now()
	program, programDiags, err := compiler.CreateProgramFromConfig(true, parsedConfig, host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(programDiags) > 0 {
		fmt.Fprint(os.Stderr, compiler.FormatDiagnostics(programDiags))
		return 1
	}
	sources := compiler.GetSourceFiles(program)
	log.Debug("created program",
		zap.Int("sourceFiles", len(sources)),
		zap.Duration("took", time.Since(programStart)))

	checker, release := compiler.GetTypeChecker(program)
	if checker == nil {
		fmt.Fprintln(os.Stderr, "error: could not get type checker")
		return 1
	}
	defer release()

	if opts.check {
		checkStart := time.Now()
		tsDiags := compiler.GatherDiagnostics(program, false)
		for _, d := range tsDiags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		log.Debug("type-checked program",
			zap.Int("diagnostics", len(tsDiags)),
			zap.Duration("took", time.Since(checkStart)))
		if len(tsDiags) > 0 {
			fmt.Fprintf(os.Stderr, "build failed: %d type error(s)\n", len(tsDiags))
			return 1
		}
	}

	diags := diagnostic.NewCollector(opts.strict, opts.quiet)
	anlz := analyzer.New(checker)

	// Pass 1: collect brand validator registrations across all included
	// files. A registration in one file can serve brands used in another.
	scanStart := time.Now()
	registrations := make(map[string]codegen.BrandValidator)
	for _, sf := range sources {
		if !config.MatchesGlob(sf.FileName(), cfg.Transform.Include, cfg.Transform.Exclude) {
			continue
		}
		for brand, bv := range detect.ScanRegistrations(sf, cfg.MarkerModule, diags) {
			if _, dup := registrations[brand]; dup {
				diags.Warn(diagnostic.CategoryMarkerInvalid, sf.FileName(), 0,
					fmt.Sprintf("brand %q registered more than once; keeping the first registration", brand))
				continue
			}
			registrations[brand] = bv
		}
	}

	cachePath := buildcache.CachePath(parsedConfig.CompilerOptions().OutDir, filepath.Join(cwd, tsconfigPath))
	configHash := buildcache.ConfigHash(rawConfig, registrationDigests(registrations))
	var cache *buildcache.Cache
	if !opts.noCache {
		cache = buildcache.Load(cachePath)
	}
	newCache := buildcache.New(configHash)

	// Pass 2: extract marker calls and generate their replacements.
	generated := make(map[string][]detect.Generated)
	callCount := 0
	codecOpts := &codegen.CodecOptions{SkipDecodeDefaults: !cfg.ApplyDefaults()}
	for _, sf := range sources {
		file := sf.FileName()
		if !config.MatchesGlob(file, cfg.Transform.Include, cfg.Transform.Exclude) {
			continue
		}
		src := sf.Text()
		hash := buildcache.HashBytes([]byte(src))

		// A file whose previous scan found no markers and whose content is
		// unchanged cannot have grown markers.
		if cache.Valid(configHash, file, hash) && cache.Files[file].CallCount == 0 {
			newCache.Put(file, buildcache.Entry{SourceHash: hash})
			continue
		}
		if !detect.ContainsMarker(src) {
			newCache.Put(file, buildcache.Entry{SourceHash: hash})
			continue
		}

		calls := detect.Extract(sf, checker, cfg.MarkerModule, diags)
		for _, call := range calls {
			at := anlz.AnalyzeTypeNode(call.TypeArg)
			warnUnregisteredBrands(diags, file, call.Line, at, registrations)

			var code string
			switch call.Kind {
			case detect.CallCodec:
				code = codegen.GenerateCodec(at, codecOpts)
			case detect.CallValidator:
				code = codegen.GenerateValidator(at, &codegen.ValidatorContext{
					BrandValidators: registrations,
					CustomMessages:  call.Messages,
					CustomTail:      call.TailSource,
				})
			}
			generated[file] = append(generated[file], detect.Generated{Kind: call.Kind, Code: code})
		}
		callCount += len(calls)
		newCache.Put(file, buildcache.Entry{SourceHash: hash, CallCount: len(calls)})
	}
	log.Debug("scanned marker calls",
		zap.Int("files", len(generated)),
		zap.Int("calls", callCount),
		zap.Duration("took", time.Since(scanStart)))

	// Emit JavaScript, splicing generated code in through the write hook.
	emitStart := time.Now()
	copts := parsedConfig.CompilerOptions()
	rootDir := copts.RootDir
	if rootDir == "" {
		rootDir = inferRootDir(parsedConfig.FileNames())
	}
	spliceCtx := &detect.SpliceContext{
		Module:         cfg.MarkerModule,
		Generated:      generated,
		OutputToSource: detect.BuildOutputToSource(sources, rootDir, copts.OutDir),
	}
	var emitResult *compiler.EmitResult
	if copts.Incremental == core.TSTrue {
		incr := compiler.CreateIncrementalProgram(program, nil, host, parsedConfig)
		emitResult = compiler.EmitIncrementalProgram(incr, spliceCtx.MakeWriteFile())
	} else {
		emitResult = compiler.EmitProgram(program, spliceCtx.MakeWriteFile())
	}
	for _, d := range emitResult.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if emitResult.EmitSkipped {
		fmt.Fprintln(os.Stderr, "error: emit skipped")
		return 1
	}
	log.Debug("emitted output",
		zap.Int("files", len(emitResult.EmittedFiles)),
		zap.Duration("took", time.Since(emitStart)))

	if out := diags.FormatAll(); out != "" {
		fmt.Fprint(os.Stderr, out)
	}
	if diags.HasErrors() {
		fmt.Fprintf(os.Stderr, "build failed: %s\n", diags.Summary())
		return 1
	}

	if !opts.noCache {
		if err := buildcache.Save(cachePath, newCache); err != nil {
			log.Warn("could not save transform cache", zap.Error(err))
		}
	}

	log.Info("build finished",
		zap.Int("markerCalls", callCount),
		zap.String("diagnostics", diags.Summary()),
		zap.Duration("total", time.Since(buildStart)))
	return 0
}

// loadConfig resolves and loads the tscodec config, returning the parsed
// config plus the raw bytes that feed the cache's config hash. rawConfig is
// nil when running on pure defaults.
func loadConfig(cwd, configPath string) (*config.Config, []byte, error) {
	if configPath == "" {
		defaultPath := filepath.Join(cwd, config.DefaultFileName)
		if _, err := os.Stat(defaultPath); err != nil {
			cfg := config.DefaultConfig()
			return &cfg, nil, nil
		}
		configPath = defaultPath
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, raw, nil
}

// registrationDigests flattens brand registrations for the cache hash.
func registrationDigests(regs map[string]codegen.BrandValidator) map[string]string {
	if len(regs) == 0 {
		return nil
	}
	out := make(map[string]string, len(regs))
	for brand, bv := range regs {
		d := bv.Param + "=>" + bv.Body
		if bv.Async {
			d = "async " + d
		}
		out[brand] = d
	}
	return out
}

// warnUnregisteredBrands reports brands used by a type that have neither a
// built-in meaning nor a validator.set registration. Generation proceeds;
// the brand's base type is still checked.
func warnUnregisteredBrands(diags *diagnostic.Collector, file string, line int, at *metadata.AnalyzedType, regs map[string]codegen.BrandValidator) {
	seen := make(map[string]bool)
	var visit func(p *metadata.AnalyzedProperty)
	visit = func(p *metadata.AnalyzedProperty) {
		if p == nil {
			return
		}
		switch p.Brand {
		case "", metadata.BrandInteger, metadata.BrandFloat, metadata.BrandTemplate:
		default:
			if _, ok := regs[p.Brand]; !ok && !seen[p.Brand] {
				seen[p.Brand] = true
				diags.WarnWithHint(diagnostic.CategoryBrandUnregistered, file, line,
					fmt.Sprintf("no validator registered for brand %q", p.Brand),
					fmt.Sprintf("register one with validator.set(%q, (value) => { ... })", p.Brand))
			}
		}
		visit(p.ItemType)
		visit(p.IndexType)
		for _, c := range p.Properties {
			visit(c)
		}
		for _, c := range p.TupleTypes {
			visit(c)
		}
		for _, c := range p.UnionTypes {
			visit(c)
		}
	}
	for _, p := range at.Properties {
		visit(p)
	}
}

// inferRootDir computes the longest common directory prefix of the source
// file list, mirroring what tsc does when rootDir is unset.
func inferRootDir(fileNames []string) string {
	var common []string
	for _, f := range fileNames {
		parts := strings.Split(filepath.ToSlash(filepath.Dir(f)), "/")
		if common == nil {
			common = parts
			continue
		}
		n := len(common)
		if len(parts) < n {
			n = len(parts)
		}
		i := 0
		for i < n && common[i] == parts[i] {
			i++
		}
		common = common[:i]
	}
	if len(common) == 0 {
		return ""
	}
	return strings.Join(common, "/")
}
