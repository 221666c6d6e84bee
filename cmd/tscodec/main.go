package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.0.1-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		// No subcommand, default to build
		return runBuild(os.Args[1:])
	}

	switch os.Args[1] {
	case "build":
		return runBuild(os.Args[2:])
	case "watch":
		return runWatch(os.Args[2:])
	case "dump":
		return runDump(os.Args[2:])
	case "--version", "-v":
		fmt.Println("tscodec", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		// A leading dash means flags for the default build command
		if strings.HasPrefix(os.Args[1], "-") {
			return runBuild(os.Args[1:])
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("tscodec - compile-time validators and binary codecs for TypeScript")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tscodec [flags]               Build project (default)")
	fmt.Println("  tscodec build [flags]         Build project")
	fmt.Println("  tscodec watch [flags]         Rebuild on source changes")
	fmt.Println("  tscodec dump [flags]          Dump analyzed marker types as JSON (debug)")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Build Flags:")
	fmt.Println("  --project, -p <path>   Path to tsconfig.json (default: tsconfig.json)")
	fmt.Println("  --config <path>        Path to tscodec.config.json")
	fmt.Println("  --strict               Treat transform warnings as errors")
	fmt.Println("  --quiet                Suppress transform warnings")
	fmt.Println("  --verbose              Log pipeline phases and timings")
	fmt.Println("  --no-cache             Ignore and rebuild the transform cache")
	fmt.Println("  --check                Run full type checking before emitting")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tscodec")
	fmt.Println("  tscodec build --project tsconfig.build.json")
	fmt.Println("  tscodec watch --verbose")
	fmt.Println("  tscodec dump > types.json")
	fmt.Println()
}
