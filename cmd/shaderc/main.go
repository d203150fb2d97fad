// Command shaderc compiles the shader DSL to SPIR-V via glslangValidator.
//
// Usage:
//
//	shaderc <input.dsl> -o <output.spv> -t <vertex|fragment> [options]
//
// Options:
//
//	-o <file>         Output SPIR-V file
//	-t <type>         Shader type: 'vertex' or 'fragment' (required)
//	--no-opt          Disable optimization passes
//	--stats           Show detailed compilation statistics
//	--verbose         Enable verbose compilation logging
//	--glsl            Print generated GLSL to stdout instead of assembling
//	--config <file>   Use a specific config file
//	--no-config       Ignore config files
//	--version         Print version and exit
//	--help, -h        Show this help message
//
// Config file:
//
//	shaderc looks for shaderc.json or .shadercrc in the current directory
//	and parent directories. Config file options are overridden by CLI
//	flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/driver"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/config"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/lexer"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/parser"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/sourcemap"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outputFile  string
		shaderType  string
		noOpt       bool
		showStats   bool
		verbose     bool
		showGLSL    bool
		configFile  string
		noConfig    bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&outputFile, "o", "", "Output SPIR-V `file`")
	flag.StringVar(&shaderType, "t", "", "Shader `type`: vertex or fragment")
	flag.BoolVar(&noOpt, "no-opt", false, "Disable optimization passes")
	flag.BoolVar(&showStats, "stats", false, "Show detailed compilation statistics")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose compilation logging")
	flag.BoolVar(&showGLSL, "glsl", false, "Print generated GLSL to stdout instead of assembling")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "shaderc - Vulkan Shader DSL Compiler v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: shaderc <input.dsl> -o <output.spv> -t <vertex|fragment> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for shaderc.json or .shadercrc in current and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  shaderc shader.vert.dsl -o shader.vert.spv -t vertex\n")
		fmt.Fprintf(os.Stderr, "  shaderc shader.frag.dsl -o shader.frag.spv -t fragment --no-opt\n")
		fmt.Fprintf(os.Stderr, "  shaderc shader.vert.dsl -o shader.vert.spv -t vertex --stats --verbose\n")
	}

	// flag stops at the first non-flag argument, so parse again after each
	// positional argument to accept flags that follow the input file.
	var positional []string
	args := os.Args[1:]
	for {
		if err := flag.CommandLine.Parse(args); err != nil {
			return err
		}
		args = flag.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if showHelp {
		flag.Usage()
		return nil
	}
	if showVersion {
		fmt.Printf("shaderc v%s (%s)\n", version, commit)
		return nil
	}

	if len(positional) < 1 {
		flag.Usage()
		return fmt.Errorf("no input file specified")
	}
	inputFile := positional[0]

	if shaderType == "" {
		flag.Usage()
		return fmt.Errorf("shader type required (-t vertex|fragment)")
	}
	astStage, err := driver.ParseStage(shaderType)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if !noConfig {
		var err error
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("loading config file %s: %w", configFile, err)
			}
		} else {
			startDir, _ := os.Getwd()
			cfg, _, err = config.Load(startDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		}
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	merge := config.MergeOptions{}
	if explicit["no-opt"] {
		optimize := !noOpt
		merge.Optimize = &optimize
	}
	if explicit["verbose"] {
		merge.Verbose = &verbose
	}
	if explicit["stats"] {
		merge.Stats = &showStats
	}
	if explicit["glsl"] {
		merge.EmitGLSL = &showGLSL
	}
	opts := cfg.Merge(merge)

	if opts.Verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	fmt.Println("=== Vulkan Shader Compiler ===")
	fmt.Printf("Input:  %s\n", inputFile)
	fmt.Printf("Type:   %s\n", shaderType)
	fmt.Printf("Optimization: %s\n", enabledDisabled(opts.Optimize))
	fmt.Println("==============================")
	fmt.Println("Compiling...")

	source, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := driver.Compile(context.Background(), string(source), astStage, opts)
	if err != nil {
		printSourceExcerpt(string(source), err)
		return err
	}

	if opts.EmitGLSL {
		fmt.Println(result.GLSL)
		return nil
	}

	if outputFile == "" {
		return fmt.Errorf("no output file specified (use -o)")
	}
	if err := writeSPIRV(outputFile, result.SPIRV); err != nil {
		return err
	}

	fmt.Println("\n=== Compilation Successful ===")
	if opts.Stats {
		printStats(result)
	}
	return nil
}

func writeSPIRV(path string, words []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4+0] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func printStats(result *driver.Result) {
	s := result.Stats
	fmt.Println("\n=== Compilation Statistics ===")
	fmt.Printf("Total time: %.3f ms\n", s.TotalTimeMs)
	fmt.Printf("  Lexing: %.3f ms\n", s.LexingTimeMs)
	fmt.Printf("  Parsing: %.3f ms\n", s.ParsingTimeMs)
	fmt.Printf("  Optimization: %.3f ms\n", s.OptimizationTimeMs)
	fmt.Printf("  Code generation: %.3f ms\n", s.CodegenTimeMs)
	fmt.Printf("  Assembly: %.3f ms\n", s.AssemblyTimeMs)
	fmt.Printf("Tokens: %d\n", s.TokenCount)
	fmt.Printf("AST nodes: %d\n", s.ASTNodeCount)
	fmt.Printf("Statements: %d -> %d\n", s.OriginalStatementCount, s.OptimizedStatementCount)
	fmt.Printf("Constants folded: %d\n", s.ConstantsFolded)
	fmt.Printf("Algebraic simplifications: %d\n", s.AlgebraicSimplifications)
	fmt.Printf("Dead code eliminated: %d\n", s.DeadCodeRemoved)
	fmt.Printf("SPIR-V size: %d bytes (%d words)\n", s.SPIRVSizeBytes, s.SPIRVInstructionCount)
	fmt.Println("===============================")
}

// printSourceExcerpt prints the offending source line and a caret under the
// reported column when err is a lexer or parser failure, so the terminal
// shows more than a bare "line:column: message".
func printSourceExcerpt(source string, err error) {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		idx := sourcemap.NewLineIndex(source)
		fmt.Fprintln(os.Stderr, sourcemap.Excerpt(idx, lexErr.Line, lexErr.Column))
		return
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		idx := sourcemap.NewLineIndex(source)
		fmt.Fprintln(os.Stderr, sourcemap.Excerpt(idx, parseErr.Line, parseErr.Column))
	}
}

func enabledDisabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
