// Package driver orchestrates the lexer, parser, optimizer, code generator
// and assembler into a single compile operation, and reports per-phase
// timing and AST statistics for -stats/-verbose output.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/assembler"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/codegen"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/lexer"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/optimizer"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/parser"
)

// Phase names a pipeline stage, used to tag PhaseError and log records.
type Phase string

const (
	PhaseLexing      Phase = "lexing"
	PhaseParsing     Phase = "parsing"
	PhaseOptimizing  Phase = "optimization"
	PhaseCodegen     Phase = "codegen"
	PhaseAssembly    Phase = "assembly"
)

// PhaseError associates an underlying error with the pipeline phase that
// produced it, so a caller can react to ("did lexing fail, or codegen?")
// without string-matching the message.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Options controls a single Compile call.
type Options struct {
	// Optimize runs the optimizer before code generation.
	Optimize bool
	// Verbose emits one slog record per phase transition.
	Verbose bool
	// Stats requests a statistics summary. Compile always fills
	// Result.Stats; this only controls whether the driver logs a
	// human-readable summary at the end of a verbose run.
	Stats bool
	// EmitGLSL stops after code generation, skipping the external
	// assembler. Result.SPIRV is left nil.
	EmitGLSL bool
	// Assembler overrides the SPIR-V producer. Defaults to
	// &assembler.GlslangValidator{} when nil.
	Assembler assembler.Assembler
	// Logger overrides the destination for verbose phase logs. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the driver defaults: optimization on, everything
// else off.
func DefaultOptions() Options {
	return Options{Optimize: true}
}

// Stats reports timing and size information for one Compile call, mirroring
// the counters a production shader compiler exposes via --stats.
type Stats struct {
	TokenCount              int     `json:"token_count"`
	ASTNodeCount            int     `json:"ast_node_count"`
	OriginalStatementCount  int     `json:"original_statement_count"`
	OptimizedStatementCount int     `json:"optimized_statement_count"`

	ConstantsFolded          int `json:"constants_folded"`
	AlgebraicSimplifications int `json:"algebraic_simplifications"`
	DeadCodeRemoved          int `json:"dead_code_removed"`
	OptimizationPasses       int `json:"optimization_passes"`

	SPIRVSizeBytes      int `json:"spirv_size_bytes"`
	SPIRVInstructionCount int `json:"spirv_instruction_count"`

	LexingTimeMs      float64 `json:"lexing_time_ms"`
	ParsingTimeMs     float64 `json:"parsing_time_ms"`
	OptimizationTimeMs float64 `json:"optimization_time_ms"`
	CodegenTimeMs     float64 `json:"codegen_time_ms"`
	AssemblyTimeMs    float64 `json:"assembly_time_ms"`
	TotalTimeMs       float64 `json:"total_time_ms"`
}

// Result carries everything produced by one Compile call.
type Result struct {
	GLSL  string
	SPIRV []uint32
	Stats Stats
}

// IsValidStage reports whether name is a recognized shader stage name.
func IsValidStage(name string) bool {
	return name == "vertex" || name == "fragment"
}

// ParseStage converts a stage name ("vertex"/"fragment") to an ast.Stage.
func ParseStage(name string) (ast.Stage, error) {
	switch name {
	case "vertex":
		return ast.Vertex, nil
	case "fragment":
		return ast.Fragment, nil
	default:
		return 0, fmt.Errorf("invalid shader type: %q, must be 'vertex' or 'fragment'", name)
	}
}

// StageFromExtension infers a shader stage from a file extension: ".vert"
// or ".frag" (with or without the leading dot).
func StageFromExtension(path string) (ast.Stage, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "vert":
		return ast.Vertex, nil
	case "frag":
		return ast.Fragment, nil
	default:
		return 0, fmt.Errorf("cannot infer shader type from extension %q of %q", ext, path)
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) assemblerImpl() assembler.Assembler {
	if o.Assembler != nil {
		return o.Assembler
	}
	return &assembler.GlslangValidator{}
}

func (o Options) logPhase(msg string, args ...any) {
	if o.Verbose {
		o.logger().Info(msg, args...)
	}
}

// Compile runs source through lexing, parsing, optional optimization, code
// generation and (unless EmitGLSL is set) SPIR-V assembly. On failure the
// returned error is always a *PhaseError identifying which stage failed.
func Compile(ctx context.Context, source string, stage ast.Stage, opts Options) (*Result, error) {
	totalStart := time.Now()
	var stats Stats

	opts.logPhase("starting lexical analysis")
	lexStart := time.Now()
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLexing, Err: err}
	}
	stats.LexingTimeMs = elapsedMs(lexStart)
	stats.TokenCount = len(tokens)
	opts.logPhase("lexing complete", "tokens", stats.TokenCount)

	opts.logPhase("starting syntax analysis")
	parseStart := time.Now()
	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseParsing, Err: err}
	}
	stats.ParsingTimeMs = elapsedMs(parseStart)
	stats.ASTNodeCount = countASTNodes(prog)
	stats.OriginalStatementCount = countStatements(prog)
	opts.logPhase("parsing complete", "ast_nodes", stats.ASTNodeCount, "statements", stats.OriginalStatementCount)

	if opts.Optimize {
		opts.logPhase("starting optimization passes")
		optStart := time.Now()
		optStats := optimizer.Optimize(prog)
		stats.OptimizationTimeMs = elapsedMs(optStart)
		stats.ConstantsFolded = optStats.ConstantsFolded
		stats.AlgebraicSimplifications = optStats.AlgebraicSimplifications
		stats.DeadCodeRemoved = optStats.DeadCodeRemoved
		stats.OptimizationPasses = optStats.TotalPasses
		stats.OptimizedStatementCount = countStatements(prog)
		opts.logPhase("optimization complete",
			"passes", stats.OptimizationPasses,
			"constants_folded", stats.ConstantsFolded,
			"algebraic_simplifications", stats.AlgebraicSimplifications,
			"dead_code_removed", stats.DeadCodeRemoved)
	} else {
		opts.logPhase("optimization disabled, skipping")
		stats.OptimizedStatementCount = stats.OriginalStatementCount
	}

	opts.logPhase("starting code generation")
	codegenStart := time.Now()
	generated, err := codegen.Generate(prog, stage)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseCodegen, Err: err}
	}
	stats.CodegenTimeMs = elapsedMs(codegenStart)
	opts.logPhase("code generation complete", "glsl_bytes", len(generated.GLSL))

	result := &Result{GLSL: generated.GLSL}

	if !opts.EmitGLSL {
		opts.logPhase("starting SPIR-V assembly")
		asmStart := time.Now()
		words, err := opts.assemblerImpl().Assemble(generated.GLSL, stage)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseAssembly, Err: err}
		}
		stats.AssemblyTimeMs = elapsedMs(asmStart)
		stats.SPIRVInstructionCount = len(words)
		stats.SPIRVSizeBytes = len(words) * 4
		result.SPIRV = words
		opts.logPhase("SPIR-V assembly complete", "words", len(words), "bytes", stats.SPIRVSizeBytes)
	}

	stats.TotalTimeMs = elapsedMs(totalStart)
	result.Stats = stats

	if opts.Verbose && opts.Stats {
		opts.logger().Info("compilation summary",
			"total_time_ms", stats.TotalTimeMs,
			"lexing_time_ms", stats.LexingTimeMs,
			"parsing_time_ms", stats.ParsingTimeMs,
			"optimization_time_ms", stats.OptimizationTimeMs,
			"codegen_time_ms", stats.CodegenTimeMs,
			"assembly_time_ms", stats.AssemblyTimeMs,
			"statements", fmt.Sprintf("%d -> %d", stats.OriginalStatementCount, stats.OptimizedStatementCount))
	}

	_ = ctx // reserved: Assemble does not yet take a context; kept for call-site symmetry with other blocking operations.
	return result, nil
}

// CompileFile reads path, infers the shader stage from its extension
// (.vert/.frag), and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts.logPhase("loading shader from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLexing, Err: &assembler.IOError{Path: path, Message: "failed to open shader file", Err: err}}
	}
	if len(data) == 0 {
		return nil, &PhaseError{Phase: PhaseLexing, Err: &assembler.IOError{Path: path, Message: "shader file is empty"}}
	}

	stage, err := StageFromExtension(path)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLexing, Err: err}
	}

	opts.logPhase("file loaded", "bytes", len(data))
	return Compile(ctx, string(data), stage, opts)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func countASTNodes(prog *ast.Program) int {
	count := 1 // the program node itself
	for _, shader := range prog.Shaders {
		count++
		for _, in := range shader.Inputs {
			count += 1 + countVariableDeclNodes(in)
		}
		for _, out := range shader.Outputs {
			count += 1 + countVariableDeclNodes(out)
		}
		for _, stmt := range shader.Body {
			count += countStmtNodes(stmt)
		}
	}
	return count
}

func countVariableDeclNodes(*ast.VariableDecl) int {
	return 0 // a VariableDecl has no child expression nodes to recurse into
}

func countStmtNodes(stmt *ast.Assignment) int {
	return 1 + countExprNodes(stmt.Target) + countExprNodes(stmt.Value)
}

func countExprNodes(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.BinaryOp:
		return 1 + countExprNodes(n.Left) + countExprNodes(n.Right)
	case *ast.MemberAccess:
		return 1 + countExprNodes(n.Object)
	case *ast.FunctionCall:
		count := 1
		for _, arg := range n.Args {
			count += countExprNodes(arg)
		}
		return count
	default:
		return 1
	}
}

func countStatements(prog *ast.Program) int {
	count := 0
	for _, shader := range prog.Shaders {
		count += len(shader.Body)
	}
	return count
}
