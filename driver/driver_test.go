package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/assembler"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
)

const canonicalVertex = `shader vertex {
  input  vec3 inPosition;
  input  vec3 inColor;
  output vec3 fragColor;
  main {
    gl_Position = vec4(inPosition, 1.0);
    fragColor = inColor;
  }
}`

func optsWithFake() Options {
	opts := DefaultOptions()
	opts.Assembler = &assembler.Fake{}
	return opts
}

func TestCompileProducesGLSLAndSPIRV(t *testing.T) {
	result, err := Compile(context.Background(), canonicalVertex, ast.Vertex, optsWithFake())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GLSL == "" {
		t.Fatalf("expected non-empty GLSL")
	}
	if len(result.SPIRV) == 0 {
		t.Fatalf("expected non-empty SPIR-V words")
	}
	if result.Stats.TokenCount == 0 {
		t.Errorf("expected non-zero token count")
	}
	if result.Stats.OriginalStatementCount != 2 {
		t.Errorf("expected 2 statements, got %d", result.Stats.OriginalStatementCount)
	}
}

func TestCompileWithEmitGLSLSkipsAssembly(t *testing.T) {
	opts := optsWithFake()
	opts.EmitGLSL = true
	result, err := Compile(context.Background(), canonicalVertex, ast.Vertex, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SPIRV != nil {
		t.Errorf("expected nil SPIR-V when EmitGLSL is set, got %v", result.SPIRV)
	}
	if result.GLSL == "" {
		t.Errorf("expected GLSL to still be produced")
	}
}

func TestCompileLexErrorReportsLexingPhase(t *testing.T) {
	_, err := Compile(context.Background(), "shader vertex { main { x = $; } }", ast.Vertex, optsWithFake())
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T: %v", err, err)
	}
	if phaseErr.Phase != PhaseLexing {
		t.Errorf("expected lexing phase, got %s", phaseErr.Phase)
	}
}

func TestCompileParseErrorReportsParsingPhase(t *testing.T) {
	_, err := Compile(context.Background(), "shader vertex { main { x = ; } }", ast.Vertex, optsWithFake())
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T: %v", err, err)
	}
	if phaseErr.Phase != PhaseParsing {
		t.Errorf("expected parsing phase, got %s", phaseErr.Phase)
	}
}

func TestCompileCodegenErrorReportsCodegenPhase(t *testing.T) {
	_, err := Compile(context.Background(), canonicalVertex, ast.Fragment, optsWithFake())
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T: %v", err, err)
	}
	if phaseErr.Phase != PhaseCodegen {
		t.Errorf("expected codegen phase, got %s", phaseErr.Phase)
	}
}

func TestCompileAssemblyErrorReportsAssemblyPhase(t *testing.T) {
	opts := optsWithFake()
	opts.Assembler = &assembler.Fake{Err: &assembler.Error{Message: "boom"}}
	_, err := Compile(context.Background(), canonicalVertex, ast.Vertex, opts)
	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected *PhaseError, got %T: %v", err, err)
	}
	if phaseErr.Phase != PhaseAssembly {
		t.Errorf("expected assembly phase, got %s", phaseErr.Phase)
	}
}

func TestCompileWithOptimizationDisabledSkipsOptimizerStats(t *testing.T) {
	opts := optsWithFake()
	opts.Optimize = false
	src := "shader vertex { output float x; main { x = 2.0 + 3.0; } }"
	result, err := Compile(context.Background(), src, ast.Vertex, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.ConstantsFolded != 0 {
		t.Errorf("expected no folding when optimization disabled, got %d", result.Stats.ConstantsFolded)
	}
	if result.Stats.OptimizedStatementCount != result.Stats.OriginalStatementCount {
		t.Errorf("expected optimized count to mirror original when disabled")
	}
}

func TestCompileFileReadsAndInfersStageFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triangle.vert")
	if err := os.WriteFile(path, []byte(canonicalVertex), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	result, err := CompileFile(context.Background(), path, optsWithFake())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GLSL == "" {
		t.Errorf("expected GLSL output")
	}
}

func TestCompileFileRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.vert")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := CompileFile(context.Background(), path, optsWithFake())
	if err == nil {
		t.Fatalf("expected error for empty shader file")
	}
	var ioErr *assembler.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *assembler.IOError, got %T", err)
	}
}

func TestCompileFileRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")
	if err := os.WriteFile(path, []byte(canonicalVertex), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := CompileFile(context.Background(), path, optsWithFake())
	if err == nil {
		t.Fatalf("expected error for unrecognized extension")
	}
}

func TestIsValidStage(t *testing.T) {
	if !IsValidStage("vertex") || !IsValidStage("fragment") {
		t.Errorf("expected vertex and fragment to be valid stages")
	}
	if IsValidStage("geometry") {
		t.Errorf("expected geometry to be invalid")
	}
}

func TestParseStage(t *testing.T) {
	if s, err := ParseStage("vertex"); err != nil || s != ast.Vertex {
		t.Errorf("expected ast.Vertex, got %v, %v", s, err)
	}
	if _, err := ParseStage("compute"); err == nil {
		t.Errorf("expected error for unrecognized stage name")
	}
}
