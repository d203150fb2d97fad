// Package shaderc provides the public API for compiling the shader DSL to
// GLSL and SPIR-V.
//
// This package is intended for programmatic use of the compiler. For CLI
// usage, see cmd/shaderc.
package shaderc

import (
	"context"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/driver"
)

// CompileOptions controls compilation behavior.
type CompileOptions struct {
	// Stage selects which shader declaration to compile: "vertex" or
	// "fragment".
	Stage string

	// Optimize runs constant folding, algebraic simplification and dead
	// code elimination before code generation. Defaults to true via
	// Compile; CompileWithOptions uses the value as given.
	Optimize bool

	// EmitGLSLOnly stops after code generation and skips invoking the
	// external SPIR-V assembler. Result.SPIRV will be empty.
	EmitGLSLOnly bool
}

// CompileResult contains the compilation output.
type CompileResult struct {
	// GLSL is the generated GLSL 4.50 source.
	GLSL string

	// SPIRV is the assembled SPIR-V module as little-endian words. Empty
	// when EmitGLSLOnly was requested.
	SPIRV []uint32

	// Error is set if compilation failed; GLSL and SPIRV are then empty.
	Error string

	// Stats reports optimizer and timing counters for the compile.
	Stats driver.Stats
}

// Compile compiles source for the given stage ("vertex" or "fragment")
// with optimization enabled and full SPIR-V assembly.
func Compile(source, stage string) CompileResult {
	return CompileWithOptions(source, CompileOptions{Stage: stage, Optimize: true})
}

// CompileWithOptions compiles source with custom options.
func CompileWithOptions(source string, opts CompileOptions) CompileResult {
	if !driver.IsValidStage(opts.Stage) {
		return CompileResult{Error: "invalid shader type: must be 'vertex' or 'fragment'"}
	}
	astStage, err := driver.ParseStage(opts.Stage)
	if err != nil {
		return CompileResult{Error: err.Error()}
	}

	result, err := driver.Compile(context.Background(), source, astStage, driver.Options{
		Optimize: opts.Optimize,
		EmitGLSL: opts.EmitGLSLOnly,
	})
	if err != nil {
		return CompileResult{Error: err.Error()}
	}

	return CompileResult{GLSL: result.GLSL, SPIRV: result.SPIRV, Stats: result.Stats}
}

// CompileGLSLOnly compiles source and returns only the generated GLSL,
// skipping SPIR-V assembly. Useful for callers that only need to inspect
// or further process the GLSL text.
func CompileGLSLOnly(source, stage string) CompileResult {
	return CompileWithOptions(source, CompileOptions{Stage: stage, Optimize: true, EmitGLSLOnly: true})
}
