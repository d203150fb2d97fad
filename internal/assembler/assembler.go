// Package assembler invokes the external glslangValidator binary to turn
// generated GLSL text into SPIR-V words. It is the one place in the
// compiler that talks to the filesystem and a subprocess; everything
// upstream of it is pure.
package assembler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
)

// spirvMagic is the little-endian SPIR-V magic number every valid module
// begins with.
const spirvMagic uint32 = 0x07230203

// tempFileCounter is a process-lifetime monotonic counter used to make
// temporary file names unique across concurrent compilations sharing one
// process. It is the only mutable state shared across Assembler instances.
var tempFileCounter int64

// Error reports a failure to produce valid SPIR-V from GLSL: either the
// external assembler exited non-zero, or its output was malformed. It
// carries enough context (captured output, the GLSL that was fed in) to
// let a caller reproduce the failure outside the compiler.
type Error struct {
	Message string
	Output  string // captured stdout+stderr from the assembler process
	GLSL    string // the GLSL source that was submitted
}

func (e *Error) Error() string {
	return e.Message
}

// IOError reports a filesystem failure that has nothing to do with
// glslangValidator's own diagnostics: a shader file that could not be
// opened, an empty shader file, or a temp file that could not be written
// or read back around the assembler subprocess call.
type IOError struct {
	Path    string
	Message string
	Err     error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Assembler turns GLSL source for a single stage into SPIR-V words.
type Assembler interface {
	Assemble(glsl string, stage ast.Stage) ([]uint32, error)
}

// GlslangValidator shells out to the `glslangValidator` binary on PATH,
// matching the "-V <input> -o <output>" invocation contract (§6.4).
type GlslangValidator struct {
	// Bin overrides the binary name/path. Defaults to "glslangValidator".
	Bin string
}

func (g *GlslangValidator) bin() string {
	if g.Bin != "" {
		return g.Bin
	}
	return "glslangValidator"
}

func stageExtension(stage ast.Stage) string {
	if stage == ast.Vertex {
		return "vert"
	}
	return "frag"
}

func nextTempPath(extension string) string {
	n := atomic.AddInt64(&tempFileCounter, 1)
	return fmt.Sprintf("%s/shader_%d_%d.%s", os.TempDir(), os.Getpid(), n, extension)
}

// Assemble writes glsl to a fresh temp file, invokes glslangValidator, and
// parses the resulting SPIR-V file into a little-endian word vector. Both
// temp files are removed on every exit path.
func (g *GlslangValidator) Assemble(glsl string, stage ast.Stage) ([]uint32, error) {
	inputPath := nextTempPath(stageExtension(stage))
	outputPath := nextTempPath("spv")
	defer os.Remove(inputPath)
	defer os.Remove(outputPath)

	if err := os.WriteFile(inputPath, []byte(glsl), 0o600); err != nil {
		return nil, &IOError{Path: inputPath, Message: "failed to create temporary GLSL file", Err: err}
	}

	cmd := exec.Command(g.bin(), "-V", inputPath, "-o", outputPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("glslangValidator failed: %v", err),
			Output:  out.String(),
			GLSL:    glsl,
		}
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &IOError{Path: outputPath, Message: "SPIR-V output file was not created", Err: err}
	}

	return parseSPIRV(data, out.String(), glsl)
}

// Fake is an in-memory Assembler for tests that should not depend on a real
// glslangValidator binary being on PATH. Words defaults to a minimal valid
// SPIR-V module (just the magic number) when nil.
type Fake struct {
	Words []uint32
	Err   error
}

func (f *Fake) Assemble(glsl string, stage ast.Stage) ([]uint32, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Words != nil {
		return f.Words, nil
	}
	return []uint32{spirvMagic}, nil
}

func parseSPIRV(data []byte, output, glsl string) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, &Error{
			Message: "invalid SPIR-V file: size is not a multiple of 4 bytes",
			Output:  output,
			GLSL:    glsl,
		}
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}

	if len(words) == 0 || words[0] != spirvMagic {
		return nil, &Error{
			Message: "invalid SPIR-V file: incorrect magic number",
			Output:  output,
			GLSL:    glsl,
		}
	}

	return words, nil
}
