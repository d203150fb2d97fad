// Package codegen renders an optimized shader DSL AST to GLSL 4.50 source
// text for a single requested stage.
package codegen

import (
	"fmt"
	"strings"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
)

// CodeGenError reports a code-generation failure: no matching shader
// declaration, or an AST node kind the generator does not know how to
// emit.
type CodeGenError struct {
	Message string
}

func (e *CodeGenError) Error() string {
	return e.Message
}

// Result carries the emitted GLSL text together with the location
// assignments handed out to inputs and outputs, in declaration order.
type Result struct {
	GLSL            string
	InputLocations  map[string]int
	OutputLocations map[string]int
}

// Generate selects the first ShaderDecl in prog matching stage and renders
// it to GLSL 4.50. Locations are assigned sequentially from 0, reset on
// every call.
func Generate(prog *ast.Program, stage ast.Stage) (*Result, error) {
	var target *ast.ShaderDecl
	for _, decl := range prog.Shaders {
		if decl.Stage == stage {
			target = decl
			break
		}
	}
	if target == nil {
		return nil, &CodeGenError{Message: fmt.Sprintf("No shader declaration found for type: %s", stage)}
	}

	var b strings.Builder
	b.WriteString("#version 450\n\n")

	inputLocs := make(map[string]int, len(target.Inputs))
	outputLocs := make(map[string]int, len(target.Outputs))

	writeInterfaceBlock(&b, target.Inputs, "in", inputLocs)
	writeInterfaceBlock(&b, target.Outputs, "out", outputLocs)

	b.WriteString("void main() {\n")
	for _, stmt := range target.Body {
		line, err := emitStatement(stmt)
		if err != nil {
			return nil, err
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	return &Result{GLSL: b.String(), InputLocations: inputLocs, OutputLocations: outputLocs}, nil
}

func writeInterfaceBlock(b *strings.Builder, decls []*ast.VariableDecl, qualifier string, locations map[string]int) {
	for i, decl := range decls {
		locations[decl.Name] = i
		fmt.Fprintf(b, "layout(location = %d) %s %s %s;\n", i, qualifier, mapType(decl.Type), decl.Name)
	}
	if len(decls) > 0 {
		b.WriteString("\n")
	}
}

// mapType passes DSL type spellings through unchanged; the DSL's type set
// equals the GLSL subset used here. Kept as a named seam in case the two
// ever diverge, matching the original implementation's mapType.
func mapType(t ast.Type) string {
	return string(t)
}

func emitStatement(stmt *ast.Assignment) (string, error) {
	target, err := emitExpr(stmt.Target)
	if err != nil {
		return "", err
	}
	value, err := emitExpr(stmt.Value)
	if err != nil {
		return "", err
	}
	return target + " = " + value + ";", nil
}

func emitExpr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.BinaryOp:
		left, err := emitExpr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := emitExpr(n.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + n.Op.String() + " " + right + ")", nil

	case *ast.Identifier:
		return n.Name, nil

	case *ast.Literal:
		return n.Text, nil

	case *ast.MemberAccess:
		obj, err := emitExpr(n.Object)
		if err != nil {
			return "", err
		}
		return obj + "." + n.Member, nil

	case *ast.FunctionCall:
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			s, err := emitExpr(arg)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")", nil

	default:
		return "", &CodeGenError{Message: fmt.Sprintf("Unsupported %T type in code generation", e)}
	}
}
