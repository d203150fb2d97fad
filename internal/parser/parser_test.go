package parser

import (
	"testing"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	prog, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog := mustParse(t, "shader vertex { output float x; main { x = "+src+"; } }")
	return prog.Shaders[0].Body[0].Value
}

// Invariant 3: operator precedence.
func TestPrecedence(t *testing.T) {
	expr := parseExpr(t, "a + b * c")
	bin, ok := expr.(*ast.BinaryOp)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected '+' at root, got %#v", expr)
	}
	rightBin, ok := bin.Right.(*ast.BinaryOp)
	if !ok || rightBin.Op != ast.Mul {
		t.Fatalf("expected '*' under right child, got %#v", bin.Right)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	expr := parseExpr(t, "(a + b) * c")
	bin, ok := expr.(*ast.BinaryOp)
	if !ok || bin.Op != ast.Mul {
		t.Fatalf("expected '*' at root, got %#v", expr)
	}
	leftBin, ok := bin.Left.(*ast.BinaryOp)
	if !ok || leftBin.Op != ast.Add {
		t.Fatalf("expected '+' under left child, got %#v", bin.Left)
	}
}

// Invariant 4: left-associativity.
func TestLeftAssociativity(t *testing.T) {
	expr := parseExpr(t, "a - b - c")
	outer, ok := expr.(*ast.BinaryOp)
	if !ok || outer.Op != ast.Sub {
		t.Fatalf("expected '-' at root, got %#v", expr)
	}
	inner, ok := outer.Left.(*ast.BinaryOp)
	if !ok || inner.Op != ast.Sub {
		t.Fatalf("expected '-' as left child (left-associative), got %#v", outer.Left)
	}
	if _, ok := inner.Left.(*ast.Identifier); !ok {
		t.Fatalf("expected identifier at innermost left, got %#v", inner.Left)
	}
}

func TestMemberAccessAndFunctionCallDisambiguation(t *testing.T) {
	expr := parseExpr(t, "pos.xyz")
	member, ok := expr.(*ast.MemberAccess)
	if !ok || member.Member != "xyz" {
		t.Fatalf("expected member access, got %#v", expr)
	}

	expr2 := parseExpr(t, "vec4(a, b, c, 1.0)")
	call, ok := expr2.(*ast.FunctionCall)
	if !ok || call.Name != "vec4" || len(call.Args) != 4 {
		t.Fatalf("expected vec4(...) call with 4 args, got %#v", expr2)
	}
}

func TestTypeConstructorMustBeFollowedByParen(t *testing.T) {
	src := "shader vertex { output float x; main { x = vec4; } }"
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	_, err = Parse(toks)
	if err == nil {
		t.Fatalf("expected parse error for bare type constructor")
	}
}

func TestNonLValueTargetIsRejected(t *testing.T) {
	src := "shader vertex { output float x; main { 1.0 = x; } }"
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	_, err = Parse(toks)
	if err == nil {
		t.Fatalf("expected parse error for non-lvalue assignment target")
	}
}

func TestCanonicalVertexShaderParses(t *testing.T) {
	src := `shader vertex {
  input  vec3 inPosition;
  input  vec3 inColor;
  output vec3 fragColor;
  main {
    gl_Position = vec4(inPosition, 1.0);
    fragColor = inColor;
  }
}`
	prog := mustParse(t, src)
	if len(prog.Shaders) != 1 {
		t.Fatalf("expected 1 shader decl, got %d", len(prog.Shaders))
	}
	decl := prog.Shaders[0]
	if decl.Stage != ast.Vertex {
		t.Fatalf("expected vertex stage")
	}
	if len(decl.Inputs) != 2 || len(decl.Outputs) != 1 || len(decl.Body) != 2 {
		t.Fatalf("unexpected decl shape: %+v", decl)
	}
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	src := "shader vertex { output float x; main { x = 1.0 } }"
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	_, err = Parse(toks)
	var pe *ParseError
	if pe2, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	} else {
		pe = pe2
	}
	if pe.Message == "" {
		t.Fatalf("expected non-empty message")
	}
}

func TestTwoShaderStagesBothParse(t *testing.T) {
	src := `
shader vertex { output vec3 fragColor; main { fragColor = vec3(1.0, 0.0, 0.0); } }
shader fragment { input vec3 fragColor; output vec4 outColor; main { outColor = vec4(fragColor, 1.0); } }
`
	prog := mustParse(t, src)
	if len(prog.Shaders) != 2 {
		t.Fatalf("expected 2 shader decls, got %d", len(prog.Shaders))
	}
}
