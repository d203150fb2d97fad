package ast

import "testing"

func TestStageString(t *testing.T) {
	if Vertex.String() != "vertex" {
		t.Errorf("expected vertex, got %s", Vertex.String())
	}
	if Fragment.String() != "fragment" {
		t.Errorf("expected fragment, got %s", Fragment.String())
	}
}

func TestOpString(t *testing.T) {
	cases := map[Op]string{Add: "+", Sub: "-", Mul: "*", Div: "/"}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}

func TestOpStringPanicsOnInvalidOp(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for invalid Op")
		}
	}()
	_ = Op(99).String()
}

// Ownership: replacing a child field discards the previous subtree without
// affecting siblings.
func TestChildReplacementIsIndependent(t *testing.T) {
	left := &Literal{Text: "1.0"}
	right := &Literal{Text: "2.0"}
	bin := &BinaryOp{Op: Add, Left: left, Right: right}

	bin.Left = &Literal{Text: "3.0"}

	if right.Text != "2.0" {
		t.Fatalf("sibling mutated unexpectedly")
	}
	if lit, ok := bin.Left.(*Literal); !ok || lit.Text != "3.0" {
		t.Fatalf("replacement did not take effect")
	}
}

func TestShaderDeclHoldsOnlyVariableDeclsInInputsOutputs(t *testing.T) {
	decl := &ShaderDecl{
		Stage: Vertex,
		Inputs: []*VariableDecl{
			{Type: TypeVec3, Name: "inPosition"},
		},
		Outputs: []*VariableDecl{
			{Type: TypeVec3, Name: "fragColor"},
		},
		Body: []*Assignment{
			{Target: &Identifier{Name: "fragColor"}, Value: &Identifier{Name: "inPosition"}},
		},
	}
	if len(decl.Inputs) != 1 || decl.Inputs[0].Name != "inPosition" {
		t.Fatalf("unexpected inputs: %+v", decl.Inputs)
	}
	if len(decl.Body) != 1 {
		t.Fatalf("unexpected body: %+v", decl.Body)
	}
}
