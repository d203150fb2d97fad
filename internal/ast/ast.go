// Package ast defines the shader DSL's abstract syntax tree.
//
// Every node kind is a small struct; ownership of children is exclusive,
// so replacing a subtree during optimization simply assigns a new value
// to the owning field and lets the old value be garbage collected. There
// are no back-pointers and no sharing between nodes.
package ast

// Program is the root node: an ordered list of shader declarations.
type Program struct {
	Shaders []*ShaderDecl
}

// Stage identifies which pipeline slot a ShaderDecl targets.
type Stage uint8

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	if s == Vertex {
		return "vertex"
	}
	return "fragment"
}

// ShaderDecl is a top-level `shader vertex { ... }` or `shader fragment { ... }`
// declaration.
type ShaderDecl struct {
	Stage   Stage
	Inputs  []*VariableDecl
	Outputs []*VariableDecl
	Body    []*Assignment
}

// VariableDecl declares one input or output slot: a GLSL type name paired
// with an identifier. It only ever appears inside a ShaderDecl's Inputs or
// Outputs lists.
type VariableDecl struct {
	Type Type
	Name string
}

// Type is one of the DSL's fixed GLSL-compatible type spellings.
type Type string

const (
	TypeVec2  Type = "vec2"
	TypeVec3  Type = "vec3"
	TypeVec4  Type = "vec4"
	TypeMat4  Type = "mat4"
	TypeFloat Type = "float"
	TypeInt   Type = "int"
)

// Stmt is the sealed interface implemented by every statement kind. The
// grammar currently has exactly one: Assignment.
type Stmt interface {
	isStmt()
}

// Assignment is `<target> = <value>;`. Target is restricted to an
// Identifier or a MemberAccess based on an Identifier (§4.2 open question:
// enforced by the parser, not merely documented here).
type Assignment struct {
	Target Expr
	Value  Expr
}

func (*Assignment) isStmt() {}

// Expr is the sealed interface implemented by every expression kind.
type Expr interface {
	isExpr()
}

// Op is one of the four arithmetic binary operators.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div
)

func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		panic("ast: invalid Op")
	}
}

// BinaryOp is a two-operand arithmetic expression.
type BinaryOp struct {
	Op          Op
	Left, Right Expr
}

func (*BinaryOp) isExpr() {}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
}

func (*Identifier) isExpr() {}

// Literal is a numeric constant, stored as the text used to render it —
// either the original lexeme or a re-rendering produced by the optimizer.
type Literal struct {
	Text string
}

func (*Literal) isExpr() {}

// MemberAccess is `<object>.<member>` (e.g. a swizzle). The grammar only
// ever nests a plain Identifier as Object; chained access is not produced
// by the parser.
type MemberAccess struct {
	Object Expr
	Member string
}

func (*MemberAccess) isExpr() {}

// FunctionCall is a free-function call or a type constructor invocation
// (e.g. `vec4(...)`).
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*FunctionCall) isExpr() {}
