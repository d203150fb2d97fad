// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

// Kind identifies the category of a Token. The set is closed: every shader
// source character either belongs to a Kind here or the lexer fails.
type Kind uint8

const (
	Error Kind = iota
	EOF

	// Keywords
	Shader
	Vertex
	Fragment
	Input
	Output
	Uniform
	Main

	// Type keywords
	Vec2
	Vec3
	Vec4
	Mat4
	Float
	Int

	// Categories
	Identifier
	Number

	// Punctuation
	Plus
	Minus
	Star
	Slash
	Assign
	LParen
	RParen
	LBrace
	RBrace
	Semicolon
	Comma
	Dot
)

var names = map[Kind]string{
	Error:      "error",
	EOF:        "eof",
	Shader:     "shader",
	Vertex:     "vertex",
	Fragment:   "fragment",
	Input:      "input",
	Output:     "output",
	Uniform:    "uniform",
	Main:       "main",
	Vec2:       "vec2",
	Vec3:       "vec3",
	Vec4:       "vec4",
	Mat4:       "mat4",
	Float:      "float",
	Int:        "int",
	Identifier: "identifier",
	Number:     "number",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Assign:     "=",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	Semicolon:  ";",
	Comma:      ",",
	Dot:        ".",
}

// String renders a Kind for diagnostics and test failure output.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps the reserved-word spellings to their Kind. Keyword lookup
// takes precedence over the generic Identifier kind on an exact match.
var Keywords = map[string]Kind{
	"shader":   Shader,
	"vertex":   Vertex,
	"fragment": Fragment,
	"input":    Input,
	"output":   Output,
	"uniform":  Uniform,
	"main":     Main,
	"vec2":     Vec2,
	"vec3":     Vec3,
	"vec4":     Vec4,
	"mat4":     Mat4,
	"float":    Float,
	"int":      Int,
}

// IsType reports whether k names one of the DSL's type keywords.
func IsType(k Kind) bool {
	switch k {
	case Vec2, Vec3, Vec4, Mat4, Float, Int:
		return true
	default:
		return false
	}
}

// Token is a single lexical unit: its kind, its literal text, and the
// 1-indexed (line, column) of its first character.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}
