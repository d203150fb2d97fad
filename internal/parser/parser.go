// Package parser implements a recursive-descent parser for the shader DSL,
// turning a token sequence into an ast.Program.
package parser

import (
	"fmt"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/token"
)

// ParseError reports the first syntactic violation encountered. The parser
// does not attempt recovery: parsing stops at the first error.
type ParseError struct {
	Line      int
	Column    int
	Message   string
	BadLexeme string
}

func (e *ParseError) Error() string {
	if e.BadLexeme != "" {
		return fmt.Sprintf("%d:%d: %s (got %q)", e.Line, e.Column, e.Message, e.BadLexeme)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a fixed token slice and builds an ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over tokens, which must end in an EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses tokens into a Program, or returns the first ParseError.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).parseProgram()
}

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.current().Kind == kind
}

func (p *Parser) expect(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, &ParseError{
		Line:      p.current().Line,
		Column:    p.current().Column,
		Message:   message,
		BadLexeme: p.current().Lexeme,
	}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		if !p.check(token.Shader) {
			return nil, &ParseError{
				Line:      p.current().Line,
				Column:    p.current().Column,
				Message:   "expected 'shader' declaration",
				BadLexeme: p.current().Lexeme,
			}
		}
		decl, err := p.parseShaderDecl()
		if err != nil {
			return nil, err
		}
		prog.Shaders = append(prog.Shaders, decl)
	}
	return prog, nil
}

func (p *Parser) parseShaderDecl() (*ast.ShaderDecl, error) {
	if _, err := p.expect(token.Shader, "expected 'shader' keyword"); err != nil {
		return nil, err
	}

	decl := &ast.ShaderDecl{}
	switch {
	case p.check(token.Vertex):
		decl.Stage = ast.Vertex
		p.advance()
	case p.check(token.Fragment):
		decl.Stage = ast.Fragment
		p.advance()
	default:
		return nil, &ParseError{
			Line:      p.current().Line,
			Column:    p.current().Column,
			Message:   "expected 'vertex' or 'fragment'",
			BadLexeme: p.current().Lexeme,
		}
	}

	if _, err := p.expect(token.LBrace, "expected '{' after shader type"); err != nil {
		return nil, err
	}

	for !p.check(token.RBrace) && !p.check(token.EOF) {
		switch {
		case p.check(token.Input):
			p.advance()
			v, err := p.parseVariableDecl()
			if err != nil {
				return nil, err
			}
			decl.Inputs = append(decl.Inputs, v)
		case p.check(token.Output):
			p.advance()
			v, err := p.parseVariableDecl()
			if err != nil {
				return nil, err
			}
			decl.Outputs = append(decl.Outputs, v)
		case p.check(token.Main):
			p.advance()
			if _, err := p.expect(token.LBrace, "expected '{' after 'main'"); err != nil {
				return nil, err
			}
			for !p.check(token.RBrace) && !p.check(token.EOF) {
				stmt, err := p.parseStatement()
				if err != nil {
					return nil, err
				}
				decl.Body = append(decl.Body, stmt)
			}
			if _, err := p.expect(token.RBrace, "expected '}' after main block"); err != nil {
				return nil, err
			}
		default:
			return nil, &ParseError{
				Line:      p.current().Line,
				Column:    p.current().Column,
				Message:   "unexpected token in shader body",
				BadLexeme: p.current().Lexeme,
			}
		}
	}

	if _, err := p.expect(token.RBrace, "expected '}' at end of shader declaration"); err != nil {
		return nil, err
	}

	return decl, nil
}

func (p *Parser) parseType() (ast.Type, error) {
	if !token.IsType(p.current().Kind) {
		return "", &ParseError{
			Line:      p.current().Line,
			Column:    p.current().Column,
			Message:   "expected type specifier",
			BadLexeme: p.current().Lexeme,
		}
	}
	t := ast.Type(p.current().Lexeme)
	p.advance()
	return t, nil
}

func (p *Parser) parseVariableDecl() (*ast.VariableDecl, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.check(token.Identifier) {
		return nil, &ParseError{
			Line:      p.current().Line,
			Column:    p.current().Column,
			Message:   "expected identifier after type",
			BadLexeme: p.current().Lexeme,
		}
	}
	name := p.advance().Lexeme
	if _, err := p.expect(token.Semicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &ast.VariableDecl{Type: typ, Name: name}, nil
}

// parseStatement parses `<target> = <expr>;`. The target is restricted to
// an Identifier or a MemberAccess on an Identifier — a deliberate
// tightening over the permissive original grammar (§9 open question): any
// other primary on the left is rejected here rather than left to surface
// as malformed GLSL during code generation.
func (p *Parser) parseStatement() (*ast.Assignment, error) {
	targetLine := p.current().Line
	targetColumn := p.current().Column
	target, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !isAssignable(target) {
		return nil, &ParseError{
			Line:    targetLine,
			Column:  targetColumn,
			Message: "invalid assignment target: must be an identifier or member access on one",
		}
	}

	if _, err := p.expect(token.Assign, "expected '=' in assignment"); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Semicolon, "expected ';' after statement"); err != nil {
		return nil, err
	}

	return &ast.Assignment{Target: target, Value: value}, nil
}

func isAssignable(e ast.Expr) bool {
	switch t := e.(type) {
	case *ast.Identifier:
		return true
	case *ast.MemberAccess:
		_, ok := t.Object.(*ast.Identifier)
		return ok
	default:
		return false
	}
}

// parseExpression := Term (('+'|'-') Term)*, left-associative.
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.check(token.Plus) || p.check(token.Minus) {
		op := ast.Add
		if p.check(token.Minus) {
			op = ast.Sub
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseTerm := Factor (('*'|'/') Factor)*, left-associative.
func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.check(token.Star) || p.check(token.Slash) {
		op := ast.Mul
		if p.check(token.Slash) {
			op = ast.Div
		}
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseFactor is Primary; there are no unary operators in the grammar.
func (p *Parser) parseFactor() (ast.Expr, error) {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	cur := p.current()

	if cur.Kind == token.Number {
		p.advance()
		return &ast.Literal{Text: cur.Lexeme}, nil
	}

	if token.IsType(cur.Kind) {
		name := cur.Lexeme
		p.advance()
		if !p.check(token.LParen) {
			return nil, &ParseError{
				Line:      p.current().Line,
				Column:    p.current().Column,
				Message:   fmt.Sprintf("expected '(' after type constructor %q", name),
				BadLexeme: p.current().Lexeme,
			}
		}
		return p.parseFunctionCall(name)
	}

	if cur.Kind == token.Identifier {
		name := cur.Lexeme
		p.advance()

		if p.check(token.Dot) {
			p.advance()
			if !p.check(token.Identifier) {
				return nil, &ParseError{
					Line:      p.current().Line,
					Column:    p.current().Column,
					Message:   "expected member name after '.'",
					BadLexeme: p.current().Lexeme,
				}
			}
			member := p.advance().Lexeme
			return &ast.MemberAccess{Object: &ast.Identifier{Name: name}, Member: member}, nil
		}

		if p.check(token.LParen) {
			return p.parseFunctionCall(name)
		}

		return &ast.Identifier{Name: name}, nil
	}

	if cur.Kind == token.LParen {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, &ParseError{
		Line:      cur.Line,
		Column:    cur.Column,
		Message:   "unexpected token in expression",
		BadLexeme: cur.Lexeme,
	}
}

func (p *Parser) parseFunctionCall(name string) (ast.Expr, error) {
	if _, err := p.expect(token.LParen, "expected '(' after function name"); err != nil {
		return nil, err
	}

	call := &ast.FunctionCall{Name: name}
	if !p.check(token.RParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		for p.check(token.Comma) {
			p.advance()
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
	}

	if _, err := p.expect(token.RParen, "expected ')' after function arguments"); err != nil {
		return nil, err
	}

	return call, nil
}
