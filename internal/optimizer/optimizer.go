// Package optimizer rewrites a shader DSL AST in place to a smaller,
// semantically equivalent form: constant folding, algebraic simplification,
// and dead-code elimination, driven to a fixed point.
package optimizer

import (
	"fmt"
	"strconv"

	"github.com/jamesgrm-mccallum/vulkan-shader-compiler/internal/ast"
)

// maxPasses bounds the fixed-point loop so a pathological rewrite still
// terminates.
const maxPasses = 10

// OptimizerError would report a fixed-point rewrite that could not
// complete. Optimize has no rule that fails under the current grammar (an
// unparseable literal is left unfolded rather than rejected, §4.3.5), so
// this type is never returned today; it exists so a future rewrite rule
// that can fail has somewhere to report to without changing the package's
// error-handling shape.
type OptimizerError struct {
	Message string
}

func (e *OptimizerError) Error() string {
	return fmt.Sprintf("optimizer: %s", e.Message)
}

// zeroTolerance is the threshold under which a literal is treated as 0 or 1
// for algebraic simplification and division-by-zero guarding.
const zeroTolerance = 1e-4

// Stats reports optimizer activity for a single Optimize call. It plays no
// part in correctness — it exists purely for driver-level reporting.
type Stats struct {
	ConstantsFolded          int `json:"constants_folded"`
	AlgebraicSimplifications int `json:"algebraic_simplifications"`
	DeadCodeRemoved          int `json:"dead_code_removed"`
	TotalPasses              int `json:"total_passes"`
}

// Optimize rewrites prog in place, running fold/simplify/DCE passes until a
// pass makes no change or maxPasses is reached. It never fails: an
// unparseable literal simply isn't folded (§4.3.5).
func Optimize(prog *ast.Program) Stats {
	var stats Stats

	for stats.TotalPasses < maxPasses {
		stats.TotalPasses++
		changed := false

		for _, shader := range prog.Shaders {
			for _, stmt := range shader.Body {
				stmt.Value, _ = foldExpr(stmt.Value, &stats, &changed)
			}
			for _, stmt := range shader.Body {
				stmt.Value = simplifyExpr(stmt.Value, &stats, &changed)
			}
			if deadCodeEliminate(shader, &stats) {
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return stats
}

func parseLiteral(text string) (float32, bool) {
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}

func formatLiteral(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func isLiteral(e ast.Expr) (*ast.Literal, bool) {
	lit, ok := e.(*ast.Literal)
	return lit, ok
}

func isLiteralValue(e ast.Expr, want float32) bool {
	lit, ok := isLiteral(e)
	if !ok {
		return false
	}
	v, ok := parseLiteral(lit.Text)
	if !ok {
		return false
	}
	return abs32(v-want) < zeroTolerance
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// foldExpr folds constant subexpressions bottom-up, returning the possibly
// replaced expression. ok reports whether folding happened at this node.
func foldExpr(e ast.Expr, stats *Stats, changed *bool) (ast.Expr, bool) {
	switch n := e.(type) {
	case *ast.BinaryOp:
		n.Left, _ = foldExpr(n.Left, stats, changed)
		n.Right, _ = foldExpr(n.Right, stats, changed)

		leftLit, lok := isLiteral(n.Left)
		rightLit, rok := isLiteral(n.Right)
		if !lok || !rok {
			return n, false
		}
		leftVal, lvok := parseLiteral(leftLit.Text)
		rightVal, rvok := parseLiteral(rightLit.Text)
		if !lvok || !rvok {
			// Unparseable literal text: a programmer error upstream. Leave
			// this subtree untouched per §4.3.5.
			return n, false
		}

		folded, ok := foldBinary(n.Op, leftVal, rightVal)
		if !ok {
			return n, false
		}
		stats.ConstantsFolded++
		*changed = true
		return &ast.Literal{Text: formatLiteral(folded)}, true

	case *ast.FunctionCall:
		for i, arg := range n.Args {
			n.Args[i], _ = foldExpr(arg, stats, changed)
		}
		return n, false

	case *ast.MemberAccess:
		n.Object, _ = foldExpr(n.Object, stats, changed)
		return n, false

	default:
		return e, false
	}
}

func foldBinary(op ast.Op, left, right float32) (float32, bool) {
	switch op {
	case ast.Add:
		return left + right, true
	case ast.Sub:
		return left - right, true
	case ast.Mul:
		return left * right, true
	case ast.Div:
		if abs32(right) < zeroTolerance {
			return 0, false
		}
		return left / right, true
	default:
		return 0, false
	}
}

// simplifyExpr applies algebraic identities after recursively simplifying
// children, returning the (possibly replaced) expression.
func simplifyExpr(e ast.Expr, stats *Stats, changed *bool) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryOp:
		n.Left = simplifyExpr(n.Left, stats, changed)
		n.Right = simplifyExpr(n.Right, stats, changed)
		return simplifyBinary(n, stats, changed)

	case *ast.FunctionCall:
		for i, arg := range n.Args {
			n.Args[i] = simplifyExpr(arg, stats, changed)
		}
		return n

	case *ast.MemberAccess:
		n.Object = simplifyExpr(n.Object, stats, changed)
		return n

	default:
		return e
	}
}

func simplifyBinary(n *ast.BinaryOp, stats *Stats, changed *bool) ast.Expr {
	// Associative reassociation of literal tails, enabling a later fold:
	//   (X * c1) * c2 -> X * (c1*c2);  c1 * (X * c2) -> X * (c1*c2)
	//   (X + c1) + c2 -> X + (c1+c2);  c1 + (X + c2) -> X + (c1+c2)
	if n.Op == ast.Mul || n.Op == ast.Add {
		if reassoc, ok := reassociateTail(n, n.Op); ok {
			stats.AlgebraicSimplifications++
			stats.ConstantsFolded++
			*changed = true
			return reassoc
		}
		if reassoc, ok := reassociateHead(n, n.Op); ok {
			stats.AlgebraicSimplifications++
			stats.ConstantsFolded++
			*changed = true
			return reassoc
		}
	}

	switch n.Op {
	case ast.Mul:
		if isLiteralValue(n.Right, 1.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Left
		}
		if isLiteralValue(n.Left, 1.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Right
		}
		if isLiteralValue(n.Right, 0.0) || isLiteralValue(n.Left, 0.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return &ast.Literal{Text: "0.0"}
		}
	case ast.Add:
		if isLiteralValue(n.Right, 0.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Left
		}
		if isLiteralValue(n.Left, 0.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Right
		}
	case ast.Sub:
		if isLiteralValue(n.Right, 0.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Left
		}
	case ast.Div:
		if isLiteralValue(n.Right, 1.0) {
			stats.AlgebraicSimplifications++
			*changed = true
			return n.Left
		}
	}

	return n
}

// reassociateTail matches the shape (X op c1) op c2.
func reassociateTail(n *ast.BinaryOp, op ast.Op) (ast.Expr, bool) {
	rightLit, rok := isLiteral(n.Right)
	if !rok {
		return nil, false
	}
	leftBin, lok := n.Left.(*ast.BinaryOp)
	if !lok || leftBin.Op != op {
		return nil, false
	}
	innerLit, iok := isLiteral(leftBin.Right)
	if !iok {
		return nil, false
	}
	c1, ok1 := parseLiteral(innerLit.Text)
	c2, ok2 := parseLiteral(rightLit.Text)
	if !ok1 || !ok2 {
		return nil, false
	}
	return &ast.BinaryOp{Op: op, Left: leftBin.Left, Right: &ast.Literal{Text: formatLiteral(combine(op, c1, c2))}}, true
}

// reassociateHead matches the symmetric shape c1 op (X op c2).
func reassociateHead(n *ast.BinaryOp, op ast.Op) (ast.Expr, bool) {
	leftLit, lok := isLiteral(n.Left)
	if !lok {
		return nil, false
	}
	rightBin, rok := n.Right.(*ast.BinaryOp)
	if !rok || rightBin.Op != op {
		return nil, false
	}
	innerLit, iok := isLiteral(rightBin.Right)
	if !iok {
		return nil, false
	}
	c1, ok1 := parseLiteral(leftLit.Text)
	c2, ok2 := parseLiteral(innerLit.Text)
	if !ok1 || !ok2 {
		return nil, false
	}
	return &ast.BinaryOp{Op: op, Left: rightBin.Left, Right: &ast.Literal{Text: formatLiteral(combine(op, c1, c2))}}, true
}

func combine(op ast.Op, a, b float32) float32 {
	if op == ast.Mul {
		return a * b
	}
	return a + b
}

// builtinSinks are output targets that are always considered live, even
// though they are never declared as an `output` variable.
var builtinSinks = map[string]bool{
	"gl_Position": true,
	"gl_FragColor": true,
	"gl_FragDepth": true,
}

// deadCodeEliminate removes assignments whose target is neither a declared
// output nor referenced by any statement's right-hand side. It is a
// single-pass kill; the outer fixed-point loop handles cascading removal.
func deadCodeEliminate(shader *ast.ShaderDecl, stats *Stats) bool {
	used := make(map[string]bool)
	for name := range builtinSinks {
		used[name] = true
	}
	for _, out := range shader.Outputs {
		used[out.Name] = true
	}
	for _, stmt := range shader.Body {
		collectUsed(stmt.Value, used)
	}

	changed := false
	kept := shader.Body[:0]
	for _, stmt := range shader.Body {
		name, ok := targetName(stmt.Target)
		if ok && !used[name] {
			stats.DeadCodeRemoved++
			changed = true
			continue
		}
		kept = append(kept, stmt)
	}
	shader.Body = kept

	return changed
}

func targetName(e ast.Expr) (string, bool) {
	switch t := e.(type) {
	case *ast.Identifier:
		return t.Name, true
	case *ast.MemberAccess:
		if id, ok := t.Object.(*ast.Identifier); ok {
			return id.Name, true
		}
	}
	return "", false
}

func collectUsed(e ast.Expr, used map[string]bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		used[n.Name] = true
	case *ast.BinaryOp:
		collectUsed(n.Left, used)
		collectUsed(n.Right, used)
	case *ast.MemberAccess:
		collectUsed(n.Object, used)
	case *ast.FunctionCall:
		for _, arg := range n.Args {
			collectUsed(arg, used)
		}
	}
}
