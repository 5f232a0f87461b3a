package parser

import (
	"fmt"
	"math/big"

	"github.com/statkit/formula/pkg/functions"
	"github.com/statkit/formula/pkg/types"
)

// expander rewrites a parsed right-hand-side expression tree into a flat,
// ordered, deduplicated term list plus the intercept flag.
type expander struct {
	intercept bool
	terms     []types.TermSpec
	index     map[string]int // term dedup key -> position in terms
}

func newExpander() *expander {
	return &expander{
		intercept: true,
		index:     make(map[string]int),
	}
}

// collect walks the +/- spine of the expression. add flips on each side of
// a "-", so "a - (b - c)" removes b and re-adds c. The literals 1 and 0
// toggle the intercept instead of becoming terms.
func (e *expander) collect(node *types.ASTNode, add bool) error {
	if node == nil {
		return nil
	}

	if node.Type == types.NodeBinary {
		switch node.Op {
		case "+":
			if err := e.collect(node.LHS, add); err != nil {
				return err
			}
			return e.collect(node.RHS, add)
		case "-":
			if err := e.collect(node.LHS, add); err != nil {
				return err
			}
			return e.collect(node.RHS, !add)
		}
	}

	if node.Type == types.NodeNumber {
		switch {
		case node.IsLiteral(1):
			e.intercept = add
		case node.IsLiteral(0):
			e.intercept = !add
		default:
			return expandError(types.ErrSyntax, node,
				fmt.Sprintf("Numeric literal %s is not a term; only 1 and 0 toggle the intercept", node.Num.RatString()))
		}
		return nil
	}

	terms, err := termsOf(node)
	if err != nil {
		return err
	}
	for _, t := range terms {
		if add {
			e.add(t)
		} else {
			e.remove(t)
		}
	}
	return nil
}

// add appends a term unless an equal factor set is already present,
// keeping the first occurrence's position.
func (e *expander) add(t types.TermSpec) {
	key := t.Key()
	if _, ok := e.index[key]; ok {
		return
	}
	e.index[key] = len(e.terms)
	e.terms = append(e.terms, t)
}

// remove deletes a term by factor-set equality. Removing a term that was
// never introduced is a no-op.
func (e *expander) remove(t types.TermSpec) {
	key := t.Key()
	pos, ok := e.index[key]
	if !ok {
		return
	}
	e.terms = append(e.terms[:pos], e.terms[pos+1:]...)
	delete(e.index, key)
	for k, i := range e.index {
		if i > pos {
			e.index[k] = i - 1
		}
	}
}

// termsOf expands a term-level expression (everything below + and -) into
// its ordered term list.
func termsOf(node *types.ASTNode) ([]types.TermSpec, error) {
	switch node.Type {
	case types.NodeVariable:
		return []types.TermSpec{types.NewTermSpec(types.IdentityFactor(node.Name))}, nil

	case types.NodeCall:
		return callTerms(node)

	case types.NodeBinary:
		switch node.Op {
		case "+", "-":
			return sumTerms(node)
		case ":":
			return crossTerms(node)
		case "*":
			return starTerms(node)
		case "^":
			return nil, expandError(types.ErrSyntax, node,
				"^ is only valid inside I(...)")
		}
	}

	return nil, expandError(types.ErrSyntax, node,
		fmt.Sprintf("Unexpected %s in term position", node.Type))
}

// sumTerms handles + and - nested below an interaction, e.g. "(a + b):c".
func sumTerms(node *types.ASTNode) ([]types.TermSpec, error) {
	sub := newExpander()
	if err := sub.collect(node, true); err != nil {
		return nil, err
	}
	if len(sub.terms) == 0 {
		return nil, expandError(types.ErrEmptyTerms, node, "Term group expands to nothing")
	}
	return sub.terms, nil
}

// crossTerms expands A:B as the cross-product of A's and B's term sets:
// every pairing merges its factor sets into one interaction term.
func crossTerms(node *types.ASTNode) ([]types.TermSpec, error) {
	left, err := termsOf(node.LHS)
	if err != nil {
		return nil, err
	}
	right, err := termsOf(node.RHS)
	if err != nil {
		return nil, err
	}

	out := make([]types.TermSpec, 0, len(left)*len(right))
	seen := make(map[string]struct{}, len(left)*len(right))
	for _, a := range left {
		for _, b := range right {
			t := a.Cross(b)
			key := t.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

// starTerms expands A*B as exact sugar for A + B + A:B.
func starTerms(node *types.ASTNode) ([]types.TermSpec, error) {
	left, err := termsOf(node.LHS)
	if err != nil {
		return nil, err
	}
	right, err := termsOf(node.RHS)
	if err != nil {
		return nil, err
	}
	crossed, err := crossTerms(node)
	if err != nil {
		return nil, err
	}

	out := make([]types.TermSpec, 0, len(left)+len(right)+len(crossed))
	seen := make(map[string]struct{})
	for _, group := range [][]types.TermSpec{left, right, crossed} {
		for _, t := range group {
			key := t.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

// callTerms expands the special forms c(...), I(...), poly(...) and the
// registered one-argument transforms.
func callTerms(node *types.ASTNode) ([]types.TermSpec, error) {
	switch node.Name {
	case "c":
		v, err := singleVariableArg(node)
		if err != nil {
			return nil, err
		}
		return []types.TermSpec{types.NewTermSpec(types.CategoricalFactor(v))}, nil

	case "I":
		if len(node.Arguments) != 1 {
			return nil, expandError(types.ErrBadArgument, node, "I(...) takes exactly one argument")
		}
		f, err := foldPowerFactor(node.Arguments[0])
		if err != nil {
			return nil, err
		}
		return []types.TermSpec{types.NewTermSpec(*f)}, nil

	case "poly":
		return polyTerms(node)

	default:
		if !functions.Exists(node.Name) {
			return nil, expandError(types.ErrUnknownTransform, node,
				fmt.Sprintf("Unknown transform %q", node.Name))
		}
		v, err := singleVariableArg(node)
		if err != nil {
			return nil, err
		}
		return []types.TermSpec{types.NewTermSpec(types.NamedFactor(v, node.Name))}, nil
	}
}

// polyTerms expands poly(x, k) into k single-factor terms x^1 .. x^k.
func polyTerms(node *types.ASTNode) ([]types.TermSpec, error) {
	if len(node.Arguments) != 2 {
		return nil, expandError(types.ErrBadArgument, node, "poly(x, k) takes exactly two arguments")
	}
	varArg, degArg := node.Arguments[0], node.Arguments[1]

	if varArg.Type != types.NodeVariable {
		return nil, expandError(types.ErrBadArgument, varArg, "poly requires a variable as first argument")
	}
	if degArg.Type != types.NodeNumber || !degArg.Num.IsInt() {
		return nil, expandError(types.ErrBadPolyDegree, degArg, "poly degree must be an integer literal")
	}
	degree := degArg.Num.Num().Int64()
	if degree < 1 {
		return nil, expandError(types.ErrBadPolyDegree, degArg, "poly degree must be at least 1")
	}

	terms := make([]types.TermSpec, 0, degree)
	for k := int64(1); k <= degree; k++ {
		terms = append(terms, types.NewTermSpec(types.PowerFactor(varArg.Name, big.NewRat(k, 1))))
	}
	return terms, nil
}

// singleVariableArg validates a one-argument call whose argument must be a
// plain variable reference.
func singleVariableArg(node *types.ASTNode) (string, error) {
	if len(node.Arguments) != 1 {
		return "", expandError(types.ErrBadArgument, node,
			fmt.Sprintf("%s(...) takes exactly one argument", node.Name))
	}
	arg := node.Arguments[0]
	if arg.Type != types.NodeVariable {
		return "", expandError(types.ErrBadArgument, arg,
			fmt.Sprintf("%s(...) requires a variable argument", node.Name))
	}
	return arg.Name, nil
}

// foldPowerFactor resolves the argument of I(...) into a single factor:
// either a bare variable (exponent 1) or var^exponent where the exponent
// subtree folds to one exact rational.
func foldPowerFactor(node *types.ASTNode) (*types.Factor, error) {
	switch {
	case node.Type == types.NodeVariable:
		f := types.IdentityFactor(node.Name)
		return &f, nil

	case node.Type == types.NodeBinary && node.Op == "^":
		if node.LHS.Type != types.NodeVariable {
			return nil, expandError(types.ErrBadArgument, node.LHS,
				"I(...) power base must be a variable")
		}
		exp, err := foldConstant(node.RHS)
		if err != nil {
			return nil, err
		}
		f := types.PowerFactor(node.LHS.Name, exp)
		return &f, nil

	default:
		return nil, expandError(types.ErrBadArgument, node,
			"I(...) argument must be a variable or var^power")
	}
}

// foldConstant evaluates literal exponent arithmetic to a single rational.
// Only numbers combined with +, -, * and integer ^ fold; a variable or
// function call in exponent position is rejected rather than guessed at.
func foldConstant(node *types.ASTNode) (*big.Rat, error) {
	switch node.Type {
	case types.NodeNumber:
		return node.Num, nil

	case types.NodeBinary:
		switch node.Op {
		case "+", "-", "*":
			// Unary minus parses as "-" with an empty left-hand side.
			if node.Op == "-" && node.LHS == nil {
				right, err := foldConstant(node.RHS)
				if err != nil {
					return nil, err
				}
				return new(big.Rat).Neg(right), nil
			}
			left, err := foldConstant(node.LHS)
			if err != nil {
				return nil, err
			}
			right, err := foldConstant(node.RHS)
			if err != nil {
				return nil, err
			}
			out := new(big.Rat)
			switch node.Op {
			case "+":
				return out.Add(left, right), nil
			case "-":
				return out.Sub(left, right), nil
			default:
				return out.Mul(left, right), nil
			}
		case "^":
			base, err := foldConstant(node.LHS)
			if err != nil {
				return nil, err
			}
			exp, err := foldConstant(node.RHS)
			if err != nil {
				return nil, err
			}
			return ratPow(base, exp, node)
		}
	}

	return nil, expandError(types.ErrNonLiteralExponent, node,
		"Exponent must be a numeric literal expression")
}

// ratPow raises a rational to an integer power.
func ratPow(base, exp *big.Rat, node *types.ASTNode) (*big.Rat, error) {
	if !exp.IsInt() {
		return nil, expandError(types.ErrNonLiteralExponent, node,
			"Nested exponent must be an integer literal")
	}
	n := exp.Num().Int64()
	out := big.NewRat(1, 1)
	step := new(big.Rat).Set(base)
	neg := n < 0
	if neg {
		n = -n
	}
	for i := int64(0); i < n; i++ {
		out.Mul(out, step)
	}
	if neg {
		if out.Sign() == 0 {
			return nil, expandError(types.ErrBadArgument, node, "Zero raised to a negative power")
		}
		out.Inv(out)
	}
	return out, nil
}

// responseFactor reduces the response expression to a single factor on one
// variable: a bare variable, a registered transform of one, or I(var^p).
func responseFactor(node *types.ASTNode) (*types.Factor, error) {
	switch node.Type {
	case types.NodeVariable:
		f := types.IdentityFactor(node.Name)
		return &f, nil

	case types.NodeCall:
		switch node.Name {
		case "I":
			if len(node.Arguments) != 1 {
				return nil, expandError(types.ErrBadArgument, node, "I(...) takes exactly one argument")
			}
			return foldPowerFactor(node.Arguments[0])
		case "c", "poly":
			return nil, expandError(types.ErrBadResponse, node,
				fmt.Sprintf("%s(...) is not a valid response", node.Name))
		default:
			if !functions.Exists(node.Name) {
				return nil, expandError(types.ErrUnknownTransform, node,
					fmt.Sprintf("Unknown transform %q", node.Name))
			}
			v, err := singleVariableArg(node)
			if err != nil {
				return nil, err
			}
			f := types.NamedFactor(v, node.Name)
			return &f, nil
		}
	}

	return nil, expandError(types.ErrBadResponse, node,
		"Response must reduce to a single variable or a transform of one")
}

// expandError builds a positional error anchored at an AST node.
func expandError(code types.ErrorCode, node *types.ASTNode, message string) error {
	pos := -1
	token := ""
	if node != nil {
		pos = node.Position
		if node.Name != "" {
			token = node.Name
		}
	}
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: pos,
		Token:    token,
	}
}
