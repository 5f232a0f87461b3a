package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/statkit/formula/pkg/types"
)

// Parser implements a recursive descent parser for formula strings.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer   *Lexer
	arena   *types.NodeArena
	current Token
	prev    Token
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		arena: types.NewNodeArena(),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire formula and returns the compiled Formula:
// the optional response factor, the intercept flag and the expanded,
// deduplicated term list.
func (p *Parser) Parse() (*types.Formula, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntax, "Empty formula")
	}

	// Response side: everything before "~". A formula may omit the
	// response entirely ("~ x1 + x2").
	var responseNode *types.ASTNode
	if p.current.Type != TokenTilde {
		node, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		responseNode = node
	}

	if p.current.Type != TokenTilde {
		return nil, p.error(types.ErrMissingTilde, "Expected ~ separating response and terms")
	}
	p.advance()

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrEmptyTerms, "Formula has no terms after ~")
	}

	rhs, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected token: %s", p.current.Value))
	}

	var response *types.Factor
	if responseNode != nil {
		f, err := responseFactor(responseNode)
		if err != nil {
			return nil, err
		}
		response = f
	}

	ex := newExpander()
	if err := ex.collect(rhs, true); err != nil {
		return nil, err
	}

	return types.NewFormula(p.lexer.input, response, ex.intercept, ex.terms), nil
}

// Operator precedence table (binding power).
// Higher values bind more tightly.
var precedence = map[TokenType]int{
	TokenPlus:      10, // + (term set union)
	TokenMinus:     10, // - (term set removal)
	TokenStar:      20, // * (crossing sugar: A + B + A:B)
	TokenColon:     30, // : (interaction)
	TokenCaret:     40, // ^ (power, only valid inside I(...))
	TokenParenOpen: 50, // function call
}

// getPrecedence returns the precedence of a token type.
func (p *Parser) getPrecedence(tt TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// expect checks that the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken,
			fmt.Sprintf("Expected %s but got %s", tt.String(), p.current.Type.String()))
	}
	p.advance()
	return nil
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrSyntax, "Formula nesting too deep")
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenName:
		return p.parseName()
	case TokenMinus:
		return p.parseUnaryMinus()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenError:
		return nil, p.lexer.Error()
	default:
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected token: %s", token.Type.String()))
	}
}

// parseInfix parses an infix expression (led - left denotation).
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	switch p.current.Type {
	case TokenParenOpen:
		return p.parseFunctionCall(left)
	case TokenCaret:
		return p.parseCaret(left)
	case TokenPlus, TokenMinus, TokenColon, TokenStar:
		return p.parseBinaryOp(left)
	default:
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected infix token: %s", p.current.Type.String()))
	}
}

// parseNumber parses a number literal into an exact rational.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	node := p.arena.Alloc(types.NodeNumber, p.current.Position)

	val, ok := parseRat(p.current.Value)
	if !ok {
		return nil, p.error(types.ErrBadNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node.Num = val
	p.advance()
	return node, nil
}

// parseRat parses the lexer's number token forms into a big.Rat:
// "2", "1.5", "1/2" and the mixed fraction "1 1/2".
func parseRat(s string) (*big.Rat, bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		r := new(big.Rat)
		if _, ok := r.SetString(fields[0]); !ok {
			return nil, false
		}
		return r, true
	case 2:
		// Mixed fraction: whole part plus fraction part.
		whole := new(big.Rat)
		if _, ok := whole.SetString(fields[0]); !ok {
			return nil, false
		}
		frac := new(big.Rat)
		if _, ok := frac.SetString(fields[1]); !ok {
			return nil, false
		}
		return whole.Add(whole, frac), true
	default:
		return nil, false
	}
}

// parseName parses a variable reference. Function calls are formed in
// parseInfix when the name is followed by an opening parenthesis.
func (p *Parser) parseName() (*types.ASTNode, error) {
	node := p.arena.Alloc(types.NodeVariable, p.current.Position)
	node.Name = p.current.Value
	p.advance()
	return node, nil
}

// parseUnaryMinus parses a leading minus, as in "y ~ -1 + x".
// It is represented as a removal with an empty left-hand side.
func (p *Parser) parseUnaryMinus() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	expr, err := p.parseExpression(precedence[TokenMinus])
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeBinary, pos)
	node.Op = "-"
	node.RHS = expr
	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	if p.current.Type == TokenParenClose {
		return nil, p.error(types.ErrSyntax, "Empty parentheses")
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return expr, nil
}

// parseBinaryOp parses a binary operator expression (+, -, :, *).
// All four are left-associative.
func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeBinary, op.Position)
	node.Op = op.Type.String()
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseCaret parses the power operator. Right-associative, so x^2^3 is
// x^(2^3). The expander only accepts it inside I(...).
func (p *Parser) parseCaret(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec - 1)
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeBinary, op.Position)
	node.Op = "^"
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseFunctionCall parses a function call expression.
// Called when we see an expression followed by '('.
func (p *Parser) parseFunctionCall(nameNode *types.ASTNode) (*types.ASTNode, error) {
	if nameNode.Type != types.NodeVariable {
		return nil, p.error(types.ErrSyntax, "Expected function name before (")
	}

	pos := p.current.Position
	p.advance() // Skip '('

	node := p.arena.Alloc(types.NodeCall, pos)
	node.Name = nameNode.Name
	node.Position = nameNode.Position

	if p.current.Type == TokenParenClose {
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("%s() requires at least one argument", node.Name))
	}

	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Arguments = append(node.Arguments, arg)

		if p.current.Type == TokenParenClose {
			p.advance()
			break
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}
