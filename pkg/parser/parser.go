// Package parser implements the formula compiler front-end.
//
// The front-end turns an R-style formula string into a compiled
// [types.Formula] in three stages:
//   - Lexer: tokenizes the input into identifiers, operators and number
//     literals (including mixed-fraction literals such as "1 1/2")
//   - Parser: builds an expression tree with a hand-written recursive
//     descent parser using Pratt's operator-precedence technique
//   - Expander: rewrites the tree into a flat, deduplicated term list,
//     applying the distribution rules for ":" and "*", poly expansion and
//     constant folding of I(...) exponents
//
// # Example
//
//	f, err := parser.Parse("y ~ 1 + c(species) + x1:x2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.TermNames()) // [c(species) x1:x2]
//
// Parse errors are *types.Error values carrying an error code and the
// offending source position.
package parser

import (
	"github.com/statkit/formula/pkg/types"
)

// Parse parses a formula string and returns the compiled Formula.
//
// The function tokenizes the input, builds an expression tree, expands the
// term algebra and validates transform names. If any stage fails, it
// returns a detailed error with position information.
func Parse(input string) (*types.Formula, error) {
	p := NewParser(input)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(input string, opts ...CompileOption) (*types.Formula, error) {
	p := NewParser(input, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits recursion depth to prevent stack overflow on
	// adversarial inputs.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
