// Package formula compiles R-style formula strings into design matrices.
//
// A formula such as "y ~ 1 + c(species) + x1:x2" describes how to build a
// numeric explanatory matrix X and a response vector y from a named-column
// tabular data source. The compiler parses the formula grammar, expands
// the term algebra (interactions ":", crossings "*", polynomials
// "poly(x, k)", literal powers "I(x^p)", categorical expansion "c(x)" and
// one-argument transforms like "log(x)") into a flat deduplicated term
// list, and evaluates that list against a data source.
//
// # Quick Start
//
//	// Compile once, materialize many times
//	f, err := formula.Compile("y ~ 1 + c(species) + I(x^2)")
//	X, y, err := formula.Materialize(f, trainData)
//	X2, y2, err := formula.Materialize(f, testData)
//
//	// Or in a single call
//	X, y, err := formula.Eval("y ~ 1 + x1 + x2:x3", data)
//
// Compiled formulas are immutable and safe for concurrent use. Evaluation
// either yields the full (X, y, names) result or a coded error — partial
// matrices are never returned.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/statkit/formula/pkg/parser
//   - Evaluator: github.com/statkit/formula/pkg/evaluator
//   - Data sources: github.com/statkit/formula/pkg/dataset
//   - Types: github.com/statkit/formula/pkg/types
package formula

import (
	"fmt"

	"github.com/statkit/formula/pkg/cache"
	"github.com/statkit/formula/pkg/dataset"
	"github.com/statkit/formula/pkg/evaluator"
	"github.com/statkit/formula/pkg/parser"
	"github.com/statkit/formula/pkg/types"
)

// Version returns the current version of the module.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles a formula string for repeated materialization.
//
// The compiled formula can be evaluated against any number of data
// sources (e.g. train/test splits) without re-parsing. It is safe for
// concurrent use.
func Compile(input string, opts ...parser.CompileOption) (*types.Formula, error) {
	return parser.Compile(input, opts...)
}

// MustCompile is like Compile but panics if the formula cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile(input string) *types.Formula {
	f, err := Compile(input)
	if err != nil {
		panic(fmt.Sprintf("formula: Compile(%q): %v", input, err))
	}
	return f
}

// compileCache backs CompileCached. 256 distinct formulas is far more
// than any realistic model-search loop holds at once.
var compileCache = cache.New(256)

// CompileCached is like Compile but memoizes compiled formulas in a
// process-wide LRU keyed by the formula string.
func CompileCached(input string) (*types.Formula, error) {
	return compileCache.GetOrCompile(input, func() (*types.Formula, error) {
		return parser.Compile(input)
	})
}

// Materialize evaluates a compiled formula against a data source,
// returning the design matrix X and the response vector y. y is nil when
// the formula has no response side.
func Materialize(f *types.Formula, src dataset.Source, opts ...evaluator.Option) (*evaluator.Matrix, []float64, error) {
	return evaluator.New(opts...).Materialize(f, src)
}

// Eval is a convenience function that compiles and materializes a formula
// in a single call.
//
// For repeated evaluations of the same formula, use Compile (or
// CompileCached) and Materialize instead.
func Eval(input string, src dataset.Source, opts ...evaluator.Option) (*evaluator.Matrix, []float64, error) {
	f, err := CompileCached(input)
	if err != nil {
		return nil, nil, err
	}
	return Materialize(f, src, opts...)
}
