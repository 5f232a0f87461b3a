// Package types defines the core type system for the formula compiler.
//
// This package contains type definitions for:
//   - Formula: compiled formulas, the durable artifact of the front-end
//   - ASTNode: expression tree nodes, transient per parse call
//   - TermSpec/Factor: expanded term representation
//   - Error types: structured errors with codes and positions
package types

// Formula represents a compiled formula.
//
// A Formula can be materialized multiple times against different data
// sources (e.g. train/test splits) without re-parsing. It is immutable and
// safe for concurrent use by multiple goroutines.
type Formula struct {
	source    string
	response  *Factor // nil for response-less formulas ("~ x")
	intercept bool
	terms     []TermSpec
}

// NewFormula creates a Formula from the expansion results.
func NewFormula(source string, response *Factor, intercept bool, terms []TermSpec) *Formula {
	return &Formula{
		source:    source,
		response:  response,
		intercept: intercept,
		terms:     terms,
	}
}

// Source returns the original formula string.
func (f *Formula) Source() string {
	return f.source
}

// Response returns the response factor, or nil when the formula has no
// left-hand side.
func (f *Formula) Response() *Factor {
	return f.response
}

// Intercept reports whether the design matrix carries a leading all-ones
// column. True unless the formula contains a 0 or -1 term.
func (f *Formula) Intercept() bool {
	return f.intercept
}

// Terms returns the expanded, deduplicated term list in first-appearance
// order. The returned slice must not be modified.
func (f *Formula) Terms() []TermSpec {
	return f.terms
}

// TermNames returns the canonical label of each term in order, letting a
// caller inspect the design before materializing it.
func (f *Formula) TermNames() []string {
	names := make([]string, len(f.terms))
	for i, t := range f.terms {
		names[i] = t.Label()
	}
	return names
}

// String returns the original formula string.
func (f *Formula) String() string {
	return f.source
}
