// Package evaluator materializes compiled formulas against tabular data.
//
// The evaluator walks a Formula's expanded term list, evaluates each term
// into one or more numeric columns (expanding categorical factors into
// dummy columns and applying power/transform functions elementwise), and
// assembles the columns into the final design matrix together with the
// response vector.
//
// A single materialization either completes or fails atomically; partial
// matrices are never returned.
package evaluator

import (
	"fmt"
	"sync"

	"github.com/statkit/formula/pkg/dataset"
	"github.com/statkit/formula/pkg/types"
)

// InterceptName is the column name of the leading all-ones column.
const InterceptName = "(Intercept)"

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithParallelism evaluates distinct terms on up to n goroutines. Terms
// are independent, so parallel evaluation cannot change results; columns
// are reassembled in term order either way. n <= 1 means sequential.
func WithParallelism(n int) Option {
	return func(e *Evaluator) {
		e.parallelism = n
	}
}

// Evaluator materializes formulas. The zero value evaluates sequentially.
// Safe for concurrent use; it holds no per-call state.
type Evaluator struct {
	parallelism int
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Column is one materialized output column.
type Column struct {
	Name   string
	Values []float64
}

// Materialize evaluates the formula against src and returns the design
// matrix X and the response vector y. y is nil when the formula has no
// response side.
func (e *Evaluator) Materialize(f *types.Formula, src dataset.Source) (*Matrix, []float64, error) {
	terms := f.Terms()
	if len(terms) == 0 && !f.Intercept() {
		return nil, nil, types.NewError(types.ErrEmptyFormula,
			"Formula has no terms and no intercept", -1)
	}

	rows := src.NumRows()

	perTerm, err := e.evalTerms(terms, src, f.Intercept())
	if err != nil {
		return nil, nil, err
	}

	var y []float64
	if rf := f.Response(); rf != nil {
		col, err := evalSingleColumn(*rf, src)
		if err != nil {
			return nil, nil, err
		}
		y = col.Values
	}

	m := &Matrix{Rows: rows}
	if f.Intercept() {
		ones := make([]float64, rows)
		for i := range ones {
			ones[i] = 1.0
		}
		m.Names = append(m.Names, InterceptName)
		m.Cols = append(m.Cols, ones)
	}
	for _, cols := range perTerm {
		for _, col := range cols {
			if len(col.Values) != rows {
				panic(fmt.Sprintf("evaluator: column %s has %d rows, source has %d",
					col.Name, len(col.Values), rows))
			}
			m.Names = append(m.Names, col.Name)
			m.Cols = append(m.Cols, col.Values)
		}
	}

	return m, y, nil
}

// evalTerms evaluates every term, sequentially or on a bounded worker
// pool. Results are written into an index-addressed slice so assembly
// order is identical either way; on failure the lowest-index error wins
// to keep error reporting deterministic.
func (e *Evaluator) evalTerms(terms []types.TermSpec, src dataset.Source, intercept bool) ([][]Column, error) {
	results := make([][]Column, len(terms))
	errs := make([]error, len(terms))

	workers := e.parallelism
	if workers > len(terms) {
		workers = len(terms)
	}

	if workers <= 1 {
		for i, t := range terms {
			cols, err := evalTerm(t, src, intercept)
			if err != nil {
				return nil, err
			}
			results[i] = cols
		}
		return results, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = evalTerm(terms[i], src, intercept)
			}
		}()
	}
	for i := range terms {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
