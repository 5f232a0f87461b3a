package evaluator

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/statkit/formula/pkg/dataset"
	"github.com/statkit/formula/pkg/functions"
	"github.com/statkit/formula/pkg/types"
)

// evalTerm evaluates one term spec into its output columns.
//
// Single-factor terms produce that factor's column set directly. A
// multi-factor term (an interaction) produces the cross-product of each
// factor's evaluated columns: one output column per combination, each the
// elementwise product of its constituents. Column order follows factor
// declaration order, and within a categorical factor, level discovery
// order.
func evalTerm(t types.TermSpec, src dataset.Source, intercept bool) ([]Column, error) {
	acc, err := factorColumns(t.Factors[0], src, intercept)
	if err != nil {
		return nil, err
	}

	for _, f := range t.Factors[1:] {
		next, err := factorColumns(f, src, intercept)
		if err != nil {
			return nil, err
		}

		crossed := make([]Column, 0, len(acc)*len(next))
		for _, a := range acc {
			for _, b := range next {
				values := make([]float64, len(a.Values))
				for i := range values {
					values[i] = a.Values[i] * b.Values[i]
				}
				crossed = append(crossed, Column{
					Name:   a.Name + ":" + b.Name,
					Values: values,
				})
			}
		}
		acc = crossed
	}

	return acc, nil
}

// evalSingleColumn evaluates a factor that must yield exactly one column,
// used for the response side.
func evalSingleColumn(f types.Factor, src dataset.Source) (Column, error) {
	if f.Kind == types.Categorical {
		return Column{}, types.NewError(types.ErrBadResponse,
			fmt.Sprintf("Response %q cannot be categorical", f.Variable), -1).WithToken(f.Variable)
	}
	cols, err := factorColumns(f, src, true)
	if err != nil {
		return Column{}, err
	}
	return cols[0], nil
}

// factorColumns evaluates one factor into its column set.
func factorColumns(f types.Factor, src dataset.Source, intercept bool) ([]Column, error) {
	if !src.HasColumn(f.Variable) {
		return nil, types.NewError(types.ErrColumnNotFound,
			fmt.Sprintf("Column %q not found in data source", f.Variable), -1).WithToken(f.Variable)
	}

	if f.Kind == types.Categorical {
		return dummyColumns(f, src, intercept)
	}

	if src.IsCategorical(f.Variable) {
		return nil, types.NewError(types.ErrColumnKind,
			fmt.Sprintf("Column %q is categorical; wrap it in c(%s)", f.Variable, f.Variable), -1).
			WithToken(f.Variable)
	}

	raw, err := src.Column(f.Variable)
	if err != nil {
		return nil, err
	}

	switch f.Kind {
	case types.Identity:
		return []Column{{Name: f.Variable, Values: raw}}, nil

	case types.Power:
		values := make([]float64, len(raw))
		for i, v := range raw {
			out, err := powRat(v, f.Exponent)
			if err != nil {
				return nil, domainError(f.ColumnName(), v, err)
			}
			values[i] = out
		}
		return []Column{{Name: f.ColumnName(), Values: values}}, nil

	case types.Named:
		fn, ok := functions.Lookup(f.Func)
		if !ok {
			return nil, types.NewError(types.ErrUnknownTransform,
				fmt.Sprintf("Unknown transform %q", f.Func), -1).WithToken(f.Func)
		}
		values := make([]float64, len(raw))
		for i, v := range raw {
			out, err := fn.Apply(v)
			if err != nil {
				return nil, domainError(f.ColumnName(), v, err)
			}
			values[i] = out
		}
		return []Column{{Name: f.ColumnName(), Values: values}}, nil
	}

	return nil, types.NewError(types.ErrColumnKind,
		fmt.Sprintf("Unsupported transform on column %q", f.Variable), -1)
}

// dummyColumns expands a categorical factor into indicator columns.
// Levels are enumerated in first-appearance order; the first level is the
// baseline and is dropped when an intercept keeps the matrix full rank.
// Without an intercept every level gets a column.
func dummyColumns(f types.Factor, src dataset.Source, intercept bool) ([]Column, error) {
	levels, err := src.Levels(f.Variable)
	if err != nil {
		return nil, err
	}
	codes, err := src.LevelCodes(f.Variable)
	if err != nil {
		return nil, err
	}

	start := 0
	if intercept {
		start = 1
	}

	cols := make([]Column, 0, len(levels)-start)
	for li := start; li < len(levels); li++ {
		values := make([]float64, len(codes))
		for i, code := range codes {
			if code == li {
				values[i] = 1.0
			}
		}
		cols = append(cols, Column{
			Name:   fmt.Sprintf("c(%s)[%s]", f.Variable, levels[li]),
			Values: values,
		})
	}
	return cols, nil
}

// powRat raises v to an exact rational exponent.
//
// Integer exponents with small magnitude multiply out exactly; exponents
// with denominator 2 compose through sqrt. Everything else falls back to
// floating exponentiation. Fractional powers of negative bases are domain
// errors; NaN inputs pass through untouched.
func powRat(v float64, r *big.Rat) (float64, error) {
	if math.IsNaN(v) {
		return math.NaN(), nil
	}

	num := r.Num().Int64()
	den := r.Denom().Int64()

	if v == 0 && num < 0 {
		return 0, &functions.DomainError{Func: "power", Value: v}
	}

	if den == 1 {
		if num >= -64 && num <= 64 {
			return intPow(v, num), nil
		}
		f, _ := r.Float64()
		return math.Pow(v, f), nil
	}

	if v < 0 {
		return 0, &functions.DomainError{Func: "power", Value: v}
	}

	if den == 2 && num >= -64 && num <= 64 {
		return intPow(math.Sqrt(v), num), nil
	}

	f, _ := r.Float64()
	return math.Pow(v, f), nil
}

// intPow computes v^n by repeated multiplication for small |n|.
func intPow(v float64, n int64) float64 {
	if n == 0 {
		return 1.0
	}
	neg := n < 0
	if neg {
		n = -n
	}
	out := 1.0
	for i := int64(0); i < n; i++ {
		out *= v
	}
	if neg {
		return 1.0 / out
	}
	return out
}

// domainError wraps a transform domain failure with the offending column.
func domainError(column string, value float64, err error) error {
	var de *functions.DomainError
	msg := fmt.Sprintf("Domain error in column %q at value %v", column, value)
	if errors.As(err, &de) {
		msg = fmt.Sprintf("%s is undefined for %v in column %q", de.Func, de.Value, column)
	}
	return types.NewError(types.ErrTransformDomain, msg, -1).WithToken(column).WithCause(err)
}
