package types

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// TransformKind identifies the transform attached to a factor.
type TransformKind uint8

const (
	// Identity leaves the raw column values untouched.
	Identity TransformKind = iota
	// Categorical expands the column into dummy indicator columns.
	Categorical
	// Power raises values elementwise to an exact rational exponent.
	Power
	// Named applies a registered one-argument transform (log, sqrt, ...).
	Named
)

// String returns a string representation of the transform kind.
func (k TransformKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Categorical:
		return "categorical"
	case Power:
		return "power"
	case Named:
		return "named"
	default:
		return "(unknown)"
	}
}

// Factor is one base-variable-with-transform component of a term.
// Interactions are products of factors.
type Factor struct {
	Variable string
	Kind     TransformKind
	Exponent *big.Rat // Set when Kind is Power
	Func     string   // Set when Kind is Named
}

// IdentityFactor returns an untransformed reference to variable.
func IdentityFactor(variable string) Factor {
	return Factor{Variable: variable, Kind: Identity}
}

// CategoricalFactor returns a dummy-coded reference to variable.
func CategoricalFactor(variable string) Factor {
	return Factor{Variable: variable, Kind: Categorical}
}

// PowerFactor returns variable raised to the exact exponent.
// An exponent of 1 collapses to the identity factor, so that poly(x, k)
// and I(x^1) deduplicate against a plain x term.
func PowerFactor(variable string, exponent *big.Rat) Factor {
	if exponent.Cmp(ratOne) == 0 {
		return IdentityFactor(variable)
	}
	return Factor{Variable: variable, Kind: Power, Exponent: exponent}
}

// NamedFactor returns variable under a registered one-argument transform.
func NamedFactor(variable, fn string) Factor {
	return Factor{Variable: variable, Kind: Named, Func: fn}
}

var ratOne = big.NewRat(1, 1)

// FormatExponent renders a rational exponent in canonical column-name form:
// integers print without a fraction ("2"), everything else as the shortest
// decimal ("0.5", "1.5").
func FormatExponent(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ColumnName returns the canonical output-column name for the factor.
// Categorical factors name their dummy columns per level; this returns the
// base form without a level suffix.
func (f Factor) ColumnName() string {
	switch f.Kind {
	case Categorical:
		return "c(" + f.Variable + ")"
	case Power:
		return f.Variable + "^" + FormatExponent(f.Exponent)
	case Named:
		return f.Func + "(" + f.Variable + ")"
	default:
		return f.Variable
	}
}

// key returns a stable identity string for dedup comparisons.
func (f Factor) key() string {
	switch f.Kind {
	case Categorical:
		return f.Variable + "\x00c"
	case Power:
		return f.Variable + "\x00p\x00" + f.Exponent.RatString()
	case Named:
		return f.Variable + "\x00f\x00" + f.Func
	default:
		return f.Variable + "\x00i"
	}
}

// Equal reports whether two factors reference the same variable under the
// same transform.
func (f Factor) Equal(other Factor) bool {
	return f.key() == other.key()
}

// TermSpec is the atomic unit after term expansion: one output-column-
// producing unit, a product of one or more factors.
//
// Factors keep their declaration order, which fixes column naming and the
// ordering of interaction cross-products. Equality and deduplication treat
// the factor list as an unordered set.
type TermSpec struct {
	Factors []Factor
}

// NewTermSpec builds a term from factors, dropping exact duplicates while
// preserving first-declaration order. The factor set is never empty for any
// term produced by expansion.
func NewTermSpec(factors ...Factor) TermSpec {
	out := make([]Factor, 0, len(factors))
	seen := make(map[string]struct{}, len(factors))
	for _, f := range factors {
		k := f.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return TermSpec{Factors: out}
}

// Cross returns the interaction of two terms: the union of their factor
// sets, left factors first.
func (t TermSpec) Cross(other TermSpec) TermSpec {
	combined := make([]Factor, 0, len(t.Factors)+len(other.Factors))
	combined = append(combined, t.Factors...)
	combined = append(combined, other.Factors...)
	return NewTermSpec(combined...)
}

// Key returns the order-insensitive dedup key: factor keys sorted and
// joined. Two terms are equal iff their keys are equal.
func (t TermSpec) Key() string {
	keys := make([]string, len(t.Factors))
	for i, f := range t.Factors {
		keys[i] = f.key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x01")
}

// Equal reports whether two terms have the same factor set, ignoring order.
func (t TermSpec) Equal(other TermSpec) bool {
	return t.Key() == other.Key()
}

// Label returns the human-readable term label: factor column names joined
// with ":" in declaration order, e.g. "x2:x3" or "log(x1)".
func (t TermSpec) Label() string {
	parts := make([]string, len(t.Factors))
	for i, f := range t.Factors {
		parts[i] = f.ColumnName()
	}
	return strings.Join(parts, ":")
}

// String returns the term label.
func (t TermSpec) String() string {
	return t.Label()
}
