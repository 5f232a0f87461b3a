package types_test

import (
	"math/big"
	"testing"

	"github.com/statkit/formula/pkg/types"
)

func TestFactorColumnNames(t *testing.T) {
	tests := []struct {
		name   string
		factor types.Factor
		want   string
	}{
		{"identity", types.IdentityFactor("x"), "x"},
		{"categorical", types.CategoricalFactor("species"), "c(species)"},
		{"integer power", types.PowerFactor("x", big.NewRat(2, 1)), "x^2"},
		{"half power", types.PowerFactor("x", big.NewRat(1, 2)), "x^0.5"},
		{"mixed power", types.PowerFactor("x", big.NewRat(3, 2)), "x^1.5"},
		{"negative power", types.PowerFactor("x", big.NewRat(-2, 1)), "x^-2"},
		{"named transform", types.NamedFactor("x", "log"), "log(x)"},
		{"dotted variable", types.IdentityFactor("Sepal.Length"), "Sepal.Length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.factor.ColumnName(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPowerFactorCollapsesExponentOne(t *testing.T) {
	f := types.PowerFactor("x", big.NewRat(1, 1))
	if f.Kind != types.Identity {
		t.Fatalf("expected identity factor, got %s", f.Kind)
	}
	if !f.Equal(types.IdentityFactor("x")) {
		t.Error("expected x^1 to equal plain x")
	}
}

func TestFactorEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Factor
		want bool
	}{
		{"same identity", types.IdentityFactor("x"), types.IdentityFactor("x"), true},
		{"different variables", types.IdentityFactor("x"), types.IdentityFactor("z"), false},
		{"identity vs categorical", types.IdentityFactor("x"), types.CategoricalFactor("x"), false},
		{"identity vs transform", types.IdentityFactor("x"), types.NamedFactor("x", "log"), false},
		{"different transforms", types.NamedFactor("x", "log"), types.NamedFactor("x", "exp"), false},
		{"equal rational exponents",
			types.PowerFactor("x", big.NewRat(1, 2)),
			types.PowerFactor("x", big.NewRat(2, 4)), true},
		{"different exponents",
			types.PowerFactor("x", big.NewRat(1, 2)),
			types.PowerFactor("x", big.NewRat(1, 3)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a.ColumnName(), tt.b.ColumnName(), got, tt.want)
			}
		})
	}
}

func TestTermSpecDedupsFactors(t *testing.T) {
	term := types.NewTermSpec(
		types.IdentityFactor("x"),
		types.IdentityFactor("x"),
		types.IdentityFactor("z"),
	)
	if len(term.Factors) != 2 {
		t.Fatalf("expected 2 factors after dedup, got %d", len(term.Factors))
	}
	if term.Label() != "x:z" {
		t.Errorf("expected label x:z, got %s", term.Label())
	}
}

func TestTermSpecOrderInsensitiveEquality(t *testing.T) {
	ab := types.NewTermSpec(types.IdentityFactor("a"), types.IdentityFactor("b"))
	ba := types.NewTermSpec(types.IdentityFactor("b"), types.IdentityFactor("a"))

	if !ab.Equal(ba) {
		t.Error("expected a:b to equal b:a")
	}
	if ab.Key() != ba.Key() {
		t.Error("expected identical dedup keys for a:b and b:a")
	}
	// Labels keep declaration order even though the terms are equal.
	if ab.Label() != "a:b" || ba.Label() != "b:a" {
		t.Errorf("expected labels a:b and b:a, got %s and %s", ab.Label(), ba.Label())
	}
}

func TestTermSpecCross(t *testing.T) {
	a := types.NewTermSpec(types.IdentityFactor("a"))
	bc := types.NewTermSpec(types.IdentityFactor("b"), types.CategoricalFactor("c"))

	crossed := a.Cross(bc)
	if crossed.Label() != "a:b:c(c)" {
		t.Errorf("expected a:b:c(c), got %s", crossed.Label())
	}

	// Crossing with an overlapping term keeps one copy of the shared factor.
	again := crossed.Cross(a)
	if !again.Equal(crossed) {
		t.Errorf("expected idempotent cross, got %s", again.Label())
	}
}

func TestFormulaAccessors(t *testing.T) {
	resp := types.IdentityFactor("y")
	terms := []types.TermSpec{
		types.NewTermSpec(types.IdentityFactor("x1")),
		types.NewTermSpec(types.IdentityFactor("x2"), types.IdentityFactor("x3")),
	}
	f := types.NewFormula("y ~ x1 + x2:x3", &resp, true, terms)

	if f.Source() != "y ~ x1 + x2:x3" {
		t.Errorf("unexpected source %q", f.Source())
	}
	if !f.Intercept() {
		t.Error("expected intercept")
	}
	if f.Response() == nil || f.Response().Variable != "y" {
		t.Errorf("unexpected response %v", f.Response())
	}
	names := f.TermNames()
	if len(names) != 2 || names[0] != "x1" || names[1] != "x2:x3" {
		t.Errorf("unexpected term names %v", names)
	}
}
