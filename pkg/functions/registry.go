// Package functions provides the closed registry of one-argument numeric
// transforms usable inside formulas, e.g. "y ~ log(x1) + sqrt(x2)".
//
// The registry is a fixed allow-list rather than open dynamic dispatch:
// every transform name maps to a registered pure function, and an
// unregistered name fails term expansion with an UnknownTransform error.
// This keeps the set of reachable math exhaustively checkable.
package functions

import (
	"fmt"
	"math"
	"sort"
)

// Transform is a registered one-argument numeric transform.
type Transform struct {
	// Name is the function name as it appears inside formulas.
	Name string
	// Apply evaluates the transform for a single value. It returns a
	// DomainError when x lies outside the function's domain.
	Apply func(x float64) (float64, error)
}

// DomainError reports a transform applied outside its mathematical domain,
// e.g. log of a non-positive value.
type DomainError struct {
	Func  string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s is undefined for %v", e.Func, e.Value)
}

func total(name string, f func(float64) float64) *Transform {
	return &Transform{
		Name: name,
		Apply: func(x float64) (float64, error) {
			return f(x), nil
		},
	}
}

// registry is the closed transform allow-list.
var registry = map[string]*Transform{
	"exp":  total("exp", math.Exp),
	"sin":  total("sin", math.Sin),
	"cos":  total("cos", math.Cos),
	"tan":  total("tan", math.Tan),
	"tanh": total("tanh", math.Tanh),
	"square": total("square", func(x float64) float64 {
		return x * x
	}),

	"log": {
		Name: "log",
		Apply: func(x float64) (float64, error) {
			if x <= 0 {
				return 0, &DomainError{Func: "log", Value: x}
			}
			return math.Log(x), nil
		},
	},
	"sqrt": {
		Name: "sqrt",
		Apply: func(x float64) (float64, error) {
			if x < 0 {
				return 0, &DomainError{Func: "sqrt", Value: x}
			}
			return math.Sqrt(x), nil
		},
	},
}

// Lookup returns the transform registered under name.
func Lookup(name string) (*Transform, bool) {
	t, ok := registry[name]
	return t, ok
}

// Exists reports whether name is a registered transform.
func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns all registered transform names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
