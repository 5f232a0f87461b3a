package types_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/statkit/formula/pkg/types"
)

func TestErrorFormatting(t *testing.T) {
	err := types.NewError(types.ErrUnknownTransform, "Unknown transform \"boop\"", 8)
	msg := err.Error()
	if !strings.Contains(msg, "F0301") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "position 8") {
		t.Errorf("expected position in message, got %q", msg)
	}

	// Negative positions drop the location.
	noPos := types.NewError(types.ErrColumnNotFound, "Column \"x9\" not found", -1)
	if strings.Contains(noPos.Error(), "position") {
		t.Errorf("expected no position in message, got %q", noPos.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := types.NewError(types.ErrTransformDomain, "domain failure", -1).WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("materialize: %w", err)
	var fe *types.Error
	if !errors.As(wrapped, &fe) {
		t.Fatal("expected errors.As to find *types.Error through wrapping")
	}
	if fe.Code != types.ErrTransformDomain {
		t.Errorf("expected code %s, got %s", types.ErrTransformDomain, fe.Code)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		code types.ErrorCode
		pred func(error) bool
	}{
		{"lex", types.ErrBadCharacter, types.IsLexError},
		{"bad number is lex", types.ErrBadNumber, types.IsLexError},
		{"syntax", types.ErrSyntax, types.IsSyntaxError},
		{"missing tilde is syntax", types.ErrMissingTilde, types.IsSyntaxError},
		{"unknown transform", types.ErrUnknownTransform, types.IsUnknownTransform},
		{"column not found", types.ErrColumnNotFound, types.IsColumnNotFound},
		{"transform domain", types.ErrTransformDomain, types.IsTransformDomain},
		{"empty formula", types.ErrEmptyFormula, types.IsEmptyFormula},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := types.NewError(tt.code, "test", -1)
			if !tt.pred(err) {
				t.Errorf("predicate rejected code %s", tt.code)
			}
		})
	}

	if types.IsColumnNotFound(errors.New("plain error")) {
		t.Error("predicate matched a non-formula error")
	}
	if types.IsSyntaxError(nil) {
		t.Error("predicate matched nil")
	}
}
