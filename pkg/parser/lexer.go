package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/statkit/formula/pkg/types"
)

const eof = -1

// Lexer converts a formula string into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Single-character symbols
	if tt := lookupSymbol(ch); tt > 0 {
		return l.newToken(tt)
	}

	// Number literals, including fractions and mixed fractions
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}

	// Identifiers
	if isNameStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.error(types.ErrBadCharacter, fmt.Sprintf("Unrecognized character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanNumber reads a number literal from the current position.
//
// Supported forms:
//
//	2        integer
//	1.5      decimal
//	1/2      fraction
//	1 1/2    mixed fraction (whole part, space, fraction)
//
// The two fraction forms exist so that literal exponents inside I(...)
// parse without floating-point drift. The mixed form looks like two tokens;
// the lexer folds it into a single TokenNumber here, since otherwise the
// parser would misread "1 1/2" as three separate tokens.
func (l *Lexer) scanNumber() Token {
	isInteger := true

	l.acceptAll(isDigit)

	// Decimal part
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrBadNumber, "Digits expected after decimal point")
		}
		isInteger = false
	}

	if !isInteger {
		return l.newToken(TokenNumber)
	}

	// Immediate fraction: 1/2
	if l.acceptRune('/') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrBadNumber, "Digits expected in fraction denominator")
		}
		return l.newToken(TokenNumber)
	}

	// Mixed fraction lookahead: "<int> <int>/<int>". Anything else after the
	// whitespace rolls back to the plain integer token.
	mark := l.current
	if l.acceptAll(isSpace) {
		if l.acceptAll(isDigit) && l.acceptRune('/') && l.acceptAll(isDigit) {
			return l.newToken(TokenNumber)
		}
	}
	l.current = mark
	l.width = 0

	return l.newToken(TokenNumber)
}

// scanName reads an identifier from the current position.
// Identifiers match [A-Za-z_][A-Za-z0-9_.]* — the dot allows R-style
// column names such as Sepal.Length.
func (l *Lexer) scanName() Token {
	l.accept(isNameStart)
	l.acceptAll(isNameRune)
	return l.newToken(TokenName)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameRune(r rune) bool {
	return isNameStart(r) || isDigit(r) || r == '.'
}
