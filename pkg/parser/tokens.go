package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber // 2, 1.5, 1/2, 1 1/2
	TokenName   // identifier: x1, Sepal.Length, log

	// Grouping symbols
	TokenParenOpen  // (
	TokenParenClose // )
	TokenComma      // ,

	// Operators
	TokenTilde // ~
	TokenPlus  // +
	TokenMinus // -
	TokenColon // :
	TokenStar  // *
	TokenCaret // ^
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenNumber:
		return "(number)"
	case TokenName:
		return "(name)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenComma:
		return ","
	case TokenTilde:
		return "~"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenColon:
		return ":"
	case TokenStar:
		return "*"
	case TokenCaret:
		return "^"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in a formula string.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal value of the token
	Position int       // Starting position in the input string
}

// symbols maps single-character symbols to token types.
var symbols = [...]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	',': TokenComma,
	'~': TokenTilde,
	'+': TokenPlus,
	'-': TokenMinus,
	':': TokenColon,
	'*': TokenStar,
	'^': TokenCaret,
}

const symbolCount = rune(len(symbols))

// lookupSymbol returns the token type for a single-character symbol.
// Returns 0 if the rune is not a valid symbol.
func lookupSymbol(r rune) TokenType {
	if r < 0 || r >= symbolCount {
		return 0
	}
	return symbols[r]
}
