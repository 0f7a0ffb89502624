// Package token defines the lexical tokens of symbolic expressions.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads clearly at call sites
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // x0, sin, erc
	NUMBER // 2, 2.5, 1e-3

	// Operators
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	CARET  // ^
	DSTAR  // **
	LPAREN // (
	RPAREN // )
	COMMA  // ,
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	CARET:   "^",
	DSTAR:   "**",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
}

// String returns the display form of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int32(t))
}

// IsOperator reports whether t is a binary operator token.
func (t TokenType) IsOperator() bool {
	switch t {
	case PLUS, MINUS, STAR, SLASH, CARET, DSTAR:
		return true
	}
	return false
}

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Span returns the source range the token covers. Tokens never span lines.
func (t Token) Span() Span {
	end := t.Pos
	end.Column += len(t.Literal)
	end.Offset += len(t.Literal)
	return Span{Start: t.Pos, End: end}
}

// String returns a debug representation of the token.
func (t Token) String() string {
	switch t.Type {
	case IDENT, NUMBER, ILLEGAL:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}
