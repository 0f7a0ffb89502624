package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/token"
)

// ParseError is a syntax error covering the offending token.
type ParseError struct {
	Span    token.Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.Span.Start.Column, e.Message)
}

// Marker returns input with a second line of carets under the offending
// token. An empty span is marked with a single caret.
func (e *ParseError) Marker(input string) string {
	span := e.Span
	if !span.IsValid() {
		return input
	}
	if span.End.Offset <= span.Start.Offset {
		span.End.Offset = span.Start.Offset + 1
	}

	var b strings.Builder
	b.WriteString(input)
	b.WriteByte('\n')
	for i := 0; i < span.End.Offset && i <= len(input); i++ {
		if span.Contains(i) {
			b.WriteByte('^')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at column %d: %s", e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken = "unexpected token %s, expected %s"
	ErrInvalidNumber   = "invalid number literal %q"
	ErrUnknownName     = "unknown name %q"
	ErrArgumentCount   = "%s takes %d argument(s), got %d"
	ErrStackUnderflow  = "%s needs %d operand(s), stack has %d"
	ErrLeftoverOperand = "expression leaves %d operands on the stack"
	ErrEmptyExpression = "empty expression"
	ErrUnaryMinus      = "unary minus is only supported before a number"
	ErrMissingOperand  = "operator %s is missing its left operand"
)
