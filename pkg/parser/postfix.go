package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/token"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// ParsePostfix parses a whitespace-separated reverse Polish expression.
// Operators may be given by symbol (+ - * / ^ **) or by name (sin, pow, ...).
// Operands are pushed left to right, so "a b -" is a - b.
func ParsePostfix(input string, opts ...Option) (*tree.Node, error) {
	o := newOptions(opts)

	var stack []*tree.Node
	col := 1
	for _, field := range strings.Fields(input) {
		col = strings.Index(input[col-1:], field) + col
		tok := token.Token{Literal: field, Pos: token.Position{Line: 1, Column: col, Offset: col - 1}}

		n, err := o.postfixToken(field, &stack)
		if err != nil {
			return nil, &ParseError{Span: tok.Span(), Message: err.Error()}
		}
		stack = append(stack, n)
		col += len(field)
	}

	switch len(stack) {
	case 0:
		return nil, &ParseError{Span: pointSpan(1), Message: ErrEmptyExpression}
	case 1:
		return stack[0], nil
	default:
		return nil, &ParseError{Span: pointSpan(col), Message: fmt.Sprintf(ErrLeftoverOperand, len(stack))}
	}
}

// pointSpan is the empty span at col.
func pointSpan(col int) token.Span {
	pos := token.Position{Line: 1, Column: col, Offset: col - 1}
	return token.Span{Start: pos, End: pos}
}

// postfixToken turns one field into a node, popping operands from stack.
func (o *options) postfixToken(field string, stack *[]*tree.Node) (*tree.Node, error) {
	if v, err := strconv.ParseFloat(field, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if !strings.EqualFold(field, "inf") && !strings.EqualFold(field, "nan") {
			return tree.NewConstantValue(v), nil
		}
	}
	if n, ok := o.leaf(field); ok {
		return n, nil
	}

	v, err := variant.ByName(field)
	if err != nil || v.Arity == 0 {
		return nil, fmt.Errorf(ErrUnknownName, field)
	}
	if len(*stack) < v.Arity {
		return nil, fmt.Errorf(ErrStackUnderflow, field, v.Arity, len(*stack))
	}

	args := (*stack)[len(*stack)-v.Arity:]
	*stack = (*stack)[:len(*stack)-v.Arity]
	return build(v.Kind, args)
}
