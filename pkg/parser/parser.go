// Package parser reads symbolic expressions into trees.
//
// # Infix grammar
//
//	expr    → term (('+' | '-') term)*
//	term    → power (('*' | '/') power)*
//	power   → unary (('**' | '^') power)?
//	unary   → '-' (NUMBER | 'inf') | primary
//	primary → NUMBER | FEATURE | 'erc' | 'inf' | 'nan'
//	        | NAME '(' expr (',' expr)* ')'
//	        | '(' expr ')'
//
// FEATURE is x<i> or a configured column name. NAME is any operator variant
// name (sin, add, pow, ...). Numeric literals become frozen constants; erc
// becomes an unfrozen ephemeral constant drawn from the configured source.
//
// The canonical rendering produced by tree.Node.Render parses back into an
// equivalent tree, with the exception of Pow whose rendering repeats its base.
//
// # Postfix
//
// ParsePostfix reads whitespace-separated reverse Polish tokens such as
// "x0 2 ^ sin x0 x1 * +". Each operator pops as many operands as its arity.
package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/token"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// Option configures parsing.
type Option func(*options)

type options struct {
	src     tree.Source
	columns map[string]int
}

// WithSource sets the source that erc constants draw from.
func WithSource(src tree.Source) Option {
	return func(o *options) { o.src = src }
}

// WithColumns lets identifiers equal to a column name stand for that feature.
// Empty names are ignored.
func WithColumns(names []string) Option {
	return func(o *options) {
		if o.columns == nil {
			o.columns = make(map[string]int, len(names))
		}
		for i, name := range names {
			if name != "" {
				o.columns[name] = i
			}
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// leaf resolves an identifier that stands on its own.
func (o *options) leaf(name string) (*tree.Node, bool) {
	if i, ok := o.columns[name]; ok {
		return tree.NewFeature(i), true
	}
	lower := strings.ToLower(name)
	switch lower {
	case "erc":
		return tree.NewConstant(o.src), true
	case "inf":
		return tree.NewConstantValue(math.Inf(1)), true
	case "nan":
		return tree.NewConstantValue(math.NaN()), true
	}
	if i, ok := featureIndex(lower); ok {
		return tree.NewFeature(i), true
	}
	return nil, false
}

// featureIndex parses x<digits>.
func featureIndex(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'x' {
		return 0, false
	}
	i, err := strconv.Atoi(name[1:])
	if err != nil || i < 0 || name[1] == '+' {
		return 0, false
	}
	return i, true
}

// Parser is a recursive descent parser for infix expressions.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	errors []error
	opts   *options
}

// NewParser creates a parser for the given input.
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		opts:  newOptions(opts),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// ParseInfix parses an infix expression into a new tree root.
func ParseInfix(input string, opts ...Option) (*tree.Node, error) {
	p := NewParser(input, opts...)
	if p.check(token.EOF) {
		return nil, &ParseError{Span: p.token.Span(), Message: ErrEmptyExpression}
	}
	n := p.parseExpr()
	if len(p.errors) == 0 && !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token, "end of expression"))
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return n, nil
}

// MustParseInfix is like ParseInfix but panics on error.
func MustParseInfix(input string, opts ...Option) *tree.Node {
	n, err := ParseInfix(input, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token or records an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.match(t) {
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token, t))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Span: p.token.Span(), Message: msg})
}

// err returns the first lexical or syntax error.
func (p *Parser) err() error {
	if errs := p.lexer.Errors(); len(errs) > 0 {
		return errs[0]
	}
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0 || len(p.lexer.Errors()) > 0
}

// ---------- Grammar ----------

func (p *Parser) parseExpr() *tree.Node {
	left := p.parseTerm()
	for !p.failed() && (p.check(token.PLUS) || p.check(token.MINUS)) {
		kind := variant.Add
		if p.check(token.MINUS) {
			kind = variant.Sub
		}
		p.nextToken()
		left = p.combine(kind, left, p.parseTerm())
	}
	return left
}

func (p *Parser) parseTerm() *tree.Node {
	left := p.parsePower()
	for !p.failed() && (p.check(token.STAR) || p.check(token.SLASH)) {
		kind := variant.Mul
		if p.check(token.SLASH) {
			kind = variant.Div
		}
		p.nextToken()
		left = p.combine(kind, left, p.parsePower())
	}
	return left
}

func (p *Parser) parsePower() *tree.Node {
	base := p.parseUnary()
	if !p.failed() && (p.check(token.DSTAR) || p.check(token.CARET)) {
		p.nextToken()
		return p.combine(variant.Pow, base, p.parsePower())
	}
	return base
}

func (p *Parser) parseUnary() *tree.Node {
	if !p.check(token.MINUS) {
		return p.parsePrimary()
	}
	p.nextToken()
	switch {
	case p.check(token.NUMBER):
		v, ok := p.number()
		if !ok {
			return nil
		}
		return tree.NewConstantValue(-v)
	case p.check(token.IDENT) && strings.EqualFold(p.token.Literal, "inf"):
		p.nextToken()
		return tree.NewConstantValue(math.Inf(-1))
	default:
		p.addError(ErrUnaryMinus)
		return nil
	}
}

func (p *Parser) parsePrimary() *tree.Node {
	switch p.token.Type {
	case token.NUMBER:
		v, ok := p.number()
		if !ok {
			return nil
		}
		return tree.NewConstantValue(v)

	case token.IDENT:
		if p.peek.Type == token.LPAREN {
			return p.parseCall()
		}
		name := p.token.Literal
		n, ok := p.opts.leaf(name)
		if !ok {
			p.addError(fmt.Sprintf(ErrUnknownName, name))
			return nil
		}
		p.nextToken()
		return n

	case token.LPAREN:
		p.nextToken()
		n := p.parseExpr()
		if p.failed() {
			return nil
		}
		p.expect(token.RPAREN)
		return n

	default:
		if p.token.Type.IsOperator() {
			p.addError(fmt.Sprintf(ErrMissingOperand, p.token.Literal))
			return nil
		}
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token, "operand"))
		return nil
	}
}

// parseCall parses NAME '(' expr (',' expr)* ')'.
func (p *Parser) parseCall() *tree.Node {
	name := p.token.Literal
	v, err := variant.ByName(name)
	if err != nil || v.Arity == 0 {
		p.addError(fmt.Sprintf(ErrUnknownName, name))
		return nil
	}
	p.nextToken() // name
	p.nextToken() // (

	var args []*tree.Node
	for {
		arg := p.parseExpr()
		if p.failed() {
			return nil
		}
		args = append(args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if len(args) != v.Arity {
		p.addError(fmt.Sprintf(ErrArgumentCount, v.Name, v.Arity, len(args)))
		return nil
	}
	return p.combine(v.Kind, args...)
}

func (p *Parser) number() (float64, bool) {
	lit := p.token.Literal
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.addError(fmt.Sprintf(ErrInvalidNumber, lit))
		return 0, false
	}
	p.nextToken()
	return v, true
}

// combine builds an operator node over already parsed operands.
func (p *Parser) combine(kind variant.Kind, args ...*tree.Node) *tree.Node {
	if p.failed() {
		return nil
	}
	n, err := build(kind, args)
	if err != nil {
		p.addError(err.Error())
		return nil
	}
	return n
}

func build(kind variant.Kind, args []*tree.Node) (*tree.Node, error) {
	n, err := tree.New(kind)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		if err := n.AppendChild(a); err != nil {
			return nil, err
		}
	}
	return n, nil
}
