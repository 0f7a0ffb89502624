// Package format writes expression trees in alternative notations.
//
// The canonical infix form is tree.Node.Render. This package adds the
// traversal notations (prefix and postfix) and an indented outline that is
// easier to read for deep trees.
package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// Style selects a notation.
type Style string

// Supported notations.
const (
	StyleInfix   Style = "infix"
	StylePostfix Style = "postfix"
	StylePrefix  Style = "prefix"
	StyleOutline Style = "outline"
)

// Styles lists every supported notation.
func Styles() []Style {
	return []Style{StyleInfix, StylePostfix, StylePrefix, StyleOutline}
}

// Format writes n in the requested notation.
func Format(n *tree.Node, style Style) (string, error) {
	switch style {
	case StyleInfix, "":
		return n.Render()
	case StylePostfix:
		return Postfix(n)
	case StylePrefix:
		return Prefix(n)
	case StyleOutline:
		return Outline(n)
	default:
		return "", fmt.Errorf("unknown format %q (want one of %v)", style, Styles())
	}
}

// Postfix writes n in reverse Polish notation, which parser.ParsePostfix
// reads back.
func Postfix(n *tree.Node) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	var out []string
	var visit func(*tree.Node)
	visit = func(m *tree.Node) {
		for _, c := range m.Children() {
			visit(c)
		}
		out = append(out, Label(m))
	}
	visit(n)
	return strings.Join(out, " "), nil
}

// Prefix writes n in Polish notation, one label per node in pre-order.
func Prefix(n *tree.Node) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	nodes := n.Subtree()
	out := make([]string, len(nodes))
	for i, m := range nodes {
		out[i] = Label(m)
	}
	return strings.Join(out, " "), nil
}

// Outline writes one node per line, children indented under their parent.
// Operators carry their height and non-arithmetic depth. Incomplete nodes
// are written as they are, so an outline can show a tree under construction.
func Outline(n *tree.Node) (string, error) {
	if !n.Kind().Valid() {
		_, err := variant.Lookup(n.Kind())
		return "", err
	}
	p := newPrinter()
	p.outline(n)
	return p.String(), nil
}

func (p *Printer) outline(n *tree.Node) {
	p.write(Label(n))
	if !n.IsLeaf() {
		p.write(fmt.Sprintf("  [height=%d nonarith=%d]", n.Height(), n.NonArithmeticDepth()))
		if missing := n.Arity() - n.NumChildren(); missing > 0 {
			p.write(fmt.Sprintf(" (missing %d)", missing))
		}
	}
	p.writeln()

	p.indent()
	for _, c := range n.Children() {
		p.outline(c)
	}
	p.dedent()
}

// Label returns the token that stands for n in prefix and postfix notation.
func Label(n *tree.Node) string {
	switch n.Kind() {
	case variant.Feature:
		i, _ := n.Feature()
		return variant.FormatFeature(i)
	case variant.Constant:
		v, _ := n.Value()
		return variant.FormatConstant(v)
	}
	v, err := variant.Lookup(n.Kind())
	if err != nil {
		return n.Kind().String()
	}
	return v.Symbol
}

// Call writes n in function-call notation, e.g. add(x0, sin(x1)). Unlike the
// canonical infix form it keeps both operands of Pow, so ParseInfix reads it
// back into an identical tree.
func Call(n *tree.Node) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	p := newPrinter()
	p.call(n)
	return strings.TrimSuffix(p.String(), "\n"), nil
}

func (p *Printer) call(n *tree.Node) {
	if n.IsLeaf() {
		p.write(Label(n))
		return
	}
	p.write(variant.MustLookup(n.Kind()).Name)
	p.write("(")
	children := n.Children()
	p.formatList(len(children), func(i int) { p.call(children[i]) }, ", ")
	p.write(")")
}

// Summary holds structural metrics of a tree.
type Summary struct {
	Size               int `json:"size" yaml:"size"`
	Height             int `json:"height" yaml:"height"`
	NonArithmeticDepth int `json:"non_arithmetic_depth" yaml:"non_arithmetic_depth"`
	Constants          int `json:"constants" yaml:"constants"`
	Features           int `json:"features" yaml:"features"`
}

// Summarize computes the structural metrics of n.
func Summarize(n *tree.Node) Summary {
	s := Summary{
		Size:               n.Size(),
		Height:             n.Height(),
		NonArithmeticDepth: n.NonArithmeticDepth(),
	}
	n.Walk(func(m *tree.Node) bool {
		switch m.Kind() {
		case variant.Constant:
			s.Constants++
		case variant.Feature:
			s.Features++
		}
		return true
	})
	return s
}
