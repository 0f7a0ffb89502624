// Package variant defines the closed set of expression node kinds.
//
// Every kind has one Variant descriptor holding its arity, rendering rule and
// elementwise numeric rule. The set is fixed at compile time; the zero Kind
// is the abstract base and never appears in a live tree.
package variant

import "fmt"

// Kind identifies a node variant.
type Kind uint8

const (
	// KindInvalid is the zero value. It has no rendering or evaluation rule.
	KindInvalid Kind = iota

	// Binary arithmetic
	Add // +
	Sub // -
	Mul // *
	Div // protected division
	Pow // ^

	// Unary functions
	Exp
	Log // protected log
	Sin
	Cos

	// Leaves
	Feature  // x<i>
	Constant // ephemeral random constant

	maxKind
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	Add:         "add",
	Sub:         "sub",
	Mul:         "mul",
	Div:         "div",
	Pow:         "pow",
	Exp:         "exp",
	Log:         "log",
	Sin:         "sin",
	Cos:         "cos",
	Feature:     "feature",
	Constant:    "constant",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < maxKind {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a concrete variant.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < maxKind
}

// IsLeaf reports whether k is a zero-arity kind.
func (k Kind) IsLeaf() bool {
	return k == Feature || k == Constant
}
