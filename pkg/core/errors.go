package core

import "errors"

// Sentinel errors. Callers wrap them with context and test with errors.Is.
var (
	// ErrStructuralPrecondition is returned when a structural operation is
	// asked to do something the tree shape does not allow, such as detaching
	// a node that is not a direct child or attaching a node that already has
	// a parent.
	ErrStructuralPrecondition = errors.New("structural precondition violated")

	// ErrUnimplementedVariant is returned when a node kind has no evaluation
	// or rendering rule. The zero Kind always reports it.
	ErrUnimplementedVariant = errors.New("unimplemented node variant")

	// ErrArityMismatch is returned when a node's child count would not match
	// its declared arity.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrFeatureIndex is returned when a feature leaf references a column
	// the dataset does not have.
	ErrFeatureIndex = errors.New("feature index out of range")

	// ErrShapeMismatch is returned for ragged tables and vectors whose
	// lengths disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrObjectiveLength reports objective vectors of different lengths.
	ErrObjectiveLength = errors.New("objective vectors differ in length")
)
