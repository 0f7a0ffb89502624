// Package core defines the shared language of symtree.
//
// This package contains:
//   - Sentinel errors shared by the tree engine, evaluator and comparator
//   - The immutable numeric Dataset evaluated by expression trees
//   - Caller-owned bookkeeping types (Fitness, LinearScaling)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
