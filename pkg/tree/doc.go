// Package tree implements the symbolic expression tree.
//
// A Node owns its children exclusively and keeps a non-owning link to its
// parent, so every tree is acyclic and no node is shared. Structural
// operations check their preconditions up front and never leave a tree
// partially mutated when they fail.
//
// Mutating one tree is not synchronized. Distinct trees may be used from
// different goroutines. A constant's lazy value is guarded per constant, and
// the generator a constant draws from (shared by clones) is guarded by the
// Source returned from NewSource.
package tree
