package testutil

import "fmt"

// SequenceIDs generates predictable question ids for builder tests.
//
// Each call to NewID returns "{prefix}_{n}" with n counting up from 1.
// The same edit script against the same SequenceIDs produces a
// byte-identical schema.
//
// Implements builder.IDGenerator. Not safe for concurrent use; builder
// edits happen on a single goroutine.
type SequenceIDs struct {
	n int
}

// NewSequenceIDs creates a generator starting at 1.
func NewSequenceIDs() *SequenceIDs {
	return &SequenceIDs{}
}

// NewID returns the next id for the given prefix.
func (g *SequenceIDs) NewID(prefix string) string {
	g.n++
	return fmt.Sprintf("%s_%d", prefix, g.n)
}
