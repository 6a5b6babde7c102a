// Package frontend defines the boundary between a Lattice front end
// (parser/compiler, out of scope per spec §1) and the back-ends that
// consume its output: a compiled Chunk.
package frontend

import (
	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/value"
)

// Loader resolves a require() path to a compiled Chunk. Production
// front ends implement this by parsing and compiling source text found
// at path; tests and embedders that already hold compiled bytecode can
// satisfy it trivially (see MemoryLoader).
type Loader interface {
	LoadChunk(path string) (*chunk.Chunk, error)
}

// MemoryLoader is an in-memory Loader keyed by path, used by tests and
// by hosts that pre-compile every module up front.
type MemoryLoader map[string]*chunk.Chunk

func (m MemoryLoader) LoadChunk(path string) (*chunk.Chunk, error) {
	c, ok := m[path]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

const ErrNotFound = value.ConstError("lattice: no module at that path")
