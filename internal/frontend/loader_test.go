package frontend

import (
	"testing"

	"github.com/lattice-lang/lattice/internal/chunk"
)

func TestMemoryLoaderRoundTrip(t *testing.T) {
	c := chunk.New("main.lat")
	loader := MemoryLoader{"main.lat": c}

	got, err := loader.LoadChunk("main.lat")
	if err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if got != c {
		t.Fatalf("LoadChunk returned a different chunk than was stored")
	}

	if _, err := loader.LoadChunk("missing.lat"); err != ErrNotFound {
		t.Fatalf("LoadChunk(missing) = %v, want ErrNotFound", err)
	}
}
