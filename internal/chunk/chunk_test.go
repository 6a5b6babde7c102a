package chunk

import (
	"testing"

	"github.com/lattice-lang/lattice/internal/value"
)

func TestAddConstDedupesStrings(t *testing.T) {
	c := New("main")
	a := c.AddConst(value.NewStr("hello"))
	b := c.AddConst(value.NewStr("hello"))
	if a != b {
		t.Fatalf("identical string constants should share a pool slot: %d != %d", a, b)
	}
	if c.ConstHashes[a] == 0 {
		t.Fatalf("string constants must have a nonzero FNV-1a hash")
	}
}

func TestAddConstDoesNotDedupeNonStrings(t *testing.T) {
	c := New("main")
	a := c.AddConst(value.NewInt(1))
	b := c.AddConst(value.NewInt(1))
	if a == b {
		t.Fatalf("non-string constants are not deduplicated")
	}
	if c.ConstHashes[a] != 0 || c.ConstHashes[b] != 0 {
		t.Fatalf("non-string constants must carry a zero hash")
	}
}

func TestEmitAndLineTable(t *testing.T) {
	c := New("main")
	off := c.Emit(OP_CONST, 10)
	c.EmitU16(0, 10)
	c.Emit(OP_RETURN, 11)

	if c.LineFor(off) != 10 {
		t.Fatalf("line table mismatch at CONST")
	}
	if c.LineFor(len(c.Code)-1) != 11 {
		t.Fatalf("line table mismatch at RETURN")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New("fact")
	c.Params = []string{"n"}
	c.ParamPhases = []value.Phase{value.Fluid}
	c.Defaults = []value.Value{value.NewInt(1)}
	c.Variadic = false
	c.LocalNames = []string{"n"}
	idx := c.AddConst(value.NewInt(3628800))
	c.Emit(OP_CONST, 1)
	c.EmitU16(uint16(idx), 1)
	c.Emit(OP_RETURN, 1)

	data, err := Save(c)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != c.Name {
		t.Fatalf("name mismatch: %q != %q", loaded.Name, c.Name)
	}
	if len(loaded.Code) != len(c.Code) {
		t.Fatalf("code length mismatch")
	}
	if !value.Equals(loaded.Consts[0], c.Consts[0]) {
		t.Fatalf("constant mismatch")
	}
	if loaded.Variadic != c.Variadic {
		t.Fatalf("variadic flag mismatch")
	}
	if len(loaded.ParamPhases) != 1 || loaded.ParamPhases[0] != value.Fluid {
		t.Fatalf("param phase constraint not round-tripped")
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	c := New("x")
	data, _ := Save(c)
	// Corrupt the version field (immediately after the 4-byte magic).
	data[4] = 0xFF
	if _, err := Load(data); err != ErrVersionMismatch {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := Load([]byte("not a chunk")); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}
