package chunk

import (
	"hash/fnv"

	"github.com/lattice-lang/lattice/internal/value"
)

// UpvalueDescriptor is one capture entry of an OP_CLOSURE site (kept in
// Chunk.Upvalues, not inline in Code), telling the VM whether to capture
// a local of the enclosing frame or forward an upvalue of the enclosing
// closure (spec §4.3).
type UpvalueDescriptor struct {
	IsLocal bool
	Index   byte
}

// Chunk is the unit of compiled code shared across all three Lattice
// back-ends (spec §3.3). Its layout is identical in memory and on disk
// (see format.go).
type Chunk struct {
	Name     string // empty for top-level script chunks
	Code     []byte
	Lines    []int32 // parallel to Code, one source line per opcode byte
	Consts   []value.Value
	ConstHashes []uint64 // FNV-1a hash per constant; 0 for non-string constants

	// LocalNames maps a local slot to its source name, diagnostic only.
	LocalNames []string

	// Upvalues[i] holds the descriptors that follow the i-th OP_CLOSURE
	// site, in program order of those sites.
	Upvalues [][]UpvalueDescriptor

	Params      []string
	ParamPhases []value.Phase // Unphased entries are unconstrained
	Defaults    []value.Value // bound to the last len(Defaults) parameters
	Variadic    bool

	constIndex map[string]int // dedups string constants during emission
}

func New(name string) *Chunk {
	return &Chunk{Name: name, constIndex: map[string]int{}}
}

// Emit appends a single opcode byte and returns its offset.
func (c *Chunk) Emit(op OpCode, line int32) int {
	c.Code = append(c.Code, byte(op))
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// EmitByte appends a raw operand byte at the given source line.
func (c *Chunk) EmitByte(b byte, line int32) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// EmitU16 appends a big-endian u16 operand (spec §4.3).
func (c *Chunk) EmitU16(v uint16, line int32) {
	c.EmitByte(byte(v>>8), line)
	c.EmitByte(byte(v), line)
}

// PatchU16 overwrites the u16 operand at offset (used to back-patch
// forward jump targets once the jump destination is known).
func (c *Chunk) PatchU16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// AddConst interns v into the constant pool, deduplicating string
// constants by value the way the compiler's front end is expected to
// (spec §3.3). Non-string constants are never deduplicated since
// structural equality is comparatively expensive and constant pools
// are small.
func (c *Chunk) AddConst(v value.Value) int {
	if v.Variant() == value.VStr {
		if idx, ok := c.constIndex[v.Str()]; ok {
			return idx
		}
		idx := len(c.Consts)
		c.Consts = append(c.Consts, v)
		c.ConstHashes = append(c.ConstHashes, fnv1a(v.Str()))
		c.constIndex[v.Str()] = idx
		return idx
	}
	idx := len(c.Consts)
	c.Consts = append(c.Consts, v)
	c.ConstHashes = append(c.ConstHashes, 0)
	return idx
}

// LineFor returns the source line recorded for the opcode byte at
// offset, or 0 if out of range.
func (c *Chunk) LineFor(offset int) int32 {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

func fnv1a(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
