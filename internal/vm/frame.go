package vm

import (
	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/value"
)

// CallFrame records everything the dispatch loop needs to resume a
// caller once a call returns (spec §3.4): the chunk being executed,
// the instruction pointer, the base of this call's locals on the
// operand stack, the closure being called (for upvalue resolution),
// and the active try/catch targets for this frame.
type CallFrame struct {
	Chunk    *chunk.Chunk
	IP       int
	SlotBase int
	Closure  *value.Closure

	tryStack []tryHandler
}

type tryHandler struct {
	catchIP    int
	stackDepth int // operand stack depth to restore to before pushing the error
}

func (f *CallFrame) pushTry(catchIP, stackDepth int) {
	f.tryStack = append(f.tryStack, tryHandler{catchIP: catchIP, stackDepth: stackDepth})
}

func (f *CallFrame) popTry() (tryHandler, bool) {
	if len(f.tryStack) == 0 {
		return tryHandler{}, false
	}
	h := f.tryStack[len(f.tryStack)-1]
	f.tryStack = f.tryStack[:len(f.tryStack)-1]
	return h, true
}
