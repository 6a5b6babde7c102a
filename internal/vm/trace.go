package vm

import (
	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/value"
)

// trace logs the next instruction about to execute in frame, grounded
// on lfvm's runWithLogging ("<op>, <gas>, <top-of-stack>"): here,
// "<op>, <stack depth>, <top-of-stack>" since the stack VM has no gas
// metering.
func (vm *VM) trace(frame *CallFrame) {
	top := "-empty-"
	if v, err := vm.stack.Peek(); err == nil {
		top = value.Repr(v)
	}
	op := chunk.OpCode(frame.Chunk.Code[frame.IP])
	vm.logger.Printf("%-16s depth=%-4d top=%s\n", op, vm.stack.Len(), top)
}
