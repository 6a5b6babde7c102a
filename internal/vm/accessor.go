package vm

import "github.com/lattice-lang/lattice/internal/value"

// frameAccessor resolves a variable name the way Environment.Get/
// SetExisting would: current call frame's locals first (by the
// chunk's diagnostic local-name table, spec §3.3), then the global
// environment. It is the single runtime.VarAccessor implementation the
// VM hands to package runtime for track/pressurize/bond/seed/grow, so
// those services can operate purely in terms of a variable's name
// without depending on package vm's frame/stack representation.
type frameAccessor struct {
	vm    *VM
	frame *CallFrame
}

func (a frameAccessor) localSlot(name string) (int, bool) {
	if a.frame == nil || a.frame.Chunk == nil {
		return 0, false
	}
	for slot, n := range a.frame.Chunk.LocalNames {
		if n == name {
			return slot, true
		}
	}
	return 0, false
}

func (a frameAccessor) Get(name string) (value.Value, bool) {
	if slot, ok := a.localSlot(name); ok {
		return a.vm.stack.At(a.frame.SlotBase + slot), true
	}
	return a.vm.globals.Get(name)
}

func (a frameAccessor) Set(name string, v value.Value) bool {
	if slot, ok := a.localSlot(name); ok {
		a.vm.stack.SetAt(a.frame.SlotBase+slot, v)
		return true
	}
	return a.vm.globals.SetExisting(name, v)
}
