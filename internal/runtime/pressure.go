package runtime

// PressureMode is a mutation constraint registered on a named variable
// (spec §4.5).
type PressureMode byte

const (
	PressureNone PressureMode = iota
	PressureNoGrow
	PressureNoShrink
	PressureNoResize
	PressureReadHeavy
)

func (m PressureMode) String() string {
	switch m {
	case PressureNoGrow:
		return "no_grow"
	case PressureNoShrink:
		return "no_shrink"
	case PressureNoResize:
		return "no_resize"
	case PressureReadHeavy:
		return "read_heavy"
	default:
		return ""
	}
}

func ParsePressureMode(s string) (PressureMode, bool) {
	switch s {
	case "no_grow":
		return PressureNoGrow, true
	case "no_shrink":
		return PressureNoShrink, true
	case "no_resize":
		return PressureNoResize, true
	case "read_heavy":
		return PressureReadHeavy, true
	default:
		return PressureNone, false
	}
}

// Pressurize registers mode as a constraint on name, consulted by
// container-mutating opcodes (spec §4.5).
func (r *Runtime) Pressurize(name string, mode PressureMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pressures[name] = mode
}

// Depressurize removes the constraint on name.
func (r *Runtime) Depressurize(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pressures, name)
}

// PressureOf returns the current mode for name, or PressureNone if
// unconstrained.
func (r *Runtime) PressureOf(name string) PressureMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pressures[name]
}

// ContainerDelta describes how a proposed mutation would change a
// container's size, so CheckPressure can be called uniformly by every
// container-mutating opcode (INDEX_SET growing a map, array push/pop,
// ...).
type ContainerDelta struct {
	SizeBefore int
	SizeAfter  int
}

// BindContainer records name as the current binding for a container
// identity (spec §4.5: pressurize/INDEX_SET need a way to resolve a
// bare container value back to the name it was registered under). It
// is called wherever a name is freshly bound to a value, the same
// sites afterStore's name-keyed bookkeeping already hooks. ok should be
// the second return of value.Value.ContainerIdentity; non-container
// values are simply ignored.
func (r *Runtime) BindContainer(name string, id uintptr, ok bool) {
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if oldID, had := r.boundContainerID[name]; had {
		delete(r.containerNames, oldID)
	}
	r.containerNames[id] = name
	r.boundContainerID[name] = id
}

// ContainerName resolves a container identity back to the name it is
// currently bound under, or ok=false if the container was never bound
// to a name (e.g. a container produced by an expression and indexed
// without ever being assigned).
func (r *Runtime) ContainerName(id uintptr) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.containerNames[id]
	return name, ok
}

// CheckPressure rejects a mutation that would violate the pressure mode
// registered for name (spec §4.5). read_heavy never rejects a write —
// it is an advisory hint for implementations that might otherwise
// choose a copy-on-write representation biased for reads; this
// implementation has no such representation choice to make, so
// read_heavy is accepted unconditionally.
func (r *Runtime) CheckPressure(name string, delta ContainerDelta) error {
	mode := r.PressureOf(name)
	switch mode {
	case PressureNoGrow:
		if delta.SizeAfter > delta.SizeBefore {
			return ErrPressureNoGrow
		}
	case PressureNoShrink:
		if delta.SizeAfter < delta.SizeBefore {
			return ErrPressureNoShrink
		}
	case PressureNoResize:
		if delta.SizeAfter != delta.SizeBefore {
			return ErrPressureNoResize
		}
	}
	return nil
}
