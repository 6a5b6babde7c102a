package value

// Environment is a lexically-scoped frame mapping names to Values,
// chained to an optional parent (spec §3.2). Closures capture the
// Environment live at their point of creation; captured environments
// outlive the defining scope, which is why this type is heap-allocated
// and reference-held rather than stack-embedded.
type Environment struct {
	parent *Environment
	vars   map[string]Value
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: make(map[string]Value)}
}

// Define adds a binding in this frame, shadowing any binding of the
// same name in an outer frame.
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = v
}

// Get walks the parent chain and returns the innermost binding.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// SetExisting walks the parent chain and mutates the innermost frame
// that holds name. It fails if no binding exists anywhere on the
// chain — there is no implicit auto-vivification.
func (e *Environment) SetExisting(name string, v Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return true
		}
	}
	return false
}

// Parent returns the enclosing frame, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Free releases this frame's bindings. Environments captured by a
// surviving Closure must not be freed — callers are responsible for
// that lifetime tracking (typically via the VM's upvalue-closing
// discipline, see package vm).
func (e *Environment) Free() {
	e.vars = nil
	e.parent = nil
}
