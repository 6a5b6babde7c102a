package value

// DispatchKind distinguishes how a Closure is invoked. The reference
// design distinguished compiled/native/extension closures by sentinel
// marker values punned into the default-values field; this
// implementation follows spec §9's design note and uses an explicit
// tagged union instead.
type DispatchKind uint8

const (
	DispatchCompiled DispatchKind = iota
	DispatchNative
	DispatchExtension
)

// NativeFunc is the shape every native built-in and every unwrapped
// extension function conforms to once registered with the VM. It takes
// no Runtime parameter and there is no thread-local lookup: a built-in
// that needs the Runtime captures it lexically when it is defined (see
// package vm's builtins.go).
type NativeFunc func(args []Value) (Value, error)

// Dispatch carries exactly the payload relevant to its Kind.
type Dispatch struct {
	Kind DispatchKind
	// Chunk is the opaque compiled-body reference for DispatchCompiled
	// closures. It is typed any because package value must not import
	// package chunk (chunk's constant pool holds Values, so the
	// dependency only runs the other way); the VM downcasts it.
	Chunk any
	// Fn is the callable for DispatchNative and DispatchExtension
	// closures. For extensions, the extension loader is responsible for
	// wrapping/unwrapping through the opaque ABI before and after
	// invoking the loaded library's function pointer; by the time a
	// Dispatch reaches this struct the boundary has already been
	// crossed.
	Fn NativeFunc
}

// Closure is the single function-like value for compiled scripts,
// built-ins, and loaded extensions (spec §3.1, §4.6).
type Closure struct {
	Name        string
	Params      []string
	ParamPhases []Phase // per-parameter declared phase constraint; Unphased means unconstrained
	Defaults    []Value // default values bound to the last len(Defaults) parameters
	Variadic    bool
	Env         *Environment // captured defining environment; only meaningful for a tree-walking back-end, unused by the stack VM
	// Upvalues holds the stack VM's captured cells for a DispatchCompiled
	// closure, one per UpvalueDescriptor emitted after its OP_CLOSURE site
	// (spec §3.5). Opaque *vm.Upvalue behind any, the same way Dispatch.Chunk
	// is opaque *chunk.Chunk — package value must not import package vm.
	Upvalues []any
	Dispatch Dispatch
}

func (c *Closure) Arity() int { return len(c.Params) }
