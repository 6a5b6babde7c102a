// Package native implements the native-dispatch protocol (spec §4.6):
// the registration contract C-style built-ins are defined against, and
// a small standard library of built-ins that exercises it end to end.
package native

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/lattice-lang/lattice/internal/value"
)

// Builtin is a registered native function together with the
// zero-parameter variadic signature spec §4.6 mandates for built-ins
// (the parameter name is a placeholder; built-ins read args from the
// argument buffer by index rather than by name).
type Builtin struct {
	Name string
	Fn   value.NativeFunc
}

// Registry is a factory-map registration point modeled on
// go/tosca/interpreter_registry.go: implementations register
// themselves (here, built-in functions) under a name, and callers look
// them up or enumerate them via maps.Keys the same way the teacher
// enumerates registered interpreters.
type Registry struct {
	mu       sync.Mutex
	builtins map[string]Builtin
}

func NewRegistry() *Registry {
	return &Registry{builtins: map[string]Builtin{}}
}

func (r *Registry) Register(b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[b.Name] = b
}

func (r *Registry) Lookup(name string) (Builtin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.builtins[name]
	return b, ok
}

// Names returns every registered built-in name, sorted for stable
// iteration (maps.Keys order is unspecified).
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := maps.Keys(r.builtins)
	sort.Strings(names)
	return names
}

// DefineAll installs every registered built-in into env as a
// DispatchNative Closure, matching spec §4.6's registration contract:
// "every built-in is defined in the top-level environment as a Closure
// with the NATIVE marker [here: DispatchNative], a zero-parameter
// variadic signature, and the native function pointer."
func (r *Registry) DefineAll(env *value.Environment) {
	for _, name := range r.Names() {
		b, _ := r.Lookup(name)
		closure := &value.Closure{
			Name:     b.Name,
			Params:   []string{"args"},
			Variadic: true,
			Dispatch: value.Dispatch{Kind: value.DispatchNative, Fn: b.Fn},
		}
		env.Define(b.Name, value.NewClosure(closure))
	}
}

// ArgError reports that a built-in was called with an unusable
// argument list — wrong count or wrong variant — the way a native
// built-in signals failure per spec §4.6 ("they report errors by
// setting runtime.error"): here, simply by returning a Go error, which
// the VM's native-dispatch path converts into the VM's
// error-propagation state.
func ArgError(builtin string, want string, got []value.Value) error {
	return fmt.Errorf("%s: expected %s, got %d argument(s)", builtin, want, len(got))
}
