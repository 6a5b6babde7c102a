package extension

import (
	"sort"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/lattice-lang/lattice/internal/value"
)

// Registry is the process-wide loaded-extensions table (spec §5: "the
// extension cache is process-wide"), modeled the same factory-map way
// as internal/native.Registry and tosca/interpreter_registry.go: load
// once, keep the *Extension around forever (library handles are never
// released), enumerate via maps.Keys for stable iteration.
type Registry struct {
	mu     sync.Mutex
	loaded map[string]*Extension
}

func NewRegistry() *Registry {
	return &Registry{loaded: map[string]*Extension{}}
}

// Names returns every loaded extension's name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := maps.Keys(r.loaded)
	sort.Strings(names)
	return names
}

// Get returns the already-loaded extension, if any.
func (r *Registry) Get(name string) (*Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext, ok := r.loaded[name]
	return ext, ok
}

// LoadOnce loads name through Load if it has not been seen before,
// otherwise returns the previously loaded Extension — dlopen is run at
// most once per process per name, matching the library handle being
// "marked as permanently retained" (spec §4.7 step 6).
func (r *Registry) LoadOnce(name string) (*Extension, error) {
	r.mu.Lock()
	if ext, ok := r.loaded[name]; ok {
		r.mu.Unlock()
		return ext, nil
	}
	r.mu.Unlock()

	ext, err := Load(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.loaded[name]; ok {
		return existing, nil
	}
	r.loaded[name] = ext
	return ext, nil
}

// RegistrationMap builds the Map of registered-name -> EXTENSION-marker
// Closure that require_ext returns (spec §4.7 step 5).
func (ext *Extension) RegistrationMap() value.Value {
	m := value.NewOrderedMap()
	for name, fn := range ext.Functions {
		closure := &value.Closure{
			Name:     name,
			Params:   []string{"args"},
			Variadic: true,
			Dispatch: value.Dispatch{Kind: value.DispatchExtension, Fn: fn},
		}
		m.Set(name, value.NewClosure(closure))
	}
	return value.NewMap(m)
}
