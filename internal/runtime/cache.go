package runtime

import "github.com/lattice-lang/lattice/internal/value"

// RequireOnce marks path as required and reports whether it was
// already required before this call (spec §4.5: "required_files: set
// of absolute file paths already loaded by require; marked before
// execution so circular requires terminate without re-execution").
// Callers must mark before executing the module's chunk, not after,
// so a require cycle sees its own in-progress entry and stops.
func (r *Runtime) RequireOnce(path string) (alreadyRequired bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.requiredFiles[path] {
		return true
	}
	r.requiredFiles[path] = true
	return false
}

// CacheModule stores a compiled artifact (typically *chunk.Chunk) for
// path in the bounded LRU the way lfvm/converter.go caches converted
// bytecode by hash. The artifact type is opaque to package runtime to
// avoid an import of package chunk purely for caching.
func (r *Runtime) CacheModule(path string, artifact any) {
	r.moduleCache.Add(path, artifact)
}

func (r *Runtime) CachedModule(path string) (any, bool) {
	return r.moduleCache.Get(path)
}

// RequireExtension returns the cached registration map for name if
// already loaded, deep-cloned per spec §4.5 ("re-requests return a
// deep clone of the cached map"); ok is false if name has never been
// loaded, in which case the caller (the VM's require_ext built-in) must
// load it through package extension and call CacheExtension.
func (r *Runtime) RequireExtension(name string) (value.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.loadedExtensions[name]
	if !ok {
		return value.Value{}, false
	}
	return value.DeepClone(m), true
}

func (r *Runtime) CacheExtension(name string, registrations value.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadedExtensions[name] = registrations
}
