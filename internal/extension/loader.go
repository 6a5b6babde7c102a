package extension

/*
#cgo !windows LDFLAGS: -ldl -rdynamic
#cgo windows LDFLAGS: -lkernel32

#include <stdint.h>
#include <stdlib.h>
#if !defined(_WIN32)
#include <dlfcn.h>
#else
#include <windows.h>
#endif

typedef uint64_t lattice_handle;
typedef void (*lattice_ext_init_fn)(void *ctx);
typedef lattice_handle (*lattice_ext_fn)(void *table_ctx, lattice_handle *args, int argc);

// lattice_ext_register_cb is the single host symbol an extension's init
// function calls back into (spec §4.7 step 4): it must be visible in
// the host's dynamic symbol table, hence -rdynamic above.
extern void lattice_ext_register_cb(void *ctx, const char *name, void *fn);

static void *lattice_dlopen(const char *path) {
#if !defined(_WIN32)
	return dlopen(path, RTLD_NOW | RTLD_GLOBAL);
#else
	return (void *)LoadLibraryA(path);
#endif
}

static void *lattice_dlsym(void *handle, const char *sym) {
#if !defined(_WIN32)
	return dlsym(handle, sym);
#else
	return (void *)GetProcAddress((HMODULE)handle, sym);
#endif
}

static const char *lattice_dlerror(void) {
#if !defined(_WIN32)
	return dlerror();
#else
	return "LoadLibrary failed";
#endif
}

static void lattice_call_init(void *fn, void *ctx) {
	((lattice_ext_init_fn)fn)(ctx);
}

static lattice_handle lattice_call_ext_fn(void *fn, void *table_ctx, lattice_handle *args, int argc) {
	return ((lattice_ext_fn)fn)(table_ctx, args, argc);
}
*/
import "C"

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/cgo"
	"unsafe"

	"github.com/lattice-lang/lattice/internal/value"
)

const initSymbol = "lattice_ext_init"

// Extension is a loaded shared object's registered function table (spec
// §4.7 step 5): one DispatchExtension-ready NativeFunc per registered
// name.
type Extension struct {
	Name      string
	Functions map[string]value.NativeFunc
	handle    unsafe.Pointer // retained permanently (step 6), never dlclose'd
}

// searchPaths enumerates the candidate library locations for name in
// priority order (spec §4.7 step 1).
func searchPaths(name string) []string {
	exts := []string{".so", ".dylib"}
	var paths []string
	for _, ext := range exts {
		paths = append(paths, filepath.Join("extensions", name+ext))
	}
	for _, ext := range exts {
		paths = append(paths, filepath.Join("extensions", name, name+ext))
	}
	if home := os.Getenv("HOME"); home != "" {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(home, ".lattice", "ext", name+ext))
		}
	}
	if extPath := os.Getenv("LATTICE_EXT_PATH"); extPath != "" {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(extPath, name+ext))
		}
	}
	return paths
}

func resolve(name string) (string, error) {
	for _, p := range searchPaths(name) {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", ErrNotFound
}

// registrationContext accumulates (name, function pointer) pairs as the
// extension's init function calls back via lattice_ext_register_cb.
// Passed across the cgo boundary as a cgo.Handle so the C side never
// holds a raw Go pointer.
type registrationContext struct {
	fns map[string]unsafe.Pointer
}

//export lattice_ext_register_cb
func lattice_ext_register_cb(ctx unsafe.Pointer, name *C.char, fn unsafe.Pointer) {
	h := *(*cgo.Handle)(ctx)
	rc := h.Value().(*registrationContext)
	rc.fns[C.GoString(name)] = fn
}

// Load resolves name against the search path, dlopens the library,
// looks up its init symbol, and drives the registration handshake (spec
// §4.7 steps 1-6).
func Load(name string) (*Extension, error) {
	path, err := resolve(name)
	if err != nil {
		return nil, err
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	handle := C.lattice_dlopen(cPath)
	if handle == nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrLoadFailed, path, C.GoString(C.lattice_dlerror()))
	}

	cSym := C.CString(initSymbol)
	defer C.free(unsafe.Pointer(cSym))
	initFn := C.lattice_dlsym(handle, cSym)
	if initFn == nil {
		return nil, fmt.Errorf("%w: %s has no %s symbol", ErrInitMissing, path, initSymbol)
	}

	ctx := &registrationContext{fns: map[string]unsafe.Pointer{}}
	h := cgo.NewHandle(ctx)
	defer h.Delete()

	C.lattice_call_init(initFn, unsafe.Pointer(&h))

	ext := &Extension{Name: name, Functions: map[string]value.NativeFunc{}, handle: handle}
	for fnName, fnPtr := range ctx.fns {
		ext.Functions[fnName] = makeExtensionFunc(fnPtr)
	}
	return ext, nil
}

// makeExtensionFunc adapts a raw C function pointer registered by the
// extension into a value.NativeFunc: wrap host args into a fresh table,
// call across the cgo boundary, and unwrap (or, per the EVAL_ERROR:
// convention, reject) the result. Handles are not freed one by one: the
// whole per-call table is dropped when the call returns.
func makeExtensionFunc(fnPtr unsafe.Pointer) value.NativeFunc {
	return func(args []value.Value) (value.Value, error) {
		t := newTable()
		cArgs := make([]C.lattice_handle, len(args))
		for i, a := range args {
			cArgs[i] = C.lattice_handle(t.wrap(a))
		}

		th := cgo.NewHandle(t)
		defer th.Delete()

		var argPtr *C.lattice_handle
		if len(cArgs) > 0 {
			argPtr = &cArgs[0]
		}
		resultHandle := C.lattice_call_ext_fn(fnPtr, unsafe.Pointer(&th), argPtr, C.int(len(cArgs)))

		result, err := t.unwrap(Handle(resultHandle))
		if err != nil {
			return value.Value{}, err
		}
		if result.Variant() == value.VStr {
			if msg, ok := evalError(result.Str()); ok {
				return value.Value{}, fmt.Errorf("%s", msg)
			}
		}
		return value.DeepClone(result), nil
	}
}
