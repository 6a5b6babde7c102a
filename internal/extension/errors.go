// Package extension implements the native extension loader (spec §4.7):
// resolving an extension name against a search path, loading the shared
// object via cgo/dlopen (the teacher's own technique in
// interpreter/evmc/evmc_interpreter.go), and exposing the loaded
// library's registered functions as DispatchExtension Closures through
// the opaque-value wrapper ABI.
package extension

import "github.com/lattice-lang/lattice/internal/value"

// Error kinds grouped the way spec §7 groups the VM's own error
// taxonomy, kept distinct from value.ConstError's VM-level set since an
// extension failure is diagnosed before any Closure exists to carry it.
const (
	ErrNotFound       = value.ConstError("lattice: no extension found on the search path")
	ErrLoadFailed     = value.ConstError("lattice: failed to load extension library")
	ErrInitMissing    = value.ConstError("lattice: extension library has no init symbol")
	ErrInitFailed     = value.ConstError("lattice: extension init call failed")
	ErrAlreadyFreed   = value.ConstError("lattice: extension value handle already freed")
	ErrInvalidHandle  = value.ConstError("lattice: invalid extension value handle")
	ErrUnwrapKind     = value.ConstError("lattice: extension value accessor does not match wrapper kind")
)

// evalErrorPrefix is the fixed prefix an extension function uses to
// report a failure as a String return value (spec §4.7's error
// convention) rather than a native Go error, since the C ABI boundary
// has no exception mechanism to cross.
const evalErrorPrefix = "EVAL_ERROR:"
