package runtime

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lattice-lang/lattice/internal/config"
	"github.com/lattice-lang/lattice/internal/value"
)

// ClosureInvoker calls a Lattice Closure from within the runtime
// services layer — used to fire reactions and evaluate seed contracts
// without package runtime importing package vm (which would form an
// import cycle, since vm already imports runtime for phase-changing
// opcodes). The VM supplies its own call-dispatch as this function
// when constructing a Runtime.
//
// This is the "explicit argument" resolution spec §9's design note
// offers as an alternative to a thread-local current-runtime pointer:
// instead of a package-level goroutine-local variable, each native
// Closure registered against a particular Runtime closes over that
// Runtime directly at registration time (see package vm's
// builtins.go; package native's built-ins need no Runtime), so
// built-ins observe "the current runtime" simply by lexical capture.
type ClosureInvoker func(closure *value.Closure, args []value.Value) (value.Value, error)

// Runtime is the process-wide (per spawned-task-tree) services context
// held by the VM for the duration of a program (spec §4.5).
type Runtime struct {
	mu sync.Mutex

	invoke ClosureInvoker

	tracked   map[string]*TrackedVariable
	pressures map[string]PressureMode
	reactions map[string][]*value.Closure
	bonds     map[string][]BondEntry
	seeds     map[string][]*value.Closure

	requiredFiles    map[string]bool
	loadedExtensions map[string]value.Value
	moduleCache      *lru.Cache[string, any]

	historyCap int // 0 means unbounded, config.Config.HistoryCap

	// containerNames/boundContainerID let a container-mutating opcode
	// resolve the name pressurize() was registered against from the
	// container value alone (see ContainerName/BindContainer in
	// pressure.go).
	containerNames   map[uintptr]string
	boundContainerID map[string]uintptr
}

// moduleCacheCapacity bounds the compiled-chunk cache the same way the
// teacher bounds its converted-bytecode cache in
// lfvm/converter.go (github.com/hashicorp/golang-lru/v2).
const moduleCacheCapacity = 4096

func New(invoke ClosureInvoker) *Runtime {
	return NewWithConfig(invoke, config.FromEnv())
}

// NewWithConfig is New with explicit tunables, for embedders and tests
// that don't want the process environment consulted (see
// internal/config).
func NewWithConfig(invoke ClosureInvoker, cfg config.Config) *Runtime {
	cache, err := lru.New[string, any](moduleCacheCapacity)
	if err != nil {
		panic(err) // capacity is a compile-time constant; this cannot fail
	}
	return &Runtime{
		invoke:           invoke,
		tracked:          map[string]*TrackedVariable{},
		pressures:        map[string]PressureMode{},
		reactions:        map[string][]*value.Closure{},
		bonds:            map[string][]BondEntry{},
		seeds:            map[string][]*value.Closure{},
		requiredFiles:    map[string]bool{},
		loadedExtensions: map[string]value.Value{},
		moduleCache:      cache,
		historyCap:       cfg.HistoryCap,
		containerNames:   map[uintptr]string{},
		boundContainerID: map[string]uintptr{},
	}
}
