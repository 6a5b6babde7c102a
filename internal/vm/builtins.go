package vm

import (
	"fmt"

	"github.com/lattice-lang/lattice/internal/chunk"
	"github.com/lattice-lang/lattice/internal/runtime"
	"github.com/lattice-lang/lattice/internal/value"
)

// defineRuntimeBuiltins installs the name-keyed phase-service surface
// (spec §4.5: track/rewind/phases, pressurize/depressurize, bond, seed,
// grow) plus module loading (require, load_bytecode). These cannot be
// ordinary package native built-ins because they need the VM's own
// Runtime and the calling frame's bindings — each is instead a Go
// closure capturing vm directly, the same lexical-capture resolution
// Runtime.ClosureInvoker documents for the thread-local design note.
func (vm *VM) defineRuntimeBuiltins() {
	define := func(name string, arity int, fn value.NativeFunc) {
		params := make([]string, arity)
		for i := range params {
			params[i] = fmt.Sprintf("arg%d", i)
		}
		vm.globals.Define(name, value.NewClosure(&value.Closure{
			Name:     name,
			Params:   params,
			Dispatch: value.Dispatch{Kind: value.DispatchNative, Fn: fn},
		}))
	}

	define("track", 1, func(args []value.Value) (value.Value, error) {
		name := args[0].Str()
		acc := frameAccessor{vm, vm.currentFrame()}
		cur, ok := acc.Get(name)
		if !ok {
			return value.Value{}, runtime.ErrNoSuchVariable
		}
		vm.rt.Track(name, cur, 0, "")
		return value.NewNil(), nil
	})

	rewind := func(args []value.Value) (value.Value, error) {
		return vm.rt.Rewind(args[0].Str(), int(args[1].Int())), nil
	}
	define("rewind", 2, rewind)

	phases := func(args []value.Value) (value.Value, error) {
		return vm.rt.Phases(args[0].Str()), nil
	}
	define("phases", 1, phases)
	define("history", 1, phases)

	define("pressurize", 2, func(args []value.Value) (value.Value, error) {
		mode, ok := runtime.ParsePressureMode(args[1].Str())
		if !ok {
			return value.Value{}, runtime.ErrUnknownPressure
		}
		vm.rt.Pressurize(args[0].Str(), mode)
		return value.NewNil(), nil
	})
	define("depressurize", 1, func(args []value.Value) (value.Value, error) {
		vm.rt.Depressurize(args[0].Str())
		return value.NewNil(), nil
	})

	define("bond", 2, func(args []value.Value) (value.Value, error) {
		deps := args[1].Array()
		entries := make([]runtime.BondEntry, 0, len(deps))
		for _, d := range deps {
			m := d.Map()
			if m == nil {
				return value.Value{}, value.ErrTypeError
			}
			depName, _ := m.Get("dependency")
			strategy, _ := m.Get("strategy")
			strat, ok := runtime.ParseBondStrategy(strategy.Str())
			if !ok {
				return value.Value{}, fmt.Errorf("bond: unknown strategy %q", strategy.Str())
			}
			entries = append(entries, runtime.BondEntry{Dependency: depName.Str(), Strategy: strat})
		}
		vm.rt.Bond(args[0].Str(), entries)
		return value.NewNil(), nil
	})

	define("seed", 2, func(args []value.Value) (value.Value, error) {
		if args[1].Variant() != value.VClosure || args[1].ClosureVal() == nil {
			return value.Value{}, ErrNotCallable
		}
		vm.rt.Seed(args[0].Str(), args[1].ClosureVal())
		return value.NewNil(), nil
	})

	define("grow", 1, func(args []value.Value) (value.Value, error) {
		acc := frameAccessor{vm, vm.currentFrame()}
		return vm.rt.Grow(args[0].Str(), acc)
	})

	define("require", 1, func(args []value.Value) (value.Value, error) {
		return vm.require(args[0].Str())
	})
	define("load_bytecode", 1, func(args []value.Value) (value.Value, error) {
		return vm.loadBytecode(args[0].Buffer())
	})
	define("require_ext", 1, func(args []value.Value) (value.Value, error) {
		return vm.requireExt(args[0].Str())
	})
}

// requireExt loads a native extension at most once per process (spec
// §4.5/§4.7): the Runtime's extension cache is consulted first, falling
// through to extension.Registry.LoadOnce (which itself dlopens at most
// once) only on the first request for name.
func (vm *VM) requireExt(name string) (value.Value, error) {
	if cached, ok := vm.rt.RequireExtension(name); ok {
		return cached, nil
	}
	ext, err := vm.exts.LoadOnce(name)
	if err != nil {
		return value.Value{}, err
	}
	registrations := ext.RegistrationMap()
	vm.rt.CacheExtension(name, registrations)
	return value.DeepClone(registrations), nil
}

// require loads path at most once (spec §4.5): a second call returns
// the cached module's last top-level value, deep-cloned via
// RequireExtension-style reuse of the module cache.
func (vm *VM) require(path string) (value.Value, error) {
	if vm.loader == nil {
		return value.Value{}, fmt.Errorf("require(%q): no module loader installed", path)
	}
	if vm.rt.RequireOnce(path) {
		if cached, ok := vm.rt.CachedModule(path); ok {
			if v, ok := cached.(value.Value); ok {
				return value.DeepClone(v), nil
			}
		}
		return value.NewNil(), nil
	}
	c, err := vm.loader.LoadChunk(path)
	if err != nil {
		return value.Value{}, err
	}
	vm.chunks = append(vm.chunks, c)
	result, err := vm.runModule(c)
	if err != nil {
		return value.Value{}, err
	}
	vm.rt.CacheModule(path, result)
	return result, nil
}

// loadBytecode deserializes a persisted chunk (spec §6) and returns it
// as a callable zero-argument Closure, tracked alongside every other
// chunk this VM has loaded.
func (vm *VM) loadBytecode(data []byte) (value.Value, error) {
	c, err := chunk.Load(data)
	if err != nil {
		return value.Value{}, err
	}
	vm.chunks = append(vm.chunks, c)
	return value.NewClosure(&value.Closure{
		Name:     c.Name,
		Dispatch: value.Dispatch{Kind: value.DispatchCompiled, Chunk: c},
	}), nil
}

// runModule executes c as a nested call with no arguments, the way
// require() evaluates a freshly loaded module body for its top-level
// value.
func (vm *VM) runModule(c *chunk.Chunk) (value.Value, error) {
	closure := &value.Closure{Name: c.Name, Dispatch: value.Dispatch{Kind: value.DispatchCompiled, Chunk: c}}
	return vm.callSync(value.NewClosure(closure), nil)
}
