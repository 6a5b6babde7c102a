package runtime

import "github.com/lattice-lang/lattice/internal/value"

// Seed accumulates a precondition contract for name (spec §3.7, §4.5).
// Seeds are validated atomically when grow(name) is invoked.
func (r *Runtime) Seed(name string, contract *value.Closure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds[name] = append(r.seeds[name], contract)
}

// Grow validates every seed registered on name in registration order,
// each against a fresh deep clone of the current value. On success it
// consumes all seeds, freezes the value, records history, fires the
// crystal reaction, and triggers the freeze cascade (spec §4.5). On
// failure, the offending seed is consumed along with every seed
// already validated before it; seeds registered after the failure
// point remain (spec §4.5 step 2: "the offending seed is consumed;
// earlier already-validated seeds are also consumed").
func (r *Runtime) Grow(name string, vars VarAccessor) (value.Value, error) {
	current, ok := vars.Get(name)
	if !ok {
		return value.Value{}, ErrNoSuchVariable
	}

	r.mu.Lock()
	contracts := r.seeds[name]
	r.mu.Unlock()

	for i, contract := range contracts {
		ok, err := r.evalSeed(contract, current)
		if err != nil || !ok {
			r.consumeSeedsThrough(name, i)
			if err != nil {
				return value.Value{}, err
			}
			return value.Value{}, ErrSeedFailed
		}
	}
	r.consumeSeedsThrough(name, len(contracts)-1)

	frozen := value.Freeze(current)
	vars.Set(name, frozen)
	r.RecordHistory(name, frozen, 0, "")
	if err := r.FireReactions(name, value.Crystal, frozen); err != nil {
		return value.Value{}, err
	}
	if err := r.Cascade(name, vars); err != nil {
		return value.Value{}, err
	}
	return frozen, nil
}

func (r *Runtime) evalSeed(contract *value.Closure, current value.Value) (bool, error) {
	result, err := r.invoke(contract, []value.Value{value.DeepClone(current)})
	if err != nil {
		return false, err
	}
	return value.IsTruthy(result), nil
}

// consumeSeedsThrough removes seeds[0:through+1] for name, leaving any
// seeds registered after that index untouched.
func (r *Runtime) consumeSeedsThrough(name string, through int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remaining := r.seeds[name]
	if through+1 >= len(remaining) {
		delete(r.seeds, name)
		return
	}
	r.seeds[name] = append([]*value.Closure(nil), remaining[through+1:]...)
}

// SeedCount reports how many seeds remain registered on name, used by
// tests and diagnostics.
func (r *Runtime) SeedCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seeds[name])
}
