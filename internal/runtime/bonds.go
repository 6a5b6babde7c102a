package runtime

import "github.com/lattice-lang/lattice/internal/value"

// BondStrategy is the per-dependency rule a bond applies when its
// target is frozen (spec §3.7, §4.5).
type BondStrategy byte

const (
	Mirror BondStrategy = iota
	Inverse
	Gate
)

func ParseBondStrategy(s string) (BondStrategy, bool) {
	switch s {
	case "mirror":
		return Mirror, true
	case "inverse":
		return Inverse, true
	case "gate":
		return Gate, true
	default:
		return 0, false
	}
}

// BondEntry is one (dependency, strategy) pair of a bond (spec §3.7).
type BondEntry struct {
	Dependency string
	Strategy   BondStrategy
}

// VarAccessor reads and writes a named variable's current binding. The
// runtime has no environment of its own (see package value's
// Environment), so the caller driving a cascade — the VM opcode
// handling FREEZE or the grow() built-in — supplies the accessor
// scoped to whichever environment (global or local) actually holds the
// variable.
type VarAccessor interface {
	Get(name string) (value.Value, bool)
	Set(name string, v value.Value) bool
}

// Bond registers a one-shot cascade: when target is frozen, the
// dependencies fire in order per their strategy (spec §4.5).
func (r *Runtime) Bond(target string, deps []BondEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bonds[target] = append(r.bonds[target], deps...)
}

// Cascade fires and consumes target's bond, if any, following it
// through freeze(target) (spec §4.5). Bonds are one-shot, not atomic:
// a gate failure midway through a cascade does not roll back the
// mirror/inverse effects already applied earlier in the same cascade
// (spec §9 design note — this implementation tracks the reference
// behavior deliberately, see DESIGN.md).
func (r *Runtime) Cascade(target string, vars VarAccessor) error {
	r.mu.Lock()
	deps := r.bonds[target]
	delete(r.bonds, target) // one-shot: consumed regardless of outcome
	r.mu.Unlock()

	for _, dep := range deps {
		if err := r.applyBondEntry(dep, vars); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) applyBondEntry(dep BondEntry, vars VarAccessor) error {
	current, ok := vars.Get(dep.Dependency)
	if !ok {
		return nil // dependency unbound: nothing to cascade onto
	}

	switch dep.Strategy {
	case Mirror:
		if current.Phase() == value.Crystal {
			return nil
		}
		frozen := value.Freeze(current)
		vars.Set(dep.Dependency, frozen)
		// Freezing dep may itself be the target of further bonds; cascade
		// those before returning control to the outer loop (spec §4.5).
		if err := r.Cascade(dep.Dependency, vars); err != nil {
			return err
		}
		r.RecordHistory(dep.Dependency, frozen, 0, "")
		return r.FireReactions(dep.Dependency, value.Crystal, frozen)

	case Inverse:
		if current.Phase() != value.Crystal && current.Phase() != value.Sublimated {
			return nil
		}
		thawed := value.Thaw(current)
		vars.Set(dep.Dependency, thawed)
		r.RecordHistory(dep.Dependency, thawed, 0, "")
		return r.FireReactions(dep.Dependency, value.Fluid, thawed)

	case Gate:
		if current.Phase() != value.Crystal {
			return ErrGateNotCrystal
		}
		return nil

	default:
		return nil
	}
}
