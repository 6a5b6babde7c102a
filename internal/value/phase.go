package value

// Freeze returns a crystal value whose payload is a deep clone of v.
// Freezing an already-crystal value is a no-op that still returns a
// fresh deep clone tagged crystal (spec §9 open question, resolved in
// favor of the reference behavior: freeze(crystal) does not error).
func Freeze(v Value) Value {
	return DeepClone(v).WithPhase(Crystal)
}

// Thaw returns a fluid deep clone of v. Both Freeze and Thaw are total
// functions on the variant — no operand becomes unreadable.
func Thaw(v Value) Value {
	return DeepClone(v).WithPhase(Fluid)
}

// Sublimate transitions v to the terminal, read-only sublimated phase.
// Sublimation is not reversible and excludes v from freeze cascades.
func Sublimate(v Value) Value {
	return DeepClone(v).WithPhase(Sublimated)
}

// CheckMutable returns ErrPhaseViolation if v may not be the target of
// a mutating operation: store, element-store, field-store, thaw, or
// re-freeze. Sublimated values are read-only but excluded from the
// crystal error path so callers can distinguish the two phase
// violations (spec §3.1).
func CheckMutable(v Value) error {
	switch v.phase {
	case Crystal:
		return ErrPhaseViolation
	case Sublimated:
		return ErrSublimatedTarget
	default:
		return nil
	}
}
