// Package runtime implements the Lattice runtime services shared by
// every back-end (spec §4.5): phase tracking and history, pressure
// constraints, reactions, bonds, seeds, and the module/extension
// caches backing require() dedup.
package runtime

import "github.com/lattice-lang/lattice/internal/value"

const (
	ErrNoSuchVariable   = value.ConstError("lattice: no tracked variable with that name")
	ErrSeedFailed       = value.ConstError("lattice: seed precondition failed")
	ErrGateNotCrystal   = value.ConstError("lattice: gate bond dependency is not crystal")
	ErrUnknownPressure  = value.ConstError("lattice: unknown pressure mode")
	ErrPressureNoGrow   = value.ConstError("lattice: pressure violation: container may not grow")
	ErrPressureNoShrink = value.ConstError("lattice: pressure violation: container may not shrink")
	ErrPressureNoResize = value.ConstError("lattice: pressure violation: container may not resize")
)
