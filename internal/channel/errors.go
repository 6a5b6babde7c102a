// Package channel implements the Channel primitive (spec §4.8): a
// bounded-or-unbounded FIFO of Values shared by reference, with
// send/recv/close and a nondeterministic multi-way select. Each Queue
// wraps a native Go channel, the way the teacher coordinates goroutines
// in ct/driver/coordination.go; select is reflect.Select over those
// native channels, the idiomatic way to wait on a dynamically-sized
// case list Go's own select statement cannot express.
package channel

import "github.com/lattice-lang/lattice/internal/value"

const (
	ErrClosedSend = value.ConstError("lattice: send on closed channel")
	ErrNoCases    = value.ConstError("lattice: select with no cases")
)
