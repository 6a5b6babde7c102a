// Package vm implements the stack bytecode VM (spec §4.4): the
// instruction dispatch loop, operand stack, call frames, upvalue list,
// and error propagation shared by every Lattice program.
package vm

import "github.com/lattice-lang/lattice/internal/value"

const (
	ErrStackOverflow   = value.ConstError("lattice: operand stack overflow")
	ErrStackUnderflow  = value.ConstError("lattice: operand stack underflow")
	ErrFrameOverflow   = value.ConstError("lattice: call frame overflow")
	ErrArity           = value.ConstError("lattice: wrong number of arguments")
	ErrNotCallable     = value.ConstError("lattice: value is not callable")
	ErrPhaseMismatch   = value.ConstError("lattice: argument phase does not match declared parameter phase")
	ErrUndefinedGlobal = value.ConstError("lattice: undefined global")
	ErrUndefinedLocal  = value.ConstError("lattice: undefined local")
	ErrInvalidJump     = value.ConstError("lattice: invalid jump target")
	ErrMalformedChunk  = value.ConstError("lattice: malformed bytecode")
	ErrNoCatch         = value.ConstError("lattice: uncaught error")
)
