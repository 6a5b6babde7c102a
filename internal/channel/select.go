package channel

import (
	"fmt"
	"reflect"

	"github.com/lattice-lang/lattice/internal/value"
)

// Op distinguishes the two channel operations select(cases) (spec
// §4.8) can wait on.
type Op int

const (
	OpRecv Op = iota
	OpSend
)

// Case is one arm of a select(cases) call.
type Case struct {
	Queue *Queue
	Op    Op
	Send  value.Value // only read when Op is OpSend
}

// Result reports which case fired and, for a recv case, what it
// produced.
type Result struct {
	Index int
	Value value.Value
	Ok    bool // recv only: false means the channel was closed and empty
}

// Select waits on cases and returns the one the Go runtime's own
// pseudo-random case selection picked among those ready (spec §4.8:
// "selection is nondeterministic among simultaneously-ready cases") —
// reflect.Select exists precisely because the case list's size isn't
// known until run time, the way a native select statement requires.
func Select(cases []Case, done <-chan struct{}) (result Result, err error) {
	if len(cases) == 0 {
		return Result{}, ErrNoCases
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lattice: select: %v", r)
		}
	}()

	selectCases := make([]reflect.SelectCase, 0, len(cases)+1)
	for _, c := range cases {
		switch c.Op {
		case OpRecv:
			selectCases = append(selectCases, reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: reflect.ValueOf(c.Queue.ch),
			})
		case OpSend:
			selectCases = append(selectCases, reflect.SelectCase{
				Dir:  reflect.SelectSend,
				Chan: reflect.ValueOf(c.Queue.sendTarget()),
				Send: reflect.ValueOf(c.Send),
			})
		}
	}
	doneIdx := len(selectCases)
	selectCases = append(selectCases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(done),
	})

	chosen, recv, recvOK := reflect.Select(selectCases)
	if chosen == doneIdx {
		return Result{}, ErrNoCases
	}

	res := Result{Index: chosen}
	if cases[chosen].Op == OpRecv {
		res.Ok = recvOK
		if recvOK {
			res.Value, _ = recv.Interface().(value.Value)
		}
	}
	return res, nil
}
