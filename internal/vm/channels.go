package vm

import (
	"github.com/lattice-lang/lattice/internal/channel"
	"github.com/lattice-lang/lattice/internal/config"
	"github.com/lattice-lang/lattice/internal/value"
)

// defineChannelBuiltins installs the Channel primitive's operations
// (spec §4.8) the same way defineRuntimeBuiltins installs the phase
// services: as DispatchNative Closures capturing no VM state, since
// channels carry their own synchronization and need nothing from the
// current frame.
func (vm *VM) defineChannelBuiltins() {
	define := func(name string, arity int, fn value.NativeFunc) {
		params := make([]string, arity)
		for i := range params {
			params[i] = "arg"
		}
		vm.globals.Define(name, value.NewClosure(&value.Closure{
			Name:     name,
			Params:   params,
			Dispatch: value.Dispatch{Kind: value.DispatchNative, Fn: fn},
		}))
	}

	define("channel", 1, func(args []value.Value) (value.Value, error) {
		capacity := config.DefaultChannelCapacity
		if len(args) > 0 && args[0].Variant() == value.VInt {
			capacity = int(args[0].Int())
		}
		return value.NewChannel(channel.New(capacity)), nil
	})

	define("send", 2, func(args []value.Value) (value.Value, error) {
		q, err := asQueue(args[0])
		if err != nil {
			return value.Value{}, err
		}
		if err := q.Send(value.DeepClone(args[1]), nil); err != nil {
			return value.Value{}, err
		}
		return value.NewNil(), nil
	})

	define("recv", 1, func(args []value.Value) (value.Value, error) {
		q, err := asQueue(args[0])
		if err != nil {
			return value.Value{}, err
		}
		v, ok := q.Recv(nil)
		if !ok {
			return value.NewNil(), nil
		}
		return v, nil
	})

	define("close", 1, func(args []value.Value) (value.Value, error) {
		q, err := asQueue(args[0])
		if err != nil {
			return value.Value{}, err
		}
		q.Close()
		return value.NewNil(), nil
	})

	define("select", 1, func(args []value.Value) (value.Value, error) {
		return vm.execSelect(args[0])
	})
}

func asQueue(v value.Value) (*channel.Queue, error) {
	if v.Variant() != value.VChannel || v.Channel() == nil {
		return nil, value.ErrTypeError
	}
	q, ok := v.Channel().(*channel.Queue)
	if !ok {
		return nil, value.ErrTypeError
	}
	return q, nil
}

// execSelect implements the select(cases) built-in: cases is an Array
// of Maps shaped {channel, op: "send"|"recv", value} (value only
// meaningful for a send case), returned the way bond()'s entry array
// already uses Maps to carry a small heterogeneous record (spec §4.8;
// see builtins.go's bond for the precedent).
func (vm *VM) execSelect(casesVal value.Value) (value.Value, error) {
	if casesVal.Variant() != value.VArray {
		return value.Value{}, value.ErrTypeError
	}
	raw := casesVal.Array()
	cases := make([]channel.Case, 0, len(raw))
	for _, c := range raw {
		m := c.Map()
		if m == nil {
			return value.Value{}, value.ErrTypeError
		}
		chVal, _ := m.Get("channel")
		q, err := asQueue(chVal)
		if err != nil {
			return value.Value{}, err
		}
		opVal, _ := m.Get("op")
		switch opVal.Str() {
		case "send":
			sendVal, _ := m.Get("value")
			cases = append(cases, channel.Case{Queue: q, Op: channel.OpSend, Send: value.DeepClone(sendVal)})
		default:
			cases = append(cases, channel.Case{Queue: q, Op: channel.OpRecv})
		}
	}

	result, err := channel.Select(cases, nil)
	if err != nil {
		return value.Value{}, err
	}

	out := value.NewOrderedMap()
	out.Set("index", value.NewInt(int64(result.Index)))
	out.Set("value", result.Value)
	out.Set("ok", value.NewBool(result.Ok))
	return value.NewMap(out), nil
}
