package native

import (
	"fmt"

	"github.com/lattice-lang/lattice/internal/value"
)

// StandardLibrary returns a Registry populated with the small set of
// native built-ins that exercise the dispatch protocol end to end.
// Concrete domain built-ins (filesystem, crypto, HTTP, database
// shims) are out of scope (spec §1) and are not implemented here —
// this is the existence proof for the protocol itself, not a standard
// library.
func StandardLibrary() *Registry {
	r := NewRegistry()
	r.Register(Builtin{Name: "print", Fn: builtinPrint})
	r.Register(Builtin{Name: "len", Fn: builtinLen})
	r.Register(Builtin{Name: "type_of", Fn: builtinTypeOf})
	r.Register(Builtin{Name: "error", Fn: builtinError})
	r.Register(Builtin{Name: "repr", Fn: builtinRepr})
	return r
}

func builtinPrint(args []value.Value) (value.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(value.Display(a))
	}
	fmt.Println()
	return value.NewNil(), nil
}

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, ArgError("len", "1 argument", args)
	}
	switch args[0].Variant() {
	case value.VArray:
		return value.NewInt(int64(len(args[0].Array()))), nil
	case value.VStr:
		return value.NewInt(int64(len(args[0].Str()))), nil
	case value.VMap:
		return value.NewInt(int64(args[0].Map().Len())), nil
	case value.VSet:
		return value.NewInt(int64(args[0].Set().Len())), nil
	case value.VBuffer:
		return value.NewInt(int64(len(args[0].Buffer()))), nil
	default:
		return value.Value{}, fmt.Errorf("len: unsupported variant %v", args[0].Variant())
	}
}

func builtinTypeOf(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, ArgError("type_of", "1 argument", args)
	}
	return value.NewStr(args[0].Variant().String()), nil
}

// builtinError constructs the distinguished error-map shape {tag:
// "err", value: ...} spec §3.1 defines for built-in-reported failures.
func builtinError(args []value.Value) (value.Value, error) {
	var payload value.Value
	if len(args) == 0 {
		payload = value.NewStr("error")
	} else {
		payload = args[0]
	}
	m := value.NewOrderedMap()
	m.Set("tag", value.NewStr("err"))
	m.Set("value", payload)
	return value.NewMap(m), nil
}

func builtinRepr(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, ArgError("repr", "1 argument", args)
	}
	return value.NewStr(value.Repr(args[0])), nil
}
