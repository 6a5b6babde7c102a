package extension

import (
	"strings"
	"sync"

	"github.com/lattice-lang/lattice/internal/value"
)

// Kind is the closed enum an extension queries a Handle against (spec
// §4.7). It deliberately exposes fewer variants than value.Variant:
// extensions never see a Closure, Channel, Ref, Buffer, Struct, or Set
// directly — those stay host-side.
type Kind int32

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindMap
	KindError
)

// Handle is the opaque reference that crosses the host/extension
// boundary in both directions. It is a table index, never a Go pointer:
// cgo forbids passing a live Go pointer into C memory the collector
// doesn't know about, so every Handle the extension holds resolves back
// through the owning table rather than aliasing Go memory directly.
type Handle uint64

type wrapperValue struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Handle
	m    *value.OrderedMap
}

// table is the per-call registration/argument-and-result arena handed to
// an extension invocation. One is created per host→extension call
// (spec §4.7 step 4's "fresh registration context" generalizes to every
// call, not just init) and discarded, with every handle still in it,
// once the host has read the result.
type table struct {
	mu      sync.Mutex
	entries map[Handle]*wrapperValue
	next    Handle
}

func newTable() *table {
	return &table{entries: map[Handle]*wrapperValue{}, next: 1}
}

func (t *table) alloc(w *wrapperValue) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.entries[h] = w
	return h
}

func (t *table) resolve(h Handle) (*wrapperValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.entries[h]
	return w, ok
}

// free releases a handle. Freeing an unknown handle is a caller error
// (ErrInvalidHandle), matching the ABI contract that every constructor's
// result is freed exactly once.
func (t *table) free(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[h]; !ok {
		return ErrInvalidHandle
	}
	delete(t.entries, h)
	return nil
}

// wrap deep-copies a host Value into this table as a fresh wrapper,
// the form an extension function receives its arguments in.
func (t *table) wrap(v value.Value) Handle {
	w := &wrapperValue{}
	switch v.Variant() {
	case value.VNil:
		w.kind = KindNil
	case value.VBool:
		w.kind, w.b = KindBool, v.Bool()
	case value.VInt:
		w.kind, w.i = KindInt, v.Int()
	case value.VFloat:
		w.kind, w.f = KindFloat, v.Float()
	case value.VStr:
		w.kind, w.s = KindString, v.Str()
	case value.VArray:
		w.kind = KindArray
		for _, elem := range v.Array() {
			w.arr = append(w.arr, t.wrap(elem))
		}
	case value.VMap:
		w.kind = KindMap
		w.m = value.NewOrderedMap()
		v.Map().Each(func(k string, mv value.Value) { w.m.Set(k, mv) })
	case value.VError:
		w.kind, w.s = KindError, value.Repr(v.ErrorVal())
	default:
		w.kind, w.s = KindString, value.Repr(v)
	}
	return t.alloc(w)
}

// unwrap deep-clones a wrapper's contents into a host Value (spec §4.7:
// "the loader deep-clones the wrapper's contents into the host Value on
// return"), recursing through array elements so nested constructors
// resolve correctly.
func (t *table) unwrap(h Handle) (value.Value, error) {
	w, ok := t.resolve(h)
	if !ok {
		return value.Value{}, ErrInvalidHandle
	}
	switch w.kind {
	case KindNil:
		return value.NewNil(), nil
	case KindBool:
		return value.NewBool(w.b), nil
	case KindInt:
		return value.NewInt(w.i), nil
	case KindFloat:
		return value.NewFloat(w.f), nil
	case KindString:
		return value.NewStr(w.s), nil
	case KindArray:
		elems := make([]value.Value, 0, len(w.arr))
		for _, eh := range w.arr {
			ev, err := t.unwrap(eh)
			if err != nil {
				return value.Value{}, err
			}
			elems = append(elems, ev)
		}
		return value.NewArray(elems), nil
	case KindMap:
		m := value.NewOrderedMap()
		w.m.Each(func(k string, v value.Value) { m.Set(k, v) })
		return value.NewMap(m), nil
	case KindError:
		return value.NewError(value.NewStr(w.s)), nil
	default:
		return value.Value{}, ErrInvalidHandle
	}
}

// --- accessor and constructor surface the extension links against ---
//
// A real cgo build exports these as C-callable entry points (see the
// //export functions in cabi.go); the Go-level signatures below are what
// those shims marshal to and from.

func (t *table) typeOf(h Handle) (Kind, bool) {
	w, ok := t.resolve(h)
	if !ok {
		return 0, false
	}
	return w.kind, true
}

func (t *table) getBool(h Handle) (bool, error) {
	w, err := t.expect(h, KindBool)
	if err != nil {
		return false, err
	}
	return w.b, nil
}

func (t *table) getInt(h Handle) (int64, error) {
	w, err := t.expect(h, KindInt)
	if err != nil {
		return 0, err
	}
	return w.i, nil
}

func (t *table) getFloat(h Handle) (float64, error) {
	w, err := t.expect(h, KindFloat)
	if err != nil {
		return 0, err
	}
	return w.f, nil
}

func (t *table) getString(h Handle) (string, error) {
	w, err := t.expect(h, KindString)
	if err != nil {
		return "", err
	}
	return w.s, nil
}

func (t *table) arrayLen(h Handle) (int, error) {
	w, err := t.expect(h, KindArray)
	if err != nil {
		return 0, err
	}
	return len(w.arr), nil
}

func (t *table) arrayGet(h Handle, i int) (Handle, error) {
	w, err := t.expect(h, KindArray)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(w.arr) {
		return 0, value.ErrIndexOutOfRange
	}
	return w.arr[i], nil
}

func (t *table) mapGet(h Handle, key string) (Handle, bool, error) {
	w, err := t.expect(h, KindMap)
	if err != nil {
		return 0, false, err
	}
	v, ok := w.m.Get(key)
	if !ok {
		return 0, false, nil
	}
	return t.wrap(v), true, nil
}

func (t *table) expect(h Handle, want Kind) (*wrapperValue, error) {
	w, ok := t.resolve(h)
	if !ok {
		return nil, ErrInvalidHandle
	}
	if w.kind != want {
		return nil, ErrUnwrapKind
	}
	return w, nil
}

func (t *table) newNil() Handle   { return t.alloc(&wrapperValue{kind: KindNil}) }
func (t *table) newBool(b bool) Handle {
	return t.alloc(&wrapperValue{kind: KindBool, b: b})
}
func (t *table) newInt(i int64) Handle {
	return t.alloc(&wrapperValue{kind: KindInt, i: i})
}
func (t *table) newFloat(f float64) Handle {
	return t.alloc(&wrapperValue{kind: KindFloat, f: f})
}
func (t *table) newString(s string) Handle {
	return t.alloc(&wrapperValue{kind: KindString, s: s})
}
func (t *table) newArray(children []Handle) Handle {
	return t.alloc(&wrapperValue{kind: KindArray, arr: append([]Handle(nil), children...)})
}
func (t *table) newMap() Handle {
	return t.alloc(&wrapperValue{kind: KindMap, m: value.NewOrderedMap()})
}
func (t *table) mapSet(h Handle, key string, child Handle) error {
	w, err := t.expect(h, KindMap)
	if err != nil {
		return err
	}
	cv, err := t.unwrap(child)
	if err != nil {
		return err
	}
	w.m.Set(key, cv)
	return nil
}
func (t *table) newError(msg string) Handle {
	return t.alloc(&wrapperValue{kind: KindError, s: msg})
}

// HostABI is the Go-level shape of the C-exported functions in cabi.go
// (spec §4.7's wrapper API), factored out as an interface purely so
// tests can swap a recorded mock in for the live table an extension
// call actually gets — cabi.go itself talks to *table directly, since a
// cgo-exported function cannot take an interface argument.
type HostABI interface {
	TypeOf(h Handle) (Kind, bool)
	GetBool(h Handle) (bool, error)
	GetInt(h Handle) (int64, error)
	GetFloat(h Handle) (float64, error)
	GetString(h Handle) (string, error)
	ArrayLen(h Handle) (int, error)
	ArrayGet(h Handle, i int) (Handle, error)
	MapGet(h Handle, key string) (Handle, bool, error)
	NewNil() Handle
	NewBool(b bool) Handle
	NewInt(i int64) Handle
	NewFloat(f float64) Handle
	NewString(s string) Handle
	NewArray(children []Handle) Handle
	NewMap() Handle
	MapSet(h Handle, key string, child Handle) error
	NewError(msg string) Handle
	Free(h Handle) error
}

var _ HostABI = (*table)(nil)

func (t *table) TypeOf(h Handle) (Kind, bool)             { return t.typeOf(h) }
func (t *table) GetBool(h Handle) (bool, error)            { return t.getBool(h) }
func (t *table) GetInt(h Handle) (int64, error)            { return t.getInt(h) }
func (t *table) GetFloat(h Handle) (float64, error)        { return t.getFloat(h) }
func (t *table) GetString(h Handle) (string, error)        { return t.getString(h) }
func (t *table) ArrayLen(h Handle) (int, error)            { return t.arrayLen(h) }
func (t *table) ArrayGet(h Handle, i int) (Handle, error)  { return t.arrayGet(h, i) }
func (t *table) MapGet(h Handle, key string) (Handle, bool, error) { return t.mapGet(h, key) }
func (t *table) NewNil() Handle                            { return t.newNil() }
func (t *table) NewBool(b bool) Handle                     { return t.newBool(b) }
func (t *table) NewInt(i int64) Handle                     { return t.newInt(i) }
func (t *table) NewFloat(f float64) Handle                 { return t.newFloat(f) }
func (t *table) NewString(s string) Handle                 { return t.newString(s) }
func (t *table) NewArray(children []Handle) Handle         { return t.newArray(children) }
func (t *table) NewMap() Handle                            { return t.newMap() }
func (t *table) MapSet(h Handle, key string, child Handle) error { return t.mapSet(h, key, child) }
func (t *table) NewError(msg string) Handle                { return t.newError(msg) }
func (t *table) Free(h Handle) error                       { return t.free(h) }

// evalError reports whether s is an extension-reported error (spec
// §4.7's "EVAL_ERROR:" convention) and, if so, the message with the
// prefix stripped.
func evalError(s string) (string, bool) {
	if !strings.HasPrefix(s, evalErrorPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s, evalErrorPrefix), true
}
