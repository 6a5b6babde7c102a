// Package value implements the Lattice value model: tagged variants
// carrying a phase tag and region id, and the lexically-scoped
// Environment that binds names to values.
//
// Environment lives in this package rather than its own because a
// Closure value captures an *Environment and an Environment stores
// Value entries — splitting them across two packages would form an
// import cycle.
package value

import (
	"fmt"
	"unsafe"
)

// Phase is the mutability lifecycle tag carried by every Value.
type Phase uint8

const (
	Unphased Phase = iota
	Fluid
	Crystal
	Sublimated
)

func (p Phase) String() string {
	switch p {
	case Fluid:
		return "fluid"
	case Crystal:
		return "crystal"
	case Sublimated:
		return "sublimated"
	default:
		return "unphased"
	}
}

// RegionID identifies the arena a Value's storage belongs to. NoRegion
// means the value is heap-allocated and individually collected.
type RegionID int64

const NoRegion RegionID = -1

// Variant discriminates the payload carried by a Value. It is a value
// category, not a Go type name.
type Variant uint8

const (
	VNil Variant = iota
	VBool
	VInt
	VFloat
	VStr
	VArray
	VMap
	VSet
	VBuffer
	VStruct
	VClosure
	VChannel
	VRef
	VError
)

func (v Variant) String() string {
	switch v {
	case VNil:
		return "nil"
	case VBool:
		return "bool"
	case VInt:
		return "int"
	case VFloat:
		return "float"
	case VStr:
		return "str"
	case VArray:
		return "array"
	case VMap:
		return "map"
	case VSet:
		return "set"
	case VBuffer:
		return "buffer"
	case VStruct:
		return "struct"
	case VClosure:
		return "closure"
	case VChannel:
		return "channel"
	case VRef:
		return "ref"
	case VError:
		return "error"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// StructPayload is the payload of a Struct value: a name plus parallel
// field-name/field-value arrays. Lookup is linear scan — structs are
// assumed small, as spec'd.
type StructPayload struct {
	Name   string
	Fields []string
	Values []Value
}

// Value is the single representation used across all three Lattice
// back-ends. It is a tagged variant; exactly one payload field is
// meaningful for a given Variant.
type Value struct {
	variant Variant
	phase   Phase
	region  RegionID

	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   *string // interned where possible, see intern.go
	arrVal   *[]Value
	mapVal   *OrderedMap
	setVal   *OrderedSet
	bufVal   *[]byte
	structVal *StructPayload
	closureVal *Closure
	chanVal  ChannelRef
	refVal   *RefCell
	errVal   *Value
}

// RefCell is the heap cell backing a Ref value. Refs are shared by
// reference count, never deep-cloned.
type RefCell struct {
	refCount int32
	Value    Value
}

// ChannelRef is the opaque handle stored in a Channel value. The
// concrete queue lives in package channel; this package only needs an
// identity-comparable, reference-counted handle so deep_clone and
// equals can treat it uniformly with Ref.
type ChannelRef interface {
	// Retain increments the reference count and returns the same handle.
	Retain() ChannelRef
	// Release decrements the reference count, freeing the backing queue
	// at zero.
	Release()
	// ID is an identity key stable for the lifetime of the channel.
	ID() uintptr
}

func (v Value) Variant() Variant { return v.variant }
func (v Value) Phase() Phase     { return v.phase }
func (v Value) Region() RegionID { return v.region }

// WithPhase returns a copy of v carrying the given phase tag. It does
// not deep-clone the payload — callers that need copy semantics on
// transition must call deep_clone explicitly, matching freeze/thaw
// (see phase.go).
func (v Value) WithPhase(p Phase) Value {
	v.phase = p
	return v
}

// WithRegion returns a copy of v tagged with the given region id.
func (v Value) WithRegion(r RegionID) Value {
	v.region = r
	return v
}

func NewNil() Value { return Value{variant: VNil} }

func NewBool(b bool) Value { return Value{variant: VBool, boolVal: b} }

func NewInt(i int64) Value { return Value{variant: VInt, intVal: i} }

func NewFloat(f float64) Value { return Value{variant: VFloat, floatVal: f} }

func NewStr(s string) Value {
	interned := intern(s)
	return Value{variant: VStr, strVal: interned}
}

func NewArray(elems []Value) Value {
	cp := append([]Value(nil), elems...)
	return Value{variant: VArray, arrVal: &cp}
}

func NewMap(m *OrderedMap) Value {
	if m == nil {
		m = NewOrderedMap()
	}
	return Value{variant: VMap, mapVal: m}
}

func NewSet(s *OrderedSet) Value {
	if s == nil {
		s = NewOrderedSet()
	}
	return Value{variant: VSet, setVal: s}
}

func NewBuffer(b []byte) Value {
	cp := append([]byte(nil), b...)
	return Value{variant: VBuffer, bufVal: &cp}
}

func NewStruct(name string, fields []string, values []Value) Value {
	return Value{variant: VStruct, structVal: &StructPayload{
		Name:   name,
		Fields: append([]string(nil), fields...),
		Values: append([]Value(nil), values...),
	}}
}

func NewClosure(c *Closure) Value {
	return Value{variant: VClosure, closureVal: c}
}

func NewChannel(c ChannelRef) Value {
	return Value{variant: VChannel, chanVal: c.Retain()}
}

func NewRef(initial Value) Value {
	return Value{variant: VRef, refVal: &RefCell{refCount: 1, Value: initial}}
}

// NewError wraps v in an Error (VError) value. It is not a Map; the
// `error` built-in builds the {tag: "err", value: v} Map instead, and
// IsErrorShape accepts either form.
func NewError(v Value) Value {
	cp := v
	return Value{variant: VError, errVal: &cp}
}

func (v Value) Bool() bool               { return v.boolVal }
func (v Value) Int() int64               { return v.intVal }
func (v Value) Float() float64           { return v.floatVal }
func (v Value) Str() string {
	if v.strVal == nil {
		return ""
	}
	return *v.strVal
}
func (v Value) Array() []Value {
	if v.arrVal == nil {
		return nil
	}
	return *v.arrVal
}
func (v Value) Map() *OrderedMap       { return v.mapVal }
func (v Value) Set() *OrderedSet       { return v.setVal }
func (v Value) Buffer() []byte {
	if v.bufVal == nil {
		return nil
	}
	return *v.bufVal
}
func (v Value) Struct() *StructPayload { return v.structVal }
func (v Value) ClosureVal() *Closure   { return v.closureVal }
func (v Value) Channel() ChannelRef    { return v.chanVal }
func (v Value) Ref() *RefCell          { return v.refVal }
func (v Value) ErrorVal() Value        { return *v.errVal }

// ContainerIdentity returns a key stable for the lifetime of the
// underlying storage behind an Array, Map, or Buffer, and ok=true.
// Every Value copy sharing the same identity mutates the same storage
// (they box a pointer, not the payload) — used by the VM to resolve a
// container-mutating opcode's operand back to the name pressurize()
// registered a constraint against. Other variants report ok=false.
func (v Value) ContainerIdentity() (id uintptr, ok bool) {
	switch v.variant {
	case VArray:
		if v.arrVal == nil {
			return 0, false
		}
		return uintptr(unsafe.Pointer(v.arrVal)), true
	case VMap:
		if v.mapVal == nil {
			return 0, false
		}
		return uintptr(unsafe.Pointer(v.mapVal)), true
	case VBuffer:
		if v.bufVal == nil {
			return 0, false
		}
		return uintptr(unsafe.Pointer(v.bufVal)), true
	default:
		return 0, false
	}
}

// IsErrorShape reports whether v is the distinguished error-map shape
// produced by the `error` built-in: {tag: "err", value: ...}. Built-ins
// use this to signal failure without relying on the VM's exception
// control flow (spec §3.1, §4.6).
func IsErrorShape(v Value) bool {
	if v.variant == VError {
		return true
	}
	if v.variant != VMap || v.mapVal == nil {
		return false
	}
	tag, ok := v.mapVal.Get("tag")
	return ok && tag.variant == VStr && tag.Str() == "err"
}
