package extension

/*
#include <stdint.h>

typedef uint64_t lattice_handle;
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// This file is the C-callable side of the opaque value wrapper ABI
// (spec §4.7): every //export below is a symbol an extension links
// against by name. ctx is always the table_ctx an extension function
// received as its first argument (see loader.go's makeExtensionFunc),
// encoded the same way registrationContext is: a pointer to a
// runtime/cgo.Handle rather than a raw Go pointer, so C never holds
// Go memory across calls.

func tableFromCtx(ctx unsafe.Pointer) *table {
	h := *(*cgo.Handle)(ctx)
	return h.Value().(*table)
}

//export lattice_ext_type_of
func lattice_ext_type_of(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) C.int32_t {
	kind, found := tableFromCtx(ctx).typeOf(Handle(h))
	*ok = cBool(found)
	return C.int32_t(kind)
}

//export lattice_ext_get_bool
func lattice_ext_get_bool(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) C.int {
	v, err := tableFromCtx(ctx).getBool(Handle(h))
	*ok = cBool(err == nil)
	return cBool(v)
}

//export lattice_ext_get_int
func lattice_ext_get_int(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) C.int64_t {
	v, err := tableFromCtx(ctx).getInt(Handle(h))
	*ok = cBool(err == nil)
	return C.int64_t(v)
}

//export lattice_ext_get_float
func lattice_ext_get_float(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) C.double {
	v, err := tableFromCtx(ctx).getFloat(Handle(h))
	*ok = cBool(err == nil)
	return C.double(v)
}

// lattice_ext_get_string returns a freshly allocated C string: the
// extension must treat it as read-only and must not free it. The host
// does not track or free it either — each call leaks one small
// allocation, accepted because extension calls are bounded and
// infrequent (spec §4.7 gives no teardown hook to free it through).
//
//export lattice_ext_get_string
func lattice_ext_get_string(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) *C.char {
	v, err := tableFromCtx(ctx).getString(Handle(h))
	*ok = cBool(err == nil)
	if err != nil {
		return nil
	}
	return C.CString(v)
}

//export lattice_ext_array_len
func lattice_ext_array_len(ctx unsafe.Pointer, h C.lattice_handle, ok *C.int) C.int {
	n, err := tableFromCtx(ctx).arrayLen(Handle(h))
	*ok = cBool(err == nil)
	return C.int(n)
}

//export lattice_ext_array_get
func lattice_ext_array_get(ctx unsafe.Pointer, h C.lattice_handle, i C.int, ok *C.int) C.lattice_handle {
	elem, err := tableFromCtx(ctx).arrayGet(Handle(h), int(i))
	*ok = cBool(err == nil)
	return C.lattice_handle(elem)
}

//export lattice_ext_map_get
func lattice_ext_map_get(ctx unsafe.Pointer, h C.lattice_handle, key *C.char, found *C.int) C.lattice_handle {
	elem, ok, err := tableFromCtx(ctx).mapGet(Handle(h), C.GoString(key))
	*found = cBool(ok && err == nil)
	return C.lattice_handle(elem)
}

//export lattice_ext_new_nil
func lattice_ext_new_nil(ctx unsafe.Pointer) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newNil())
}

//export lattice_ext_new_bool
func lattice_ext_new_bool(ctx unsafe.Pointer, b C.int) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newBool(b != 0))
}

//export lattice_ext_new_int
func lattice_ext_new_int(ctx unsafe.Pointer, i C.int64_t) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newInt(int64(i)))
}

//export lattice_ext_new_float
func lattice_ext_new_float(ctx unsafe.Pointer, f C.double) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newFloat(float64(f)))
}

//export lattice_ext_new_string
func lattice_ext_new_string(ctx unsafe.Pointer, s *C.char) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newString(C.GoString(s)))
}

//export lattice_ext_new_array
func lattice_ext_new_array(ctx unsafe.Pointer, children *C.lattice_handle, n C.int) C.lattice_handle {
	hs := make([]Handle, int(n))
	if n > 0 {
		slice := unsafe.Slice(children, int(n))
		for i, c := range slice {
			hs[i] = Handle(c)
		}
	}
	return C.lattice_handle(tableFromCtx(ctx).newArray(hs))
}

//export lattice_ext_new_map
func lattice_ext_new_map(ctx unsafe.Pointer) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newMap())
}

//export lattice_ext_map_set
func lattice_ext_map_set(ctx unsafe.Pointer, h C.lattice_handle, key *C.char, child C.lattice_handle) C.int {
	err := tableFromCtx(ctx).mapSet(Handle(h), C.GoString(key), Handle(child))
	return cBool(err == nil)
}

//export lattice_ext_new_error
func lattice_ext_new_error(ctx unsafe.Pointer, msg *C.char) C.lattice_handle {
	return C.lattice_handle(tableFromCtx(ctx).newError(C.GoString(msg)))
}

//export lattice_ext_free
func lattice_ext_free(ctx unsafe.Pointer, h C.lattice_handle) C.int {
	return cBool(tableFromCtx(ctx).free(Handle(h)) == nil)
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
