package value

// DeepClone returns a value structurally equal to v sharing no mutable
// storage with it, except for Channel and Ref which clone by
// reference-count bump (spec §3.1, §4.1). Closures deep-clone by
// retaining the same captured environment pointer and body reference —
// closures are never structurally re-created on pass.
func DeepClone(v Value) Value {
	return deepCloneValue(v)
}

func deepCloneValue(v Value) Value {
	switch v.variant {
	case VArray:
		elems := v.Array()
		cp := make([]Value, len(elems))
		for i, e := range elems {
			cp[i] = deepCloneValue(e)
		}
		return Value{variant: VArray, phase: v.phase, region: v.region, arrVal: &cp}
	case VMap:
		var cp *OrderedMap
		if v.mapVal != nil {
			cp = v.mapVal.Clone()
		}
		return Value{variant: VMap, phase: v.phase, region: v.region, mapVal: cp}
	case VSet:
		var cp *OrderedSet
		if v.setVal != nil {
			cp = v.setVal.Clone()
		}
		return Value{variant: VSet, phase: v.phase, region: v.region, setVal: cp}
	case VBuffer:
		b := v.Buffer()
		cp := append([]byte(nil), b...)
		return Value{variant: VBuffer, phase: v.phase, region: v.region, bufVal: &cp}
	case VStruct:
		var cp *StructPayload
		if v.structVal != nil {
			values := make([]Value, len(v.structVal.Values))
			for i, fv := range v.structVal.Values {
				values[i] = deepCloneValue(fv)
			}
			cp = &StructPayload{
				Name:   v.structVal.Name,
				Fields: append([]string(nil), v.structVal.Fields...),
				Values: values,
			}
		}
		return Value{variant: VStruct, phase: v.phase, region: v.region, structVal: cp}
	case VClosure:
		// Closures retain their captured environment and body reference;
		// they are never structurally re-created on pass.
		return v
	case VChannel:
		nv := v
		nv.chanVal = v.chanVal.Retain()
		return nv
	case VRef:
		nv := v
		if v.refVal != nil {
			v.refVal.refCount++
		}
		return nv
	case VError:
		var cp *Value
		if v.errVal != nil {
			inner := deepCloneValue(*v.errVal)
			cp = &inner
		}
		return Value{variant: VError, phase: v.phase, region: v.region, errVal: cp}
	default:
		// Scalars (Nil, Bool, Int, Float, Str) copy by value; strings are
		// interned and immutable so sharing the pointer is safe.
		return v
	}
}
