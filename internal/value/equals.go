package value

// Equals is structural equality that ignores phase (spec §4.1).
// Scalars compare by value; containers compare structurally and
// element-wise; Closure, Channel, and Ref compare by identity; Float
// follows IEEE-754 (NaN != NaN, including NaN != NaN for itself).
func Equals(a, b Value) bool {
	if a.variant != b.variant {
		return false
	}
	switch a.variant {
	case VNil:
		return true
	case VBool:
		return a.boolVal == b.boolVal
	case VInt:
		return a.intVal == b.intVal
	case VFloat:
		return a.floatVal == b.floatVal // NaN != NaN falls out of IEEE-754 comparison
	case VStr:
		return a.Str() == b.Str()
	case VArray:
		ae, be := a.Array(), b.Array()
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equals(ae[i], be[i]) {
				return false
			}
		}
		return true
	case VMap:
		if a.mapVal == nil || b.mapVal == nil {
			return a.mapVal == b.mapVal
		}
		if a.mapVal.Len() != b.mapVal.Len() {
			return false
		}
		equal := true
		a.mapVal.Each(func(k string, v Value) {
			bv, ok := b.mapVal.Get(k)
			if !ok || !Equals(v, bv) {
				equal = false
			}
		})
		return equal
	case VSet:
		if a.setVal == nil || b.setVal == nil {
			return a.setVal == b.setVal
		}
		if a.setVal.Len() != b.setVal.Len() {
			return false
		}
		equal := true
		a.setVal.Each(func(v Value) {
			if !b.setVal.Has(v) {
				equal = false
			}
		})
		return equal
	case VBuffer:
		ab, bb := a.Buffer(), b.Buffer()
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	case VStruct:
		as, bs := a.structVal, b.structVal
		if as == nil || bs == nil {
			return as == bs
		}
		if as.Name != bs.Name || len(as.Fields) != len(bs.Fields) {
			return false
		}
		for i := range as.Fields {
			if as.Fields[i] != bs.Fields[i] || !Equals(as.Values[i], bs.Values[i]) {
				return false
			}
		}
		return true
	case VClosure:
		return a.closureVal == b.closureVal
	case VChannel:
		return a.chanVal != nil && b.chanVal != nil && a.chanVal.ID() == b.chanVal.ID()
	case VRef:
		return a.refVal == b.refVal
	case VError:
		if a.errVal == nil || b.errVal == nil {
			return a.errVal == b.errVal
		}
		return Equals(*a.errVal, *b.errVal)
	default:
		return false
	}
}
