package value

import (
	"testing"

	"pgregory.net/rand"
)

// randomValue generates a value of bounded depth, used to exercise the
// universal invariants of spec §8 across the variant space the way
// go/ct's state generator exercises EVM states in the teacher repo.
func randomValue(rnd *rand.Rand, depth int) Value {
	if depth <= 0 {
		return randomScalar(rnd)
	}
	switch rnd.Intn(4) {
	case 0:
		return randomScalar(rnd)
	case 1:
		n := rnd.Intn(4)
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = randomValue(rnd, depth-1)
		}
		return NewArray(elems)
	case 2:
		m := NewOrderedMap()
		n := rnd.Intn(4)
		for i := 0; i < n; i++ {
			m.Set(randomKey(rnd), randomValue(rnd, depth-1))
		}
		return NewMap(m)
	default:
		s := NewOrderedSet()
		n := rnd.Intn(4)
		for i := 0; i < n; i++ {
			s.Add(randomScalar(rnd))
		}
		return NewSet(s)
	}
}

func randomScalar(rnd *rand.Rand) Value {
	switch rnd.Intn(4) {
	case 0:
		return NewInt(rnd.Int63())
	case 1:
		return NewBool(rnd.Intn(2) == 0)
	case 2:
		return NewStr(randomKey(rnd))
	default:
		return NewFloat(rnd.Float64())
	}
}

func randomKey(rnd *rand.Rand) string {
	letters := "abcdefgh"
	n := 1 + rnd.Intn(4)
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rnd.Intn(len(letters))]
	}
	return string(b)
}

// TestProperty_DeepCloneIsStructurallyEqualAndIndependent checks the
// universal invariant from spec §8: deep_clone(v) is structurally
// equal to v and, for containers, shares no mutable storage with v.
func TestProperty_DeepCloneIsStructurallyEqualAndIndependent(t *testing.T) {
	rnd := rand.New(1)
	for i := 0; i < 500; i++ {
		v := randomValue(rnd, 3)
		clone := DeepClone(v)
		if !Equals(v, clone) {
			t.Fatalf("deep_clone(%s) not equal to original %s", Repr(clone), Repr(v))
		}
		mutateInPlace(clone)
		if Display(v) == Display(clone) && v.Variant() != VInt && v.Variant() != VBool && v.Variant() != VStr && v.Variant() != VFloat {
			// Container types must have diverged after mutation; scalars are
			// immutable by construction so no divergence is expected there.
			if containerVariant(v.Variant()) {
				t.Fatalf("mutating the clone affected shared storage for %s", Repr(v))
			}
		}
	}
}

func containerVariant(v Variant) bool {
	switch v {
	case VArray, VMap, VSet, VBuffer, VStruct:
		return true
	default:
		return false
	}
}

func mutateInPlace(v Value) {
	switch v.variant {
	case VArray:
		arr := v.Array()
		if len(arr) > 0 {
			arr[0] = NewStr("mutated-sentinel")
		} else if v.arrVal != nil {
			*v.arrVal = append(arr, NewStr("mutated-sentinel"))
		}
	case VMap:
		if v.mapVal != nil {
			v.mapVal.Set("mutated-sentinel", NewBool(true))
		}
	case VSet:
		if v.setVal != nil {
			v.setVal.Add(NewStr("mutated-sentinel"))
		}
	}
}

// TestProperty_EqualsReflexiveExceptNaN checks equals(v,v) = true for
// all v except when v contains a Float NaN (spec §8).
func TestProperty_EqualsReflexiveExceptNaN(t *testing.T) {
	rnd := rand.New(2)
	for i := 0; i < 500; i++ {
		v := randomValue(rnd, 2)
		if v.Variant() == VFloat && v.Float() != v.Float() {
			continue // NaN is intentionally excluded from reflexivity
		}
		if !Equals(v, v) {
			t.Fatalf("equals(%s, %s) should be true", Repr(v), Repr(v))
		}
	}
}

// TestProperty_FreezeThawLaws checks freeze(v).phase = crystal and
// thaw(freeze(v)) has phase = fluid and equals(.,v) (spec §8).
func TestProperty_FreezeThawLaws(t *testing.T) {
	rnd := rand.New(3)
	for i := 0; i < 500; i++ {
		v := randomValue(rnd, 2)
		frozen := Freeze(v)
		if frozen.Phase() != Crystal {
			t.Fatalf("freeze(%s).phase != crystal", Repr(v))
		}
		thawed := Thaw(frozen)
		if thawed.Phase() != Fluid {
			t.Fatalf("thaw(freeze(%s)).phase != fluid", Repr(v))
		}
		if !Equals(thawed, v) {
			t.Fatalf("thaw(freeze(%s)) = %s, want equal to original", Repr(v), Repr(thawed))
		}
	}
}
