package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Display renders v the way a user-facing print would: no quotes on
// inner strings. Repr renders v the way a programmer-facing echo would:
// strings are quoted. Both are also used, via Display, as the stable
// keying form for Set and Map membership (spec §9 open question: keep
// display-string keying regardless of Value equality, so NaN is a
// stable key).
func Display(v Value) string { return render(v, false) }

func Repr(v Value) string { return render(v, true) }

func render(v Value, quoted bool) string {
	switch v.variant {
	case VNil:
		return "nil"
	case VBool:
		return strconv.FormatBool(v.boolVal)
	case VInt:
		return strconv.FormatInt(v.intVal, 10)
	case VFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case VStr:
		if quoted {
			return strconv.Quote(v.Str())
		}
		return v.Str()
	case VArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Array() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(render(e, true))
		}
		b.WriteByte(']')
		return b.String()
	case VMap:
		var b strings.Builder
		b.WriteByte('{')
		first := true
		if v.mapVal != nil {
			v.mapVal.Each(func(k string, val Value) {
				if !first {
					b.WriteString(", ")
				}
				first = false
				fmt.Fprintf(&b, "%s: %s", k, render(val, true))
			})
		}
		b.WriteByte('}')
		return b.String()
	case VSet:
		var b strings.Builder
		b.WriteString("set(")
		first := true
		if v.setVal != nil {
			v.setVal.Each(func(val Value) {
				if !first {
					b.WriteString(", ")
				}
				first = false
				b.WriteString(render(val, true))
			})
		}
		b.WriteByte(')')
		return b.String()
	case VBuffer:
		return fmt.Sprintf("buffer(%d bytes)", len(v.Buffer()))
	case VStruct:
		s := v.structVal
		if s == nil {
			return "struct{}"
		}
		var b strings.Builder
		b.WriteString(s.Name)
		b.WriteByte('{')
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", f, render(s.Values[i], true))
		}
		b.WriteByte('}')
		return b.String()
	case VClosure:
		name := "<anonymous>"
		if v.closureVal != nil && v.closureVal.Name != "" {
			name = v.closureVal.Name
		}
		return fmt.Sprintf("<closure %s>", name)
	case VChannel:
		return "<channel>"
	case VRef:
		return fmt.Sprintf("<ref %s>", render(v.refVal.Value, true))
	case VError:
		return fmt.Sprintf("<error %s>", render(*v.errVal, true))
	default:
		return "<?>"
	}
}

// IsTruthy implements spec §4.1's falsiness table: false for Nil, false
// Bool, zero Int, NaN Float, empty Str/Array/Map/Set/Buffer; true
// otherwise.
func IsTruthy(v Value) bool {
	switch v.variant {
	case VNil:
		return false
	case VBool:
		return v.boolVal
	case VInt:
		return v.intVal != 0
	case VFloat:
		return v.floatVal == v.floatVal // NaN != NaN
	case VStr:
		return v.Str() != ""
	case VArray:
		return len(v.Array()) != 0
	case VMap:
		return v.mapVal != nil && v.mapVal.Len() != 0
	case VSet:
		return v.setVal != nil && v.setVal.Len() != 0
	case VBuffer:
		return len(v.Buffer()) != 0
	default:
		return true
	}
}
