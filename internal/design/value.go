package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/HendryAvila/designmem/internal/geom"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindString
	KindVector
	KindMap
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVector:
		return "vector3"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is a closed tagged variant for semantic attributes and parameters.
// The zero Value is null.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	str  string
	vec  geom.Vec3
	m    map[string]Value
	list []Value
}

// Attributes is a heterogeneous, per-command-kind attribute map.
type Attributes map[string]Value

// Number wraps a float.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps an integer as a number.
func Int(i int) Value { return Number(float64(i)) }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Vector wraps a 3D vector.
func Vector(v geom.Vec3) Value { return Value{kind: KindVector, vec: v} }

// Map wraps a nested attribute map. The map is copied.
func Map(m Attributes) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v.Clone()
	}
	return Value{kind: KindMap, m: cp}
}

// List wraps a list of values. The slice is copied.
func List(vs ...Value) Value {
	cp := make([]Value, len(vs))
	for i, v := range vs {
		cp[i] = v.Clone()
	}
	return Value{kind: KindList, list: cp}
}

// Vectors is shorthand for a list of vector values.
func Vectors(vs []geom.Vec3) Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Vector(v)
	}
	return Value{kind: KindList, list: out}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsVector returns the vector held by v.
func (v Value) AsVector() (geom.Vec3, bool) { return v.vec, v.kind == KindVector }

// AsMap returns a copy of the nested map held by v.
func (v Value) AsMap() (Attributes, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return Attributes(Map(v.m).m), true
}

// AsList returns a copy of the list held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return List(v.list...).list, true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMap:
		return Map(v.m)
	case KindList:
		return List(v.list...)
	default:
		return v
	}
}

// Equal reports deep equality. Numbers compare exactly.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.str == o.str
	case KindVector:
		return v.vec == o.vec
	case KindMap:
		return Attributes(v.m).Equal(o.m)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for logs and markdown output.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.str
	case KindVector:
		return fmt.Sprintf("(%g, %g, %g)", v.vec.X, v.vec.Y, v.vec.Z)
	case KindMap:
		keys := Attributes(v.m).Keys()
		var b bytes.Buffer
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", k, v.m[k])
		}
		b.WriteByte('}')
		return b.String()
	case KindList:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte(']')
		return b.String()
	}
	return "null"
}

// ─── Attributes helpers ─────────────────────────────────────────────────────

// Clone deep-copies the map. A nil map stays nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports deep equality of two attribute maps. nil equals empty.
func (a Attributes) Equal(o Attributes) bool {
	if len(a) != len(o) {
		return false
	}
	for k, v := range a {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Keys returns the keys sorted.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Number returns the numeric attribute k.
func (a Attributes) Number(k string) (float64, bool) { return a[k].AsNumber() }

// Vector returns the vector attribute k.
func (a Attributes) Vector(k string) (geom.Vec3, bool) { return a[k].AsVector() }

// ─── JSON ───────────────────────────────────────────────────────────────────

// vectorKey marks a vector in JSON so it cannot be confused with a map
// that happens to hold x/y/z entries.
const vectorKey = "$vec3"

// MarshalJSON encodes numbers, bools, strings, maps and lists natively and
// vectors as {"$vec3":[x,y,z]}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("design: non-finite number %v", v.num)
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.str)
	case KindVector:
		return json.Marshal(map[string][3]float64{vectorKey: {v.vec.X, v.vec.Y, v.vec.Z}})
	case KindMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return nil, fmt.Errorf("design: unknown value kind %d", v.kind)
}

// UnmarshalJSON decodes any JSON value into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("design: empty value")
	}
	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var list []Value
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if list == nil {
			list = []Value{}
		}
		*v = Value{kind: KindList, list: list}
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if enc, ok := raw[vectorKey]; ok && len(raw) == 1 {
			var xyz [3]float64
			if err := json.Unmarshal(enc, &xyz); err != nil {
				return fmt.Errorf("design: decoding %s: %w", vectorKey, err)
			}
			*v = Vector(geom.V(xyz[0], xyz[1], xyz[2]))
			return nil
		}
		m := make(map[string]Value, len(raw))
		for k, enc := range raw {
			var e Value
			if err := e.UnmarshalJSON(enc); err != nil {
				return fmt.Errorf("design: key %q: %w", k, err)
			}
			m[k] = e
		}
		*v = Value{kind: KindMap, m: m}
		return nil
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
		return nil
	}
}
