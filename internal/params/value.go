package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a parameter.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union holding one parameter value.
type Value struct {
	kind Kind
	b    bool
	i    int
	f    float64
	s    string
}

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int) Value        { return Value{kind: KindInt, i: i} }
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }
func String(s string) Value  { return Value{kind: KindString, s: s} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload; 0 for other kinds.
func (v Value) Int() int { return v.i }

// Double returns the floating point payload; 0 for other kinds.
func (v Value) Double() float64 { return v.f }

// Str returns the string payload; "" for other kinds.
func (v Value) Str() string { return v.s }

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Format renders the value the way the engine's string-keyed store expects:
// booleans as 1/0, doubles in shortest round-trip form.
func (v Value) Format() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindInt:
		return strconv.Itoa(v.i)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return v.Format()
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	default:
		return v.s
	}
}

// ParseValue converts the textual form s into a value of kind k. Booleans
// accept the engine spellings (1/0, T/F, true/false in any case).
func ParseValue(k Kind, s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	switch k {
	case KindBool:
		switch strings.ToLower(trimmed) {
		case "1", "t", "true", "y", "yes", "on":
			return Bool(true), nil
		case "0", "f", "false", "n", "no", "off":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("not a boolean: %q", s)
	case KindInt:
		i, err := strconv.Atoi(trimmed)
		if err != nil {
			return Value{}, fmt.Errorf("not an integer: %q", s)
		}
		return Int(i), nil
	case KindDouble:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, fmt.Errorf("not a number: %q", s)
		}
		return Double(f), nil
	case KindString:
		return String(s), nil
	default:
		return Value{}, fmt.Errorf("unknown kind %v", k)
	}
}

// FromInterface converts decoded YAML/TOML/JSON scalars into a Value of the
// natural kind. Integral floats are kept as doubles; preset loading widens
// ints to doubles when the catalog asks for one.
func FromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int64:
		if t > math.MaxInt32 || t < math.MinInt32 {
			return Value{}, fmt.Errorf("integer out of range: %d", t)
		}
		return Int(int(t)), nil
	case uint64:
		if t > math.MaxInt32 {
			return Value{}, fmt.Errorf("integer out of range: %d", t)
		}
		return Int(int(t)), nil
	case float64:
		return Double(t), nil
	case string:
		return String(t), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}
