package eligibility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the dynamic type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a raw, possibly malformed input as it arrives from a feed: a worker
// ID in a batch, a quota key or limit, a cooldown. It is comparable, so it can
// key a QuotaTable. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Null() Value            { return Value{} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Ints wraps a list of worker IDs.
func Ints(ids ...int64) []Value {
	out := make([]Value, len(ids))
	for i, id := range ids {
		out[i] = Int(id)
	}
	return out
}

// AsInt returns the integer payload. ok is false for every other kind; no
// conversion from floats, strings or bools is attempted.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	default:
		return "null"
	}
}

// MarshalJSON writes floats in plain decimal notation with a fractional part,
// so a round trip through any JSON store never turns a Float into an Int.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("eligibility: cannot encode %v as JSON", v.f)
		}
		b := strconv.AppendFloat(nil, v.f, 'f', -1, 64)
		if bytes.IndexByte(b, '.') < 0 {
			b = append(b, ".0"...)
		}
		return b, nil
	case KindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON keeps the lexical kind of numbers: 101 is an Int, 101.0 and
// 1e2 are Floats. Integer literals outside the int64 range decode as Floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("eligibility: empty value")
	}
	switch data[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("eligibility: decode bool: %w", err)
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("eligibility: decode string: %w", err)
		}
		*v = String(s)
		return nil
	case '[', '{':
		return fmt.Errorf("eligibility: unsupported composite value %s", data)
	}
	parsed, err := parseNumber(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func parseNumber(text string) (Value, error) {
	if !bytes.ContainsAny([]byte(text), ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, fmt.Errorf("eligibility: decode number %q: %w", text, err)
	}
	return Float(f), nil
}

// ParseKey reads a JSON object key. Keys that spell a canonical base-10
// integer become Ints, everything else stays a String.
func ParseKey(key string) Value {
	if i, err := strconv.ParseInt(key, 10, 64); err == nil && strconv.FormatInt(i, 10) == key {
		return Int(i)
	}
	return String(key)
}
