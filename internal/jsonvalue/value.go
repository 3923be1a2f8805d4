// Package jsonvalue holds the parsed form of a JSON document: an explicit
// tagged variant that keeps object key order and number literals intact.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value entry of an object, in source order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string content, or the number literal as written
	items   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, text: s} }

// NewNumber returns a number value for a JSON number literal. The literal is
// kept verbatim; Kind is KindInt when the literal is mathematically integral
// (so "1.0" and "789e5" are ints) and KindFloat otherwise.
func NewNumber(literal string) Value {
	if IsIntegral(literal) {
		return Value{kind: KindInt, text: literal}
	}
	return Value{kind: KindFloat, text: literal}
}

// NewArray returns an array value holding items in order.
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// NewObject returns an object value holding members in order.
func NewObject(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: KindObject, members: members}
}

func (v Value) Kind() Kind { return v.kind }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// Bool returns the boolean payload; false for non-booleans.
func (v Value) Bool() bool { return v.boolean }

// Str returns the string payload for strings and the literal for numbers.
func (v Value) Str() string { return v.text }

// Items returns array elements. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns object members in source order. The slice must not be modified.
func (v Value) Members() []Member { return v.members }

// Len returns the number of children of a container, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the first member named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Literal returns the JSON text of a scalar value. Containers return an
// empty string; use Marshal for those.
func (v Value) Literal() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindInt, KindFloat:
		return v.text
	case KindString:
		return Quote(v.text)
	default:
		return ""
	}
}

// TypeClass returns the browser-facing value class of a scalar: one of
// "string", "number", "boolean" or "null".
func (v Value) TypeClass() string {
	switch v.kind {
	case KindBool:
		return "boolean"
	case KindInt, KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	default:
		return "object"
	}
}

// Marshal renders v as compact JSON.
func (v Value) Marshal() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	switch v.kind {
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			item.writeTo(b)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(m.Key))
			b.WriteByte(':')
			m.Value.writeTo(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(v.Literal())
	}
}

// Quote returns s as a JSON string literal. HTML characters are left as is;
// escaping for markup is the renderer's job.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// IsIntegral reports whether a JSON number literal denotes a whole number.
// The test is exact: it works on the decimal digits, not on a float64.
func IsIntegral(literal string) bool {
	s := strings.TrimPrefix(literal, "-")
	mantissa, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa = s[:i]
		e, err := strconv.Atoi(strings.TrimPrefix(s[i+1:], "+"))
		if err != nil {
			// Exponent overflowed int: huge positive exponents are integral,
			// huge negative ones are not unless the mantissa is zero.
			if strings.HasPrefix(s[i+1:], "-") {
				return strings.Trim(mantissa, "0.") == ""
			}
			return true
		}
		exp = e
	}
	intPart, fracPart := mantissa, ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		return true
	}
	trimmed := strings.TrimRight(digits, "0")
	trailingZeros := len(digits) - len(trimmed)
	// value = digits * 10^(exp - len(fracPart)); integral when the remaining
	// negative power is absorbed by trailing zeros. Compare against exp
	// directly so an extreme exponent cannot overflow the subtraction.
	return exp >= len(fracPart)-trailingZeros
}
