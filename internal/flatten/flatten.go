// Package flatten turns JSON records into flat rows shaped by a parsed
// schema. Lists are exploded into one row per element, structs are
// unnested, and every leaf becomes a named column. The schema is dominant:
// fields it names but a record lacks come out null, and anything a record
// holds beyond the schema is dropped.
package flatten

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/schema"
)

// ErrTooManyRows is returned when one record explodes into more rows than
// the configured limit.
var ErrTooManyRows = errors.New("record explodes into too many rows")

// Row holds one cell per schema column, in column order. A zero Value is a
// null cell.
type Row []jsonvalue.Value

// Flattener flattens records against one schema.
type Flattener struct {
	schema  *schema.Schema
	maxRows int
	focus   func(jsonvalue.Value) (jsonvalue.Value, error)
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithMaxRows caps the rows a single record may produce; n <= 0 means no
// cap. Sibling lists multiply, so a few wide arrays can explode quickly.
func WithMaxRows(n int) Option {
	return func(f *Flattener) { f.maxRows = n }
}

// WithFocus transforms each record before Stream and WriteAll flatten it,
// e.g. to select a subtree with an expression.
func WithFocus(fn func(jsonvalue.Value) (jsonvalue.Value, error)) Option {
	return func(f *Flattener) { f.focus = fn }
}

// New returns a Flattener for s.
func New(s *schema.Schema, opts ...Option) *Flattener {
	f := &Flattener{schema: s}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Columns returns the schema's columns.
func (f *Flattener) Columns() []schema.Column { return f.schema.Columns }

// Record flattens one record. The result always holds at least one row:
// a record with nothing the schema names yields a row of nulls.
func (f *Flattener) Record(rec jsonvalue.Value) ([]Row, error) {
	top := f.schema.Fields
	var segs [][]jsonvalue.Value
	var err error
	if len(top) == 1 && top[0].Name == "" {
		segs, err = f.field(top[0], rec)
	} else {
		segs, err = f.members(top, rec)
	}
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(segs))
	for i, s := range segs {
		rows[i] = Row(s)
	}
	return rows, nil
}

// field returns the row segments for v under field: each segment holds the
// cells of the columns field covers.
func (f *Flattener) field(field *schema.Field, v jsonvalue.Value) ([][]jsonvalue.Value, error) {
	switch field.Type {
	case schema.TypeStruct:
		return f.members(field.Fields, v)
	case schema.TypeList:
		if field.Elem == nil {
			return [][]jsonvalue.Value{{}}, nil
		}
		if v.Kind() != jsonvalue.KindArray || v.Len() == 0 {
			// an empty or missing list still yields one row
			return f.field(field.Elem, jsonvalue.Null())
		}
		var out [][]jsonvalue.Value
		for _, item := range v.Items() {
			segs, err := f.field(field.Elem, item)
			if err != nil {
				return nil, err
			}
			out = append(out, segs...)
			if err := f.check(len(out)); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return [][]jsonvalue.Value{{Coerce(field.Type, v)}}, nil
	}
}

// members unnests the fields of an object: the rows of each member are
// crossed with those of the members before it.
func (f *Flattener) members(fields []*schema.Field, v jsonvalue.Value) ([][]jsonvalue.Value, error) {
	out := [][]jsonvalue.Value{{}}
	for _, field := range fields {
		var child jsonvalue.Value
		if v.Kind() == jsonvalue.KindObject {
			child, _ = v.Get(field.Name)
		}
		segs, err := f.field(field, child)
		if err != nil {
			return nil, err
		}
		if err := f.check(len(out) * len(segs)); err != nil {
			return nil, err
		}
		out = cross(out, segs)
	}
	return out, nil
}

func (f *Flattener) check(n int) error {
	if f.maxRows > 0 && n > f.maxRows {
		return fmt.Errorf("%w: more than %d", ErrTooManyRows, f.maxRows)
	}
	return nil
}

func cross(left, right [][]jsonvalue.Value) [][]jsonvalue.Value {
	out := make([][]jsonvalue.Value, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			row := make([]jsonvalue.Value, 0, len(l)+len(r))
			row = append(row, l...)
			out = append(out, append(row, r...))
		}
	}
	return out
}

var intBits = map[string]int{
	"Int8": 8, "Int16": 16, "Int32": 32, schema.TypeInt64: 64,
	"UInt8": 8, "UInt16": 16, "UInt32": 32, "UInt64": 64,
}

// Coerce casts v to a column type. A value that does not fit the type is
// null. Integer cells are written in plain decimal, so 789e5 becomes
// 78900000; every other cell keeps its literal.
func Coerce(typ string, v jsonvalue.Value) jsonvalue.Value {
	switch typ {
	case schema.TypeUnknown:
		return v
	case schema.TypeNull:
		return jsonvalue.Null()
	case schema.TypeBoolean:
		if v.Kind() == jsonvalue.KindBool {
			return v
		}
	case schema.TypeString, "Utf8":
		if v.Kind() == jsonvalue.KindString {
			return v
		}
	case schema.TypeFloat64, "Float32":
		if v.IsNumber() {
			return v
		}
	default:
		if bits, ok := intBits[typ]; ok && v.Kind() == jsonvalue.KindInt {
			if n, ok := fitInt(v.Str(), bits, typ[0] == 'U'); ok {
				return jsonvalue.NewNumber(n)
			}
		}
	}
	return jsonvalue.Null()
}

func fitInt(literal string, bits int, unsigned bool) (string, bool) {
	fl, _, err := big.ParseFloat(literal, 10, 256, big.ToNearestEven)
	if err != nil {
		return "", false
	}
	n, acc := fl.Int(nil)
	if acc != big.Exact {
		return "", false
	}
	lo, hi := new(big.Int), new(big.Int).Lsh(big.NewInt(1), uint(bits))
	if unsigned {
		hi.Sub(hi, big.NewInt(1))
	} else {
		hi.Rsh(hi, 1)
		lo.Neg(hi)
		hi.Sub(hi, big.NewInt(1))
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return "", false
	}
	return n.String(), true
}
