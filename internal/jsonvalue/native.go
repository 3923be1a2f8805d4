package jsonvalue

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ToNative converts v into plain Go values (map[string]any, []any, int64,
// float64, string, bool, nil) for consumers such as expression engines.
// Integral numbers that fit in int64 become int64; others become float64.
// Duplicate object keys collapse to the last occurrence.
func ToNative(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolean
	case KindInt:
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(v.text, 64)
		if f >= math.MinInt64 && f < math.MaxInt64 && f == math.Trunc(f) {
			return int64(f)
		}
		return f
	case KindFloat:
		f, _ := strconv.ParseFloat(v.text, 64)
		return f
	case KindString:
		return v.text
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = ToNative(item)
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = ToNative(m.Value)
		}
		return out
	default:
		return nil
	}
}

// FromNative converts plain Go values back into a Value. Map keys are sorted
// since Go maps carry no order. NaN and infinities have no JSON form and
// become null.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return NewBool(t)
	case string:
		return NewString(t)
	case []byte:
		return NewString(string(t))
	case int:
		return NewNumber(strconv.Itoa(t))
	case int32:
		return NewNumber(strconv.FormatInt(int64(t), 10))
	case int64:
		return NewNumber(strconv.FormatInt(t, 10))
	case uint64:
		return NewNumber(strconv.FormatUint(t, 10))
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromNative(item)
		}
		return NewArray(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: FromNative(t[k])}
		}
		return NewObject(members...)
	default:
		return NewString(fmt.Sprint(t))
	}
}

func fromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return NewNumber(strconv.FormatFloat(f, 'g', -1, 64))
}
