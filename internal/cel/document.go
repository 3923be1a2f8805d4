package cel

import (
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
)

// objectVal is a CEL map over a JSON object. Lookups and equality go
// through the embedded map; iteration follows source key order, and the
// object itself is kept so a selected subtree comes back unchanged.
type objectVal struct {
	traits.Mapper
	adapter types.Adapter
	keys    []string
	doc     jsonvalue.Value
}

func (o *objectVal) Iterator() traits.Iterator {
	return types.NewStringList(o.adapter, o.keys).Iterator()
}

// arrayVal is a CEL list over a JSON array that remembers the array.
type arrayVal struct {
	traits.Lister
	doc jsonvalue.Value
}

// toCEL wraps doc for evaluation. Containers keep their source form;
// scalars become plain CEL values.
func toCEL(adapter types.Adapter, doc jsonvalue.Value) ref.Val {
	switch doc.Kind() {
	case jsonvalue.KindObject:
		entries := make(map[ref.Val]ref.Val, doc.Len())
		keys := make([]string, 0, doc.Len())
		for _, m := range doc.Members() {
			k := types.String(m.Key)
			if _, dup := entries[k]; !dup {
				keys = append(keys, m.Key)
			}
			entries[k] = toCEL(adapter, m.Value)
		}
		return &objectVal{
			Mapper:  types.NewRefValMap(adapter, entries),
			adapter: adapter,
			keys:    keys,
			doc:     doc,
		}
	case jsonvalue.KindArray:
		elems := make([]ref.Val, doc.Len())
		for i, item := range doc.Items() {
			elems[i] = toCEL(adapter, item)
		}
		return &arrayVal{Lister: types.NewRefValList(adapter, elems), doc: doc}
	default:
		return adapter.NativeToValue(jsonvalue.ToNative(doc))
	}
}

// fromCEL converts an evaluation result into a document. Subtrees of the
// input come back as written; values built by the expression fall back to
// ToGo, so their object keys are sorted.
func fromCEL(val ref.Val) jsonvalue.Value {
	switch v := val.(type) {
	case *objectVal:
		return v.doc
	case *arrayVal:
		return v.doc
	case traits.Mapper:
		// Map literals may hold input subtrees as values.
		entries := make(map[string]any)
		it := v.Iterator()
		for it.HasNext() == types.True {
			k := it.Next()
			entries[keyString(k)] = fromCEL(v.Get(k))
		}
		return jsonvalue.FromNative(entries)
	case traits.Lister:
		items := make([]jsonvalue.Value, 0)
		it := v.Iterator()
		for it.HasNext() == types.True {
			items = append(items, fromCEL(it.Next()))
		}
		return jsonvalue.NewArray(items...)
	}
	return jsonvalue.FromNative(ToGo(val))
}
