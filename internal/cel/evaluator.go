// Package cel focuses a parsed document with a CEL expression before it is
// rendered. The document is bound to the variable "_".
package cel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
)

// RootVariable is the name the document is bound to.
const RootVariable = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the string, encoder, list and math
// extensions enabled.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate runs expr against doc and converts the result back into a
// document. Parts of doc the result selects keep their key order and number
// literals; objects the expression builds come back with sorted keys.
func (e *Evaluator) Evaluate(expr string, doc jsonvalue.Value) (jsonvalue.Value, error) {
	out, err := evaluateWithEnv(e.env, expr, toCEL(e.env.CELTypeAdapter(), doc))
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return fromCEL(out), nil
}

func evaluateWithEnv(env *cel.Env, expr string, data any) (ref.Val, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	result, _, err := prg.Eval(map[string]any{RootVariable: data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return result, nil
}

// ToGo converts a CEL value into plain Go values, recursing into lists and
// maps. Timestamps and durations become their string forms.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return string(v)
	case types.Timestamp:
		return v.Time.Format(time.RFC3339Nano)
	case types.Duration:
		return v.Duration.String()
	case traits.Mapper:
		out := make(map[string]any)
		it := v.Iterator()
		for it.HasNext() == types.True {
			k := it.Next()
			out[keyString(k)] = ToGo(v.Get(k))
		}
		return out
	case traits.Lister:
		out := make([]any, 0)
		it := v.Iterator()
		for it.HasNext() == types.True {
			out = append(out, ToGo(it.Next()))
		}
		return out
	}
	return fmt.Sprint(val.Value())
}

func keyString(k ref.Val) string {
	if s, ok := k.(types.String); ok {
		return string(s)
	}
	return fmt.Sprint(k.Value())
}

// Functions lists the non-operator functions and macros of the evaluator's
// environment as usage lines, e.g. "string.upperAscii() -> string".
func (e *Evaluator) Functions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 128)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(usageFromOverload(fn.Name(), o))
		}
	}
	for _, m := range e.env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function() + "() macro")
	}
	sort.Strings(out)
	return out
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	labels := make([]string, len(params))
	for i, p := range params {
		labels[i] = typeLabel(p)
	}
	var call string
	if o.IsMemberFunction() && len(labels) > 0 {
		call = labels[0] + "." + name + "(" + strings.Join(labels[1:], ", ") + ")"
	} else {
		call = name + "(" + strings.Join(labels, ", ") + ")"
	}
	if r := o.ResultType(); r != nil {
		call += " -> " + typeLabel(r)
	}
	return call
}
