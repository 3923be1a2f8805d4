// Package core is the library entry point: it parses JSON text, optionally
// focuses it with an expression, and renders the pretty and rough-schema
// outlines over one shared path registry.
package core

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/unpack/internal/cel"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
	"github.com/oakwood-commons/unpack/internal/pretty"
	"github.com/oakwood-commons/unpack/internal/schema"
)

// Evaluator evaluates expressions against a parsed document.
type Evaluator interface {
	Evaluate(expr string, doc jsonvalue.Value) (jsonvalue.Value, error)
}

// Engine renders documents. The zero value is not usable; call New.
type Engine struct {
	Evaluator Evaluator
	RootToken string
	Logger    logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithRootToken sets the token path classes start with.
func WithRootToken(token string) Option {
	return func(c *Engine) {
		c.RootToken = token
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(lgr logr.Logger) Option {
	return func(c *Engine) {
		c.Logger = lgr
	}
}

// New creates an Engine with defaults.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		RootToken: pathid.DefaultRoot,
		Logger:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.RootToken == "" {
		engine.RootToken = pathid.DefaultRoot
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	return engine, nil
}

// Result holds both renderings of one document. Pretty and Schema share
// Registry, so equal path IDs denote the same path in both trees.
type Result struct {
	Value    jsonvalue.Value
	Registry *pathid.Registry
	Renames  schema.RenameSet
	Pretty   *outline.Tree
	Schema   *outline.Tree
}

// Parse parses text into a document. Failures are *jsonvalue.ParseError.
func (e *Engine) Parse(text string) (jsonvalue.Value, error) {
	return jsonvalue.ParseString(text)
}

// Focus evaluates expr against doc. An empty expression returns doc.
func (e *Engine) Focus(expr string, doc jsonvalue.Value) (jsonvalue.Value, error) {
	if expr == "" {
		return doc, nil
	}
	if e == nil || e.Evaluator == nil {
		return jsonvalue.Value{}, fmt.Errorf("evaluator is not configured")
	}
	out, err := e.Evaluator.Evaluate(expr, doc)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return out, nil
}

// Build renders doc. It never fails.
func (e *Engine) Build(doc jsonvalue.Value) *Result {
	reg := pathid.NewRegistry(e.RootToken)
	renames := schema.CollectRenames(doc, reg)
	res := &Result{
		Value:    doc,
		Registry: reg,
		Renames:  renames,
		Pretty:   pretty.Render(doc, reg),
		Schema:   schema.Render(doc, renames, reg),
	}
	e.Logger.V(1).Info("rendered document",
		"kind", doc.Kind().String(),
		"paths", reg.Len(),
		"renames", renames.Keys(),
		"pretty_nodes", res.Pretty.Len(),
		"schema_nodes", res.Schema.Len())
	return res
}

// Unpack parses text and renders it.
func (e *Engine) Unpack(text string) (*Result, error) {
	return e.UnpackExpression(text, "")
}

// UnpackExpression parses text, focuses it with expr and renders the result.
func (e *Engine) UnpackExpression(text, expr string) (*Result, error) {
	doc, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	doc, err = e.Focus(expr, doc)
	if err != nil {
		return nil, err
	}
	return e.Build(doc), nil
}

// UnpackReader is Unpack over a reader.
func (e *Engine) UnpackReader(r io.Reader, expr string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return e.UnpackExpression(string(data), expr)
}

// InferSchema derives a flattening schema from sample records: the schema
// view of the records taken as one array, parsed back. As in that view, the
// first record to reach a path decides its type. The schema text is
// returned alongside so callers can show or save it.
func (e *Engine) InferSchema(records ...jsonvalue.Value) (*schema.Schema, string, error) {
	res := e.Build(jsonvalue.NewArray(records...))
	text := formatter.SchemaText(res.Schema)
	s, err := schema.Parse(text)
	if err != nil {
		return nil, text, fmt.Errorf("inferred schema: %w", err)
	}
	return s, text, nil
}
