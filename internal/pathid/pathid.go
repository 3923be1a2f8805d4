// Package pathid names structural positions in a JSON tree.
//
// A Path is the sequence of descents (array item or object key) from the
// root. Every value reached through the same sequence shares one Path, so all
// elements of an array share the path of their parent plus an item step.
// Paths are interned in a Registry that hands out small integer IDs; those
// IDs are what separately rendered views use to refer to the same position.
package pathid

import "strings"

// DefaultRoot is the root token used when none is configured.
const DefaultRoot = "json-path"

// ItemToken is the class fragment for an array item step.
const ItemToken = "item"

// ID identifies an interned Path within one Registry.
type ID int

// None is never handed out by a Registry.
const None ID = -1

// Step is one descent: an array item when Item is set, an object key otherwise.
type Step struct {
	Key  string
	Item bool
}

// Path is an immutable structural position.
type Path struct {
	class string
	steps []Step
}

// Root returns the root path for token; an empty token means DefaultRoot.
func Root(token string) Path {
	if token == "" {
		token = DefaultRoot
	}
	return Path{class: token}
}

// Item returns the path of the elements of the array at p.
func (p Path) Item() Path {
	return p.with(Step{Item: true}, ItemToken)
}

// Key returns the path of member key of the object at p. Underscores in the
// key are written as hyphens in the class.
func (p Path) Key(key string) Path {
	return p.with(Step{Key: key}, SanitizeKey(key))
}

func (p Path) with(s Step, fragment string) Path {
	steps := make([]Step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Path{
		class: p.class + "-" + fragment,
		steps: append(steps, s),
	}
}

// Class returns the identifier string, e.g. "json-path-nested-struct-integers-item".
func (p Path) Class() string { return p.class }

func (p Path) String() string { return p.class }

// Steps returns a copy of the descents from the root.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// IsRoot reports whether p has no steps.
func (p Path) IsRoot() bool { return len(p.steps) == 0 }

// Normalized returns the flattened field name for p: the key steps joined
// with underscores, item steps dropped and hyphens turned into underscores.
// Nested path a -> [] -> b_c yields "a_b_c".
func (p Path) Normalized() string {
	parts := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		if s.Item {
			continue
		}
		parts = append(parts, strings.ReplaceAll(SanitizeKey(s.Key), "-", "_"))
	}
	return strings.Join(parts, "_")
}

// SanitizeKey returns the class fragment for an object key.
func SanitizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
