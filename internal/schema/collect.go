// Package schema infers the rough schema of a JSON value: a Struct/List/type
// outline in which repeated array element shapes appear once and field names
// that would collide once the structure is flattened are disambiguated.
package schema

import (
	"sort"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// RenameSet holds object keys that occur at more than one structural
// position and must be shown under a flattened name.
type RenameSet map[string]struct{}

func (s RenameSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the keys sorted.
func (s RenameSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type collector struct {
	reg     *pathid.Registry
	seen    pathid.Set
	keys    map[string]struct{}
	renames RenameSet
}

// CollectRenames walks v once and returns the keys seen at two or more
// distinct paths. A path already visited is not counted again, so the
// elements of an array contribute their keys once, but containers below a
// visited path are still walked.
func CollectRenames(v jsonvalue.Value, reg *pathid.Registry) RenameSet {
	c := &collector{
		reg:     reg,
		seen:    pathid.NewSet(),
		keys:    make(map[string]struct{}),
		renames: make(RenameSet),
	}
	c.walk(v, reg.Root())
	return c.renames
}

func (c *collector) walk(v jsonvalue.Value, parent pathid.Path) {
	switch v.Kind() {
	case jsonvalue.KindArray:
		path := parent.Item()
		for _, item := range v.Items() {
			c.seen.Add(c.reg.Intern(path))
			if item.IsContainer() {
				c.walk(item, path)
			}
		}
	case jsonvalue.KindObject:
		for _, m := range v.Members() {
			path := parent.Key(m.Key)
			if c.seen.Add(c.reg.Intern(path)) {
				if _, dup := c.keys[m.Key]; dup {
					c.renames[m.Key] = struct{}{}
				}
				c.keys[m.Key] = struct{}{}
			}
			if m.Value.IsContainer() {
				c.walk(m.Value, path)
			}
		}
	}
}
