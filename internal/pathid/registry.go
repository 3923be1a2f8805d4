package pathid

// Registry interns paths by class. Two step sequences with the same class
// (for example keys "a_b" and "a-b") are the same position.
type Registry struct {
	root  Path
	ids   map[string]ID
	paths []Path
}

// NewRegistry returns an empty registry rooted at token.
func NewRegistry(token string) *Registry {
	return &Registry{
		root: Root(token),
		ids:  make(map[string]ID),
	}
}

// Root returns the registry's root path.
func (r *Registry) Root() Path { return r.root }

// Intern returns the ID for p, allocating one on first sight.
func (r *Registry) Intern(p Path) ID {
	if id, ok := r.ids[p.class]; ok {
		return id
	}
	id := ID(len(r.paths))
	r.ids[p.class] = id
	r.paths = append(r.paths, p)
	return id
}

// Lookup returns the ID previously interned for class.
func (r *Registry) Lookup(class string) (ID, bool) {
	id, ok := r.ids[class]
	return id, ok
}

// Path returns the first path interned under id.
func (r *Registry) Path(id ID) (Path, bool) {
	if id < 0 || int(id) >= len(r.paths) {
		return Path{}, false
	}
	return r.paths[id], true
}

func (r *Registry) Len() int { return len(r.paths) }

// Set is a set of path IDs.
type Set map[ID]struct{}

func NewSet() Set { return make(Set) }

// Add inserts id and reports whether it was absent.
func (s Set) Add(id ID) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}
