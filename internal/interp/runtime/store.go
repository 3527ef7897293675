package runtime

// Store is the realm-scoped Object Store (§4.2): a slice-backed
// allocator handing out stable Handles. Objects live for the
// Interpreter's lifetime; nothing is reclaimed mid-run (§9 "documented
// leak bound" — the chosen alternative here, since the evaluator never
// runs long enough within one process invocation for cyclic garbage to
// matter, and reference-counting a graph that is never collected
// mid-run would be unexercised complexity; see DESIGN.md).
type Store struct {
	objects []*Object // index 0 is never used; handles are 1-based
}

// NewStore creates an empty Object Store.
func NewStore() *Store {
	return &Store{objects: make([]*Object, 1, 64)}
}

// Allocate records a freshly constructed Object and returns its handle,
// stamping the record's own id (§3.2 "id: the record's own handle").
func (s *Store) Allocate(o *Object) Handle {
	h := Handle(len(s.objects))
	o.id = h
	s.objects = append(s.objects, o)
	return h
}

// NewOrdinaryObject allocates a plain Object-class record with the
// given prototype.
func (s *Store) NewOrdinaryObject(prototype Handle, hasProto bool) Handle {
	o := newObject(ClassObject)
	o.Prototype = prototype
	o.HasProto = hasProto
	return s.Allocate(o)
}

// Get returns the live record for h, or nil if h is not (or no longer)
// a valid handle.
func (s *Store) Get(h Handle) *Object {
	if h == NoHandle || int(h) >= len(s.objects) {
		return nil
	}
	return s.objects[h]
}

// IsLive reports whether h currently names an allocated object.
func (s *Store) IsLive(h Handle) bool {
	return s.Get(h) != nil
}

// Len reports how many handles have ever been allocated (including any
// the host considers dead), useful for diagnostics only.
func (s *Store) Len() int {
	return len(s.objects) - 1
}
