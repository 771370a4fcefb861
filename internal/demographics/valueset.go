package demographics

// ValueSet is a set of answers that remembers the order in which they were
// first seen. The zero value is ready to use.
type ValueSet struct {
	order []string
	seen  map[string]struct{}
}

// NewValueSet returns a set holding values in the given order.
func NewValueSet(values ...string) *ValueSet {
	s := &ValueSet{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add records v and reports whether it was new.
func (s *ValueSet) Add(v string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Has reports whether v has been added.
func (s *ValueSet) Has(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[v]
	return ok
}

// Len returns the number of distinct values.
func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Values returns the values in discovery order. The slice is a copy.
func (s *ValueSet) Values() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}
