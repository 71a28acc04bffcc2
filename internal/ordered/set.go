// Package ordered provides an insertion-ordered set.
package ordered

// Set keeps the first-seen order of its members. The zero value is ready to use.
type Set[T comparable] struct {
	items []T
	seen  map[T]struct{}
}

// NewSet returns a set holding items in order, duplicates dropped.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item if absent and reports whether it was inserted.
func (s *Set[T]) Add(item T) bool {
	if s.seen == nil {
		s.seen = make(map[T]struct{})
	}
	if _, ok := s.seen[item]; ok {
		return false
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// Has reports membership.
func (s *Set[T]) Has(item T) bool {
	_, ok := s.seen[item]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the members in insertion order.
// It never returns nil so empty sets serialize as empty lists.
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
