package repository

// Tracker remembers the aggregates a repository has seen during one unit-of-work scope.
type Tracker[T comparable] interface {
	Add(item T)
	All() []T
	Len() int
}

// SeenSet is the default Tracker. Membership is by identity, so aggregates should be pointers.
// There is no removal; a new scope starts with a new SeenSet.
type SeenSet[T comparable] struct {
	members map[T]struct{}
	order   []T
}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet[T comparable]() *SeenSet[T] {
	return &SeenSet[T]{members: make(map[T]struct{})}
}

// Add records the item. Adding the same item twice has no effect.
func (s *SeenSet[T]) Add(item T) {
	if s.members == nil {
		s.members = make(map[T]struct{})
	}

	if _, ok := s.members[item]; ok {
		return
	}

	s.members[item] = struct{}{}
	s.order = append(s.order, item)
}

// All returns a copy of the current members.
func (s *SeenSet[T]) All() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)

	return out
}

// Len returns the number of members.
func (s *SeenSet[T]) Len() int {
	return len(s.order)
}
