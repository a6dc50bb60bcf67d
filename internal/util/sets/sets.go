// Package sets provides a minimal generic set.
package sets

// Set is a hash set of comparable values.
type Set[T comparable] map[T]struct{}

// New creates a set holding vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was absent.
func (s Set[T]) Add(v T) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has reports whether v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Dedupe returns vals without repeats, keeping the first occurrence of each and
// skipping zero values.
func Dedupe[T comparable](vals []T) []T {
	var zero T
	seen := make(Set[T], len(vals))
	out := make([]T, 0, len(vals))
	for _, v := range vals {
		if v != zero && seen.Add(v) {
			out = append(out, v)
		}
	}
	return out
}
