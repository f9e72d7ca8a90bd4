package ui

// Session holds the state of one menu invocation: the ordered items on
// display, the highlighted index, and the count of completed deletions.
// It is passed by pointer through a single-threaded loop; there is no
// locking and no global state.
type Session[T any] struct {
	items   []T
	index   int
	deleted int
}

// NewSession creates a session over items with the cursor on the first one.
func NewSession[T any](items []T) *Session[T] {
	return &Session[T]{items: items}
}

// Items returns the current item list in display order.
func (s *Session[T]) Items() []T {
	return s.items
}

// Len returns the number of items.
func (s *Session[T]) Len() int {
	return len(s.items)
}

// Item returns the item at i.
func (s *Session[T]) Item(i int) T {
	return s.items[i]
}

// Index returns the highlighted index. It is always within [0, Len())
// while the session is non-empty.
func (s *Session[T]) Index() int {
	return s.index
}

// SetIndex moves the highlight, clamping into range.
func (s *Session[T]) SetIndex(i int) {
	s.index = clamp(i, len(s.items))
}

// Remove deletes the item at i, preserving the relative order of the
// remaining items and clamping the highlight back into range.
func (s *Session[T]) Remove(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.index = clamp(s.index, len(s.items))
}

// RecordDeletion increments the session's destructive-action counter.
func (s *Session[T]) RecordDeletion() {
	s.deleted++
}

// Deleted returns the number of completed deletions this session.
func (s *Session[T]) Deleted() int {
	return s.deleted
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
