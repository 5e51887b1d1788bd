package arctrie

// PathWalker walks a Trie one concrete byte at a time, keeping every branch
// that is still consistent with the bytes seen so far alive (masks may
// overlap, so more than one branch can accept the same concrete byte).
type PathWalker[T any] struct {
	trie   *Trie[T]
	active []*node[T]
	depth  int
}

// Reset returns the walker to the root, as if freshly created.
func (w *PathWalker[T]) Reset() {
	w.active = w.active[:0]
	w.active = append(w.active, &w.trie.root)
	w.depth = 0
}

// Step advances the walk by one concrete byte. It returns false, leaving the
// walker state unchanged, if no currently-live branch accepts b.
func (w *PathWalker[T]) Step(b byte) bool {
	next := make([]*node[T], 0, len(w.active))
	for _, n := range w.active {
		for i := range n.edges {
			if n.edges[i].mb.Accepts(b) {
				next = append(next, n.edges[i].next)
			}
		}
	}
	if len(next) == 0 {
		return false
	}
	w.active = next
	w.depth++
	return true
}

// Depth returns the number of bytes successfully stepped so far.
func (w *PathWalker[T]) Depth() int {
	return w.depth
}

// AtValue reports whether at least one currently-live branch has a value at
// the current depth.
func (w *PathWalker[T]) AtValue() bool {
	for _, n := range w.active {
		if n.hasValue {
			return true
		}
	}
	return false
}

// Values returns every value held by currently-live branches at the current
// depth, in node-registration (edge insertion) order. Most callers have at
// most one; more than one means two definitions share a byte pattern up to
// this depth and must be disambiguated by the caller (priority length /
// alternatives, per spec.md §4.1).
func (w *PathWalker[T]) Values() []T {
	var out []T
	for _, n := range w.active {
		if n.hasValue {
			out = append(out, n.value)
		}
	}
	return out
}

// AtEnd reports whether no currently-live branch has any further
// transitions, i.e. continuing to Step can never succeed regardless of the
// next byte.
func (w *PathWalker[T]) AtEnd() bool {
	for _, n := range w.active {
		if len(n.edges) > 0 {
			return false
		}
	}
	return true
}
