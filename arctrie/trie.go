// Package arctrie implements the masked-byte lookup trie used by the
// command database (spec.md §4.1, components C1/C2).
//
// Because MaskedByte equality ("common-bits" equality, see arccore) is
// symmetric but not transitive, masked bytes can never be used as map keys:
// a hash table would silently merge entries that only "sometimes" compare
// equal. The trie therefore dispatches on concrete, literal bytes at every
// step and keeps, at each depth, the full set of branches a masked edge
// could have sent the walk down — effectively a small NFA over 256 input
// symbols per node.
package arctrie

import "github.com/textpetgo/msgarc/arccore"

// Trie is a masked-byte trie mapping paths of arccore.MaskedByte to values
// of type T. The zero value is ready to use.
type Trie[T any] struct {
	root node[T]
}

type edge[T any] struct {
	mb   arccore.MaskedByte
	next *node[T]
}

type node[T any] struct {
	value    T
	hasValue bool
	edges    []edge[T]
}

// Add registers value at the end of path, creating nodes as needed. Shared
// prefixes (edges with the exact same MaskedByte, literal Value and Mask)
// are reused; this is structural sharing for trie compaction, not
// common-bits matching.
//
// Add does not detect duplicate/colliding paths — that is the command
// database's job (it must register identical-pattern definitions as
// alternatives instead of calling Add twice for the same path). Calling Add
// twice with the same path simply overwrites the previous value.
func (t *Trie[T]) Add(path []arccore.MaskedByte, value T) {
	n := &t.root
	for _, mb := range path {
		n = n.childFor(mb)
	}
	n.value = value
	n.hasValue = true
}

func (n *node[T]) childFor(mb arccore.MaskedByte) *node[T] {
	for i := range n.edges {
		if n.edges[i].mb == mb {
			return n.edges[i].next
		}
	}
	child := &node[T]{}
	n.edges = append(n.edges, edge[T]{mb: mb, next: child})
	return n.edges[len(n.edges)-1].next
}

// NewWalker returns a fresh PathWalker positioned at the root.
func (t *Trie[T]) NewWalker() *PathWalker[T] {
	w := &PathWalker[T]{trie: t}
	w.Reset()
	return w
}
