package tree

import (
	"math/bits"
	"slices"

	"github.com/benz9527/rbset/lib/infra"
)

// NewRBTreeFromValues builds the tree from sorted values directly,
// no insert rebalance is required.
//
// The midpoint split keeps both subtrees' sizes differ by 1 at most,
// so every NIL leaf sits at depth d or d+1, d = floor(log2(n+1)).
// Levels [0, d) are painted black, the incomplete level d is red.
//
// n = 6, d = 2
//
//	      [4]
//	     /   \
//	  [2]     [6]
//	  / \     /
//	<1> <3> <5>
func NewRBTreeFromValues[V infra.OrderedKey](values []V, opts ...RBTreeOpt[V]) RBTree[V] {
	tree := newRBTree[V](opts...)
	if len(values) == 0 {
		return tree
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	redLevel := bits.Len64(uint64(len(sorted))+1) - 1
	tree.root = buildBalanced[V](sorted, nil, 0, redLevel)
	tree.count = int64(len(sorted))
	tree.verifyIfEnabled()
	return tree
}

func buildBalanced[V infra.OrderedKey](values []V, parent *rbNode[V], level, redLevel int) *rbNode[V] {
	if len(values) == 0 {
		return nil
	}
	mid := len(values) >> 1
	node := &rbNode[V]{
		value:  values[mid],
		color:  Black,
		parent: parent,
	}
	if level == redLevel {
		node.color = Red
	}
	node.left = buildBalanced[V](values[:mid], node, level+1, redLevel)
	node.right = buildBalanced[V](values[mid+1:], node, level+1, redLevel)
	return node
}
