package tree

import (
	"github.com/benz9527/rbset/lib/infra"
)

// A nil *rbNode is the NIL leaf, and it is black.
type rbNode[V infra.OrderedKey] struct {
	parent *rbNode[V] // back link for the upward walks only
	left   *rbNode[V]
	right  *rbNode[V]
	value  V
	color  RBColor
}

func (node *rbNode[V]) Value() V {
	return node.value
}

func (node *rbNode[V]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *rbNode[V]) Left() RBNode[V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[V]) Right() RBNode[V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[V]) Parent() RBNode[V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[V]) sibling() *rbNode[V] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[V]) uncle() *rbNode[V] {
	return node.parent.sibling()
}

func (node *rbNode[V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[V]) minimum() *rbNode[V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[V]) maximum() *rbNode[V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[V]) pred() *rbNode[V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[V]) succ() *rbNode[V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}
