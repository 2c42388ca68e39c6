package tree

import (
	"iter"

	"github.com/benz9527/rbset/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(unknown)"
}

// RBNode is a read-only view of a tree node. It must not be
// retained across a structural mutation of the owner tree.
type RBNode[V infra.OrderedKey] interface {
	Value() V
	Color() RBColor
	Left() RBNode[V]
	Right() RBNode[V]
	Parent() RBNode[V]
}

// RBTree is an ordered set of values. Equal values are kept,
// the later inserted one descends to the right.
// Values are ordered by infra.Compare, so a float NaN is stored,
// found and removed as the least value.
// It is not safe for concurrent mutation.
type RBTree[V infra.OrderedKey] interface {
	Len() int64
	Height() int
	Root() RBNode[V]
	Insert(value V)
	Search(value V) (RBNode[V], bool)
	SearchErr(value V) (RBNode[V], error)
	Contains(value V) bool
	Remove(value V) bool
	RemoveMin() (V, bool)
	RemoveMax() (V, bool)
	Min() (V, bool)
	Max() (V, bool)
	All() iter.Seq[V]
	Foreach(action func(idx int64, color RBColor, value V) bool)
	Release()
}

// Observer receives search and traversal progress. It is a debug
// aid, the tree behaves the same with or without it.
type Observer[V infra.OrderedKey] interface {
	// OnSearchStep is called once per comparison. next is Root on
	// exact match, otherwise the side the descent turns to.
	OnSearchStep(target, visited V, step int, next RBDirection)
	OnSearchDone(target V, steps int, found bool)
	OnTraverse(idx int64, value V)
}
