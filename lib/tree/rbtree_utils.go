package tree

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/benz9527/rbset/lib/infra"
)

var (
	ErrRBTreeRootViolation  = errors.New("rbtree root violation")
	ErrRBTreeRedViolation   = errors.New("rbtree red violation")
	ErrRBTreeBlackViolation = errors.New("rbtree black violation")
	ErrRBTreeOrderViolation = errors.New("rbtree order violation")
	ErrRBTreeLinkViolation  = errors.New("rbtree link violation")
	ErrRBTreeSizeViolation  = errors.New("rbtree size violation")
)

func isBlack[V infra.OrderedKey](node RBNode[V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[V infra.OrderedKey](node RBNode[V]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[V infra.OrderedKey](target, to RBNode[V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[V](aux) {
			depth++
		}
	}
	return depth
}

// inorder walks the nodes by the parent-free explicit stack.
func inorder[V infra.OrderedKey](tree RBTree[V], fn func(node RBNode[V]) bool) {
	aux := tree.Root()
	if aux == nil {
		return
	}

	stack := make([]RBNode[V], 0, 32)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if !fn(aux) {
			return
		}
		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RootColorValidate checks the root is black, an empty tree is valid.
func RootColorValidate[V infra.OrderedKey](tree RBTree[V]) error {
	if root := tree.Root(); root != nil && (root.Color() != Black || root.Parent() != nil) {
		return infra.WrapErrorStack(ErrRBTreeRootViolation)
	}
	return nil
}

// Inorder traversal to validate no red node has a red child.
func RedViolationValidate[V infra.OrderedKey](tree RBTree[V]) error {
	var err error
	inorder[V](tree, func(node RBNode[V]) bool {
		if isRed[V](node) && (isRed[V](node.Left()) || isRed[V](node.Right())) {
			err = infra.WrapErrorStack(ErrRBTreeRedViolation)
			return false
		}
		return true
	})
	return err
}

// BFS traversal to load all nodes owning at least one NIL leaf.
func bfsLeaves[V infra.OrderedKey](tree RBTree[V]) []RBNode[V] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[V], 0, 32)
	queue := []RBNode[V]{aux}
	defer func() {
		clear(queue)
	}()

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

// BlackViolationValidate checks every NIL leaf has the same black depth.
//
// <X> is a RED node.
// [X] is a BLACK node (or NIL).
//
//	        [13]
//	        /  \
//	     <8>    [15]
//	     / \    /  \
//	  [6] [11] [14] [17]
//	  /              /
//	<1>            <16>
//
// 2-3-4 tree like:
//
//	     <8> --- [13] --- <15>
//	    /  \             /    \
//	   /    \           /      \
//	<1>-[6][11]      [14] <16>-[17]
//
// Each NIL leaf to root node black depth are equal.
func BlackViolationValidate[V infra.OrderedKey](tree RBTree[V]) error {
	leaves := bfsLeaves[V](tree)
	if leaves == nil {
		return nil
	}

	root := tree.Root()
	blackDepth := blackDepthTo[V](leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[V](leaves[i], root) != blackDepth {
			return infra.WrapErrorStack(ErrRBTreeBlackViolation)
		}
	}
	return nil
}

// OrderViolationValidate checks the inorder values are non-decreasing.
// Equal values may sit on both sides after rotations.
func OrderViolationValidate[V infra.OrderedKey](tree RBTree[V]) error {
	var (
		err  error
		prev RBNode[V]
	)
	inorder[V](tree, func(node RBNode[V]) bool {
		if prev != nil && infra.Compare[V](node.Value(), prev.Value()) < 0 {
			err = infra.WrapErrorStack(ErrRBTreeOrderViolation)
			return false
		}
		prev = node
		return true
	})
	return err
}

// LinkViolationValidate checks every child points back to its parent.
func LinkViolationValidate[V infra.OrderedKey](tree RBTree[V]) error {
	if root := tree.Root(); root != nil && root.Parent() != nil {
		return infra.WrapErrorStack(ErrRBTreeLinkViolation)
	}
	var err error
	inorder[V](tree, func(node RBNode[V]) bool {
		l, r := node.Left(), node.Right()
		if (l != nil && l.Parent() != node) || (r != nil && r.Parent() != node) {
			err = infra.WrapErrorStack(ErrRBTreeLinkViolation)
			return false
		}
		return true
	})
	return err
}

// SizeValidate checks Len equals the reachable nodes.
func SizeValidate[V infra.OrderedKey](tree RBTree[V]) error {
	count := int64(0)
	inorder[V](tree, func(RBNode[V]) bool {
		count++
		return true
	})
	if count != tree.Len() {
		return infra.WrapErrorStack(ErrRBTreeSizeViolation)
	}
	return nil
}

// Validate runs all the validations and combines the violations.
func Validate[V infra.OrderedKey](tree RBTree[V]) error {
	err := multierr.Combine(
		RootColorValidate[V](tree),
		RedViolationValidate[V](tree),
		BlackViolationValidate[V](tree),
		OrderViolationValidate[V](tree),
		LinkViolationValidate[V](tree),
		SizeValidate[V](tree),
	)
	return infra.WrapErrorStackWithMessage(err, "[rbtree] properties violation")
}
