package tree

import (
	"errors"
	"iter"
	"math/bits"
	"sync/atomic"

	"github.com/benz9527/rbset/lib/infra"
)

var ErrRBTreeNotFound = errors.New("[rbtree] value not found")

var _ RBTree[int] = (*rbTree[int])(nil)

type rbTree[V infra.OrderedKey] struct {
	root           *rbNode[V]
	observer       Observer[V]
	cmp            infra.OrderedKeyComparator[V]
	count          int64
	isRmBorrowPred bool
	isVerify       bool
}

func (tree *rbTree[V]) valueCompare(v1, v2 V) int64 {
	return tree.cmp(v1, v2)
}

func (tree *rbTree[V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[V]) Root() RBNode[V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// Height is the node count of the longest root to leaf path.
func (tree *rbTree[V]) Height() int {
	if tree.root == nil {
		return 0
	}
	height := 0
	level := []*rbNode[V]{tree.root}
	for len(level) > 0 {
		height++
		next := make([]*rbNode[V], 0, len(level)<<1)
		for _, aux := range level {
			if aux.left != nil {
				next = append(next, aux.left)
			}
			if aux.right != nil {
				next = append(next, aux.right)
			}
		}
		level = next
	}
	return height
}

// The stack capacity to walk the tree, the height is
// bounded by 2*log2(n+1).
func (tree *rbTree[V]) stackCap() int {
	return bits.Len64(uint64(atomic.LoadInt64(&tree.count))+1) << 1
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.

/*
	  |                         |
	  X                         S
	 / \     leftRotate(X)     / \
	L   S    ============>    X   Sd
	   / \                   / \
	 Sc   Sd                L   Sc
*/
func (tree *rbTree[V]) leftRotate(x *rbNode[V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
}

/*
	     |                         |
	     X                         L
	    / \     rightRotate(X)    / \
	   L   R    ============>   Ld   X
	  / \                           / \
	Ld   Lc                       Lc   R
*/
func (tree *rbTree[V]) rightRotate(x *rbNode[V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
}

// Insert descends with "less goes left, otherwise right", so an equal
// value always lands on the right of the existing one.
// i1: Empty rbtree, the new node becomes the root and is painted black.
func (tree *rbTree[V]) Insert(value V) {
	var (
		y   *rbNode[V]
		dir = Root
	)
	for x := tree.root; x != nil; {
		y = x
		if /* less */ tree.valueCompare(value, x.value) < 0 {
			x, dir = x.left, Left
		} else /* greater or equal */ {
			x, dir = x.right, Right
		}
	}

	z := &rbNode[V]{
		value:  value,
		color:  Red,
		parent: y,
	}
	switch /* i1 */ dir {
	case Root:
		tree.root = z
	case Left:
		y.left = z
	case Right:
		y.right = z
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] insert a new value into unknown direction")
	}

	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	tree.verifyIfEnabled()
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X is the root, repaint it into black.

im2: Current node X's parent P is black, nothing is violated.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is the inner grandchild (triangle). Rotate P to the opposite direction.
After rotation it is still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: X is the outer grandchild (line), rotate G and swap P and G's color.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[V]) insertRebalance(x *rbNode[V]) {
	for x != nil {
		if /* im1 */ x.isRoot() {
			x.color = Black
			return
		}

		p := x.parent
		if /* im2 */ p.isBlack() {
			return
		}

		if p.isRoot() {
			// A red root is only transient, paint it back.
			p.color = Black
			return
		}

		gp := p.parent
		if /* im3 */ u := x.uncle(); u.isRed() {
			p.color = Black
			u.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if dir := x.Direction(); /* im4 */ dir != p.Direction() {
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (im4)")
			}
			x, p = p, x // enter im5 to fix
		}

		switch /* im5 */ p.Direction() {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (im5)")
		}
		p.color = Black
		gp.color = Red
		return
	}
}

// Remove returns false and leaves the tree untouched if value is absent.
func (tree *rbTree[V]) Remove(value V) bool {
	z := tree.lookup(value)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *rbTree[V]) RemoveMin() (V, bool) {
	_min := tree.root.minimum()
	if _min == nil {
		return *new(V), false
	}
	return tree.removeNode(_min), true
}

func (tree *rbTree[V]) RemoveMax() (V, bool) {
	_max := tree.root.maximum()
	if _max == nil {
		return *new(V), false
	}
	return tree.removeNode(_max), true
}

/*
r1: Current node Z has left and right node.
Find node Z's succ (or pred) Y, copy Y's value into Z and remove Y instead.
Y has one child at most.

Find succ:

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   copy(Y, Z)   L  ..
	    |   =========>       |
	    P                    P
	   / \                  / \
	  Y  ..                Y  ..   <- removed

r2: Y has a child C. The child must be red and Y must be black.
(See conclusion. Otherwise, black-violation)
Splice Y out and paint C into black.

r3: (1) Y is a red leaf node, remove directly.

r3: (2) Y is a black leaf node, the NIL left behind is double-black.
Rebalance with Y as the placeholder, then unlink Y.

r4: Y is the root without child, the tree becomes empty.
*/
func (tree *rbTree[V]) removeNode(z *rbNode[V]) V {
	removed := z.value
	y := z
	if /* r1 */ y.left != nil && y.right != nil {
		if tree.isRmBorrowPred {
			y = z.pred()
		} else {
			y = z.succ()
		}
		z.value = y.value
	}

	var child *rbNode[V]
	if y.left != nil {
		child = y.left
	} else {
		child = y.right
	}

	if /* r2 */ child != nil {
		switch dir := y.Direction(); dir {
		case Root:
			tree.root = child
		case Left:
			y.parent.left = child
		case Right:
			y.parent.right = child
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (r2)")
		}
		child.parent = y.parent
		if y.isBlack() {
			if child.isRed() {
				child.color = Black
			} else {
				tree.removeRebalance(child)
			}
		}
	} else if /* r4 */ y.isRoot() {
		tree.root = nil
	} else /* r3 */ {
		if /* r3 (2) */ y.isBlack() {
			tree.removeRebalance(y)
		}
		// Unlink node
		if y == y.parent.left {
			y.parent.left = nil
		} else {
			y.parent.right = nil
		}
	}

	y.parent = nil
	y.left = nil
	y.right = nil

	atomic.AddInt64(&tree.count, -1)
	tree.verifyIfEnabled()
	return removed
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X is the double-black position.
Sc is the same direction to X and it is X's sibling's child node (near nephew).
Sd is the opposite direction to X and it is X's sibling's child node (far nephew).

rm1: X is the root, the deficit is shared by all paths. Done.

rm2: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P.
(2) X is right node of P, right rotate P.
(3) Repaint S into black, P into red. X gets a black sibling, go on.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd] ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm3: The sibling S, nephew node Sc and Sd are black. Repaint S into red.
(1) P is red, repaint P into black. Done.
(2) P is black, P becomes the double-black position, recursive to handle P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay).
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black.
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, the far nephew Sd is red.
Ignore X's parent P's color (red or black is okay).
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) S takes P's color, P is repainted into black.
(4) Repaint Sd into black. Done.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 {Sc} <Sd>          [X] {Sc}           [X] {Sc}
*/
func (tree *rbTree[V]) removeRebalance(x *rbNode[V]) {
	for /* rm1 */ !x.isRoot() {
		dir := x.Direction()
		p, sibling := x.parent, x.sibling()
		if /* rm2 */ sibling.isRed() {
			switch dir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (rm2)")
			}
			sibling.color = Black
			p.color = Red
			sibling = x.sibling()
		}

		if sibling == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] double-black node without sibling")
		}

		var sc, sd *rbNode[V]
		if dir == Left {
			sc, sd = sibling.left, sibling.right
		} else {
			sc, sd = sibling.right, sibling.left
		}

		if /* rm3 */ sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			if /* rm3 (1) */ p.isRed() {
				p.color = Black
				return
			}
			/* rm3 (2) */
			x = p
			continue
		}

		if /* rm4 */ sd.isBlack() {
			switch dir {
			case Left:
				tree.rightRotate(sibling)
			case Right:
				tree.leftRotate(sibling)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (rm4)")
			}
			sc.color = Black
			sibling.color = Red
			sibling, sd = sc, sibling
		}

		switch /* rm5 */ dir {
		case Left:
			tree.leftRotate(p)
		case Right:
			tree.rightRotate(p)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (rm5)")
		}
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		return
	}
}

// lookup is the silent BST descent for the mutations.
func (tree *rbTree[V]) lookup(value V) *rbNode[V] {
	for aux := tree.root; aux != nil; {
		res := tree.valueCompare(value, aux.value)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return nil
}

func (tree *rbTree[V]) Search(value V) (RBNode[V], bool) {
	step := 0
	for aux := tree.root; aux != nil; {
		step++
		res := tree.valueCompare(value, aux.value)
		if res == 0 {
			tree.observer.OnSearchStep(value, aux.value, step, Root)
			tree.observer.OnSearchDone(value, step, true)
			return aux, true
		} else if res < 0 {
			tree.observer.OnSearchStep(value, aux.value, step, Left)
			aux = aux.left
		} else {
			tree.observer.OnSearchStep(value, aux.value, step, Right)
			aux = aux.right
		}
	}
	tree.observer.OnSearchDone(value, step, false)
	return nil, false
}

func (tree *rbTree[V]) SearchErr(value V) (RBNode[V], error) {
	node, ok := tree.Search(value)
	if !ok {
		return nil, ErrRBTreeNotFound
	}
	return node, nil
}

func (tree *rbTree[V]) Contains(value V) bool {
	return tree.lookup(value) != nil
}

func (tree *rbTree[V]) Min() (V, bool) {
	if _min := tree.root.minimum(); _min != nil {
		return _min.value, true
	}
	return *new(V), false
}

func (tree *rbTree[V]) Max() (V, bool) {
	if _max := tree.root.maximum(); _max != nil {
		return _max.value, true
	}
	return *new(V), false
}

// All returns the ascending values. Every range over it starts
// a new inorder walk.
func (tree *rbTree[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		tree.Foreach(func(idx int64, color RBColor, value V) bool {
			return yield(value)
		})
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[V]) Foreach(action func(idx int64, color RBColor, value V) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[V], 0, tree.stackCap())
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		tree.observer.OnTraverse(idx, aux.value)
		if !action(idx, aux.color, aux.value) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Release frees the nodes in post order, the deepest first.
// The tree is empty and reusable afterwards.
func (tree *rbTree[V]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}

	stack := make([]*rbNode[V], 0, tree.stackCap())
	defer func() {
		clear(stack)
	}()

	var last *rbNode[V]
	for aux != nil || len(stack) > 0 {
		if aux != nil {
			stack = append(stack, aux)
			aux = aux.left
			continue
		}
		peek := stack[len(stack)-1]
		if peek.right != nil && peek.right != last {
			aux = peek.right
			continue
		}
		stack = stack[:len(stack)-1]
		peek.left, peek.right, peek.parent = nil, nil, nil
		atomic.AddInt64(&tree.count, -1)
		last = peek
	}
}

func (tree *rbTree[V]) verifyIfEnabled() {
	if !tree.isVerify {
		return
	}
	if err := Validate[V](tree); err != nil {
		panic(err)
	}
}

type RBTreeOpt[V infra.OrderedKey] func(*rbTree[V])

// WithRBTreeObserver reports search and traversal progress to obs.
func WithRBTreeObserver[V infra.OrderedKey](obs Observer[V]) RBTreeOpt[V] {
	return func(tree *rbTree[V]) {
		if obs != nil {
			tree.observer = obs
		}
	}
}

// WithRBTreeRemoveBorrowPred removes a node with two children by
// borrowing its predecessor instead of the successor.
func WithRBTreeRemoveBorrowPred[V infra.OrderedKey]() RBTreeOpt[V] {
	return func(tree *rbTree[V]) {
		tree.isRmBorrowPred = true
	}
}

// WithRBTreeVerify validates all the rbtree properties after every
// structural mutation and panics on violation. Debug only, O(n) each.
func WithRBTreeVerify[V infra.OrderedKey]() RBTreeOpt[V] {
	return func(tree *rbTree[V]) {
		tree.isVerify = true
	}
}

func newRBTree[V infra.OrderedKey](opts ...RBTreeOpt[V]) *rbTree[V] {
	tree := &rbTree[V]{
		observer: nopObserver[V]{},
		cmp:      infra.Compare[V],
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}

func NewRBTree[V infra.OrderedKey](opts ...RBTreeOpt[V]) RBTree[V] {
	return newRBTree[V](opts...)
}
