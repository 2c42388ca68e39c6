package tree

import (
	"math"
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type checkData[V int | uint64] struct {
	color RBColor
	value V
}

func snapshot[V int | uint64](tree RBTree[V]) []checkData[V] {
	res := make([]checkData[V], 0, tree.Len())
	tree.Foreach(func(idx int64, color RBColor, value V) bool {
		res = append(res, checkData[V]{color, value})
		return true
	})
	return res
}

func requireRBTree[V int | uint64](t *testing.T, tree RBTree[V]) {
	t.Helper()
	require.NoError(t, Validate[V](tree))
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)
	require.Equal(t, Black, nilNode2.Color())
	require.Nil(t, nilNode2.Left())
	require.Nil(t, nilNode2.Right())
	require.Nil(t, nilNode2.Parent())
	require.True(t, nilNode2.isBlack())
	require.False(t, nilNode2.isRed())
	require.PanicsWithValue(t, "[rbtree] nil leaf node without direction", func() {
		_ = nilNode2.Direction()
	})
}

func TestRBColorAndDirectionString(t *testing.T) {
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "Red", Red.String())
	require.Equal(t, "RBColor(unknown)", RBColor(7).String())
	require.Equal(t, "Left", Left.String())
	require.Equal(t, "Root", Root.String())
	require.Equal(t, "Right", Right.String())
	require.Equal(t, "RBDirection(unknown)", RBDirection(5).String())
}

// Left rotate 2 and right rotate 4 are inverse.
//
//	  |              |
//	  2              4
//	 / \            / \
//	1   4   <==>   2   5
//	   / \        / \
//	  3   5      1   3
func TestRbtreeLeftAndRightRotate(t *testing.T) {
	tree := newRBTree[int]()
	x := &rbNode[int]{value: 2}
	l := &rbNode[int]{value: 1, parent: x}
	s := &rbNode[int]{value: 4, parent: x}
	sc := &rbNode[int]{value: 3, parent: s}
	sd := &rbNode[int]{value: 5, parent: s}
	x.left, x.right = l, s
	s.left, s.right = sc, sd
	tree.root, tree.count = x, 5

	tree.leftRotate(x)
	require.Equal(t, s, tree.root)
	require.Nil(t, s.parent)
	require.Equal(t, x, s.left)
	require.Equal(t, sd, s.right)
	require.Equal(t, s, x.parent)
	require.Equal(t, l, x.left)
	require.Equal(t, sc, x.right)
	require.Equal(t, x, sc.parent)
	require.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(tree.All()))
	require.NoError(t, LinkViolationValidate[int](tree))
	require.NoError(t, OrderViolationValidate[int](tree))

	tree.rightRotate(s)
	require.Equal(t, x, tree.root)
	require.Nil(t, x.parent)
	require.Equal(t, s, x.right)
	require.Equal(t, sc, s.left)
	require.Equal(t, s, sc.parent)
	require.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(tree.All()))
	require.NoError(t, LinkViolationValidate[int](tree))

	// Rotate a non-root node, the parent link is rewired.
	tree.rightRotate(s)
	require.Equal(t, sc, x.right)
	require.Equal(t, x, sc.parent)
	require.Equal(t, s, sc.right)
	require.Equal(t, sc, s.parent)
	require.Nil(t, s.left)
	require.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(tree.All()))
	require.NoError(t, LinkViolationValidate[int](tree))

	tree.leftRotate(l.parent)
	require.Equal(t, sc, tree.root)
	require.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(tree.All()))
	require.NoError(t, LinkViolationValidate[int](tree))
}

func TestRbtreeInvalidRotation(t *testing.T) {
	tree := newRBTree[int]()
	tree.Insert(1)
	require.PanicsWithValue(t, "[rbtree] left rotate node x is nil or x.right is nil", func() {
		tree.leftRotate(tree.root)
	})
	require.PanicsWithValue(t, "[rbtree] right rotate node x is nil or x.left is nil", func() {
		tree.rightRotate(tree.root)
	})
	require.Panics(t, func() {
		tree.leftRotate(nil)
	})
	requireRBTree[int](t, tree)
}

func TestRbtreeInsertAndRemove_Pred(t *testing.T) {
	tree := newRBTree[uint64](WithRBTreeRemoveBorrowPred[uint64]())

	steps := []struct {
		insert   bool
		value    uint64
		expected []checkData[uint64]
	}{
		{true, 52, []checkData[uint64]{{Black, 52}}},
		{true, 47, []checkData[uint64]{{Red, 47}, {Black, 52}}},
		{true, 3, []checkData[uint64]{{Red, 3}, {Black, 47}, {Red, 52}}},
		{true, 35, []checkData[uint64]{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}}},
		{true, 24, []checkData[uint64]{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}}},
		{false, 24, []checkData[uint64]{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}}},
		{false, 47, []checkData[uint64]{{Black, 3}, {Black, 35}, {Black, 52}}},
		{false, 52, []checkData[uint64]{{Red, 3}, {Black, 35}}},
		{false, 3, []checkData[uint64]{{Black, 35}}},
		{false, 35, []checkData[uint64]{}},
	}
	for _, step := range steps {
		if step.insert {
			tree.Insert(step.value)
		} else {
			require.True(t, tree.Remove(step.value))
			_, ok := tree.Search(step.value)
			require.False(t, ok)
		}
		require.Equal(t, step.expected, snapshot[uint64](tree))
		require.Equal(t, int64(len(step.expected)), tree.Len())
		requireRBTree[uint64](t, tree)
	}
	require.Nil(t, tree.Root())
}

func TestRbtreeRemove_Succ(t *testing.T) {
	tree := newRBTree[uint64]()
	for _, v := range []uint64{52, 47, 3, 35, 24} {
		tree.Insert(v)
	}
	require.True(t, tree.Remove(24))
	require.Equal(t, []checkData[uint64]{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}}, snapshot[uint64](tree))
	requireRBTree[uint64](t, tree)
}

func TestRbtree_RemoveMinAndMax(t *testing.T) {
	tree := newRBTree[uint64]()
	_, ok := tree.RemoveMin()
	require.False(t, ok)
	_, ok = tree.RemoveMax()
	require.False(t, ok)

	for _, v := range []uint64{52, 47, 3, 35, 24} {
		tree.Insert(v)
	}
	require.Equal(t, []checkData[uint64]{
		{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52},
	}, snapshot[uint64](tree))

	expected := [][]checkData[uint64]{
		{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}},
		{{Black, 35}, {Black, 47}, {Black, 52}},
		{{Black, 47}, {Red, 52}},
		{{Black, 52}},
		{},
	}
	for i, want := range []uint64{3, 24, 35, 47, 52} {
		v, ok := tree.RemoveMin()
		require.True(t, ok)
		require.Equal(t, want, v)
		require.Equal(t, expected[i], snapshot[uint64](tree))
		requireRBTree[uint64](t, tree)
	}
	require.Equal(t, int64(0), tree.Len())

	for v := uint64(0); v < 100; v++ {
		tree.Insert(v)
	}
	for want := uint64(99); ; want-- {
		v, ok := tree.RemoveMax()
		require.True(t, ok)
		require.Equal(t, want, v)
		requireRBTree[uint64](t, tree)
		if want == 0 {
			break
		}
	}
	require.Nil(t, tree.Root())
}

func TestRbtreeEmptyOperations(t *testing.T) {
	tree := NewRBTree[int]()
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, 0, tree.Height())
	require.Nil(t, tree.Root())

	node, ok := tree.Search(1)
	require.False(t, ok)
	require.Nil(t, node)
	_, err := tree.SearchErr(1)
	require.ErrorIs(t, err, ErrRBTreeNotFound)
	require.False(t, tree.Contains(1))
	require.False(t, tree.Remove(1))
	_, ok = tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)
	require.Empty(t, slices.Collect(tree.All()))
	tree.Foreach(func(idx int64, color RBColor, value int) bool {
		require.FailNow(t, "empty tree has no element")
		return true
	})
	tree.Release()
	requireRBTree[int](t, tree)
}

func scenarioA() RBTree[int] {
	tree := NewRBTree[int]()
	for _, v := range []int{8, 5, 15, 12, 19, 9, 13, 23, 10} {
		tree.Insert(v)
	}
	return tree
}

func TestRbtreeScenario_SearchAndTraverse(t *testing.T) {
	tree := scenarioA()
	requireRBTree[int](t, tree)
	require.Equal(t, int64(9), tree.Len())

	node, ok := tree.Search(10)
	require.True(t, ok)
	require.Equal(t, 10, node.Value())
	node, err := tree.SearchErr(10)
	require.NoError(t, err)
	require.Equal(t, 10, node.Value())
	require.Equal(t, []int{5, 8, 9, 10, 12, 13, 15, 19, 23}, slices.Collect(tree.All()))

	_min, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, 5, _min)
	_max, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, 23, _max)
}

func TestRbtreeScenario_Remove(t *testing.T) {
	tree := scenarioA()
	require.True(t, tree.Remove(15))
	_, ok := tree.Search(15)
	require.False(t, ok)
	require.Equal(t, int64(8), tree.Len())
	require.Equal(t, []int{5, 8, 9, 10, 12, 13, 19, 23}, slices.Collect(tree.All()))
	requireRBTree[int](t, tree)
}

func TestRbtreeScenario_HeightBound(t *testing.T) {
	tree := NewRBTree[int]()
	for i := 1; i <= 1000; i++ {
		tree.Insert(i)
	}
	requireRBTree[int](t, tree)
	require.LessOrEqual(t, float64(tree.Height()), 2*math.Log2(1001))
	require.Equal(t, lo.RangeFrom(1, 1000), slices.Collect(tree.All()))
}

func TestRbtreeScenario_RemoveAll(t *testing.T) {
	values := lo.Shuffle(lo.Range(2000))
	tree := NewRBTree[int]()
	for _, v := range values {
		tree.Insert(v)
	}
	for i, v := range lo.Shuffle(values) {
		require.True(t, tree.Remove(v))
		require.Equal(t, int64(len(values)-i-1), tree.Len())
		require.False(t, tree.Contains(v))
		if i%97 == 0 {
			requireRBTree[int](t, tree)
		}
	}
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
}

func TestRbtreeRemoveAbsent(t *testing.T) {
	tree := scenarioA()
	before := snapshot[int](tree)
	rootBefore := tree.Root()
	for _, v := range []int{-1, 0, 6, 11, 100} {
		require.False(t, tree.Remove(v))
		require.Equal(t, before, snapshot[int](tree))
		require.Equal(t, rootBefore, tree.Root())
		require.Equal(t, int64(9), tree.Len())
	}
	requireRBTree[int](t, tree)
}

func TestRbtreeDuplicates(t *testing.T) {
	tree := NewRBTree[int](WithRBTreeVerify[int]())
	for i := 0; i < 64; i++ {
		tree.Insert(i % 4)
	}
	require.Equal(t, int64(64), tree.Len())
	values := slices.Collect(tree.All())
	require.True(t, slices.IsSorted(values))
	for i := 0; i < 4; i++ {
		require.Equal(t, 16, lo.Count(values, i))
	}

	for i := 0; i < 16; i++ {
		require.True(t, tree.Remove(2))
	}
	require.False(t, tree.Remove(2))
	require.False(t, tree.Contains(2))
	require.Equal(t, int64(48), tree.Len())
	requireRBTree[int](t, tree)
}

func TestRbtreeNaN(t *testing.T) {
	nan := math.NaN()
	tree := NewRBTree[float64](WithRBTreeVerify[float64]())
	for _, v := range []float64{1, nan, 2, nan, -1} {
		tree.Insert(v)
	}
	require.Equal(t, int64(5), tree.Len())
	require.NoError(t, Validate[float64](tree))

	node, ok := tree.Search(nan)
	require.True(t, ok)
	require.True(t, math.IsNaN(node.Value()))
	require.True(t, tree.Contains(nan))
	minV, ok := tree.Min()
	require.True(t, ok)
	require.True(t, math.IsNaN(minV))

	values := slices.Collect(tree.All())
	require.Len(t, values, 5)
	require.True(t, math.IsNaN(values[0]))
	require.True(t, math.IsNaN(values[1]))
	require.Equal(t, []float64{-1, 1, 2}, values[2:])

	require.True(t, tree.Remove(nan))
	require.True(t, tree.Remove(nan))
	require.False(t, tree.Remove(nan))
	require.False(t, tree.Contains(nan))
	require.NoError(t, Validate[float64](tree))

	for _, v := range []float64{-1, 1, 2} {
		require.True(t, tree.Remove(v))
	}
	require.Zero(t, tree.Len())
	require.Nil(t, tree.Root())

	bulk := NewRBTreeFromValues[float64]([]float64{3, nan, 1, nan, 2}, WithRBTreeVerify[float64]())
	require.NoError(t, Validate[float64](bulk))
	require.True(t, bulk.Contains(nan))
	minV, ok = bulk.RemoveMin()
	require.True(t, ok)
	require.True(t, math.IsNaN(minV))
	require.True(t, bulk.Remove(nan))
	require.Equal(t, []float64{1, 2, 3}, slices.Collect(bulk.All()))
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, rmByPred bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	opts := []RBTreeOpt[uint64]{}
	if rmByPred {
		opts = append(opts, WithRBTreeRemoveBorrowPred[uint64]())
	}
	tree := newRBTree[uint64](opts...)

	for i := uint64(0); i < insertTotal+removeTotal; i++ {
		tree.Insert(i)
		requireRBTree[uint64](t, tree)
	}
	tree.Foreach(func(idx int64, color RBColor, value uint64) bool {
		require.Equal(t, uint64(idx), value)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		node, ok := tree.Search(i)
		require.True(t, ok)
		require.Equal(t, i, node.Value())
		require.True(t, tree.Remove(i))
		requireRBTree[uint64](t, tree)
	}
	tree.Foreach(func(idx int64, color RBColor, value uint64) bool {
		require.Equal(t, uint64(idx), value)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	testcases := []struct {
		name     string
		rmByPred bool
	}{
		{
			name: "rm by succ",
		},
		{
			name:     "rm by pred",
			rmByPred: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.rmByPred)
		})
	}
}

func TestRbtreeRandomInsertAndRemove_ReverseSequentialNumber(t *testing.T) {
	tree := newRBTree[int]()
	for i := 9999; i >= 0; i-- {
		tree.Insert(i)
		if i%1000 == 0 {
			requireRBTree[int](t, tree)
		}
	}
	require.Equal(t, lo.Range(10000), slices.Collect(tree.All()))
	for i := 9999; i >= 5000; i-- {
		require.True(t, tree.Remove(i))
	}
	requireRBTree[int](t, tree)
	require.Equal(t, lo.Range(5000), slices.Collect(tree.All()))
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, rmByPred bool, violationCheck bool) {
	insertElements := lo.Shuffle(lo.Map(lo.Range(total), func(_ int, _ int) uint64 {
		return randv2.Uint64() % uint64(total*4)
	}))
	removeElements := lo.Shuffle(slices.Clone(insertElements[:total/5]))

	opts := []RBTreeOpt[uint64]{}
	if rmByPred {
		opts = append(opts, WithRBTreeRemoveBorrowPred[uint64]())
	}
	tree := newRBTree[uint64](opts...)
	for _, v := range insertElements {
		tree.Insert(v)
		if violationCheck {
			requireRBTree[uint64](t, tree)
		}
	}
	requireRBTree[uint64](t, tree)

	sorted := slices.Clone(insertElements)
	slices.Sort(sorted)
	require.Equal(t, sorted, slices.Collect(tree.All()))

	for _, v := range removeElements {
		require.True(t, tree.Remove(v), "value %d", v)
		if violationCheck {
			requireRBTree[uint64](t, tree)
		}
	}
	requireRBTree[uint64](t, tree)

	for _, v := range removeElements {
		idx, _ := slices.BinarySearch(sorted, v)
		sorted = slices.Delete(sorted, idx, idx+1)
	}
	require.Equal(t, sorted, slices.Collect(tree.All()))
	require.Equal(t, int64(len(sorted)), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_RandomNumber(t *testing.T) {
	testcases := []struct {
		name           string
		rmByPred       bool
		total          int
		violationCheck bool
	}{
		{
			name:  "rm by succ 100000",
			total: 100000,
		},
		{
			name:     "rm by pred 100000",
			rmByPred: true,
			total:    100000,
		},
		{
			name:           "violation check rm by succ 2000",
			total:          2000,
			violationCheck: true,
		},
		{
			name:           "violation check rm by pred 2000",
			rmByPred:       true,
			total:          2000,
			violationCheck: true,
		},
	}
	t.Parallel()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.rmByPred, tc.violationCheck)
		})
	}
}

func TestRbtreeAll_LazyAndRestartable(t *testing.T) {
	tree := scenarioA()
	seq := tree.All()

	first := make([]int, 0, 3)
	for v := range seq {
		first = append(first, v)
		if len(first) == 3 {
			break
		}
	}
	require.Equal(t, []int{5, 8, 9}, first)
	require.Equal(t, []int{5, 8, 9, 10, 12, 13, 15, 19, 23}, slices.Collect(seq))
	require.Equal(t, []int{5, 8, 9, 10, 12, 13, 15, 19, 23}, slices.Collect(seq))
	requireRBTree[int](t, tree)
}

func TestRBTreeRelease(t *testing.T) {
	tree := newRBTree[uint64]()
	for i := uint64(0); i < 100_000; i++ {
		tree.Insert(i)
	}
	root := tree.root
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Nil(t, root.left)
	require.Nil(t, root.right)
	require.Nil(t, root.parent)

	// Reusable after release.
	tree.Insert(3)
	tree.Insert(1)
	require.Equal(t, []uint64{1, 3}, slices.Collect(tree.All()))
	requireRBTree[uint64](t, tree)
}

func TestRbtreeVerify(t *testing.T) {
	tree := newRBTree[int](WithRBTreeVerify[int](), nil)
	require.NotPanics(t, func() {
		for _, v := range lo.Shuffle(lo.Range(500)) {
			tree.Insert(v)
		}
		for _, v := range lo.Shuffle(lo.Range(500)) {
			tree.Remove(v)
		}
	})

	tree.Insert(1)
	tree.Insert(2)
	tree.count += 10
	require.Panics(t, func() {
		tree.Insert(3)
	})

	tree = newRBTree[int](WithRBTreeVerify[int]())
	tree.Insert(1)
	tree.Insert(2)
	tree.Insert(3)
	tree.root.right.color = Black
	require.Panics(t, func() {
		tree.Insert(0)
	})
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	tree := NewRBTree[int]()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
}

func BenchmarkRBTree_Search(b *testing.B) {
	b.StopTimer()
	tree := NewRBTreeFromValues[int](lo.Range(1 << 16))
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Search(i & (1<<16 - 1))
	}
}
