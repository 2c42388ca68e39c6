package main

import (
	"slices"

	"go.uber.org/zap"

	"github.com/benz9527/rbset/lib/infra"
	"github.com/benz9527/rbset/lib/tree"
	"github.com/benz9527/rbset/xlog"
)

var (
	classicValues = []int{8, 5, 15, 12, 19, 9, 13, 23, 10}
	classicSearch = 10
	classicRemove = 15
)

type report struct {
	found     bool
	before    []int
	removed   bool
	after     []int
	height    int
	remaining int64
}

// runClassic inserts the classic values one by one, searches, traverses
// and removes a value.
func runClassic(logger xlog.XLogger, rbt tree.RBTree[int]) (*report, error) {
	for _, v := range classicValues {
		rbt.Insert(v)
	}
	res := &report{}

	node, ok := rbt.Search(classicSearch)
	res.found = ok
	if ok {
		logger.Info("found", zap.Int("value", node.Value()), zap.Stringer("color", node.Color()))
	} else {
		logger.Warn("not found", zap.Int("value", classicSearch))
	}

	res.before = slices.Collect(rbt.All())
	logger.Info("traverse", zap.Ints("values", res.before), zap.Int("height", rbt.Height()))

	res.removed = rbt.Remove(classicRemove)
	if _, err := rbt.SearchErr(classicRemove); err != nil {
		logger.Info("removed", zap.Int("value", classicRemove), zap.Bool("ok", res.removed))
	}
	res.after = slices.Collect(rbt.All())
	logger.Info("traverse", zap.Ints("values", res.after), zap.Int("height", rbt.Height()))

	return res, finish(logger, rbt, res)
}

// runBulk reports the bulk loaded tree and drains its extremes.
func runBulk(logger xlog.XLogger, rbt tree.RBTree[int]) (*report, error) {
	res := &report{}
	res.before = slices.Collect(rbt.All())
	logger.Info("bulk loaded",
		zap.Ints("values", res.before),
		zap.Int64("len", rbt.Len()),
		zap.Int("height", rbt.Height()),
	)
	if minV, ok := rbt.RemoveMin(); ok {
		logger.Info("removed min", zap.Int("value", minV))
		res.removed = true
	}
	if maxV, ok := rbt.RemoveMax(); ok {
		logger.Info("removed max", zap.Int("value", maxV))
		res.removed = true
	}
	res.after = slices.Collect(rbt.All())
	logger.Info("traverse", zap.Ints("values", res.after), zap.Int("height", rbt.Height()))

	return res, finish(logger, rbt, res)
}

func finish(logger xlog.XLogger, rbt tree.RBTree[int], res *report) error {
	res.height, res.remaining = rbt.Height(), rbt.Len()
	if err := tree.Validate[int](rbt); err != nil {
		logger.ErrorStack(err, "tree properties violated")
		return infra.WrapErrorStackWithMessage(err, "[rbset] scenario")
	}
	return nil
}
