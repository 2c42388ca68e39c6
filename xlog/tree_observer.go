package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/rbset/lib/infra"
	"github.com/benz9527/rbset/lib/tree"
)

var _ tree.Observer[int] = (*treeObserver[int])(nil)

// treeObserver prints the search path and the traversal in DEBUG level.
// Entries are checked before the fields are built, so it is almost free
// when the DEBUG level is disabled.
type treeObserver[V infra.OrderedKey] struct {
	logger *zap.Logger
}

func NewTreeObserver[V infra.OrderedKey](logger XLogger) tree.Observer[V] {
	return &treeObserver[V]{
		logger: named(logger, "rbtree").zap().WithOptions(zap.AddCallerSkip(-1)),
	}
}

func (o *treeObserver[V]) OnSearchStep(target, visited V, step int, next tree.RBDirection) {
	if ce := o.logger.Check(zapcore.DebugLevel, "search step"); ce != nil {
		ce.Write(
			zap.Any("target", target),
			zap.Any("visited", visited),
			zap.Int("step", step),
			zap.Stringer("next", next),
		)
	}
}

func (o *treeObserver[V]) OnSearchDone(target V, steps int, found bool) {
	msg := "search missed"
	if found {
		msg = "search found"
	}
	if ce := o.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(
			zap.Any("target", target),
			zap.Int("steps", steps),
		)
	}
}

func (o *treeObserver[V]) OnTraverse(idx int64, value V) {
	if ce := o.logger.Check(zapcore.DebugLevel, "traverse"); ce != nil {
		ce.Write(
			zap.Int64("idx", idx),
			zap.Any("value", value),
		)
	}
}
