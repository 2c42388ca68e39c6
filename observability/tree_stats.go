package observability

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/rbset/lib/infra"
	"github.com/benz9527/rbset/lib/tree"
)

const (
	TreeSearchesMetric    = "rbset.tree.searches"
	TreeSearchStepsMetric = "rbset.tree.search.steps"
	TreeTraversedMetric   = "rbset.tree.traversed"
	TreeSizeMetric        = "rbset.tree.size"
)

var (
	foundAttrs  = metric.WithAttributes(attribute.Bool("found", true))
	missedAttrs = metric.WithAttributes(attribute.Bool("found", false))
)

var _ tree.Observer[int] = (*treeStats[int])(nil)

type treeStats[V infra.OrderedKey] struct {
	ctx       context.Context
	searches  metric.Int64Counter
	steps     metric.Int64Histogram
	traversed metric.Int64Counter
}

// NewTreeStatsObserver records the search and traversal counters by meter.
func NewTreeStatsObserver[V infra.OrderedKey](meter metric.Meter) tree.Observer[V] {
	return &treeStats[V]{
		ctx: context.Background(),
		searches: lo.Must[metric.Int64Counter](meter.Int64Counter(
			TreeSearchesMetric,
			metric.WithDescription("The searches against the tree, split by found."),
		)),
		steps: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			TreeSearchStepsMetric,
			metric.WithDescription("The visited nodes per search."),
			metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64),
		)),
		traversed: lo.Must[metric.Int64Counter](meter.Int64Counter(
			TreeTraversedMetric,
			metric.WithDescription("The values yielded by in-order traversals."),
		)),
	}
}

func (s *treeStats[V]) OnSearchStep(target, visited V, step int, next tree.RBDirection) {}

func (s *treeStats[V]) OnSearchDone(target V, steps int, found bool) {
	if found {
		s.searches.Add(s.ctx, 1, foundAttrs)
	} else {
		s.searches.Add(s.ctx, 1, missedAttrs)
	}
	s.steps.Record(s.ctx, int64(steps))
}

func (s *treeStats[V]) OnTraverse(idx int64, value V) {
	s.traversed.Add(s.ctx, 1)
}

// ObserveTreeSize reports the tree Len on each collection.
// The returned registration must be unregistered before the tree released.
func ObserveTreeSize[V infra.OrderedKey](meter metric.Meter, rbt tree.RBTree[V]) (metric.Registration, error) {
	size, err := meter.Int64ObservableGauge(
		TreeSizeMetric,
		metric.WithDescription("The values stored in the tree."),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] tree size gauge")
	}
	reg, err := meter.RegisterCallback(func(ctx context.Context, ob metric.Observer) error {
		ob.ObserveInt64(size, rbt.Len())
		return nil
	}, size)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] tree size callback")
	}
	return reg, nil
}
