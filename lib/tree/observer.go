package tree

import "github.com/benz9527/rbset/lib/infra"

type nopObserver[V infra.OrderedKey] struct{}

func (nopObserver[V]) OnSearchStep(V, V, int, RBDirection) {}
func (nopObserver[V]) OnSearchDone(V, int, bool)           {}
func (nopObserver[V]) OnTraverse(int64, V)                 {}

type multiObserver[V infra.OrderedKey] []Observer[V]

func (mo multiObserver[V]) OnSearchStep(target, visited V, step int, next RBDirection) {
	for _, o := range mo {
		o.OnSearchStep(target, visited, step, next)
	}
}

func (mo multiObserver[V]) OnSearchDone(target V, steps int, found bool) {
	for _, o := range mo {
		o.OnSearchDone(target, steps, found)
	}
}

func (mo multiObserver[V]) OnTraverse(idx int64, value V) {
	for _, o := range mo {
		o.OnTraverse(idx, value)
	}
}

// Observers fans out to all the non-nil observers.
func Observers[V infra.OrderedKey](observers ...Observer[V]) Observer[V] {
	mo := make(multiObserver[V], 0, len(observers))
	for _, o := range observers {
		if o != nil {
			mo = append(mo, o)
		}
	}
	switch len(mo) {
	case 0:
		return nopObserver[V]{}
	case 1:
		return mo[0]
	default:
	}
	return mo
}

// ObserverFuncs adapts plain functions, nil functions are skipped.
type ObserverFuncs[V infra.OrderedKey] struct {
	SearchStep func(target, visited V, step int, next RBDirection)
	SearchDone func(target V, steps int, found bool)
	Traverse   func(idx int64, value V)
}

func (f ObserverFuncs[V]) OnSearchStep(target, visited V, step int, next RBDirection) {
	if f.SearchStep != nil {
		f.SearchStep(target, visited, step, next)
	}
}

func (f ObserverFuncs[V]) OnSearchDone(target V, steps int, found bool) {
	if f.SearchDone != nil {
		f.SearchDone(target, steps, found)
	}
}

func (f ObserverFuncs[V]) OnTraverse(idx int64, value V) {
	if f.Traverse != nil {
		f.Traverse(idx, value)
	}
}
