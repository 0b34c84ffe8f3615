package dupes

import (
	"sort"
	"sync"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

// pairKey is an unordered pair: a <= b.
type pairKey struct {
	a, b string
}

func keyOf(x, y string) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// OverrideSet holds the pairs an operator confirmed are not duplicates. It
// only grows and is safe for concurrent use.
type OverrideSet struct {
	mu    sync.RWMutex
	pairs map[pairKey]struct{}
}

func NewOverrideSet() *OverrideSet {
	return &OverrideSet{pairs: make(map[pairKey]struct{})}
}

// Mark records pair as not a duplicate regardless of its order. It reports
// whether the pair was new.
func (o *OverrideSet) Mark(pair types.DuplicatePair) bool {
	k := keyOf(pair.First, pair.Second)

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.pairs[k]; ok {
		return false
	}
	o.pairs[k] = struct{}{}
	return true
}

func (o *OverrideSet) Contains(pair types.DuplicatePair) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.pairs[keyOf(pair.First, pair.Second)]
	return ok
}

func (o *OverrideSet) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.pairs)
}

// List returns the marked pairs in normalized, sorted order.
func (o *OverrideSet) List() []types.DuplicatePair {
	o.mu.RLock()
	out := make([]types.DuplicatePair, 0, len(o.pairs))
	for k := range o.pairs {
		out = append(out, types.DuplicatePair{First: k.a, Second: k.b})
	}
	o.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Second < out[j].Second
	})
	return out
}
