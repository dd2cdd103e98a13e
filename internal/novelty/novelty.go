// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.
//
// The Ledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Ledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Ledger library. If not, see <http://www.gnu.org/licenses/>.

// Package novelty maintains the five sorted projections of flakes not yet
// flushed to a persisted index segment, plus running size/count statistics
// and reindex-eligibility backpressure.
package novelty

import (
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/btree"
	"github.com/paulbellamy/ratecounter"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
)

const btreeDegree = 32

// Stats is a point-in-time snapshot of novelty's size.
type Stats struct {
	Flakes int
	Bytes  int64
}

// Novelty holds the five btree-backed projections for one ledger. A single
// Novelty is single-writer (the Transactor holding the block-construction
// lock) / many-reader: readers call Range, which walks a snapshot without
// taking a lock.
type Novelty struct {
	mu sync.RWMutex

	trees map[flake.Order]*btree.BTreeG[flake.Flake]

	byteSize      int64
	count         int
	dirty         *roaring.Bitmap // collection-ids touched since last reindex
	absorbed      *ratecounter.RateCounter
	noveltyMin    int64
	noveltyMax    int64

	gaugeSize  *metrics.Gauge
	gaugeCount *metrics.Gauge
}

// New constructs an empty Novelty. noveltyMin/noveltyMax are the
// reindex-eligibility and backpressure thresholds, in bytes, corresponding
// to fdb-memory-reindex and fdb-memory-reindex-max.
func New(novelMetricPrefix string, noveltyMin, noveltyMax int64) *Novelty {
	n := &Novelty{
		trees:      make(map[flake.Order]*btree.BTreeG[flake.Flake], 5),
		dirty:      roaring.New(),
		absorbed:   ratecounter.NewRateCounter(time.Second),
		noveltyMin: noveltyMin,
		noveltyMax: noveltyMax,
	}
	for _, order := range []flake.Order{flake.SPOT, flake.PSOT, flake.POST, flake.OPST, flake.TSPO} {
		o := order
		n.trees[o] = btree.NewG(btreeDegree, func(a, b flake.Flake) bool { return flake.Less(o, a, b) })
	}
	if novelMetricPrefix != "" {
		n.gaugeSize = metrics.GetOrCreateGauge(novelMetricPrefix+`_novelty_size_bytes`, func() float64 {
			return float64(n.SizeBytes())
		})
		n.gaugeCount = metrics.GetOrCreateGauge(novelMetricPrefix+`_novelty_flake_count`, func() float64 {
			return float64(n.Count())
		})
	}
	return n
}

// sizeBytes estimates a flake's serialized size: a fixed tuple overhead plus
// the variable-width parts of the object and optional meta, computed once
// per flake on insertion per §4.2.
func sizeBytes(f flake.Flake) int64 {
	const fixedOverhead = 32 // s, p, t, op plus framing
	n := int64(fixedOverhead)
	switch f.O.Kind {
	case flake.KindString, flake.KindBigInt, flake.KindBigDec, flake.KindUUID, flake.KindURI, flake.KindJSON, flake.KindGeoJSON:
		n += int64(len(f.O.Str)) + int64(len(f.O.Big))
	case flake.KindBytes:
		n += int64(len(f.O.Bytes))
	default:
		n += 8
	}
	if f.M != nil {
		n += 16 * int64(len(f.M))
	}
	return n
}

// Absorb inserts flakes into spot/psot/tspo unconditionally, into post iff p
// is indexed or unique, and into opst iff p is a reference or tag. A
// retraction flake is absorbed exactly like an assertion — it is added, not
// used to delete (§4.2 "retract(flakes)").
func (n *Novelty) Absorb(flakes []flake.Flake, predicateOf func(flake.PredicateID) (schema.Predicate, bool)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, f := range flakes {
		n.trees[flake.SPOT].ReplaceOrInsert(f)
		n.trees[flake.PSOT].ReplaceOrInsert(f)
		n.trees[flake.TSPO].ReplaceOrInsert(f)

		if p, ok := predicateOf(f.P); ok {
			if p.Indexable() {
				n.trees[flake.POST].ReplaceOrInsert(f)
			}
			if p.ReverseIndexable() {
				n.trees[flake.OPST].ReplaceOrInsert(f)
			}
		}

		n.byteSize += sizeBytes(f)
		n.count++
		n.dirty.Add(f.S.CollectionID())
		n.absorbed.Incr(1)
	}
}

// Retract is the same operation as Absorb: per §4.2, a retraction flake is
// added to novelty exactly like an assertion. It exists as a distinct name
// so call sites document intent.
func (n *Novelty) Retract(flakes []flake.Flake, predicateOf func(flake.PredicateID) (schema.Predicate, bool)) {
	n.Absorb(flakes, predicateOf)
}

// Range returns a lazy, restartable sequence of flakes in the given order,
// with inclusive from / exclusive to bounds. It is safe to call
// concurrently with Absorb: the btree snapshot read locks only for the
// duration of the Ascend walk.
func (n *Novelty) Range(order flake.Order, from, to flake.Flake) []flake.Flake {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []flake.Flake
	n.trees[order].AscendRange(from, to, func(item flake.Flake) bool {
		out = append(out, item)
		return true
	})
	return out
}

// SizeBytes returns the running byte-size estimate of everything absorbed.
func (n *Novelty) SizeBytes() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.byteSize
}

// Count returns the running flake count.
func (n *Novelty) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.count
}

// Stats returns a snapshot of size and count together.
func (n *Novelty) Stats() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Stats{Flakes: n.count, Bytes: n.byteSize}
}

// DirtyCollections returns the set of collection-ids that have received at
// least one absorbed flake since the last call to ClearDirty, consulted by
// the Indexer (external) to scope reindex work and by post-index hygiene.
func (n *Novelty) DirtyCollections() *roaring.Bitmap {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dirty.Clone()
}

// ClearDirty resets the dirty-collections bitmap, called by the Indexer
// (external) after a successful reindex pass.
func (n *Novelty) ClearDirty() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dirty.Clear()
}

// AbsorbRate returns the recent absorb rate (flakes per window), consulted
// by backpressure logging.
func (n *Novelty) AbsorbRate() int64 {
	return n.absorbed.Rate()
}

// ReindexEligible reports whether novelty has grown past novelty-min and
// the Indexer is eligible to run a reindex pass.
func (n *Novelty) ReindexEligible() bool {
	return n.SizeBytes() >= n.noveltyMin
}

// Overloaded reports whether novelty has grown past novelty-max, at which
// point the Transactor must apply backpressure and reject new writes until
// the flush completes.
func (n *Novelty) Overloaded() bool {
	return n.SizeBytes() >= n.noveltyMax
}
