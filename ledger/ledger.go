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

// Package ledger is the top-level handle for one (network, dbid) ledger: it
// owns the schema cache, the novelty layer, the ecount minter, and the
// Transactor/Builder pair that together turn signed commands into
// hash-chained blocks. It is the object the process-wide Registry hands
// out to callers.
package ledger

import (
	"context"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/common/txblock"
	lerrors "github.com/stashdaddy/ledger/pkg/errors"

	"github.com/stashdaddy/ledger/internal/blockbuilder"
	"github.com/stashdaddy/ledger/internal/bootstrap"
	"github.com/stashdaddy/ledger/internal/consensus"
	"github.com/stashdaddy/ledger/internal/ledgercrypto"
	"github.com/stashdaddy/ledger/internal/novelty"
	"github.com/stashdaddy/ledger/internal/specrunner"
	"github.com/stashdaddy/ledger/internal/transactor"
	"github.com/stashdaddy/ledger/storage"
)

// schemaHistoryLimit bounds the number of past-block schema snapshots kept
// for time-travel "as of block N" schema lookups; older snapshots are
// evicted and such lookups fall back to replaying from the genesis schema.
const schemaHistoryLimit = 256

// Ledger is a single (network, dbid) instance: one novelty layer, one
// schema cache, one Transactor/Builder pair. All exported methods are safe
// for concurrent use; writers (Commit, SealBlock) serialize on an internal
// mutex the way the teacher's block-construction lock serializes block
// insertion.
type Ledger struct {
	network string
	dbid    string

	mu          sync.Mutex
	t           int64
	blockNumber int64
	lastHash    string
	pending     []txblock.Transaction

	schema        atomic.Pointer[schema.Schema]
	schemaHistory *lru.Cache[int64, *schema.Schema]

	ecount  *transactor.Ecount
	novelty *novelty.Novelty
	specs   *specrunner.Runner
	storage *storage.Facade

	tx      *transactor.Transactor
	builder *blockbuilder.Builder
}

// Open constructs a Ledger wired to its collaborators and seeds its schema
// cache with seedSchema (the genesis schema on first open, or the schema
// recovered from the latest persisted snapshot on restart). network/dbid
// identify this ledger within the process-wide Registry.
func Open(network, dbid string, seedSchema *schema.Schema, recoverer ledgercrypto.Recoverer, backend storage.Backend, client consensus.Client, noveltyMin, noveltyMax int64) (*Ledger, error) {
	history, err := lru.New[int64, *schema.Schema](schemaHistoryLimit)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.Unexpected, err, "ledger: failed to allocate schema history cache")
	}

	l := &Ledger{
		network:       network,
		dbid:          dbid,
		schemaHistory: history,
		ecount:        transactor.NewEcount(),
		novelty:       novelty.New(network+"_"+dbid, noveltyMin, noveltyMax),
		specs:         specrunner.New(),
		storage:       storage.New(backend),
	}
	l.schema.Store(seedSchema)

	l.tx = transactor.New(recoverer, l.ecount, l.novelty, l.specs, l)
	l.builder = blockbuilder.New(network, dbid, l, l, l.storage, client)
	return l, nil
}

// Schema returns the currently published schema (db-before for the next
// transaction). Implements transactor.SchemaView.
func (l *Ledger) Schema() *schema.Schema {
	return l.schema.Load()
}

// NextT returns one less than the ledger's current logical time and
// advances it, shared by both transaction admission and block sealing so
// every flake a ledger ever writes carries a distinct, monotonically
// decreasing t. Implements transactor.SchemaView and blockbuilder.Head.
func (l *Ledger) NextT() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.t--
	return l.t
}

// LastBlockNumber implements blockbuilder.Head.
func (l *Ledger) LastBlockNumber() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blockNumber
}

// LastHash implements blockbuilder.Head.
func (l *Ledger) LastHash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastHash
}

// NextBlockSubject mints the per-block header subject from the reserved
// _block collection. Implements blockbuilder.BlockSubjectAllocator.
func (l *Ledger) NextBlockSubject() flake.SubjectID {
	return l.ecount.Mint(bootstrap.CollBlock)
}

// Commit runs cmd through the Transactor and, on success, queues the
// resulting transaction for the next SealBlock call.
func (l *Ledger) Commit(ctx context.Context, cmd transactor.Command, sig []byte) (txblock.Transaction, error) {
	tx, err := l.tx.Commit(ctx, cmd, sig)
	if err != nil {
		return txblock.Transaction{}, err
	}

	l.mu.Lock()
	l.pending = append(l.pending, tx)
	l.mu.Unlock()
	return tx, nil
}

// SealBlock seals every transaction queued since the last SealBlock call
// into a single hash-chained block, publishes the schema that results from
// applying the block's own flakes, and archives the schema that was current
// immediately before it under the prior block number for time-travel
// lookups (SchemaAsOf). Returns an InvalidTx-classified error if nothing is
// pending.
func (l *Ledger) SealBlock(ctx context.Context, nowMillis int64) (txblock.Block, error) {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(pending) == 0 {
		return txblock.Block{}, lerrors.New(lerrors.InvalidTx, "ledger: no pending transactions to seal")
	}

	before := l.Schema()

	block, err := l.builder.Seal(ctx, pending, bootstrap.PredicateName, nowMillis)
	if err != nil {
		l.mu.Lock()
		l.pending = append(pending, l.pending...)
		l.mu.Unlock()
		return txblock.Block{}, err
	}

	var allFlakes []flake.Flake
	for _, tx := range pending {
		allFlakes = append(allFlakes, tx.Flakes...)
	}
	after := transactor.ProjectSchema(before, allFlakes)

	l.mu.Lock()
	l.schemaHistory.Add(l.blockNumber, before)
	l.blockNumber = block.BlockNumber
	l.lastHash = block.Hash
	l.mu.Unlock()
	l.schema.Store(after)

	return block, nil
}

// SchemaAsOf returns the schema as it stood immediately after blockNumber
// committed, for time-travel queries. It reports false if the snapshot has
// aged out of the bounded history cache and the current schema if
// blockNumber is the ledger's latest.
func (l *Ledger) SchemaAsOf(blockNumber int64) (*schema.Schema, bool) {
	if blockNumber == l.LastBlockNumber() {
		return l.Schema(), true
	}
	return l.schemaHistory.Get(blockNumber)
}

// Stats returns the novelty layer's current size/count snapshot.
func (l *Ledger) Stats() novelty.Stats {
	return l.novelty.Stats()
}

// Close releases the underlying storage backend.
func (l *Ledger) Close() error {
	return l.storage.Close()
}
