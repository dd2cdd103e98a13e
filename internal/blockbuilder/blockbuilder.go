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

// Package blockbuilder seals a batch of admitted transactions into a
// hash-chained block (§4.5): it allocates the block's t/number/instant,
// emits header flakes, computes the content hash over spot-sorted flakes,
// appends the hash and signer flakes, persists via the Storage Façade, and
// hands the sealed block to the consensus collaborator.
package blockbuilder

import (
	"context"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/txblock"
	lerrors "github.com/stashdaddy/ledger/pkg/errors"

	"github.com/stashdaddy/ledger/internal/bootstrap"
	"github.com/stashdaddy/ledger/internal/consensus"
	"github.com/stashdaddy/ledger/storage"
)

// Head tracks the ledger's last-sealed block, the allocation source for the
// next block's t/number and the prevHash link.
type Head interface {
	// LastBlockNumber returns the most recently sealed block number, or 0
	// before genesis.
	LastBlockNumber() int64
	// LastHash returns the most recently sealed block's hash, or "" before
	// genesis.
	LastHash() string
	// NextT returns the logical time to assign to this block's own header
	// flakes: one less than the ledger's current t.
	NextT() int64
}

// BlockSubjectAllocator mints the per-block subject a block header's flakes
// attach to, one call per sealed block.
type BlockSubjectAllocator interface {
	NextBlockSubject() flake.SubjectID
}

// Builder seals batches of transactions into blocks, persists them, and
// hands them to the consensus collaborator.
type Builder struct {
	network  string
	dbid     string
	head     Head
	subjects BlockSubjectAllocator
	storage  *storage.Facade
	consensus consensus.Client
}

// New constructs a Builder wired to its collaborators.
func New(network, dbid string, head Head, subjects BlockSubjectAllocator, store *storage.Facade, client consensus.Client) *Builder {
	return &Builder{network: network, dbid: dbid, head: head, subjects: subjects, storage: store, consensus: client}
}

// Seal runs the five-step procedure of §4.5 over a batch of already-admitted
// transactions, sorted by descending t by the caller (the Transactor, which
// already enforces that ordering per transaction admission).
func (b *Builder) Seal(ctx context.Context, txs []txblock.Transaction, predicateName func(flake.PredicateID) string, nowMillis int64) (txblock.Block, error) {
	if len(txs) == 0 {
		return txblock.Block{}, lerrors.New(lerrors.InvalidTx, "blockbuilder: cannot seal an empty batch")
	}

	// Step 1: allocate block-t, block-number, instant.
	blockT := b.head.NextT()
	blockNumber := b.head.LastBlockNumber() + 1
	blockSubject := b.subjects.NextBlockSubject()

	// Step 2: emit block-header flakes.
	var flakes []flake.Flake
	for _, tx := range txs {
		flakes = append(flakes, tx.Flakes...)
	}
	flakes = append(flakes,
		flake.NewAssert(blockSubject, bootstrap.PredBlockNumber, flake.Object{Kind: flake.KindLong, I64: blockNumber}, blockT),
		flake.NewAssert(blockSubject, bootstrap.PredBlockInstant, flake.Object{Kind: flake.KindLong, I64: nowMillis}, blockT),
	)
	for _, tx := range txs {
		txSubject := txSubjectOf(tx)
		flakes = append(flakes, flake.NewAssert(blockSubject, bootstrap.PredBlockTransactions, flake.Object{Kind: flake.KindRef, Ref: txSubject}, blockT))
	}
	if blockNumber > 1 {
		prevHash := b.head.LastHash()
		flakes = append(flakes, flake.NewAssert(blockSubject, bootstrap.PredBlockPrevHash, flake.Object{Kind: flake.KindString, Str: prevHash}, blockT))
	}

	// Step 3: compute content hash over spot-sorted flakes, excluding
	// _block/hash and _block/ledgers (none are present yet, but
	// HashableFlakes' filter is the single source of truth for exclusion
	// either way).
	sorted := txblock.HashableFlakes(flakes, predicateName)
	hash, err := txblock.ContentHash(sorted)
	if err != nil {
		return txblock.Block{}, lerrors.Wrap(lerrors.Unexpected, err, "blockbuilder: content hash computation failed")
	}

	// Step 4: append _block/hash and _block/ledgers.
	flakes = append(flakes,
		flake.NewAssert(blockSubject, bootstrap.PredBlockHash, flake.Object{Kind: flake.KindString, Str: hash}, blockT),
		flake.NewAssert(blockSubject, bootstrap.PredBlockLedgers, flake.Object{Kind: flake.KindString, Str: signerID(ctx)}, blockT),
	)

	block := txblock.Block{
		BlockNumber:      blockNumber,
		Instant:          nowMillis,
		Hash:             hash,
		Flakes:           flakes,
		LedgerSignatures: []string{signerID(ctx)},
		Transactions:     txs,
	}
	if blockNumber > 1 {
		block.PrevHash = b.head.LastHash()
	}

	// Step 5: persist, then hand off to consensus.
	key := storage.BlockKey(b.network, b.dbid, blockNumber)
	encoded, err := txblock.CanonicalJSON(sorted)
	if err != nil {
		return txblock.Block{}, lerrors.Wrap(lerrors.Unexpected, err, "blockbuilder: canonical encoding failed")
	}
	if err := b.storage.Write(ctx, key, encoded); err != nil {
		return txblock.Block{}, lerrors.Wrap(lerrors.StorageIO, err, "blockbuilder: block persist failed")
	}

	propCtx, cancel := context.WithTimeout(ctx, b.consensus.Timeout())
	defer cancel()
	if err := b.consensus.Propose(propCtx, block); err != nil {
		return txblock.Block{}, lerrors.Wrap(lerrors.ConsensusTimeout, err, "blockbuilder: consensus proposal failed")
	}
	if err := b.consensus.Append(propCtx, block); err != nil {
		return txblock.Block{}, lerrors.Wrap(lerrors.ConsensusTimeout, err, "blockbuilder: consensus append failed")
	}

	return block, nil
}

// txSubjectOf returns the subject a _block/transactions reference should
// point at: the block builder references a transaction by the _tx/id
// subject the Transactor would have written alongside its flakes, or — for
// callers (tests, bootstrap parity checks) that never wrote one — derives a
// stable placeholder from the transaction's own t so references stay unique
// within the block.
func txSubjectOf(tx txblock.Transaction) flake.SubjectID {
	for _, f := range tx.Flakes {
		if f.P == bootstrap.PredTxID {
			return f.S
		}
	}
	return flake.NewSubjectID(bootstrap.CollTx, uint64(-tx.T))
}

// signerID identifies the ledger role process sealing this block. A real
// deployment derives this from the node's own identity/auth record; ctx
// carries it so callers can inject a test or dev-mode signer without the
// Builder depending on the identity/auth subsystem directly.
func signerID(ctx context.Context) string {
	if v, ok := ctx.Value(signerIDKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

type signerIDKey struct{}

// WithSignerID attaches the sealing ledger role's identity to ctx, consulted
// by Seal when it writes the _block/ledgers flake.
func WithSignerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, signerIDKey{}, id)
}
