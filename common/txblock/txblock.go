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

// Package txblock defines the Transaction and Block shapes and the
// content-addressed, hash-chained block hash rule.
package txblock

import (
	"sort"

	"github.com/stashdaddy/ledger/common/flake"
)

// Transaction is one signed command's worth of flakes, all sharing one t.
type Transaction struct {
	TxID      string
	Author    flake.SubjectID
	Nonce     int64
	Command   []byte
	Signature []byte
	Flakes    []flake.Flake
	T         int64
}

// Block is a sealed, hash-chained batch of transactions.
type Block struct {
	BlockNumber      int64
	Instant          int64
	PrevHash         string
	Hash             string
	Flakes           []flake.Flake
	LedgerSignatures []string
	Transactions     []Transaction
}

// HashPredicateName and LedgersPredicateName are the meta-collection
// predicates whose flakes are excluded from the canonical hash input — they
// record the hash itself and its signers, and so cannot be hashed over.
const (
	HashPredicateName    = "_block/hash"
	LedgersPredicateName = "_block/ledgers"
)

// HashableFlakes returns the subset of flakes eligible for the block-content
// hash: every flake except those whose predicate is _block/hash or
// _block/ledgers, sorted into spot order. byName resolves a predicate id to
// its name so exclusion can be checked; it is the schema cache's
// PredicateByID in production and a synthetic lookup in bootstrap/tests.
func HashableFlakes(flakes []flake.Flake, predicateName func(flake.PredicateID) string) []flake.Flake {
	out := make([]flake.Flake, 0, len(flakes))
	for _, f := range flakes {
		name := predicateName(f.P)
		if name == HashPredicateName || name == LedgersPredicateName {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return flake.Less(flake.SPOT, out[i], out[j]) })
	return out
}
