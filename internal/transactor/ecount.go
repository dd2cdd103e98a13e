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

package transactor

import (
	"sync"

	"github.com/stashdaddy/ledger/common/flake"
)

// Ecount mints fresh subject ids, one monotonically increasing counter per
// collection, per §4.4 step 3 ("minting new subject-ids via ecount").
type Ecount struct {
	mu      sync.Mutex
	nextSub map[uint32]uint64
}

// NewEcount returns an Ecount with every counter starting at 1 (sub-id 0 is
// reserved for the collection's own schema subject, see bootstrap.Tables).
func NewEcount() *Ecount {
	return &Ecount{nextSub: make(map[uint32]uint64)}
}

// Mint returns the next unused subject-id within collectionID.
func (e *Ecount) Mint(collectionID uint32) flake.SubjectID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSub[collectionID]++
	return flake.NewSubjectID(collectionID, e.nextSub[collectionID])
}

// Observe advances collectionID's counter past id's sub-id, so that
// replaying an existing flake log (e.g. on ledger restart) never mints a
// subject-id that collides with one already recorded.
func (e *Ecount) Observe(id flake.SubjectID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cid, sub := id.CollectionID(), id.SubID()
	if e.nextSub[cid] < sub {
		e.nextSub[cid] = sub
	}
}
