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

package txblock

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"

	"github.com/stashdaddy/ledger/common/flake"
)

// CanonicalJSON renders flakes (already in spot order) as the tuple-form
// JSON array [[s,p,o,t,op,m], ...] used as the block-content hash input.
// m is omitted per flake when nil, matching the hash-stability rule.
func CanonicalJSON(sortedFlakes []flake.Flake) ([]byte, error) {
	tuples := make([][]any, len(sortedFlakes))
	for i, f := range sortedFlakes {
		tuples[i] = f.Tuple()
	}
	return json.Marshal(tuples)
}

// ContentHash computes sha3_256(canonical-json(sortedFlakes)) and returns it
// as a lowercase hex string, as recorded in the _block/hash flake.
func ContentHash(sortedFlakes []flake.Flake) (string, error) {
	canon, err := CanonicalJSON(sortedFlakes)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// CommandHash computes tx-id = sha3_256(cmd) over the raw command bytes.
func CommandHash(cmd []byte) string {
	sum := sha3.Sum256(cmd)
	return hex.EncodeToString(sum[:])
}
