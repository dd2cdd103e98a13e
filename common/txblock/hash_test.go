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
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/common/flake"
)

func sampleFlakes() []flake.Flake {
	s := flake.NewSubjectID(1, 1)
	p := flake.NewSubjectID(2, 1)
	flakes := []flake.Flake{
		flake.NewAssert(s, p, flake.Object{Kind: flake.KindString, Str: "b"}, -1),
		flake.NewAssert(s, p, flake.Object{Kind: flake.KindString, Str: "a"}, -1),
	}
	sort.Slice(flakes, func(i, j int) bool { return flake.Less(flake.SPOT, flakes[i], flakes[j]) })
	return flakes
}

func TestContentHashDeterministic(t *testing.T) {
	flakes := sampleFlakes()
	h1, err := ContentHash(flakes)
	require.NoError(t, err)
	h2, err := ContentHash(flakes)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestContentHashChangesWithInput(t *testing.T) {
	flakes := sampleFlakes()
	h1, err := ContentHash(flakes)
	require.NoError(t, err)

	flakes[0].T = -2
	h2, err := ContentHash(flakes)
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestHashableFlakesExcludesBlockMeta(t *testing.T) {
	blockSubject := flake.NewSubjectID(99, 1)
	hashPred := flake.NewSubjectID(3, 1)
	ledgersPred := flake.NewSubjectID(3, 2)
	otherPred := flake.NewSubjectID(3, 3)

	names := map[flake.PredicateID]string{
		hashPred:    HashPredicateName,
		ledgersPred: LedgersPredicateName,
		otherPred:   "_block/number",
	}

	flakes := []flake.Flake{
		flake.NewAssert(blockSubject, hashPred, flake.Object{Kind: flake.KindString, Str: "deadbeef"}, -3),
		flake.NewAssert(blockSubject, ledgersPred, flake.Object{Kind: flake.KindString, Str: "sig1"}, -3),
		flake.NewAssert(blockSubject, otherPred, flake.Object{Kind: flake.KindInt, I64: 1}, -3),
	}

	out := HashableFlakes(flakes, func(id flake.PredicateID) string { return names[id] })
	require.Len(t, out, 1)
	require.Equal(t, otherPred, out[0].P)
}

func TestCommandHashMatchesContentHashAlgorithm(t *testing.T) {
	cmd := []byte(`{"type":"new-db"}`)
	h := CommandHash(cmd)
	require.Len(t, h, 64)
	require.Equal(t, h, CommandHash(cmd))
}
