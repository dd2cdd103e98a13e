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

package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/stashdaddy/ledger/internal/ledgercrypto"
)

func TestBootstrapIsDeterministic(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer := ledgercrypto.NewPrivateKeySigner(key)
	recoverer := ledgercrypto.NewSecp256k1Recoverer()

	cmd := Command{Raw: []byte(`{"type":"new-db","db":"net/db","nonce":1000,"expire":1000300000}`)}
	sig, err := signer.Sign(cmd.Raw)
	require.NoError(t, err)

	b1, err := Bootstrap(recoverer, cmd, sig, 1000)
	require.NoError(t, err)
	b2, err := Bootstrap(recoverer, cmd, sig, 1000)
	require.NoError(t, err)

	require.Equal(t, b1.Hash, b2.Hash)
	require.Equal(t, int64(1), b1.BlockNumber)
	require.Len(t, b1.Flakes, len(b2.Flakes))

	t.Logf("✓ genesis block hash stable across repeated bootstraps: %s", b1.Hash)
}

func TestBootstrapRejectsBadSignature(t *testing.T) {
	recoverer := ledgercrypto.NewSecp256k1Recoverer()
	cmd := Command{Raw: []byte(`{"type":"new-db"}`)}

	_, err := Bootstrap(recoverer, cmd, []byte{1, 2, 3}, 1000)
	require.Error(t, err)
}

func TestTablesAreCompleteAndStable(t *testing.T) {
	collIDs, predIDs := Tables()
	require.Contains(t, collIDs, "_collection")
	require.Contains(t, collIDs, "_block")
	require.Contains(t, predIDs, "_predicate/type")
	require.Contains(t, predIDs, "_block/hash")

	collIDs2, predIDs2 := Tables()
	require.Equal(t, collIDs, collIDs2)
	require.Equal(t, predIDs, predIDs2)
}

func TestSchemaContainsMetaPredicates(t *testing.T) {
	s := Schema()
	p, ok := s.Predicates["_predicate/type"]
	require.True(t, ok)
	require.Equal(t, PredPredicateType, p.ID)

	c, ok := s.Collections["_auth"]
	require.True(t, ok)
	require.Equal(t, "_auth", c.Name)
}
