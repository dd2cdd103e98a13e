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

package consensus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/common/txblock"
)

func TestMemoryClientDefaultsTimeout(t *testing.T) {
	c := NewMemoryClient(0)
	require.Equal(t, 2000*time.Millisecond, c.Timeout())
}

func TestMemoryClientAppendRecordsBlocks(t *testing.T) {
	c := NewMemoryClient(time.Second)
	b := txblock.Block{BlockNumber: 1, Hash: "abc"}

	require.NoError(t, c.Propose(context.Background(), b))
	require.NoError(t, c.Append(context.Background(), b))

	applied := c.Applied()
	require.Len(t, applied, 1)
	require.Equal(t, "abc", applied[0].Hash)
}

func TestInstrumentedClientTracksCounts(t *testing.T) {
	inner := NewMemoryClient(time.Second)
	instrumented := NewInstrumentedClient(inner, true)

	b := txblock.Block{BlockNumber: 1}
	require.NoError(t, instrumented.Propose(context.Background(), b))
	require.NoError(t, instrumented.Append(context.Background(), b))

	stats := instrumented.Stats()
	require.Equal(t, uint64(1), stats.ProposeCount)
	require.Equal(t, uint64(1), stats.AppendCount)

	instrumented.ResetStats()
	require.Equal(t, uint64(0), instrumented.Stats().ProposeCount)
}

func TestInstrumentedClientDisabledPassesThrough(t *testing.T) {
	inner := NewMemoryClient(time.Second)
	instrumented := NewInstrumentedClient(inner, false)

	require.NoError(t, instrumented.Propose(context.Background(), txblock.Block{}))
	require.Equal(t, uint64(0), instrumented.Stats().ProposeCount)
}
