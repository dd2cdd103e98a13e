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

// Package consensus names the external consensus/replication collaborator:
// leader election, log append and snapshotting are provided by it, not
// implemented here. This package supplies the narrow Client seam the Block
// Builder calls through, an in-memory stub for dev mode and tests, and an
// instrumented wrapper recording call latency.
package consensus

import (
	"context"
	"sync"
	"time"

	"github.com/stashdaddy/ledger/common/txblock"
)

// Client is the seam between the Block Builder and the consensus/
// replication group. Propose submits a sealed block for group agreement;
// Append records that agreement has been reached and the block is part of
// the durable log. A real RAFT group implements this interface; the stub
// below exists so the rest of the pipeline is runnable without one.
type Client interface {
	Propose(ctx context.Context, b txblock.Block) error
	Append(ctx context.Context, b txblock.Block) error
	Timeout() time.Duration
}

// MemoryClient is a single-node, in-memory stand-in for the consensus
// group, used by dev-mode (fdb-consensus-type=in-memory) and tests. It
// accepts every proposal immediately; there is no real replication.
type MemoryClient struct {
	mu      sync.Mutex
	applied []txblock.Block
	timeout time.Duration
}

// NewMemoryClient returns a Client that always succeeds, with the given
// group timeout (defaults to 2000ms per §5 "Timeouts" if zero).
func NewMemoryClient(timeout time.Duration) *MemoryClient {
	if timeout <= 0 {
		timeout = 2000 * time.Millisecond
	}
	return &MemoryClient{timeout: timeout}
}

func (c *MemoryClient) Propose(ctx context.Context, b txblock.Block) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (c *MemoryClient) Append(ctx context.Context, b txblock.Block) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = append(c.applied, b)
	return nil
}

func (c *MemoryClient) Timeout() time.Duration { return c.timeout }

// Applied returns every block Append has recorded, for test assertions.
func (c *MemoryClient) Applied() []txblock.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]txblock.Block, len(c.applied))
	copy(out, c.applied)
	return out
}

var _ Client = (*MemoryClient)(nil)
