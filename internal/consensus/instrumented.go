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
	"sync/atomic"
	"time"

	"github.com/stashdaddy/ledger/common/txblock"
	"github.com/stashdaddy/ledger/log"
)

// ClientStats holds accumulated statistics for Client operations.
type ClientStats struct {
	ProposeCount  uint64
	ProposeTimeNs uint64
	AppendCount   uint64
	AppendTimeNs  uint64
	TimeoutCount  uint64
}

// InstrumentedClient wraps a Client with timing instrumentation, enabling
// performance monitoring without modifying consensus implementations.
type InstrumentedClient struct {
	inner   Client
	enabled bool

	proposeCount  uint64
	proposeTimeNs uint64
	appendCount   uint64
	appendTimeNs  uint64
	timeoutCount  uint64
}

// NewInstrumentedClient wraps inner with instrumentation. Set enabled=false
// to minimize overhead when metrics aren't needed.
func NewInstrumentedClient(inner Client, enabled bool) *InstrumentedClient {
	return &InstrumentedClient{inner: inner, enabled: enabled}
}

func (c *InstrumentedClient) Propose(ctx context.Context, b txblock.Block) error {
	if !c.enabled {
		return c.inner.Propose(ctx, b)
	}

	start := time.Now()
	err := c.inner.Propose(ctx, b)
	elapsed := uint64(time.Since(start).Nanoseconds())

	atomic.AddUint64(&c.proposeCount, 1)
	atomic.AddUint64(&c.proposeTimeNs, elapsed)
	if ctx.Err() != nil {
		atomic.AddUint64(&c.timeoutCount, 1)
	}
	return err
}

func (c *InstrumentedClient) Append(ctx context.Context, b txblock.Block) error {
	if !c.enabled {
		return c.inner.Append(ctx, b)
	}

	start := time.Now()
	err := c.inner.Append(ctx, b)
	elapsed := uint64(time.Since(start).Nanoseconds())

	atomic.AddUint64(&c.appendCount, 1)
	atomic.AddUint64(&c.appendTimeNs, elapsed)
	if ctx.Err() != nil {
		atomic.AddUint64(&c.timeoutCount, 1)
	}
	return err
}

func (c *InstrumentedClient) Timeout() time.Duration { return c.inner.Timeout() }

// Stats returns the accumulated statistics.
func (c *InstrumentedClient) Stats() ClientStats {
	return ClientStats{
		ProposeCount:  atomic.LoadUint64(&c.proposeCount),
		ProposeTimeNs: atomic.LoadUint64(&c.proposeTimeNs),
		AppendCount:   atomic.LoadUint64(&c.appendCount),
		AppendTimeNs:  atomic.LoadUint64(&c.appendTimeNs),
		TimeoutCount:  atomic.LoadUint64(&c.timeoutCount),
	}
}

// LogStats logs the accumulated statistics at debug level.
func (c *InstrumentedClient) LogStats() {
	stats := c.Stats()
	log.Debug("consensus client stats",
		"propose_count", stats.ProposeCount,
		"propose_time", time.Duration(stats.ProposeTimeNs),
		"append_count", stats.AppendCount,
		"append_time", time.Duration(stats.AppendTimeNs),
		"timeout_count", stats.TimeoutCount,
	)
}

// ResetStats clears all counters.
func (c *InstrumentedClient) ResetStats() {
	atomic.StoreUint64(&c.proposeCount, 0)
	atomic.StoreUint64(&c.proposeTimeNs, 0)
	atomic.StoreUint64(&c.appendCount, 0)
	atomic.StoreUint64(&c.appendTimeNs, 0)
	atomic.StoreUint64(&c.timeoutCount, 0)
}

var _ Client = (*InstrumentedClient)(nil)
