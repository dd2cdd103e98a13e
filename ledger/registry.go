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

package ledger

import (
	"fmt"
	"sync"

	lerrors "github.com/stashdaddy/ledger/pkg/errors"
)

// Registry is a process-wide directory of open Ledger instances, keyed by
// "network/dbid". A node process typically serves many ledgers out of one
// Registry; the CLI's serve command owns the default instance.
type Registry struct {
	mu      sync.RWMutex
	ledgers map[string]*Ledger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[string]*Ledger)}
}

func registryKey(network, dbid string) string {
	return fmt.Sprintf("%s/%s", network, dbid)
}

// Put registers an already-opened Ledger under its own network/dbid,
// rejecting a second registration for the same pair.
func (r *Registry) Put(l *Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(l.network, l.dbid)
	if _, exists := r.ledgers[key]; exists {
		return lerrors.Errorf(lerrors.InvalidConfiguration, "ledger: registry already has an open ledger for %q", key)
	}
	r.ledgers[key] = l
	return nil
}

// Get returns the open Ledger for (network, dbid), or false if none is
// registered.
func (r *Registry) Get(network, dbid string) (*Ledger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.ledgers[registryKey(network, dbid)]
	return l, ok
}

// Close closes and deregisters the ledger for (network, dbid). Closing an
// unregistered pair is a no-op.
func (r *Registry) Close(network, dbid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(network, dbid)
	l, ok := r.ledgers[key]
	if !ok {
		return nil
	}
	delete(r.ledgers, key)
	return l.Close()
}

// CloseAll closes every registered ledger, collecting (not stopping on) the
// first error so every backend still gets a chance to release its
// resources.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for key, l := range r.ledgers {
		if err := l.Close(); err != nil && first == nil {
			first = lerrors.Wrapf(lerrors.StorageIO, err, "ledger: failed to close %q", key)
		}
		delete(r.ledgers, key)
	}
	return first
}
