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

// Package storage names the five async, cancellable operations every
// persistence backend implements (§4.6), and a thin Facade that dispatches
// to one concrete Backend: in-memory, filesystem, S3-compatible or
// vault-style. Keys are unix-style paths derived from
// (network, dbid, block-or-index-key); callers build them with Key.
package storage

import (
	"context"
	"fmt"

	lerrors "github.com/stashdaddy/ledger/pkg/errors"
)

// Backend is the operation set every storage implementation provides.
// Every method is cancellable via ctx; a read targeting a missing key
// returns an error classifiable as lerrors.StorageNotFound via
// lerrors.Classify, never a bare nil/empty ambiguity.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Rename(ctx context.Context, oldKey, newKey string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives the unix-style storage path for one piece of ledger state, per
// §4.6 "Keys are unix-style paths derived from (network, dbid,
// block-or-index-key)".
func Key(network, dbid, blockOrIndexKey string) string {
	return fmt.Sprintf("%s/%s/%s", network, dbid, blockOrIndexKey)
}

// BlockKey is the key a block of the given number is stored under.
func BlockKey(network, dbid string, blockNumber int64) string {
	return Key(network, dbid, fmt.Sprintf("block/%012d", blockNumber))
}

// IndexSegmentKey is the key a flushed index segment for the given order and
// segment id is stored under.
func IndexSegmentKey(network, dbid, order string, segmentID int64) string {
	return Key(network, dbid, fmt.Sprintf("index/%s/%012d", order, segmentID))
}

// Facade composes one Backend selection behind the package's operation
// names, the seam the Block Builder and Indexer depend on instead of a
// concrete backend type.
type Facade struct {
	backend Backend
}

// New wraps an already-constructed Backend (storage/memory.New,
// storage/file.New, storage/s3.New or storage/vault.New) as a Facade.
func New(backend Backend) *Facade {
	return &Facade{backend: backend}
}

func (f *Facade) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := f.backend.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *Facade) Write(ctx context.Context, key string, data []byte) error {
	return f.backend.Write(ctx, key, data)
}

func (f *Facade) Exists(ctx context.Context, key string) (bool, error) {
	return f.backend.Exists(ctx, key)
}

// Rename swaps old-key's content onto new-key, used to atomically publish a
// finished write (e.g. a reindex segment written to a temp key first). Per
// the Open Question resolution recorded in DESIGN.md (spec.md §9), callers
// that finish a write under a temp key must use Rename rather than a
// second Read-then-Write: the temp key is never meant to be read back
// under its own name. No component inside this repo calls it yet — the
// external Indexer collaborator (§4.2, out of scope here) is the intended
// caller when it publishes a flushed index segment.
func (f *Facade) Rename(ctx context.Context, oldKey, newKey string) error {
	return f.backend.Rename(ctx, oldKey, newKey)
}

func (f *Facade) Delete(ctx context.Context, key string) error {
	return f.backend.Delete(ctx, key)
}

// Close releases the underlying backend's resources. Idempotent: calling it
// twice is not an error.
func (f *Facade) Close() error {
	return f.backend.Close()
}

// IsNotFound reports whether err is a storage-not-found classified error.
func IsNotFound(err error) bool {
	return lerrors.Classify(err) == lerrors.StorageNotFound
}
