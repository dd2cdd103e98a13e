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

// Package file is the filesystem storage.Backend, the fdb-storage-type=file
// implementation. Keys map to paths under a base directory; a per-backend
// advisory lock file serializes writers across processes, and an optional
// symmetric key encrypts data at rest (§4.6 "Encryption contract").
package file

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/golang/snappy"
	"golang.org/x/crypto/chacha20poly1305"

	lerrors "github.com/stashdaddy/ledger/pkg/errors"
)

// Backend stores one blob per key as a file under baseDir, named by
// replacing "/" with the OS path separator. Compress applies snappy before
// any configured encryption; both are symmetric (Read reverses what Write
// applied).
type Backend struct {
	baseDir  string
	aead     func() (*cipherAEAD, error)
	compress bool

	mu   sync.Mutex
	lock *flock.Flock
}

// cipherAEAD wraps a constructed chacha20poly1305 AEAD; a fresh one is built
// per call since the cipher itself is stateless but its construction can
// fail on a malformed key.
type cipherAEAD struct {
	key []byte
}

// New returns a Backend rooted at baseDir, created if missing. encryptionKey,
// if non-empty, is used (after a deterministic key-derivation trim/pad to
// chacha20poly1305.KeySize) to encrypt every write and decrypt every read;
// an empty key disables encryption. compress enables snappy compression of
// the plaintext before any encryption.
func New(baseDir string, encryptionKey string, compress bool) (*Backend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, lerrors.Wrapf(lerrors.StorageIO, err, "file: failed to create base directory %q", baseDir)
	}

	lockPath := filepath.Join(baseDir, ".lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, lerrors.Wrapf(lerrors.StorageIO, err, "file: failed to acquire lock %q", lockPath)
	}
	if !locked {
		return nil, lerrors.Errorf(lerrors.StorageIO, "file: base directory %q is locked by another process", baseDir)
	}

	b := &Backend{baseDir: baseDir, compress: compress, lock: lock}
	if encryptionKey != "" {
		key := deriveKey(encryptionKey)
		b.aead = func() (*cipherAEAD, error) { return &cipherAEAD{key: key}, nil }
	}
	return b, nil
}

// deriveKey pads or truncates a caller-supplied passphrase to
// chacha20poly1305.KeySize bytes. A real deployment should supply a key
// already of the right length (e.g. from a KMS); this trims/pads so
// fdb-encryption-secret (an arbitrary-length string) is always usable.
func deriveKey(secret string) []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	copy(key, []byte(secret))
	return key
}

func (b *Backend) path(key string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(key))
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lerrors.Wrapf(lerrors.StorageNotFound, err, "file: key %q not found", key)
		}
		return nil, lerrors.Wrapf(lerrors.StorageIO, err, "file: read %q failed", key)
	}

	if b.aead != nil {
		raw, err = b.decrypt(raw)
		if err != nil {
			return nil, lerrors.Wrapf(lerrors.StorageIO, err, "file: decrypt %q failed", key)
		}
	}
	if b.compress {
		raw, err = snappy.Decode(nil, raw)
		if err != nil {
			return nil, lerrors.Wrapf(lerrors.StorageIO, err, "file: decompress %q failed", key)
		}
	}
	return raw, nil
}

func (b *Backend) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := data
	if b.compress {
		out = snappy.Encode(nil, out)
	}
	if b.aead != nil {
		var err error
		out, err = b.encrypt(out)
		if err != nil {
			return lerrors.Wrapf(lerrors.StorageIO, err, "file: encrypt %q failed", key)
		}
	}

	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: mkdir for %q failed", key)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: write %q failed", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: publish %q failed", key)
	}
	return nil
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := os.Stat(b.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, lerrors.Wrapf(lerrors.StorageIO, err, "file: stat %q failed", key)
}

func (b *Backend) Rename(ctx context.Context, oldKey, newKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	newPath := b.path(newKey)
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: mkdir for %q failed", newKey)
	}
	if err := os.Rename(b.path(oldKey), newPath); err != nil {
		if os.IsNotExist(err) {
			return lerrors.Wrapf(lerrors.StorageNotFound, err, "file: rename source %q not found", oldKey)
		}
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: rename %q to %q failed", oldKey, newKey)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return lerrors.Wrapf(lerrors.StorageIO, err, "file: delete %q failed", key)
	}
	return nil
}

// Close releases the base-directory advisory lock. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lock == nil {
		return nil
	}
	err := b.lock.Unlock()
	b.lock = nil
	if err != nil {
		return lerrors.Wrap(lerrors.StorageIO, err, "file: failed to release lock")
	}
	return nil
}

func (b *Backend) encrypt(plaintext []byte) ([]byte, error) {
	c, err := b.aead()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (b *Backend) decrypt(ciphertext []byte) ([]byte, error) {
	c, err := b.aead()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, lerrors.New(lerrors.StorageIO, "file: ciphertext shorter than nonce, corrupt or wrong key")
	}
	nonce, body := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, body, nil)
}
