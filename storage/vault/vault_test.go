// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package vault

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/storage"
)

type fakeVault struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeVault() *fakeVault { return &fakeVault{data: make(map[string]string)} }

func (f *fakeVault) handler(mount string) http.HandlerFunc {
	prefix := "/v1/" + mount + "/data/"
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") == "" {
			writeAPIError(w, http.StatusForbidden, "permission denied", "permission_denied")
			return
		}
		key := strings.TrimPrefix(r.URL.Path, prefix)

		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			v, ok := f.data[key]
			if !ok {
				writeAPIError(w, http.StatusNotFound, "no value found", "not_found")
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]string{"value": v},
			})
		case http.MethodPost:
			var body struct {
				Data struct {
					Value string `json:"value"`
				} `json:"data"`
			}
			b, _ := io.ReadAll(r.Body)
			json.Unmarshal(b, &body)
			f.data[key] = body.Data.Value
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(f.data, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func writeAPIError(w http.ResponseWriter, status int, msg, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiError{Error: msg, Code: code})
}

func newTestBackend(bucket *fakeVault) (*Backend, func()) {
	srv := httptest.NewServer(bucket.handler("ledger"))
	cfg := Config{Address: srv.URL, Mount: "ledger", Token: "test-token"}
	return New(cfg, srv.Client()), srv.Close
}

func TestVaultReadWriteRoundTrip(t *testing.T) {
	bucket := newFakeVault()
	b, closeSrv := newTestBackend(bucket)
	defer closeSrv()
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, storage.Key("net", "db", "block/000000000001"), []byte("block-one")))

	got, err := b.Read(ctx, storage.Key("net", "db", "block/000000000001"))
	require.NoError(t, err)
	require.Equal(t, []byte("block-one"), got)
}

func TestVaultReadMissingIsNotFound(t *testing.T) {
	bucket := newFakeVault()
	b, closeSrv := newTestBackend(bucket)
	defer closeSrv()
	defer b.Close()

	_, err := b.Read(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, storage.IsNotFound(err))
}

func TestVaultExistsReflectsPresence(t *testing.T) {
	bucket := newFakeVault()
	b, closeSrv := newTestBackend(bucket)
	defer closeSrv()
	defer b.Close()

	ctx := context.Background()
	ok, err := b.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.Write(ctx, "k", []byte("v")))
	ok, err = b.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVaultRenameCopiesThenDeletes(t *testing.T) {
	bucket := newFakeVault()
	b, closeSrv := newTestBackend(bucket)
	defer closeSrv()
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "old", []byte("payload")))
	require.NoError(t, b.Rename(ctx, "old", "new"))

	ok, _ := b.Exists(ctx, "old")
	require.False(t, ok)

	got, err := b.Read(ctx, "new")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestVaultPermissionDeniedDecodesTypedError(t *testing.T) {
	bucket := newFakeVault()
	srv := httptest.NewServer(bucket.handler("ledger"))
	defer srv.Close()
	cfg := Config{Address: srv.URL, Mount: "ledger", Token: ""}
	b := New(cfg, srv.Client())
	defer b.Close()

	_, err := b.Read(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "permission_denied")
}
