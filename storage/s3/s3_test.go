// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/storage"
)

// fakeBucket emulates just enough S3 REST behaviour (GET/PUT/HEAD/DELETE
// against /bucket/key) for the Backend to round-trip against.
type fakeBucket struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeBucket() *fakeBucket { return &fakeBucket{data: make(map[string][]byte)} }

func (f *fakeBucket) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		key := r.URL.Path
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			v, ok := f.data[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(v)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.data[key] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodHead:
			if _, ok := f.data[key]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(f.data, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestBackend(t *testing.T, bucket *fakeBucket) (*Backend, func()) {
	srv := httptest.NewServer(bucket.handler())
	cfg := Config{Endpoint: srv.URL, Region: "us-east-1", Bucket: "testbucket", AccessKey: "ak", SecretKey: "sk"}
	return New(cfg, srv.Client()), srv.Close
}

func TestS3ReadWriteRoundTrip(t *testing.T) {
	bucket := newFakeBucket()
	b, closeSrv := newTestBackend(t, bucket)
	defer closeSrv()
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, storage.Key("net", "db", "block/000000000001"), []byte("block-one")))

	got, err := b.Read(ctx, storage.Key("net", "db", "block/000000000001"))
	require.NoError(t, err)
	require.Equal(t, []byte("block-one"), got)
}

func TestS3ReadMissingIsNotFound(t *testing.T) {
	bucket := newFakeBucket()
	b, closeSrv := newTestBackend(t, bucket)
	defer closeSrv()
	defer b.Close()

	_, err := b.Read(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, storage.IsNotFound(err))
}

func TestS3ExistsReflectsPresence(t *testing.T) {
	bucket := newFakeBucket()
	b, closeSrv := newTestBackend(t, bucket)
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

func TestS3RenameCopiesThenDeletes(t *testing.T) {
	bucket := newFakeBucket()
	b, closeSrv := newTestBackend(t, bucket)
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

func TestS3SignAddsAuthorizationHeader(t *testing.T) {
	cfg := Config{Endpoint: "https://example.test", Region: "us-east-1", Bucket: "b", AccessKey: "ak", SecretKey: "sk"}
	req, err := http.NewRequest(http.MethodGet, "https://example.test/b/key", nil)
	require.NoError(t, err)
	sign(req, cfg, nil, func() time.Time { return time.Unix(0, 0) })
	require.NotEmpty(t, req.Header.Get("Authorization"))
	require.NotEmpty(t, req.Header.Get("X-Amz-Date"))
	require.Contains(t, req.Header.Get("Authorization"), "ak/us-east-1")
}
