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

// Package ledgercrypto names the crypto primitives the core delegates to:
// command signing, signature recovery, and content hashing. The core never
// implements a production key-management story — this package supplies the
// narrow interfaces the Transactor and Schema Bootstrap call through, plus
// one concrete secp256k1-backed adapter so the pipelines are runnable
// end-to-end in this repo.
package ledgercrypto

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Recoverer derives the authoring identity from a command and its signature,
// backing §4.1 step 4 and §4.4 step 1's "crypto.recover(cmd, sig)".
type Recoverer interface {
	Recover(cmd, sig []byte) (authID string, err error)
}

// Signer produces a signature over a command's canonical bytes.
type Signer interface {
	Sign(cmd []byte) (sig []byte, err error)
}

// Hasher computes the digest used for tx-id and block-content hashing.
// common/txblock calls sha3 directly for those two call sites; Hasher exists
// so other collaborators (e.g. a future wire serializer) can depend on the
// same algorithm without importing common/txblock.
type Hasher interface {
	Hash(data []byte) []byte
}

type sha3Hasher struct{}

// NewHasher returns the sha3-256 Hasher used throughout the core.
func NewHasher() Hasher { return sha3Hasher{} }

func (sha3Hasher) Hash(data []byte) []byte {
	sum := sha3.Sum256(data)
	return sum[:]
}

// secp256k1Recoverer recovers a compressed public key from a
// recoverable-signature over sha3_256(cmd), returning its hex encoding as
// the authority id. This is the one concrete adapter shipped in this repo;
// production deployments are expected to supply their own Recoverer backed
// by whatever key-management system the ledger role process trusts.
type secp256k1Recoverer struct{}

// NewSecp256k1Recoverer returns a Recoverer backed by btcec's ECDSA
// recoverable-signature scheme.
func NewSecp256k1Recoverer() Recoverer {
	return secp256k1Recoverer{}
}

func (secp256k1Recoverer) Recover(cmd, sig []byte) (string, error) {
	if len(sig) != 65 {
		return "", errors.Errorf("ledgercrypto: recoverable signature must be 65 bytes, got %d", len(sig))
	}
	digest := sha3.Sum256(cmd)

	// btcec expects the recovery id in the leading byte; our wire form
	// puts it last (matching the Ethereum-style [R || S || V] layout the
	// teacher's Ecrecover callers produce), so rotate it to the front.
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return "", errors.Wrap(err, "ledgercrypto: signature recovery failed")
	}
	return hex.EncodeToString(pub.SerializeCompressed()), nil
}

// PrivateKeySigner signs commands with an in-process secp256k1 private key.
// It exists for bootstrap tests and the dev CLI mode, not as a production
// key-custody story.
type PrivateKeySigner struct {
	key *btcec.PrivateKey
}

// NewPrivateKeySigner wraps an existing secp256k1 private key as a Signer.
func NewPrivateKeySigner(key *btcec.PrivateKey) *PrivateKeySigner {
	return &PrivateKeySigner{key: key}
}

func (s *PrivateKeySigner) Sign(cmd []byte) ([]byte, error) {
	digest := sha3.Sum256(cmd)
	sig := ecdsa.SignCompact(s.key, digest[:], false)
	if len(sig) != 65 {
		return nil, errors.New("ledgercrypto: unexpected compact signature length")
	}
	// Rotate btcec's leading recovery byte to the trailing position to
	// match the wire layout Recover expects.
	out := make([]byte, 65)
	copy(out, sig[1:])
	out[64] = sig[0] - 27
	return out, nil
}
