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

package conf

// DevConfig holds settings relevant only to fdb-mode=dev: a single-process
// node with in-memory storage and consensus, used for local development
// and the test suite.
type DevConfig struct {
	// AutoBootstrap runs the Schema Bootstrap procedure automatically on
	// startup instead of requiring a separate `genesis` invocation.
	AutoBootstrap bool `json:"auto_bootstrap" yaml:"auto_bootstrap"`

	// MasterPrivateKeyHex, if set, is used to derive the genesis master
	// authority instead of generating a throwaway key. Hex-encoded
	// secp256k1 private key. Dev-only; never set in fdb-mode=ledger.
	MasterPrivateKeyHex string `json:"master_private_key_hex" yaml:"-"`
}

// DefaultDevConfig returns the default development configuration.
func DefaultDevConfig() DevConfig {
	return DevConfig{
		AutoBootstrap: true,
	}
}
