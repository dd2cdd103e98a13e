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

// Package conf holds the node's static configuration: the fdb-* keys named
// in the external interfaces, parsed from environment variables or a
// key-value file, plus the ambient logger/dev settings every node carries
// regardless of mode.
package conf

import (
	"fmt"

	"github.com/c2h5oh/datasize"
)

// Mode gates which subsystems a process starts (fdb-mode).
type Mode string

const (
	ModeDev    Mode = "dev"
	ModeQuery  Mode = "query"
	ModeLedger Mode = "ledger"
)

// ConsensusType selects the consensus/replication collaborator
// (fdb-consensus-type).
type ConsensusType string

const (
	ConsensusRaft      ConsensusType = "raft"
	ConsensusInMemory  ConsensusType = "in-memory"
)

// StorageType selects the storage façade backend (fdb-storage-type).
type StorageType string

const (
	StorageFile   StorageType = "file"
	StorageMemory StorageType = "memory"
	StorageS3     StorageType = "s3"
	StorageStash  StorageType = "stash"
)

// NodeConfig is the root configuration for a ledger node, populated from
// fdb-* environment variables or a key-value config file (see Load).
type NodeConfig struct {
	// DataDir is the base directory for on-disk state: file-backend
	// segments, the genesis/dev data directory, and log output.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Network and DBID together identify a single ledger within the
	// process-wide Registry (network/dbid).
	Network string `json:"network" yaml:"network"`
	DBID    string `json:"dbid" yaml:"dbid"`

	Mode Mode `json:"fdb_mode" yaml:"fdb_mode"`

	Consensus ConsensusType `json:"fdb_consensus_type" yaml:"fdb_consensus_type"`

	Storage         StorageType `json:"fdb_storage_type" yaml:"fdb_storage_type"`
	StorageFileDir  string      `json:"fdb_storage_file_directory" yaml:"fdb_storage_file_directory"`
	StorageS3Bucket string      `json:"fdb_storage_s3_bucket" yaml:"fdb_storage_s3_bucket"`

	// StorageS3Endpoint/Region/AccessKey/SecretKey configure the S3-
	// compatible REST client (storage/s3) beyond the bucket name the
	// external-interfaces table names explicitly.
	StorageS3Endpoint  string `json:"fdb_storage_s3_endpoint" yaml:"fdb_storage_s3_endpoint"`
	StorageS3Region    string `json:"fdb_storage_s3_region" yaml:"fdb_storage_s3_region"`
	StorageS3AccessKey string `json:"fdb_storage_s3_access_key" yaml:"-"`
	StorageS3SecretKey string `json:"fdb_storage_s3_secret_key" yaml:"-"`

	// StorageStashAddress/Token/Mount configure the Vault-style KV client
	// (storage/vault) backing fdb-storage-type=stash.
	StorageStashAddress string `json:"fdb_storage_stash_address" yaml:"fdb_storage_stash_address"`
	StorageStashToken   string `json:"fdb_storage_stash_token" yaml:"-"`
	StorageStashMount   string `json:"fdb_storage_stash_mount" yaml:"fdb_storage_stash_mount"`

	// MemoryCache is the index cache budget (fdb-memory-cache), parsed
	// from a size string (b/k/kb/m/mb/g/gb).
	MemoryCache datasize.ByteSize `json:"fdb_memory_cache" yaml:"fdb_memory_cache"`

	// MemoryReindex and MemoryReindexMax are the novelty soft/hard
	// thresholds (§4.2 "Reindex triggers").
	MemoryReindex    datasize.ByteSize `json:"fdb_memory_reindex" yaml:"fdb_memory_reindex"`
	MemoryReindexMax datasize.ByteSize `json:"fdb_memory_reindex_max" yaml:"fdb_memory_reindex_max"`

	// GroupServers is the raw "id@host:port,id@host:port,..." list
	// (fdb-group-servers); ParsePeers resolves it to typed addresses.
	GroupServers   string        `json:"fdb_group_servers" yaml:"fdb_group_servers"`
	GroupThisServer string       `json:"fdb_group_this_server" yaml:"fdb_group_this_server"`
	GroupTimeout   DurationString `json:"fdb_group_timeout" yaml:"fdb_group_timeout"`

	// EncryptionSecret is the at-rest passphrase (fdb-encryption-secret);
	// hashed to a 32-byte key for the file backend's optional
	// chacha20poly1305 layer. Never logged.
	EncryptionSecret string `json:"fdb_encryption_secret" yaml:"-"`

	Logger LoggerConfig `json:"logger" yaml:"logger"`
	Dev    DevConfig    `json:"dev" yaml:"dev"`
}

// Validate fills in defaults and rejects combinations the rest of the
// system cannot act on.
func (c *NodeConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	switch c.Mode {
	case ModeDev, ModeQuery, ModeLedger:
	default:
		return fmt.Errorf("conf: invalid fdb-mode %q", c.Mode)
	}

	if c.Consensus == "" {
		c.Consensus = ConsensusInMemory
	}
	switch c.Consensus {
	case ConsensusRaft, ConsensusInMemory:
	default:
		return fmt.Errorf("conf: invalid fdb-consensus-type %q", c.Consensus)
	}

	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	switch c.Storage {
	case StorageFile, StorageMemory, StorageS3, StorageStash:
	default:
		return fmt.Errorf("conf: invalid fdb-storage-type %q", c.Storage)
	}
	if c.Storage == StorageFile && c.StorageFileDir == "" {
		return fmt.Errorf("conf: fdb-storage-file-directory required for fdb-storage-type=file")
	}
	if c.Storage == StorageS3 {
		if c.StorageS3Bucket == "" {
			return fmt.Errorf("conf: fdb-storage-s3-bucket required for fdb-storage-type=s3")
		}
		if c.StorageS3Endpoint == "" {
			return fmt.Errorf("conf: fdb-storage-s3-endpoint required for fdb-storage-type=s3")
		}
		if c.StorageS3AccessKey == "" || c.StorageS3SecretKey == "" {
			return fmt.Errorf("conf: fdb-storage-s3-access-key and fdb-storage-s3-secret-key required for fdb-storage-type=s3")
		}
		if c.StorageS3Region == "" {
			c.StorageS3Region = "us-east-1"
		}
	}
	if c.Storage == StorageStash {
		if c.StorageStashAddress == "" {
			return fmt.Errorf("conf: fdb-storage-stash-address required for fdb-storage-type=stash")
		}
		if c.StorageStashToken == "" {
			return fmt.Errorf("conf: fdb-storage-stash-token required for fdb-storage-type=stash")
		}
		if c.StorageStashMount == "" {
			c.StorageStashMount = "secret"
		}
	}

	if c.MemoryReindex > 0 && c.MemoryReindexMax > 0 && c.MemoryReindex > c.MemoryReindexMax {
		return fmt.Errorf("conf: fdb-memory-reindex must be <= fdb-memory-reindex-max")
	}

	if c.DataDir == "" {
		c.DataDir = "./ledgerdata"
	}

	return c.Logger.Validate()
}

// DefaultNodeConfig returns the defaults a dev-mode, single-process node
// starts with: in-memory consensus, in-memory storage, generous novelty
// thresholds.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		DataDir:          "./ledgerdata",
		Network:          "default",
		DBID:             "dev",
		Mode:             ModeDev,
		Consensus:        ConsensusInMemory,
		Storage:          StorageMemory,
		MemoryCache:      64 * datasize.MB,
		MemoryReindex:    16 * datasize.MB,
		MemoryReindexMax: 64 * datasize.MB,
		GroupTimeout:     DurationString("2000ms"),
		Logger:           DefaultLoggerConfig(),
		Dev:              DefaultDevConfig(),
	}
}
