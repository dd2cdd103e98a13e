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

package main

import "github.com/urfave/cli/v2"

// Flag names mirror the fdb-* keys named in §6 one-for-one so a flag, its
// environment variable (conf.envName) and its config-file key are always
// spelled the same way modulo case.
const (
	flagDataDir = "data-dir"
	flagNetwork = "network"
	flagDBID    = "dbid"
	flagConfig  = "config"

	flagMode          = "fdb-mode"
	flagConsensusType = "fdb-consensus-type"

	flagStorageType         = "fdb-storage-type"
	flagStorageFileDir      = "fdb-storage-file-directory"
	flagStorageS3Bucket     = "fdb-storage-s3-bucket"
	flagStorageS3Endpoint   = "fdb-storage-s3-endpoint"
	flagStorageS3Region     = "fdb-storage-s3-region"
	flagStorageS3AccessKey  = "fdb-storage-s3-access-key"
	flagStorageS3SecretKey  = "fdb-storage-s3-secret-key"
	flagStorageStashAddress = "fdb-storage-stash-address"
	flagStorageStashToken   = "fdb-storage-stash-token"
	flagStorageStashMount   = "fdb-storage-stash-mount"

	flagMemoryCache      = "fdb-memory-cache"
	flagMemoryReindex    = "fdb-memory-reindex"
	flagMemoryReindexMax = "fdb-memory-reindex-max"

	flagGroupServers    = "fdb-group-servers"
	flagGroupThisServer = "fdb-group-this-server"
	flagGroupTimeout    = "fdb-group-timeout"

	flagEncryptionSecret = "fdb-encryption-secret"

	flagLogFile  = "log-file"
	flagLogLevel = "log-level"

	flagAutoBootstrap       = "auto-bootstrap"
	flagMasterPrivateKeyHex = "master-private-key-hex"
)

// commonFlags select which ledger a command acts on and where its on-disk
// state lives; every subcommand takes them.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagConfig, Usage: "path to an fdb-* key/value config file"},
		&cli.StringFlag{Name: flagDataDir, Usage: "base directory for on-disk state"},
		&cli.StringFlag{Name: flagNetwork, Usage: "ledger network name"},
		&cli.StringFlag{Name: flagDBID, Usage: "ledger database id within the network"},
	}
}

// nodeFlags is every §6 fdb-* config key exposed as a flag, plus the
// ambient logging/dev knobs commonFlags doesn't cover. A flag left unset
// falls through to the config file, then the environment, then
// conf.DefaultNodeConfig.
func nodeFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{Name: flagMode, Usage: "fdb-mode: dev, query or ledger"},
		&cli.StringFlag{Name: flagConsensusType, Usage: "fdb-consensus-type: raft or in-memory"},
		&cli.StringFlag{Name: flagStorageType, Usage: "fdb-storage-type: file, memory, s3 or stash"},
		&cli.StringFlag{Name: flagStorageFileDir, Usage: "fdb-storage-file-directory"},
		&cli.StringFlag{Name: flagStorageS3Bucket, Usage: "fdb-storage-s3-bucket"},
		&cli.StringFlag{Name: flagStorageS3Endpoint, Usage: "fdb-storage-s3-endpoint"},
		&cli.StringFlag{Name: flagStorageS3Region, Usage: "fdb-storage-s3-region"},
		&cli.StringFlag{Name: flagStorageS3AccessKey, Usage: "fdb-storage-s3-access-key", EnvVars: []string{"FDB_STORAGE_S3_ACCESS_KEY"}},
		&cli.StringFlag{Name: flagStorageS3SecretKey, Usage: "fdb-storage-s3-secret-key", EnvVars: []string{"FDB_STORAGE_S3_SECRET_KEY"}},
		&cli.StringFlag{Name: flagStorageStashAddress, Usage: "fdb-storage-stash-address"},
		&cli.StringFlag{Name: flagStorageStashToken, Usage: "fdb-storage-stash-token", EnvVars: []string{"FDB_STORAGE_STASH_TOKEN"}},
		&cli.StringFlag{Name: flagStorageStashMount, Usage: "fdb-storage-stash-mount"},
		&cli.StringFlag{Name: flagMemoryCache, Usage: "fdb-memory-cache, e.g. 64mb"},
		&cli.StringFlag{Name: flagMemoryReindex, Usage: "fdb-memory-reindex, e.g. 16mb"},
		&cli.StringFlag{Name: flagMemoryReindexMax, Usage: "fdb-memory-reindex-max, e.g. 64mb"},
		&cli.StringFlag{Name: flagGroupServers, Usage: "fdb-group-servers: id@host:port,..."},
		&cli.StringFlag{Name: flagGroupThisServer, Usage: "fdb-group-this-server"},
		&cli.StringFlag{Name: flagGroupTimeout, Usage: "fdb-group-timeout, e.g. 2000ms"},
		&cli.StringFlag{Name: flagEncryptionSecret, Usage: "fdb-encryption-secret", EnvVars: []string{"FDB_ENCRYPTION_SECRET"}},
		&cli.StringFlag{Name: flagLogFile, Usage: "log file path (console-only if empty)"},
		&cli.StringFlag{Name: flagLogLevel, Usage: "log level: trace, debug, info, warn, error, crit"},
		&cli.BoolFlag{Name: flagAutoBootstrap, Usage: "run Schema Bootstrap automatically if the ledger has no genesis block"},
		&cli.StringFlag{Name: flagMasterPrivateKeyHex, Usage: "hex-encoded secp256k1 key for the genesis master authority (dev only)", EnvVars: []string{"FDB_MASTER_PRIVATE_KEY_HEX"}},
	)
}
