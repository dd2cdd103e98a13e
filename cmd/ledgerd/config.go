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

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/stashdaddy/ledger/conf"
	lerrors "github.com/stashdaddy/ledger/pkg/errors"
	"github.com/stashdaddy/ledger/storage"
	"github.com/stashdaddy/ledger/storage/file"
	"github.com/stashdaddy/ledger/storage/memory"
	"github.com/stashdaddy/ledger/storage/s3"
	"github.com/stashdaddy/ledger/storage/vault"
)

// loadConfig builds a NodeConfig the way conf.Load/LoadFile do (defaults,
// then file, then environment) and then overlays any flag the invocation
// actually set, so a flag always wins over the file and the file always
// wins over the bare environment.
func loadConfig(c *cli.Context) (conf.NodeConfig, error) {
	var cfg conf.NodeConfig
	var err error
	if path := c.String(flagConfig); path != "" {
		cfg, err = conf.LoadFile(path)
	} else {
		cfg, err = conf.Load()
	}
	if err != nil {
		return conf.NodeConfig{}, err
	}

	if c.IsSet(flagDataDir) {
		cfg.DataDir = c.String(flagDataDir)
	}
	if c.IsSet(flagNetwork) {
		cfg.Network = c.String(flagNetwork)
	}
	if c.IsSet(flagDBID) {
		cfg.DBID = c.String(flagDBID)
	}
	if c.IsSet(flagMode) {
		cfg.Mode = conf.Mode(c.String(flagMode))
	}
	if c.IsSet(flagConsensusType) {
		cfg.Consensus = conf.ConsensusType(c.String(flagConsensusType))
	}
	if c.IsSet(flagStorageType) {
		cfg.Storage = conf.StorageType(c.String(flagStorageType))
	}
	if c.IsSet(flagStorageFileDir) {
		cfg.StorageFileDir = c.String(flagStorageFileDir)
	}
	if c.IsSet(flagStorageS3Bucket) {
		cfg.StorageS3Bucket = c.String(flagStorageS3Bucket)
	}
	if c.IsSet(flagStorageS3Endpoint) {
		cfg.StorageS3Endpoint = c.String(flagStorageS3Endpoint)
	}
	if c.IsSet(flagStorageS3Region) {
		cfg.StorageS3Region = c.String(flagStorageS3Region)
	}
	if c.IsSet(flagStorageS3AccessKey) {
		cfg.StorageS3AccessKey = c.String(flagStorageS3AccessKey)
	}
	if c.IsSet(flagStorageS3SecretKey) {
		cfg.StorageS3SecretKey = c.String(flagStorageS3SecretKey)
	}
	if c.IsSet(flagStorageStashAddress) {
		cfg.StorageStashAddress = c.String(flagStorageStashAddress)
	}
	if c.IsSet(flagStorageStashToken) {
		cfg.StorageStashToken = c.String(flagStorageStashToken)
	}
	if c.IsSet(flagStorageStashMount) {
		cfg.StorageStashMount = c.String(flagStorageStashMount)
	}
	if c.IsSet(flagMemoryCache) {
		if err := cfg.MemoryCache.UnmarshalText([]byte(c.String(flagMemoryCache))); err != nil {
			return conf.NodeConfig{}, fmt.Errorf("--%s: %w", flagMemoryCache, err)
		}
	}
	if c.IsSet(flagMemoryReindex) {
		if err := cfg.MemoryReindex.UnmarshalText([]byte(c.String(flagMemoryReindex))); err != nil {
			return conf.NodeConfig{}, fmt.Errorf("--%s: %w", flagMemoryReindex, err)
		}
	}
	if c.IsSet(flagMemoryReindexMax) {
		if err := cfg.MemoryReindexMax.UnmarshalText([]byte(c.String(flagMemoryReindexMax))); err != nil {
			return conf.NodeConfig{}, fmt.Errorf("--%s: %w", flagMemoryReindexMax, err)
		}
	}
	if c.IsSet(flagGroupServers) {
		cfg.GroupServers = c.String(flagGroupServers)
	}
	if c.IsSet(flagGroupThisServer) {
		cfg.GroupThisServer = c.String(flagGroupThisServer)
	}
	if c.IsSet(flagGroupTimeout) {
		cfg.GroupTimeout = conf.DurationString(c.String(flagGroupTimeout))
		if _, err := cfg.GroupTimeout.Duration(); err != nil {
			return conf.NodeConfig{}, fmt.Errorf("--%s: %w", flagGroupTimeout, err)
		}
	}
	if c.IsSet(flagEncryptionSecret) {
		cfg.EncryptionSecret = c.String(flagEncryptionSecret)
	}
	if c.IsSet(flagLogFile) {
		cfg.Logger.LogFile = c.String(flagLogFile)
	}
	if c.IsSet(flagLogLevel) {
		cfg.Logger.Level = c.String(flagLogLevel)
	}
	if c.IsSet(flagAutoBootstrap) {
		cfg.Dev.AutoBootstrap = c.Bool(flagAutoBootstrap)
	}
	if c.IsSet(flagMasterPrivateKeyHex) {
		cfg.Dev.MasterPrivateKeyHex = c.String(flagMasterPrivateKeyHex)
	}

	if err := cfg.Validate(); err != nil {
		return conf.NodeConfig{}, err
	}
	return cfg, nil
}

// buildBackend constructs the storage.Backend named by cfg.Storage. Every
// branch has already been validated by NodeConfig.Validate, so the default
// case here is unreachable in practice and only guards against a future
// StorageType value added to conf without a matching backend.
func buildBackend(cfg conf.NodeConfig) (storage.Backend, error) {
	switch cfg.Storage {
	case conf.StorageMemory:
		return memory.New(), nil
	case conf.StorageFile:
		return file.New(cfg.StorageFileDir, cfg.EncryptionSecret, true)
	case conf.StorageS3:
		return s3.New(s3.Config{
			Endpoint:  cfg.StorageS3Endpoint,
			Region:    cfg.StorageS3Region,
			Bucket:    cfg.StorageS3Bucket,
			AccessKey: cfg.StorageS3AccessKey,
			SecretKey: cfg.StorageS3SecretKey,
		}, nil), nil
	case conf.StorageStash:
		return vault.New(vault.Config{
			Address: cfg.StorageStashAddress,
			Mount:   cfg.StorageStashMount,
			Token:   cfg.StorageStashToken,
		}, nil), nil
	default:
		return nil, lerrors.Errorf(lerrors.InvalidConfiguration, "cmd/ledgerd: unsupported fdb-storage-type %q", cfg.Storage)
	}
}
