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

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/fsnotify/fsnotify"
)

// keys is every fdb-* key this loader recognizes, mapped to the NodeConfig
// field it fills (§6 "External Interfaces").
const (
	keyMode             = "fdb-mode"
	keyConsensusType    = "fdb-consensus-type"
	keyStorageType      = "fdb-storage-type"
	keyStorageFileDir   = "fdb-storage-file-directory"
	keyStorageS3Bucket  = "fdb-storage-s3-bucket"

	// keyStorageS3Endpoint/Region/AccessKey/SecretKey and
	// keyStorageStashAddress/Token/Mount extend the external-interfaces
	// table: a bucket name alone cannot build a working S3 or Vault-style
	// client, so these are supplemented fdb-storage-* keys rather than
	// deriving credentials some other way.
	keyStorageS3Endpoint    = "fdb-storage-s3-endpoint"
	keyStorageS3Region      = "fdb-storage-s3-region"
	keyStorageS3AccessKey   = "fdb-storage-s3-access-key"
	keyStorageS3SecretKey   = "fdb-storage-s3-secret-key"
	keyStorageStashAddress  = "fdb-storage-stash-address"
	keyStorageStashToken    = "fdb-storage-stash-token"
	keyStorageStashMount    = "fdb-storage-stash-mount"

	keyMemoryCache      = "fdb-memory-cache"
	keyMemoryReindex    = "fdb-memory-reindex"
	keyMemoryReindexMax = "fdb-memory-reindex-max"
	keyGroupServers     = "fdb-group-servers"
	keyGroupThisServer  = "fdb-group-this-server"
	keyGroupTimeout     = "fdb-group-timeout"
	keyEncryptionSecret = "fdb-encryption-secret"
)

// Load builds a NodeConfig from the process environment, starting from
// DefaultNodeConfig and overriding any fdb-* key that is set.
func Load() (NodeConfig, error) {
	cfg := DefaultNodeConfig()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return NodeConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

// LoadFile builds a NodeConfig from a simple "key = value" file (one
// fdb-* key per line, '#' comments), falling back to environment
// variables for any key the file omits.
func LoadFile(path string) (NodeConfig, error) {
	values, err := parseKVFile(path)
	if err != nil {
		return NodeConfig{}, err
	}
	cfg := DefaultNodeConfig()
	lookup := func(key string) (string, bool) {
		if v, ok := values[key]; ok {
			return v, true
		}
		return os.LookupEnv(envName(key))
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return NodeConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

func envName(fdbKey string) string {
	return strings.ToUpper(strings.ReplaceAll(fdbKey, "-", "_"))
}

func parseKVFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conf: reading config file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("conf: scanning config file: %w", err)
	}
	return values, nil
}

func applyEnv(cfg *NodeConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup(keyMode); ok {
		cfg.Mode = Mode(v)
	}
	if v, ok := lookup(keyConsensusType); ok {
		cfg.Consensus = ConsensusType(v)
	}
	if v, ok := lookup(keyStorageType); ok {
		cfg.Storage = StorageType(v)
	}
	if v, ok := lookup(keyStorageFileDir); ok {
		cfg.StorageFileDir = v
	}
	if v, ok := lookup(keyStorageS3Bucket); ok {
		cfg.StorageS3Bucket = v
	}
	if v, ok := lookup(keyStorageS3Endpoint); ok {
		cfg.StorageS3Endpoint = v
	}
	if v, ok := lookup(keyStorageS3Region); ok {
		cfg.StorageS3Region = v
	}
	if v, ok := lookup(keyStorageS3AccessKey); ok {
		cfg.StorageS3AccessKey = v
	}
	if v, ok := lookup(keyStorageS3SecretKey); ok {
		cfg.StorageS3SecretKey = v
	}
	if v, ok := lookup(keyStorageStashAddress); ok {
		cfg.StorageStashAddress = v
	}
	if v, ok := lookup(keyStorageStashToken); ok {
		cfg.StorageStashToken = v
	}
	if v, ok := lookup(keyStorageStashMount); ok {
		cfg.StorageStashMount = v
	}
	if v, ok := lookup(keyMemoryCache); ok {
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("conf: %s: %w", keyMemoryCache, err)
		}
		cfg.MemoryCache = sz
	}
	if v, ok := lookup(keyMemoryReindex); ok {
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("conf: %s: %w", keyMemoryReindex, err)
		}
		cfg.MemoryReindex = sz
	}
	if v, ok := lookup(keyMemoryReindexMax); ok {
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("conf: %s: %w", keyMemoryReindexMax, err)
		}
		cfg.MemoryReindexMax = sz
	}
	if v, ok := lookup(keyGroupServers); ok {
		cfg.GroupServers = v
	}
	if v, ok := lookup(keyGroupThisServer); ok {
		cfg.GroupThisServer = v
	}
	if v, ok := lookup(keyGroupTimeout); ok {
		cfg.GroupTimeout = DurationString(v)
		if _, err := cfg.GroupTimeout.Duration(); err != nil {
			return err
		}
	}
	if v, ok := lookup(keyEncryptionSecret); ok {
		cfg.EncryptionSecret = v
	}
	return nil
}

// WatchFile reloads the config file on change and invokes onReload with
// the freshly parsed NodeConfig. onError receives any watcher or parse
// error; a malformed reload is reported and skipped rather than applied,
// so a bad edit never takes an already-running node down. The returned
// stop function closes the underlying watcher.
//
// WatchFile takes an error callback rather than logging directly so that
// this package never depends on the log package, which itself depends on
// conf for NodeConfig/LoggerConfig.
func WatchFile(path string, onReload func(NodeConfig), onError func(error)) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("conf: creating file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("conf: watching config file: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadFile(path)
				if err != nil {
					if onError != nil {
						onError(fmt.Errorf("conf: reload failed, keeping previous configuration: %w", err))
					}
					continue
				}
				onReload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(fmt.Errorf("conf: file watcher error: %w", err))
				}
			}
		}
	}()

	return watcher.Close, nil
}
