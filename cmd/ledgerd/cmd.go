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
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/urfave/cli/v2"

	"github.com/stashdaddy/ledger/conf"
	"github.com/stashdaddy/ledger/internal/bootstrap"
	"github.com/stashdaddy/ledger/internal/consensus"
	"github.com/stashdaddy/ledger/internal/ledgercrypto"
	"github.com/stashdaddy/ledger/ledger"
	"github.com/stashdaddy/ledger/log"
	lerrors "github.com/stashdaddy/ledger/pkg/errors"
	"github.com/stashdaddy/ledger/storage"
)

// genesisCommand runs Schema Bootstrap against the configured storage
// backend and writes the resulting block as block 1, the canonical entry
// point for standing up a new (network, dbid) ledger before a consensus
// group ever starts.
var genesisCommand = &cli.Command{
	Name:   "genesis",
	Usage:  "run Schema Bootstrap and persist the genesis block",
	Flags:  nodeFlags(),
	Action: runGenesis,
}

// serveCommand starts the mode gated by fdb-mode: it opens (optionally
// bootstrapping) one Ledger, registers it, and runs until the process
// receives an interrupt. The HTTP/query surface that would otherwise sit
// in front of this process is an external collaborator (see spec
// overview) and is not part of this binary.
var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "open the configured ledger and run until interrupted",
	Flags:  nodeFlags(),
	Action: runServe,
}

func rootCommands() []*cli.Command {
	return []*cli.Command{genesisCommand, serveCommand}
}

func runGenesis(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Init(cfg, cfg.Logger)

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	facade := storage.New(backend)

	key, err := masterKey(cfg)
	if err != nil {
		return err
	}
	signer := ledgercrypto.NewPrivateKeySigner(key)
	recoverer := ledgercrypto.NewSecp256k1Recoverer()

	raw := []byte(fmt.Sprintf(`{"type":"new-db","db":"%s/%s"}`, cfg.Network, cfg.DBID))
	sig, err := signer.Sign(raw)
	if err != nil {
		return lerrors.Wrap(lerrors.Unexpected, err, "cmd/ledgerd: signing genesis command failed")
	}

	block, err := bootstrap.Bootstrap(recoverer, bootstrap.Command{Raw: raw}, sig, time.Now().UnixMilli())
	if err != nil {
		return err
	}

	ctx := context.Background()
	data, err := json.Marshal(block)
	if err != nil {
		return lerrors.Wrap(lerrors.Unexpected, err, "cmd/ledgerd: marshaling genesis block failed")
	}
	key1 := storage.BlockKey(cfg.Network, cfg.DBID, block.BlockNumber)
	if err := facade.Write(ctx, key1, data); err != nil {
		return err
	}

	log.Info("genesis block persisted", "network", cfg.Network, "dbid", cfg.DBID, "hash", block.Hash, "authority", block.LedgerSignatures[0])
	fmt.Printf("genesis: network=%s dbid=%s hash=%s\n", cfg.Network, cfg.DBID, block.Hash)
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Init(cfg, cfg.Logger)

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	client, err := buildConsensusClient(cfg)
	if err != nil {
		backend.Close()
		return err
	}

	if cfg.Mode == conf.ModeQuery {
		log.Warn("fdb-mode=query starts no query surface in this binary; the HTTP/query layer is an external collaborator that reads the storage backend this process writes to")
	}

	recoverer := ledgercrypto.NewSecp256k1Recoverer()

	l, err := ledger.Open(cfg.Network, cfg.DBID, bootstrap.Schema(), recoverer, backend, client, int64(cfg.MemoryReindex), int64(cfg.MemoryReindexMax))
	if err != nil {
		backend.Close()
		return err
	}

	reg := ledger.NewRegistry()
	if err := reg.Put(l); err != nil {
		l.Close()
		return err
	}

	log.Info("ledger open", "network", cfg.Network, "dbid", cfg.DBID, "mode", string(cfg.Mode), "consensus", string(cfg.Consensus), "storage", string(cfg.Storage))
	fmt.Printf("serve: network=%s dbid=%s mode=%s (ctrl-c to stop)\n", cfg.Network, cfg.DBID, cfg.Mode)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down", "network", cfg.Network, "dbid", cfg.DBID)
	return reg.CloseAll()
}

// buildConsensusClient returns the Client named by cfg.Consensus.
// fdb-consensus-type=raft names an external replication group this binary
// does not itself run (see internal/consensus doc comment); it is accepted
// as a valid config value but rejected at serve time until one is wired in
// by the deployment.
func buildConsensusClient(cfg conf.NodeConfig) (consensus.Client, error) {
	switch cfg.Consensus {
	case conf.ConsensusInMemory:
		timeout, err := cfg.GroupTimeout.Duration()
		if err != nil {
			return nil, err
		}
		return consensus.NewMemoryClient(timeout), nil
	case conf.ConsensusRaft:
		if _, err := conf.ParsePeers(cfg.GroupServers); err != nil {
			return nil, err
		}
		return nil, lerrors.New(lerrors.InvalidConfiguration, "cmd/ledgerd: fdb-consensus-type=raft requires an external consensus collaborator process; none is wired into this binary")
	default:
		return nil, lerrors.Errorf(lerrors.InvalidConfiguration, "cmd/ledgerd: unsupported fdb-consensus-type %q", cfg.Consensus)
	}
}

// masterKey returns the secp256k1 key that signs the genesis command: the
// configured dev key if set, otherwise a freshly generated throwaway key
// (fine for dev/test, never appropriate for fdb-mode=ledger in production).
func masterKey(cfg conf.NodeConfig) (*btcec.PrivateKey, error) {
	if cfg.Dev.MasterPrivateKeyHex != "" {
		raw, err := hex.DecodeString(cfg.Dev.MasterPrivateKeyHex)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.InvalidConfiguration, err, "cmd/ledgerd: master-private-key-hex is not valid hex")
		}
		key, _ := btcec.PrivKeyFromBytes(raw)
		return key, nil
	}
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, lerrors.Wrap(lerrors.Unexpected, err, "cmd/ledgerd: generating genesis master key failed")
	}
	return key, nil
}
