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
	"fmt"
	"strings"

	"github.com/multiformats/go-multiaddr"
)

// Peer is one member of the consensus/replication group, as declared in
// fdb-group-servers ("id@host:port,...").
type Peer struct {
	ID   string
	Addr multiaddr.Multiaddr
}

// ParsePeers parses fdb-group-servers into a typed peer list, handed to
// the external consensus collaborator at startup.
func ParsePeers(groupServers string) ([]Peer, error) {
	groupServers = strings.TrimSpace(groupServers)
	if groupServers == "" {
		return nil, nil
	}

	entries := strings.Split(groupServers, ",")
	peers := make([]Peer, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, hostport, ok := strings.Cut(entry, "@")
		if !ok {
			return nil, fmt.Errorf("conf: invalid fdb-group-servers entry %q, want id@host:port", entry)
		}
		host, port, ok := strings.Cut(hostport, ":")
		if !ok {
			return nil, fmt.Errorf("conf: invalid fdb-group-servers entry %q, want id@host:port", entry)
		}
		addr, err := multiaddr.NewMultiaddr(fmt.Sprintf("/dns4/%s/tcp/%s", host, port))
		if err != nil {
			return nil, fmt.Errorf("conf: invalid fdb-group-servers address %q: %w", entry, err)
		}
		peers = append(peers, Peer{ID: id, Addr: addr})
	}
	return peers, nil
}

// ThisServer returns the Peer in peers whose ID matches thisServer
// (fdb-group-this-server); the spec requires this id to appear in the
// group list.
func ThisServer(peers []Peer, thisServer string) (Peer, error) {
	for _, p := range peers {
		if p.ID == thisServer {
			return p, nil
		}
	}
	return Peer{}, fmt.Errorf("conf: fdb-group-this-server %q not found in fdb-group-servers", thisServer)
}
