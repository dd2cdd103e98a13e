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

package schema

import (
	"sort"
	"strings"

	"github.com/emicklei/dot"
)

// ToDot renders the collection/predicate ownership graph for diagnostics:
// one node per collection, one edge per predicate whose namespace names
// that collection, labeled with the predicate's local name and type.
func (s *Schema) ToDot() string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")

	nodes := make(map[string]dot.Node)
	collNames := make([]string, 0, len(s.Collections))
	for name := range s.Collections {
		collNames = append(collNames, name)
	}
	sort.Strings(collNames)
	for _, name := range collNames {
		nodes[name] = g.Node(name)
	}

	predNames := make([]string, 0, len(s.Predicates))
	for name := range s.Predicates {
		predNames = append(predNames, name)
	}
	sort.Strings(predNames)

	for _, name := range predNames {
		p := s.Predicates[name]
		parts := strings.SplitN(name, "/", 2)
		if len(parts) != 2 {
			continue
		}
		ns, local := parts[0], parts[1]
		from, ok := nodes[ns]
		if !ok {
			from = g.Node(ns)
			nodes[ns] = from
		}
		label := local + ":" + string(p.Type)
		if p.Type == TypeRef || p.Type == TypeTag {
			target := p.RestrictCollection
			if target == "" {
				target = "_any"
			}
			to, ok := nodes[target]
			if !ok {
				to = g.Node(target)
				nodes[target] = to
			}
			g.Edge(from, to, label)
			continue
		}
		// Non-reference predicates still appear as a self-loop so the
		// graph lists every owned predicate even when it targets no
		// other collection.
		g.Edge(from, from, label)
	}

	return g.String()
}
