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

// Package schema defines the meta-schema shapes — Collection, Predicate and
// Tag — that describe a ledger's own data model.
package schema

import (
	"regexp"
	"strings"

	"github.com/stashdaddy/ledger/common/flake"
)

// CollectionNamePattern matches legal collection names.
var CollectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]{0,254}$`)

// predicateDisallowed lists the substrings a legal predicate name may never
// contain, reserved for internally synthesized reverse-reference names
// (the "_Via_" join predicates) and namespace-private fields ("__", "/_").
var predicateDisallowed = []string{"__", "/_", "_Via_"}

// PredicateType enumerates the object types a predicate may declare.
type PredicateType string

const (
	TypeString  PredicateType = "string"
	TypeRef     PredicateType = "ref"
	TypeTag     PredicateType = "tag"
	TypeInt     PredicateType = "int"
	TypeLong    PredicateType = "long"
	TypeBigInt  PredicateType = "bigint"
	TypeFloat   PredicateType = "float"
	TypeDouble  PredicateType = "double"
	TypeBigDec  PredicateType = "bigdec"
	TypeBoolean PredicateType = "boolean"
	TypeInstant PredicateType = "instant"
	TypeBytes   PredicateType = "bytes"
	TypeUUID    PredicateType = "uuid"
	TypeURI     PredicateType = "uri"
	TypeJSON    PredicateType = "json"
	TypeGeoJSON PredicateType = "geojson"
)

// Collection is the meta-schema description of a named bucket of subjects.
type Collection struct {
	ID      flake.SubjectID
	Name    string
	Doc     string
	Version int
	Spec    string // optional delegated _collection/spec source
	Shard   string
}

// ValidCollectionName reports whether name is a legal collection name.
func ValidCollectionName(name string) bool {
	return CollectionNamePattern.MatchString(name)
}

// Predicate is the meta-schema description of a named, typed edge.
type Predicate struct {
	ID                 flake.SubjectID
	Name               string
	Type               PredicateType
	Multi              bool
	Unique             bool
	Index              bool
	Upsert             bool
	Component          bool
	NoHistory          bool
	RestrictCollection string
	RestrictTag        string
	FullText           bool
	Spec               string // delegated _predicate/spec source
	TxSpec             string // delegated _predicate/txSpec source
	Encrypted          bool
	Deprecated         bool
}

// ValidPredicateName reports whether name matches "ns/local" where each side
// is a legal collection name and the whole string avoids the reserved
// substrings.
func ValidPredicateName(name string) bool {
	for _, bad := range predicateDisallowed {
		if strings.Contains(name, bad) {
			return false
		}
	}
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 {
		return false
	}
	ns, local := parts[0], parts[1]
	return ValidCollectionName(ns) && ValidCollectionName(local)
}

// Indexable reports whether a predicate currently belongs in the post
// projection: indexed or unique.
func (p Predicate) Indexable() bool {
	return p.Index || p.Unique
}

// ReverseIndexable reports whether a predicate currently belongs in the opst
// projection: ref or tag typed.
func (p Predicate) ReverseIndexable() bool {
	return p.Type == TypeRef || p.Type == TypeTag
}

// Tag is an enumerated value used as the object of a tag-typed predicate.
type Tag struct {
	ID            flake.SubjectID
	PredicateName string
	Value         string
}

// Schema is a point-in-time, immutable view of a ledger's own data model.
// New Schema values are published copy-on-write at block commit; nothing
// here is ever mutated after construction.
type Schema struct {
	Collections map[string]Collection
	Predicates  map[string]Predicate
	Tags        map[string]Tag // keyed by "predicateName=value"
}

// New returns an empty Schema ready to be populated by the bootstrap program
// or by successive block commits.
func New() *Schema {
	return &Schema{
		Collections: make(map[string]Collection),
		Predicates:  make(map[string]Predicate),
		Tags:        make(map[string]Tag),
	}
}

// Clone returns a shallow copy of s with freshly allocated top-level maps,
// the shape the schema cache publishes on every block commit (copy-on-write:
// callers mutate the clone, never s).
func (s *Schema) Clone() *Schema {
	out := New()
	for k, v := range s.Collections {
		out.Collections[k] = v
	}
	for k, v := range s.Predicates {
		out.Predicates[k] = v
	}
	for k, v := range s.Tags {
		out.Tags[k] = v
	}
	return out
}

// PredicateByID finds a predicate by its subject id, for callers that only
// have the id at hand (e.g. the validator grouping flakes by mutated
// predicate-subject).
func (s *Schema) PredicateByID(id flake.SubjectID) (Predicate, bool) {
	for _, p := range s.Predicates {
		if p.ID == id {
			return p, true
		}
	}
	return Predicate{}, false
}

// CollectionByID finds a collection by its subject id.
func (s *Schema) CollectionByID(id flake.SubjectID) (Collection, bool) {
	for _, c := range s.Collections {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}
