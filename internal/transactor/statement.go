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

package transactor

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
)

// Ref identifies a statement's subject or a ref-typed object: either a
// tempid minted within this transaction ("_:name"), an existing subject
// expressed as "collection/subid", or a raw numeric composite id.
type Ref string

// IsTempID reports whether r names a transaction-local tempid.
func (r Ref) IsTempID() bool {
	return len(r) > 2 && r[:2] == "_:"
}

// Statement is one (subject, predicate, value) triple from the command's
// statement graph, before name resolution and type coercion.
type Statement struct {
	Subject   Ref
	Predicate string // dotted "ns/local" predicate name
	Value     any    // literal Go value, or a Ref for ref-typed predicates
	Retract   bool
}

// Command is the parsed body of one transaction request.
type Command struct {
	// Raw is the exact signed bytes; tx-id = sha3_256(Raw).
	Raw        []byte
	Statements []Statement
}

// materializer resolves Statements into Flakes against a point-in-time
// schema and a tempid/collection name table, minting new subject-ids as
// needed (§4.4 step 3).
type materializer struct {
	schema       *schema.Schema
	ecount       *Ecount
	collectionID map[string]uint32
	tempids      map[Ref]flake.SubjectID
}

func newMaterializer(s *schema.Schema, ecount *Ecount) *materializer {
	collectionID := make(map[string]uint32, len(s.Collections))
	for name, c := range s.Collections {
		collectionID[name] = c.ID.CollectionID()
	}
	return &materializer{
		schema:       s,
		ecount:       ecount,
		collectionID: collectionID,
		tempids:      make(map[Ref]flake.SubjectID),
	}
}

// resolveSubject resolves a statement's subject ref to a concrete
// SubjectID, minting one from collection on first use of a given tempid
// within the transaction so repeated references in the same command agree.
func (m *materializer) resolveSubject(ref Ref, collection string) (flake.SubjectID, error) {
	if ref.IsTempID() {
		if id, ok := m.tempids[ref]; ok {
			return id, nil
		}
		cid, ok := m.collectionID[collection]
		if !ok {
			return 0, fmt.Errorf("transactor: unknown collection %q for tempid %q", collection, ref)
		}
		id := m.ecount.Mint(cid)
		m.tempids[ref] = id
		return id, nil
	}
	return parseSubjectRef(ref)
}

// parseSubjectRef parses a non-tempid ref: either "collection/subid" or a
// raw decimal composite subject id.
func parseSubjectRef(ref Ref) (flake.SubjectID, error) {
	s := string(ref)
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		return flake.SubjectID(id), nil
	}
	var collection string
	var subID uint64
	if n, err := fmt.Sscanf(s, "%255[^/]/%d", &collection, &subID); err == nil && n == 2 {
		return 0, fmt.Errorf("transactor: %q: collection-relative refs must be resolved against a live schema, use resolveSubject", s)
	}
	return 0, fmt.Errorf("transactor: invalid subject reference %q", s)
}

// coerceLiteral converts a raw statement value into a flake.Object matching
// pred's declared type, per §4.4 step 3's "coercing literals to declared
// types". Widening between numeric kinds mirrors the validator's type
// lattice so a predicate that later widens its declared type never needs
// its existing flakes rewritten.
func coerceLiteral(pred schema.Predicate, value any, resolveRef func(Ref) (flake.SubjectID, error)) (flake.Object, error) {
	if pred.Type == schema.TypeRef || pred.Type == schema.TypeTag {
		ref, ok := value.(Ref)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q is ref-typed, got %T", pred.Name, value)
		}
		id, err := resolveRef(ref)
		if err != nil {
			return flake.Object{}, err
		}
		kind := flake.KindRef
		if pred.Type == schema.TypeTag {
			kind = flake.KindTag
		}
		return flake.Object{Kind: kind, Ref: id}, nil
	}

	switch pred.Type {
	case schema.TypeString, schema.TypeJSON, schema.TypeGeoJSON, schema.TypeURI:
		s, ok := asString(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a string-like literal, got %T", pred.Name, value)
		}
		kind := flake.KindString
		if pred.Type == schema.TypeJSON {
			kind = flake.KindJSON
		} else if pred.Type == schema.TypeGeoJSON {
			kind = flake.KindGeoJSON
		} else if pred.Type == schema.TypeURI {
			kind = flake.KindURI
		}
		return flake.Object{Kind: kind, Str: s}, nil
	case schema.TypeUUID:
		s, ok := asString(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a uuid string, got %T", pred.Name, value)
		}
		if _, err := uuid.Parse(s); err != nil {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q: invalid uuid %q: %w", pred.Name, s, err)
		}
		return flake.Object{Kind: flake.KindUUID, Str: s}, nil
	case schema.TypeBytes:
		b, ok := value.([]byte)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects []byte, got %T", pred.Name, value)
		}
		return flake.Object{Kind: flake.KindBytes, Bytes: b}, nil
	case schema.TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a bool, got %T", pred.Name, value)
		}
		return flake.Object{Kind: flake.KindBoolean, Bool: b}, nil
	case schema.TypeInt, schema.TypeLong:
		i, ok := asInt64(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects an integer literal, got %T", pred.Name, value)
		}
		kind := flake.KindInt
		if pred.Type == schema.TypeLong {
			kind = flake.KindLong
		}
		return flake.Object{Kind: kind, I64: i}, nil
	case schema.TypeFloat, schema.TypeDouble:
		f, ok := asFloat64(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a float literal, got %T", pred.Name, value)
		}
		kind := flake.KindFloat
		if pred.Type == schema.TypeDouble {
			kind = flake.KindDouble
		}
		return flake.Object{Kind: kind, F64: f}, nil
	case schema.TypeBigInt, schema.TypeBigDec:
		s, ok := asString(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a decimal-text literal, got %T", pred.Name, value)
		}
		kind := flake.KindBigInt
		if pred.Type == schema.TypeBigDec {
			kind = flake.KindBigDec
		}
		return flake.Object{Kind: kind, Big: s}, nil
	case schema.TypeInstant:
		ms, ok := asInt64(value)
		if !ok {
			return flake.Object{}, fmt.Errorf("transactor: predicate %q expects a millisecond instant, got %T", pred.Name, value)
		}
		return flake.Object{Kind: flake.KindInstant, Millis: ms}, nil
	default:
		return flake.Object{}, fmt.Errorf("transactor: predicate %q declares unknown type %q", pred.Name, pred.Type)
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
