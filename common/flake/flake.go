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

// Package flake defines the atomic datum of the ledger: the flake tuple
// (s, p, o, t, op, m) and its five sort-order comparators.
package flake

import "fmt"

// SubjectID is a 64-bit composite of (collection-id, within-collection-id).
// The high 20 bits hold the collection id, the low 44 bits the sub-id. This
// split mirrors the teacher's bucket-key composites (block_num + hash) in
// spirit: a fixed-width key that embeds its own namespace.
type SubjectID uint64

const (
	collectionBits = 20
	subBits        = 64 - collectionBits
	subMask        = (uint64(1) << subBits) - 1
)

// NewSubjectID packs a collection id and a within-collection sub-id into a
// single composite identifier.
func NewSubjectID(collectionID uint32, subID uint64) SubjectID {
	return SubjectID((uint64(collectionID) << subBits) | (subID & subMask))
}

// CollectionID extracts the owning collection id from a composite subject id.
func (s SubjectID) CollectionID() uint32 {
	return uint32(uint64(s) >> subBits)
}

// SubID extracts the within-collection sub-id from a composite subject id.
func (s SubjectID) SubID() uint64 {
	return uint64(s) & subMask
}

func (s SubjectID) String() string {
	return fmt.Sprintf("%d:%d", s.CollectionID(), s.SubID())
}

// PredicateID is a SubjectID whose collection is fixed to the well-known
// "_predicate" collection.
type PredicateID = SubjectID

// ObjectKind discriminates the polymorphic object value carried by a flake.
type ObjectKind uint8

const (
	KindRef ObjectKind = iota
	KindString
	KindInt
	KindLong
	KindBigInt
	KindFloat
	KindDouble
	KindBigDec
	KindBoolean
	KindInstant
	KindBytes
	KindUUID
	KindURI
	KindJSON
	KindGeoJSON
	KindTag
)

// Object is the polymorphic (s,p,o,t,op,m) object value. Exactly one of the
// typed fields is meaningful, selected by Kind. Coercion from a literal into
// the right field is the Transactor's job (internal/transactor); Object
// itself is an inert value type.
type Object struct {
	Kind ObjectKind

	Ref    SubjectID
	Str    string
	I64    int64
	Big    string // decimal text form of a bigint/bigdec value
	F64    float64
	Bool   bool
	Millis int64 // instant, as Unix milliseconds
	Bytes  []byte
}

// Equal reports whether two objects carry the same value.
func (o Object) Equal(other Object) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case KindRef, KindTag:
		return o.Ref == other.Ref
	case KindString, KindUUID, KindURI, KindJSON, KindGeoJSON, KindBigInt, KindBigDec:
		return o.Str == other.Str && o.Big == other.Big
	case KindInt, KindLong:
		return o.I64 == other.I64
	case KindFloat, KindDouble:
		return o.F64 == other.F64
	case KindBoolean:
		return o.Bool == other.Bool
	case KindInstant:
		return o.Millis == other.Millis
	case KindBytes:
		return string(o.Bytes) == string(other.Bytes)
	default:
		return false
	}
}

func (o Object) String() string {
	switch o.Kind {
	case KindRef, KindTag:
		return o.Ref.String()
	case KindInt, KindLong:
		return fmt.Sprintf("%d", o.I64)
	case KindBigInt, KindBigDec:
		return o.Big
	case KindFloat, KindDouble:
		return fmt.Sprintf("%g", o.F64)
	case KindBoolean:
		return fmt.Sprintf("%t", o.Bool)
	case KindInstant:
		return fmt.Sprintf("t:%d", o.Millis)
	case KindBytes:
		return fmt.Sprintf("%x", o.Bytes)
	default:
		return o.Str
	}
}

// Meta is the optional metadata blob attached to a flake. A nil Meta is
// elided from canonical serialization (spec: "m=nil is elided").
type Meta map[string]any

// Flake is the immutable (s, p, o, t, op, m) datum. Flakes are never mutated
// after creation; (s, p, o, t) is unique within a ledger.
type Flake struct {
	S  SubjectID
	P  PredicateID
	O  Object
	T  int64 // logical time, monotonically decreasing
	Op bool  // true = assertion, false = retraction
	M  Meta
}

// New constructs a flake. op defaults to assertion (true) via NewAssert /
// NewRetract, which are the constructors callers should reach for.
func New(s SubjectID, p PredicateID, o Object, t int64, op bool, m Meta) Flake {
	return Flake{S: s, P: p, O: o, T: t, Op: op, M: m}
}

// NewAssert builds an assertion flake.
func NewAssert(s SubjectID, p PredicateID, o Object, t int64) Flake {
	return New(s, p, o, t, true, nil)
}

// NewRetract builds a retraction flake.
func NewRetract(s SubjectID, p PredicateID, o Object, t int64) Flake {
	return New(s, p, o, t, false, nil)
}

// Tuple returns the canonical [s, p, o, t, op, m] encoding used for block
// hashing and wire serialization. m is omitted entirely when nil, matching
// the "m=nil is elided" hash-stability rule.
func (f Flake) Tuple() []any {
	obj := encodeObject(f.O)
	if f.M == nil {
		return []any{int64(f.S), int64(f.P), obj, f.T, f.Op}
	}
	return []any{int64(f.S), int64(f.P), obj, f.T, f.Op, map[string]any(f.M)}
}

// encodeObject renders an Object into the literal form used by the canonical
// tuple: a subject-id for ref/tag objects, otherwise the typed literal.
func encodeObject(o Object) any {
	switch o.Kind {
	case KindRef, KindTag:
		return int64(o.Ref)
	case KindInt, KindLong:
		return o.I64
	case KindBigInt, KindBigDec:
		return o.Big
	case KindFloat, KindDouble:
		return o.F64
	case KindBoolean:
		return o.Bool
	case KindInstant:
		return o.Millis
	case KindBytes:
		return o.Bytes
	default:
		return o.Str
	}
}
