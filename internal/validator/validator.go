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

// Package validator enforces the type-compatibility lattice and structural
// invariants of §4.3 over a transaction's flakes that target the
// _collection or _predicate meta-collections.
package validator

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/internal/bootstrap"
)

// fieldMutation captures the assertion and/or retraction seen for one
// predicate field on one mutated subject, within the transaction.
type fieldMutation struct {
	asserted  *flake.Object
	retracted *flake.Object
}

// predicateMutation groups a transaction's flakes about a single predicate
// subject by field name, per §4.3 "Flake grouping".
type predicateMutation struct {
	subject flake.SubjectID
	fields  map[string]*fieldMutation
}

// Result is the outcome of validating one transaction's schema-mutating
// flakes.
type Result struct {
	Errors         []error
	RemoveFromPost mapset.Set[flake.SubjectID]
}

// OK reports whether the transaction's schema mutations are all legal.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate groups flakes targeting _predicate/_collection subjects and
// checks every rule in §4.3. before is the schema cache as of the start of
// the transaction (db-before); after, if non-nil, is consulted for
// post-index hygiene's re-check against the db-after view. A nil after
// skips that re-check (callers that only need the legality verdict, e.g.
// scenario tests, may omit it).
func Validate(flakes []flake.Flake, before *schema.Schema, after *schema.Schema) Result {
	result := Result{RemoveFromPost: mapset.NewSet[flake.SubjectID]()}

	mutations := groupPredicateMutations(flakes)
	for _, m := range mutations {
		existing, isExisting := before.PredicateByID(m.subject)
		result.Errors = append(result.Errors, validateType(m, existing, isExisting)...)
		result.Errors = append(result.Errors, validateMulti(m, existing, isExisting)...)
		result.Errors = append(result.Errors, validateComponent(m, existing, isExisting)...)
		result.Errors = append(result.Errors, validateUnique(m, existing, isExisting)...)
		result.Errors = append(result.Errors, validateName(m)...)

		if transitionsIndexOrUniqueToFalse(m) {
			result.RemoveFromPost.Add(m.subject)
		}
	}

	for _, c := range groupCollectionNameFlakes(flakes) {
		if !schema.ValidCollectionName(c) {
			result.Errors = append(result.Errors, fmt.Errorf("invalid-collection: name %q does not match the collection name pattern", c))
		}
	}

	if after != nil {
		reconcileRemoveFromPost(result.RemoveFromPost, after)
	}

	return result
}

// groupPredicateMutations partitions flakes whose subject lives in the
// _predicate collection by subject-id, then by the well-known field each
// flake's predicate-id names.
func groupPredicateMutations(flakes []flake.Flake) map[flake.SubjectID]*predicateMutation {
	out := make(map[flake.SubjectID]*predicateMutation)
	for _, f := range flakes {
		if f.S.CollectionID() != bootstrap.CollPredicate {
			continue
		}
		field := fieldNameOf(f.P)
		if field == "" {
			continue
		}
		m, ok := out[f.S]
		if !ok {
			m = &predicateMutation{subject: f.S, fields: make(map[string]*fieldMutation)}
			out[f.S] = m
		}
		fm, ok := m.fields[field]
		if !ok {
			fm = &fieldMutation{}
			m.fields[field] = fm
		}
		obj := f.O
		if f.Op {
			fm.asserted = &obj
		} else {
			fm.retracted = &obj
		}
	}
	return out
}

func groupCollectionNameFlakes(flakes []flake.Flake) []string {
	var out []string
	for _, f := range flakes {
		if f.S.CollectionID() == bootstrap.CollCollection && f.P == bootstrap.PredCollectionName && f.Op {
			out = append(out, f.O.Str)
		}
	}
	return out
}

func fieldNameOf(p flake.PredicateID) string {
	switch p {
	case bootstrap.PredPredicateType:
		return "type"
	case bootstrap.PredPredicateMulti:
		return "multi"
	case bootstrap.PredPredicateComponent:
		return "component"
	case bootstrap.PredPredicateUnique:
		return "unique"
	case bootstrap.PredPredicateIndex:
		return "index"
	case bootstrap.PredPredicateName:
		return "name"
	default:
		return ""
	}
}

func validateType(m *predicateMutation, existing schema.Predicate, isExisting bool) []error {
	fm, touched := m.fields["type"]
	if !touched {
		return nil
	}
	if fm.asserted == nil {
		return []error{fmt.Errorf("invalid-predicate: retracting _predicate/type on %s without asserting a replacement", m.subject)}
	}
	toType := schema.PredicateType(fm.asserted.Str)
	if fm.retracted == nil {
		if !isExisting {
			// New predicate declaring a type: always legal, no lattice check.
			return nil
		}
		// Existing predicate asserting a type with no matching retraction
		// in this transaction: treat the declared type as unchanged only
		// if it already matches; otherwise this is an undeclared change.
		if existing.Type == toType {
			return nil
		}
		return []error{fmt.Errorf("invalid-predicate: %s asserts _predicate/type=%s without retracting the prior type", m.subject, toType)}
	}
	fromType := schema.PredicateType(fm.retracted.Str)
	if !schema.AllowedTypeChange(fromType, toType) {
		return []error{fmt.Errorf("invalid-predicate: %s changes _predicate/type from %s to %s, not allowed by the type lattice", m.subject, fromType, toType)}
	}
	return nil
}

func validateMulti(m *predicateMutation, existing schema.Predicate, isExisting bool) []error {
	fm, touched := m.fields["multi"]
	if !touched || !isExisting {
		return nil
	}
	if fm.retracted != nil && fm.retracted.Bool && fm.asserted != nil && !fm.asserted.Bool {
		return []error{fmt.Errorf("invalid-predicate: %s changes multi=true to multi=false, not allowed (multi->single is irreversible)", m.subject)}
	}
	_ = existing
	return nil
}

func validateComponent(m *predicateMutation, existing schema.Predicate, isExisting bool) []error {
	fm, touched := m.fields["component"]
	if !touched || fm.asserted == nil || !fm.asserted.Bool {
		return nil
	}
	if isExisting {
		return []error{fmt.Errorf("invalid-predicate: %s sets component=true on an existing predicate, not allowed", m.subject)}
	}
	// New predicate with component=true must have type=ref.
	typeField, hasType := m.fields["type"]
	declaredType := existing.Type
	if hasType && typeField.asserted != nil {
		declaredType = schema.PredicateType(typeField.asserted.Str)
	}
	if declaredType != schema.TypeRef {
		return []error{fmt.Errorf("invalid-predicate: %s declares component=true with type=%s, component predicates must be type=ref", m.subject, declaredType)}
	}
	return nil
}

func validateUnique(m *predicateMutation, existing schema.Predicate, isExisting bool) []error {
	fm, touched := m.fields["unique"]
	if !touched || fm.asserted == nil || !fm.asserted.Bool {
		return nil
	}
	if isExisting {
		return []error{fmt.Errorf("invalid-predicate: %s sets unique=true on an existing predicate, not allowed; migrate via a new predicate instead", m.subject)}
	}
	declaredType := existing.Type
	if tf, ok := m.fields["type"]; ok && tf.asserted != nil {
		declaredType = schema.PredicateType(tf.asserted.Str)
	}
	if declaredType == schema.TypeBoolean {
		return []error{fmt.Errorf("invalid-predicate: %s declares unique=true with type=boolean, boolean predicates may never be unique", m.subject)}
	}
	return nil
}

func validateName(m *predicateMutation) []error {
	fm, touched := m.fields["name"]
	if !touched || fm.asserted == nil {
		return nil
	}
	if !schema.ValidPredicateName(fm.asserted.Str) {
		return []error{fmt.Errorf("invalid-predicate: name %q does not match the predicate name pattern or contains a reserved substring", fm.asserted.Str)}
	}
	return nil
}

// transitionsIndexOrUniqueToFalse reports whether this transaction retracts
// a true index or unique flag without a matching true assertion, per the
// "post-index hygiene" rule.
func transitionsIndexOrUniqueToFalse(m *predicateMutation) bool {
	for _, field := range []string{"index", "unique"} {
		fm, touched := m.fields[field]
		if !touched {
			continue
		}
		if fm.retracted != nil && fm.retracted.Bool && (fm.asserted == nil || !fm.asserted.Bool) {
			return true
		}
	}
	return false
}

// reconcileRemoveFromPost re-checks each candidate subject-id against the
// post-transaction schema view: if it is still indexable (the *other* flag
// is still true), it is dropped from the set; otherwise it remains
// scheduled for removal from the post projection.
func reconcileRemoveFromPost(set mapset.Set[flake.SubjectID], after *schema.Schema) {
	for _, id := range set.ToSlice() {
		p, ok := after.PredicateByID(id)
		if ok && p.Indexable() {
			set.Remove(id)
		}
	}
}
