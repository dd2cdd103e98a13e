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

package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/internal/bootstrap"
)

func typeFlakes(subject flake.SubjectID, from, to schema.PredicateType, t int64) []flake.Flake {
	var out []flake.Flake
	if from != "" {
		out = append(out, flake.NewRetract(subject, bootstrap.PredPredicateType, flake.Object{Kind: flake.KindString, Str: string(from)}, t))
	}
	out = append(out, flake.NewAssert(subject, bootstrap.PredPredicateType, flake.Object{Kind: flake.KindString, Str: string(to)}, t))
	return out
}

func TestLegalTypeChange(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 100)
	before := schema.New()
	before.Predicates["x/y"] = schema.Predicate{ID: subject, Name: "x/y", Type: schema.TypeInt}

	flakes := typeFlakes(subject, schema.TypeInt, schema.TypeLong, -1)
	result := Validate(flakes, before, nil)

	require.True(t, result.OK(), "expected int->long to be legal: %v", result.Errors)
}

func TestIllegalTypeChange(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 100)
	before := schema.New()
	before.Predicates["x/y"] = schema.Predicate{ID: subject, Name: "x/y", Type: schema.TypeInt}

	flakes := typeFlakes(subject, schema.TypeInt, schema.TypeBoolean, -1)
	result := Validate(flakes, before, nil)

	require.False(t, result.OK())
}

func TestUniqueOnExistingRejected(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 101)
	before := schema.New()
	before.Predicates["x/y"] = schema.Predicate{ID: subject, Name: "x/y", Type: schema.TypeString, Unique: false}

	flakes := []flake.Flake{
		flake.NewAssert(subject, bootstrap.PredPredicateUnique, flake.Object{Kind: flake.KindBoolean, Bool: true}, -1),
	}
	result := Validate(flakes, before, nil)

	require.False(t, result.OK())
	require.Contains(t, result.Errors[0].Error(), "migrate via a new predicate")
}

func TestComponentOnNewRefPredicateAllowed(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 102)
	before := schema.New()

	flakes := append(
		typeFlakes(subject, "", schema.TypeRef, -1),
		flake.NewAssert(subject, bootstrap.PredPredicateComponent, flake.Object{Kind: flake.KindBoolean, Bool: true}, -1),
	)
	result := Validate(flakes, before, nil)
	require.True(t, result.OK(), "expected new ref+component predicate to be legal: %v", result.Errors)
}

func TestComponentOnNewStringPredicateRejected(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 103)
	before := schema.New()

	flakes := append(
		typeFlakes(subject, "", schema.TypeString, -1),
		flake.NewAssert(subject, bootstrap.PredPredicateComponent, flake.Object{Kind: flake.KindBoolean, Bool: true}, -1),
	)
	result := Validate(flakes, before, nil)
	require.False(t, result.OK())
}

func TestPostRemovalEmptyWhenOtherFlagStillHolds(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 104)
	before := schema.New()
	before.Predicates["x/z"] = schema.Predicate{ID: subject, Name: "x/z", Type: schema.TypeString, Index: true, Unique: true}

	flakes := []flake.Flake{
		flake.NewRetract(subject, bootstrap.PredPredicateUnique, flake.Object{Kind: flake.KindBoolean, Bool: true}, -1),
		flake.NewAssert(subject, bootstrap.PredPredicateUnique, flake.Object{Kind: flake.KindBoolean, Bool: false}, -1),
	}

	after := schema.New()
	after.Predicates["x/z"] = schema.Predicate{ID: subject, Name: "x/z", Type: schema.TypeString, Index: true, Unique: false}

	result := Validate(flakes, before, after)
	require.True(t, result.OK())
	require.True(t, result.RemoveFromPost.IsEmpty(), "expected remove-from-post empty because index=true still holds")
}

func TestMultiToSingleRejected(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollPredicate, 105)
	before := schema.New()
	before.Predicates["x/w"] = schema.Predicate{ID: subject, Name: "x/w", Type: schema.TypeString, Multi: true}

	flakes := []flake.Flake{
		flake.NewRetract(subject, bootstrap.PredPredicateMulti, flake.Object{Kind: flake.KindBoolean, Bool: true}, -1),
		flake.NewAssert(subject, bootstrap.PredPredicateMulti, flake.Object{Kind: flake.KindBoolean, Bool: false}, -1),
	}
	result := Validate(flakes, before, nil)
	require.False(t, result.OK())
}

func TestInvalidCollectionName(t *testing.T) {
	subject := flake.NewSubjectID(bootstrap.CollCollection, 50)
	before := schema.New()

	flakes := []flake.Flake{
		flake.NewAssert(subject, bootstrap.PredCollectionName, flake.Object{Kind: flake.KindString, Str: "has space"}, -1),
	}
	result := Validate(flakes, before, nil)
	require.False(t, result.OK())
}
