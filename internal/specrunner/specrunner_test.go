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

package specrunner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/common/flake"
)

type fakeDB struct{}

func (fakeDB) Get(subject, predicate flake.SubjectID) []flake.Object { return nil }

func TestEvalBooleanSpec(t *testing.T) {
	r := New()
	candidate := flake.NewAssert(flake.NewSubjectID(1, 1), flake.NewSubjectID(2, 1), flake.Object{Kind: flake.KindInt, I64: 5}, -1)

	verdict, err := r.Eval(`function spec(f, db) { return f.o === "5"; }`, candidate, fakeDB{})
	require.NoError(t, err)
	require.True(t, verdict.OK)
}

func TestEvalObjectSpecWithMessage(t *testing.T) {
	r := New()
	candidate := flake.NewAssert(flake.NewSubjectID(1, 1), flake.NewSubjectID(2, 1), flake.Object{Kind: flake.KindInt, I64: 5}, -1)

	verdict, err := r.Eval(`function spec(f, db) { return {ok: false, message: "too small"}; }`, candidate, fakeDB{})
	require.NoError(t, err)
	require.False(t, verdict.OK)
	require.Equal(t, "too small", verdict.Message)
}

func TestEvalCachesCompiledProgram(t *testing.T) {
	r := New()
	src := `function spec(f, db) { return true; }`
	candidate := flake.NewAssert(flake.NewSubjectID(1, 1), flake.NewSubjectID(2, 1), flake.Object{Kind: flake.KindBoolean, Bool: true}, -1)

	_, err := r.Eval(src, candidate, fakeDB{})
	require.NoError(t, err)
	require.Len(t, r.cache, 1)

	_, err = r.Eval(src, candidate, fakeDB{})
	require.NoError(t, err)
	require.Len(t, r.cache, 1)
}

func TestEvalMissingSpecFunctionErrors(t *testing.T) {
	r := New()
	candidate := flake.NewAssert(flake.NewSubjectID(1, 1), flake.NewSubjectID(2, 1), flake.Object{Kind: flake.KindBoolean, Bool: true}, -1)

	_, err := r.Eval(`var x = 1;`, candidate, fakeDB{})
	require.Error(t, err)
}
