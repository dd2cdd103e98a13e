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

package flake

import (
	"sort"
	"testing"

	"github.com/kr/pretty"
)

// requireFlakeOrder fails the test with a field-by-field diff of want vs got
// when a sort order doesn't produce the expected flake sequence; a bare
// index mismatch is hard to read once an Object's fields are involved.
func requireFlakeOrder(t *testing.T, order Order, flakes, want []Flake) {
	t.Helper()
	got := make([]Flake, len(flakes))
	copy(got, flakes)
	sort.Slice(got, func(i, j int) bool { return Less(order, got[i], got[j]) })
	for i := range want {
		if got[i].S != want[i].S || !got[i].O.Equal(want[i].O) || got[i].T != want[i].T {
			t.Errorf("order %v: unexpected flake sequence:\n%s", order, pretty.Diff(want, got))
			return
		}
	}
}

func TestSubjectIDPacking(t *testing.T) {
	tests := []struct {
		name         string
		collectionID uint32
		subID        uint64
	}{
		{"zero", 0, 0},
		{"small", 1, 42},
		{"max_collection", (1 << collectionBits) - 1, 7},
		{"max_sub", 3, subMask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewSubjectID(tt.collectionID, tt.subID)
			if got := id.CollectionID(); got != tt.collectionID {
				t.Errorf("CollectionID() = %d, want %d", got, tt.collectionID)
			}
			if got := id.SubID(); got != tt.subID {
				t.Errorf("SubID() = %d, want %d", got, tt.subID)
			}
		})
	}

	t.Logf("✓ SubjectID packs and unpacks collection/sub ids correctly")
}

func TestObjectEqual(t *testing.T) {
	a := Object{Kind: KindInt, I64: 5}
	b := Object{Kind: KindInt, I64: 5}
	c := Object{Kind: KindInt, I64: 6}
	d := Object{Kind: KindString, Str: "5"}

	if !a.Equal(b) {
		t.Error("expected equal ints to be Equal")
	}
	if a.Equal(c) {
		t.Error("expected unequal ints not to be Equal")
	}
	if a.Equal(d) {
		t.Error("expected mismatched kinds not to be Equal")
	}

	s1 := Object{Kind: KindString, Str: "a"}
	s2 := Object{Kind: KindString, Str: "b"}
	if s1.Equal(s2) {
		t.Error("expected distinct strings of the same kind not to be Equal")
	}
	if !s1.Equal(Object{Kind: KindString, Str: "a"}) {
		t.Error("expected equal strings to be Equal")
	}

	n1 := Object{Kind: KindBigInt, Big: "123456789012345678901234567890"}
	n2 := Object{Kind: KindBigInt, Big: "999999999999999999999999999999"}
	if n1.Equal(n2) {
		t.Error("expected distinct bigints of the same kind not to be Equal")
	}
	if !n1.Equal(Object{Kind: KindBigInt, Big: "123456789012345678901234567890"}) {
		t.Error("expected equal bigints to be Equal")
	}
}

func TestTupleElidesNilMeta(t *testing.T) {
	f := NewAssert(NewSubjectID(1, 1), NewSubjectID(2, 9), Object{Kind: KindString, Str: "hello"}, -1)
	tuple := f.Tuple()
	if len(tuple) != 5 {
		t.Fatalf("expected 5-element tuple with nil meta, got %d", len(tuple))
	}

	f.M = Meta{"k": "v"}
	tuple = f.Tuple()
	if len(tuple) != 6 {
		t.Fatalf("expected 6-element tuple with meta set, got %d", len(tuple))
	}
}

func TestSPOTOrdering(t *testing.T) {
	s1 := NewSubjectID(1, 1)
	s2 := NewSubjectID(1, 2)
	p := NewSubjectID(10, 1)

	flakes := []Flake{
		NewAssert(s2, p, Object{Kind: KindInt, I64: 1}, -5),
		NewAssert(s1, p, Object{Kind: KindInt, I64: 2}, -1),
		NewAssert(s1, p, Object{Kind: KindInt, I64: 1}, -10),
	}

	sort.Slice(flakes, func(i, j int) bool { return Less(SPOT, flakes[i], flakes[j]) })

	if flakes[0].S != s1 || flakes[0].O.I64 != 1 {
		t.Errorf("expected (s1, o=1, t=-10) first, got s=%v o=%v", flakes[0].S, flakes[0].O.I64)
	}
	if flakes[1].S != s1 || flakes[1].O.I64 != 2 {
		t.Errorf("expected (s1, o=2, t=-1) second, got s=%v o=%v", flakes[1].S, flakes[1].O.I64)
	}
	if flakes[2].S != s2 {
		t.Errorf("expected s2 last, got %v", flakes[2].S)
	}

	t.Logf("✓ spot ordering sorts by (s, p, o, t) with t descending on ties")
}

func TestTDescNewerFirst(t *testing.T) {
	a := NewAssert(NewSubjectID(1, 1), NewSubjectID(2, 1), Object{Kind: KindBoolean, Bool: true}, -1)
	b := a
	b.T = -100

	if !Less(TSPO, a, b) {
		t.Error("expected t=-1 (more recent) to sort before t=-100 under tspo")
	}
}

func TestOPSTOrdersByObjectThenSubject(t *testing.T) {
	p := NewSubjectID(10, 1)
	sA := NewSubjectID(1, 1)
	sB := NewSubjectID(1, 2)
	refLo := NewSubjectID(5, 1)
	refHi := NewSubjectID(5, 2)

	flakes := []Flake{
		NewAssert(sB, p, Object{Kind: KindRef, Ref: refHi}, -1),
		NewAssert(sA, p, Object{Kind: KindRef, Ref: refLo}, -1),
		NewAssert(sB, p, Object{Kind: KindRef, Ref: refLo}, -1),
	}
	want := []Flake{
		NewAssert(sA, p, Object{Kind: KindRef, Ref: refLo}, -1),
		NewAssert(sB, p, Object{Kind: KindRef, Ref: refLo}, -1),
		NewAssert(sB, p, Object{Kind: KindRef, Ref: refHi}, -1),
	}
	requireFlakeOrder(t, OPST, flakes, want)
}

func TestComparatorConsistentWithLess(t *testing.T) {
	s := NewSubjectID(1, 1)
	p := NewSubjectID(2, 1)
	a := NewAssert(s, p, Object{Kind: KindInt, I64: 1}, -1)
	b := NewAssert(s, p, Object{Kind: KindInt, I64: 2}, -1)

	cmp := Comparator(PSOT)
	if cmp(a, b) >= 0 {
		t.Error("expected Comparator(PSOT)(a, b) < 0")
	}
	if cmp(a, a) != 0 {
		t.Error("expected Comparator to report equal flakes as 0")
	}
}
