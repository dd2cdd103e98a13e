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

// Order names one of the five sorted projections a ledger maintains over its
// flakes.
type Order uint8

const (
	SPOT Order = iota
	PSOT
	POST
	OPST
	TSPO
)

func (o Order) String() string {
	switch o {
	case SPOT:
		return "spot"
	case PSOT:
		return "psot"
	case POST:
		return "post"
	case OPST:
		return "opst"
	case TSPO:
		return "tspo"
	default:
		return "unknown"
	}
}

// Less reports the ordering of two flakes under the named Order. Ties on
// leading components fall through to the remaining tuple components in the
// order's stated sequence; t is always compared descending (larger logical
// time, i.e. less negative, sorts first).
func Less(order Order, a, b Flake) bool {
	switch order {
	case SPOT:
		return lessSPOT(a, b)
	case PSOT:
		return lessPSOT(a, b)
	case POST:
		return lessPOST(a, b)
	case OPST:
		return lessOPST(a, b)
	case TSPO:
		return lessTSPO(a, b)
	default:
		return lessSPOT(a, b)
	}
}

// tDesc compares logical time descending: larger (less negative) t sorts
// first, so a record's most recent revision is reached first on a forward
// scan.
func tDesc(at, bt int64) int {
	switch {
	case at == bt:
		return 0
	case at > bt:
		return -1
	default:
		return 1
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

func cmpObject(a, b Object) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindRef, KindTag:
		return cmpUint64(uint64(a.Ref), uint64(b.Ref))
	case KindInt, KindLong:
		switch {
		case a.I64 == b.I64:
			return 0
		case a.I64 < b.I64:
			return -1
		default:
			return 1
		}
	case KindFloat, KindDouble:
		switch {
		case a.F64 == b.F64:
			return 0
		case a.F64 < b.F64:
			return -1
		default:
			return 1
		}
	case KindBoolean:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case KindInstant:
		switch {
		case a.Millis == b.Millis:
			return 0
		case a.Millis < b.Millis:
			return -1
		default:
			return 1
		}
	case KindBytes:
		as, bs := string(a.Bytes), string(b.Bytes)
		switch {
		case as == bs:
			return 0
		case as < bs:
			return -1
		default:
			return 1
		}
	default:
		switch {
		case a.Str == b.Str:
			return 0
		case a.Str < b.Str:
			return -1
		default:
			return 1
		}
	}
}

// lessSPOT orders by (s, p, o, t).
func lessSPOT(a, b Flake) bool {
	if c := cmpUint64(uint64(a.S), uint64(b.S)); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.P), uint64(b.P)); c != 0 {
		return c < 0
	}
	if c := cmpObject(a.O, b.O); c != 0 {
		return c < 0
	}
	return tDesc(a.T, b.T) < 0
}

// lessPSOT orders by (p, s, o, t).
func lessPSOT(a, b Flake) bool {
	if c := cmpUint64(uint64(a.P), uint64(b.P)); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.S), uint64(b.S)); c != 0 {
		return c < 0
	}
	if c := cmpObject(a.O, b.O); c != 0 {
		return c < 0
	}
	return tDesc(a.T, b.T) < 0
}

// lessPOST orders by (p, o, s, t). Only meaningful for indexed/unique
// predicates; callers decide membership before insertion.
func lessPOST(a, b Flake) bool {
	if c := cmpUint64(uint64(a.P), uint64(b.P)); c != 0 {
		return c < 0
	}
	if c := cmpObject(a.O, b.O); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.S), uint64(b.S)); c != 0 {
		return c < 0
	}
	return tDesc(a.T, b.T) < 0
}

// lessOPST orders by (o, p, s, t). Only meaningful for ref/tag predicates.
func lessOPST(a, b Flake) bool {
	if c := cmpObject(a.O, b.O); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.P), uint64(b.P)); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.S), uint64(b.S)); c != 0 {
		return c < 0
	}
	return tDesc(a.T, b.T) < 0
}

// lessTSPO orders by (t, s, p, o) — history/log replay order. t is still
// compared descending, consistent with every other order: replay proceeds
// from the most recent logical time backward.
func lessTSPO(a, b Flake) bool {
	if c := tDesc(a.T, b.T); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.S), uint64(b.S)); c != 0 {
		return c < 0
	}
	if c := cmpUint64(uint64(a.P), uint64(b.P)); c != 0 {
		return c < 0
	}
	return cmpObject(a.O, b.O) < 0
}

// Comparator returns a (a, b) int comparison function for order, suitable
// for use as a google/btree.LessFunc built atop Less, or for sort.Slice
// call sites that want a three-way result.
func Comparator(order Order) func(a, b Flake) int {
	return func(a, b Flake) int {
		if Less(order, a, b) {
			return -1
		}
		if Less(order, b, a) {
			return 1
		}
		return 0
	}
}
