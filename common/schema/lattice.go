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

// typeLattice enumerates, for each destination type, the set of origin
// types a retract-then-assert _predicate/type pair may legally transition
// from. Any pair not listed here is rejected.
var typeLattice = map[PredicateType]map[PredicateType]bool{
	TypeLong:    {TypeInt: true, TypeInstant: true},
	TypeBigInt:  {TypeInt: true, TypeLong: true, TypeInstant: true},
	TypeFloat:   {TypeInt: true, TypeLong: true},
	TypeDouble:  {TypeFloat: true, TypeInt: true, TypeLong: true},
	TypeBigDec:  {TypeFloat: true, TypeDouble: true, TypeInt: true, TypeLong: true, TypeBigInt: true},
	TypeString:  {TypeJSON: true, TypeGeoJSON: true, TypeBytes: true, TypeUUID: true, TypeURI: true},
	TypeInstant: {TypeInt: true, TypeLong: true},
}

// AllowedTypeChange reports whether a predicate's declared type may change
// from "from" to "to" via a retract-then-assert pair.
func AllowedTypeChange(from, to PredicateType) bool {
	if from == to {
		return true
	}
	origins, ok := typeLattice[to]
	if !ok {
		return false
	}
	return origins[from]
}
