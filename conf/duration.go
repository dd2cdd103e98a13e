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

package conf

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DurationString is a time string as written in a config file or
// environment variable, e.g. "2000ms", "30s", "5m", "2h", "1d", "1y"
// (fdb-group-timeout). A bare number with no unit defaults to
// milliseconds.
type DurationString string

var durationPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)([sSmMhHdDyY]{0,2})$`)

// Duration parses the string into a time.Duration. Recognized units:
// ms (default), s, m, h, d, y (365 days).
func (d DurationString) Duration() (time.Duration, error) {
	s := string(d)
	if s == "" {
		return 0, nil
	}
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("conf: invalid duration string %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("conf: invalid duration string %q: %w", s, err)
	}

	var unit time.Duration
	switch m[2] {
	case "", "ms":
		unit = time.Millisecond
	case "s", "S":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "M":
		// "M" alone is ambiguous with minutes; this codebase treats a
		// bare capital M as minutes too, matching the lowercase case,
		// since months have no fixed duration.
		unit = time.Minute
	case "h", "H":
		unit = time.Hour
	case "d", "D":
		unit = 24 * time.Hour
	case "y", "Y":
		unit = 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("conf: unrecognized duration unit %q in %q", m[2], s)
	}
	return time.Duration(value * float64(unit)), nil
}

// MustDuration panics if the string cannot be parsed; used for
// compile-time-known defaults.
func (d DurationString) MustDuration() time.Duration {
	v, err := d.Duration()
	if err != nil {
		panic(err)
	}
	return v
}
