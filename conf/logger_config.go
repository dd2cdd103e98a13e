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

// LoggerConfig configures the node's log output: where it goes, at what
// level, and how lumberjack rotates the on-disk file (log/root.go wires
// these fields straight into a lumberjack.Logger).
//
// Rotation: once LogFile exceeds MaxSize, lumberjack renames it to
// name-timestamp.ext and starts a fresh file. Files past MaxBackups count
// or MaxAge days are removed; lumberjack has no total-size cap, only
// these two independent limits.
//
// A ledger node writing years of block-append history to DataDir/log
// usually wants Compress on to keep that cheap; a dev node typically
// runs console-only with no LogFile at all.
type LoggerConfig struct {
	// LogFile is the log file name; empty means console-only output. A
	// relative path is resolved under DataDir/log.
	LogFile string `json:"name" yaml:"name"`

	// Level is the minimum level logged: trace, debug, info, warn, error, fatal.
	Level string `json:"level" yaml:"level"`

	// MaxSize is the per-file size limit in MB before rotation.
	MaxSize int `json:"max_size" yaml:"max_size"`

	// MaxBackups is how many rotated files to keep; 0 means unlimited
	// (still subject to MaxAge).
	MaxBackups int `json:"max_count" yaml:"max_count"`

	// MaxAge is how many days to keep a rotated file; 0 means unlimited
	// (still subject to MaxBackups).
	MaxAge int `json:"max_day" yaml:"max_day"`

	// Compress gzips rotated files.
	Compress bool `json:"compress" yaml:"compress"`

	// LocalTime names rotated files using local time instead of UTC.
	LocalTime bool `json:"local_time" yaml:"local_time"`

	// Console also writes to stderr even when LogFile is set.
	Console bool `json:"console" yaml:"console"`

	// JSONFormat writes the file sink as JSON lines; console output is
	// always plain text regardless of this setting.
	JSONFormat bool `json:"json_format" yaml:"json_format"`
}

// DefaultLoggerConfig returns the defaults a dev-mode node starts with:
// console-only, info level, generous rotation limits.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogFile:    "",
		Level:      "info",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
		Console:    true,
		JSONFormat: true,
	}
}

// Validate fills in zero-value rotation limits with their defaults.
func (c *LoggerConfig) Validate() error {
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups < 0 {
		c.MaxBackups = 10
	}
	if c.MaxAge < 0 {
		c.MaxAge = 30
	}
	return nil
}
