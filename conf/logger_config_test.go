// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package conf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerConfigDefaults(t *testing.T) {
	cfg := DefaultLoggerConfig()

	require.Empty(t, cfg.LogFile)
	require.Equal(t, "info", cfg.Level)
	require.Equal(t, 100, cfg.MaxSize)
	require.Equal(t, 10, cfg.MaxBackups)
	require.Equal(t, 30, cfg.MaxAge)
	require.True(t, cfg.Compress)
	require.True(t, cfg.LocalTime)
	require.True(t, cfg.Console)
	require.True(t, cfg.JSONFormat)
}

func TestLoggerConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		config   LoggerConfig
		expected LoggerConfig
	}{
		{
			name:     "negative MaxSize corrected",
			config:   LoggerConfig{MaxSize: -1, MaxBackups: 10, MaxAge: 30},
			expected: LoggerConfig{MaxSize: 100, MaxBackups: 10, MaxAge: 30},
		},
		{
			name:     "zero MaxSize corrected",
			config:   LoggerConfig{MaxSize: 0, MaxBackups: 10, MaxAge: 30},
			expected: LoggerConfig{MaxSize: 100, MaxBackups: 10, MaxAge: 30},
		},
		{
			name:     "negative MaxBackups corrected",
			config:   LoggerConfig{MaxSize: 100, MaxBackups: -1, MaxAge: 30},
			expected: LoggerConfig{MaxSize: 100, MaxBackups: 10, MaxAge: 30},
		},
		{
			name:     "negative MaxAge corrected",
			config:   LoggerConfig{MaxSize: 100, MaxBackups: 10, MaxAge: -1},
			expected: LoggerConfig{MaxSize: 100, MaxBackups: 10, MaxAge: 30},
		},
		{
			name:     "valid config unchanged",
			config:   LoggerConfig{MaxSize: 50, MaxBackups: 5, MaxAge: 7},
			expected: LoggerConfig{MaxSize: 50, MaxBackups: 5, MaxAge: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.config.Validate())
			require.Equal(t, tt.expected.MaxSize, tt.config.MaxSize)
			require.Equal(t, tt.expected.MaxBackups, tt.config.MaxBackups)
			require.Equal(t, tt.expected.MaxAge, tt.config.MaxAge)
		})
	}
}

func TestLoggerConfigJSONRoundTrip(t *testing.T) {
	cfg := LoggerConfig{
		LogFile:    "ledgerd.log",
		Level:      "debug",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
		Console:    true,
		JSONFormat: true,
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got LoggerConfig
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, cfg, got)
}

func TestLoggerConfigJSONTags(t *testing.T) {
	cfg := LoggerConfig{LogFile: "ledgerd.log", MaxBackups: 5, MaxAge: 7}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	jsonStr := string(data)

	for _, tag := range []string{
		`"name":`,
		`"level":`,
		`"max_size":`,
		`"max_count":`,
		`"max_day":`,
		`"compress":`,
		`"local_time":`,
		`"console":`,
		`"json_format":`,
	} {
		require.Contains(t, jsonStr, tag)
	}
	require.NotContains(t, jsonStr, "total_size_cap")
}
