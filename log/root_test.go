// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stashdaddy/ledger/conf"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level Lvl
		name  string
	}{
		{LvlCrit, "Crit"},
		{LvlFatal, "Fatal"},
		{LvlError, "Error"},
		{LvlWarn, "Warn"},
		{LvlInfo, "Info"},
		{LvlDebug, "Debug"},
		{LvlTrace, "Trace"},
	}

	for i, tt := range tests {
		if int(tt.level) != i {
			t.Errorf("Level %s expected value %d, got %d", tt.name, i, tt.level)
		}
	}
	t.Log("✓ all log levels are correctly defined")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = &logger{}
	t.Log("✓ logger implements Logger interface")
}

func TestRootLogger(t *testing.T) {
	if Root() == nil {
		t.Fatal("root logger should not be nil")
	}
}

func TestNewLogger(t *testing.T) {
	l := New("module", "test")
	if l == nil {
		t.Fatal("New logger should not be nil")
	}
}

func TestInitConsoleOnly(t *testing.T) {
	nodeConfig := conf.NodeConfig{DataDir: t.TempDir()}
	loggerConfig := conf.LoggerConfig{
		LogFile: "",
		Level:   "info",
		MaxSize: 100,
		Console: true,
	}

	Init(nodeConfig, loggerConfig)
	Info("test console output")
	t.Log("✓ console-only logging works")
}

func TestInitWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	nodeConfig := conf.NodeConfig{DataDir: tmpDir}
	loggerConfig := conf.LoggerConfig{
		LogFile:    "test.log",
		Level:      "debug",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     1,
		Compress:   false,
		Console:    true,
		JSONFormat: true,
		LocalTime:  true,
	}

	Init(nodeConfig, loggerConfig)
	Info("test file output")

	logDir := filepath.Join(tmpDir, "log")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("log directory was not created: %s", logDir)
	}
	t.Log("✓ file logging works")
}

func TestLogOutput(t *testing.T) {
	tmpDir := t.TempDir()
	nodeConfig := conf.NodeConfig{DataDir: tmpDir}
	loggerConfig := conf.LoggerConfig{
		LogFile:    "test.log",
		Level:      "trace",
		MaxSize:    10,
		Console:    false,
		JSONFormat: true,
	}

	Init(nodeConfig, loggerConfig)

	Trace("trace message")
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	Tracef("trace %s", "formatted")
	Debugf("debug %s", "formatted")
	Infof("info %s", "formatted")
	Warnf("warn %s", "formatted")
	Errorf("error %s", "formatted")

	Info("with context", "key1", "value1", "key2", 123)
	t.Log("✓ all log levels output correctly")
}

func TestLoggerWithContext(t *testing.T) {
	l := New("module", "test", "version", "1.0")
	l.Info("test message", "extra", "data")
	t.Log("✓ logger with context works")
}

func TestLoggerChildInheritsParentContext(t *testing.T) {
	parent := New("module", "parent")
	child := parent.New("request_id", "abc")
	child.Info("nested context message")
	t.Log("✓ nested logger carries parent context")
}

func BenchmarkLogInfo(b *testing.B) {
	tmpDir := b.TempDir()
	nodeConfig := conf.NodeConfig{DataDir: tmpDir}
	loggerConfig := conf.LoggerConfig{
		LogFile:    "bench.log",
		Level:      "info",
		MaxSize:    100,
		Console:    false,
		JSONFormat: true,
	}
	Init(nodeConfig, loggerConfig)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("benchmark message", "iteration", i)
	}
}
