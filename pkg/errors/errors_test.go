// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsCarryTheirKind(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{ErrInvalidConfiguration, InvalidConfiguration},
		{ErrInvalidCollection, InvalidCollection},
		{ErrInvalidPredicate, InvalidPredicate},
		{ErrInvalidTx, InvalidTx},
		{ErrStorageIO, StorageIO},
		{ErrStorageNotFound, StorageNotFound},
		{ErrConsensusTimeout, ConsensusTimeout},
		{ErrUnexpected, Unexpected},
	}

	for _, tt := range tests {
		if tt.err.Error() != string(tt.kind) {
			t.Errorf("expected sentinel message %q, got %q", tt.kind, tt.err.Error())
		}
	}
	t.Log("✓ sentinel errors are correctly defined")
}

func TestWrap(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if Wrap(InvalidTx, nil, "context") != nil {
			t.Error("Wrap(kind, nil, ...) should return nil")
		}
	})

	t.Run("wrap error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := Wrap(InvalidTx, original, "context message")

		expected := "invalid-tx: context message: original error"
		if wrapped.Error() != expected {
			t.Errorf("expected %q, got %q", expected, wrapped.Error())
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should unwrap to original")
		}
	})

	t.Run("wrap unexpected attaches a stack trace", func(t *testing.T) {
		original := errors.New("boom")
		wrapped := Wrap(Unexpected, original, "fatal defect")
		if wrapped == nil {
			t.Fatal("expected non-nil wrapped error")
		}
		// github.com/pkg/errors.WithStack satisfies the stackTracer
		// interface; we only assert the chain still reaches `original`.
		if !errors.Is(wrapped, original) {
			t.Error("unexpected-wrapped error should still unwrap to original")
		}
	})

	t.Log("✓ Wrap function works correctly")
}

func TestWrapf(t *testing.T) {
	original := errors.New("original error")
	wrapped := Wrapf(StorageIO, original, "writing key %q", "ledger/net/db/block/1")

	expected := "storage-io: writing key \"ledger/net/db/block/1\": original error"
	if wrapped.Error() != expected {
		t.Errorf("expected %q, got %q", expected, wrapped.Error())
	}
}

func TestClassify(t *testing.T) {
	t.Run("classifies a kindError directly", func(t *testing.T) {
		err := New(InvalidPredicate, "bad type change")
		if got := Classify(err); got != InvalidPredicate {
			t.Errorf("expected %q, got %q", InvalidPredicate, got)
		}
	})

	t.Run("classifies a wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", ErrStorageNotFound)
		if got := Classify(err); got != StorageNotFound {
			t.Errorf("expected %q, got %q", StorageNotFound, got)
		}
	})

	t.Run("falls back to unexpected for unknown errors", func(t *testing.T) {
		if got := Classify(errors.New("mystery")); got != Unexpected {
			t.Errorf("expected %q, got %q", Unexpected, got)
		}
	})

	t.Run("nil error classifies to empty kind", func(t *testing.T) {
		if got := Classify(nil); got != "" {
			t.Errorf("expected empty kind for nil error, got %q", got)
		}
	})
}

func TestIs(t *testing.T) {
	if !Is(ErrInvalidTx, ErrInvalidTx) {
		t.Error("Is should return true for the same sentinel")
	}
	if Is(ErrInvalidTx, ErrStorageIO) {
		t.Error("Is should return false for different sentinels")
	}
	wrapped := fmt.Errorf("wrapped: %w", ErrInvalidTx)
	if !Is(wrapped, ErrInvalidTx) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
}

type customError struct {
	Code    int
	Message string
}

func (e *customError) Error() string { return e.Message }

func TestAs(t *testing.T) {
	original := &customError{Code: 404, Message: "not found"}
	wrapped := fmt.Errorf("wrapped: %w", original)

	var target *customError
	if !As(wrapped, &target) {
		t.Error("As should return true for a matching type")
	}
	if target.Code != 404 {
		t.Errorf("expected Code 404, got %d", target.Code)
	}
}

func TestNewAndErrorf(t *testing.T) {
	err := New(InvalidCollection, "bad name")
	if err.Error() != "invalid-collection: bad name" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	err2 := Errorf(InvalidPredicate, "predicate %s rejected", "x/y")
	if err2.Error() != "invalid-predicate: predicate x/y rejected" {
		t.Errorf("unexpected message: %s", err2.Error())
	}
}

func BenchmarkWrap(b *testing.B) {
	err := errors.New("original error")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Wrap(StorageIO, err, "context message")
	}
}

func BenchmarkClassify(b *testing.B) {
	wrapped := fmt.Errorf("layer3: %w", fmt.Errorf("layer2: %w", ErrInvalidTx))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Classify(wrapped)
	}
}
