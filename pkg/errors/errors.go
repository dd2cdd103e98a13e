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

// Package errors defines the ledger's error kind catalog and the
// wrap/classify helpers used throughout the codebase to ensure consistency
// across modules.
package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind names one of the error classes the user-visible surface distinguishes
// (§7 "Error Handling Design").
type Kind string

const (
	InvalidConfiguration Kind = "invalid-configuration"
	InvalidCollection    Kind = "invalid-collection"
	InvalidPredicate     Kind = "invalid-predicate"
	InvalidTx            Kind = "invalid-tx"
	StorageIO            Kind = "storage-io"
	StorageNotFound      Kind = "storage-not-found"
	ConsensusTimeout     Kind = "consensus-timeout"
	Unexpected           Kind = "unexpected-error"
)

// =====================
// Sentinel errors, one per kind
// =====================

var (
	// ErrInvalidConfiguration is returned for malformed or missing
	// configuration values at startup; fatal, terminates the process.
	ErrInvalidConfiguration = errors.New(string(InvalidConfiguration))

	// ErrInvalidCollection is returned when a collection name or shape
	// violates the meta-schema.
	ErrInvalidCollection = errors.New(string(InvalidCollection))

	// ErrInvalidPredicate is returned when a predicate mutation violates
	// the type lattice or a structural rule (§4.3).
	ErrInvalidPredicate = errors.New(string(InvalidPredicate))

	// ErrInvalidTx is returned when a transaction is rejected by the
	// Schema Validator or a delegated spec.
	ErrInvalidTx = errors.New(string(InvalidTx))

	// ErrStorageIO is returned when a storage backend operation fails
	// after exhausting its retry budget.
	ErrStorageIO = errors.New(string(StorageIO))

	// ErrStorageNotFound is returned when a storage backend read targets a
	// key that does not exist.
	ErrStorageNotFound = errors.New(string(StorageNotFound))

	// ErrConsensusTimeout is returned when a consensus operation exceeds
	// its group timeout.
	ErrConsensusTimeout = errors.New(string(ConsensusTimeout))

	// ErrUnexpected marks a fatal-for-the-current-operation defect; the
	// node remains available but the operation is logged with a stack
	// trace via WithStack.
	ErrUnexpected = errors.New(string(Unexpected))
)

var sentinels = map[Kind]error{
	InvalidConfiguration: ErrInvalidConfiguration,
	InvalidCollection:    ErrInvalidCollection,
	InvalidPredicate:     ErrInvalidPredicate,
	InvalidTx:            ErrInvalidTx,
	StorageIO:            ErrStorageIO,
	StorageNotFound:      ErrStorageNotFound,
	ConsensusTimeout:     ErrConsensusTimeout,
	Unexpected:           ErrUnexpected,
}

// kindError pairs a Kind's sentinel with a caller message so that both
// Is(err, errors.ErrInvalidTx) and a readable message work on the same
// value.
type kindError struct {
	kind    Kind
	message string
	cause   error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *kindError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return sentinels[e.kind]
}

// New constructs a new error of the given kind carrying message.
func New(kind Kind, message string) error {
	return &kindError{kind: kind, message: message}
}

// Errorf constructs a new error of the given kind with a formatted message.
func Errorf(kind Kind, format string, a ...any) error {
	return &kindError{kind: kind, message: fmt.Sprintf(format, a...)}
}

// Wrap attaches kind and message to err, preserving err in the chain so
// Is/As still see it. The unexpected-error kind additionally attaches a
// stack trace via github.com/pkg/errors.WithStack, per §2's ambient-stack
// note, so the fatal-but-logged path carries a trace.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	if kind == Unexpected {
		err = pkgerrors.WithStack(err)
	}
	return &kindError{kind: kind, message: message, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, a ...any) error {
	return Wrap(kind, err, fmt.Sprintf(format, a...))
}

// Classify returns the Kind of err, walking its Unwrap chain, or
// Unexpected if none of the known sentinels match.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var ke *kindError
	if As(err, &ke) {
		return ke.kind
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return Unexpected
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
