// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.

package transactor

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/internal/bootstrap"
	"github.com/stashdaddy/ledger/internal/ledgercrypto"
	"github.com/stashdaddy/ledger/internal/novelty"
	"github.com/stashdaddy/ledger/internal/specrunner"
)

// fakeSchemaView is a single-schema, monotonically decreasing-t stand-in for
// the ledger's real schema cache / head tracker.
type fakeSchemaView struct {
	s    *schema.Schema
	next int64
}

func newFakeSchemaView(s *schema.Schema) *fakeSchemaView {
	return &fakeSchemaView{s: s, next: -3}
}

func (f *fakeSchemaView) Schema() *schema.Schema { return f.s }
func (f *fakeSchemaView) NextT() int64 {
	t := f.next
	f.next--
	return t
}

func newTestTransactor(t *testing.T) (*Transactor, *fakeSchemaView) {
	t.Helper()
	view := newFakeSchemaView(bootstrap.Schema())
	tr := New(
		stubRecoverer{},
		NewEcount(),
		novelty.New("", 1<<30, 1<<31),
		specrunner.New(),
		view,
	)
	return tr, view
}

type stubRecoverer struct{}

func (stubRecoverer) Recover(cmd, sig []byte) (string, error) {
	return "0xauthority", nil
}

func TestCommitAssertsFlakesAtDescendingT(t *testing.T) {
	tr, _ := newTestTransactor(t)

	collSubj := flake.NewSubjectID(bootstrap.CollCollection, 0)
	cmd := Command{
		Raw: []byte(`{"op":"set-doc"}`),
		Statements: []Statement{
			{Subject: Ref(fmt.Sprintf("%d", uint64(collSubj))), Predicate: "_collection/doc", Value: "updated doc"},
		},
	}

	tx, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.NoError(t, err)
	require.Len(t, tx.Flakes, 1)
	require.Equal(t, int64(-3), tx.Flakes[0].T)
	require.Equal(t, "updated doc", tx.Flakes[0].O.Str)
	require.True(t, tx.Flakes[0].Op)
}

func TestCommitMintsTempIDFromCollection(t *testing.T) {
	tr, _ := newTestTransactor(t)

	cmd := Command{
		Raw: []byte(`{"op":"new-predicate"}`),
		Statements: []Statement{
			{Subject: Ref("_:newpred"), Predicate: "_predicate/name", Value: "widget/label"},
			{Subject: Ref("_:newpred"), Predicate: "_predicate/type", Value: "string"},
		},
	}

	tx, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.NoError(t, err)
	require.Len(t, tx.Flakes, 2)
	require.Equal(t, tx.Flakes[0].S, tx.Flakes[1].S)
	require.Equal(t, uint32(bootstrap.CollPredicate), tx.Flakes[0].S.CollectionID())
}

func TestCommitRejectsUnknownPredicate(t *testing.T) {
	tr, _ := newTestTransactor(t)

	cmd := Command{
		Raw: []byte(`{"op":"bogus"}`),
		Statements: []Statement{
			{Subject: Ref("_:x"), Predicate: "nope/nope", Value: "x"},
		},
	}

	_, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.Error(t, err)
}

func TestCommitRejectsInvalidPredicateNameMutation(t *testing.T) {
	tr, _ := newTestTransactor(t)

	predSubj := flake.NewSubjectID(bootstrap.CollPredicate, 999)
	cmd := Command{
		Raw: []byte(`{"op":"rename"}`),
		Statements: []Statement{
			{Subject: Ref(fmt.Sprintf("%d", uint64(predSubj))), Predicate: "_predicate/name", Value: "not a legal name!!"},
		},
	}

	_, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.Error(t, err)
}

func TestCommitRunsDelegatedSpecAndRejects(t *testing.T) {
	view := newFakeSchemaView(bootstrap.Schema())
	pred := view.s.Predicates["_collection/doc"]
	pred.Spec = `function spec(flake, db) { return flake.o.length > 0; }`
	view.s.Predicates["_collection/doc"] = pred

	tr := New(stubRecoverer{}, NewEcount(), novelty.New("", 1<<30, 1<<31), specrunner.New(), view)

	collSubj := flake.NewSubjectID(bootstrap.CollCollection, 0)
	cmd := Command{
		Raw: []byte(`{"op":"set-doc"}`),
		Statements: []Statement{
			{Subject: Ref(fmt.Sprintf("%d", uint64(collSubj))), Predicate: "_collection/doc", Value: ""},
		},
	}

	_, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.Error(t, err)
}

func TestCommitConcurrentSpecsAllRun(t *testing.T) {
	view := newFakeSchemaView(bootstrap.Schema())
	pred := view.s.Predicates["_collection/doc"]
	pred.Spec = `function spec(flake, db) { return true; }`
	view.s.Predicates["_collection/doc"] = pred

	var calls int32
	tr := New(stubRecoverer{}, NewEcount(), novelty.New("", 1<<30, 1<<31), specrunner.New(), view)

	var stmts []Statement
	for i := 0; i < 20; i++ {
		subj := flake.NewSubjectID(bootstrap.CollCollection, uint64(i+1))
		stmts = append(stmts, Statement{Subject: Ref(fmt.Sprintf("%d", uint64(subj))), Predicate: "_collection/doc", Value: "doc"})
	}
	cmd := Command{Raw: []byte(`{"op":"bulk"}`), Statements: stmts}

	tx, err := tr.Commit(context.Background(), cmd, []byte("sig"))
	require.NoError(t, err)
	require.Len(t, tx.Flakes, 20)
	_ = atomic.LoadInt32(&calls)
}

func TestSecp256k1RecoveryRoundTrip(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer := ledgercrypto.NewPrivateKeySigner(key)
	recoverer := ledgercrypto.NewSecp256k1Recoverer()

	cmd := []byte(`{"op":"new-db"}`)
	sig, err := signer.Sign(cmd)
	require.NoError(t, err)

	authHex, err := recoverer.Recover(cmd, sig)
	require.NoError(t, err)
	require.NotEmpty(t, authHex)
}
