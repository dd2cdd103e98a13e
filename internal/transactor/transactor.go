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

// Package transactor implements the eight-step transaction pipeline: parse
// and authenticate a signed command, assign it a logical time, materialize
// its statements into flakes, validate schema-mutating flakes, absorb the
// result into novelty, run delegated specs, and hand the sealed transaction
// to the block builder.
package transactor

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/common/txblock"
	lerrors "github.com/stashdaddy/ledger/pkg/errors"

	"github.com/stashdaddy/ledger/internal/bootstrap"
	"github.com/stashdaddy/ledger/internal/ledgercrypto"
	"github.com/stashdaddy/ledger/internal/novelty"
	"github.com/stashdaddy/ledger/internal/specrunner"
	"github.com/stashdaddy/ledger/internal/validator"
)

// SchemaView supplies the point-in-time schema cache a transaction runs
// against, and the t the next transaction should be assigned relative to
// the ledger's current head.
type SchemaView interface {
	// Schema returns the current published schema (db-before).
	Schema() *schema.Schema
	// NextT returns the logical time to assign to the next transaction:
	// one less than the ledger's current t (§4.4 step 2).
	NextT() int64
}

// Transactor runs the eight-step pipeline of §4.4 over one parsed Command at
// a time. A single Transactor instance is single-writer: callers serialize
// Commit calls the same way the teacher's block-construction lock serializes
// writers.
type Transactor struct {
	recoverer ledgercrypto.Recoverer
	ecount    *Ecount
	novelty   *novelty.Novelty
	specs     *specrunner.Runner
	schema    SchemaView
}

// New constructs a Transactor wired to its collaborators. schema supplies
// the db-before view and next-t allocation; novel is the ledger's novelty
// layer; specs runs delegated _predicate/spec, _predicate/txSpec and
// _collection/spec closures.
func New(recoverer ledgercrypto.Recoverer, ecount *Ecount, novel *novelty.Novelty, specs *specrunner.Runner, schema SchemaView) *Transactor {
	return &Transactor{
		recoverer: recoverer,
		ecount:    ecount,
		novelty:   novel,
		specs:     specs,
		schema:    schema,
	}
}

// Commit runs cmd through the full pipeline and returns the sealed
// Transaction ready for the block builder, or the first legality error
// encountered. The returned error is always classifiable via
// github.com/stashdaddy/ledger/pkg/errors.Classify.
func (tr *Transactor) Commit(ctx context.Context, cmd Command, sig []byte) (txblock.Transaction, error) {
	// Step 1: authenticate.
	authHex, err := tr.recoverer.Recover(cmd.Raw, sig)
	if err != nil {
		return txblock.Transaction{}, lerrors.Wrap(lerrors.InvalidTx, err, "transactor: signature recovery failed")
	}
	txID := txblock.CommandHash(cmd.Raw)

	// Step 2: assign t.
	before := tr.schema.Schema()
	t := tr.schema.NextT()

	// Step 3: materialize flakes.
	flakes, err := tr.materialize(cmd, before, t)
	if err != nil {
		return txblock.Transaction{}, lerrors.Wrap(lerrors.InvalidTx, err, "transactor: failed to materialize statements")
	}

	// Step 4: gather schema c-spec — project the db-before schema forward
	// by the transaction's own schema-mutating flakes, so the validator's
	// post-index reconciliation sees the db-after view without waiting for
	// the block to actually commit.
	after := ProjectSchema(before, flakes)

	// Step 5: validate.
	result := validator.Validate(flakes, before, after)
	if !result.OK() {
		return txblock.Transaction{}, lerrors.Wrap(lerrors.InvalidTx, result.Errors[0], "transactor: schema validation rejected transaction")
	}

	// Step 6: absorb into novelty.
	predicateOf := func(id flake.PredicateID) (schema.Predicate, bool) { return after.PredicateByID(id) }
	tr.novelty.Absorb(flakes, predicateOf)

	// Step 7: run delegated specs, fanned out across the flakes that touch
	// a predicate declaring a _predicate/spec or _predicate/txSpec closure.
	if err := tr.runSpecs(ctx, flakes, after); err != nil {
		return txblock.Transaction{}, lerrors.Wrap(lerrors.InvalidTx, err, "transactor: delegated spec rejected transaction")
	}

	// Step 8: finalize.
	tx := txblock.Transaction{
		TxID:      txID,
		Author:    0,
		Command:   cmd.Raw,
		Signature: sig,
		Flakes:    flakes,
		T:         t,
	}
	_ = authHex // the concrete author SubjectID lookup belongs to the (external) identity/auth collaborator
	return tx, nil
}

// materialize resolves every Statement in cmd against before, minting
// tempids via ecount and coercing literals to each predicate's declared
// type, producing one assertion or retraction flake per statement, all
// sharing t (§4.4 step 3).
func (tr *Transactor) materialize(cmd Command, before *schema.Schema, t int64) ([]flake.Flake, error) {
	m := newMaterializer(before, tr.ecount)
	out := make([]flake.Flake, 0, len(cmd.Statements))

	for _, st := range cmd.Statements {
		pred, ok := before.Predicates[st.Predicate]
		if !ok {
			return nil, lerrors.Errorf(lerrors.InvalidTx, "transactor: statement names undeclared predicate %q", st.Predicate)
		}

		collection := collectionOf(st.Predicate)
		subject, err := m.resolveSubject(st.Subject, collection)
		if err != nil {
			return nil, err
		}

		resolveRef := func(ref Ref) (flake.SubjectID, error) {
			return m.resolveSubject(ref, refCollectionHint(pred))
		}
		obj, err := coerceLiteral(pred, st.Value, resolveRef)
		if err != nil {
			return nil, err
		}

		if st.Retract {
			out = append(out, flake.NewRetract(subject, pred.ID, obj, t))
		} else {
			out = append(out, flake.NewAssert(subject, pred.ID, obj, t))
		}
	}

	return out, nil
}

// collectionOf returns the namespace half of a dotted predicate name, the
// collection a fresh tempid subject for that predicate should mint from.
func collectionOf(predicateName string) string {
	for i := 0; i < len(predicateName); i++ {
		if predicateName[i] == '/' {
			return predicateName[:i]
		}
	}
	return predicateName
}

// refCollectionHint returns RestrictCollection when the predicate declares
// one, so a tempid used as this predicate's object mints from the right
// collection; ref-typed predicates without a restriction fall back to the
// tempid's own declared collection (callers must supply it out of band via
// "_:collection:name" tempids in that case, which collectionOf still parses
// correctly since it only looks at the namespace half).
func refCollectionHint(pred schema.Predicate) string {
	return pred.RestrictCollection
}

// ProjectSchema returns before with flakes' schema-mutating subset applied.
// The Transactor uses it per-transaction for the cheap in-memory "schema
// c-spec" view the validator's post-index reconciliation checks against
// (§4.4 step 4); the Ledger handle uses the same function to publish the
// schema actually committed once a block of transactions seals, so both
// views of "what changed" agree by construction.
func ProjectSchema(before *schema.Schema, flakes []flake.Flake) *schema.Schema {
	after := before.Clone()
	for _, f := range flakes {
		p, ok := after.PredicateByID(f.S)
		if !ok {
			continue
		}
		switch f.P {
		case bootstrap.PredPredicateIndex:
			if f.Op {
				p.Index = f.O.Bool
			}
		case bootstrap.PredPredicateUnique:
			if f.Op {
				p.Unique = f.O.Bool
			}
		default:
			continue
		}
		after.Predicates[p.Name] = p
	}
	return after
}

// runSpecs evaluates every candidate flake whose predicate declares a
// _predicate/spec or _predicate/txSpec closure, fanned out concurrently. The
// first failing verdict cancels the remaining evaluations and is returned.
func (tr *Transactor) runSpecs(ctx context.Context, flakes []flake.Flake, after *schema.Schema) error {
	view := &dbAfterView{novelty: tr.novelty}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range flakes {
		f := f
		pred, ok := after.PredicateByID(f.P)
		if !ok || (pred.Spec == "" && pred.TxSpec == "") {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for _, src := range []string{pred.Spec, pred.TxSpec} {
				if src == "" {
					continue
				}
				verdict, err := tr.specs.Eval(src, f, view)
				if err != nil {
					return lerrors.Wrap(lerrors.InvalidTx, err, "transactor: spec evaluation error")
				}
				if !verdict.OK {
					return lerrors.Errorf(lerrors.InvalidTx, "transactor: spec rejected flake on %s: %s", f.S, verdict.Message)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// dbAfterView adapts novelty's SPOT-ordered projection to the narrow
// specrunner.DBAfter.Get contract: the most recent non-retracted object(s)
// of (subject, predicate), consulted by delegated spec closures.
type dbAfterView struct {
	novelty *novelty.Novelty
}

func (v *dbAfterView) Get(subject, predicate flake.SubjectID) []flake.Object {
	from := flake.Flake{S: subject, P: predicate, T: 1<<63 - 1}
	to := flake.Flake{S: subject, P: predicate + 1, T: 1<<63 - 1}
	candidates := v.novelty.Range(flake.SPOT, from, to)
	if len(candidates) == 0 {
		return nil
	}

	// candidates is SPOT-ordered: grouped by object, and within each object
	// group t-descending (tDesc sorts larger/less-negative t first). So the
	// first flake seen for a given object is its newest revision; keep only
	// that one per distinct object, dropping any whose newest flake is a
	// retraction.
	sort.SliceStable(candidates, func(i, j int) bool { return flake.Less(flake.SPOT, candidates[i], candidates[j]) })

	latest := make(map[string]flake.Flake)
	order := make([]string, 0, len(candidates))
	for _, f := range candidates {
		key := f.O.String()
		if _, seen := latest[key]; seen {
			continue
		}
		latest[key] = f
		order = append(order, key)
	}

	out := make([]flake.Object, 0, len(order))
	for _, key := range order {
		if f := latest[key]; f.Op {
			out = append(out, f.O)
		}
	}
	return out
}
