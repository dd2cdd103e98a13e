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

package bootstrap

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/stashdaddy/ledger/common/flake"
	"github.com/stashdaddy/ledger/common/schema"
	"github.com/stashdaddy/ledger/common/txblock"
	"github.com/stashdaddy/ledger/internal/ledgercrypto"
)

// Command is the signed new-database command that triggers genesis, e.g.
// {"type":"new-db","db":"net/db","auth":"0x...","nonce":1000,"expire":...}.
type Command struct {
	Raw []byte // the exact bytes that were signed
}

// collectionDef and predicateDef are entries of the fixed bootstrap program.
// Every entry names a stable numeric id so that ids are portable across
// ledger instances and releases, per §4.1 step 1.
type collectionDef struct {
	id      uint32
	name    string
	doc     string
	version int
}

type predicateDef struct {
	sub      uint64
	name     string
	typ      schema.PredicateType
	multi    bool
	unique   bool
	index    bool
	component bool
	restrict string
}

// program is the fixed, ordered bootstrap catalog. Entries are never
// reordered or renumbered across releases — doing so would break the
// "ids are invariant across instances and releases" guarantee.
var collectionProgram = []collectionDef{
	{CollCollection, "_collection", "Collections define named buckets of subjects.", 1},
	{CollPredicate, "_predicate", "Predicates define named, typed edges.", 1},
	{CollTag, "_tag", "Enumerated values referenced by tag-typed predicates.", 1},
	{CollFn, "_fn", "Named boolean functions used by rules.", 1},
	{CollRule, "_rule", "Named bundles of functions scoped to a collection.", 1},
	{CollRole, "_role", "Named bundles of rules.", 1},
	{CollAuth, "_auth", "Authority records, one per recognized signer.", 1},
	{CollSetting, "_setting", "Ledger-wide settings.", 1},
	{CollTx, "_tx", "Transaction metadata.", 1},
	{CollBlock, "_block", "Block header metadata.", 1},
}

var predicateProgram = []predicateDef{
	{pCollectionName, "_collection/name", schema.TypeString, false, true, true, false, ""},
	{pCollectionDoc, "_collection/doc", schema.TypeString, false, false, false, false, ""},
	{pCollectionVersion, "_collection/version", schema.TypeInt, false, false, false, false, ""},
	{pCollectionSpec, "_collection/spec", schema.TypeString, false, false, false, false, ""},
	{pCollectionShard, "_collection/shard", schema.TypeString, false, false, false, false, ""},

	{pPredicateName, "_predicate/name", schema.TypeString, false, true, true, false, ""},
	{pPredicateType, "_predicate/type", schema.TypeString, false, false, false, false, ""},
	{pPredicateMulti, "_predicate/multi", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateUnique, "_predicate/unique", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateIndex, "_predicate/index", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateUpsert, "_predicate/upsert", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateComponent, "_predicate/component", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateNoHistory, "_predicate/noHistory", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateRestrictCollection, "_predicate/restrictCollection", schema.TypeString, false, false, false, false, ""},
	{pPredicateRestrictTag, "_predicate/restrictTag", schema.TypeString, false, false, false, false, ""},
	{pPredicateFullText, "_predicate/fullText", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateSpec, "_predicate/spec", schema.TypeString, false, false, false, false, ""},
	{pPredicateTxSpec, "_predicate/txSpec", schema.TypeString, false, false, false, false, ""},
	{pPredicateEncrypted, "_predicate/encrypted", schema.TypeBoolean, false, false, false, false, ""},
	{pPredicateDeprecated, "_predicate/deprecated", schema.TypeBoolean, false, false, false, false, ""},

	{pFnName, "_fn/name", schema.TypeString, false, true, true, false, ""},
	{pFnCode, "_fn/code", schema.TypeString, false, false, false, false, ""},

	{pRuleFns, "_rule/fns", schema.TypeRef, true, false, false, false, "_fn"},
	{pRuleCollection, "_rule/collection", schema.TypeRef, false, false, false, false, "_collection"},

	{pRoleRules, "_role/rules", schema.TypeRef, true, false, false, false, "_rule"},
	{pRoleID, "_role/id", schema.TypeString, false, true, true, false, ""},

	{pAuthID, "_auth/id", schema.TypeString, false, true, true, false, ""},
	{pAuthRole, "_auth/role", schema.TypeRef, false, false, false, false, "_role"},

	{pSettingLedgerID, "_setting/ledgerId", schema.TypeString, false, false, false, false, ""},
	{pSettingAuth, "_setting/auth", schema.TypeRef, false, false, false, false, "_auth"},

	{pTxID, "_tx/id", schema.TypeString, false, false, false, false, ""},
	{pTxNonce, "_tx/nonce", schema.TypeLong, false, false, false, false, ""},
	{pTxError, "_tx/error", schema.TypeString, false, false, false, false, ""},

	{pBlockNumber, "_block/number", schema.TypeLong, false, false, false, false, ""},
	{pBlockInstant, "_block/instant", schema.TypeLong, false, false, false, false, ""},
	{pBlockTransactions, "_block/transactions", schema.TypeRef, true, false, false, false, "_tx"},
	{pBlockPrevHash, "_block/prevHash", schema.TypeString, false, false, false, false, ""},
	{pBlockHash, "_block/hash", schema.TypeString, false, false, false, false, ""},
	{pBlockLedgers, "_block/ledgers", schema.TypeString, true, false, false, false, ""},
}

// Well-known subject ids used by the master-authority flakes (§4.1 step 4).
var (
	fnTrueID  = flake.NewSubjectID(CollFn, 1)
	fnFalseID = flake.NewSubjectID(CollFn, 2)
	rootRuleID = flake.NewSubjectID(CollRule, 1)
	rootRoleID = flake.NewSubjectID(CollRole, 1)
	rootAuthID = flake.NewSubjectID(CollAuth, 1)
	rootSettingID = flake.NewSubjectID(CollSetting, 1)
	txSubjectID   = flake.NewSubjectID(CollTx, 1)
	blockSubjectID = flake.NewSubjectID(CollBlock, 1)
)

// Tables returns the three lookup tables described in §4.1 step 2: pure
// functions of the static bootstrap program.
func Tables() (collectionIDs map[string]flake.SubjectID, predicateIDs map[string]flake.PredicateID) {
	collectionIDs = make(map[string]flake.SubjectID, len(collectionProgram))
	for _, c := range collectionProgram {
		collectionIDs[c.name] = flake.NewSubjectID(c.id, 0)
	}
	predicateIDs = make(map[string]flake.PredicateID, len(predicateProgram))
	for _, p := range predicateProgram {
		predicateIDs[p.name] = predicateID(p.sub)
	}
	return collectionIDs, predicateIDs
}

// Schema returns the *schema.Schema describing the bootstrap program itself,
// used to seed a fresh ledger's schema cache.
func Schema() *schema.Schema {
	s := schema.New()
	for _, c := range collectionProgram {
		s.Collections[c.name] = schema.Collection{
			ID:      flake.NewSubjectID(c.id, 0),
			Name:    c.name,
			Doc:     c.doc,
			Version: c.version,
		}
	}
	for _, p := range predicateProgram {
		s.Predicates[p.name] = schema.Predicate{
			ID:                 predicateID(p.sub),
			Name:               p.name,
			Type:               p.typ,
			Multi:              p.multi,
			Unique:             p.unique,
			Index:              p.index,
			Component:          p.component,
			RestrictCollection: p.restrict,
		}
	}
	return s
}

// Bootstrap produces the deterministic genesis block. cmd is the raw signed
// command bytes, sig the recoverable signature over them, tsMillis the wall
// clock instant (caller-supplied so the result is reproducible in tests).
func Bootstrap(recoverer ledgercrypto.Recoverer, cmd Command, sig []byte, tsMillis int64) (txblock.Block, error) {
	authID, err := recoverer.Recover(cmd.Raw, sig)
	if err != nil {
		return txblock.Block{}, errors.Wrap(err, "bootstrap: master authority recovery failed")
	}
	if authID == "" {
		return txblock.Block{}, errors.New("bootstrap: empty authority id, fatal bootstrap defect")
	}
	if _, ok := predicateIDByName("_auth/id"); !ok {
		return txblock.Block{}, errors.New("bootstrap: _auth/id predicate id missing, fatal bootstrap defect")
	}

	const schemaT int64 = -1
	const metaT int64 = -1
	const blockT int64 = -2

	var flakes []flake.Flake

	flakes = append(flakes, schemaFlakes(schemaT)...)
	flakes = append(flakes, masterAuthorityFlakes(authID, schemaT)...)

	txID := txblock.CommandHash(cmd.Raw)
	flakes = append(flakes,
		flake.NewAssert(txSubjectID, PredTxID, flake.Object{Kind: flake.KindString, Str: txID}, metaT),
		flake.NewAssert(txSubjectID, PredTxNonce, flake.Object{Kind: flake.KindLong, I64: tsMillis}, metaT),
	)

	flakes = append(flakes,
		flake.NewAssert(blockSubjectID, PredBlockNumber, flake.Object{Kind: flake.KindLong, I64: 1}, blockT),
		flake.NewAssert(blockSubjectID, PredBlockInstant, flake.Object{Kind: flake.KindLong, I64: tsMillis}, blockT),
		flake.NewAssert(blockSubjectID, PredBlockTransactions, flake.Object{Kind: flake.KindRef, Ref: txSubjectID}, blockT),
	)

	sort.Slice(flakes, func(i, j int) bool { return flake.Less(flake.SPOT, flakes[i], flakes[j]) })

	hash, err := txblock.ContentHash(flakes)
	if err != nil {
		return txblock.Block{}, errors.Wrap(err, "bootstrap: block-content hash computation failed")
	}

	hashFlake := flake.NewAssert(blockSubjectID, PredBlockHash, flake.Object{Kind: flake.KindString, Str: hash}, blockT)
	ledgersFlake := flake.NewAssert(blockSubjectID, PredBlockLedgers, flake.Object{Kind: flake.KindString, Str: authID}, blockT)
	flakes = append(flakes, hashFlake, ledgersFlake)

	return txblock.Block{
		BlockNumber:      1,
		Instant:          tsMillis,
		Hash:             hash,
		Flakes:           flakes,
		LedgerSignatures: []string{authID},
		Transactions: []txblock.Transaction{
			{TxID: txID, Command: cmd.Raw, Signature: sig, T: metaT},
		},
	}, nil
}

func predicateIDByName(name string) (flake.PredicateID, bool) {
	for id, n := range predicateNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// schemaFlakes emits one flake per (collection|predicate) program field,
// per §4.1 step 3.
func schemaFlakes(t int64) []flake.Flake {
	var out []flake.Flake
	for _, c := range collectionProgram {
		subj := flake.NewSubjectID(c.id, 0)
		out = append(out,
			flake.NewAssert(subj, PredCollectionName, flake.Object{Kind: flake.KindString, Str: c.name}, t),
			flake.NewAssert(subj, PredCollectionDoc, flake.Object{Kind: flake.KindString, Str: c.doc}, t),
			flake.NewAssert(subj, PredCollectionVersion, flake.Object{Kind: flake.KindInt, I64: int64(c.version)}, t),
		)
	}
	for _, p := range predicateProgram {
		subj := predicateID(p.sub)
		out = append(out,
			flake.NewAssert(subj, PredPredicateName, flake.Object{Kind: flake.KindString, Str: p.name}, t),
			flake.NewAssert(subj, PredPredicateType, flake.Object{Kind: flake.KindString, Str: string(p.typ)}, t),
			flake.NewAssert(subj, PredPredicateMulti, flake.Object{Kind: flake.KindBoolean, Bool: p.multi}, t),
			flake.NewAssert(subj, PredPredicateUnique, flake.Object{Kind: flake.KindBoolean, Bool: p.unique}, t),
			flake.NewAssert(subj, PredPredicateIndex, flake.Object{Kind: flake.KindBoolean, Bool: p.index}, t),
			flake.NewAssert(subj, PredPredicateComponent, flake.Object{Kind: flake.KindBoolean, Bool: p.component}, t),
		)
		if p.restrict != "" {
			out = append(out, flake.NewAssert(subj, PredPredicateRestrictCollection, flake.Object{Kind: flake.KindString, Str: p.restrict}, t))
		}
	}
	return out
}

// masterAuthorityFlakes emits the _fn/_rule/_role/_auth/_setting flakes of
// §4.1 step 4.
func masterAuthorityFlakes(authID string, t int64) []flake.Flake {
	return []flake.Flake{
		flake.NewAssert(fnTrueID, PredFnName, flake.Object{Kind: flake.KindString, Str: "true"}, t),
		flake.NewAssert(fnTrueID, PredFnCode, flake.Object{Kind: flake.KindString, Str: "true"}, t),
		flake.NewAssert(fnFalseID, PredFnName, flake.Object{Kind: flake.KindString, Str: "false"}, t),
		flake.NewAssert(fnFalseID, PredFnCode, flake.Object{Kind: flake.KindString, Str: "false"}, t),

		flake.NewAssert(rootRuleID, PredRuleFns, flake.Object{Kind: flake.KindRef, Ref: fnTrueID}, t),
		flake.NewAssert(rootRuleID, PredRuleCollection, flake.Object{Kind: flake.KindRef, Ref: flake.NewSubjectID(CollCollection, 0)}, t),

		flake.NewAssert(rootRoleID, PredRoleID, flake.Object{Kind: flake.KindString, Str: "root"}, t),
		flake.NewAssert(rootRoleID, PredRoleRules, flake.Object{Kind: flake.KindRef, Ref: rootRuleID}, t),

		flake.NewAssert(rootAuthID, PredAuthID, flake.Object{Kind: flake.KindString, Str: authID}, t),
		flake.NewAssert(rootAuthID, PredAuthRole, flake.Object{Kind: flake.KindRef, Ref: rootRoleID}, t),

		flake.NewAssert(rootSettingID, PredSettingLedgerID, flake.Object{Kind: flake.KindString, Str: authID}, t),
		flake.NewAssert(rootSettingID, PredSettingAuth, flake.Object{Kind: flake.KindRef, Ref: rootAuthID}, t),
	}
}
