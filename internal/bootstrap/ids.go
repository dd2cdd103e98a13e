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

// Package bootstrap produces the genesis block that defines a ledger's own
// meta-schema: the fixed collection/predicate/tag program, the lookup
// tables derived from it, and the deterministic block construction.
//
// # Collection ids
//
//	_collection  : 0
//	_predicate   : 1
//	_tag         : 2
//	_fn          : 3
//	_rule        : 4
//	_role        : 5
//	_auth        : 6
//	_setting     : 7
//	_tx          : 8
//	_block       : 9
//
// # Well-known predicate ids (within collection _predicate)
//
//	_collection/name    : 1
//	_collection/doc     : 2
//	_collection/version : 3
//	_collection/spec    : 4
//	_collection/shard   : 5
//	_predicate/name     : 10
//	_predicate/type     : 11
//	_predicate/multi    : 12
//	_predicate/unique   : 13
//	_predicate/index    : 14
//	_predicate/upsert   : 15
//	_predicate/component: 16
//	_predicate/noHistory: 17
//	_predicate/restrictCollection : 18
//	_predicate/restrictTag        : 19
//	_predicate/fullText : 20
//	_predicate/spec     : 21
//	_predicate/txSpec   : 22
//	_predicate/encrypted: 23
//	_predicate/deprecated: 24
//	_fn/name            : 30
//	_fn/code            : 31
//	_rule/fns           : 40
//	_rule/collection    : 41
//	_role/rules         : 50
//	_role/id            : 51
//	_auth/id            : 60
//	_auth/role          : 61
//	_setting/ledgerId    : 70
//	_setting/auth        : 71
//	_tx/id              : 80
//	_tx/nonce           : 81
//	_tx/error           : 82
//	_block/number       : 90
//	_block/instant      : 91
//	_block/transactions : 92
//	_block/prevHash     : 93
//	_block/hash         : 94
//	_block/ledgers      : 95
package bootstrap

import "github.com/stashdaddy/ledger/common/flake"

// Collection ids, stable across releases per §4.1's guarantee.
const (
	CollCollection uint32 = 0
	CollPredicate  uint32 = 1
	CollTag        uint32 = 2
	CollFn         uint32 = 3
	CollRule       uint32 = 4
	CollRole       uint32 = 5
	CollAuth       uint32 = 6
	CollSetting    uint32 = 7
	CollTx         uint32 = 8
	CollBlock      uint32 = 9
)

// Well-known predicate sub-ids, within collection _predicate.
const (
	pCollectionName    uint64 = 1
	pCollectionDoc     uint64 = 2
	pCollectionVersion uint64 = 3
	pCollectionSpec    uint64 = 4
	pCollectionShard   uint64 = 5

	pPredicateName               uint64 = 10
	pPredicateType                uint64 = 11
	pPredicateMulti               uint64 = 12
	pPredicateUnique              uint64 = 13
	pPredicateIndex               uint64 = 14
	pPredicateUpsert              uint64 = 15
	pPredicateComponent           uint64 = 16
	pPredicateNoHistory           uint64 = 17
	pPredicateRestrictCollection  uint64 = 18
	pPredicateRestrictTag         uint64 = 19
	pPredicateFullText            uint64 = 20
	pPredicateSpec                uint64 = 21
	pPredicateTxSpec               uint64 = 22
	pPredicateEncrypted            uint64 = 23
	pPredicateDeprecated           uint64 = 24

	pFnName uint64 = 30
	pFnCode uint64 = 31

	pRuleFns        uint64 = 40
	pRuleCollection uint64 = 41

	pRoleRules uint64 = 50
	pRoleID    uint64 = 51

	pAuthID   uint64 = 60
	pAuthRole uint64 = 61

	pSettingLedgerID uint64 = 70
	pSettingAuth     uint64 = 71

	pTxID    uint64 = 80
	pTxNonce uint64 = 81
	pTxError uint64 = 82

	pBlockNumber       uint64 = 90
	pBlockInstant      uint64 = 91
	pBlockTransactions uint64 = 92
	pBlockPrevHash     uint64 = 93
	pBlockHash         uint64 = 94
	pBlockLedgers      uint64 = 95
)

// predicateID builds the composite subject-id of a well-known predicate.
func predicateID(sub uint64) flake.PredicateID {
	return flake.NewSubjectID(CollPredicate, sub)
}

// Well-known predicate ids, exported for the validator, transactor and
// block builder to reference by name rather than by raw composite id.
var (
	PredCollectionName    = predicateID(pCollectionName)
	PredCollectionDoc     = predicateID(pCollectionDoc)
	PredCollectionVersion = predicateID(pCollectionVersion)
	PredCollectionSpec    = predicateID(pCollectionSpec)
	PredCollectionShard   = predicateID(pCollectionShard)

	PredPredicateName              = predicateID(pPredicateName)
	PredPredicateType              = predicateID(pPredicateType)
	PredPredicateMulti             = predicateID(pPredicateMulti)
	PredPredicateUnique            = predicateID(pPredicateUnique)
	PredPredicateIndex             = predicateID(pPredicateIndex)
	PredPredicateUpsert            = predicateID(pPredicateUpsert)
	PredPredicateComponent         = predicateID(pPredicateComponent)
	PredPredicateNoHistory         = predicateID(pPredicateNoHistory)
	PredPredicateRestrictCollection = predicateID(pPredicateRestrictCollection)
	PredPredicateRestrictTag        = predicateID(pPredicateRestrictTag)
	PredPredicateFullText           = predicateID(pPredicateFullText)
	PredPredicateSpec               = predicateID(pPredicateSpec)
	PredPredicateTxSpec             = predicateID(pPredicateTxSpec)
	PredPredicateEncrypted          = predicateID(pPredicateEncrypted)
	PredPredicateDeprecated         = predicateID(pPredicateDeprecated)

	PredFnName = predicateID(pFnName)
	PredFnCode = predicateID(pFnCode)

	PredRuleFns        = predicateID(pRuleFns)
	PredRuleCollection = predicateID(pRuleCollection)

	PredRoleRules = predicateID(pRoleRules)
	PredRoleID    = predicateID(pRoleID)

	PredAuthID   = predicateID(pAuthID)
	PredAuthRole = predicateID(pAuthRole)

	PredSettingLedgerID = predicateID(pSettingLedgerID)
	PredSettingAuth     = predicateID(pSettingAuth)

	PredTxID    = predicateID(pTxID)
	PredTxNonce = predicateID(pTxNonce)
	PredTxError = predicateID(pTxError)

	PredBlockNumber       = predicateID(pBlockNumber)
	PredBlockInstant      = predicateID(pBlockInstant)
	PredBlockTransactions = predicateID(pBlockTransactions)
	PredBlockPrevHash     = predicateID(pBlockPrevHash)
	PredBlockHash         = predicateID(pBlockHash)
	PredBlockLedgers      = predicateID(pBlockLedgers)
)

// PredicateName maps a well-known predicate id back to its dotted name, for
// callers (e.g. common/txblock.HashableFlakes) that only have the id.
func PredicateName(id flake.PredicateID) string {
	if name, ok := predicateNames[id]; ok {
		return name
	}
	return ""
}

var predicateNames = map[flake.PredicateID]string{
	PredCollectionName:    "_collection/name",
	PredCollectionDoc:     "_collection/doc",
	PredCollectionVersion: "_collection/version",
	PredCollectionSpec:    "_collection/spec",
	PredCollectionShard:   "_collection/shard",

	PredPredicateName:              "_predicate/name",
	PredPredicateType:              "_predicate/type",
	PredPredicateMulti:             "_predicate/multi",
	PredPredicateUnique:            "_predicate/unique",
	PredPredicateIndex:             "_predicate/index",
	PredPredicateUpsert:            "_predicate/upsert",
	PredPredicateComponent:         "_predicate/component",
	PredPredicateNoHistory:         "_predicate/noHistory",
	PredPredicateRestrictCollection: "_predicate/restrictCollection",
	PredPredicateRestrictTag:        "_predicate/restrictTag",
	PredPredicateFullText:           "_predicate/fullText",
	PredPredicateSpec:               "_predicate/spec",
	PredPredicateTxSpec:             "_predicate/txSpec",
	PredPredicateEncrypted:          "_predicate/encrypted",
	PredPredicateDeprecated:         "_predicate/deprecated",

	PredFnName: "_fn/name",
	PredFnCode: "_fn/code",

	PredRuleFns:        "_rule/fns",
	PredRuleCollection: "_rule/collection",

	PredRoleRules: "_role/rules",
	PredRoleID:    "_role/id",

	PredAuthID:   "_auth/id",
	PredAuthRole: "_auth/role",

	PredSettingLedgerID: "_setting/ledgerId",
	PredSettingAuth:     "_setting/auth",

	PredTxID:    "_tx/id",
	PredTxNonce: "_tx/nonce",
	PredTxError: "_tx/error",

	PredBlockNumber:       "_block/number",
	PredBlockInstant:      "_block/instant",
	PredBlockTransactions: "_block/transactions",
	PredBlockPrevHash:     "_block/prevHash",
	PredBlockHash:         "_block/hash",
	PredBlockLedgers:      "_block/ledgers",
}
