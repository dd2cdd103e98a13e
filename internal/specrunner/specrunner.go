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

// Package specrunner evaluates the delegated _predicate/spec,
// _predicate/txSpec and _collection/spec closures named by §4.4 step 7. It
// runs the per-predicate/collection validation functions a transaction
// already declares; it is not the permission/rule evaluation engine, which
// is out of scope.
package specrunner

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/stashdaddy/ledger/common/flake"
)

// DBAfter is the narrow read-only view of the post-transaction database a
// spec closure may consult.
type DBAfter interface {
	// Get returns the live object(s) of (subject, predicate) as of the
	// transaction's t, or nil if none.
	Get(subject, predicate flake.SubjectID) []flake.Object
}

// Verdict is the outcome of evaluating one spec closure.
type Verdict struct {
	OK      bool
	Message string
}

// Runner compiles and caches _predicate/spec, _predicate/txSpec and
// _collection/spec source, and evaluates them against a candidate flake and
// a DBAfter view.
type Runner struct {
	mu    sync.Mutex
	cache map[string]*goja.Program
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{cache: make(map[string]*goja.Program)}
}

// compile compiles and caches src, keyed by its own text (specs are
// immutable once declared, so the source itself is a stable cache key).
func (r *Runner) compile(src string) (*goja.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[src]; ok {
		return p, nil
	}
	p, err := goja.Compile("spec", src, false)
	if err != nil {
		return nil, fmt.Errorf("specrunner: compile failed: %w", err)
	}
	r.cache[src] = p
	return p, nil
}

// Eval runs src as a spec closure. The script is expected to assign a
// function to the global `spec`, called with (flake, dbAfter) and expected
// to return a bool or an object {ok, message}.
func (r *Runner) Eval(src string, candidate flake.Flake, db DBAfter) (Verdict, error) {
	program, err := r.compile(src)
	if err != nil {
		return Verdict{}, err
	}

	vm := goja.New()
	if _, err := vm.RunProgram(program); err != nil {
		return Verdict{}, fmt.Errorf("specrunner: script execution failed: %w", err)
	}

	specFn, ok := goja.AssertFunction(vm.Get("spec"))
	if !ok {
		return Verdict{}, fmt.Errorf("specrunner: script did not define a `spec` function")
	}

	flakeObj := vm.ToValue(map[string]any{
		"s":  int64(candidate.S),
		"p":  int64(candidate.P),
		"o":  candidate.O.String(),
		"t":  candidate.T,
		"op": candidate.Op,
	})
	dbObj := vm.ToValue(map[string]any{
		"get": func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			s := flake.SubjectID(call.Argument(0).ToInteger())
			p := flake.SubjectID(call.Argument(1).ToInteger())
			objs := db.Get(s, p)
			strs := make([]string, len(objs))
			for i, o := range objs {
				strs[i] = o.String()
			}
			return vm.ToValue(strs)
		},
	})

	result, err := specFn(goja.Undefined(), flakeObj, dbObj)
	if err != nil {
		return Verdict{}, fmt.Errorf("specrunner: script raised: %w", err)
	}
	return toVerdict(result), nil
}

func toVerdict(v goja.Value) Verdict {
	exported := v.Export()
	switch val := exported.(type) {
	case bool:
		return Verdict{OK: val}
	case map[string]any:
		ok, _ := val["ok"].(bool)
		msg, _ := val["message"].(string)
		return Verdict{OK: ok, Message: msg}
	default:
		return Verdict{OK: false, Message: "spec returned a non-boolean, non-object value"}
	}
}
