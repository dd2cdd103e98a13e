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

package log

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// logger implements Logger on top of the package's shared logrus
// instance, carrying a fixed key/value context appended to every record.
type logger struct {
	ctx     []interface{}
	mapPool *sync.Pool
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{mapPool: l.mapPool}
	child.ctx = make([]interface{}, 0, len(l.ctx)+len(ctx))
	child.ctx = append(child.ctx, l.ctx...)
	child.ctx = append(child.ctx, ctx...)
	return child
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, skipLevel) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, skipLevel) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, skipLevel) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, skipLevel) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, skipLevel) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(msg, LvlCrit, ctx, skipLevel) }

// write renders msg+ctx through logrus at the given level, merging in
// this logger's fixed context. callerSkip is accepted for API parity with
// the package-level helpers but logrus's own caller reporting is disabled
// by default, so it is currently unused beyond documenting intent.
func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, callerSkip int) {
	fields := l.fieldsPool()
	defer l.mapPool.Put(fields)

	merge := func(kv []interface{}) {
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				key = fmt.Sprintf("%v", kv[i])
			}
			fields[key] = kv[i+1]
		}
	}
	merge(l.ctx)
	merge(ctx)

	entry := terminal.WithFields(fields)
	switch lvl {
	case LvlTrace:
		entry.Trace(msg)
	case LvlDebug:
		entry.Debug(msg)
	case LvlInfo:
		entry.Info(msg)
	case LvlWarn:
		entry.Warn(msg)
	case LvlError:
		entry.Error(msg)
	case LvlCrit, LvlFatal:
		entry.Error(msg)
	}
}

func (l *logger) fieldsPool() logrus.Fields {
	m := l.mapPool.Get().(map[string]interface{})
	for k := range m {
		delete(m, k)
	}
	return logrus.Fields(m)
}
