// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

// TState defines a struct for storing temporary state on top of a database.
//
// Views created from a TState stage their changes privately until
// [TStateView.Commit] is called. Nothing reaches the underlying database
// until [TState.WriteTo] flushes every committed change into one batch.
type TState struct {
	base database.KeyValueReader

	l           sync.RWMutex
	changedKeys map[string]maybe.Maybe[[]byte]
	ops         int
}

// New returns a new instance of TState reading through to [base].
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(base database.KeyValueReader, changedSize int) *TState {
	return &TState{
		base:        base,
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

// getValue returns the value of [key] along with whether it was changed in
// [TState] and whether it exists.
func (ts *TState) getValue(_ context.Context, key string) ([]byte, bool, bool, error) {
	ts.l.RLock()
	v, ok := ts.changedKeys[key]
	ts.l.RUnlock()
	if ok {
		if v.IsNothing() {
			return nil, true, false, nil
		}
		return v.Value(), true, true, nil
	}
	value, err := ts.base.Get([]byte(key))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, false, nil
	}
	if err != nil {
		return nil, false, false, err
	}
	return value, false, true, nil
}

// OpIndex returns the number of operations committed to ts.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// ChangedKeys returns the number of keys modified by committed views.
func (ts *TState) ChangedKeys() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// WriteTo writes all committed changes to [w]. Callers pass a
// [database.Batch] so the changes land atomically.
//
// Once [WriteTo] is called, [TState] should not be used again.
func (ts *TState) WriteTo(w database.KeyValueWriterDeleter) error {
	ts.l.Lock()
	defer ts.l.Unlock()

	for k, v := range ts.changedKeys {
		if v.IsNothing() {
			if err := w.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := w.Put([]byte(k), v.Value()); err != nil {
			return err
		}
	}
	return nil
}
