// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/stretchr/testify/require"
)

var (
	testKey = []byte("key")
	testVal = []byte("value")

	key2 = []byte("key2")
)

func TestScope(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(memdb.New(), 10)

	// No Scope
	tsv := ts.NewView(set.Set[string]{})
	val, err := tsv.GetValue(ctx, testKey)
	require.ErrorIs(err, ErrKeyNotSpecified)
	require.Nil(val)
	require.ErrorIs(tsv.Insert(ctx, testKey, testVal), ErrKeyNotSpecified)
	require.ErrorIs(tsv.Remove(ctx, testKey), ErrKeyNotSpecified)
}

func TestGetValue(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))
	ts := New(db, 10)

	tsv := ts.NewView(set.Of(string(testKey)))
	val, err := tsv.GetValue(ctx, testKey)
	require.NoError(err, "unable to get value")
	require.Equal(testVal, val, "value was not saved correctly")
}

func TestGetValueNoStorage(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(memdb.New(), 10)

	tsv := ts.NewView(set.Of(string(testKey)))
	_, err := tsv.GetValue(ctx, testKey)
	require.ErrorIs(err, database.ErrNotFound, "data should not exist")
}

func TestInsertInvalid(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(memdb.New(), 10)

	tsv := ts.NewView(set.Of(string(testKey)))
	require.ErrorIs(tsv.Insert(ctx, testKey, nil), ErrInvalidKeyValue)
	require.Zero(tsv.OpIndex())
}

func TestInsertUpdateCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))
	ts := New(db, 10)

	tsv := ts.NewView(set.Of(string(testKey)))
	newVal := []byte("newVal")
	require.NoError(tsv.Insert(ctx, testKey, newVal))
	val, err := tsv.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(1, tsv.OpIndex(), "insert operation was not added")
	require.Equal(newVal, val, "value was not set correctly")
	require.Equal(testVal, tsv.ops[0].pastV)

	// Uncommitted changes are invisible to other views
	other := ts.NewView(set.Of(string(testKey)))
	val, err = other.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(testVal, val)

	tsv.Commit()
	require.Equal(1, ts.OpIndex())
	require.Equal(1, ts.ChangedKeys())
	other = ts.NewView(set.Of(string(testKey)))
	val, err = other.GetValue(ctx, testKey)
	require.NoError(err)
	require.Equal(newVal, val, "value was not committed correctly")

	// Database is untouched until written
	val, err = db.Get(testKey)
	require.NoError(err)
	require.Equal(testVal, val)

	batch := db.NewBatch()
	require.NoError(ts.WriteTo(batch))
	require.NoError(batch.Write())
	val, err = db.Get(testKey)
	require.NoError(err)
	require.Equal(newVal, val)
}

func TestRemoveCommitWrite(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := memdb.New()
	require.NoError(db.Put(testKey, testVal))
	ts := New(db, 10)

	tsv := ts.NewView(set.Of(string(testKey)))
	require.NoError(tsv.Remove(ctx, testKey))
	_, err := tsv.GetValue(ctx, testKey)
	require.ErrorIs(err, database.ErrNotFound)
	tsv.Commit()

	batch := db.NewBatch()
	require.NoError(ts.WriteTo(batch))
	require.NoError(batch.Write())
	has, err := db.Has(testKey)
	require.NoError(err)
	require.False(has)
}

func TestInsertRemoveRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(memdb.New(), 10)

	tsv := ts.NewView(set.Of(string(key2)))

	// Insert key for first time
	require.NoError(tsv.Insert(ctx, key2, testVal))
	require.Equal(1, tsv.PendingChanges())

	// Remove key
	require.NoError(tsv.Remove(ctx, key2))
	_, err := tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)

	// Insert key again
	require.NoError(tsv.Insert(ctx, key2, testVal))

	// Modify key
	testVal2 := []byte("blah")
	require.NoError(tsv.Insert(ctx, key2, testVal2))
	val, err := tsv.GetValue(ctx, key2)
	require.NoError(err)
	require.Equal(testVal2, val)

	// Rollback modify
	tsv.Rollback(ctx, tsv.OpIndex()-1)
	val, err = tsv.GetValue(ctx, key2)
	require.NoError(err)
	require.Equal(testVal, val)

	// Rollback second insert
	tsv.Rollback(ctx, tsv.OpIndex()-1)
	_, err = tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)

	// Rollback remove
	tsv.Rollback(ctx, tsv.OpIndex()-1)
	val, err = tsv.GetValue(ctx, key2)
	require.NoError(err)
	require.Equal(testVal, val)

	// Rollback insert
	tsv.Rollback(ctx, tsv.OpIndex()-1)
	require.Zero(tsv.OpIndex())
	require.Zero(tsv.PendingChanges())

	// Remove empty should do nothing
	require.NoError(tsv.Remove(ctx, key2))
	require.Zero(tsv.OpIndex())
}
