// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"runtime"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/ava-labs/reflectvm/state"
)

var (
	_ state.Database = (*Database)(nil)
	_ database.Batch = (*batch)(nil)
)

// Database is a [state.Database] backed by an on-disk pebble instance.
type Database struct {
	db      *pebble.DB
	write   *pebble.WriteOptions
	metrics *metrics
	closing chan struct{}
	closed  atomic.Bool
}

type Config struct {
	CacheSize             int64 `yaml:"cacheSize"`
	BytesPerSync          int   `yaml:"bytesPerSync"`
	WALBytesPerSync       int   `yaml:"walBytesPerSync"`
	MaxOpenFiles          int   `yaml:"maxOpenFiles"`
	ConcurrentCompactions int   `yaml:"concurrentCompactions"`

	// Sync makes every write durable before it returns
	Sync bool `yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:             64 * units.MiB,
		BytesPerSync:          1 * units.MiB,
		WALBytesPerSync:       1 * units.MiB,
		MaxOpenFiles:          4_096,
		ConcurrentCompactions: runtime.NumCPU(),
		Sync:                  true,
	}
}

// New opens (or creates) the database in [dir]. The returned registry holds
// the database metrics.
func New(dir string, cfg Config) (*Database, *prometheus.Registry, error) {
	r, m, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		write:   pebble.NoSync,
		metrics: m,
		closing: make(chan struct{}),
	}
	if cfg.Sync {
		d.write = pebble.Sync
	}

	cache := pebble.NewCache(cfg.CacheSize)
	defer cache.Unref()
	opts := &pebble.Options{
		Cache:                    cache,
		BytesPerSync:             cfg.BytesPerSync,
		WALBytesPerSync:          cfg.WALBytesPerSync,
		MaxOpenFiles:             cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int { return cfg.ConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	if d.db, err = pebble.Open(dir, opts); err != nil {
		return nil, nil, err
	}
	go d.collectMetrics()
	return d, r, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	data, closer, err := db.db.Get(key)
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// [data] is only valid until [closer] is closed
	v := make([]byte, len(data))
	copy(v, data)
	return v, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	return db.db.Set(key, value, db.write)
}

func (db *Database) Delete(key []byte) error {
	return db.db.Delete(key, db.write)
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db}
}

// Close stops metric collection and closes pebble. Later calls return
// [database.ErrClosed].
func (db *Database) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return database.ErrClosed
	}
	close(db.closing)
	return db.db.Close()
}

// batch buffers writes in memory and applies them to pebble atomically on
// [Write].
type batch struct {
	database.BatchOps

	db *Database
}

func (b *batch) Write() error {
	pb := b.db.db.NewBatch()
	defer pb.Close()

	for _, op := range b.Ops {
		var err error
		if op.Delete {
			err = pb.Delete(op.Key, nil)
		} else {
			err = pb.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return err
		}
	}
	return pb.Commit(b.db.write)
}

func (b *batch) Inner() database.Batch {
	return b
}
