// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package store persists generated dish histories in BadgerDB so they survive
// restarts and are not regenerated on every cache miss.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
)

const historyKeyPrefix = "history:"

// ErrNotFound is returned when no history is stored for a dish.
var ErrNotFound = errors.New("history not found")

// Options configures Open.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM.
	InMemory bool

	// TTL expires histories after this long; zero keeps them forever.
	TTL time.Duration
}

// NarrativeStore is a BadgerDB-backed store of histories keyed by dish.
type NarrativeStore struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens or creates the store. An empty Path implies InMemory.
func Open(opts Options) (*NarrativeStore, error) {
	inMemory := opts.InMemory || opts.Path == ""

	bopts := badger.DefaultOptions(opts.Path).WithLogger(newBadgerLogger())
	if inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(newBadgerLogger())
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for histories: %w", err)
	}
	return &NarrativeStore{db: db, ttl: opts.TTL}, nil
}

// Close flushes and closes the database.
func (s *NarrativeStore) Close() error {
	return s.db.Close()
}

func historyKey(dish string) []byte {
	return []byte(historyKeyPrefix + models.DishKey(dish))
}

// Get returns the stored history for dish or ErrNotFound.
func (s *NarrativeStore) Get(ctx context.Context, dish string) (*models.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	var h models.History
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(dish))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &h)
		})
	})

	metrics.RecordStoreOperation("badger", "get", time.Since(start), ignoreNotFound(err))
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Put stores h under its dish name, replacing any previous history.
func (s *NarrativeStore) Put(ctx context.Context, h *models.History) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if models.DishKey(h.Dish) == "" {
		return fmt.Errorf("put history: empty dish name")
	}
	start := time.Now()

	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(historyKey(h.Dish), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set history: %w", err)
		}
		return nil
	})

	metrics.RecordStoreOperation("badger", "put", time.Since(start), err)
	return err
}

// Delete removes the history for dish. It returns ErrNotFound when nothing
// was stored.
func (s *NarrativeStore) Delete(ctx context.Context, dish string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	key := historyKey(dish)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get history: %w", err)
		}
		return txn.Delete(key)
	})

	metrics.RecordStoreOperation("badger", "delete", time.Since(start), ignoreNotFound(err))
	return err
}

// List returns a summary of every stored history, newest first.
func (s *NarrativeStore) List(ctx context.Context) ([]models.HistorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	summaries := []models.HistorySummary{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(historyKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(historyKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var h models.History
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &h)
			}); err != nil {
				return fmt.Errorf("decode history %s: %w", it.Item().Key(), err)
			}
			summaries = append(summaries, models.HistorySummary{
				Dish:        h.Dish,
				Source:      h.Source,
				Model:       h.Model,
				Steps:       len(h.Steps),
				GeneratedAt: h.GeneratedAt,
			})
		}
		return nil
	})

	metrics.RecordStoreOperation("badger", "list", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
	})
	return summaries, nil
}

// Count returns the number of stored histories.
func (s *NarrativeStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(historyKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Ping reports whether the database is open.
func (s *NarrativeStore) Ping() error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// gcDiscardRatio is the fraction of a value log file that must be garbage
// before badger rewrites it.
const gcDiscardRatio = 0.5

// RunGC reclaims value log space. It loops until badger reports nothing left
// to rewrite and is a no-op for in-memory stores.
func (s *NarrativeStore) RunGC(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("value log gc: %w", err)
		}
	}
}
