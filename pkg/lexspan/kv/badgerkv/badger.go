// Package badgerkv implements kv.Store on BadgerDB for local embedded
// lexicon storage.
package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for a BadgerDB-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. If nil, it is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for the given directory.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a kv.Store backed by BadgerDB. Staged writes are held in memory
// and applied in as few transactions as BadgerDB allows on Commit.
type Store struct {
	db *badger.DB

	mu      sync.Mutex
	pending map[string][]byte
}

// Open opens (or creates) a BadgerDB store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerkv: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, pending: make(map[string][]byte)}, nil
}

// Close discards staged writes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	s.pending = make(map[string][]byte)
	s.mu.Unlock()
	return s.db.Close()
}

// Get returns a committed value.
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badgerkv get: %w", err)
	}
	return value, true, nil
}

// Put stages a write until Commit.
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[string(key)] = append([]byte(nil), value...)
	return nil
}

// Commit writes staged entries. A batch too large for one transaction is
// split; a failure leaves the remaining entries staged.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	var written []string
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := txn.Set([]byte(k), s.pending[k])
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return fmt.Errorf("badgerkv commit: %w", err)
			}
			s.drop(written)
			written = written[:0]
			txn = s.db.NewTransaction(true)
			err = txn.Set([]byte(k), s.pending[k])
		}
		if err != nil {
			return fmt.Errorf("badgerkv put %q: %w", k, err)
		}
		written = append(written, k)
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("badgerkv commit: %w", err)
	}
	s.drop(written)
	return nil
}

func (s *Store) drop(keys []string) {
	for _, k := range keys {
		delete(s.pending, k)
	}
}

// Seek visits committed keys >= from in ascending order.
func (s *Store) Seek(ctx context.Context, from []byte, fn func(key, value []byte) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(from); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var keep bool
			err := item.Value(func(val []byte) error {
				keep = fn(item.Key(), val)
				return nil
			})
			if err != nil {
				return fmt.Errorf("badgerkv seek: %w", err)
			}
			if !keep {
				return nil
			}
		}
		return nil
	})
}
