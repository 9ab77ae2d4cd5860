package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cotdex/internal"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for the persistent cache.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps the cache off disk. Useful for tests.
	InMemory bool

	// GCInterval is how often value-log GC runs. Zero disables it.
	GCInterval time.Duration
}

// BadgerStore is a cache backed by BadgerDB entry TTLs, so cached views
// survive a process restart until they expire.
type BadgerStore struct {
	db   *badger.DB
	log  *internal.Logger
	stop chan struct{}
	done chan struct{}
}

// badgerLogger adapts the leveled logger to BadgerDB's Logger interface.
type badgerLogger struct {
	log *internal.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.log.Error(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warn(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.log.Debug(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.log.Trace(format, args...) }

// OpenBadger opens the cache database described by cfg.
func OpenBadger(cfg BadgerConfig, logger *internal.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.With("badger")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required for persistent cache")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{log: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	s := &BadgerStore{db: db, log: logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.runGC(cfg.GCInterval)
	}
	return s, nil
}

func (s *BadgerStore) runGC(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for s.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %q: %w", key, err)
	}
	return payload, true, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), payload).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Flush(_ context.Context) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("badger drop all: %w", err)
	}
	return nil
}

// Close stops GC and closes the database.
func (s *BadgerStore) Close() error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
	}
	return s.db.Close()
}
