// Package store persists engine state in badger behind the flat string
// key/value surface the engine runs on.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// Store is a badger-backed state. The engine treats storage as infallible;
// an I/O failure under a deterministic state machine has no safe recovery,
// so mutations panic after logging.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the state database at dataDir.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open state db at %s: %w", dataDir, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(key string) *string {
	var out *string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v := string(val)
			out = &v
			return nil
		})
	})
	if err != nil {
		s.fatal("get", key, err)
	}
	return out
}

func (s *Store) Set(key string, value string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		s.fatal("set", key, err)
	}
}

func (s *Store) Delete(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		s.fatal("delete", key, err)
	}
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) fatal(op, key string, err error) {
	s.logger.Error("state db failure", "op", op, "key", fmt.Sprintf("%x", key), "error", err)
	panic(fmt.Errorf("state db %s: %w", op, err))
}
