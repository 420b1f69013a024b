// Package history keeps generations in an embedded BadgerDB so that
// evolution runs can be inspected and resumed.
//
// Generations are stored as JSON under "gen/<id>". Nothing is ever
// overwritten; saving a generation twice stores the same value again.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rwelin/soundgraph"
)

var ErrNotFound = errors.New("generation not found")

const prefix = "gen/"

// Config holds configuration for a history store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for tests and the API
	// server when no path is configured.
	InMemory bool

	// SyncWrites flushes every save to disk before returning.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

type Store struct {
	db *badger.DB
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
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens the store described by cfg. The caller must Close it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent history")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(g *soundgraph.Generation) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode generation %s: %w", g.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+g.ID), data)
	})
}

func (s *Store) Get(id string) (*soundgraph.Generation, error) {
	var g soundgraph.Generation
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Summary describes a stored generation without its graph.
type Summary struct {
	ID       string    `json:"id"`
	ParentID string    `json:"parent_id,omitempty"`
	Index    int       `json:"index"`
	Created  time.Time `json:"created"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
}

// List returns all stored generations ordered by index then creation time.
func (s *Store) List() ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var g soundgraph.Generation
				if err := json.Unmarshal(val, &g); err != nil {
					return err
				}
				out = append(out, Summary{
					ID:       g.ID,
					ParentID: g.ParentID,
					Index:    g.Index,
					Created:  g.Created,
					Nodes:    g.Nodes().Len(),
					Edges:    g.Matrix().Len(),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// Lineage follows parent links from id back to the root. The result starts
// with the root.
func (s *Store) Lineage(id string) ([]*soundgraph.Generation, error) {
	var chain []*soundgraph.Generation
	for id != "" {
		g, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, g)
		id = g.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
