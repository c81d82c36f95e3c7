// Package store implements the optional bbolt-backed best-result
// cache, grounded on the orchestrator's persistence.go WorkflowStore:
// a single bucket keyed by name, JSON-encoded values, opened and closed
// by the caller (the CLI does so once per scenario run). Unlike the
// orchestrator's store this one is read-mostly and purely advisory — a
// missing or unusable cache file never blocks a run, it just means the
// first hybrid-quartile slot is built by ordinary Hybrid construction
// like the rest of that quartile.
package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/fogsched/epoceis/internal/engine"
)

const bucketName = "scenario_best"

// Store is a best-known-result cache keyed by scenario name.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) a bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Best returns the cached best result for scenario, if any.
func (s *Store) Best(scenario string) (engine.Result, bool, error) {
	var result engine.Result
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		data := b.Get([]byte(scenario))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &result)
	})
	if err != nil {
		return engine.Result{}, false, fmt.Errorf("store: read %s: %w", scenario, err)
	}
	return result, found, nil
}

// PutBest records result as the best known for scenario if it
// improves on (or replaces an absent) cached entry.
func (s *Store) PutBest(scenario string, result engine.Result) error {
	existing, found, err := s.Best(scenario)
	if err != nil {
		return err
	}
	if found && existing.TotalCost <= result.TotalCost {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", scenario, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put([]byte(scenario), data)
	})
}
