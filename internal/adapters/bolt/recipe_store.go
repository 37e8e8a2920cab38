// Package bolt keeps the last published recipe of each experiment in a
// bbolt file next to the relational store.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/emiliopalmerini/experimenter/internal/ports"
)

// ErrRecipeNotFound is returned when no snapshot exists for a recipe slug.
var ErrRecipeNotFound = errors.New("recipe snapshot not found")

var recipesBucket = []byte("recipes")

// RecipeStore stores one snapshot per recipe slug. bbolt allows a single
// writer at a time, so concurrent publishes are serialized by the file lock.
type RecipeStore struct {
	db *bolt.DB
}

// Open opens or creates the snapshot file at path.
func Open(path string) (*RecipeStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recipesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create recipes bucket: %w", err)
	}

	return &RecipeStore{db: db}, nil
}

func (s *RecipeStore) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot stored under snapshot.RecipeSlug.
func (s *RecipeStore) Save(ctx context.Context, snapshot *ports.RecipeSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshot.RecipeSlug == "" {
		return fmt.Errorf("snapshot has no recipe slug")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recipesBucket).Put([]byte(snapshot.RecipeSlug), data)
	})
}

func (s *RecipeStore) Get(ctx context.Context, recipeSlug string) (*ports.RecipeSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snapshot *ports.RecipeSnapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recipesBucket).Get([]byte(recipeSlug))
		if data == nil {
			return ErrRecipeNotFound
		}
		// data is only valid inside the transaction; Unmarshal copies it.
		var err error
		snapshot, err = decodeSnapshot(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// List returns every snapshot ordered by recipe slug.
func (s *RecipeStore) List(ctx context.Context) ([]*ports.RecipeSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshots := make([]*ports.RecipeSnapshot, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(recipesBucket).ForEach(func(k, v []byte) error {
			snapshot, err := decodeSnapshot(v)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", k, err)
			}
			snapshots = append(snapshots, snapshot)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s *RecipeStore) Delete(ctx context.Context, recipeSlug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recipesBucket)
		if b.Get([]byte(recipeSlug)) == nil {
			return ErrRecipeNotFound
		}
		return b.Delete([]byte(recipeSlug))
	})
}

func decodeSnapshot(data []byte) (*ports.RecipeSnapshot, error) {
	var snapshot ports.RecipeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
