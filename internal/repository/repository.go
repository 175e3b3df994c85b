// Package repository gives typed access to the users table and to each
// user's document collections.
package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/Asgar77/goodminds-app/internal/store"
)

// ErrNotFound is returned when a document or user does not exist.
var ErrNotFound = errors.New("not found")

// Collection names under users/{uid}.
const (
	CollectionAssessments  = "assessments"
	CollectionMoods        = "moods"
	CollectionJournal      = "journal"
	CollectionTaraSessions = "taraSessions"
	CollectionPreferences  = "preferences"
)

type Repository struct {
	db    *gorm.DB
	store *store.Store
	now   func() time.Time
}

func New(db *gorm.DB, st *store.Store) *Repository {
	return &Repository{db: db, store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repository) Store() *store.Store { return r.store }

// listDecoded reads a collection and decodes each document with decode.
func listDecoded[T any](ctx context.Context, r *Repository, uid, collection string, decode func(store.Document) (T, error)) ([]T, error) {
	docs, err := r.store.List(ctx, store.Collection(uid, collection))
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode(d)
		if err != nil {
			return nil, &store.ReadError{Path: d.Path, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// newestFirst reverses a creation-ordered list in place.
func newestFirst[T any](items []T) []T {
	slices.Reverse(items)
	return items
}

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func sortByTimeDesc[T any](items []T, key func(T) int64) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
}
