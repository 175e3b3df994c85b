package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
)

var ErrEmptyJournalEntry = errors.New("journal entry is empty")

func (r *Repository) AddJournalEntry(ctx context.Context, uid, text string) (models.JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return models.JournalEntry{}, ErrEmptyJournalEntry
	}
	entry := models.JournalEntry{Text: text, CreatedAt: r.now()}
	id, err := r.store.Add(ctx, store.Collection(uid, CollectionJournal), map[string]any{
		"text":      entry.Text,
		"createdAt": timestamp(entry.CreatedAt),
	})
	if err != nil {
		return models.JournalEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

// ListJournal returns the user's journal, newest first.
func (r *Repository) ListJournal(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	entries, err := listDecoded(ctx, r, uid, CollectionJournal, DecodeJournalEntry)
	if err != nil {
		return nil, err
	}
	return newestFirst(entries), nil
}

func DecodeJournalEntry(d store.Document) (models.JournalEntry, error) {
	var e models.JournalEntry
	if err := d.DataTo(&e); err != nil {
		return e, err
	}
	e.ID = d.ID
	return e, nil
}

func (r *Repository) DeleteJournalEntry(ctx context.Context, uid, id string) error {
	return r.store.Delete(ctx, store.Doc(uid, CollectionJournal, id))
}
