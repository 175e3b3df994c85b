package repository

import (
	"context"
	"time"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

// StartSession appends an active session record and returns its id.
func (r *Repository) StartSession(ctx context.Context, uid, topic string, start time.Time) (string, error) {
	return r.store.Add(ctx, store.Collection(uid, CollectionTaraSessions), map[string]any{
		"startTime": timestamp(start),
		"status":    models.SessionActive,
		"topic":     topic,
	})
}

// EndSession patches the session record with its end. Start fields are kept.
func (r *Repository) EndSession(ctx context.Context, uid, sessionID string, rec voice.EndRecord) error {
	return r.store.Write(ctx, store.Doc(uid, CollectionTaraSessions, sessionID), map[string]any{
		"endTime":            timestamp(rec.EndTime),
		"status":             models.SessionCompleted,
		"duration":           rec.Duration,
		"topic":              rec.Topic,
		"conversationLength": rec.ConversationLength,
	}, store.WriteOptions{Merge: true})
}

// ListSessions returns past voice sessions, newest first. Sessions that never
// recorded an end keep status "active".
func (r *Repository) ListSessions(ctx context.Context, uid string) ([]models.VoiceSessionRecord, error) {
	sessions, err := listDecoded(ctx, r, uid, CollectionTaraSessions, DecodeSession)
	if err != nil {
		return nil, err
	}
	return newestFirst(sessions), nil
}

func DecodeSession(d store.Document) (models.VoiceSessionRecord, error) {
	var s models.VoiceSessionRecord
	if err := d.DataTo(&s); err != nil {
		return s, err
	}
	s.ID = d.ID
	return s, nil
}

var _ voice.SessionStore = (*Repository)(nil)
