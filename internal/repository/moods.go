package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
)

// MoodOption is one of the moods a user can log.
type MoodOption struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

var MoodOptions = []MoodOption{
	{ID: "excited", Emoji: "🤩", Label: "Excited"},
	{ID: "happy", Emoji: "😊", Label: "Happy"},
	{ID: "calm", Emoji: "😌", Label: "Calm"},
	{ID: "neutral", Emoji: "😐", Label: "Neutral"},
	{ID: "anxious", Emoji: "😰", Label: "Anxious"},
	{ID: "angry", Emoji: "😠", Label: "Angry"},
	{ID: "sad", Emoji: "😢", Label: "Sad"},
}

// ErrUnknownMood is returned for a mood id outside MoodOptions.
var ErrUnknownMood = errors.New("unknown mood")

func LookupMood(id string) (MoodOption, bool) {
	for _, m := range MoodOptions {
		if m.ID == id {
			return m, true
		}
	}
	return MoodOption{}, false
}

// AddMood appends a mood entry for the user.
func (r *Repository) AddMood(ctx context.Context, uid, moodID string) (models.MoodEntry, error) {
	opt, ok := LookupMood(moodID)
	if !ok {
		return models.MoodEntry{}, fmt.Errorf("%w: %q", ErrUnknownMood, moodID)
	}
	entry := models.MoodEntry{Mood: opt.ID, Emoji: opt.Emoji, Label: opt.Label, CreatedAt: r.now()}
	id, err := r.store.Add(ctx, store.Collection(uid, CollectionMoods), map[string]any{
		"mood":      entry.Mood,
		"emoji":     entry.Emoji,
		"label":     entry.Label,
		"createdAt": timestamp(entry.CreatedAt),
	})
	if err != nil {
		return models.MoodEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

// ListMoods returns the user's mood entries, newest first.
func (r *Repository) ListMoods(ctx context.Context, uid string) ([]models.MoodEntry, error) {
	entries, err := listDecoded(ctx, r, uid, CollectionMoods, DecodeMood)
	if err != nil {
		return nil, err
	}
	return newestFirst(entries), nil
}

func DecodeMood(d store.Document) (models.MoodEntry, error) {
	var m models.MoodEntry
	if err := d.DataTo(&m); err != nil {
		return m, err
	}
	m.ID = d.ID
	return m, nil
}

func (r *Repository) DeleteMood(ctx context.Context, uid, id string) error {
	return r.store.Delete(ctx, store.Doc(uid, CollectionMoods, id))
}

// MoodInsight describes the most frequent mood. Ties go to the label seen
// first in the given order.
func MoodInsight(entries []models.MoodEntry) string {
	if len(entries) == 0 {
		return "Log your moods to see insights."
	}
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if counts[e.Label] == 0 {
			order = append(order, e.Label)
		}
		counts[e.Label]++
	}
	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return fmt.Sprintf("Your most frequent mood is %s. Keep tracking to see more patterns!", best)
}

// MoodCount is how often one mood was logged.
type MoodCount struct {
	Mood  string `json:"mood"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// MoodDistribution counts entries per mood in MoodOptions order, skipping moods never logged.
func MoodDistribution(entries []models.MoodEntry) []MoodCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Mood]++
	}
	var out []MoodCount
	for _, opt := range MoodOptions {
		if n := counts[opt.ID]; n > 0 {
			out = append(out, MoodCount{Mood: opt.ID, Label: opt.Label, Emoji: opt.Emoji, Count: n})
		}
	}
	return out
}

// DaysTracked counts distinct UTC days with at least one mood entry.
func DaysTracked(entries []models.MoodEntry) int {
	days := make(map[string]struct{})
	for _, e := range entries {
		days[e.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}
