package models

import "time"

// AssessmentRecord is the persisted outcome of one assessment, keyed by
// (user, assessment id). A later save overwrites the earlier one.
type AssessmentRecord struct {
	AssessmentID    string    `json:"assessmentId"`
	Answers         []int     `json:"answers"`
	CompletedAt     time.Time `json:"completedAt"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
	Score           float64   `json:"score"`
	Type            string    `json:"type"`
}

type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

type JournalEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session statuses of a VoiceSessionRecord.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// VoiceSessionRecord is written when a session becomes active and patched when
// it ends. Status stays "active" for sessions that never recorded an end.
type VoiceSessionRecord struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	Topic              string     `json:"topic"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	Duration           string     `json:"duration,omitempty"`
	ConversationLength int        `json:"conversationLength"`
}

// Profile is the user's top-level document.
type Profile struct {
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email"`
	PhotoURL    string     `json:"photoURL"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type Settings struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// Activity is one item of the dashboard feed.
type Activity struct {
	Type      string    `json:"type"` // mood, assessment, tara, journal
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label,omitempty"`
	Emoji     string    `json:"emoji,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Topic     string    `json:"topic,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Text      string    `json:"text,omitempty"`
}
