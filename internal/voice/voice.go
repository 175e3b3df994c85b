// Package voice runs companion call sessions: connect, greet, take turns,
// mute, and record the session when it ends.
package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Asgar77/goodminds-app/internal/agent"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateReady      State = "ready"
	StateListening  State = "listening"
	StateAwaiting   State = "awaiting"
	StateSpeaking   State = "speaking"
	StateEnded      State = "ended"
	StateError      State = "error"
)

// Active reports whether s is one of the in-call states.
func (s State) Active() bool {
	switch s {
	case StateReady, StateListening, StateAwaiting, StateSpeaking:
		return true
	}
	return false
}

var (
	ErrAuthRequired   = errors.New("sign in required")
	ErrInvalidState   = errors.New("operation not allowed in current session state")
	ErrBusy           = errors.New("a reply is still in progress")
	ErrMuted          = errors.New("microphone is muted")
	ErrEmptyUtterance = errors.New("utterance is empty")
)

func invalidState(op string, s State) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, s)
}

const (
	FallbackGreeting = "Hi, I'm TARA. I'm here to listen and support you. What's on your mind today?"
	FallbackReply    = "I'm having trouble connecting right now, but I'm still here with you. Could you tell me a bit more about how you're feeling?"
)

// User is the signed-in person starting a session.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// Turn is one entry of the in-memory conversation log.
type Turn struct {
	Speaker    agent.Role `json:"speaker"`
	Text       string     `json:"text"`
	At         time.Time  `json:"at"`
	Confidence *float64   `json:"confidence,omitempty"`
	AudioID    string     `json:"audioId,omitempty"`
	// Fallback marks locally substituted agent text.
	Fallback bool `json:"fallback,omitempty"`
}

// Speaker plays agent text. Speak returns when the audio is available to the
// listener, with an id the client can use to fetch it.
type Speaker interface {
	Speak(ctx context.Context, text string) (audioID string, err error)
}

// EndRecord closes a persisted session.
type EndRecord struct {
	EndTime            time.Time
	Duration           string
	Topic              string
	ConversationLength int
}

// SessionStore persists the two phases of a session record.
type SessionStore interface {
	StartSession(ctx context.Context, userID, topic string, start time.Time) (sessionID string, err error)
	EndSession(ctx context.Context, userID, sessionID string, rec EndRecord) error
}

// FormatDuration renders seconds as zero-padded mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Snapshot is a consistent view of a controller.
type Snapshot struct {
	State     State  `json:"state"`
	Muted     bool   `json:"muted"`
	Busy      bool   `json:"busy"`
	Elapsed   int    `json:"elapsedSeconds"`
	Duration  string `json:"duration"`
	Topic     string `json:"topic,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Turns     []Turn `json:"turns"`
	// Notice is the user-facing message for the most recent failure.
	Notice string `json:"notice,omitempty"`
}
