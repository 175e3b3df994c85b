package speech

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ClipSpeaker synthesizes replies and keeps the most recent clips so the
// browser can fetch and play them. Speak returns once the clip is available.
type ClipSpeaker struct {
	synth Synthesizer
	limit int

	mu    sync.Mutex
	order []string
	clips map[string]Clip
}

func NewClipSpeaker(synth Synthesizer, limit int) *ClipSpeaker {
	if limit <= 0 {
		limit = 8
	}
	return &ClipSpeaker{synth: synth, limit: limit, clips: make(map[string]Clip)}
}

// Speak synthesizes text and returns the id of the stored clip.
func (s *ClipSpeaker) Speak(ctx context.Context, text string) (string, error) {
	clip, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[id] = clip
	s.order = append(s.order, id)
	for len(s.order) > s.limit {
		delete(s.clips, s.order[0])
		s.order = s.order[1:]
	}
	return id, nil
}

func (s *ClipSpeaker) Clip(id string) (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	return c, ok
}

// Reset drops every stored clip.
func (s *ClipSpeaker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.clips = make(map[string]Clip)
}
