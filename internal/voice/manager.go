package voice

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Factory builds a fresh controller for a user.
type Factory func(userID string) *Controller

// Manager owns one controller per signed-in user.
type Manager struct {
	factory Factory
	log     *zap.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(factory Factory, log *zap.Logger) *Manager {
	return &Manager{
		factory:     factory,
		log:         log.Named("voice-manager"),
		controllers: make(map[string]*Controller),
	}
}

// For returns the user's controller, creating it on first use.
func (m *Manager) For(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[userID]
	if !ok {
		c = m.factory(userID)
		m.controllers[userID] = c
	}
	return c
}

// Lookup returns the user's controller without creating one.
func (m *Manager) Lookup(userID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[userID]
	return c, ok
}

// Drop forgets the user's controller, ending its session first if one is
// still open. Unknown users are ignored.
func (m *Manager) Drop(ctx context.Context, userID string) error {
	m.mu.Lock()
	c, ok := m.controllers[userID]
	delete(m.controllers, userID)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if err := c.EndSession(ctx); err != nil && !errors.Is(err, ErrInvalidState) {
		return err
	}
	return nil
}

// Shutdown ends every session still in progress.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	controllers := make(map[string]*Controller, len(m.controllers))
	for id, c := range m.controllers {
		controllers[id] = c
	}
	m.mu.Unlock()

	for id, c := range controllers {
		if err := c.EndSession(ctx); err != nil && !errors.Is(err, ErrInvalidState) {
			m.log.Error("failed to end voice session on shutdown", zap.String("user_id", id), zap.Error(err))
		}
	}
}
