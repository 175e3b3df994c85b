package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/Asgar77/goodminds-app/internal/realtime"
)

// Bus moves change notifications between writers and forwarders, possibly
// across server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Change) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Change)) error
	Close() error
}

// localBus delivers changes to forwarders of the same process.
type localBus struct {
	mu       sync.RWMutex
	handlers []func(realtime.Change)
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(ctx context.Context, msg realtime.Change) error {
	b.mu.RLock()
	handlers := append([]func(realtime.Change){}, b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Change)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onMsg)
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.handlers = nil
	b.mu.Unlock()
	return nil
}
