// Package local provides the in-process event broadcaster.
package local

import (
	"context"
	"sync"

	"github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/domain"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/logger"
)

// Handler receives emitted events
type Handler func(ctx context.Context, event domain.Event)

// Broadcaster implements domain.EventEmitter by logging every record
// and fanning it out to registered handlers. Emission never blocks the
// round operation that triggered it.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBroadcaster creates a broadcaster with no handlers
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{handlers: make([]Handler, 0)}
}

// Register adds a handler for all subsequent events
func (b *Broadcaster) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Emit logs the event and dispatches it to every handler
func (b *Broadcaster) Emit(ctx context.Context, event domain.Event) {
	logger.Info(ctx).
		Str("event", event.EventName()).
		Interface("payload", event).
		Msg("Lottery event")

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		go handler(ctx, event)
	}
}
