package shared

import (
	"context"
	"sync"
)

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus dispatches domain events to subscribed handlers
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
}

// InProcessEventBus is a synchronous in-process EventBus.
// Handler errors are collected but do not stop delivery to other handlers.
type InProcessEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	all      []EventHandler
	onError  func(event DomainEvent, err error)
}

// NewInProcessEventBus creates a new in-process event bus.
// onError is invoked for each handler failure; nil disables error reporting.
func NewInProcessEventBus(onError func(event DomainEvent, err error)) *InProcessEventBus {
	return &InProcessEventBus{
		handlers: make(map[string][]EventHandler),
		onError:  onError,
	}
}

// Subscribe registers a handler for specific event types.
// If no event types are provided, the handler's own EventTypes() is consulted;
// an empty result subscribes the handler to all events.
func (b *InProcessEventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		b.all = append(b.all, handler)
		return
	}
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Publish delivers events synchronously to all matching handlers
func (b *InProcessEventBus) Publish(ctx context.Context, events ...DomainEvent) error {
	for _, event := range events {
		b.mu.RLock()
		targets := make([]EventHandler, 0, len(b.all)+len(b.handlers[event.EventType()]))
		targets = append(targets, b.all...)
		targets = append(targets, b.handlers[event.EventType()]...)
		b.mu.RUnlock()

		for _, h := range targets {
			if err := h.Handle(ctx, event); err != nil && b.onError != nil {
				b.onError(event, err)
			}
		}
	}
	return nil
}

var _ EventBus = (*InProcessEventBus)(nil)
