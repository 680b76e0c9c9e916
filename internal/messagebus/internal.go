package messagebus

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InternalMessageBus dispatches events in-process. Publish invokes every
// matching handler synchronously in the publisher's goroutine, so delivery is
// in publish order per publisher.
type InternalMessageBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]internalSubscription
}

type internalSubscription struct {
	eventTypes map[EventType]struct{}
	handler    Handler
}

// NewInternalMessageBus creates a new in-process message bus
func NewInternalMessageBus() *InternalMessageBus {
	return &InternalMessageBus{
		subscriptions: make(map[SubscriptionID]internalSubscription),
	}
}

// Publish delivers the event to every subscription matching its type
func (b *InternalMessageBus) Publish(msg EventMessage) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		if _, ok := sub.eventTypes[msg.Type]; ok {
			handlers = append(handlers, sub.handler)
		}
	}
	b.mu.RUnlock()

	// handlers run outside the lock so they may subscribe or unsubscribe
	for _, handler := range handlers {
		handler(msg)
	}
	return nil
}

// Subscribe registers a handler for the given event types
func (b *InternalMessageBus) Subscribe(eventTypes []EventType, handler Handler) (SubscriptionID, error) {
	if handler == nil {
		return "", fmt.Errorf("subscribe: handler must not be nil")
	}
	if len(eventTypes) == 0 {
		return "", fmt.Errorf("subscribe: at least one event type required")
	}

	types := make(map[EventType]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = struct{}{}
	}

	id := SubscriptionID(uuid.NewString())

	b.mu.Lock()
	b.subscriptions[id] = internalSubscription{eventTypes: types, handler: handler}
	b.mu.Unlock()

	return id, nil
}

// Unsubscribe releases the subscription with the given handle
func (b *InternalMessageBus) Unsubscribe(id SubscriptionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscriptions[id]; !ok {
		return fmt.Errorf("unsubscribe: unknown subscription %q", id)
	}
	delete(b.subscriptions, id)
	return nil
}

// Close drops all subscriptions
func (b *InternalMessageBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[SubscriptionID]internalSubscription)
	return nil
}
