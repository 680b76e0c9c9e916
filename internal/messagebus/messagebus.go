// Package messagebus defines the lifecycle event bus connecting the transports
// to the registry synchronization engine. Events carry exactly one entity,
// either a shell or a submodel.
package messagebus

import (
	"github.com/google/uuid"

	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
)

// EventType is the lifecycle event kind.
type EventType string

//nolint:all
const (
	EventTypeCreate EventType = "Create"
	EventTypeUpdate EventType = "Update"
	EventTypeDelete EventType = "Delete"
)

// AllEventTypes lists every lifecycle event kind.
var AllEventTypes = []EventType{EventTypeCreate, EventTypeUpdate, EventTypeDelete}

// EventMessage is one lifecycle event. Exactly one of Shell and Submodel is
// set, matching the entity the event is about.
type EventMessage struct {
	MessageID string    `json:"messageId"`
	Type      EventType `json:"type"`

	Shell    *model.AssetAdministrationShell `json:"shell,omitempty"`
	Submodel *model.Submodel                 `json:"submodel,omitempty"`
}

// EntityID returns the id of the entity the event is about.
func (m EventMessage) EntityID() string {
	if m.Shell != nil {
		return m.Shell.ID
	}
	if m.Submodel != nil {
		return m.Submodel.ID
	}
	return ""
}

// NewShellEvent builds an event about a shell.
func NewShellEvent(eventType EventType, shell model.AssetAdministrationShell) EventMessage {
	return EventMessage{
		MessageID: uuid.NewString(),
		Type:      eventType,
		Shell:     &shell,
	}
}

// NewSubmodelEvent builds an event about a submodel.
func NewSubmodelEvent(eventType EventType, submodel model.Submodel) EventMessage {
	return EventMessage{
		MessageID: uuid.NewString(),
		Type:      eventType,
		Submodel:  &submodel,
	}
}

// Handler is invoked for every delivered event. Handlers may be called
// concurrently for different entities; implementations that require per-entity
// ordering serialize internally.
type Handler func(msg EventMessage)

// SubscriptionID identifies one subscription for Unsubscribe.
type SubscriptionID string

// MessageBus is the publish/subscribe capability. Subscribe returns an
// explicit handle; there is no ambient registry of subscribers.
type MessageBus interface {
	Publish(msg EventMessage) error
	Subscribe(eventTypes []EventType, handler Handler) (SubscriptionID, error)
	Unsubscribe(id SubscriptionID) error
	Close() error
}
