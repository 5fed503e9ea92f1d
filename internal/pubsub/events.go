package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicModuleLifecycle carries one message per module lifecycle transition.
// Anything interested in the shape of the running module tree (status pages,
// audit logs) subscribes here.
const TopicModuleLifecycle = "module.lifecycle"

// Lifecycle event kinds.
const (
	EventLoaded  = "loaded"  // a child was attached to its parent
	EventStarted = "started" // a module's Start completed
)

// Metadata keys set on lifecycle messages.
const (
	MetaKeyEvent  = "event"
	MetaKeyModule = "module"
	MetaKeyParent = "parent"
)

// LifecycleEvent describes a single module lifecycle transition.
type LifecycleEvent struct {
	ID     string    `json:"id"`
	Event  string    `json:"event"`
	Module string    `json:"module"`
	Parent string    `json:"parent,omitempty"`
	At     time.Time `json:"at"`
}

// NewLifecycleEvent stamps a new event with a unique ID and the current time.
func NewLifecycleEvent(event, module, parent string) LifecycleEvent {
	return LifecycleEvent{
		ID:     uuid.NewString(),
		Event:  event,
		Module: module,
		Parent: parent,
		At:     time.Now().UTC(),
	}
}

// Message encodes the event as a bus message on TopicModuleLifecycle.
// The fields most often filtered on are duplicated into metadata so
// subscribers can route without decoding the payload.
func (e LifecycleEvent) Message() (Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Message{}, fmt.Errorf("encoding lifecycle event: %w", err)
	}

	return Message{
		Topic:   TopicModuleLifecycle,
		Payload: payload,
		Metadata: map[string]string{
			MetaKeyEvent:  e.Event,
			MetaKeyModule: e.Module,
			MetaKeyParent: e.Parent,
		},
	}, nil
}

// ParseLifecycleEvent decodes a bus message produced by Message.
func ParseLifecycleEvent(msg Message) (LifecycleEvent, error) {
	var e LifecycleEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return LifecycleEvent{}, fmt.Errorf("decoding lifecycle event: %w", err)
	}
	return e, nil
}
