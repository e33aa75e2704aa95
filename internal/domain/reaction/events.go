package reaction

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a domain event emitted by the reaction service.
type EventType string

const (
	// EventReactionValidated fires after every validation call, valid or not.
	EventReactionValidated EventType = "reaction.validated"

	// EventMoleculeTransformed fires after a successful transformation.
	EventMoleculeTransformed EventType = "molecule.transformed"
)

// Event is one domain event.  Events are collected by the service and
// shipped at the application edge; the domain never talks to a broker
// directly.
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	GraphID    string                 `json:"graph_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

func newEvent(eventType EventType, graphID string, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		GraphID:    graphID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
