// Package kafka publishes reaction engine events to Apache Kafka.
package kafka

import (
	"encoding/json"
	"time"
)

// Topic constants
const (
	TopicReactionEvents = "chemrxn.reaction.events"
	TopicDeadLetter     = "chemrxn.dead_letter"
)

// EventEnvelope standardizes messages on the wire.  Payload carries the
// domain event verbatim; the envelope adds routing and tracing fields.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// envelopeSource identifies this service in every envelope.
const envelopeSource = "chemrxn-engine"

// envelopeSchemaVersion is bumped on any breaking payload change.
const envelopeSchemaVersion = "1.0"
