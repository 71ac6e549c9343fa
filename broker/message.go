package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360/transitsim/errors"
)

// Message is the unit the broker routes: a kind, the publishing entity's
// identifier, and a typed payload. Messages are immutable after creation.
type Message struct {
	ID        string
	Kind      Kind
	Sender    string
	Timestamp time.Time
	Payload   Payload
}

// New creates a message for the payload's kind with the current timestamp
func New(sender string, payload Payload) Message {
	var kind Kind
	if payload != nil {
		kind = payload.Kind()
	}
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Sender:    sender,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Validate checks the message envelope and its payload
func (m Message) Validate() error {
	if !m.Kind.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("kind %q: %w", m.Kind, errors.ErrUnknownKind),
			"broker", "Validate", "message check")
	}
	if m.Sender == "" {
		return errors.WrapInvalid(
			fmt.Errorf("message %s has no sender: %w", m.ID, errors.ErrInvalidPayload),
			"broker", "Validate", "message check")
	}
	if m.Payload == nil {
		return errors.WrapInvalid(
			fmt.Errorf("message %s has no payload: %w", m.ID, errors.ErrInvalidPayload),
			"broker", "Validate", "message check")
	}
	if m.Payload.Kind() != m.Kind {
		return errors.WrapInvalid(
			fmt.Errorf("message kind %q does not match payload kind %q: %w",
				m.Kind, m.Payload.Kind(), errors.ErrInvalidPayload),
			"broker", "Validate", "message check")
	}
	return m.Payload.Validate()
}

// PayloadJSON returns the payload serialized for logging and recording
func (m Message) PayloadJSON() ([]byte, error) {
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, errors.WrapInvalid(err, "broker", "PayloadJSON", "payload serialization")
	}
	return data, nil
}

// String implements fmt.Stringer
func (m Message) String() string {
	return fmt.Sprintf("%s from %s (%s)", m.Kind, m.Sender, m.ID[:8])
}
