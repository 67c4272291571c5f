// Package realtime delivers create/update/delete events for record
// collections. Changes are announced with pg_notify inside the writing
// transaction, read back by a Listener, and fanned out by a Hub to
// per-collection subscriber channels.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel is the Postgres notification channel carrying record changes.
const Channel = "corretora_eventos"

// Action identifies the kind of change.
type Action string

// Actions emitted for record changes.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Notification is the pg_notify payload. It carries no record body so it
// stays well under the 8000 byte payload limit.
// Deletes also name the owning agency, since the record is gone by the time
// subscribers see the event.
type Notification struct {
	Action        Action     `json:"action"`
	Collection    string     `json:"collection"`
	RecordID      uuid.UUID  `json:"record_id"`
	ImobiliariaID *uuid.UUID `json:"imobiliaria_id,omitempty"`
}

// Payload encodes n for pg_notify.
func (n Notification) Payload() (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Event is delivered to subscribers. Record holds the current JSON
// representation for create and update; it is empty for delete, where
// ImobiliariaID names the agency that owned the removed record.
type Event struct {
	Action        Action          `json:"action"`
	Collection    string          `json:"collection"`
	RecordID      uuid.UUID       `json:"record_id"`
	Record        json.RawMessage `json:"record,omitempty"`
	ImobiliariaID *uuid.UUID      `json:"-"`
	Timestamp     time.Time       `json:"timestamp"`
}
