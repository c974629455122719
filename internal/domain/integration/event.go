package integration

import (
	"encoding/json"
	"strings"
)

// EventAction is the change carried by a webhook event.
type EventAction string

const (
	EventActionCreated EventAction = "created"
	EventActionUpdated EventAction = "updated"
	EventActionDeleted EventAction = "deleted"
)

// EntityEventType is a parsed "{entity}.{action}" event name,
// e.g. "product.updated".
type EntityEventType struct {
	Module SyncModule
	Action EventAction
}

// ParseEntityEventType parses an event name.
func ParseEntityEventType(s string) (EntityEventType, error) {
	entity, action, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return EntityEventType{}, ErrUnknownEvent
	}
	var module SyncModule
	switch entity {
	case "product":
		module = SyncModuleProducts
	case "customer":
		module = SyncModuleCustomers
	case "order":
		module = SyncModuleOrders
	default:
		return EntityEventType{}, ErrUnknownEvent
	}
	switch EventAction(action) {
	case EventActionCreated, EventActionUpdated, EventActionDeleted:
	default:
		return EntityEventType{}, ErrUnknownEvent
	}
	return EntityEventType{Module: module, Action: EventAction(action)}, nil
}

// IsDelete reports whether the event removes the entity.
func (e EntityEventType) IsDelete() bool {
	return e.Action == EventActionDeleted
}

func (e EntityEventType) String() string {
	return strings.TrimSuffix(string(e.Module), "s") + "." + string(e.Action)
}

// WebhookEvent is an inbound entity-change notification.
type WebhookEvent struct {
	Event  string          `json:"event" validate:"required"`
	Entity json.RawMessage `json:"entity" validate:"required"`
}

// EntityEnvelope holds the fields every webhook entity carries.
type EntityEnvelope struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"company_id"`
	Email     string   `json:"email"`
	Metadata  Metadata `json:"metadata"`
}

// Envelope decodes the routing fields of the entity.
func (e WebhookEvent) Envelope() (EntityEnvelope, error) {
	var env EntityEnvelope
	if len(e.Entity) == 0 {
		return env, ErrInvalidPayload
	}
	if err := json.Unmarshal(e.Entity, &env); err != nil {
		return env, ErrInvalidPayload
	}
	if env.ID == "" || env.CompanyID == "" {
		return env, ErrInvalidPayload
	}
	return env, nil
}
