package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePoolCreated   Type = "pool_created"
	TypePoolEvaluated Type = "pool_evaluated"
	TypePoolRejected  Type = "pool_rejected"
	TypePoolReset     Type = "pool_reset"
	TypePoolDeleted   Type = "pool_deleted"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelPool Channel = "pool"
)

var typeToChannel = map[Type]Channel{
	TypePoolCreated:   ChannelPool,
	TypePoolEvaluated: ChannelPool,
	TypePoolRejected:  ChannelPool,
	TypePoolReset:     ChannelPool,
	TypePoolDeleted:   ChannelPool,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
