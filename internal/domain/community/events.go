package community

import (
	"context"
	"time"
)

type EventType string

const (
	EventCommunityCreated   EventType = "community.created"
	EventCommunityDeleted   EventType = "community.deleted"
	EventMemberAdded        EventType = "member.added"
	EventMemberRemoved      EventType = "member.removed"
	EventAdminTransferred   EventType = "member.admin_transferred"
	EventMemberWithdrawn    EventType = "member.withdrawn"
	EventOrderProposed      EventType = "order.proposed"
	EventVoteCast           EventType = "order.vote_cast"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderExecuted      EventType = "order.executed"
	EventContribution       EventType = "contribution.recorded"
)

// Event is emitted after a mutation commits.
type Event struct {
	Type        EventType `json:"type"`
	CommunityID string    `json:"community_id"`
	ActorID     string    `json:"actor_id"`
	EntityID    string    `json:"entity_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Data        any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
