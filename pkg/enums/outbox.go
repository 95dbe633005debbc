package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateGroupOrder       OutboxAggregateType = "group_order"
	AggregateDistributionItem OutboxAggregateType = "distribution_item"
	AggregateUser             OutboxAggregateType = "user"
	AggregateReview           OutboxAggregateType = "review"
	AggregateNotification     OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateGroupOrder,
	AggregateDistributionItem,
	AggregateUser,
	AggregateReview,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventGroupOrderCreated     OutboxEventType = "group_order_created"
	EventGroupOrderFinalized   OutboxEventType = "group_order_finalized"
	EventGroupOrderCompleted   OutboxEventType = "group_order_completed"
	EventGroupOrderCancelled   OutboxEventType = "group_order_cancelled"
	EventGroupOrderExpired     OutboxEventType = "group_order_expired"
	EventParticipantInvited    OutboxEventType = "participant_invited"
	EventParticipantResponded  OutboxEventType = "participant_responded"
	EventDistributionScheduled OutboxEventType = "distribution_scheduled"
	EventDistributionConfirmed OutboxEventType = "distribution_confirmed"
	EventDistributionCancelled OutboxEventType = "distribution_cancelled"
	EventReviewSubmitted       OutboxEventType = "review_submitted"
	EventReviewModerated       OutboxEventType = "review_moderated"
	EventUserRoleChanged       OutboxEventType = "user_role_changed"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventGroupOrderCreated,
	EventGroupOrderFinalized,
	EventGroupOrderCompleted,
	EventGroupOrderCancelled,
	EventGroupOrderExpired,
	EventParticipantInvited,
	EventParticipantResponded,
	EventDistributionScheduled,
	EventDistributionConfirmed,
	EventDistributionCancelled,
	EventReviewSubmitted,
	EventReviewModerated,
	EventUserRoleChanged,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
