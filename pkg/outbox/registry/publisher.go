package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/config"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, fmt.Errorf("orders topic is required")
	}
	if cfg.NotificationsTopic == "" {
		return nil, fmt.Errorf("notifications topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	ordersTopic := cfg.OrdersTopic
	notificationsTopic := cfg.NotificationsTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventGroupOrderCreated,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.GroupOrderCreatedEvent{} },
		},
		{
			EventType:      enums.EventGroupOrderFinalized,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.GroupOrderFinalizedEvent{} },
		},
		{
			EventType:      enums.EventGroupOrderCompleted,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.GroupOrderCompletedEvent{} },
		},
		{
			EventType:      enums.EventGroupOrderCancelled,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.GroupOrderCancelledEvent{} },
		},
		{
			EventType:      enums.EventGroupOrderExpired,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.GroupOrderExpiredEvent{} },
		},
		{
			EventType:      enums.EventDistributionScheduled,
			AggregateType:  enums.AggregateDistributionItem,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.DistributionScheduledEvent{} },
		},
		{
			EventType:      enums.EventDistributionConfirmed,
			AggregateType:  enums.AggregateDistributionItem,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.DistributionConfirmedEvent{} },
		},
		{
			EventType:      enums.EventDistributionCancelled,
			AggregateType:  enums.AggregateDistributionItem,
			Topic:          ordersTopic,
			PayloadFactory: func() interface{} { return &payloads.DistributionCancelledEvent{} },
		},
	} {
		reg.register(desc)
	}

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventParticipantInvited,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.ParticipantInvitedEvent{} },
		},
		{
			EventType:      enums.EventParticipantResponded,
			AggregateType:  enums.AggregateGroupOrder,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.ParticipantRespondedEvent{} },
		},
		{
			EventType:      enums.EventReviewSubmitted,
			AggregateType:  enums.AggregateReview,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.ReviewSubmittedEvent{} },
		},
		{
			EventType:      enums.EventReviewModerated,
			AggregateType:  enums.AggregateReview,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.ReviewModeratedEvent{} },
		},
		{
			EventType:      enums.EventUserRoleChanged,
			AggregateType:  enums.AggregateUser,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.UserRoleChangedEvent{} },
		},
		{
			EventType:      enums.EventNotificationRequested,
			AggregateType:  enums.AggregateNotification,
			Topic:          notificationsTopic,
			PayloadFactory: func() interface{} { return &payloads.NotificationRequestedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
