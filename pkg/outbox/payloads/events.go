package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// GroupOrderCreatedEvent signals a new department group order.
type GroupOrderCreatedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  int64     `json:"order_number"`
	DepartmentID uuid.UUID `json:"department_id"`
	CreatedBy    uuid.UUID `json:"created_by"`
	TotalCents   int       `json:"total_cents"`
	ItemCount    int       `json:"item_count"`
}

// GroupOrderFinalizedEvent is emitted when a pending order moves in progress.
type GroupOrderFinalizedEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	OrderNumber       int64     `json:"order_number"`
	DepartmentID      uuid.UUID `json:"department_id"`
	TotalCents        int       `json:"total_cents"`
	DistributionCount int       `json:"distribution_count"`
	FinalizedAt       time.Time `json:"finalized_at"`
}

// GroupOrderCompletedEvent reports every distribution item reaching a terminal state.
type GroupOrderCompletedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  int64     `json:"order_number"`
	DepartmentID uuid.UUID `json:"department_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// GroupOrderCancelledEvent is emitted when a pending order is cancelled.
type GroupOrderCancelledEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  int64     `json:"order_number"`
	DepartmentID uuid.UUID `json:"department_id"`
	CanceledAt   time.Time `json:"canceled_at"`
	Reason       string    `json:"reason,omitempty"`
}

// GroupOrderExpiredEvent reports a stale pending order cancelled by the cron job.
type GroupOrderExpiredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	PendingFor  string    `json:"pending_for"`
}

// ParticipantInvitedEvent tells downstream systems to notify the invitee.
type ParticipantInvitedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	InvitedAt   time.Time `json:"invited_at"`
}

// ParticipantRespondedEvent records a confirm or decline.
type ParticipantRespondedEvent struct {
	OrderID uuid.UUID               `json:"order_id"`
	UserID  uuid.UUID               `json:"user_id"`
	Status  enums.ParticipantStatus `json:"status"`
}

// DistributionScheduledEvent is emitted when a distributor claims an item.
type DistributionScheduledEvent struct {
	DistributionID uuid.UUID `json:"distribution_id"`
	OrderID        uuid.UUID `json:"order_id"`
	AssignedTo     uuid.UUID `json:"assigned_to"`
	ScheduledDate  time.Time `json:"scheduled_date"`
}

// DistributionConfirmedEvent reports a completed physical handoff.
type DistributionConfirmedEvent struct {
	DistributionID  uuid.UUID `json:"distribution_id"`
	OrderID         uuid.UUID `json:"order_id"`
	AssignedTo      uuid.UUID `json:"assigned_to"`
	DistributedDate time.Time `json:"distributed_date"`
}

// DistributionCancelledEvent reports a pending item voided alongside its order.
type DistributionCancelledEvent struct {
	DistributionID uuid.UUID `json:"distribution_id"`
	OrderID        uuid.UUID `json:"order_id"`
}

// ReviewSubmittedEvent signals a new review awaiting moderation.
type ReviewSubmittedEvent struct {
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
}

// ReviewModeratedEvent records the moderation decision.
type ReviewModeratedEvent struct {
	ReviewID    uuid.UUID          `json:"review_id"`
	ProductID   uuid.UUID          `json:"product_id"`
	Status      enums.ReviewStatus `json:"status"`
	ModeratedBy uuid.UUID          `json:"moderated_by"`
}

// UserRoleChangedEvent reports an admin role assignment.
type UserRoleChangedEvent struct {
	UserID    uuid.UUID      `json:"user_id"`
	OldRole   enums.UserRole `json:"old_role"`
	NewRole   enums.UserRole `json:"new_role"`
	ChangedBy uuid.UUID      `json:"changed_by"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	UserID  uuid.UUID `json:"user_id"`
	Type    string    `json:"type"`
	Subject string    `json:"subject,omitempty"`
}
