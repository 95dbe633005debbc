package grouporders

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line of a new group order.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CreateOrderInput is the payload for opening a group order.
type CreateOrderInput struct {
	Items []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// InviteInput identifies the member to invite by email.
type InviteInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RespondInput carries an invited participant's decision.
type RespondInput struct {
	Accept bool `json:"accept"`
}

// OrderItemDTO is the transport shape for a snapshotted line item.
type OrderItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Position       int       `json:"position"`
}

// ParticipantDTO is the transport shape for an order participant.
type ParticipantDTO struct {
	ID        uuid.UUID               `json:"id"`
	UserID    uuid.UUID               `json:"user_id"`
	UserName  string                  `json:"user_name"`
	Status    enums.ParticipantStatus `json:"status"`
	InvitedAt time.Time               `json:"invited_at"`
	JoinedAt  *time.Time              `json:"joined_at,omitempty"`
}

// OrderSummaryDTO is the list-view shape of a group order.
type OrderSummaryDTO struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      int64                  `json:"order_number"`
	DepartmentID     uuid.UUID              `json:"department_id"`
	Status           enums.GroupOrderStatus `json:"status"`
	TotalCents       int                    `json:"total_cents"`
	ItemCount        int                    `json:"item_count"`
	ParticipantCount int                    `json:"participant_count"`
	CreatedAt        time.Time              `json:"created_at"`
}

// OrderDetailDTO is the full order payload including derived progress.
type OrderDetailDTO struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     int64                  `json:"order_number"`
	DepartmentID    uuid.UUID              `json:"department_id"`
	CreatedBy       uuid.UUID              `json:"created_by"`
	Status          enums.GroupOrderStatus `json:"status"`
	TotalCents      int                    `json:"total_cents"`
	Items           []OrderItemDTO         `json:"items"`
	Participants    []ParticipantDTO       `json:"participants"`
	ProgressPercent int                    `json:"progress_percent"`
	FinalizedAt     *time.Time             `json:"finalized_at,omitempty"`
	CanceledAt      *time.Time             `json:"canceled_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func summaryFromModel(order *models.GroupOrder) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		DepartmentID:     order.DepartmentID,
		Status:           order.Status,
		TotalCents:       order.TotalCents,
		ItemCount:        len(order.Items),
		ParticipantCount: len(order.Participants),
		CreatedAt:        order.CreatedAt,
	}
}

func detailFromModel(order *models.GroupOrder) *OrderDetailDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Position:       item.Position,
		})
	}

	participants := make([]ParticipantDTO, 0, len(order.Participants))
	for _, p := range order.Participants {
		participants = append(participants, ParticipantDTO{
			ID:        p.ID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			Status:    p.Status,
			InvitedAt: p.InvitedAt,
			JoinedAt:  p.JoinedAt,
		})
	}

	return &OrderDetailDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		DepartmentID:    order.DepartmentID,
		CreatedBy:       order.CreatedBy,
		Status:          order.Status,
		TotalCents:      order.TotalCents,
		Items:           items,
		Participants:    participants,
		ProgressPercent: ProgressPercent(order.Participants),
		FinalizedAt:     order.FinalizedAt,
		CanceledAt:      order.CanceledAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
