package distributions

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// ScheduleInput claims a pending item for physical handoff.
type ScheduleInput struct {
	ScheduledDate time.Time  `json:"scheduled_date" validate:"required"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
}

// ItemDTO is the transport shape for a distribution item.
type ItemDTO struct {
	ID              uuid.UUID                `json:"id"`
	OrderID         uuid.UUID                `json:"order_id"`
	OrderNumber     int64                    `json:"order_number"`
	ProductID       uuid.UUID                `json:"product_id"`
	ProductName     string                   `json:"product_name"`
	Quantity        int                      `json:"quantity"`
	Status          enums.DistributionStatus `json:"status"`
	AssignedTo      *uuid.UUID               `json:"assigned_to,omitempty"`
	AssignedToName  *string                  `json:"assigned_to_name,omitempty"`
	ScheduledDate   *time.Time               `json:"scheduled_date,omitempty"`
	DistributedDate *time.Time               `json:"distributed_date,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ItemList pages distribution items for the back office view.
type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func fromModel(m *models.DistributionItem) ItemDTO {
	return ItemDTO{
		ID:              m.ID,
		OrderID:         m.OrderID,
		OrderNumber:     m.OrderNumber,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		Status:          m.Status,
		AssignedTo:      m.AssignedTo,
		AssignedToName:  m.AssignedToName,
		ScheduledDate:   m.ScheduledDate,
		DistributedDate: m.DistributedDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
