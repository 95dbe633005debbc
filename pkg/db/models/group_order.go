package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// GroupOrder is a department-scoped bulk order aggregating line items and
// participant confirmations. TotalCents is derived from the items and
// re-verified before the order is finalized.
type GroupOrder struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber  int64                   `gorm:"column:order_number;not null;uniqueIndex;autoIncrement"`
	DepartmentID uuid.UUID               `gorm:"column:department_id;type:uuid;not null;index"`
	CreatedBy    uuid.UUID               `gorm:"column:created_by;type:uuid;not null"`
	Status       enums.GroupOrderStatus  `gorm:"column:status;type:group_order_status;not null;default:'PENDING'"`
	TotalCents   int                     `gorm:"column:total_cents;not null;default:0"`
	Items        []GroupOrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Participants []GroupOrderParticipant `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	FinalizedAt  *time.Time              `gorm:"column:finalized_at"`
	CanceledAt   *time.Time              `gorm:"column:canceled_at"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
