package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// DistributionItem is a post-finalize fulfillment record tracking the physical
// handoff of one line item. Status moves PENDING to SCHEDULED to DISTRIBUTED,
// with cancellation allowed only out of PENDING.
type DistributionItem struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index"`
	OrderNumber     int64                    `gorm:"column:order_number;not null"`
	ProductID       uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string                   `gorm:"column:product_name;not null"`
	Quantity        int                      `gorm:"column:quantity;not null"`
	Status          enums.DistributionStatus `gorm:"column:status;type:distribution_status;not null;default:'PENDING'"`
	AssignedTo      *uuid.UUID               `gorm:"column:assigned_to;type:uuid;index"`
	AssignedToName  *string                  `gorm:"column:assigned_to_name"`
	ScheduledDate   *time.Time               `gorm:"column:scheduled_date"`
	DistributedDate *time.Time               `gorm:"column:distributed_date"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
