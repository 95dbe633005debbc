package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing scoped to a department.
type Product struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DepartmentID       uuid.UUID      `gorm:"column:department_id;type:uuid;not null;index"`
	Name               string         `gorm:"column:name;not null"`
	Description        *string        `gorm:"column:description"`
	PriceCents         int            `gorm:"column:price_cents;not null"`
	DiscountPriceCents *int           `gorm:"column:discount_price_cents"`
	ImageURL           *string        `gorm:"column:image_url"`
	Tags               pq.StringArray `gorm:"column:tags;type:text[]"`
	StockQty           int            `gorm:"column:stock_qty;not null;default:0"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
