package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem persists product-level snapshots tied to a CartRecord. The
// discounted unit price, when set, wins over the list price for line totals.
type CartItem struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID             uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index;uniqueIndex:cart_items_cart_product_key"`
	ProductID          uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_cart_product_key"`
	ProductName        string    `gorm:"column:product_name;not null"`
	Quantity           int       `gorm:"column:quantity;not null"`
	UnitPriceCents     int       `gorm:"column:unit_price_cents;not null"`
	DiscountPriceCents *int      `gorm:"column:discount_price_cents"`
	ImageURL           *string   `gorm:"column:image_url"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
