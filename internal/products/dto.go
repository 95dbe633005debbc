package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID                 uuid.UUID `json:"id"`
	DepartmentID       uuid.UUID `json:"department_id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description,omitempty"`
	PriceCents         int       `json:"price_cents"`
	DiscountPriceCents *int      `json:"discount_price_cents,omitempty"`
	ImageURL           *string   `json:"image_url,omitempty"`
	Tags               []string  `json:"tags"`
	StockQty           int       `json:"stock_qty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EffectivePriceCents is the price a buyer pays. A discounted price wins over
// the list price.
func EffectivePriceCents(p *models.Product) int {
	if p == nil {
		return 0
	}
	if p.DiscountPriceCents != nil && *p.DiscountPriceCents >= 0 && *p.DiscountPriceCents < p.PriceCents {
		return *p.DiscountPriceCents
	}
	return p.PriceCents
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	tags := append([]string(nil), p.Tags...)
	if tags == nil {
		tags = []string{}
	}
	return &ProductDTO{
		ID:                 p.ID,
		DepartmentID:       p.DepartmentID,
		Name:               p.Name,
		Description:        p.Description,
		PriceCents:         p.PriceCents,
		DiscountPriceCents: p.DiscountPriceCents,
		ImageURL:           p.ImageURL,
		Tags:               tags,
		StockQty:           p.StockQty,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
