package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

// ListParams configures the public browse endpoint.
type ListParams struct {
	Filters ProductListFilters
	Limit   int
	Cursor  string
}

// ListResult wraps returned products and the cursor for the next page.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput carries the fields an admin supplies for a new listing.
type CreateProductInput struct {
	DepartmentID       uuid.UUID `json:"department_id" validate:"required"`
	Name               string    `json:"name" validate:"required"`
	Description        *string   `json:"description,omitempty"`
	PriceCents         int       `json:"price_cents" validate:"required,min=1"`
	DiscountPriceCents *int      `json:"discount_price_cents,omitempty"`
	ImageURL           *string   `json:"image_url,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	StockQty           int       `json:"stock_qty" validate:"min=0"`
}

// UpdateProductInput carries the mutable fields for an existing listing.
type UpdateProductInput struct {
	Name               *string  `json:"name,omitempty"`
	Description        *string  `json:"description,omitempty"`
	PriceCents         *int     `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	DiscountPriceCents *int     `json:"discount_price_cents,omitempty"`
	ImageURL           *string  `json:"image_url,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	StockQty           *int     `json:"stock_qty,omitempty" validate:"omitempty,min=0"`
	IsActive           *bool    `json:"is_active,omitempty"`
}

// Service defines catalog operations for the HTTP layer.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Filters.PriceMinCents != nil && params.Filters.PriceMaxCents != nil &&
		*params.Filters.PriceMinCents > *params.Filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min price exceeds max price")
	}

	query := listProductsParams{
		Filters: params.Filters,
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	result := &ListResult{Products: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		result.Products = append(result.Products, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateDiscount(input.PriceCents, input.DiscountPriceCents); err != nil {
		return nil, err
	}

	product := &models.Product{
		DepartmentID:       input.DepartmentID,
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		PriceCents:         input.PriceCents,
		DiscountPriceCents: input.DiscountPriceCents,
		ImageURL:           input.ImageURL,
		Tags:               input.Tags,
		StockQty:           input.StockQty,
		IsActive:           true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	price := current.PriceCents
	if input.PriceCents != nil {
		price = *input.PriceCents
		updates["price_cents"] = price
	}
	if input.DiscountPriceCents != nil {
		if err := validateDiscount(price, input.DiscountPriceCents); err != nil {
			return nil, err
		}
		updates["discount_price_cents"] = *input.DiscountPriceCents
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.StockQty != nil {
		updates["stock_qty"] = *input.StockQty
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return FromModel(current), nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	return FromModel(updated), nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
	}
	return nil
}

func validateDiscount(priceCents int, discount *int) error {
	if discount == nil {
		return nil
	}
	if *discount < 0 || *discount >= priceCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount price must be below the list price")
	}
	return nil
}
