package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/internal/products"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
)

// AddItemInput is the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateItemInput adjusts the quantity of an existing line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// Service defines cart operations for the HTTP layer.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	db       *db.Client
	repo     Repository
	products products.Repository
}

// NewService wires cart dependencies.
func NewService(client *db.Client, repo Repository, productRepo products.Repository) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repository required")
	}
	return &service{db: client, repo: repo, products: productRepo}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.CartRecord{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return record, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record, err = repo.Create(ctx, &models.CartRecord{UserID: userID})
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		item := &models.CartItem{
			CartID:             record.ID,
			ProductID:          product.ID,
			ProductName:        product.Name,
			Quantity:           input.Quantity,
			UnitPriceCents:     product.PriceCents,
			DiscountPriceCents: product.DiscountPriceCents,
			ImageURL:           product.ImageURL,
		}
		if err := repo.UpsertItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
		}
		return s.recalculate(ctx, repo, record.ID, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		affected, err := repo.UpdateItemQuantity(ctx, record.ID, productID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return s.recalculate(ctx, repo, record.ID, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		affected, err := repo.RemoveItem(ctx, record.ID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return s.recalculate(ctx, repo, record.ID, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		if err := repo.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return repo.UpdateTotal(ctx, record.ID, 0)
	})
}

func (s *service) recalculate(ctx context.Context, repo Repository, cartID, userID uuid.UUID) error {
	record, err := repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	if err := repo.UpdateTotal(ctx, cartID, TotalCents(record.Items)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart total")
	}
	return nil
}

// TotalCents sums the line totals. A discounted unit price wins over the list
// price for its line.
func TotalCents(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		unit := item.UnitPriceCents
		if item.DiscountPriceCents != nil && *item.DiscountPriceCents >= 0 && *item.DiscountPriceCents < unit {
			unit = *item.DiscountPriceCents
		}
		total += unit * item.Quantity
	}
	return total
}
