package grouporders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

// ListFilters scope the order list.
type ListFilters struct {
	DepartmentID *uuid.UUID
	Status       *enums.GroupOrderStatus
}

type listOrdersParams struct {
	Filters ListFilters
	Limit   int
	Cursor  *pagination.Cursor
}

// Repository defines persistence operations for group orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.GroupOrder) (*models.GroupOrder, error)
	CreateItems(ctx context.Context, items []models.GroupOrderItem) error
	CreateParticipant(ctx context.Context, participant *models.GroupOrderParticipant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error)
	List(ctx context.Context, params listOrdersParams) ([]models.GroupOrder, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.GroupOrderStatus, updates map[string]any) (int64, error)
	FindParticipant(ctx context.Context, orderID, userID uuid.UUID) (*models.GroupOrderParticipant, error)
	UpdateParticipant(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.GroupOrder, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a group orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.GroupOrder) (*models.GroupOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repositoryImpl) CreateItems(ctx context.Context, items []models.GroupOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repositoryImpl) CreateParticipant(ctx context.Context, participant *models.GroupOrderParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error) {
	var order models.GroupOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("invited_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listOrdersParams) ([]models.GroupOrder, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.GroupOrder{}).
		Preload("Items").
		Preload("Participants")
	if params.Filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *params.Filters.DepartmentID)
	}
	if params.Filters.Status != nil {
		query = query.Where("status = ?", *params.Filters.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.GroupOrder
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		orders = orders[:normalized]
		last := orders[len(orders)-1]
		return orders, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return orders, nil, nil
}

// UpdateStatus performs a guarded transition. Zero rows affected means the
// order was not in the expected source status.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.GroupOrderStatus, updates map[string]any) (int64, error) {
	if !from.CanTransitionTo(to) {
		return 0, fmt.Errorf("group order transition %s -> %s is not allowed", from, to)
	}
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindParticipant(ctx context.Context, orderID, userID uuid.UUID) (*models.GroupOrderParticipant, error) {
	var participant models.GroupOrderParticipant
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repositoryImpl) UpdateParticipant(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupOrderParticipant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.GroupOrder, error) {
	var orders []models.GroupOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.GroupOrderStatusPending, cutoff).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
