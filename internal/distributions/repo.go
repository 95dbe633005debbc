package distributions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

// ListFilters scope the distribution list.
type ListFilters struct {
	Status     *enums.DistributionStatus
	AssignedTo *uuid.UUID
	OrderID    *uuid.UUID
}

type listItemsParams struct {
	Filters ListFilters
	Limit   int
	Cursor  *pagination.Cursor
}

// Repository defines persistence operations for distribution items. The batch
// helpers take an explicit transaction so order finalization can create the
// fan-out rows atomically with the status flip.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, tx *gorm.DB, items []models.DistributionItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionItem, error)
	List(ctx context.Context, params listItemsParams) ([]models.DistributionItem, *pagination.Cursor, error)
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.DistributionItem, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]models.DistributionItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.DistributionStatus, updates map[string]any) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a distributions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, tx *gorm.DB, items []models.DistributionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&items).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionItem, error) {
	var item models.DistributionItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listItemsParams) ([]models.DistributionItem, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.DistributionItem{})

	if params.Filters.Status != nil {
		query = query.Where("status = ?", *params.Filters.Status)
	}
	if params.Filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *params.Filters.AssignedTo)
	}
	if params.Filters.OrderID != nil {
		query = query.Where("order_id = ?", *params.Filters.OrderID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.DistributionItem
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&items).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return items, next, nil
}

func (r *repositoryImpl) ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.DistributionItem, error) {
	var items []models.DistributionItem
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *repositoryImpl) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]models.DistributionItem, error) {
	var items []models.DistributionItem
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

// UpdateStatus applies a guarded transition. Zero rows affected means the item
// was not in the expected source status.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.DistributionStatus, updates map[string]any) (int64, error) {
	if !from.CanTransitionTo(to) {
		return 0, fmt.Errorf("distribution transition %s -> %s is not allowed", from, to)
	}
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.DistributionItem{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return result.RowsAffected, result.Error
}
