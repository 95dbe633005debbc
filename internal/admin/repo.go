package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// Counts aggregates the portal-wide entity totals for the dashboard.
type Counts struct {
	Users         int64
	Products      int64
	Orders        int64
	Distributions int64
	Reviews       int64
}

// StatsRepository reads the aggregates behind the admin dashboard.
type StatsRepository interface {
	EntityCounts(ctx context.Context) (Counts, error)
	OrdersByStatus(ctx context.Context) (map[enums.GroupOrderStatus]int64, error)
	PendingReviewCount(ctx context.Context) (int64, error)
	CompletedOrderCents(ctx context.Context) (int64, error)
}

type statsRepositoryImpl struct {
	db *gorm.DB
}

// NewStatsRepository builds a stats repository bound to the provided DB.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepositoryImpl{db: db}
}

func (r *statsRepositoryImpl) EntityCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	conn := r.db.WithContext(ctx)

	rows := []struct {
		model any
		dest  *int64
	}{
		{&models.User{}, &counts.Users},
		{&models.Product{}, &counts.Products},
		{&models.GroupOrder{}, &counts.Orders},
		{&models.DistributionItem{}, &counts.Distributions},
		{&models.Review{}, &counts.Reviews},
	}
	for _, row := range rows {
		if err := conn.Model(row.model).Count(row.dest).Error; err != nil {
			return Counts{}, err
		}
	}
	return counts, nil
}

func (r *statsRepositoryImpl) OrdersByStatus(ctx context.Context) (map[enums.GroupOrderStatus]int64, error) {
	var rows []struct {
		Status enums.GroupOrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[enums.GroupOrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *statsRepositoryImpl) PendingReviewCount(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("status = ?", enums.ReviewStatusPending).
		Count(&total).Error
	return total, err
}

func (r *statsRepositoryImpl) CompletedOrderCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Where("status = ?", enums.GroupOrderStatusCompleted).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&total).Error
	return total, err
}
