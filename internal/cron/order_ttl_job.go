package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/internal/grouporders"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	"github.com/merchlane/merchportal-backend/pkg/logger"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/outbox/payloads"
)

const defaultOrderTTLDays = 14

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type pendingOrderReader interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.GroupOrder, error)
}

type transactionalOrderRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.GroupOrderStatus, updates map[string]any) (int64, error)
}

type transactionalRepoFactory func(tx *gorm.DB) transactionalOrderRepo

func defaultTransactionalRepo(tx *gorm.DB) transactionalOrderRepo {
	return grouporders.NewRepository(tx)
}

// OrderTTLJobParams configure the stale order job.
type OrderTTLJobParams struct {
	Logger                   *logger.Logger
	DB                       txRunner
	PendingReader            pendingOrderReader
	Outbox                   outboxEmitter
	TTLDays                  int
	TransactionalRepoFactory transactionalRepoFactory
}

// NewOrderTTLJob builds the cron job that cancels group orders left pending
// past their TTL.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	ttlDays := params.TTLDays
	if ttlDays <= 0 {
		ttlDays = defaultOrderTTLDays
	}
	repoFactory := params.TransactionalRepoFactory
	if repoFactory == nil {
		repoFactory = defaultTransactionalRepo
	}
	return &orderTTLJob{
		logg:          params.Logger,
		db:            params.DB,
		pendingReader: params.PendingReader,
		outbox:        params.Outbox,
		ttlDays:       ttlDays,
		repoFactory:   repoFactory,
		now:           time.Now,
	}, nil
}

type orderTTLJob struct {
	logg          *logger.Logger
	db            txRunner
	pendingReader pendingOrderReader
	outbox        outboxEmitter
	ttlDays       int
	repoFactory   transactionalRepoFactory
	now           func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

func (j *orderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.ttlDays) * 24 * time.Hour)
	orders, err := j.pendingReader.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	expired := 0
	for _, order := range orders {
		if err := j.expireOrder(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(orders),
		"expired":    expired,
		"ttl_days":   j.ttlDays,
	})
	j.logg.Info(logCtx, "stale order sweep complete")
	return multierr.Combine(errs...)
}

func (j *orderTTLJob) expireOrder(ctx context.Context, order models.GroupOrder) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)

		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		if current.Status != enums.GroupOrderStatusPending {
			return nil
		}

		now := j.now().UTC()
		affected, err := repo.UpdateStatus(ctx, order.ID,
			enums.GroupOrderStatusPending, enums.GroupOrderStatusCancelled,
			map[string]any{"canceled_at": now})
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}

		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGroupOrderExpired,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   order.ID,
			OccurredAt:    now,
			Data: payloads.GroupOrderExpiredEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				PendingFor:  now.Sub(order.CreatedAt).Truncate(time.Hour).String(),
			},
		})
	})
}
