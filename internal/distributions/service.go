package distributions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/outbox/payloads"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

// Actor identifies the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ListParams configures the back office distribution list.
type ListParams struct {
	Status *enums.DistributionStatus
	Limit  int
	Cursor string
}

// Service defines the distribution tracking operations.
type Service interface {
	ListAll(ctx context.Context, params ListParams) (*ItemList, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	Schedule(ctx context.Context, actor Actor, id uuid.UUID, input ScheduleInput) (*ItemDTO, error)
	Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*ItemDTO, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*ItemDTO, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type orderCompleter interface {
	CompleteIfDistributed(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies for the distribution service.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Users  userLookup
	Orders orderCompleter
	Outbox eventEmitter
}

type service struct {
	db     *db.Client
	repo   Repository
	users  userLookup
	orders orderCompleter
	outbox eventEmitter
}

// NewService wires the distribution tracking service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("distributions repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order completer is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		users:  params.Users,
		orders: params.Orders,
		outbox: params.Outbox,
	}, nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ItemList, error) {
	query := listItemsParams{
		Filters: ListFilters{Status: params.Status},
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	items, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list distributions")
	}

	result := &ItemList{Items: make([]ItemDTO, 0, len(items))}
	for i := range items {
		result.Items = append(result.Items, fromModel(&items[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.repo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assigned distributions")
	}
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, fromModel(&items[i]))
	}
	return out, nil
}

// Schedule claims a pending item. The assignee defaults to the caller. Only
// admins and managers may assign someone else.
func (s *service) Schedule(ctx context.Context, actor Actor, id uuid.UUID, input ScheduleInput) (*ItemDTO, error) {
	if input.ScheduledDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled date is required")
	}

	assigneeID := actor.UserID
	if input.AssignedTo != nil && *input.AssignedTo != actor.UserID {
		if actor.Role != enums.UserRoleAdmin && actor.Role != enums.UserRoleManager {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot assign another distributor")
		}
		assigneeID = *input.AssignedTo
	}

	assignee, err := s.users.FindByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup assignee")
	}
	assigneeName := displayName(assignee)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.findItem(ctx, repo, id)
		if err != nil {
			return err
		}

		scheduled := input.ScheduledDate.UTC()
		affected, err := repo.UpdateStatus(ctx, item.ID,
			enums.DistributionStatusPending, enums.DistributionStatusScheduled,
			map[string]any{
				"assigned_to":      assigneeID,
				"assigned_to_name": assigneeName,
				"scheduled_date":   scheduled,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "schedule distribution")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item is not pending")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDistributionScheduled,
			AggregateType: enums.AggregateDistributionItem,
			AggregateID:   item.ID,
			Actor:         actorRef(actor),
			Data: payloads.DistributionScheduledEvent{
				DistributionID: item.ID,
				OrderID:        item.OrderID,
				AssignedTo:     assigneeID,
				ScheduledDate:  scheduled,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadItem(ctx, id)
}

// Confirm records the physical handoff and closes the parent order once its
// last item reaches a terminal status.
func (s *service) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*ItemDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.findItem(ctx, repo, id)
		if err != nil {
			return err
		}
		if actor.Role != enums.UserRoleAdmin {
			if item.AssignedTo == nil || *item.AssignedTo != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "item is assigned to someone else")
			}
		}

		now := time.Now().UTC()
		affected, err := repo.UpdateStatus(ctx, item.ID,
			enums.DistributionStatusScheduled, enums.DistributionStatusDistributed,
			map[string]any{"distributed_date": now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm distribution")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item is not scheduled")
		}

		assignedTo := actor.UserID
		if item.AssignedTo != nil {
			assignedTo = *item.AssignedTo
		}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDistributionConfirmed,
			AggregateType: enums.AggregateDistributionItem,
			AggregateID:   item.ID,
			Actor:         actorRef(actor),
			Data: payloads.DistributionConfirmedEvent{
				DistributionID:  item.ID,
				OrderID:         item.OrderID,
				AssignedTo:      assignedTo,
				DistributedDate: now,
			},
		})
		if err != nil {
			return err
		}

		_, err = s.orders.CompleteIfDistributed(ctx, tx, item.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadItem(ctx, id)
}

// Cancel voids an item that has not been scheduled yet.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*ItemDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.findItem(ctx, repo, id)
		if err != nil {
			return err
		}

		affected, err := repo.UpdateStatus(ctx, item.ID,
			enums.DistributionStatusPending, enums.DistributionStatusCancelled, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel distribution")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending items can be cancelled")
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDistributionCancelled,
			AggregateType: enums.AggregateDistributionItem,
			AggregateID:   item.ID,
			Actor:         actorRef(actor),
			Data: payloads.DistributionCancelledEvent{
				DistributionID: item.ID,
				OrderID:        item.OrderID,
			},
		})
		if err != nil {
			return err
		}

		// Cancelling the last open item can complete the order.
		_, err = s.orders.CompleteIfDistributed(ctx, tx, item.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadItem(ctx, id)
}

func (s *service) findItem(ctx context.Context, repo Repository, id uuid.UUID) (*models.DistributionItem, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distribution item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup distribution item")
	}
	return item, nil
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.findItem(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(item)
	return &dto, nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
