package grouporders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/internal/products"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/outbox/payloads"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

// Actor identifies the authenticated caller for scoping decisions.
type Actor struct {
	UserID       uuid.UUID
	Role         enums.UserRole
	DepartmentID *uuid.UUID
}

func (a Actor) seesAllDepartments() bool {
	return a.Role == enums.UserRoleAdmin || a.Role == enums.UserRoleManager
}

// ListParams configures the order list endpoint.
type ListParams struct {
	Status *enums.GroupOrderStatus
	Limit  int
	Cursor string
}

// Service defines the group order workflow operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDetailDTO, error)
	List(ctx context.Context, actor Actor, params ListParams) (*OrderList, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDetailDTO, error)
	Finalize(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDetailDTO, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*OrderDetailDTO, error)
	Invite(ctx context.Context, actor Actor, id uuid.UUID, input InviteInput) (*OrderDetailDTO, error)
	Respond(ctx context.Context, actor Actor, id uuid.UUID, input RespondInput) (*OrderDetailDTO, error)
	CompleteIfDistributed(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type distributionCreator interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []models.DistributionItem) error
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.DistributionItem, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies for the group order service.
type ServiceParams struct {
	DB            *db.Client
	Repo          Repository
	Products      productCatalog
	Users         userLookup
	Distributions distributionCreator
	Outbox        eventEmitter
}

type service struct {
	db            *db.Client
	repo          Repository
	products      productCatalog
	users         userLookup
	distributions distributionCreator
	outbox        eventEmitter
}

// NewService wires the group order workflow.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("group orders repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Distributions == nil {
		return nil, fmt.Errorf("distributions repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:            params.DB,
		repo:          params.Repo,
		products:      params.Products,
		users:         params.Users,
		distributions: params.Distributions,
		outbox:        params.Outbox,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDetailDTO, error) {
	if actor.DepartmentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "caller has no department")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	seen := map[uuid.UUID]bool{}
	for _, item := range input.Items {
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in items")
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	creator, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup creator")
	}

	var orderID uuid.UUID
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.GroupOrder{
			DepartmentID: *actor.DepartmentID,
			CreatedBy:    actor.UserID,
			Status:       enums.GroupOrderStatusPending,
		}

		items := make([]models.GroupOrderItem, 0, len(input.Items))
		total := 0
		for i, line := range input.Items {
			product, ok := byID[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
			}
			unit := products.EffectivePriceCents(product)
			total += unit * line.Quantity
			items = append(items, models.GroupOrderItem{
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: unit,
				Position:       i,
			})
		}
		order.TotalCents = total

		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		orderID = created.ID

		for i := range items {
			items[i].OrderID = created.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}

		now := time.Now().UTC()
		participant := &models.GroupOrderParticipant{
			OrderID:   created.ID,
			UserID:    actor.UserID,
			UserName:  displayName(creator),
			Status:    enums.ParticipantStatusConfirmed,
			InvitedAt: now,
			JoinedAt:  &now,
		}
		if err := repo.CreateParticipant(ctx, participant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add creator participant")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGroupOrderCreated,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   created.ID,
			Actor:         actorRef(actor),
			Data: payloads.GroupOrderCreatedEvent{
				OrderID:      created.ID,
				OrderNumber:  created.OrderNumber,
				DepartmentID: created.DepartmentID,
				CreatedBy:    created.CreatedBy,
				TotalCents:   created.TotalCents,
				ItemCount:    len(items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, orderID)
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) (*OrderList, error) {
	filters := ListFilters{Status: params.Status}
	if !actor.seesAllDepartments() {
		if actor.DepartmentID == nil {
			return &OrderList{Orders: []OrderSummaryDTO{}}, nil
		}
		filters.DepartmentID = actor.DepartmentID
	}

	query := listOrdersParams{Filters: filters, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	orders, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	result := &OrderList{Orders: make([]OrderSummaryDTO, 0, len(orders))}
	for i := range orders {
		result.Orders = append(result.Orders, summaryFromModel(&orders[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.findOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, order); err != nil {
		return nil, err
	}
	return detailFromModel(order), nil
}

// Finalize re-verifies the stored total against the item sum, locks the order
// into IN_PROGRESS, and fans out one pending distribution item per line.
func (s *service) Finalize(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDetailDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.findOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.authorizeManage(actor, order); err != nil {
			return err
		}
		if order.Status != enums.GroupOrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		recomputed := 0
		for _, item := range order.Items {
			recomputed += item.UnitPriceCents * item.Quantity
		}
		if recomputed != order.TotalCents {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order total does not match its items")
		}

		now := time.Now().UTC()
		affected, err := repo.UpdateStatus(ctx, order.ID,
			enums.GroupOrderStatusPending, enums.GroupOrderStatusInProgress,
			map[string]any{"finalized_at": now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		distributions := make([]models.DistributionItem, 0, len(order.Items))
		for _, item := range order.Items {
			distributions = append(distributions, models.DistributionItem{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Status:      enums.DistributionStatusPending,
			})
		}
		if err := s.distributions.CreateBatch(ctx, tx, distributions); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create distribution items")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGroupOrderFinalized,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.GroupOrderFinalizedEvent{
				OrderID:           order.ID,
				OrderNumber:       order.OrderNumber,
				DepartmentID:      order.DepartmentID,
				TotalCents:        order.TotalCents,
				DistributionCount: len(distributions),
				FinalizedAt:       now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, id)
}

func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*OrderDetailDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.findOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.authorizeManage(actor, order); err != nil {
			return err
		}
		if order.Status != enums.GroupOrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}

		now := time.Now().UTC()
		affected, err := repo.UpdateStatus(ctx, order.ID,
			enums.GroupOrderStatusPending, enums.GroupOrderStatusCancelled,
			map[string]any{"canceled_at": now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGroupOrderCancelled,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.GroupOrderCancelledEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				DepartmentID: order.DepartmentID,
				CanceledAt:   now,
				Reason:       strings.TrimSpace(reason),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, id)
}

func (s *service) Invite(ctx context.Context, actor Actor, id uuid.UUID, input InviteInput) (*OrderDetailDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.findOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.authorizeManage(actor, order); err != nil {
			return err
		}
		if order.Status != enums.GroupOrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invitations are closed")
		}

		invitee, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no user with that email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup invitee")
		}

		now := time.Now().UTC()
		participant := &models.GroupOrderParticipant{
			OrderID:   order.ID,
			UserID:    invitee.ID,
			UserName:  displayName(invitee),
			Status:    enums.ParticipantStatusInvited,
			InvitedAt: now,
		}
		if err := repo.CreateParticipant(ctx, participant); err != nil {
			if db.IsUniqueViolation(err, "group_order_participants_order_user_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "user already participates in this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add participant")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventParticipantInvited,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.ParticipantInvitedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      invitee.ID,
				Email:       invitee.Email,
				InvitedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, id)
}

func (s *service) Respond(ctx context.Context, actor Actor, id uuid.UUID, input RespondInput) (*OrderDetailDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.findOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status != enums.GroupOrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "responses are closed")
		}

		participant, err := repo.FindParticipant(ctx, order.ID, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "not invited to this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup participant")
		}
		if participant.Status != enums.ParticipantStatusInvited {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation already answered")
		}

		status := enums.ParticipantStatusDeclined
		updates := map[string]any{"status": status}
		if input.Accept {
			status = enums.ParticipantStatusConfirmed
			now := time.Now().UTC()
			updates["status"] = status
			updates["joined_at"] = now
		}
		if err := repo.UpdateParticipant(ctx, participant.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update participant")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventParticipantResponded,
			AggregateType: enums.AggregateGroupOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.ParticipantRespondedEvent{
				OrderID: order.ID,
				UserID:  actor.UserID,
				Status:  status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, id)
}

// CompleteIfDistributed closes the order once every distribution item has
// reached a terminal status. It runs inside the caller's transaction so the
// completing update commits atomically with the triggering confirmation.
func (s *service) CompleteIfDistributed(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	repo := s.repo.WithTx(tx)

	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.Status != enums.GroupOrderStatusInProgress {
		return false, nil
	}

	items, err := s.distributions.ListByOrder(ctx, tx, orderID)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, nil
	}
	for _, item := range items {
		if !item.Status.IsTerminal() {
			return false, nil
		}
	}

	now := time.Now().UTC()
	affected, err := repo.UpdateStatus(ctx, orderID,
		enums.GroupOrderStatusInProgress, enums.GroupOrderStatusCompleted, nil)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventGroupOrderCompleted,
		AggregateType: enums.AggregateGroupOrder,
		AggregateID:   orderID,
		Data: payloads.GroupOrderCompletedEvent{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			DepartmentID: order.DepartmentID,
			CompletedAt:  now,
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) findOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.GroupOrder, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return order, nil
}

func (s *service) authorizeRead(actor Actor, order *models.GroupOrder) error {
	if actor.seesAllDepartments() {
		return nil
	}
	if actor.DepartmentID == nil || *actor.DepartmentID != order.DepartmentID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another department")
	}
	return nil
}

func (s *service) authorizeManage(actor Actor, order *models.GroupOrder) error {
	if actor.Role == enums.UserRoleAdmin {
		return nil
	}
	if actor.DepartmentID == nil || *actor.DepartmentID != order.DepartmentID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another department")
	}
	return nil
}

func (s *service) loadDetail(ctx context.Context, id uuid.UUID) (*OrderDetailDTO, error) {
	order, err := s.findOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return detailFromModel(order), nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:       actor.UserID,
		DepartmentID: actor.DepartmentID,
		Role:         string(actor.Role),
	}
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
