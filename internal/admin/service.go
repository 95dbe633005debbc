package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/internal/users"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/outbox/payloads"
)

// StatsDTO is the dashboard snapshot.
type StatsDTO struct {
	TotalUsers         int64                            `json:"total_users"`
	TotalProducts      int64                            `json:"total_products"`
	TotalOrders        int64                            `json:"total_orders"`
	TotalDistributions int64                            `json:"total_distributions"`
	TotalReviews       int64                            `json:"total_reviews"`
	OrdersByStatus     map[enums.GroupOrderStatus]int64 `json:"orders_by_status"`
	PendingReviews     int64                            `json:"pending_reviews"`
	CompletedGMV       string                           `json:"completed_gmv"`
}

// ChangeRoleInput assigns a new role to a user.
type ChangeRoleInput struct {
	Role enums.UserRole `json:"role" validate:"required"`
}

// UserList pages the back office user table.
type UserList struct {
	Users []users.UserDTO `json:"users"`
	Total int64           `json:"total"`
}

// ListUsersParams filters the back office user table.
type ListUsersParams struct {
	Role   *enums.UserRole
	Limit  int
	Offset int
}

// Service defines the admin back office operations.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
	RecentUsers(ctx context.Context, limit int) ([]users.UserDTO, error)
	ListUsers(ctx context.Context, params ListUsersParams) (*UserList, error)
	ChangeRole(ctx context.Context, adminID, userID uuid.UUID, input ChangeRoleInput) (*users.UserDTO, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListRecent(ctx context.Context, limit int) ([]models.User, error)
	List(ctx context.Context, role *enums.UserRole, limit, offset int) ([]models.User, int64, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies for the admin service.
type ServiceParams struct {
	DB     *db.Client
	Stats  StatsRepository
	Users  userDirectory
	Outbox eventEmitter
}

type service struct {
	db     *db.Client
	stats  StatsRepository
	users  userDirectory
	outbox eventEmitter
}

// NewService wires the admin back office service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		stats:  params.Stats,
		users:  params.Users,
		outbox: params.Outbox,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.stats.EntityCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count entities")
	}
	byStatus, err := s.stats.OrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "group orders by status")
	}
	pendingReviews, err := s.stats.PendingReviewCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending reviews")
	}
	completedCents, err := s.stats.CompletedOrderCents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum completed orders")
	}

	return &StatsDTO{
		TotalUsers:         counts.Users,
		TotalProducts:      counts.Products,
		TotalOrders:        counts.Orders,
		TotalDistributions: counts.Distributions,
		TotalReviews:       counts.Reviews,
		OrdersByStatus:     byStatus,
		PendingReviews:     pendingReviews,
		CompletedGMV:       GMVDollars(completedCents),
	}, nil
}

// GMVDollars renders a cent total as a fixed two-decimal dollar string.
func GMVDollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func (s *service) RecentUsers(ctx context.Context, limit int) ([]users.UserDTO, error) {
	rows, err := s.users.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent users")
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListUsers(ctx context.Context, params ListUsersParams) (*UserList, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.users.List(ctx, params.Role, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	result := &UserList{Users: make([]users.UserDTO, 0, len(rows)), Total: total}
	for i := range rows {
		result.Users = append(result.Users, *users.FromModel(&rows[i]))
	}
	return result, nil
}

// ChangeRole assigns a new role. The update and the audit event commit
// together.
func (s *service) ChangeRole(ctx context.Context, adminID, userID uuid.UUID, input ChangeRoleInput) (*users.UserDTO, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	if adminID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot change your own role")
	}

	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	oldRole := target.Role
	if oldRole == input.Role {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has that role")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := users.NewRepository(tx).UpdateRole(ctx, userID, input.Role); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRoleChanged,
			AggregateType: enums.AggregateUser,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.UserRoleChangedEvent{
				UserID:    userID,
				OldRole:   oldRole,
				NewRole:   input.Role,
				ChangedBy: adminID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	target.Role = input.Role
	return users.FromModel(target), nil
}
