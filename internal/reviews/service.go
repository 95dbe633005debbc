package reviews

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

// SubmitInput is the payload for a new product review.
type SubmitInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// ModerateInput carries the moderation decision.
type ModerateInput struct {
	Status enums.ReviewStatus `json:"status" validate:"required"`
}

// ReviewDTO is the transport shape for a review.
type ReviewDTO struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	UserName    string             `json:"user_name"`
	ProductID   uuid.UUID          `json:"product_id"`
	Rating      int                `json:"rating"`
	Comment     *string            `json:"comment,omitempty"`
	Status      enums.ReviewStatus `json:"status"`
	ModeratedAt *time.Time         `json:"moderated_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ReviewList pages reviews for the moderation queue.
type ReviewList struct {
	Reviews    []ReviewDTO `json:"reviews"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ListParams configures the moderation queue list.
type ListParams struct {
	Status    *enums.ReviewStatus
	ProductID *uuid.UUID
	Limit     int
	Cursor    string
}

// Service defines the review operations.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*ReviewDTO, error)
	ListAll(ctx context.Context, params ListParams) (*ReviewList, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	Moderate(ctx context.Context, moderatorID uuid.UUID, id uuid.UUID, input ModerateInput) (*ReviewDTO, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies for the review service.
type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Users    userLookup
	Products productLookup
	Outbox   eventEmitter
}

type service struct {
	db       *db.Client
	repo     Repository
	users    userLookup
	products productLookup
	outbox   eventEmitter
}

// NewService wires the review service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		users:    params.Users,
		products: params.Products,
		outbox:   params.Outbox,
	}, nil
}

// Submit creates a review in the moderation queue. The reviewer's display name
// is snapshotted so later profile edits do not rewrite published reviews.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

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

	reviewer, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reviewer")
	}

	var comment *string
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		if trimmed != "" {
			comment = &trimmed
		}
	}

	var created *models.Review
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		review := &models.Review{
			UserID:    userID,
			UserName:  displayName(reviewer),
			ProductID: input.ProductID,
			Rating:    input.Rating,
			Comment:   comment,
			Status:    enums.ReviewStatusPending,
		}
		var err error
		created, err = s.repo.WithTx(tx).Create(ctx, review)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewSubmitted,
			AggregateType: enums.AggregateReview,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.ReviewSubmittedEvent{
				ReviewID:  created.ID,
				ProductID: created.ProductID,
				UserID:    created.UserID,
				Rating:    created.Rating,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	dto := fromModel(created)
	return &dto, nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ReviewList, error) {
	query := listReviewsParams{
		Filters: ListFilters{Status: params.Status, ProductID: params.ProductID},
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	reviews, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}

	result := &ReviewList{Reviews: make([]ReviewDTO, 0, len(reviews))}
	for i := range reviews {
		result.Reviews = append(result.Reviews, fromModel(&reviews[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user reviews")
	}
	return toDTOs(reviews), nil
}

// ListForProduct returns only approved reviews. Pending and rejected reviews
// never leave the moderation queue.
func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListApprovedByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product reviews")
	}
	return toDTOs(reviews), nil
}

// Moderate resolves a pending review. Reviews can only move from PENDING to
// APPROVED or REJECTED, and a decision cannot be revisited.
func (s *service) Moderate(ctx context.Context, moderatorID uuid.UUID, id uuid.UUID, input ModerateInput) (*ReviewDTO, error) {
	if input.Status != enums.ReviewStatusApproved && input.Status != enums.ReviewStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be APPROVED or REJECTED")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		review, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup review")
		}

		now := time.Now().UTC()
		affected, err := repo.UpdateStatus(ctx, review.ID,
			enums.ReviewStatusPending, input.Status,
			map[string]any{"moderated_at": now, "moderated_by": moderatorID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "moderate review")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "review has already been moderated")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewModerated,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Actor:         &outbox.ActorRef{UserID: moderatorID},
			Data: payloads.ReviewModeratedEvent{
				ReviewID:    review.ID,
				ProductID:   review.ProductID,
				Status:      input.Status,
				ModeratedBy: moderatorID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload review")
	}
	dto := fromModel(review)
	return &dto, nil
}

func fromModel(m *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		UserName:    m.UserName,
		ProductID:   m.ProductID,
		Rating:      m.Rating,
		Comment:     m.Comment,
		Status:      m.Status,
		ModeratedAt: m.ModeratedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toDTOs(reviews []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, fromModel(&reviews[i]))
	}
	return out
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
