package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/pagination"
)

type stubReviewRepo struct {
	reviews       map[uuid.UUID]*models.Review
	statusUpdates map[string]any
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: map[uuid.UUID]*models.Review{}}
}

func (s *stubReviewRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubReviewRepo) Create(_ context.Context, review *models.Review) (*models.Review, error) {
	review.ID = uuid.New()
	review.CreatedAt = time.Now().UTC()
	s.reviews[review.ID] = review
	return review, nil
}

func (s *stubReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	if r, ok := s.reviews[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewRepo) List(_ context.Context, params listReviewsParams) ([]models.Review, *pagination.Cursor, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if params.Filters.Status != nil && r.Status != *params.Filters.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil, nil
}

func (s *stubReviewRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) ListApprovedByProduct(_ context.Context, productID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.ProductID == productID && r.Status == enums.ReviewStatusApproved {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to enums.ReviewStatus, updates map[string]any) (int64, error) {
	review, ok := s.reviews[id]
	if !ok || review.Status != from {
		return 0, nil
	}
	review.Status = to
	s.statusUpdates = updates
	return 1, nil
}

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type harness struct {
	svc      Service
	repo     *stubReviewRepo
	users    *stubUserRepo
	products *stubProductRepo
	emitter  *stubEmitter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	h := &harness{
		repo:     newStubReviewRepo(),
		users:    &stubUserRepo{users: map[uuid.UUID]*models.User{}},
		products: &stubProductRepo{products: map[uuid.UUID]*models.Product{}},
		emitter:  &stubEmitter{},
	}
	svc, err := NewService(ServiceParams{
		DB:       db.NewWithConn(conn),
		Repo:     h.repo,
		Users:    h.users,
		Products: h.products,
		Outbox:   h.emitter,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) addUser() *models.User {
	u := &models.User{ID: uuid.New(), Email: "riley@example.com", FirstName: "Riley", LastName: "Chen"}
	h.users.users[u.ID] = u
	return u
}

func (h *harness) addProduct(active bool) *models.Product {
	p := &models.Product{ID: uuid.New(), Name: "Beanie", PriceCents: 900, IsActive: active}
	h.products.products[p.ID] = p
	return p
}

func TestSubmitQueuesPendingReview(t *testing.T) {
	h := newHarness(t)
	user := h.addUser()
	product := h.addProduct(true)

	comment := "  Runs a bit small.  "
	dto, err := h.svc.Submit(context.Background(), user.ID, SubmitInput{
		ProductID: product.ID,
		Rating:    4,
		Comment:   &comment,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if dto.Status != enums.ReviewStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if dto.UserName != "Riley Chen" {
		t.Fatalf("expected name snapshot, got %q", dto.UserName)
	}
	if dto.Comment == nil || *dto.Comment != "Runs a bit small." {
		t.Fatalf("expected trimmed comment, got %v", dto.Comment)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventReviewSubmitted {
		t.Fatalf("expected submitted event, got %+v", h.emitter.events)
	}
}

func TestSubmitRejectsRatingOutOfRange(t *testing.T) {
	h := newHarness(t)
	user := h.addUser()
	product := h.addProduct(true)

	for _, rating := range []int{0, 6} {
		_, err := h.svc.Submit(context.Background(), user.ID, SubmitInput{
			ProductID: product.ID,
			Rating:    rating,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}
}

func TestSubmitRejectsInactiveProduct(t *testing.T) {
	h := newHarness(t)
	user := h.addUser()
	product := h.addProduct(false)

	_, err := h.svc.Submit(context.Background(), user.ID, SubmitInput{
		ProductID: product.ID,
		Rating:    5,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedReview(h *harness, status enums.ReviewStatus) *models.Review {
	r := &models.Review{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		UserName:  "Riley Chen",
		ProductID: uuid.New(),
		Rating:    3,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	h.repo.reviews[r.ID] = r
	return r
}

func TestModerateApprovesPendingReview(t *testing.T) {
	h := newHarness(t)
	review := seedReview(h, enums.ReviewStatusPending)
	moderator := uuid.New()

	dto, err := h.svc.Moderate(context.Background(), moderator, review.ID,
		ModerateInput{Status: enums.ReviewStatusApproved})
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	if dto.Status != enums.ReviewStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if h.repo.statusUpdates["moderated_by"] != moderator {
		t.Fatalf("expected moderator recorded, got %+v", h.repo.statusUpdates)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventReviewModerated {
		t.Fatalf("expected moderated event, got %+v", h.emitter.events)
	}
}

func TestModerateRejectsRevisit(t *testing.T) {
	h := newHarness(t)
	review := seedReview(h, enums.ReviewStatusApproved)

	_, err := h.svc.Moderate(context.Background(), uuid.New(), review.ID,
		ModerateInput{Status: enums.ReviewStatusRejected})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestModerateRejectsPendingTarget(t *testing.T) {
	h := newHarness(t)
	review := seedReview(h, enums.ReviewStatusPending)

	_, err := h.svc.Moderate(context.Background(), uuid.New(), review.ID,
		ModerateInput{Status: enums.ReviewStatusPending})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListForProductOnlyApproved(t *testing.T) {
	h := newHarness(t)
	approved := seedReview(h, enums.ReviewStatusApproved)
	pending := seedReview(h, enums.ReviewStatusPending)
	pending.ProductID = approved.ProductID

	reviews, err := h.svc.ListForProduct(context.Background(), approved.ProductID)
	if err != nil {
		t.Fatalf("list for product: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ID != approved.ID {
		t.Fatalf("expected only the approved review, got %+v", reviews)
	}
}
