package distributions

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

type stubDistRepo struct {
	items         map[uuid.UUID]*models.DistributionItem
	statusUpdates map[string]any
}

func newStubDistRepo() *stubDistRepo {
	return &stubDistRepo{items: map[uuid.UUID]*models.DistributionItem{}}
}

func (s *stubDistRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubDistRepo) CreateBatch(_ context.Context, _ *gorm.DB, items []models.DistributionItem) error {
	for i := range items {
		items[i].ID = uuid.New()
		s.items[items[i].ID] = &items[i]
	}
	return nil
}

func (s *stubDistRepo) FindByID(_ context.Context, id uuid.UUID) (*models.DistributionItem, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDistRepo) List(_ context.Context, _ listItemsParams) ([]models.DistributionItem, *pagination.Cursor, error) {
	var out []models.DistributionItem
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil, nil
}

func (s *stubDistRepo) ListByOrder(_ context.Context, _ *gorm.DB, orderID uuid.UUID) ([]models.DistributionItem, error) {
	var out []models.DistributionItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubDistRepo) ListByAssignee(_ context.Context, userID uuid.UUID) ([]models.DistributionItem, error) {
	var out []models.DistributionItem
	for _, item := range s.items {
		if item.AssignedTo != nil && *item.AssignedTo == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubDistRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to enums.DistributionStatus, updates map[string]any) (int64, error) {
	item, ok := s.items[id]
	if !ok || item.Status != from {
		return 0, nil
	}
	item.Status = to
	s.statusUpdates = updates
	if v, ok := updates["assigned_to"].(uuid.UUID); ok {
		item.AssignedTo = &v
	}
	if v, ok := updates["assigned_to_name"].(string); ok {
		item.AssignedToName = &v
	}
	if v, ok := updates["scheduled_date"].(time.Time); ok {
		item.ScheduledDate = &v
	}
	if v, ok := updates["distributed_date"].(time.Time); ok {
		item.DistributedDate = &v
	}
	return 1, nil
}

type stubUsers struct {
	byID map[uuid.UUID]*models.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCompleter struct {
	calls []uuid.UUID
}

func (s *stubCompleter) CompleteIfDistributed(_ context.Context, _ *gorm.DB, orderID uuid.UUID) (bool, error) {
	s.calls = append(s.calls, orderID)
	return false, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type harness struct {
	svc       Service
	repo      *stubDistRepo
	users     *stubUsers
	completer *stubCompleter
	emitter   *stubEmitter
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
		repo:      newStubDistRepo(),
		users:     &stubUsers{byID: map[uuid.UUID]*models.User{}},
		completer: &stubCompleter{},
		emitter:   &stubEmitter{},
	}
	svc, err := NewService(ServiceParams{
		DB:     db.NewWithConn(conn),
		Repo:   h.repo,
		Users:  h.users,
		Orders: h.completer,
		Outbox: h.emitter,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) addUser(first, last string) *models.User {
	u := &models.User{ID: uuid.New(), Email: "u@example.com", FirstName: first, LastName: last}
	h.users.byID[u.ID] = u
	return u
}

func (h *harness) seedItem(status enums.DistributionStatus, assignedTo *uuid.UUID) *models.DistributionItem {
	item := &models.DistributionItem{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		OrderNumber: 3001,
		ProductID:   uuid.New(),
		ProductName: "Crewneck",
		Quantity:    4,
		Status:      status,
		AssignedTo:  assignedTo,
	}
	h.repo.items[item.ID] = item
	return item
}

func TestScheduleDefaultsAssigneeToCaller(t *testing.T) {
	h := newHarness(t)
	distributor := h.addUser("Kai", "Moreno")
	item := h.seedItem(enums.DistributionStatusPending, nil)

	dto, err := h.svc.Schedule(context.Background(),
		Actor{UserID: distributor.ID, Role: enums.UserRoleDistributor},
		item.ID, ScheduleInput{ScheduledDate: time.Now().Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if dto.Status != enums.DistributionStatusScheduled {
		t.Fatalf("expected scheduled, got %s", dto.Status)
	}
	if dto.AssignedTo == nil || *dto.AssignedTo != distributor.ID {
		t.Fatalf("expected assignment to caller, got %v", dto.AssignedTo)
	}
	if dto.AssignedToName == nil || *dto.AssignedToName != "Kai Moreno" {
		t.Fatalf("expected assignee name snapshot, got %v", dto.AssignedToName)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventDistributionScheduled {
		t.Fatalf("expected scheduled event, got %+v", h.emitter.events)
	}
}

func TestScheduleOtherRequiresElevatedRole(t *testing.T) {
	h := newHarness(t)
	distributor := h.addUser("Kai", "Moreno")
	other := h.addUser("Noa", "Varga")
	item := h.seedItem(enums.DistributionStatusPending, nil)

	_, err := h.svc.Schedule(context.Background(),
		Actor{UserID: distributor.ID, Role: enums.UserRoleDistributor},
		item.ID, ScheduleInput{ScheduledDate: time.Now(), AssignedTo: &other.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	dto, err := h.svc.Schedule(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleManager},
		item.ID, ScheduleInput{ScheduledDate: time.Now(), AssignedTo: &other.ID})
	if err != nil {
		t.Fatalf("manager assignment: %v", err)
	}
	if dto.AssignedTo == nil || *dto.AssignedTo != other.ID {
		t.Fatalf("expected assignment to %s, got %v", other.ID, dto.AssignedTo)
	}
}

func TestScheduleRequiresPending(t *testing.T) {
	h := newHarness(t)
	distributor := h.addUser("Kai", "Moreno")
	item := h.seedItem(enums.DistributionStatusScheduled, &distributor.ID)

	_, err := h.svc.Schedule(context.Background(),
		Actor{UserID: distributor.ID, Role: enums.UserRoleDistributor},
		item.ID, ScheduleInput{ScheduledDate: time.Now()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConfirmAssigneeOnly(t *testing.T) {
	h := newHarness(t)
	distributor := h.addUser("Kai", "Moreno")
	item := h.seedItem(enums.DistributionStatusScheduled, &distributor.ID)

	_, err := h.svc.Confirm(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleDistributor}, item.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-assignee, got %v", err)
	}

	dto, err := h.svc.Confirm(context.Background(),
		Actor{UserID: distributor.ID, Role: enums.UserRoleDistributor}, item.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if dto.Status != enums.DistributionStatusDistributed {
		t.Fatalf("expected distributed, got %s", dto.Status)
	}
	if dto.DistributedDate == nil {
		t.Fatal("expected distributed date set")
	}
	if len(h.completer.calls) != 1 || h.completer.calls[0] != item.OrderID {
		t.Fatalf("expected order completion check for %s, got %v", item.OrderID, h.completer.calls)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventDistributionConfirmed {
		t.Fatalf("expected confirmed event, got %+v", h.emitter.events)
	}
}

func TestConfirmRequiresScheduled(t *testing.T) {
	h := newHarness(t)
	admin := h.addUser("Ada", "Quinn")
	item := h.seedItem(enums.DistributionStatusPending, nil)

	_, err := h.svc.Confirm(context.Background(),
		Actor{UserID: admin.ID, Role: enums.UserRoleAdmin}, item.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelOnlyFromPending(t *testing.T) {
	h := newHarness(t)
	admin := h.addUser("Ada", "Quinn")
	scheduled := h.seedItem(enums.DistributionStatusScheduled, &admin.ID)

	_, err := h.svc.Cancel(context.Background(),
		Actor{UserID: admin.ID, Role: enums.UserRoleAdmin}, scheduled.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	pending := h.seedItem(enums.DistributionStatusPending, nil)
	dto, err := h.svc.Cancel(context.Background(),
		Actor{UserID: admin.ID, Role: enums.UserRoleAdmin}, pending.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dto.Status != enums.DistributionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.Status)
	}
}

func TestListForUserReturnsOnlyAssigned(t *testing.T) {
	h := newHarness(t)
	distributor := h.addUser("Kai", "Moreno")
	h.seedItem(enums.DistributionStatusScheduled, &distributor.ID)
	h.seedItem(enums.DistributionStatusPending, nil)

	items, err := h.svc.ListForUser(context.Background(), distributor.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 assigned item, got %d", len(items))
	}
}
