package grouporders

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

type stubOrderRepo struct {
	orders       map[uuid.UUID]*models.GroupOrder
	participants map[uuid.UUID]*models.GroupOrderParticipant
	items        []models.GroupOrderItem

	statusUpdates      []map[string]any
	participantUpdates map[string]any
	nextOrderNumber    int64
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:          map[uuid.UUID]*models.GroupOrder{},
		participants:    map[uuid.UUID]*models.GroupOrderParticipant{},
		nextOrderNumber: 1000,
	}
}

func (s *stubOrderRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(_ context.Context, order *models.GroupOrder) (*models.GroupOrder, error) {
	order.ID = uuid.New()
	s.nextOrderNumber++
	order.OrderNumber = s.nextOrderNumber
	order.CreatedAt = time.Now().UTC()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) CreateItems(_ context.Context, items []models.GroupOrderItem) error {
	s.items = append(s.items, items...)
	if order, ok := s.orders[items[0].OrderID]; ok {
		order.Items = append(order.Items, items...)
	}
	return nil
}

func (s *stubOrderRepo) CreateParticipant(_ context.Context, p *models.GroupOrderParticipant) error {
	for _, existing := range s.participants {
		if existing.OrderID == p.OrderID && existing.UserID == p.UserID {
			return &duplicateKeyError{}
		}
	}
	p.ID = uuid.New()
	s.participants[p.ID] = p
	if order, ok := s.orders[p.OrderID]; ok {
		order.Participants = append(order.Participants, *p)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.GroupOrder, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) List(_ context.Context, _ listOrdersParams) ([]models.GroupOrder, *pagination.Cursor, error) {
	var out []models.GroupOrder
	for _, order := range s.orders {
		out = append(out, *order)
	}
	return out, nil, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to enums.GroupOrderStatus, updates map[string]any) (int64, error) {
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return 0, nil
	}
	order.Status = to
	s.statusUpdates = append(s.statusUpdates, updates)
	return 1, nil
}

func (s *stubOrderRepo) FindParticipant(_ context.Context, orderID, userID uuid.UUID) (*models.GroupOrderParticipant, error) {
	for _, p := range s.participants {
		if p.OrderID == orderID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) UpdateParticipant(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.participantUpdates = updates
	if p, ok := s.participants[id]; ok {
		if status, ok := updates["status"].(enums.ParticipantStatus); ok {
			p.Status = status
		}
	}
	return nil
}

func (s *stubOrderRepo) FindPendingBefore(_ context.Context, _ time.Time) ([]models.GroupOrder, error) {
	return nil, nil
}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string {
	return `duplicate key value violates unique constraint "group_order_participants_order_user_key"`
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubUserLookup struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func (s *stubUserLookup) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserLookup) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubDistributions struct {
	created []models.DistributionItem
	listed  []models.DistributionItem
}

func (s *stubDistributions) CreateBatch(_ context.Context, _ *gorm.DB, items []models.DistributionItem) error {
	s.created = append(s.created, items...)
	return nil
}

func (s *stubDistributions) ListByOrder(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]models.DistributionItem, error) {
	return s.listed, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type testHarness struct {
	svc     Service
	repo    *stubOrderRepo
	catalog *stubCatalog
	users   *stubUserLookup
	dist    *stubDistributions
	emitter *stubEmitter
}

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db.NewWithConn(conn)
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		repo:    newStubOrderRepo(),
		catalog: &stubCatalog{products: map[uuid.UUID]*models.Product{}},
		users:   &stubUserLookup{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}},
		dist:    &stubDistributions{},
		emitter: &stubEmitter{},
	}
	svc, err := NewService(ServiceParams{
		DB:            newTestClient(t),
		Repo:          h.repo,
		Products:      h.catalog,
		Users:         h.users,
		Distributions: h.dist,
		Outbox:        h.emitter,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func (h *testHarness) addProduct(priceCents int, discount *int) uuid.UUID {
	p := &models.Product{
		ID:                 uuid.New(),
		Name:               "Zip Hoodie",
		PriceCents:         priceCents,
		DiscountPriceCents: discount,
		IsActive:           true,
	}
	h.catalog.products[p.ID] = p
	return p.ID
}

func (h *testHarness) addUser(email string) *models.User {
	u := &models.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Dana",
		LastName:  "Reyes",
	}
	h.users.byEmail[email] = u
	h.users.byID[u.ID] = u
	return u
}

func deptActor(role enums.UserRole, userID uuid.UUID, deptID uuid.UUID) Actor {
	return Actor{UserID: userID, Role: role, DepartmentID: &deptID}
}

func TestCreateSnapshotsPricesAndConfirmsCreator(t *testing.T) {
	h := newHarness(t)
	creator := h.addUser("dana@example.com")
	deptID := uuid.New()

	discount := 800
	discounted := h.addProduct(1000, &discount)
	plain := h.addProduct(500, nil)

	detail, err := h.svc.Create(context.Background(),
		deptActor(enums.UserRoleCustomer, creator.ID, deptID),
		CreateOrderInput{Items: []CreateOrderItemInput{
			{ProductID: discounted, Quantity: 2},
			{ProductID: plain, Quantity: 1},
		}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if detail.TotalCents != 2*800+500 {
		t.Fatalf("expected total 2100, got %d", detail.TotalCents)
	}
	if detail.Status != enums.GroupOrderStatusPending {
		t.Fatalf("expected pending, got %s", detail.Status)
	}
	if len(detail.Participants) != 1 {
		t.Fatalf("expected creator participant, got %d", len(detail.Participants))
	}
	p := detail.Participants[0]
	if p.Status != enums.ParticipantStatusConfirmed || p.JoinedAt == nil {
		t.Fatalf("creator should be confirmed with a join time, got %+v", p)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventGroupOrderCreated {
		t.Fatalf("expected created event, got %+v", h.emitter.events)
	}
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	h := newHarness(t)
	creator := h.addUser("dana@example.com")

	_, err := h.svc.Create(context.Background(),
		deptActor(enums.UserRoleCustomer, creator.ID, uuid.New()),
		CreateOrderInput{Items: []CreateOrderItemInput{{ProductID: uuid.New(), Quantity: 1}}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsDuplicateProducts(t *testing.T) {
	h := newHarness(t)
	creator := h.addUser("dana@example.com")
	product := h.addProduct(500, nil)

	_, err := h.svc.Create(context.Background(),
		deptActor(enums.UserRoleCustomer, creator.ID, uuid.New()),
		CreateOrderInput{Items: []CreateOrderItemInput{
			{ProductID: product, Quantity: 1},
			{ProductID: product, Quantity: 2},
		}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedOrder(h *testHarness, deptID uuid.UUID, status enums.GroupOrderStatus) *models.GroupOrder {
	order := &models.GroupOrder{
		ID:           uuid.New(),
		OrderNumber:  2001,
		DepartmentID: deptID,
		CreatedBy:    uuid.New(),
		Status:       status,
		TotalCents:   1600,
		Items: []models.GroupOrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Cap", Quantity: 2, UnitPriceCents: 300},
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Tee", Quantity: 1, UnitPriceCents: 1000},
		},
	}
	h.repo.orders[order.ID] = order
	return order
}

func TestFinalizeCreatesDistributionItems(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)
	actor := deptActor(enums.UserRoleDeptHead, uuid.New(), deptID)

	detail, err := h.svc.Finalize(context.Background(), actor, order.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if detail.Status != enums.GroupOrderStatusInProgress {
		t.Fatalf("expected in progress, got %s", detail.Status)
	}
	if len(h.dist.created) != 2 {
		t.Fatalf("expected 2 distribution items, got %d", len(h.dist.created))
	}
	for _, item := range h.dist.created {
		if item.Status != enums.DistributionStatusPending {
			t.Fatalf("distribution items should start pending, got %s", item.Status)
		}
		if item.OrderNumber != order.OrderNumber {
			t.Fatalf("expected order number snapshot %d, got %d", order.OrderNumber, item.OrderNumber)
		}
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventGroupOrderFinalized {
		t.Fatalf("expected finalized event, got %+v", h.emitter.events)
	}
}

func TestFinalizeDetectsTotalDrift(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)
	order.TotalCents = 9999

	_, err := h.svc.Finalize(context.Background(),
		deptActor(enums.UserRoleDeptHead, uuid.New(), deptID), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(h.dist.created) != 0 {
		t.Fatal("no distribution items should be created on drift")
	}
	if order.Status != enums.GroupOrderStatusPending {
		t.Fatalf("order should stay pending, got %s", order.Status)
	}
}

func TestFinalizeRequiresPending(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusInProgress)

	_, err := h.svc.Finalize(context.Background(),
		deptActor(enums.UserRoleDeptHead, uuid.New(), deptID), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelRequiresPending(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusCompleted)

	_, err := h.svc.Cancel(context.Background(),
		deptActor(enums.UserRoleDeptHead, uuid.New(), deptID), order.ID, "changed plans")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestInviteUnknownEmailNotFound(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)

	_, err := h.svc.Invite(context.Background(),
		deptActor(enums.UserRoleDeptHead, uuid.New(), deptID), order.ID,
		InviteInput{Email: "ghost@example.com"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInviteDuplicateParticipantConflict(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)
	invitee := h.addUser("sam@example.com")
	actor := deptActor(enums.UserRoleDeptHead, uuid.New(), deptID)

	if _, err := h.svc.Invite(context.Background(), actor, order.ID, InviteInput{Email: "sam@example.com"}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err := h.svc.Invite(context.Background(), actor, order.ID, InviteInput{Email: "Sam@Example.com"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for %s, got %v", invitee.Email, err)
	}
}

func TestRespondRequiresInvitation(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)

	_, err := h.svc.Respond(context.Background(),
		deptActor(enums.UserRoleCustomer, uuid.New(), deptID), order.ID,
		RespondInput{Accept: true})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRespondConfirmSetsJoinTime(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)
	invitee := h.addUser("sam@example.com")
	actor := deptActor(enums.UserRoleDeptHead, uuid.New(), deptID)
	if _, err := h.svc.Invite(context.Background(), actor, order.ID, InviteInput{Email: invitee.Email}); err != nil {
		t.Fatalf("invite: %v", err)
	}

	_, err := h.svc.Respond(context.Background(),
		deptActor(enums.UserRoleCustomer, invitee.ID, deptID), order.ID,
		RespondInput{Accept: true})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if h.repo.participantUpdates["status"] != enums.ParticipantStatusConfirmed {
		t.Fatalf("expected confirmed status update, got %+v", h.repo.participantUpdates)
	}
	if _, ok := h.repo.participantUpdates["joined_at"]; !ok {
		t.Fatal("confirming should record joined_at")
	}

	_, err = h.svc.Respond(context.Background(),
		deptActor(enums.UserRoleCustomer, invitee.ID, deptID), order.ID,
		RespondInput{Accept: false})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("second response should conflict, got %v", err)
	}
}

func TestGetScopesByDepartment(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusPending)

	_, err := h.svc.Get(context.Background(),
		deptActor(enums.UserRoleCustomer, uuid.New(), uuid.New()), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for another department, got %v", err)
	}

	if _, err := h.svc.Get(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleManager}, order.ID); err != nil {
		t.Fatalf("manager should see any department: %v", err)
	}
}

func TestCompleteIfDistributed(t *testing.T) {
	h := newHarness(t)
	deptID := uuid.New()
	order := seedOrder(h, deptID, enums.GroupOrderStatusInProgress)

	h.dist.listed = []models.DistributionItem{
		{Status: enums.DistributionStatusDistributed},
		{Status: enums.DistributionStatusScheduled},
	}
	done, err := h.svc.CompleteIfDistributed(context.Background(), &gorm.DB{}, order.ID)
	if err != nil {
		t.Fatalf("complete check: %v", err)
	}
	if done {
		t.Fatal("order should not complete while an item is still scheduled")
	}

	h.dist.listed[1].Status = enums.DistributionStatusCancelled
	done, err = h.svc.CompleteIfDistributed(context.Background(), &gorm.DB{}, order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done {
		t.Fatal("order should complete once every item is terminal")
	}
	if order.Status != enums.GroupOrderStatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if len(h.emitter.events) != 1 || h.emitter.events[0].EventType != enums.EventGroupOrderCompleted {
		t.Fatalf("expected completed event, got %+v", h.emitter.events)
	}
}

func TestProgressPercent(t *testing.T) {
	participants := []models.GroupOrderParticipant{
		{Status: enums.ParticipantStatusConfirmed},
		{Status: enums.ParticipantStatusConfirmed},
		{Status: enums.ParticipantStatusInvited},
	}
	if got := ProgressPercent(participants); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	if got := ProgressPercent(nil); got != 0 {
		t.Fatalf("expected 0 for empty, got %d", got)
	}
	if got := ProgressPercent(participants[:2]); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}
