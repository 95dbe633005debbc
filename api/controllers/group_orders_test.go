package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/api/middleware"
	ordersvc "github.com/merchlane/merchportal-backend/internal/grouporders"
	"github.com/merchlane/merchportal-backend/pkg/enums"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
)

type stubOrderService struct {
	detail    *ordersvc.OrderDetailDTO
	list      *ordersvc.OrderList
	err       error
	lastActor ordersvc.Actor
}

func (s *stubOrderService) Create(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) List(ctx context.Context, actor ordersvc.Actor, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
	s.lastActor = actor
	return s.list, s.err
}

func (s *stubOrderService) Get(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) Finalize(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, actor ordersvc.Actor, id uuid.UUID, reason string) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) Invite(ctx context.Context, actor ordersvc.Actor, id uuid.UUID, input ordersvc.InviteInput) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) Respond(ctx context.Context, actor ordersvc.Actor, id uuid.UUID, input ordersvc.RespondInput) (*ordersvc.OrderDetailDTO, error) {
	s.lastActor = actor
	return s.detail, s.err
}

func (s *stubOrderService) CompleteIfDistributed(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	return false, nil
}

func withChiParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func actorContext(req *http.Request, userID uuid.UUID, role enums.UserRole, deptID *uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role.String())
	if deptID != nil {
		ctx = middleware.WithDepartmentID(ctx, deptID.String())
	}
	return req.WithContext(ctx)
}

func TestGroupOrderCreateBuildsActorFromContext(t *testing.T) {
	userID := uuid.New()
	deptID := uuid.New()
	svc := &stubOrderService{detail: &ordersvc.OrderDetailDTO{ID: uuid.New()}}
	handler := GroupOrderCreate(svc, nil)

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/group", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = actorContext(req, userID, enums.UserRoleCustomer, &deptID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastActor.UserID != userID {
		t.Fatalf("unexpected actor user: %s", svc.lastActor.UserID)
	}
	if svc.lastActor.DepartmentID == nil || *svc.lastActor.DepartmentID != deptID {
		t.Fatalf("actor department not propagated")
	}
}

func TestGroupOrderCreateRejectsEmptyItems(t *testing.T) {
	svc := &stubOrderService{}
	handler := GroupOrderCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/group", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req = actorContext(req, uuid.New(), enums.UserRoleCustomer, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGroupOrderListRejectsBadStatusFilter(t *testing.T) {
	svc := &stubOrderService{list: &ordersvc.OrderList{}}
	handler := GroupOrderList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/group?status=BOGUS", nil)
	req = actorContext(req, uuid.New(), enums.UserRoleManager, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGroupOrderRespondMapsForbidden(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not invited to this order")}
	handler := GroupOrderRespond(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/group/"+uuid.NewString()+"/respond", strings.NewReader(`{"accept":true}`))
	req.Header.Set("Content-Type", "application/json")
	req = actorContext(req, uuid.New(), enums.UserRoleCustomer, nil)
	req = withChiParam(req, "orderId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "not invited to this order" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestGroupOrderDetailRejectsBadID(t *testing.T) {
	svc := &stubOrderService{}
	handler := GroupOrderDetail(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/group/not-a-uuid", nil)
	req = actorContext(req, uuid.New(), enums.UserRoleCustomer, nil)
	req = withChiParam(req, "orderId", "not-a-uuid")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
