package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	productsvc "github.com/merchlane/merchportal-backend/internal/products"
	pkgerrors "github.com/merchlane/merchportal-backend/pkg/errors"
)

type stubProductService struct {
	result     *productsvc.ListResult
	product    *productsvc.ProductDTO
	err        error
	lastParams productsvc.ListParams
}

func (s *stubProductService) List(ctx context.Context, params productsvc.ListParams) (*productsvc.ListResult, error) {
	s.lastParams = params
	return s.result, s.err
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func TestProductListParsesFilters(t *testing.T) {
	deptID := uuid.New()
	svc := &stubProductService{result: &productsvc.ListResult{Products: []productsvc.ProductDTO{}}}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?department_id="+deptID.String()+"&price_min_cents=500&limit=10&q=mug", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastParams.Filters.DepartmentID == nil || *svc.lastParams.Filters.DepartmentID != deptID {
		t.Fatalf("department filter not propagated")
	}
	if svc.lastParams.Filters.PriceMinCents == nil || *svc.lastParams.Filters.PriceMinCents != 500 {
		t.Fatalf("price filter not propagated")
	}
	if svc.lastParams.Filters.IncludeHidden {
		t.Fatalf("public list must not include hidden products")
	}
	if svc.lastParams.Limit != 10 {
		t.Fatalf("unexpected limit: %d", svc.lastParams.Limit)
	}
}

func TestAdminProductListIncludesHidden(t *testing.T) {
	svc := &stubProductService{result: &productsvc.ListResult{}}
	handler := AdminProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.lastParams.Filters.IncludeHidden {
		t.Fatalf("admin list should include hidden products")
	}
}

func TestProductListRejectsBadDepartmentID(t *testing.T) {
	svc := &stubProductService{}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?department_id=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := ProductDetail(svc, nil)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil)
	req = withChiParam(req, "productId", id)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}
