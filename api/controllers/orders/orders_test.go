package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	internalorders "github.com/angelmondragon/storefront-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubOrdersService struct {
	get  func(ctx context.Context, userID, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	list func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error)
}

func (s stubOrdersService) Get(ctx context.Context, userID, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.get(ctx, userID, orderID)
}

func (s stubOrdersService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
	return s.list(ctx, userID, params)
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func TestListPassesPagination(t *testing.T) {
	userID := uuid.New()
	var got pagination.Params
	svc := stubOrdersService{
		list: func(_ context.Context, uid uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			got = params
			return &internalorders.OrderList{Orders: []internalorders.OrderDTO{{ID: uuid.New()}}, NextCursor: "next"}, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&cursor=abc", nil), userID)
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Limit != 5 || got.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", got)
	}
	var envelope struct {
		Data internalorders.OrderList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.NextCursor != "next" || len(envelope.Data.Orders) != 1 {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
}

func TestListRejectsBadLimit(t *testing.T) {
	svc := stubOrdersService{}
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=1000", nil), uuid.New())
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	List(stubOrdersService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestDetail(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := stubOrdersService{
		get: func(_ context.Context, uid, oid uuid.UUID) (*internalorders.OrderDTO, error) {
			if oid != orderID {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return &internalorders.OrderDTO{ID: oid, TotalCents: 2050}, nil
		},
	}
	router := chi.NewRouter()
	router.Get("/api/v1/orders/{orderId}", Detail(svc, nil))

	cases := []struct {
		name   string
		path   string
		status int
	}{
		{name: "owned", path: "/api/v1/orders/" + orderID.String(), status: http.StatusOK},
		{name: "missing", path: "/api/v1/orders/" + uuid.NewString(), status: http.StatusNotFound},
		{name: "malformed", path: "/api/v1/orders/not-a-uuid", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, withUser(httptest.NewRequest(http.MethodGet, tc.path, nil), userID))
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}
