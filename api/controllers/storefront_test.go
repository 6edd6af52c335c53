package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubShipping struct {
	quotes []shipping.Quote
	err    error
}

func (s stubShipping) QuoteForUser(context.Context, uuid.UUID, uuid.UUID) ([]shipping.Quote, error) {
	return s.quotes, s.err
}

func (stubShipping) ResolveForOrder(context.Context, shipping.OrderInput) (*shipping.OrderShipping, error) {
	return nil, errors.New("not used")
}

func TestShippingQuotes(t *testing.T) {
	methodID := uuid.New()
	svc := stubShipping{quotes: []shipping.Quote{{MethodID: methodID, MethodType: "STANDARD", Cost: 400}}}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/shipping/quotes?address_id="+uuid.NewString(), nil), uuid.New())
	resp := httptest.NewRecorder()
	ShippingQuotes(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data struct {
			Quotes []shipping.Quote `json:"quotes"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Quotes, 1)
	assert.Equal(t, methodID, envelope.Data.Quotes[0].MethodID)
	assert.Equal(t, int64(400), envelope.Data.Quotes[0].Cost)
}

func TestShippingQuotesErrors(t *testing.T) {
	resp := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/shipping/quotes", nil), uuid.New())
	ShippingQuotes(stubShipping{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	req = authed(httptest.NewRequest(http.MethodGet, "/api/v1/shipping/quotes?address_id="+uuid.NewString(), nil), uuid.New())
	ShippingQuotes(stubShipping{err: pkgerrors.New(pkgerrors.CodeAddressAbsent, "address not found")}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeAddressAbsent))
}

type stubAddresses struct {
	list      []models.Address
	defaulted uuid.UUID
}

func (s *stubAddresses) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Address, error) {
	return nil, errors.New("not used")
}

func (s *stubAddresses) List(context.Context, uuid.UUID) ([]models.Address, error) {
	return s.list, nil
}

func (s *stubAddresses) SetDefault(_ context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	s.defaulted = addressID
	return &models.Address{ID: addressID, UserID: userID, City: "Lahore", IsDefault: true}, nil
}

func TestAddressEndpoints(t *testing.T) {
	userID := uuid.New()
	svc := &stubAddresses{list: []models.Address{{ID: uuid.New(), UserID: userID, City: "Karachi"}}}
	router := chi.NewRouter()
	router.Get("/api/v1/addresses", AddressList(svc, nil))
	router.Put("/api/v1/addresses/{addressId}/default", AddressSetDefault(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/v1/addresses", nil), userID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"city":"Karachi"`)

	addressID := uuid.New()
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPut, "/api/v1/addresses/"+addressID.String()+"/default", nil), userID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, addressID, svc.defaulted)
	assert.Contains(t, resp.Body.String(), `"is_default":true`)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPut, "/api/v1/addresses/bad/default", nil), userID))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubDiscountAdmin struct {
	input discounts.Input
	id    uuid.UUID
}

func (s *stubDiscountAdmin) Create(_ context.Context, input discounts.Input) (*models.Discount, error) {
	s.input = input
	return &models.Discount{ID: uuid.New(), Name: input.Name, Scope: input.Scope, DiscountType: input.Type, DiscountValue: input.Value, ProductIDs: input.TargetIDs}, nil
}

func (s *stubDiscountAdmin) Update(_ context.Context, id uuid.UUID, input discounts.Input) (*models.Discount, error) {
	s.id = id
	s.input = input
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
}

func TestAdminDiscountEndpoints(t *testing.T) {
	svc := &stubDiscountAdmin{}
	router := chi.NewRouter()
	router.Post("/api/admin/v1/discounts", AdminCreateDiscount(svc, nil))
	router.Put("/api/admin/v1/discounts/{discountId}", AdminUpdateDiscount(svc, nil))

	productID := uuid.New()
	body := `{"name":"Summer","scope":"PRODUCT","discount_type":"PERCENTAGE","discount_value":15,` +
		`"is_active":true,"start_date":"2026-06-01T00:00:00Z","end_date":"2026-09-01T00:00:00Z",` +
		`"target_ids":["` + productID.String() + `"]}`

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/discounts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, enums.DiscountScopeProduct, svc.input.Scope)
	assert.Equal(t, enums.DiscountTypePercentage, svc.input.Type)
	assert.Equal(t, []uuid.UUID{productID}, svc.input.TargetIDs)
	assert.True(t, svc.input.StartDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, resp.Body.String(), productID.String())

	discountID := uuid.New()
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/admin/v1/discounts/"+discountID.String(), strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, discountID, svc.id)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/discounts", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubCouponAdmin struct {
	input coupons.Input
}

func (s *stubCouponAdmin) Create(_ context.Context, input coupons.Input) (*models.Coupon, error) {
	s.input = input
	return &models.Coupon{ID: uuid.New(), Code: "save10", DiscountType: input.Type, DiscountValue: input.Value, MaxRedemptionsPerUser: input.MaxRedemptionsPerUser}, nil
}

func TestAdminCreateCoupon(t *testing.T) {
	svc := &stubCouponAdmin{}
	body := `{"code":"SAVE10","discount_type":"FIXED","discount_value":500,"is_active":true,` +
		`"start_date":"2026-01-01T00:00:00Z","end_date":"2026-12-31T00:00:00Z","max_redemptions_per_user":1}`

	resp := httptest.NewRecorder()
	AdminCreateCoupon(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/coupons", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "SAVE10", svc.input.Code)
	require.NotNil(t, svc.input.MaxRedemptionsPerUser)
	assert.Equal(t, int64(1), *svc.input.MaxRedemptionsPerUser)
	assert.Contains(t, resp.Body.String(), `"code":"save10"`)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-Storefront-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"redis":"ok"`)

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("refused")}}).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), `"redis":"down"`)
}
