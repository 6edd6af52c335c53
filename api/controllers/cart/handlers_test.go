package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdto "github.com/angelmondragon/storefront-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	couponsvc "github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCarts struct {
	resolution  *cartsvc.Resolution
	err         error
	gotUser     *uuid.UUID
	gotSession  string
	added       cartsvc.AddItemInput
	updatedLine uuid.UUID
	quantity    int
}

func (s *stubCarts) ResolveCart(_ context.Context, userID *uuid.UUID, sessionID string) (*cartsvc.Resolution, error) {
	s.gotUser = userID
	s.gotSession = sessionID
	return s.resolution, s.err
}

func (s *stubCarts) AddItem(_ context.Context, _ uuid.UUID, input cartsvc.AddItemInput) (*models.Cart, error) {
	s.added = input
	return s.resolution.Cart, nil
}

func (s *stubCarts) UpdateItemQuantity(_ context.Context, _, lineID uuid.UUID, quantity int) (*models.Cart, error) {
	s.updatedLine = lineID
	s.quantity = quantity
	return s.resolution.Cart, nil
}

func (s *stubCarts) RemoveItem(_ context.Context, _, lineID uuid.UUID) (*models.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

type stubCoupons struct {
	code   string
	source enums.CouponSource
	err    error
	cart   *models.Cart
}

func (s *stubCoupons) ApplyToCart(_ context.Context, _ uuid.UUID, code string, source enums.CouponSource) (*models.Cart, error) {
	s.code = code
	s.source = source
	return s.cart, s.err
}

func (s *stubCoupons) RemoveFromCart(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

type stubPricer struct{}

func (stubPricer) Price(_ context.Context, c *models.Cart) (*pricing.Result, error) {
	return &pricing.Result{CartID: c.ID, OriginalPrice: 2000, DiscountedPrice: 1650, TotalSavings: 350}, nil
}

func (stubPricer) ResolveCartPricing(_ context.Context, cartID uuid.UUID) (*pricing.Result, error) {
	return &pricing.Result{CartID: cartID, OriginalPrice: 2000, DiscountedPrice: 2000}, nil
}

func testDeps(carts *stubCarts, coupons *stubCoupons) Deps {
	return Deps{
		Carts:   carts,
		Coupons: coupons,
		Pricing: stubPricer{},
		Cookie:  config.CartConfig{SessionCookieName: "cart_session", SessionCookieTTL: time.Hour},
	}
}

func sessionCart() *models.Cart {
	session := uuid.NewString()
	return &models.Cart{ID: uuid.New(), SessionID: &session, Status: enums.CartStatusActive}
}

func findCookie(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGetIssuesSessionCookieForNewCart(t *testing.T) {
	c := sessionCart()
	carts := &stubCarts{resolution: &cartsvc.Resolution{Cart: c, NewSessionID: *c.SessionID}}
	handler := Get(testDeps(carts, nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	cookie := findCookie(resp, "cart_session")
	require.NotNil(t, cookie)
	assert.Equal(t, *c.SessionID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	var envelope struct {
		Data cartdto.CartResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, c.ID, envelope.Data.Cart.ID)
	assert.True(t, envelope.Data.Cart.Anonymous)
	assert.Equal(t, int64(1650), envelope.Data.Pricing.DiscountedPrice)
}

func TestGetClearsCookieAfterMerge(t *testing.T) {
	userID := uuid.New()
	c := &models.Cart{ID: uuid.New(), UserID: &userID, Status: enums.CartStatusActive}
	carts := &stubCarts{resolution: &cartsvc.Resolution{Cart: c, ClearSessionCookie: true, Merged: true}}
	handler := Get(testDeps(carts, nil))

	session := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithUserID(req.Context(), userID)
	ctx = middleware.WithCartSession(ctx, session)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, carts.gotUser)
	assert.Equal(t, userID, *carts.gotUser)
	assert.Equal(t, session, carts.gotSession)
	cookie := findCookie(resp, "cart_session")
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAddItemValidatesBody(t *testing.T) {
	carts := &stubCarts{resolution: &cartsvc.Resolution{Cart: sessionCart()}}
	handler := AddItem(testDeps(carts, nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":0}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	variant := uuid.New()
	resp = httptest.NewRecorder()
	body := `{"variant_id":"` + variant.String() + `","quantity":2}`
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, cartsvc.AddItemInput{VariantID: variant, Quantity: 2}, carts.added)
}

func TestUpdateAndRemoveItemUseLineParam(t *testing.T) {
	carts := &stubCarts{resolution: &cartsvc.Resolution{Cart: sessionCart()}}
	router := chi.NewRouter()
	router.Patch("/api/v1/cart/items/{lineId}", UpdateItem(testDeps(carts, nil)))
	router.Delete("/api/v1/cart/items/{lineId}", RemoveItem(testDeps(carts, nil)))

	lineID := uuid.New()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+lineID.String(), strings.NewReader(`{"quantity":4}`)))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, lineID, carts.updatedLine)
	assert.Equal(t, 4, carts.quantity)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/nope", strings.NewReader(`{"quantity":4}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+lineID.String(), nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestApplyCouponUsesCartSource(t *testing.T) {
	c := sessionCart()
	coupons := &stubCoupons{cart: c}
	handler := ApplyCoupon(testDeps(&stubCarts{resolution: &cartsvc.Resolution{Cart: c}}, coupons))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"code":" save10 "}`)))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "save10", coupons.code)
	assert.Equal(t, enums.CouponSourceCart, coupons.source)
}

func TestApplyCouponKeepsInteriorSpaces(t *testing.T) {
	c := sessionCart()
	coupons := &stubCoupons{cart: c}
	handler := ApplyCoupon(testDeps(&stubCarts{resolution: &cartsvc.Resolution{Cart: c}}, coupons))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"code":"  Summer Sale\t"}`)))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Summer Sale", coupons.code)
	assert.Equal(t, "summer sale", couponsvc.Normalize(coupons.code))
}

func TestApplyCouponSurfacesCouponError(t *testing.T) {
	c := sessionCart()
	coupons := &stubCoupons{err: pkgerrors.New(pkgerrors.CodeCouponRequiresUser, "sign in to use this coupon")}
	handler := ApplyCoupon(testDeps(&stubCarts{resolution: &cartsvc.Resolution{Cart: c}}, coupons))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"code":"members"}`)))

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeCouponRequiresUser))
}

func TestPricingEndpoint(t *testing.T) {
	c := sessionCart()
	handler := Pricing(testDeps(&stubCarts{resolution: &cartsvc.Resolution{Cart: c}}, nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart/pricing", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data pricing.Result `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, c.ID, envelope.Data.CartID)
}

func TestResolveFailure(t *testing.T) {
	handler := Get(testDeps(&stubCarts{err: pkgerrors.New(pkgerrors.CodeDependency, "load session cart")}, nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
