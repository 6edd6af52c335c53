package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

func (m *memoryRedis) Ping(context.Context) error {
	return nil
}

type stubCartService struct {
	cart *models.Cart
}

func (s stubCartService) ResolveCart(_ context.Context, userID *uuid.UUID, sessionID string) (*cart.Resolution, error) {
	res := &cart.Resolution{Cart: s.cart}
	if userID == nil && sessionID == "" {
		res.NewSessionID = uuid.NewString()
	}
	return res, nil
}

func (s stubCartService) AddItem(context.Context, uuid.UUID, cart.AddItemInput) (*models.Cart, error) {
	return s.cart, nil
}

func (s stubCartService) UpdateItemQuantity(context.Context, uuid.UUID, uuid.UUID, int) (*models.Cart, error) {
	return s.cart, nil
}

func (s stubCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*models.Cart, error) {
	return s.cart, nil
}

type stubCouponService struct {
	cart *models.Cart
}

func (s stubCouponService) ApplyToCart(context.Context, uuid.UUID, string, enums.CouponSource) (*models.Cart, error) {
	return s.cart, nil
}

func (s stubCouponService) RemoveFromCart(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, nil
}

type stubPricer struct{}

func (stubPricer) Price(_ context.Context, c *models.Cart) (*pricing.Result, error) {
	return &pricing.Result{CartID: c.ID}, nil
}

func (stubPricer) ResolveCartPricing(_ context.Context, cartID uuid.UUID) (*pricing.Result, error) {
	return &pricing.Result{CartID: cartID}, nil
}

type stubCheckout struct {
	calls int
}

func (s *stubCheckout) PlaceOrder(_ context.Context, input checkout.PlaceOrderInput) (*models.Order, error) {
	s.calls++
	return &models.Order{ID: uuid.New(), UserID: input.UserID, Status: enums.OrderStatusPlaced, PaymentMethod: enums.PaymentMethodCOD}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "storefront", ExpirationMinutes: 60},
		Cart: config.CartConfig{
			SessionCookieName: "cart_session",
			SessionCookieTTL:  time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			CouponWindow:       time.Minute,
			CouponIPLimit:      100,
			CouponSessionLimit: 2,
		},
	}
}

type harness struct {
	handler  http.Handler
	cfg      *config.Config
	checkout *stubCheckout
}

func newHarness(t *testing.T) harness {
	t.Helper()
	cfg := testConfig()
	anon := uuid.NewString()
	c := &models.Cart{ID: uuid.New(), SessionID: &anon, Status: enums.CartStatusActive}
	co := &stubCheckout{}
	reg := prometheus.NewRegistry()
	metrics.NewPricingMetrics(reg).IncCouponResult("applied")

	handler := NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       stubPinger{},
		Redis:    newMemoryRedis(),
		Gatherer: reg,
		Carts:    stubCartService{cart: c},
		Coupons:  stubCouponService{cart: c},
		Pricing:  stubPricer{},
		Checkout: co,
	})
	return harness{handler: handler, cfg: cfg, checkout: co}
}

func (h harness) token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h harness) do(method, path, token, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	if resp := h.do(http.MethodGet, "/health/live", "", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected live 200, got %d", resp.Code)
	}
	if resp := h.do(http.MethodGet, "/health/ready", "", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected ready 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp := h.do(http.MethodGet, "/metrics", "", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "storefront_coupon_validations_total") {
		t.Fatalf("expected metrics exposition, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnonymousCartGetsSessionCookie(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodGet, "/api/v1/cart", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Header().Get("Set-Cookie"), "cart_session=") {
		t.Fatalf("expected cart session cookie, got %q", resp.Header().Get("Set-Cookie"))
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestCartRejectsInvalidBearer(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodGet, "/api/v1/cart", "not-a-token", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCouponApplyIsRateLimitedPerSession(t *testing.T) {
	h := newHarness(t)
	cookie := map[string]string{"Cookie": "cart_session=" + uuid.NewString()}

	for i := 0; i < 2; i++ {
		if resp := h.do(http.MethodPost, "/api/v1/cart/coupon", "", `{"code":"save10"}`, cookie); resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d: %s", i, resp.Code, resp.Body.String())
		}
	}
	resp := h.do(http.MethodPost, "/api/v1/cart/coupon", "", `{"code":"save10"}`, cookie)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestCheckoutRequiresAuthAndIdempotencyKey(t *testing.T) {
	h := newHarness(t)
	body := `{"address_id":"` + uuid.NewString() + `"}`

	if resp := h.do(http.MethodPost, "/api/v1/checkout", "", body, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	token := h.token(t, enums.UserRoleCustomer)
	if resp := h.do(http.MethodPost, "/api/v1/checkout", token, body, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", resp.Code)
	}

	key := map[string]string{"Idempotency-Key": uuid.NewString()}
	first := h.do(http.MethodPost, "/api/v1/checkout", token, body, key)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}
	second := h.do(http.MethodPost, "/api/v1/checkout", token, body, key)
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed response, got %d: %s", second.Code, second.Body.String())
	}
	if h.checkout.calls != 1 {
		t.Fatalf("expected one checkout call, got %d", h.checkout.calls)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t)
	body := `{"code":"x"}`

	if resp := h.do(http.MethodPost, "/api/admin/v1/coupons", "", body, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	customer := h.token(t, enums.UserRoleCustomer)
	if resp := h.do(http.MethodPost, "/api/admin/v1/coupons", customer, body, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	admin := h.token(t, enums.UserRoleAdmin)
	resp := h.do(http.MethodPost, "/api/admin/v1/coupons", admin, body, map[string]string{"Idempotency-Key": "k1"})
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden {
		t.Fatalf("expected admin to pass auth, got %d", resp.Code)
	}
}
