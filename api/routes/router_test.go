package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/internal/auth"
	"github.com/brewlinehq/brewline-backend/internal/cart"
	checkoutsvc "github.com/brewlinehq/brewline-backend/internal/checkout"
	"github.com/brewlinehq/brewline-backend/internal/deliveries"
	"github.com/brewlinehq/brewline-backend/internal/orders"
	"github.com/brewlinehq/brewline-backend/internal/users"
	pkgAuth "github.com/brewlinehq/brewline-backend/pkg/auth"
	"github.com/brewlinehq/brewline-backend/pkg/auth/session"
	"github.com/brewlinehq/brewline-backend/pkg/config"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserResponse, error) {
	return &users.UserResponse{}, nil
}

func (stubRegisterService) CreateStaff(ctx context.Context, req auth.CreateStaffRequest) (*users.UserResponse, error) {
	return &users.UserResponse{}, nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, customerID uuid.UUID) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (stubCartService) AddItem(ctx context.Context, customerID uuid.UUID, req cart.AddItemRequest) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (stubCartService) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*cart.Response, error) {
	return &cart.Response{}, nil
}

func (stubCartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, customerID uuid.UUID, req checkoutsvc.Request) (*orders.OrderResponse, error) {
	return &orders.OrderResponse{}, nil
}

type stubOrderService struct{}

func (stubOrderService) Get(ctx context.Context, actor visibility.Actor, orderID uuid.UUID) (*orders.OrderResponse, error) {
	return &orders.OrderResponse{ID: orderID}, nil
}

func (stubOrderService) List(ctx context.Context, actor visibility.Actor, filters orders.ListFilters) (*orders.ListResponse, error) {
	return &orders.ListResponse{Orders: []orders.OrderResponse{}}, nil
}

func (stubOrderService) Transition(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*orders.OrderResponse, error) {
	return &orders.OrderResponse{ID: orderID, Status: target}, nil
}

type stubDeliveryService struct{}

func (stubDeliveryService) List(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) (*deliveries.ListResponse, error) {
	return &deliveries.ListResponse{Deliveries: []deliveries.Response{}}, nil
}

func (stubDeliveryService) Get(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*deliveries.Response, error) {
	return &deliveries.Response{}, nil
}

func (stubDeliveryService) StartTransit(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*deliveries.Response, error) {
	return &deliveries.Response{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "brewline-test",
			ExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 5,
			LoginIPLimit:    20,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Sessions:        stubSessionManager{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		CartService:     stubCartService{},
		CheckoutService: stubCheckoutService{},
		OrderService:    stubOrderService{},
		DeliveryService: stubDeliveryService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, branchID *uuid.UUID) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		BranchID: branchID,
		JTI:      session.NewAccessID(),
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRequiresCustomerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	branchID := uuid.New()

	staff := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff, &branchID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff got %d", resp.Code)
	}

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer got %d", resp.Code)
	}
}

func TestAdminCoffeeCreateRequiresElevatedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/coffees", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}
}

func TestDeliveryListVisibleToAgents(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	branchID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDelivery, &branchID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent got %d", resp.Code)
	}
}
