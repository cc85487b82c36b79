package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internalauth "github.com/minhnguyen-io/lenscraft-backend/internal/auth"
	"github.com/minhnguyen-io/lenscraft-backend/internal/catalog"
	"github.com/minhnguyen-io/lenscraft-backend/internal/orders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/payments"
	"github.com/minhnguyen-io/lenscraft-backend/internal/preorders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
	"github.com/minhnguyen-io/lenscraft-backend/internal/users"
	pkgAuth "github.com/minhnguyen-io/lenscraft-backend/pkg/auth"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/vnpay"
)

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

func (stubSessions) SetSession(context.Context, string, time.Duration) error {
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubLocker struct{}

func (stubLocker) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

func (stubLocker) ReleaseLock(context.Context, string, string) error {
	return nil
}

type stubUsersRepo struct{}

func (s stubUsersRepo) WithTx(*gorm.DB) users.Repository {
	return s
}

func (stubUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	panic("unimplemented")
}

func (stubUsersRepo) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubUsersRepo) FindByEmail(context.Context, string) (*models.User, error) {
	panic("unimplemented")
}

type stubCatalogRepo struct{}

func (s stubCatalogRepo) WithTx(*gorm.DB) catalog.Repository {
	return s
}

func (stubCatalogRepo) FindFrame(context.Context, uuid.UUID) (*models.Frame, error) {
	return &models.Frame{}, nil
}

func (stubCatalogRepo) FindLensType(context.Context, uuid.UUID) (*models.LensType, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindLensFeature(context.Context, uuid.UUID) (*models.LensFeature, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindPrescription(context.Context, uuid.UUID) (*models.Prescription, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) CreateFrame(context.Context, *models.Frame) (*models.Frame, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) UpdateFrame(context.Context, *models.Frame) error {
	panic("unimplemented")
}

func (stubCatalogRepo) DeleteFrame(context.Context, uuid.UUID) error {
	return nil
}

func (stubCatalogRepo) ListFrames(_ context.Context, params pagination.Params) (*pagination.Page[models.Frame], error) {
	return pagination.NewPage([]models.Frame{}, 0, params.Normalize("created_at")), nil
}

func (stubCatalogRepo) CreateLensType(context.Context, *models.LensType) (*models.LensType, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) UpdateLensType(context.Context, *models.LensType) error {
	panic("unimplemented")
}

func (stubCatalogRepo) DeleteLensType(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogRepo) ListLensTypes(context.Context, pagination.Params) (*pagination.Page[models.LensType], error) {
	panic("unimplemented")
}

func (stubCatalogRepo) CreateLensFeature(context.Context, *models.LensFeature) (*models.LensFeature, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) UpdateLensFeature(context.Context, *models.LensFeature) error {
	panic("unimplemented")
}

func (stubCatalogRepo) DeleteLensFeature(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogRepo) ListLensFeatures(context.Context, pagination.Params) (*pagination.Page[models.LensFeature], error) {
	panic("unimplemented")
}

func (stubCatalogRepo) CreatePrescription(context.Context, *models.Prescription) (*models.Prescription, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) ListPrescriptionsByUser(context.Context, uuid.UUID, pagination.Params) (*pagination.Page[models.Prescription], error) {
	panic("unimplemented")
}

type stubOrdersRepo struct{}

func (s stubOrdersRepo) WithTx(*gorm.DB) orders.Repository {
	return s
}

func (stubOrdersRepo) Create(context.Context, *models.Order) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersRepo) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersRepo) Update(context.Context, *models.Order) error {
	panic("unimplemented")
}

func (stubOrdersRepo) ListByUser(_ context.Context, _ uuid.UUID, params pagination.Params) (*pagination.Page[models.Order], error) {
	return pagination.NewPage([]models.Order{}, 0, params.Normalize("created_at")), nil
}

func (stubOrdersRepo) List(context.Context, pagination.Params) (*pagination.Page[models.Order], error) {
	panic("unimplemented")
}

type stubPreordersRepo struct{}

func (s stubPreordersRepo) WithTx(*gorm.DB) preorders.Repository {
	return s
}

func (stubPreordersRepo) Create(context.Context, *models.Preorder) (*models.Preorder, error) {
	panic("unimplemented")
}

func (stubPreordersRepo) FindByID(context.Context, uuid.UUID) (*models.Preorder, error) {
	panic("unimplemented")
}

func (stubPreordersRepo) Update(context.Context, *models.Preorder) error {
	panic("unimplemented")
}

func (stubPreordersRepo) ListByUser(context.Context, uuid.UUID, pagination.Params) (*pagination.Page[models.Preorder], error) {
	panic("unimplemented")
}

func (stubPreordersRepo) List(context.Context, pagination.Params) (*pagination.Page[models.Preorder], error) {
	panic("unimplemented")
}

func (stubPreordersRepo) HasCompletedPayment(context.Context, uuid.UUID) (bool, error) {
	panic("unimplemented")
}

func (stubPreordersRepo) RepointPayments(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

type stubPaymentsRepo struct{}

func (s stubPaymentsRepo) WithTx(*gorm.DB) payments.Repository {
	return s
}

func (stubPaymentsRepo) Create(context.Context, *models.Payment) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsRepo) FindByID(context.Context, uuid.UUID) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsRepo) Update(context.Context, *models.Payment) error {
	panic("unimplemented")
}

func (stubPaymentsRepo) ExistsForOrder(context.Context, uuid.UUID, ...enums.PaymentStatus) (bool, error) {
	panic("unimplemented")
}

func (stubPaymentsRepo) ExistsForPreorder(context.Context, uuid.UUID, ...enums.PaymentStatus) (bool, error) {
	panic("unimplemented")
}

func (stubPaymentsRepo) List(context.Context, pagination.Params) (*pagination.Page[models.Payment], error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "lenscraft",
			ExpirationMinutes: 60,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		VNPay: config.VNPayConfig{
			TmnCode:    "LENSCRAFT",
			HashSecret: "router-test-hash",
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "https://shop.example/payments/return",
			Expiry:     15 * time.Minute,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	catalogRepo := stubCatalogRepo{}
	pricingSvc, err := pricing.NewService(catalogRepo)
	if err != nil {
		t.Fatalf("pricing service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	authSvc, err := internalauth.NewService(stubUsersRepo{}, stubSessions{}, cfg.JWT, cfg.Password, logg)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	ordersSvc, err := orders.NewService(stubOrdersRepo{}, pricingSvc, stubTx{}, logg)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	preordersSvc, err := preorders.NewService(stubPreordersRepo{}, stubOrdersRepo{}, pricingSvc, stubTx{}, logg)
	if err != nil {
		t.Fatalf("preorders service: %v", err)
	}
	gateway, err := vnpay.NewClient(cfg.VNPay)
	if err != nil {
		t.Fatalf("vnpay client: %v", err)
	}
	paymentsSvc, err := payments.NewService(
		stubPaymentsRepo{},
		stubOrdersRepo{},
		stubPreordersRepo{},
		ordersSvc,
		preordersSvc,
		gateway,
		cfg.VNPay.ReturnURL,
		stubLocker{},
		stubTx{},
		logg,
	)
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}

	return NewRouter(cfg, logg, Services{
		Auth:      authSvc,
		Catalog:   catalogSvc,
		Orders:    ordersSvc,
		Preorders: preordersSvc,
		Payments:  paymentsSvc,
		Sessions:  stubSessions{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestAuthedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAuthedGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer order list got %d", resp.Code)
	}
}

func TestCatalogReadAllowsCustomer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/frames", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for frame list got %d", resp.Code)
	}
}

func TestCatalogWriteRequiresBackofficeRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	customer := httptest.NewRequest(http.MethodDelete, "/api/v1/frames/"+uuid.NewString(), nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer frame delete got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodDelete, "/api/v1/frames/"+uuid.NewString(), nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for staff frame delete got %d", resp.Code)
	}
}

func TestPreorderConvertRequiresBackofficeRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preorders/"+uuid.NewString()+"/convert", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer convert got %d", resp.Code)
	}
}

func TestPaymentListRequiresBackofficeRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer payment list got %d", resp.Code)
	}
}

func TestGatewayCallbacksArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	// Unsigned query fails verification but must not be gated by auth.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay/ipn?vnp_TxnRef="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ipn callback got %d", resp.Code)
	}
}
