package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/vnpay"
)

const testSecret = "test-hash-secret"

type stubPaymentRepo struct {
	payments map[uuid.UUID]*models.Payment
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: map[uuid.UUID]*models.Payment{}}
}

func (s *stubPaymentRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubPaymentRepo) Create(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.payments[payment.ID] = payment
	return payment, nil
}

func (s *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	if payment, ok := s.payments[id]; ok {
		return payment, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	s.payments[payment.ID] = payment
	return nil
}

func (s *stubPaymentRepo) ExistsForOrder(_ context.Context, orderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error) {
	for _, payment := range s.payments {
		if payment.OrderID == nil || *payment.OrderID != orderID {
			continue
		}
		for _, status := range statuses {
			if payment.Status == status {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *stubPaymentRepo) ExistsForPreorder(_ context.Context, preorderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error) {
	for _, payment := range s.payments {
		if payment.PreorderID == nil || *payment.PreorderID != preorderID {
			continue
		}
		for _, status := range statuses {
			if payment.Status == status {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *stubPaymentRepo) List(_ context.Context, params pagination.Params) (*pagination.Page[models.Payment], error) {
	params = params.Normalize("created_at")
	var items []models.Payment
	for _, payment := range s.payments {
		items = append(items, *payment)
	}
	return pagination.NewPage(items, int64(len(items)), params), nil
}

type stubOrderStore struct {
	orders map[uuid.UUID]*models.Order
}

func (s *stubOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubPreorderStore struct {
	preorders map[uuid.UUID]*models.Preorder
}

func (s *stubPreorderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Preorder, error) {
	if preorder, ok := s.preorders[id]; ok {
		return preorder, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type lifecycleRecorder struct {
	confirmedOrders []uuid.UUID
	paidPreorders   []uuid.UUID
}

func (l *lifecycleRecorder) ConfirmFromPayment(_ context.Context, _ *gorm.DB, orderID uuid.UUID) error {
	l.confirmedOrders = append(l.confirmedOrders, orderID)
	return nil
}

func (l *lifecycleRecorder) MarkPaidFromPayment(_ context.Context, _ *gorm.DB, preorderID uuid.UUID) error {
	l.paidPreorders = append(l.paidPreorders, preorderID)
	return nil
}

type stubLocker struct {
	denied bool
	held   int
}

func (s *stubLocker) AcquireLock(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	if s.denied {
		return false, nil
	}
	s.held++
	return true, nil
}

func (s *stubLocker) ReleaseLock(_ context.Context, _, _ string) error {
	s.held--
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testEnv struct {
	svc       *Service
	repo      *stubPaymentRepo
	orders    *stubOrderStore
	preorders *stubPreorderStore
	recorder  *lifecycleRecorder
	locker    *stubLocker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gateway, err := vnpay.NewClient(config.VNPayConfig{
		TmnCode:    "LENSCRAFT",
		HashSecret: testSecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		Expiry:     15 * time.Minute,
	})
	require.NoError(t, err)

	env := &testEnv{
		repo:      newStubPaymentRepo(),
		orders:    &stubOrderStore{orders: map[uuid.UUID]*models.Order{}},
		preorders: &stubPreorderStore{preorders: map[uuid.UUID]*models.Preorder{}},
		recorder:  &lifecycleRecorder{},
		locker:    &stubLocker{},
	}
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(env.repo, env.orders, env.preorders, env.recorder, env.recorder,
		gateway, "https://shop.example.com/payments/return", env.locker, stubTx{}, log)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func (e *testEnv) seedOrder(total string) *models.Order {
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Status:      enums.OrderStatusPending,
		TotalAmount: dec(total),
	}
	e.orders.orders[order.ID] = order
	return order
}

func (e *testEnv) seedPreorder(items ...models.PreorderLineItem) *models.Preorder {
	preorder := &models.Preorder{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.PreorderStatusConfirmed,
		Items:  items,
	}
	e.preorders.preorders[preorder.ID] = preorder
	return preorder
}

func (e *testEnv) seedPayment(orderID, preorderID *uuid.UUID, status enums.PaymentStatus) *models.Payment {
	payment := &models.Payment{
		ID:         uuid.New(),
		OrderID:    orderID,
		PreorderID: preorderID,
		Amount:     dec("250.00"),
		Method:     enums.PaymentMethodVNPay,
		Status:     status,
	}
	e.repo.payments[payment.ID] = payment
	return payment
}

// signIPN mimics the gateway: sorted keys, URL-encoded pairs, empty values
// skipped, HMAC-SHA512 over the chain.
func signIPN(values url.Values) url.Values {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" || values.Get(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(values.Get(key)))
	}
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	values.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return values
}

func ipnParams(txnRef, responseCode string) url.Values {
	return signIPN(url.Values{
		"vnp_TxnRef":        {txnRef},
		"vnp_ResponseCode":  {responseCode},
		"vnp_TransactionNo": {"14226112"},
		"vnp_Amount":        {"25000000"},
	})
}

func TestCreateForOrderUsesStoredTotal(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")

	payment, err := env.svc.Create(context.Background(), CreateInput{
		OrderID: &order.ID,
		Method:  "vnpay",
	})
	require.NoError(t, err)
	require.True(t, payment.Amount.Equal(dec("250.00")))
	require.Equal(t, enums.PaymentStatusPending, payment.Status)
	require.True(t, payment.HasExactlyOneTarget())
	require.Equal(t, 0, env.locker.held)
}

func TestCreateForPreorderComputesAmountFresh(t *testing.T) {
	env := newTestEnv(t)
	preorder := env.seedPreorder(
		models.PreorderLineItem{Price: dec("125.00"), Quantity: 2},
		models.PreorderLineItem{Price: dec("50.00"), Quantity: 1},
	)

	payment, err := env.svc.Create(context.Background(), CreateInput{
		PreorderID: &preorder.ID,
		Method:     "cash",
	})
	require.NoError(t, err)
	require.True(t, payment.Amount.Equal(dec("300.00")))
	require.Nil(t, payment.OrderID)
	require.Equal(t, preorder.ID, *payment.PreorderID)
}

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("100.00")
	preorder := env.seedPreorder()

	_, err := env.svc.Create(context.Background(), CreateInput{Method: "vnpay"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = env.svc.Create(context.Background(), CreateInput{
		OrderID:    &order.ID,
		PreorderID: &preorder.ID,
		Method:     "vnpay",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateRejectsUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	missing := uuid.New()

	_, err := env.svc.Create(context.Background(), CreateInput{OrderID: &missing, Method: "vnpay"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateRejectsWhenAlreadyPaid(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	env.seedPayment(&order.ID, nil, enums.PaymentStatusCompleted)

	_, err := env.svc.Create(context.Background(), CreateInput{OrderID: &order.ID, Method: "vnpay"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCreateRejectsPendingInFlight(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	_, err := env.svc.Create(context.Background(), CreateInput{OrderID: &order.ID, Method: "vnpay"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreateRejectsWhenLockHeld(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	env.locker.denied = true

	_, err := env.svc.Create(context.Background(), CreateInput{OrderID: &order.ID, Method: "vnpay"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestBuildGatewayRedirect(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	redirect, err := env.svc.BuildGatewayRedirect(context.Background(), RedirectInput{
		PaymentID: payment.ID,
		ClientIP:  "203.0.113.10",
	})
	require.NoError(t, err)
	require.Contains(t, redirect, "vnp_TxnRef="+payment.ID.String())
	require.Contains(t, redirect, "vnp_Amount=25000")
	require.Contains(t, redirect, "vnp_SecureHash=")
}

func TestBuildGatewayRedirectRejectsNonGatewayMethods(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)
	payment.Method = enums.PaymentMethodCash

	_, err := env.svc.BuildGatewayRedirect(context.Background(), RedirectInput{PaymentID: payment.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBuildGatewayRedirectRejectsNonPending(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusCompleted)

	_, err := env.svc.BuildGatewayRedirect(context.Background(), RedirectInput{PaymentID: payment.ID})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCompletePaymentAdvancesOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	completed, err := env.svc.CompletePayment(context.Background(), payment.ID, "14226112")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, completed.Status)
	require.NotNil(t, completed.PaidAt)
	require.Equal(t, "14226112", *completed.TransactionID)
	require.Equal(t, []uuid.UUID{order.ID}, env.recorder.confirmedOrders)
}

func TestCompletePaymentAdvancesPreorder(t *testing.T) {
	env := newTestEnv(t)
	preorder := env.seedPreorder()
	payment := env.seedPayment(nil, &preorder.ID, enums.PaymentStatusPending)

	_, err := env.svc.CompletePayment(context.Background(), payment.ID, "14226112")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{preorder.ID}, env.recorder.paidPreorders)
}

func TestCompletePaymentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	first, err := env.svc.CompletePayment(context.Background(), payment.ID, "14226112")
	require.NoError(t, err)
	firstPaidAt := *first.PaidAt

	second, err := env.svc.CompletePayment(context.Background(), payment.ID, "99999999")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, second.Status)
	require.Equal(t, firstPaidAt, *second.PaidAt)
	require.Equal(t, "14226112", *second.TransactionID)
	require.Len(t, env.recorder.confirmedOrders, 1)
}

func TestHandleIPNInvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	params := ipnParams(payment.ID.String(), "00")
	params.Set("vnp_Amount", "1")

	resp := env.svc.HandleIPN(context.Background(), params)
	require.Equal(t, "97", resp.RspCode)
	require.Equal(t, enums.PaymentStatusPending, env.repo.payments[payment.ID].Status)
}

func TestHandleIPNUnknownPayment(t *testing.T) {
	env := newTestEnv(t)

	resp := env.svc.HandleIPN(context.Background(), ipnParams(uuid.NewString(), "00"))
	require.Equal(t, "01", resp.RspCode)
}

func TestHandleIPNAlreadyConfirmed(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusCompleted)

	resp := env.svc.HandleIPN(context.Background(), ipnParams(payment.ID.String(), "00"))
	require.Equal(t, "02", resp.RspCode)
	require.Empty(t, env.recorder.confirmedOrders)
}

func TestHandleIPNSuccessCompletesPayment(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	resp := env.svc.HandleIPN(context.Background(), ipnParams(payment.ID.String(), "00"))
	require.Equal(t, "00", resp.RspCode)
	require.Equal(t, enums.PaymentStatusCompleted, env.repo.payments[payment.ID].Status)
	require.Equal(t, []uuid.UUID{order.ID}, env.recorder.confirmedOrders)
}

func TestHandleIPNFailureCodeMarksFailed(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	resp := env.svc.HandleIPN(context.Background(), ipnParams(payment.ID.String(), "24"))
	require.Equal(t, "00", resp.RspCode)
	require.Equal(t, enums.PaymentStatusFailed, env.repo.payments[payment.ID].Status)
	require.Empty(t, env.recorder.confirmedOrders)
}

func TestHandleReturnCompletesPayment(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	updated, err := env.svc.HandleReturn(context.Background(), ipnParams(payment.ID.String(), "00"))
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, updated.Status)
}

func TestHandleReturnIdempotentAfterIPN(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusCompleted)

	updated, err := env.svc.HandleReturn(context.Background(), ipnParams(payment.ID.String(), "00"))
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, updated.Status)
	require.Empty(t, env.recorder.confirmedOrders)
}

func TestHandleReturnRejectsTamperedParams(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder("250.00")
	payment := env.seedPayment(&order.ID, nil, enums.PaymentStatusPending)

	params := ipnParams(payment.ID.String(), "00")
	params.Set("vnp_ResponseCode", "24")

	_, err := env.svc.HandleReturn(context.Background(), params)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid signature")
}
