package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/metrics"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/redis"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/vnpay"
)

const (
	lockScopeOrder    = "payment:order"
	lockScopePreorder = "payment:preorder"
	lockTTL           = 10 * time.Second
)

// Partial unique index names backing the one-active-payment-per-target rule.
const (
	constraintOrderActive    = "ux_payments_order_active"
	constraintPreorderActive = "ux_payments_preorder_active"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// orderStore is the slice of the orders layer payments need.
type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// preorderStore is the slice of the preorders layer payments need.
type preorderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Preorder, error)
}

// orderConfirmer advances an order after a captured payment.
type orderConfirmer interface {
	ConfirmFromPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// preorderMarker advances a preorder after a captured payment.
type preorderMarker interface {
	MarkPaidFromPayment(ctx context.Context, tx *gorm.DB, preorderID uuid.UUID) error
}

// Service owns payment creation, gateway redirect construction, callback
// verification, and idempotent completion.
type Service struct {
	repo      Repository
	orders    orderStore
	preorders preorderStore
	confirmer orderConfirmer
	marker    preorderMarker
	gateway   *vnpay.Client
	returnURL string
	locker    redis.Locker
	tx        txRunner
	log       *logger.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	orders orderStore,
	preorders preorderStore,
	confirmer orderConfirmer,
	marker preorderMarker,
	gateway *vnpay.Client,
	returnURL string,
	locker redis.Locker,
	tx txRunner,
	log *logger.Logger,
) (*Service, error) {
	if repo == nil || orders == nil || preorders == nil || confirmer == nil ||
		marker == nil || gateway == nil || locker == nil || tx == nil || log == nil {
		return nil, fmt.Errorf("payments service missing dependencies")
	}
	return &Service{
		repo:      repo,
		orders:    orders,
		preorders: preorders,
		confirmer: confirmer,
		marker:    marker,
		gateway:   gateway,
		returnURL: returnURL,
		locker:    locker,
		tx:        tx,
		log:       log,
		now:       time.Now,
	}, nil
}

// Create opens a payment intent against exactly one order or preorder. The
// duplicate guard is enforced twice: a per-target lock serializes concurrent
// requests, and a partial unique index backstops anything that slips through.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Payment, error) {
	method, err := enums.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	if (input.OrderID != nil) == (input.PreorderID != nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment must target exactly one of an order or a preorder")
	}

	if input.OrderID != nil {
		return s.createForOrder(ctx, *input.OrderID, method)
	}
	return s.createForPreorder(ctx, *input.PreorderID, method)
}

func (s *Service) createForOrder(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod) (*models.Payment, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	acquired, err := s.locker.AcquireLock(ctx, lockScopeOrder, orderID.String(), lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire payment lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another payment request for this order is in flight")
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, lockScopeOrder, orderID.String()); err != nil {
			s.log.Warn(ctx, "release payment lock failed: "+err.Error())
		}
	}()

	completed, err := s.repo.ExistsForOrder(ctx, orderID, enums.PaymentStatusCompleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing payments")
	}
	if completed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	pending, err := s.repo.ExistsForOrder(ctx, orderID, enums.PaymentStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing payments")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending payment already exists for this order")
	}

	payment := &models.Payment{
		OrderID: &order.ID,
		Amount:  order.TotalAmount,
		Method:  method,
		Status:  enums.PaymentStatusPending,
	}
	return s.persistNew(ctx, payment, constraintOrderActive)
}

func (s *Service) createForPreorder(ctx context.Context, preorderID uuid.UUID, method enums.PaymentMethod) (*models.Payment, error) {
	preorder, err := s.preorders.FindByID(ctx, preorderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preorder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preorder")
	}

	acquired, err := s.locker.AcquireLock(ctx, lockScopePreorder, preorderID.String(), lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire payment lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another payment request for this preorder is in flight")
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, lockScopePreorder, preorderID.String()); err != nil {
			s.log.Warn(ctx, "release payment lock failed: "+err.Error())
		}
	}()

	completed, err := s.repo.ExistsForPreorder(ctx, preorderID, enums.PaymentStatusCompleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing payments")
	}
	if completed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "preorder is already paid")
	}
	pending, err := s.repo.ExistsForPreorder(ctx, preorderID, enums.PaymentStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing payments")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending payment already exists for this preorder")
	}

	// Preorders have no stored aggregate; the amount is computed fresh from
	// the line-item snapshots.
	amount := decimal.Zero
	for _, item := range preorder.Items {
		amount = amount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	payment := &models.Payment{
		PreorderID: &preorder.ID,
		Amount:     amount,
		Method:     method,
		Status:     enums.PaymentStatusPending,
	}
	return s.persistNew(ctx, payment, constraintPreorderActive)
}

func (s *Service) persistNew(ctx context.Context, payment *models.Payment, constraint string) (*models.Payment, error) {
	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		if db.IsUniqueViolation(err, constraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active payment already exists for this target")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment")
	}
	ctx = s.log.WithPaymentID(ctx, created.ID.String())
	s.log.Info(ctx, "payment created")
	return created, nil
}

// Get returns a payment by id.
func (s *Service) Get(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	return s.findPayment(ctx, paymentID)
}

// List pages all payments; backoffice only, enforced at the boundary.
func (s *Service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Payment], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return page, nil
}

// BuildGatewayRedirect constructs the signed checkout URL for a pending vnpay
// payment.
func (s *Service) BuildGatewayRedirect(ctx context.Context, input RedirectInput) (string, error) {
	payment, err := s.findPayment(ctx, input.PaymentID)
	if err != nil {
		return "", err
	}
	if payment.Method != enums.PaymentMethodVNPay {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment method does not use the gateway")
	}
	if payment.Status != enums.PaymentStatusPending {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not awaiting checkout")
	}

	redirect, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		OrderInfo: fmt.Sprintf("LensCraft payment %s", payment.ID),
		ClientIP:  input.ClientIP,
		ReturnURL: s.returnURL,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gateway redirect")
	}
	return redirect, nil
}

// HandleReturn processes the synchronous browser redirect back from the
// gateway. It is idempotent against the asynchronous notification having
// already landed.
func (s *Service) HandleReturn(ctx context.Context, params url.Values) (*models.Payment, error) {
	result := s.gateway.VerifyCallback(params)
	if !result.Verified {
		metrics.PaymentOutcomes.WithLabelValues(metrics.PaymentOutcomeInvalid).Inc()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, result.Message)
	}

	payment, err := s.findPayment(ctx, result.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusCompleted {
		return payment, nil
	}

	if result.IsSuccess() {
		return s.complete(ctx, payment, result.TransactionID)
	}
	return s.markFailed(ctx, payment, result.TransactionID)
}

// HandleIPN processes the gateway's asynchronous notification. It never
// returns an error; every outcome maps onto the gateway's fixed response
// vocabulary.
func (s *Service) HandleIPN(ctx context.Context, params url.Values) IPNResponse {
	result := s.gateway.VerifyCallback(params)
	if !result.Verified {
		metrics.PaymentOutcomes.WithLabelValues(metrics.PaymentOutcomeInvalid).Inc()
		return IPNResponse{RspCode: vnpay.IPNCodeInvalidSignature, Message: "Invalid signature"}
	}

	payment, err := s.findPayment(ctx, result.PaymentID)
	if err != nil {
		if pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return IPNResponse{RspCode: vnpay.IPNCodeNotFound, Message: "Payment not found"}
		}
		s.log.Error(ctx, "ipn payment lookup failed", err)
		return IPNResponse{RspCode: vnpay.IPNCodeNotFound, Message: "Payment not found"}
	}

	if payment.Status == enums.PaymentStatusCompleted {
		metrics.PaymentOutcomes.WithLabelValues(metrics.PaymentOutcomeDuplicate).Inc()
		return IPNResponse{RspCode: vnpay.IPNCodeAlreadyConfirmed, Message: "Payment already confirmed"}
	}

	if result.IsSuccess() {
		if _, err := s.complete(ctx, payment, result.TransactionID); err != nil {
			s.log.Error(ctx, "ipn completion failed", err)
			return IPNResponse{RspCode: vnpay.IPNCodeNotFound, Message: "Payment not found"}
		}
		return IPNResponse{RspCode: vnpay.IPNCodeSuccess, Message: "Confirm success"}
	}

	if _, err := s.markFailed(ctx, payment, result.TransactionID); err != nil {
		s.log.Error(ctx, "ipn failure marking failed", err)
	}
	return IPNResponse{RspCode: vnpay.IPNCodeSuccess, Message: "Confirm success"}
}

// CompletePayment is the privileged completion entry point. Calling it twice
// is a no-op the second time.
func (s *Service) CompletePayment(ctx context.Context, paymentID uuid.UUID, transactionID string) (*models.Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusCompleted {
		return payment, nil
	}
	return s.complete(ctx, payment, transactionID)
}

// complete captures the payment and advances the linked order or preorder in
// the same transaction. The downstream transition is privileged and skips the
// caller-facing state machines.
func (s *Service) complete(ctx context.Context, payment *models.Payment, transactionID string) (*models.Payment, error) {
	if !payment.Status.CanTransitionTo(enums.PaymentStatusCompleted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %s cannot be completed", payment.Status))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment.Status = enums.PaymentStatusCompleted
		paidAt := s.now()
		payment.PaidAt = &paidAt
		if transactionID != "" {
			payment.TransactionID = &transactionID
		}
		if err := repo.Update(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete payment")
		}

		if payment.TargetsOrder() {
			return s.confirmer.ConfirmFromPayment(ctx, tx, *payment.OrderID)
		}
		if payment.PreorderID != nil {
			return s.marker.MarkPaidFromPayment(ctx, tx, *payment.PreorderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentOutcomes.WithLabelValues(metrics.PaymentOutcomeCompleted).Inc()
	ctx = s.log.WithPaymentID(ctx, payment.ID.String())
	s.log.Info(ctx, "payment completed")
	return payment, nil
}

func (s *Service) markFailed(ctx context.Context, payment *models.Payment, transactionID string) (*models.Payment, error) {
	if !payment.Status.CanTransitionTo(enums.PaymentStatusFailed) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %s cannot be marked failed", payment.Status))
	}

	payment.Status = enums.PaymentStatusFailed
	if transactionID != "" {
		payment.TransactionID = &transactionID
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}

	metrics.PaymentOutcomes.WithLabelValues(metrics.PaymentOutcomeFailed).Inc()
	ctx = s.log.WithPaymentID(ctx, payment.ID.String())
	s.log.Warn(ctx, "payment failed at gateway")
	return payment, nil
}

func (s *Service) findPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}
