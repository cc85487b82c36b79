package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/metrics"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns order creation and the order status state machine.
type Service struct {
	repo    Repository
	pricing *pricing.Service
	tx      txRunner
	log     *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, pricingSvc *pricing.Service, tx txRunner, log *logger.Logger) (*Service, error) {
	if repo == nil || pricingSvc == nil || tx == nil || log == nil {
		return nil, fmt.Errorf("orders service missing dependencies")
	}
	return &Service{
		repo:    repo,
		pricing: pricingSvc,
		tx:      tx,
		log:     log,
		now:     time.Now,
	}, nil
}

// Create validates and prices every item, then persists the order and its line
// items in one transaction. Line-item prices are snapshots; the total is
// computed here and never again.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	resolved, result, err := s.pricing.ValidateItems(ctx, input.Items, input.UserID, pricing.Options{RequireAvailability: true})
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items failed validation").WithDetails(result.Errors)
	}

	order := &models.Order{
		UserID:          input.UserID,
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Status:          enums.OrderStatusPending,
	}
	total := decimal.Zero
	for _, item := range resolved {
		order.Items = append(order.Items, models.OrderLineItem{
			FrameID:        item.Input.FrameID,
			LensTypeID:     item.Input.LensTypeID,
			LensFeatureID:  item.Input.LensFeatureID,
			PrescriptionID: item.Input.PrescriptionID,
			Color:          item.Input.Color,
			Quantity:       item.Input.Quantity,
			Price:          item.UnitPrice,
		})
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Input.Quantity))))
	}
	order.TotalAmount = total

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(ctx, "order created")
	return order, nil
}

// Get returns an order, restricted to its owner for customers.
func (s *Service) Get(ctx context.Context, orderID, callerID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !role.IsBackoffice() && order.UserID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListForUser pages the caller's own orders.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Order], error) {
	page, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// ListAll pages every order; backoffice only, enforced at the boundary.
func (s *Service) ListAll(ctx context.Context, params pagination.Params) (*pagination.Page[models.Order], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// UpdateStatus applies a caller-requested transition. Both the state machine
// and the role policy must allow it; delivery stamps the arrival timestamp.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown role")
	}

	order, err := s.findOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, target, role) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("transition from %s to %s is not allowed", order.Status, target))
	}

	order.Status = target
	if target == enums.OrderStatusDelivered {
		now := s.now()
		order.ArrivedAt = &now
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	metrics.OrderTransitions.WithLabelValues(target.String()).Inc()
	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(ctx, "order status updated to "+target.String())
	return order, nil
}

// ConfirmFromPayment is the privileged transition driven by payment
// completion. It bypasses the caller-facing transition table and runs inside
// the payment's transaction.
func (s *Service) ConfirmFromPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	order.Status = enums.OrderStatusConfirmed
	if err := repo.Update(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}

	metrics.OrderTransitions.WithLabelValues(enums.OrderStatusConfirmed.String()).Inc()
	return nil
}

func (s *Service) findOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
