package preorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/internal/orders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/metrics"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// DefaultLeadTime is how far out the expected-ready date lands when the
// caller does not supply one.
const DefaultLeadTime = 14 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns preorder creation, cancellation, the role-gated status
// updates, and conversion into orders.
//
// Unlike orders there is no transition table here: any backoffice role may
// set any status. Preorders are lower stakes until conversion, at which point
// the resulting order picks up the strict machine.
type Service struct {
	repo    Repository
	orders  orders.Repository
	pricing *pricing.Service
	tx      txRunner
	log     *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, ordersRepo orders.Repository, pricingSvc *pricing.Service, tx txRunner, log *logger.Logger) (*Service, error) {
	if repo == nil || ordersRepo == nil || pricingSvc == nil || tx == nil || log == nil {
		return nil, fmt.Errorf("preorders service missing dependencies")
	}
	return &Service{
		repo:    repo,
		orders:  ordersRepo,
		pricing: pricingSvc,
		tx:      tx,
		log:     log,
		now:     time.Now,
	}, nil
}

// Create validates and prices the items, then persists the preorder and its
// line items transactionally. Frame availability is not enforced; preorders
// reserve ahead of stock.
func (s *Service) Create(ctx context.Context, input CreatePreorderInput) (*models.Preorder, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	resolved, result, err := s.pricing.ValidateItems(ctx, input.Items, input.UserID, pricing.Options{})
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preorder items failed validation").WithDetails(result.Errors)
	}

	expected := s.now().Add(DefaultLeadTime)
	if input.ExpectedDate != nil {
		expected = *input.ExpectedDate
	}

	preorder := &models.Preorder{
		UserID:       input.UserID,
		ExpectedDate: expected,
		Status:       enums.PreorderStatusPending,
	}
	for _, item := range resolved {
		preorder.Items = append(preorder.Items, models.PreorderLineItem{
			FrameID:        item.Input.FrameID,
			LensTypeID:     item.Input.LensTypeID,
			LensFeatureID:  item.Input.LensFeatureID,
			PrescriptionID: item.Input.PrescriptionID,
			Color:          item.Input.Color,
			Quantity:       item.Input.Quantity,
			Price:          item.UnitPrice,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, preorder)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist preorder")
	}

	s.log.Info(s.log.WithField(ctx, "preorder_id", preorder.ID.String()), "preorder created")
	return preorder, nil
}

// Get returns a preorder, restricted to its owner for customers.
func (s *Service) Get(ctx context.Context, preorderID, callerID uuid.UUID, role enums.UserRole) (*models.Preorder, error) {
	preorder, err := s.findPreorder(ctx, preorderID)
	if err != nil {
		return nil, err
	}
	if !role.IsBackoffice() && preorder.UserID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preorder not found")
	}
	return preorder, nil
}

// ListForUser pages the caller's own preorders.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Preorder], error) {
	page, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preorders")
	}
	return page, nil
}

// ListAll pages every preorder; backoffice only, enforced at the boundary.
func (s *Service) ListAll(ctx context.Context, params pagination.Params) (*pagination.Page[models.Preorder], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preorders")
	}
	return page, nil
}

// UpdateStatus sets any of the named statuses, gated on a backoffice role
// only.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Preorder, error) {
	role, err := enums.ParseUserRole(input.Role)
	if err != nil || !role.IsBackoffice() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not update preorder status")
	}
	target, err := enums.ParsePreorderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid preorder status")
	}

	preorder, err := s.findPreorder(ctx, input.PreorderID)
	if err != nil {
		return nil, err
	}

	preorder.Status = target
	if err := s.repo.Update(ctx, preorder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update preorder status")
	}
	return preorder, nil
}

// Cancel is the owner's exit. It is refused once money has been captured;
// refunds are a manual process, not a silent cancellation.
func (s *Service) Cancel(ctx context.Context, preorderID, callerID uuid.UUID) error {
	preorder, err := s.findPreorder(ctx, preorderID)
	if err != nil {
		return err
	}
	if preorder.UserID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may cancel a preorder")
	}
	if preorder.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "preorder is already finalized")
	}

	paid, err := s.repo.HasCompletedPayment(ctx, preorderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check preorder payments")
	}
	if paid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "preorder has a completed payment and cannot be cancelled")
	}

	preorder.Status = enums.PreorderStatusCancelled
	if err := s.repo.Update(ctx, preorder); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel preorder")
	}
	return nil
}

// CanConvert reports whether the preorder is in a convertible status.
func CanConvert(status enums.PreorderStatus) bool {
	return status == enums.PreorderStatusPaid || status == enums.PreorderStatusConfirmed
}

// ConvertToOrder produces an order from a vetted preorder in one transaction:
// the order starts at confirmed, line items carry their existing price
// snapshots, the preorder is marked converted, and every payment is re-pointed
// at the new order.
func (s *Service) ConvertToOrder(ctx context.Context, input ConvertInput) (*models.Order, error) {
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		preorder, err := repo.FindByID(ctx, input.PreorderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "preorder not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preorder")
		}
		if !CanConvert(preorder.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("preorder in status %s cannot be converted", preorder.Status))
		}

		order = &models.Order{
			UserID:          preorder.UserID,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			Status:          enums.OrderStatusConfirmed,
		}
		total := decimal.Zero
		for _, item := range preorder.Items {
			order.Items = append(order.Items, models.OrderLineItem{
				FrameID:        item.FrameID,
				LensTypeID:     item.LensTypeID,
				LensFeatureID:  item.LensFeatureID,
				PrescriptionID: item.PrescriptionID,
				Color:          item.Color,
				Quantity:       item.Quantity,
				Price:          item.Price,
			})
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		order.TotalAmount = total

		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order from preorder")
		}

		preorder.Status = enums.PreorderStatusConverted
		if err := repo.Update(ctx, preorder); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark preorder converted")
		}

		if err := repo.RepointPayments(ctx, preorder.ID, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "repoint preorder payments")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PreorderConversions.Inc()
	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(s.log.WithField(ctx, "preorder_id", input.PreorderID.String()), "preorder converted to order")
	return order, nil
}

// MarkPaidFromPayment is the privileged transition driven by payment
// completion; it runs inside the payment's transaction and skips role gating.
func (s *Service) MarkPaidFromPayment(ctx context.Context, tx *gorm.DB, preorderID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	preorder, err := repo.FindByID(ctx, preorderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "preorder not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preorder")
	}

	preorder.Status = enums.PreorderStatusPaid
	if err := repo.Update(ctx, preorder); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark preorder paid")
	}
	return nil
}

func (s *Service) findPreorder(ctx context.Context, id uuid.UUID) (*models.Preorder, error) {
	preorder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preorder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preorder")
	}
	return preorder, nil
}
