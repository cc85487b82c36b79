package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// Repository is the payment persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	ExistsForOrder(ctx context.Context, orderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error)
	ExistsForPreorder(ctx context.Context, preorderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Payment], error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) ExistsForOrder(ctx context.Context, orderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error) {
	return r.exists(ctx, "order_id = ?", orderID, statuses)
}

func (r *repository) ExistsForPreorder(ctx context.Context, preorderID uuid.UUID, statuses ...enums.PaymentStatus) (bool, error) {
	return r.exists(ctx, "preorder_id = ?", preorderID, statuses)
}

func (r *repository) exists(ctx context.Context, clause string, target uuid.UUID, statuses []enums.PaymentStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where(clause, target).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Payment], error) {
	params = params.Normalize("created_at")

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Payment
	err := r.db.WithContext(ctx).
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(items, total, params), nil
}
