package preorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// Repository is the preorder persistence surface. Payment lookups scoped to a
// preorder live here too so conversion and cancellation stay in one
// transaction boundary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, preorder *models.Preorder) (*models.Preorder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Preorder, error)
	Update(ctx context.Context, preorder *models.Preorder) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Preorder], error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Preorder], error)

	HasCompletedPayment(ctx context.Context, preorderID uuid.UUID) (bool, error)
	RepointPayments(ctx context.Context, preorderID, orderID uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, preorder *models.Preorder) (*models.Preorder, error) {
	if err := r.db.WithContext(ctx).Create(preorder).Error; err != nil {
		return nil, err
	}
	return preorder, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Preorder, error) {
	var preorder models.Preorder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("id = ?", id).
		First(&preorder).Error
	if err != nil {
		return nil, err
	}
	return &preorder, nil
}

func (r *repository) Update(ctx context.Context, preorder *models.Preorder) error {
	return r.db.WithContext(ctx).Save(preorder).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Preorder], error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Preorder], error) {
	return r.list(ctx, r.db.WithContext(ctx), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) (*pagination.Page[models.Preorder], error) {
	params = params.Normalize("created_at")

	var total int64
	if err := query.Model(&models.Preorder{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Preorder
	err := query.
		Preload("Items").
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(items, total, params), nil
}

func (r *repository) HasCompletedPayment(ctx context.Context, preorderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("preorder_id = ? AND status = ?", preorderID, enums.PaymentStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RepointPayments moves every payment off the preorder onto the order in one
// statement, preserving the exactly-one-target invariant.
func (r *repository) RepointPayments(ctx context.Context, preorderID, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("preorder_id = ?", preorderID).
		Updates(map[string]any{"preorder_id": nil, "order_id": orderID}).Error
}
