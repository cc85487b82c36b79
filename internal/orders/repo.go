package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// Repository is the order persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Order], error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Order], error)
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

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Order], error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Order], error) {
	return r.list(ctx, r.db.WithContext(ctx), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) (*pagination.Page[models.Order], error) {
	params = params.Normalize("created_at")

	var total int64
	if err := query.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Order
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
