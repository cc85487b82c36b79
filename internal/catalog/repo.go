package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// Repository is the catalog persistence surface. It also satisfies
// pricing.CatalogStore.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindFrame(ctx context.Context, id uuid.UUID) (*models.Frame, error)
	FindLensType(ctx context.Context, id uuid.UUID) (*models.LensType, error)
	FindLensFeature(ctx context.Context, id uuid.UUID) (*models.LensFeature, error)
	FindPrescription(ctx context.Context, id uuid.UUID) (*models.Prescription, error)

	CreateFrame(ctx context.Context, frame *models.Frame) (*models.Frame, error)
	UpdateFrame(ctx context.Context, frame *models.Frame) error
	DeleteFrame(ctx context.Context, id uuid.UUID) error
	ListFrames(ctx context.Context, params pagination.Params) (*pagination.Page[models.Frame], error)

	CreateLensType(ctx context.Context, lensType *models.LensType) (*models.LensType, error)
	UpdateLensType(ctx context.Context, lensType *models.LensType) error
	DeleteLensType(ctx context.Context, id uuid.UUID) error
	ListLensTypes(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensType], error)

	CreateLensFeature(ctx context.Context, feature *models.LensFeature) (*models.LensFeature, error)
	UpdateLensFeature(ctx context.Context, feature *models.LensFeature) error
	DeleteLensFeature(ctx context.Context, id uuid.UUID) error
	ListLensFeatures(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensFeature], error)

	CreatePrescription(ctx context.Context, prescription *models.Prescription) (*models.Prescription, error)
	ListPrescriptionsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Prescription], error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindFrame(ctx context.Context, id uuid.UUID) (*models.Frame, error) {
	var frame models.Frame
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&frame).Error; err != nil {
		return nil, err
	}
	return &frame, nil
}

func (r *repository) FindLensType(ctx context.Context, id uuid.UUID) (*models.LensType, error) {
	var lensType models.LensType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lensType).Error; err != nil {
		return nil, err
	}
	return &lensType, nil
}

func (r *repository) FindLensFeature(ctx context.Context, id uuid.UUID) (*models.LensFeature, error) {
	var feature models.LensFeature
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feature).Error; err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *repository) FindPrescription(ctx context.Context, id uuid.UUID) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&prescription).Error; err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *repository) CreateFrame(ctx context.Context, frame *models.Frame) (*models.Frame, error) {
	if err := r.db.WithContext(ctx).Create(frame).Error; err != nil {
		return nil, err
	}
	return frame, nil
}

func (r *repository) UpdateFrame(ctx context.Context, frame *models.Frame) error {
	return r.db.WithContext(ctx).Save(frame).Error
}

func (r *repository) DeleteFrame(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Frame{}, "id = ?", id).Error
}

func (r *repository) ListFrames(ctx context.Context, params pagination.Params) (*pagination.Page[models.Frame], error) {
	return listPage[models.Frame](ctx, r.db, params)
}

func (r *repository) CreateLensType(ctx context.Context, lensType *models.LensType) (*models.LensType, error) {
	if err := r.db.WithContext(ctx).Create(lensType).Error; err != nil {
		return nil, err
	}
	return lensType, nil
}

func (r *repository) UpdateLensType(ctx context.Context, lensType *models.LensType) error {
	return r.db.WithContext(ctx).Save(lensType).Error
}

func (r *repository) DeleteLensType(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.LensType{}, "id = ?", id).Error
}

func (r *repository) ListLensTypes(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensType], error) {
	return listPage[models.LensType](ctx, r.db, params)
}

func (r *repository) CreateLensFeature(ctx context.Context, feature *models.LensFeature) (*models.LensFeature, error) {
	if err := r.db.WithContext(ctx).Create(feature).Error; err != nil {
		return nil, err
	}
	return feature, nil
}

func (r *repository) UpdateLensFeature(ctx context.Context, feature *models.LensFeature) error {
	return r.db.WithContext(ctx).Save(feature).Error
}

func (r *repository) DeleteLensFeature(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.LensFeature{}, "id = ?", id).Error
}

func (r *repository) ListLensFeatures(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensFeature], error) {
	return listPage[models.LensFeature](ctx, r.db, params)
}

func (r *repository) CreatePrescription(ctx context.Context, prescription *models.Prescription) (*models.Prescription, error) {
	if err := r.db.WithContext(ctx).Create(prescription).Error; err != nil {
		return nil, err
	}
	return prescription, nil
}

func (r *repository) ListPrescriptionsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Prescription], error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return listPage[models.Prescription](ctx, query, params)
}

func listPage[T any](ctx context.Context, db *gorm.DB, params pagination.Params) (*pagination.Page[T], error) {
	params = params.Normalize("created_at")

	var model T
	var total int64
	if err := db.WithContext(ctx).Model(&model).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	err := db.WithContext(ctx).
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(items, total, params), nil
}
