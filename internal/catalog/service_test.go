package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	frames        map[uuid.UUID]*models.Frame
	lensTypes     map[uuid.UUID]*models.LensType
	lensFeatures  map[uuid.UUID]*models.LensFeature
	prescriptions []*models.Prescription
	deletedFrames []uuid.UUID
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		frames:       make(map[uuid.UUID]*models.Frame),
		lensTypes:    make(map[uuid.UUID]*models.LensType),
		lensFeatures: make(map[uuid.UUID]*models.LensFeature),
	}
}

func (s *stubCatalogRepo) WithTx(*gorm.DB) Repository {
	return s
}

func (s *stubCatalogRepo) FindFrame(_ context.Context, id uuid.UUID) (*models.Frame, error) {
	frame, ok := s.frames[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return frame, nil
}

func (s *stubCatalogRepo) FindLensType(_ context.Context, id uuid.UUID) (*models.LensType, error) {
	lensType, ok := s.lensTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lensType, nil
}

func (s *stubCatalogRepo) FindLensFeature(_ context.Context, id uuid.UUID) (*models.LensFeature, error) {
	feature, ok := s.lensFeatures[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return feature, nil
}

func (s *stubCatalogRepo) FindPrescription(context.Context, uuid.UUID) (*models.Prescription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) CreateFrame(_ context.Context, frame *models.Frame) (*models.Frame, error) {
	if frame.ID == uuid.Nil {
		frame.ID = uuid.New()
	}
	s.frames[frame.ID] = frame
	return frame, nil
}

func (s *stubCatalogRepo) UpdateFrame(_ context.Context, frame *models.Frame) error {
	s.frames[frame.ID] = frame
	return nil
}

func (s *stubCatalogRepo) DeleteFrame(_ context.Context, id uuid.UUID) error {
	delete(s.frames, id)
	s.deletedFrames = append(s.deletedFrames, id)
	return nil
}

func (s *stubCatalogRepo) ListFrames(_ context.Context, params pagination.Params) (*pagination.Page[models.Frame], error) {
	items := make([]models.Frame, 0, len(s.frames))
	for _, frame := range s.frames {
		items = append(items, *frame)
	}
	return pagination.NewPage(items, int64(len(items)), params.Normalize("created_at")), nil
}

func (s *stubCatalogRepo) CreateLensType(_ context.Context, lensType *models.LensType) (*models.LensType, error) {
	if lensType.ID == uuid.Nil {
		lensType.ID = uuid.New()
	}
	s.lensTypes[lensType.ID] = lensType
	return lensType, nil
}

func (s *stubCatalogRepo) UpdateLensType(_ context.Context, lensType *models.LensType) error {
	s.lensTypes[lensType.ID] = lensType
	return nil
}

func (s *stubCatalogRepo) DeleteLensType(_ context.Context, id uuid.UUID) error {
	delete(s.lensTypes, id)
	return nil
}

func (s *stubCatalogRepo) ListLensTypes(_ context.Context, params pagination.Params) (*pagination.Page[models.LensType], error) {
	items := make([]models.LensType, 0, len(s.lensTypes))
	for _, lensType := range s.lensTypes {
		items = append(items, *lensType)
	}
	return pagination.NewPage(items, int64(len(items)), params.Normalize("created_at")), nil
}

func (s *stubCatalogRepo) CreateLensFeature(_ context.Context, feature *models.LensFeature) (*models.LensFeature, error) {
	if feature.ID == uuid.Nil {
		feature.ID = uuid.New()
	}
	s.lensFeatures[feature.ID] = feature
	return feature, nil
}

func (s *stubCatalogRepo) UpdateLensFeature(_ context.Context, feature *models.LensFeature) error {
	s.lensFeatures[feature.ID] = feature
	return nil
}

func (s *stubCatalogRepo) DeleteLensFeature(_ context.Context, id uuid.UUID) error {
	delete(s.lensFeatures, id)
	return nil
}

func (s *stubCatalogRepo) ListLensFeatures(_ context.Context, params pagination.Params) (*pagination.Page[models.LensFeature], error) {
	items := make([]models.LensFeature, 0, len(s.lensFeatures))
	for _, feature := range s.lensFeatures {
		items = append(items, *feature)
	}
	return pagination.NewPage(items, int64(len(items)), params.Normalize("created_at")), nil
}

func (s *stubCatalogRepo) CreatePrescription(_ context.Context, prescription *models.Prescription) (*models.Prescription, error) {
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	s.prescriptions = append(s.prescriptions, prescription)
	return prescription, nil
}

func (s *stubCatalogRepo) ListPrescriptionsByUser(_ context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Prescription], error) {
	items := make([]models.Prescription, 0)
	for _, prescription := range s.prescriptions {
		if prescription.UserID == userID {
			items = append(items, *prescription)
		}
	}
	return pagination.NewPage(items, int64(len(items)), params.Normalize("created_at")), nil
}

func newTestService(t *testing.T) (*Service, *stubCatalogRepo) {
	t.Helper()
	repo := newStubCatalogRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateFrameDefaultsToAvailable(t *testing.T) {
	svc, _ := newTestService(t)

	frame, err := svc.CreateFrame(context.Background(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	require.Equal(t, enums.FrameStatusAvailable, frame.Status)
	require.NotEqual(t, uuid.Nil, frame.ID)
}

func TestCreateFrameRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateFrame(context.Background(), FrameInput{
		Name:      "  ",
		BasePrice: decimal.NewFromInt(120),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateFrame(context.Background(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateFrame(context.Background(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(120),
		Status:    "melted",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateFrameUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateFrame(context.Background(), uuid.New(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(120),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateFrameOverwritesAttributes(t *testing.T) {
	svc, repo := newTestService(t)

	frame, err := svc.CreateFrame(context.Background(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(120),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateFrame(context.Background(), frame.ID, FrameInput{
		Name:      "Wayfarer Classic II",
		BasePrice: decimal.NewFromInt(135),
		Status:    "out_of_stock",
	})
	require.NoError(t, err)
	require.Equal(t, "Wayfarer Classic II", updated.Name)
	require.True(t, updated.BasePrice.Equal(decimal.NewFromInt(135)))
	require.Equal(t, enums.FrameStatusOutOfStock, updated.Status)
	require.Equal(t, updated, repo.frames[frame.ID])
}

func TestDeleteFrameRequiresExistingRow(t *testing.T) {
	svc, repo := newTestService(t)

	err := svc.DeleteFrame(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	frame, err := svc.CreateFrame(context.Background(), FrameInput{
		Name:      "Wayfarer Classic",
		BasePrice: decimal.NewFromInt(120),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFrame(context.Background(), frame.ID))
	require.Equal(t, []uuid.UUID{frame.ID}, repo.deletedFrames)
}

func TestLensTypeRejectsNegativeExtraPrice(t *testing.T) {
	svc, _ := newTestService(t)

	negative := decimal.NewFromInt(-5)
	_, err := svc.CreateLensType(context.Background(), LensTypeInput{
		Name:       "Single Vision",
		ExtraPrice: &negative,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreatePrescriptionRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePrescription(context.Background(), PrescriptionInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestListPrescriptionsScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)

	owner := uuid.New()
	other := uuid.New()
	for _, userID := range []uuid.UUID{owner, owner, other} {
		_, err := svc.CreatePrescription(context.Background(), PrescriptionInput{UserID: userID})
		require.NoError(t, err)
	}

	page, err := svc.ListPrescriptions(context.Background(), owner, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, prescription := range page.Items {
		require.Equal(t, owner, prescription.UserID)
	}
}
