package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/pagination"
)

// Service owns catalog attribute validation and storage. No state machine
// lives here; availability is a plain attribute consumed by the pricing
// engine.
type Service struct {
	repo Repository
}

func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) CreateFrame(ctx context.Context, input FrameInput) (*models.Frame, error) {
	frame, err := frameFromInput(&models.Frame{}, input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateFrame(ctx, frame)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create frame")
	}
	return created, nil
}

func (s *Service) UpdateFrame(ctx context.Context, id uuid.UUID, input FrameInput) (*models.Frame, error) {
	frame, err := s.repo.FindFrame(ctx, id)
	if err != nil {
		return nil, mapFindError(err, "frame")
	}
	frame, err = frameFromInput(frame, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFrame(ctx, frame); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update frame")
	}
	return frame, nil
}

func (s *Service) DeleteFrame(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindFrame(ctx, id); err != nil {
		return mapFindError(err, "frame")
	}
	if err := s.repo.DeleteFrame(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete frame")
	}
	return nil
}

func (s *Service) ListFrames(ctx context.Context, params pagination.Params) (*pagination.Page[models.Frame], error) {
	page, err := s.repo.ListFrames(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list frames")
	}
	return page, nil
}

func (s *Service) CreateLensType(ctx context.Context, input LensTypeInput) (*models.LensType, error) {
	lensType, err := lensTypeFromInput(&models.LensType{}, input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateLensType(ctx, lensType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lens type")
	}
	return created, nil
}

func (s *Service) UpdateLensType(ctx context.Context, id uuid.UUID, input LensTypeInput) (*models.LensType, error) {
	lensType, err := s.repo.FindLensType(ctx, id)
	if err != nil {
		return nil, mapFindError(err, "lens type")
	}
	lensType, err = lensTypeFromInput(lensType, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLensType(ctx, lensType); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lens type")
	}
	return lensType, nil
}

func (s *Service) DeleteLensType(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindLensType(ctx, id); err != nil {
		return mapFindError(err, "lens type")
	}
	if err := s.repo.DeleteLensType(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lens type")
	}
	return nil
}

func (s *Service) ListLensTypes(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensType], error) {
	page, err := s.repo.ListLensTypes(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lens types")
	}
	return page, nil
}

func (s *Service) CreateLensFeature(ctx context.Context, input LensFeatureInput) (*models.LensFeature, error) {
	feature, err := lensFeatureFromInput(&models.LensFeature{}, input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateLensFeature(ctx, feature)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lens feature")
	}
	return created, nil
}

func (s *Service) UpdateLensFeature(ctx context.Context, id uuid.UUID, input LensFeatureInput) (*models.LensFeature, error) {
	feature, err := s.repo.FindLensFeature(ctx, id)
	if err != nil {
		return nil, mapFindError(err, "lens feature")
	}
	feature, err = lensFeatureFromInput(feature, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLensFeature(ctx, feature); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lens feature")
	}
	return feature, nil
}

func (s *Service) DeleteLensFeature(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindLensFeature(ctx, id); err != nil {
		return mapFindError(err, "lens feature")
	}
	if err := s.repo.DeleteLensFeature(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lens feature")
	}
	return nil
}

func (s *Service) ListLensFeatures(ctx context.Context, params pagination.Params) (*pagination.Page[models.LensFeature], error) {
	page, err := s.repo.ListLensFeatures(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lens features")
	}
	return page, nil
}

func (s *Service) CreatePrescription(ctx context.Context, input PrescriptionInput) (*models.Prescription, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	prescription := &models.Prescription{
		UserID:      input.UserID,
		SphereLeft:  input.SphereLeft,
		SphereRight: input.SphereRight,
		CylLeft:     input.CylLeft,
		CylRight:    input.CylRight,
		PDmm:        input.PDmm,
		Notes:       input.Notes,
		ExpiresAt:   input.ExpiresAt,
	}
	created, err := s.repo.CreatePrescription(ctx, prescription)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create prescription")
	}
	return created, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Prescription], error) {
	page, err := s.repo.ListPrescriptionsByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prescriptions")
	}
	return page, nil
}

func frameFromInput(frame *models.Frame, input FrameInput) (*models.Frame, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "frame name is required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	status := enums.FrameStatusAvailable
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := enums.ParseFrameStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid frame status")
		}
		status = parsed
	}
	frame.Name = name
	frame.Brand = input.Brand
	frame.Material = input.Material
	frame.Color = input.Color
	frame.BasePrice = input.BasePrice
	frame.Status = status
	return frame, nil
}

func lensTypeFromInput(lensType *models.LensType, input LensTypeInput) (*models.LensType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lens type name is required")
	}
	if input.ExtraPrice != nil && input.ExtraPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra price cannot be negative")
	}
	lensType.Name = name
	lensType.Specification = strings.TrimSpace(input.Specification)
	lensType.ExtraPrice = input.ExtraPrice
	lensType.RequiresPrescription = input.RequiresPrescription
	return lensType, nil
}

func lensFeatureFromInput(feature *models.LensFeature, input LensFeatureInput) (*models.LensFeature, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lens feature name is required")
	}
	if input.ExtraPrice != nil && input.ExtraPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra price cannot be negative")
	}
	feature.Name = name
	feature.Specification = strings.TrimSpace(input.Specification)
	feature.LensIndex = input.LensIndex
	feature.ExtraPrice = input.ExtraPrice
	return feature, nil
}

func mapFindError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
