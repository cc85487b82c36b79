package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
)

// CatalogStore is the catalog lookup surface the pricing engine needs.
// internal/catalog's repository satisfies it.
type CatalogStore interface {
	FindFrame(ctx context.Context, id uuid.UUID) (*models.Frame, error)
	FindLensType(ctx context.Context, id uuid.UUID) (*models.LensType, error)
	FindLensFeature(ctx context.Context, id uuid.UUID) (*models.LensFeature, error)
	FindPrescription(ctx context.Context, id uuid.UUID) (*models.Prescription, error)
}

// ItemInput is one requested line item before validation and pricing.
type ItemInput struct {
	FrameID        uuid.UUID
	LensTypeID     *uuid.UUID
	LensFeatureID  *uuid.UUID
	PrescriptionID *uuid.UUID
	Color          *string
	Quantity       int
}

// ResolvedItem carries the catalog rows behind a validated item plus its unit
// price snapshot.
type ResolvedItem struct {
	Input       ItemInput
	Frame       *models.Frame
	LensType    *models.LensType
	LensFeature *models.LensFeature
	UnitPrice   decimal.Decimal
}

// ValidationResult accumulates every business-rule violation found; it never
// short-circuits on the first failure.
type ValidationResult struct {
	OK     bool
	Errors []string
}

// Service prices configured items and enforces the item-level business rules.
type Service struct {
	catalog CatalogStore
	now     func() time.Time
}

func NewService(catalog CatalogStore) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	return &Service{catalog: catalog, now: time.Now}, nil
}

// Price returns frame base price plus the optional lens type and feature
// extras. Missing extras count as zero. Pure and deterministic.
func Price(frame *models.Frame, lensType *models.LensType, lensFeature *models.LensFeature) decimal.Decimal {
	total := decimal.Zero
	if frame != nil {
		total = total.Add(frame.BasePrice)
	}
	if lensType != nil && lensType.ExtraPrice != nil {
		total = total.Add(*lensType.ExtraPrice)
	}
	if lensFeature != nil && lensFeature.ExtraPrice != nil {
		total = total.Add(*lensFeature.ExtraPrice)
	}
	return total
}

// Options tweak validation per purchase path.
type Options struct {
	// RequireAvailability enforces frame availability. Orders set it;
	// preorders reserve ahead and are exempt.
	RequireAvailability bool
}

// ValidateItem checks one item and returns the accumulated rule violations in
// a fixed order alongside the resolved catalog rows. A non-nil error means an
// infrastructure failure, not a validation outcome.
func (s *Service) ValidateItem(ctx context.Context, item ItemInput, userID uuid.UUID, opts Options) (*ResolvedItem, []string, error) {
	var violations []string
	resolved := &ResolvedItem{Input: item}

	frame, err := s.catalog.FindFrame(ctx, item.FrameID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		violations = append(violations, "frame not found")
	case err != nil:
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load frame")
	default:
		resolved.Frame = frame
		if opts.RequireAvailability && frame.Status != enums.FrameStatusAvailable {
			violations = append(violations, fmt.Sprintf("frame %q is not available", frame.Name))
		}
		if frame.Color == nil && (item.Color == nil || *item.Color == "") {
			violations = append(violations, "color selection is required for this frame")
		}
	}

	if item.LensTypeID != nil {
		lensType, err := s.catalog.FindLensType(ctx, *item.LensTypeID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			violations = append(violations, "lens type not found")
		case err != nil:
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lens type")
		default:
			resolved.LensType = lensType
			if lensType.RequiresPrescription && item.PrescriptionID == nil {
				violations = append(violations, "lens type requires a prescription")
			}
		}
	}

	if item.PrescriptionID != nil {
		prescription, err := s.catalog.FindPrescription(ctx, *item.PrescriptionID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			violations = append(violations, "prescription not found")
		case err != nil:
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load prescription")
		default:
			if prescription.UserID != userID {
				violations = append(violations, "prescription belongs to another user")
			} else if !prescription.UsableBy(userID, s.now()) {
				violations = append(violations, "prescription has expired")
			}
		}
	}

	if item.LensFeatureID != nil {
		lensFeature, err := s.catalog.FindLensFeature(ctx, *item.LensFeatureID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			violations = append(violations, "lens feature not found")
		case err != nil:
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lens feature")
		default:
			resolved.LensFeature = lensFeature
		}
	}

	if item.Quantity <= 0 {
		violations = append(violations, "quantity must be greater than zero")
	}

	if len(violations) > 0 {
		return nil, violations, nil
	}

	resolved.UnitPrice = Price(resolved.Frame, resolved.LensType, resolved.LensFeature)
	return resolved, nil, nil
}

// ValidateItems validates a batch. The batch is valid only when it is
// non-empty and every item passes; errors from all items are reported
// together, prefixed with the item position.
func (s *Service) ValidateItems(ctx context.Context, items []ItemInput, userID uuid.UUID, opts Options) ([]ResolvedItem, ValidationResult, error) {
	if len(items) == 0 {
		return nil, ValidationResult{Errors: []string{"at least one item is required"}}, nil
	}

	resolved := make([]ResolvedItem, 0, len(items))
	var allViolations []string
	for i, item := range items {
		res, violations, err := s.ValidateItem(ctx, item, userID, opts)
		if err != nil {
			return nil, ValidationResult{}, err
		}
		for _, v := range violations {
			allViolations = append(allViolations, fmt.Sprintf("item %d: %s", i+1, v))
		}
		if res != nil {
			resolved = append(resolved, *res)
		}
	}

	if len(allViolations) > 0 {
		return nil, ValidationResult{Errors: allViolations}, nil
	}
	return resolved, ValidationResult{OK: true}, nil
}
