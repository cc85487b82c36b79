package controllers

import (
	"github.com/google/uuid"

	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
)

// lineItemBody is the shared request shape for order and preorder items.
// Quantity is validated by the pricing engine so that every item-level rule
// comes back in one accumulated list.
type lineItemBody struct {
	FrameID        string  `json:"frame_id" validate:"required,uuid"`
	LensTypeID     *string `json:"lens_type_id" validate:"omitempty,uuid"`
	LensFeatureID  *string `json:"lens_feature_id" validate:"omitempty,uuid"`
	PrescriptionID *string `json:"prescription_id" validate:"omitempty,uuid"`
	Color          *string `json:"color"`
	Quantity       int     `json:"quantity"`
}

func parseItems(bodies []lineItemBody) ([]pricing.ItemInput, error) {
	items := make([]pricing.ItemInput, 0, len(bodies))
	for _, body := range bodies {
		frameID, err := uuid.Parse(body.FrameID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid frame id")
		}
		item := pricing.ItemInput{
			FrameID:  frameID,
			Color:    body.Color,
			Quantity: body.Quantity,
		}
		if item.LensTypeID, err = parseOptionalUUID(body.LensTypeID, "lens type id"); err != nil {
			return nil, err
		}
		if item.LensFeatureID, err = parseOptionalUUID(body.LensFeatureID, "lens feature id"); err != nil {
			return nil, err
		}
		if item.PrescriptionID, err = parseOptionalUUID(body.PrescriptionID, "prescription id"); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &id, nil
}
