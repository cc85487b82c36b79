package preorders

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
)

// CreatePreorderInput is the validated payload for preorder creation.
// ExpectedDate defaults to fourteen days out when absent.
type CreatePreorderInput struct {
	UserID       uuid.UUID
	ExpectedDate *time.Time
	Items        []pricing.ItemInput
}

// UpdateStatusInput carries a backoffice status change request.
type UpdateStatusInput struct {
	PreorderID uuid.UUID
	Status     string
	Role       string
}

// ConvertInput carries the conversion request for a vetted preorder.
type ConvertInput struct {
	PreorderID      uuid.UUID
	ShippingAddress string
}
