package orders

import (
	"github.com/google/uuid"

	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
)

// CreateOrderInput is the validated payload for order creation.
type CreateOrderInput struct {
	UserID          uuid.UUID
	ShippingAddress string
	Items           []pricing.ItemInput
}

// UpdateStatusInput carries a caller-requested status change.
type UpdateStatusInput struct {
	OrderID  uuid.UUID
	Status   string
	CallerID uuid.UUID
	Role     string
}
