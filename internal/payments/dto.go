package payments

import (
	"github.com/google/uuid"
)

// CreateInput targets exactly one of an order or a preorder.
type CreateInput struct {
	OrderID    *uuid.UUID
	PreorderID *uuid.UUID
	Method     string
	CallerID   uuid.UUID
}

// RedirectInput carries what the gateway needs beyond the payment itself.
type RedirectInput struct {
	PaymentID uuid.UUID
	ClientIP  string
}

// IPNResponse is the fixed-vocabulary answer the gateway expects. The codes
// are part of the wire protocol and must be returned verbatim.
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}
