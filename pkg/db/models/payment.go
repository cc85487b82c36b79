package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
)

// Payment targets exactly one of an order or a preorder. Conversion re-points
// preorder payments to the new order while keeping that invariant intact.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       *uuid.UUID          `gorm:"column:order_id;type:uuid;index"`
	PreorderID    *uuid.UUID          `gorm:"column:preorder_id;type:uuid;index"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TransactionID *string             `gorm:"column:transaction_id"`
	PaidAt        *time.Time          `gorm:"column:paid_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TargetsOrder reports whether the payment points at an order.
func (p *Payment) TargetsOrder() bool {
	return p != nil && p.OrderID != nil
}

// HasExactlyOneTarget checks the order-xor-preorder foreign key invariant.
func (p *Payment) HasExactlyOneTarget() bool {
	if p == nil {
		return false
	}
	return (p.OrderID != nil) != (p.PreorderID != nil)
}
