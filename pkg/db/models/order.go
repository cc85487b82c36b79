package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
)

// Order is a binding purchase. TotalAmount is computed once at creation time
// from the line-item snapshots and never recomputed.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ArrivedAt       *time.Time        `gorm:"column:arrived_at"`
	Items           []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment         `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
