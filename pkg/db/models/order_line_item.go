package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem is one configured purchase unit. Price is the unit price
// snapshot taken when the item was validated; it is immutable afterwards.
type OrderLineItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	FrameID        uuid.UUID       `gorm:"column:frame_id;type:uuid;not null"`
	LensTypeID     *uuid.UUID      `gorm:"column:lens_type_id;type:uuid"`
	LensFeatureID  *uuid.UUID      `gorm:"column:lens_feature_id;type:uuid"`
	PrescriptionID *uuid.UUID      `gorm:"column:prescription_id;type:uuid"`
	Color          *string         `gorm:"column:color"`
	Quantity       int             `gorm:"column:quantity;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
