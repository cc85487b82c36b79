package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
)

// Frame is a catalog item carrying the base price of a configured pair of
// glasses. A frame without a fixed color requires the buyer to pick one.
type Frame struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"column:name;not null"`
	Brand     *string           `gorm:"column:brand"`
	Material  *string           `gorm:"column:material"`
	Color     *string           `gorm:"column:color"`
	BasePrice decimal.Decimal   `gorm:"column:base_price;type:numeric(12,2);not null;default:0"`
	Status    enums.FrameStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt    `gorm:"column:deleted_at;index"`
}
