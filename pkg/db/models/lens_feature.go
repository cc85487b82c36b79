package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LensFeature is an optional coating or treatment applied on top of a lens.
type LensFeature struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Specification string           `gorm:"column:specification;not null"`
	LensIndex     *float64         `gorm:"column:lens_index"`
	ExtraPrice    *decimal.Decimal `gorm:"column:extra_price;type:numeric(12,2)"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
