package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LensType describes a lens specification and whether it needs a prescription.
type LensType struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string           `gorm:"column:name;not null"`
	Specification        string           `gorm:"column:specification;not null"`
	ExtraPrice           *decimal.Decimal `gorm:"column:extra_price;type:numeric(12,2)"`
	RequiresPrescription bool             `gorm:"column:requires_prescription;not null;default:false"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt            gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
