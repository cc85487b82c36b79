package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
)

// Preorder is a reservation that may later convert into a binding order.
type Preorder struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ExpectedDate time.Time            `gorm:"column:expected_date;not null"`
	Status       enums.PreorderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items        []PreorderLineItem   `gorm:"foreignKey:PreorderID;constraint:OnDelete:CASCADE"`
	Payments     []Payment            `gorm:"foreignKey:PreorderID"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
