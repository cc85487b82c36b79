package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prescription is owned by exactly one user and is usable only by that user
// while unexpired.
type Prescription struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	SphereLeft  *float64       `gorm:"column:sphere_left"`
	SphereRight *float64       `gorm:"column:sphere_right"`
	CylLeft     *float64       `gorm:"column:cyl_left"`
	CylRight    *float64       `gorm:"column:cyl_right"`
	PDmm        *float64       `gorm:"column:pd_mm"`
	Notes       *string        `gorm:"column:notes"`
	ExpiresAt   *time.Time     `gorm:"column:expires_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// UsableBy reports whether the prescription belongs to the user and has not
// expired as of now.
func (p *Prescription) UsableBy(userID uuid.UUID, now time.Time) bool {
	if p == nil || p.UserID != userID {
		return false
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		return false
	}
	return true
}
