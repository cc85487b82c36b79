package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FrameInput carries the writable frame attributes.
type FrameInput struct {
	Name      string
	Brand     *string
	Material  *string
	Color     *string
	BasePrice decimal.Decimal
	Status    string
}

// LensTypeInput carries the writable lens type attributes.
type LensTypeInput struct {
	Name                 string
	Specification        string
	ExtraPrice           *decimal.Decimal
	RequiresPrescription bool
}

// LensFeatureInput carries the writable lens feature attributes.
type LensFeatureInput struct {
	Name          string
	Specification string
	LensIndex     *float64
	ExtraPrice    *decimal.Decimal
}

// PrescriptionInput carries a new prescription owned by the requesting user.
type PrescriptionInput struct {
	UserID      uuid.UUID
	SphereLeft  *float64
	SphereRight *float64
	CylLeft     *float64
	CylRight    *float64
	PDmm        *float64
	Notes       *string
	ExpiresAt   *time.Time
}
