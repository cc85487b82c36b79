package enums

import (
	"fmt"
	"strings"
)

// PreorderStatus tracks the lifecycle of a preorder reservation.
type PreorderStatus string

const (
	PreorderStatusPending   PreorderStatus = "pending"
	PreorderStatusConfirmed PreorderStatus = "confirmed"
	PreorderStatusPaid      PreorderStatus = "paid"
	PreorderStatusConverted PreorderStatus = "converted"
	PreorderStatusCancelled PreorderStatus = "cancelled"
)

var validPreorderStatuses = []PreorderStatus{
	PreorderStatusPending,
	PreorderStatusConfirmed,
	PreorderStatusPaid,
	PreorderStatusConverted,
	PreorderStatusCancelled,
}

// String implements fmt.Stringer.
func (p PreorderStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PreorderStatus.
func (p PreorderStatus) IsValid() bool {
	for _, candidate := range validPreorderStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (p PreorderStatus) IsTerminal() bool {
	return p == PreorderStatusConverted || p == PreorderStatusCancelled
}

// ParsePreorderStatus converts raw input into a PreorderStatus.
func ParsePreorderStatus(value string) (PreorderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPreorderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid preorder status %q", value)
}
