package enums

import (
	"fmt"
	"strings"
)

// FrameStatus tracks catalog availability of a frame.
type FrameStatus string

const (
	FrameStatusAvailable  FrameStatus = "available"
	FrameStatusInactive   FrameStatus = "inactive"
	FrameStatusOutOfStock FrameStatus = "out_of_stock"
)

var validFrameStatuses = []FrameStatus{
	FrameStatusAvailable,
	FrameStatusInactive,
	FrameStatusOutOfStock,
}

// String implements fmt.Stringer.
func (f FrameStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FrameStatus.
func (f FrameStatus) IsValid() bool {
	for _, candidate := range validFrameStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFrameStatus converts raw input into a FrameStatus.
func ParseFrameStatus(value string) (FrameStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validFrameStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid frame status %q", value)
}
