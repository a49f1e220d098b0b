package enums

import "fmt"

// ItemStatus tracks the lifecycle state of a basket item.
type ItemStatus string

const (
	ItemStatusActive    ItemStatus = "active"
	ItemStatusPaused    ItemStatus = "paused"
	ItemStatusCancelled ItemStatus = "cancelled"
)

var validItemStatuses = []ItemStatus{
	ItemStatusActive,
	ItemStatusPaused,
	ItemStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw strings into ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
