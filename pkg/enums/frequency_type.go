package enums

import "fmt"

// FrequencyType identifies how often a basket item should be repurchased.
type FrequencyType string

const (
	FrequencyWeekly    FrequencyType = "weekly"
	FrequencyMonthly   FrequencyType = "monthly"
	FrequencyQuarterly FrequencyType = "quarterly"
	FrequencyCustom    FrequencyType = "custom"
	FrequencyBuyOnce   FrequencyType = "buy_once"
)

var validFrequencyTypes = []FrequencyType{
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyCustom,
	FrequencyBuyOnce,
}

// IsValid checks whether the given type matches the canonical enum.
func (f FrequencyType) IsValid() bool {
	for _, candidate := range validFrequencyTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// Recurring reports whether the frequency repeats after the first purchase.
func (f FrequencyType) Recurring() bool {
	return f.IsValid() && f != FrequencyBuyOnce
}

// ParseFrequencyType converts raw strings into FrequencyType.
func ParseFrequencyType(value string) (FrequencyType, error) {
	for _, candidate := range validFrequencyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid frequency type %q", value)
}
