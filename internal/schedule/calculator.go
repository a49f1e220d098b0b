package schedule

import (
	"time"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	"github.com/aviders/basket-backend/pkg/errors"
)

// Monthly and quarterly schedules accept any calendar day up to 31; computed
// occurrences are silently capped at day 28 so every month has a valid date
// (no February 30).
const (
	maxDayOfMonth      = 28
	maxDayOfMonthInput = 31
)

const defaultIntervalDays = 30

// NextRun computes the next due timestamp for a frequency relative to now.
// Pure and deterministic given now; callers inject their clock.
func NextRun(freq models.Frequency, now time.Time) time.Time {
	switch freq.Type {
	case enums.FrequencyWeekly:
		target := 0
		if freq.DayOfWeek != nil {
			target = *freq.DayOfWeek
		}
		offset := (target - int(now.Weekday()) + 7) % 7
		if offset == 0 {
			// Never "today": an item added on its own weekday is due next week.
			offset = 7
		}
		return now.AddDate(0, 0, offset)

	case enums.FrequencyMonthly:
		dom := 1
		if freq.DayOfMonth != nil {
			dom = *freq.DayOfMonth
		}
		return setDayOfMonth(now.AddDate(0, 1, 0), capDay(dom))

	case enums.FrequencyQuarterly:
		dom := now.Day()
		if freq.DayOfMonth != nil {
			dom = *freq.DayOfMonth
		}
		return setDayOfMonth(now.AddDate(0, 3, 0), capDay(dom))

	case enums.FrequencyCustom:
		interval := defaultIntervalDays
		if freq.IntervalDays != nil && *freq.IntervalDays > 0 {
			interval = *freq.IntervalDays
		}
		return now.AddDate(0, 0, interval)

	default:
		// buy_once: due immediately.
		return now
	}
}

// Validate rejects malformed frequency values before they reach the store.
func Validate(freq models.Frequency) error {
	if !freq.Type.IsValid() {
		return errors.New(errors.CodeValidation, "invalid frequency type")
	}
	switch freq.Type {
	case enums.FrequencyWeekly:
		if freq.DayOfWeek == nil || *freq.DayOfWeek < 0 || *freq.DayOfWeek > 6 {
			return errors.New(errors.CodeValidation, "weekly frequency requires dayOfWeek between 0 and 6")
		}
	case enums.FrequencyMonthly:
		if freq.DayOfMonth == nil || *freq.DayOfMonth < 1 || *freq.DayOfMonth > maxDayOfMonthInput {
			return errors.New(errors.CodeValidation, "monthly frequency requires dayOfMonth between 1 and 31")
		}
	case enums.FrequencyQuarterly:
		if freq.DayOfMonth != nil && (*freq.DayOfMonth < 1 || *freq.DayOfMonth > maxDayOfMonthInput) {
			return errors.New(errors.CodeValidation, "quarterly dayOfMonth must be between 1 and 31")
		}
	case enums.FrequencyCustom:
		if freq.IntervalDays != nil && *freq.IntervalDays < 1 {
			return errors.New(errors.CodeValidation, "custom intervalDays must be positive")
		}
	}
	return nil
}

func capDay(dom int) int {
	if dom > maxDayOfMonth {
		return maxDayOfMonth
	}
	if dom < 1 {
		return 1
	}
	return dom
}

func setDayOfMonth(t time.Time, dom int) time.Time {
	return time.Date(t.Year(), t.Month(), dom, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
