package schedule

import (
	"testing"
	"time"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	"github.com/aviders/basket-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestNextRunWeekly(t *testing.T) {
	// 2024-01-15 is a Monday.
	now := mustParse(t, "2024-01-15T10:30:00Z")

	tests := []struct {
		name      string
		dayOfWeek int
		want      string
	}{
		{name: "later this week", dayOfWeek: 5, want: "2024-01-19T10:30:00Z"},
		{name: "earlier weekday wraps to next week", dayOfWeek: 0, want: "2024-01-21T10:30:00Z"},
		{name: "same weekday lands a full week out", dayOfWeek: 1, want: "2024-01-22T10:30:00Z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			freq := models.Frequency{Type: enums.FrequencyWeekly, DayOfWeek: intPtr(tc.dayOfWeek)}
			got := NextRun(freq, now)
			if want := mustParse(t, tc.want); !got.Equal(want) {
				t.Fatalf("NextRun = %v, want %v", got, want)
			}
			if !got.After(now) {
				t.Fatalf("weekly next run %v is not strictly after now %v", got, now)
			}
		})
	}
}

func TestNextRunMonthly(t *testing.T) {
	now := mustParse(t, "2024-01-15T08:00:00Z")
	freq := models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: intPtr(10)}

	got := NextRun(freq, now)
	if want := mustParse(t, "2024-02-10T08:00:00Z"); !got.Equal(want) {
		t.Fatalf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunMonthlyCapsAtDay28(t *testing.T) {
	now := mustParse(t, "2024-01-15T08:00:00Z")
	freq := models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: intPtr(31)}

	got := NextRun(freq, now)
	if want := mustParse(t, "2024-02-28T08:00:00Z"); !got.Equal(want) {
		t.Fatalf("NextRun = %v, want %v (day must cap at 28)", got, want)
	}
}

func TestNextRunQuarterly(t *testing.T) {
	now := mustParse(t, "2024-01-15T08:00:00Z")

	t.Run("explicit day of month", func(t *testing.T) {
		freq := models.Frequency{Type: enums.FrequencyQuarterly, DayOfMonth: intPtr(5)}
		got := NextRun(freq, now)
		if want := mustParse(t, "2024-04-05T08:00:00Z"); !got.Equal(want) {
			t.Fatalf("NextRun = %v, want %v", got, want)
		}
	})

	t.Run("defaults to current day", func(t *testing.T) {
		freq := models.Frequency{Type: enums.FrequencyQuarterly}
		got := NextRun(freq, now)
		if want := mustParse(t, "2024-04-15T08:00:00Z"); !got.Equal(want) {
			t.Fatalf("NextRun = %v, want %v", got, want)
		}
	})
}

func TestNextRunCustom(t *testing.T) {
	now := mustParse(t, "2024-01-15T08:00:00Z")

	t.Run("explicit interval", func(t *testing.T) {
		freq := models.Frequency{Type: enums.FrequencyCustom, IntervalDays: intPtr(10)}
		got := NextRun(freq, now)
		if want := mustParse(t, "2024-01-25T08:00:00Z"); !got.Equal(want) {
			t.Fatalf("NextRun = %v, want %v", got, want)
		}
	})

	t.Run("missing interval defaults to 30 days", func(t *testing.T) {
		freq := models.Frequency{Type: enums.FrequencyCustom}
		got := NextRun(freq, now)
		if want := mustParse(t, "2024-02-14T08:00:00Z"); !got.Equal(want) {
			t.Fatalf("NextRun = %v, want %v", got, want)
		}
	})
}

func TestNextRunBuyOnce(t *testing.T) {
	now := mustParse(t, "2024-01-15T08:00:00Z")
	got := NextRun(models.Frequency{Type: enums.FrequencyBuyOnce}, now)
	if !got.Equal(now) {
		t.Fatalf("buy_once NextRun = %v, want %v (due immediately)", got, now)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		freq     models.Frequency
		wantCode errors.Code
	}{
		{name: "valid weekly", freq: models.Frequency{Type: enums.FrequencyWeekly, DayOfWeek: intPtr(3)}},
		{name: "weekly missing day", freq: models.Frequency{Type: enums.FrequencyWeekly}, wantCode: errors.CodeValidation},
		{name: "weekly day out of range", freq: models.Frequency{Type: enums.FrequencyWeekly, DayOfWeek: intPtr(7)}, wantCode: errors.CodeValidation},
		{name: "valid monthly", freq: models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: intPtr(28)}},
		{name: "monthly day 31 is accepted and capped later", freq: models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: intPtr(31)}},
		{name: "monthly day too large", freq: models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: intPtr(32)}, wantCode: errors.CodeValidation},
		{name: "monthly missing day", freq: models.Frequency{Type: enums.FrequencyMonthly}, wantCode: errors.CodeValidation},
		{name: "quarterly without day is allowed", freq: models.Frequency{Type: enums.FrequencyQuarterly}},
		{name: "quarterly day 31 is accepted and capped later", freq: models.Frequency{Type: enums.FrequencyQuarterly, DayOfMonth: intPtr(31)}},
		{name: "quarterly day out of range", freq: models.Frequency{Type: enums.FrequencyQuarterly, DayOfMonth: intPtr(32)}, wantCode: errors.CodeValidation},
		{name: "custom without interval is allowed", freq: models.Frequency{Type: enums.FrequencyCustom}},
		{name: "custom zero interval rejected", freq: models.Frequency{Type: enums.FrequencyCustom, IntervalDays: intPtr(0)}, wantCode: errors.CodeValidation},
		{name: "buy once", freq: models.Frequency{Type: enums.FrequencyBuyOnce}},
		{name: "unknown type", freq: models.Frequency{Type: enums.FrequencyType("fortnightly")}, wantCode: errors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.freq)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate returned %v, want nil", err)
				}
				return
			}
			appErr := errors.As(err)
			if appErr == nil {
				t.Fatalf("Validate returned %v, want coded error", err)
			}
			if appErr.Code() != tc.wantCode {
				t.Fatalf("Validate code = %s, want %s", appErr.Code(), tc.wantCode)
			}
		})
	}
}
