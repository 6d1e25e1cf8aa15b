package expense

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		from time.Time
		want time.Time
	}{
		{"daily", FrequencyDaily, date(2026, 3, 15), date(2026, 3, 16)},
		{"weekly", FrequencyWeekly, date(2026, 3, 15), date(2026, 3, 22)},
		{"monthly", FrequencyMonthly, date(2026, 3, 15), date(2026, 4, 15)},
		{"yearly", FrequencyYearly, date(2026, 3, 15), date(2027, 3, 15)},
		{"monthly normalizes end of month", FrequencyMonthly, date(2026, 1, 31), date(2026, 3, 3)},
		{"yearly over leap day", FrequencyYearly, date(2024, 2, 29), date(2025, 3, 1)},
		{"unknown frequency is a no-op", Frequency("FORTNIGHTLY"), date(2026, 3, 15), date(2026, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOccurrence(tt.freq, tt.from); !got.Equal(tt.want) {
				t.Errorf("NextOccurrence(%v, %v) = %v, want %v", tt.freq, tt.from, got, tt.want)
			}
		})
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly} {
		if !f.Valid() {
			t.Errorf("%v should be valid", f)
		}
	}
	if Frequency("HOURLY").Valid() {
		t.Error("HOURLY should not be valid")
	}
	if Frequency("").Valid() {
		t.Error("empty frequency should not be valid")
	}
}

func TestRecurrenceDue(t *testing.T) {
	now := date(2026, 6, 1)
	end := date(2026, 5, 1)

	tests := []struct {
		name string
		rec  Recurrence
		want bool
	}{
		{
			name: "next date in the past is due",
			rec:  Recurrence{Frequency: FrequencyWeekly, NextDate: date(2026, 5, 25)},
			want: true,
		},
		{
			name: "next date today is due",
			rec:  Recurrence{Frequency: FrequencyDaily, NextDate: now},
			want: true,
		},
		{
			name: "next date in the future is not due",
			rec:  Recurrence{Frequency: FrequencyMonthly, NextDate: date(2026, 7, 1)},
			want: false,
		},
		{
			name: "expired series is never due",
			rec:  Recurrence{Frequency: FrequencyDaily, NextDate: date(2026, 5, 25), EndDate: &end},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Due(now); got != tt.want {
				t.Errorf("Due(%v) = %v, want %v", now, got, tt.want)
			}
		})
	}
}

func TestRecurrenceExpired(t *testing.T) {
	end := date(2026, 5, 1)

	r := Recurrence{Frequency: FrequencyDaily, NextDate: date(2026, 4, 30), EndDate: &end}
	if r.Expired(date(2026, 4, 30)) {
		t.Error("series should not be expired before its end date")
	}
	if r.Expired(end) {
		t.Error("series should not be expired on its end date")
	}
	if !r.Expired(date(2026, 5, 2)) {
		t.Error("series should be expired after its end date")
	}

	open := Recurrence{Frequency: FrequencyDaily, NextDate: date(2026, 4, 30)}
	if open.Expired(date(2030, 1, 1)) {
		t.Error("series without an end date never expires")
	}
}
