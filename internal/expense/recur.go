package expense

import "time"

// NextOccurrence advances a recurrence date by one period.
// Monthly and yearly additions follow time.AddDate semantics: Jan 31 +1
// month normalizes to Mar 2/3, matching how the rest of the system has
// always behaved.
func NextOccurrence(freq Frequency, from time.Time) time.Time {
	switch freq {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}

// Expired reports whether the recurrence has passed its end date as of now.
func (r *Recurrence) Expired(now time.Time) bool {
	return r.EndDate != nil && now.After(*r.EndDate)
}

// Due reports whether an occurrence should be materialized as of now.
func (r *Recurrence) Due(now time.Time) bool {
	return !r.Expired(now) && !r.NextDate.After(now)
}
