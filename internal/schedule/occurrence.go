package schedule

import "time"

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DueOccurrences computes the calendar dates a rule should have fired on as
// of asOf, in ascending order. The lower bound is the rule's start date, or
// the day after its last successful run; the upper bound is asOf's date.
//
// When the backlog exceeds catchUpCap, only the most recent catchUpCap
// occurrences are returned and the count of older, skipped ones is reported.
// Skipping is informational: a rule that sat paused or broken for months
// must not flood the ledger on resume.
func DueOccurrences(rule Rule, asOf time.Time, catchUpCap int) (due []time.Time, skipped int) {
	upper := DateOf(asOf)
	lower := DateOf(rule.StartDate)
	if rule.LastRunDate != nil {
		dayAfter := DateOf(*rule.LastRunDate).AddDate(0, 0, 1)
		if dayAfter.After(lower) {
			lower = dayAfter
		}
	}
	if lower.After(upper) {
		return nil, 0
	}

	switch cadence := rule.Cadence.(type) {
	case Weekly:
		due = weeklyOccurrences(cadence.Weekday, lower, upper)
	case Monthly:
		due = monthlyOccurrences(cadence.DayOfMonth, lower, upper)
	default:
		return nil, 0
	}

	if catchUpCap > 0 && len(due) > catchUpCap {
		skipped = len(due) - catchUpCap
		due = due[skipped:]
	}
	return due, skipped
}

func weeklyOccurrences(weekday time.Weekday, lower, upper time.Time) []time.Time {
	first := lower.AddDate(0, 0, (int(weekday)-int(lower.Weekday())+7)%7)

	var due []time.Time
	for d := first; !d.After(upper); d = d.AddDate(0, 0, 7) {
		due = append(due, d)
	}
	return due
}

func monthlyOccurrences(dayOfMonth int, lower, upper time.Time) []time.Time {
	var due []time.Time
	year, month, _ := lower.Date()
	for {
		occurrence := clampToMonth(year, month, dayOfMonth)
		if occurrence.After(upper) {
			return due
		}
		if !occurrence.Before(lower) {
			due = append(due, occurrence)
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
}

// clampToMonth resolves dayOfMonth within a month, clamping to the month's
// last valid day (day 31 in February resolves to the 28th or 29th).
func clampToMonth(year int, month time.Month, dayOfMonth int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}
