package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring item repeats.
type Frequency string

// Supported frequencies.
const (
	FrequencyDaily        Frequency = "daily"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencySemiannually Frequency = "semiannually"
	FrequencyAnnually     Frequency = "annually"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencySemiannually, FrequencyAnnually:
		return true
	}
	return false
}

// PeriodType maps a frequency onto the budget period of the same length.
func (f Frequency) PeriodType() PeriodType {
	switch f {
	case FrequencyDaily:
		return PeriodDaily
	case FrequencyWeekly:
		return PeriodWeekly
	case FrequencyMonthly:
		return PeriodMonthly
	case FrequencySemiannually:
		return PeriodSemiannual
	case FrequencyAnnually:
		return PeriodAnnual
	}
	panic(fmt.Sprintf("schedule: unknown frequency %q", f))
}

// months returns the period length in calendar months, or 0 for day-based
// frequencies.
func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencySemiannually:
		return 6
	case FrequencyAnnually:
		return 12
	}
	return 0
}

// RecurringItem is a subscription or bill reminder as seen by the projector.
// AnchorDay is a day of month and only matters for month-based frequencies.
type RecurringItem struct {
	ID            string
	OwnerID       string
	Name          string
	Amount        decimal.Decimal
	Frequency     Frequency
	AnchorDay     int
	LastChargedAt *time.Time
}

// AddMonths adds n calendar months to t keeping the clock. When the day does
// not exist in the target month it is clamped to the month's last day, so
// Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// Advance moves t forward by exactly one period of f.
func Advance(f Frequency, t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly, FrequencySemiannually, FrequencyAnnually:
		return AddMonths(t, f.months())
	}
	panic(fmt.Sprintf("schedule: unknown frequency %q", f))
}

// NextOccurrence projects the next due date of a recurring item.
//
// With lastChargedAt the result is exactly one period after it. Without it,
// day-based frequencies fall due one period from today, and month-based ones
// fall on anchorDay of the current month unless that day has already been
// reached, in which case they move one period ahead.
func NextOccurrence(f Frequency, anchorDay int, lastChargedAt *time.Time, now time.Time) time.Time {
	if lastChargedAt != nil {
		return Advance(f, *lastChargedAt)
	}

	today := StartOfDay(now)
	switch f {
	case FrequencyDaily, FrequencyWeekly:
		return Advance(f, today)
	case FrequencyMonthly, FrequencySemiannually, FrequencyAnnually:
		if anchorDay < 1 || anchorDay > 31 {
			panic(fmt.Sprintf("schedule: anchor day %d out of range", anchorDay))
		}
		// A clamped anchor falls due on the month's last day.
		current := onDay(today, anchorDay)
		if today.Day() >= current.Day() {
			return onDay(AddMonths(firstOfMonth(today), f.months()), anchorDay)
		}
		return current
	}
	panic(fmt.Sprintf("schedule: unknown frequency %q", f))
}

// onDay moves t to the given day of its month, clamped to the month length.
func onDay(t time.Time, day int) time.Time {
	if last := daysIn(t.Year(), t.Month()); day > last {
		day = last
	}
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueToday reports whether an item falls due on now's calendar day. Monthly
// items without a charge history are due on their anchor day.
func DueToday(item RecurringItem, now time.Time) bool {
	today := StartOfDay(now)
	if item.LastChargedAt == nil && item.Frequency == FrequencyMonthly {
		return onDay(today, item.AnchorDay).Equal(today)
	}
	next := NextOccurrence(item.Frequency, item.AnchorDay, item.LastChargedAt, now)
	return StartOfDay(next).Equal(today)
}
