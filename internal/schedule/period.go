// Package schedule implements the calendar arithmetic shared by budgets,
// subscriptions, bill reminders and installment purchases.
//
// Every function here is pure and works on already-fetched snapshots. Inputs
// are expected to have passed request validation; a broken precondition
// (unknown period type, non-positive budget amount) panics.
package schedule

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// PeriodType is the granularity of a budget.
type PeriodType string

// Supported period types.
const (
	PeriodDaily      PeriodType = "daily"
	PeriodWeekly     PeriodType = "weekly"
	PeriodMonthly    PeriodType = "monthly"
	PeriodSemiannual PeriodType = "semiannual"
	PeriodAnnual     PeriodType = "annual"
)

// PeriodTypes lists every valid period type.
var PeriodTypes = []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodSemiannual, PeriodAnnual}

// Valid reports whether p is a known period type.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodSemiannual, PeriodAnnual:
		return true
	}
	return false
}

// Range is a closed time interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End].
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Weeks start on Sunday.
var calendar = &now.Config{WeekStartDay: time.Sunday}

// PeriodRange returns the full-day bounds of the period of type p containing
// ref, in ref's location.
func PeriodRange(p PeriodType, ref time.Time) Range {
	n := calendar.With(ref)
	switch p {
	case PeriodDaily:
		return Range{Start: n.BeginningOfDay(), End: n.EndOfDay()}
	case PeriodWeekly:
		return Range{Start: n.BeginningOfWeek(), End: n.EndOfWeek()}
	case PeriodMonthly:
		return Range{Start: n.BeginningOfMonth(), End: n.EndOfMonth()}
	case PeriodSemiannual:
		return Range{Start: n.BeginningOfHalf(), End: n.EndOfHalf()}
	case PeriodAnnual:
		return Range{Start: n.BeginningOfYear(), End: n.EndOfYear()}
	}
	panic(fmt.Sprintf("schedule: unknown period type %q", p))
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return calendar.With(t).BeginningOfDay()
}

// EndOfDay returns the last instant of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return calendar.With(t).EndOfDay()
}

// CivilDate reinterprets the calendar date of t (as seen in t's own location)
// as midnight in loc. Dates are stored as UTC midnights; comparing them
// against local period bounds requires moving the date, not the instant.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MonthsBetween counts calendar-month boundaries between from and to,
// ignoring the day of month.
func MonthsBetween(from, to time.Time) int {
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if n < 0 {
		return -n
	}
	return n
}
