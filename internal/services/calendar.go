package services

import (
	"time"

	"finaudy/internal/models"
	"finaudy/internal/schedule"
)

// calendar carries the application timezone for services that reason about
// dates. clock is replaceable in tests.
type calendar struct {
	loc   *time.Location
	clock func() time.Time
}

func newCalendar(loc *time.Location) calendar {
	if loc == nil {
		loc = time.UTC
	}
	return calendar{loc: loc, clock: time.Now}
}

// now is the current instant in the application timezone.
func (c calendar) now() time.Time {
	return c.clock().In(c.loc)
}

// today is the current calendar date in its stored form.
func (c calendar) today() time.Time {
	return models.DateOf(c.clock(), c.loc)
}

// storedDate normalizes a date taken from input to its stored form, keeping
// the calendar day as written.
func storedDate(t time.Time) time.Time {
	return models.DateOf(t, t.Location())
}

// storedBounds converts a resolved window into inclusive stored-date bounds.
func storedBounds(r schedule.Range) (time.Time, time.Time) {
	return storedDate(r.Start), storedDate(r.End)
}
