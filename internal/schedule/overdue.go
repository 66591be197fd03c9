package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaidSet holds the ids of recurring items already settled for their
// current period.
type PaidSet map[string]struct{}

// Add marks id as paid.
func (p PaidSet) Add(id string) { p[id] = struct{}{} }

// Has reports whether id is paid.
func (p PaidSet) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// IsOverdue reports whether an unpaid item's next occurrence ended before now.
func IsOverdue(item RecurringItem, paid PaidSet, now time.Time) bool {
	if paid.Has(item.ID) {
		return false
	}
	next := NextOccurrence(item.Frequency, item.AnchorDay, item.LastChargedAt, now)
	return now.After(EndOfDay(next))
}

// PaidThisPeriod returns the items that have a linked expense falling inside
// the current period of their frequency.
func PaidThisPeriod(items []RecurringItem, entries []LedgerEntry, now time.Time) PaidSet {
	byID := make(map[string]RecurringItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	paid := PaidSet{}
	for _, e := range entries {
		if e.Kind != KindExpense || e.SubscriptionID == "" {
			continue
		}
		it, ok := byID[e.SubscriptionID]
		if !ok || paid.Has(it.ID) {
			continue
		}
		if PeriodRange(it.Frequency.PeriodType(), now).Contains(CivilDate(e.OccurredOn, now.Location())) {
			paid.Add(it.ID)
		}
	}
	return paid
}

// OverdueBalance totals the overdue items selected by the filter. A today
// filter keeps anything due up to today; other windows keep items whose
// renewal in the current month falls inside the window.
func OverdueBalance(items []RecurringItem, paid PaidSet, f DateFilter, now time.Time) (decimal.Decimal, int) {
	window, bounded := f.Window(now)
	today := StartOfDay(now)

	total := decimal.Zero
	count := 0
	for _, it := range items {
		if !IsOverdue(it, paid, now) {
			continue
		}
		if bounded {
			next := NextOccurrence(it.Frequency, it.AnchorDay, it.LastChargedAt, now)
			switch {
			case f.Kind == FilterToday:
				if StartOfDay(next).After(today) {
					continue
				}
			case !window.Contains(renewalThisMonth(it, next, today)):
				continue
			}
		}
		total = total.Add(it.Amount)
		count++
	}
	return total, count
}

// renewalThisMonth places a month-based item on its anchor day in the current
// month. Day-based items keep their projected date.
func renewalThisMonth(it RecurringItem, next, today time.Time) time.Time {
	if it.Frequency.months() == 0 || it.AnchorDay < 1 {
		return StartOfDay(next)
	}
	return onDay(today, it.AnchorDay)
}
