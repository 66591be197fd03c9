package schedule

import (
	"fmt"
	"time"
)

// FilterKind is the date filter selected by a client.
type FilterKind string

// Supported date filters.
const (
	FilterToday      FilterKind = "today"
	FilterWeek       FilterKind = "week"
	FilterMonth      FilterKind = "month"
	FilterSemiannual FilterKind = "semiannual"
	FilterYear       FilterKind = "year"
	FilterCustom     FilterKind = "custom"
	FilterAll        FilterKind = "all"
)

// Valid reports whether k is a known filter kind.
func (k FilterKind) Valid() bool {
	switch k {
	case FilterToday, FilterWeek, FilterMonth, FilterSemiannual, FilterYear, FilterCustom, FilterAll:
		return true
	}
	return false
}

// DateFilter narrows lists and totals to a window of time. From and To are
// only read for FilterCustom.
type DateFilter struct {
	Kind FilterKind
	From time.Time
	To   time.Time
}

// AllTime is the unfiltered view.
var AllTime = DateFilter{Kind: FilterAll}

// Window resolves the filter to concrete bounds in now's location. The
// second result is false for the all-time view, which has no bounds.
func (f DateFilter) Window(now time.Time) (Range, bool) {
	switch f.Kind {
	case FilterAll:
		return Range{}, false
	case FilterCustom:
		loc := now.Location()
		return Range{
			Start: StartOfDay(CivilDate(f.From, loc)),
			End:   EndOfDay(CivilDate(f.To, loc)),
		}, true
	case FilterToday, FilterWeek, FilterMonth, FilterSemiannual, FilterYear:
		return PeriodRange(f.periodTypes()[0], now), true
	}
	panic(fmt.Sprintf("schedule: unknown date filter %q", f.Kind))
}

// periodTypes returns the budget period types that exactly match the filter.
// Custom and all-time filters match no type in particular.
func (f DateFilter) periodTypes() []PeriodType {
	switch f.Kind {
	case FilterToday:
		return []PeriodType{PeriodDaily}
	case FilterWeek:
		return []PeriodType{PeriodWeekly}
	case FilterMonth:
		return []PeriodType{PeriodMonthly}
	case FilterSemiannual:
		return []PeriodType{PeriodSemiannual}
	case FilterYear:
		return []PeriodType{PeriodAnnual}
	}
	return nil
}

// spansHalfYear reports whether a custom range covers roughly six months.
func (f DateFilter) spansHalfYear() bool {
	if f.Kind != FilterCustom || f.From.IsZero() || f.To.IsZero() {
		return false
	}
	months := MonthsBetween(f.From, f.To)
	return months >= 5 && months <= 7
}

// FilterBudgets keeps the budgets whose period type matches the filter
// exactly. The all-time view and custom ranges keep everything; a custom range
// of about half a year keeps semiannual budgets together with budgets of any
// type the range does not single out.
func FilterBudgets(budgets []BudgetPeriod, f DateFilter) []BudgetPeriod {
	if f.Kind == FilterAll {
		return budgets
	}

	allowed := f.periodTypes()
	out := make([]BudgetPeriod, 0, len(budgets))
	for _, b := range budgets {
		switch {
		case f.spansHalfYear():
			if b.PeriodType == PeriodSemiannual || len(allowed) == 0 {
				out = append(out, b)
			}
		case f.Kind == FilterCustom:
			out = append(out, b)
		default:
			for _, p := range allowed {
				if b.PeriodType == p {
					out = append(out, b)
					break
				}
			}
		}
	}
	return out
}
