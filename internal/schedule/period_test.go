package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodRange(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    PeriodType
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"daily", PeriodDaily, ref, date(2024, 1, 10), date(2024, 1, 10)},
		{"weekly starts on sunday", PeriodWeekly, ref, date(2024, 1, 7), date(2024, 1, 13)},
		{"weekly on a sunday", PeriodWeekly, date(2024, 1, 14), date(2024, 1, 14), date(2024, 1, 20)},
		{"monthly", PeriodMonthly, date(2024, 2, 10), date(2024, 2, 1), date(2024, 2, 29)},
		{"semiannual first half", PeriodSemiannual, date(2024, 6, 30), date(2024, 1, 1), date(2024, 6, 30)},
		{"semiannual second half", PeriodSemiannual, date(2024, 7, 1), date(2024, 7, 1), date(2024, 12, 31)},
		{"annual", PeriodAnnual, ref, date(2024, 1, 1), date(2024, 12, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PeriodRange(tt.period, tt.ref)
			if !r.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", r.Start, tt.wantStart)
			}
			if !StartOfDay(r.End).Equal(tt.wantEnd) {
				t.Errorf("end day = %v, want %v", r.End, tt.wantEnd)
			}
			if !r.End.Equal(EndOfDay(r.End)) {
				t.Errorf("end %v is not an end-of-day bound", r.End)
			}
			if r.Start.After(r.End) {
				t.Errorf("start %v after end %v", r.Start, r.End)
			}
			if !r.Contains(tt.ref) {
				t.Errorf("range %v does not contain its reference %v", r, tt.ref)
			}
		})
	}
}

func TestPeriodRange_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	ref := time.Date(2024, time.March, 31, 23, 0, 0, 0, loc)

	r := PeriodRange(PeriodMonthly, ref)
	if r.Start.Location() != loc {
		t.Fatalf("expected bounds in %v, got %v", loc, r.Start.Location())
	}
	if r.Start.Month() != time.March || r.End.Day() != 31 {
		t.Errorf("unexpected range %v", r)
	}
}

func TestPeriodRange_StartNeverAfterEnd(t *testing.T) {
	day := date(2023, 1, 1)
	for i := 0; i < 800; i++ {
		for _, p := range PeriodTypes {
			r := PeriodRange(p, day)
			if r.Start.After(r.End) {
				t.Fatalf("%s on %s: start after end", p, day.Format("2006-01-02"))
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestPeriodRange_PanicsOnUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown period type")
		}
	}()
	PeriodRange(PeriodType("fortnightly"), date(2024, 1, 1))
}

func TestCivilDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := CivilDate(date(2024, 5, 1), loc)
	if got.Day() != 1 || got.Month() != time.May || got.Location() != loc {
		t.Errorf("CivilDate moved the calendar day: %v", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	if got := MonthsBetween(date(2024, 1, 31), date(2024, 7, 1)); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	if got := MonthsBetween(date(2024, 7, 1), date(2024, 1, 1)); got != 6 {
		t.Errorf("expected order-independent 6, got %d", got)
	}
}
