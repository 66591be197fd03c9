package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

// Ledger entry kinds.
const (
	KindExpense EntryKind = "expense"
	KindIncome  EntryKind = "income"
	KindSavings EntryKind = "savings"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindSavings:
		return true
	}
	return false
}

// LedgerEntry is a transaction as consumed by the evaluator. OccurredOn is a
// calendar date; RecordedAt is when the row was written.
type LedgerEntry struct {
	ID             string
	OwnerID        string
	CategoryID     string
	Amount         decimal.Decimal
	Kind           EntryKind
	OccurredOn     time.Time
	RecordedAt     time.Time
	SubscriptionID string
}

// BudgetPeriod is a category budget. PeriodStart and PeriodEnd are the bounds
// stored when the budget was created; evaluation always uses the live period.
type BudgetPeriod struct {
	ID          string
	OwnerID     string
	CategoryID  string
	Amount      decimal.Decimal
	PeriodType  PeriodType
	PeriodStart time.Time
	PeriodEnd   time.Time
	AutoRenew   bool
	CreatedAt   time.Time
}

// BudgetStatus is the spending level of a budget.
type BudgetStatus string

// Budget statuses.
const (
	StatusUnder BudgetStatus = "under"
	StatusNear  BudgetStatus = "near"
	StatusOver  BudgetStatus = "over"
)

// NearThreshold is the percentage at which a budget is reported as near its limit.
const NearThreshold = 80

var hundred = decimal.NewFromInt(100)

// BudgetAnalysis is the evaluated state of one budget.
type BudgetAnalysis struct {
	BudgetID       string          `json:"budget_id"`
	CategoryID     string          `json:"category_id"`
	PeriodType     PeriodType      `json:"period_type"`
	Period         Range           `json:"period"`
	Amount         decimal.Decimal `json:"amount"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentUsed    float64         `json:"percent_used"`
	DisplayPercent float64         `json:"display_percent"`
	Status         BudgetStatus    `json:"status"`
}

// AnalyzeBudget sums the expenses of the budget's category that occurred in
// the budget's current period and were recorded no earlier than the budget
// itself, then classifies the result.
func AnalyzeBudget(b BudgetPeriod, entries []LedgerEntry, now time.Time) BudgetAnalysis {
	if !b.Amount.IsPositive() {
		panic(fmt.Sprintf("schedule: budget %s has non-positive amount %s", b.ID, b.Amount))
	}

	period := PeriodRange(b.PeriodType, now)
	spent := decimal.Zero
	for _, e := range entries {
		if e.Kind != KindExpense || e.CategoryID != b.CategoryID {
			continue
		}
		if e.RecordedAt.Before(b.CreatedAt) {
			continue
		}
		if !period.Contains(CivilDate(e.OccurredOn, now.Location())) {
			continue
		}
		spent = spent.Add(e.Amount)
	}

	percent := spent.Mul(hundred).Div(b.Amount).Round(2).InexactFloat64()
	display := percent
	if display > 100 {
		display = 100
	}

	return BudgetAnalysis{
		BudgetID:       b.ID,
		CategoryID:     b.CategoryID,
		PeriodType:     b.PeriodType,
		Period:         period,
		Amount:         b.Amount,
		Spent:          spent,
		Remaining:      b.Amount.Sub(spent),
		PercentUsed:    percent,
		DisplayPercent: display,
		Status:         budgetStatus(spent, b.Amount),
	}
}

// budgetStatus compares exact amounts so rounding in the percentage never
// changes the classification.
func budgetStatus(spent, amount decimal.Decimal) BudgetStatus {
	switch {
	case spent.GreaterThanOrEqual(amount):
		return StatusOver
	case spent.Mul(hundred).GreaterThanOrEqual(amount.Mul(decimal.NewFromInt(NearThreshold))):
		return StatusNear
	}
	return StatusUnder
}

// BudgetTotals aggregates a set of analyses.
type BudgetTotals struct {
	TotalBudget    decimal.Decimal `json:"total_budget"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// SummarizeBudgets totals the given analyses.
func SummarizeBudgets(analyses []BudgetAnalysis) BudgetTotals {
	t := BudgetTotals{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero, TotalRemaining: decimal.Zero}
	for _, a := range analyses {
		t.TotalBudget = t.TotalBudget.Add(a.Amount)
		t.TotalSpent = t.TotalSpent.Add(a.Spent)
	}
	t.TotalRemaining = t.TotalBudget.Sub(t.TotalSpent)
	return t
}
