package schedule

import (
	"testing"
	"time"
)

func notebook(index int, paid bool) InstallmentRecord {
	return InstallmentRecord{
		ID:                "n" + string(rune('0'+index)),
		PurchaseName:      "Notebook",
		TotalAmount:       dec("3000"),
		InstallmentAmount: dec("1000"),
		TotalInstallments: 3,
		Index:             index,
		FirstPaymentDate:  date(2024, 1, 10),
		IsPaid:            paid,
	}
}

func TestDueDate(t *testing.T) {
	r := notebook(3, false)
	if got := DueDate(r); !got.Equal(date(2024, 3, 10)) {
		t.Errorf("due date = %v, want 2024-03-10", got)
	}

	r.FirstPaymentDate = date(2024, 1, 31)
	r.Index = 2
	if got := DueDate(r); !got.Equal(date(2024, 2, 29)) {
		t.Errorf("clamped due date = %v, want 2024-02-29", got)
	}
}

func TestGroupPurchases(t *testing.T) {
	t.Run("notebook scenario", func(t *testing.T) {
		purchases := GroupPurchases([]InstallmentRecord{notebook(3, false), notebook(1, true), notebook(2, false)})
		if len(purchases) != 1 {
			t.Fatalf("expected 1 purchase, got %d", len(purchases))
		}
		p := purchases[0]
		if p.PaidCount != 1 || p.UnpaidCount != 2 {
			t.Errorf("paid/unpaid = %d/%d, want 1/2", p.PaidCount, p.UnpaidCount)
		}
		if p.PaidCount+p.UnpaidCount != p.TotalInstallments {
			t.Error("paid + unpaid must equal total installments")
		}
		if !p.RemainingAmount.Equal(dec("2000")) {
			t.Errorf("remaining = %s, want 2000", p.RemainingAmount)
		}
		if p.NextDueDate == nil || !p.NextDueDate.Equal(date(2024, 2, 10)) {
			t.Errorf("next due = %v, want 2024-02-10", p.NextDueDate)
		}
		if p.NextDueDate != nil && !p.NextDueDate.Equal(DueDate(notebook(2, false))) {
			t.Error("next due should be the due date of the lowest unpaid installment")
		}
		if p.Records[0].Index != 1 {
			t.Error("records should be ordered by index")
		}
	})

	t.Run("fully paid has no next due date", func(t *testing.T) {
		purchases := GroupPurchases([]InstallmentRecord{notebook(1, true), notebook(2, true), notebook(3, true)})
		if purchases[0].NextDueDate != nil {
			t.Error("expected no next due date")
		}
		if !purchases[0].RemainingAmount.IsZero() {
			t.Error("expected nothing remaining")
		}
	})

	t.Run("same name different first payment are separate", func(t *testing.T) {
		other := notebook(1, false)
		other.FirstPaymentDate = date(2024, 6, 10)
		purchases := GroupPurchases([]InstallmentRecord{notebook(1, false), other})
		if len(purchases) != 2 {
			t.Fatalf("expected 2 purchases, got %d", len(purchases))
		}
		if !purchases[0].FirstPaymentDate.Equal(date(2024, 6, 10)) {
			t.Error("newest purchase should come first")
		}
	})
}

func TestDebtBalance(t *testing.T) {
	records := []InstallmentRecord{notebook(1, true), notebook(2, false), notebook(3, false)}
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    DateFilter
		wantCount int
		wantTotal string
	}{
		{"all unpaid", AllTime, 2, "2000"},
		{"today is inclusive", DateFilter{Kind: FilterToday}, 1, "1000"},
		{"range", DateFilter{Kind: FilterCustom, From: date(2024, 3, 1), To: date(2024, 3, 31)}, 1, "1000"},
		{"range with nothing due", DateFilter{Kind: FilterCustom, From: date(2024, 4, 1), To: date(2024, 4, 30)}, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, count := DebtBalance(records, tt.filter, now)
			if count != tt.wantCount || !total.Equal(dec(tt.wantTotal)) {
				t.Errorf("got %s/%d, want %s/%d", total, count, tt.wantTotal, tt.wantCount)
			}
		})
	}
}

func TestOverdueInstallments(t *testing.T) {
	records := []InstallmentRecord{notebook(1, false), notebook(2, false), notebook(3, true)}
	got := OverdueInstallments(records, date(2024, 2, 10))
	if len(got) != 1 || got[0].Index != 1 {
		t.Errorf("expected only the first installment overdue, got %+v", got)
	}
}
