package schedule

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentRecord is one payment of an installment purchase. Index is
// 1-based and unique within its purchase.
type InstallmentRecord struct {
	ID                string
	OwnerID           string
	PurchaseName      string
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	TotalInstallments int
	Index             int
	FirstPaymentDate  time.Time
	IsPaid            bool
}

// DueDate is the first payment date moved forward Index-1 months.
func DueDate(r InstallmentRecord) time.Time {
	return AddMonths(r.FirstPaymentDate, r.Index-1)
}

// Purchase aggregates the records sharing a name and first payment date.
type Purchase struct {
	Key               string              `json:"key"`
	Name              string              `json:"name"`
	FirstPaymentDate  time.Time           `json:"first_payment_date"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	TotalInstallments int                 `json:"total_installments"`
	PaidCount         int                 `json:"paid_count"`
	UnpaidCount       int                 `json:"unpaid_count"`
	RemainingAmount   decimal.Decimal     `json:"remaining_amount"`
	NextDueDate       *time.Time          `json:"next_due_date,omitempty"`
	Records           []InstallmentRecord `json:"-"`
}

// PurchaseKey identifies the purchase a record belongs to.
func PurchaseKey(name string, firstPaymentDate time.Time) string {
	return name + "_" + firstPaymentDate.Format("2006-01-02")
}

// GroupPurchases folds records into purchases, newest first payment first.
func GroupPurchases(records []InstallmentRecord) []Purchase {
	index := map[string]int{}
	var purchases []Purchase
	nextIndex := map[string]int{}

	for _, r := range records {
		key := PurchaseKey(r.PurchaseName, r.FirstPaymentDate)
		i, ok := index[key]
		if !ok {
			i = len(purchases)
			index[key] = i
			purchases = append(purchases, Purchase{
				Key:              key,
				Name:             r.PurchaseName,
				FirstPaymentDate: r.FirstPaymentDate,
				TotalAmount:      r.TotalAmount,
				RemainingAmount:  decimal.Zero,
			})
		}

		p := &purchases[i]
		p.Records = append(p.Records, r)
		p.TotalInstallments++
		if r.IsPaid {
			p.PaidCount++
			continue
		}
		p.UnpaidCount++
		p.RemainingAmount = p.RemainingAmount.Add(r.InstallmentAmount)
		if n, seen := nextIndex[key]; !seen || r.Index < n {
			nextIndex[key] = r.Index
			due := DueDate(r)
			p.NextDueDate = &due
		}
	}

	for i := range purchases {
		sort.Slice(purchases[i].Records, func(a, b int) bool {
			return purchases[i].Records[a].Index < purchases[i].Records[b].Index
		})
	}
	sort.SliceStable(purchases, func(a, b int) bool {
		if !purchases[a].FirstPaymentDate.Equal(purchases[b].FirstPaymentDate) {
			return purchases[a].FirstPaymentDate.After(purchases[b].FirstPaymentDate)
		}
		return purchases[a].Name < purchases[b].Name
	})
	return purchases
}

// DebtBalance totals unpaid installments selected by the filter. A today
// filter keeps anything due up to and including today; other windows keep
// due dates inside the window.
func DebtBalance(records []InstallmentRecord, f DateFilter, now time.Time) (decimal.Decimal, int) {
	window, bounded := f.Window(now)
	endOfToday := EndOfDay(now)
	loc := now.Location()

	total := decimal.Zero
	count := 0
	for _, r := range records {
		if r.IsPaid {
			continue
		}
		due := CivilDate(DueDate(r), loc)
		switch {
		case !bounded:
		case f.Kind == FilterToday:
			if due.After(endOfToday) {
				continue
			}
		case !window.Contains(due):
			continue
		}
		total = total.Add(r.InstallmentAmount)
		count++
	}
	return total, count
}

// OverdueInstallments returns the unpaid records whose due date is before today.
func OverdueInstallments(records []InstallmentRecord, now time.Time) []InstallmentRecord {
	today := StartOfDay(now)
	var out []InstallmentRecord
	for _, r := range records {
		if !r.IsPaid && CivilDate(DueDate(r), now.Location()).Before(today) {
			out = append(out, r)
		}
	}
	return out
}
