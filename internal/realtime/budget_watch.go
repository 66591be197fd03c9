package realtime

import (
	"context"

	"finaudy/internal/jobs"
	"finaudy/internal/logger"
	"finaudy/internal/schedule"
	"finaudy/internal/services"
)

// BudgetWatch checks the budget of a category as soon as an expense in it is
// recorded or changed.
type BudgetWatch struct {
	Budgets       services.BudgetServicer
	Notifications services.NotificationServicer
}

// Handle implements Handler.
func (w *BudgetWatch) Handle(ctx context.Context, change LedgerChange) error {
	if schedule.EntryKind(change.Kind) != schedule.KindExpense || change.CategoryID == "" || change.AccountID == "" {
		return nil
	}
	if change.Op != "INSERT" && change.Op != "UPDATE" {
		return nil
	}

	categoryID := change.CategoryID
	n, err := jobs.NotifyExceededBudgets(ctx, w.Budgets, w.Notifications, change.AccountID, &categoryID)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Named("realtime").Infow("budget exceeded",
			"account_id", change.AccountID,
			"category_id", categoryID,
			"notifications", n,
		)
	}
	return nil
}
