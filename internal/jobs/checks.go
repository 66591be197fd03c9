package jobs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finaudy/internal/models"
	"finaudy/internal/services"
)

// Check names one periodic account check.
type Check string

// Account checks, one job each per account and run.
const (
	CheckBudgetExceeded      Check = "budget_exceeded"
	CheckSubscriptionOverdue Check = "subscription_overdue"
	CheckSubscriptionRenewal Check = "subscription_renewal"
	CheckInstallmentOverdue  Check = "installment_overdue"
	CheckBillReminder        Check = "bill_reminder"
)

// Checks lists every check in run order.
var Checks = []Check{
	CheckBudgetExceeded,
	CheckSubscriptionOverdue,
	CheckSubscriptionRenewal,
	CheckInstallmentOverdue,
	CheckBillReminder,
}

const installmentsReference = "overdue_installments"

// Checker turns account state into notifications.
type Checker struct {
	Users         services.UserServicer
	Budgets       services.BudgetServicer
	Subscriptions services.SubscriptionServicer
	Installments  services.InstallmentServicer
	Reminders     services.BillReminderServicer
	Notifications services.NotificationServicer
}

// Jobs is the scheduler's job provider: one job per account and check.
func (c *Checker) Jobs(ctx context.Context) ([]Job, error) {
	accountIDs, err := c.Users.ScheduledAccountIDs()
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(accountIDs)*len(Checks))
	for _, id := range accountIDs {
		for _, check := range Checks {
			jobs = append(jobs, &checkJob{checker: c, accountID: id, check: check})
		}
	}
	return jobs, nil
}

// Run executes one check for one account.
func (c *Checker) Run(ctx context.Context, accountID string, check Check) error {
	switch check {
	case CheckBudgetExceeded:
		_, err := NotifyExceededBudgets(ctx, c.Budgets, c.Notifications, accountID, nil)
		return err
	case CheckSubscriptionOverdue:
		return c.subscriptionOverdue(ctx, accountID)
	case CheckSubscriptionRenewal:
		return c.subscriptionRenewal(ctx, accountID)
	case CheckInstallmentOverdue:
		return c.installmentOverdue(ctx, accountID)
	case CheckBillReminder:
		return c.billReminders(ctx, accountID)
	}
	return fmt.Errorf("unknown check %q", check)
}

// NotifyExceededBudgets emits a notification for every budget of the account
// over its limit, optionally restricted to one category. It returns how many
// notifications were created.
func NotifyExceededBudgets(ctx context.Context, budgets services.BudgetServicer, notifications services.NotificationServicer, accountID string, categoryID *string) (int, error) {
	exceeded, err := budgets.ExceededBudgets(accountID, categoryID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, e := range exceeded {
		msg := fmt.Sprintf("You exceeded the %s budget. Spent %s of %s (%.1f%%)",
			e.Budget.Category.Name, money(e.Analysis.Spent), money(e.Analysis.Amount), e.Analysis.PercentUsed)
		n, err := notifications.Emit(ctx, accountID, "Budget exceeded", msg, models.NotificationBudgetExceeded, e.Budget.ID)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (c *Checker) subscriptionOverdue(ctx context.Context, accountID string) error {
	overdue, err := c.Subscriptions.OverdueSubscriptions(accountID)
	if err != nil {
		return err
	}
	for _, s := range overdue {
		msg := fmt.Sprintf("The %s payment of %s is overdue", s.Name, money(s.Amount))
		if _, err := c.Notifications.Emit(ctx, accountID, "Subscription overdue", msg, models.NotificationSubscriptionOverdue, s.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) subscriptionRenewal(ctx context.Context, accountID string) error {
	renewing, err := c.Subscriptions.RenewingToday(accountID)
	if err != nil {
		return err
	}
	for _, s := range renewing {
		msg := fmt.Sprintf("%s renews today for %s", s.Name, money(s.Amount))
		if _, err := c.Notifications.Emit(ctx, accountID, "Subscription renews today", msg, models.NotificationSubscriptionRenewal, s.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) installmentOverdue(ctx context.Context, accountID string) error {
	overdue, err := c.Installments.OverdueInstallments(accountID)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	var title, msg string
	if len(overdue) == 1 {
		r := overdue[0]
		title = "Installment overdue"
		msg = fmt.Sprintf("Installment %d of %q is overdue: %s", r.Index, r.PurchaseName, money(r.InstallmentAmount))
	} else {
		total := decimal.Zero
		for _, r := range overdue {
			total = total.Add(r.InstallmentAmount)
		}
		title = "Installments overdue"
		msg = fmt.Sprintf("You have %d overdue installments totalling %s", len(overdue), money(total))
	}
	_, err = c.Notifications.Emit(ctx, accountID, title, msg, models.NotificationInstallmentOverdue, installmentsReference)
	return err
}

func (c *Checker) billReminders(ctx context.Context, accountID string) error {
	due, err := c.Reminders.DueReminders(accountID)
	if err != nil {
		return err
	}
	for i := range due {
		r := &due[i]
		msg := fmt.Sprintf("%s is due", r.Name)
		if r.Amount != nil {
			msg = fmt.Sprintf("%s is due: %s", r.Name, money(*r.Amount))
		}
		if _, err := c.Notifications.Emit(ctx, accountID, "Bill reminder", msg, models.NotificationBillReminder, r.ID); err != nil {
			return err
		}
		if err := c.Reminders.AdvanceReminder(r); err != nil {
			return err
		}
	}
	return nil
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// checkJob runs one check for one account.
type checkJob struct {
	checker   *Checker
	accountID string
	check     Check
}

func (j *checkJob) Execute(ctx context.Context) error {
	return j.checker.Run(ctx, j.accountID, j.check)
}

func (j *checkJob) AccountID() string { return j.accountID }

func (j *checkJob) Description() string { return string(j.check) }
