package jobs

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"finaudy/internal/models"
	"finaudy/internal/schedule"
	"finaudy/internal/services"
	"finaudy/internal/testutil"
)

func newTestChecker(db *gorm.DB) *Checker {
	sharing := services.NewSharingService(db)
	return &Checker{
		Users:         services.NewUserService(db),
		Budgets:       services.NewBudgetService(db, time.UTC),
		Subscriptions: services.NewSubscriptionService(db, time.UTC),
		Installments:  services.NewInstallmentService(db, time.UTC),
		Reminders:     services.NewBillReminderService(db, time.UTC),
		Notifications: services.NewNotificationService(db, sharing, nil, time.UTC),
	}
}

func countNotifications(t *testing.T, db *gorm.DB, userID string, kind models.NotificationKind) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND kind = ?", userID, kind).Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	return count
}

func TestCheckerJobs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	checker := newTestChecker(db)

	idle := testutil.CreateTestUser(t, db)
	active := testutil.CreateTestUser(t, db)
	testutil.CreateTestSubscription(t, db, active.ID, schedule.FrequencyMonthly, 1, nil)

	jobs, err := checker.Jobs(context.Background())
	testutil.AssertNoError(t, err)
	if len(jobs) != len(Checks) {
		t.Fatalf("expected %d jobs, got %d", len(Checks), len(jobs))
	}
	for _, j := range jobs {
		if j.AccountID() == idle.ID {
			t.Error("accounts without scheduled items should not get jobs")
		}
	}
}

func TestCheckerRun(t *testing.T) {
	ctx := context.Background()
	today := models.DateOf(time.Now(), time.UTC)

	t.Run("budget_exceeded_notifies_collaborators", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		owner := testutil.CreateTestUser(t, db)
		friend := testutil.CreateTestUser(t, db)
		testutil.CreateTestShare(t, db, owner, friend, models.ShareStatusAccepted)

		category := testutil.CreateTestCategory(t, db, owner.ID, schedule.KindExpense)
		testutil.CreateTestBudget(t, db, owner.ID, category.ID, schedule.PeriodMonthly, "100")
		time.Sleep(10 * time.Millisecond)
		testutil.CreateTestTransaction(t, db, owner.ID, &category.ID, schedule.KindExpense, "150", today)

		testutil.AssertNoError(t, checker.Run(ctx, owner.ID, CheckBudgetExceeded))
		testutil.AssertNoError(t, checker.Run(ctx, owner.ID, CheckBudgetExceeded))

		if n := countNotifications(t, db, owner.ID, models.NotificationBudgetExceeded); n != 1 {
			t.Errorf("expected 1 owner notification, got %d", n)
		}
		if n := countNotifications(t, db, friend.ID, models.NotificationBudgetExceeded); n != 1 {
			t.Errorf("expected 1 collaborator notification, got %d", n)
		}
	})

	t.Run("subscription_overdue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		user := testutil.CreateTestUser(t, db)

		last := time.Date(today.Year(), today.Month()-3, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 1, &last)

		testutil.AssertNoError(t, checker.Run(ctx, user.ID, CheckSubscriptionOverdue))
		if n := countNotifications(t, db, user.ID, models.NotificationSubscriptionOverdue); n != 1 {
			t.Errorf("expected 1 overdue notification, got %d", n)
		}
	})

	t.Run("subscription_renewal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, today.Day(), nil)

		testutil.AssertNoError(t, checker.Run(ctx, user.ID, CheckSubscriptionRenewal))
		if n := countNotifications(t, db, user.ID, models.NotificationSubscriptionRenewal); n != 1 {
			t.Errorf("expected 1 renewal notification, got %d", n)
		}
	})

	t.Run("installments_summarized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		user := testutil.CreateTestUser(t, db)
		first := time.Date(today.Year(), today.Month()-4, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestInstallments(t, db, user.ID, "Notebook", 3, "100", first, 0)

		testutil.AssertNoError(t, checker.Run(ctx, user.ID, CheckInstallmentOverdue))

		var n models.Notification
		if err := db.Where("user_id = ? AND kind = ?", user.ID, models.NotificationInstallmentOverdue).First(&n).Error; err != nil {
			t.Fatalf("expected an installment notification: %v", err)
		}
		if n.Title != "Installments overdue" || n.Message != "You have 3 overdue installments totalling R$ 300.00" {
			t.Errorf("unexpected notification %q / %q", n.Title, n.Message)
		}
	})

	t.Run("bill_reminder_advances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		user := testutil.CreateTestUser(t, db)
		reminder := testutil.CreateTestBillReminder(t, db, user.ID, today.AddDate(0, 0, -1))

		testutil.AssertNoError(t, checker.Run(ctx, user.ID, CheckBillReminder))

		if n := countNotifications(t, db, user.ID, models.NotificationBillReminder); n != 1 {
			t.Errorf("expected 1 reminder notification, got %d", n)
		}
		var stored models.BillReminder
		db.First(&stored, "id = ?", reminder.ID)
		if !stored.NextNotificationDate.After(today) {
			t.Errorf("expected the reminder to move past today, got %v", stored.NextNotificationDate)
		}
	})

	t.Run("unknown_check", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		checker := newTestChecker(db)
		if err := checker.Run(ctx, "acct", "weather"); err == nil {
			t.Error("expected an error for an unknown check")
		}
	})
}
