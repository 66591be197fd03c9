package testutil_test

import (
	"testing"

	"finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/schedule"
	"finaudy/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "subscriptions", "bill_reminders", "installments", "notifications", "device_tokens", "shared_accounts", "subscribers", "feature_usages", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
	if category.Type != schedule.KindExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, &category.ID, schedule.KindExpense, "12.50", testutil.Date(2024, 1, 5))
	var stored models.Transaction
	if err := db.First(&stored, "id = ?", tx.ID).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if !stored.Amount.Equal(testutil.Money(t, "12.50")) {
		t.Errorf("expected amount 12.50 after reload, got %s", stored.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, schedule.PeriodMonthly, "500")
	if budget.PeriodStart.After(budget.PeriodEnd) {
		t.Error("budget period start after end")
	}

	rows := testutil.CreateTestInstallments(t, db, user.ID, "Notebook", 3, "100", testutil.Date(2024, 1, 10), 1)
	if len(rows) != 3 || !rows[0].IsPaid || rows[1].IsPaid {
		t.Errorf("unexpected installments %+v", rows)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrBudgetNotFound, "BUDGET_NOT_FOUND")
	testutil.AssertNoError(t, nil)
}
