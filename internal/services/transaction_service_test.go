package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/testutil"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)

		tx, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{
			CategoryID:  &cat.ID,
			Kind:        schedule.KindExpense,
			Amount:      testutil.Money(t, "12.50"),
			OccurredOn:  testutil.Date(2024, 3, 5),
			Description: "Lunch",
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be assigned")
		}
		if !tx.Amount.Equal(testutil.Money(t, "12.50")) {
			t.Errorf("expected amount 12.50, got %s", tx.Amount)
		}
		if tx.Category == nil || tx.Category.ID != cat.ID {
			t.Error("expected category to be preloaded")
		}
	})

	t.Run("defaults_to_today_in_app_timezone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		loc := time.FixedZone("BRT", -3*3600)
		svc := NewTransactionService(db, loc).(*transactionService)
		svc.clock = fixedClock(time.Date(2024, 4, 1, 1, 30, 0, 0, time.UTC))
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{Kind: schedule.KindIncome, Amount: testutil.Money(t, "1")})
		testutil.AssertNoError(t, err)

		if tx.OccurredOn.Format("2006-01-02") != "2024-03-31" {
			t.Errorf("expected local date 2024-03-31, got %s", tx.OccurredOn.Format("2006-01-02"))
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{Kind: schedule.KindExpense, Amount: testutil.Money(t, "0")})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("category_kind_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, schedule.KindIncome)

		_, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{CategoryID: &cat.ID, Kind: schedule.KindExpense, Amount: testutil.Money(t, "5")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, schedule.KindExpense)

		_, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{CategoryID: &cat.ID, Kind: schedule.KindExpense, Amount: testutil.Money(t, "5")})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("unknown_subscription", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateTransaction(user.ID, user.ID, TransactionInput{Kind: schedule.KindExpense, Amount: testutil.Money(t, "5"), SubscriptionID: &missing})
		testutil.AssertAppError(t, err, "SUBSCRIPTION_NOT_FOUND")
	})
}

func TestGetAccountTransactions(t *testing.T) {
	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC).(*transactionService)
		svc.clock = fixedClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)

		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, schedule.KindExpense, "10", testutil.Date(2024, 3, 2))
		testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindExpense, "20", testutil.Date(2024, 3, 19))
		testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindIncome, "100", testutil.Date(2024, 2, 28))
		testutil.CreateTestTransaction(t, db, other.ID, nil, schedule.KindExpense, "30", testutil.Date(2024, 3, 10))

		expense := schedule.KindExpense
		tests := []struct {
			name   string
			filter TransactionFilter
			want   int64
		}{
			{"everything", TransactionFilter{}, 3},
			{"month", TransactionFilter{Window: schedule.DateFilter{Kind: schedule.FilterMonth}}, 2},
			{"kind", TransactionFilter{Kind: &expense}, 2},
			{"category", TransactionFilter{CategoryID: &food.ID}, 1},
			{"custom", TransactionFilter{Window: schedule.DateFilter{Kind: schedule.FilterCustom, From: testutil.Date(2024, 2, 1), To: testutil.Date(2024, 3, 2)}}, 2},
			{"today", TransactionFilter{Window: schedule.DateFilter{Kind: schedule.FilterToday}}, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := svc.GetAccountTransactions(user.ID, pagination.PageRequest{}, tt.filter)
				testutil.AssertNoError(t, err)
				if result.TotalItems != tt.want {
					t.Errorf("expected %d transactions, got %d", tt.want, result.TotalItems)
				}
			})
		}
	})

	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindExpense, "1", testutil.Date(2024, 1, 1))
		latest := testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindExpense, "2", testutil.Date(2024, 6, 1))

		result, err := svc.GetAccountTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.Data[0].ID != latest.ID {
			t.Error("expected the latest transaction first")
		}
	})

	t.Run("inverted_custom_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, time.UTC)
		user := testutil.CreateTestUser(t, db)

		filter := TransactionFilter{Window: schedule.DateFilter{Kind: schedule.FilterCustom, From: testutil.Date(2024, 3, 2), To: testutil.Date(2024, 3, 1)}}
		_, err := svc.GetAccountTransactions(user.ID, pagination.PageRequest{}, filter)
		testutil.AssertAppError(t, err, "INVALID_DATE_FILTER")
	})
}

func TestUpdateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, time.UTC)
	user := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindExpense, "10", testutil.Date(2024, 3, 2))

	updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{
		Kind:        schedule.KindExpense,
		Amount:      testutil.Money(t, "15.75"),
		Description: "Dinner",
	})
	testutil.AssertNoError(t, err)

	if !updated.Amount.Equal(testutil.Money(t, "15.75")) || updated.Description != "Dinner" {
		t.Errorf("unexpected transaction %+v", updated)
	}
	if !updated.OccurredOn.Equal(testutil.Date(2024, 3, 2)) {
		t.Errorf("expected date to be kept, got %v", updated.OccurredOn)
	}
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, time.UTC)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindExpense, "10", testutil.Date(2024, 3, 2))

	err := svc.DeleteTransaction(other.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))
	_, err = svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, time.UTC)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
	testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, schedule.KindExpense, "9.9", testutil.Date(2024, 3, 2))
	testutil.CreateTestTransaction(t, db, user.ID, nil, schedule.KindIncome, "100", testutil.Date(2024, 3, 1))

	var buf bytes.Buffer
	n, err := svc.ExportCSV(user.ID, TransactionFilter{}, &buf)
	testutil.AssertNoError(t, err)

	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2024-03-02,expense,"+cat.Name+",9.90,") {
		t.Errorf("unexpected first row %q", lines[1])
	}
}
