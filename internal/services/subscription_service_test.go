package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/testutil"
)

var decOne = decimal.NewFromInt(1)

func newTestSubscriptionService(db *gorm.DB, now time.Time) *subscriptionService {
	svc := NewSubscriptionService(db, time.UTC).(*subscriptionService)
	svc.clock = fixedClock(now)
	return svc
}

func TestCreateSubscription(t *testing.T) {
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSubscriptionService(db, now)
		user := testutil.CreateTestUser(t, db)

		sub, err := svc.CreateSubscription(user.ID, SubscriptionInput{
			Name:      " Streaming ",
			Amount:    testutil.Money(t, "39.90"),
			Frequency: schedule.FrequencyMonthly,
			AnchorDay: 15,
		})
		testutil.AssertNoError(t, err)
		if sub.Name != "Streaming" || sub.AnchorDay != 15 {
			t.Errorf("unexpected subscription %+v", sub)
		}
	})

	t.Run("weekly_defaults_anchor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSubscriptionService(db, now)
		user := testutil.CreateTestUser(t, db)

		sub, err := svc.CreateSubscription(user.ID, SubscriptionInput{Name: "Gym", Amount: testutil.Money(t, "20"), Frequency: schedule.FrequencyWeekly})
		testutil.AssertNoError(t, err)
		if sub.AnchorDay != 20 {
			t.Errorf("expected anchor day 20, got %d", sub.AnchorDay)
		}
	})

	tests := []struct {
		name string
		in   SubscriptionInput
		code string
	}{
		{"missing_name", SubscriptionInput{Amount: decOne, Frequency: schedule.FrequencyMonthly, AnchorDay: 1}, "INVALID_INPUT"},
		{"zero_amount", SubscriptionInput{Name: "x", Frequency: schedule.FrequencyMonthly, AnchorDay: 1}, "INVALID_AMOUNT"},
		{"bad_frequency", SubscriptionInput{Name: "x", Amount: decOne, Frequency: "hourly", AnchorDay: 1}, "INVALID_INPUT"},
		{"anchor_out_of_range", SubscriptionInput{Name: "x", Amount: decOne, Frequency: schedule.FrequencyMonthly, AnchorDay: 32}, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := newTestSubscriptionService(db, now)
			user := testutil.CreateTestUser(t, db)

			_, err := svc.CreateSubscription(user.ID, tt.in)
			testutil.AssertAppError(t, err, tt.code)
		})
	}
}

func TestMarkPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(db, now)
	user := testutil.CreateTestUser(t, db)
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sub := testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 15, &jan)

	overdue, err := svc.OverdueSubscriptions(user.ID)
	testutil.AssertNoError(t, err)
	if len(overdue) != 1 {
		t.Fatalf("expected the subscription to be overdue, got %d", len(overdue))
	}

	payment, err := svc.MarkPaid(user.ID, user.ID, sub.ID, time.Time{})
	testutil.AssertNoError(t, err)

	if payment.SubscriptionID == nil || *payment.SubscriptionID != sub.ID {
		t.Error("expected payment to be linked to the subscription")
	}
	if !payment.OccurredOn.Equal(testutil.Date(2024, 2, 20)) {
		t.Errorf("expected payment dated today, got %v", payment.OccurredOn)
	}

	overview, err := svc.GetOverview(user.ID, schedule.AllTime)
	testutil.AssertNoError(t, err)
	st := overview.Subscriptions[0]
	if st.Overdue || !st.PaidThisPeriod {
		t.Errorf("expected paid and not overdue, got %+v", st)
	}
	if !st.NextOccurrence.Equal(testutil.Date(2024, 3, 20)) {
		t.Errorf("expected next occurrence 2024-03-20, got %v", st.NextOccurrence)
	}
	if overview.OverdueCount != 0 {
		t.Errorf("expected no overdue balance, got %d", overview.OverdueCount)
	}
}

func TestSubscriptionOverview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(db, now)
	user := testutil.CreateTestUser(t, db)
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC)
	testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 10, &jan)
	testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 18, &feb)
	testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 25, nil)

	all, err := svc.GetOverview(user.ID, schedule.AllTime)
	testutil.AssertNoError(t, err)
	if all.OverdueCount != 2 || !all.OverdueTotal.Equal(testutil.Money(t, "79.80")) {
		t.Errorf("expected 2 overdue totalling 79.80, got %d/%s", all.OverdueCount, all.OverdueTotal)
	}
	if len(all.Subscriptions) != 3 {
		t.Errorf("expected 3 subscriptions, got %d", len(all.Subscriptions))
	}

	custom := schedule.DateFilter{Kind: schedule.FilterCustom, From: testutil.Date(2024, 3, 15), To: testutil.Date(2024, 3, 31)}
	windowed, err := svc.GetOverview(user.ID, custom)
	testutil.AssertNoError(t, err)
	if windowed.OverdueCount != 1 {
		t.Errorf("expected 1 overdue in window, got %d", windowed.OverdueCount)
	}
}

func TestRenewingToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestSubscriptionService(db, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	user := testutil.CreateTestUser(t, db)
	due := testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 10, nil)
	testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 11, nil)

	renewing, err := svc.RenewingToday(user.ID)
	testutil.AssertNoError(t, err)
	if len(renewing) != 1 || renewing[0].ID != due.ID {
		t.Fatalf("expected only the subscription anchored on the 10th, got %+v", renewing)
	}

	_, err = svc.MarkPaid(user.ID, user.ID, due.ID, time.Time{})
	testutil.AssertNoError(t, err)
	renewing, err = svc.RenewingToday(user.ID)
	testutil.AssertNoError(t, err)
	if len(renewing) != 0 {
		t.Error("paid subscriptions should not be reported as renewing")
	}
}

func TestDeleteSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestSubscriptionService(db, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	user := testutil.CreateTestUser(t, db)
	sub := testutil.CreateTestSubscription(t, db, user.ID, schedule.FrequencyMonthly, 10, nil)
	payment, err := svc.MarkPaid(user.ID, user.ID, sub.ID, testutil.Date(2024, 3, 9))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteSubscription(user.ID, sub.ID))

	var reloaded models.Transaction
	db.First(&reloaded, "id = ?", payment.ID)
	if reloaded.SubscriptionID != nil {
		t.Error("expected payment to be unlinked")
	}
	list, err := svc.GetAccountSubscriptions(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if list.TotalItems != 0 {
		t.Errorf("expected no subscriptions, got %d", list.TotalItems)
	}
}
