package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finaudy/internal/models"
	"finaudy/internal/schedule"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Money parses a decimal literal, failing the test on bad input.
func Money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// Date returns the UTC midnight of the given calendar day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given kind.
func CreateTestCategory(t *testing.T, db *gorm.DB, accountID string, kind schedule.EntryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		AccountID: accountID,
		Name:      fmt.Sprintf("Category %d", nextID()),
		Type:      kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a ledger entry.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, categoryID *string, kind schedule.EntryKind, amount string, occurredOn time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:   accountID,
		CreatedBy:   accountID,
		CategoryID:  categoryID,
		Kind:        kind,
		Amount:      Money(t, amount),
		OccurredOn:  occurredOn,
		Description: fmt.Sprintf("Transaction %d", nextID()),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget whose stored bounds are the current period.
func CreateTestBudget(t *testing.T, db *gorm.DB, accountID, categoryID string, periodType schedule.PeriodType, amount string) *models.Budget {
	t.Helper()

	period := schedule.PeriodRange(periodType, time.Now())
	budget := &models.Budget{
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      Money(t, amount),
		PeriodType:  periodType,
		PeriodStart: models.DateOf(period.Start, time.UTC),
		PeriodEnd:   models.DateOf(period.End, time.UTC),
		AutoRenew:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestSubscription creates a subscription.
func CreateTestSubscription(t *testing.T, db *gorm.DB, accountID string, frequency schedule.Frequency, anchorDay int, lastChargedAt *time.Time) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		AccountID:     accountID,
		Name:          fmt.Sprintf("Subscription %d", nextID()),
		Amount:        Money(t, "39.90"),
		Frequency:     frequency,
		AnchorDay:     anchorDay,
		LastChargedAt: lastChargedAt,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}

// CreateTestBillReminder creates a monthly reminder due on next.
func CreateTestBillReminder(t *testing.T, db *gorm.DB, accountID string, next time.Time) *models.BillReminder {
	t.Helper()

	reminder := &models.BillReminder{
		AccountID:            accountID,
		Name:                 fmt.Sprintf("Bill %d", nextID()),
		Frequency:            schedule.FrequencyMonthly,
		ReminderDay:          next.Day(),
		ReminderTime:         models.DefaultReminderTime,
		RecurringEnabled:     true,
		NextNotificationDate: next,
	}
	if err := db.Create(reminder).Error; err != nil {
		t.Fatalf("failed to create test bill reminder: %v", err)
	}
	return reminder
}

// CreateTestInstallments creates a purchase of n installments of amount
// each, the first paid of them already settled.
func CreateTestInstallments(t *testing.T, db *gorm.DB, accountID, name string, n int, amount string, first time.Time, paid int) []models.Installment {
	t.Helper()

	each := Money(t, amount)
	rows := make([]models.Installment, n)
	for i := range rows {
		rows[i] = models.Installment{
			AccountID:          accountID,
			PurchaseName:       name,
			TotalAmount:        each.Mul(decimal.NewFromInt(int64(n))),
			InstallmentAmount:  each,
			TotalInstallments:  n,
			CurrentInstallment: i + 1,
			FirstPaymentDate:   first,
			IsPaid:             i < paid,
		}
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("failed to create test installments: %v", err)
	}
	return rows
}

// CreateTestShare grants collaborator access to owner's account.
func CreateTestShare(t *testing.T, db *gorm.DB, owner, collaborator *models.User, status models.ShareStatus) *models.SharedAccount {
	t.Helper()

	share := &models.SharedAccount{
		OwnerID:      owner.ID,
		SharedWithID: &collaborator.ID,
		InvitedEmail: collaborator.Email,
		Status:       status,
	}
	if err := db.Create(share).Error; err != nil {
		t.Fatalf("failed to create test share: %v", err)
	}
	return share
}
