package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "finaudy/internal/errors"
)

// AssertAppError fails unless err is an AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected error %s, got nil", code)
	case !errors.As(err, &appErr):
		t.Fatalf("expected error %s, got %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("expected error %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError stops the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertMoney compares an amount against its decimal string form.
func AssertMoney(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(Money(t, want)) {
		t.Errorf("%s: expected %s, got %s", what, want, got)
	}
}
