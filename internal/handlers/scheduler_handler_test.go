package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/jobs"
)

type fakeTrigger struct {
	calls int
}

func (f *fakeTrigger) TriggerNow() int {
	f.calls++
	return 10
}

func (f *fakeTrigger) NextRun(now time.Time) time.Time {
	return now.Add(time.Hour)
}

type fakeChecker struct {
	gotAccount string
	gotCheck   jobs.Check
	err        error
}

func (f *fakeChecker) Run(_ context.Context, accountID string, check jobs.Check) error {
	f.gotAccount, f.gotCheck = accountID, check
	return f.err
}

var (
	_ JobTrigger     = (*jobs.Scheduler)(nil)
	_ AccountChecker = (*jobs.Checker)(nil)
)

func setupSchedulerRouter(handler *SchedulerHandler) *gin.Engine {
	r := gin.New()
	r.POST("/internal/scheduler/trigger", handler.Trigger)
	r.POST("/internal/scheduler/accounts/:account_id/checks/:check", handler.RunCheck)
	return r
}

func TestSchedulerHandler_Trigger(t *testing.T) {
	trigger := &fakeTrigger{}
	r := setupSchedulerRouter(NewSchedulerHandler(trigger, &fakeChecker{}))

	rec := doRequest(r, "POST", "/internal/scheduler/trigger", "")

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if trigger.calls != 1 || parseJSON(t, rec)["queued"].(float64) != 10 {
		t.Errorf("unexpected trigger result %s", rec.Body.String())
	}
}

func TestSchedulerHandler_RunCheck(t *testing.T) {
	t.Run("runs the check", func(t *testing.T) {
		checker := &fakeChecker{}
		r := setupSchedulerRouter(NewSchedulerHandler(&fakeTrigger{}, checker))

		rec := doRequest(r, "POST", "/internal/scheduler/accounts/"+testAccountID+"/checks/bill_reminder", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if checker.gotAccount != testAccountID || checker.gotCheck != jobs.CheckBillReminder {
			t.Errorf("unexpected run %s/%s", checker.gotAccount, checker.gotCheck)
		}
	})

	t.Run("unknown check", func(t *testing.T) {
		r := setupSchedulerRouter(NewSchedulerHandler(&fakeTrigger{}, &fakeChecker{}))

		rec := doRequest(r, "POST", "/internal/scheduler/accounts/"+testAccountID+"/checks/everything", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("check failure", func(t *testing.T) {
		checker := &fakeChecker{err: apperrors.ErrInternalServer}
		r := setupSchedulerRouter(NewSchedulerHandler(&fakeTrigger{}, checker))

		rec := doRequest(r, "POST", "/internal/scheduler/accounts/"+testAccountID+"/checks/budget_exceeded", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
