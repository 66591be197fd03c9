package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/services"
)

type mockBillReminderService struct {
	createFn func(accountID string, in services.BillReminderInput) (*models.BillReminder, error)
	getFn    func(accountID, id string) (*models.BillReminder, error)
	deleteFn func(accountID, id string) error
}

func (m *mockBillReminderService) CreateBillReminder(accountID string, in services.BillReminderInput) (*models.BillReminder, error) {
	if m.createFn != nil {
		return m.createFn(accountID, in)
	}
	return &models.BillReminder{Base: models.Base{ID: "rem-1"}, Name: in.Name}, nil
}

func (m *mockBillReminderService) GetAccountBillReminders(string, pagination.PageRequest) (*pagination.PageResponse[models.BillReminder], error) {
	resp := pagination.NewPageResponse([]models.BillReminder{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBillReminderService) GetBillReminderByID(accountID, id string) (*models.BillReminder, error) {
	if m.getFn != nil {
		return m.getFn(accountID, id)
	}
	return &models.BillReminder{Base: models.Base{ID: id}}, nil
}

func (m *mockBillReminderService) UpdateBillReminder(_, id string, in services.BillReminderInput) (*models.BillReminder, error) {
	return &models.BillReminder{Base: models.Base{ID: id}, Name: in.Name}, nil
}

func (m *mockBillReminderService) DeleteBillReminder(accountID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(accountID, id)
	}
	return nil
}

func (m *mockBillReminderService) DueReminders(string) ([]models.BillReminder, error) {
	return nil, nil
}

func (m *mockBillReminderService) AdvanceReminder(*models.BillReminder) error { return nil }

var _ services.BillReminderServicer = (*mockBillReminderService)(nil)

func setupBillReminderRouter(handler *BillReminderHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("", injectUserID(testUserID))
	g.POST("/reminders", handler.CreateBillReminder)
	g.GET("/reminders", handler.GetBillReminders)
	g.GET("/reminders/:id", handler.GetBillReminder)
	g.PUT("/reminders/:id", handler.UpdateBillReminder)
	g.DELETE("/reminders/:id", handler.DeleteBillReminder)
	return r
}

func TestBillReminderHandler_Create(t *testing.T) {
	t.Run("passes optional fields", func(t *testing.T) {
		var got services.BillReminderInput
		svc := &mockBillReminderService{
			createFn: func(_ string, in services.BillReminderInput) (*models.BillReminder, error) {
				got = in
				return &models.BillReminder{Base: models.Base{ID: "rem-1"}, Name: in.Name}, nil
			},
		}
		r := setupBillReminderRouter(NewBillReminderHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/reminders", `{"name":"Rent","amount":"1500","frequency":"monthly","reminder_day":5,"reminder_time":"08:30","recurring_enabled":false}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || got.Amount.String() != "1500" {
			t.Errorf("expected amount 1500, got %v", got.Amount)
		}
		if got.RecurringEnabled == nil || *got.RecurringEnabled || got.ReminderTime != "08:30" {
			t.Errorf("unexpected input %+v", got)
		}
	})

	t.Run("omitted amount stays nil", func(t *testing.T) {
		var got services.BillReminderInput
		svc := &mockBillReminderService{
			createFn: func(_ string, in services.BillReminderInput) (*models.BillReminder, error) {
				got = in
				return &models.BillReminder{}, nil
			},
		}
		r := setupBillReminderRouter(NewBillReminderHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/reminders", `{"name":"Water","frequency":"monthly","reminder_day":10}`)

		if rec.Code != http.StatusCreated || got.Amount != nil || got.RecurringEnabled != nil {
			t.Fatalf("unexpected %d/%+v", rec.Code, got)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"bad_time", `{"name":"Rent","frequency":"monthly","reminder_day":5,"reminder_time":"24:10"}`},
		{"bad_day", `{"name":"Rent","frequency":"monthly","reminder_day":40}`},
		{"bad_frequency", `{"name":"Rent","frequency":"biweekly","reminder_day":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupBillReminderRouter(NewBillReminderHandler(&mockBillReminderService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/reminders", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestBillReminderHandler_GetDelete(t *testing.T) {
	t.Run("get returns 404", func(t *testing.T) {
		svc := &mockBillReminderService{
			getFn: func(string, string) (*models.BillReminder, error) { return nil, apperrors.ErrBillReminderNotFound },
		}
		r := setupBillReminderRouter(NewBillReminderHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/reminders/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BILL_REMINDER_NOT_FOUND")
	})

	t.Run("list returns 200", func(t *testing.T) {
		r := setupBillReminderRouter(NewBillReminderHandler(&mockBillReminderService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/reminders?page=2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("delete returns 200", func(t *testing.T) {
		r := setupBillReminderRouter(NewBillReminderHandler(&mockBillReminderService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/reminders/rem-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
