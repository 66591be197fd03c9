package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/services"
)

type mockNotificationService struct {
	sendFn     func(ctx context.Context, userID, accountID, title, message string, kind models.NotificationKind, referenceID string) (bool, error)
	listFn     func(userID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	markReadFn func(userID, id string) (*models.Notification, error)
	registerFn func(userID, token, platform string) (*models.DeviceToken, error)
}

func (m *mockNotificationService) Emit(context.Context, string, string, string, models.NotificationKind, string) (int, error) {
	return 0, nil
}

func (m *mockNotificationService) Send(ctx context.Context, userID, accountID, title, message string, kind models.NotificationKind, referenceID string) (bool, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, userID, accountID, title, message, kind, referenceID)
	}
	return true, nil
}

func (m *mockNotificationService) GetUserNotifications(userID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	if m.listFn != nil {
		return m.listFn(userID, unreadOnly, page)
	}
	resp := pagination.NewPageResponse([]models.Notification{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockNotificationService) UnreadCount(string) (int64, error) { return 3, nil }

func (m *mockNotificationService) MarkRead(userID, id string) (*models.Notification, error) {
	if m.markReadFn != nil {
		return m.markReadFn(userID, id)
	}
	return &models.Notification{Base: models.Base{ID: id}, UserID: userID, Read: true}, nil
}

func (m *mockNotificationService) MarkAllRead(string) (int64, error) { return 2, nil }

func (m *mockNotificationService) DeleteNotification(string, string) error { return nil }

func (m *mockNotificationService) RegisterDevice(userID, token, platform string) (*models.DeviceToken, error) {
	if m.registerFn != nil {
		return m.registerFn(userID, token, platform)
	}
	return &models.DeviceToken{UserID: userID, Token: token, Platform: platform, IsActive: true}, nil
}

func (m *mockNotificationService) UnregisterDevice(string, string) error { return nil }

func (m *mockNotificationService) DeactivateTokens(context.Context, []string) error { return nil }

var _ services.NotificationServicer = (*mockNotificationService)(nil)

func setupNotificationRouter(handler *NotificationHandler) *gin.Engine {
	r := gin.New()
	// The acting account differs from the caller to prove routes use the caller.
	g := r.Group("", injectAccount(testUserID, testAccountID))
	g.GET("/notifications", handler.GetNotifications)
	g.GET("/notifications/unread-count", handler.GetUnreadCount)
	g.PUT("/notifications/read-all", handler.MarkAllRead)
	g.PUT("/notifications/:id/read", handler.MarkRead)
	g.DELETE("/notifications/:id", handler.DeleteNotification)
	g.POST("/devices", handler.RegisterDevice)
	g.DELETE("/devices", handler.UnregisterDevice)
	return r
}

func TestNotificationHandler_List(t *testing.T) {
	t.Run("passes the unread filter for the caller", func(t *testing.T) {
		var gotUser string
		var gotUnread bool
		svc := &mockNotificationService{
			listFn: func(userID string, unreadOnly bool, _ pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
				gotUser, gotUnread = userID, unreadOnly
				resp := pagination.NewPageResponse([]models.Notification{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "GET", "/notifications?unread=true", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUser != testUserID || !gotUnread {
			t.Errorf("unexpected call %s/%v", gotUser, gotUnread)
		}
	})

	t.Run("rejects a bad unread flag", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "GET", "/notifications?unread=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestNotificationHandler_ReadState(t *testing.T) {
	t.Run("unread count", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "GET", "/notifications/unread-count", "")

		if rec.Code != http.StatusOK || parseJSON(t, rec)["unread"].(float64) != 3 {
			t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("mark all read", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "PUT", "/notifications/read-all", "")

		if rec.Code != http.StatusOK || parseJSON(t, rec)["updated"].(float64) != 2 {
			t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("mark read of another user's notification is 404", func(t *testing.T) {
		svc := &mockNotificationService{
			markReadFn: func(string, string) (*models.Notification, error) { return nil, apperrors.ErrNotificationNotFound },
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "PUT", "/notifications/other/read", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOTIFICATION_NOT_FOUND")
	})

	t.Run("delete", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "DELETE", "/notifications/n-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestNotificationHandler_Devices(t *testing.T) {
	t.Run("registers a device", func(t *testing.T) {
		var gotPlatform string
		svc := &mockNotificationService{
			registerFn: func(userID, token, platform string) (*models.DeviceToken, error) {
				gotPlatform = platform
				return &models.DeviceToken{UserID: userID, Token: token, Platform: platform, IsActive: true}, nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "POST", "/devices", `{"token":"fcm-token","platform":"android"}`)

		if rec.Code != http.StatusCreated || gotPlatform != "android" {
			t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects an unknown platform", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "POST", "/devices", `{"token":"fcm-token","platform":"symbian"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unregisters a device", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}))

		rec := doRequest(r, "DELETE", "/devices", `{"token":"fcm-token"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
