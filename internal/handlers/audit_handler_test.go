package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"finaudy/internal/models"
	"finaudy/internal/pagination"
)

func setupAuditRouter(handler *AuditHandler) *gin.Engine {
	r := gin.New()
	r.GET("/audit", injectAccount(testUserID, testAccountID), handler.GetAuditLog)
	return r
}

func TestAuditHandler_GetAuditLog(t *testing.T) {
	t.Run("lists the acting account", func(t *testing.T) {
		var gotAccount, gotType string
		var gotPage pagination.PageRequest
		svc := &mockAuditService{
			listFn: func(accountID, resourceType string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				gotAccount, gotType, gotPage = accountID, resourceType, page
				entries := []models.AuditLog{{UserID: testUserID, AccountID: accountID, Action: "DELETE_BUDGET", ResourceType: "budget"}}
				resp := pagination.NewPageResponse(entries, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupAuditRouter(NewAuditHandler(svc))

		rec := doRequest(r, "GET", "/audit?resource_type=budget&page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotAccount != testAccountID || gotType != "budget" || gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("unexpected query %s/%s/%+v", gotAccount, gotType, gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_pages"].(float64) != 2 || result["has_next"] != false {
			t.Errorf("unexpected page metadata %v", result)
		}
	})

	t.Run("page size over the limit", func(t *testing.T) {
		r := setupAuditRouter(NewAuditHandler(&mockAuditService{}))

		rec := doRequest(r, "GET", "/audit?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
