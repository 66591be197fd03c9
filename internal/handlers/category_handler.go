package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string             `json:"name" binding:"required,min=1,max=100"`
	Type        schedule.EntryKind `json:"type" binding:"required,category_type"`
	Description string             `json:"description" binding:"max=500"`
	Icon        string             `json:"icon" binding:"max=50"`
	Color       string             `json:"color" binding:"omitempty,hex_color"`
	ParentID    *string            `json:"parent_id" binding:"omitempty,uuid"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description string  `json:"description" binding:"max=500"`
	Icon        string  `json:"icon" binding:"max=50"`
	Color       string  `json:"color" binding:"omitempty,hex_color"`
	ParentID    *string `json:"parent_id" binding:"omitempty,uuid"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a new category in the acting account
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(accountID, req.Name, req.Type, req.Description, req.Icon, req.Color, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"name": req.Name, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories lists the categories of the acting account
// @Summary     Get categories
// @Description Get a paginated list of categories, optionally filtered by type
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       type      query string false "Filter by type (expense/income/savings)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var kind *schedule.EntryKind
	if v := c.Query("type"); v != "" {
		k := schedule.EntryKind(v)
		if !k.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be expense, income or savings"))
			return
		}
		kind = &k
	}

	result, err := h.categoryService.GetAccountCategories(accountID, kind, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryByID handles retrieving a specific category
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating an existing category
// @Summary     Update category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Updated category details"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(accountID, c.Param("id"), req.Name, req.Description, req.Icon, req.Color, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "UPDATE_CATEGORY", "category", category.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category. Its transactions are kept
// without a category and its budgets are removed.
// @Summary     Delete category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Category ID"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category has children"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID := c.Param("id")
	if err := h.categoryService.DeleteCategory(accountID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_CATEGORY", "category", categoryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
