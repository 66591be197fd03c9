package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
)

type defaultCategory struct {
	name  string
	kind  schedule.EntryKind
	icon  string
	color string
}

// defaultCategories is the starter set every new account receives.
var defaultCategories = []defaultCategory{
	{"Food", schedule.KindExpense, "utensils", "#F97316"},
	{"Groceries", schedule.KindExpense, "shopping-cart", "#84CC16"},
	{"Transport", schedule.KindExpense, "car", "#0EA5E9"},
	{"Housing", schedule.KindExpense, "home", "#6366F1"},
	{"Utilities", schedule.KindExpense, "bolt", "#EAB308"},
	{"Health", schedule.KindExpense, "heart-pulse", "#EF4444"},
	{"Education", schedule.KindExpense, "book", "#8B5CF6"},
	{"Entertainment", schedule.KindExpense, "film", "#EC4899"},
	{"Subscriptions", schedule.KindExpense, "repeat", "#14B8A6"},
	{"Other", schedule.KindExpense, "ellipsis", "#64748B"},
	{"Salary", schedule.KindIncome, "briefcase", "#22C55E"},
	{"Freelance", schedule.KindIncome, "laptop", "#10B981"},
	{"Other income", schedule.KindIncome, "plus", "#06B6D4"},
	{"Emergency fund", schedule.KindSavings, "shield", "#3B82F6"},
	{"Investments", schedule.KindSavings, "trending-up", "#A855F7"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	accountID string,
	name string,
	kind schedule.EntryKind,
	description string,
	icon string,
	color string,
	parentID *string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be expense, income or savings")
	}

	// Names are unique per account and type
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("account_id = ? AND name = ? AND type = ?", accountID, name, kind).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	if parentID != nil {
		if _, err := s.findParent(accountID, *parentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		AccountID:   accountID,
		Name:        name,
		Type:        kind,
		Description: description,
		Icon:        icon,
		Color:       color,
		ParentID:    parentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetAccountCategories retrieves a paginated list of categories, optionally of
// one type.
func (s *categoryService) GetAccountCategories(accountID string, kind *schedule.EntryKind, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	query := s.db.Model(&models.Category{}).Where("account_id = ?", accountID)
	if kind != nil {
		query = query.Where("type = ?", *kind)
	}

	result, err := pagination.Find[models.Category](query, page, "type ASC, name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategoryByID retrieves a category by ID within an account
func (s *categoryService) GetCategoryByID(accountID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND account_id = ?", categoryID, accountID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(
	accountID string,
	categoryID string,
	name string,
	description string,
	icon string,
	color string,
	parentID *string,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(accountID, categoryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil && *parentID != "" {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		if _, err := s.findParent(accountID, *parentID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if name != "" && name != category.Name {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("account_id = ? AND name = ? AND type = ? AND id <> ?", accountID, name, category.Type, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}
	if parentID != nil {
		if *parentID == "" {
			updates["parent_id"] = nil
		} else {
			updates["parent_id"] = *parentID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(accountID, categoryID)
}

// DeleteCategory deletes a category. Transactions keep their rows and lose
// the category reference.
func (s *categoryService) DeleteCategory(accountID, categoryID string) error {
	category, err := s.GetCategoryByID(accountID, categoryID)
	if err != nil {
		return err
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND category_id = ?", accountID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Unscoped().Where("account_id = ? AND category_id = ?", accountID, categoryID).
			Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// EnsureDefaultCategories seeds the starter categories the account is missing.
func (s *categoryService) EnsureDefaultCategories(accountID string) error {
	return seedDefaultCategories(s.db, accountID)
}

func (s *categoryService) findParent(accountID, parentID string) (*models.Category, error) {
	var parent models.Category
	if err := s.db.Where("id = ? AND account_id = ?", parentID, accountID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &parent, nil
}

func seedDefaultCategories(db *gorm.DB, accountID string) error {
	var existing []models.Category
	if err := db.Where("account_id = ? AND is_default = ?", accountID, true).Find(&existing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[string(c.Type)+"/"+c.Name] = true
	}

	var missing []models.Category
	for _, d := range defaultCategories {
		if have[string(d.kind)+"/"+d.name] {
			continue
		}
		missing = append(missing, models.Category{
			AccountID: accountID,
			Name:      d.name,
			Type:      d.kind,
			Icon:      d.icon,
			Color:     d.color,
			IsDefault: true,
		})
	}
	if len(missing) == 0 {
		return nil
	}
	if err := db.Create(&missing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
