package services

import (
	"testing"

	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Pets", schedule.KindExpense, "Vet and food", "paw", "#FF0000", nil)
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID to be assigned")
		}
		if cat.Type != schedule.KindExpense {
			t.Errorf("expected type expense, got %s", cat.Type)
		}
		if cat.AccountID != user.ID {
			t.Errorf("expected account %s, got %s", user.ID, cat.AccountID)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Pets", schedule.KindExpense, "", "", "", nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Pets", schedule.KindExpense, "", "", "", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_type_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Side jobs", schedule.KindExpense, "", "", "", nil)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user.ID, "Side jobs", schedule.KindIncome, "", "", "", nil)
		testutil.AssertNoError(t, err)
	})

	t.Run("with_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parent, err := svc.CreateCategory(user.ID, "Food", schedule.KindExpense, "", "", "", nil)
		testutil.AssertNoError(t, err)

		child, err := svc.CreateCategory(user.ID, "Snacks", schedule.KindExpense, "", "", "", &parent.ID)
		testutil.AssertNoError(t, err)

		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("expected parent ID %s, got %v", parent.ID, child.ParentID)
		}
	})

	t.Run("parent_in_other_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		foreign := testutil.CreateTestCategory(t, db, other.ID, schedule.KindExpense)

		_, err := svc.CreateCategory(user.ID, "Orphan", schedule.KindExpense, "", "", "", &foreign.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Transfer", schedule.EntryKind("transfer"), "", "", "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetAccountCategories(t *testing.T) {
	t.Run("scoped_to_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user1.ID, schedule.KindExpense)
		testutil.CreateTestCategory(t, db, user1.ID, schedule.KindIncome)
		testutil.CreateTestCategory(t, db, user2.ID, schedule.KindExpense)

		result, err := svc.GetAccountCategories(user1.ID, nil, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 categories, got %d", result.TotalItems)
		}
	})

	t.Run("by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		testutil.CreateTestCategory(t, db, user.ID, schedule.KindSavings)

		kind := schedule.KindSavings
		result, err := svc.GetAccountCategories(user.ID, &kind, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Type != schedule.KindSavings {
			t.Errorf("expected only the savings category, got %+v", result.Data)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 5; i++ {
			testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		}

		result, err := svc.GetAccountCategories(user.ID, nil, pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 2 || result.TotalPages != 3 {
			t.Errorf("expected 2 items over 3 pages, got %d/%d", len(result.Data), result.TotalPages)
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename_and_clear_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		parent := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		child, err := svc.CreateCategory(user.ID, "Snacks", schedule.KindExpense, "", "", "", &parent.ID)
		testutil.AssertNoError(t, err)

		empty := ""
		updated, err := svc.UpdateCategory(user.ID, child.ID, "Treats", "", "", "", &empty)
		testutil.AssertNoError(t, err)
		if updated.Name != "Treats" || updated.ParentID != nil {
			t.Errorf("unexpected category %+v", updated)
		}
	})

	t.Run("self_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)

		_, err := svc.UpdateCategory(user.ID, cat.ID, "", "", "", "", &cat.ID)
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("rename_to_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		second := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)

		_, err := svc.UpdateCategory(user.ID, second.ID, first.Name, "", "", "", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("detaches_transactions_and_drops_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, schedule.KindExpense, "10", testutil.Date(2024, 1, 1))
		testutil.CreateTestBudget(t, db, user.ID, cat.ID, schedule.PeriodMonthly, "100")

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		var reloaded models.Transaction
		db.First(&reloaded, "id = ?", tx.ID)
		if reloaded.CategoryID != nil {
			t.Error("expected transaction to lose its category")
		}
		var budgets int64
		db.Model(&models.Budget{}).Where("category_id = ?", cat.ID).Count(&budgets)
		if budgets != 0 {
			t.Errorf("expected budgets to be removed, got %d", budgets)
		}
	})

	t.Run("has_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		parent := testutil.CreateTestCategory(t, db, user.ID, schedule.KindExpense)
		_, err := svc.CreateCategory(user.ID, "Child", schedule.KindExpense, "", "", "", &parent.ID)
		testutil.AssertNoError(t, err)

		err = svc.DeleteCategory(user.ID, parent.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("other_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID, schedule.KindExpense)

		err := svc.DeleteCategory(other.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestEnsureDefaultCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.EnsureDefaultCategories(user.ID))
	testutil.AssertNoError(t, svc.EnsureDefaultCategories(user.ID))

	var count int64
	db.Model(&models.Category{}).Where("account_id = ?", user.ID).Count(&count)
	if int(count) != len(defaultCategories) {
		t.Errorf("expected seeding to be idempotent with %d categories, got %d", len(defaultCategories), count)
	}
}
