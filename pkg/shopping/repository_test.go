package shopping

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famhub/famhub/internal/test_utils"
)

func setupRepo(t *testing.T) (*RepositoryImpl, int) {
	t.Helper()

	db := test_utils.SetupTestDB(t)
	return NewRepository(db), insertFamily(t, db)
}

func insertFamily(t *testing.T, db *sql.DB) int {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO families (uid, name, slug, timezone) VALUES (?, ?, ?, ?)`,
		"fam-uid", "Smith", "smith", "UTC")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func storeList(t *testing.T, repo *RepositoryImpl, familyId int, uid string, isDefault bool) {
	t.Helper()

	require.NoError(t, repo.CreateList(context.Background(), familyId, List{
		Uid:       uid,
		Name:      "Groceries",
		IsDefault: isDefault,
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}))
}

func TestRepository_ListLifecycle(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)

	stored, err := repo.GetList(ctx, familyId, "list-1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", stored.Name)
	assert.True(t, stored.IsDefault)

	byDefault, err := repo.GetDefaultList(ctx, familyId)
	require.NoError(t, err)
	assert.Equal(t, "list-1", byDefault.Uid)

	require.NoError(t, repo.ClearDefaultList(ctx, familyId))
	_, err = repo.GetDefaultList(ctx, familyId)
	assert.ErrorIs(t, err, ErrListNotFound)

	require.NoError(t, repo.DeleteList(ctx, familyId, "list-1"))
	_, err = repo.GetList(ctx, familyId, "list-1")
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestRepository_GetListsCountsItems(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "item-1", ListUid: "list-1", Name: "Milk", NameNormalized: "milk",
		Quantity: 1, Category: "Dairy", UpdatedAt: now,
	}))
	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "item-2", ListUid: "list-1", Name: "Bread", NameNormalized: "bread",
		Quantity: 1, Category: "Bakery", Checked: true, CheckedAt: now, UpdatedAt: now,
	}))

	lists, err := repo.GetLists(ctx, familyId)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 2, lists[0].ItemCount)
	assert.Equal(t, 1, lists[0].CheckedCount)
}

func TestRepository_GetItemsExcludesStaleCheckedItems(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "open", ListUid: "list-1", Name: "Milk", NameNormalized: "milk",
		Quantity: 1, Category: "Dairy", UpdatedAt: now,
	}))
	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "fresh", ListUid: "list-1", Name: "Bread", NameNormalized: "bread",
		Quantity: 1, Category: "Bakery", Checked: true,
		CheckedAt: now.Add(-2 * time.Hour), UpdatedAt: now,
	}))
	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "stale", ListUid: "list-1", Name: "Eggs", NameNormalized: "eggs",
		Quantity: 1, Category: "Eggs", Checked: true,
		CheckedAt: now.Add(-30 * time.Hour), UpdatedAt: now,
	}))

	items, err := repo.GetItems(ctx, familyId, "list-1", now.Add(-24*time.Hour))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "fresh", items[0].Uid) // Bakery sorts before Dairy
	assert.Equal(t, "open", items[1].Uid)
}

func TestRepository_FindUncheckedItem(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "item-1", ListUid: "list-1", Name: "Milk", NameNormalized: "milk",
		Quantity: 2, Category: "Dairy", UpdatedAt: now,
	}))

	found, err := repo.FindUncheckedItem(ctx, familyId, "list-1", "milk")
	require.NoError(t, err)
	assert.Equal(t, "item-1", found.Uid)

	_, err = repo.FindUncheckedItem(ctx, familyId, "list-1", "bread")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepository_FindCompletedItemSince(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.StoreItem(ctx, familyId, Item{
		Uid: "item-1", ListUid: "list-1", Name: "Milk", NameNormalized: "milk",
		Quantity: 1, Category: "Dairy", Checked: true,
		CheckedAt: now.Add(-2 * time.Hour), UpdatedAt: now,
	}))

	found, err := repo.FindCompletedItemSince(ctx, familyId, "list-1", "milk", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "item-1", found.Uid)

	_, err = repo.FindCompletedItemSince(ctx, familyId, "list-1", "milk", now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepository_CompleteAllItems(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	storeList(t, repo, familyId, "list-1", true)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, uid := range []string{"a", "b"} {
		require.NoError(t, repo.StoreItem(ctx, familyId, Item{
			Uid: uid, ListUid: "list-1", Name: uid, NameNormalized: uid,
			Quantity: 1, Category: "Other", UpdatedAt: now,
		}))
	}

	completed, err := repo.CompleteAllItems(ctx, familyId, "list-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, completed)

	completed, err = repo.CompleteAllItems(ctx, familyId, "list-1", now)
	require.NoError(t, err)
	assert.Equal(t, 0, completed)
}
