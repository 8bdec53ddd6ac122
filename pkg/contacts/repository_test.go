package contacts

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

func TestRepository_StoreAndGetContact(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	contact := Contact{
		Uid:       "c-1",
		FirstName: "Emma",
		LastName:  "Jones",
		Birthday:  time.Date(1990, 3, 10, 0, 0, 0, 0, time.UTC),
		Company:   "Acme",
		Phones: []Phone{
			{Type: PhoneMobile, Number: "07700 900123", IsPrimary: true},
			{Type: PhoneHome, Number: "01632 960001"},
		},
		Emails: []Email{{Type: EmailPersonal, Address: "emma@example.com", IsPrimary: true}},
	}
	require.NoError(t, repo.StoreContact(ctx, familyId, contact))

	stored, err := repo.GetContact(ctx, familyId, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Emma", stored.FirstName)
	assert.True(t, contact.Birthday.Equal(stored.Birthday))
	require.Len(t, stored.Phones, 2)
	assert.True(t, stored.Phones[0].IsPrimary) // primary sorts first
	require.Len(t, stored.Emails, 1)
	assert.Equal(t, "emma@example.com", stored.Emails[0].Address)
}

func TestRepository_GetContactsOrdersFavoritesFirst(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-1", FirstName: "Amy"}))
	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-2", FirstName: "Zoe", IsFavorite: true}))

	contacts, err := repo.GetContacts(ctx, familyId, false)
	require.NoError(t, err)

	require.Len(t, contacts, 2)
	assert.Equal(t, "Zoe", contacts[0].FirstName)
}

func TestRepository_GetContactsHidesArchived(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-1", FirstName: "Amy"}))
	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-2", FirstName: "Zoe", IsArchived: true}))

	contacts, err := repo.GetContacts(ctx, familyId, false)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Amy", contacts[0].FirstName)

	all, err := repo.GetContacts(ctx, familyId, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_SetArchived(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-1", FirstName: "Amy"}))

	require.NoError(t, repo.SetArchived(ctx, familyId, "c-1", true))

	stored, err := repo.GetContact(ctx, familyId, "c-1")
	require.NoError(t, err)
	assert.True(t, stored.IsArchived)

	assert.ErrorIs(t, repo.SetArchived(ctx, familyId, "missing", true), ErrContactNotFound)
}

func TestRepository_SearchSkipsArchived(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-1", FirstName: "Emma", IsArchived: true}))

	matches, err := repo.SearchContacts(ctx, familyId, "Emma")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRepository_SearchByPhoneNumber(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{
		Uid: "c-1", FirstName: "Emma",
		Phones: []Phone{{Type: PhoneMobile, Number: "07700 900123"}},
	}))
	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{Uid: "c-2", FirstName: "Oliver"}))

	matches, err := repo.SearchContacts(ctx, familyId, "900123")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Emma", matches[0].FirstName)
}

func TestRepository_UpdateContactReplacesChildren(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	contact := Contact{
		Uid: "c-1", FirstName: "Emma",
		Phones: []Phone{{Type: PhoneMobile, Number: "07700 900123"}},
	}
	require.NoError(t, repo.StoreContact(ctx, familyId, contact))

	contact.Phones = []Phone{{Type: PhoneWork, Number: "020 7946 0000"}}
	contact.Emails = []Email{{Type: EmailWork, Address: "emma@work.example.com"}}
	require.NoError(t, repo.UpdateContact(ctx, familyId, contact))

	stored, err := repo.GetContact(ctx, familyId, "c-1")
	require.NoError(t, err)
	require.Len(t, stored.Phones, 1)
	assert.Equal(t, PhoneWork, stored.Phones[0].Type)
	require.Len(t, stored.Emails, 1)
}

func TestRepository_DeleteContactRemovesChildren(t *testing.T) {
	repo, familyId := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreContact(ctx, familyId, Contact{
		Uid: "c-1", FirstName: "Emma",
		Phones: []Phone{{Type: PhoneMobile, Number: "07700 900123"}},
	}))

	require.NoError(t, repo.DeleteContact(ctx, familyId, "c-1"))

	_, err := repo.GetContact(ctx, familyId, "c-1")
	assert.ErrorIs(t, err, ErrContactNotFound)

	matches, err := repo.SearchContacts(ctx, familyId, "900123")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRepository_UpdateMissingContact(t *testing.T) {
	repo, familyId := setupRepo(t)

	err := repo.UpdateContact(context.Background(), familyId, Contact{Uid: "missing", FirstName: "Nobody"})

	assert.ErrorIs(t, err, ErrContactNotFound)
}
