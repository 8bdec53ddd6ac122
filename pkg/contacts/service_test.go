package contacts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famhub/famhub/internal/utils"
	"github.com/famhub/famhub/pkg/family"
)

func setupService(t *testing.T) (*ServiceImpl, context.Context, *utils.MockClock) {
	t.Helper()

	familyService := family.NewFamilyService(family.NewStubFamilyRepository(), "UTC")
	fam, err := familyService.CreateFamily(context.Background(), family.Family{
		Name: "Smith", Slug: "smith", Settings: family.Settings{Timezone: "UTC"},
	})
	require.NoError(t, err)
	ctx := family.WithFamily(context.Background(), fam)

	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := NewContactsService(NewStubRepository(), familyService, clock)
	return service, ctx, clock
}

func TestCreateContact(t *testing.T) {
	service, ctx, _ := setupService(t)

	created, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma",
		LastName:  "Jones",
		Phones:    []Phone{{Number: "07700 900123", IsPrimary: true}},
		Emails:    []Email{{Address: "emma@example.com"}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.Uid)
	assert.Equal(t, "Emma Jones", created.Name())
	assert.Equal(t, PhoneMobile, created.Phones[0].Type)
	assert.Equal(t, EmailPersonal, created.Emails[0].Type)
}

func TestCreateContact_Validation(t *testing.T) {
	service, ctx, _ := setupService(t)

	tests := []struct {
		name     string
		contact  Contact
		expected error
	}{
		{"empty first name", Contact{FirstName: " "}, ErrEmptyFirstName},
		{"unknown phone type", Contact{
			FirstName: "Emma",
			Phones:    []Phone{{Type: "fax", Number: "123"}},
		}, ErrInvalidPhone},
		{"empty phone number", Contact{
			FirstName: "Emma",
			Phones:    []Phone{{Type: PhoneHome, Number: " "}},
		}, ErrInvalidPhone},
		{"bad email address", Contact{
			FirstName: "Emma",
			Emails:    []Email{{Address: "not-an-email"}},
		}, ErrInvalidEmail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateContact(ctx, tc.contact)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestUpdateContact_ReplacesPhones(t *testing.T) {
	service, ctx, _ := setupService(t)

	created, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma",
		Phones:    []Phone{{Number: "07700 900123"}},
	})
	require.NoError(t, err)

	created.Phones = []Phone{{Type: PhoneWork, Number: "020 7946 0000", IsPrimary: true}}
	updated, err := service.UpdateContact(ctx, created)
	require.NoError(t, err)

	stored, err := service.GetContact(ctx, updated.Uid)
	require.NoError(t, err)
	require.Len(t, stored.Phones, 1)
	assert.Equal(t, PhoneWork, stored.Phones[0].Type)
}

func TestSearchContacts(t *testing.T) {
	service, ctx, _ := setupService(t)

	_, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma", LastName: "Jones",
		Emails: []Email{{Address: "emma@example.com"}},
	})
	require.NoError(t, err)
	_, err = service.CreateContact(ctx, Contact{FirstName: "Oliver", Company: "Acme Plumbing"})
	require.NoError(t, err)

	byName, err := service.SearchContacts(ctx, "emma")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	byCompany, err := service.SearchContacts(ctx, "plumb")
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "Oliver", byCompany[0].FirstName)

	blank, err := service.SearchContacts(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestGetUpcomingBirthdays(t *testing.T) {
	service, ctx, clock := setupService(t)
	clock.SetNow(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma",
		Birthday:  time.Date(1990, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = service.CreateContact(ctx, Contact{
		FirstName: "Oliver",
		Birthday:  time.Date(1985, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = service.CreateContact(ctx, Contact{
		FirstName: "Sophie",
		Birthday:  time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	birthdays, err := service.GetUpcomingBirthdays(ctx, 30)
	require.NoError(t, err)

	require.Len(t, birthdays, 2)
	assert.Equal(t, "Oliver", birthdays[0].Contact.FirstName)
	assert.Equal(t, "2025-03-05", birthdays[0].Date.Format("2006-01-02"))
	assert.Equal(t, 40, birthdays[0].TurnsAge)
	assert.Equal(t, "Emma", birthdays[1].Contact.FirstName)
	assert.Equal(t, 35, birthdays[1].TurnsAge)
}

func TestGetUpcomingBirthdays_WrapsAroundYearEnd(t *testing.T) {
	service, ctx, clock := setupService(t)
	clock.SetNow(time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC))

	_, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma",
		Birthday:  time.Date(1990, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	birthdays, err := service.GetUpcomingBirthdays(ctx, 30)
	require.NoError(t, err)

	require.Len(t, birthdays, 1)
	assert.Equal(t, "2026-01-05", birthdays[0].Date.Format("2006-01-02"))
	assert.Equal(t, 36, birthdays[0].TurnsAge)
}

func TestToggleFavorite(t *testing.T) {
	service, ctx, _ := setupService(t)

	created, err := service.CreateContact(ctx, Contact{FirstName: "Emma"})
	require.NoError(t, err)

	toggled, err := service.ToggleFavorite(ctx, created.Uid)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	toggled, err = service.ToggleFavorite(ctx, created.Uid)
	require.NoError(t, err)
	assert.False(t, toggled.IsFavorite)
}

func TestToggleArchive_HidesContactFromListings(t *testing.T) {
	service, ctx, _ := setupService(t)

	created, err := service.CreateContact(ctx, Contact{FirstName: "Emma"})
	require.NoError(t, err)
	_, err = service.CreateContact(ctx, Contact{FirstName: "Oliver"})
	require.NoError(t, err)

	archived, err := service.ToggleArchive(ctx, created.Uid)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	visible, err := service.GetContacts(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Oliver", visible[0].FirstName)

	all, err := service.GetContacts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matches, err := service.SearchContacts(ctx, "emma")
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Unarchiving brings the contact back.
	restored, err := service.ToggleArchive(ctx, created.Uid)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)

	visible, err = service.GetContacts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestGetUpcomingBirthdays_SkipsArchivedContacts(t *testing.T) {
	service, ctx, clock := setupService(t)
	clock.SetNow(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	created, err := service.CreateContact(ctx, Contact{
		FirstName: "Emma",
		Birthday:  time.Date(1990, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = service.ToggleArchive(ctx, created.Uid)
	require.NoError(t, err)

	birthdays, err := service.GetUpcomingBirthdays(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, birthdays)
}

func TestDeleteContact(t *testing.T) {
	service, ctx, _ := setupService(t)

	created, err := service.CreateContact(ctx, Contact{FirstName: "Emma"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteContact(ctx, created.Uid))
	_, err = service.GetContact(ctx, created.Uid)
	assert.ErrorIs(t, err, ErrContactNotFound)
}
