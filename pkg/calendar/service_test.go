package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famhub/famhub/internal/utils"
	"github.com/famhub/famhub/pkg/family"
)

func setupService(t *testing.T, timezone string) (*ServiceImpl, context.Context, *utils.MockClock) {
	t.Helper()

	repo := NewStubRepository()
	familyRepo := family.NewStubFamilyRepository()
	familyService := family.NewFamilyService(familyRepo, "UTC")

	fam, err := familyService.CreateFamily(context.Background(), family.Family{
		Name:     "Smith",
		Slug:     "smith",
		Settings: family.Settings{Timezone: timezone},
	})
	require.NoError(t, err)
	ctx := family.WithFamily(context.Background(), fam)

	clock := &utils.MockClock{FixedNow: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	service := NewCalendarService(repo, familyService, clock, 365)
	return service, ctx, clock
}

func TestAddEvent_AssignsUid(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	created, err := service.AddEvent(ctx, Event{
		Title:     "Dentist",
		StartTime: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.Uid)
	assert.NotContains(t, created.Uid, ":")

	stored, err := service.GetEvent(ctx, created.Uid)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", stored.Title)
}

func TestAddEvent_RejectsEmptyTitle(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:     "   ",
		StartTime: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestAddEvent_RejectsUnparsableRecurrenceRule(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:          "Standup",
		StartTime:      time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		RecurrenceSpec: "every other thursday",
	})

	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestGetEvents_MergesStoredAndGeneratedOccurrences(t *testing.T) {
	service, ctx, _ := setupService(t, "Europe/Warsaw")
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	master, err := service.AddEvent(ctx, Event{
		Title:          "Piano lesson",
		StartTime:      time.Date(2025, 1, 6, 17, 0, 0, 0, warsaw),
		RecurrenceSpec: "FREQ=WEEKLY",
	})
	require.NoError(t, err)

	_, err = service.AddEvent(ctx, Event{
		Title:     "Vet appointment",
		StartTime: time.Date(2025, 1, 15, 9, 0, 0, 0, warsaw),
	})
	require.NoError(t, err)

	events, err := service.GetEvents(ctx,
		time.Date(2025, 1, 1, 0, 0, 0, 0, warsaw),
		time.Date(2025, 1, 31, 23, 59, 59, 0, warsaw))
	require.NoError(t, err)

	// master + 3 generated Mondays + the one-off, ordered by start time
	require.Len(t, events, 5)
	assert.Equal(t, "Piano lesson", events[0].Title)
	assert.False(t, events[0].Generated)
	assert.Equal(t, master.Uid+":2025-01-13", events[1].Uid)
	assert.True(t, events[1].Generated)
	assert.Equal(t, "Vet appointment", events[2].Title)
	assert.Equal(t, master.Uid+":2025-01-20", events[3].Uid)
	assert.Equal(t, master.Uid+":2025-01-27", events[4].Uid)

	for _, event := range events[1:] {
		if !event.Generated {
			continue
		}
		assert.Equal(t, master.Uid, event.MasterUid)
		assert.Equal(t, 17, event.StartTime.Hour())
	}
}

func TestGetEvents_IncludesOccurrencesOfMastersBeforeTheWindow(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	master, err := service.AddEvent(ctx, Event{
		Title:          "Allowance",
		StartTime:      time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC),
		RecurrenceSpec: `{"frequency": "monthly"}`,
	})
	require.NoError(t, err)

	events, err := service.GetEvents(ctx,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, master.Uid+":2025-02-03", events[0].Uid)
	assert.True(t, events[0].Generated)
}

func TestUpdateEvent_RejectsGeneratedOccurrence(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.UpdateEvent(ctx, Event{
		Uid:       "abc123:2025-01-13",
		Title:     "Piano lesson",
		StartTime: time.Date(2025, 1, 13, 17, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, ErrGeneratedEvent)
}

func TestDeleteEvent_RejectsGeneratedOccurrence(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	err := service.DeleteEvent(ctx, "abc123:2025-01-13")

	assert.ErrorIs(t, err, ErrGeneratedEvent)
}

func TestGetUpcomingEvents_OrdersAndLimits(t *testing.T) {
	service, ctx, clock := setupService(t, "UTC")
	clock.SetNow(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	_, err := service.AddEvent(ctx, Event{
		Title:     "School play",
		StartTime: time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = service.AddEvent(ctx, Event{
		Title:          "Swimming",
		StartTime:      time.Date(2025, 2, 25, 16, 0, 0, 0, time.UTC),
		RecurrenceSpec: "FREQ=WEEKLY",
	})
	require.NoError(t, err)

	events, err := service.GetUpcomingEvents(ctx, 3)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, "Swimming", events[0].Title)
	assert.Equal(t, "2025-03-04", events[0].StartTime.Format("2006-01-02"))
	assert.Equal(t, "2025-03-11", events[1].StartTime.Format("2006-01-02"))
	assert.Equal(t, "2025-03-18", events[2].StartTime.Format("2006-01-02"))
}

func TestSearchEvents_EmptyTermReturnsNothing(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:     "Dentist",
		StartTime: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	events, err := service.SearchEvents(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestQuickAdd_ParsesPhraseIntoEvent(t *testing.T) {
	service, ctx, clock := setupService(t, "UTC")
	clock.SetNow(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	created, err := service.QuickAdd(ctx, "Dentist tomorrow at 5pm")
	require.NoError(t, err)

	assert.Equal(t, "Dentist", created.Title)
	assert.Equal(t, "2025-03-02", created.StartTime.Format("2006-01-02"))
	assert.Equal(t, 17, created.StartTime.Hour())
	assert.Equal(t, time.Hour, created.EndTime.Sub(created.StartTime))
}

func TestQuickAdd_RejectsPhraseWithoutDate(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.QuickAdd(ctx, "buy milk")

	assert.ErrorIs(t, err, ErrUnrecognizedPhrase)
}

func TestExportICS_ContainsExpandedOccurrences(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:          "Swimming",
		StartTime:      time.Date(2025, 1, 6, 16, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC),
		RecurrenceSpec: "FREQ=WEEKLY;COUNT=3",
	})
	require.NoError(t, err)

	document, err := service.ExportICS(ctx,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(document, "BEGIN:VCALENDAR"))
	assert.Equal(t, 4, strings.Count(document, "BEGIN:VEVENT"))
	assert.Equal(t, 4, strings.Count(document, "SUMMARY:Swimming"))
}

func TestAddEvent_AttendeesGetUidsAndDefaultStatus(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	created, err := service.AddEvent(ctx, Event{
		Title:     "Birthday party",
		StartTime: time.Date(2025, 2, 1, 15, 0, 0, 0, time.UTC),
		Attendees: []Attendee{
			{ContactUid: "contact-1", DisplayName: "Grandma"},
			{Email: "neighbor@example.com", Status: RSVPAccepted},
		},
	})
	require.NoError(t, err)

	stored, err := service.GetEvent(ctx, created.Uid)
	require.NoError(t, err)

	require.Len(t, stored.Attendees, 2)
	assert.NotEmpty(t, stored.Attendees[0].Uid)
	assert.Equal(t, RSVPPending, stored.Attendees[0].Status)
	assert.Equal(t, RSVPAccepted, stored.Attendees[1].Status)
}

func TestAddEvent_RejectsUnknownRSVPStatus(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:     "Dinner",
		StartTime: time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC),
		Attendees: []Attendee{{DisplayName: "Bob", Status: "maybe"}},
	})

	assert.ErrorIs(t, err, ErrInvalidRSVPStatus)
}

func TestUpdateEvent_ReplacesAttendees(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	created, err := service.AddEvent(ctx, Event{
		Title:     "Dinner",
		StartTime: time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC),
		Attendees: []Attendee{{DisplayName: "Old guest"}},
	})
	require.NoError(t, err)

	created.Attendees = []Attendee{{DisplayName: "New guest"}}
	_, err = service.UpdateEvent(ctx, created)
	require.NoError(t, err)

	stored, err := service.GetEvent(ctx, created.Uid)
	require.NoError(t, err)
	require.Len(t, stored.Attendees, 1)
	assert.Equal(t, "New guest", stored.Attendees[0].DisplayName)
}

func TestRespondToEvent_RecordsStatusAndTime(t *testing.T) {
	service, ctx, clock := setupService(t, "UTC")
	clock.SetNow(time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC))

	created, err := service.AddEvent(ctx, Event{
		Title:     "BBQ",
		StartTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Attendees: []Attendee{{DisplayName: "Uncle Bob"}},
	})
	require.NoError(t, err)
	stored, err := service.GetEvent(ctx, created.Uid)
	require.NoError(t, err)
	attendeeUid := stored.Attendees[0].Uid

	attendee, err := service.RespondToEvent(ctx, created.Uid, attendeeUid, RSVPAccepted)
	require.NoError(t, err)

	assert.Equal(t, RSVPAccepted, attendee.Status)
	assert.True(t, clock.FixedNow.Equal(attendee.RespondedAt))
}

func TestRespondToEvent_RejectsGeneratedUid(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.RespondToEvent(ctx, "master-1:2025-02-03", "att-1", RSVPAccepted)

	assert.ErrorIs(t, err, ErrGeneratedEvent)
}

func TestRespondToEvent_RejectsUnknownStatus(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	created, err := service.AddEvent(ctx, Event{
		Title:     "BBQ",
		StartTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Attendees: []Attendee{{DisplayName: "Uncle Bob"}},
	})
	require.NoError(t, err)

	_, err = service.RespondToEvent(ctx, created.Uid, "att-1", "maybe")

	assert.ErrorIs(t, err, ErrInvalidRSVPStatus)
}

func TestGetEvents_OccurrencesCarryMasterAttendees(t *testing.T) {
	service, ctx, _ := setupService(t, "UTC")

	_, err := service.AddEvent(ctx, Event{
		Title:          "Piano lesson",
		StartTime:      time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC),
		RecurrenceSpec: "FREQ=WEEKLY",
		Attendees:      []Attendee{{DisplayName: "Teacher", Email: "piano@example.com"}},
	})
	require.NoError(t, err)

	events, err := service.GetEvents(ctx,
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 19, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.True(t, events[0].Generated)
	require.Len(t, events[0].Attendees, 1)
	assert.Equal(t, "Teacher", events[0].Attendees[0].DisplayName)
}
