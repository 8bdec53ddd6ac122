package calendar

import (
	"time"

	"github.com/famhub/famhub/pkg/recurrence"
)

type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAccepted  RSVPStatus = "accepted"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPTentative RSVPStatus = "tentative"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPAccepted, RSVPDeclined, RSVPTentative:
		return true
	}
	return false
}

// Attendee is a person invited to an event, optionally linked to a
// stored contact. The name and email are denormalized so ad-hoc guests
// without a contact entry can be invited too.
type Attendee struct {
	Id          int
	Uid         string
	ContactUid  string // empty for ad-hoc attendees
	Email       string
	DisplayName string
	Status      RSVPStatus
	RespondedAt time.Time // zero until the attendee responds
}

// Event is a calendar entry. A stored event with a non-empty
// RecurrenceSpec is the master of a recurring series; the occurrences of
// the series are derived on demand and never stored.
type Event struct {
	Uid            string
	UserUid        string
	Title          string
	Description    string
	Location       string
	StartTime      time.Time
	EndTime        time.Time // zero when the event has no end
	AllDay         bool
	RecurrenceSpec string
	Color          string
	Attendees      []Attendee

	// MasterUid and Generated are only set on derived occurrences.
	// Generated events carry a synthetic Uid and must never be written
	// back; edits target the master.
	MasterUid string
	Generated bool
}

// toMaster projects a stored event into the recurrence engine's input,
// anchored in the family's display timezone.
func toMaster(e Event, loc *time.Location) recurrence.Master {
	master := recurrence.Master{
		ID:          e.Uid,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Start:       e.StartTime.In(loc),
		AllDay:      e.AllDay,
		UserID:      e.UserUid,
		Color:       e.Color,
		Spec:        e.RecurrenceSpec,
	}
	if !e.EndTime.IsZero() {
		master.End = e.EndTime.In(loc)
	}
	return master
}

// fromOccurrence projects a derived occurrence back into an Event. The
// master's attendee list applies to every occurrence of the series.
func fromOccurrence(o recurrence.Occurrence, master Event) Event {
	return Event{
		Uid:         o.ID,
		UserUid:     o.UserID,
		Title:       o.Title,
		Description: o.Description,
		Location:    o.Location,
		StartTime:   o.Start,
		EndTime:     o.End,
		AllDay:      o.AllDay,
		Color:       o.Color,
		Attendees:   master.Attendees,
		MasterUid:   o.MasterID,
		Generated:   true,
	}
}
