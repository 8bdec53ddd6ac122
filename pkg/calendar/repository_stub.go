package calendar

import (
	"context"
	"sort"
	"strings"
	"time"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	events map[int][]Event
}

func NewStubRepository() *StubRepository {
	return &StubRepository{events: map[int][]Event{}}
}

func (s *StubRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(s)
}

func (s *StubRepository) StoreEvent(ctx context.Context, familyId int, event Event) error {
	// Attendee rows live apart from the event row; they arrive through
	// ReplaceAttendees.
	event.Attendees = nil
	s.events[familyId] = append(s.events[familyId], event)
	return nil
}

func (s *StubRepository) GetEvent(ctx context.Context, familyId int, uid string) (Event, error) {
	for _, event := range s.events[familyId] {
		if event.Uid == uid {
			return event, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (s *StubRepository) GetEvents(ctx context.Context, familyId int, from, to time.Time) ([]Event, error) {
	result := make([]Event, 0)
	for _, event := range s.events[familyId] {
		if event.StartTime.Before(from) || event.StartTime.After(to) {
			continue
		}
		result = append(result, event)
	}
	sortByStart(result)
	return result, nil
}

func (s *StubRepository) GetRecurringMasters(ctx context.Context, familyId int, until time.Time) ([]Event, error) {
	result := make([]Event, 0)
	for _, event := range s.events[familyId] {
		if event.RecurrenceSpec == "" || event.StartTime.After(until) {
			continue
		}
		result = append(result, event)
	}
	sortByStart(result)
	return result, nil
}

func (s *StubRepository) GetUpcomingEvents(ctx context.Context, familyId int, from time.Time, limit int) ([]Event, error) {
	result := make([]Event, 0)
	for _, event := range s.events[familyId] {
		if event.StartTime.Before(from) {
			continue
		}
		result = append(result, event)
	}
	sortByStart(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *StubRepository) SearchEvents(ctx context.Context, familyId int, term string, limit int) ([]Event, error) {
	term = strings.ToLower(term)
	result := make([]Event, 0)
	for _, event := range s.events[familyId] {
		haystack := strings.ToLower(event.Title + " " + event.Description + " " + event.Location)
		if !strings.Contains(haystack, term) {
			continue
		}
		result = append(result, event)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *StubRepository) UpdateEvent(ctx context.Context, familyId int, event Event) error {
	for i, existing := range s.events[familyId] {
		if existing.Uid == event.Uid {
			event.Attendees = existing.Attendees
			s.events[familyId][i] = event
			return nil
		}
	}
	return ErrEventNotFound
}

func (s *StubRepository) DeleteEvent(ctx context.Context, familyId int, uid string) error {
	for i, existing := range s.events[familyId] {
		if existing.Uid == uid {
			s.events[familyId] = append(s.events[familyId][:i], s.events[familyId][i+1:]...)
			return nil
		}
	}
	return ErrEventNotFound
}

func (s *StubRepository) ReplaceAttendees(ctx context.Context, familyId int, eventUid string, attendees []Attendee) error {
	for i, event := range s.events[familyId] {
		if event.Uid == eventUid {
			s.events[familyId][i].Attendees = append([]Attendee(nil), attendees...)
			return nil
		}
	}
	return ErrEventNotFound
}

func (s *StubRepository) GetAttendee(ctx context.Context, familyId int, eventUid, attendeeUid string) (Attendee, error) {
	for _, event := range s.events[familyId] {
		if event.Uid != eventUid {
			continue
		}
		for _, attendee := range event.Attendees {
			if attendee.Uid == attendeeUid {
				return attendee, nil
			}
		}
	}
	return Attendee{}, ErrAttendeeNotFound
}

func (s *StubRepository) UpdateAttendeeStatus(ctx context.Context, familyId int, eventUid, attendeeUid string, status RSVPStatus, respondedAt time.Time) error {
	for _, event := range s.events[familyId] {
		if event.Uid != eventUid {
			continue
		}
		for i := range event.Attendees {
			if event.Attendees[i].Uid == attendeeUid {
				event.Attendees[i].Status = status
				event.Attendees[i].RespondedAt = respondedAt
				return nil
			}
		}
	}
	return ErrAttendeeNotFound
}

func sortByStart(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
