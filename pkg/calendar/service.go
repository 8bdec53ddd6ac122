package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/utils"
	"github.com/famhub/famhub/pkg/family"
	"github.com/famhub/famhub/pkg/recurrence"
)

var (
	ErrEmptyTitle        = errors.New("event title must not be empty")
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	ErrInvalidRSVPStatus = errors.New("invalid rsvp status")
	// ErrGeneratedEvent is returned when a write targets a derived
	// occurrence instead of its master.
	ErrGeneratedEvent = errors.New("generated occurrences cannot be modified")
)

type Service interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, uid string) (Event, error)
	AddEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, uid string) error
	GetUpcomingEvents(ctx context.Context, limit int) ([]Event, error)
	SearchEvents(ctx context.Context, term string, limit int) ([]Event, error)
	QuickAdd(ctx context.Context, text string) (Event, error)
	ExportICS(ctx context.Context, from, to time.Time) (string, error)
	GetAttendee(ctx context.Context, eventUid, attendeeUid string) (Attendee, error)
	// RespondToEvent records an attendee's RSVP on the series master.
	RespondToEvent(ctx context.Context, eventUid, attendeeUid string, status RSVPStatus) (Attendee, error)
}

type ServiceImpl struct {
	repo          Repository
	familyService family.Service
	clock         utils.Clock
	maxInstances  int
}

func NewCalendarService(repo Repository, familyService family.Service, clock utils.Clock, maxInstances int) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		familyService: familyService,
		clock:         clock,
		maxInstances:  maxInstances,
	}
}

// GetEvents returns all events in [from, to]: events stored in the window
// plus occurrences derived from recurring masters that started before the
// window's end. The result is sorted by start time.
func (s *ServiceImpl) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := s.familyService.CurrentLocation(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.GetEvents(ctx, familyId, from, to)
	if err != nil {
		return nil, err
	}

	masters, err := s.repo.GetRecurringMasters(ctx, familyId, to)
	if err != nil {
		return nil, err
	}
	horizon := recurrence.Horizon{MaxInstances: s.maxInstances}
	for _, master := range masters {
		for _, occurrence := range recurrence.ExpandSpec(toMaster(master, loc), horizon) {
			if occurrence.Start.Before(from) || occurrence.Start.After(to) {
				continue
			}
			events = append(events, fromOccurrence(occurrence, master))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, uid string) (Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	return s.repo.GetEvent(ctx, familyId, uid)
}

func (s *ServiceImpl) AddEvent(ctx context.Context, event Event) (Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	event.Uid = uuid.New().String()
	event.MasterUid = ""
	event.Generated = false
	attendees, err := normalizeAttendees(event.Attendees)
	if err != nil {
		return Event{}, err
	}
	event.Attendees = attendees

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.StoreEvent(ctx, familyId, event); err != nil {
			return err
		}
		if len(event.Attendees) == 0 {
			return nil
		}
		return repo.ReplaceAttendees(ctx, familyId, event.Uid, event.Attendees)
	})
	if err != nil {
		return Event{}, err
	}
	log.Debugf("created calendar event %s (%q)", event.Uid, event.Title)
	return event, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	if isGeneratedUid(event.Uid) {
		return Event{}, ErrGeneratedEvent
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	attendees, err := normalizeAttendees(event.Attendees)
	if err != nil {
		return Event{}, err
	}
	event.Attendees = attendees

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.UpdateEvent(ctx, familyId, event); err != nil {
			return err
		}
		// Attendees are replaced wholesale on update.
		return repo.ReplaceAttendees(ctx, familyId, event.Uid, event.Attendees)
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, uid string) error {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return err
	}
	if isGeneratedUid(uid) {
		return ErrGeneratedEvent
	}
	return s.repo.DeleteEvent(ctx, familyId, uid)
}

func (s *ServiceImpl) GetUpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := s.familyService.CurrentLocation(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	now := s.clock.Now().In(loc)
	// Look a year ahead so occurrences of long-running series are not
	// shadowed by distant one-off events.
	until := now.AddDate(1, 0, 0)

	events, err := s.repo.GetUpcomingEvents(ctx, familyId, now, limit)
	if err != nil {
		return nil, err
	}
	masters, err := s.repo.GetRecurringMasters(ctx, familyId, until)
	if err != nil {
		return nil, err
	}
	horizon := recurrence.Horizon{MaxInstances: s.maxInstances}
	for _, master := range masters {
		for _, occurrence := range recurrence.ExpandSpec(toMaster(master, loc), horizon) {
			if occurrence.Start.Before(now) || occurrence.Start.After(until) {
				continue
			}
			events = append(events, fromOccurrence(occurrence, master))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (s *ServiceImpl) SearchEvents(ctx context.Context, term string, limit int) ([]Event, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []Event{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.SearchEvents(ctx, familyId, term, limit)
}

// QuickAdd turns a free text phrase like "Dentist tomorrow at 5pm" into a
// stored event.
func (s *ServiceImpl) QuickAdd(ctx context.Context, text string) (Event, error) {
	loc, err := s.familyService.CurrentLocation(ctx)
	if err != nil {
		return Event{}, err
	}
	event, err := parseQuickAdd(text, s.clock.Now().In(loc))
	if err != nil {
		return Event{}, err
	}
	return s.AddEvent(ctx, event)
}

func (s *ServiceImpl) ExportICS(ctx context.Context, from, to time.Time) (string, error) {
	events, err := s.GetEvents(ctx, from, to)
	if err != nil {
		return "", err
	}
	return buildICS(events, s.clock.Now())
}

func (s *ServiceImpl) GetAttendee(ctx context.Context, eventUid, attendeeUid string) (Attendee, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Attendee{}, err
	}
	return s.repo.GetAttendee(ctx, familyId, eventUid, attendeeUid)
}

func (s *ServiceImpl) RespondToEvent(ctx context.Context, eventUid, attendeeUid string, status RSVPStatus) (Attendee, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Attendee{}, err
	}
	if isGeneratedUid(eventUid) {
		return Attendee{}, ErrGeneratedEvent
	}
	if !status.Valid() {
		return Attendee{}, fmt.Errorf("%w: %q", ErrInvalidRSVPStatus, status)
	}
	respondedAt := s.clock.Now()
	if err := s.repo.UpdateAttendeeStatus(ctx, familyId, eventUid, attendeeUid, status, respondedAt); err != nil {
		return Attendee{}, err
	}
	return s.repo.GetAttendee(ctx, familyId, eventUid, attendeeUid)
}

// normalizeAttendees assigns fresh uids and defaults the RSVP status.
// Updates replace the attendee list wholesale, so stored rows never keep
// their old uids.
func normalizeAttendees(attendees []Attendee) ([]Attendee, error) {
	for i := range attendees {
		if attendees[i].Status == "" {
			attendees[i].Status = RSVPPending
		}
		if !attendees[i].Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRSVPStatus, attendees[i].Status)
		}
		attendees[i].Uid = uuid.New().String()
	}
	return attendees, nil
}

func validateEvent(event Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return ErrEmptyTitle
	}
	if event.RecurrenceSpec != "" {
		if _, err := recurrence.Parse(event.RecurrenceSpec); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidRecurrence, event.RecurrenceSpec)
		}
	}
	return nil
}

// Derived occurrence uids embed the occurrence date after a colon; stored
// uids are plain UUIDs.
func isGeneratedUid(uid string) bool {
	return strings.Contains(uid, ":")
}
