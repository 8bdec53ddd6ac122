package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/rest"
	"github.com/famhub/famhub/pkg/recurrence"
)

type AttendeeDTO struct {
	Uid         string `json:"uid"`
	ContactUid  string `json:"contactUid,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	RsvpStatus  string `json:"rsvpStatus"`
	RespondedAt string `json:"respondedAt,omitempty"`
}

type EventDTO struct {
	Uid                   string        `json:"uid"`
	UserUid               string        `json:"userUid,omitempty"`
	Title                 string        `json:"title"`
	Description           string        `json:"description,omitempty"`
	Location              string        `json:"location,omitempty"`
	StartTime             string        `json:"startTime"`
	EndTime               string        `json:"endTime,omitempty"`
	AllDay                bool          `json:"allDay,omitempty"`
	RecurrenceRule        string        `json:"recurrenceRule,omitempty"`
	RecurrenceDescription string        `json:"recurrenceDescription,omitempty"`
	Color                 string        `json:"color,omitempty"`
	Attendees             []AttendeeDTO `json:"attendees,omitempty"`
	Recurring             bool          `json:"recurring,omitempty"`
	MasterUid             string        `json:"masterUid,omitempty"`
	Generated             bool          `json:"generated,omitempty"`
}

type QuickAddDTO struct {
	Text string `json:"text"`
}

type RSVPUpdateDTO struct {
	Status string `json:"status"`
}

type Handler struct {
	calendarService Service
}

func NewHandler(calendarService Service) *Handler {
	return &Handler{calendarService: calendarService}
}

// GetEvents godoc
// @Summary List events in a date range, expanded with recurring occurrences
// @Tags Calendar
// @Produce json
// @Param from query string true "Range start (RFC 3339)"
// @Param to query string true "Range end (RFC 3339)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date range"
// @Router /api/calendar/event [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, to, err := parseRange(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date range",
			Details: "'from' and 'to' must be RFC 3339 timestamps or YYYY-MM-DD dates",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	events, err := h.calendarService.GetEvents(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventsToDTOs(events)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid := mux.Vars(r)["eventUid"]
	event, err := h.calendarService.GetEvent(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateEvent godoc
// @Summary Create a calendar event, optionally recurring
// @Tags Calendar
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/calendar/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating calendar event")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	event, err := dtoToEvent(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid time format",
			Details: "'startTime' and 'endTime' must be RFC 3339 timestamps",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	created, err := h.calendarService.AddEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	event, err := dtoToEvent(dto)
	if err != nil {
		http.Error(w, "invalid time format", http.StatusBadRequest)
		return
	}
	event.Uid = mux.Vars(r)["eventUid"]

	updated, err := h.calendarService.UpdateEvent(r.Context(), event)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["eventUid"]
	if err := h.calendarService.DeleteEvent(r.Context(), uid); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.calendarService.GetUpcomingEvents(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventsToDTOs(events)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	term := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.calendarService.SearchEvents(r.Context(), term, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventsToDTOs(events)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// QuickAdd godoc
// @Summary Create an event from a natural language phrase
// @Tags Calendar
// @Accept json
// @Produce json
// @Param phrase body QuickAddDTO true "Phrase, e.g. 'Dentist tomorrow at 5pm'"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "No date recognized"
// @Router /api/calendar/quick [post]
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto QuickAddDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.calendarService.QuickAdd(r.Context(), dto.Text)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedPhrase) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "No date recognized in the phrase",
				Details: "Try something like 'Dentist tomorrow at 5pm'",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetAttendee(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	attendee, err := h.calendarService.GetAttendee(r.Context(), vars["eventUid"], vars["attendeeUid"])
	if err != nil {
		if errors.Is(err, ErrAttendeeNotFound) {
			http.Error(w, "attendee not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(attendeeToDTO(attendee)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateAttendeeRSVP godoc
// @Summary Record an attendee's RSVP for an event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param rsvp body RSVPUpdateDTO true "New status: pending, accepted, declined or tentative"
// @Success 200 {object} AttendeeDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid status"
// @Router /api/calendar/event/{eventUid}/attendee/{attendeeUid}/rsvp [patch]
func (h *Handler) UpdateAttendeeRSVP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto RSVPUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	attendee, err := h.calendarService.RespondToEvent(
		r.Context(), vars["eventUid"], vars["attendeeUid"], RSVPStatus(dto.Status))
	if err != nil {
		if errors.Is(err, ErrAttendeeNotFound) {
			http.Error(w, "attendee not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(attendeeToDTO(attendee)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, "invalid date range", http.StatusBadRequest)
		return
	}

	document, err := h.calendarService.ExportICS(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="famhub.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		log.Errorf("could not write ICS response: %v", err)
	}
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from, _, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, dateOnly, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dateOnly {
		// a date-only upper bound covers the whole day
		to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return from, to, nil
}

func parseTimeParam(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyTitle):
		http.Error(w, "event title is required", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidRecurrence):
		http.Error(w, "invalid recurrence rule", http.StatusBadRequest)
	case errors.Is(err, ErrGeneratedEvent):
		http.Error(w, "generated occurrences cannot be modified", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidRSVPStatus):
		http.Error(w, "invalid rsvp status", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(event Event) EventDTO {
	dto := EventDTO{
		Uid:            event.Uid,
		UserUid:        event.UserUid,
		Title:          event.Title,
		Description:    event.Description,
		Location:       event.Location,
		StartTime:      event.StartTime.Format(time.RFC3339),
		AllDay:         event.AllDay,
		RecurrenceRule: event.RecurrenceSpec,
		Color:          event.Color,
		MasterUid:      event.MasterUid,
		Generated:      event.Generated,
	}
	if !event.EndTime.IsZero() {
		dto.EndTime = event.EndTime.Format(time.RFC3339)
	}
	if event.RecurrenceSpec != "" {
		dto.Recurring = true
		dto.RecurrenceDescription = recurrence.Describe(event.RecurrenceSpec)
	}
	for _, attendee := range event.Attendees {
		dto.Attendees = append(dto.Attendees, attendeeToDTO(attendee))
	}
	return dto
}

func attendeeToDTO(attendee Attendee) AttendeeDTO {
	dto := AttendeeDTO{
		Uid:         attendee.Uid,
		ContactUid:  attendee.ContactUid,
		Email:       attendee.Email,
		DisplayName: attendee.DisplayName,
		RsvpStatus:  string(attendee.Status),
	}
	if !attendee.RespondedAt.IsZero() {
		dto.RespondedAt = attendee.RespondedAt.Format(time.RFC3339)
	}
	return dto
}

func eventsToDTOs(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, eventToDTO(event))
	}
	return dtos
}

func dtoToEvent(dto EventDTO) (Event, error) {
	start, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return Event{}, err
	}
	event := Event{
		Uid:            dto.Uid,
		UserUid:        dto.UserUid,
		Title:          dto.Title,
		Description:    dto.Description,
		Location:       dto.Location,
		StartTime:      start,
		AllDay:         dto.AllDay,
		RecurrenceSpec: dto.RecurrenceRule,
		Color:          dto.Color,
	}
	if dto.EndTime != "" {
		end, err := time.Parse(time.RFC3339, dto.EndTime)
		if err != nil {
			return Event{}, err
		}
		event.EndTime = end
	}
	for _, attendee := range dto.Attendees {
		event.Attendees = append(event.Attendees, Attendee{
			ContactUid:  attendee.ContactUid,
			Email:       attendee.Email,
			DisplayName: attendee.DisplayName,
			Status:      RSVPStatus(attendee.RsvpStatus),
		})
	}
	return event, nil
}
