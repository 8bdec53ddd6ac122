package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, familyId int, event Event) error
	GetEvent(ctx context.Context, familyId int, uid string) (Event, error)
	// GetEvents returns stored events whose start time falls in [from, to].
	GetEvents(ctx context.Context, familyId int, from, to time.Time) ([]Event, error)
	// GetRecurringMasters returns events carrying a recurrence spec that
	// start on or before the given bound; their occurrences may still fall
	// inside a later window.
	GetRecurringMasters(ctx context.Context, familyId int, until time.Time) ([]Event, error)
	GetUpcomingEvents(ctx context.Context, familyId int, from time.Time, limit int) ([]Event, error)
	SearchEvents(ctx context.Context, familyId int, term string, limit int) ([]Event, error)
	UpdateEvent(ctx context.Context, familyId int, event Event) error
	DeleteEvent(ctx context.Context, familyId int, uid string) error
	// ReplaceAttendees swaps an event's attendee rows for the given list.
	ReplaceAttendees(ctx context.Context, familyId int, eventUid string, attendees []Attendee) error
	GetAttendee(ctx context.Context, familyId int, eventUid, attendeeUid string) (Attendee, error)
	UpdateAttendeeStatus(ctx context.Context, familyId int, eventUid, attendeeUid string, status RSVPStatus, respondedAt time.Time) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const eventColumns = `uid, user_uid, title, description, location, start_time, end_time, all_day, recurrence_rule, color`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, familyId int, event Event) error {
	query := `INSERT INTO calendar_events (
				uid,
				family_id,
				user_uid,
				title,
				description,
				location,
				start_time,
				end_time,
				all_day,
				recurrence_rule,
				color
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQueryer().ExecContext(ctx, query,
		event.Uid,
		familyId,
		event.UserUid,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime.UnixMilli(),
		endTimeMillis(event.EndTime),
		event.AllDay,
		event.RecurrenceSpec,
		event.Color,
	)
	if err != nil {
		err := fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, familyId int, uid string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE family_id = ? AND uid = ?`
	row := r.getQueryer().QueryRowContext(ctx, query, familyId, uid)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	if err := r.loadAttendees(ctx, familyId, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, familyId int, from, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
				FROM calendar_events
				WHERE family_id = ?
				  AND start_time >= ?
				  AND start_time <= ?
				ORDER BY start_time`

	return r.queryEvents(ctx, familyId, query, familyId, from.UnixMilli(), to.UnixMilli())
}

func (r *RepositoryImpl) GetRecurringMasters(ctx context.Context, familyId int, until time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
				FROM calendar_events
				WHERE family_id = ?
				  AND recurrence_rule != ''
				  AND start_time <= ?
				ORDER BY start_time`

	return r.queryEvents(ctx, familyId, query, familyId, until.UnixMilli())
}

func (r *RepositoryImpl) GetUpcomingEvents(ctx context.Context, familyId int, from time.Time, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
				FROM calendar_events
				WHERE family_id = ?
				  AND start_time >= ?
				ORDER BY start_time
				LIMIT ?`

	return r.queryEvents(ctx, familyId, query, familyId, from.UnixMilli(), limit)
}

func (r *RepositoryImpl) SearchEvents(ctx context.Context, familyId int, term string, limit int) ([]Event, error) {
	// case-insensitive substring match on title, description and location
	pattern := "%" + strings.ToLower(term) + "%"
	query := `SELECT ` + eventColumns + `
				FROM calendar_events
				WHERE family_id = ?
				  AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)
				ORDER BY start_time DESC
				LIMIT ?`

	return r.queryEvents(ctx, familyId, query, familyId, pattern, pattern, pattern, limit)
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, familyId int, event Event) error {
	query := `UPDATE calendar_events SET
				user_uid = ?,
				title = ?,
				description = ?,
				location = ?,
				start_time = ?,
				end_time = ?,
				all_day = ?,
				recurrence_rule = ?,
				color = ?
			WHERE family_id = ? AND uid = ?`

	result, err := r.getQueryer().ExecContext(ctx, query,
		event.UserUid,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime.UnixMilli(),
		endTimeMillis(event.EndTime),
		event.AllDay,
		event.RecurrenceSpec,
		event.Color,
		familyId,
		event.Uid,
	)
	if err != nil {
		err := fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, familyId int, uid string) error {
	result, err := r.getQueryer().ExecContext(ctx,
		`DELETE FROM calendar_events WHERE family_id = ? AND uid = ?`, familyId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

const attendeeColumns = `id, uid, contact_uid, email, display_name, rsvp_status, responded_at`

func (r *RepositoryImpl) ReplaceAttendees(ctx context.Context, familyId int, eventUid string, attendees []Attendee) error {
	q := r.getQueryer()
	_, err := q.ExecContext(ctx,
		`DELETE FROM event_attendees WHERE family_id = ? AND event_uid = ?`,
		familyId, eventUid)
	if err != nil {
		err := fmt.Errorf("could not replace attendees: %w", err)
		log.Error(err)
		return err
	}
	for _, attendee := range attendees {
		_, err := q.ExecContext(ctx,
			`INSERT INTO event_attendees (
				uid, family_id, event_uid, contact_uid, email, display_name, rsvp_status, responded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			attendee.Uid, familyId, eventUid, attendee.ContactUid,
			attendee.Email, attendee.DisplayName, attendee.Status,
			respondedAtMillis(attendee.RespondedAt))
		if err != nil {
			err := fmt.Errorf("could not store attendee: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) GetAttendee(ctx context.Context, familyId int, eventUid, attendeeUid string) (Attendee, error) {
	row := r.getQueryer().QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM event_attendees
			WHERE family_id = ? AND event_uid = ? AND uid = ?`,
		familyId, eventUid, attendeeUid)
	attendee, err := scanAttendee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attendee{}, ErrAttendeeNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get attendee: %w", err)
		log.Error(err)
		return Attendee{}, err
	}
	return attendee, nil
}

func (r *RepositoryImpl) UpdateAttendeeStatus(ctx context.Context, familyId int, eventUid, attendeeUid string, status RSVPStatus, respondedAt time.Time) error {
	result, err := r.getQueryer().ExecContext(ctx,
		`UPDATE event_attendees SET rsvp_status = ?, responded_at = ?
			WHERE family_id = ? AND event_uid = ? AND uid = ?`,
		status, respondedAtMillis(respondedAt), familyId, eventUid, attendeeUid)
	if err != nil {
		err := fmt.Errorf("could not update attendee status: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}

func (r *RepositoryImpl) loadAttendees(ctx context.Context, familyId int, event *Event) error {
	rows, err := r.getQueryer().QueryContext(ctx,
		`SELECT `+attendeeColumns+` FROM event_attendees
			WHERE family_id = ? AND event_uid = ?
			ORDER BY id`,
		familyId, event.Uid)
	if err != nil {
		return fmt.Errorf("could not query attendees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return err
		}
		event.Attendees = append(event.Attendees, attendee)
	}
	return rows.Err()
}

func (r *RepositoryImpl) queryEvents(ctx context.Context, familyId int, query string, args ...interface{}) ([]Event, error) {
	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		if err := r.loadAttendees(ctx, familyId, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var event Event
	var startMillis int64
	var endMillis sql.NullInt64
	err := row.Scan(
		&event.Uid,
		&event.UserUid,
		&event.Title,
		&event.Description,
		&event.Location,
		&startMillis,
		&endMillis,
		&event.AllDay,
		&event.RecurrenceSpec,
		&event.Color,
	)
	if err != nil {
		return Event{}, err
	}
	event.StartTime = time.UnixMilli(startMillis).UTC()
	if endMillis.Valid {
		event.EndTime = time.UnixMilli(endMillis.Int64).UTC()
	}
	return event, nil
}

func endTimeMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func scanAttendee(row rowScanner) (Attendee, error) {
	var attendee Attendee
	var respondedMillis sql.NullInt64
	err := row.Scan(
		&attendee.Id,
		&attendee.Uid,
		&attendee.ContactUid,
		&attendee.Email,
		&attendee.DisplayName,
		&attendee.Status,
		&respondedMillis,
	)
	if err != nil {
		return Attendee{}, err
	}
	if respondedMillis.Valid {
		attendee.RespondedAt = time.UnixMilli(respondedMillis.Int64).UTC()
	}
	return attendee, nil
}

func respondedAtMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}
