package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrContactNotFound = errors.New("contact not found")

type Repository interface {
	StoreContact(ctx context.Context, familyId int, contact Contact) error
	GetContact(ctx context.Context, familyId int, uid string) (Contact, error)
	// GetContacts lists contacts, hiding archived ones unless asked for.
	GetContacts(ctx context.Context, familyId int, includeArchived bool) ([]Contact, error)
	SearchContacts(ctx context.Context, familyId int, term string) ([]Contact, error)
	UpdateContact(ctx context.Context, familyId int, contact Contact) error
	DeleteContact(ctx context.Context, familyId int, uid string) error
	SetFavorite(ctx context.Context, familyId int, uid string, favorite bool) error
	SetArchived(ctx context.Context, familyId int, uid string, archived bool) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const contactColumns = `id, uid, first_name, last_name, display_name, nickname, birthday, company, job_title, address, notes, is_favorite, is_archived`

func (r *RepositoryImpl) StoreContact(ctx context.Context, familyId int, contact Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	query := `INSERT INTO contacts (
				uid, family_id, first_name, last_name, display_name, nickname,
				birthday, company, job_title, address, notes, is_favorite, is_archived
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		contact.Uid, familyId, contact.FirstName, contact.LastName,
		contact.DisplayName, contact.Nickname, birthdayMillis(contact),
		contact.Company, contact.JobTitle, contact.Address, contact.Notes,
		contact.IsFavorite, contact.IsArchived)
	if err != nil {
		err := fmt.Errorf("could not store contact: %w", err)
		log.Error(err)
		return err
	}

	if err := insertPhonesAndEmails(ctx, tx, familyId, contact); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *RepositoryImpl) GetContact(ctx context.Context, familyId int, uid string) (Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE family_id = ? AND uid = ?`,
		familyId, uid)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrContactNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get contact: %w", err)
		log.Error(err)
		return Contact{}, err
	}
	if err := r.loadPhonesAndEmails(ctx, familyId, &contact); err != nil {
		return Contact{}, err
	}
	return contact, nil
}

func (r *RepositoryImpl) GetContacts(ctx context.Context, familyId int, includeArchived bool) ([]Contact, error) {
	query := `SELECT ` + contactColumns + `
				FROM contacts
				WHERE family_id = ?`
	if !includeArchived {
		query += ` AND is_archived = false`
	}
	query += ` ORDER BY is_favorite DESC, first_name, last_name`
	return r.queryContacts(ctx, familyId, query, familyId)
}

func (r *RepositoryImpl) SearchContacts(ctx context.Context, familyId int, term string) ([]Contact, error) {
	pattern := "%" + term + "%"
	query := `SELECT DISTINCT c.id, c.uid, c.first_name, c.last_name, c.display_name,
				c.nickname, c.birthday, c.company, c.job_title, c.address, c.notes,
				c.is_favorite, c.is_archived
			FROM contacts c
			LEFT JOIN contact_phones p ON p.contact_uid = c.uid AND p.family_id = c.family_id
			LEFT JOIN contact_emails e ON e.contact_uid = c.uid AND e.family_id = c.family_id
			WHERE c.family_id = ?
			  AND c.is_archived = false
			  AND (c.first_name LIKE ? COLLATE NOCASE
				OR c.last_name LIKE ? COLLATE NOCASE
				OR c.display_name LIKE ? COLLATE NOCASE
				OR c.nickname LIKE ? COLLATE NOCASE
				OR c.company LIKE ? COLLATE NOCASE
				OR p.phone_number LIKE ?
				OR e.email_address LIKE ? COLLATE NOCASE)
			ORDER BY c.first_name, c.last_name`
	return r.queryContacts(ctx, familyId, query,
		familyId, pattern, pattern, pattern, pattern, pattern, pattern, pattern)
}

func (r *RepositoryImpl) UpdateContact(ctx context.Context, familyId int, contact Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	query := `UPDATE contacts SET
				first_name = ?, last_name = ?, display_name = ?, nickname = ?,
				birthday = ?, company = ?, job_title = ?, address = ?,
				notes = ?, is_favorite = ?, is_archived = ?
			WHERE family_id = ? AND uid = ?`

	result, err := tx.ExecContext(ctx, query,
		contact.FirstName, contact.LastName, contact.DisplayName,
		contact.Nickname, birthdayMillis(contact), contact.Company,
		contact.JobTitle, contact.Address, contact.Notes, contact.IsFavorite,
		contact.IsArchived, familyId, contact.Uid)
	if err != nil {
		err := fmt.Errorf("could not update contact: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}

	// Phones and emails are replaced wholesale on update.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM contact_phones WHERE family_id = ? AND contact_uid = ?`,
		familyId, contact.Uid)
	if err != nil {
		return fmt.Errorf("could not replace phones: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM contact_emails WHERE family_id = ? AND contact_uid = ?`,
		familyId, contact.Uid)
	if err != nil {
		return fmt.Errorf("could not replace emails: %w", err)
	}
	if err := insertPhonesAndEmails(ctx, tx, familyId, contact); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *RepositoryImpl) DeleteContact(ctx context.Context, familyId int, uid string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE family_id = ? AND uid = ?`, familyId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete contact: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM contact_phones WHERE family_id = ? AND contact_uid = ?`, familyId, uid)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM contact_emails WHERE family_id = ? AND contact_uid = ?`, familyId, uid)
	return err
}

func (r *RepositoryImpl) SetFavorite(ctx context.Context, familyId int, uid string, favorite bool) error {
	return r.setFlag(ctx, familyId, uid, "is_favorite", favorite)
}

func (r *RepositoryImpl) SetArchived(ctx context.Context, familyId int, uid string, archived bool) error {
	return r.setFlag(ctx, familyId, uid, "is_archived", archived)
}

func (r *RepositoryImpl) setFlag(ctx context.Context, familyId int, uid string, column string, value bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET `+column+` = ? WHERE family_id = ? AND uid = ?`,
		value, familyId, uid)
	if err != nil {
		err := fmt.Errorf("could not update contact: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (r *RepositoryImpl) queryContacts(ctx context.Context, familyId int, query string, args ...interface{}) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query contacts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range contacts {
		if err := r.loadPhonesAndEmails(ctx, familyId, &contacts[i]); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

func (r *RepositoryImpl) loadPhonesAndEmails(ctx context.Context, familyId int, contact *Contact) error {
	phoneRows, err := r.db.QueryContext(ctx,
		`SELECT phone_type, phone_number, is_primary
			FROM contact_phones
			WHERE family_id = ? AND contact_uid = ?
			ORDER BY is_primary DESC, id`,
		familyId, contact.Uid)
	if err != nil {
		return fmt.Errorf("could not query phones: %w", err)
	}
	defer phoneRows.Close()
	for phoneRows.Next() {
		var phone Phone
		if err := phoneRows.Scan(&phone.Type, &phone.Number, &phone.IsPrimary); err != nil {
			return err
		}
		contact.Phones = append(contact.Phones, phone)
	}
	if err := phoneRows.Err(); err != nil {
		return err
	}

	emailRows, err := r.db.QueryContext(ctx,
		`SELECT email_type, email_address, is_primary
			FROM contact_emails
			WHERE family_id = ? AND contact_uid = ?
			ORDER BY is_primary DESC, id`,
		familyId, contact.Uid)
	if err != nil {
		return fmt.Errorf("could not query emails: %w", err)
	}
	defer emailRows.Close()
	for emailRows.Next() {
		var email Email
		if err := emailRows.Scan(&email.Type, &email.Address, &email.IsPrimary); err != nil {
			return err
		}
		contact.Emails = append(contact.Emails, email)
	}
	return emailRows.Err()
}

func insertPhonesAndEmails(ctx context.Context, tx *sql.Tx, familyId int, contact Contact) error {
	for _, phone := range contact.Phones {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contact_phones (family_id, contact_uid, phone_type, phone_number, is_primary)
				VALUES (?, ?, ?, ?, ?)`,
			familyId, contact.Uid, phone.Type, phone.Number, phone.IsPrimary)
		if err != nil {
			return fmt.Errorf("could not store phone: %w", err)
		}
	}
	for _, email := range contact.Emails {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contact_emails (family_id, contact_uid, email_type, email_address, is_primary)
				VALUES (?, ?, ?, ?, ?)`,
			familyId, contact.Uid, email.Type, email.Address, email.IsPrimary)
		if err != nil {
			return fmt.Errorf("could not store email: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var contact Contact
	var birthday sql.NullInt64
	err := row.Scan(
		&contact.Id, &contact.Uid, &contact.FirstName, &contact.LastName,
		&contact.DisplayName, &contact.Nickname, &birthday, &contact.Company,
		&contact.JobTitle, &contact.Address, &contact.Notes, &contact.IsFavorite,
		&contact.IsArchived)
	if err != nil {
		return Contact{}, err
	}
	if birthday.Valid {
		contact.Birthday = millisToDate(birthday.Int64)
	}
	return contact, nil
}

// Birthdays are stored as epoch millis of midnight UTC on the date.
func birthdayMillis(contact Contact) any {
	if contact.Birthday.IsZero() {
		return nil
	}
	return contact.Birthday.UnixMilli()
}

func millisToDate(millis int64) time.Time {
	t := time.UnixMilli(millis).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
