package contacts

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
)

var (
	ErrEmptyFirstName = errors.New("contact first name must not be empty")
	ErrInvalidPhone   = errors.New("invalid phone entry")
	ErrInvalidEmail   = errors.New("invalid email entry")
)

// UpcomingBirthday pairs a contact with their next birthday and the age
// they turn, when the birth year is known.
type UpcomingBirthday struct {
	Contact  Contact
	Date     time.Time
	TurnsAge int
}

type Service interface {
	// GetContacts lists the family's contacts. Archived contacts are
	// left out unless includeArchived is set.
	GetContacts(ctx context.Context, includeArchived bool) ([]Contact, error)
	GetContact(ctx context.Context, uid string) (Contact, error)
	CreateContact(ctx context.Context, contact Contact) (Contact, error)
	UpdateContact(ctx context.Context, contact Contact) (Contact, error)
	DeleteContact(ctx context.Context, uid string) error
	SearchContacts(ctx context.Context, term string) ([]Contact, error)
	ToggleFavorite(ctx context.Context, uid string) (Contact, error)
	ToggleArchive(ctx context.Context, uid string) (Contact, error)
	// GetUpcomingBirthdays lists contacts whose birthday falls within the
	// given number of days from today, soonest first.
	GetUpcomingBirthdays(ctx context.Context, days int) ([]UpcomingBirthday, error)
}

type ServiceImpl struct {
	repo          Repository
	familyService family.Service
	clock         utils.Clock
}

func NewContactsService(repo Repository, familyService family.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, familyService: familyService, clock: clock}
}

func (s *ServiceImpl) GetContacts(ctx context.Context, includeArchived bool) ([]Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetContacts(ctx, familyId, includeArchived)
}

func (s *ServiceImpl) GetContact(ctx context.Context, uid string) (Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Contact{}, err
	}
	return s.repo.GetContact(ctx, familyId, uid)
}

func (s *ServiceImpl) CreateContact(ctx context.Context, contact Contact) (Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Contact{}, err
	}
	if err := validateContact(&contact); err != nil {
		return Contact{}, err
	}
	contact.Uid = uuid.New().String()
	if err := s.repo.StoreContact(ctx, familyId, contact); err != nil {
		return Contact{}, err
	}
	log.Debugf("created contact %s (%q)", contact.Uid, contact.Name())
	return contact, nil
}

func (s *ServiceImpl) UpdateContact(ctx context.Context, contact Contact) (Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Contact{}, err
	}
	if err := validateContact(&contact); err != nil {
		return Contact{}, err
	}
	if err := s.repo.UpdateContact(ctx, familyId, contact); err != nil {
		return Contact{}, err
	}
	return contact, nil
}

func (s *ServiceImpl) DeleteContact(ctx context.Context, uid string) error {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteContact(ctx, familyId, uid)
}

func (s *ServiceImpl) ToggleFavorite(ctx context.Context, uid string) (Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Contact{}, err
	}
	contact, err := s.repo.GetContact(ctx, familyId, uid)
	if err != nil {
		return Contact{}, err
	}
	contact.IsFavorite = !contact.IsFavorite
	if err := s.repo.SetFavorite(ctx, familyId, uid, contact.IsFavorite); err != nil {
		return Contact{}, err
	}
	return contact, nil
}

func (s *ServiceImpl) ToggleArchive(ctx context.Context, uid string) (Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Contact{}, err
	}
	contact, err := s.repo.GetContact(ctx, familyId, uid)
	if err != nil {
		return Contact{}, err
	}
	contact.IsArchived = !contact.IsArchived
	if err := s.repo.SetArchived(ctx, familyId, uid, contact.IsArchived); err != nil {
		return Contact{}, err
	}
	log.Debugf("contact %s archived=%t", uid, contact.IsArchived)
	return contact, nil
}

func (s *ServiceImpl) SearchContacts(ctx context.Context, term string) ([]Contact, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []Contact{}, nil
	}
	return s.repo.SearchContacts(ctx, familyId, term)
}

func (s *ServiceImpl) GetUpcomingBirthdays(ctx context.Context, days int) ([]UpcomingBirthday, error) {
	loc, err := s.familyService.CurrentLocation(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.GetContacts(ctx, false)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	today := utils.StartOfDay(s.clock.Now().In(loc))
	limit := today.AddDate(0, 0, days)

	upcoming := make([]UpcomingBirthday, 0)
	for _, contact := range contacts {
		if contact.Birthday.IsZero() {
			continue
		}
		next := nextBirthday(contact.Birthday, today)
		if next.After(limit) {
			continue
		}
		upcoming = append(upcoming, UpcomingBirthday{
			Contact:  contact,
			Date:     next,
			TurnsAge: next.Year() - contact.Birthday.Year(),
		})
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	return upcoming, nil
}

// nextBirthday returns the first anniversary of the given date on or
// after today. Feb 29 birthdays fall on Mar 1 in non-leap years.
func nextBirthday(birthday, today time.Time) time.Time {
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(),
		0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(),
			0, 0, 0, 0, today.Location())
	}
	return next
}

func validateContact(contact *Contact) error {
	if strings.TrimSpace(contact.FirstName) == "" {
		return ErrEmptyFirstName
	}
	for i, phone := range contact.Phones {
		if phone.Type == "" {
			contact.Phones[i].Type = PhoneMobile
		} else if !phone.Type.Valid() {
			return fmt.Errorf("%w: unknown type %q", ErrInvalidPhone, phone.Type)
		}
		if strings.TrimSpace(phone.Number) == "" {
			return fmt.Errorf("%w: empty number", ErrInvalidPhone)
		}
	}
	for i, email := range contact.Emails {
		if email.Type == "" {
			contact.Emails[i].Type = EmailPersonal
		} else if !email.Type.Valid() {
			return fmt.Errorf("%w: unknown type %q", ErrInvalidEmail, email.Type)
		}
		if !strings.Contains(email.Address, "@") {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email.Address)
		}
	}
	return nil
}
