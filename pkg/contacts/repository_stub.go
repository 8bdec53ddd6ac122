package contacts

import (
	"context"
	"sort"
	"strings"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	contacts map[int][]Contact
}

func NewStubRepository() *StubRepository {
	return &StubRepository{contacts: map[int][]Contact{}}
}

func (s *StubRepository) StoreContact(ctx context.Context, familyId int, contact Contact) error {
	contact.Id = len(s.contacts[familyId]) + 1
	s.contacts[familyId] = append(s.contacts[familyId], contact)
	return nil
}

func (s *StubRepository) GetContact(ctx context.Context, familyId int, uid string) (Contact, error) {
	for _, contact := range s.contacts[familyId] {
		if contact.Uid == uid {
			return contact, nil
		}
	}
	return Contact{}, ErrContactNotFound
}

func (s *StubRepository) GetContacts(ctx context.Context, familyId int, includeArchived bool) ([]Contact, error) {
	contacts := make([]Contact, 0)
	for _, contact := range s.contacts[familyId] {
		if contact.IsArchived && !includeArchived {
			continue
		}
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].IsFavorite != contacts[j].IsFavorite {
			return contacts[i].IsFavorite
		}
		return contacts[i].FirstName < contacts[j].FirstName
	})
	return contacts, nil
}

func (s *StubRepository) SearchContacts(ctx context.Context, familyId int, term string) ([]Contact, error) {
	term = strings.ToLower(term)
	matches := make([]Contact, 0)
	for _, contact := range s.contacts[familyId] {
		if contact.IsArchived {
			continue
		}
		haystack := strings.ToLower(strings.Join([]string{
			contact.FirstName, contact.LastName, contact.DisplayName,
			contact.Nickname, contact.Company,
		}, " "))
		for _, phone := range contact.Phones {
			haystack += " " + phone.Number
		}
		for _, email := range contact.Emails {
			haystack += " " + strings.ToLower(email.Address)
		}
		if strings.Contains(haystack, term) {
			matches = append(matches, contact)
		}
	}
	return matches, nil
}

func (s *StubRepository) UpdateContact(ctx context.Context, familyId int, contact Contact) error {
	for i, existing := range s.contacts[familyId] {
		if existing.Uid == contact.Uid {
			contact.Id = existing.Id
			s.contacts[familyId][i] = contact
			return nil
		}
	}
	return ErrContactNotFound
}

func (s *StubRepository) SetFavorite(ctx context.Context, familyId int, uid string, favorite bool) error {
	for i, contact := range s.contacts[familyId] {
		if contact.Uid == uid {
			s.contacts[familyId][i].IsFavorite = favorite
			return nil
		}
	}
	return ErrContactNotFound
}

func (s *StubRepository) SetArchived(ctx context.Context, familyId int, uid string, archived bool) error {
	for i, contact := range s.contacts[familyId] {
		if contact.Uid == uid {
			s.contacts[familyId][i].IsArchived = archived
			return nil
		}
	}
	return ErrContactNotFound
}

func (s *StubRepository) DeleteContact(ctx context.Context, familyId int, uid string) error {
	for i, contact := range s.contacts[familyId] {
		if contact.Uid == uid {
			s.contacts[familyId] = append(s.contacts[familyId][:i], s.contacts[familyId][i+1:]...)
			return nil
		}
	}
	return ErrContactNotFound
}
