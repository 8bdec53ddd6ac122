package family

import (
	"context"
)

type StubFamilyRepository struct {
	nextId int
	data   map[int]Family
}

func NewStubFamilyRepository() *StubFamilyRepository {
	return &StubFamilyRepository{nextId: 1, data: map[int]Family{}}
}

func (s *StubFamilyRepository) CreateFamily(ctx context.Context, f Family) (int, error) {
	s.nextId++
	f.Id = s.nextId
	s.data[s.nextId] = f
	return s.nextId, nil
}

func (s *StubFamilyRepository) GetFamily(ctx context.Context, id int) (Family, error) {
	f, ok := s.data[id]
	if !ok {
		return Family{}, ErrFamilyNotFound
	}
	return f, nil
}

func (s *StubFamilyRepository) GetFamilyByUid(ctx context.Context, uid string) (Family, error) {
	for _, f := range s.data {
		if f.Uid == uid {
			return f, nil
		}
	}
	return Family{}, ErrFamilyNotFound
}

func (s *StubFamilyRepository) UpdateFamily(ctx context.Context, familyId int, f Family) (Family, error) {
	if _, ok := s.data[familyId]; !ok {
		return Family{}, ErrFamilyNotFound
	}
	f.Id = familyId
	s.data[familyId] = f
	return f, nil
}

func (s *StubFamilyRepository) DeleteFamily(ctx context.Context, id int) error {
	if _, ok := s.data[id]; !ok {
		return ErrFamilyNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *StubFamilyRepository) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	for _, f := range s.data {
		if f.Slug == slug {
			return false, nil
		}
	}
	return true, nil
}
