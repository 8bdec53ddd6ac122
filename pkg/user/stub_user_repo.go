package user

import (
	"context"
)

type StubUserRepository struct {
	nextId   int
	families map[int]int // user id -> family id
	data     map[int]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{nextId: 1, families: map[int]int{}, data: map[int]User{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, familyId int, u User) (int, error) {
	s.nextId++
	u.Id = s.nextId
	s.data[s.nextId] = u
	s.families[s.nextId] = familyId
	return s.nextId, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, familyId int, id int) (User, error) {
	u, ok := s.data[id]
	if !ok || s.families[id] != familyId {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *StubUserRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, u := range s.data {
		if u.Uid == uid {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepository) GetAllUsers(ctx context.Context, familyId int) ([]User, error) {
	users := make([]User, 0, len(s.data))
	for id, u := range s.data {
		if s.families[id] == familyId {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *StubUserRepository) UpdateUser(ctx context.Context, familyId int, u User) (User, error) {
	if _, ok := s.data[u.Id]; !ok || s.families[u.Id] != familyId {
		return User{}, ErrUserNotFound
	}
	s.data[u.Id] = u
	return u, nil
}

func (s *StubUserRepository) DeleteUser(ctx context.Context, familyId int, id int) error {
	if _, ok := s.data[id]; !ok || s.families[id] != familyId {
		return ErrUserNotFound
	}
	delete(s.data, id)
	delete(s.families, id)
	return nil
}
