package user

import (
	"context"
	"fmt"

	"github.com/famhub/famhub/pkg/family"
	"github.com/google/uuid"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id int) error
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (s *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	return CurrentUser(ctx)
}

func (s *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, u User) (User, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current family: %w", err)
	}
	if u.Role == "" {
		u.Role = RoleParent
	}
	if !u.Role.Valid() {
		return User{}, fmt.Errorf("invalid role: %s", u.Role)
	}
	u.Uid = uuid.New().String()
	userId, err := s.repo.CreateUser(ctx, familyId, u)
	if err != nil {
		return User{}, err
	}
	u.Id = userId
	return u, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current family: %w", err)
	}
	return s.repo.GetUser(ctx, familyId, id)
}

func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current family: %w", err)
	}
	return s.repo.GetAllUsers(ctx, familyId)
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, u User) (User, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current family: %w", err)
	}
	if u.Role != "" && !u.Role.Valid() {
		return User{}, fmt.Errorf("invalid role: %s", u.Role)
	}
	return s.repo.UpdateUser(ctx, familyId, u)
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current family: %w", err)
	}
	return s.repo.DeleteUser(ctx, familyId, id)
}
