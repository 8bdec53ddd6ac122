package family

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	GetCurrentFamily(ctx context.Context) (Family, error)
	CreateFamily(ctx context.Context, f Family) (Family, error)
	GetFamilyByUid(ctx context.Context, uid string) (Family, error)
	UpdateFamily(ctx context.Context, f Family) (Family, error)
	DeleteFamily(ctx context.Context) error
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
	CurrentLocation(ctx context.Context) (*time.Location, error)
}

type ServiceImpl struct {
	repo Repo
	// defaultTimezone applies to families that have not picked one.
	defaultTimezone string
}

func NewFamilyService(repo Repo, defaultTimezone string) *ServiceImpl {
	return &ServiceImpl{repo: repo, defaultTimezone: defaultTimezone}
}

func (s *ServiceImpl) GetCurrentFamily(ctx context.Context) (Family, error) {
	familyId, err := CurrentId(ctx)
	if err != nil {
		return Family{}, fmt.Errorf("failed to get current family: %w", err)
	}
	return s.repo.GetFamily(ctx, familyId)
}

func (s *ServiceImpl) CreateFamily(ctx context.Context, f Family) (Family, error) {
	if f.Settings.Timezone != "" {
		if _, err := time.LoadLocation(f.Settings.Timezone); err != nil {
			return Family{}, fmt.Errorf("invalid timezone %q: %w", f.Settings.Timezone, err)
		}
	}
	f.Uid = uuid.New().String()
	familyId, err := s.repo.CreateFamily(ctx, f)
	if err != nil {
		return Family{}, err
	}
	f.Id = familyId
	return f, nil
}

func (s *ServiceImpl) GetFamilyByUid(ctx context.Context, uid string) (Family, error) {
	return s.repo.GetFamilyByUid(ctx, uid)
}

func (s *ServiceImpl) UpdateFamily(ctx context.Context, f Family) (Family, error) {
	familyId, err := CurrentId(ctx)
	if err != nil {
		return Family{}, fmt.Errorf("failed to get current family: %w", err)
	}
	if f.Settings.Timezone != "" {
		if _, err := time.LoadLocation(f.Settings.Timezone); err != nil {
			return Family{}, fmt.Errorf("invalid timezone %q: %w", f.Settings.Timezone, err)
		}
	}
	return s.repo.UpdateFamily(ctx, familyId, f)
}

func (s *ServiceImpl) DeleteFamily(ctx context.Context) error {
	familyId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current family: %w", err)
	}
	return s.repo.DeleteFamily(ctx, familyId)
}

func (s *ServiceImpl) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	return s.repo.IsSlugAvailable(ctx, slug)
}

// CurrentLocation resolves the current family's display timezone, falling
// back to the configured default and finally UTC when unset or unknown.
func (s *ServiceImpl) CurrentLocation(ctx context.Context) (*time.Location, error) {
	f, err := CurrentFamily(ctx)
	if err != nil {
		return nil, err
	}
	name := f.Settings.Timezone
	if name == "" {
		name = s.defaultTimezone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, nil
	}
	return loc, nil
}
