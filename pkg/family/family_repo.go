package family

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrFamilyNotFound = errors.New("family not found")

type Repo interface {
	CreateFamily(ctx context.Context, f Family) (int, error)
	GetFamily(ctx context.Context, id int) (Family, error)
	GetFamilyByUid(ctx context.Context, uid string) (Family, error)
	UpdateFamily(ctx context.Context, familyId int, f Family) (Family, error)
	DeleteFamily(ctx context.Context, id int) error
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewFamilyRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) CreateFamily(ctx context.Context, f Family) (int, error) {
	timezone := f.Settings.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	query := `INSERT INTO families (uid, name, slug, timezone) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, f.Uid, f.Name, f.Slug, timezone)
	if err != nil {
		log.Errorf("failed to create family: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read created family id: %w", err)
	}
	return int(id), nil
}

func (r *RepoImpl) GetFamily(ctx context.Context, id int) (Family, error) {
	query := `SELECT id, uid, name, slug, timezone FROM families WHERE id = ?`
	return r.scanFamily(r.db.QueryRowContext(ctx, query, id))
}

func (r *RepoImpl) GetFamilyByUid(ctx context.Context, uid string) (Family, error) {
	query := `SELECT id, uid, name, slug, timezone FROM families WHERE uid = ?`
	return r.scanFamily(r.db.QueryRowContext(ctx, query, uid))
}

func (r *RepoImpl) scanFamily(row *sql.Row) (Family, error) {
	var f Family
	err := row.Scan(&f.Id, &f.Uid, &f.Name, &f.Slug, &f.Settings.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return Family{}, ErrFamilyNotFound
	} else if err != nil {
		log.Errorf("failed to get family: %v", err)
		return Family{}, err
	}
	return f, nil
}

func (r *RepoImpl) UpdateFamily(ctx context.Context, familyId int, f Family) (Family, error) {
	query := `UPDATE families SET name = ?, slug = ?, timezone = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, f.Name, f.Slug, f.Settings.Timezone, familyId)
	if err != nil {
		log.Errorf("failed to update family: %v", err)
		return Family{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Family{}, err
	}
	if affected == 0 {
		return Family{}, ErrFamilyNotFound
	}
	f.Id = familyId
	return f, nil
}

func (r *RepoImpl) DeleteFamily(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM families WHERE id = ?`, id)
	if err != nil {
		log.Errorf("failed to delete family: %v", err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

func (r *RepoImpl) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM families WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("could not check slug availability: %w", err)
	}
	return count == 0, nil
}
