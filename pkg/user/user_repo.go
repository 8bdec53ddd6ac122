package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, familyId int, u User) (int, error)
	GetUser(ctx context.Context, familyId int, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAllUsers(ctx context.Context, familyId int) ([]User, error)
	UpdateUser(ctx context.Context, familyId int, u User) (User, error)
	DeleteUser(ctx context.Context, familyId int, id int) error
}

type UserRepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `id, uid, name, email, role, avatar_url, date_of_birth, color`

func (r *UserRepoImpl) CreateUser(ctx context.Context, familyId int, u User) (int, error) {
	query := `INSERT INTO users (uid, family_id, name, email, role, avatar_url, date_of_birth, color)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		u.Uid,
		familyId,
		u.Name,
		u.Email,
		u.Role,
		u.AvatarUrl,
		dateOfBirthMillis(u.DateOfBirth),
		u.Color,
	)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not read created user id: %w", err)
	}
	return int(id), nil
}

func (r *UserRepoImpl) GetUser(ctx context.Context, familyId int, id int) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND family_id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id, familyId))
}

func (r *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, uid))
}

func (r *UserRepoImpl) GetAllUsers(ctx context.Context, familyId int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE family_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, familyId)
	if err != nil {
		err := fmt.Errorf("could not query users: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0, 8)
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepoImpl) UpdateUser(ctx context.Context, familyId int, u User) (User, error) {
	query := `UPDATE users SET name = ?, email = ?, role = ?, avatar_url = ?, date_of_birth = ?, color = ?
				WHERE id = ? AND family_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		u.Name,
		u.Email,
		u.Role,
		u.AvatarUrl,
		dateOfBirthMillis(u.DateOfBirth),
		u.Color,
		u.Id,
		familyId,
	)
	if err != nil {
		log.Errorf("failed to update user: %v", err)
		return User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepoImpl) DeleteUser(ctx context.Context, familyId int, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ? AND family_id = ?`, id, familyId)
	if err != nil {
		log.Errorf("failed to delete user: %v", err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func scanUserRow(row rowScanner) (User, error) {
	var u User
	var dob sql.NullInt64
	err := row.Scan(&u.Id, &u.Uid, &u.Name, &u.Email, &u.Role, &u.AvatarUrl, &dob, &u.Color)
	if err != nil {
		return User{}, err
	}
	if dob.Valid {
		u.DateOfBirth = time.UnixMilli(dob.Int64).UTC()
	}
	return u, nil
}

func dateOfBirthMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}
