package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrListNotFound = errors.New("shopping list not found")
	ErrItemNotFound = errors.New("shopping item not found")
)

type Repository interface {
	CreateList(ctx context.Context, familyId int, list List) error
	GetLists(ctx context.Context, familyId int) ([]ListSummary, error)
	GetList(ctx context.Context, familyId int, uid string) (List, error)
	GetDefaultList(ctx context.Context, familyId int) (List, error)
	ClearDefaultList(ctx context.Context, familyId int) error
	DeleteList(ctx context.Context, familyId int, uid string) error

	StoreItem(ctx context.Context, familyId int, item Item) error
	GetItem(ctx context.Context, familyId int, uid string) (Item, error)
	// GetItems returns a list's items ordered by category and name. Checked
	// items whose checkedAt is before checkedCutoff are excluded.
	GetItems(ctx context.Context, familyId int, listUid string, checkedCutoff time.Time) ([]Item, error)
	// FindUncheckedItem looks up an open item by its normalized name.
	FindUncheckedItem(ctx context.Context, familyId int, listUid, nameNormalized string) (Item, error)
	// FindCompletedItemSince looks up a checked item by its normalized name
	// whose checkedAt falls after the given instant.
	FindCompletedItemSince(ctx context.Context, familyId int, listUid, nameNormalized string, since time.Time) (Item, error)
	UpdateItem(ctx context.Context, familyId int, item Item) error
	DeleteItem(ctx context.Context, familyId int, uid string) error
	// CompleteAllItems checks every open item on the list and returns how
	// many it affected.
	CompleteAllItems(ctx context.Context, familyId int, listUid string, now time.Time) (int, error)
	GetItemNames(ctx context.Context, familyId int) ([]string, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateList(ctx context.Context, familyId int, list List) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (uid, family_id, name, is_default, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
		list.Uid, familyId, list.Name, list.IsDefault, list.UpdatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not create shopping list: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetLists(ctx context.Context, familyId int) ([]ListSummary, error) {
	query := `SELECT l.uid, l.name, l.is_default, l.updated_at,
				COUNT(i.id),
				COALESCE(SUM(CASE WHEN i.checked THEN 1 ELSE 0 END), 0)
			FROM shopping_lists l
			LEFT JOIN shopping_items i ON i.list_uid = l.uid AND i.family_id = l.family_id
			WHERE l.family_id = ?
			GROUP BY l.id
			ORDER BY l.is_default DESC, l.name`

	rows, err := r.db.QueryContext(ctx, query, familyId)
	if err != nil {
		err := fmt.Errorf("could not query shopping lists: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	summaries := make([]ListSummary, 0)
	for rows.Next() {
		var summary ListSummary
		var updatedMillis int64
		err := rows.Scan(&summary.Uid, &summary.Name, &summary.IsDefault,
			&updatedMillis, &summary.ItemCount, &summary.CheckedCount)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		summary.UpdatedAt = time.UnixMilli(updatedMillis).UTC()
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (r *RepositoryImpl) GetList(ctx context.Context, familyId int, uid string) (List, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, uid, name, is_default, updated_at
			FROM shopping_lists WHERE family_id = ? AND uid = ?`, familyId, uid)
	return scanList(row)
}

func (r *RepositoryImpl) GetDefaultList(ctx context.Context, familyId int) (List, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, uid, name, is_default, updated_at
			FROM shopping_lists WHERE family_id = ? AND is_default = true`, familyId)
	return scanList(row)
}

func (r *RepositoryImpl) ClearDefaultList(ctx context.Context, familyId int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET is_default = false WHERE family_id = ?`, familyId)
	if err != nil {
		return fmt.Errorf("could not clear default list: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) DeleteList(ctx context.Context, familyId int, uid string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE family_id = ? AND uid = ?`, familyId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete shopping list: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrListNotFound
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE family_id = ? AND list_uid = ?`, familyId, uid)
	return err
}

const itemColumns = `uid, list_uid, name, name_normalized, quantity, unit, category, checked, checked_at, added_by_uid, updated_at`

func (r *RepositoryImpl) StoreItem(ctx context.Context, familyId int, item Item) error {
	query := `INSERT INTO shopping_items (
				uid, family_id, list_uid, name, name_normalized, quantity,
				unit, category, checked, checked_at, added_by_uid, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		item.Uid, familyId, item.ListUid, item.Name, item.NameNormalized,
		item.Quantity, item.Unit, item.Category, item.Checked,
		checkedAtMillis(item.CheckedAt), item.AddedByUid, item.UpdatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store shopping item: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetItem(ctx context.Context, familyId int, uid string) (Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM shopping_items WHERE family_id = ? AND uid = ?`,
		familyId, uid)
	return scanItem(row)
}

func (r *RepositoryImpl) GetItems(ctx context.Context, familyId int, listUid string, checkedCutoff time.Time) ([]Item, error) {
	query := `SELECT ` + itemColumns + `
			FROM shopping_items
			WHERE family_id = ? AND list_uid = ?
			  AND (checked = false OR checked_at IS NULL OR checked_at > ?)
			ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query, familyId, listUid, checkedCutoff.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not query shopping items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) FindUncheckedItem(ctx context.Context, familyId int, listUid, nameNormalized string) (Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
			FROM shopping_items
			WHERE family_id = ? AND list_uid = ? AND name_normalized = ? AND checked = false`,
		familyId, listUid, nameNormalized)
	return scanItem(row)
}

func (r *RepositoryImpl) FindCompletedItemSince(ctx context.Context, familyId int, listUid, nameNormalized string, since time.Time) (Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
			FROM shopping_items
			WHERE family_id = ? AND list_uid = ? AND name_normalized = ?
			  AND checked = true AND checked_at IS NOT NULL AND checked_at > ?`,
		familyId, listUid, nameNormalized, since.UnixMilli())
	return scanItem(row)
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, familyId int, item Item) error {
	query := `UPDATE shopping_items SET
				name = ?, name_normalized = ?, quantity = ?, unit = ?,
				category = ?, checked = ?, checked_at = ?, updated_at = ?
			WHERE family_id = ? AND uid = ?`

	result, err := r.db.ExecContext(ctx, query,
		item.Name, item.NameNormalized, item.Quantity, item.Unit,
		item.Category, item.Checked, checkedAtMillis(item.CheckedAt),
		item.UpdatedAt.UnixMilli(), familyId, item.Uid)
	if err != nil {
		err := fmt.Errorf("could not update shopping item: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, familyId int, uid string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE family_id = ? AND uid = ?`, familyId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete shopping item: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *RepositoryImpl) CompleteAllItems(ctx context.Context, familyId int, listUid string, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shopping_items SET checked = true, checked_at = ?, updated_at = ?
			WHERE family_id = ? AND list_uid = ? AND checked = false`,
		now.UnixMilli(), now.UnixMilli(), familyId, listUid)
	if err != nil {
		err := fmt.Errorf("could not complete shopping items: %w", err)
		log.Error(err)
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *RepositoryImpl) GetItemNames(ctx context.Context, familyId int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT name FROM shopping_items WHERE family_id = ? ORDER BY name`,
		familyId)
	if err != nil {
		return nil, fmt.Errorf("could not query item names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row *sql.Row) (List, error) {
	var list List
	var updatedMillis int64
	err := row.Scan(&list.Id, &list.Uid, &list.Name, &list.IsDefault, &updatedMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrListNotFound
	} else if err != nil {
		return List{}, fmt.Errorf("could not scan shopping list: %w", err)
	}
	list.UpdatedAt = time.UnixMilli(updatedMillis).UTC()
	return list, nil
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var checkedMillis sql.NullInt64
	var updatedMillis int64
	err := row.Scan(
		&item.Uid, &item.ListUid, &item.Name, &item.NameNormalized,
		&item.Quantity, &item.Unit, &item.Category, &item.Checked,
		&checkedMillis, &item.AddedByUid, &updatedMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	} else if err != nil {
		return Item{}, err
	}
	if checkedMillis.Valid {
		item.CheckedAt = time.UnixMilli(checkedMillis.Int64).UTC()
	}
	item.UpdatedAt = time.UnixMilli(updatedMillis).UTC()
	return item, nil
}

func checkedAtMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}
