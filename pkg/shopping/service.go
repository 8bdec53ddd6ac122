package shopping

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/utils"
	"github.com/famhub/famhub/pkg/family"
	"github.com/famhub/famhub/pkg/user"
)

var ErrEmptyItemName = errors.New("item name must not be empty")

// completedGraceWindow is how long a checked-off item still blocks a new
// item with the same name, and how long completed items stay visible.
const completedGraceWindow = 24 * time.Hour

const defaultListName = "Grocery List"

// AddItemResult reports what AddItem did. Exactly one of Merged,
// NeedsConfirmation or a plain insert applies.
type AddItemResult struct {
	Item Item
	// Merged is set when an open item with the same name already existed
	// and the quantities were combined.
	Merged           bool
	PreviousQuantity float64
	// NeedsConfirmation is set when the same item was checked off within
	// the grace window and the caller did not force the add. Item then
	// holds the completed duplicate and nothing was written.
	NeedsConfirmation bool
}

type Service interface {
	GetLists(ctx context.Context) ([]ListSummary, error)
	CreateList(ctx context.Context, name string, isDefault bool) (List, error)
	DeleteList(ctx context.Context, uid string) error
	GetOrCreateDefaultList(ctx context.Context) (List, error)

	GetItems(ctx context.Context, listUid string) ([]Item, error)
	AddItem(ctx context.Context, listUid string, item Item, forceAdd bool) (AddItemResult, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	ToggleItem(ctx context.Context, uid string) (Item, error)
	DeleteItem(ctx context.Context, uid string) error
	// CompleteShop checks off every open item on the list and returns how
	// many were completed.
	CompleteShop(ctx context.Context, listUid string) (int, error)
	GetItemNames(ctx context.Context) ([]string, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewShoppingService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) GetLists(ctx context.Context) ([]ListSummary, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetLists(ctx, familyId)
}

func (s *ServiceImpl) CreateList(ctx context.Context, name string, isDefault bool) (List, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return List{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = defaultListName
	}
	if isDefault {
		if err := s.repo.ClearDefaultList(ctx, familyId); err != nil {
			return List{}, err
		}
	}
	list := List{
		Uid:       uuid.New().String(),
		Name:      name,
		IsDefault: isDefault,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateList(ctx, familyId, list); err != nil {
		return List{}, err
	}
	return list, nil
}

func (s *ServiceImpl) DeleteList(ctx context.Context, uid string) error {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteList(ctx, familyId, uid)
}

func (s *ServiceImpl) GetOrCreateDefaultList(ctx context.Context) (List, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return List{}, err
	}
	list, err := s.repo.GetDefaultList(ctx, familyId)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, ErrListNotFound) {
		return List{}, err
	}
	return s.CreateList(ctx, defaultListName, true)
}

// GetItems returns the list's open items plus items checked off within
// the grace window, so a family member can still un-check a mistake.
func (s *ServiceImpl) GetItems(ctx context.Context, listUid string) ([]Item, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := s.clock.Now().Add(-completedGraceWindow)
	return s.repo.GetItems(ctx, familyId, listUid, cutoff)
}

func (s *ServiceImpl) AddItem(ctx context.Context, listUid string, item Item, forceAdd bool) (AddItemResult, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return AddItemResult{}, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return AddItemResult{}, ErrEmptyItemName
	}

	now := s.clock.Now()
	normalized := NormalizeItemName(item.Name)

	// An open item with the same name always merges.
	existing, err := s.repo.FindUncheckedItem(ctx, familyId, listUid, normalized)
	if err == nil {
		result := AddItemResult{Merged: true, PreviousQuantity: existing.Quantity}
		existing.Quantity += quantityOrOne(item.Quantity)
		existing.UpdatedAt = now
		if err := s.repo.UpdateItem(ctx, familyId, existing); err != nil {
			return AddItemResult{}, err
		}
		result.Item = existing
		return result, nil
	}
	if !errors.Is(err, ErrItemNotFound) {
		return AddItemResult{}, err
	}

	// A recently checked-off duplicate needs an explicit confirmation
	// before it comes back on the list.
	completed, err := s.repo.FindCompletedItemSince(ctx, familyId, listUid, normalized, now.Add(-completedGraceWindow))
	if err == nil {
		if !forceAdd {
			return AddItemResult{Item: completed, NeedsConfirmation: true}, nil
		}
		if err := s.repo.DeleteItem(ctx, familyId, completed.Uid); err != nil {
			return AddItemResult{}, err
		}
	} else if !errors.Is(err, ErrItemNotFound) {
		return AddItemResult{}, err
	}

	item.Uid = uuid.New().String()
	item.ListUid = listUid
	item.NameNormalized = normalized
	item.Quantity = quantityOrOne(item.Quantity)
	if item.Category == "" {
		item.Category = CategorizeItem(item.Name)
	}
	item.Checked = false
	item.CheckedAt = time.Time{}
	item.UpdatedAt = now
	if u, err := user.CurrentUser(ctx); err == nil {
		item.AddedByUid = u.Uid
	}

	if err := s.repo.StoreItem(ctx, familyId, item); err != nil {
		return AddItemResult{}, err
	}
	log.Debugf("added shopping item %q to list %s", item.Name, listUid)
	return AddItemResult{Item: item}, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, item Item) (Item, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Item{}, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return Item{}, ErrEmptyItemName
	}
	stored, err := s.repo.GetItem(ctx, familyId, item.Uid)
	if err != nil {
		return Item{}, err
	}
	stored.Name = item.Name
	stored.NameNormalized = NormalizeItemName(item.Name)
	stored.Quantity = quantityOrOne(item.Quantity)
	stored.Unit = item.Unit
	if item.Category != "" {
		stored.Category = item.Category
	}
	stored.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateItem(ctx, familyId, stored); err != nil {
		return Item{}, err
	}
	return stored, nil
}

func (s *ServiceImpl) ToggleItem(ctx context.Context, uid string) (Item, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return Item{}, err
	}
	item, err := s.repo.GetItem(ctx, familyId, uid)
	if err != nil {
		return Item{}, err
	}
	now := s.clock.Now()
	item.Checked = !item.Checked
	if item.Checked {
		item.CheckedAt = now
	} else {
		item.CheckedAt = time.Time{}
	}
	item.UpdatedAt = now
	if err := s.repo.UpdateItem(ctx, familyId, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, uid string) error {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, familyId, uid)
}

func (s *ServiceImpl) CompleteShop(ctx context.Context, listUid string) (int, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return 0, err
	}
	completed, err := s.repo.CompleteAllItems(ctx, familyId, listUid, s.clock.Now())
	if err != nil {
		return 0, err
	}
	log.Infof("completed shop on list %s: %d items checked", listUid, completed)
	return completed, nil
}

func (s *ServiceImpl) GetItemNames(ctx context.Context) ([]string, error) {
	familyId, err := family.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetItemNames(ctx, familyId)
}

func quantityOrOne(quantity float64) float64 {
	if quantity <= 0 {
		return 1
	}
	return quantity
}
