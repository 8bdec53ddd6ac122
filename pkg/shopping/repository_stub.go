package shopping

import (
	"context"
	"sort"
	"time"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	lists map[int][]List
	items map[int][]Item
}

func NewStubRepository() *StubRepository {
	return &StubRepository{lists: map[int][]List{}, items: map[int][]Item{}}
}

func (s *StubRepository) CreateList(ctx context.Context, familyId int, list List) error {
	list.Id = len(s.lists[familyId]) + 1
	s.lists[familyId] = append(s.lists[familyId], list)
	return nil
}

func (s *StubRepository) GetLists(ctx context.Context, familyId int) ([]ListSummary, error) {
	summaries := make([]ListSummary, 0)
	for _, list := range s.lists[familyId] {
		summary := ListSummary{List: list}
		for _, item := range s.items[familyId] {
			if item.ListUid != list.Uid {
				continue
			}
			summary.ItemCount++
			if item.Checked {
				summary.CheckedCount++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *StubRepository) GetList(ctx context.Context, familyId int, uid string) (List, error) {
	for _, list := range s.lists[familyId] {
		if list.Uid == uid {
			return list, nil
		}
	}
	return List{}, ErrListNotFound
}

func (s *StubRepository) GetDefaultList(ctx context.Context, familyId int) (List, error) {
	for _, list := range s.lists[familyId] {
		if list.IsDefault {
			return list, nil
		}
	}
	return List{}, ErrListNotFound
}

func (s *StubRepository) ClearDefaultList(ctx context.Context, familyId int) error {
	for i := range s.lists[familyId] {
		s.lists[familyId][i].IsDefault = false
	}
	return nil
}

func (s *StubRepository) DeleteList(ctx context.Context, familyId int, uid string) error {
	for i, list := range s.lists[familyId] {
		if list.Uid == uid {
			s.lists[familyId] = append(s.lists[familyId][:i], s.lists[familyId][i+1:]...)
			remaining := s.items[familyId][:0]
			for _, item := range s.items[familyId] {
				if item.ListUid != uid {
					remaining = append(remaining, item)
				}
			}
			s.items[familyId] = remaining
			return nil
		}
	}
	return ErrListNotFound
}

func (s *StubRepository) StoreItem(ctx context.Context, familyId int, item Item) error {
	item.Id = len(s.items[familyId]) + 1
	s.items[familyId] = append(s.items[familyId], item)
	return nil
}

func (s *StubRepository) GetItem(ctx context.Context, familyId int, uid string) (Item, error) {
	for _, item := range s.items[familyId] {
		if item.Uid == uid {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *StubRepository) GetItems(ctx context.Context, familyId int, listUid string, checkedCutoff time.Time) ([]Item, error) {
	items := make([]Item, 0)
	for _, item := range s.items[familyId] {
		if item.ListUid != listUid {
			continue
		}
		if item.Checked && !item.CheckedAt.IsZero() && !item.CheckedAt.After(checkedCutoff) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *StubRepository) FindUncheckedItem(ctx context.Context, familyId int, listUid, nameNormalized string) (Item, error) {
	for _, item := range s.items[familyId] {
		if item.ListUid == listUid && item.NameNormalized == nameNormalized && !item.Checked {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *StubRepository) FindCompletedItemSince(ctx context.Context, familyId int, listUid, nameNormalized string, since time.Time) (Item, error) {
	for _, item := range s.items[familyId] {
		if item.ListUid == listUid && item.NameNormalized == nameNormalized &&
			item.Checked && !item.CheckedAt.IsZero() && item.CheckedAt.After(since) {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *StubRepository) UpdateItem(ctx context.Context, familyId int, item Item) error {
	for i, existing := range s.items[familyId] {
		if existing.Uid == item.Uid {
			item.Id = existing.Id
			s.items[familyId][i] = item
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *StubRepository) DeleteItem(ctx context.Context, familyId int, uid string) error {
	for i, item := range s.items[familyId] {
		if item.Uid == uid {
			s.items[familyId] = append(s.items[familyId][:i], s.items[familyId][i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *StubRepository) CompleteAllItems(ctx context.Context, familyId int, listUid string, now time.Time) (int, error) {
	completed := 0
	for i, item := range s.items[familyId] {
		if item.ListUid != listUid || item.Checked {
			continue
		}
		s.items[familyId][i].Checked = true
		s.items[familyId][i].CheckedAt = now
		s.items[familyId][i].UpdatedAt = now
		completed++
	}
	return completed, nil
}

func (s *StubRepository) GetItemNames(ctx context.Context, familyId int) ([]string, error) {
	seen := map[string]bool{}
	names := make([]string, 0)
	for _, item := range s.items[familyId] {
		if seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		names = append(names, item.Name)
	}
	sort.Strings(names)
	return names, nil
}
