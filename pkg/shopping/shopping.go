package shopping

import "time"

// List is a named shopping list. Each family has at most one default
// list, used when a request does not name one.
type List struct {
	Id        int
	Uid       string
	Name      string
	IsDefault bool
	UpdatedAt time.Time
}

// ListSummary is a List with item counts, for overview screens.
type ListSummary struct {
	List
	ItemCount    int
	CheckedCount int
}

type Item struct {
	Id             int
	Uid            string
	ListUid        string
	Name           string
	NameNormalized string
	Quantity       float64
	Unit           string
	Category       string
	Checked        bool
	CheckedAt      time.Time // zero while unchecked
	AddedByUid     string
	UpdatedAt      time.Time
}
