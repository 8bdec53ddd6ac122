package contacts

import "time"

type PhoneType string

const (
	PhoneMobile PhoneType = "mobile"
	PhoneHome   PhoneType = "home"
	PhoneWork   PhoneType = "work"
	PhoneOther  PhoneType = "other"
)

func (t PhoneType) Valid() bool {
	switch t {
	case PhoneMobile, PhoneHome, PhoneWork, PhoneOther:
		return true
	}
	return false
}

type EmailType string

const (
	EmailPersonal EmailType = "personal"
	EmailWork     EmailType = "work"
	EmailOther    EmailType = "other"
)

func (t EmailType) Valid() bool {
	switch t {
	case EmailPersonal, EmailWork, EmailOther:
		return true
	}
	return false
}

type Phone struct {
	Type      PhoneType
	Number    string
	IsPrimary bool
}

type Email struct {
	Type      EmailType
	Address   string
	IsPrimary bool
}

// Contact is an address book entry shared by the whole family.
type Contact struct {
	Id          int
	Uid         string
	FirstName   string
	LastName    string
	DisplayName string
	Nickname    string
	Birthday    time.Time // zero when unknown
	Company     string
	JobTitle    string
	Address     string
	Notes       string
	IsFavorite  bool
	// Archived contacts stay stored but are hidden from listings,
	// search and birthday reminders.
	IsArchived bool
	Phones     []Phone
	Emails     []Email
}

// Name returns the contact's display name, derived from the name parts
// when no explicit one is set.
func (c Contact) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if c.LastName != "" {
		return c.FirstName + " " + c.LastName
	}
	return c.FirstName
}
