package family

// Family is a household tenant. Every calendar event, shopping list and
// contact belongs to exactly one family.
type Family struct {
	Id       int
	Uid      string
	Name     string
	Slug     string
	Settings Settings
}

type Settings struct {
	// Timezone is the IANA name of the family's display timezone, e.g.
	// "Europe/London". Recurring events expand in this timezone.
	Timezone string
}
