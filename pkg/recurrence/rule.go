package recurrence

import "time"

// Frequency is the base unit a rule steps by.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Monthly  Frequency = "monthly"
	Annually Frequency = "annually"
)

// Rule is the normalized, in-memory form of a recurrence specification.
// It is never persisted; events store the raw specification string and
// a Rule is decoded on demand.
type Rule struct {
	Frequency Frequency
	// Interval is the step count between occurrences of the base unit,
	// always >= 1 after a successful parse.
	Interval int
	// Weekdays constrains weekly rules to specific days. Empty means the
	// rule repeats on the master event's own weekday. Only set when
	// Frequency is Weekly.
	Weekdays []time.Weekday
	// Until is the inclusive end bound. Zero means no date bound.
	Until time.Time
	// Count limits the number of generated occurrences (the master's own
	// occurrence does not count). Zero means no count bound.
	Count int
}

// Master is the caller-supplied projection of a stored event that a rule
// expands from. Start must carry the event's display timezone in its
// Location so that stepping preserves wall-clock time across DST changes.
type Master struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	// End is the zero time when the master has no end; occurrences then
	// carry a zero End as well.
	End    time.Time
	AllDay bool
	UserID string
	Color  string
	// Spec is the raw recurrence specification string. Empty means the
	// event is not recurring.
	Spec string
}

// Occurrence is a derived, read-only projection of a master event onto one
// concrete date. Its ID is a pure function of the master's ID and the
// occurrence date ("<masterID>:2006-01-02"), so regeneration over
// overlapping windows yields stable identifiers. This is part of the
// generator's contract, not an implementation detail.
type Occurrence struct {
	ID          string
	MasterID    string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	UserID      string
	Color       string
	// Generated is always true: the master itself is never re-emitted.
	Generated bool
}

// Horizon bounds the work a single expansion may do. It is a hard safety
// ceiling against "never ending" rules, not an error condition.
type Horizon struct {
	MaxInstances int
}

// DefaultMaxInstances is used when Horizon.MaxInstances is not positive.
const DefaultMaxInstances = 365
