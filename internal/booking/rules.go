package booking

import "time"

// Status enumerates the lifecycle states of a reservation. Only active
// reservations participate in conflict and availability checks.
type Status string

const (
	// StatusActive marks a reservation that currently blocks its desk and date.
	StatusActive Status = "active"
	// StatusCompleted marks a reservation whose date has passed.
	StatusCompleted Status = "completed"
	// StatusCancelled marks a reservation withdrawn by its owner.
	StatusCancelled Status = "cancelled"
)

// Default quota and horizon limits applied when the caller supplies none.
const (
	DefaultHorizonDays        = 60
	DefaultMaxDatesPerRequest = 7
	DefaultMaxActivePerUser   = 30
)

// Reservation is the value shape consumed by the pure rule functions.
type Reservation struct {
	ID      string
	DeskID  string
	UserID  string
	Day     time.Time
	Status  Status
	GroupID string
}

// ConflictType describes the kind of double booking detected for a candidate.
type ConflictType string

const (
	// ConflictTypeDesk indicates the desk already holds an active reservation on the day.
	ConflictTypeDesk ConflictType = "desk"
	// ConflictTypeUser indicates the user already holds an active reservation on the day.
	ConflictTypeUser ConflictType = "user"
)

// Conflict details an active reservation that collides with a candidate.
type Conflict struct {
	WithReservationID string
	Type              ConflictType
}

// DateOf truncates a timestamp to its calendar date in UTC. All whole-day
// bookkeeping operates on these normalized values.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysUntil returns the number of whole days from today until day. The result
// is negative for past dates and zero for today.
func DaysUntil(today, day time.Time) int {
	return int(DateOf(day).Sub(DateOf(today)).Hours() / 24)
}

// InPast reports whether day lies strictly before today. Today itself is bookable.
func InPast(day, today time.Time) bool {
	return DateOf(day).Before(DateOf(today))
}

// BeyondHorizon reports whether day lies more than horizonDays after today.
func BeyondHorizon(day, today time.Time, horizonDays int) bool {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return DaysUntil(today, day) > horizonDays
}

// DedupeDates normalizes the requested dates to UTC midnights, drops
// duplicates, and returns them in ascending order. A request naming the same
// date twice yields a single entry rather than an error.
func DedupeDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := DateOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sortDates(out)
	return out
}

func sortDates(dates []time.Time) {
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
}

// DetectConflicts identifies double bookings for the candidate against existing
// reservations. Only active rows count; cancelled and completed reservations
// never block a desk or a user. When excludeID is non-empty the matching
// reservation is skipped, which lets updates ignore their own row.
func DetectConflicts(existing []Reservation, candidate Reservation, excludeID string) []Conflict {
	var conflicts []Conflict
	for _, r := range existing {
		if r.Status != StatusActive {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if !SameDay(r.Day, candidate.Day) {
			continue
		}
		if r.DeskID == candidate.DeskID {
			conflicts = append(conflicts, Conflict{WithReservationID: r.ID, Type: ConflictTypeDesk})
		}
		if r.UserID == candidate.UserID {
			conflicts = append(conflicts, Conflict{WithReservationID: r.ID, Type: ConflictTypeUser})
		}
	}
	return conflicts
}

// EffectiveStatus returns the status a reservation should display as. An active
// reservation whose date has passed counts as completed even before the expiry
// sweeper has run.
func EffectiveStatus(r Reservation, today time.Time) Status {
	if r.Status == StatusActive && InPast(r.Day, today) {
		return StatusCompleted
	}
	return r.Status
}

// ExceedsRequestSize reports whether a deduplicated booking request asks for
// more dates than a single request may carry. The boundary is inclusive.
func ExceedsRequestSize(dateCount, max int) bool {
	if max <= 0 {
		max = DefaultMaxDatesPerRequest
	}
	return dateCount > max
}

// ExceedsActiveLimit reports whether the user's active reservation count plus
// the additional requested count would exceed the per-user ceiling.
func ExceedsActiveLimit(activeCount, additional, max int) bool {
	if max <= 0 {
		max = DefaultMaxActivePerUser
	}
	return activeCount+additional > max
}
