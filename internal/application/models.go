package application

import (
	"time"

	"github.com/example/deskbooker/internal/booking"
)

// Building represents an office building owning desks and a weekly calendar.
type Building struct {
	ID          string
	Name        string
	FloorWidth  int
	FloorHeight int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BuildingInput captures caller provided building fields.
type BuildingInput struct {
	Name        string
	FloorWidth  int
	FloorHeight int
}

// OperatingHoursInput captures one weekday entry of a building calendar.
// Times are minutes since midnight; ClosesAt smaller than OpensAt encodes a
// window that crosses midnight.
type OperatingHoursInput struct {
	Weekday  time.Weekday
	OpensAt  int
	ClosesAt int
	Closed   bool
}

// OperatingHours is a persisted weekday entry of a building calendar.
type OperatingHours struct {
	BuildingID string
	Weekday    time.Weekday
	OpensAt    int
	ClosesAt   int
	Closed     bool
}

// DeskKind distinguishes regular desks from conference rooms. The distinction
// is cosmetic; no booking rule depends on it.
type DeskKind string

const (
	// DeskKindDesk is a regular single-person desk.
	DeskKindDesk DeskKind = "desk"
	// DeskKindConferenceRoom is a bookable conference room.
	DeskKindConferenceRoom DeskKind = "conference_room"
)

// Desk represents a bookable desk placed on a building floor plan.
type Desk struct {
	ID                string
	BuildingID        string
	Description       *string
	PosX              int
	PosY              int
	Kind              DeskKind
	InMaintenance     bool
	MaintenanceReason *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeskInput captures caller provided desk fields.
type DeskInput struct {
	BuildingID  string
	Description *string
	PosX        int
	PosY        int
	Kind        DeskKind
}

// MaintenanceInput toggles a desk's maintenance flag.
type MaintenanceInput struct {
	InMaintenance bool
	Reason        *string
}

// User represents an account that can hold reservations.
type User struct {
	ID        string
	Name      string
	Surname   string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInput captures caller provided user attributes. ID is optional; one is
// generated when absent.
type UserInput struct {
	ID       string
	Name     string
	Surname  string
	Email    string
	Password string
	IsAdmin  bool
}

// Reservation represents one desk held by one user for one calendar date.
type Reservation struct {
	ID          string
	UserID      string
	DeskID      string
	Day         time.Time
	Status      booking.Status
	GroupID     string
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// CreateBookingParams wraps a multi-date booking request.
type CreateBookingParams struct {
	UserID string
	DeskID string
	Dates  []time.Time
}

// BookingConfirmation reports a successfully created reservation group.
type BookingConfirmation struct {
	GroupID      string
	Reservations []Reservation
}

// CancelDayParams identifies a single-day cancellation.
type CancelDayParams struct {
	DeskID string
	Day    time.Time
	UserID string
}

// CancelGroupParams identifies a whole-group cancellation by group ID.
type CancelGroupParams struct {
	GroupID string
	UserID  string
}

// CancelGroupByDeskParams identifies a whole-group cancellation through any
// one (desk, date) member of the group.
type CancelGroupByDeskParams struct {
	DeskID string
	Day    time.Time
	UserID string
}

// ReservationView is one history entry with its effective status applied.
type ReservationView struct {
	ID          string
	DeskID      string
	Day         time.Time
	Status      booking.Status
	GroupID     string
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// ReservationGroupView is one upcoming entry folding a reservation group.
type ReservationGroupView struct {
	GroupID        string
	DeskID         string
	BuildingName   string
	Dates          []time.Time
	Count          int
	CreatedAt      time.Time
	ContainsToday  bool
	DaysUntilStart int
}
