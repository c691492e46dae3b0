package persistence

import "time"

// Building represents an office building with its own floor plan and calendar.
type Building struct {
	ID          string
	Name        string
	FloorWidth  int
	FloorHeight int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OperatingHours is a building's opening window for one weekday. At most one
// row exists per (building, weekday). Times are minutes since midnight; a
// closing time smaller than the opening time encodes a window crossing midnight.
type OperatingHours struct {
	BuildingID string
	Weekday    time.Weekday
	OpensAt    int
	ClosesAt   int
	Closed     bool
}

// Desk represents a bookable desk placed on a building floor plan.
type Desk struct {
	ID                string
	BuildingID        string
	Description       *string
	PosX              int
	PosY              int
	Kind              string
	InMaintenance     bool
	MaintenanceReason *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User represents an account that can hold reservations.
type User struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation represents one desk held by one user for one calendar date.
// Day is normalized to UTC midnight. GroupID is shared by every reservation
// created in the same multi-date request; legacy rows may carry none.
type Reservation struct {
	ID          string
	UserID      string
	DeskID      string
	Day         time.Time
	Status      string
	GroupID     *string
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// ReservationTimeSpan is a legacy sub-day interval attached to a reservation,
// encoded as minutes since midnight with its own status.
type ReservationTimeSpan struct {
	ID            string
	ReservationID string
	StartMinute   int
	EndMinute     int
	Status        string
}
