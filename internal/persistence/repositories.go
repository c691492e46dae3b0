package persistence

import (
	"context"
	"time"
)

// BuildingRepository exposes CRUD operations for buildings and their
// per-weekday operating hours.
type BuildingRepository interface {
	CreateBuilding(ctx context.Context, building Building) error
	UpdateBuilding(ctx context.Context, building Building) error
	GetBuilding(ctx context.Context, id string) (Building, error)
	ListBuildings(ctx context.Context) ([]Building, error)
	// DeleteBuilding removes the building together with its desks and,
	// transitively, their reservations.
	DeleteBuilding(ctx context.Context, id string) error
	// ReplaceOperatingHours swaps the building's weekly calendar in one
	// transaction, preserving the one-row-per-weekday invariant.
	ReplaceOperatingHours(ctx context.Context, buildingID string, hours []OperatingHours) error
	ListOperatingHours(ctx context.Context, buildingID string) ([]OperatingHours, error)
}

// DeskRepository exposes CRUD operations for desks.
type DeskRepository interface {
	CreateDesk(ctx context.Context, desk Desk) error
	UpdateDesk(ctx context.Context, desk Desk) error
	GetDesk(ctx context.Context, id string) (Desk, error)
	ListDesksForBuilding(ctx context.Context, buildingID string) ([]Desk, error)
	// DeleteDesk removes the desk and cascades to its reservations.
	DeleteDesk(ctx context.Context, id string) error
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ReservationRepository stores the reservation ledger. Mutations other than
// the cascade deletes above never remove rows; cancellation and expiry are
// status updates.
type ReservationRepository interface {
	// CreateReservationGroup inserts every reservation of one booking request
	// inside a single transaction. Conflicting active rows surface as
	// ErrDeskConflict or ErrUserConflict and no row of the group is persisted.
	CreateReservationGroup(ctx context.Context, reservations []Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservationsForUser(ctx context.Context, userID string) ([]Reservation, error)
	ListActiveReservationsForDay(ctx context.Context, day time.Time) ([]Reservation, error)
	ListReservationsByGroup(ctx context.Context, groupID string) ([]Reservation, error)
	// FindActiveReservation locates the active row for (desk, day, user).
	FindActiveReservation(ctx context.Context, deskID, userID string, day time.Time) (Reservation, error)
	CountActiveReservationsForUser(ctx context.Context, userID string) (int, error)
	// ListReservedDeskIDs returns the IDs of desks in the building holding at
	// least one active reservation inside the inclusive [from, to] range.
	ListReservedDeskIDs(ctx context.Context, buildingID string, from, to time.Time) ([]string, error)
	// CancelReservations flips the identified rows to cancelled and stamps the
	// cancellation time. Rows already terminal are left untouched.
	CancelReservations(ctx context.Context, ids []string, cancelledAt time.Time) error
	// CompleteExpired flips every active reservation dated strictly before the
	// given day to completed and reports how many rows changed.
	CompleteExpired(ctx context.Context, before time.Time) (int, error)
	ListTimeSpansForReservation(ctx context.Context, reservationID string) ([]ReservationTimeSpan, error)
}
