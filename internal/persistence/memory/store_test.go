package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

var reference = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func seededStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore()
	ctx := context.Background()

	err := store.CreateBuilding(ctx, persistence.Building{
		ID: "b1", Name: "HQ", FloorWidth: 20, FloorHeight: 12,
		CreatedAt: reference, UpdatedAt: reference,
	})
	if err != nil {
		t.Fatalf("CreateBuilding failed: %v", err)
	}
	for _, deskID := range []string{"d1", "d2"} {
		err := store.CreateDesk(ctx, persistence.Desk{
			ID: deskID, BuildingID: "b1", PosX: 1, PosY: 1, Kind: "desk",
			CreatedAt: reference, UpdatedAt: reference,
		})
		if err != nil {
			t.Fatalf("CreateDesk failed: %v", err)
		}
	}
	for _, userID := range []string{"u1", "u2"} {
		err := store.CreateUser(ctx, persistence.User{
			ID: userID, Name: "Name", Surname: "Surname",
			Email: userID + "@example.com", PasswordHash: "hash",
			CreatedAt: reference, UpdatedAt: reference,
		})
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	return store
}

func activeRow(id, userID, deskID string, d time.Time, groupID string) persistence.Reservation {
	row := persistence.Reservation{
		ID: id, UserID: userID, DeskID: deskID, Day: d,
		Status: "active", CreatedAt: reference,
	}
	if groupID != "" {
		row.GroupID = &groupID
	}
	return row
}

func TestStoreEnforcesEmailUniqueness(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	err := store.CreateUser(context.Background(), persistence.User{
		ID: "u3", Name: "N", Surname: "S", Email: "U1@example.com", PasswordHash: "hash",
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}
}

func TestStoreRejectsConflictingGroupAtomically(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r1", "u1", "d1", day(2), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	err = store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r2", "u2", "d1", day(1), "g2"),
		activeRow("r3", "u2", "d1", day(2), "g2"),
	})
	if !errors.Is(err, persistence.ErrDeskConflict) {
		t.Fatalf("expected ErrDeskConflict, got %v", err)
	}
	if _, err := store.GetReservation(ctx, "r2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected no row of the rejected group, got %v", err)
	}
}

func TestStoreUserConflictAcrossDesks(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r1", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	err = store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r2", "u1", "d2", day(1), "g2"),
	})
	if !errors.Is(err, persistence.ErrUserConflict) {
		t.Fatalf("expected ErrUserConflict, got %v", err)
	}
}

func TestStoreCancelLeavesTerminalRows(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r1", "u1", "d1", day(-1), "g1"),
		activeRow("r2", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	if _, err := store.CompleteExpired(ctx, day(0)); err != nil {
		t.Fatalf("CompleteExpired failed: %v", err)
	}

	if err := store.CancelReservations(ctx, []string{"r1", "r2"}, reference); err != nil {
		t.Fatalf("CancelReservations failed: %v", err)
	}

	past, err := store.GetReservation(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if past.Status != "completed" {
		t.Fatalf("expected completed row to stay completed, got %q", past.Status)
	}

	upcoming, err := store.GetReservation(ctx, "r2")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if upcoming.Status != "cancelled" || upcoming.CancelledAt == nil {
		t.Fatalf("expected cancelled row with timestamp, got %+v", upcoming)
	}
}

func TestStoreDeleteBuildingCascades(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r1", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	if err := store.DeleteBuilding(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBuilding failed: %v", err)
	}
	if _, err := store.GetDesk(ctx, "d1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected desk to cascade, got %v", err)
	}
	if _, err := store.GetReservation(ctx, "r1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected reservation to cascade, got %v", err)
	}
}

func TestStoreReplaceOperatingHoursRejectsDuplicates(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	err := store.ReplaceOperatingHours(context.Background(), "b1", []persistence.OperatingHours{
		{Weekday: time.Monday, OpensAt: 540, ClosesAt: 1080},
		{Weekday: time.Monday, OpensAt: 600, ClosesAt: 1200},
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated weekday, got %v", err)
	}
}

func TestStoreListReservedDeskIDsRange(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateReservationGroup(ctx, []persistence.Reservation{
		activeRow("r1", "u1", "d1", day(1), "g1"),
		activeRow("r2", "u2", "d2", day(5), "g2"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	ids, err := store.ListReservedDeskIDs(ctx, "b1", day(0), day(2))
	if err != nil {
		t.Fatalf("ListReservedDeskIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "d1" {
		t.Fatalf("expected only d1 inside the range, got %v", ids)
	}
}
