package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

func setupReservationTest(t *testing.T) *ReservationRepository {
	t.Helper()

	pool := newTestPool(t)
	seedBuilding(t, pool, "b1")
	seedDesk(t, pool, "d1", "b1")
	seedDesk(t, pool, "d2", "b1")
	seedUser(t, pool, "u1")
	seedUser(t, pool, "u2")
	return NewReservationRepository(pool)
}

func TestReservationRepository_CreateGroupAndGet(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	group := []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
		newReservationRow("r2", "u1", "d1", day(2), "g1"),
	}
	if err := repo.CreateReservationGroup(ctx, group); err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	retrieved, err := repo.GetReservation(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if !retrieved.Day.Equal(day(1)) {
		t.Errorf("Expected day %v, got %v", day(1), retrieved.Day)
	}
	if retrieved.GroupID == nil || *retrieved.GroupID != "g1" {
		t.Errorf("Expected group g1, got %v", retrieved.GroupID)
	}

	members, err := repo.ListReservationsByGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("ListReservationsByGroup failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 group members, got %d", len(members))
	}
}

func TestReservationRepository_DeskConflictRollsBackGroup(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(2), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	// Second request for the same desk: the clash is on the second date, yet
	// no date of the group may survive.
	err = repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r2", "u2", "d1", day(1), "g2"),
		newReservationRow("r3", "u2", "d1", day(2), "g2"),
	})
	if !errors.Is(err, persistence.ErrDeskConflict) {
		t.Fatalf("Expected ErrDeskConflict, got %v", err)
	}

	if _, err := repo.GetReservation(ctx, "r2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected r2 to be rolled back, got %v", err)
	}
}

func TestReservationRepository_UserConflict(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	err = repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r2", "u1", "d2", day(1), "g2"),
	})
	if !errors.Is(err, persistence.ErrUserConflict) {
		t.Fatalf("Expected ErrUserConflict, got %v", err)
	}
}

func TestReservationRepository_CancelledRowFreesTheSlot(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	cancelledAt := testReference.Add(time.Hour)
	if err := repo.CancelReservations(ctx, []string{"r1"}, cancelledAt); err != nil {
		t.Fatalf("CancelReservations failed: %v", err)
	}

	retrieved, err := repo.GetReservation(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if retrieved.Status != "cancelled" {
		t.Errorf("Expected cancelled status, got %q", retrieved.Status)
	}
	if retrieved.CancelledAt == nil {
		t.Error("Expected cancellation timestamp")
	}

	// The slot can be booked again once the blocking row is cancelled.
	err = repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r2", "u2", "d1", day(1), "g2"),
	})
	if err != nil {
		t.Fatalf("Expected rebooking after cancellation, got %v", err)
	}
}

func TestReservationRepository_CancelSkipsTerminalRows(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(-1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	if _, err := repo.CompleteExpired(ctx, day(0)); err != nil {
		t.Fatalf("CompleteExpired failed: %v", err)
	}

	// Cancelling a completed row must not flip it back.
	if err := repo.CancelReservations(ctx, []string{"r1"}, testReference); err != nil {
		t.Fatalf("CancelReservations failed: %v", err)
	}

	retrieved, err := repo.GetReservation(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if retrieved.Status != "completed" {
		t.Errorf("Expected completed status to survive, got %q", retrieved.Status)
	}
}

func TestReservationRepository_CompleteExpired(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(-2), "g1"),
		newReservationRow("r2", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	count, err := repo.CompleteExpired(ctx, day(0))
	if err != nil {
		t.Fatalf("CompleteExpired failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 expired row, got %d", count)
	}

	// A second run finds nothing left to change.
	count, err = repo.CompleteExpired(ctx, day(0))
	if err != nil {
		t.Fatalf("CompleteExpired failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected idempotent second sweep, got %d", count)
	}

	upcoming, err := repo.GetReservation(ctx, "r2")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if upcoming.Status != "active" {
		t.Errorf("Expected upcoming row to stay active, got %q", upcoming.Status)
	}
}

func TestReservationRepository_ListReservedDeskIDs(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
		newReservationRow("r2", "u2", "d2", day(5), "g2"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	ids, err := repo.ListReservedDeskIDs(ctx, "b1", day(0), day(2))
	if err != nil {
		t.Fatalf("ListReservedDeskIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "d1" {
		t.Fatalf("Expected only d1 inside the range, got %v", ids)
	}
}

func TestReservationRepository_CountActiveForUser(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
		newReservationRow("r2", "u1", "d1", day(2), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}
	if err := repo.CancelReservations(ctx, []string{"r2"}, testReference); err != nil {
		t.Fatalf("CancelReservations failed: %v", err)
	}

	count, err := repo.CountActiveReservationsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("CountActiveReservationsForUser failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 active reservation, got %d", count)
	}
}

func TestReservationRepository_FindActiveReservation(t *testing.T) {
	repo := setupReservationTest(t)
	ctx := context.Background()

	err := repo.CreateReservationGroup(ctx, []persistence.Reservation{
		newReservationRow("r1", "u1", "d1", day(1), "g1"),
	})
	if err != nil {
		t.Fatalf("CreateReservationGroup failed: %v", err)
	}

	found, err := repo.FindActiveReservation(ctx, "d1", "u1", day(1))
	if err != nil {
		t.Fatalf("FindActiveReservation failed: %v", err)
	}
	if found.ID != "r1" {
		t.Errorf("Expected r1, got %s", found.ID)
	}

	if _, err := repo.FindActiveReservation(ctx, "d1", "u2", day(1)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for wrong owner, got %v", err)
	}
}
