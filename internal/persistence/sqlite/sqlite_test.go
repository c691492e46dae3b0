package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

var testReference = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// newTestPool opens a migrated database backed by a temporary file.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := NewConnectionPool(DefaultConfig(fmt.Sprintf("file:%s", dbPath)))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return pool
}

// seedBuilding inserts a building so desks and reservations can reference it.
func seedBuilding(t *testing.T, pool *ConnectionPool, id string) {
	t.Helper()

	repo := NewBuildingRepository(pool)
	err := repo.CreateBuilding(context.Background(), persistence.Building{
		ID:          id,
		Name:        "Building " + id,
		FloorWidth:  20,
		FloorHeight: 12,
		CreatedAt:   testReference,
		UpdatedAt:   testReference,
	})
	if err != nil {
		t.Fatalf("Failed to seed building %s: %v", id, err)
	}
}

func seedDesk(t *testing.T, pool *ConnectionPool, id, buildingID string) {
	t.Helper()

	repo := NewDeskRepository(pool)
	err := repo.CreateDesk(context.Background(), persistence.Desk{
		ID:         id,
		BuildingID: buildingID,
		PosX:       1,
		PosY:       1,
		Kind:       "desk",
		CreatedAt:  testReference,
		UpdatedAt:  testReference,
	})
	if err != nil {
		t.Fatalf("Failed to seed desk %s: %v", id, err)
	}
}

func seedUser(t *testing.T, pool *ConnectionPool, id string) {
	t.Helper()

	repo := NewUserRepository(pool)
	err := repo.CreateUser(context.Background(), persistence.User{
		ID:           id,
		Name:         "Name",
		Surname:      "Surname",
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    testReference,
		UpdatedAt:    testReference,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

func day(offset int) time.Time {
	return time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// newReservationRow builds an active reservation row for ledger tests.
func newReservationRow(id, userID, deskID string, d time.Time, groupID string) persistence.Reservation {
	row := persistence.Reservation{
		ID:        id,
		UserID:    userID,
		DeskID:    deskID,
		Day:       d,
		Status:    "active",
		CreatedAt: testReference,
	}
	if groupID != "" {
		row.GroupID = &groupID
	}
	return row
}
