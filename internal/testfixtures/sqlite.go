package testfixtures

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/example/deskbooker/internal/persistence"
	"github.com/example/deskbooker/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Buildings    persistence.BuildingRepository
	Desks        persistence.DeskRepository
	Users        persistence.UserRepository
	Reservations persistence.ReservationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := fmt.Sprintf("file:%s", filepath.Join(dir, "deskbooker.db"))

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(dsn))
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Buildings:    sqlite.NewBuildingRepository(pool),
		Desks:        sqlite.NewDeskRepository(pool),
		Users:        sqlite.NewUserRepository(pool),
		Reservations: sqlite.NewReservationRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
