package sqlite

import (
	"context"
	"fmt"
)

// schemaStatements holds the full schema in dependency order. The store applies
// them idempotently at startup; there is a single fixed migration step.
//
// The two partial unique indexes on reservations are load bearing: they are the
// last-resort detector for concurrent bookings of the same (desk, day) or
// (user, day). Violations surface as persistence.ErrDeskConflict and
// persistence.ErrUserConflict via the error mapper.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS buildings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		floor_width INTEGER NOT NULL CHECK (floor_width > 0),
		floor_height INTEGER NOT NULL CHECK (floor_height > 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS operating_hours (
		building_id TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		opens_at INTEGER NOT NULL CHECK (opens_at BETWEEN 0 AND 1440),
		closes_at INTEGER NOT NULL CHECK (closes_at BETWEEN 0 AND 1440),
		closed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (building_id, weekday)
	)`,
	`CREATE TABLE IF NOT EXISTS desks (
		id TEXT PRIMARY KEY,
		building_id TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
		description TEXT,
		pos_x INTEGER NOT NULL CHECK (pos_x >= 0),
		pos_y INTEGER NOT NULL CHECK (pos_y >= 0),
		kind TEXT NOT NULL DEFAULT 'desk',
		in_maintenance INTEGER NOT NULL DEFAULT 0,
		maintenance_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		surname TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		desk_id TEXT NOT NULL REFERENCES desks(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'cancelled')),
		group_id TEXT,
		created_at TEXT NOT NULL,
		cancelled_at TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_desk_day
		ON reservations(desk_id, day) WHERE status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_user_day
		ON reservations(user_id, day) WHERE status = 'active'`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_group ON reservations(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations(user_id)`,
	`CREATE TABLE IF NOT EXISTS reservation_time_spans (
		id TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
		start_minute INTEGER NOT NULL CHECK (start_minute >= 0),
		end_minute INTEGER NOT NULL CHECK (end_minute <= 1440 AND end_minute > start_minute),
		status TEXT NOT NULL CHECK (status IN ('active', 'completed', 'cancelled'))
	)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
