package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/deskbooker/internal/persistence"
)

// DeskRepository implements persistence.DeskRepository using SQLite.
type DeskRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDeskRepository creates a new SQLite desk repository.
func NewDeskRepository(pool *ConnectionPool) *DeskRepository {
	return &DeskRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateDesk inserts a new desk.
func (r *DeskRepository) CreateDesk(ctx context.Context, desk persistence.Desk) error {
	if desk.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO desks (id, building_id, description, pos_x, pos_y, kind, in_maintenance, maintenance_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		desk.ID,
		desk.BuildingID,
		nullString(desk.Description),
		desk.PosX,
		desk.PosY,
		desk.Kind,
		boolToInt(desk.InMaintenance),
		nullString(desk.MaintenanceReason),
		formatTime(desk.CreatedAt),
		formatTime(desk.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateDesk updates an existing desk. The owning building never changes.
func (r *DeskRepository) UpdateDesk(ctx context.Context, desk persistence.Desk) error {
	query := `
		UPDATE desks
		SET description = ?, pos_x = ?, pos_y = ?, kind = ?, in_maintenance = ?, maintenance_reason = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		nullString(desk.Description),
		desk.PosX,
		desk.PosY,
		desk.Kind,
		boolToInt(desk.InMaintenance),
		nullString(desk.MaintenanceReason),
		formatTime(desk.UpdatedAt),
		desk.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetDesk retrieves a desk by ID.
func (r *DeskRepository) GetDesk(ctx context.Context, id string) (persistence.Desk, error) {
	if id == "" {
		return persistence.Desk{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, building_id, description, pos_x, pos_y, kind, in_maintenance, maintenance_reason, created_at, updated_at
		FROM desks
		WHERE id = ?
	`
	row := r.helper.QueryRow(ctx, query, id)
	return scanDesk(row.Scan)
}

// ListDesksForBuilding returns every desk of a building ordered by position.
func (r *DeskRepository) ListDesksForBuilding(ctx context.Context, buildingID string) ([]persistence.Desk, error) {
	query := `
		SELECT id, building_id, description, pos_x, pos_y, kind, in_maintenance, maintenance_reason, created_at, updated_at
		FROM desks
		WHERE building_id = ?
		ORDER BY pos_y ASC, pos_x ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query, buildingID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var desks []persistence.Desk
	for rows.Next() {
		desk, err := scanDesk(rows.Scan)
		if err != nil {
			return nil, err
		}
		desks = append(desks, desk)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return desks, nil
}

// DeleteDesk removes a desk; its reservations follow through the cascade.
func (r *DeskRepository) DeleteDesk(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM desks WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanDesk(scan func(dest ...any) error) (persistence.Desk, error) {
	var desk persistence.Desk
	var description, maintenanceReason sql.NullString
	var inMaintenance int
	var createdAtStr, updatedAtStr string

	err := scan(
		&desk.ID,
		&desk.BuildingID,
		&description,
		&desk.PosX,
		&desk.PosY,
		&desk.Kind,
		&inMaintenance,
		&maintenanceReason,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Desk{}, persistence.ErrNotFound
		}
		return persistence.Desk{}, NewErrorMapper().MapError(err)
	}

	desk.Description = stringPtr(description)
	desk.MaintenanceReason = stringPtr(maintenanceReason)
	desk.InMaintenance = inMaintenance != 0

	if desk.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Desk{}, err
	}
	if desk.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Desk{}, err
	}
	return desk, nil
}
