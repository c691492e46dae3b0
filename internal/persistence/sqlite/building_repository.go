package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

// BuildingRepository implements persistence.BuildingRepository using SQLite.
type BuildingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBuildingRepository creates a new SQLite building repository.
func NewBuildingRepository(pool *ConnectionPool) *BuildingRepository {
	return &BuildingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateBuilding inserts a new building.
func (r *BuildingRepository) CreateBuilding(ctx context.Context, building persistence.Building) error {
	if building.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO buildings (id, name, floor_width, floor_height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		building.ID,
		building.Name,
		building.FloorWidth,
		building.FloorHeight,
		formatTime(building.CreatedAt),
		formatTime(building.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateBuilding updates an existing building.
func (r *BuildingRepository) UpdateBuilding(ctx context.Context, building persistence.Building) error {
	query := `
		UPDATE buildings
		SET name = ?, floor_width = ?, floor_height = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		building.Name,
		building.FloorWidth,
		building.FloorHeight,
		formatTime(building.UpdatedAt),
		building.ID,
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

// GetBuilding retrieves a building by ID.
func (r *BuildingRepository) GetBuilding(ctx context.Context, id string) (persistence.Building, error) {
	if id == "" {
		return persistence.Building{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, floor_width, floor_height, created_at, updated_at
		FROM buildings
		WHERE id = ?
	`
	row := r.helper.QueryRow(ctx, query, id)
	return scanBuilding(row.Scan)
}

// ListBuildings returns all buildings ordered by name.
func (r *BuildingRepository) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	query := `
		SELECT id, name, floor_width, floor_height, created_at, updated_at
		FROM buildings
		ORDER BY name ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var buildings []persistence.Building
	for rows.Next() {
		building, err := scanBuilding(rows.Scan)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, building)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return buildings, nil
}

// DeleteBuilding removes a building. Desks, reservations, and operating hours
// follow through the cascading foreign keys.
func (r *BuildingRepository) DeleteBuilding(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM buildings WHERE id = ?", id)
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

// ReplaceOperatingHours swaps the building's weekly calendar in one transaction.
func (r *BuildingRepository) ReplaceOperatingHours(ctx context.Context, buildingID string, hours []persistence.OperatingHours) error {
	if buildingID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := r.helper.QueryRowTx(tx, "SELECT COUNT(1) FROM buildings WHERE id = ?", buildingID).Scan(&exists); err != nil {
			return r.mapper.MapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM operating_hours WHERE building_id = ?", buildingID); err != nil {
			return r.mapper.MapError(err)
		}

		for _, entry := range hours {
			_, err := r.helper.ExecTx(tx, `
				INSERT INTO operating_hours (building_id, weekday, opens_at, closes_at, closed)
				VALUES (?, ?, ?, ?, ?)
			`, buildingID, int(entry.Weekday), entry.OpensAt, entry.ClosesAt, boolToInt(entry.Closed))
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// ListOperatingHours returns the building's weekly calendar ordered by weekday.
func (r *BuildingRepository) ListOperatingHours(ctx context.Context, buildingID string) ([]persistence.OperatingHours, error) {
	query := `
		SELECT building_id, weekday, opens_at, closes_at, closed
		FROM operating_hours
		WHERE building_id = ?
		ORDER BY weekday ASC
	`
	rows, err := r.helper.Query(ctx, query, buildingID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var hours []persistence.OperatingHours
	for rows.Next() {
		var entry persistence.OperatingHours
		var weekday, closed int
		if err := rows.Scan(&entry.BuildingID, &weekday, &entry.OpensAt, &entry.ClosesAt, &closed); err != nil {
			return nil, r.mapper.MapError(err)
		}
		entry.Weekday = time.Weekday(weekday)
		entry.Closed = closed != 0
		hours = append(hours, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return hours, nil
}

func scanBuilding(scan func(dest ...any) error) (persistence.Building, error) {
	var building persistence.Building
	var createdAtStr, updatedAtStr string

	err := scan(
		&building.ID,
		&building.Name,
		&building.FloorWidth,
		&building.FloorHeight,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Building{}, persistence.ErrNotFound
		}
		return persistence.Building{}, NewErrorMapper().MapError(err)
	}

	if building.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Building{}, err
	}
	if building.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Building{}, err
	}
	return building, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
