package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/persistence"
)

// BuildingRepository captures the persistence operations needed by the service.
type BuildingRepository interface {
	CreateBuilding(ctx context.Context, building Building) (Building, error)
	GetBuilding(ctx context.Context, id string) (Building, error)
	UpdateBuilding(ctx context.Context, building Building) (Building, error)
	DeleteBuilding(ctx context.Context, id string) error
	ListBuildings(ctx context.Context) ([]Building, error)
	ReplaceOperatingHours(ctx context.Context, buildingID string, hours []OperatingHours) error
	ListOperatingHours(ctx context.Context, buildingID string) ([]OperatingHours, error)
}

// calendarInvalidator drops derived closed-day state after calendar writes.
type calendarInvalidator interface {
	InvalidateClosedDays(buildingID string)
}

// BuildingService orchestrates validation and persistence for buildings and
// their weekly operating-hours calendars.
type BuildingService struct {
	buildings   BuildingRepository
	calendars   calendarInvalidator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBuildingService constructs a building service with the provided dependencies.
func NewBuildingService(buildings BuildingRepository, calendars calendarInvalidator, idGenerator func() string, now func() time.Time) *BuildingService {
	return NewBuildingServiceWithLogger(buildings, calendars, idGenerator, now, nil)
}

// NewBuildingServiceWithLogger constructs a building service with a specified logger.
func NewBuildingServiceWithLogger(buildings BuildingRepository, calendars calendarInvalidator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BuildingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BuildingService{
		buildings:   buildings,
		calendars:   calendars,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BuildingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BuildingService", operation, attrs...)
}

// CreateBuilding validates input and persists a new building.
func (s *BuildingService) CreateBuilding(ctx context.Context, input BuildingInput) (building Building, err error) {
	if s == nil {
		err = fmt.Errorf("BuildingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBuilding")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("building_id", building.ID).InfoContext(ctx, "building created")
	}()

	vErr := validateBuildingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	building = Building{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		FloorWidth:  input.FloorWidth,
		FloorHeight: input.FloorHeight,
		CreatedAt:   s.now(),
	}
	building.UpdatedAt = building.CreatedAt

	if s.buildings == nil {
		return
	}

	var persisted Building
	persisted, err = s.buildings.CreateBuilding(ctx, building)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	building = persisted
	return
}

// GetBuilding loads one building by ID.
func (s *BuildingService) GetBuilding(ctx context.Context, id string) (Building, error) {
	if s == nil {
		return Building{}, fmt.Errorf("BuildingService is nil")
	}
	if s.buildings == nil {
		return Building{}, fmt.Errorf("building repository not configured")
	}

	building, err := s.buildings.GetBuilding(ctx, id)
	if err != nil {
		return Building{}, mapCatalogRepoError(err)
	}
	return building, nil
}

// UpdateBuilding validates input and updates an existing building. Shrinking
// the floor plan is rejected while any desk would fall outside the new bounds;
// the repository surfaces that as a constraint violation.
func (s *BuildingService) UpdateBuilding(ctx context.Context, id string, input BuildingInput) (building Building, err error) {
	if s == nil {
		err = fmt.Errorf("BuildingService is nil")
		return
	}
	if s.buildings == nil {
		err = fmt.Errorf("building repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBuilding", "building_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "building updated")
	}()

	var existing Building
	existing, err = s.buildings.GetBuilding(ctx, id)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	vErr := validateBuildingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.FloorWidth = input.FloorWidth
	updated.FloorHeight = input.FloorHeight
	updated.UpdatedAt = s.now()

	building, err = s.buildings.UpdateBuilding(ctx, updated)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

// DeleteBuilding removes a building together with its calendar, desks, and
// their reservations.
func (s *BuildingService) DeleteBuilding(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("BuildingService is nil")
	}
	if s.buildings == nil {
		return fmt.Errorf("building repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBuilding", "building_id", id)

	if err := s.buildings.DeleteBuilding(ctx, id); err != nil {
		err = mapCatalogRepoError(err)
		logger.ErrorContext(ctx, "failed to delete building", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if s.calendars != nil {
		s.calendars.InvalidateClosedDays(id)
	}

	logger.InfoContext(ctx, "building deleted")
	return nil
}

// ListBuildings returns all buildings ordered by name.
func (s *BuildingService) ListBuildings(ctx context.Context) ([]Building, error) {
	if s == nil {
		return nil, fmt.Errorf("BuildingService is nil")
	}
	if s.buildings == nil {
		return nil, nil
	}

	raw, err := s.buildings.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}

	buildings := make([]Building, len(raw))
	copy(buildings, raw)

	sort.Slice(buildings, func(i, j int) bool {
		if strings.EqualFold(buildings[i].Name, buildings[j].Name) {
			return buildings[i].ID < buildings[j].ID
		}
		return strings.ToLower(buildings[i].Name) < strings.ToLower(buildings[j].Name)
	})
	return buildings, nil
}

// ReplaceOperatingHours swaps a building's weekly calendar in one write and
// invalidates any derived closed-day state. Weekdays missing from the input
// keep no entry; only entries carrying the closed flag appear in the derived
// closed-day set.
func (s *BuildingService) ReplaceOperatingHours(ctx context.Context, buildingID string, entries []OperatingHoursInput) (err error) {
	if s == nil {
		return fmt.Errorf("BuildingService is nil")
	}
	if s.buildings == nil {
		return fmt.Errorf("building repository not configured")
	}

	logger := s.loggerWith(ctx, "ReplaceOperatingHours", "building_id", buildingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to replace operating hours", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "operating hours replaced")
	}()

	if _, err = s.buildings.GetBuilding(ctx, buildingID); err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	vErr := validateOperatingHours(entries)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hours := make([]OperatingHours, 0, len(entries))
	for _, entry := range entries {
		hours = append(hours, OperatingHours{
			BuildingID: buildingID,
			Weekday:    entry.Weekday,
			OpensAt:    entry.OpensAt,
			ClosesAt:   entry.ClosesAt,
			Closed:     entry.Closed,
		})
	}

	if err = s.buildings.ReplaceOperatingHours(ctx, buildingID, hours); err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	if s.calendars != nil {
		s.calendars.InvalidateClosedDays(buildingID)
	}
	return
}

// ListOperatingHours returns the building's weekly calendar ordered by weekday.
func (s *BuildingService) ListOperatingHours(ctx context.Context, buildingID string) ([]OperatingHours, error) {
	if s == nil {
		return nil, fmt.Errorf("BuildingService is nil")
	}
	if s.buildings == nil {
		return nil, fmt.Errorf("building repository not configured")
	}

	if _, err := s.buildings.GetBuilding(ctx, buildingID); err != nil {
		return nil, mapCatalogRepoError(err)
	}

	hours, err := s.buildings.ListOperatingHours(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	sort.Slice(hours, func(i, j int) bool { return hours[i].Weekday < hours[j].Weekday })
	return hours, nil
}

func validateBuildingInput(input BuildingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.FloorWidth <= 0 {
		vErr.add("floor_width", "floor width must be positive")
	}
	if input.FloorHeight <= 0 {
		vErr.add("floor_height", "floor height must be positive")
	}

	return vErr
}

func validateOperatingHours(entries []OperatingHoursInput) *ValidationError {
	vErr := &ValidationError{}

	seen := make(map[time.Weekday]bool, len(entries))
	for _, entry := range entries {
		field := strings.ToLower(entry.Weekday.String())
		if entry.Weekday < time.Sunday || entry.Weekday > time.Saturday {
			vErr.add("weekday", "weekday must be between Sunday and Saturday")
			continue
		}
		if seen[entry.Weekday] {
			vErr.add(field, "weekday listed more than once")
			continue
		}
		seen[entry.Weekday] = true

		if entry.Closed {
			continue
		}
		if entry.OpensAt < 0 || entry.OpensAt >= booking.MinutesPerDay {
			vErr.add(field, "opening time must fall within the day")
			continue
		}
		if entry.ClosesAt < 0 || entry.ClosesAt >= booking.MinutesPerDay {
			vErr.add(field, "closing time must fall within the day")
			continue
		}
		if entry.OpensAt == entry.ClosesAt {
			vErr.add(field, "opening and closing time must differ")
		}
	}

	return vErr
}

func mapCatalogRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	}
	return err
}
