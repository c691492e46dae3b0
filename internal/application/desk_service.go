package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// DeskRepository captures the persistence operations needed by the desk service.
type DeskRepository interface {
	CreateDesk(ctx context.Context, desk Desk) (Desk, error)
	GetDesk(ctx context.Context, id string) (Desk, error)
	UpdateDesk(ctx context.Context, desk Desk) (Desk, error)
	DeleteDesk(ctx context.Context, id string) error
	ListDesksForBuilding(ctx context.Context, buildingID string) ([]Desk, error)
}

// buildingResolver is the subset of building lookups the desk service needs to
// place desks on a floor plan.
type buildingResolver interface {
	GetBuilding(ctx context.Context, id string) (Building, error)
}

// DeskService orchestrates validation and persistence for desks, including
// floor-plan placement and the maintenance flag.
type DeskService struct {
	desks       DeskRepository
	buildings   buildingResolver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDeskService constructs a desk service with the provided dependencies.
func NewDeskService(desks DeskRepository, buildings buildingResolver, idGenerator func() string, now func() time.Time) *DeskService {
	return NewDeskServiceWithLogger(desks, buildings, idGenerator, now, nil)
}

// NewDeskServiceWithLogger constructs a desk service with a specified logger.
func NewDeskServiceWithLogger(desks DeskRepository, buildings buildingResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DeskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DeskService{
		desks:       desks,
		buildings:   buildings,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *DeskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DeskService", operation, attrs...)
}

// CreateDesk validates placement against the building floor plan and persists
// a new desk.
func (s *DeskService) CreateDesk(ctx context.Context, input DeskInput) (desk Desk, err error) {
	if s == nil {
		err = fmt.Errorf("DeskService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateDesk", "building_id", input.BuildingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create desk", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("desk_id", desk.ID).InfoContext(ctx, "desk created")
	}()

	var building Building
	building, err = s.resolveBuilding(ctx, input.BuildingID)
	if err != nil {
		return
	}

	vErr := validateDeskInput(input, building)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	desk = Desk{
		ID:          s.idGenerator(),
		BuildingID:  input.BuildingID,
		Description: normalizeOptionalText(input.Description),
		PosX:        input.PosX,
		PosY:        input.PosY,
		Kind:        deskKindOrDefault(input.Kind),
		CreatedAt:   s.now(),
	}
	desk.UpdatedAt = desk.CreatedAt

	if s.desks == nil {
		return
	}

	var persisted Desk
	persisted, err = s.desks.CreateDesk(ctx, desk)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	desk = persisted
	return
}

// GetDesk loads one desk by ID.
func (s *DeskService) GetDesk(ctx context.Context, id string) (Desk, error) {
	if s == nil {
		return Desk{}, fmt.Errorf("DeskService is nil")
	}
	if s.desks == nil {
		return Desk{}, fmt.Errorf("desk repository not configured")
	}

	desk, err := s.desks.GetDesk(ctx, id)
	if err != nil {
		return Desk{}, mapCatalogRepoError(err)
	}
	return desk, nil
}

// UpdateDesk validates placement and updates an existing desk. The desk stays
// in its building; moving a desk across buildings is a delete plus create.
func (s *DeskService) UpdateDesk(ctx context.Context, id string, input DeskInput) (desk Desk, err error) {
	if s == nil {
		err = fmt.Errorf("DeskService is nil")
		return
	}
	if s.desks == nil {
		err = fmt.Errorf("desk repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDesk", "desk_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update desk", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "desk updated")
	}()

	var existing Desk
	existing, err = s.desks.GetDesk(ctx, id)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	var building Building
	building, err = s.resolveBuilding(ctx, existing.BuildingID)
	if err != nil {
		return
	}

	check := input
	check.BuildingID = existing.BuildingID
	vErr := validateDeskInput(check, building)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Description = normalizeOptionalText(input.Description)
	updated.PosX = input.PosX
	updated.PosY = input.PosY
	updated.Kind = deskKindOrDefault(input.Kind)
	updated.UpdatedAt = s.now()

	desk, err = s.desks.UpdateDesk(ctx, updated)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

// DeleteDesk removes a desk together with its reservations.
func (s *DeskService) DeleteDesk(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("DeskService is nil")
	}
	if s.desks == nil {
		return fmt.Errorf("desk repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteDesk", "desk_id", id)

	if err := s.desks.DeleteDesk(ctx, id); err != nil {
		err = mapCatalogRepoError(err)
		logger.ErrorContext(ctx, "failed to delete desk", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "desk deleted")
	return nil
}

// ListDesksForBuilding returns the building's desks ordered by position, row
// first then column.
func (s *DeskService) ListDesksForBuilding(ctx context.Context, buildingID string) ([]Desk, error) {
	if s == nil {
		return nil, fmt.Errorf("DeskService is nil")
	}
	if s.desks == nil {
		return nil, nil
	}

	if _, err := s.resolveBuilding(ctx, buildingID); err != nil {
		return nil, err
	}

	raw, err := s.desks.ListDesksForBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	desks := make([]Desk, len(raw))
	copy(desks, raw)

	sort.Slice(desks, func(i, j int) bool {
		if desks[i].PosY != desks[j].PosY {
			return desks[i].PosY < desks[j].PosY
		}
		if desks[i].PosX != desks[j].PosX {
			return desks[i].PosX < desks[j].PosX
		}
		return desks[i].ID < desks[j].ID
	})
	return desks, nil
}

// SetMaintenance toggles a desk's maintenance flag. A desk in maintenance is
// excluded from availability but keeps its existing reservations.
func (s *DeskService) SetMaintenance(ctx context.Context, id string, input MaintenanceInput) (desk Desk, err error) {
	if s == nil {
		err = fmt.Errorf("DeskService is nil")
		return
	}
	if s.desks == nil {
		err = fmt.Errorf("desk repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetMaintenance", "desk_id", id, "in_maintenance", input.InMaintenance)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set maintenance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "maintenance flag set")
	}()

	var existing Desk
	existing, err = s.desks.GetDesk(ctx, id)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	updated := existing
	updated.InMaintenance = input.InMaintenance
	if input.InMaintenance {
		updated.MaintenanceReason = normalizeOptionalText(input.Reason)
	} else {
		updated.MaintenanceReason = nil
	}
	updated.UpdatedAt = s.now()

	desk, err = s.desks.UpdateDesk(ctx, updated)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

func (s *DeskService) resolveBuilding(ctx context.Context, buildingID string) (Building, error) {
	if s.buildings == nil {
		return Building{}, fmt.Errorf("building resolver not configured")
	}
	building, err := s.buildings.GetBuilding(ctx, buildingID)
	if err != nil {
		return Building{}, mapCatalogRepoError(err)
	}
	return building, nil
}

func validateDeskInput(input DeskInput, building Building) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.BuildingID) == "" {
		vErr.add("building_id", "building is required")
	}
	if input.PosX < 0 || input.PosX >= building.FloorWidth {
		vErr.add("pos_x", fmt.Sprintf("x position must lie between 0 and %d", building.FloorWidth-1))
	}
	if input.PosY < 0 || input.PosY >= building.FloorHeight {
		vErr.add("pos_y", fmt.Sprintf("y position must lie between 0 and %d", building.FloorHeight-1))
	}
	switch deskKindOrDefault(input.Kind) {
	case DeskKindDesk, DeskKindConferenceRoom:
	default:
		vErr.add("kind", "kind must be desk or conference_room")
	}

	return vErr
}

func deskKindOrDefault(kind DeskKind) DeskKind {
	if kind == "" {
		return DeskKindDesk
	}
	return kind
}

func normalizeOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
