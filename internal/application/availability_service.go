package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/persistence"
)

// BuildingCatalog exposes building lookup operations.
type BuildingCatalog interface {
	GetBuilding(ctx context.Context, id string) (Building, error)
	ListOperatingHours(ctx context.Context, buildingID string) ([]OperatingHours, error)
}

// DeskDirectory exposes desk listing operations.
type DeskDirectory interface {
	ListDesksForBuilding(ctx context.Context, buildingID string) ([]Desk, error)
}

// ReservationFinder exposes the availability query against the ledger.
type ReservationFinder interface {
	ListReservedDeskIDs(ctx context.Context, buildingID string, from, to time.Time) ([]string, error)
}

// AvailabilityService computes free desks and closed weekdays. It is a pure
// reader: every availability check re-reads ledger state, and only the
// operating-hours shape is cached, invalidated on every calendar write.
type AvailabilityService struct {
	buildings  BuildingCatalog
	desks      DeskDirectory
	finder     ReservationFinder
	closedDays *closedDaysCache
}

// NewAvailabilityService wires dependencies for availability queries.
func NewAvailabilityService(buildings BuildingCatalog, desks DeskDirectory, finder ReservationFinder, now func() time.Time) *AvailabilityService {
	return &AvailabilityService{
		buildings:  buildings,
		desks:      desks,
		finder:     finder,
		closedDays: newClosedDaysCache(0, now),
	}
}

// AvailableDesks returns every desk of the building with no active reservation
// on any date inside the inclusive [from, to] range, excluding desks in
// maintenance. A desk booked on even one day of the range is excluded for the
// whole range. An unknown building yields an empty result, not an error.
func (s *AvailabilityService) AvailableDesks(ctx context.Context, buildingID string, from, to time.Time) ([]Desk, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	if s.buildings == nil || s.desks == nil || s.finder == nil {
		return nil, fmt.Errorf("availability dependencies not configured")
	}

	fromDay := booking.DateOf(from)
	toDay := booking.DateOf(to)
	if toDay.Before(fromDay) {
		vErr := &ValidationError{}
		vErr.add("range", "end date must not precede start date")
		return nil, vErr
	}

	if _, err := s.buildings.GetBuilding(ctx, buildingID); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	desks, err := s.desks.ListDesksForBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	reservedIDs, err := s.finder.ListReservedDeskIDs(ctx, buildingID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}

	available := make([]Desk, 0, len(desks))
	for _, desk := range desks {
		if desk.InMaintenance {
			continue
		}
		if _, taken := reserved[desk.ID]; taken {
			continue
		}
		available = append(available, desk)
	}
	return available, nil
}

// ClosedWeekdays returns the weekdays the building is closed on, derived from
// its operating hours. Callers use the result to pre-filter calendars.
func (s *AvailabilityService) ClosedWeekdays(ctx context.Context, buildingID string) ([]time.Weekday, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	if s.buildings == nil {
		return nil, fmt.Errorf("building catalog not configured")
	}

	if cached, ok := s.closedDays.Get(buildingID); ok {
		return cached, nil
	}

	if _, err := s.buildings.GetBuilding(ctx, buildingID); err != nil {
		return nil, mapLookupError(err)
	}

	hours, err := s.buildings.ListOperatingHours(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	var closed []time.Weekday
	for _, entry := range hours {
		if entry.Closed {
			closed = append(closed, entry.Weekday)
		}
	}

	s.closedDays.Store(buildingID, closed)
	return closed, nil
}

// InvalidateClosedDays drops the cached calendar shape for a building. The
// building service calls it after every operating-hours write.
func (s *AvailabilityService) InvalidateClosedDays(buildingID string) {
	if s == nil {
		return
	}
	s.closedDays.Invalidate(buildingID)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
