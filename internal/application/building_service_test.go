package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

type buildingRepoStub struct {
	building  Building
	created   Building
	updated   Building
	hours     []OperatingHours
	replaced  []OperatingHours
	err       error
	deleteErr error
	list      []Building
}

func (b *buildingRepoStub) CreateBuilding(ctx context.Context, building Building) (Building, error) {
	if b.err != nil {
		return Building{}, b.err
	}
	b.created = building
	return building, nil
}

func (b *buildingRepoStub) GetBuilding(ctx context.Context, id string) (Building, error) {
	if b.err != nil {
		return Building{}, b.err
	}
	if b.building.ID == "" || b.building.ID != id {
		return Building{}, persistence.ErrNotFound
	}
	return b.building, nil
}

func (b *buildingRepoStub) UpdateBuilding(ctx context.Context, building Building) (Building, error) {
	if b.err != nil {
		return Building{}, b.err
	}
	b.updated = building
	return building, nil
}

func (b *buildingRepoStub) DeleteBuilding(ctx context.Context, id string) error {
	return b.deleteErr
}

func (b *buildingRepoStub) ListBuildings(ctx context.Context) ([]Building, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]Building, len(b.list))
	copy(out, b.list)
	return out, nil
}

func (b *buildingRepoStub) ReplaceOperatingHours(ctx context.Context, buildingID string, hours []OperatingHours) error {
	if b.err != nil {
		return b.err
	}
	b.replaced = hours
	return nil
}

func (b *buildingRepoStub) ListOperatingHours(ctx context.Context, buildingID string) ([]OperatingHours, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.hours, nil
}

type invalidatorSpy struct {
	invalidated []string
}

func (i *invalidatorSpy) InvalidateClosedDays(buildingID string) {
	i.invalidated = append(i.invalidated, buildingID)
}

func TestBuildingService_CreateBuilding(t *testing.T) {
	t.Parallel()

	repo := &buildingRepoStub{}
	svc := NewBuildingService(repo, nil, func() string { return "building-1" }, fixedNow)

	building, err := svc.CreateBuilding(context.Background(), BuildingInput{
		Name:        "  Riverside Office  ",
		FloorWidth:  20,
		FloorHeight: 12,
	})
	if err != nil {
		t.Fatalf("CreateBuilding returned error: %v", err)
	}
	if building.ID != "building-1" {
		t.Fatalf("expected generated ID, got %q", building.ID)
	}
	if building.Name != "Riverside Office" {
		t.Fatalf("expected trimmed name, got %q", building.Name)
	}
	if repo.created.ID != "building-1" {
		t.Fatalf("expected building persisted, got %+v", repo.created)
	}
}

func TestBuildingService_CreateBuilding_Validation(t *testing.T) {
	t.Parallel()

	svc := NewBuildingService(&buildingRepoStub{}, nil, func() string { return "building-1" }, fixedNow)

	_, err := svc.CreateBuilding(context.Background(), BuildingInput{Name: " ", FloorWidth: 0, FloorHeight: -1})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "floor_width", "floor_height"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestBuildingService_UpdateBuilding_UnknownBuilding(t *testing.T) {
	t.Parallel()

	svc := NewBuildingService(&buildingRepoStub{}, nil, func() string { return "" }, fixedNow)

	_, err := svc.UpdateBuilding(context.Background(), "ghost", BuildingInput{Name: "HQ", FloorWidth: 10, FloorHeight: 10})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBuildingService_ReplaceOperatingHours(t *testing.T) {
	t.Parallel()

	repo := &buildingRepoStub{building: Building{ID: "b-1", Name: "HQ"}}
	spy := &invalidatorSpy{}
	svc := NewBuildingService(repo, spy, func() string { return "" }, fixedNow)

	err := svc.ReplaceOperatingHours(context.Background(), "b-1", []OperatingHoursInput{
		{Weekday: time.Monday, OpensAt: 8 * 60, ClosesAt: 18 * 60},
		{Weekday: time.Saturday, Closed: true},
	})
	if err != nil {
		t.Fatalf("ReplaceOperatingHours returned error: %v", err)
	}
	if len(repo.replaced) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d", len(repo.replaced))
	}
	if repo.replaced[0].BuildingID != "b-1" {
		t.Fatalf("expected entries bound to b-1, got %q", repo.replaced[0].BuildingID)
	}
	if len(spy.invalidated) != 1 || spy.invalidated[0] != "b-1" {
		t.Fatalf("expected closed-day invalidation for b-1, got %v", spy.invalidated)
	}
}

func TestBuildingService_ReplaceOperatingHours_Validation(t *testing.T) {
	t.Parallel()

	repo := &buildingRepoStub{building: Building{ID: "b-1"}}
	svc := NewBuildingService(repo, nil, func() string { return "" }, fixedNow)

	cases := []struct {
		name    string
		entries []OperatingHoursInput
	}{
		{
			name: "duplicate weekday",
			entries: []OperatingHoursInput{
				{Weekday: time.Monday, OpensAt: 8 * 60, ClosesAt: 17 * 60},
				{Weekday: time.Monday, OpensAt: 9 * 60, ClosesAt: 18 * 60},
			},
		},
		{
			name:    "opening time out of range",
			entries: []OperatingHoursInput{{Weekday: time.Tuesday, OpensAt: 24 * 60, ClosesAt: 10 * 60}},
		},
		{
			name:    "zero-length window",
			entries: []OperatingHoursInput{{Weekday: time.Wednesday, OpensAt: 9 * 60, ClosesAt: 9 * 60}},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := svc.ReplaceOperatingHours(context.Background(), "b-1", tc.entries)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if repo.replaced != nil {
				t.Fatal("expected no write on validation failure")
			}
		})
	}
}

func TestBuildingService_ReplaceOperatingHours_CrossingMidnightIsValid(t *testing.T) {
	t.Parallel()

	repo := &buildingRepoStub{building: Building{ID: "b-1"}}
	svc := NewBuildingService(repo, nil, func() string { return "" }, fixedNow)

	// Closing before opening encodes a window that runs past midnight.
	err := svc.ReplaceOperatingHours(context.Background(), "b-1", []OperatingHoursInput{
		{Weekday: time.Friday, OpensAt: 22 * 60, ClosesAt: 6 * 60},
	})
	if err != nil {
		t.Fatalf("ReplaceOperatingHours returned error: %v", err)
	}
}

func TestBuildingService_DeleteBuilding_InvalidatesCalendar(t *testing.T) {
	t.Parallel()

	spy := &invalidatorSpy{}
	svc := NewBuildingService(&buildingRepoStub{building: Building{ID: "b-1"}}, spy, func() string { return "" }, fixedNow)

	if err := svc.DeleteBuilding(context.Background(), "b-1"); err != nil {
		t.Fatalf("DeleteBuilding returned error: %v", err)
	}
	if len(spy.invalidated) != 1 {
		t.Fatalf("expected 1 invalidation, got %d", len(spy.invalidated))
	}
}

func TestBuildingService_ListBuildings_SortsByName(t *testing.T) {
	t.Parallel()

	repo := &buildingRepoStub{list: []Building{
		{ID: "b-2", Name: "west wing"},
		{ID: "b-1", Name: "East Wing"},
	}}
	svc := NewBuildingService(repo, nil, func() string { return "" }, fixedNow)

	buildings, err := svc.ListBuildings(context.Background())
	if err != nil {
		t.Fatalf("ListBuildings returned error: %v", err)
	}
	if buildings[0].ID != "b-1" || buildings[1].ID != "b-2" {
		t.Fatalf("expected case-insensitive name order, got %+v", buildings)
	}
}
