package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/deskbooker/internal/booking"
)

// ReservationReader exposes the per-user ledger read used by the projections.
type ReservationReader interface {
	ListReservationsForUser(ctx context.Context, userID string) ([]Reservation, error)
}

// DeskResolver exposes desk lookups used to decorate grouped views.
type DeskResolver interface {
	GetDesk(ctx context.Context, id string) (Desk, error)
}

// ViewService folds raw reservation rows into the user facing projections.
// It never mutates state.
type ViewService struct {
	reservations ReservationReader
	users        UserDirectory
	desks        DeskResolver
	buildings    BuildingCatalog
	now          func() time.Time
}

// NewViewService wires dependencies for the read-side projections.
func NewViewService(reservations ReservationReader, users UserDirectory, desks DeskResolver, buildings BuildingCatalog, now func() time.Time) *ViewService {
	if now == nil {
		now = time.Now
	}
	return &ViewService{
		reservations: reservations,
		users:        users,
		desks:        desks,
		buildings:    buildings,
		now:          now,
	}
}

// History returns the user's cancelled and completed reservations, newest
// first. An active reservation whose date has passed is shown as completed
// even before the expiry sweeper has run.
func (s *ViewService) History(ctx context.Context, userID string) ([]ReservationView, error) {
	if s == nil {
		return nil, fmt.Errorf("ViewService is nil")
	}

	reservations, err := s.loadReservations(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := booking.DateOf(s.now())
	var views []ReservationView
	for _, r := range reservations {
		effective := booking.EffectiveStatus(toRuleReservation(r), today)
		if effective == booking.StatusActive {
			continue
		}
		views = append(views, ReservationView{
			ID:          r.ID,
			DeskID:      r.DeskID,
			Day:         r.Day,
			Status:      effective,
			GroupID:     r.GroupID,
			CreatedAt:   r.CreatedAt,
			CancelledAt: r.CancelledAt,
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Day.Equal(views[j].Day) {
			return views[i].ID < views[j].ID
		}
		return views[i].Day.After(views[j].Day)
	})
	return views, nil
}

// UpcomingGroups returns the user's active reservations dated today or later,
// folded into one entry per booking group. A reservation without a group ID
// forms a group of one keyed by its own identifier.
func (s *ViewService) UpcomingGroups(ctx context.Context, userID string) ([]ReservationGroupView, error) {
	if s == nil {
		return nil, fmt.Errorf("ViewService is nil")
	}

	reservations, err := s.loadReservations(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := booking.DateOf(s.now())
	grouped := make(map[string][]Reservation)
	for _, r := range reservations {
		if r.Status != booking.StatusActive || booking.InPast(r.Day, today) {
			continue
		}
		key := r.GroupID
		if key == "" {
			key = r.ID
		}
		grouped[key] = append(grouped[key], r)
	}

	views := make([]ReservationGroupView, 0, len(grouped))
	for key, members := range grouped {
		view, err := s.buildGroupView(ctx, key, members, today)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Dates[0].Equal(views[j].Dates[0]) {
			return views[i].GroupID < views[j].GroupID
		}
		return views[i].Dates[0].Before(views[j].Dates[0])
	})
	if len(views) == 0 {
		return nil, nil
	}
	return views, nil
}

func (s *ViewService) buildGroupView(ctx context.Context, groupID string, members []Reservation, today time.Time) (ReservationGroupView, error) {
	dates := make([]time.Time, 0, len(members))
	createdAt := members[0].CreatedAt
	containsToday := false
	for _, r := range members {
		dates = append(dates, booking.DateOf(r.Day))
		if r.CreatedAt.Before(createdAt) {
			createdAt = r.CreatedAt
		}
		if booking.SameDay(r.Day, today) {
			containsToday = true
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// The countdown targets the earliest date strictly after today; a group
	// whose only remaining date is today has nothing ahead and reports zero.
	daysUntil := 0
	for _, d := range dates {
		if d.After(today) {
			daysUntil = booking.DaysUntil(today, d)
			break
		}
	}

	view := ReservationGroupView{
		GroupID:        groupID,
		DeskID:         members[0].DeskID,
		Dates:          dates,
		Count:          len(dates),
		CreatedAt:      createdAt,
		ContainsToday:  containsToday,
		DaysUntilStart: daysUntil,
	}

	if s.desks != nil && s.buildings != nil {
		desk, err := s.desks.GetDesk(ctx, view.DeskID)
		if err != nil {
			return ReservationGroupView{}, mapLookupError(err)
		}
		building, err := s.buildings.GetBuilding(ctx, desk.BuildingID)
		if err != nil {
			return ReservationGroupView{}, mapLookupError(err)
		}
		view.BuildingName = building.Name
	}

	return view, nil
}

func (s *ViewService) loadReservations(ctx context.Context, userID string) ([]Reservation, error) {
	if s.reservations == nil {
		return nil, fmt.Errorf("reservation reader not configured")
	}
	if s.users != nil {
		exists, err := s.users.UserExists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}
	return s.reservations.ListReservationsForUser(ctx, userID)
}

func toRuleReservation(r Reservation) booking.Reservation {
	return booking.Reservation{
		ID:      r.ID,
		DeskID:  r.DeskID,
		UserID:  r.UserID,
		Day:     r.Day,
		Status:  r.Status,
		GroupID: r.GroupID,
	}
}
