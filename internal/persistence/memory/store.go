package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/persistence"
)

// Store provides a map-backed persistence implementation used by tests. It
// enforces the same invariants as the SQLite store: unique emails, one
// operating-hours row per weekday, cascading deletes, and the uniqueness of
// active reservations per (desk, day) and (user, day).
type Store struct {
	mu           sync.RWMutex
	buildings    map[string]persistence.Building
	hours        map[string][]persistence.OperatingHours
	desks        map[string]persistence.Desk
	users        map[string]persistence.User
	reservations map[string]persistence.Reservation
	spans        map[string][]persistence.ReservationTimeSpan
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		buildings:    make(map[string]persistence.Building),
		hours:        make(map[string][]persistence.OperatingHours),
		desks:        make(map[string]persistence.Desk),
		users:        make(map[string]persistence.User),
		reservations: make(map[string]persistence.Reservation),
		spans:        make(map[string][]persistence.ReservationTimeSpan),
	}
}

// --- BuildingRepository implementation ---

// CreateBuilding stores a new building.
func (s *Store) CreateBuilding(ctx context.Context, building persistence.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[building.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.buildings[building.ID] = building
	return nil
}

// UpdateBuilding updates an existing building.
func (s *Store) UpdateBuilding(ctx context.Context, building persistence.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[building.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.buildings[building.ID] = building
	return nil
}

// GetBuilding retrieves a building by ID.
func (s *Store) GetBuilding(ctx context.Context, id string) (persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	building, ok := s.buildings[id]
	if !ok {
		return persistence.Building{}, persistence.ErrNotFound
	}
	return building, nil
}

// ListBuildings returns all buildings ordered by name.
func (s *Store) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buildings := make([]persistence.Building, 0, len(s.buildings))
	for _, building := range s.buildings {
		buildings = append(buildings, building)
	}
	sort.Slice(buildings, func(i, j int) bool {
		if buildings[i].Name == buildings[j].Name {
			return buildings[i].ID < buildings[j].ID
		}
		return buildings[i].Name < buildings[j].Name
	})
	return buildings, nil
}

// DeleteBuilding removes a building, cascading to desks and reservations.
func (s *Store) DeleteBuilding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.buildings, id)
	delete(s.hours, id)

	for deskID, desk := range s.desks {
		if desk.BuildingID == id {
			s.deleteDeskLocked(deskID)
		}
	}
	return nil
}

// ReplaceOperatingHours swaps the building's weekly calendar.
func (s *Store) ReplaceOperatingHours(ctx context.Context, buildingID string, hours []persistence.OperatingHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[buildingID]; !ok {
		return persistence.ErrNotFound
	}

	seen := make(map[time.Weekday]struct{}, len(hours))
	cloned := make([]persistence.OperatingHours, 0, len(hours))
	for _, entry := range hours {
		if _, dup := seen[entry.Weekday]; dup {
			return persistence.ErrDuplicate
		}
		seen[entry.Weekday] = struct{}{}
		entry.BuildingID = buildingID
		cloned = append(cloned, entry)
	}
	sort.Slice(cloned, func(i, j int) bool { return cloned[i].Weekday < cloned[j].Weekday })
	s.hours[buildingID] = cloned
	return nil
}

// ListOperatingHours returns the building's weekly calendar.
func (s *Store) ListOperatingHours(ctx context.Context, buildingID string) ([]persistence.OperatingHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]persistence.OperatingHours(nil), s.hours[buildingID]...), nil
}

// --- DeskRepository implementation ---

// CreateDesk stores a new desk.
func (s *Store) CreateDesk(ctx context.Context, desk persistence.Desk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.desks[desk.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.buildings[desk.BuildingID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.desks[desk.ID] = desk
	return nil
}

// UpdateDesk updates an existing desk.
func (s *Store) UpdateDesk(ctx context.Context, desk persistence.Desk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.desks[desk.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	desk.BuildingID = current.BuildingID
	s.desks[desk.ID] = desk
	return nil
}

// GetDesk retrieves a desk by ID.
func (s *Store) GetDesk(ctx context.Context, id string) (persistence.Desk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desk, ok := s.desks[id]
	if !ok {
		return persistence.Desk{}, persistence.ErrNotFound
	}
	return desk, nil
}

// ListDesksForBuilding returns the building's desks ordered by position.
func (s *Store) ListDesksForBuilding(ctx context.Context, buildingID string) ([]persistence.Desk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var desks []persistence.Desk
	for _, desk := range s.desks {
		if desk.BuildingID == buildingID {
			desks = append(desks, desk)
		}
	}
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

// DeleteDesk removes a desk, cascading to its reservations.
func (s *Store) DeleteDesk(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.desks[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteDeskLocked(id)
	return nil
}

func (s *Store) deleteDeskLocked(id string) {
	delete(s.desks, id)
	for resID, reservation := range s.reservations {
		if reservation.DeskID == id {
			delete(s.reservations, resID)
			delete(s.spans, resID)
		}
	}
}

// --- UserRepository implementation ---

// CreateUser stores a new user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	user.Email = strings.ToLower(user.Email)
	s.users[user.ID] = user
	return nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	user.Email = strings.ToLower(user.Email)
	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by surname then name.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Surname != users[j].Surname {
			return users[i].Surname < users[j].Surname
		}
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// DeleteUser removes a user, cascading to their reservations.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	for resID, reservation := range s.reservations {
		if reservation.UserID == id {
			delete(s.reservations, resID)
			delete(s.spans, resID)
		}
	}
	return nil
}

func (s *Store) ensureUniqueEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for _, user := range s.users {
		if user.ID != id && user.Email == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- ReservationRepository implementation ---

// CreateReservationGroup inserts a booking request atomically. The whole group
// is rejected when any date conflicts, mirroring the SQLite transaction plus
// partial index behavior.
func (s *Store) CreateReservationGroup(ctx context.Context, reservations []persistence.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, candidate := range reservations {
		if candidate.ID == "" {
			return persistence.ErrConstraintViolation
		}
		if _, ok := s.users[candidate.UserID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
		if _, ok := s.desks[candidate.DeskID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
		for _, existing := range s.reservations {
			if existing.Status != string(booking.StatusActive) {
				continue
			}
			if !booking.SameDay(existing.Day, candidate.Day) {
				continue
			}
			if existing.DeskID == candidate.DeskID {
				return persistence.ErrDeskConflict
			}
			if existing.UserID == candidate.UserID {
				return persistence.ErrUserConflict
			}
		}
	}

	for _, reservation := range reservations {
		reservation.Day = booking.DateOf(reservation.Day)
		s.reservations[reservation.ID] = reservation
	}
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// ListReservationsForUser returns every reservation owned by the user.
func (s *Store) ListReservationsForUser(ctx context.Context, userID string) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reservations []persistence.Reservation
	for _, reservation := range s.reservations {
		if reservation.UserID == userID {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		if !reservations[i].Day.Equal(reservations[j].Day) {
			return reservations[i].Day.After(reservations[j].Day)
		}
		return reservations[i].ID < reservations[j].ID
	})
	return reservations, nil
}

// ListActiveReservationsForDay returns every active reservation on the date.
func (s *Store) ListActiveReservationsForDay(ctx context.Context, day time.Time) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reservations []persistence.Reservation
	for _, reservation := range s.reservations {
		if reservation.Status == string(booking.StatusActive) && booking.SameDay(reservation.Day, day) {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

// ListReservationsByGroup returns every reservation sharing the group ID.
func (s *Store) ListReservationsByGroup(ctx context.Context, groupID string) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if groupID == "" {
		return nil, nil
	}
	var reservations []persistence.Reservation
	for _, reservation := range s.reservations {
		if reservation.GroupID != nil && *reservation.GroupID == groupID {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		if !reservations[i].Day.Equal(reservations[j].Day) {
			return reservations[i].Day.Before(reservations[j].Day)
		}
		return reservations[i].ID < reservations[j].ID
	})
	return reservations, nil
}

// FindActiveReservation locates the active row for (desk, day, user).
func (s *Store) FindActiveReservation(ctx context.Context, deskID, userID string, day time.Time) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reservation := range s.reservations {
		if reservation.Status != string(booking.StatusActive) {
			continue
		}
		if reservation.DeskID == deskID && reservation.UserID == userID && booking.SameDay(reservation.Day, day) {
			return reservation, nil
		}
	}
	return persistence.Reservation{}, persistence.ErrNotFound
}

// CountActiveReservationsForUser counts the user's active rows.
func (s *Store) CountActiveReservationsForUser(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, reservation := range s.reservations {
		if reservation.UserID == userID && reservation.Status == string(booking.StatusActive) {
			count++
		}
	}
	return count, nil
}

// ListReservedDeskIDs returns desks with an active reservation in the range.
func (s *Store) ListReservedDeskIDs(ctx context.Context, buildingID string, from, to time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromDay := booking.DateOf(from)
	toDay := booking.DateOf(to)

	seen := make(map[string]struct{})
	for _, reservation := range s.reservations {
		if reservation.Status != string(booking.StatusActive) {
			continue
		}
		desk, ok := s.desks[reservation.DeskID]
		if !ok || desk.BuildingID != buildingID {
			continue
		}
		day := booking.DateOf(reservation.Day)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		seen[reservation.DeskID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// CancelReservations flips the identified active rows to cancelled.
func (s *Store) CancelReservations(ctx context.Context, ids []string, cancelledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := cancelledAt
	for _, id := range ids {
		reservation, ok := s.reservations[id]
		if !ok || reservation.Status != string(booking.StatusActive) {
			continue
		}
		reservation.Status = string(booking.StatusCancelled)
		reservation.CancelledAt = &stamp
		s.reservations[id] = reservation
	}
	return nil
}

// CompleteExpired flips active reservations dated before the day to completed.
func (s *Store) CompleteExpired(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := booking.DateOf(before)
	changed := 0
	for id, reservation := range s.reservations {
		if reservation.Status != string(booking.StatusActive) {
			continue
		}
		if booking.DateOf(reservation.Day).Before(cutoff) {
			reservation.Status = string(booking.StatusCompleted)
			s.reservations[id] = reservation
			changed++
		}
	}
	return changed, nil
}

// ListTimeSpansForReservation returns the legacy sub-day spans of a reservation.
func (s *Store) ListTimeSpansForReservation(ctx context.Context, reservationID string) ([]persistence.ReservationTimeSpan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]persistence.ReservationTimeSpan(nil), s.spans[reservationID]...), nil
}

// AddTimeSpan attaches a legacy sub-day span to a reservation. Only tests and
// fixtures populate spans; the primary booking flow never writes them.
func (s *Store) AddTimeSpan(ctx context.Context, span persistence.ReservationTimeSpan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[span.ReservationID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.spans[span.ReservationID] = append(s.spans[span.ReservationID], span)
	return nil
}
