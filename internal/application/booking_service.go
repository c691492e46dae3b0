package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/persistence"
)

// ReservationLedger captures the persistence interactions needed by the booking service.
type ReservationLedger interface {
	CreateReservationGroup(ctx context.Context, reservations []Reservation) error
	ListActiveReservationsForDay(ctx context.Context, day time.Time) ([]Reservation, error)
	ListReservationsByGroup(ctx context.Context, groupID string) ([]Reservation, error)
	FindActiveReservation(ctx context.Context, deskID, userID string, day time.Time) (Reservation, error)
	CountActiveReservationsForUser(ctx context.Context, userID string) (int, error)
	CancelReservations(ctx context.Context, ids []string, cancelledAt time.Time) error
}

// UserDirectory exposes user lookup operations.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// DeskCatalog exposes desk lookup operations.
type DeskCatalog interface {
	DeskExists(ctx context.Context, id string) (bool, error)
}

// Limits bounds a booking request and a user's ledger footprint.
type Limits struct {
	HorizonDays        int
	MaxDatesPerRequest int
	MaxActivePerUser   int
}

// DefaultLimits returns the standard quota configuration.
func DefaultLimits() Limits {
	return Limits{
		HorizonDays:        booking.DefaultHorizonDays,
		MaxDatesPerRequest: booking.DefaultMaxDatesPerRequest,
		MaxActivePerUser:   booking.DefaultMaxActivePerUser,
	}
}

// BookingService orchestrates validation and persistence for reservation
// groups: it is the only writer of the reservation ledger besides the expiry
// sweeper.
type BookingService struct {
	reservations ReservationLedger
	users        UserDirectory
	desks        DeskCatalog
	limits       Limits
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(reservations ReservationLedger, users UserDirectory, desks DeskCatalog, limits Limits, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(reservations, users, desks, limits, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies including a base logger.
func NewBookingServiceWithLogger(reservations ReservationLedger, users UserDirectory, desks DeskCatalog, limits Limits, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if limits.HorizonDays <= 0 {
		limits.HorizonDays = booking.DefaultHorizonDays
	}
	if limits.MaxDatesPerRequest <= 0 {
		limits.MaxDatesPerRequest = booking.DefaultMaxDatesPerRequest
	}
	if limits.MaxActivePerUser <= 0 {
		limits.MaxActivePerUser = booking.DefaultMaxActivePerUser
	}
	return &BookingService{
		reservations: reservations,
		users:        users,
		desks:        desks,
		limits:       limits,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// CreateBooking validates and persists one multi-date booking request. The
// request is all-or-nothing: when any date fails a rule, no reservation is
// persisted and the first failure is reported for the whole group.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (BookingConfirmation, error) {
	if s == nil {
		return BookingConfirmation{}, fmt.Errorf("BookingService is nil")
	}
	if s.reservations == nil {
		return BookingConfirmation{}, fmt.Errorf("reservation ledger not configured")
	}

	logger := serviceLogger(ctx, s.logger, "booking", "create", "user_id", params.UserID, "desk_id", params.DeskID)

	dates := booking.DedupeDates(params.Dates)
	if len(dates) == 0 {
		vErr := &ValidationError{}
		vErr.add("dates", "at least one date is required")
		return BookingConfirmation{}, vErr
	}

	if booking.ExceedsRequestSize(len(dates), s.limits.MaxDatesPerRequest) {
		return BookingConfirmation{}, rejection(ReasonExceedsBookingSize,
			fmt.Sprintf("a booking may not request more than %d dates", s.limits.MaxDatesPerRequest))
	}

	if err := s.ensureUserExists(ctx, params.UserID); err != nil {
		return BookingConfirmation{}, err
	}
	if err := s.ensureDeskExists(ctx, params.DeskID); err != nil {
		return BookingConfirmation{}, err
	}

	activeCount, err := s.reservations.CountActiveReservationsForUser(ctx, params.UserID)
	if err != nil {
		return BookingConfirmation{}, err
	}
	if booking.ExceedsActiveLimit(activeCount, len(dates), s.limits.MaxActivePerUser) {
		return BookingConfirmation{}, rejection(ReasonExceedsUserLimit,
			fmt.Sprintf("you may not hold more than %d active reservations", s.limits.MaxActivePerUser))
	}

	today := booking.DateOf(s.now())
	for _, day := range dates {
		if err := s.validateDate(ctx, params, day, today); err != nil {
			return BookingConfirmation{}, err
		}
	}

	createdAt := s.now()
	groupID := s.idGenerator()
	reservations := make([]Reservation, 0, len(dates))
	for _, day := range dates {
		reservations = append(reservations, Reservation{
			ID:        s.idGenerator(),
			UserID:    params.UserID,
			DeskID:    params.DeskID,
			Day:       day,
			Status:    booking.StatusActive,
			GroupID:   groupID,
			CreatedAt: createdAt,
		})
	}

	// The ledger re-validates inside its transaction; the partial unique
	// indexes on active rows close the validate-then-write race.
	if err := s.reservations.CreateReservationGroup(ctx, reservations); err != nil {
		return BookingConfirmation{}, mapLedgerError(err)
	}

	logger.InfoContext(ctx, "booking created", "group_id", groupID, "dates", len(dates))

	return BookingConfirmation{GroupID: groupID, Reservations: reservations}, nil
}

// CancelDay cancels exactly the one reservation for (desk, date, user), even
// when that reservation belongs to a group. Cancelling a reservation owned by
// someone else reports ErrNotFound, never a partial result.
func (s *BookingService) CancelDay(ctx context.Context, params CancelDayParams) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation ledger not configured")
	}

	reservation, err := s.reservations.FindActiveReservation(ctx, params.DeskID, params.UserID, booking.DateOf(params.Day))
	if err != nil {
		return mapLookupError(err)
	}

	if err := s.reservations.CancelReservations(ctx, []string{reservation.ID}, s.now()); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "booking", "cancel_day", "user_id", params.UserID).
		InfoContext(ctx, "reservation cancelled", "reservation_id", reservation.ID)
	return nil
}

// CancelGroup cancels every reservation sharing the group ID, including ones
// whose date has already passed. A group that does not exist, or that belongs
// to a different user, reports ErrNotFound.
func (s *BookingService) CancelGroup(ctx context.Context, params CancelGroupParams) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation ledger not configured")
	}

	group, err := s.reservations.ListReservationsByGroup(ctx, params.GroupID)
	if err != nil {
		return mapLookupError(err)
	}

	return s.cancelGroupRows(ctx, group, params.UserID, params.GroupID)
}

// CancelGroupByDesk resolves the group through any one (desk, date) member
// and cancels the whole group. A reservation carrying no group ID is cancelled
// on its own.
func (s *BookingService) CancelGroupByDesk(ctx context.Context, params CancelGroupByDeskParams) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation ledger not configured")
	}

	reservation, err := s.reservations.FindActiveReservation(ctx, params.DeskID, params.UserID, booking.DateOf(params.Day))
	if err != nil {
		return mapLookupError(err)
	}

	if reservation.GroupID == "" {
		return s.reservations.CancelReservations(ctx, []string{reservation.ID}, s.now())
	}

	group, err := s.reservations.ListReservationsByGroup(ctx, reservation.GroupID)
	if err != nil {
		return mapLookupError(err)
	}
	return s.cancelGroupRows(ctx, group, params.UserID, reservation.GroupID)
}

func (s *BookingService) cancelGroupRows(ctx context.Context, group []Reservation, userID, groupID string) error {
	owned := false
	ids := make([]string, 0, len(group))
	for _, reservation := range group {
		if reservation.UserID != userID {
			continue
		}
		owned = true
		if reservation.Status == booking.StatusActive {
			ids = append(ids, reservation.ID)
		}
	}
	if !owned {
		return ErrNotFound
	}

	if err := s.reservations.CancelReservations(ctx, ids, s.now()); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "booking", "cancel_group", "user_id", userID).
		InfoContext(ctx, "reservation group cancelled", "group_id", groupID, "cancelled", len(ids))
	return nil
}

// validateDate enforces the per-date booking rules in their documented order:
// not in the past, within the horizon, desk free, user free.
func (s *BookingService) validateDate(ctx context.Context, params CreateBookingParams, day, today time.Time) error {
	if booking.InPast(day, today) {
		return rejection(ReasonPastDate,
			fmt.Sprintf("%s is in the past", day.Format("2006-01-02")))
	}
	if booking.BeyondHorizon(day, today, s.limits.HorizonDays) {
		return rejection(ReasonTooFarInFuture,
			fmt.Sprintf("%s is more than %d days ahead", day.Format("2006-01-02"), s.limits.HorizonDays))
	}

	existing, err := s.reservations.ListActiveReservationsForDay(ctx, day)
	if err != nil {
		return err
	}

	candidate := booking.Reservation{DeskID: params.DeskID, UserID: params.UserID, Day: day}
	for _, conflict := range booking.DetectConflicts(toRuleReservations(existing), candidate, "") {
		switch conflict.Type {
		case booking.ConflictTypeDesk:
			return rejection(ReasonDeskConflict,
				fmt.Sprintf("this desk is already booked for %s", day.Format("2006-01-02")))
		case booking.ConflictTypeUser:
			return rejection(ReasonUserConflict,
				fmt.Sprintf("you already hold a reservation for %s", day.Format("2006-01-02")))
		}
	}
	return nil
}

func (s *BookingService) ensureUserExists(ctx context.Context, id string) error {
	if s.users == nil {
		return nil
	}
	exists, err := s.users.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return rejection(ReasonUserNotFound, "the requesting user does not exist")
	}
	return nil
}

func (s *BookingService) ensureDeskExists(ctx context.Context, id string) error {
	if s.desks == nil {
		return nil
	}
	exists, err := s.desks.DeskExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return rejection(ReasonDeskNotFound, "the requested desk does not exist")
	}
	return nil
}

func toRuleReservations(reservations []Reservation) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, booking.Reservation{
			ID:      r.ID,
			DeskID:  r.DeskID,
			UserID:  r.UserID,
			Day:     r.Day,
			Status:  r.Status,
			GroupID: r.GroupID,
		})
	}
	return out
}

// mapLedgerError translates constraint violations raised by the ledger's
// last-resort indexes into the matching booking rejections.
func mapLedgerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrDeskConflict):
		return rejection(ReasonDeskConflict, "this desk is already booked for one of the selected dates")
	case errors.Is(err, persistence.ErrUserConflict):
		return rejection(ReasonUserConflict, "you already hold a reservation on one of the selected dates")
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	default:
		return err
	}
}

func mapLookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
