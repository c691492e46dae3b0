package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/deskbooker/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateReservationGroup inserts every reservation of one booking request in a
// single transaction. Conflicts are checked against the ledger inside the same
// transaction, and the partial unique indexes on active rows remain the
// last-resort detector, so two concurrent requests for the same desk and date
// can never both commit.
func (r *ReservationRepository) CreateReservationGroup(ctx context.Context, reservations []persistence.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	for _, reservation := range reservations {
		if reservation.ID == "" {
			return persistence.ErrConstraintViolation
		}
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, reservation := range reservations {
			day := formatDay(reservation.Day)

			var deskTaken int
			err := r.helper.QueryRowTx(tx,
				"SELECT COUNT(1) FROM reservations WHERE desk_id = ? AND day = ? AND status = 'active'",
				reservation.DeskID, day,
			).Scan(&deskTaken)
			if err != nil {
				return r.mapper.MapError(err)
			}
			if deskTaken > 0 {
				return persistence.ErrDeskConflict
			}

			var userBooked int
			err = r.helper.QueryRowTx(tx,
				"SELECT COUNT(1) FROM reservations WHERE user_id = ? AND day = ? AND status = 'active'",
				reservation.UserID, day,
			).Scan(&userBooked)
			if err != nil {
				return r.mapper.MapError(err)
			}
			if userBooked > 0 {
				return persistence.ErrUserConflict
			}

			_, err = r.helper.ExecTx(tx, `
				INSERT INTO reservations (id, user_id, desk_id, day, status, group_id, created_at, cancelled_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
			`,
				reservation.ID,
				reservation.UserID,
				reservation.DeskID,
				day,
				reservation.Status,
				nullString(reservation.GroupID),
				formatTime(reservation.CreatedAt),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, reservationSelect+" WHERE id = ?", id)
	return scanReservation(row.Scan)
}

// ListReservationsForUser returns every reservation owned by the user,
// newest date first.
func (r *ReservationRepository) ListReservationsForUser(ctx context.Context, userID string) ([]persistence.Reservation, error) {
	return r.list(ctx, reservationSelect+" WHERE user_id = ? ORDER BY day DESC, id ASC", userID)
}

// ListActiveReservationsForDay returns every active reservation on the date.
func (r *ReservationRepository) ListActiveReservationsForDay(ctx context.Context, day time.Time) ([]persistence.Reservation, error) {
	return r.list(ctx, reservationSelect+" WHERE day = ? AND status = 'active' ORDER BY id ASC", formatDay(day))
}

// ListReservationsByGroup returns every reservation sharing the group ID.
func (r *ReservationRepository) ListReservationsByGroup(ctx context.Context, groupID string) ([]persistence.Reservation, error) {
	if groupID == "" {
		return nil, nil
	}
	return r.list(ctx, reservationSelect+" WHERE group_id = ? ORDER BY day ASC, id ASC", groupID)
}

// FindActiveReservation locates the active row for (desk, day, user).
func (r *ReservationRepository) FindActiveReservation(ctx context.Context, deskID, userID string, day time.Time) (persistence.Reservation, error) {
	row := r.helper.QueryRow(ctx,
		reservationSelect+" WHERE desk_id = ? AND user_id = ? AND day = ? AND status = 'active'",
		deskID, userID, formatDay(day),
	)
	return scanReservation(row.Scan)
}

// CountActiveReservationsForUser counts the user's active rows. Cancelled and
// completed reservations never count toward the quota.
func (r *ReservationRepository) CountActiveReservationsForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(1) FROM reservations WHERE user_id = ? AND status = 'active'",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListReservedDeskIDs returns the desks of the building with at least one
// active reservation inside the inclusive [from, to] range.
func (r *ReservationRepository) ListReservedDeskIDs(ctx context.Context, buildingID string, from, to time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT res.desk_id
		FROM reservations res
		JOIN desks d ON d.id = res.desk_id
		WHERE d.building_id = ?
		  AND res.status = 'active'
		  AND res.day >= ?
		  AND res.day <= ?
		ORDER BY res.desk_id ASC
	`
	rows, err := r.helper.Query(ctx, query, buildingID, formatDay(from), formatDay(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, r.mapper.MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return ids, nil
}

// CancelReservations flips the identified rows to cancelled in one transaction.
// Rows already completed or cancelled are left untouched.
func (r *ReservationRepository) CancelReservations(ctx context.Context, ids []string, cancelledAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			_, err := r.helper.ExecTx(tx, `
				UPDATE reservations
				SET status = 'cancelled', cancelled_at = ?
				WHERE id = ? AND status = 'active'
			`, formatTime(cancelledAt), id)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// CompleteExpired flips every active reservation dated strictly before the
// given day to completed. Running it twice on the same day finds nothing left
// to change.
func (r *ReservationRepository) CompleteExpired(ctx context.Context, before time.Time) (int, error) {
	result, err := r.helper.Exec(ctx, `
		UPDATE reservations
		SET status = 'completed'
		WHERE status = 'active' AND day < ?
	`, formatDay(before))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// ListTimeSpansForReservation returns the legacy sub-day spans of a reservation.
func (r *ReservationRepository) ListTimeSpansForReservation(ctx context.Context, reservationID string) ([]persistence.ReservationTimeSpan, error) {
	query := `
		SELECT id, reservation_id, start_minute, end_minute, status
		FROM reservation_time_spans
		WHERE reservation_id = ?
		ORDER BY start_minute ASC
	`
	rows, err := r.helper.Query(ctx, query, reservationID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var spans []persistence.ReservationTimeSpan
	for rows.Next() {
		var span persistence.ReservationTimeSpan
		if err := rows.Scan(&span.ID, &span.ReservationID, &span.StartMinute, &span.EndMinute, &span.Status); err != nil {
			return nil, r.mapper.MapError(err)
		}
		spans = append(spans, span)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return spans, nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

const reservationSelect = `
	SELECT id, user_id, desk_id, day, status, group_id, created_at, cancelled_at
	FROM reservations`

func scanReservation(scan func(dest ...any) error) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var dayStr, createdAtStr string
	var groupID, cancelledAtStr sql.NullString

	err := scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.DeskID,
		&dayStr,
		&reservation.Status,
		&groupID,
		&createdAtStr,
		&cancelledAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, NewErrorMapper().MapError(err)
	}

	reservation.GroupID = stringPtr(groupID)

	if reservation.Day, err = parseDay(dayStr); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Reservation{}, err
	}
	if cancelledAtStr.Valid {
		cancelledAt, err := parseTime(cancelledAtStr.String)
		if err != nil {
			return persistence.Reservation{}, err
		}
		reservation.CancelledAt = &cancelledAt
	}
	return reservation, nil
}
