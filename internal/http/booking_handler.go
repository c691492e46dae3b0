package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/deskbooker/internal/application"
)

const dayFormat = "2006-01-02"

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.BookingConfirmation, error)
	CancelDay(ctx context.Context, params application.CancelDayParams) error
	CancelGroup(ctx context.Context, params application.CancelGroupParams) error
	CancelGroupByDesk(ctx context.Context, params application.CancelGroupByDeskParams) error
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	dates, err := parseDays(req.Dates)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "Create", "user_id", req.UserID, "desk_id", req.DeskID)

	confirmation, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		UserID: strings.TrimSpace(req.UserID),
		DeskID: strings.TrimSpace(req.DeskID),
		Dates:  dates,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("group_id", confirmation.GroupID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{
		GroupID:      confirmation.GroupID,
		Reservations: toReservationDTOs(confirmation.Reservations),
	})
}

func (h *BookingHandler) CancelDay(w http.ResponseWriter, r *http.Request) {
	h.cancelByDesk(w, r, "CancelDay", func(ctx context.Context, deskID, userID string, day time.Time) error {
		return h.service.CancelDay(ctx, application.CancelDayParams{DeskID: deskID, Day: day, UserID: userID})
	})
}

func (h *BookingHandler) CancelGroupByDesk(w http.ResponseWriter, r *http.Request) {
	h.cancelByDesk(w, r, "CancelGroupByDesk", func(ctx context.Context, deskID, userID string, day time.Time) error {
		return h.service.CancelGroupByDesk(ctx, application.CancelGroupByDeskParams{DeskID: deskID, Day: day, UserID: userID})
	})
}

func (h *BookingHandler) cancelByDesk(w http.ResponseWriter, r *http.Request, operation string, cancel func(ctx context.Context, deskID, userID string, day time.Time) error) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode cancel request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	day, err := time.Parse(dayFormat, strings.TrimSpace(req.Date))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), operation, "user_id", req.UserID, "desk_id", req.DeskID)

	if err := cancel(r.Context(), strings.TrimSpace(req.DeskID), strings.TrimSpace(req.UserID), day); err != nil {
		logger.ErrorContext(r.Context(), "cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) CancelGroup(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "CancelGroup", "user_id", userID, "group_id", groupID)

	if err := h.service.CancelGroup(r.Context(), application.CancelGroupParams{GroupID: groupID, UserID: userID}); err != nil {
		logger.ErrorContext(r.Context(), "group cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation group cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func parseDays(values []string) ([]time.Time, error) {
	days := make([]time.Time, 0, len(values))
	for _, value := range values {
		day, err := time.Parse(dayFormat, strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

type bookingRequest struct {
	UserID string   `json:"user_id"`
	DeskID string   `json:"desk_id"`
	Dates  []string `json:"dates"`
}

type cancelRequest struct {
	DeskID string `json:"desk_id"`
	Date   string `json:"date"`
	UserID string `json:"user_id"`
}

type bookingResponse struct {
	GroupID      string           `json:"group_id"`
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DeskID      string `json:"desk_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	GroupID     string `json:"group_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	dto := reservationDTO{
		ID:        reservation.ID,
		UserID:    reservation.UserID,
		DeskID:    reservation.DeskID,
		Date:      reservation.Day.Format(dayFormat),
		Status:    string(reservation.Status),
		GroupID:   reservation.GroupID,
		CreatedAt: reservation.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if reservation.CancelledAt != nil {
		dto.CancelledAt = reservation.CancelledAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
