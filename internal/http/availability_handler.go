package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/deskbooker/internal/application"
)

type availabilityService interface {
	AvailableDesks(ctx context.Context, buildingID string, from, to time.Time) ([]application.Desk, error)
	ClosedWeekdays(ctx context.Context, buildingID string) ([]time.Weekday, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

// AvailableDesks serves the availability query for one date (?date=) or an
// inclusive range (?from=&to=).
func (h *AvailabilityHandler) AvailableDesks(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "AvailableDesks", "building_id", buildingID)

	desks, err := h.service.AvailableDesks(r.Context(), buildingID, from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(desks)).InfoContext(r.Context(), "availability computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDesksResponse{Desks: toDeskDTOs(desks)})
}

// ClosedDays serves the weekdays a building is closed on.
func (h *AvailabilityHandler) ClosedDays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	logger := h.log(r.Context(), "ClosedDays", "building_id", buildingID)

	weekdays, err := h.service.ClosedWeekdays(r.Context(), buildingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "closed-days query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	names := make([]string, 0, len(weekdays))
	for _, weekday := range weekdays {
		names = append(names, weekday.String())
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, closedDaysResponse{Weekdays: names})
}

// parseDayRange reads ?date= or the ?from=&to= pair. A single date collapses
// to a one-day range.
func parseDayRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	if date := strings.TrimSpace(query.Get("date")); date != "" {
		day, err := time.Parse(dayFormat, date)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidDate
		}
		return day, day, nil
	}

	from, err := time.Parse(dayFormat, strings.TrimSpace(query.Get("from")))
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidDate
	}
	to, err := time.Parse(dayFormat, strings.TrimSpace(query.Get("to")))
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidDate
	}
	return from, to, nil
}

type closedDaysResponse struct {
	Weekdays []string `json:"weekdays"`
}
