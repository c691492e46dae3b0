package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/deskbooker/internal/application"
)

type viewService interface {
	UpcomingGroups(ctx context.Context, userID string) ([]application.ReservationGroupView, error)
	History(ctx context.Context, userID string) ([]application.ReservationView, error)
}

type ViewHandler struct {
	service   viewService
	responder responder
	logger    *slog.Logger
}

func NewViewHandler(service viewService, logger *slog.Logger) *ViewHandler {
	base := defaultLogger(logger)
	return &ViewHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ViewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ViewHandler", operation, attrs...)
}

func (h *ViewHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "Upcoming", "user_id", userID)

	groups, err := h.service.UpcomingGroups(r.Context(), userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "upcoming view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(groups)).InfoContext(r.Context(), "upcoming reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, upcomingResponse{Groups: toGroupDTOs(groups)})
}

func (h *ViewHandler) History(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "History", "user_id", userID)

	entries, err := h.service.History(r.Context(), userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "history view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "reservation history listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, historyResponse{Reservations: toHistoryDTOs(entries)})
}

type upcomingResponse struct {
	Groups []reservationGroupDTO `json:"groups"`
}

type historyResponse struct {
	Reservations []historyEntryDTO `json:"reservations"`
}

type reservationGroupDTO struct {
	GroupID        string   `json:"group_id"`
	DeskID         string   `json:"desk_id"`
	BuildingName   string   `json:"building_name,omitempty"`
	Dates          []string `json:"dates"`
	Count          int      `json:"count"`
	CreatedAt      string   `json:"created_at"`
	ContainsToday  bool     `json:"contains_today"`
	DaysUntilStart int      `json:"days_until_start"`
}

type historyEntryDTO struct {
	ID          string `json:"id"`
	DeskID      string `json:"desk_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	GroupID     string `json:"group_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

func toGroupDTOs(groups []application.ReservationGroupView) []reservationGroupDTO {
	if len(groups) == 0 {
		return nil
	}
	out := make([]reservationGroupDTO, 0, len(groups))
	for _, group := range groups {
		dates := make([]string, 0, len(group.Dates))
		for _, day := range group.Dates {
			dates = append(dates, day.Format(dayFormat))
		}
		out = append(out, reservationGroupDTO{
			GroupID:        group.GroupID,
			DeskID:         group.DeskID,
			BuildingName:   group.BuildingName,
			Dates:          dates,
			Count:          group.Count,
			CreatedAt:      group.CreatedAt.UTC().Format(time.RFC3339Nano),
			ContainsToday:  group.ContainsToday,
			DaysUntilStart: group.DaysUntilStart,
		})
	}
	return out
}

func toHistoryDTOs(entries []application.ReservationView) []historyEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dto := historyEntryDTO{
			ID:        entry.ID,
			DeskID:    entry.DeskID,
			Date:      entry.Day.Format(dayFormat),
			Status:    string(entry.Status),
			GroupID:   entry.GroupID,
			CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if entry.CancelledAt != nil {
			dto.CancelledAt = entry.CancelledAt.UTC().Format(time.RFC3339Nano)
		}
		out = append(out, dto)
	}
	return out
}
