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

type deskService interface {
	CreateDesk(ctx context.Context, input application.DeskInput) (application.Desk, error)
	GetDesk(ctx context.Context, id string) (application.Desk, error)
	UpdateDesk(ctx context.Context, id string, input application.DeskInput) (application.Desk, error)
	DeleteDesk(ctx context.Context, id string) error
	ListDesksForBuilding(ctx context.Context, buildingID string) ([]application.Desk, error)
	SetMaintenance(ctx context.Context, id string, input application.MaintenanceInput) (application.Desk, error)
}

type DeskHandler struct {
	service   deskService
	responder responder
	logger    *slog.Logger
}

func NewDeskHandler(service deskService, logger *slog.Logger) *DeskHandler {
	base := defaultLogger(logger)
	return &DeskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DeskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DeskHandler", operation, attrs...)
}

func (h *DeskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req deskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode desk request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "building_id", req.BuildingID)

	desk, err := h.service.CreateDesk(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "desk creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("desk_id", desk.ID).InfoContext(r.Context(), "desk created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, deskResponse{Desk: toDeskDTO(desk)})
}

func (h *DeskHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deskID, ok := DeskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(deskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDeskID)
		return
	}

	desk, err := h.service.GetDesk(r.Context(), deskID)
	if err != nil {
		h.log(r.Context(), "Get", "desk_id", deskID).ErrorContext(r.Context(), "desk fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, deskResponse{Desk: toDeskDTO(desk)})
}

func (h *DeskHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deskID, ok := DeskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(deskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDeskID)
		return
	}

	var req deskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "desk_id", deskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode desk update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "desk_id", deskID)

	desk, err := h.service.UpdateDesk(r.Context(), deskID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "desk update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "desk updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, deskResponse{Desk: toDeskDTO(desk)})
}

func (h *DeskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deskID, ok := DeskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(deskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDeskID)
		return
	}

	logger := h.log(r.Context(), "Delete", "desk_id", deskID)

	if err := h.service.DeleteDesk(r.Context(), deskID); err != nil {
		logger.ErrorContext(r.Context(), "desk delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "desk deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DeskHandler) ListForBuilding(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	logger := h.log(r.Context(), "ListForBuilding", "building_id", buildingID)

	desks, err := h.service.ListDesksForBuilding(r.Context(), buildingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "desk list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(desks)).InfoContext(r.Context(), "desks listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDesksResponse{Desks: toDeskDTOs(desks)})
}

func (h *DeskHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deskID, ok := DeskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(deskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDeskID)
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetMaintenance", "desk_id", deskID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode maintenance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetMaintenance", "desk_id", deskID)

	desk, err := h.service.SetMaintenance(r.Context(), deskID, application.MaintenanceInput{
		InMaintenance: req.InMaintenance,
		Reason:        req.Reason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "maintenance update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "maintenance flag set")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, deskResponse{Desk: toDeskDTO(desk)})
}

type deskRequest struct {
	BuildingID  string  `json:"building_id"`
	Description *string `json:"description"`
	PosX        int     `json:"pos_x"`
	PosY        int     `json:"pos_y"`
	Kind        string  `json:"kind"`
}

func (r deskRequest) toInput() application.DeskInput {
	return application.DeskInput{
		BuildingID:  strings.TrimSpace(r.BuildingID),
		Description: r.Description,
		PosX:        r.PosX,
		PosY:        r.PosY,
		Kind:        application.DeskKind(strings.TrimSpace(r.Kind)),
	}
}

type maintenanceRequest struct {
	InMaintenance bool    `json:"in_maintenance"`
	Reason        *string `json:"reason"`
}

type deskResponse struct {
	Desk deskDTO `json:"desk"`
}

type listDesksResponse struct {
	Desks []deskDTO `json:"desks"`
}

type deskDTO struct {
	ID                string  `json:"id"`
	BuildingID        string  `json:"building_id"`
	Description       *string `json:"description,omitempty"`
	PosX              int     `json:"pos_x"`
	PosY              int     `json:"pos_y"`
	Kind              string  `json:"kind"`
	InMaintenance     bool    `json:"in_maintenance"`
	MaintenanceReason *string `json:"maintenance_reason,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toDeskDTO(desk application.Desk) deskDTO {
	return deskDTO{
		ID:                desk.ID,
		BuildingID:        desk.BuildingID,
		Description:       desk.Description,
		PosX:              desk.PosX,
		PosY:              desk.PosY,
		Kind:              string(desk.Kind),
		InMaintenance:     desk.InMaintenance,
		MaintenanceReason: desk.MaintenanceReason,
		CreatedAt:         desk.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:         desk.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toDeskDTOs(desks []application.Desk) []deskDTO {
	if len(desks) == 0 {
		return nil
	}
	out := make([]deskDTO, 0, len(desks))
	for _, desk := range desks {
		out = append(out, toDeskDTO(desk))
	}
	return out
}
