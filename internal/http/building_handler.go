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

type buildingService interface {
	CreateBuilding(ctx context.Context, input application.BuildingInput) (application.Building, error)
	GetBuilding(ctx context.Context, id string) (application.Building, error)
	UpdateBuilding(ctx context.Context, id string, input application.BuildingInput) (application.Building, error)
	DeleteBuilding(ctx context.Context, id string) error
	ListBuildings(ctx context.Context) ([]application.Building, error)
	ReplaceOperatingHours(ctx context.Context, buildingID string, entries []application.OperatingHoursInput) error
	ListOperatingHours(ctx context.Context, buildingID string) ([]application.OperatingHours, error)
}

type BuildingHandler struct {
	service   buildingService
	responder responder
	logger    *slog.Logger
}

func NewBuildingHandler(service buildingService, logger *slog.Logger) *BuildingHandler {
	base := defaultLogger(logger)
	return &BuildingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BuildingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BuildingHandler", operation, attrs...)
}

func (h *BuildingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req buildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode building request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	building, err := h.service.CreateBuilding(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "building creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("building_id", building.ID).InfoContext(r.Context(), "building created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, buildingResponse{Building: toBuildingDTO(building)})
}

func (h *BuildingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	building, err := h.service.GetBuilding(r.Context(), buildingID)
	if err != nil {
		h.log(r.Context(), "Get", "building_id", buildingID).ErrorContext(r.Context(), "building fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, buildingResponse{Building: toBuildingDTO(building)})
}

func (h *BuildingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	var req buildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "building_id", buildingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode building update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "building_id", buildingID)

	building, err := h.service.UpdateBuilding(r.Context(), buildingID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "building update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "building updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, buildingResponse{Building: toBuildingDTO(building)})
}

func (h *BuildingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	logger := h.log(r.Context(), "Delete", "building_id", buildingID)

	if err := h.service.DeleteBuilding(r.Context(), buildingID); err != nil {
		logger.ErrorContext(r.Context(), "building delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "building deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	buildings, err := h.service.ListBuildings(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "building list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(buildings)).InfoContext(r.Context(), "buildings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBuildingsResponse{Buildings: toBuildingDTOs(buildings)})
}

func (h *BuildingHandler) ReplaceHours(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	var req operatingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ReplaceHours", "building_id", buildingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode operating hours", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ReplaceHours", "building_id", buildingID)

	if err := h.service.ReplaceOperatingHours(r.Context(), buildingID, req.toInputs()); err != nil {
		logger.ErrorContext(r.Context(), "operating hours update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "operating hours replaced")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BuildingHandler) ListHours(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buildingID, ok := BuildingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(buildingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBuildingID)
		return
	}

	hours, err := h.service.ListOperatingHours(r.Context(), buildingID)
	if err != nil {
		h.log(r.Context(), "ListHours", "building_id", buildingID).ErrorContext(r.Context(), "operating hours fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, operatingHoursResponse{Hours: toHoursDTOs(hours)})
}

type buildingRequest struct {
	Name        string `json:"name"`
	FloorWidth  int    `json:"floor_width"`
	FloorHeight int    `json:"floor_height"`
}

func (r buildingRequest) toInput() application.BuildingInput {
	return application.BuildingInput{
		Name:        strings.TrimSpace(r.Name),
		FloorWidth:  r.FloorWidth,
		FloorHeight: r.FloorHeight,
	}
}

type operatingHoursRequest struct {
	Hours []operatingHoursDTO `json:"hours"`
}

func (r operatingHoursRequest) toInputs() []application.OperatingHoursInput {
	entries := make([]application.OperatingHoursInput, 0, len(r.Hours))
	for _, dto := range r.Hours {
		entries = append(entries, application.OperatingHoursInput{
			Weekday:  time.Weekday(dto.Weekday),
			OpensAt:  dto.OpensAt,
			ClosesAt: dto.ClosesAt,
			Closed:   dto.Closed,
		})
	}
	return entries
}

type buildingResponse struct {
	Building buildingDTO `json:"building"`
}

type listBuildingsResponse struct {
	Buildings []buildingDTO `json:"buildings"`
}

type operatingHoursResponse struct {
	Hours []operatingHoursDTO `json:"hours"`
}

type buildingDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FloorWidth  int    `json:"floor_width"`
	FloorHeight int    `json:"floor_height"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type operatingHoursDTO struct {
	Weekday  int  `json:"weekday"`
	OpensAt  int  `json:"opens_at"`
	ClosesAt int  `json:"closes_at"`
	Closed   bool `json:"closed"`
}

func toBuildingDTO(building application.Building) buildingDTO {
	return buildingDTO{
		ID:          building.ID,
		Name:        building.Name,
		FloorWidth:  building.FloorWidth,
		FloorHeight: building.FloorHeight,
		CreatedAt:   building.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   building.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBuildingDTOs(buildings []application.Building) []buildingDTO {
	if len(buildings) == 0 {
		return nil
	}
	out := make([]buildingDTO, 0, len(buildings))
	for _, building := range buildings {
		out = append(out, toBuildingDTO(building))
	}
	return out
}

func toHoursDTOs(hours []application.OperatingHours) []operatingHoursDTO {
	if len(hours) == 0 {
		return nil
	}
	out := make([]operatingHoursDTO, 0, len(hours))
	for _, entry := range hours {
		out = append(out, operatingHoursDTO{
			Weekday:  int(entry.Weekday),
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
			Closed:   entry.Closed,
		})
	}
	return out
}
