package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// adminResource is the per-entity CRUD surface the admin dispatcher fans out
// to. Identifiers travel through the request context, so the regular handlers
// satisfy this interface unchanged.
type adminResource interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// adminLister is implemented by resources that expose a collection listing.
type adminLister interface {
	List(w http.ResponseWriter, r *http.Request)
}

type adminEntity struct {
	resource adminResource
	withID   func(context.Context, string) context.Context
}

// AdminHandler mirrors the entity CRUD endpoints under /admin/{entity} as one
// dispatch surface over a closed set of entities.
type AdminHandler struct {
	entities  map[string]adminEntity
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(buildings *BuildingHandler, desks *DeskHandler, users *UserHandler, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	entities := make(map[string]adminEntity, 3)
	if buildings != nil {
		entities["buildings"] = adminEntity{resource: buildings, withID: ContextWithBuildingID}
	}
	if desks != nil {
		entities["desks"] = adminEntity{resource: desks, withID: ContextWithDeskID}
	}
	if users != nil {
		entities["users"] = adminEntity{resource: users, withID: ContextWithUserID}
	}
	return &AdminHandler{entities: entities, responder: newResponder(base), logger: base}
}

// ServeHTTP dispatches /admin/{entity} and /admin/{entity}/{id} requests.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/admin/")
	name, id, _ := strings.Cut(rest, "/")
	entity, ok := h.entities[name]
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}

	if id == "" {
		switch r.Method {
		case http.MethodPost:
			entity.resource.Create(w, r)
		case http.MethodGet:
			lister, ok := entity.resource.(adminLister)
			if !ok {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			lister.List(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}

	r = r.WithContext(entity.withID(r.Context(), id))
	switch r.Method {
	case http.MethodGet:
		entity.resource.Get(w, r)
	case http.MethodPut:
		entity.resource.Update(w, r)
	case http.MethodDelete:
		entity.resource.Delete(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
