package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Bookings     *BookingHandler
	Availability *AvailabilityHandler
	Views        *ViewHandler
	Buildings    *BuildingHandler
	Desks        *DeskHandler
	Users        *UserHandler
	Admin        *AdminHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Bookings != nil {
		mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Bookings.Create(w, r)
		})
		mux.HandleFunc("/bookings/cancel-day", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Bookings.CancelDay(w, r)
		})
		mux.HandleFunc("/bookings/cancel-group", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Bookings.CancelGroupByDesk(w, r)
		})
		mux.HandleFunc("/bookings/groups/", func(w http.ResponseWriter, r *http.Request) {
			groupID := strings.TrimPrefix(r.URL.Path, "/bookings/groups/")
			if groupID == "" || strings.Contains(groupID, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			r = r.WithContext(ContextWithGroupID(r.Context(), groupID))
			cfg.Bookings.CancelGroup(w, r)
		})
	}

	if cfg.Buildings != nil {
		mux.HandleFunc("/buildings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Buildings.List(w, r)
			case http.MethodPost:
				cfg.Buildings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/buildings/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/buildings/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithBuildingID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Buildings.Get(w, r)
				case http.MethodPut:
					cfg.Buildings.Update(w, r)
				case http.MethodDelete:
					cfg.Buildings.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "hours":
				switch r.Method {
				case http.MethodGet:
					cfg.Buildings.ListHours(w, r)
				case http.MethodPut:
					cfg.Buildings.ReplaceHours(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			case "availability":
				if cfg.Availability == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Availability.AvailableDesks(w, r)
			case "closed-days":
				if cfg.Availability == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Availability.ClosedDays(w, r)
			case "desks":
				if cfg.Desks == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Desks.ListForBuilding(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Desks != nil {
		mux.HandleFunc("/desks", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Desks.Create(w, r)
		})
		mux.HandleFunc("/desks/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/desks/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithDeskID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Desks.Get(w, r)
				case http.MethodPut:
					cfg.Desks.Update(w, r)
				case http.MethodDelete:
					cfg.Desks.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "maintenance":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Desks.SetMaintenance(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/users/")
			id, sub, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithUserID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Users.Get(w, r)
				case http.MethodPut:
					cfg.Users.Update(w, r)
				case http.MethodDelete:
					cfg.Users.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "reservations/upcoming":
				if cfg.Views == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Views.Upcoming(w, r)
			case "reservations/history":
				if cfg.Views == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Views.History(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Admin != nil {
		mux.Handle("/admin/", cfg.Admin)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
