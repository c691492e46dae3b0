package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/deskbooker/internal/application"
	"github.com/example/deskbooker/internal/booking"
)

type bookingServiceStub struct {
	confirmation application.BookingConfirmation
	err          error
	cancelErr    error
	lastCreate   application.CreateBookingParams
	lastGroup    application.CancelGroupParams
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.BookingConfirmation, error) {
	s.lastCreate = params
	if s.err != nil {
		return application.BookingConfirmation{}, s.err
	}
	return s.confirmation, nil
}

func (s *bookingServiceStub) CancelDay(ctx context.Context, params application.CancelDayParams) error {
	return s.cancelErr
}

func (s *bookingServiceStub) CancelGroup(ctx context.Context, params application.CancelGroupParams) error {
	s.lastGroup = params
	return s.cancelErr
}

func (s *bookingServiceStub) CancelGroupByDesk(ctx context.Context, params application.CancelGroupByDeskParams) error {
	return s.cancelErr
}

type availabilityServiceStub struct {
	desks    []application.Desk
	weekdays []time.Weekday
	err      error
}

func (s *availabilityServiceStub) AvailableDesks(ctx context.Context, buildingID string, from, to time.Time) ([]application.Desk, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.desks, nil
}

func (s *availabilityServiceStub) ClosedWeekdays(ctx context.Context, buildingID string) ([]time.Weekday, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.weekdays, nil
}

type viewServiceStub struct {
	groups  []application.ReservationGroupView
	history []application.ReservationView
	err     error
}

func (s *viewServiceStub) UpcomingGroups(ctx context.Context, userID string) ([]application.ReservationGroupView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.groups, nil
}

func (s *viewServiceStub) History(ctx context.Context, userID string) ([]application.ReservationView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func newBookingRouter(bookings *bookingServiceStub) http.Handler {
	return NewRouter(RouterConfig{Bookings: NewBookingHandler(bookings, nil)})
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestBookingHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the confirmation", func(t *testing.T) {
		t.Parallel()

		created := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
		stub := &bookingServiceStub{confirmation: application.BookingConfirmation{
			GroupID: "group-1",
			Reservations: []application.Reservation{
				{ID: "r-1", UserID: "user-1", DeskID: "desk-1", Day: time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), Status: booking.StatusActive, GroupID: "group-1", CreatedAt: created},
			},
		}}
		router := newBookingRouter(stub)

		body := `{"user_id":"user-1","desk_id":"desk-1","dates":["2026-03-11"]}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp bookingResponse
		decodeBody(t, recorder, &resp)
		if resp.GroupID != "group-1" || len(resp.Reservations) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if resp.Reservations[0].Date != "2026-03-11" {
			t.Fatalf("unexpected date encoding: %q", resp.Reservations[0].Date)
		}
		if len(stub.lastCreate.Dates) != 1 {
			t.Fatalf("expected 1 parsed date, got %d", len(stub.lastCreate.Dates))
		}
	})

	t.Run("conflict rejections map to 409 with an error code", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{err: &application.BookingError{
			Reason:  application.ReasonDeskConflict,
			Message: "this desk is already booked for 2026-03-11",
		}}
		router := newBookingRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"user_id":"u","desk_id":"d","dates":["2026-03-11"]}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
		var resp errorResponse
		decodeBody(t, recorder, &resp)
		if resp.ErrorCode != "desk_conflict" {
			t.Fatalf("expected desk_conflict error code, got %q", resp.ErrorCode)
		}
	})

	t.Run("quota rejections map to 422", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{err: &application.BookingError{
			Reason:  application.ReasonExceedsBookingSize,
			Message: "a booking may not request more than 7 dates",
		}}
		router := newBookingRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"user_id":"u","desk_id":"d","dates":["2026-03-11"]}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
	})

	t.Run("malformed dates are rejected before the service", func(t *testing.T) {
		t.Parallel()

		router := newBookingRouter(&bookingServiceStub{})

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"user_id":"u","desk_id":"d","dates":["11-03-2026"]}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("cancel-day maps missing reservations to 404", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{cancelErr: application.ErrNotFound}
		router := newBookingRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/bookings/cancel-day", strings.NewReader(`{"desk_id":"d","date":"2026-03-11","user_id":"u"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("group delete resolves the path and query", func(t *testing.T) {
		t.Parallel()

		stub := &bookingServiceStub{}
		router := newBookingRouter(stub)

		req := httptest.NewRequest(http.MethodDelete, "/bookings/groups/group-7?user_id=user-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if stub.lastGroup.GroupID != "group-7" || stub.lastGroup.UserID != "user-1" {
			t.Fatalf("unexpected cancel params: %+v", stub.lastGroup)
		}
	})

	t.Run("group delete without user id is a bad request", func(t *testing.T) {
		t.Parallel()

		router := newBookingRouter(&bookingServiceStub{})

		req := httptest.NewRequest(http.MethodDelete, "/bookings/groups/group-7", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestAvailabilityHandlers(t *testing.T) {
	t.Parallel()

	t.Run("single date collapses to a one-day range", func(t *testing.T) {
		t.Parallel()

		stub := &availabilityServiceStub{desks: []application.Desk{{ID: "desk-1", BuildingID: "b-1"}}}
		router := NewRouter(RouterConfig{
			Buildings:    NewBuildingHandler(buildingServiceNop{}, nil),
			Availability: NewAvailabilityHandler(stub, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/buildings/b-1/availability?date=2026-03-11", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp listDesksResponse
		decodeBody(t, recorder, &resp)
		if len(resp.Desks) != 1 || resp.Desks[0].ID != "desk-1" {
			t.Fatalf("unexpected desks: %+v", resp.Desks)
		}
	})

	t.Run("missing range parameters are rejected", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{
			Buildings:    NewBuildingHandler(buildingServiceNop{}, nil),
			Availability: NewAvailabilityHandler(&availabilityServiceStub{}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/buildings/b-1/availability", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("closed days serialize weekday names", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{
			Buildings:    NewBuildingHandler(buildingServiceNop{}, nil),
			Availability: NewAvailabilityHandler(&availabilityServiceStub{weekdays: []time.Weekday{time.Saturday, time.Sunday}}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/buildings/b-1/closed-days", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var resp closedDaysResponse
		decodeBody(t, recorder, &resp)
		if len(resp.Weekdays) != 2 || resp.Weekdays[0] != "Saturday" {
			t.Fatalf("unexpected weekdays: %v", resp.Weekdays)
		}
	})

	t.Run("desks are listed for the range", func(t *testing.T) {
		t.Parallel()

		stub := &availabilityServiceStub{desks: []application.Desk{{ID: "desk-1", BuildingID: "b-1"}, {ID: "desk-2", BuildingID: "b-1"}}}
		router := NewRouter(RouterConfig{
			Buildings:    NewBuildingHandler(buildingServiceNop{}, nil),
			Availability: NewAvailabilityHandler(stub, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/buildings/b-1/availability?from=2026-03-11&to=2026-03-13", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp listDesksResponse
		decodeBody(t, recorder, &resp)
		if len(resp.Desks) != 2 {
			t.Fatalf("expected 2 desks, got %d", len(resp.Desks))
		}
	})
}

func TestViewHandlers(t *testing.T) {
	t.Parallel()

	t.Run("upcoming groups are served per user", func(t *testing.T) {
		t.Parallel()

		stub := &viewServiceStub{groups: []application.ReservationGroupView{{
			GroupID:        "group-1",
			DeskID:         "desk-1",
			BuildingName:   "HQ",
			Dates:          []time.Time{time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)},
			Count:          1,
			DaysUntilStart: 1,
		}}}
		router := NewRouter(RouterConfig{
			Users: NewUserHandler(userServiceNop{}, nil),
			Views: NewViewHandler(stub, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/users/user-1/reservations/upcoming", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp upcomingResponse
		decodeBody(t, recorder, &resp)
		if len(resp.Groups) != 1 || resp.Groups[0].GroupID != "group-1" {
			t.Fatalf("unexpected groups: %+v", resp.Groups)
		}
	})

	t.Run("unknown users map to 404", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{
			Users: NewUserHandler(userServiceNop{}, nil),
			Views: NewViewHandler(&viewServiceStub{err: application.ErrNotFound}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/users/ghost/reservations/history", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestAdminDispatch(t *testing.T) {
	t.Parallel()

	t.Run("routes entity collections and ids", func(t *testing.T) {
		t.Parallel()

		users := NewUserHandler(userServiceNop{}, nil)
		admin := NewAdminHandler(nil, nil, users, nil)
		router := NewRouter(RouterConfig{Admin: admin})

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for /admin/users, got %d", recorder.Code)
		}

		req = httptest.NewRequest(http.MethodDelete, "/admin/users/user-1", nil)
		recorder = httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for delete, got %d", recorder.Code)
		}
	})

	t.Run("unknown entities are not found", func(t *testing.T) {
		t.Parallel()

		admin := NewAdminHandler(nil, nil, NewUserHandler(userServiceNop{}, nil), nil)
		router := NewRouter(RouterConfig{Admin: admin})

		req := httptest.NewRequest(http.MethodGet, "/admin/widgets", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

// buildingServiceNop satisfies the building surface for routes that only need
// the path registered.
type buildingServiceNop struct{}

func (buildingServiceNop) CreateBuilding(ctx context.Context, input application.BuildingInput) (application.Building, error) {
	return application.Building{}, nil
}

func (buildingServiceNop) GetBuilding(ctx context.Context, id string) (application.Building, error) {
	return application.Building{ID: id}, nil
}

func (buildingServiceNop) UpdateBuilding(ctx context.Context, id string, input application.BuildingInput) (application.Building, error) {
	return application.Building{ID: id}, nil
}

func (buildingServiceNop) DeleteBuilding(ctx context.Context, id string) error { return nil }

func (buildingServiceNop) ListBuildings(ctx context.Context) ([]application.Building, error) {
	return nil, nil
}

func (buildingServiceNop) ReplaceOperatingHours(ctx context.Context, buildingID string, entries []application.OperatingHoursInput) error {
	return nil
}

func (buildingServiceNop) ListOperatingHours(ctx context.Context, buildingID string) ([]application.OperatingHours, error) {
	return nil, nil
}

type userServiceNop struct{}

func (userServiceNop) CreateUser(ctx context.Context, input application.UserInput) (application.User, error) {
	return application.User{}, nil
}

func (userServiceNop) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{ID: id}, nil
}

func (userServiceNop) UpdateUser(ctx context.Context, id string, input application.UserInput) (application.User, error) {
	return application.User{ID: id}, nil
}

func (userServiceNop) DeleteUser(ctx context.Context, id string) error { return nil }

func (userServiceNop) ListUsers(ctx context.Context) ([]application.User, error) { return nil, nil }
