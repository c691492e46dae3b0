// Package http provides HTTP handlers and middleware for the desk booking API.
//
// The router exposes the following endpoints:
//   - POST /bookings: creates a multi-date reservation group. Body:
//     {"user_id","desk_id","dates":["2006-01-02",...]}. Responds 201 with
//     {"group_id","reservations":[...]} or a structured rejection carrying
//     `error_code` and `message`.
//   - POST /bookings/cancel-day: cancels one reservation identified by
//     {"desk_id","date","user_id"}. POST /bookings/cancel-group cancels the
//     whole group reachable through the same triple. DELETE
//     /bookings/groups/{id}?user_id= cancels a group by its identifier.
//   - GET /buildings/{id}/availability?date= (or ?from=&to=): lists desks free
//     on every date of the range. GET /buildings/{id}/closed-days lists the
//     weekdays the building is closed on.
//   - GET /users/{id}/reservations/upcoming and .../history: grouped upcoming
//     reservations and the cancelled/completed history.
//   - CRUD endpoints for /buildings (incl. /buildings/{id}/hours and
//     /buildings/{id}/desks), /desks (incl. /desks/{id}/maintenance), and
//     /users, with the same surface mirrored under /admin/{entity}.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
