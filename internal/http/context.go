package http

import (
	"context"
	"log/slog"

	"github.com/example/deskbooker/internal/logging"
)

type contextKey string

const (
	buildingIDContextKey contextKey = "building_id"
	deskIDContextKey     contextKey = "desk_id"
	userIDContextKey     contextKey = "user_id"
	groupIDContextKey    contextKey = "group_id"
)

// ContextWithBuildingID injects the building identifier resolved from the request path.
func ContextWithBuildingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildingIDContextKey, id)
}

// BuildingIDFromContext extracts a building identifier previously associated with the context.
func BuildingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(buildingIDContextKey).(string)
	return id, ok
}

// ContextWithDeskID injects the desk identifier resolved from the request path.
func ContextWithDeskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deskIDContextKey, id)
}

// DeskIDFromContext extracts a desk identifier previously associated with the context.
func DeskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deskIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithGroupID injects the reservation group identifier resolved from the request path.
func ContextWithGroupID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, groupIDContextKey, id)
}

// GroupIDFromContext extracts a group identifier previously associated with the context.
func GroupIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(groupIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request scoped logger from the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
