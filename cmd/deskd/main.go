package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/deskbooker/internal/application"
	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/config"
	httptransport "github.com/example/deskbooker/internal/http"
	"github.com/example/deskbooker/internal/persistence"
	"github.com/example/deskbooker/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	buildings := newBuildingAdapter(sqlite.NewBuildingRepository(pool))
	desks := newDeskAdapter(sqlite.NewDeskRepository(pool))
	users := newUserAdapter(sqlite.NewUserRepository(pool))
	ledger := newLedgerAdapter(sqlite.NewReservationRepository(pool))

	limits := application.DefaultLimits()
	if cfg.HorizonDays > 0 {
		limits.HorizonDays = cfg.HorizonDays
	}
	if cfg.MaxBookingDates > 0 {
		limits.MaxDatesPerRequest = cfg.MaxBookingDates
	}
	if cfg.MaxActivePerUser > 0 {
		limits.MaxActivePerUser = cfg.MaxActivePerUser
	}

	availabilityService := application.NewAvailabilityService(buildings, desks, ledger, now)
	bookingService := application.NewBookingServiceWithLogger(ledger, users, desks, limits, idGenerator, now, logger)
	buildingService := application.NewBuildingServiceWithLogger(buildings, availabilityService, idGenerator, now, logger)
	deskService := application.NewDeskServiceWithLogger(desks, buildings, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(users, idGenerator, now, logger)
	viewService := application.NewViewService(ledger, users, desks, buildings, now)
	expiryService := application.NewExpiryService(ledger, now, application.SweepSchedule{
		Interval:     cfg.SweepInterval,
		DailyAt:      cfg.SweepAt,
		DailyAtSet:   cfg.SweepAtSet,
		InitialDelay: cfg.SweepInitialDelay,
	}, logger)

	go func() {
		if err := expiryService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("expiry sweeper stopped", "error", err)
		}
	}()

	bookingHandler := httptransport.NewBookingHandler(bookingService, logger)
	availabilityHandler := httptransport.NewAvailabilityHandler(availabilityService, logger)
	viewHandler := httptransport.NewViewHandler(viewService, logger)
	buildingHandler := httptransport.NewBuildingHandler(buildingService, logger)
	deskHandler := httptransport.NewDeskHandler(deskService, logger)
	userHandler := httptransport.NewUserHandler(userService, logger)
	adminHandler := httptransport.NewAdminHandler(buildingHandler, deskHandler, userHandler, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:     bookingHandler,
		Availability: availabilityHandler,
		Views:        viewHandler,
		Buildings:    buildingHandler,
		Desks:        deskHandler,
		Users:        userHandler,
		Admin:        adminHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("desk reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// --- building adapter ---

// buildingAdapter bridges the SQLite building repository to the application
// interfaces. The same value serves the building service, the availability
// calendar reads, and desk placement lookups.
type buildingAdapter struct {
	repo persistence.BuildingRepository
}

func newBuildingAdapter(repo persistence.BuildingRepository) *buildingAdapter {
	return &buildingAdapter{repo: repo}
}

func (a *buildingAdapter) CreateBuilding(ctx context.Context, building application.Building) (application.Building, error) {
	if err := a.repo.CreateBuilding(ctx, toPersistenceBuilding(building)); err != nil {
		return application.Building{}, err
	}
	return a.GetBuilding(ctx, building.ID)
}

func (a *buildingAdapter) GetBuilding(ctx context.Context, id string) (application.Building, error) {
	stored, err := a.repo.GetBuilding(ctx, id)
	if err != nil {
		return application.Building{}, err
	}
	return toApplicationBuilding(stored), nil
}

func (a *buildingAdapter) UpdateBuilding(ctx context.Context, building application.Building) (application.Building, error) {
	if err := a.repo.UpdateBuilding(ctx, toPersistenceBuilding(building)); err != nil {
		return application.Building{}, err
	}
	return a.GetBuilding(ctx, building.ID)
}

func (a *buildingAdapter) DeleteBuilding(ctx context.Context, id string) error {
	return a.repo.DeleteBuilding(ctx, id)
}

func (a *buildingAdapter) ListBuildings(ctx context.Context) ([]application.Building, error) {
	models, err := a.repo.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	buildings := make([]application.Building, 0, len(models))
	for _, model := range models {
		buildings = append(buildings, toApplicationBuilding(model))
	}
	return buildings, nil
}

func (a *buildingAdapter) ReplaceOperatingHours(ctx context.Context, buildingID string, hours []application.OperatingHours) error {
	converted := make([]persistence.OperatingHours, 0, len(hours))
	for _, entry := range hours {
		converted = append(converted, persistence.OperatingHours{
			BuildingID: buildingID,
			Weekday:    entry.Weekday,
			OpensAt:    entry.OpensAt,
			ClosesAt:   entry.ClosesAt,
			Closed:     entry.Closed,
		})
	}
	return a.repo.ReplaceOperatingHours(ctx, buildingID, converted)
}

func (a *buildingAdapter) ListOperatingHours(ctx context.Context, buildingID string) ([]application.OperatingHours, error) {
	models, err := a.repo.ListOperatingHours(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	hours := make([]application.OperatingHours, 0, len(models))
	for _, model := range models {
		hours = append(hours, application.OperatingHours{
			BuildingID: model.BuildingID,
			Weekday:    model.Weekday,
			OpensAt:    model.OpensAt,
			ClosesAt:   model.ClosesAt,
			Closed:     model.Closed,
		})
	}
	return hours, nil
}

// --- desk adapter ---

type deskAdapter struct {
	repo persistence.DeskRepository
}

func newDeskAdapter(repo persistence.DeskRepository) *deskAdapter {
	return &deskAdapter{repo: repo}
}

func (a *deskAdapter) CreateDesk(ctx context.Context, desk application.Desk) (application.Desk, error) {
	if err := a.repo.CreateDesk(ctx, toPersistenceDesk(desk)); err != nil {
		return application.Desk{}, err
	}
	return a.GetDesk(ctx, desk.ID)
}

func (a *deskAdapter) GetDesk(ctx context.Context, id string) (application.Desk, error) {
	stored, err := a.repo.GetDesk(ctx, id)
	if err != nil {
		return application.Desk{}, err
	}
	return toApplicationDesk(stored), nil
}

func (a *deskAdapter) UpdateDesk(ctx context.Context, desk application.Desk) (application.Desk, error) {
	if err := a.repo.UpdateDesk(ctx, toPersistenceDesk(desk)); err != nil {
		return application.Desk{}, err
	}
	return a.GetDesk(ctx, desk.ID)
}

func (a *deskAdapter) DeleteDesk(ctx context.Context, id string) error {
	return a.repo.DeleteDesk(ctx, id)
}

func (a *deskAdapter) ListDesksForBuilding(ctx context.Context, buildingID string) ([]application.Desk, error) {
	models, err := a.repo.ListDesksForBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	desks := make([]application.Desk, 0, len(models))
	for _, model := range models {
		desks = append(desks, toApplicationDesk(model))
	}
	return desks, nil
}

func (a *deskAdapter) DeskExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetDesk(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// --- user adapter ---

type userAdapter struct {
	repo persistence.UserRepository
}

func newUserAdapter(repo persistence.UserRepository) *userAdapter {
	return &userAdapter{repo: repo}
}

func (a *userAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userAdapter) UserExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetUser(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// --- reservation ledger adapter ---

// ledgerAdapter bridges the reservation repository to the booking,
// availability, view, and expiry surfaces. Conflict sentinels pass through
// untranslated so the booking service can map them to rejection reasons.
type ledgerAdapter struct {
	repo persistence.ReservationRepository
}

func newLedgerAdapter(repo persistence.ReservationRepository) *ledgerAdapter {
	return &ledgerAdapter{repo: repo}
}

func (a *ledgerAdapter) CreateReservationGroup(ctx context.Context, reservations []application.Reservation) error {
	converted := make([]persistence.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		converted = append(converted, toPersistenceReservation(reservation))
	}
	return a.repo.CreateReservationGroup(ctx, converted)
}

func (a *ledgerAdapter) ListActiveReservationsForDay(ctx context.Context, day time.Time) ([]application.Reservation, error) {
	models, err := a.repo.ListActiveReservationsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *ledgerAdapter) ListReservationsByGroup(ctx context.Context, groupID string) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *ledgerAdapter) ListReservationsForUser(ctx context.Context, userID string) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *ledgerAdapter) FindActiveReservation(ctx context.Context, deskID, userID string, day time.Time) (application.Reservation, error) {
	stored, err := a.repo.FindActiveReservation(ctx, deskID, userID, day)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *ledgerAdapter) CountActiveReservationsForUser(ctx context.Context, userID string) (int, error) {
	return a.repo.CountActiveReservationsForUser(ctx, userID)
}

func (a *ledgerAdapter) ListReservedDeskIDs(ctx context.Context, buildingID string, from, to time.Time) ([]string, error) {
	return a.repo.ListReservedDeskIDs(ctx, buildingID, from, to)
}

func (a *ledgerAdapter) CancelReservations(ctx context.Context, ids []string, cancelledAt time.Time) error {
	return a.repo.CancelReservations(ctx, ids, cancelledAt)
}

func (a *ledgerAdapter) CompleteExpired(ctx context.Context, before time.Time) (int, error) {
	return a.repo.CompleteExpired(ctx, before)
}

// --- model conversions ---

func toPersistenceBuilding(building application.Building) persistence.Building {
	return persistence.Building{
		ID:          building.ID,
		Name:        building.Name,
		FloorWidth:  building.FloorWidth,
		FloorHeight: building.FloorHeight,
		CreatedAt:   building.CreatedAt,
		UpdatedAt:   building.UpdatedAt,
	}
}

func toApplicationBuilding(building persistence.Building) application.Building {
	return application.Building{
		ID:          building.ID,
		Name:        building.Name,
		FloorWidth:  building.FloorWidth,
		FloorHeight: building.FloorHeight,
		CreatedAt:   building.CreatedAt,
		UpdatedAt:   building.UpdatedAt,
	}
}

func toPersistenceDesk(desk application.Desk) persistence.Desk {
	return persistence.Desk{
		ID:                desk.ID,
		BuildingID:        desk.BuildingID,
		Description:       desk.Description,
		PosX:              desk.PosX,
		PosY:              desk.PosY,
		Kind:              string(desk.Kind),
		InMaintenance:     desk.InMaintenance,
		MaintenanceReason: desk.MaintenanceReason,
		CreatedAt:         desk.CreatedAt,
		UpdatedAt:         desk.UpdatedAt,
	}
}

func toApplicationDesk(desk persistence.Desk) application.Desk {
	return application.Desk{
		ID:                desk.ID,
		BuildingID:        desk.BuildingID,
		Description:       desk.Description,
		PosX:              desk.PosX,
		PosY:              desk.PosY,
		Kind:              application.DeskKind(desk.Kind),
		InMaintenance:     desk.InMaintenance,
		MaintenanceReason: desk.MaintenanceReason,
		CreatedAt:         desk.CreatedAt,
		UpdatedAt:         desk.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Name:         user.Name,
		Surname:      user.Surname,
		Email:        user.Email,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:        user.ID,
		Name:      user.Name,
		Surname:   user.Surname,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	var groupID *string
	if reservation.GroupID != "" {
		id := reservation.GroupID
		groupID = &id
	}
	return persistence.Reservation{
		ID:          reservation.ID,
		UserID:      reservation.UserID,
		DeskID:      reservation.DeskID,
		Day:         reservation.Day,
		Status:      string(reservation.Status),
		GroupID:     groupID,
		CreatedAt:   reservation.CreatedAt,
		CancelledAt: reservation.CancelledAt,
	}
}

func toApplicationReservation(reservation persistence.Reservation) application.Reservation {
	var groupID string
	if reservation.GroupID != nil {
		groupID = *reservation.GroupID
	}
	return application.Reservation{
		ID:          reservation.ID,
		UserID:      reservation.UserID,
		DeskID:      reservation.DeskID,
		Day:         reservation.Day,
		Status:      booking.Status(reservation.Status),
		GroupID:     groupID,
		CreatedAt:   reservation.CreatedAt,
		CancelledAt: reservation.CancelledAt,
	}
}

func toApplicationReservations(models []persistence.Reservation) []application.Reservation {
	if len(models) == 0 {
		return nil
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations
}
