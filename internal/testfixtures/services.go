package testfixtures

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/deskbooker/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Reservations application.ReservationLedger
	Users        application.UserDirectory
	Desks        application.DeskCatalog
	Limits       application.Limits
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults. A zero Limits value falls back to the
// standard quotas.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	limits := deps.Limits
	if limits == (application.Limits{}) {
		limits = application.DefaultLimits()
	}
	return application.NewBookingServiceWithLogger(
		deps.Reservations,
		deps.Users,
		deps.Desks,
		limits,
		idGen,
		now,
		deps.Logger,
	)
}

// BuildingServiceDeps captures dependencies for constructing a building
// service.
type BuildingServiceDeps struct {
	Buildings   application.BuildingRepository
	Calendars   interface{ InvalidateClosedDays(buildingID string) }
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBuildingService builds a building service using the supplied
// dependencies.
func (f *ServiceFactory) NewBuildingService(deps BuildingServiceDeps) *application.BuildingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBuildingServiceWithLogger(
		deps.Buildings,
		deps.Calendars,
		idGen,
		now,
		deps.Logger,
	)
}

// DeskServiceDeps captures dependencies for constructing a desk service.
type DeskServiceDeps struct {
	Desks     application.DeskRepository
	Buildings interface {
		GetBuilding(ctx context.Context, id string) (application.Building, error)
	}
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewDeskService builds a desk service using the supplied dependencies.
func (f *ServiceFactory) NewDeskService(deps DeskServiceDeps) *application.DeskService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewDeskServiceWithLogger(
		deps.Desks,
		deps.Buildings,
		idGen,
		now,
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserServiceWithLogger(
		deps.Users,
		idGen,
		now,
		deps.Logger,
	)
}
