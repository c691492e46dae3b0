package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/deskbooker/internal/application"
	"github.com/example/deskbooker/internal/booking"
	"github.com/example/deskbooker/internal/persistence"
)

var (
	buildingCounter    uint64
	deskCounter        uint64
	userCounter        uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Building fixtures ---------------------------

// BuildingFixture represents a deterministic building record that can be
// materialised for application or persistence tests.
type BuildingFixture struct {
	ID          string
	Name        string
	FloorWidth  int
	FloorHeight int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BuildingOption configures the generated building fixture.
type BuildingOption func(*BuildingFixture)

// NewBuildingFixture returns a deterministic building fixture with optional
// overrides.
func NewBuildingFixture(opts ...BuildingOption) BuildingFixture {
	idx := atomic.AddUint64(&buildingCounter, 1)
	id := fmt.Sprintf("building-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := BuildingFixture{
		ID:          id,
		Name:        fmt.Sprintf("Building %03d", idx),
		FloorWidth:  20,
		FloorHeight: 12,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBuildingID overrides the generated building ID.
func WithBuildingID(id string) BuildingOption {
	return func(f *BuildingFixture) {
		f.ID = id
	}
}

// WithBuildingName overrides the generated building name.
func WithBuildingName(name string) BuildingOption {
	return func(f *BuildingFixture) {
		f.Name = name
	}
}

// WithBuildingFloor sets the floor-plan dimensions.
func WithBuildingFloor(width, height int) BuildingOption {
	return func(f *BuildingFixture) {
		f.FloorWidth = width
		f.FloorHeight = height
	}
}

// WithBuildingTimestamps sets both created and updated timestamps.
func WithBuildingTimestamps(created, updated time.Time) BuildingOption {
	return func(f *BuildingFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Building value.
func (f BuildingFixture) Application() application.Building {
	return application.Building{
		ID:          f.ID,
		Name:        f.Name,
		FloorWidth:  f.FloorWidth,
		FloorHeight: f.FloorHeight,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Building value.
func (f BuildingFixture) Persistence() persistence.Building {
	return persistence.Building{
		ID:          f.ID,
		Name:        f.Name,
		FloorWidth:  f.FloorWidth,
		FloorHeight: f.FloorHeight,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BuildingInput.
func (f BuildingFixture) Input() application.BuildingInput {
	return application.BuildingInput{
		Name:        f.Name,
		FloorWidth:  f.FloorWidth,
		FloorHeight: f.FloorHeight,
	}
}

// ----------------------------- Desk fixtures -----------------------------

// DeskFixture represents a deterministic desk record.
type DeskFixture struct {
	ID                string
	BuildingID        string
	Description       *string
	PosX              int
	PosY              int
	Kind              application.DeskKind
	InMaintenance     bool
	MaintenanceReason *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeskOption configures the generated desk fixture.
type DeskOption func(*DeskFixture)

// NewDeskFixture returns a deterministic desk fixture with optional overrides.
func NewDeskFixture(opts ...DeskOption) DeskFixture {
	idx := atomic.AddUint64(&deskCounter, 1)
	id := fmt.Sprintf("desk-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := DeskFixture{
		ID:         id,
		BuildingID: fmt.Sprintf("building-%03d", idx),
		PosX:       int(idx % 10),
		PosY:       int(idx % 6),
		Kind:       application.DeskKindDesk,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDeskID overrides the generated desk ID.
func WithDeskID(id string) DeskOption {
	return func(f *DeskFixture) {
		f.ID = id
	}
}

// WithDeskBuildingID sets the owning building.
func WithDeskBuildingID(id string) DeskOption {
	return func(f *DeskFixture) {
		f.BuildingID = id
	}
}

// WithDeskDescription sets the free-form description on the fixture.
func WithDeskDescription(description string) DeskOption {
	return func(f *DeskFixture) {
		value := description
		f.Description = &value
	}
}

// WithDeskPosition sets the floor-plan coordinates.
func WithDeskPosition(x, y int) DeskOption {
	return func(f *DeskFixture) {
		f.PosX = x
		f.PosY = y
	}
}

// WithDeskKind overrides the desk kind.
func WithDeskKind(kind application.DeskKind) DeskOption {
	return func(f *DeskFixture) {
		f.Kind = kind
	}
}

// WithDeskMaintenance marks the desk as under maintenance.
func WithDeskMaintenance(reason string) DeskOption {
	return func(f *DeskFixture) {
		f.InMaintenance = true
		value := reason
		f.MaintenanceReason = &value
	}
}

// WithDeskTimestamps sets both created and updated timestamps.
func WithDeskTimestamps(created, updated time.Time) DeskOption {
	return func(f *DeskFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Desk value.
func (f DeskFixture) Application() application.Desk {
	return application.Desk{
		ID:                f.ID,
		BuildingID:        f.BuildingID,
		Description:       copyStringPtr(f.Description),
		PosX:              f.PosX,
		PosY:              f.PosY,
		Kind:              f.Kind,
		InMaintenance:     f.InMaintenance,
		MaintenanceReason: copyStringPtr(f.MaintenanceReason),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Desk value.
func (f DeskFixture) Persistence() persistence.Desk {
	return persistence.Desk{
		ID:                f.ID,
		BuildingID:        f.BuildingID,
		Description:       copyStringPtr(f.Description),
		PosX:              f.PosX,
		PosY:              f.PosY,
		Kind:              string(f.Kind),
		InMaintenance:     f.InMaintenance,
		MaintenanceReason: copyStringPtr(f.MaintenanceReason),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Input returns the fixture as an application.DeskInput.
func (f DeskFixture) Input() application.DeskInput {
	return application.DeskInput{
		BuildingID:  f.BuildingID,
		Description: copyStringPtr(f.Description),
		PosX:        f.PosX,
		PosY:        f.PosY,
		Kind:        f.Kind,
	}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record.
type UserFixture struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("Name%03d", idx),
		Surname:      fmt.Sprintf("Surname%03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName sets the given name and surname.
func WithUserName(name, surname string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
		f.Surname = surname
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserTimestamps sets both created and updated timestamps.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Name:      f.Name,
		Surname:   f.Surname,
		Email:     f.Email,
		IsAdmin:   f.IsAdmin,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Surname:      f.Surname,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		ID:      f.ID,
		Name:    f.Name,
		Surname: f.Surname,
		Email:   f.Email,
		IsAdmin: f.IsAdmin,
	}
}

// -------------------------- Reservation fixtures -------------------------

// ReservationFixture represents a deterministic reservation ledger row.
type ReservationFixture struct {
	ID          string
	UserID      string
	DeskID      string
	Day         time.Time
	Status      booking.Status
	GroupID     string
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. The day defaults to the calendar date after the
// reference time so the row reads as upcoming.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	fixture := ReservationFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		DeskID:    fmt.Sprintf("desk-%03d", idx),
		Day:       booking.DateOf(referenceTime).AddDate(0, 0, 1),
		Status:    booking.StatusActive,
		GroupID:   fmt.Sprintf("group-%03d", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationUserID sets the holding user.
func WithReservationUserID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = id
	}
}

// WithReservationDeskID sets the reserved desk.
func WithReservationDeskID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.DeskID = id
	}
}

// WithReservationDay sets the reserved calendar date, normalising it to a UTC
// midnight.
func WithReservationDay(day time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Day = booking.DateOf(day)
	}
}

// WithReservationStatus overrides the reservation status.
func WithReservationStatus(status booking.Status) ReservationOption {
	return func(f *ReservationFixture) {
		f.Status = status
	}
}

// WithReservationGroupID sets the booking group identifier.
func WithReservationGroupID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.GroupID = id
	}
}

// WithoutReservationGroup clears the group identifier, producing a legacy row.
func WithoutReservationGroup() ReservationOption {
	return func(f *ReservationFixture) {
		f.GroupID = ""
	}
}

// WithReservationCreatedAt sets the created timestamp.
func WithReservationCreatedAt(t time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.CreatedAt = t
	}
}

// WithReservationCancelledAt sets the cancellation timestamp and flips the
// status to cancelled.
func WithReservationCancelledAt(t time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		cancelled := t
		f.CancelledAt = &cancelled
		f.Status = booking.StatusCancelled
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:          f.ID,
		UserID:      f.UserID,
		DeskID:      f.DeskID,
		Day:         f.Day,
		Status:      f.Status,
		GroupID:     f.GroupID,
		CreatedAt:   f.CreatedAt,
		CancelledAt: copyTimePtr(f.CancelledAt),
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	var groupID *string
	if f.GroupID != "" {
		id := f.GroupID
		groupID = &id
	}
	return persistence.Reservation{
		ID:          f.ID,
		UserID:      f.UserID,
		DeskID:      f.DeskID,
		Day:         f.Day,
		Status:      string(f.Status),
		GroupID:     groupID,
		CreatedAt:   f.CreatedAt,
		CancelledAt: copyTimePtr(f.CancelledAt),
	}
}

// Rule returns the fixture as a booking.Reservation for rule evaluation.
func (f ReservationFixture) Rule() booking.Reservation {
	return booking.Reservation{
		ID:      f.ID,
		UserID:  f.UserID,
		DeskID:  f.DeskID,
		Day:     f.Day,
		Status:  f.Status,
		GroupID: f.GroupID,
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
