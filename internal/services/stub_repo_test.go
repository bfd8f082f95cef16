package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRepo satisfies repositories.Repository for service tests. Transactions
// run against the same stub, and any method a test did not stub panics
// through the embedded nil interface.
type stubRepo struct {
	repositories.Repository
	event         *stubEventRepo
	registration  *stubRegistrationRepo
	ticket        *stubTicketRepo
	user          *stubUserRepo
	feedback      *stubFeedbackRepo
	passwordReset *stubResetRepo
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		event:         &stubEventRepo{byID: map[uint]*models.Event{}},
		registration:  &stubRegistrationRepo{byID: map[uint]*models.Registration{}},
		ticket:        &stubTicketRepo{byTicketID: map[string]*models.Ticket{}},
		user:          &stubUserRepo{byID: map[string]*models.User{}, admins: map[string]bool{}},
		feedback:      &stubFeedbackRepo{},
		passwordReset: &stubResetRepo{},
	}
}

func (r *stubRepo) Event() repositories.EventRepository               { return r.event }
func (r *stubRepo) Registration() repositories.RegistrationRepository { return r.registration }
func (r *stubRepo) Ticket() repositories.TicketRepository             { return r.ticket }
func (r *stubRepo) User() repositories.UserRepository                 { return r.user }
func (r *stubRepo) Feedback() repositories.FeedbackRepository         { return r.feedback }
func (r *stubRepo) PasswordReset() repositories.PasswordResetRepository {
	return r.passwordReset
}

func (r *stubRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

type stubEventRepo struct {
	repositories.EventRepository
	byID        map[uint]*models.Event
	byOrganizer []*models.Event

	decrementOK bool
	decrements  []int
	closedIDs   []uint
	deletedIDs  []uint
}

func (r *stubEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	event, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return event, nil
}

func (r *stubEventRepo) GetByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	return r.byOrganizer, int64(len(r.byOrganizer)), nil
}

func (r *stubEventRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.EventStatus) error {
	r.closedIDs = append(r.closedIDs, id)
	return nil
}

func (r *stubEventRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *stubEventRepo) DecrementStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) (bool, error) {
	r.decrements = append(r.decrements, quantity)
	return r.decrementOK, nil
}

type stubRegistrationRepo struct {
	repositories.RegistrationRepository
	byID          map[uint]*models.Registration
	byParticipant []*models.Registration
	byEvent       []*models.Registration
	byEventTotal  int64
	active        *models.Registration

	created       []*models.Registration
	updated       []*models.Registration
	deletedEvents []uint

	bulkFlips int64
	bulkTo    models.RegistrationStatus
}

func (r *stubRegistrationRepo) Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	registration.ID = uint(len(r.created) + 1)
	r.created = append(r.created, registration)
	return nil
}

func (r *stubRegistrationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	registration, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return registration, nil
}

func (r *stubRegistrationRepo) Update(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	r.updated = append(r.updated, registration)
	return nil
}

func (r *stubRegistrationRepo) GetByParticipant(ctx context.Context, tx *gorm.DB, participantID string, filters repositories.RegistrationFilters) ([]*models.Registration, int64, error) {
	return r.byParticipant, int64(len(r.byParticipant)), nil
}

func (r *stubRegistrationRepo) GetByEvent(ctx context.Context, tx *gorm.DB, eventID uint, filters repositories.RegistrationFilters) ([]*models.Registration, int64, error) {
	return r.byEvent, r.byEventTotal, nil
}

func (r *stubRegistrationRepo) GetActiveByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Registration, error) {
	if r.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.active, nil
}

func (r *stubRegistrationRepo) CountActiveByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	return int64(len(r.created)), nil
}

func (r *stubRegistrationRepo) SumQuantityByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (int, error) {
	return 0, nil
}

func (r *stubRegistrationRepo) BulkUpdateStatusByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string, from []models.RegistrationStatus, to models.RegistrationStatus) (int64, error) {
	r.bulkTo = to
	return r.bulkFlips, nil
}

func (r *stubRegistrationRepo) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	r.deletedEvents = append(r.deletedEvents, eventID)
	return nil
}

type stubTicketRepo struct {
	repositories.TicketRepository
	byTicketID map[string]*models.Ticket

	created       []*models.Ticket
	deletedEvents []uint

	markUsedOK bool
}

func (r *stubTicketRepo) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	ticket.ID = uint(len(r.created) + 1)
	r.created = append(r.created, ticket)
	return nil
}

func (r *stubTicketRepo) GetByTicketID(ctx context.Context, tx *gorm.DB, ticketID string) (*models.Ticket, error) {
	ticket, ok := r.byTicketID[ticketID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ticket, nil
}

func (r *stubTicketRepo) MarkUsed(ctx context.Context, tx *gorm.DB, ticketID string, usedAt time.Time, auditLog datatypes.JSON) (bool, error) {
	return r.markUsedOK, nil
}

func (r *stubTicketRepo) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	r.deletedEvents = append(r.deletedEvents, eventID)
	return nil
}

type stubUserRepo struct {
	repositories.UserRepository
	byID   map[string]*models.User
	admins map[string]bool

	deletedIDs      []string
	prunedFollowIDs []string
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	if role == models.RoleAdmin {
		return r.admins[id], nil
	}
	user, ok := r.byID[id]
	return ok && user.Role == role, nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) error {
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *stubUserRepo) RemoveFollowedOrganizer(ctx context.Context, organizerID string) error {
	r.prunedFollowIDs = append(r.prunedFollowIDs, organizerID)
	return nil
}

type stubFeedbackRepo struct {
	repositories.FeedbackRepository
	existing *models.Feedback
	created  []*models.Feedback
}

func (r *stubFeedbackRepo) GetByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Feedback, error) {
	if r.existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.existing, nil
}

func (r *stubFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	r.created = append(r.created, feedback)
	return nil
}

type stubResetRepo struct {
	repositories.PasswordResetRepository
	deletedOrganizers []string
}

func (r *stubResetRepo) DeleteByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string) error {
	r.deletedOrganizers = append(r.deletedOrganizers, organizerID)
	return nil
}
