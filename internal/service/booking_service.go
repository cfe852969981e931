package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/services-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/services-marketplace/internal/events"
	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/metrics"
	"github.com/ignatzorin/services-marketplace/internal/models"
	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/services-marketplace/internal/repository"
	"github.com/ignatzorin/services-marketplace/internal/validation"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	ListByParty(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
	CountByStatus(ctx context.Context, role valueobject.Role, userID int64) ([]models.StatusCount, error)
	UpdateStatus(ctx context.Context, id int64, expected, next valueobject.BookingStatus, actorID int64) (*models.Booking, error)
}

type WorkerProfileReader interface {
	GetProfile(ctx context.Context, userID int64) (*models.WorkerProfile, error)
}

type BookingEventReader interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]models.BookingEvent, error)
}

type BookingService struct {
	bookings  BookingRepository
	workers   WorkerProfileReader
	history   BookingEventReader
	publisher events.Publisher
}

func NewBookingService(bookings BookingRepository, workers WorkerProfileReader, history BookingEventReader, publisher events.Publisher) *BookingService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &BookingService{bookings: bookings, workers: workers, history: history, publisher: publisher}
}

// CreateBookingInput содержит данные нового бронирования в том виде, как их прислал заказчик.
type CreateBookingInput struct {
	CustomerID  int64
	ActorRole   valueobject.Role
	WorkerID    int64
	ServiceType string
	BookingDate string
	StartTime   string
	EndTime     string
	Description *string
}

// TransitionResult содержит бронирование после смены статуса и статус до неё.
type TransitionResult struct {
	Booking        *models.Booking           `json:"booking"`
	PreviousStatus valueobject.BookingStatus `json:"previous_status"`
}

type BookingList struct {
	Bookings []models.Booking `json:"bookings"`
	Summary  map[string]int   `json:"by_status"`
	Total    int              `json:"total"`
}

// CreateBooking создаёт бронирование в статусе pending.
// Стоимость считается здесь один раз по текущей ставке исполнителя.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.ActorRole != valueobject.RoleCustomer {
		return nil, apperror.ErrCustomerRoleRequired
	}
	if in.WorkerID <= 0 || in.WorkerID == in.CustomerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный исполнитель")
	}

	serviceType, err := valueobject.NewServiceType(in.ServiceType)
	if err != nil {
		return nil, err
	}
	date, err := valueobject.ParseDate(in.BookingDate)
	if err != nil {
		return nil, err
	}
	start, err := valueobject.ParseClockTime(in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := valueobject.ParseClockTime(in.EndTime)
	if err != nil {
		return nil, err
	}
	if !end.After(start.Time) {
		return nil, apperror.New(apperror.ErrCodeValidation, "время окончания должно быть позже времени начала").
			WithDetails(map[string]interface{}{"start_time": start.String(), "end_time": end.String()})
	}
	description, err := validation.OptionalText("описание", in.Description, validation.MaxDescriptionLength)
	if err != nil {
		return nil, err
	}

	worker, err := s.workers.GetProfile(ctx, in.WorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkerNotFound) {
			return nil, apperror.ErrWorkerNotFound
		}
		return nil, apperror.Storage(err)
	}
	if !worker.Availability {
		return nil, apperror.ErrWorkerUnavailable
	}

	fee, err := valueobject.CalculateFee(worker.HourlyRate, start.Time, end.Time)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CustomerID:  in.CustomerID,
		WorkerID:    in.WorkerID,
		ServiceType: serviceType,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		TotalAmount: fee.TotalAmount,
		PlatformFee: fee.PlatformFee,
		Description: description,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, apperror.Storage(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"customer_id":  booking.CustomerID,
		"worker_id":    booking.WorkerID,
		"total_amount": booking.TotalAmount.String(),
	}).Info("booking: создано бронирование")
	metrics.BookingsCreatedTotal.WithLabelValues(string(serviceType)).Inc()
	s.publish(ctx, events.New(events.TypeBookingCreated, booking.ID, booking.CustomerID, booking).
		ForParties(booking.CustomerID, booking.WorkerID))

	return booking, nil
}

// TransitionBooking меняет статус бронирования от имени участника.
// Допустимость перехода определяется таблицей переходов для роли участника.
func (s *BookingService) TransitionBooking(ctx context.Context, bookingID, actorID int64, actorRole valueobject.Role, requested string) (*TransitionResult, error) {
	next, err := valueobject.NewBookingStatus(requested)
	if err != nil {
		return nil, err
	}

	booking, err := s.getForParty(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}

	role, _ := booking.PartyRole(actorID)
	if role != actorRole {
		return nil, apperror.ErrRoleMismatch
	}

	if !booking.Status.CanTransitionTo(role, next) {
		metrics.RecordTransition(string(booking.Status), string(next), string(role), "rejected")
		return nil, invalidTransition(booking.Status, next, role)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, booking.Status, next, actorID)
	if err != nil {
		if !errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperror.Storage(err)
		}
		// статус успел поменяться, отвечаем по свежему состоянию
		fresh, getErr := s.bookings.GetByID(ctx, bookingID)
		if getErr != nil {
			return nil, apperror.Storage(getErr)
		}
		metrics.RecordTransition(string(fresh.Status), string(next), string(role), "conflict")
		logger.Log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"expected":   booking.Status,
			"actual":     fresh.Status,
		}).Warn("booking: конкурентная смена статуса")
		return nil, invalidTransition(fresh.Status, next, role)
	}

	logger.Log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"actor_id":   actorID,
		"role":       role,
		"from":       booking.Status,
		"to":         next,
	}).Info("booking: статус изменён")
	metrics.RecordTransition(string(booking.Status), string(next), string(role), "applied")
	s.publish(ctx, events.New(events.TypeBookingStatusChanged, bookingID, actorID, map[string]interface{}{
		"previous_status": booking.Status,
		"status":          next,
	}).ForParties(booking.CustomerID, booking.WorkerID))

	return &TransitionResult{Booking: updated, PreviousStatus: booking.Status}, nil
}

// GetBooking возвращает бронирование только его участникам.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	return s.getForParty(ctx, bookingID, userID)
}

// ListMyBookings возвращает бронирования пользователя в его роли.
// Сводка по статусам считается по всем бронированиям, без учёта фильтра и страницы.
func (s *BookingService) ListMyBookings(ctx context.Context, userID int64, role valueobject.Role, status string, limit, offset int) (*BookingList, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	filter := repository.BookingFilter{Role: role, UserID: userID, Limit: limit, Offset: offset}
	if status != "" {
		parsed, err := valueobject.NewBookingStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}

	var (
		bookings []models.Booking
		counts   []models.StatusCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.bookings.ListByParty(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.bookings.CountByStatus(gctx, role, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Storage(err)
	}

	list := &BookingList{Bookings: bookings, Summary: make(map[string]int, len(valueobject.AllBookingStatuses))}
	for _, st := range valueobject.AllBookingStatuses {
		list.Summary[string(st)] = 0
	}
	for _, c := range counts {
		list.Summary[string(c.Status)] = c.Count
		list.Total += c.Count
	}
	return list, nil
}

// ListEvents возвращает журнал изменений бронирования его участникам.
func (s *BookingService) ListEvents(ctx context.Context, bookingID, userID int64) ([]models.BookingEvent, error) {
	if _, err := s.getForParty(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	history, err := s.history.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return history, nil
}

// getForParty не отличает чужое бронирование от несуществующего.
func (s *BookingService) getForParty(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, apperror.Storage(err)
	}
	if !booking.IsParty(userID) {
		return nil, apperror.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.publisher, event)
}

func invalidTransition(current, requested valueobject.BookingStatus, role valueobject.Role) error {
	return apperror.ErrInvalidTransition.WithDetails(map[string]interface{}{
		"current_status":   current,
		"requested_status": requested,
		"role":             role,
		"allowed":          current.AllowedTransitions(role),
	})
}

func publishEvent(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"event_type": event.Type,
			"booking_id": event.BookingID,
			"error":      err.Error(),
		}).Warn("events: не удалось опубликовать событие")
	}
}
