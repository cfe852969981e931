package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/services-marketplace/internal/goroutine"
	"github.com/ignatzorin/services-marketplace/internal/logger"
)

// Типы доменных событий
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypePaymentRecorded      = "payment.recorded"
	TypeReviewAdded          = "review.added"
)

// Event описывает доменное событие. Публикуется после фиксации транзакции.
type Event struct {
	Type       string      `json:"event_type"`
	BookingID  int64       `json:"booking_id"`
	ActorID    int64       `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
	// Участники бронирования, которым событие доставляется в реальном времени.
	Parties []int64 `json:"parties,omitempty"`
}

func New(eventType string, bookingID, actorID int64, payload interface{}) Event {
	return Event{
		Type:       eventType,
		BookingID:  bookingID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// ForParties возвращает копию события с адресатами.
func (e Event) ForParties(customerID, workerID int64) Event {
	e.Parties = []int64{customerID, workerID}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher пишет события в лог. Используется, когда Kafka не настроена.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	logger.Log.WithFields(logrus.Fields{
		"event_type": event.Type,
		"booking_id": event.BookingID,
		"actor_id":   event.ActorID,
	}).Info("events: доменное событие")
	return nil
}

// AsyncPublisher отправляет события в фоне, чтобы брокер не задерживал ответ.
// Ошибки отправки только логируются.
type AsyncPublisher struct {
	next Publisher
}

func NewAsyncPublisher(next Publisher) *AsyncPublisher {
	return &AsyncPublisher{next: next}
}

func (p *AsyncPublisher) Publish(ctx context.Context, event Event) error {
	goroutine.SafeGoWithContext(context.WithoutCancel(ctx), "events.publish", func(ctx context.Context) {
		if err := p.next.Publish(ctx, event); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"event_type": event.Type,
				"booking_id": event.BookingID,
				"error":      err.Error(),
			}).Warn("events: не удалось опубликовать событие")
		}
	})
	return nil
}

// MultiPublisher рассылает событие всем получателям по очереди.
// Возвращается первая ошибка, остальные получатели всё равно вызываются.
// Паника получателя считается его ошибкой.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m {
		var err error
		if panicErr := goroutine.Run("events.multi", func() { err = p.Publish(ctx, event) }); panicErr != nil {
			err = panicErr
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
