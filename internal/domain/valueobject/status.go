package valueobject

import (
	"strings"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusRejected   BookingStatus = "rejected"
)

// AllBookingStatuses перечисляет статусы в порядке жизненного цикла.
var AllBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRejected,
}

// bookingTransitions: допустимые переходы по ролям. Других проверок переходов нет.
// Терминальные статусы отсутствуют в таблице.
var bookingTransitions = map[BookingStatus]map[Role][]BookingStatus{
	BookingStatusPending: {
		RoleWorker:   {BookingStatusConfirmed, BookingStatusRejected},
		RoleCustomer: {BookingStatusCancelled},
	},
	BookingStatusConfirmed: {
		RoleWorker:   {BookingStatusInProgress, BookingStatusCancelled},
		RoleCustomer: {BookingStatusCancelled},
	},
	BookingStatusInProgress: {
		RoleWorker:   {BookingStatusCompleted, BookingStatusCancelled},
		RoleCustomer: {BookingStatusCancelled},
	},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal сообщает, что из статуса нет исходящих переходов.
func (s BookingStatus) IsTerminal() bool {
	_, ok := bookingTransitions[s]
	return !ok
}

// IsPayable сообщает, можно ли принять оплату по бронированию в этом статусе.
func (s BookingStatus) IsPayable() bool {
	return s != BookingStatusCancelled && s != BookingStatusRejected && s.IsValid()
}

// AllowedTransitions возвращает статусы, в которые роль может перевести бронирование.
// Результат можно менять, это копия.
func (s BookingStatus) AllowedTransitions(role Role) []BookingStatus {
	allowed := bookingTransitions[s][role]
	out := make([]BookingStatus, len(allowed))
	copy(out, allowed)
	return out
}

func (s BookingStatus) CanTransitionTo(role Role, newStatus BookingStatus) bool {
	for _, status := range bookingTransitions[s][role] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// NewBookingStatus разбирает статус из пользовательского ввода.
// Пробелы и регистр игнорируются.
func NewBookingStatus(status string) (BookingStatus, error) {
	s := BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус бронирования").
			WithDetails(map[string]interface{}{
				"status":  status,
				"allowed": AllBookingStatuses,
			})
	}
	return s, nil
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleWorker
}

func NewRole(role string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeForbidden, "неизвестная роль пользователя")
	}
	return r, nil
}
