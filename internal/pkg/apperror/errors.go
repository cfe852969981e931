package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeDuplicatePayment  ErrorCode = "DUPLICATE_PAYMENT"
	ErrCodeDuplicateReview   ErrorCode = "DUPLICATE_REVIEW"
	ErrCodeInvalidMethod     ErrorCode = "INVALID_METHOD"
	ErrCodeMissingReference  ErrorCode = "MISSING_REFERENCE"
	ErrCodeInvalidRating     ErrorCode = "INVALID_RATING"
	ErrCodeStorage           ErrorCode = "STORAGE_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError — ожидаемая бизнес-ошибка со стабильным кодом.
// Details отдаются клиенту как есть, чтобы он мог скорректировать запрос.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, поэтому errors.Is(err, ErrBookingNotFound) работает
// и для копий, созданных через WithDetails.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithDetails возвращает копию ошибки с дополнительными полями.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Storage оборачивает сбой хранилища. Такие ошибки клиент может повторить сам.
func Storage(err error) *AppError {
	return Wrap(err, ErrCodeStorage, "ошибка хранилища, повторите запрос")
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeInvalidMethod, ErrCodeMissingReference, ErrCodeInvalidRating:
		return http.StatusBadRequest
	case ErrCodeInvalidTransition, ErrCodeInvalidState:
		return http.StatusUnprocessableEntity
	case ErrCodeDuplicatePayment, ErrCodeDuplicateReview:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode проверяет код ошибки в цепочке.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return HasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return HasCode(err, ErrCodeValidation)
}

var (
	ErrBookingNotFound      = New(ErrCodeNotFound, "бронирование не найдено")
	ErrWorkerNotFound       = New(ErrCodeNotFound, "исполнитель не найден")
	ErrNotBookingCustomer   = New(ErrCodeUnauthorized, "оплатить бронирование может только его заказчик")
	ErrInvalidTransition    = New(ErrCodeInvalidTransition, "недопустимая смена статуса")
	ErrBookingNotPayable    = New(ErrCodeInvalidState, "бронирование в этом статусе нельзя оплатить")
	ErrBookingNotCompleted  = New(ErrCodeInvalidState, "отзыв можно оставить только после завершения бронирования")
	ErrWorkerUnavailable    = New(ErrCodeInvalidState, "исполнитель сейчас недоступен")
	ErrDuplicatePayment     = New(ErrCodeDuplicatePayment, "оплата по этому бронированию уже проведена")
	ErrDuplicateReview      = New(ErrCodeDuplicateReview, "отзыв на это бронирование уже оставлен")
	ErrInvalidMethod        = New(ErrCodeInvalidMethod, "неподдерживаемый способ оплаты")
	ErrMissingReference     = New(ErrCodeMissingReference, "не указан идентификатор транзакции")
	ErrInvalidRating        = New(ErrCodeInvalidRating, "рейтинг должен быть от 1 до 5")
	ErrReviewerNotCustomer  = New(ErrCodeForbidden, "отзыв может оставить только заказчик бронирования")
	ErrRoleMismatch         = New(ErrCodeForbidden, "роль не соответствует участнику бронирования")
	ErrCustomerRoleRequired = New(ErrCodeForbidden, "создавать бронирования могут только заказчики")
)
