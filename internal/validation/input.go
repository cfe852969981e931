package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

// Константы валидации
const (
	MaxDescriptionLength   = 2000
	MaxCommentLength       = 1000
	MaxTransactionIDLength = 255
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return apperror.New(apperror.ErrCodeValidation, fieldName+" слишком короткое").
			WithDetails(map[string]interface{}{"field": fieldName, "min_length": min})
	}
	if max > 0 && length > max {
		return apperror.New(apperror.ErrCodeValidation, fieldName+" слишком длинное").
			WithDetails(map[string]interface{}{"field": fieldName, "max_length": max})
	}
	return nil
}

// OptionalText обрезает пробелы и проверяет длину.
// nil и строка из одних пробелов дают nil.
func OptionalText(fieldName string, value *string, max int) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := SanitizeText(*value)
	if trimmed == "" {
		return nil, nil
	}
	if err := ValidateLength(fieldName, trimmed, 0, max); err != nil {
		return nil, err
	}
	return &trimmed, nil
}

// SanitizeText убирает управляющие символы, кроме переводов строки и табуляции.
func SanitizeText(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(cleaned)
}

// TransactionReference нормализует внешний идентификатор транзакции.
// Пустое значение даёт ErrMissingReference.
func TransactionReference(value string) (string, error) {
	ref := strings.TrimSpace(value)
	if ref == "" {
		return "", apperror.ErrMissingReference
	}
	for _, r := range ref {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", apperror.New(apperror.ErrCodeValidation, "идентификатор транзакции содержит недопустимые символы")
		}
	}
	if len(ref) > MaxTransactionIDLength {
		return "", apperror.New(apperror.ErrCodeValidation, "идентификатор транзакции слишком длинный").
			WithDetails(map[string]interface{}{"max_length": MaxTransactionIDLength})
	}
	return ref, nil
}
