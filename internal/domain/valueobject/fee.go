package valueobject

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

// PlatformFeeRate задаёт комиссию платформы как долю от суммы бронирования.
var PlatformFeeRate = decimal.RequireFromString("0.40")

const moneyScale = 2

// Fee содержит рассчитанную стоимость бронирования.
type Fee struct {
	TotalAmount   decimal.Decimal
	PlatformFee   decimal.Decimal
	DurationHours decimal.Decimal
}

// CalculateFee считает стоимость по почасовой ставке и интервалу работ.
// Полная точность сохраняется до конца расчёта, до копеек округляется только результат.
func CalculateFee(hourlyRate decimal.Decimal, start, end time.Time) (Fee, error) {
	if !hourlyRate.IsPositive() {
		return Fee{}, apperror.New(apperror.ErrCodeValidation, "почасовая ставка должна быть положительной")
	}
	if !end.After(start) {
		return Fee{}, apperror.New(apperror.ErrCodeValidation, "время окончания должно быть позже времени начала")
	}

	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	secondsPerHour := decimal.NewFromInt(3600)

	// деление последним: до округления результат точен
	total := hourlyRate.Mul(seconds).Div(secondsPerHour)
	fee := hourlyRate.Mul(seconds).Mul(PlatformFeeRate).Div(secondsPerHour)

	return Fee{
		TotalAmount:   total.Round(moneyScale),
		PlatformFee:   fee.Round(moneyScale),
		DurationHours: seconds.Div(secondsPerHour),
	}, nil
}

// WorkerPayout возвращает сумму, которую получает исполнитель после удержания комиссии.
func (f Fee) WorkerPayout() decimal.Decimal {
	return f.TotalAmount.Sub(f.PlatformFee)
}
