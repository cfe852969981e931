package valueobject

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

func clock(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestCalculateFee_TwoHours(t *testing.T) {
	fee, err := CalculateFee(decimal.NewFromInt(100), clock(t, "09:00"), clock(t, "11:00"))
	require.NoError(t, err)

	assert.True(t, fee.TotalAmount.Equal(decimal.NewFromInt(200)), fee.TotalAmount.String())
	assert.True(t, fee.PlatformFee.Equal(decimal.NewFromInt(80)), fee.PlatformFee.String())
	assert.True(t, fee.WorkerPayout().Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "2", fee.DurationHours.String())
}

func TestCalculateFee_FractionalHours(t *testing.T) {
	fee, err := CalculateFee(decimal.RequireFromString("333.33"), clock(t, "10:00"), clock(t, "11:20"))
	require.NoError(t, err)

	// 333.33 * 4/3 = 444.44, комиссия 177.776 -> 177.78
	assert.Equal(t, "444.44", fee.TotalAmount.StringFixed(2))
	assert.Equal(t, "177.78", fee.PlatformFee.StringFixed(2))
}

func TestCalculateFee_HalfCentRoundsUp(t *testing.T) {
	// 100.02 * 65/60 = 108.355 ровно, округление до 108.36
	fee, err := CalculateFee(decimal.RequireFromString("100.02"), clock(t, "09:00"), clock(t, "10:05"))
	require.NoError(t, err)

	assert.Equal(t, "108.36", fee.TotalAmount.StringFixed(2))
	// 108.355 * 0.4 = 43.342
	assert.Equal(t, "43.34", fee.PlatformFee.StringFixed(2))
}

func TestCalculateFee_Deterministic(t *testing.T) {
	first, err := CalculateFee(decimal.RequireFromString("75.5"), clock(t, "08:15"), clock(t, "09:45"))
	require.NoError(t, err)
	second, err := CalculateFee(decimal.RequireFromString("75.5"), clock(t, "08:15"), clock(t, "09:45"))
	require.NoError(t, err)

	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.PlatformFee.Equal(second.PlatformFee))
	assert.Equal(t, "113.25", first.TotalAmount.StringFixed(2))
}

func TestCalculateFee_InvalidInput(t *testing.T) {
	_, err := CalculateFee(decimal.NewFromInt(100), clock(t, "11:00"), clock(t, "11:00"))
	assert.True(t, apperror.IsValidation(err))

	_, err = CalculateFee(decimal.NewFromInt(100), clock(t, "12:00"), clock(t, "11:00"))
	assert.True(t, apperror.IsValidation(err))

	_, err = CalculateFee(decimal.Zero, clock(t, "09:00"), clock(t, "11:00"))
	assert.True(t, apperror.IsValidation(err))
}

func TestNewPaymentMethod(t *testing.T) {
	m, err := NewPaymentMethod("UPI")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodUPI, m)

	m, err = NewPaymentMethod("qr")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodUPI, m)

	_, err = NewPaymentMethod("cash")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeInvalidMethod))
}

func TestNewServiceType(t *testing.T) {
	st, err := NewServiceType("plumbing")
	require.NoError(t, err)
	assert.Equal(t, ServiceTypePlumbing, st)

	_, err = NewServiceType("gardening")
	assert.True(t, apperror.IsValidation(err))
}
