package valueobject

import (
	"strings"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

type ServiceType string

const (
	ServiceTypeHomeCleaning   ServiceType = "home_cleaning"
	ServiceTypePlumbing       ServiceType = "plumbing"
	ServiceTypeElectricalWork ServiceType = "electrical_work"
	ServiceTypePainting       ServiceType = "painting"
)

var AllServiceTypes = []ServiceType{
	ServiceTypeHomeCleaning,
	ServiceTypePlumbing,
	ServiceTypeElectricalWork,
	ServiceTypePainting,
}

func (t ServiceType) IsValid() bool {
	for _, known := range AllServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

func NewServiceType(value string) (ServiceType, error) {
	t := ServiceType(strings.ToLower(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "неизвестный тип услуги").
			WithDetails(map[string]interface{}{"allowed": AllServiceTypes})
	}
	return t, nil
}

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodStripe     PaymentMethod = "stripe"
)

var AllPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodUPI,
	PaymentMethodPayPal,
	PaymentMethodStripe,
}

// Варианты, которые присылает клиент при оплате по QR.
var paymentMethodAliases = map[string]PaymentMethod{
	"qr":     PaymentMethodUPI,
	"upi_qr": PaymentMethodUPI,
}

func (m PaymentMethod) IsValid() bool {
	for _, known := range AllPaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// NewPaymentMethod разбирает способ оплаты; QR-оплата сводится к upi.
func NewPaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := paymentMethodAliases[normalized]; ok {
		return alias, nil
	}
	m := PaymentMethod(normalized)
	if !m.IsValid() {
		return "", apperror.ErrInvalidMethod.WithDetails(map[string]interface{}{
			"method":  value,
			"allowed": AllPaymentMethods,
		})
	}
	return m, nil
}
