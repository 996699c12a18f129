package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// PaymentMethod identifies how the customer pays for the order.
type PaymentMethod int

const (
	// PaymentMethodUnknown represents an invalid or undefined method.
	PaymentMethodUnknown PaymentMethod = iota
	// PaymentCOD is cash on delivery, settled when the order is delivered.
	PaymentCOD
	// PaymentCard is an upfront online payment.
	PaymentCard
)

func getPaymentMethodStrings() map[PaymentMethod]string {
	return map[PaymentMethod]string{
		PaymentMethodUnknown: "unknown",
		PaymentCOD:           "cod",
		PaymentCard:          "card",
	}
}

// PaymentMethodFromString parses the persisted string representation of a method.
func PaymentMethodFromString(s string) (PaymentMethod, error) {
	for method, str := range getPaymentMethodStrings() {
		if method != PaymentMethodUnknown && str == s {
			return method, nil
		}
	}
	return PaymentMethodUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment method",
		fmt.Errorf("%q is not a valid payment method", s),
	)
}

// String returns the persisted name of the method.
func (m PaymentMethod) String() string {
	if str, ok := getPaymentMethodStrings()[m]; ok {
		return str
	}
	return "unknown"
}

// PaymentStatus tracks settlement of the order's payment.
type PaymentStatus int

const (
	// PaymentStatusUnknown represents an invalid or undefined status.
	PaymentStatusUnknown PaymentStatus = iota
	// PaymentPending means payment is not confirmed; dispatch skips the order.
	PaymentPending
	// PaymentPaid means payment is confirmed and the order may be dispatched.
	PaymentPaid
	// PaymentRefunded means the payment was returned after cancellation.
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentStatusUnknown: "unknown",
		PaymentPending:       "pending",
		PaymentPaid:          "paid",
		PaymentRefunded:      "refunded",
	}
}

// PaymentStatusFromString parses the persisted string representation of a status.
func PaymentStatusFromString(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if status != PaymentStatusUnknown && str == s {
			return status, nil
		}
	}
	return PaymentStatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment status",
		fmt.Errorf("%q is not a valid payment status", s),
	)
}

// String returns the persisted name of the status.
func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Payment is the payment record attached to an order.
// It is a value object; amount must not be negative.
type Payment struct {
	method PaymentMethod
	amount float64
	status PaymentStatus
}

// NewPayment creates a validated Payment value.
func NewPayment(method PaymentMethod, amount float64, status PaymentStatus) (Payment, error) {
	if _, ok := getPaymentMethodStrings()[method]; !ok || method == PaymentMethodUnknown {
		return Payment{}, errs.NewValueIsInvalidError("payment method")
	}
	if _, ok := getPaymentStatusStrings()[status]; !ok || status == PaymentStatusUnknown {
		return Payment{}, errs.NewValueIsInvalidError("payment status")
	}
	if amount < 0 {
		return Payment{}, errs.NewValueIsInvalidErrorWithCause("payment amount",
			fmt.Errorf("%f is negative", amount))
	}
	return Payment{method: method, amount: amount, status: status}, nil
}

// Method returns the payment method.
func (p Payment) Method() PaymentMethod {
	return p.method
}

// Amount returns the payment amount.
func (p Payment) Amount() float64 {
	return p.amount
}

// Status returns the settlement status.
func (p Payment) Status() PaymentStatus {
	return p.status
}

// IsPaid reports whether payment is confirmed.
func (p Payment) IsPaid() bool {
	return p.status == PaymentPaid
}

// markPaid settles the payment; used for COD on the delivered transition.
func (p Payment) markPaid() Payment {
	p.status = PaymentPaid
	return p
}
