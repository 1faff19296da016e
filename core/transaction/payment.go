package transaction

import (
	"fmt"

	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/model"
)

// PaymentMethod is how a transaction was paid. Its value is the stored code.
type PaymentMethod string

const (
	CreditCard  PaymentMethod = "credit_card"
	DebitCard   PaymentMethod = "debit_card"
	PayPal      PaymentMethod = "paypal"
	OtherMethod PaymentMethod = "etc"
)

var paymentDisplay = map[PaymentMethod]string{
	CreditCard:  "Credit Card",
	DebitCard:   "Debit Card",
	PayPal:      "PayPal",
	OtherMethod: "etc.",
}

// ParsePaymentMethod parses a stored payment method code.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if _, ok := paymentDisplay[m]; !ok {
		return "", fmt.Errorf("%q: %w", s, coreerr.ErrInvalidPaymentMethod)
	}
	return m, nil
}

// String returns the display name.
func (m PaymentMethod) String() string {
	if name, ok := paymentDisplay[m]; ok {
		return name
	}
	return string(m)
}

var purchaseDisplay = map[model.PurchaseType]string{
	model.PurchaseGame:          "Game Purchase",
	model.PurchaseInGame:        "In-game Purchase",
	model.PurchaseSubscriptions: "Subscriptions",
	model.PurchaseDLC:           "DLC",
	model.PurchaseEtc:           "etc.",
}

// PurchaseTypeName returns the display name of a purchase type.
func PurchaseTypeName(t model.PurchaseType) string {
	if name, ok := purchaseDisplay[t]; ok {
		return name
	}
	return string(t)
}
