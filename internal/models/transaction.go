package models

import "github.com/shopspring/decimal"

// Transaction types
const (
	TransactionTypeCharge  = "charge"
	TransactionTypePayment = "payment"
)

// Transaction represents a single statement movement. Amount is positive for
// charges and negative for payments. Installments of 0 or 1 mean a single
// payment; values of 2 or more mean an N-month MSI plan.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	CardID       string          `json:"card_id"`
	Date         string          `json:"date"` // ISO date
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	Installments int             `json:"installments"`
	MonthsPaid   int             `json:"months_paid"`
}

// IsInstallment reports whether the transaction carries an MSI plan
func (t *Transaction) IsInstallment() bool {
	return t.Installments > 1
}

// CategoryAggregate is the per-category spend total for a card
type CategoryAggregate struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
