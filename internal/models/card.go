package models

import "github.com/shopspring/decimal"

// Card represents a credit card built from an uploaded statement
type Card struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Name              string          `json:"name"`
	Issuer            string          `json:"issuer"`
	Last4             string          `json:"last4"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	Balance           decimal.Decimal `json:"balance"`
	DueDateDay        int             `json:"due_date_day"` // day of month
	MinimumPayment    decimal.Decimal `json:"minimum_payment"`
	NoInterestPayment decimal.Decimal `json:"no_interest_payment"` // from statement
	CAT               decimal.Decimal `json:"cat"`                 // annual rate from statement
}

// CardSummary is the condensed card view used by the dashboard
type CardSummary struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Balance             decimal.Decimal `json:"balance"`
	UpcomingPaymentDate string          `json:"upcoming_payment_date"`
	MinimumDue          decimal.Decimal `json:"minimum_due"`
}
