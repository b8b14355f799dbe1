package models

import "github.com/shopspring/decimal"

// StatementSummary is the card-level information extracted from an uploaded
// statement. Missing fields stay at their zero value and are defaulted later.
type StatementSummary struct {
	Issuer            string          `json:"issuer"`
	CardName          string          `json:"card_name"`
	Last4             string          `json:"last4"`
	DueDate           string          `json:"due_date"` // ISO date
	MinimumPayment    decimal.Decimal `json:"minimum_payment"`
	NoInterestPayment decimal.Decimal `json:"no_interest_payment"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	CAT               decimal.Decimal `json:"cat"`
}

// ExtractedTransaction is one movement extracted from a statement, not yet
// bound to a user or card.
type ExtractedTransaction struct {
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments"`
	MonthsPaid   int             `json:"months_paid"`
}

// StatementExtract is the full result of parsing an uploaded statement
type StatementExtract struct {
	Summary      *StatementSummary      `json:"statement_summary"`
	Transactions []ExtractedTransaction `json:"transactions"`
}
