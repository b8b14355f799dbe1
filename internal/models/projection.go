package models

import "github.com/shopspring/decimal"

// MonthlyProjection is one entry of the forward balance schedule
type MonthlyProjection struct {
	Month               string          `json:"month"` // YYYY-MM
	ProjectedBalance    decimal.Decimal `json:"projected_balance"`
	ProjectedMinPayment decimal.Decimal `json:"projected_min_payment"`
	NoInterestPayment   decimal.Decimal `json:"no_interest_payment"`
	TotalDebt           decimal.Decimal `json:"total_debt"`
	ProjectedInterest   decimal.Decimal `json:"projected_interest"`
}

// InstallmentDetail is the per-transaction MSI interest estimate
type InstallmentDetail struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	MonthsCompleted int             `json:"monthsCompleted"`
	TotalMonths     int             `json:"totalMonths"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	TotalInterest   decimal.Decimal `json:"totalInterest"`
}

// CardInstallmentGroup aggregates installment details for one card
type CardInstallmentGroup struct {
	CardID        string              `json:"card_id"`
	CardName      string              `json:"card_name"`
	Details       []InstallmentDetail `json:"details"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	TotalInterest decimal.Decimal     `json:"total_interest"`
}

// InstallmentReport is the dashboard-wide MSI view: per-card groups plus a
// grand total that is the sum of the displayed subtotals
type InstallmentReport struct {
	Groups        []CardInstallmentGroup `json:"groups"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	TotalInterest decimal.Decimal        `json:"total_interest"`
}
