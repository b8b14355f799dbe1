// Package projection computes MSI installment interest estimates and
// forward monthly balance schedules. All functions are pure: they perform
// no I/O, hold no state, and never fail — out-of-range inputs are clamped.
package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/jparedesmx/cartera/internal/models"
	"github.com/shopspring/decimal"
)

// MonthlyPenaltyRate is the fixed 1.5%/month accrual charged on pending
// installment periods. This is a product simplification modeling the cost
// of paying only the MSI minimum, not a per-bank finance-charge formula.
var MonthlyPenaltyRate = decimal.New(15, -3)

// DefaultHorizonMonths is the length of the forward balance schedule.
const DefaultHorizonMonths = 6

// ComputeInstallmentDetail estimates the penalty interest for a single MSI
// transaction. The caller must pass a transaction with Installments > 1;
// ComputeAllInstallmentDetails filters for that before calling here.
//
// Interest accrues on the outstanding balance before the period's payment,
// and only for periods not yet paid. The balance is decremented by the
// monthly payment on every period, including completed ones; the resulting
// curve shape is relied on downstream and must not be "corrected".
func ComputeInstallmentDetail(tx models.Transaction) models.InstallmentDetail {
	totalMonths := tx.Installments
	monthlyPayment := tx.Amount.Div(decimal.NewFromInt(int64(totalMonths)))

	monthsCompleted := tx.MonthsPaid
	if monthsCompleted < 0 {
		monthsCompleted = 0
	}

	balance := tx.Amount
	totalInterest := decimal.Zero
	for i := 0; i < totalMonths; i++ {
		if i >= monthsCompleted {
			totalInterest = totalInterest.Add(balance.Mul(MonthlyPenaltyRate))
		}
		balance = balance.Sub(monthlyPayment)
	}
	if totalInterest.IsNegative() {
		totalInterest = decimal.Zero
	}

	description := tx.Description
	if description == "" {
		description = fmt.Sprintf("Installment purchase %dx", totalMonths)
	}

	return models.InstallmentDetail{
		ID:              tx.ID,
		Description:     description,
		Amount:          tx.Amount,
		MonthsCompleted: monthsCompleted,
		TotalMonths:     totalMonths,
		MonthlyPayment:  monthlyPayment,
		TotalInterest:   totalInterest,
	}
}

// ComputeAllInstallmentDetails maps every MSI transaction through
// ComputeInstallmentDetail. Transactions with Installments <= 1 are skipped,
// duplicate ids keep their first occurrence, and input order is preserved.
func ComputeAllInstallmentDetails(txs []models.Transaction) []models.InstallmentDetail {
	details := make([]models.InstallmentDetail, 0, len(txs))
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.Installments <= 1 {
			continue
		}
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		details = append(details, ComputeInstallmentDetail(tx))
	}
	return details
}

// GroupByCard builds the per-card installment report. Cards are deduplicated
// by id, each group sums only that card's installment transactions, groups
// without installment transactions are dropped, and the report's grand total
// is the sum of the group subtotals so the displayed numbers always add up.
func GroupByCard(cards []models.Card, txsByCard map[string][]models.Transaction) models.InstallmentReport {
	report := models.InstallmentReport{
		Groups:        []models.CardInstallmentGroup{},
		TotalAmount:   decimal.Zero,
		TotalInterest: decimal.Zero,
	}

	seen := make(map[string]bool, len(cards))
	for _, card := range cards {
		if seen[card.ID] {
			continue
		}
		seen[card.ID] = true

		details := ComputeAllInstallmentDetails(txsByCard[card.ID])
		if len(details) == 0 {
			continue
		}

		group := models.CardInstallmentGroup{
			CardID:        card.ID,
			CardName:      card.Name,
			Details:       details,
			TotalAmount:   decimal.Zero,
			TotalInterest: decimal.Zero,
		}
		for _, d := range details {
			group.TotalAmount = group.TotalAmount.Add(d.Amount)
			group.TotalInterest = group.TotalInterest.Add(d.TotalInterest)
		}

		report.Groups = append(report.Groups, group)
		report.TotalAmount = report.TotalAmount.Add(group.TotalAmount)
		report.TotalInterest = report.TotalInterest.Add(group.TotalInterest)
	}
	return report
}

// msiPlan tracks one installment plan while walking the horizon.
type msiPlan struct {
	monthly    decimal.Decimal
	monthsLeft int
}

// ProjectBalances produces the forward monthly schedule for a single card:
// exactly horizonMonths entries with consecutive YYYY-MM labels starting at
// the current month, every money field clamped non-negative.
//
// Month 0 reflects the statement: the balance is what must be paid to avoid
// interest. Later months carry only the MSI installments still due, assuming
// the no-interest amount was paid the month before.
func ProjectBalances(balance, minimumDueRate decimal.Decimal, txs []models.Transaction, horizonMonths int) []models.MonthlyProjection {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	balance = clampZero(balance)

	plans := buildPlans(txs)

	// Per-month no-interest payments over the whole horizon, so that each
	// month's total debt is the sum of the payments still ahead of it.
	payments := make([]decimal.Decimal, horizonMonths)
	payments[0] = balance
	remaining := make([]msiPlan, len(plans))
	copy(remaining, plans)
	decrementPlans(remaining)
	for i := 1; i < horizonMonths; i++ {
		payments[i] = monthlyDue(remaining)
		decrementPlans(remaining)
	}

	now := time.Now().UTC()
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	projections := make([]models.MonthlyProjection, 0, horizonMonths)
	for i := 0; i < horizonMonths; i++ {
		month := base.AddDate(0, i, 0).Format("2006-01")

		due := payments[i]
		totalDebt := decimal.Zero
		for _, p := range payments[i:] {
			totalDebt = totalDebt.Add(p)
		}

		interest := decimal.Zero
		if i == 0 {
			interest = balance.Mul(MonthlyPenaltyRate)
		}

		projections = append(projections, models.MonthlyProjection{
			Month:               month,
			ProjectedBalance:    clampZero(due),
			ProjectedMinPayment: clampZero(due.Mul(minimumDueRate)),
			NoInterestPayment:   clampZero(due),
			TotalDebt:           clampZero(totalDebt),
			ProjectedInterest:   clampZero(interest),
		})
	}
	return projections
}

// AggregateProjections merges per-card schedules by month label, summing
// each field independently. Fields are never averaged across cards.
func AggregateProjections(perCard ...[]models.MonthlyProjection) []models.MonthlyProjection {
	byMonth := make(map[string]*models.MonthlyProjection)
	for _, schedule := range perCard {
		for _, p := range schedule {
			agg, ok := byMonth[p.Month]
			if !ok {
				agg = &models.MonthlyProjection{Month: p.Month}
				byMonth[p.Month] = agg
			}
			agg.ProjectedBalance = agg.ProjectedBalance.Add(p.ProjectedBalance)
			agg.ProjectedMinPayment = agg.ProjectedMinPayment.Add(p.ProjectedMinPayment)
			agg.NoInterestPayment = agg.NoInterestPayment.Add(p.NoInterestPayment)
			agg.TotalDebt = agg.TotalDebt.Add(p.TotalDebt)
			agg.ProjectedInterest = agg.ProjectedInterest.Add(p.ProjectedInterest)
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	merged := make([]models.MonthlyProjection, 0, len(months))
	for _, m := range months {
		merged = append(merged, *byMonth[m])
	}
	return merged
}

func buildPlans(txs []models.Transaction) []msiPlan {
	seen := make(map[string]bool, len(txs))
	plans := make([]msiPlan, 0, len(txs))
	for _, tx := range txs {
		if tx.Installments <= 1 || seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true

		completed := tx.MonthsPaid
		if completed < 0 {
			completed = 0
		}
		left := tx.Installments - completed
		if left < 0 {
			left = 0
		}
		plans = append(plans, msiPlan{
			monthly:    tx.Amount.Div(decimal.NewFromInt(int64(tx.Installments))),
			monthsLeft: left,
		})
	}
	return plans
}

func monthlyDue(plans []msiPlan) decimal.Decimal {
	due := decimal.Zero
	for _, p := range plans {
		if p.monthsLeft > 0 {
			due = due.Add(p.monthly)
		}
	}
	return due
}

func decrementPlans(plans []msiPlan) {
	for i := range plans {
		if plans[i].monthsLeft > 0 {
			plans[i].monthsLeft--
		}
	}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
