// Package credit contains the pure calculation helpers shared by the lending
// services: schedule generation, group ledger virtualization and interest
// decomposition. Nothing in this package touches storage.
package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// installmentPeriodDays is the interval between consecutive due dates.
const installmentPeriodDays = 30

// TotalWithInterest returns the flat-interest total owed on a principal:
// P + P*r*n, rounded to cents. rate is a fraction per period (0.15 for 15%).
func TotalWithInterest(principal, rate decimal.Decimal, periods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))
	return principal.Add(principal.Mul(rate).Mul(n)).Round(2)
}

// GenerateSchedule builds the repayment schedule for a principal: `periods`
// equal installments of the flat-interest total, each rounded to cents, due
// every 30 days starting 30 days after startDate. The per-period rounding
// means the schedule may drift from the theoretical total by up to half a
// cent per installment; the drift is accepted, not corrected.
func GenerateSchedule(principal, rate decimal.Decimal, periods int, startDate time.Time) []domain.Installment {
	if periods <= 0 {
		return nil
	}
	total := TotalWithInterest(principal, rate, periods)
	per := total.Div(decimal.NewFromInt(int64(periods))).Round(2)

	installments := make([]domain.Installment, periods)
	for i := 0; i < periods; i++ {
		installments[i] = domain.Installment{
			Number:     i + 1,
			Amount:     per,
			DueDate:    startDate.AddDate(0, 0, installmentPeriodDays*(i+1)),
			AmountPaid: decimal.Zero,
			Status:     domain.InstallmentStatusPending,
		}
	}
	return installments
}
