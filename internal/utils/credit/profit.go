package credit

import (
	"github.com/shopspring/decimal"
)

// Decompose splits an installment amount into its capital and interest
// components using the per-installment rule: capital = amount / (1 + rate),
// interest is the remainder. rate is a fraction per period. The same rule
// applies to realized and projected installments.
func Decompose(installmentAmount, rate decimal.Decimal) (capital, interest decimal.Decimal) {
	factor := decimal.NewFromInt(1).Add(rate)
	capital = installmentAmount.Div(factor).Round(2)
	interest = installmentAmount.Sub(capital)
	return capital, interest
}

// ShareFraction returns the pro-rata fraction of a loan funded by a single
// contribution. Returns zero when the loan amount is zero.
func ShareFraction(contribution, loanAmount decimal.Decimal) decimal.Decimal {
	if loanAmount.IsZero() {
		return decimal.Zero
	}
	return contribution.Div(loanAmount)
}
