package credit

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// PersonTotal summarizes one member's repayment position inside a group view.
type PersonTotal struct {
	PersonID         string          `json:"personID"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	PaidInstallments int             `json:"paidInstallments"`
}

// VirtualizeGroupSchedule derives the group account's installment states from
// the money actually collected on the member accounts. The collected total is
// poured over the group schedule in installment order: fully covered
// installments become PAID, the first partially covered one PARTIAL, the rest
// stay PENDING. The result is a view; the stored group schedule is never
// modified. When no person accounts exist the stored schedule is returned
// unchanged.
func VirtualizeGroupSchedule(group domain.CurrentAccount, personAccounts []domain.CurrentAccount) (domain.CurrentAccount, []PersonTotal) {
	if len(personAccounts) == 0 {
		return group, nil
	}

	totals := make([]PersonTotal, 0, len(personAccounts))
	collected := decimal.Zero
	for i := range personAccounts {
		pa := &personAccounts[i]
		paidCount := 0
		for j := range pa.Installments {
			inst := &pa.Installments[j]
			if inst.Status == domain.InstallmentStatusPaid {
				collected = collected.Add(inst.Amount)
				paidCount++
			}
		}
		totals = append(totals, PersonTotal{
			PersonID:         pa.PersonID,
			TotalPaid:        pa.TotalPaid(),
			TotalOutstanding: pa.TotalOutstanding(),
			PaidInstallments: paidCount,
		})
	}

	view := group
	view.Installments = make([]domain.Installment, len(group.Installments))
	copy(view.Installments, group.Installments)
	sort.Slice(view.Installments, func(i, j int) bool {
		return view.Installments[i].Number < view.Installments[j].Number
	})

	funds := collected
	for i := range view.Installments {
		inst := &view.Installments[i]
		// Installments already recorded paid on the stored snapshot stay
		// untouched; the collected funds cover only the rest.
		if inst.Status == domain.InstallmentStatusPaid {
			continue
		}
		switch {
		case funds.GreaterThanOrEqual(inst.Amount.Sub(domain.Epsilon)):
			inst.AmountPaid = inst.Amount
			inst.Status = domain.InstallmentStatusPaid
			funds = funds.Sub(inst.Amount)
			if funds.LessThan(decimal.Zero) {
				funds = decimal.Zero
			}
			// Paid dates are unknowable in a derived view.
			inst.PaidDate = nil
		case funds.GreaterThan(decimal.Zero):
			inst.AmountPaid = inst.AmountPaid.Add(funds)
			inst.Status = domain.InstallmentStatusPartial
			funds = decimal.Zero
		default:
			// No funds left; the stored state stands.
		}
	}
	return view, totals
}
