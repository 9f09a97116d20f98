package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes per-person accounts from the group-level account.
type AccountType string

const (
	AccountTypePerson AccountType = "PERSON"
	AccountTypeGroup  AccountType = "GROUP"
)

// AccountStatus represents the lifecycle state of a current account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// InstallmentStatus represents the payment state of a single installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPartial InstallmentStatus = "PARTIAL"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	// InstallmentStatusOverdue is only ever set through the manual status
	// override; delinquency checks derive overdueness from due dates.
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// Installment is a single scheduled repayment. Payments accumulate in
// AmountPaid; the status follows from the cumulative total.
type Installment struct {
	Number      int               `json:"number"` // 1-based position in the schedule
	Amount      decimal.Decimal   `json:"amount"`
	DueDate     time.Time         `json:"dueDate"`
	PaidDate    *time.Time        `json:"paidDate,omitempty"`
	AmountPaid  decimal.Decimal   `json:"amountPaid"`
	Status      InstallmentStatus `json:"status"`
	Observation string            `json:"observation,omitempty"`
}

// Settled reports whether the cumulative payments cover the installment
// amount within Epsilon.
func (i *Installment) Settled() bool {
	return i.AmountPaid.GreaterThanOrEqual(i.Amount.Sub(Epsilon))
}

// OverdueAt reports whether the installment is unpaid and strictly past due
// at the given time. Both sides are compared at day granularity.
func (i *Installment) OverdueAt(t time.Time) bool {
	return i.Status != InstallmentStatusPaid && DayOf(i.DueDate).Before(DayOf(t))
}

// CurrentAccount is the repayment ledger for one borrower (PERSON) or for a
// whole group (GROUP). Exactly one of PersonID/GroupID is set depending on
// the account type.
type CurrentAccount struct {
	AccountID    string          `json:"accountID"`
	AccountType  AccountType     `json:"accountType"`
	PersonID     string          `json:"personID,omitempty"`
	GroupID      string          `json:"groupID,omitempty"`
	LoanID       string          `json:"loanID"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Installments []Installment   `json:"installments"`
	Status       AccountStatus   `json:"status"`
	AuditFields
}

// Installment returns a pointer to the installment with the given number, or
// nil when the number is outside the schedule.
func (a *CurrentAccount) Installment(number int) *Installment {
	for idx := range a.Installments {
		if a.Installments[idx].Number == number {
			return &a.Installments[idx]
		}
	}
	return nil
}

// AllPaid reports whether every installment in the schedule is PAID.
func (a *CurrentAccount) AllPaid() bool {
	for i := range a.Installments {
		if a.Installments[i].Status != InstallmentStatusPaid {
			return false
		}
	}
	return len(a.Installments) > 0
}

// TotalPaid sums the cumulative payments across all installments.
func (a *CurrentAccount) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for i := range a.Installments {
		total = total.Add(a.Installments[i].AmountPaid)
	}
	return total
}

// TotalOutstanding sums the unpaid remainder of every installment, floored at
// zero per installment so overpayments do not offset other installments.
func (a *CurrentAccount) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for i := range a.Installments {
		rem := a.Installments[i].Amount.Sub(a.Installments[i].AmountPaid)
		if rem.GreaterThan(decimal.Zero) {
			total = total.Add(rem)
		}
	}
	return total
}

// OverdueAt reports whether any installment on the account is overdue at t.
func (a *CurrentAccount) OverdueAt(t time.Time) bool {
	for i := range a.Installments {
		if a.Installments[i].OverdueAt(t) {
			return true
		}
	}
	return false
}
