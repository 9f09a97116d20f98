package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "ACTIVE"
	LoanStatusPaid   LoanStatus = "PAID"
	// LoanStatusDefault exists in the schema but no transition currently
	// produces it; marking a loan defaulted is a manual database operation.
	LoanStatusDefault LoanStatus = "DEFAULT"
)

// ShareholderContribution records how much capital one shareholder put into a
// loan. Contributions must sum to the loan amount.
type ShareholderContribution struct {
	ShareholderID string          `json:"shareholderID"`
	Amount        decimal.Decimal `json:"amount"`
}

// MemberAllocation records one group member's portion of the loan principal
// together with the schedule generated for that portion.
type MemberAllocation struct {
	PersonID     string          `json:"personID"`
	Amount       decimal.Decimal `json:"amount"`
	Installments []Installment   `json:"installments"`
}

// Loan is a credit granted to a group, funded by shareholder capital and
// optionally split across members. The embedded schedules are a snapshot
// taken at creation; the live repayment state lives on the current accounts.
type Loan struct {
	LoanID            string                    `json:"loanID"`
	GroupID           string                    `json:"groupID"`
	Amount            decimal.Decimal           `json:"amount"`
	InstallmentsCount int                       `json:"installmentsCount"`
	InterestRate      decimal.Decimal           `json:"interestRate"` // percent per installment period
	StartDate         time.Time                 `json:"startDate"`
	Status            LoanStatus                `json:"status"`
	Installments      []Installment             `json:"installments"`
	Members           []MemberAllocation        `json:"members,omitempty"`
	Contributions     []ShareholderContribution `json:"contributions"`
	AuditFields
}

// MonthlyRate converts the stored percentage into a decimal fraction.
func (l *Loan) MonthlyRate() decimal.Decimal {
	return l.InterestRate.Div(decimal.NewFromInt(100))
}
