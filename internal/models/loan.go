package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan maps to the loans table.
type Loan struct {
	LoanID            string          `db:"loan_id"`
	GroupID           string          `db:"group_id"`
	Amount            decimal.Decimal `db:"amount"`
	InstallmentsCount int             `db:"installments_count"`
	InterestRate      decimal.Decimal `db:"interest_rate"`
	StartDate         time.Time       `db:"start_date"`
	Status            string          `db:"status"`
	AuditFields
}

// LoanContribution maps to the loan_contributions table: one row per
// shareholder funding a loan.
type LoanContribution struct {
	LoanID        string          `db:"loan_id"`
	ShareholderID string          `db:"shareholder_id"`
	Amount        decimal.Decimal `db:"amount"`
}

// LoanInstallment maps to the loan_installments table: the schedule snapshot
// taken at loan creation. PersonID is NULL for the group-level schedule and
// set for member allocation snapshots.
type LoanInstallment struct {
	LoanID   string          `db:"loan_id"`
	PersonID *string         `db:"person_id"`
	Number   int             `db:"number"`
	Amount   decimal.Decimal `db:"amount"`
	DueDate  time.Time       `db:"due_date"`
}

// LoanMember maps to the loan_members table: one row per member allocation
// when a loan is split across group members.
type LoanMember struct {
	LoanID   string          `db:"loan_id"`
	PersonID string          `db:"person_id"`
	Amount   decimal.Decimal `db:"amount"`
}
