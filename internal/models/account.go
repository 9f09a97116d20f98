package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentAccount maps to the current_accounts table.
type CurrentAccount struct {
	AccountID   string          `db:"account_id"`
	AccountType string          `db:"account_type"`
	PersonID    *string         `db:"person_id"` // set for PERSON accounts
	GroupID     *string         `db:"group_id"`  // set for GROUP accounts
	LoanID      string          `db:"loan_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	AuditFields
}

// Installment maps to the installments table, keyed by (account_id, number).
type Installment struct {
	AccountID   string          `db:"account_id"`
	Number      int             `db:"number"`
	Amount      decimal.Decimal `db:"amount"`
	DueDate     time.Time       `db:"due_date"`
	PaidDate    *time.Time      `db:"paid_date"`
	AmountPaid  decimal.Decimal `db:"amount_paid"`
	Status      string          `db:"status"`
	Observation string          `db:"observation"`
}
