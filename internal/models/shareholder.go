package models

import "github.com/shopspring/decimal"

// Shareholder maps to the shareholders table.
type Shareholder struct {
	ShareholderID string          `db:"shareholder_id"`
	FullName      string          `db:"full_name"`
	NationalID    string          `db:"national_id"`
	Email         string          `db:"email"`
	Phone         string          `db:"phone"`
	TotalCapital  decimal.Decimal `db:"total_capital"`
	AuditFields
}
