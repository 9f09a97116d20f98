package domain

import "github.com/shopspring/decimal"

// Shareholder is an investor whose capital funds loans and who receives a
// pro-rata share of the interest collected.
type Shareholder struct {
	ShareholderID    string          `json:"shareholderID"`
	FullName         string          `json:"fullName"`
	NationalID       string          `json:"nationalID"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	TotalCapital     decimal.Decimal `json:"totalCapital"`
	AuditFields
}
