package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// CreateShareholderRequest holds data for registering an investor.
type CreateShareholderRequest struct {
	FullName     string          `json:"fullName" binding:"required"`
	NationalID   string          `json:"nationalID" binding:"required"`
	Email        string          `json:"email" binding:"omitempty,email"`
	Phone        string          `json:"phone"`
	TotalCapital decimal.Decimal `json:"totalCapital"`
}

// UpdateShareholderRequest holds optional updates to a shareholder.
type UpdateShareholderRequest struct {
	FullName     *string          `json:"fullName"`
	Email        *string          `json:"email" binding:"omitempty,email"`
	Phone        *string          `json:"phone"`
	TotalCapital *decimal.Decimal `json:"totalCapital"`
}

// ShareholderResponse is the API representation of a shareholder, enriched
// with the capital currently deployed in active loans and the interest it
// would yield if fully repaid.
type ShareholderResponse struct {
	ShareholderID   string          `json:"shareholderID"`
	FullName        string          `json:"fullName"`
	NationalID      string          `json:"nationalID"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	TotalCapital    decimal.Decimal `json:"totalCapital"`
	ActiveCapital   decimal.Decimal `json:"activeCapital"`
	ProjectedProfit decimal.Decimal `json:"projectedProfit"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ToShareholderResponse converts a domain shareholder without enrichment.
func ToShareholderResponse(s domain.Shareholder) ShareholderResponse {
	return ShareholderResponse{
		ShareholderID: s.ShareholderID,
		FullName:      s.FullName,
		NationalID:    s.NationalID,
		Email:         s.Email,
		Phone:         s.Phone,
		TotalCapital:  s.TotalCapital,
		ActiveCapital: decimal.Zero,
		CreatedAt:     s.CreatedAt,
		LastUpdatedAt: s.LastUpdatedAt,
	}
}

// ListShareholdersResponse wraps a paginated list of shareholders.
type ListShareholdersResponse struct {
	Shareholders []ShareholderResponse `json:"shareholders"`
}

// ShareholderLoanPosition is one loan inside a shareholder account summary.
type ShareholderLoanPosition struct {
	LoanID        string            `json:"loanID"`
	GroupID       string            `json:"groupID"`
	Status        domain.LoanStatus `json:"status"`
	Contribution  decimal.Decimal   `json:"contribution"`
	ShareFraction decimal.Decimal   `json:"shareFraction"`
}

// ShareholderAccountResponse summarizes a shareholder's loan positions.
type ShareholderAccountResponse struct {
	ShareholderID string                    `json:"shareholderID"`
	TotalCapital  decimal.Decimal           `json:"totalCapital"`
	ActiveCapital decimal.Decimal           `json:"activeCapital"`
	Positions     []ShareholderLoanPosition `json:"positions"`
}

// ProfitParams bounds a profit distribution request. Type selects realized
// (interest actually collected) or projected (interest falling due).
type ProfitParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Type string    `form:"type" binding:"omitempty,oneof=realized projected"`
}

// ProfitDetailLine is one contributing installment inside a shareholder's
// distribution slice. Realized lines carry a paid date, projected ones only
// the due date.
type ProfitDetailLine struct {
	LoanID      string          `json:"loanID"`
	DueDate     time.Time       `json:"dueDate"`
	PaidDate    *time.Time      `json:"paidDate,omitempty"`
	Profit      decimal.Decimal `json:"profit"`
	Capital     decimal.Decimal `json:"capital"`
	AmountShare decimal.Decimal `json:"amountShare"`
}

// ShareholderProfit is one investor's slice of a profit distribution: the
// interest and recovered capital accrued over the window, with a detail line
// per contributing installment.
type ShareholderProfit struct {
	ShareholderID string             `json:"shareholderID"`
	FullName      string             `json:"fullName"`
	Profit        decimal.Decimal    `json:"profit"`
	Capital       decimal.Decimal    `json:"capital"`
	Detail        []ProfitDetailLine `json:"detail"`
}

// ProfitDistributionResponse is the interest and capital collected (or
// falling due) in a window, split pro-rata across shareholders by their loan
// contributions.
type ProfitDistributionResponse struct {
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	Type          string              `json:"type"`
	TotalInterest decimal.Decimal     `json:"totalInterest"`
	TotalCapital  decimal.Decimal     `json:"totalCapital"`
	Shares        []ShareholderProfit `json:"shares"`
}
