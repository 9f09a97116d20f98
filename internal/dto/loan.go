package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// ContributionRequest is one shareholder's capital stake in a new loan.
type ContributionRequest struct {
	ShareholderID string          `json:"shareholderID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// MemberAmountRequest is one member's portion when splitting a loan.
type MemberAmountRequest struct {
	PersonID string          `json:"personID" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// CreateLoanRequest holds data for granting a loan to a group. InterestRate
// is a percentage per installment period and defaults to 15 when omitted.
// When MemberAmounts is empty the principal is split equally across the
// active members.
type CreateLoanRequest struct {
	GroupID           string                `json:"groupID" binding:"required"`
	Amount            decimal.Decimal       `json:"amount" binding:"required"`
	InstallmentsCount int                   `json:"installmentsCount" binding:"required,min=2,max=6"`
	InterestRate      *decimal.Decimal      `json:"interestRate"`
	StartDate         *time.Time            `json:"startDate"`
	Contributions     []ContributionRequest `json:"contributions" binding:"required,min=1,dive"`
	MemberAmounts     []MemberAmountRequest `json:"memberAmounts" binding:"omitempty,dive"`
}

// InstallmentResponse is the API representation of an installment.
type InstallmentResponse struct {
	Number      int                      `json:"number"`
	Amount      decimal.Decimal          `json:"amount"`
	DueDate     time.Time                `json:"dueDate"`
	PaidDate    *time.Time               `json:"paidDate,omitempty"`
	AmountPaid  decimal.Decimal          `json:"amountPaid"`
	Status      domain.InstallmentStatus `json:"status"`
	Observation string                   `json:"observation,omitempty"`
}

// ToInstallmentResponse converts a domain installment.
func ToInstallmentResponse(i domain.Installment) InstallmentResponse {
	return InstallmentResponse{
		Number:      i.Number,
		Amount:      i.Amount,
		DueDate:     i.DueDate,
		PaidDate:    i.PaidDate,
		AmountPaid:  i.AmountPaid,
		Status:      i.Status,
		Observation: i.Observation,
	}
}

// ToInstallmentResponses converts a schedule.
func ToInstallmentResponses(installments []domain.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(installments))
	for i, inst := range installments {
		out[i] = ToInstallmentResponse(inst)
	}
	return out
}

// ContributionResponse is one shareholder's stake on a loan.
type ContributionResponse struct {
	ShareholderID string          `json:"shareholderID"`
	Amount        decimal.Decimal `json:"amount"`
}

// MemberAllocationResponse is one member's portion of a loan.
type MemberAllocationResponse struct {
	PersonID     string                `json:"personID"`
	Amount       decimal.Decimal       `json:"amount"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
}

// LoanResponse is the API representation of a loan.
type LoanResponse struct {
	LoanID            string                     `json:"loanID"`
	GroupID           string                     `json:"groupID"`
	Amount            decimal.Decimal            `json:"amount"`
	InstallmentsCount int                        `json:"installmentsCount"`
	InterestRate      decimal.Decimal            `json:"interestRate"`
	StartDate         time.Time                  `json:"startDate"`
	Status            domain.LoanStatus          `json:"status"`
	Installments      []InstallmentResponse      `json:"installments"`
	Members           []MemberAllocationResponse `json:"members,omitempty"`
	Contributions     []ContributionResponse     `json:"contributions"`
	CreatedAt         time.Time                  `json:"createdAt"`
	LastUpdatedAt     time.Time                  `json:"lastUpdatedAt"`
}

// ToLoanResponse converts a domain loan.
func ToLoanResponse(l domain.Loan) LoanResponse {
	contributions := make([]ContributionResponse, len(l.Contributions))
	for i, c := range l.Contributions {
		contributions[i] = ContributionResponse{ShareholderID: c.ShareholderID, Amount: c.Amount}
	}
	members := make([]MemberAllocationResponse, len(l.Members))
	for i, m := range l.Members {
		members[i] = MemberAllocationResponse{
			PersonID:     m.PersonID,
			Amount:       m.Amount,
			Installments: ToInstallmentResponses(m.Installments),
		}
	}
	return LoanResponse{
		LoanID:            l.LoanID,
		GroupID:           l.GroupID,
		Amount:            l.Amount,
		InstallmentsCount: l.InstallmentsCount,
		InterestRate:      l.InterestRate,
		StartDate:         l.StartDate,
		Status:            l.Status,
		Installments:      ToInstallmentResponses(l.Installments),
		Members:           members,
		Contributions:     contributions,
		CreatedAt:         l.CreatedAt,
		LastUpdatedAt:     l.LastUpdatedAt,
	}
}

// ListLoansResponse wraps a paginated list of loans.
type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
}

// SyncLoanStatusesResponse reports the outcome of a bulk loan reconciliation.
type SyncLoanStatusesResponse struct {
	LoansSettled int `json:"loansSettled"`
}
