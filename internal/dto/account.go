package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	"github.com/crediagil/crediagil_backend/internal/utils/credit"
)

// InstallmentRequest is one installment supplied on manual account creation.
type InstallmentRequest struct {
	Number      int             `json:"number" binding:"required,min=1"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     time.Time       `json:"dueDate" binding:"required"`
	Observation string          `json:"observation"`
}

// CreateAccountRequest creates an account by hand, outside the loan flow.
// Exactly one of PersonID/GroupID must be set.
type CreateAccountRequest struct {
	PersonID     string               `json:"personID"`
	GroupID      string               `json:"groupID"`
	LoanID       string               `json:"loanID"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	Installments []InstallmentRequest `json:"installments"`
}

// ApplyPaymentRequest updates one installment on an account. AmountPaid is a
// payment added to the installment's running total. Status overrides the
// derived status when set; DueDate reschedules the installment.
type ApplyPaymentRequest struct {
	AmountPaid  *decimal.Decimal `json:"amountPaid"`
	Status      *string          `json:"status"`
	PaidDate    *time.Time       `json:"paidDate"`
	DueDate     *time.Time       `json:"dueDate"`
	Observation *string          `json:"observation"`
}

// UpdateAccountStatusRequest sets the lifecycle status of an account.
type UpdateAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required"`
}

// AccountResponse is the API representation of a current account. For GROUP
// accounts the installments reflect the virtualized view and PersonTotals
// summarizes each member's position.
type AccountResponse struct {
	AccountID     string                `json:"accountID"`
	AccountType   domain.AccountType    `json:"accountType"`
	PersonID      string                `json:"personID,omitempty"`
	GroupID       string                `json:"groupID,omitempty"`
	LoanID        string                `json:"loanID"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	Installments  []InstallmentResponse `json:"installments"`
	Status        domain.AccountStatus  `json:"status"`
	PersonTotals  []credit.PersonTotal  `json:"personTotals,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain account.
func ToAccountResponse(a domain.CurrentAccount) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		AccountType:   a.AccountType,
		PersonID:      a.PersonID,
		GroupID:       a.GroupID,
		LoanID:        a.LoanID,
		TotalAmount:   a.TotalAmount,
		Installments:  ToInstallmentResponses(a.Installments),
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}

// ListAccountsResponse wraps a paginated list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// CollectionsParams bounds a collections report request.
type CollectionsParams struct {
	From      time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To        time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Limit     int       `form:"limit"`
	NextToken string    `form:"nextToken"`
}

// CollectionEntry is one collected installment in the report.
type CollectionEntry struct {
	AccountID   string             `json:"accountID"`
	AccountType domain.AccountType `json:"accountType"`
	PersonID    string             `json:"personID,omitempty"`
	GroupID     string             `json:"groupID,omitempty"`
	LoanID      string             `json:"loanID"`
	Number      int                `json:"number"`
	AmountPaid  decimal.Decimal    `json:"amountPaid"`
	PaidDate    time.Time          `json:"paidDate"`
}

// CollectionsResponse is a page of collected installments plus the total
// collected inside the page.
type CollectionsResponse struct {
	Entries        []CollectionEntry `json:"entries"`
	TotalCollected decimal.Decimal   `json:"totalCollected"`
	NextToken      string            `json:"nextToken,omitempty"`
}
