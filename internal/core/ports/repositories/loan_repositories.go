package repositories

import (
	"context"
	"time"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// LoanReader defines read operations for loan data
type LoanReader interface {
	// FindLoanByID retrieves a loan with its contributions, member
	// allocations and schedule snapshot.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// FindActiveLoanByGroupID retrieves the ACTIVE loan of a group, if any.
	FindActiveLoanByGroupID(ctx context.Context, groupID string) (*domain.Loan, error)

	// FindLoans retrieves a paginated list of loans, optionally filtered by
	// status and/or group.
	FindLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error)

	// FindLoansByShareholderID retrieves every loan a shareholder contributed
	// to, with contributions loaded.
	FindLoansByShareholderID(ctx context.Context, shareholderID string) ([]domain.Loan, error)
}

// LoanWriter defines write operations for loan data
type LoanWriter interface {
	// SaveLoan atomically persists a loan together with its current accounts
	// and pins the group status to ACTIVE_LOAN. Either everything commits or
	// nothing does.
	SaveLoan(ctx context.Context, loan domain.Loan, accounts []domain.CurrentAccount) error

	// UpdateLoanStatus sets the status of a loan.
	UpdateLoanStatus(ctx context.Context, loanID string, status domain.LoanStatus, updatedBy string, updatedAt time.Time) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
}
