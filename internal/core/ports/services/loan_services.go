package services

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

// LoanReaderSvc defines read operations for loan data
type LoanReaderSvc interface {
	// GetLoanByID retrieves a loan with contributions and schedules.
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of loans, optionally filtered.
	ListLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error)
}

// LoanWriterSvc defines write operations for loan data
type LoanWriterSvc interface {
	// CreateLoan grants a loan to an approved group: validates funding and
	// member allocations, generates the schedules, opens the current
	// accounts and pins the group to ACTIVE_LOAN, all atomically.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)

	// SettleLoanIfComplete marks the loan PAID when every person account
	// schedule is fully paid, then runs the completion cascade: close the
	// loan's accounts and return the group to APPROVED. The cascade is
	// idempotent; a partial failure surfaces ErrCascadeIncomplete and can
	// be retried.
	SettleLoanIfComplete(ctx context.Context, loanID string, updaterUserID string) (bool, error)

	// SyncLoanStatuses runs SettleLoanIfComplete over every ACTIVE loan and
	// returns how many were settled.
	SyncLoanStatuses(ctx context.Context, updaterUserID string) (int, error)
}

// LoanSvcFacade combines all loan-related service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
}
