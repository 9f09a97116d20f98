package repositories

import (
	"context"
	"time"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// InstallmentRecord is an installment joined with its owning account. Used by
// reporting queries that cut across accounts.
type InstallmentRecord struct {
	AccountID   string
	AccountType domain.AccountType
	PersonID    string
	GroupID     string
	LoanID      string
	Installment domain.Installment
}

// CollectionsFilter bounds a paid-installment report. Pagination is keyset
// based on (paid_date, account_id).
type CollectionsFilter struct {
	From        time.Time
	To          time.Time
	AfterPaidAt *time.Time
	AfterID     string
	Limit       int
}

// AccountReader defines read operations for current account data
type AccountReader interface {
	// FindAccountByID retrieves an account with its installments.
	FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error)

	// FindAccountsByLoanID retrieves every account created for a loan.
	FindAccountsByLoanID(ctx context.Context, loanID string) ([]domain.CurrentAccount, error)

	// FindActiveAccountByPersonID retrieves the person's non-closed account, if any.
	FindActiveAccountByPersonID(ctx context.Context, personID string) (*domain.CurrentAccount, error)

	// FindActiveAccountByGroupID retrieves the group's non-closed GROUP account, if any.
	FindActiveAccountByGroupID(ctx context.Context, groupID string) (*domain.CurrentAccount, error)

	// FindAccounts retrieves a paginated list of accounts, optionally
	// filtered by status and type.
	FindAccounts(ctx context.Context, status domain.AccountStatus, accountType domain.AccountType, limit int, offset int) ([]domain.CurrentAccount, error)

	// FindPaidInstallments retrieves installments paid inside the filter
	// window, ordered by (paid_date, account_id) for keyset pagination.
	FindPaidInstallments(ctx context.Context, filter CollectionsFilter) ([]InstallmentRecord, error)

	// FindUnpaidInstallmentsDueBetween retrieves unpaid installments on
	// active person accounts falling due inside the window. Used for
	// projected profit.
	FindUnpaidInstallmentsDueBetween(ctx context.Context, from, to time.Time) ([]InstallmentRecord, error)
}

// AccountWriter defines write operations for current account data
type AccountWriter interface {
	// SaveAccount persists a new account with its installments.
	SaveAccount(ctx context.Context, account domain.CurrentAccount) error

	// UpdateInstallment updates a single installment row in place.
	UpdateInstallment(ctx context.Context, accountID string, installment domain.Installment, updatedBy string, updatedAt time.Time) error

	// UpdateAccountStatus sets the status of an account.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, updatedBy string, updatedAt time.Time) error

	// CloseAccountsByLoanID closes every non-closed account of a loan and
	// returns how many rows changed. Idempotent.
	CloseAccountsByLoanID(ctx context.Context, loanID string, updatedBy string, updatedAt time.Time) (int, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
