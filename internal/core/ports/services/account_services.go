package services

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

// AccountReaderSvc defines read operations for current account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account. GROUP accounts are returned with
	// the virtualized schedule and per-member totals.
	GetAccountByID(ctx context.Context, accountID string) (*dto.AccountResponse, error)

	// GetAccountByPersonID retrieves a person's active account.
	GetAccountByPersonID(ctx context.Context, personID string) (*dto.AccountResponse, error)

	// GetAccountByGroupID retrieves a group's active account, virtualized.
	GetAccountByGroupID(ctx context.Context, groupID string) (*dto.AccountResponse, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, status domain.AccountStatus, accountType domain.AccountType, limit int, offset int) ([]domain.CurrentAccount, error)

	// GetCollections reports the installments collected inside a date
	// window, cursor-paginated.
	GetCollections(ctx context.Context, params dto.CollectionsParams) (*dto.CollectionsResponse, error)
}

// AccountWriterSvc defines write operations for current account data
type AccountWriterSvc interface {
	// CreateAccount creates an account by hand, outside the loan flow.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*dto.AccountResponse, error)

	// ApplyPayment records a payment (or a manual correction) against one
	// installment and settles the owning loan when it completes the
	// schedule.
	ApplyPayment(ctx context.Context, accountID string, installmentNumber int, req dto.ApplyPaymentRequest, updaterUserID string) (*dto.AccountResponse, error)

	// UpdateAccountStatus sets the lifecycle status of an account.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, updaterUserID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
