package repositories

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// ShareholderReader defines read operations for shareholder data
type ShareholderReader interface {
	// FindShareholderByID retrieves a specific shareholder by their ID.
	FindShareholderByID(ctx context.Context, shareholderID string) (*domain.Shareholder, error)

	// FindShareholderByNationalID retrieves a shareholder by national identity number.
	FindShareholderByNationalID(ctx context.Context, nationalID string) (*domain.Shareholder, error)

	// FindShareholders retrieves a paginated list of shareholders.
	FindShareholders(ctx context.Context, limit int, offset int) ([]domain.Shareholder, error)
}

// ShareholderWriter defines write operations for shareholder data
type ShareholderWriter interface {
	// SaveShareholder persists a new shareholder.
	SaveShareholder(ctx context.Context, shareholder domain.Shareholder) error

	// UpdateShareholder updates an existing shareholder's details.
	UpdateShareholder(ctx context.Context, shareholder domain.Shareholder) error

	// DeleteShareholder removes a shareholder.
	DeleteShareholder(ctx context.Context, shareholderID string) error
}

// ShareholderRepositoryFacade combines all shareholder-related repository interfaces
type ShareholderRepositoryFacade interface {
	ShareholderReader
	ShareholderWriter
}
