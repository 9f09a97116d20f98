package services

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/dto"
)

// ShareholderReaderSvc defines read operations for shareholder data
type ShareholderReaderSvc interface {
	// GetShareholderByID retrieves a shareholder enriched with active
	// capital and projected profit.
	GetShareholderByID(ctx context.Context, shareholderID string) (*dto.ShareholderResponse, error)

	// ListShareholders retrieves an enriched, paginated list of shareholders.
	ListShareholders(ctx context.Context, limit int, offset int) ([]dto.ShareholderResponse, error)

	// GetShareholderAccount summarizes a shareholder's loan positions.
	GetShareholderAccount(ctx context.Context, shareholderID string) (*dto.ShareholderAccountResponse, error)

	// GetProfitDistribution computes the interest earned in a window and
	// splits it pro-rata across shareholders.
	GetProfitDistribution(ctx context.Context, params dto.ProfitParams) (*dto.ProfitDistributionResponse, error)
}

// ShareholderWriterSvc defines write operations for shareholder data
type ShareholderWriterSvc interface {
	// CreateShareholder registers a new investor.
	CreateShareholder(ctx context.Context, req dto.CreateShareholderRequest, creatorUserID string) (*dto.ShareholderResponse, error)

	// UpdateShareholder applies a partial update.
	UpdateShareholder(ctx context.Context, shareholderID string, req dto.UpdateShareholderRequest, updaterUserID string) (*dto.ShareholderResponse, error)

	// DeleteShareholder removes a shareholder with no stake in any loan.
	DeleteShareholder(ctx context.Context, shareholderID string) error
}

// ShareholderSvcFacade combines all shareholder-related service interfaces
type ShareholderSvcFacade interface {
	ShareholderReaderSvc
	ShareholderWriterSvc
}
