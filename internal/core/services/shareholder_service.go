package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
	"github.com/crediagil/crediagil_backend/internal/utils/credit"
)

var ErrShareholderHasStake = errors.New("shareholder has contributions on existing loans")

const (
	profitTypeRealized  = "realized"
	profitTypeProjected = "projected"
)

// shareholderService manages investors and computes their profit positions.
type shareholderService struct {
	shareholderRepo portsrepo.ShareholderRepositoryFacade
	loanRepo        portsrepo.LoanRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
}

// NewShareholderService creates a new shareholder service.
func NewShareholderService(shareholderRepo portsrepo.ShareholderRepositoryFacade, loanRepo portsrepo.LoanRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.ShareholderSvcFacade {
	return &shareholderService{
		shareholderRepo: shareholderRepo,
		loanRepo:        loanRepo,
		accountRepo:     accountRepo,
	}
}

var _ portssvc.ShareholderSvcFacade = (*shareholderService)(nil)

func (s *shareholderService) CreateShareholder(ctx context.Context, req dto.CreateShareholderRequest, creatorUserID string) (*dto.ShareholderResponse, error) {
	nationalID := strings.TrimSpace(req.NationalID)
	if nationalID == "" {
		return nil, apperrors.NewValidationError("nationalID is required")
	}
	if req.TotalCapital.IsNegative() {
		return nil, apperrors.NewValidationError("totalCapital cannot be negative")
	}

	existing, err := s.shareholderRepo.FindShareholderByNationalID(ctx, nationalID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check national ID uniqueness: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewAppError(409, fmt.Sprintf("shareholder with national ID %s already exists", nationalID), apperrors.ErrDuplicate)
	}

	now := time.Now().UTC()
	shareholder := domain.Shareholder{
		ShareholderID: uuid.NewString(),
		FullName:      strings.TrimSpace(req.FullName),
		NationalID:    nationalID,
		Email:         req.Email,
		Phone:         req.Phone,
		TotalCapital:  req.TotalCapital,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.shareholderRepo.SaveShareholder(ctx, shareholder); err != nil {
		return nil, fmt.Errorf("failed to save shareholder: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("shareholder created", "shareholder_id", shareholder.ShareholderID)

	resp := dto.ToShareholderResponse(shareholder)
	return &resp, nil
}

func (s *shareholderService) GetShareholderByID(ctx context.Context, shareholderID string) (*dto.ShareholderResponse, error) {
	shareholder, err := s.shareholderRepo.FindShareholderByID(ctx, shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("shareholder %s not found", shareholderID))
		}
		return nil, fmt.Errorf("failed to get shareholder %s: %w", shareholderID, err)
	}
	resp, err := s.enrich(ctx, *shareholder)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *shareholderService) ListShareholders(ctx context.Context, limit int, offset int) ([]dto.ShareholderResponse, error) {
	shareholders, err := s.shareholderRepo.FindShareholders(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shareholders: %w", err)
	}

	out := make([]dto.ShareholderResponse, 0, len(shareholders))
	for _, shareholder := range shareholders {
		resp, err := s.enrich(ctx, shareholder)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// enrich computes the capital deployed in active loans and the interest it
// will yield when those loans complete.
func (s *shareholderService) enrich(ctx context.Context, shareholder domain.Shareholder) (*dto.ShareholderResponse, error) {
	loans, err := s.loanRepo.FindLoansByShareholderID(ctx, shareholder.ShareholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans of shareholder %s: %w", shareholder.ShareholderID, err)
	}

	activeCapital := decimal.Zero
	projectedProfit := decimal.Zero
	for _, loan := range loans {
		if loan.Status != domain.LoanStatusActive {
			continue
		}
		contribution := contributionOf(loan, shareholder.ShareholderID)
		if contribution.IsZero() {
			continue
		}
		activeCapital = activeCapital.Add(contribution)

		totalInterest := loan.Amount.Mul(loan.MonthlyRate()).Mul(decimal.NewFromInt(int64(loan.InstallmentsCount)))
		share := credit.ShareFraction(contribution, loan.Amount)
		projectedProfit = projectedProfit.Add(totalInterest.Mul(share))
	}

	resp := dto.ToShareholderResponse(shareholder)
	resp.ActiveCapital = activeCapital
	resp.ProjectedProfit = projectedProfit.Round(2)
	return &resp, nil
}

func contributionOf(loan domain.Loan, shareholderID string) decimal.Decimal {
	for _, c := range loan.Contributions {
		if c.ShareholderID == shareholderID {
			return c.Amount
		}
	}
	return decimal.Zero
}

func (s *shareholderService) UpdateShareholder(ctx context.Context, shareholderID string, req dto.UpdateShareholderRequest, updaterUserID string) (*dto.ShareholderResponse, error) {
	shareholder, err := s.shareholderRepo.FindShareholderByID(ctx, shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("shareholder %s not found", shareholderID))
		}
		return nil, fmt.Errorf("failed to get shareholder %s for update: %w", shareholderID, err)
	}

	if req.FullName != nil {
		shareholder.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		shareholder.Email = *req.Email
	}
	if req.Phone != nil {
		shareholder.Phone = *req.Phone
	}
	if req.TotalCapital != nil {
		if req.TotalCapital.IsNegative() {
			return nil, apperrors.NewValidationError("totalCapital cannot be negative")
		}
		shareholder.TotalCapital = *req.TotalCapital
	}
	shareholder.LastUpdatedAt = time.Now().UTC()
	shareholder.LastUpdatedBy = updaterUserID

	if err := s.shareholderRepo.UpdateShareholder(ctx, *shareholder); err != nil {
		return nil, fmt.Errorf("failed to update shareholder %s: %w", shareholderID, err)
	}
	return s.enrich(ctx, *shareholder)
}

func (s *shareholderService) DeleteShareholder(ctx context.Context, shareholderID string) error {
	if _, err := s.shareholderRepo.FindShareholderByID(ctx, shareholderID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("shareholder %s not found", shareholderID))
		}
		return fmt.Errorf("failed to get shareholder %s: %w", shareholderID, err)
	}

	loans, err := s.loanRepo.FindLoansByShareholderID(ctx, shareholderID)
	if err != nil {
		return fmt.Errorf("failed to load loans of shareholder %s: %w", shareholderID, err)
	}
	if len(loans) > 0 {
		return apperrors.NewAppError(409, "cannot delete a shareholder with loan contributions", ErrShareholderHasStake)
	}
	return s.shareholderRepo.DeleteShareholder(ctx, shareholderID)
}

func (s *shareholderService) GetShareholderAccount(ctx context.Context, shareholderID string) (*dto.ShareholderAccountResponse, error) {
	shareholder, err := s.shareholderRepo.FindShareholderByID(ctx, shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("shareholder %s not found", shareholderID))
		}
		return nil, fmt.Errorf("failed to get shareholder %s: %w", shareholderID, err)
	}

	loans, err := s.loanRepo.FindLoansByShareholderID(ctx, shareholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans of shareholder %s: %w", shareholderID, err)
	}

	resp := dto.ShareholderAccountResponse{
		ShareholderID: shareholderID,
		TotalCapital:  shareholder.TotalCapital,
		ActiveCapital: decimal.Zero,
		Positions:     make([]dto.ShareholderLoanPosition, 0, len(loans)),
	}
	for _, loan := range loans {
		contribution := contributionOf(loan, shareholderID)
		if contribution.IsZero() {
			continue
		}
		if loan.Status == domain.LoanStatusActive {
			resp.ActiveCapital = resp.ActiveCapital.Add(contribution)
		}
		resp.Positions = append(resp.Positions, dto.ShareholderLoanPosition{
			LoanID:        loan.LoanID,
			GroupID:       loan.GroupID,
			Status:        loan.Status,
			Contribution:  contribution,
			ShareFraction: credit.ShareFraction(contribution, loan.Amount),
		})
	}
	return &resp, nil
}

// GetProfitDistribution splits the interest and recovered capital of a
// window pro-rata across shareholders, with a detail line per contributing
// installment. Realized figures come from installments actually paid in the
// window; projected ones from installments falling due in it.
func (s *shareholderService) GetProfitDistribution(ctx context.Context, params dto.ProfitParams) (*dto.ProfitDistributionResponse, error) {
	if params.To.Before(params.From) {
		return nil, apperrors.NewValidationError("to must not precede from")
	}
	profitType := params.Type
	if profitType == "" {
		profitType = profitTypeRealized
	}
	if profitType != profitTypeRealized && profitType != profitTypeProjected {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid profit type %q", params.Type))
	}

	from := domain.DayOf(params.From)
	to := domain.DayOf(params.To).AddDate(0, 0, 1)

	var records []portsrepo.InstallmentRecord
	var err error
	if profitType == profitTypeRealized {
		records, err = s.accountRepo.FindPaidInstallments(ctx, portsrepo.CollectionsFilter{From: from, To: to})
	} else {
		records, err = s.accountRepo.FindUnpaidInstallmentsDueBetween(ctx, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query installments for profit distribution: %w", err)
	}

	type shareAccrual struct {
		profit  decimal.Decimal
		capital decimal.Decimal
		detail  []dto.ProfitDetailLine
	}
	accruals := make(map[string]*shareAccrual)
	loanCache := make(map[string]*domain.Loan)
	totalInterest := decimal.Zero
	totalCapital := decimal.Zero
	for _, rec := range records {
		loan, ok := loanCache[rec.LoanID]
		if !ok {
			loan, err = s.loanRepo.FindLoanByID(ctx, rec.LoanID)
			if err != nil {
				return nil, fmt.Errorf("failed to load loan %s: %w", rec.LoanID, err)
			}
			loanCache[rec.LoanID] = loan
		}
		capital, interest := credit.Decompose(rec.Installment.Amount, loan.MonthlyRate())
		totalInterest = totalInterest.Add(interest)
		totalCapital = totalCapital.Add(capital)

		for _, c := range loan.Contributions {
			share := credit.ShareFraction(c.Amount, loan.Amount)
			acc := accruals[c.ShareholderID]
			if acc == nil {
				acc = &shareAccrual{profit: decimal.Zero, capital: decimal.Zero}
				accruals[c.ShareholderID] = acc
			}
			profitShare := interest.Mul(share)
			capitalShare := capital.Mul(share)
			acc.profit = acc.profit.Add(profitShare)
			acc.capital = acc.capital.Add(capitalShare)
			acc.detail = append(acc.detail, dto.ProfitDetailLine{
				LoanID:      rec.LoanID,
				DueDate:     rec.Installment.DueDate,
				PaidDate:    rec.Installment.PaidDate,
				Profit:      profitShare.Round(2),
				Capital:     capitalShare.Round(2),
				AmountShare: rec.Installment.Amount.Mul(share).Round(2),
			})
		}
	}

	resp := dto.ProfitDistributionResponse{
		From:          from,
		To:            domain.DayOf(params.To),
		Type:          profitType,
		TotalInterest: totalInterest.Round(2),
		TotalCapital:  totalCapital.Round(2),
		Shares:        make([]dto.ShareholderProfit, 0, len(accruals)),
	}
	for shareholderID, acc := range accruals {
		name := ""
		if shareholder, err := s.shareholderRepo.FindShareholderByID(ctx, shareholderID); err == nil {
			name = shareholder.FullName
		}
		resp.Shares = append(resp.Shares, dto.ShareholderProfit{
			ShareholderID: shareholderID,
			FullName:      name,
			Profit:        acc.profit.Round(2),
			Capital:       acc.capital.Round(2),
			Detail:        acc.detail,
		})
	}
	sort.Slice(resp.Shares, func(i, j int) bool {
		return resp.Shares[i].ShareholderID < resp.Shares[j].ShareholderID
	})
	return &resp, nil
}
