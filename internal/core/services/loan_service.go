package services

import (
	"context"
	"errors"
	"fmt"
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

var (
	ErrGroupNotApproved      = errors.New("group is not approved for lending")
	ErrGroupHasActiveLoan    = errors.New("group already has an active loan")
	ErrContributionsMismatch = errors.New("shareholder contributions do not sum to the loan amount")
	ErrAllocationsMismatch   = errors.New("member allocations do not sum to the loan amount")
	ErrNoActiveMembers       = errors.New("group has no active members")
)

// Loan terms run between 2 and 6 thirty-day periods.
const (
	minInstallments = 2
	maxInstallments = 6
)

// defaultInterestRate is the percentage applied per installment period when
// the request does not specify one.
var defaultInterestRate = decimal.NewFromInt(15)

// loanService grants loans and reconciles their completion.
type loanService struct {
	loanRepo        portsrepo.LoanRepositoryFacade
	groupRepo       portsrepo.GroupRepositoryFacade
	personRepo      portsrepo.PersonRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
	shareholderRepo portsrepo.ShareholderRepositoryFacade
}

// NewLoanService creates a new loan service.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade, personRepo portsrepo.PersonRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, shareholderRepo portsrepo.ShareholderRepositoryFacade) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:        loanRepo,
		groupRepo:       groupRepo,
		personRepo:      personRepo,
		accountRepo:     accountRepo,
		shareholderRepo: shareholderRepo,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, apperrors.NewValidationError("loan amount must be positive")
	}
	if req.InstallmentsCount < minInstallments || req.InstallmentsCount > maxInstallments {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("installmentsCount must be between %d and %d", minInstallments, maxInstallments))
	}
	ratePercent := defaultInterestRate
	if req.InterestRate != nil {
		if req.InterestRate.IsNegative() {
			return nil, apperrors.NewValidationError("interestRate cannot be negative")
		}
		ratePercent = *req.InterestRate
	}
	startDate := time.Now().UTC()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	startDate = domain.DayOf(startDate)

	group, err := s.groupRepo.FindGroupByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", req.GroupID))
		}
		return nil, fmt.Errorf("failed to get group %s: %w", req.GroupID, err)
	}
	switch group.Status {
	case domain.GroupStatusApproved:
		// eligible
	case domain.GroupStatusActiveLoan:
		return nil, apperrors.NewAppError(409, "group already has an active loan", ErrGroupHasActiveLoan)
	default:
		return nil, apperrors.NewAppError(409, fmt.Sprintf("group status %s does not allow lending", group.Status), ErrGroupNotApproved)
	}
	if _, err := s.loanRepo.FindActiveLoanByGroupID(ctx, req.GroupID); err == nil {
		return nil, apperrors.NewAppError(409, "group already has an active loan", ErrGroupHasActiveLoan)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active loan for group %s: %w", req.GroupID, err)
	}

	members, err := s.personRepo.FindPersonsByGroupID(ctx, req.GroupID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %s: %w", req.GroupID, err)
	}
	if len(members) == 0 {
		return nil, apperrors.NewAppError(409, "group has no active members", ErrNoActiveMembers)
	}

	if err := s.validateContributions(ctx, req.Contributions, req.Amount); err != nil {
		return nil, err
	}
	allocations, err := buildAllocations(req, members)
	if err != nil {
		return nil, err
	}

	rate := ratePercent.Div(decimal.NewFromInt(100))
	now := time.Now().UTC()
	loanID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	loan := domain.Loan{
		LoanID:            loanID,
		GroupID:           req.GroupID,
		Amount:            req.Amount,
		InstallmentsCount: req.InstallmentsCount,
		InterestRate:      ratePercent,
		StartDate:         startDate,
		Status:            domain.LoanStatusActive,
		Installments:      credit.GenerateSchedule(req.Amount, rate, req.InstallmentsCount, startDate),
		AuditFields:       audit,
	}
	for _, c := range req.Contributions {
		loan.Contributions = append(loan.Contributions, domain.ShareholderContribution{
			ShareholderID: c.ShareholderID,
			Amount:        c.Amount,
		})
	}

	accounts := make([]domain.CurrentAccount, 0, len(allocations)+1)
	accounts = append(accounts, domain.CurrentAccount{
		AccountID:    uuid.NewString(),
		AccountType:  domain.AccountTypeGroup,
		GroupID:      req.GroupID,
		LoanID:       loanID,
		TotalAmount:  credit.TotalWithInterest(req.Amount, rate, req.InstallmentsCount),
		Installments: loan.Installments,
		Status:       domain.AccountStatusActive,
		AuditFields:  audit,
	})

	for _, alloc := range allocations {
		schedule := credit.GenerateSchedule(alloc.Amount, rate, req.InstallmentsCount, startDate)
		loan.Members = append(loan.Members, domain.MemberAllocation{
			PersonID:     alloc.PersonID,
			Amount:       alloc.Amount,
			Installments: schedule,
		})
		accounts = append(accounts, domain.CurrentAccount{
			AccountID:    uuid.NewString(),
			AccountType:  domain.AccountTypePerson,
			PersonID:     alloc.PersonID,
			LoanID:       loanID,
			TotalAmount:  credit.TotalWithInterest(alloc.Amount, rate, req.InstallmentsCount),
			Installments: schedule,
			Status:       domain.AccountStatusActive,
			AuditFields:  audit,
		})
	}

	if err := s.loanRepo.SaveLoan(ctx, loan, accounts); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	logger.Info("loan granted", "loan_id", loanID, "group_id", req.GroupID,
		"amount", req.Amount.String(), "installments", req.InstallmentsCount)
	return &loan, nil
}

func (s *loanService) validateContributions(ctx context.Context, contributions []dto.ContributionRequest, amount decimal.Decimal) error {
	if len(contributions) == 0 {
		return apperrors.NewValidationError("at least one shareholder contribution is required")
	}
	seen := make(map[string]bool, len(contributions))
	sum := decimal.Zero
	for _, c := range contributions {
		if !c.Amount.GreaterThan(decimal.Zero) {
			return apperrors.NewValidationError("contribution amounts must be positive")
		}
		if seen[c.ShareholderID] {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate contribution for shareholder %s", c.ShareholderID))
		}
		seen[c.ShareholderID] = true
		if _, err := s.shareholderRepo.FindShareholderByID(ctx, c.ShareholderID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewNotFoundError(fmt.Sprintf("shareholder %s not found", c.ShareholderID))
			}
			return fmt.Errorf("failed to get shareholder %s: %w", c.ShareholderID, err)
		}
		sum = sum.Add(c.Amount)
	}
	if sum.Sub(amount).Abs().GreaterThan(domain.Epsilon) {
		return apperrors.NewAppError(400,
			fmt.Sprintf("contributions sum to %s, expected %s", sum, amount), ErrContributionsMismatch)
	}
	return nil
}

// buildAllocations resolves the per-member principal split: the explicit
// amounts when provided, otherwise an equal split with the last member
// absorbing the cent remainder.
func buildAllocations(req dto.CreateLoanRequest, members []domain.Person) ([]dto.MemberAmountRequest, error) {
	memberByID := make(map[string]bool, len(members))
	for _, m := range members {
		memberByID[m.PersonID] = true
	}

	if len(req.MemberAmounts) > 0 {
		seen := make(map[string]bool, len(req.MemberAmounts))
		sum := decimal.Zero
		for _, alloc := range req.MemberAmounts {
			if !memberByID[alloc.PersonID] {
				return nil, apperrors.NewValidationError(fmt.Sprintf("person %s is not an active member of the group", alloc.PersonID))
			}
			if seen[alloc.PersonID] {
				return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate allocation for person %s", alloc.PersonID))
			}
			seen[alloc.PersonID] = true
			if !alloc.Amount.GreaterThan(decimal.Zero) {
				return nil, apperrors.NewValidationError("member allocation amounts must be positive")
			}
			sum = sum.Add(alloc.Amount)
		}
		if sum.Sub(req.Amount).Abs().GreaterThan(domain.Epsilon) {
			return nil, apperrors.NewAppError(400,
				fmt.Sprintf("member allocations sum to %s, expected %s", sum, req.Amount), ErrAllocationsMismatch)
		}
		return req.MemberAmounts, nil
	}

	count := decimal.NewFromInt(int64(len(members)))
	per := req.Amount.Div(count).Round(2)
	allocations := make([]dto.MemberAmountRequest, len(members))
	for i, m := range members {
		amount := per
		if i == len(members)-1 {
			amount = req.Amount.Sub(per.Mul(decimal.NewFromInt(int64(len(members) - 1))))
		}
		allocations[i] = dto.MemberAmountRequest{PersonID: m.PersonID, Amount: amount}
	}
	return allocations, nil
}

func (s *loanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan %s not found", loanID))
		}
		return nil, fmt.Errorf("failed to get loan %s: %w", loanID, err)
	}
	return loan, nil
}

func (s *loanService) ListLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error) {
	loans, err := s.loanRepo.FindLoans(ctx, status, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// SettleLoanIfComplete checks whether every person schedule of the loan is
// fully paid, and if so runs the completion cascade. Every step is idempotent
// so a partial failure can be retried by calling this again.
func (s *loanService) SettleLoanIfComplete(ctx context.Context, loanID string, updaterUserID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, apperrors.NewNotFoundError(fmt.Sprintf("loan %s not found", loanID))
		}
		return false, fmt.Errorf("failed to get loan %s: %w", loanID, err)
	}

	accounts, err := s.accountRepo.FindAccountsByLoanID(ctx, loanID)
	if err != nil {
		return false, fmt.Errorf("failed to load accounts of loan %s: %w", loanID, err)
	}
	personAccounts := filterPersonAccounts(accounts)

	complete := loan.Status == domain.LoanStatusPaid
	if !complete {
		complete = allSchedulesPaid(personAccounts, accounts)
	}
	if !complete {
		return false, nil
	}

	now := time.Now().UTC()
	if loan.Status != domain.LoanStatusPaid {
		if err := s.loanRepo.UpdateLoanStatus(ctx, loanID, domain.LoanStatusPaid, updaterUserID, now); err != nil {
			return false, fmt.Errorf("failed to mark loan %s paid: %w", loanID, err)
		}
		logger.Info("loan fully repaid", "loan_id", loanID, "group_id", loan.GroupID)
	}

	// Cascade: close accounts, release the group. The loan is already PAID
	// at this point, so failures surface as a retriable incomplete cascade.
	if _, err := s.accountRepo.CloseAccountsByLoanID(ctx, loanID, updaterUserID, now); err != nil {
		return true, apperrors.NewAppError(500,
			fmt.Sprintf("loan %s is paid but closing its accounts failed", loanID),
			fmt.Errorf("%w: %w", apperrors.ErrCascadeIncomplete, err))
	}

	group, err := s.groupRepo.FindGroupByID(ctx, loan.GroupID)
	if err != nil {
		return true, apperrors.NewAppError(500,
			fmt.Sprintf("loan %s is paid but its group could not be loaded", loanID),
			fmt.Errorf("%w: %w", apperrors.ErrCascadeIncomplete, err))
	}
	if group.Status == domain.GroupStatusActiveLoan {
		if err := s.groupRepo.UpdateGroupStatus(ctx, loan.GroupID, domain.GroupStatusApproved, updaterUserID, now); err != nil {
			return true, apperrors.NewAppError(500,
				fmt.Sprintf("loan %s is paid but releasing group %s failed", loanID, loan.GroupID),
				fmt.Errorf("%w: %w", apperrors.ErrCascadeIncomplete, err))
		}
		logger.Info("group released after loan settlement", "group_id", loan.GroupID)
	}
	return true, nil
}

// allSchedulesPaid reports completion over the person schedules, falling back
// to the group schedule for loans without member accounts.
func allSchedulesPaid(personAccounts, allAccounts []domain.CurrentAccount) bool {
	if len(personAccounts) > 0 {
		for i := range personAccounts {
			if !personAccounts[i].AllPaid() {
				return false
			}
		}
		return true
	}
	for i := range allAccounts {
		if allAccounts[i].AccountType == domain.AccountTypeGroup {
			return allAccounts[i].AllPaid()
		}
	}
	return false
}

func (s *loanService) SyncLoanStatuses(ctx context.Context, updaterUserID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Collect the IDs first: settling a loan removes it from the ACTIVE
	// filter and would shift offset pagination mid-walk.
	var loanIDs []string
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		loans, err := s.loanRepo.FindLoans(ctx, domain.LoanStatusActive, "", pageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("failed to list active loans: %w", err)
		}
		for _, loan := range loans {
			loanIDs = append(loanIDs, loan.LoanID)
		}
		if len(loans) < pageSize {
			break
		}
	}

	settled := 0
	for _, loanID := range loanIDs {
		done, err := s.SettleLoanIfComplete(ctx, loanID, updaterUserID)
		if err != nil {
			logger.Error("loan settlement failed during sync", "loan_id", loanID, "error", err)
			continue
		}
		if done {
			settled++
		}
	}
	logger.Info("loan statuses synchronized", "loans_settled", settled)
	return settled, nil
}
