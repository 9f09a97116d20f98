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
	"github.com/crediagil/crediagil_backend/internal/utils/pagination"
)

var (
	ErrAccountClosed     = errors.New("account is closed")
	ErrGroupLedgerOnRead = errors.New("group ledger is derived from member payments")
	ErrOverpayment       = errors.New("payment exceeds the installment amount")
)

const (
	defaultCollectionsLimit = 50
	maxCollectionsLimit     = 200
)

// accountService manages current accounts, payment application and the
// collections report.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	personRepo  portsrepo.PersonRepositoryFacade
	groupRepo   portsrepo.GroupRepositoryFacade
	loanRepo    portsrepo.LoanRepositoryFacade
	loanSvc     portssvc.LoanSvcFacade
}

// NewAccountService creates a new account service. The loan service is used
// to settle a loan when a payment completes its last schedule.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, personRepo portsrepo.PersonRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade, loanRepo portsrepo.LoanRepositoryFacade, loanSvc portssvc.LoanSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		personRepo:  personRepo,
		groupRepo:   groupRepo,
		loanRepo:    loanRepo,
		loanSvc:     loanSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*dto.AccountResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return s.toResponse(ctx, account)
}

func (s *accountService) GetAccountByPersonID(ctx context.Context, personID string) (*dto.AccountResponse, error) {
	account, err := s.accountRepo.FindActiveAccountByPersonID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("person %s has no active account", personID))
		}
		return nil, fmt.Errorf("failed to get account for person %s: %w", personID, err)
	}
	return s.toResponse(ctx, account)
}

func (s *accountService) GetAccountByGroupID(ctx context.Context, groupID string) (*dto.AccountResponse, error) {
	account, err := s.accountRepo.FindActiveAccountByGroupID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s has no active account", groupID))
		}
		return nil, fmt.Errorf("failed to get account for group %s: %w", groupID, err)
	}
	return s.toResponse(ctx, account)
}

// toResponse virtualizes GROUP accounts before shaping the response.
func (s *accountService) toResponse(ctx context.Context, account *domain.CurrentAccount) (*dto.AccountResponse, error) {
	if account.AccountType != domain.AccountTypeGroup {
		resp := dto.ToAccountResponse(*account)
		return &resp, nil
	}

	personAccounts, err := s.loanPersonAccounts(ctx, account.LoanID)
	if err != nil {
		return nil, err
	}
	view, totals := credit.VirtualizeGroupSchedule(*account, personAccounts)
	resp := dto.ToAccountResponse(view)
	resp.PersonTotals = totals
	return &resp, nil
}

func (s *accountService) loanPersonAccounts(ctx context.Context, loanID string) ([]domain.CurrentAccount, error) {
	accounts, err := s.accountRepo.FindAccountsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts of loan %s: %w", loanID, err)
	}
	return filterPersonAccounts(accounts), nil
}

func (s *accountService) ListAccounts(ctx context.Context, status domain.AccountStatus, accountType domain.AccountType, limit int, offset int) ([]domain.CurrentAccount, error) {
	accounts, err := s.accountRepo.FindAccounts(ctx, status, accountType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount opens an account by hand, outside the loan flow. Used for
// ledgers migrated from paper records or corrected after the fact. The
// installments are stored as given, all pending.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*dto.AccountResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if (req.PersonID == "") == (req.GroupID == "") {
		return nil, apperrors.NewValidationError("exactly one of personID or groupID is required")
	}
	if req.TotalAmount.IsNegative() {
		return nil, apperrors.NewValidationError("totalAmount cannot be negative")
	}

	accountType := domain.AccountTypePerson
	if req.PersonID != "" {
		if _, err := s.personRepo.FindPersonByID(ctx, req.PersonID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", req.PersonID))
			}
			return nil, fmt.Errorf("failed to check person %s: %w", req.PersonID, err)
		}
	} else {
		accountType = domain.AccountTypeGroup
		if _, err := s.groupRepo.FindGroupByID(ctx, req.GroupID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", req.GroupID))
			}
			return nil, fmt.Errorf("failed to check group %s: %w", req.GroupID, err)
		}
	}
	if req.LoanID != "" {
		if _, err := s.loanRepo.FindLoanByID(ctx, req.LoanID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("loan %s not found", req.LoanID))
			}
			return nil, fmt.Errorf("failed to check loan %s: %w", req.LoanID, err)
		}
	}

	installments := make([]domain.Installment, len(req.Installments))
	for i, in := range req.Installments {
		installments[i] = domain.Installment{
			Number:      in.Number,
			Amount:      in.Amount,
			DueDate:     in.DueDate,
			AmountPaid:  decimal.Zero,
			Status:      domain.InstallmentStatusPending,
			Observation: in.Observation,
		}
	}
	sort.Slice(installments, func(i, j int) bool { return installments[i].Number < installments[j].Number })

	now := time.Now()
	account := domain.CurrentAccount{
		AccountID:    uuid.NewString(),
		AccountType:  accountType,
		PersonID:     req.PersonID,
		GroupID:      req.GroupID,
		LoanID:       req.LoanID,
		TotalAmount:  req.TotalAmount,
		Installments: installments,
		Status:       domain.AccountStatusActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	logger.Info("account created", "account_id", account.AccountID, "account_type", string(accountType))
	resp := dto.ToAccountResponse(account)
	return &resp, nil
}

func (s *accountService) ApplyPayment(ctx context.Context, accountID string, installmentNumber int, req dto.ApplyPaymentRequest, updaterUserID string) (*dto.AccountResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	if account.Status == domain.AccountStatusClosed {
		return nil, apperrors.NewAppError(409, "cannot record payments on a closed account", ErrAccountClosed)
	}

	if account.AccountType == domain.AccountTypeGroup {
		personAccounts, err := s.loanPersonAccounts(ctx, account.LoanID)
		if err != nil {
			return nil, err
		}
		if len(personAccounts) > 0 {
			return nil, apperrors.NewAppError(409,
				"payments go to member accounts; the group ledger is derived from them", ErrGroupLedgerOnRead)
		}
	}

	inst := account.Installment(installmentNumber)
	if inst == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("installment %d not found on account %s", installmentNumber, accountID))
	}

	now := time.Now().UTC()
	if err := applyInstallmentUpdate(inst, req, now); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateInstallment(ctx, accountID, *inst, updaterUserID, now); err != nil {
		return nil, fmt.Errorf("failed to update installment %d on account %s: %w", installmentNumber, accountID, err)
	}
	logger.Info("payment applied", "account_id", accountID, "installment", installmentNumber,
		"amount_paid", inst.AmountPaid.String(), "status", inst.Status)

	// The payment is committed. If it completed the schedule, settle the
	// loan; a cascade failure surfaces as retriable without undoing the
	// payment.
	if inst.Status == domain.InstallmentStatusPaid {
		if _, err := s.loanSvc.SettleLoanIfComplete(ctx, account.LoanID, updaterUserID); err != nil {
			return nil, err
		}
	}

	updated, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account %s: %w", accountID, err)
	}
	return s.toResponse(ctx, updated)
}

// applyInstallmentUpdate merges a payment request into an installment and
// rederives its status. A payment adds to the installment's running
// AmountPaid. A manual status override wins over the derived status.
func applyInstallmentUpdate(inst *domain.Installment, req dto.ApplyPaymentRequest, now time.Time) error {
	if req.AmountPaid != nil {
		payment := *req.AmountPaid
		if payment.IsNegative() {
			return apperrors.NewValidationError("amountPaid cannot be negative")
		}
		total := inst.AmountPaid.Add(payment)
		if total.GreaterThan(inst.Amount.Add(domain.Epsilon)) {
			return apperrors.NewAppError(400,
				fmt.Sprintf("cumulative amountPaid %s exceeds installment amount %s", total, inst.Amount), ErrOverpayment)
		}
		inst.AmountPaid = total

		switch {
		case inst.Settled():
			inst.Status = domain.InstallmentStatusPaid
		case total.GreaterThan(decimal.Zero):
			inst.Status = domain.InstallmentStatusPartial
		default:
			inst.Status = domain.InstallmentStatusPending
		}
	}

	if req.Status != nil {
		status, err := parseInstallmentStatus(*req.Status)
		if err != nil {
			return err
		}
		inst.Status = status
	}

	switch inst.Status {
	case domain.InstallmentStatusPaid:
		if req.PaidDate != nil {
			inst.PaidDate = req.PaidDate
		} else if inst.PaidDate == nil {
			inst.PaidDate = &now
		}
	default:
		if req.PaidDate != nil {
			inst.PaidDate = req.PaidDate
		} else {
			inst.PaidDate = nil
		}
	}

	if req.DueDate != nil {
		inst.DueDate = domain.DayOf(*req.DueDate)
	}
	if req.Observation != nil {
		inst.Observation = *req.Observation
	}
	return nil
}

func parseInstallmentStatus(raw string) (domain.InstallmentStatus, error) {
	switch domain.InstallmentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case domain.InstallmentStatusPending:
		return domain.InstallmentStatusPending, nil
	case domain.InstallmentStatusPartial:
		return domain.InstallmentStatusPartial, nil
	case domain.InstallmentStatusPaid:
		return domain.InstallmentStatusPaid, nil
	case domain.InstallmentStatusOverdue:
		return domain.InstallmentStatusOverdue, nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid installment status %q", raw))
	}
}

func (s *accountService) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, updaterUserID string) error {
	switch status {
	case domain.AccountStatusActive, domain.AccountStatusClosed, domain.AccountStatusSuspended:
		// valid
	default:
		return apperrors.NewValidationError(fmt.Sprintf("invalid account status %q", status))
	}

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return s.accountRepo.UpdateAccountStatus(ctx, accountID, status, updaterUserID, time.Now().UTC())
}

func (s *accountService) GetCollections(ctx context.Context, params dto.CollectionsParams) (*dto.CollectionsResponse, error) {
	if params.To.Before(params.From) {
		return nil, apperrors.NewValidationError("to must not precede from")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultCollectionsLimit
	}
	if limit > maxCollectionsLimit {
		limit = maxCollectionsLimit
	}

	filter := portsrepo.CollectionsFilter{
		From: domain.DayOf(params.From),
		// Inclusive upper bound: the whole To day counts.
		To:    domain.DayOf(params.To).AddDate(0, 0, 1),
		Limit: limit,
	}
	if params.NextToken != "" {
		afterPaidAt, afterID, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid nextToken")
		}
		filter.AfterPaidAt = &afterPaidAt
		filter.AfterID = afterID
	}

	records, err := s.accountRepo.FindPaidInstallments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}

	resp := dto.CollectionsResponse{
		Entries:        make([]dto.CollectionEntry, 0, len(records)),
		TotalCollected: decimal.Zero,
	}
	for _, rec := range records {
		paidDate := time.Time{}
		if rec.Installment.PaidDate != nil {
			paidDate = *rec.Installment.PaidDate
		}
		resp.Entries = append(resp.Entries, dto.CollectionEntry{
			AccountID:   rec.AccountID,
			AccountType: rec.AccountType,
			PersonID:    rec.PersonID,
			GroupID:     rec.GroupID,
			LoanID:      rec.LoanID,
			Number:      rec.Installment.Number,
			AmountPaid:  rec.Installment.AmountPaid,
			PaidDate:    paidDate,
		})
		resp.TotalCollected = resp.TotalCollected.Add(rec.Installment.AmountPaid)
	}

	if len(records) == limit {
		last := records[len(records)-1]
		if last.Installment.PaidDate != nil {
			resp.NextToken = pagination.EncodeToken(*last.Installment.PaidDate, last.AccountID)
		}
	}
	return &resp, nil
}
