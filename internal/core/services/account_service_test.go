package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/core/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockPersonRepo  *MockPersonRepository
	mockGroupRepo   *MockGroupRepository
	mockLoanRepo    *MockLoanRepository
	mockLoanSvc     *MockLoanSvc
	service         portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockPersonRepo = new(MockPersonRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockLoanSvc = new(MockLoanSvc)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockPersonRepo, suite.mockGroupRepo, suite.mockLoanRepo, suite.mockLoanSvc)
}

func (suite *AccountServiceTestSuite) newPersonAccount() *domain.CurrentAccount {
	due := time.Now().UTC().AddDate(0, 0, 30)
	return &domain.CurrentAccount{
		AccountID:   uuid.NewString(),
		AccountType: domain.AccountTypePerson,
		PersonID:    uuid.NewString(),
		LoanID:      uuid.NewString(),
		TotalAmount: decimal.NewFromInt(230),
		Status:      domain.AccountStatusActive,
		Installments: []domain.Installment{
			{Number: 1, Amount: decimal.NewFromInt(115), DueDate: due, AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
			{Number: 2, Amount: decimal.NewFromInt(115), DueDate: due.AddDate(0, 0, 30), AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
		},
	}
}

// --- Manual creation ---

func (suite *AccountServiceTestSuite) TestCreateAccount_BothOwnersRejected() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		PersonID:    uuid.NewString(),
		GroupID:     uuid.NewString(),
		TotalAmount: decimal.NewFromInt(100),
	}

	_, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_PersonNotFound() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		PersonID:    uuid.NewString(),
		TotalAmount: decimal.NewFromInt(100),
	}

	suite.mockPersonRepo.On("FindPersonByID", ctx, req.PersonID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_PersonWithLoanSuccess() {
	ctx := context.Background()
	personID := uuid.NewString()
	loanID := uuid.NewString()
	creatorID := uuid.NewString()
	due := time.Now().UTC().AddDate(0, 0, 30)
	req := dto.CreateAccountRequest{
		PersonID:    personID,
		LoanID:      loanID,
		TotalAmount: decimal.NewFromInt(230),
		Installments: []dto.InstallmentRequest{
			{Number: 2, Amount: decimal.NewFromInt(115), DueDate: due.AddDate(0, 0, 30)},
			{Number: 1, Amount: decimal.NewFromInt(115), DueDate: due},
		},
	}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(&domain.Person{PersonID: personID}, nil).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(&domain.Loan{LoanID: loanID}, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.CurrentAccount) bool {
		if a.AccountType != domain.AccountTypePerson || a.PersonID != personID || a.LoanID != loanID {
			return false
		}
		if len(a.Installments) != 2 || a.Installments[0].Number != 1 || a.Installments[1].Number != 2 {
			return false
		}
		return a.Installments[0].Status == domain.InstallmentStatusPending &&
			a.Installments[0].AmountPaid.IsZero() &&
			a.CreatedBy == creatorID
	})).Return(nil).Once()

	resp, err := suite.service.CreateAccount(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Equal(domain.AccountStatusActive, resp.Status)
	suite.Len(resp.Installments, 2)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_GroupOwner() {
	ctx := context.Background()
	groupID := uuid.NewString()

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(&domain.Group{GroupID: groupID}, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.CurrentAccount) bool {
		return a.AccountType == domain.AccountTypeGroup && a.GroupID == groupID && a.LoanID == ""
	})).Return(nil).Once()

	resp, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{GroupID: groupID}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(groupID, resp.GroupID)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "FindLoanByID", mock.Anything, mock.Anything)
}

// --- Reads ---

func (suite *AccountServiceTestSuite) TestGetAccountByID_PersonAccount() {
	ctx := context.Background()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	resp, err := suite.service.GetAccountByID(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.Equal(account.AccountID, resp.AccountID)
	suite.Len(resp.Installments, 2)
	suite.Empty(resp.PersonTotals)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountsByLoanID", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetAccountByGroupID_VirtualizesLedger() {
	ctx := context.Background()
	groupID := uuid.NewString()
	loanID := uuid.NewString()
	due := time.Now().UTC().AddDate(0, 0, 30)

	groupAccount := &domain.CurrentAccount{
		AccountID:   uuid.NewString(),
		AccountType: domain.AccountTypeGroup,
		GroupID:     groupID,
		LoanID:      loanID,
		TotalAmount: decimal.NewFromInt(230),
		Status:      domain.AccountStatusActive,
		Installments: []domain.Installment{
			{Number: 1, Amount: decimal.NewFromInt(115), DueDate: due, AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
			{Number: 2, Amount: decimal.NewFromInt(115), DueDate: due.AddDate(0, 0, 30), AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
		},
	}
	paidAt := time.Now().UTC()
	memberAccount := domain.CurrentAccount{
		AccountID:   uuid.NewString(),
		AccountType: domain.AccountTypePerson,
		PersonID:    uuid.NewString(),
		LoanID:      loanID,
		TotalAmount: decimal.NewFromInt(115),
		Status:      domain.AccountStatusActive,
		Installments: []domain.Installment{
			{Number: 1, Amount: decimal.NewFromFloat(57.5), PaidDate: &paidAt, AmountPaid: decimal.NewFromFloat(57.5), Status: domain.InstallmentStatusPaid},
			{Number: 2, Amount: decimal.NewFromFloat(57.5), AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
		},
	}

	suite.mockAccountRepo.On("FindActiveAccountByGroupID", ctx, groupID).Return(groupAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByLoanID", ctx, loanID).Return([]domain.CurrentAccount{*groupAccount, memberAccount}, nil).Once()

	resp, err := suite.service.GetAccountByGroupID(ctx, groupID)

	suite.Require().NoError(err)
	// 57.50 collected pours into the first group installment of 115.
	suite.Equal(domain.InstallmentStatusPartial, resp.Installments[0].Status)
	suite.True(resp.Installments[0].AmountPaid.Equal(decimal.NewFromFloat(57.5)))
	suite.Equal(domain.InstallmentStatusPending, resp.Installments[1].Status)
	suite.Require().Len(resp.PersonTotals, 1)
	suite.Equal(memberAccount.PersonID, resp.PersonTotals[0].PersonID)
	suite.Equal(1, resp.PersonTotals[0].PaidInstallments)
}

func (suite *AccountServiceTestSuite) TestGetAccountByPersonID_NotFound() {
	ctx := context.Background()
	personID := uuid.NewString()

	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.GetAccountByPersonID(ctx, personID)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- ApplyPayment ---

func (suite *AccountServiceTestSuite) TestApplyPayment_ClosedAccount() {
	ctx := context.Background()
	account := suite.newPersonAccount()
	account.Status = domain.AccountStatusClosed

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	amount := decimal.NewFromInt(50)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, services.ErrAccountClosed)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_GroupLedgerRejected() {
	ctx := context.Background()
	groupID := uuid.NewString()
	loanID := uuid.NewString()
	groupAccount := &domain.CurrentAccount{
		AccountID:   uuid.NewString(),
		AccountType: domain.AccountTypeGroup,
		GroupID:     groupID,
		LoanID:      loanID,
		Status:      domain.AccountStatusActive,
		Installments: []domain.Installment{
			{Number: 1, Amount: decimal.NewFromInt(115), AmountPaid: decimal.Zero, Status: domain.InstallmentStatusPending},
		},
	}
	member := pendingAccount(loanID, uuid.NewString())

	suite.mockAccountRepo.On("FindAccountByID", ctx, groupAccount.AccountID).Return(groupAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByLoanID", ctx, loanID).Return([]domain.CurrentAccount{*groupAccount, member}, nil).Once()

	amount := decimal.NewFromInt(50)
	resp, err := suite.service.ApplyPayment(ctx, groupAccount.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, services.ErrGroupLedgerOnRead)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateInstallment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_Overpayment() {
	ctx := context.Background()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	amount := decimal.NewFromInt(200)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, services.ErrOverpayment)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_UnknownInstallmentNumber() {
	ctx := context.Background()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	amount := decimal.NewFromInt(50)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 9, dto.ApplyPaymentRequest{AmountPaid: &amount}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_PartialPayment() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockAccountRepo.On("UpdateInstallment", ctx, account.AccountID, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Number == 1 && i.Status == domain.InstallmentStatusPartial &&
			i.AmountPaid.Equal(decimal.NewFromInt(50)) && i.PaidDate == nil
	}), updaterID, mock.Anything).Return(nil).Once()

	amount := decimal.NewFromInt(50)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, updaterID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(domain.InstallmentStatusPartial, resp.Installments[0].Status)
	suite.mockLoanSvc.AssertNotCalled(suite.T(), "SettleLoanIfComplete", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestApplyPayment_SecondPaymentCompletesInstallment() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()
	// A previous partial payment of 50 is already on the books; the 65
	// remainder must add up to the full 115, not replace the 50.
	account.Installments[0].AmountPaid = decimal.NewFromInt(50)
	account.Installments[0].Status = domain.InstallmentStatusPartial

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockAccountRepo.On("UpdateInstallment", ctx, account.AccountID, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Number == 1 && i.Status == domain.InstallmentStatusPaid &&
			i.AmountPaid.Equal(decimal.NewFromInt(115)) && i.PaidDate != nil
	}), updaterID, mock.Anything).Return(nil).Once()
	suite.mockLoanSvc.On("SettleLoanIfComplete", ctx, account.LoanID, updaterID).Return(false, nil).Once()

	amount := decimal.NewFromInt(65)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, updaterID)

	suite.Require().NoError(err)
	suite.Equal(domain.InstallmentStatusPaid, resp.Installments[0].Status)
	suite.mockLoanSvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestApplyPayment_OverpaymentCountsPriorPayments() {
	ctx := context.Background()
	account := suite.newPersonAccount()
	account.Installments[0].AmountPaid = decimal.NewFromInt(100)
	account.Installments[0].Status = domain.InstallmentStatusPartial

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	// 100 already paid plus 50 would exceed the 115 owed.
	amount := decimal.NewFromInt(50)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, services.ErrOverpayment)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateInstallment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_SettlementCascadeError() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()
	account.Installments[1].AmountPaid = decimal.NewFromInt(115)
	account.Installments[1].Status = domain.InstallmentStatusPaid

	cascadeErr := apperrors.NewAppError(500, "cascade stuck", apperrors.ErrCascadeIncomplete)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateInstallment", ctx, account.AccountID, mock.Anything, updaterID, mock.Anything).Return(nil).Once()
	suite.mockLoanSvc.On("SettleLoanIfComplete", ctx, account.LoanID, updaterID).Return(true, cascadeErr).Once()

	amount := decimal.NewFromInt(115)
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{AmountPaid: &amount}, updaterID)

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrCascadeIncomplete)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_ManualStatusOverride() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockAccountRepo.On("UpdateInstallment", ctx, account.AccountID, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Number == 2 && i.Status == domain.InstallmentStatusPaid && i.PaidDate != nil
	}), updaterID, mock.Anything).Return(nil).Once()
	suite.mockLoanSvc.On("SettleLoanIfComplete", ctx, account.LoanID, updaterID).Return(false, nil).Once()

	status := "paid"
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 2, dto.ApplyPaymentRequest{Status: &status}, updaterID)

	suite.Require().NoError(err)
	suite.Equal(domain.InstallmentStatusPaid, resp.Installments[1].Status)
}

func (suite *AccountServiceTestSuite) TestApplyPayment_OverdueOverride() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockAccountRepo.On("UpdateInstallment", ctx, account.AccountID, mock.MatchedBy(func(i domain.Installment) bool {
		return i.Number == 1 && i.Status == domain.InstallmentStatusOverdue && i.PaidDate == nil
	}), updaterID, mock.Anything).Return(nil).Once()

	status := "overdue"
	resp, err := suite.service.ApplyPayment(ctx, account.AccountID, 1, dto.ApplyPaymentRequest{Status: &status}, updaterID)

	suite.Require().NoError(err)
	suite.Equal(domain.InstallmentStatusOverdue, resp.Installments[0].Status)
	suite.mockLoanSvc.AssertNotCalled(suite.T(), "SettleLoanIfComplete", mock.Anything, mock.Anything, mock.Anything)
}

// --- UpdateAccountStatus ---

func (suite *AccountServiceTestSuite) TestUpdateAccountStatus_InvalidStatus() {
	err := suite.service.UpdateAccountStatus(context.Background(), uuid.NewString(), domain.AccountStatus("FROZEN"), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestUpdateAccountStatus_Success() {
	ctx := context.Background()
	updaterID := uuid.NewString()
	account := suite.newPersonAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountStatus", ctx, account.AccountID, domain.AccountStatusSuspended, updaterID, mock.Anything).Return(nil).Once()

	err := suite.service.UpdateAccountStatus(ctx, account.AccountID, domain.AccountStatusSuspended, updaterID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- GetCollections ---

func (suite *AccountServiceTestSuite) TestGetCollections_InvalidRange() {
	now := time.Now().UTC()
	resp, err := suite.service.GetCollections(context.Background(), dto.CollectionsParams{
		From: now,
		To:   now.AddDate(0, 0, -1),
	})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestGetCollections_SumsWindow() {
	ctx := context.Background()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	records := []portsrepo.InstallmentRecord{
		{
			AccountID:   uuid.NewString(),
			AccountType: domain.AccountTypePerson,
			PersonID:    uuid.NewString(),
			LoanID:      uuid.NewString(),
			Installment: domain.Installment{Number: 1, Amount: decimal.NewFromInt(115), PaidDate: &paidAt, AmountPaid: decimal.NewFromInt(115), Status: domain.InstallmentStatusPaid},
		},
		{
			AccountID:   uuid.NewString(),
			AccountType: domain.AccountTypePerson,
			PersonID:    uuid.NewString(),
			LoanID:      uuid.NewString(),
			Installment: domain.Installment{Number: 1, Amount: decimal.NewFromInt(115), PaidDate: &paidAt, AmountPaid: decimal.NewFromInt(60), Status: domain.InstallmentStatusPaid},
		},
	}

	// The To day is inclusive: the repository filter gets the next midnight.
	suite.mockAccountRepo.On("FindPaidInstallments", ctx, mock.MatchedBy(func(f portsrepo.CollectionsFilter) bool {
		return f.From.Equal(from) && f.To.Equal(to.AddDate(0, 0, 1)) && f.Limit == 50 && f.AfterPaidAt == nil
	})).Return(records, nil).Once()

	resp, err := suite.service.GetCollections(ctx, dto.CollectionsParams{From: from, To: to})

	suite.Require().NoError(err)
	suite.Len(resp.Entries, 2)
	suite.True(resp.TotalCollected.Equal(decimal.NewFromInt(175)), "got %s", resp.TotalCollected)
	suite.Empty(resp.NextToken)
}

func (suite *AccountServiceTestSuite) TestGetCollections_FullPageYieldsNextToken() {
	ctx := context.Background()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	records := []portsrepo.InstallmentRecord{
		{
			AccountID:   uuid.NewString(),
			AccountType: domain.AccountTypePerson,
			LoanID:      uuid.NewString(),
			Installment: domain.Installment{Number: 1, Amount: decimal.NewFromInt(115), PaidDate: &paidAt, AmountPaid: decimal.NewFromInt(115), Status: domain.InstallmentStatusPaid},
		},
	}

	suite.mockAccountRepo.On("FindPaidInstallments", ctx, mock.MatchedBy(func(f portsrepo.CollectionsFilter) bool {
		return f.Limit == 1
	})).Return(records, nil).Once()

	resp, err := suite.service.GetCollections(ctx, dto.CollectionsParams{From: from, To: to, Limit: 1})

	suite.Require().NoError(err)
	suite.NotEmpty(resp.NextToken)
}

func (suite *AccountServiceTestSuite) TestGetCollections_BadToken() {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	resp, err := suite.service.GetCollections(context.Background(), dto.CollectionsParams{
		From:      from,
		To:        from.AddDate(0, 0, 7),
		NextToken: "not-a-token",
	})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
