package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

// --- Mock PersonRepository ---

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) FindPersonByID(ctx context.Context, personID string) (*domain.Person, error) {
	args := m.Called(ctx, personID)
	var person *domain.Person
	if args.Get(0) != nil {
		person = args.Get(0).(*domain.Person)
	}
	return person, args.Error(1)
}

func (m *MockPersonRepository) FindPersonByNationalID(ctx context.Context, nationalID string) (*domain.Person, error) {
	args := m.Called(ctx, nationalID)
	var person *domain.Person
	if args.Get(0) != nil {
		person = args.Get(0).(*domain.Person)
	}
	return person, args.Error(1)
}

func (m *MockPersonRepository) FindPersonsByIDs(ctx context.Context, personIDs []string) (map[string]domain.Person, error) {
	args := m.Called(ctx, personIDs)
	var persons map[string]domain.Person
	if args.Get(0) != nil {
		persons = args.Get(0).(map[string]domain.Person)
	}
	return persons, args.Error(1)
}

func (m *MockPersonRepository) FindPersonsByGroupID(ctx context.Context, groupID string, includeArchived bool) ([]domain.Person, error) {
	args := m.Called(ctx, groupID, includeArchived)
	var persons []domain.Person
	if args.Get(0) != nil {
		persons = args.Get(0).([]domain.Person)
	}
	return persons, args.Error(1)
}

func (m *MockPersonRepository) FindPersons(ctx context.Context, filter portsrepo.ListPersonsFilter) ([]domain.Person, error) {
	args := m.Called(ctx, filter)
	var persons []domain.Person
	if args.Get(0) != nil {
		persons = args.Get(0).([]domain.Person)
	}
	return persons, args.Error(1)
}

func (m *MockPersonRepository) SavePerson(ctx context.Context, person domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) UpdatePerson(ctx context.Context, person domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

// --- Mock GroupRepository ---

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	var group *domain.Group
	if args.Get(0) != nil {
		group = args.Get(0).(*domain.Group)
	}
	return group, args.Error(1)
}

func (m *MockGroupRepository) FindGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	args := m.Called(ctx, limit, offset)
	var groups []domain.Group
	if args.Get(0) != nil {
		groups = args.Get(0).([]domain.Group)
	}
	return groups, args.Error(1)
}

func (m *MockGroupRepository) FindGroupIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var ids []string
	if args.Get(0) != nil {
		ids = args.Get(0).([]string)
	}
	return ids, args.Error(1)
}

func (m *MockGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) UpdateGroup(ctx context.Context, group domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) UpdateGroupStatus(ctx context.Context, groupID string, status domain.GroupStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, groupID, status, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock LoanRepository ---

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	var loan *domain.Loan
	if args.Get(0) != nil {
		loan = args.Get(0).(*domain.Loan)
	}
	return loan, args.Error(1)
}

func (m *MockLoanRepository) FindActiveLoanByGroupID(ctx context.Context, groupID string) (*domain.Loan, error) {
	args := m.Called(ctx, groupID)
	var loan *domain.Loan
	if args.Get(0) != nil {
		loan = args.Get(0).(*domain.Loan)
	}
	return loan, args.Error(1)
}

func (m *MockLoanRepository) FindLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error) {
	args := m.Called(ctx, status, groupID, limit, offset)
	var loans []domain.Loan
	if args.Get(0) != nil {
		loans = args.Get(0).([]domain.Loan)
	}
	return loans, args.Error(1)
}

func (m *MockLoanRepository) FindLoansByShareholderID(ctx context.Context, shareholderID string) ([]domain.Loan, error) {
	args := m.Called(ctx, shareholderID)
	var loans []domain.Loan
	if args.Get(0) != nil {
		loans = args.Get(0).([]domain.Loan)
	}
	return loans, args.Error(1)
}

func (m *MockLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan, accounts []domain.CurrentAccount) error {
	args := m.Called(ctx, loan, accounts)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateLoanStatus(ctx context.Context, loanID string, status domain.LoanStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, loanID, status, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, accountID)
	var account *domain.CurrentAccount
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.CurrentAccount)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByLoanID(ctx context.Context, loanID string) ([]domain.CurrentAccount, error) {
	args := m.Called(ctx, loanID)
	var accounts []domain.CurrentAccount
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.CurrentAccount)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) FindActiveAccountByPersonID(ctx context.Context, personID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, personID)
	var account *domain.CurrentAccount
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.CurrentAccount)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindActiveAccountByGroupID(ctx context.Context, groupID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, groupID)
	var account *domain.CurrentAccount
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.CurrentAccount)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccounts(ctx context.Context, status domain.AccountStatus, accountType domain.AccountType, limit int, offset int) ([]domain.CurrentAccount, error) {
	args := m.Called(ctx, status, accountType, limit, offset)
	var accounts []domain.CurrentAccount
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.CurrentAccount)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) FindPaidInstallments(ctx context.Context, filter portsrepo.CollectionsFilter) ([]portsrepo.InstallmentRecord, error) {
	args := m.Called(ctx, filter)
	var records []portsrepo.InstallmentRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]portsrepo.InstallmentRecord)
	}
	return records, args.Error(1)
}

func (m *MockAccountRepository) FindUnpaidInstallmentsDueBetween(ctx context.Context, from, to time.Time) ([]portsrepo.InstallmentRecord, error) {
	args := m.Called(ctx, from, to)
	var records []portsrepo.InstallmentRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]portsrepo.InstallmentRecord)
	}
	return records, args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.CurrentAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateInstallment(ctx context.Context, accountID string, installment domain.Installment, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, installment, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) CloseAccountsByLoanID(ctx context.Context, loanID string, updatedBy string, updatedAt time.Time) (int, error) {
	args := m.Called(ctx, loanID, updatedBy, updatedAt)
	return args.Int(0), args.Error(1)
}

// --- Mock ShareholderRepository ---

type MockShareholderRepository struct {
	mock.Mock
}

func (m *MockShareholderRepository) FindShareholderByID(ctx context.Context, shareholderID string) (*domain.Shareholder, error) {
	args := m.Called(ctx, shareholderID)
	var shareholder *domain.Shareholder
	if args.Get(0) != nil {
		shareholder = args.Get(0).(*domain.Shareholder)
	}
	return shareholder, args.Error(1)
}

func (m *MockShareholderRepository) FindShareholderByNationalID(ctx context.Context, nationalID string) (*domain.Shareholder, error) {
	args := m.Called(ctx, nationalID)
	var shareholder *domain.Shareholder
	if args.Get(0) != nil {
		shareholder = args.Get(0).(*domain.Shareholder)
	}
	return shareholder, args.Error(1)
}

func (m *MockShareholderRepository) FindShareholders(ctx context.Context, limit int, offset int) ([]domain.Shareholder, error) {
	args := m.Called(ctx, limit, offset)
	var shareholders []domain.Shareholder
	if args.Get(0) != nil {
		shareholders = args.Get(0).([]domain.Shareholder)
	}
	return shareholders, args.Error(1)
}

func (m *MockShareholderRepository) SaveShareholder(ctx context.Context, shareholder domain.Shareholder) error {
	args := m.Called(ctx, shareholder)
	return args.Error(0)
}

func (m *MockShareholderRepository) UpdateShareholder(ctx context.Context, shareholder domain.Shareholder) error {
	args := m.Called(ctx, shareholder)
	return args.Error(0)
}

func (m *MockShareholderRepository) DeleteShareholder(ctx context.Context, shareholderID string) error {
	args := m.Called(ctx, shareholderID)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn       func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Mock LoanSvc (used by the account service for settlement) ---

type MockLoanSvc struct {
	mock.Mock
}

func (m *MockLoanSvc) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	var loan *domain.Loan
	if args.Get(0) != nil {
		loan = args.Get(0).(*domain.Loan)
	}
	return loan, args.Error(1)
}

func (m *MockLoanSvc) ListLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error) {
	args := m.Called(ctx, status, groupID, limit, offset)
	var loans []domain.Loan
	if args.Get(0) != nil {
		loans = args.Get(0).([]domain.Loan)
	}
	return loans, args.Error(1)
}

func (m *MockLoanSvc) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	args := m.Called(ctx, req, creatorUserID)
	var loan *domain.Loan
	if args.Get(0) != nil {
		loan = args.Get(0).(*domain.Loan)
	}
	return loan, args.Error(1)
}

func (m *MockLoanSvc) SettleLoanIfComplete(ctx context.Context, loanID string, updaterUserID string) (bool, error) {
	args := m.Called(ctx, loanID, updaterUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanSvc) SyncLoanStatuses(ctx context.Context, updaterUserID string) (int, error) {
	args := m.Called(ctx, updaterUserID)
	return args.Int(0), args.Error(1)
}
