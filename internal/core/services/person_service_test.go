package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/core/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

type PersonServiceTestSuite struct {
	suite.Suite
	mockPersonRepo  *MockPersonRepository
	mockGroupRepo   *MockGroupRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.PersonSvcFacade
}

func (suite *PersonServiceTestSuite) SetupTest() {
	suite.mockPersonRepo = new(MockPersonRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewPersonService(suite.mockPersonRepo, suite.mockGroupRepo, suite.mockAccountRepo)
}

// overdueAccount returns an active account with one unpaid installment whose
// due date is already in the past.
func overdueAccount(personID string) *domain.CurrentAccount {
	return &domain.CurrentAccount{
		AccountID:   uuid.NewString(),
		AccountType: domain.AccountTypePerson,
		PersonID:    personID,
		LoanID:      uuid.NewString(),
		TotalAmount: decimal.NewFromInt(115),
		Status:      domain.AccountStatusActive,
		Installments: []domain.Installment{
			{
				Number:     1,
				Amount:     decimal.NewFromInt(115),
				DueDate:    time.Now().UTC().AddDate(0, 0, -10),
				AmountPaid: decimal.Zero,
				Status:     domain.InstallmentStatusPending,
			},
		},
	}
}

// --- CreatePerson ---

func (suite *PersonServiceTestSuite) TestCreatePerson_Success() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreatePersonRequest{
		FullName:   "Maria Lopez",
		NationalID: "12345678",
		Phone:      "555-0100",
	}

	suite.mockPersonRepo.On("FindPersonByNationalID", ctx, "12345678").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPersonRepo.On("SavePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return p.FullName == "Maria Lopez" && p.NationalID == "12345678" &&
			p.Status == domain.PersonStatusPending && p.GroupID == "" && p.CreatedBy == creatorID
	})).Return(nil).Once()

	person, err := suite.service.CreatePerson(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(person)
	suite.NotEmpty(person.PersonID)
	suite.Equal(domain.PersonStatusPending, person.Status)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestCreatePerson_DuplicateNationalID() {
	ctx := context.Background()
	existing := &domain.Person{PersonID: uuid.NewString(), NationalID: "12345678"}

	suite.mockPersonRepo.On("FindPersonByNationalID", ctx, "12345678").Return(existing, nil).Once()

	person, err := suite.service.CreatePerson(ctx, dto.CreatePersonRequest{
		FullName:   "Maria Lopez",
		NationalID: "12345678",
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestCreatePerson_MissingNationalID() {
	person, err := suite.service.CreatePerson(context.Background(), dto.CreatePersonRequest{
		FullName: "Maria Lopez",
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PersonServiceTestSuite) TestCreatePerson_GroupFrozenByLoan() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, Status: domain.GroupStatusActiveLoan}

	suite.mockPersonRepo.On("FindPersonByNationalID", ctx, "87654321").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()

	person, err := suite.service.CreatePerson(ctx, dto.CreatePersonRequest{
		FullName:   "Jorge Diaz",
		NationalID: "87654321",
		GroupID:    &groupID,
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, services.ErrGroupLoanInProgress)
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestCreatePerson_WithGroupRefreshesStatus() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, Status: domain.GroupStatusPending}

	suite.mockPersonRepo.On("FindPersonByNationalID", ctx, "87654321").Return(nil, apperrors.ErrNotFound).Once()
	// Once for the joinability check, once inside the status refresh.
	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Twice()
	suite.mockPersonRepo.On("SavePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return p.GroupID == groupID
	})).Return(nil).Once()
	suite.mockPersonRepo.On("FindPersonsByGroupID", ctx, groupID, false).Return([]domain.Person{}, nil).Once()

	person, err := suite.service.CreatePerson(ctx, dto.CreatePersonRequest{
		FullName:   "Jorge Diaz",
		NationalID: "87654321",
		GroupID:    &groupID,
	}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(groupID, person.GroupID)
	suite.mockPersonRepo.AssertExpectations(suite.T())
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

// --- GetPersonByID ---

func (suite *PersonServiceTestSuite) TestGetPersonByID_NotFound() {
	ctx := context.Background()
	personID := uuid.NewString()

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()

	person, err := suite.service.GetPersonByID(ctx, personID)

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PersonServiceTestSuite) TestGetPersonByID_MorosoOverlay() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{PersonID: personID, Status: domain.PersonStatusApproved}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(overdueAccount(personID), nil).Once()

	person, err := suite.service.GetPersonByID(ctx, personID)

	suite.Require().NoError(err)
	suite.Equal(domain.PersonStatusMoroso, person.Status)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestGetPersonByID_NoAccountKeepsStoredStatus() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{PersonID: personID, Status: domain.PersonStatusApproved}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()

	person, err := suite.service.GetPersonByID(ctx, personID)

	suite.Require().NoError(err)
	suite.Equal(domain.PersonStatusApproved, person.Status)
}

// --- ListPersons ---

func (suite *PersonServiceTestSuite) TestListPersons_MorosoFilterAppliesOverlay() {
	ctx := context.Background()
	overdueID := uuid.NewString()
	currentID := uuid.NewString()
	persons := []domain.Person{
		{PersonID: overdueID, Status: domain.PersonStatusApproved},
		{PersonID: currentID, Status: domain.PersonStatusApproved},
	}

	// The repository never sees the MOROSO filter; the overlay is applied
	// after loading.
	suite.mockPersonRepo.On("FindPersons", ctx, mock.MatchedBy(func(f portsrepo.ListPersonsFilter) bool {
		return f.Status == domain.PersonStatus("")
	})).Return(persons, nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, overdueID).Return(overdueAccount(overdueID), nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, currentID).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.ListPersons(ctx, portsrepo.ListPersonsFilter{Status: domain.PersonStatusMoroso})

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(overdueID, result[0].PersonID)
	suite.Equal(domain.PersonStatusMoroso, result[0].Status)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestListPersons_RepoError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockPersonRepo.On("FindPersons", ctx, mock.Anything).Return(nil, expectedErr).Once()

	result, err := suite.service.ListPersons(ctx, portsrepo.ListPersonsFilter{})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, expectedErr)
}

// --- UpdatePerson ---

func (suite *PersonServiceTestSuite) TestUpdatePerson_ArchivedRejected() {
	ctx := context.Background()
	personID := uuid.NewString()
	archived := &domain.Person{PersonID: personID, Archived: true}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(archived, nil).Once()

	person, err := suite.service.UpdatePerson(ctx, personID, dto.UpdatePersonRequest{}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, services.ErrPersonArchived)
}

func (suite *PersonServiceTestSuite) TestUpdatePerson_ChecksDeriveApproved() {
	ctx := context.Background()
	personID := uuid.NewString()
	updaterID := uuid.NewString()
	stored := &domain.Person{PersonID: personID, Status: domain.PersonStatusPending}

	yes := true
	req := dto.UpdatePersonRequest{
		Checks: &dto.ChecksUpdate{
			Identity:        &yes,
			FinancialStatus: &yes,
			CompleteFolder:  &yes,
			ServiceBill:     &yes,
			Guarantor:       &yes,
			Verification:    &yes,
		},
	}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockPersonRepo.On("UpdatePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return p.Status == domain.PersonStatusApproved && p.Checks.AllPassed() && p.LastUpdatedBy == updaterID
	})).Return(nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()

	person, err := suite.service.UpdatePerson(ctx, personID, req, updaterID)

	suite.Require().NoError(err)
	suite.Equal(domain.PersonStatusApproved, person.Status)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestUpdatePerson_RejectionWinsOverChecks() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{
		PersonID: personID,
		Status:   domain.PersonStatusApproved,
		Checks: domain.Checks{
			Identity: true, FinancialStatus: true, CompleteFolder: true,
			ServiceBill: true, Guarantor: true, Verification: true,
		},
	}

	rejected := true
	reason := "guarantor unreachable"
	req := dto.UpdatePersonRequest{
		Rejections: &dto.RejectionsUpdate{
			Guarantor: &dto.RejectionUpdate{Rejected: &rejected, Reason: &reason},
		},
	}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockPersonRepo.On("UpdatePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return p.Status == domain.PersonStatusRejected && p.Rejections.Guarantor.Reason == reason
	})).Return(nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()

	person, err := suite.service.UpdatePerson(ctx, personID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.PersonStatusRejected, person.Status)
}

// --- ArchivePerson ---

func (suite *PersonServiceTestSuite) TestArchivePerson_OpenAccountRejected() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{PersonID: personID}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(overdueAccount(personID), nil).Once()

	err := suite.service.ArchivePerson(ctx, personID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPersonHasOpenLoan)
}

func (suite *PersonServiceTestSuite) TestArchivePerson_SuccessRemembersGroup() {
	ctx := context.Background()
	personID := uuid.NewString()
	groupID := uuid.NewString()
	updaterID := uuid.NewString()
	stored := &domain.Person{PersonID: personID, GroupID: groupID}
	group := &domain.Group{GroupID: groupID, Status: domain.GroupStatusApproved}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockAccountRepo.On("FindActiveAccountByPersonID", ctx, personID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPersonRepo.On("UpdatePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return p.Archived && p.GroupID == "" && p.ArchivedGroupID == groupID && p.ArchivedAt != nil
	})).Return(nil).Once()
	// The emptied group drops back to PENDING.
	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockPersonRepo.On("FindPersonsByGroupID", ctx, groupID, false).Return([]domain.Person{}, nil).Once()
	suite.mockGroupRepo.On("UpdateGroupStatus", ctx, groupID, domain.GroupStatusPending, updaterID, mock.Anything).Return(nil).Once()

	err := suite.service.ArchivePerson(ctx, personID, updaterID)

	suite.Require().NoError(err)
	suite.mockPersonRepo.AssertExpectations(suite.T())
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestArchivePerson_AlreadyArchivedIsNoop() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{PersonID: personID, Archived: true}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()

	err := suite.service.ArchivePerson(ctx, personID, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockPersonRepo.AssertNotCalled(suite.T(), "UpdatePerson", mock.Anything, mock.Anything)
}

// --- RestorePerson ---

func (suite *PersonServiceTestSuite) TestRestorePerson_NotArchived() {
	ctx := context.Background()
	personID := uuid.NewString()
	stored := &domain.Person{PersonID: personID}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()

	person, err := suite.service.RestorePerson(ctx, personID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(person)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *PersonServiceTestSuite) TestRestorePerson_ReattachesFormerGroup() {
	ctx := context.Background()
	personID := uuid.NewString()
	groupID := uuid.NewString()
	updaterID := uuid.NewString()
	archivedAt := time.Now().UTC().AddDate(0, -1, 0)
	stored := &domain.Person{
		PersonID:        personID,
		Archived:        true,
		ArchivedAt:      &archivedAt,
		ArchivedGroupID: groupID,
	}
	group := &domain.Group{GroupID: groupID, Status: domain.GroupStatusPending}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	// Once to confirm the group still exists, once inside the refresh.
	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Twice()
	suite.mockPersonRepo.On("UpdatePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return !p.Archived && p.ArchivedAt == nil && p.GroupID == groupID && p.ArchivedGroupID == ""
	})).Return(nil).Once()
	suite.mockPersonRepo.On("FindPersonsByGroupID", ctx, groupID, false).Return([]domain.Person{}, nil).Once()

	person, err := suite.service.RestorePerson(ctx, personID, updaterID)

	suite.Require().NoError(err)
	suite.Equal(groupID, person.GroupID)
	suite.False(person.Archived)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func (suite *PersonServiceTestSuite) TestRestorePerson_FormerGroupGone() {
	ctx := context.Background()
	personID := uuid.NewString()
	goneGroupID := uuid.NewString()
	archivedAt := time.Now().UTC().AddDate(0, -1, 0)
	stored := &domain.Person{
		PersonID:        personID,
		Archived:        true,
		ArchivedAt:      &archivedAt,
		ArchivedGroupID: goneGroupID,
	}

	suite.mockPersonRepo.On("FindPersonByID", ctx, personID).Return(stored, nil).Once()
	suite.mockGroupRepo.On("FindGroupByID", ctx, goneGroupID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPersonRepo.On("UpdatePerson", ctx, mock.MatchedBy(func(p domain.Person) bool {
		return !p.Archived && p.GroupID == ""
	})).Return(nil).Once()

	person, err := suite.service.RestorePerson(ctx, personID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Empty(person.GroupID)
	suite.mockPersonRepo.AssertExpectations(suite.T())
}

func TestPersonServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PersonServiceTestSuite))
}
