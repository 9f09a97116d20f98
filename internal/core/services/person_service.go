package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

var (
	ErrPersonArchived      = errors.New("person is archived")
	ErrPersonHasOpenLoan   = errors.New("person has an open current account")
	ErrPersonInOtherGroup  = errors.New("person already belongs to another group")
	ErrGroupLoanInProgress = errors.New("group has a loan in progress")
)

// personService manages borrowers and keeps their group statuses consistent.
type personService struct {
	personRepo  portsrepo.PersonRepositoryFacade
	groupRepo   portsrepo.GroupRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewPersonService creates a new person service.
func NewPersonService(personRepo portsrepo.PersonRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.PersonSvcFacade {
	return &personService{
		personRepo:  personRepo,
		groupRepo:   groupRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.PersonSvcFacade = (*personService)(nil)

func (s *personService) CreatePerson(ctx context.Context, req dto.CreatePersonRequest, creatorUserID string) (*domain.Person, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	nationalID := strings.TrimSpace(req.NationalID)
	if nationalID == "" {
		return nil, apperrors.NewValidationError("nationalID is required")
	}

	existing, err := s.personRepo.FindPersonByNationalID(ctx, nationalID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check national ID uniqueness: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewAppError(409, fmt.Sprintf("person with national ID %s already exists", nationalID), apperrors.ErrDuplicate)
	}

	groupID := ""
	if req.GroupID != nil && *req.GroupID != "" {
		if err := s.checkGroupJoinable(ctx, *req.GroupID); err != nil {
			return nil, err
		}
		groupID = *req.GroupID
	}

	now := time.Now().UTC()
	person := domain.Person{
		PersonID:       uuid.NewString(),
		FullName:       strings.TrimSpace(req.FullName),
		NationalID:     nationalID,
		Address:        req.Address,
		Phone:          req.Phone,
		FinancialNotes: req.FinancialNotes,
		GroupID:        groupID,
		Status:         domain.PersonStatusPending,
		Observation:    req.Observation,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.personRepo.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("failed to save person: %w", err)
	}
	logger.Info("person created", "person_id", person.PersonID, "group_id", groupID)

	if groupID != "" {
		if err := refreshGroupStatus(ctx, s.groupRepo, s.personRepo, groupID, creatorUserID); err != nil {
			logger.Error("failed to refresh group status after person creation", "group_id", groupID, "error", err)
		}
	}
	return &person, nil
}

func (s *personService) GetPersonByID(ctx context.Context, personID string) (*domain.Person, error) {
	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return nil, fmt.Errorf("failed to get person %s: %w", personID, err)
	}
	person.Status = effectivePersonStatus(ctx, s.accountRepo, person, time.Now().UTC())
	return person, nil
}

func (s *personService) ListPersons(ctx context.Context, filter portsrepo.ListPersonsFilter) ([]domain.Person, error) {
	// MOROSO is an overlay, never stored; filtering by it happens after the
	// overlay is applied.
	wantMoroso := filter.Status == domain.PersonStatusMoroso
	repoFilter := filter
	if wantMoroso {
		repoFilter.Status = ""
	}

	persons, err := s.personRepo.FindPersons(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}

	now := time.Now().UTC()
	out := make([]domain.Person, 0, len(persons))
	for i := range persons {
		persons[i].Status = effectivePersonStatus(ctx, s.accountRepo, &persons[i], now)
		if wantMoroso && persons[i].Status != domain.PersonStatusMoroso {
			continue
		}
		out = append(out, persons[i])
	}
	return out, nil
}

func (s *personService) UpdatePerson(ctx context.Context, personID string, req dto.UpdatePersonRequest, updaterUserID string) (*domain.Person, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return nil, fmt.Errorf("failed to get person %s for update: %w", personID, err)
	}
	if person.Archived {
		return nil, apperrors.NewAppError(409, "cannot update an archived person", ErrPersonArchived)
	}

	previousGroupID := person.GroupID

	if req.FullName != nil {
		person.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Address != nil {
		person.Address = *req.Address
	}
	if req.Phone != nil {
		person.Phone = *req.Phone
	}
	if req.FinancialNotes != nil {
		person.FinancialNotes = *req.FinancialNotes
	}
	if req.Observation != nil {
		person.Observation = *req.Observation
	}
	if req.GroupID != nil {
		newGroupID := *req.GroupID
		if newGroupID != person.GroupID {
			if person.GroupID != "" {
				if err := s.checkGroupJoinable(ctx, person.GroupID); err != nil {
					return nil, err
				}
			}
			if newGroupID != "" {
				if err := s.checkGroupJoinable(ctx, newGroupID); err != nil {
					return nil, err
				}
			}
			person.GroupID = newGroupID
		}
	}

	mergeChecks(&person.Checks, req.Checks)
	mergeRejections(&person.Rejections, req.Rejections)
	person.Status = person.DeriveStatus()
	person.LastUpdatedAt = time.Now().UTC()
	person.LastUpdatedBy = updaterUserID

	if err := s.personRepo.UpdatePerson(ctx, *person); err != nil {
		return nil, fmt.Errorf("failed to update person %s: %w", personID, err)
	}

	for _, groupID := range changedGroups(previousGroupID, person.GroupID) {
		if err := refreshGroupStatus(ctx, s.groupRepo, s.personRepo, groupID, updaterUserID); err != nil {
			logger.Error("failed to refresh group status after person update", "group_id", groupID, "error", err)
		}
	}

	person.Status = effectivePersonStatus(ctx, s.accountRepo, person, time.Now().UTC())
	return person, nil
}

func (s *personService) ArchivePerson(ctx context.Context, personID string, updaterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return fmt.Errorf("failed to get person %s for archival: %w", personID, err)
	}
	if person.Archived {
		return nil // already archived
	}

	account, err := s.accountRepo.FindActiveAccountByPersonID(ctx, personID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check open accounts for person %s: %w", personID, err)
	}
	if account != nil {
		return apperrors.NewAppError(409, "cannot archive a person with an open current account", ErrPersonHasOpenLoan)
	}

	now := time.Now().UTC()
	previousGroupID := person.GroupID
	person.Archived = true
	person.ArchivedAt = &now
	person.ArchivedGroupID = previousGroupID
	person.GroupID = ""
	person.LastUpdatedAt = now
	person.LastUpdatedBy = updaterUserID

	if err := s.personRepo.UpdatePerson(ctx, *person); err != nil {
		return fmt.Errorf("failed to archive person %s: %w", personID, err)
	}
	logger.Info("person archived", "person_id", personID, "former_group_id", previousGroupID)

	if previousGroupID != "" {
		if err := refreshGroupStatus(ctx, s.groupRepo, s.personRepo, previousGroupID, updaterUserID); err != nil {
			logger.Error("failed to refresh group status after archival", "group_id", previousGroupID, "error", err)
		}
	}
	return nil
}

func (s *personService) RestorePerson(ctx context.Context, personID string, updaterUserID string) (*domain.Person, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return nil, fmt.Errorf("failed to get person %s for restore: %w", personID, err)
	}
	if !person.Archived {
		return nil, apperrors.NewConflictError("person is not archived")
	}

	// Reattach the remembered group only when it still exists.
	restoredGroupID := ""
	if person.ArchivedGroupID != "" {
		if _, err := s.groupRepo.FindGroupByID(ctx, person.ArchivedGroupID); err == nil {
			restoredGroupID = person.ArchivedGroupID
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check former group %s: %w", person.ArchivedGroupID, err)
		}
	}

	person.Archived = false
	person.ArchivedAt = nil
	person.ArchivedGroupID = ""
	person.GroupID = restoredGroupID
	person.LastUpdatedAt = time.Now().UTC()
	person.LastUpdatedBy = updaterUserID

	if err := s.personRepo.UpdatePerson(ctx, *person); err != nil {
		return nil, fmt.Errorf("failed to restore person %s: %w", personID, err)
	}
	logger.Info("person restored", "person_id", personID, "group_id", restoredGroupID)

	if restoredGroupID != "" {
		if err := refreshGroupStatus(ctx, s.groupRepo, s.personRepo, restoredGroupID, updaterUserID); err != nil {
			logger.Error("failed to refresh group status after restore", "group_id", restoredGroupID, "error", err)
		}
	}
	return person, nil
}

// checkGroupJoinable verifies the group exists and is not frozen by a loan.
func (s *personService) checkGroupJoinable(ctx context.Context, groupID string) error {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))
		}
		return fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	if group.Status == domain.GroupStatusActiveLoan {
		return apperrors.NewAppError(409, "group membership is frozen while a loan is active", ErrGroupLoanInProgress)
	}
	return nil
}

func mergeChecks(checks *domain.Checks, update *dto.ChecksUpdate) {
	if update == nil {
		return
	}
	if update.Identity != nil {
		checks.Identity = *update.Identity
	}
	if update.FinancialStatus != nil {
		checks.FinancialStatus = *update.FinancialStatus
	}
	if update.CompleteFolder != nil {
		checks.CompleteFolder = *update.CompleteFolder
	}
	if update.ServiceBill != nil {
		checks.ServiceBill = *update.ServiceBill
	}
	if update.Guarantor != nil {
		checks.Guarantor = *update.Guarantor
	}
	if update.Verification != nil {
		checks.Verification = *update.Verification
	}
}

func mergeRejections(rejections *domain.Rejections, update *dto.RejectionsUpdate) {
	if update == nil {
		return
	}
	mergeRejection(&rejections.Identity, update.Identity)
	mergeRejection(&rejections.FinancialStatus, update.FinancialStatus)
	mergeRejection(&rejections.CompleteFolder, update.CompleteFolder)
	mergeRejection(&rejections.ServiceBill, update.ServiceBill)
	mergeRejection(&rejections.Guarantor, update.Guarantor)
	mergeRejection(&rejections.Verification, update.Verification)
}

func mergeRejection(rejection *domain.Rejection, update *dto.RejectionUpdate) {
	if update == nil {
		return
	}
	if update.Rejected != nil {
		rejection.Rejected = *update.Rejected
		if !rejection.Rejected {
			rejection.Reason = ""
		}
	}
	if update.Reason != nil {
		rejection.Reason = *update.Reason
	}
}

// changedGroups returns the distinct non-empty group IDs touched by a
// membership change.
func changedGroups(before, after string) []string {
	if before == after {
		if before == "" {
			return nil
		}
		return []string{before}
	}
	out := make([]string, 0, 2)
	if before != "" {
		out = append(out, before)
	}
	if after != "" {
		out = append(out, after)
	}
	return out
}
