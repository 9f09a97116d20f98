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
	"github.com/crediagil/crediagil_backend/internal/utils/credit"
)

// groupService manages lending groups and their derived statuses.
type groupService struct {
	groupRepo   portsrepo.GroupRepositoryFacade
	personRepo  portsrepo.PersonRepositoryFacade
	loanRepo    portsrepo.LoanRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewGroupService creates a new group service.
func NewGroupService(groupRepo portsrepo.GroupRepositoryFacade, personRepo portsrepo.PersonRepositoryFacade, loanRepo portsrepo.LoanRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.GroupSvcFacade {
	return &groupService{
		groupRepo:   groupRepo,
		personRepo:  personRepo,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.GroupSvcFacade = (*groupService)(nil)

func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("group name is required")
	}

	now := time.Now().UTC()
	group := domain.Group{
		GroupID:   uuid.NewString(),
		Name:      name,
		MemberIDs: []string{},
		Status:    domain.GroupStatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("group created", "group_id", group.GroupID, "name", name)
	return &group, nil
}

func (s *groupService) GetGroupByID(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	members, err := s.personRepo.FindPersonsByGroupID(ctx, groupID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %s: %w", groupID, err)
	}

	resp := dto.ToGroupResponse(*group)
	now := time.Now().UTC()
	resp.Members = make([]dto.PersonResponse, len(members))
	for i := range members {
		status := effectivePersonStatus(ctx, s.accountRepo, &members[i], now)
		resp.Members[i] = dto.ToPersonResponse(members[i], status)
	}

	if err := s.enrichWithLoanPosition(ctx, &resp, now); err != nil {
		return nil, err
	}
	return &resp, nil
}

// enrichWithLoanPosition attaches the outstanding debt and delinquency flag
// derived from the group's active loan, when one exists.
func (s *groupService) enrichWithLoanPosition(ctx context.Context, resp *dto.GroupResponse, now time.Time) error {
	groupAccount, err := s.accountRepo.FindActiveAccountByGroupID(ctx, resp.GroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load group account for %s: %w", resp.GroupID, err)
	}

	accounts, err := s.accountRepo.FindAccountsByLoanID(ctx, groupAccount.LoanID)
	if err != nil {
		return fmt.Errorf("failed to load accounts of loan %s: %w", groupAccount.LoanID, err)
	}
	personAccounts := filterPersonAccounts(accounts)

	view, _ := credit.VirtualizeGroupSchedule(*groupAccount, personAccounts)
	totalDebt := view.TotalOutstanding()
	isMoroso := false
	for i := range personAccounts {
		if personAccounts[i].OverdueAt(now) {
			isMoroso = true
			break
		}
	}
	if len(personAccounts) == 0 {
		isMoroso = view.OverdueAt(now)
	}

	resp.TotalDebt = &totalDebt
	resp.IsMoroso = &isMoroso
	return nil
}

func (s *groupService) ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	groups, err := s.groupRepo.FindGroups(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, updaterUserID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))
		}
		return nil, fmt.Errorf("failed to get group %s for update: %w", groupID, err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("group name is required")
	}

	group.Name = name
	group.LastUpdatedAt = time.Now().UTC()
	group.LastUpdatedBy = updaterUserID

	if err := s.groupRepo.UpdateGroup(ctx, *group); err != nil {
		return nil, fmt.Errorf("failed to update group %s: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) AddMember(ctx context.Context, groupID string, personID string, updaterUserID string) error {
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

	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return fmt.Errorf("failed to get person %s: %w", personID, err)
	}
	if person.Archived {
		return apperrors.NewAppError(409, "cannot add an archived person to a group", ErrPersonArchived)
	}
	if person.GroupID == groupID {
		return nil // already a member
	}
	if person.GroupID != "" {
		return apperrors.NewAppError(409, "person already belongs to another group", ErrPersonInOtherGroup)
	}

	person.GroupID = groupID
	person.LastUpdatedAt = time.Now().UTC()
	person.LastUpdatedBy = updaterUserID
	if err := s.personRepo.UpdatePerson(ctx, *person); err != nil {
		return fmt.Errorf("failed to assign person %s to group %s: %w", personID, groupID, err)
	}

	return refreshGroupStatus(ctx, s.groupRepo, s.personRepo, groupID, updaterUserID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID string, personID string, updaterUserID string) error {
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

	person, err := s.personRepo.FindPersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("person %s not found", personID))
		}
		return fmt.Errorf("failed to get person %s: %w", personID, err)
	}
	if person.GroupID != groupID {
		return apperrors.NewValidationError("person is not a member of this group")
	}

	person.GroupID = ""
	person.LastUpdatedAt = time.Now().UTC()
	person.LastUpdatedBy = updaterUserID
	if err := s.personRepo.UpdatePerson(ctx, *person); err != nil {
		return fmt.Errorf("failed to remove person %s from group %s: %w", personID, groupID, err)
	}

	return refreshGroupStatus(ctx, s.groupRepo, s.personRepo, groupID, updaterUserID)
}

func (s *groupService) GetGroupEligibility(ctx context.Context, groupID string) (*dto.GroupEligibilityResponse, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))
		}
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	members, err := s.personRepo.FindPersonsByGroupID(ctx, groupID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %s: %w", groupID, err)
	}

	resp := dto.GroupEligibilityResponse{
		GroupID: groupID,
		Status:  group.Status,
		Members: make([]dto.MemberEligibility, len(members)),
	}
	for i := range members {
		resp.Members[i] = dto.MemberEligibility{
			PersonID: members[i].PersonID,
			FullName: members[i].FullName,
			Status:   members[i].Status,
			IsApt:    members[i].IsApt(),
		}
		if !members[i].IsApt() {
			resp.Reasons = append(resp.Reasons, fmt.Sprintf("%s has incomplete or rejected checks", members[i].FullName))
		}
	}

	if len(members) == 0 {
		resp.Reasons = append(resp.Reasons, "group has no active members")
	}
	if _, err := s.loanRepo.FindActiveLoanByGroupID(ctx, groupID); err == nil {
		resp.Reasons = append(resp.Reasons, "group already has an active loan")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active loan for group %s: %w", groupID, err)
	}
	resp.Eligible = len(resp.Reasons) == 0
	return &resp, nil
}

func (s *groupService) RecalculateStatuses(ctx context.Context, updaterUserID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	groupIDs, err := s.groupRepo.FindGroupIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list group IDs: %w", err)
	}

	updated := 0
	now := time.Now().UTC()
	for _, groupID := range groupIDs {
		group, err := s.groupRepo.FindGroupByID(ctx, groupID)
		if err != nil {
			logger.Error("skipping group during recalculation", "group_id", groupID, "error", err)
			continue
		}
		if group.Status == domain.GroupStatusActiveLoan {
			continue
		}
		members, err := s.personRepo.FindPersonsByGroupID(ctx, groupID, false)
		if err != nil {
			logger.Error("skipping group during recalculation", "group_id", groupID, "error", err)
			continue
		}
		newStatus := domain.DeriveGroupStatus(members)
		if newStatus == group.Status {
			continue
		}
		if err := s.groupRepo.UpdateGroupStatus(ctx, groupID, newStatus, updaterUserID, now); err != nil {
			logger.Error("failed to update group status during recalculation", "group_id", groupID, "error", err)
			continue
		}
		updated++
	}
	logger.Info("group statuses recalculated", "groups_checked", len(groupIDs), "groups_updated", updated)
	return updated, nil
}

// filterPersonAccounts keeps only PERSON accounts, preserving order.
func filterPersonAccounts(accounts []domain.CurrentAccount) []domain.CurrentAccount {
	out := make([]domain.CurrentAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.AccountType == domain.AccountTypePerson {
			out = append(out, a)
		}
	}
	return out
}
