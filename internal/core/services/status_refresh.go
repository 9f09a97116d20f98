package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

// refreshGroupStatus rederives a group's status from its non-archived members
// and persists it when it changed. Groups pinned to ACTIVE_LOAN are left
// untouched; the loan settlement cascade owns that transition.
func refreshGroupStatus(ctx context.Context, groupRepo portsrepo.GroupRepositoryFacade, personRepo portsrepo.PersonRepositoryFacade, groupID string, updaterUserID string) error {
	group, err := groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load group %s for status refresh: %w", groupID, err)
	}
	if group.Status == domain.GroupStatusActiveLoan {
		return nil
	}

	members, err := personRepo.FindPersonsByGroupID(ctx, groupID, false)
	if err != nil {
		return fmt.Errorf("failed to load members of group %s: %w", groupID, err)
	}

	newStatus := domain.DeriveGroupStatus(members)
	if newStatus == group.Status {
		return nil
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("group status changed", "group_id", groupID, "from", group.Status, "to", newStatus)
	return groupRepo.UpdateGroupStatus(ctx, groupID, newStatus, updaterUserID, time.Now().UTC())
}

// effectivePersonStatus overlays MOROSO on the stored status when the person
// has an overdue installment on a non-closed account. The overlay is a read
// concern; the stored status never becomes MOROSO.
func effectivePersonStatus(ctx context.Context, accountRepo portsrepo.AccountRepositoryFacade, person *domain.Person, now time.Time) domain.PersonStatus {
	account, err := accountRepo.FindActiveAccountByPersonID(ctx, person.PersonID)
	if err != nil || account == nil {
		return person.Status
	}
	if account.OverdueAt(now) {
		return domain.PersonStatusMoroso
	}
	return person.Status
}
