package services

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

// GroupReaderSvc defines read operations for group data
type GroupReaderSvc interface {
	// GetGroupByID retrieves a group. The enriched response includes member
	// details, the outstanding debt on the active loan and whether any
	// installment is overdue.
	GetGroupByID(ctx context.Context, groupID string) (*dto.GroupResponse, error)

	// ListGroups retrieves a paginated list of groups.
	ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error)

	// GetGroupEligibility reports whether the group can take a loan and the
	// per-member reasons when it cannot.
	GetGroupEligibility(ctx context.Context, groupID string) (*dto.GroupEligibilityResponse, error)
}

// GroupWriterSvc defines write operations for group data
type GroupWriterSvc interface {
	// CreateGroup creates an empty group in PENDING status.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error)

	// UpdateGroup renames a group.
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, updaterUserID string) (*domain.Group, error)

	// AddMember assigns a person to the group and rederives the group status.
	AddMember(ctx context.Context, groupID string, personID string, updaterUserID string) error

	// RemoveMember unassigns a person from the group and rederives the
	// group status.
	RemoveMember(ctx context.Context, groupID string, personID string, updaterUserID string) error

	// RecalculateStatuses rederives every group's status from its current
	// members. Groups pinned to ACTIVE_LOAN are left alone.
	RecalculateStatuses(ctx context.Context, updaterUserID string) (int, error)
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
}
