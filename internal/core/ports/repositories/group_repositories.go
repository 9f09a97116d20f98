package repositories

import (
	"context"
	"time"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// GroupReader defines read operations for group data
type GroupReader interface {
	// FindGroupByID retrieves a specific group by its ID. MemberIDs holds the
	// non-archived members.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// FindGroups retrieves a paginated list of groups.
	FindGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error)

	// FindGroupIDs retrieves every group ID. Used by bulk recalculation.
	FindGroupIDs(ctx context.Context) ([]string, error)
}

// GroupWriter defines write operations for group data
type GroupWriter interface {
	// SaveGroup persists a new group.
	SaveGroup(ctx context.Context, group domain.Group) error

	// UpdateGroup updates a group's name.
	UpdateGroup(ctx context.Context, group domain.Group) error

	// UpdateGroupStatus sets the persisted status of a group.
	UpdateGroupStatus(ctx context.Context, groupID string, status domain.GroupStatus, updatedBy string, updatedAt time.Time) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}
