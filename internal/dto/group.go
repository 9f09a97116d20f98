package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// CreateGroupRequest holds data for creating a new group.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateGroupRequest holds data for renaming a group.
type UpdateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest assigns an existing person to the group.
type AddMemberRequest struct {
	PersonID string `json:"personID" binding:"required"`
}

// GroupResponse is the API representation of a group, enriched with the
// repayment position of its active loan when one exists.
type GroupResponse struct {
	GroupID       string             `json:"groupID"`
	Name          string             `json:"name"`
	Status        domain.GroupStatus `json:"status"`
	Members       []PersonResponse   `json:"members,omitempty"`
	MemberIDs     []string           `json:"memberIDs"`
	TotalDebt     *decimal.Decimal   `json:"totalDebt,omitempty"`
	IsMoroso      *bool              `json:"isMoroso,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// ToGroupResponse converts a domain group without enrichment.
func ToGroupResponse(g domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:       g.GroupID,
		Name:          g.Name,
		Status:        g.Status,
		MemberIDs:     g.MemberIDs,
		CreatedAt:     g.CreatedAt,
		LastUpdatedAt: g.LastUpdatedAt,
	}
}

// ListGroupsResponse wraps a paginated list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// MemberEligibility reports one member's position in the eligibility check.
type MemberEligibility struct {
	PersonID string              `json:"personID"`
	FullName string              `json:"fullName"`
	Status   domain.PersonStatus `json:"status"`
	IsApt    bool                `json:"isApt"`
}

// GroupEligibilityResponse reports whether a group can take a loan and why.
type GroupEligibilityResponse struct {
	GroupID  string              `json:"groupID"`
	Status   domain.GroupStatus  `json:"status"`
	Eligible bool                `json:"eligible"`
	Reasons  []string            `json:"reasons,omitempty"`
	Members  []MemberEligibility `json:"members"`
}

// RecalculateStatusesResponse reports the outcome of a bulk recalculation.
type RecalculateStatusesResponse struct {
	GroupsUpdated int `json:"groupsUpdated"`
}
