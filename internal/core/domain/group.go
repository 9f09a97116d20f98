package domain

// GroupStatus represents the lifecycle state of a lending group.
type GroupStatus string

const (
	GroupStatusPending    GroupStatus = "PENDING"
	GroupStatusApproved   GroupStatus = "APPROVED"
	GroupStatusRejected   GroupStatus = "REJECTED"
	GroupStatusActiveLoan GroupStatus = "ACTIVE_LOAN"
)

// Group is a set of borrowers that take loans jointly.
type Group struct {
	GroupID   string      `json:"groupID"`
	Name      string      `json:"name"`
	MemberIDs []string    `json:"memberIDs"`
	Status    GroupStatus `json:"status"`
	AuditFields
}

// DeriveGroupStatus computes the status implied by the group's members.
// Archived members are ignored. ACTIVE_LOAN is pinned elsewhere while a loan
// is outstanding and is never produced here.
func DeriveGroupStatus(members []Person) GroupStatus {
	active := make([]Person, 0, len(members))
	for _, m := range members {
		if !m.Archived {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return GroupStatusPending
	}
	allApt := true
	for i := range active {
		if active[i].Rejections.Any() {
			return GroupStatusRejected
		}
		if !active[i].IsApt() {
			allApt = false
		}
	}
	if allApt {
		return GroupStatusApproved
	}
	return GroupStatusPending
}
