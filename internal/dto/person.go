package dto

import (
	"time"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// CreatePersonRequest holds data for creating a new person.
type CreatePersonRequest struct {
	FullName       string  `json:"fullName" binding:"required"`
	NationalID     string  `json:"nationalID" binding:"required"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	FinancialNotes string  `json:"financialNotes"`
	GroupID        *string `json:"groupID"`
	Observation    string  `json:"observation"`
}

// ChecksUpdate carries partial updates to the verification checks. Nil fields
// are left untouched.
type ChecksUpdate struct {
	Identity        *bool `json:"identity"`
	FinancialStatus *bool `json:"financialStatus"`
	CompleteFolder  *bool `json:"completeFolder"`
	ServiceBill     *bool `json:"serviceBill"`
	Guarantor       *bool `json:"guarantor"`
	Verification    *bool `json:"verification"`
}

// RejectionUpdate carries a partial update to one rejection flag.
type RejectionUpdate struct {
	Rejected *bool   `json:"rejected"`
	Reason   *string `json:"reason"`
}

// RejectionsUpdate carries partial updates to the rejection flags.
type RejectionsUpdate struct {
	Identity        *RejectionUpdate `json:"identity"`
	FinancialStatus *RejectionUpdate `json:"financialStatus"`
	CompleteFolder  *RejectionUpdate `json:"completeFolder"`
	ServiceBill     *RejectionUpdate `json:"serviceBill"`
	Guarantor       *RejectionUpdate `json:"guarantor"`
	Verification    *RejectionUpdate `json:"verification"`
}

// UpdatePersonRequest holds data for updating a person. All fields are
// optional; checks and rejections merge field by field.
type UpdatePersonRequest struct {
	FullName       *string           `json:"fullName"`
	Address        *string           `json:"address"`
	Phone          *string           `json:"phone"`
	FinancialNotes *string           `json:"financialNotes"`
	Observation    *string           `json:"observation"`
	GroupID        *string           `json:"groupID"` // empty string unassigns
	Checks         *ChecksUpdate     `json:"checks"`
	Rejections     *RejectionsUpdate `json:"rejections"`
}

// PersonResponse is the API representation of a person. Status carries the
// read-time MOROSO overlay when applicable.
type PersonResponse struct {
	PersonID       string              `json:"personID"`
	FullName       string              `json:"fullName"`
	NationalID     string              `json:"nationalID"`
	Address        string              `json:"address,omitempty"`
	Phone          string              `json:"phone,omitempty"`
	FinancialNotes string              `json:"financialNotes,omitempty"`
	GroupID        string              `json:"groupID,omitempty"`
	Status         domain.PersonStatus `json:"status"`
	Observation    string              `json:"observation,omitempty"`
	Checks         domain.Checks       `json:"checks"`
	Rejections     domain.Rejections   `json:"rejections"`
	Archived       bool                `json:"archived"`
	ArchivedAt     *time.Time          `json:"archivedAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastUpdatedAt  time.Time           `json:"lastUpdatedAt"`
}

// ToPersonResponse converts a domain person. effectiveStatus lets callers
// substitute the MOROSO overlay without mutating the stored status.
func ToPersonResponse(p domain.Person, effectiveStatus domain.PersonStatus) PersonResponse {
	return PersonResponse{
		PersonID:       p.PersonID,
		FullName:       p.FullName,
		NationalID:     p.NationalID,
		Address:        p.Address,
		Phone:          p.Phone,
		FinancialNotes: p.FinancialNotes,
		GroupID:        p.GroupID,
		Status:         effectiveStatus,
		Observation:    p.Observation,
		Checks:         p.Checks,
		Rejections:     p.Rejections,
		Archived:       p.Archived,
		ArchivedAt:     p.ArchivedAt,
		CreatedAt:      p.CreatedAt,
		LastUpdatedAt:  p.LastUpdatedAt,
	}
}

// ListPersonsResponse wraps a paginated list of persons.
type ListPersonsResponse struct {
	Persons []PersonResponse `json:"persons"`
}
