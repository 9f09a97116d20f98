package domain

import "time"

// PersonStatus represents the lifecycle state of a borrower.
type PersonStatus string

const (
	PersonStatusPending  PersonStatus = "PENDING"
	PersonStatusApproved PersonStatus = "APPROVED"
	PersonStatusRejected PersonStatus = "REJECTED"
	// PersonStatusMoroso is a read-time overlay: a person whose active account
	// has an unpaid installment past its due date. It is never persisted.
	PersonStatusMoroso PersonStatus = "MOROSO"
)

// Checks are the six independent verification steps a borrower must pass
// before being considered apt for lending.
type Checks struct {
	Identity        bool `json:"identity"`
	FinancialStatus bool `json:"financialStatus"`
	CompleteFolder  bool `json:"completeFolder"`
	ServiceBill     bool `json:"serviceBill"`
	Guarantor       bool `json:"guarantor"`
	Verification    bool `json:"verification"`
}

// AllPassed reports whether every verification step succeeded.
func (c Checks) AllPassed() bool {
	return c.Identity && c.FinancialStatus && c.CompleteFolder &&
		c.ServiceBill && c.Guarantor && c.Verification
}

// Rejection marks a failed verification step together with the reviewer's reason.
type Rejection struct {
	Rejected bool   `json:"rejected"`
	Reason   string `json:"reason,omitempty"`
}

// Rejections mirror Checks: one explicit rejection flag per verification step.
type Rejections struct {
	Identity        Rejection `json:"identity"`
	FinancialStatus Rejection `json:"financialStatus"`
	CompleteFolder  Rejection `json:"completeFolder"`
	ServiceBill     Rejection `json:"serviceBill"`
	Guarantor       Rejection `json:"guarantor"`
	Verification    Rejection `json:"verification"`
}

// Any reports whether at least one step was explicitly rejected.
func (r Rejections) Any() bool {
	return r.Identity.Rejected || r.FinancialStatus.Rejected || r.CompleteFolder.Rejected ||
		r.ServiceBill.Rejected || r.Guarantor.Rejected || r.Verification.Rejected
}

// Person represents a borrower. A person belongs to at most one group.
type Person struct {
	PersonID        string       `json:"personID"`
	FullName        string       `json:"fullName"`
	NationalID      string       `json:"nationalID"`
	Address         string       `json:"address,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	FinancialNotes  string       `json:"financialNotes,omitempty"`
	GroupID         string       `json:"groupID,omitempty"` // empty when unassigned
	Status          PersonStatus `json:"status"`
	Observation     string       `json:"observation,omitempty"`
	Checks          Checks       `json:"checks"`
	Rejections      Rejections   `json:"rejections"`
	Archived        bool         `json:"archived"`
	ArchivedAt      *time.Time   `json:"archivedAt,omitempty"`
	ArchivedGroupID string       `json:"archivedGroupID,omitempty"` // group held at archival time
	AuditFields
}

// IsApt reports whether the person passes every check and carries no
// rejection. This single predicate drives both person and group approval.
func (p *Person) IsApt() bool {
	return p.Checks.AllPassed() && !p.Rejections.Any()
}

// DeriveStatus computes the persisted status implied by the current checks.
// Rejection takes precedence over approval.
func (p *Person) DeriveStatus() PersonStatus {
	if p.Rejections.Any() {
		return PersonStatusRejected
	}
	if p.Checks.AllPassed() {
		return PersonStatusApproved
	}
	return PersonStatusPending
}
