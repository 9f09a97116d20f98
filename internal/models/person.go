package models

import "time"

// Person maps to the persons table. Checks and rejections are stored as flat
// boolean/text columns so they can be filtered in SQL.
type Person struct {
	PersonID       string `db:"person_id"`
	FullName       string `db:"full_name"`
	NationalID     string `db:"national_id"`
	Address        string `db:"address"`
	Phone          string `db:"phone"`
	FinancialNotes string `db:"financial_notes"`
	GroupID        string `db:"group_id"` // empty string stored as NULL
	Status         string `db:"status"`
	Observation    string `db:"observation"`

	CheckIdentity        bool `db:"check_identity"`
	CheckFinancialStatus bool `db:"check_financial_status"`
	CheckCompleteFolder  bool `db:"check_complete_folder"`
	CheckServiceBill     bool `db:"check_service_bill"`
	CheckGuarantor       bool `db:"check_guarantor"`
	CheckVerification    bool `db:"check_verification"`

	RejIdentity              bool   `db:"rej_identity"`
	RejIdentityReason        string `db:"rej_identity_reason"`
	RejFinancialStatus       bool   `db:"rej_financial_status"`
	RejFinancialStatusReason string `db:"rej_financial_status_reason"`
	RejCompleteFolder        bool   `db:"rej_complete_folder"`
	RejCompleteFolderReason  string `db:"rej_complete_folder_reason"`
	RejServiceBill           bool   `db:"rej_service_bill"`
	RejServiceBillReason     string `db:"rej_service_bill_reason"`
	RejGuarantor             bool   `db:"rej_guarantor"`
	RejGuarantorReason       string `db:"rej_guarantor_reason"`
	RejVerification          bool   `db:"rej_verification"`
	RejVerificationReason    string `db:"rej_verification_reason"`

	Archived        bool       `db:"archived"`
	ArchivedAt      *time.Time `db:"archived_at"`
	ArchivedGroupID string     `db:"archived_group_id"`
	AuditFields
}
