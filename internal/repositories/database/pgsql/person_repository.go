package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/models"
)

type PgxPersonRepository struct {
	db *pgxpool.Pool
}

func newPgxPersonRepository(db *pgxpool.Pool) portsrepo.PersonRepositoryFacade {
	return &PgxPersonRepository{db: db}
}

var _ portsrepo.PersonRepositoryFacade = (*PgxPersonRepository)(nil)

func toModelPerson(d domain.Person) models.Person {
	return models.Person{
		PersonID:       d.PersonID,
		FullName:       d.FullName,
		NationalID:     d.NationalID,
		Address:        d.Address,
		Phone:          d.Phone,
		FinancialNotes: d.FinancialNotes,
		GroupID:        d.GroupID,
		Status:         string(d.Status),
		Observation:    d.Observation,

		CheckIdentity:        d.Checks.Identity,
		CheckFinancialStatus: d.Checks.FinancialStatus,
		CheckCompleteFolder:  d.Checks.CompleteFolder,
		CheckServiceBill:     d.Checks.ServiceBill,
		CheckGuarantor:       d.Checks.Guarantor,
		CheckVerification:    d.Checks.Verification,

		RejIdentity:              d.Rejections.Identity.Rejected,
		RejIdentityReason:        d.Rejections.Identity.Reason,
		RejFinancialStatus:       d.Rejections.FinancialStatus.Rejected,
		RejFinancialStatusReason: d.Rejections.FinancialStatus.Reason,
		RejCompleteFolder:        d.Rejections.CompleteFolder.Rejected,
		RejCompleteFolderReason:  d.Rejections.CompleteFolder.Reason,
		RejServiceBill:           d.Rejections.ServiceBill.Rejected,
		RejServiceBillReason:     d.Rejections.ServiceBill.Reason,
		RejGuarantor:             d.Rejections.Guarantor.Rejected,
		RejGuarantorReason:       d.Rejections.Guarantor.Reason,
		RejVerification:          d.Rejections.Verification.Rejected,
		RejVerificationReason:    d.Rejections.Verification.Reason,

		Archived:        d.Archived,
		ArchivedAt:      d.ArchivedAt,
		ArchivedGroupID: d.ArchivedGroupID,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainPerson(m models.Person) domain.Person {
	return domain.Person{
		PersonID:       m.PersonID,
		FullName:       m.FullName,
		NationalID:     m.NationalID,
		Address:        m.Address,
		Phone:          m.Phone,
		FinancialNotes: m.FinancialNotes,
		GroupID:        m.GroupID,
		Status:         domain.PersonStatus(m.Status),
		Observation:    m.Observation,
		Checks: domain.Checks{
			Identity:        m.CheckIdentity,
			FinancialStatus: m.CheckFinancialStatus,
			CompleteFolder:  m.CheckCompleteFolder,
			ServiceBill:     m.CheckServiceBill,
			Guarantor:       m.CheckGuarantor,
			Verification:    m.CheckVerification,
		},
		Rejections: domain.Rejections{
			Identity:        domain.Rejection{Rejected: m.RejIdentity, Reason: m.RejIdentityReason},
			FinancialStatus: domain.Rejection{Rejected: m.RejFinancialStatus, Reason: m.RejFinancialStatusReason},
			CompleteFolder:  domain.Rejection{Rejected: m.RejCompleteFolder, Reason: m.RejCompleteFolderReason},
			ServiceBill:     domain.Rejection{Rejected: m.RejServiceBill, Reason: m.RejServiceBillReason},
			Guarantor:       domain.Rejection{Rejected: m.RejGuarantor, Reason: m.RejGuarantorReason},
			Verification:    domain.Rejection{Rejected: m.RejVerification, Reason: m.RejVerificationReason},
		},
		Archived:        m.Archived,
		ArchivedAt:      m.ArchivedAt,
		ArchivedGroupID: m.ArchivedGroupID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const personColumns = `person_id, full_name, national_id, address, phone, financial_notes,
	COALESCE(group_id, ''), status, observation,
	check_identity, check_financial_status, check_complete_folder,
	check_service_bill, check_guarantor, check_verification,
	rej_identity, rej_identity_reason, rej_financial_status, rej_financial_status_reason,
	rej_complete_folder, rej_complete_folder_reason, rej_service_bill, rej_service_bill_reason,
	rej_guarantor, rej_guarantor_reason, rej_verification, rej_verification_reason,
	archived, archived_at, COALESCE(archived_group_id, ''),
	created_at, created_by, last_updated_at, last_updated_by`

func scanPerson(row pgx.Row) (models.Person, error) {
	var m models.Person
	err := row.Scan(
		&m.PersonID, &m.FullName, &m.NationalID, &m.Address, &m.Phone, &m.FinancialNotes,
		&m.GroupID, &m.Status, &m.Observation,
		&m.CheckIdentity, &m.CheckFinancialStatus, &m.CheckCompleteFolder,
		&m.CheckServiceBill, &m.CheckGuarantor, &m.CheckVerification,
		&m.RejIdentity, &m.RejIdentityReason, &m.RejFinancialStatus, &m.RejFinancialStatusReason,
		&m.RejCompleteFolder, &m.RejCompleteFolderReason, &m.RejServiceBill, &m.RejServiceBillReason,
		&m.RejGuarantor, &m.RejGuarantorReason, &m.RejVerification, &m.RejVerificationReason,
		&m.Archived, &m.ArchivedAt, &m.ArchivedGroupID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// nullable turns an empty string into NULL for foreign key columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *PgxPersonRepository) SavePerson(ctx context.Context, person domain.Person) error {
	m := toModelPerson(person)
	query := `
        INSERT INTO persons (
            person_id, full_name, national_id, address, phone, financial_notes,
            group_id, status, observation,
            check_identity, check_financial_status, check_complete_folder,
            check_service_bill, check_guarantor, check_verification,
            rej_identity, rej_identity_reason, rej_financial_status, rej_financial_status_reason,
            rej_complete_folder, rej_complete_folder_reason, rej_service_bill, rej_service_bill_reason,
            rej_guarantor, rej_guarantor_reason, rej_verification, rej_verification_reason,
            archived, archived_at, archived_group_id,
            created_at, created_by, last_updated_at, last_updated_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
            $28, $29, $30, $31, $32, $33, $34);
    `
	_, err := r.db.Exec(ctx, query,
		m.PersonID, m.FullName, m.NationalID, m.Address, m.Phone, m.FinancialNotes,
		nullable(m.GroupID), m.Status, m.Observation,
		m.CheckIdentity, m.CheckFinancialStatus, m.CheckCompleteFolder,
		m.CheckServiceBill, m.CheckGuarantor, m.CheckVerification,
		m.RejIdentity, m.RejIdentityReason, m.RejFinancialStatus, m.RejFinancialStatusReason,
		m.RejCompleteFolder, m.RejCompleteFolderReason, m.RejServiceBill, m.RejServiceBillReason,
		m.RejGuarantor, m.RejGuarantorReason, m.RejVerification, m.RejVerificationReason,
		m.Archived, m.ArchivedAt, nullable(m.ArchivedGroupID),
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

func (r *PgxPersonRepository) FindPersonByID(ctx context.Context, personID string) (*domain.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons WHERE person_id = $1;`, personColumns)
	m, err := scanPerson(r.db.QueryRow(ctx, query, personID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find person by ID %s: %w", personID, err)
	}
	d := toDomainPerson(m)
	return &d, nil
}

func (r *PgxPersonRepository) FindPersonByNationalID(ctx context.Context, nationalID string) (*domain.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons WHERE national_id = $1 AND NOT archived;`, personColumns)
	m, err := scanPerson(r.db.QueryRow(ctx, query, nationalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find person by national ID: %w", err)
	}
	d := toDomainPerson(m)
	return &d, nil
}

func (r *PgxPersonRepository) FindPersonsByIDs(ctx context.Context, personIDs []string) (map[string]domain.Person, error) {
	result := make(map[string]domain.Person, len(personIDs))
	if len(personIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM persons WHERE person_id = ANY($1);`, personColumns)
	rows, err := r.db.Query(ctx, query, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		result[m.PersonID] = toDomainPerson(m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", rows.Err())
	}
	return result, nil
}

func (r *PgxPersonRepository) FindPersonsByGroupID(ctx context.Context, groupID string, includeArchived bool) ([]domain.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons WHERE group_id = $1`, personColumns)
	if !includeArchived {
		query += ` AND NOT archived`
	}
	query += ` ORDER BY created_at ASC;`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons of group %s: %w", groupID, err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		m, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		persons = append(persons, toDomainPerson(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", rows.Err())
	}
	return persons, nil
}

func (r *PgxPersonRepository) FindPersons(ctx context.Context, filter portsrepo.ListPersonsFilter) ([]domain.Person, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeArchived {
		conditions = append(conditions, "NOT archived")
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = "+arg(filter.GroupID))
	}
	if filter.Unassigned {
		conditions = append(conditions, "group_id IS NULL")
	}

	query := fmt.Sprintf(`SELECT %s FROM persons`, personColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s;", arg(limit), arg(offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	persons := []domain.Person{}
	for rows.Next() {
		m, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		persons = append(persons, toDomainPerson(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", rows.Err())
	}
	return persons, nil
}

func (r *PgxPersonRepository) UpdatePerson(ctx context.Context, person domain.Person) error {
	m := toModelPerson(person)
	query := `
        UPDATE persons SET
            full_name = $1, address = $2, phone = $3, financial_notes = $4,
            group_id = $5, status = $6, observation = $7,
            check_identity = $8, check_financial_status = $9, check_complete_folder = $10,
            check_service_bill = $11, check_guarantor = $12, check_verification = $13,
            rej_identity = $14, rej_identity_reason = $15,
            rej_financial_status = $16, rej_financial_status_reason = $17,
            rej_complete_folder = $18, rej_complete_folder_reason = $19,
            rej_service_bill = $20, rej_service_bill_reason = $21,
            rej_guarantor = $22, rej_guarantor_reason = $23,
            rej_verification = $24, rej_verification_reason = $25,
            archived = $26, archived_at = $27, archived_group_id = $28,
            last_updated_at = $29, last_updated_by = $30
        WHERE person_id = $31;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		m.FullName, m.Address, m.Phone, m.FinancialNotes,
		nullable(m.GroupID), m.Status, m.Observation,
		m.CheckIdentity, m.CheckFinancialStatus, m.CheckCompleteFolder,
		m.CheckServiceBill, m.CheckGuarantor, m.CheckVerification,
		m.RejIdentity, m.RejIdentityReason,
		m.RejFinancialStatus, m.RejFinancialStatusReason,
		m.RejCompleteFolder, m.RejCompleteFolderReason,
		m.RejServiceBill, m.RejServiceBillReason,
		m.RejGuarantor, m.RejGuarantorReason,
		m.RejVerification, m.RejVerificationReason,
		m.Archived, m.ArchivedAt, nullable(m.ArchivedGroupID),
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.PersonID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update person query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
