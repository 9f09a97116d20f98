package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/models"
)

type PgxLoanRepository struct {
	BaseRepository
}

func newPgxLoanRepository(db *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

func toDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:            m.LoanID,
		GroupID:           m.GroupID,
		Amount:            m.Amount,
		InstallmentsCount: m.InstallmentsCount,
		InterestRate:      m.InterestRate,
		StartDate:         m.StartDate,
		Status:            domain.LoanStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const loanColumns = `loan_id, group_id, amount, installments_count, interest_rate, start_date, status,
	created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID, &m.GroupID, &m.Amount, &m.InstallmentsCount, &m.InterestRate, &m.StartDate, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveLoan persists the loan row, its contributions, member allocations, the
// schedule snapshot and every current account in one transaction, then pins
// the group to ACTIVE_LOAN. Either everything commits or nothing does.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan, accounts []domain.CurrentAccount) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	batch := &pgx.Batch{}
	batch.Queue(`
        INSERT INTO loans (
            loan_id, group_id, amount, installments_count, interest_rate, start_date, status,
            created_at, created_by, last_updated_at, last_updated_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
    `,
		loan.LoanID, loan.GroupID, loan.Amount, loan.InstallmentsCount,
		loan.InterestRate, loan.StartDate, string(loan.Status),
		loan.CreatedAt, loan.CreatedBy, loan.LastUpdatedAt, loan.LastUpdatedBy,
	)

	for _, c := range loan.Contributions {
		batch.Queue(`
            INSERT INTO loan_contributions (loan_id, shareholder_id, amount) VALUES ($1, $2, $3);
        `, loan.LoanID, c.ShareholderID, c.Amount)
	}

	for _, inst := range loan.Installments {
		batch.Queue(`
            INSERT INTO loan_installments (loan_id, person_id, number, amount, due_date)
            VALUES ($1, NULL, $2, $3, $4);
        `, loan.LoanID, inst.Number, inst.Amount, inst.DueDate)
	}

	for _, member := range loan.Members {
		batch.Queue(`
            INSERT INTO loan_members (loan_id, person_id, amount) VALUES ($1, $2, $3);
        `, loan.LoanID, member.PersonID, member.Amount)
		for _, inst := range member.Installments {
			batch.Queue(`
                INSERT INTO loan_installments (loan_id, person_id, number, amount, due_date)
                VALUES ($1, $2, $3, $4, $5);
            `, loan.LoanID, member.PersonID, inst.Number, inst.Amount, inst.DueDate)
		}
	}

	for _, account := range accounts {
		m := toModelAccount(account)
		batch.Queue(`
            INSERT INTO current_accounts (
                account_id, account_type, person_id, group_id, loan_id, total_amount, status,
                created_at, created_by, last_updated_at, last_updated_by
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
        `,
			m.AccountID, m.AccountType, m.PersonID, m.GroupID, m.LoanID, m.TotalAmount, m.Status,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		queueInstallmentInserts(batch, account.AccountID, account.Installments)
	}

	batch.Queue(`
        UPDATE groups SET status = $1, last_updated_at = $2, last_updated_by = $3
        WHERE group_id = $4;
    `, string(domain.GroupStatusActiveLoan), loan.LastUpdatedAt, loan.LastUpdatedBy, loan.GroupID)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to save loan: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close loan save batch: %w", err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE loan_id = $1;`, loanColumns)
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}

	loan := toDomainLoan(m)
	if err := r.loadLoanDetails(ctx, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *PgxLoanRepository) loadLoanDetails(ctx context.Context, loan *domain.Loan) error {
	contributions, err := r.findContributions(ctx, loan.LoanID)
	if err != nil {
		return err
	}
	loan.Contributions = contributions

	snapshot, err := r.findScheduleSnapshot(ctx, loan.LoanID)
	if err != nil {
		return err
	}
	loan.Installments = snapshot[""]

	members, err := r.findMembers(ctx, loan.LoanID)
	if err != nil {
		return err
	}
	for i := range members {
		members[i].Installments = snapshot[members[i].PersonID]
	}
	loan.Members = members
	return nil
}

func (r *PgxLoanRepository) findContributions(ctx context.Context, loanID string) ([]domain.ShareholderContribution, error) {
	query := `SELECT shareholder_id, amount FROM loan_contributions WHERE loan_id = $1 ORDER BY shareholder_id;`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan contributions: %w", err)
	}
	defer rows.Close()

	var contributions []domain.ShareholderContribution
	for rows.Next() {
		var c domain.ShareholderContribution
		if err := rows.Scan(&c.ShareholderID, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		contributions = append(contributions, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating contribution rows: %w", rows.Err())
	}
	return contributions, nil
}

// findScheduleSnapshot loads the loan_installments rows keyed by person ID.
// The group-level schedule lives under the empty key.
func (r *PgxLoanRepository) findScheduleSnapshot(ctx context.Context, loanID string) (map[string][]domain.Installment, error) {
	query := `
        SELECT COALESCE(person_id, ''), number, amount, due_date
        FROM loan_installments WHERE loan_id = $1
        ORDER BY person_id NULLS FIRST, number;
    `
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan schedule snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string][]domain.Installment)
	for rows.Next() {
		var personID string
		var inst domain.Installment
		if err := rows.Scan(&personID, &inst.Number, &inst.Amount, &inst.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan schedule snapshot row: %w", err)
		}
		inst.Status = domain.InstallmentStatusPending
		snapshot[personID] = append(snapshot[personID], inst)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating schedule snapshot rows: %w", rows.Err())
	}
	return snapshot, nil
}

func (r *PgxLoanRepository) findMembers(ctx context.Context, loanID string) ([]domain.MemberAllocation, error) {
	query := `SELECT person_id, amount FROM loan_members WHERE loan_id = $1 ORDER BY person_id;`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan members: %w", err)
	}
	defer rows.Close()

	var members []domain.MemberAllocation
	for rows.Next() {
		var m domain.MemberAllocation
		if err := rows.Scan(&m.PersonID, &m.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan loan member row: %w", err)
		}
		members = append(members, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan member rows: %w", rows.Err())
	}
	return members, nil
}

func (r *PgxLoanRepository) FindActiveLoanByGroupID(ctx context.Context, groupID string) (*domain.Loan, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM loans WHERE group_id = $1 AND status = $2
        ORDER BY created_at DESC LIMIT 1;
    `, loanColumns)
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, groupID, string(domain.LoanStatusActive)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active loan for group %s: %w", groupID, err)
	}

	loan := toDomainLoan(m)
	if err := r.loadLoanDetails(ctx, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *PgxLoanRepository) FindLoans(ctx context.Context, status domain.LoanStatus, groupID string, limit int, offset int) ([]domain.Loan, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if status != "" {
		conditions = append(conditions, "status = "+arg(string(status)))
	}
	if groupID != "" {
		conditions = append(conditions, "group_id = "+arg(groupID))
	}

	query := fmt.Sprintf(`SELECT %s FROM loans`, loanColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s;", arg(limit), arg(offset))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, toDomainLoan(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}

	for i := range loans {
		if err := r.loadLoanDetails(ctx, &loans[i]); err != nil {
			return nil, err
		}
	}
	return loans, nil
}

func (r *PgxLoanRepository) FindLoansByShareholderID(ctx context.Context, shareholderID string) ([]domain.Loan, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM loans
        WHERE loan_id IN (SELECT loan_id FROM loan_contributions WHERE shareholder_id = $1)
        ORDER BY created_at DESC;
    `, loanColumns)
	rows, err := r.Pool.Query(ctx, query, shareholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans of shareholder %s: %w", shareholderID, err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, toDomainLoan(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}

	for i := range loans {
		contributions, err := r.findContributions(ctx, loans[i].LoanID)
		if err != nil {
			return nil, err
		}
		loans[i].Contributions = contributions
	}
	return loans, nil
}

func (r *PgxLoanRepository) UpdateLoanStatus(ctx context.Context, loanID string, status domain.LoanStatus, updatedBy string, updatedAt time.Time) error {
	query := `
        UPDATE loans SET status = $1, last_updated_at = $2, last_updated_by = $3
        WHERE loan_id = $4;
    `
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), updatedAt, updatedBy, loanID)
	if err != nil {
		return fmt.Errorf("failed to execute update loan status query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("loan not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
