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

type PgxAccountRepository struct {
	db *pgxpool.Pool
}

func newPgxAccountRepository(db *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{db: db}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.CurrentAccount) models.CurrentAccount {
	m := models.CurrentAccount{
		AccountID:   d.AccountID,
		AccountType: string(d.AccountType),
		LoanID:      d.LoanID,
		TotalAmount: d.TotalAmount,
		Status:      string(d.Status),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.PersonID != "" {
		personID := d.PersonID
		m.PersonID = &personID
	}
	if d.GroupID != "" {
		groupID := d.GroupID
		m.GroupID = &groupID
	}
	return m
}

func toDomainAccount(m models.CurrentAccount, installments []domain.Installment) domain.CurrentAccount {
	d := domain.CurrentAccount{
		AccountID:    m.AccountID,
		AccountType:  domain.AccountType(m.AccountType),
		LoanID:       m.LoanID,
		TotalAmount:  m.TotalAmount,
		Installments: installments,
		Status:       domain.AccountStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.PersonID != nil {
		d.PersonID = *m.PersonID
	}
	if m.GroupID != nil {
		d.GroupID = *m.GroupID
	}
	return d
}

func toDomainInstallment(m models.Installment) domain.Installment {
	return domain.Installment{
		Number:      m.Number,
		Amount:      m.Amount,
		DueDate:     m.DueDate,
		PaidDate:    m.PaidDate,
		AmountPaid:  m.AmountPaid,
		Status:      domain.InstallmentStatus(m.Status),
		Observation: m.Observation,
	}
}

const accountColumns = `account_id, account_type, person_id, group_id, loan_id, total_amount, status,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.CurrentAccount, error) {
	var m models.CurrentAccount
	err := row.Scan(
		&m.AccountID, &m.AccountType, &m.PersonID, &m.GroupID, &m.LoanID, &m.TotalAmount, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.CurrentAccount) error {
	m := toModelAccount(account)
	batch := &pgx.Batch{}
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

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
	}
	return nil
}

func queueInstallmentInserts(batch *pgx.Batch, accountID string, installments []domain.Installment) {
	for _, inst := range installments {
		batch.Queue(`
            INSERT INTO installments (account_id, number, amount, due_date, paid_date, amount_paid, status, observation)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
        `,
			accountID, inst.Number, inst.Amount, inst.DueDate, inst.PaidDate,
			inst.AmountPaid, string(inst.Status), inst.Observation,
		)
	}
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM current_accounts WHERE account_id = $1;`, accountColumns)
	m, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	installmentsByAccount, err := r.findInstallments(ctx, []string{accountID})
	if err != nil {
		return nil, err
	}
	d := toDomainAccount(m, installmentsByAccount[accountID])
	return &d, nil
}

func (r *PgxAccountRepository) findInstallments(ctx context.Context, accountIDs []string) (map[string][]domain.Installment, error) {
	result := make(map[string][]domain.Installment, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT account_id, number, amount, due_date, paid_date, amount_paid, status, observation
        FROM installments WHERE account_id = ANY($1)
        ORDER BY account_id, number;
    `
	rows, err := r.db.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Installment
		err := rows.Scan(&m.AccountID, &m.Number, &m.Amount, &m.DueDate, &m.PaidDate, &m.AmountPaid, &m.Status, &m.Observation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment row: %w", err)
		}
		result[m.AccountID] = append(result[m.AccountID], toDomainInstallment(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating installment rows: %w", rows.Err())
	}
	return result, nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.CurrentAccount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var modelsFound []models.CurrentAccount
	var accountIDs []string
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		modelsFound = append(modelsFound, m)
		accountIDs = append(accountIDs, m.AccountID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", rows.Err())
	}

	installmentsByAccount, err := r.findInstallments(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	accounts := []domain.CurrentAccount{}
	for _, m := range modelsFound {
		accounts = append(accounts, toDomainAccount(m, installmentsByAccount[m.AccountID]))
	}
	return accounts, nil
}

func (r *PgxAccountRepository) FindAccountsByLoanID(ctx context.Context, loanID string) ([]domain.CurrentAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM current_accounts WHERE loan_id = $1 ORDER BY account_type, created_at;`, accountColumns)
	return r.queryAccounts(ctx, query, loanID)
}

func (r *PgxAccountRepository) FindActiveAccountByPersonID(ctx context.Context, personID string) (*domain.CurrentAccount, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM current_accounts
        WHERE person_id = $1 AND status <> $2
        ORDER BY created_at DESC LIMIT 1;
    `, accountColumns)
	m, err := scanAccount(r.db.QueryRow(ctx, query, personID, string(domain.AccountStatusClosed)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active account for person %s: %w", personID, err)
	}
	installmentsByAccount, err := r.findInstallments(ctx, []string{m.AccountID})
	if err != nil {
		return nil, err
	}
	d := toDomainAccount(m, installmentsByAccount[m.AccountID])
	return &d, nil
}

func (r *PgxAccountRepository) FindActiveAccountByGroupID(ctx context.Context, groupID string) (*domain.CurrentAccount, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM current_accounts
        WHERE group_id = $1 AND account_type = $2 AND status <> $3
        ORDER BY created_at DESC LIMIT 1;
    `, accountColumns)
	m, err := scanAccount(r.db.QueryRow(ctx, query, groupID, string(domain.AccountTypeGroup), string(domain.AccountStatusClosed)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active account for group %s: %w", groupID, err)
	}
	installmentsByAccount, err := r.findInstallments(ctx, []string{m.AccountID})
	if err != nil {
		return nil, err
	}
	d := toDomainAccount(m, installmentsByAccount[m.AccountID])
	return &d, nil
}

func (r *PgxAccountRepository) FindAccounts(ctx context.Context, status domain.AccountStatus, accountType domain.AccountType, limit int, offset int) ([]domain.CurrentAccount, error) {
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
	if accountType != "" {
		conditions = append(conditions, "account_type = "+arg(string(accountType)))
	}

	query := fmt.Sprintf(`SELECT %s FROM current_accounts`, accountColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s;", arg(limit), arg(offset))

	return r.queryAccounts(ctx, query, args...)
}

func scanInstallmentRecord(rows pgx.Rows) (portsrepo.InstallmentRecord, error) {
	var rec portsrepo.InstallmentRecord
	var m models.Installment
	var accountType string
	var personID, groupID *string
	err := rows.Scan(
		&m.AccountID, &accountType, &personID, &groupID, &rec.LoanID,
		&m.Number, &m.Amount, &m.DueDate, &m.PaidDate, &m.AmountPaid, &m.Status, &m.Observation,
	)
	if err != nil {
		return rec, err
	}
	rec.AccountID = m.AccountID
	rec.AccountType = domain.AccountType(accountType)
	if personID != nil {
		rec.PersonID = *personID
	}
	if groupID != nil {
		rec.GroupID = *groupID
	}
	rec.Installment = toDomainInstallment(m)
	return rec, nil
}

func (r *PgxAccountRepository) FindPaidInstallments(ctx context.Context, filter portsrepo.CollectionsFilter) ([]portsrepo.InstallmentRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions := []string{
		"i.status = " + arg(string(domain.InstallmentStatusPaid)),
		"i.paid_date >= " + arg(filter.From),
		"i.paid_date < " + arg(filter.To),
		"a.account_type = " + arg(string(domain.AccountTypePerson)),
	}
	if filter.AfterPaidAt != nil {
		conditions = append(conditions,
			fmt.Sprintf("(i.paid_date, i.account_id) > (%s, %s)", arg(*filter.AfterPaidAt), arg(filter.AfterID)))
	}

	query := fmt.Sprintf(`
        SELECT i.account_id, a.account_type, a.person_id, a.group_id, a.loan_id,
               i.number, i.amount, i.due_date, i.paid_date, i.amount_paid, i.status, i.observation
        FROM installments i
        JOIN current_accounts a ON a.account_id = i.account_id
        WHERE %s
        ORDER BY i.paid_date, i.account_id, i.number
        LIMIT %s;
    `, strings.Join(conditions, " AND "), arg(limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid installments: %w", err)
	}
	defer rows.Close()

	records := []portsrepo.InstallmentRecord{}
	for rows.Next() {
		rec, err := scanInstallmentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment record: %w", err)
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating installment records: %w", rows.Err())
	}
	return records, nil
}

func (r *PgxAccountRepository) FindUnpaidInstallmentsDueBetween(ctx context.Context, from, to time.Time) ([]portsrepo.InstallmentRecord, error) {
	query := `
        SELECT i.account_id, a.account_type, a.person_id, a.group_id, a.loan_id,
               i.number, i.amount, i.due_date, i.paid_date, i.amount_paid, i.status, i.observation
        FROM installments i
        JOIN current_accounts a ON a.account_id = i.account_id
        WHERE i.status <> $1
          AND i.due_date >= $2 AND i.due_date < $3
          AND a.account_type = $4
          AND a.status <> $5
        ORDER BY i.due_date, i.account_id, i.number;
    `
	rows, err := r.db.Query(ctx, query,
		string(domain.InstallmentStatusPaid), from, to,
		string(domain.AccountTypePerson), string(domain.AccountStatusClosed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpaid installments: %w", err)
	}
	defer rows.Close()

	records := []portsrepo.InstallmentRecord{}
	for rows.Next() {
		rec, err := scanInstallmentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment record: %w", err)
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating installment records: %w", rows.Err())
	}
	return records, nil
}

func (r *PgxAccountRepository) UpdateInstallment(ctx context.Context, accountID string, installment domain.Installment, updatedBy string, updatedAt time.Time) error {
	batch := &pgx.Batch{}
	batch.Queue(`
        UPDATE installments SET
            amount = $1, due_date = $2, paid_date = $3, amount_paid = $4, status = $5, observation = $6
        WHERE account_id = $7 AND number = $8;
    `,
		installment.Amount, installment.DueDate, installment.PaidDate,
		installment.AmountPaid, string(installment.Status), installment.Observation,
		accountID, installment.Number,
	)
	batch.Queue(`
        UPDATE current_accounts SET last_updated_at = $1, last_updated_by = $2
        WHERE account_id = $3;
    `, updatedAt, updatedBy, accountID)

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	cmdTag, err := br.Exec()
	if err != nil {
		return fmt.Errorf("failed to execute update installment query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("installment not found: %w", apperrors.ErrNotFound)
	}
	if _, err := br.Exec(); err != nil {
		return fmt.Errorf("failed to touch account audit fields: %w", err)
	}
	return nil
}

func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, updatedBy string, updatedAt time.Time) error {
	query := `
        UPDATE current_accounts SET status = $1, last_updated_at = $2, last_updated_by = $3
        WHERE account_id = $4;
    `
	cmdTag, err := r.db.Exec(ctx, query, string(status), updatedAt, updatedBy, accountID)
	if err != nil {
		return fmt.Errorf("failed to execute update account status query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxAccountRepository) CloseAccountsByLoanID(ctx context.Context, loanID string, updatedBy string, updatedAt time.Time) (int, error) {
	query := `
        UPDATE current_accounts SET status = $1, last_updated_at = $2, last_updated_by = $3
        WHERE loan_id = $4 AND status <> $1;
    `
	cmdTag, err := r.db.Exec(ctx, query, string(domain.AccountStatusClosed), updatedAt, updatedBy, loanID)
	if err != nil {
		return 0, fmt.Errorf("failed to close accounts of loan %s: %w", loanID, err)
	}
	return int(cmdTag.RowsAffected()), nil
}
