package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/models"
)

type PgxShareholderRepository struct {
	db *pgxpool.Pool
}

func newPgxShareholderRepository(db *pgxpool.Pool) portsrepo.ShareholderRepositoryFacade {
	return &PgxShareholderRepository{db: db}
}

var _ portsrepo.ShareholderRepositoryFacade = (*PgxShareholderRepository)(nil)

func toDomainShareholder(m models.Shareholder) domain.Shareholder {
	return domain.Shareholder{
		ShareholderID: m.ShareholderID,
		FullName:      m.FullName,
		NationalID:    m.NationalID,
		Email:         m.Email,
		Phone:         m.Phone,
		TotalCapital:  m.TotalCapital,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxShareholderRepository) SaveShareholder(ctx context.Context, shareholder domain.Shareholder) error {
	query := `
        INSERT INTO shareholders (
            shareholder_id, full_name, national_id, email, phone, total_capital,
            created_at, created_by, last_updated_at, last_updated_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := r.db.Exec(ctx, query,
		shareholder.ShareholderID, shareholder.FullName, shareholder.NationalID,
		shareholder.Email, shareholder.Phone, shareholder.TotalCapital,
		shareholder.CreatedAt, shareholder.CreatedBy, shareholder.LastUpdatedAt, shareholder.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save shareholder: %w", err)
	}
	return nil
}

func (r *PgxShareholderRepository) FindShareholderByID(ctx context.Context, shareholderID string) (*domain.Shareholder, error) {
	query := `
        SELECT shareholder_id, full_name, national_id, email, phone, total_capital,
               created_at, created_by, last_updated_at, last_updated_by
        FROM shareholders WHERE shareholder_id = $1;
    `
	var m models.Shareholder
	err := r.db.QueryRow(ctx, query, shareholderID).Scan(
		&m.ShareholderID, &m.FullName, &m.NationalID, &m.Email, &m.Phone, &m.TotalCapital,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shareholder by ID %s: %w", shareholderID, err)
	}
	d := toDomainShareholder(m)
	return &d, nil
}

func (r *PgxShareholderRepository) FindShareholderByNationalID(ctx context.Context, nationalID string) (*domain.Shareholder, error) {
	query := `
        SELECT shareholder_id, full_name, national_id, email, phone, total_capital,
               created_at, created_by, last_updated_at, last_updated_by
        FROM shareholders WHERE national_id = $1;
    `
	var m models.Shareholder
	err := r.db.QueryRow(ctx, query, nationalID).Scan(
		&m.ShareholderID, &m.FullName, &m.NationalID, &m.Email, &m.Phone, &m.TotalCapital,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shareholder by national ID: %w", err)
	}
	d := toDomainShareholder(m)
	return &d, nil
}

func (r *PgxShareholderRepository) FindShareholders(ctx context.Context, limit int, offset int) ([]domain.Shareholder, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT shareholder_id, full_name, national_id, email, phone, total_capital,
               created_at, created_by, last_updated_at, last_updated_by
        FROM shareholders ORDER BY created_at DESC LIMIT $1 OFFSET $2;
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query shareholders: %w", err)
	}
	defer rows.Close()

	shareholders := []domain.Shareholder{}
	for rows.Next() {
		var m models.Shareholder
		err := rows.Scan(
			&m.ShareholderID, &m.FullName, &m.NationalID, &m.Email, &m.Phone, &m.TotalCapital,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shareholder row: %w", err)
		}
		shareholders = append(shareholders, toDomainShareholder(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating shareholder rows: %w", rows.Err())
	}
	return shareholders, nil
}

func (r *PgxShareholderRepository) UpdateShareholder(ctx context.Context, shareholder domain.Shareholder) error {
	query := `
        UPDATE shareholders SET
            full_name = $1, email = $2, phone = $3, total_capital = $4,
            last_updated_at = $5, last_updated_by = $6
        WHERE shareholder_id = $7;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		shareholder.FullName, shareholder.Email, shareholder.Phone, shareholder.TotalCapital,
		shareholder.LastUpdatedAt, shareholder.LastUpdatedBy,
		shareholder.ShareholderID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update shareholder query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("shareholder not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxShareholderRepository) DeleteShareholder(ctx context.Context, shareholderID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM shareholders WHERE shareholder_id = $1;`, shareholderID)
	if err != nil {
		return fmt.Errorf("failed to delete shareholder: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("shareholder not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
