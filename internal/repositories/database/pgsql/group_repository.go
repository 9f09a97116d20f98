package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/models"
)

type PgxGroupRepository struct {
	db *pgxpool.Pool
}

func newPgxGroupRepository(db *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{db: db}
}

var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

func toDomainGroup(m models.Group, memberIDs []string) domain.Group {
	return domain.Group{
		GroupID:   m.GroupID,
		Name:      m.Name,
		MemberIDs: memberIDs,
		Status:    domain.GroupStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	query := `
        INSERT INTO groups (group_id, name, status, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	_, err := r.db.Exec(ctx, query,
		group.GroupID, group.Name, string(group.Status),
		group.CreatedAt, group.CreatedBy, group.LastUpdatedAt, group.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}
	return nil
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `
        SELECT group_id, name, status, created_at, created_by, last_updated_at, last_updated_by
        FROM groups WHERE group_id = $1;
    `
	var m models.Group
	err := r.db.QueryRow(ctx, query, groupID).Scan(
		&m.GroupID, &m.Name, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find group by ID %s: %w", groupID, err)
	}

	memberIDs, err := r.findMemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	d := toDomainGroup(m, memberIDs)
	return &d, nil
}

func (r *PgxGroupRepository) findMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `SELECT person_id FROM persons WHERE group_id = $1 AND NOT archived ORDER BY created_at ASC;`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member ID: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", rows.Err())
	}
	return ids, nil
}

func (r *PgxGroupRepository) FindGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT g.group_id, g.name, g.status,
               g.created_at, g.created_by, g.last_updated_at, g.last_updated_by,
               COALESCE(array_agg(p.person_id ORDER BY p.created_at) FILTER (WHERE p.person_id IS NOT NULL), '{}')
        FROM groups g
        LEFT JOIN persons p ON p.group_id = g.group_id AND NOT p.archived
        GROUP BY g.group_id
        ORDER BY g.created_at DESC
        LIMIT $1 OFFSET $2;
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		var m models.Group
		var memberIDs []string
		err := rows.Scan(
			&m.GroupID, &m.Name, &m.Status,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
			&memberIDs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, toDomainGroup(m, memberIDs))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", rows.Err())
	}
	return groups, nil
}

func (r *PgxGroupRepository) FindGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT group_id FROM groups ORDER BY created_at ASC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query group IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group ID: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating group ID rows: %w", rows.Err())
	}
	return ids, nil
}

func (r *PgxGroupRepository) UpdateGroup(ctx context.Context, group domain.Group) error {
	query := `
        UPDATE groups SET name = $1, last_updated_at = $2, last_updated_by = $3
        WHERE group_id = $4;
    `
	cmdTag, err := r.db.Exec(ctx, query, group.Name, group.LastUpdatedAt, group.LastUpdatedBy, group.GroupID)
	if err != nil {
		return fmt.Errorf("failed to execute update group query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("group not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxGroupRepository) UpdateGroupStatus(ctx context.Context, groupID string, status domain.GroupStatus, updatedBy string, updatedAt time.Time) error {
	query := `
        UPDATE groups SET status = $1, last_updated_at = $2, last_updated_by = $3
        WHERE group_id = $4;
    `
	cmdTag, err := r.db.Exec(ctx, query, string(status), updatedAt, updatedBy, groupID)
	if err != nil {
		return fmt.Errorf("failed to execute update group status query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("group not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
