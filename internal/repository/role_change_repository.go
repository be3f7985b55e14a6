package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stay-service/internal/domain"
)

// RoleChangeRepository encapsulates role change request persistence.
type RoleChangeRepository interface {
	Create(ctx context.Context, request *domain.RoleChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.RoleChangeRequest, error)
	// UpdateDecision persists status and fulfiller only while the row is still in expected.
	UpdateDecision(ctx context.Context, request *domain.RoleChangeRequest, expected domain.RoleChangeStatus) error
}

type roleChangeRepository struct {
	pool *pgxpool.Pool
}

// NewRoleChangeRepository instantiates repository.
func NewRoleChangeRepository(pool *pgxpool.Pool) RoleChangeRepository {
	return &roleChangeRepository{pool: pool}
}

func (r *roleChangeRepository) Create(ctx context.Context, request *domain.RoleChangeRequest) error {
	const query = `
        INSERT INTO role_change_requests (requester_id, requested_role, motivation, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		request.RequesterID,
		request.RequestedRole,
		request.Motivation,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *roleChangeRepository) GetByID(ctx context.Context, id string) (*domain.RoleChangeRequest, error) {
	const query = `
        SELECT id, requester_id, requested_role, motivation, status, fulfilled_by, fulfilled_at, created_at, updated_at
        FROM role_change_requests WHERE id=$1`
	var request domain.RoleChangeRequest
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.RequesterID,
		&request.RequestedRole,
		&request.Motivation,
		&request.Status,
		&request.FulfilledBy,
		&request.FulfilledAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *roleChangeRepository) UpdateDecision(ctx context.Context, request *domain.RoleChangeRequest, expected domain.RoleChangeStatus) error {
	const query = `
        UPDATE role_change_requests
        SET status=$1, fulfilled_by=$2, fulfilled_at=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		request.Status,
		request.FulfilledBy,
		request.FulfilledAt,
		request.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}
