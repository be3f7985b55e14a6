package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stay-service/internal/domain"
)

// TicketRepository encapsulates support ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateStatus writes the status with its denormalized fields only while the
	// row is still in expected; otherwise it returns ErrStatusChanged.
	UpdateStatus(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_tickets (owner_id, subject, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, owner_id, subject, description, status, assigned_moderator_id,
               assigned_at, solved_at, closed_at, created_at, updated_at
        FROM support_tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.AssignedModeratorID,
		&ticket.AssignedAt,
		&ticket.SolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	const query = `
        UPDATE support_tickets
        SET status=$1, assigned_moderator_id=$2, assigned_at=$3, solved_at=$4, closed_at=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7
        RETURNING updated_at`
	rows, err := conn(ctx, r.pool).Query(ctx, query,
		ticket.Status,
		ticket.AssignedModeratorID,
		ticket.AssignedAt,
		ticket.SolvedAt,
		ticket.ClosedAt,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrStatusChanged
	}
	if err := rows.Scan(&ticket.UpdatedAt); err != nil {
		return err
	}
	return rows.Err()
}
