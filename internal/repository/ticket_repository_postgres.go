package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
)

// PgxQuerier is the part of *pgxpool.Pool the repository needs.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresTicketRepository struct {
	pool PgxQuerier
	now  func() time.Time
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool PgxQuerier) TicketRepository {
	return &postgresTicketRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanPgTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return ticket, nil
}

func (r *postgresTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(filter, dollarPlaceholder)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanPgTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *postgresTicketRepository) Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error) {
	set, args := buildUpdateSet(id, update, r.now(), dollarPlaceholder)
	ticket, err := scanPgTicket(r.pool.QueryRow(ctx, set+` RETURNING `+ticketColumns, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}
	return ticket, nil
}

func (r *postgresTicketRepository) Stats(ctx context.Context) (domain.TicketStats, error) {
	var stats domain.TicketStats
	if err := r.pool.QueryRow(ctx, statsTotalsQuery).Scan(&stats.Total, &stats.Open, &stats.HighPriority); err != nil {
		return stats, fmt.Errorf("ticket totals: %w", err)
	}
	var err error
	if stats.ByCategory, err = r.groupCounts(ctx, "category"); err != nil {
		return stats, err
	}
	if stats.ByPriority, err = r.groupCounts(ctx, "priority"); err != nil {
		return stats, err
	}
	if stats.ByStatus, err = r.groupCounts(ctx, "status"); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *postgresTicketRepository) groupCounts(ctx context.Context, column string) ([]domain.TicketCount, error) {
	rows, err := r.pool.Query(ctx, statsGroupQueries[column])
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()
	var counts []domain.TicketCount
	for rows.Next() {
		var c domain.TicketCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanPgTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		priority *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&priority,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Priority = priorityPtr(priority)
	return &ticket, nil
}
