package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
)

type sqliteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTicketRepository instantiates the database/sql repository used
// with the sqlite3 driver.
func NewSQLiteTicketRepository(db *sql.DB) TicketRepository {
	return &sqliteTicketRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := r.now()
	res, err := r.db.ExecContext(ctx, query,
		ticket.Title,
		ticket.Description,
		nullableString(ticket.Category),
		nullablePriority(ticket.Priority),
		string(ticket.Status),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert ticket id: %w", err)
	}
	ticket.ID = id
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=?`
	ticket, err := scanSQLTicket(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(filter, questionPlaceholder)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanSQLTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *sqliteTicketRepository) Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error) {
	query, args := buildUpdateSet(id, update, r.now(), questionPlaceholder)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrTicketNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteTicketRepository) Stats(ctx context.Context) (domain.TicketStats, error) {
	var stats domain.TicketStats
	if err := r.db.QueryRowContext(ctx, statsTotalsQuery).Scan(&stats.Total, &stats.Open, &stats.HighPriority); err != nil {
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

func (r *sqliteTicketRepository) groupCounts(ctx context.Context, column string) ([]domain.TicketCount, error) {
	rows, err := r.db.QueryContext(ctx, statsGroupQueries[column])
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket             domain.Ticket
		category, priority sql.NullString
		status             string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&category,
		&priority,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	if category.Valid {
		ticket.Category = &category.String
	}
	if priority.Valid {
		p := domain.TicketPriority(priority.String)
		ticket.Priority = &p
	}
	return &ticket, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullablePriority(p *domain.TicketPriority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}
