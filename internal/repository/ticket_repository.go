package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
)

// DefaultListLimit applies when a filter leaves Limit unset.
const DefaultListLimit = 100

// MaxListLimit caps the page size.
const MaxListLimit = 1000

// ErrTicketNotFound is returned when no ticket has the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Category *string
	Limit    int
	Offset   int
}

// TicketUpdate carries the fields to change; nil fields are left alone.
type TicketUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// Empty reports whether the update changes nothing.
func (u TicketUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Priority == nil && u.Status == nil
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error)
	Stats(ctx context.Context) (domain.TicketStats, error)
}

const ticketColumns = `id, title, description, category, priority, status, created_at, updated_at`

// Untriaged labels tickets without a category or priority in aggregate counts.
const Untriaged = "none"

var (
	statsTotalsQuery = fmt.Sprintf(`
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN priority = '%s' THEN 1 ELSE 0 END), 0)
        FROM tickets`, domain.TicketStatusOpen, domain.TicketPriorityHigh)

	statsGroupQueries = map[string]string{
		"category": groupCountQuery("category"),
		"priority": groupCountQuery("priority"),
		"status":   groupCountQuery("status"),
	}
)

func groupCountQuery(column string) string {
	return fmt.Sprintf(`SELECT COALESCE(%[1]s, '%[2]s') AS bucket, COUNT(*) FROM tickets GROUP BY bucket ORDER BY COUNT(*) DESC, bucket`, column, Untriaged)
}

// placeholder renders the n-th (1-based) bind parameter for a dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

func buildListQuery(filter TicketFilter, ph placeholder) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, "status="+ph(len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		clauses = append(clauses, "priority="+ph(len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, "category="+ph(len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)
	return query, args
}

// buildUpdateSet renders the SET clause; updated_at is always refreshed.
// The returned args end with the id parameter.
func buildUpdateSet(id int64, update TicketUpdate, now any, ph placeholder) (string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"="+ph(len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Priority != nil {
		add("priority", string(*update.Priority))
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	add("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=%s`, strings.Join(sets, ", "), ph(len(args)))
	return query, args
}

func priorityPtr(s *string) *domain.TicketPriority {
	if s == nil {
		return nil
	}
	p := domain.TicketPriority(*s)
	return &p
}
