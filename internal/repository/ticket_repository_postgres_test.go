package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
)

var pgColumns = []string{"id", "title", "description", "category", "priority", "status", "created_at", "updated_at"}

func newPgRepo(t *testing.T) (*postgresTicketRepository, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := NewPostgresTicketRepository(mock).(*postgresTicketRepository)
	repo.now = func() time.Time { return clock }
	return repo, mock, clock
}

func pgTicketRow(id int64, title string, category *string, priority *string, status domain.TicketStatus, at time.Time) []any {
	return []any{id, title, title + " details", category, priority, status, at, at}
}

func TestPostgresTicketRepository_Create(t *testing.T) {
	repo, mock, clock := newPgRepo(t)
	ticket := &domain.Ticket{
		Title:       "VPN down",
		Description: "cannot connect",
		Category:    strPtr("network"),
		Priority:    prioPtr(domain.TicketPriorityHigh),
		Status:      domain.TicketStatusOpen,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tickets (title, description, category, priority, status)`)).
		WithArgs("VPN down", "cannot connect", ticket.Category, ticket.Priority, domain.TicketStatusOpen).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), clock, clock))

	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.Equal(t, int64(5), ticket.ID)
	assert.Equal(t, clock, ticket.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_CreateFailure(t *testing.T) {
	repo, mock, _ := newPgRepo(t)
	mock.ExpectQuery(`INSERT INTO tickets`).WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &domain.Ticket{Title: "x", Description: "y", Status: domain.TicketStatusOpen})
	assert.ErrorContains(t, err, "insert ticket: connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_GetByID(t *testing.T) {
	repo, mock, clock := newPgRepo(t)
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`)

	high := "high"
	mock.ExpectQuery(query).WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(pgColumns).AddRow(pgTicketRow(7, "Printer jam", strPtr("hardware"), &high, domain.TicketStatusInProgress, clock)...))
	mock.ExpectQuery(query).WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(query).WithArgs(int64(9)).WillReturnError(context.DeadlineExceeded)

	got, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Printer jam", got.Title)
	assert.Equal(t, "hardware", *got.Category)
	assert.Equal(t, domain.TicketPriorityHigh, *got.Priority)
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)

	_, err = repo.GetByID(ctx, 8)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = repo.GetByID(ctx, 9)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTicketNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_List(t *testing.T) {
	repo, mock, clock := newPgRepo(t)
	status := domain.TicketStatusOpen
	category := "network"

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tickets WHERE 1=1 AND status=$1 AND category=$2 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 5`)).
		WithArgs("open", "network").
		WillReturnRows(pgxmock.NewRows(pgColumns).
			AddRow(pgTicketRow(2, "WiFi flaky", &category, (*string)(nil), domain.TicketStatusOpen, clock)...).
			AddRow(pgTicketRow(1, "VPN down", &category, (*string)(nil), domain.TicketStatusOpen, clock)...))

	tickets, err := repo.List(context.Background(), TicketFilter{Status: &status, Category: &category, Limit: 20, Offset: 5})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, int64(2), tickets[0].ID)
	assert.Nil(t, tickets[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_ListEmptyIsNotNil(t *testing.T) {
	repo, mock, _ := newPgRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT 100 OFFSET 0`)).
		WillReturnRows(pgxmock.NewRows(pgColumns))

	tickets, err := repo.List(context.Background(), TicketFilter{})
	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_Update(t *testing.T) {
	repo, mock, clock := newPgRepo(t)
	ctx := context.Background()
	resolved := domain.TicketStatusResolved
	query := regexp.QuoteMeta(`UPDATE tickets SET status=$1, updated_at=$2 WHERE id=$3 RETURNING ` + ticketColumns)

	mock.ExpectQuery(query).WithArgs("resolved", clock, int64(3)).
		WillReturnRows(pgxmock.NewRows(pgColumns).AddRow(pgTicketRow(3, "VPN down", strPtr("network"), (*string)(nil), domain.TicketStatusResolved, clock)...))
	mock.ExpectQuery(query).WithArgs("resolved", clock, int64(4)).WillReturnError(pgx.ErrNoRows)

	got, err := repo.Update(ctx, 3, TicketUpdate{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
	assert.Equal(t, clock, got.UpdatedAt)

	_, err = repo.Update(ctx, 4, TicketUpdate{Status: &resolved})
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTicketRepository_Stats(t *testing.T) {
	repo, mock, _ := newPgRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(statsTotalsQuery)).
		WillReturnRows(pgxmock.NewRows([]string{"total", "open", "high"}).AddRow(int64(3), int64(2), int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(statsGroupQueries["category"])).
		WillReturnRows(pgxmock.NewRows([]string{"bucket", "count"}).AddRow("network", int64(2)).AddRow(Untriaged, int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(statsGroupQueries["priority"])).
		WillReturnRows(pgxmock.NewRows([]string{"bucket", "count"}).AddRow("high", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(statsGroupQueries["status"])).
		WillReturnError(errors.New("relation does not exist"))

	_, err := repo.Stats(context.Background())
	assert.ErrorContains(t, err, "count by status")
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta(statsTotalsQuery)).WillReturnError(errors.New("boom"))
	_, err = repo.Stats(context.Background())
	assert.ErrorContains(t, err, "ticket totals")
	assert.NoError(t, mock.ExpectationsWereMet())
}
