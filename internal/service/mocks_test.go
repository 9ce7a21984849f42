package service

import (
	"context"
	"errors"
	"time"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
	"github.com/helpdesk-tools/ticket-triage/internal/repository"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

type mockTicketRepo struct {
	createFn  func(ctx context.Context, ticket *domain.Ticket) error
	getByIDFn func(ctx context.Context, id int64) (*domain.Ticket, error)
	listFn    func(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
	updateFn  func(ctx context.Context, id int64, update repository.TicketUpdate) (*domain.Ticket, error)
	statsFn   func(ctx context.Context) (domain.TicketStats, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if m.createFn != nil {
		return m.createFn(ctx, ticket)
	}
	ticket.ID = 1
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrTicketNotFound
}

func (m *mockTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockTicketRepo) Update(ctx context.Context, id int64, update repository.TicketUpdate) (*domain.Ticket, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, update)
	}
	return nil, repository.ErrTicketNotFound
}

func (m *mockTicketRepo) Stats(ctx context.Context) (domain.TicketStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return domain.TicketStats{}, nil
}

type mockEngine struct {
	result  triage.Result
	version string
	ready   bool
	calls   int
}

func (m *mockEngine) Triage(title, description string) triage.Result {
	m.calls++
	return m.result
}

func (m *mockEngine) ModelVersion() string { return m.version }

func (m *mockEngine) Ready() bool { return m.ready }

type memoryCache struct {
	values map[string]triage.Result
	getErr error
	setErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]triage.Result{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	if c.getErr != nil {
		return c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return errors.New("miss")
	}
	*dest.(*triage.Result) = v
	return nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value.(triage.Result)
	return nil
}
