package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
	"github.com/helpdesk-tools/ticket-triage/internal/repository"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
	apperrors "github.com/helpdesk-tools/ticket-triage/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	triage     *TriageService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Triage     *TriageService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Missing category or
// priority is filled in by triage.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// TicketUpdateInput lists the fields to change; nil fields are left alone.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	triageService := deps.Triage
	if triageService == nil {
		triageService = NewTriageService(TriageDependencies{Engine: triage.NewTriager(nil), Logger: logger})
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		triage:     triageService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket validates and stores a ticket, triaging it when category or
// priority was not supplied.
func (s *TicketService) CreateTicket(ctx context.Context, actor string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validateText(title, description); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		category := strings.TrimSpace(*input.Category)
		if err := validateCategory(category); err != nil {
			return nil, err
		}
		ticket.Category = &category
	}
	if input.Priority != nil && *input.Priority != "" {
		if !input.Priority.Valid() {
			return nil, invalidPriority(*input.Priority)
		}
		priority := *input.Priority
		ticket.Priority = &priority
	}
	if input.Status != nil && *input.Status != "" {
		if !input.Status.Valid() {
			return nil, invalidStatus(*input.Status)
		}
		ticket.Status = *input.Status
	}

	autoTriaged := false
	if ticket.Category == nil || ticket.Priority == nil {
		result := s.triage.Triage(ctx, ticket.Title, ticket.Description)
		if ticket.Category == nil {
			category := result.Category
			ticket.Category = &category
		}
		if ticket.Priority == nil {
			priority := domain.TicketPriority(result.Priority)
			ticket.Priority = &priority
		}
		autoTriaged = true
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		Title:       ticket.Title,
		Category:    deref(ticket.Category),
		Priority:    string(derefPriority(ticket.Priority)),
		AutoTriaged: autoTriaged,
	}))
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return ticket, nil
}

// ListTickets returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalidStatus(*filter.Status)
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, invalidPriority(*filter.Priority)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.NewValidationError("limit and offset must not be negative", nil)
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial update.
func (s *TicketService) UpdateTicket(ctx context.Context, actor string, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	update := repository.TicketUpdate{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      input.Status,
	}
	if update.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}

	var fields []string
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title must not be blank", nil)
		}
		if utf8.RuneCountInString(title) > domain.MaxTitleLength {
			return nil, titleTooLong()
		}
		update.Title = &title
		fields = append(fields, "title")
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description must not be blank", nil)
		}
		update.Description = &description
		fields = append(fields, "description")
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, apperrors.NewValidationError("category must not be blank", nil)
		}
		if err := validateCategory(category); err != nil {
			return nil, err
		}
		update.Category = &category
		fields = append(fields, "category")
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, invalidPriority(*input.Priority)
		}
		fields = append(fields, "priority")
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalidStatus(*input.Status)
		}
		fields = append(fields, "status")
	}

	ticket, err := s.tickets.Update(ctx, id, update)
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	s.publish(ctx, events.NewEvent(events.EventTicketUpdated, ticket.ID, actor, events.TicketUpdatedPayload{
		Fields: fields,
		Status: string(ticket.Status),
	}))
	return ticket, nil
}

// Triage predicts category and priority without storing anything.
func (s *TicketService) Triage(ctx context.Context, title, description string) (string, domain.TicketPriority) {
	result := s.triage.Triage(ctx, title, description)
	return result.Category, domain.TicketPriority(result.Priority)
}

// Analytics aggregates ticket counts for the dashboard.
func (s *TicketService) Analytics(ctx context.Context) (domain.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return domain.TicketStats{}, storeError(err)
	}
	return stats, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func validateText(title, description string) error {
	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	}
	if description == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("title and description are required", details)
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return titleTooLong()
	}
	return nil
}

func validateCategory(category string) error {
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		return apperrors.NewValidationError("category too long", map[string]any{"max_length": domain.MaxCategoryLength})
	}
	return nil
}

func titleTooLong() error {
	return apperrors.NewValidationError("title too long", map[string]any{"max_length": domain.MaxTitleLength})
}

func invalidStatus(status domain.TicketStatus) error {
	return apperrors.NewValidationError("invalid status", map[string]any{
		"status":  string(status),
		"allowed": []string{string(domain.TicketStatusOpen), string(domain.TicketStatusInProgress), string(domain.TicketStatusResolved)},
	})
}

func invalidPriority(priority domain.TicketPriority) error {
	return apperrors.NewValidationError("invalid priority", map[string]any{
		"priority": string(priority),
		"allowed":  []string{string(domain.TicketPriorityLow), string(domain.TicketPriorityMedium), string(domain.TicketPriorityHigh)},
	})
}

func mapRepoError(err error, id int64) error {
	if errors.Is(err, repository.ErrTicketNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return storeError(err)
}

func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeout(err)
	}
	return apperrors.NewInternalError(err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefPriority(p *domain.TicketPriority) domain.TicketPriority {
	if p == nil {
		return ""
	}
	return *p
}
