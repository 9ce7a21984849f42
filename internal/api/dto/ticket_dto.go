package dto

import (
	"time"

	"github.com/helpdesk-tools/ticket-triage/internal/domain"
)

// CreateTicketRequest payload. Category and priority are predicted when omitted.
type CreateTicketRequest struct {
	Title       string                 `json:"title" form:"title"`
	Description string                 `json:"description" form:"description"`
	Category    *string                `json:"category" form:"category"`
	Priority    *domain.TicketPriority `json:"priority" form:"priority"`
	Status      *domain.TicketStatus   `json:"status" form:"status"`
}

// UpdateTicketRequest payload; omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
}

// TicketResponse is the public ticket representation.
type TicketResponse struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    *string                `json:"category"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus    `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// TriageRequest payload for ad-hoc prediction.
type TriageRequest struct {
	Title       string `json:"title" query:"title" form:"title"`
	Description string `json:"description" query:"description" form:"description"`
}

// TriageResponse echoes the input with its predictions.
type TriageResponse struct {
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	PredictedCategory string                `json:"predicted_category"`
	PredictedPriority domain.TicketPriority `json:"predicted_priority"`
	ModelVersion      string                `json:"model_version"`
}

// CountResponse is one aggregate bucket.
type CountResponse struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AnalyticsResponse summarizes the ticket table.
type AnalyticsResponse struct {
	Total        int64           `json:"total"`
	Open         int64           `json:"open"`
	HighPriority int64           `json:"high_priority"`
	ByCategory   []CountResponse `json:"by_category"`
	ByPriority   []CountResponse `json:"by_priority"`
	ByStatus     []CountResponse `json:"by_status"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewAnalyticsResponse maps aggregate stats.
func NewAnalyticsResponse(stats domain.TicketStats) AnalyticsResponse {
	return AnalyticsResponse{
		Total:        stats.Total,
		Open:         stats.Open,
		HighPriority: stats.HighPriority,
		ByCategory:   counts(stats.ByCategory),
		ByPriority:   counts(stats.ByPriority),
		ByStatus:     counts(stats.ByStatus),
	}
}

func counts(src []domain.TicketCount) []CountResponse {
	out := make([]CountResponse, 0, len(src))
	for _, c := range src {
		out = append(out, CountResponse{Key: c.Key, Count: c.Count})
	}
	return out
}
