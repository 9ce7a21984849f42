package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates triage urgency tiers.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// MaxTitleLength mirrors the tickets.title column width.
const MaxTitleLength = 200

// MaxCategoryLength mirrors the tickets.category column width.
const MaxCategoryLength = 50

// Ticket is a service-desk request. Category and Priority stay nil until triaged.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Category    *string
	Priority    *TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketCount is one bucket of an aggregate count.
type TicketCount struct {
	Key   string
	Count int64
}

// TicketStats aggregates counts for the analytics dashboard.
type TicketStats struct {
	Total        int64
	Open         int64
	HighPriority int64
	ByCategory   []TicketCount
	ByPriority   []TicketCount
	ByStatus     []TicketCount
}
