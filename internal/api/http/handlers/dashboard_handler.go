package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/auth"
	"github.com/helpdesk-tools/ticket-triage/internal/domain"
	"github.com/helpdesk-tools/ticket-triage/internal/repository"
	"github.com/helpdesk-tools/ticket-triage/internal/service"
	"github.com/helpdesk-tools/ticket-triage/internal/synthetic"
	apperrors "github.com/helpdesk-tools/ticket-triage/pkg/util/errorutil"
)

//go:embed templates/*.html
var templateFS embed.FS

const dashboardListLimit = 200

var (
	ticketStatuses   = []string{string(domain.TicketStatusOpen), string(domain.TicketStatusInProgress), string(domain.TicketStatusResolved)}
	ticketPriorities = []string{string(domain.TicketPriorityLow), string(domain.TicketPriorityMedium), string(domain.TicketPriorityHigh)}
)

var triageExamples = []triageExample{
	{Title: "Network down", Description: "The entire office network is down and nobody can work", Category: "network", Priority: "high"},
	{Title: "Forgot password", Description: "I forgot my password and need to reset it", Category: "account", Priority: "medium"},
	{Title: "Printer not working", Description: "The printer on the 3rd floor is not responding", Category: "hardware", Priority: "low"},
}

type triageExample struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

type ticketRow struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	Created     string
}

type countRow struct {
	Key     string
	Count   int64
	Percent int64
}

type countTable struct {
	Heading string
	Rows    []countRow
}

type ticketForm struct {
	Title       string
	Description string
	Category    string
	Priority    string
	AutoTriage  bool
}

type listFilter struct {
	Status   string
	Priority string
	Category string
}

type pageData struct {
	Title       string
	Error       string
	Statuses    []string
	Priorities  []string
	Categories  []string
	Filter      listFilter
	Tickets     []ticketRow
	Form        ticketForm
	Created     *ticketRow
	AutoTriaged bool
	Result      *triageExample
	Examples    []triageExample
	Stats       domain.TicketStats
}

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	tickets *service.TicketService
	pages   map[string]*template.Template
	logger  *zap.Logger
}

// NewDashboardHandler parses the embedded templates.
func NewDashboardHandler(ticketService *service.TicketService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcs := template.FuncMap{
		"upper":  strings.ToUpper,
		"counts": newCountTable,
	}
	pages := map[string]*template.Template{}
	for _, name := range []string{"tickets", "new", "triage", "analytics"} {
		pages[name] = template.Must(template.New("layout").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return &DashboardHandler{tickets: ticketService, pages: pages, logger: logger}
}

// Tickets GET /dashboard.
func (h *DashboardHandler) Tickets(c *fiber.Ctx) error {
	filter := listFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: strings.TrimSpace(c.Query("category")),
	}
	query := repository.TicketFilter{Limit: dashboardListLimit}
	if filter.Status != "" {
		s := domain.TicketStatus(filter.Status)
		query.Status = &s
	}
	if filter.Priority != "" {
		p := domain.TicketPriority(filter.Priority)
		query.Priority = &p
	}
	if filter.Category != "" {
		query.Category = &filter.Category
	}

	data := h.page("View Tickets")
	data.Filter = filter
	tickets, err := h.tickets.ListTickets(c.UserContext(), query)
	if err != nil {
		data.Error = apperrors.ToDomainError(err).Message
	}
	for i := range tickets {
		data.Tickets = append(data.Tickets, newTicketRow(&tickets[i]))
	}
	return h.render(c, "tickets", data)
}

// NewTicketForm GET /dashboard/new.
func (h *DashboardHandler) NewTicketForm(c *fiber.Ctx) error {
	data := h.page("Create New Ticket")
	data.Form = ticketForm{AutoTriage: true}
	return h.render(c, "new", data)
}

// CreateTicket POST /dashboard/new.
func (h *DashboardHandler) CreateTicket(c *fiber.Ctx) error {
	form := ticketForm{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Priority:    c.FormValue("priority"),
		AutoTriage:  c.FormValue("auto_triage") == "on",
	}
	data := h.page("Create New Ticket")
	data.Form = form

	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" {
		data.Error = "Please provide both title and description"
		return h.render(c.Status(fiber.StatusBadRequest), "new", data)
	}

	input := service.TicketCreateInput{Title: form.Title, Description: form.Description}
	if !form.AutoTriage {
		priority := domain.TicketPriority(form.Priority)
		input.Category = &form.Category
		input.Priority = &priority
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), auth.Actor(c), input)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		data.Error = domainErr.Message
		return h.render(c.Status(domainErr.HTTPStatus), "new", data)
	}

	row := newTicketRow(ticket)
	data.Created = &row
	data.AutoTriaged = form.AutoTriage
	data.Form = ticketForm{AutoTriage: true}
	return h.render(c.Status(fiber.StatusCreated), "new", data)
}

// TriageForm GET /dashboard/triage.
func (h *DashboardHandler) TriageForm(c *fiber.Ctx) error {
	return h.render(c, "triage", h.page("Triage Demo"))
}

// Triage POST /dashboard/triage.
func (h *DashboardHandler) Triage(c *fiber.Ctx) error {
	data := h.page("Triage Demo")
	data.Form = ticketForm{Title: c.FormValue("title"), Description: c.FormValue("description")}
	if strings.TrimSpace(data.Form.Title) == "" || strings.TrimSpace(data.Form.Description) == "" {
		data.Error = "Please provide both title and description"
		return h.render(c.Status(fiber.StatusBadRequest), "triage", data)
	}
	category, priority := h.tickets.Triage(c.UserContext(), data.Form.Title, data.Form.Description)
	data.Result = &triageExample{Category: category, Priority: string(priority)}
	return h.render(c, "triage", data)
}

// Analytics GET /dashboard/analytics.
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	data := h.page("Analytics Dashboard")
	stats, err := h.tickets.Analytics(c.UserContext())
	if err != nil {
		data.Error = apperrors.ToDomainError(err).Message
	}
	data.Stats = stats
	return h.render(c, "analytics", data)
}

func (h *DashboardHandler) page(title string) pageData {
	return pageData{
		Title:      title,
		Statuses:   ticketStatuses,
		Priorities: ticketPriorities,
		Categories: synthetic.Categories(),
		Examples:   triageExamples,
	}
}

func (h *DashboardHandler) render(c *fiber.Ctx, name string, data pageData) error {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("render dashboard page", zap.String("page", name), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func newTicketRow(ticket *domain.Ticket) ticketRow {
	row := ticketRow{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Created:     ticket.CreatedAt.Format("2006-01-02 15:04"),
	}
	if ticket.Category != nil {
		row.Category = *ticket.Category
	}
	if ticket.Priority != nil {
		row.Priority = string(*ticket.Priority)
	}
	return row
}

func newCountTable(heading string, counts []domain.TicketCount, total int64) countTable {
	table := countTable{Heading: heading}
	for _, c := range counts {
		row := countRow{Key: c.Key, Count: c.Count}
		if total > 0 {
			row.Percent = c.Count * 100 / total
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
