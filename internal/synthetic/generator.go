// Package synthetic generates labeled service-desk tickets for training
// and demos.
package synthetic

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type template struct {
	title       string
	description string
}

var categoryTemplates = map[string][]template{
	"network": {
		{"Network connectivity issues", "Unable to connect to the office network from my laptop."},
		{"VPN not working", "VPN connection keeps dropping every few minutes."},
		{"Slow internet speed", "Internet is extremely slow, pages take forever to load."},
		{"WiFi connection problems", "Cannot connect to WiFi in conference room B."},
		{"Network printer offline", "Network printer is showing offline status."},
	},
	"hardware": {
		{"Laptop screen flickering", "My laptop screen keeps flickering and going black."},
		{"Keyboard keys not working", "Several keys on my keyboard have stopped responding."},
		{"Mouse not responding", "Wireless mouse is not connecting to my computer."},
		{"Monitor display issues", "Second monitor is not being detected by my computer."},
		{"Printer paper jam", "Office printer has a paper jam that I cannot clear."},
	},
	"software": {
		{"Application crashing", "Microsoft Excel crashes every time I open large files."},
		{"Software installation error", "Cannot install the updated version of Adobe Reader."},
		{"Email client not syncing", "Outlook is not syncing my emails properly."},
		{"Browser performance issues", "Chrome browser is very slow and unresponsive."},
		{"Software license expired", "AutoCAD showing license expired message."},
	},
	"account": {
		{"Password reset request", "I forgot my password and need to reset it."},
		{"Account locked out", "My account has been locked after multiple login attempts."},
		{"Access permission needed", "Need access to the shared drive for marketing team."},
		{"New user account setup", "New employee needs account setup for all systems."},
		{"Email account issues", "Cannot access my email account, shows invalid credentials."},
	},
	"security": {
		{"Suspicious email received", "Received a phishing email claiming to be from IT."},
		{"Malware detected", "Antivirus detected malware on my computer."},
		{"Security certificate error", "Getting security certificate error on company website."},
		{"Unauthorized access attempt", "Multiple failed login attempts on my account from unknown location."},
		{"Data breach concern", "Concerned about potential data breach, unusual activity noticed."},
	},
}

var (
	urgentModifiers    = []string{"URGENT:", "CRITICAL:", "EMERGENCY:", "System down:", "Major issue:"}
	importantModifiers = []string{"Important:", "High priority:", "Need help:"}
	descriptionSuffix  = []string{
		"",
		" This is affecting my work.",
		" Please help urgently.",
		" Has been happening since yesterday.",
		" Multiple users are reporting this issue.",
	}
	statuses = []string{"open", "open", "open", "in_progress", "resolved"}
)

// CreatedAtLayout is the timestamp format written to CSV.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Ticket is a generated, labeled ticket.
type Ticket struct {
	ID          int
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	CreatedAt   time.Time
}

// Categories returns the generated category labels in sorted order.
func Categories() []string {
	out := make([]string, 0, len(categoryTemplates))
	for c := range categoryTemplates {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Generator produces tickets from a seeded random source.
type Generator struct {
	rng        *rand.Rand
	now        func() time.Time
	categories []string
}

// NewGenerator returns a generator; equal seeds yield equal tickets for a fixed clock.
func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		now:        now,
		categories: Categories(),
	}
}

// Generate returns n tickets with ids 1..n.
func (g *Generator) Generate(n int) []Ticket {
	tickets := make([]Ticket, 0, n)
	for i := 0; i < n; i++ {
		category := g.categories[g.rng.Intn(len(g.categories))]
		tmpl := categoryTemplates[category][g.rng.Intn(len(categoryTemplates[category]))]

		title, priority := tmpl.title, "low"
		if g.rng.Float64() < 0.15 {
			title = urgentModifiers[g.rng.Intn(len(urgentModifiers))] + " " + tmpl.title
			priority = "high"
		} else if g.rng.Float64() < 0.35 {
			title = importantModifiers[g.rng.Intn(len(importantModifiers))] + " " + tmpl.title
			priority = "medium"
		}

		description := tmpl.description + descriptionSuffix[g.rng.Intn(len(descriptionSuffix))]
		daysAgo := g.rng.Intn(91)

		tickets = append(tickets, Ticket{
			ID:          i + 1,
			Title:       title,
			Description: description,
			Category:    category,
			Priority:    priority,
			Status:      statuses[g.rng.Intn(len(statuses))],
			CreatedAt:   g.now().AddDate(0, 0, -daysAgo).Truncate(time.Second),
		})
	}
	return tickets
}

// WriteCSV writes tickets with a header row.
func WriteCSV(w io.Writer, tickets []Ticket) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "title", "description", "category", "priority", "status", "created_at"}); err != nil {
		return err
	}
	for _, t := range tickets {
		record := []string{
			strconv.Itoa(t.ID),
			t.Title,
			t.Description,
			t.Category,
			t.Priority,
			t.Status,
			t.CreatedAt.Format(CreatedAtLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes tickets to path, creating parent directories.
func WriteCSVFile(path string, tickets []Ticket) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, tickets); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Distribution counts tickets per category and per priority.
type Distribution struct {
	Categories map[string]int
	Priorities map[string]int
	Total      int
}

// Summarize computes the category and priority distribution.
func Summarize(tickets []Ticket) Distribution {
	d := Distribution{Categories: map[string]int{}, Priorities: map[string]int{}, Total: len(tickets)}
	for _, t := range tickets {
		d.Categories[t.Category]++
		d.Priorities[t.Priority]++
	}
	return d
}

// Percent returns count as a share of Total, 0 for an empty distribution.
func (d Distribution) Percent(count int) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(count) / float64(d.Total) * 100
}
