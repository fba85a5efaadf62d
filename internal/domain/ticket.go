package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOverdue    TicketStatus = "OVERDUE"
	TicketStatusDone       TicketStatus = "DONE"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket is the aggregate for customer complaints.
type Ticket struct {
	ID              string
	Code            string
	Title           string
	Description     string
	ProductID       string
	Priority        TicketPriority
	Status          TicketStatus
	CustomerName    string
	CustomerContact string
	Source          string
	StartDate       string
	StartTime       string
	EndDate         string
	EndTime         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// statusAliases maps the legacy mixed vocabulary onto the canonical enum.
// "resolved" was the old API's word for DONE.
var statusAliases = map[string]TicketStatus{
	"new":         TicketStatusNew,
	"pending":     TicketStatusPending,
	"in_progress": TicketStatusInProgress,
	"in progress": TicketStatusInProgress,
	"overdue":     TicketStatusOverdue,
	"resolved":    TicketStatusDone,
	"done":        TicketStatusDone,
	"closed":      TicketStatusClosed,
}

// ParseTicketStatus normalizes a status value. "critical" is a priority, not
// a status, and is rejected here.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[normalized]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// ParseTicketPriority normalizes a priority value.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return TicketPriorityLow, nil
	case "medium":
		return TicketPriorityMedium, nil
	case "high":
		return TicketPriorityHigh, nil
	case "critical", "urgent":
		return TicketPriorityCritical, nil
	}
	return "", fmt.Errorf("unknown ticket priority %q", raw)
}

// Terminal reports whether the status is exempt from the overdue sweep.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusDone || s == TicketStatusClosed || s == TicketStatusOverdue
}

// deadlineLayouts cover the free-text schedule window formats the clients
// historically sent.
var deadlineLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Deadline parses EndDate/EndTime as a local datetime. The second return is
// false when no usable deadline is set.
func (t *Ticket) Deadline() (time.Time, bool) {
	date := strings.TrimSpace(t.EndDate)
	if date == "" {
		return time.Time{}, false
	}
	candidate := date
	if clock := strings.TrimSpace(t.EndTime); clock != "" {
		candidate = date + " " + clock
	}
	for _, layout := range deadlineLayouts {
		if parsed, err := time.ParseInLocation(layout, candidate, time.Local); err == nil {
			return parsed, true
		}
	}
	// Unparseable window text never triggers the sweep.
	return time.Time{}, false
}

// OverdueAt reports whether the ticket should be flipped to OVERDUE at the
// given instant.
func (t *Ticket) OverdueAt(now time.Time) bool {
	if t.Status.Terminal() {
		return false
	}
	deadline, ok := t.Deadline()
	if !ok {
		return false
	}
	return deadline.Before(now)
}
