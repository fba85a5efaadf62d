package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatusAliases(t *testing.T) {
	cases := map[string]TicketStatus{
		"new":         TicketStatusNew,
		" Pending ":   TicketStatusPending,
		"in progress": TicketStatusInProgress,
		"IN_PROGRESS": TicketStatusInProgress,
		"resolved":    TicketStatusDone,
		"Done":        TicketStatusDone,
		"closed":      TicketStatusClosed,
		"overdue":     TicketStatusOverdue,
	}
	for raw, want := range cases {
		got, err := ParseTicketStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseTicketStatusRejectsPriorityWords(t *testing.T) {
	for _, raw := range []string{"critical", "urgent", "high", ""} {
		_, err := ParseTicketStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseTicketPriority(t *testing.T) {
	got, err := ParseTicketPriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, TicketPriorityCritical, got)

	got, err = ParseTicketPriority(" LOW ")
	require.NoError(t, err)
	assert.Equal(t, TicketPriorityLow, got)

	_, err = ParseTicketPriority("whenever")
	assert.Error(t, err)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, TicketStatusDone.Terminal())
	assert.True(t, TicketStatusClosed.Terminal())
	assert.True(t, TicketStatusOverdue.Terminal())
	assert.False(t, TicketStatusNew.Terminal())
	assert.False(t, TicketStatusPending.Terminal())
	assert.False(t, TicketStatusInProgress.Terminal())
}

func TestDeadlineParsing(t *testing.T) {
	ticket := &Ticket{EndDate: "2026-03-01", EndTime: "14:30"}
	deadline, ok := ticket.Deadline()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 14, 30, 0, 0, time.Local), deadline)

	ticket = &Ticket{EndDate: "2026-03-01", EndTime: "14:30:45"}
	deadline, ok = ticket.Deadline()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 14, 30, 45, 0, time.Local), deadline)

	ticket = &Ticket{EndDate: "2026-03-01"}
	deadline, ok = ticket.Deadline()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), deadline)
}

func TestDeadlineUnusableWindows(t *testing.T) {
	for _, ticket := range []*Ticket{
		{},
		{EndDate: "  "},
		{EndDate: "next tuesday"},
		{EndDate: "2026-03-01", EndTime: "half past two"},
	} {
		_, ok := ticket.Deadline()
		assert.False(t, ok, "%+v", ticket)
	}
}

func TestOverdueAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)

	past := &Ticket{Status: TicketStatusNew, EndDate: "2026-03-01", EndTime: "10:00"}
	assert.True(t, past.OverdueAt(now))

	future := &Ticket{Status: TicketStatusNew, EndDate: "2026-03-05"}
	assert.False(t, future.OverdueAt(now))

	done := &Ticket{Status: TicketStatusDone, EndDate: "2026-03-01"}
	assert.False(t, done.OverdueAt(now))

	noWindow := &Ticket{Status: TicketStatusPending}
	assert.False(t, noWindow.OverdueAt(now))
}
