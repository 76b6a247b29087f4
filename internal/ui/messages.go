package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/view"
)

// Client is the part of the service the view talks to
type Client interface {
	FindBug(ctx context.Context, language bugapi.Language, code string) (*bugapi.Report, error)
	SampleCases(ctx context.Context) ([]bugapi.Report, error)
}

// Message types delivered back to the model when a request settles
type findBugSettledMsg struct {
	generation uint64
	report     *bugapi.Report
	err        error
}

type samplesSettledMsg struct {
	generation uint64
	cases      []bugapi.Report
	err        error
}

// findBugCmd issues the request described by ticket
func findBugCmd(ctx context.Context, client Client, ticket view.Ticket) tea.Cmd {
	return func() tea.Msg {
		report, err := client.FindBug(ctx, ticket.Language, ticket.Code)
		return findBugSettledMsg{
			generation: ticket.Generation,
			report:     report,
			err:        err,
		}
	}
}

// fetchSamplesCmd issues the sample fetch described by ticket
func fetchSamplesCmd(ctx context.Context, client Client, ticket view.SampleTicket) tea.Cmd {
	return func() tea.Msg {
		cases, err := client.SampleCases(ctx)
		return samplesSettledMsg{
			generation: ticket.Generation,
			cases:      cases,
			err:        err,
		}
	}
}
