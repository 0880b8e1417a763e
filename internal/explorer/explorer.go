package explorer

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odatascope/odatascope/internal/fetch"
	"github.com/odatascope/odatascope/internal/store"
)

// Explorer runs the interactive terminal UI over a metadata store.
type Explorer struct {
	store   *store.Store
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// New creates an Explorer around an existing store.
func New(st *store.Store, logger *slog.Logger) *Explorer {
	return &Explorer{
		store:   st,
		fetcher: fetch.New(),
		logger:  logger,
	}
}

// Run starts the TUI. When source is non-empty the metadata document is
// fetched and loaded before the first keypress is handled.
func (e *Explorer) Run(ctx context.Context, source string) error {
	m := NewModel(e.store, e.fetcher, source)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
