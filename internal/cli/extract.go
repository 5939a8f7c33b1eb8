package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/session"
	"github.com/guiyumin/vthumb/internal/thumbnail"
)

var (
	extractInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	extractDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// probeState collects outcomes as the probes finish
type probeState struct {
	mu       sync.RWMutex
	done     bool
	total    int
	outcomes []thumbnail.Outcome
}

func (s *probeState) add(o thumbnail.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

func (s *probeState) setDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
}

func (s *probeState) get() (bool, []thumbnail.Outcome) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]thumbnail.Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return s.done, out
}

type extractTickMsg time.Time

type extractModel struct {
	spinner spinner.Model
	t       *i18n.Translations
	videoID string
	state   *probeState
}

func newExtractModel(videoID, lang string, state *probeState) extractModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return extractModel{
		spinner: s,
		t:       i18n.T(lang),
		videoID: videoID,
		state:   state,
	}
}

func extractTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return extractTickMsg(t)
	})
}

func (m extractModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, extractTickCmd())
}

func (m extractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractTickMsg:
		done, _ := m.state.get()
		if done {
			return m, tea.Quit
		}
		return m, extractTickCmd()
	}

	return m, nil
}

func (m extractModel) View() string {
	done, outcomes := m.state.get()

	if done {
		valid := 0
		for _, o := range outcomes {
			if o.Verdict != thumbnail.Invalid {
				valid++
			}
		}
		return fmt.Sprintf("\n  %s %s  ID: %s  |  %d/%d\n\n",
			extractDoneStyle.Render("✓"),
			m.t.Thumbs.Retrieved,
			extractInfoStyle.Render(m.videoID),
			valid,
			m.state.total,
		)
	}

	return fmt.Sprintf("\n  %s %s: %s (%d/%d)\n\n",
		m.spinner.View(),
		m.t.Thumbs.Probing,
		extractInfoStyle.Render(m.videoID),
		len(outcomes),
		m.state.total,
	)
}

// runProbeWithSpinner probes the session's candidates behind a spinner TUI
func runProbeWithSpinner(ctx context.Context, prober *thumbnail.Prober, s session.State, lang string) ([]thumbnail.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	candidates := s.Candidates()
	state := &probeState{total: len(candidates)}

	go func() {
		for o := range prober.ProbeAll(ctx, candidates) {
			state.add(o)
		}
		state.setDone()
	}()

	model := newExtractModel(s.VideoID().String(), lang, state)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return nil, err
	}

	done, outcomes := state.get()
	if !done {
		return nil, fmt.Errorf("extraction cancelled")
	}
	return outcomes, nil
}
