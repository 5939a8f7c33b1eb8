package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/vthumb/internal/i18n"
)

var (
	dlNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dlDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dlErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dlDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// downloadState is shared between the download goroutine and the TUI
type downloadState struct {
	mu      sync.RWMutex
	written int64
	total   int64
	done    bool
	err     error
	result  Result
}

func (s *downloadState) setProgress(written, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = written
	s.total = total
}

func (s *downloadState) finish(res Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.err = err
	s.done = true
}

func (s *downloadState) get() (written, total int64, done bool, err error, res Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.written, s.total, s.done, s.err, s.result
}

type downloadTickMsg time.Time

type downloadModel struct {
	bar   progress.Model
	t     *i18n.Translations
	name  string
	state *downloadState
}

func downloadTickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return downloadTickMsg(t)
	})
}

func (m downloadModel) Init() tea.Cmd {
	return downloadTickCmd()
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-20, 60)
		return m, nil

	case downloadTickMsg:
		_, _, done, _, _ := m.state.get()
		if done {
			return m, tea.Quit
		}
		return m, downloadTickCmd()
	}

	return m, nil
}

func (m downloadModel) View() string {
	written, total, done, err, res := m.state.get()

	if err != nil {
		return fmt.Sprintf("\n  %s %s: %v\n\n", dlErrStyle.Render("✗"), m.t.Errors.DownloadFailed, err)
	}

	if done {
		if res.OpenedInBrowser {
			return fmt.Sprintf("\n  %s %s: %s\n\n", dlDoneStyle.Render("↗"), m.t.Notice.OpenedInBrowser, res.URL)
		}
		return fmt.Sprintf("\n  %s %s  %s %s\n\n",
			dlDoneStyle.Render("✓"),
			m.t.Notice.DownloadDone,
			dlNameStyle.Render(res.Name),
			dlDimStyle.Render("("+FormatBytes(res.Size)+")"),
		)
	}

	percent := 0.0
	size := FormatBytes(written)
	if total > 0 {
		percent = float64(written) / float64(total)
		size += " / " + FormatBytes(total)
	}

	return fmt.Sprintf("\n  %s %s\n  %s %s\n\n",
		m.t.Notice.Preparing,
		dlNameStyle.Render(m.name),
		m.bar.ViewAs(percent),
		dlDimStyle.Render(size),
	)
}

// RunDownloadTUI downloads url into sink with a progress bar
func RunDownloadTUI(ctx context.Context, d *Downloader, url string, sink Sink, name string) (Result, error) {
	state := &downloadState{total: -1}

	go func() {
		res, err := d.Download(ctx, url, sink, name, state.setProgress)
		state.finish(res, err)
	}()

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	model := downloadModel{
		bar:   bar,
		t:     i18n.T(d.lang),
		name:  name,
		state: state,
	}
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return Result{}, err
	}

	_, _, done, err, res := state.get()
	if err != nil {
		return res, err
	}
	if !done {
		return res, fmt.Errorf("download cancelled")
	}
	return res, nil
}
