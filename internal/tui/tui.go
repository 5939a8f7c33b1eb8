package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/vthumb/internal/clipboard"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/session"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/toast"
)

// DefaultExtractDelay keeps the extracting state on screen long enough to see
const DefaultExtractDelay = 400 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	masterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")).Padding(0, 1)
	validStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	toastStyles = map[toast.Kind]lipgloss.Style{
		toast.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		toast.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		toast.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	toastIcons = map[toast.Kind]string{toast.Info: "ℹ", toast.Success: "✓", toast.Error: "✗"}
)

// Deps are the collaborators the interactive session acts through
type Deps struct {
	Prober     *thumbnail.Prober
	Downloader *downloader.Downloader
	Clipboard  *clipboard.Clipboard
	// Sink picks where a candidate is downloaded to
	Sink func(c thumbnail.Candidate) (downloader.Sink, string, error)
	// Open shows a URL in the browser
	Open         func(url string) error
	Lang         string
	ExtractDelay time.Duration
}

type extractDoneMsg struct{ generation uint64 }

type probeMsg struct {
	generation uint64
	outcome    thumbnail.Outcome
}

type pasteMsg struct {
	text string
	err  error
}

type actionMsg struct {
	kind toast.Kind
	text string
}

type expireMsg struct{ id int }

// Model is the interactive extraction screen
type Model struct {
	ctx     context.Context
	deps    Deps
	t       *i18n.Translations
	input   textinput.Model
	spinner spinner.Model
	state   session.State
	loaded  map[thumbnail.Resolution]thumbnail.Outcome
	cursor  int
	toasts  toast.Queue
	now     func() time.Time
	start   tea.Cmd
}

// New creates the model. initial, when set, is submitted on start.
func New(ctx context.Context, deps Deps, initial string) Model {
	t := i18n.T(deps.Lang)

	ti := textinput.New()
	ti.Placeholder = t.TUI.Placeholder
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Prompt = "  > "
	ti.PromptStyle = cursorStyle
	ti.SetValue(initial)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	m := Model{
		ctx:     ctx,
		deps:    deps,
		t:       t,
		input:   ti,
		spinner: sp,
		state:   session.New(extractor.Extractor{AllowBareID: true}),
		loaded:  map[thumbnail.Resolution]thumbnail.Outcome{},
		toasts:  toast.NewQueue(toast.DefaultTTL),
		now:     time.Now,
	}
	if strings.TrimSpace(initial) != "" {
		m, m.start = m.submit()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case extractDoneMsg:
		if msg.generation != m.state.Generation() {
			return m, nil
		}
		m.state = m.state.Finish()
		if m.state.Phase() != session.Found {
			return m.pushToast(m.t.Errors.ExtractionFailed, toast.Error)
		}
		m.input.Blur()
		m, cmd := m.pushToast(m.t.Notice.Extracted, toast.Success)
		return m, tea.Batch(cmd, m.probeCmds(), m.spinner.Tick)

	case probeMsg:
		if msg.generation != m.state.Generation() {
			return m, nil
		}
		m.loaded[msg.outcome.Resolution] = msg.outcome
		m.state = m.state.Report(msg.generation, msg.outcome)
		m.clampCursor()
		return m, nil

	case pasteMsg:
		if msg.err != nil {
			return m.pushToast(m.t.Errors.AccessDenied, toast.Error)
		}
		if msg.text == "" {
			return m.pushToast(m.t.Errors.ClipboardEmpty, toast.Error)
		}
		m.input.SetValue(msg.text)
		m, cmd := m.pushToast(m.t.Notice.Pasted, toast.Info)
		m, submit := m.submit()
		return m, tea.Batch(cmd, submit)

	case actionMsg:
		return m.pushToast(msg.text, msg.kind)

	case expireMsg:
		m.toasts = m.toasts.Remove(msg.id)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "ctrl+v", "ctrl+p":
		return m, m.pasteCmd()
	case "esc":
		m.input.Reset()
		m.input.Focus()
		m.state = m.state.Reset()
		m.loaded = map[thumbnail.Resolution]thumbnail.Outcome{}
		m.cursor = 0
		return m, textinput.Blink
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Visible())-1 {
			m.cursor++
		}
	case "/", "i":
		m.input.Focus()
		return m, textinput.Blink
	case "d":
		c, ok := m.selected()
		if !ok {
			return m.pushToast(m.t.Errors.NoCandidates, toast.Error)
		}
		m, cmd := m.pushToast(m.t.Notice.Preparing, toast.Info)
		return m, tea.Batch(cmd, m.downloadCmd(c))
	case "c":
		return m.act(m.copyCmd)
	case "o":
		return m.act(m.openCmd)
	}
	return m, nil
}

// submit starts a new session for the input's current text
func (m Model) submit() (Model, tea.Cmd) {
	next, err := m.state.Begin(m.input.Value())
	if errors.Is(err, session.ErrInputRequired) {
		return m.pushToast(m.t.Errors.InputRequired, toast.Error)
	}

	m.state = next
	m.loaded = map[thumbnail.Resolution]thumbnail.Outcome{}
	m.cursor = 0

	gen := next.Generation()
	done := func(time.Time) tea.Msg { return extractDoneMsg{generation: gen} }
	var cmd tea.Cmd
	if m.deps.ExtractDelay > 0 {
		cmd = tea.Tick(m.deps.ExtractDelay, done)
	} else {
		cmd = func() tea.Msg { return done(time.Time{}) }
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// probeCmds loads every candidate independently; each result carries the
// generation it was started for.
func (m Model) probeCmds() tea.Cmd {
	if m.deps.Prober == nil {
		return nil
	}
	gen := m.state.Generation()
	var cmds []tea.Cmd
	for _, c := range m.state.Candidates() {
		cmds = append(cmds, func() tea.Msg {
			return probeMsg{generation: gen, outcome: m.deps.Prober.Probe(m.ctx, c)}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) pushToast(text string, kind toast.Kind) (Model, tea.Cmd) {
	var t toast.Toast
	m.toasts, t = m.toasts.Push(text, kind, m.now())
	id := t.ID
	return m, tea.Tick(m.toasts.TTL(), func(time.Time) tea.Msg { return expireMsg{id: id} })
}

// selected returns the candidate under the cursor
func (m Model) selected() (thumbnail.Candidate, bool) {
	visible := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return thumbnail.Candidate{}, false
	}
	return visible[m.cursor], true
}

func (m Model) act(fn func(thumbnail.Candidate) tea.Cmd) (tea.Model, tea.Cmd) {
	c, ok := m.selected()
	if !ok {
		return m.pushToast(m.t.Errors.NoCandidates, toast.Error)
	}
	return m, fn(c)
}

func (m Model) pasteCmd() tea.Cmd {
	clip := m.deps.Clipboard
	return func() tea.Msg {
		if clip == nil {
			return pasteMsg{err: clipboard.ErrAccessDenied}
		}
		text, err := clip.Read()
		return pasteMsg{text: text, err: err}
	}
}

func (m Model) copyCmd(c thumbnail.Candidate) tea.Cmd {
	clip, t := m.deps.Clipboard, m.t
	return func() tea.Msg {
		if clip == nil {
			return actionMsg{kind: toast.Error, text: t.Errors.AccessDenied}
		}
		if err := clip.Write(c.URL); err != nil {
			return actionMsg{kind: toast.Error, text: t.Errors.AccessDenied}
		}
		return actionMsg{kind: toast.Success, text: t.Notice.Copied}
	}
}

func (m Model) openCmd(c thumbnail.Candidate) tea.Cmd {
	open, t := m.deps.Open, m.t
	return func() tea.Msg {
		if open == nil {
			return actionMsg{kind: toast.Error, text: "no browser available"}
		}
		if err := open(c.URL); err != nil {
			return actionMsg{kind: toast.Error, text: err.Error()}
		}
		return actionMsg{kind: toast.Info, text: t.Notice.OpenedInBrowser}
	}
}

func (m Model) downloadCmd(c thumbnail.Candidate) tea.Cmd {
	if m.deps.Downloader == nil || m.deps.Sink == nil {
		return nil
	}
	ctx, dl, sinkFor, t := m.ctx, m.deps.Downloader, m.deps.Sink, m.t
	return func() tea.Msg {
		sink, name, err := sinkFor(c)
		if err != nil {
			return actionMsg{kind: toast.Error, text: fmt.Sprintf("%s: %v", t.Errors.DownloadFailed, err)}
		}
		res, err := dl.Download(ctx, c.URL, sink, name, nil)
		switch {
		case err != nil:
			return actionMsg{kind: toast.Error, text: fmt.Sprintf("%s: %v", t.Errors.DownloadFailed, err)}
		case res.OpenedInBrowser:
			return actionMsg{kind: toast.Info, text: t.Notice.OpenedInBrowser}
		default:
			return actionMsg{kind: toast.Success, text: fmt.Sprintf("%s: %s", t.Notice.DownloadDone, name)}
		}
	}
}

func (m *Model) clampCursor() {
	n := len(m.state.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// busy reports whether the spinner has something to show
func (m Model) busy() bool {
	switch m.state.Phase() {
	case session.Extracting:
		return true
	case session.Found:
		for _, c := range m.state.Visible() {
			if _, ok := m.loaded[c.Resolution]; !ok {
				return true
			}
		}
	}
	return false
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  ▶ vthumb"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.state.Phase() {
	case session.Extracting:
		fmt.Fprintf(&b, "  %s %s...\n", m.spinner.View(), m.t.TUI.Loading)

	case session.NotFound:
		b.WriteString(errorStyle.Render("  ✗ " + m.t.Errors.ExtractionFailed))
		b.WriteString("\n")

	case session.Found:
		b.WriteString(m.viewCandidates())
	}

	if active := m.toasts.Active(); len(active) > 0 {
		b.WriteString("\n")
		for _, t := range active {
			style := toastStyles[t.Kind]
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", toastIcons[t.Kind], t.Message)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  " + m.t.TUI.Help))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewCandidates() string {
	var b strings.Builder

	fmt.Fprintf(&b, "  ID: %s\n\n", idStyle.Render(m.state.VideoID().String()))

	visible := m.state.Visible()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("  " + m.t.Thumbs.NoneValid))
		b.WriteString("\n")
		return b.String()
	}

	for i, c := range visible {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}

		status := m.spinner.View() + " " + dimStyle.Render(m.t.Thumbs.Pending)
		if o, ok := m.loaded[c.Resolution]; ok {
			if o.Verdict == thumbnail.Valid {
				status = validStyle.Render(fmt.Sprintf("✓ %d × %d", o.Width, o.Height))
			} else {
				status = dimStyle.Render("? " + m.t.Thumbs.Pending)
			}
		}

		line := fmt.Sprintf("  %s%-20s %-12s %s", pointer, labelStyle.Render(c.Label), dimStyle.Render(c.Size()), status)
		if i == 0 {
			line += " " + masterStyle.Render(m.t.Thumbs.Master)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the full-screen interactive session
func Run(ctx context.Context, deps Deps, initial string) error {
	p := tea.NewProgram(New(ctx, deps, initial), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
