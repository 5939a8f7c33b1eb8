package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/session"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/toast"
)

// forcedVariant wraps a theme and forces a specific variant
type forcedVariant struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (f *forcedVariant) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return f.Theme.Color(name, f.variant)
}

// ui holds the window's widgets and the session they render.
// Fields are only touched on the fyne goroutine.
type ui struct {
	app    fyne.App
	win    fyne.Window
	t      *i18n.Translations
	cfg    *config.Config
	prober *thumbnail.Prober
	dl     *downloader.Downloader

	state  session.State
	cancel context.CancelFunc
	cards  map[thumbnail.Resolution]*card

	input   *widget.Entry
	status  *widget.Label
	notices *widget.Label
	grid    *fyne.Container
	toasts  toast.Queue
}

type card struct {
	c       thumbnail.Candidate
	box     *fyne.Container
	image   *fyne.Container
	caption *widget.Label
}

func main() {
	a := app.New()
	isDark := true
	a.Settings().SetTheme(&forcedVariant{Theme: theme.DefaultTheme(), variant: theme.VariantDark})
	w := a.NewWindow("vthumb")

	cfg := config.LoadOrDefault()
	u := &ui{
		app: a,
		win: w,
		t:   i18n.T(cfg.Language),
		cfg: cfg,
		prober: thumbnail.NewProber(thumbnail.ProberOptions{
			Timeout:   cfg.ProbeTimeout,
			UserAgent: cfg.UserAgent,
			Proxy:     cfg.Proxy,
			Detector:  thumbnail.Detector{PlaceholderWidth: cfg.PlaceholderWidth},
		}),
		dl: downloader.New(downloader.Options{
			Timeout:   cfg.ProbeTimeout,
			UserAgent: cfg.UserAgent,
			Proxy:     cfg.Proxy,
			Lang:      cfg.Language,
		}),
		state:  session.New(extractor.Extractor{AllowBareID: true}),
		toasts: toast.NewQueue(toast.DefaultTTL),
	}

	// Header
	title := widget.NewLabel("vthumb")
	title.TextStyle = fyne.TextStyle{Bold: true}

	themeBtn := widget.NewButton("☀", nil)
	themeBtn.OnTapped = func() {
		isDark = !isDark
		if isDark {
			a.Settings().SetTheme(&forcedVariant{Theme: theme.DefaultTheme(), variant: theme.VariantDark})
			themeBtn.SetText("☀")
		} else {
			a.Settings().SetTheme(&forcedVariant{Theme: theme.DefaultTheme(), variant: theme.VariantLight})
			themeBtn.SetText("🌙")
		}
	}

	headerLeft := container.NewHBox(widget.NewIcon(theme.MediaVideoIcon()), title)
	header := container.NewBorder(nil, nil, headerLeft, themeBtn)

	// URL input
	u.input = widget.NewEntry()
	u.input.SetPlaceHolder(u.t.TUI.Placeholder)
	u.input.OnSubmitted = func(string) { u.extract() }

	pasteBtn := widget.NewButtonWithIcon("", theme.ContentPasteIcon(), u.paste)
	extractBtn := widget.NewButton("Extract", u.extract)
	inputRow := container.NewBorder(nil, nil, nil, container.NewHBox(pasteBtn, extractBtn), u.input)

	u.status = widget.NewLabel("")
	u.notices = widget.NewLabel("")
	u.grid = container.NewGridWrap(fyne.NewSize(340, 260))

	content := container.NewBorder(
		container.NewVBox(header, widget.NewSeparator(), container.NewPadded(inputRow), u.status),
		u.notices,
		nil, nil,
		container.NewVScroll(u.grid),
	)

	w.SetContent(container.New(layout.NewPaddedLayout(), content))
	w.Resize(fyne.NewSize(900, 600))
	w.ShowAndRun()
}

func (u *ui) paste() {
	text := strings.TrimSpace(u.win.Clipboard().Content())
	if text == "" {
		u.notify(u.t.Errors.ClipboardEmpty, toast.Error)
		return
	}
	u.input.SetText(text)
	u.notify(u.t.Notice.Pasted, toast.Info)
}

// notify shows a notice and schedules its removal
func (u *ui) notify(msg string, kind toast.Kind) {
	var t toast.Toast
	u.toasts, t = u.toasts.Push(msg, kind, time.Now())
	u.renderNotices()

	time.AfterFunc(u.toasts.TTL(), func() {
		fyne.Do(func() {
			u.toasts = u.toasts.Remove(t.ID)
			u.renderNotices()
		})
	})
}

func (u *ui) renderNotices() {
	var buf bytes.Buffer
	for i, t := range u.toasts.Active() {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(t.Message)
	}
	u.notices.SetText(buf.String())
}

func (u *ui) extract() {
	next, err := u.state.Submit(u.input.Text)
	if errors.Is(err, session.ErrInputRequired) {
		u.notify(u.t.Errors.InputRequired, toast.Error)
		return
	}

	if u.cancel != nil {
		u.cancel()
	}
	u.state = next
	u.grid.RemoveAll()
	u.cards = map[thumbnail.Resolution]*card{}

	if next.Phase() != session.Found {
		u.status.SetText(u.t.Errors.ExtractionFailed)
		u.notify(u.t.Errors.ExtractionFailed, toast.Error)
		return
	}

	u.status.SetText(fmt.Sprintf("ID: %s", next.VideoID()))
	u.notify(u.t.Notice.Extracted, toast.Success)

	for i, c := range next.Visible() {
		k := u.newCard(c, i == 0)
		u.cards[c.Resolution] = k
		u.grid.Add(k.box)
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	gen := next.Generation()
	candidates := next.Candidates()

	go func() {
		for o := range u.prober.ProbeAll(ctx, candidates) {
			fyne.Do(func() { u.report(gen, o) })
		}
	}()
}

func (u *ui) newCard(c thumbnail.Candidate, master bool) *card {
	label := c.Label
	if master {
		label = u.t.Thumbs.Master + " · " + label
	}
	heading := widget.NewLabel(label)
	heading.TextStyle = fyne.TextStyle{Bold: master}

	k := &card{
		c:       c,
		image:   container.NewStack(widget.NewProgressBarInfinite()),
		caption: widget.NewLabel(c.Size() + " · " + u.t.Thumbs.Pending),
	}

	download := widget.NewButtonWithIcon("", theme.DownloadIcon(), func() { u.download(c) })
	copyURL := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		u.win.Clipboard().SetContent(c.URL)
		u.notify(u.t.Notice.Copied, toast.Success)
	})
	open := widget.NewButtonWithIcon("", theme.ComputerIcon(), func() {
		if parsed, err := url.Parse(c.URL); err == nil {
			_ = u.app.OpenURL(parsed)
		}
	})

	k.box = container.NewBorder(heading, container.NewBorder(nil, nil, k.caption, container.NewHBox(download, copyURL, open)), nil, nil, k.image)
	return k
}

// report applies one load outcome if it belongs to the current session
func (u *ui) report(gen uint64, o thumbnail.Outcome) {
	if gen != u.state.Generation() {
		return
	}
	u.state = u.state.Report(gen, o)

	k, ok := u.cards[o.Resolution]
	if !ok {
		return
	}
	switch o.Verdict {
	case thumbnail.Invalid:
		u.grid.Remove(k.box)
		delete(u.cards, o.Resolution)
		if len(u.state.Visible()) == 0 {
			u.status.SetText(u.t.Thumbs.NoneValid)
		}
	case thumbnail.Valid:
		img := canvas.NewImageFromReader(bytes.NewReader(o.Data), k.c.Filename())
		img.FillMode = canvas.ImageFillContain
		k.image.Objects = []fyne.CanvasObject{img}
		k.image.Refresh()
		k.caption.SetText(fmt.Sprintf("%d × %d", o.Width, o.Height))
	default:
		k.image.Objects = []fyne.CanvasObject{widget.NewIcon(theme.BrokenImageIcon())}
		k.image.Refresh()
	}
}

func (u *ui) download(c thumbnail.Candidate) {
	u.notify(u.t.Notice.Preparing, toast.Info)
	sink := downloader.LocalSink{Dir: u.cfg.OutputDir}
	name := c.Filename()

	go func() {
		res, err := u.dl.Download(context.Background(), c.URL, sink, name, nil)
		fyne.Do(func() {
			switch {
			case err != nil:
				u.notify(fmt.Sprintf("%s: %v", u.t.Errors.DownloadFailed, err), toast.Error)
			case res.OpenedInBrowser:
				u.notify(u.t.Notice.OpenedInBrowser, toast.Info)
			default:
				u.notify(fmt.Sprintf("%s: %s", u.t.Notice.DownloadDone, name), toast.Success)
			}
		})
	}()
}
