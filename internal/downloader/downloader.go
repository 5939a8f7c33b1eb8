package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guiyumin/vthumb/internal/browser"
)

// ErrFetchFailed is returned when the image could not be fetched
var ErrFetchFailed = errors.New("download fetch failed")

// Sink is where downloaded files are written
type Sink interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// LocalSink writes files under Dir
type LocalSink struct {
	Dir string
}

// Create opens Dir/name for writing, creating parent directories
func (s LocalSink) Create(_ context.Context, name string) (io.WriteCloser, error) {
	path := name
	if !filepath.IsAbs(name) && s.Dir != "" {
		path = filepath.Join(s.Dir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return os.Create(path)
}

// ProgressFunc receives bytes written so far and the total (-1 if unknown)
type ProgressFunc func(written, total int64)

// Result describes a finished download
type Result struct {
	URL             string
	Name            string
	Size            int64
	OpenedInBrowser bool
}

// Options configures the HTTP client
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	Lang      string
	Transport http.RoundTripper
}

// Downloader handles thumbnail downloads
type Downloader struct {
	client *resty.Client
	lang   string
	open   func(url string) error
}

// New creates a new Downloader
func New(opts Options) *Downloader {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	return &Downloader{
		client: client,
		lang:   opts.Lang,
		open:   browser.Open,
	}
}

// Fetch returns the body of url
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, resp.Status())
	}
	return resp.Body(), nil
}

// Save streams url into sink under name
func (d *Downloader) Save(ctx context.Context, url string, sink Sink, name string, progress ProgressFunc) (Result, error) {
	res := Result{URL: url, Name: name}

	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return res, fmt.Errorf("%w: %s", ErrFetchFailed, resp.Status())
	}

	out, err := sink.Create(ctx, name)
	if err != nil {
		return res, fmt.Errorf("failed to create %s: %w", name, err)
	}

	pw := &progressWriter{w: out, total: resp.RawResponse.ContentLength, fn: progress}
	n, copyErr := io.Copy(pw, body)
	closeErr := out.Close()
	res.Size = n

	if copyErr != nil {
		return res, fmt.Errorf("%w: %v", ErrFetchFailed, copyErr)
	}
	if closeErr != nil {
		return res, fmt.Errorf("failed to write %s: %w", name, closeErr)
	}
	return res, nil
}

// Download saves url, opening it in the browser instead when the fetch fails
func (d *Downloader) Download(ctx context.Context, url string, sink Sink, name string, progress ProgressFunc) (Result, error) {
	res, err := d.Save(ctx, url, sink, name, progress)
	if err == nil || !errors.Is(err, ErrFetchFailed) {
		return res, err
	}

	if openErr := d.open(url); openErr != nil {
		return res, fmt.Errorf("%w; %w", err, openErr)
	}
	res.OpenedInBrowser = true
	return res, nil
}

type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	fn      ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.fn != nil {
		p.fn(p.written, p.total)
	}
	return n, err
}

// FormatBytes renders a byte count for display, e.g. "12.3 KB"
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
