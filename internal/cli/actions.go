package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/guiyumin/vthumb/internal/browser"
	"github.com/guiyumin/vthumb/internal/clipboard"
	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/webdav"
	"go.uber.org/zap"
)

// resolveSink turns --output/--output-dir into a sink and a file name.
// "remote:/dir" targets a configured WebDAV remote; anything else is local.
// A non-empty prefix is prepended to the default name so batch downloads do not collide.
func resolveSink(cfg *config.Config, out, dir, prefix string, c *thumbnail.Candidate) (downloader.Sink, string, error) {
	name := prefix + c.Filename()

	if remote, remotePath, ok := webdav.ParseRemote(out); ok {
		server := cfg.GetWebDAVServer(remote)
		if server == nil {
			return nil, "", fmt.Errorf("WebDAV server '%s' not found. Add it with: vthumb config webdav add %s", remote, remote)
		}
		sink, err := webdav.NewSink(*server, remotePath)
		if err != nil {
			return nil, "", err
		}
		return sink, name, nil
	}

	if dir == "" {
		dir = cfg.OutputDir
	}
	if out != "" {
		if filepath.IsAbs(out) {
			return downloader.LocalSink{}, out, nil
		}
		name = out
	}
	return downloader.LocalSink{Dir: dir}, name, nil
}

func newDownloader(cfg *config.Config) *downloader.Downloader {
	return downloader.New(downloader.Options{
		Timeout:   cfg.ProbeTimeout,
		UserAgent: cfg.UserAgent,
		Proxy:     cfg.Proxy,
		Lang:      cfg.Language,
		Transport: httpTransport,
	})
}

// runActions performs the requested --copy/--open/--download actions on c.
// Each action is independent: a failure is reported and the rest still run.
// With --json, notices go to stderr so stdout stays parseable.
func runActions(ctx context.Context, cfg *config.Config, c *thumbnail.Candidate, out, prefix string) error {
	t := i18n.T(cfg.Language)
	green := color.New(color.FgGreen)
	notices := color.Output
	if jsonOut {
		notices = color.Error
	}
	var firstErr error

	fail := func(err error) {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if doCopy {
		if err := clipboard.New().Write(c.URL); err != nil {
			fail(fmt.Errorf("%s: %w", t.Errors.AccessDenied, err))
		} else {
			green.Fprintf(notices, "%s: %s\n", t.Notice.Copied, c.URL)
		}
	}

	if doOpen {
		if err := browser.Open(c.URL); err != nil {
			fail(err)
		} else {
			green.Fprintf(notices, "%s: %s\n", t.Notice.OpenedInBrowser, c.URL)
		}
	}

	if doDownload {
		if err := downloadCandidate(ctx, cfg, c, out, prefix); err != nil {
			fail(err)
		}
	}

	return firstErr
}

func downloadCandidate(ctx context.Context, cfg *config.Config, c *thumbnail.Candidate, out, prefix string) error {
	t := i18n.T(cfg.Language)

	sink, name, err := resolveSink(cfg, out, outputDir, prefix, c)
	if err != nil {
		return err
	}

	dl := newDownloader(cfg)
	logger.Debug("downloading thumbnail", zap.String("url", c.URL), zap.String("name", name))

	if isInteractive() && !jsonOut {
		_, err := downloader.RunDownloadTUI(ctx, dl, c.URL, sink, name)
		return err
	}

	res, err := dl.Download(ctx, c.URL, sink, name, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Errors.DownloadFailed, err)
	}
	if res.OpenedInBrowser {
		fmt.Fprintf(os.Stderr, "%s: %s\n", t.Notice.OpenedInBrowser, res.URL)
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", t.Notice.DownloadDone, res.Name, downloader.FormatBytes(res.Size))
	return nil
}
