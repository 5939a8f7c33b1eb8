package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/webdav"
)

// readBatchFile returns the non-empty, non-comment lines of filename
func readBatchFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	urls, err := readLines(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs found in file")
	}
	return urls, nil
}

// readInput returns the first URL line of r, or "" when there is none
func readInput(r io.Reader) (string, error) {
	lines, err := readLines(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// runBatch reads URLs from a file and processes each one
func runBatch(ctx context.Context, filename string) error {
	urls, err := readBatchFile(filename)
	if err != nil {
		return err
	}

	cfg := config.LoadOrDefault()
	t := i18n.T(cfg.Language)

	// A single local file name would be overwritten by every video
	out := output
	if _, _, remote := webdav.ParseRemote(out); !remote {
		out = ""
	}

	if jsonOut {
		return runBatchJSON(ctx, cfg, urls, out)
	}

	fmt.Printf("Found %d URL(s)\n\n", len(urls))

	var succeeded, failed int
	var failedURLs []string

	for i, url := range urls {
		fmt.Printf("[%d/%d] %s\n", i+1, len(urls), truncateURL(url, 60))

		if err := processBatchItem(ctx, cfg, url, out); err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
			failed++
			failedURLs = append(failedURLs, url)
		} else {
			succeeded++
		}
		fmt.Println()

		if ctx.Err() != nil {
			break
		}
	}

	// Print summary
	fmt.Println("----------------------------------------")
	fmt.Printf("Completed: %d/%d", succeeded, len(urls))
	if failed > 0 {
		fmt.Printf(", Failed: %d", failed)
	}
	fmt.Println()

	// List failed URLs if any
	if len(failedURLs) > 0 {
		fmt.Printf("\n%s:\n", t.Errors.ExtractionFailed)
		for _, url := range failedURLs {
			fmt.Printf("  - %s\n", url)
		}
	}

	return nil
}

func processBatchItem(ctx context.Context, cfg *config.Config, url, out string) error {
	res, err := resolve(ctx, cfg, url, false)
	if err != nil {
		return err
	}
	printCandidates(res, i18n.T(cfg.Language))

	if !doDownload && !doCopy && !doOpen {
		return nil
	}
	return batchActions(ctx, cfg, res, out)
}

// batchActions runs the requested actions on one item's selected candidate.
// Downloads are prefixed with the video ID so items do not overwrite each other.
func batchActions(ctx context.Context, cfg *config.Config, res *thumbResult, out string) error {
	selected, err := selectCandidate(res.Visible, resolution)
	if err != nil {
		return err
	}
	return runActions(ctx, cfg, selected, out, res.VideoID.String()+"_")
}

// runBatchJSON prints one JSON array covering every URL, failures included.
// Requested actions run per item; their first failure lands in the item's error.
func runBatchJSON(ctx context.Context, cfg *config.Config, urls []string, out string) error {
	type item struct {
		*thumbResult
		Input string `json:"input"`
		Error string `json:"error,omitempty"`
	}

	items := make([]item, 0, len(urls))
	for _, url := range urls {
		res, err := resolve(ctx, cfg, url, false)
		if err != nil {
			items = append(items, item{Input: url, Error: err.Error()})
			continue
		}
		it := item{thumbResult: res, Input: url}
		if doDownload || doCopy || doOpen {
			if err := batchActions(ctx, cfg, res, out); err != nil {
				it.Error = err.Error()
			}
		}
		items = append(items, it)

		if ctx.Err() != nil {
			break
		}
	}
	return printJSON(items)
}

// truncateURL shortens a URL for display
func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
