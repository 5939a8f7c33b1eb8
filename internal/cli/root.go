package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/guiyumin/vthumb/internal/clipboard"
	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/i18n"
	"github.com/guiyumin/vthumb/internal/logging"
	"github.com/guiyumin/vthumb/internal/session"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	output     string
	outputDir  string
	resolution string
	batchFile  string
	paste      bool
	jsonOut    bool
	skipProbe  bool
	doDownload bool
	doCopy     bool
	doOpen     bool
	verbose    bool

	logger = zap.NewNop()

	// httpTransport, when set, carries every thumbnail request
	httpTransport http.RoundTripper
)

var rootCmd = &cobra.Command{
	Use:   "vthumb [url]",
	Short: "Find, check and download YouTube video thumbnails",
	Long: `Extract the video ID from a YouTube link and list every thumbnail
resolution that really exists for it. Sizes YouTube does not have for the
video (served as a 120x90 placeholder) are dropped.

Examples:
  vthumb https://www.youtube.com/watch?v=dQw4w9WgXcQ
  vthumb https://youtu.be/dQw4w9WgXcQ --download
  vthumb dQw4w9WgXcQ --res high --copy
  vthumb --paste --open
  echo https://youtu.be/dQw4w9WgXcQ | vthumb --json
  vthumb -f urls.txt --download --output-dir ./thumbs
  vthumb https://youtu.be/dQw4w9WgXcQ --download -o nas:/thumbs`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if batchFile != "" {
			if err := runBatch(cmd.Context(), batchFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		var input string
		if len(args) > 0 {
			input = args[0]
		}
		if input == "-" || (input == "" && !paste && !term.IsTerminal(int(os.Stdin.Fd()))) {
			text, err := readInput(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if text == "" && input == "" {
				cmd.Help()
				return
			}
			input = text
		}
		if input == "" && !paste {
			cmd.Help()
			return
		}

		if err := runThumbs(cmd.Context(), input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output file name, or remote:/dir for a WebDAV remote")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for downloads (default from config)")
	rootCmd.Flags().StringVarP(&resolution, "res", "r", "", "resolution to act on: maxres, high, medium, standard (default: best available)")
	rootCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read URLs from a file, one per line")
	rootCmd.Flags().BoolVar(&paste, "paste", false, "read the URL from the clipboard")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.Flags().BoolVar(&skipProbe, "all", false, "list every candidate without checking which exist")
	rootCmd.Flags().BoolVarP(&doDownload, "download", "d", false, "download the selected thumbnail")
	rootCmd.Flags().BoolVarP(&doCopy, "copy", "c", false, "copy the selected thumbnail URL to the clipboard")
	rootCmd.Flags().BoolVar(&doOpen, "open", false, "open the selected thumbnail in the browser")
}

// Execute runs the root command, cancelling its context on interrupt
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

// isInteractive reports whether stdout is a terminal, so TUI output can be used
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newProber(cfg *config.Config) *thumbnail.Prober {
	return thumbnail.NewProber(thumbnail.ProberOptions{
		Timeout:   cfg.ProbeTimeout,
		UserAgent: cfg.UserAgent,
		Proxy:     cfg.Proxy,
		Detector:  thumbnail.Detector{PlaceholderWidth: cfg.PlaceholderWidth},
		Transport: httpTransport,
	})
}

// thumbResult is one processed input
type thumbResult struct {
	Input    string                `json:"input"`
	VideoID  extractor.VideoID     `json:"video_id"`
	Visible  []thumbnail.Candidate `json:"thumbnails"`
	Invalid  []string              `json:"invalid"`
	Outcomes []thumbnail.Outcome   `json:"checks,omitempty"`
}

// resolve extracts, generates and (unless skipProbe) probes one input
func resolve(ctx context.Context, cfg *config.Config, input string, spinner bool) (*thumbResult, error) {
	t := i18n.T(cfg.Language)

	s, err := session.New(extractor.Extractor{AllowBareID: true}).Submit(input)
	if err != nil {
		if errors.Is(err, session.ErrInputRequired) {
			return nil, fmt.Errorf("%s", t.Errors.InputRequired)
		}
		return nil, fmt.Errorf("%s: %s", t.Errors.ExtractionFailed, input)
	}
	logger.Debug("extracted video id", zap.String("input", input), zap.String("video_id", s.VideoID().String()))

	var outcomes []thumbnail.Outcome
	if !skipProbe {
		prober := newProber(cfg)
		if spinner {
			outcomes, err = runProbeWithSpinner(ctx, prober, s, cfg.Language)
			if err != nil {
				return nil, err
			}
		} else {
			for o := range prober.ProbeAll(ctx, s.Candidates()) {
				outcomes = append(outcomes, o)
			}
		}
		for _, o := range outcomes {
			logger.Debug("probed thumbnail",
				zap.String("resolution", o.Tag),
				zap.Int("width", o.Width),
				zap.Stringer("verdict", o.Verdict),
				zap.Error(o.Err),
			)
			s = s.Report(s.Generation(), o)
		}
	}

	return &thumbResult{
		Input:    input,
		VideoID:  s.VideoID(),
		Visible:  s.Visible(),
		Invalid:  s.Invalid().Tags(),
		Outcomes: outcomes,
	}, nil
}

func runThumbs(ctx context.Context, input string) error {
	cfg := config.LoadOrDefault()
	t := i18n.T(cfg.Language)

	if paste {
		text, err := clipboard.New().Read()
		if err != nil {
			return fmt.Errorf("%s: %w", t.Errors.AccessDenied, err)
		}
		if text == "" {
			return fmt.Errorf("%s", t.Errors.ClipboardEmpty)
		}
		input = text
		if !jsonOut {
			fmt.Fprintln(os.Stderr, t.Notice.Pasted)
		}
	}

	res, err := resolve(ctx, cfg, input, isInteractive() && !jsonOut)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printCandidates(res, t)
	}

	if !doDownload && !doCopy && !doOpen {
		return nil
	}

	selected, err := selectCandidate(res.Visible, resolution)
	if err != nil {
		return err
	}
	return runActions(ctx, cfg, selected, output, "")
}

// selectCandidate picks the candidate named by tag, or the first (master) one
func selectCandidate(visible []thumbnail.Candidate, tag string) (*thumbnail.Candidate, error) {
	if len(visible) == 0 {
		return nil, fmt.Errorf("no valid thumbnails found")
	}
	if tag == "" {
		return &visible[0], nil
	}

	r, err := thumbnail.ParseResolution(tag)
	if err != nil {
		return nil, err
	}
	for i := range visible {
		if visible[i].Resolution == r {
			return &visible[i], nil
		}
	}
	return nil, fmt.Errorf("resolution %s is not available for this video", tag)
}
