package cli

import (
	"fmt"
	"os"

	"github.com/guiyumin/vthumb/internal/browser"
	"github.com/guiyumin/vthumb/internal/clipboard"
	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [url]",
	Short: "Interactive thumbnail browser",
	Long: `Open a full-screen session: paste or type a link, watch the
thumbnails being checked, then download, copy or open one.

Downloads go to --output-dir, the configured output_dir, or a WebDAV
remote given with -o remote:/dir.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !isInteractive() {
			fmt.Fprintln(os.Stderr, "Error: tui needs a terminal")
			os.Exit(1)
		}

		cfg := config.LoadOrDefault()
		var initial string
		if len(args) > 0 {
			initial = args[0]
		}

		deps := tui.Deps{
			Prober:     newProber(cfg),
			Downloader: newDownloader(cfg),
			Clipboard:  clipboard.New(),
			Sink: func(c thumbnail.Candidate) (downloader.Sink, string, error) {
				return resolveSink(cfg, output, outputDir, "", &c)
			},
			Open:         browser.Open,
			Lang:         cfg.Language,
			ExtractDelay: tui.DefaultExtractDelay,
		}

		if err := tui.Run(cmd.Context(), deps, initial); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	tuiCmd.Flags().StringVarP(&output, "output", "o", "", "output file name, or remote:/dir for a WebDAV remote")
	tuiCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for downloads (default from config)")
	rootCmd.AddCommand(tuiCmd)
}
