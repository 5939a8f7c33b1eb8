package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/logging"
	"github.com/guiyumin/vthumb/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   int
	serveDetach bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	Long: `Serve the extraction pipeline over HTTP on localhost.

Routes:
  GET    /api/thumbnails?url=<link>[&probe=false]
  GET    /api/thumbnails/<video-id>/<resolution>
  GET    /api/history?limit=&offset=
  DELETE /api/history[/<id>]
  GET    /healthz`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		if serveDetach {
			if err := startDetached(cfg.Server.Port); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		log := logging.NewServer(verbose)
		defer func() { _ = log.Sync() }()

		var history *server.HistoryDB
		if cfg.Server.History {
			path, err := server.DefaultHistoryPath()
			if err == nil {
				history, err = server.NewHistoryDB(path)
			}
			if err != nil {
				log.Warn("history disabled", zap.Error(err))
				history = nil
			} else {
				defer history.Close()
			}
		}

		fmt.Printf("Listening on http://localhost:%d\n", cfg.Server.Port)
		srv := server.New(server.NewFromConfig(cfg, history, log))
		if err := srv.Run(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// startDetached re-runs `vthumb serve` in the background, logging to serve.log
func startDetached(port int) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logPath := filepath.Join(dir, "serve.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"serve", "--port", strconv.Itoa(port)}
	if verbose {
		args = append(args, "--verbose")
	}
	cmd := exec.Command(exe, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Printf("Server started in background (PID %d) on http://localhost:%d\n", cmd.Process.Pid, port)
	fmt.Printf("Logs: %s\n", logPath)
	return cmd.Process.Release()
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config)")
	serveCmd.Flags().BoolVarP(&serveDetach, "detach", "d", false, "run in the background")
	rootCmd.AddCommand(serveCmd)
}
