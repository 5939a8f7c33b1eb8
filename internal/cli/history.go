package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/guiyumin/vthumb/internal/server"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show extractions recorded by `vthumb serve`",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := server.DefaultHistoryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println("No history yet.")
			return
		}

		db, err := server.NewHistoryDB(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if historyClear {
			n, err := db.ClearHistory()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Deleted %d record(s).\n", n)
			return
		}

		records, total, err := db.GetHistory(historyLimit, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if total == 0 {
			fmt.Println("No history yet.")
			return
		}

		printHistory(records, total)
	},
}

func printHistory(records []server.HistoryRecord, total int) {
	dim := color.New(color.Faint)
	for _, r := range records {
		when := time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04")
		if r.Status == "found" {
			line := fmt.Sprintf("%s  %d valid", r.VideoID, r.ValidCount)
			if len(r.Invalid) > 0 {
				line += fmt.Sprintf(", placeholder: %s", strings.Join(r.Invalid, ", "))
			}
			fmt.Printf("%s  %s  %s\n", dim.Sprint(when), color.GreenString("✓"), line)
		} else {
			fmt.Printf("%s  %s  %s\n", dim.Sprint(when), color.RedString("✗"), truncateURL(r.Input, 60))
		}
	}
	if total > len(records) {
		dim.Printf("\n%d of %d shown\n", len(records), total)
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history")
	rootCmd.AddCommand(historyCmd)
}
