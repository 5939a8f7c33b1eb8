package cli

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/guiyumin/vthumb/internal/version"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update vthumb to the latest release",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(version.Repository))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to check for updates: %v\n", err)
			os.Exit(1)
		}
		if !found {
			fmt.Println("No release found for this platform.")
			return
		}
		if version.Version != "dev" && latest.LessOrEqual(version.Version) {
			fmt.Printf("Already up to date (%s).\n", version.Version)
			return
		}

		exe, err := selfupdate.ExecutablePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not locate executable: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Updating %s -> %s...\n", version.Version, latest.Version())
		if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
			fmt.Fprintf(os.Stderr, "Error: update failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated to %s.\n", latest.Version())
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
