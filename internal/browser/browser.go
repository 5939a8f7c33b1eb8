package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// command builds the platform command that opens url; swapped out in tests
var command = func(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default: // linux, freebsd, etc.
		return exec.Command("xdg-open", url)
	}
}

// Open opens url in the user's default browser without waiting for it
func Open(url string) error {
	if err := command(url).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
