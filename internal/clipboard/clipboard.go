package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrAccessDenied is returned when the system clipboard cannot be used
var ErrAccessDenied = errors.New("clipboard access denied")

// Backend is the system clipboard
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBackend struct{}

func (systemBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Clipboard reads and writes text. When the system clipboard is unavailable
// (e.g. over SSH) writes fall back to an OSC52 escape sent to Terminal.
type Clipboard struct {
	Backend  Backend
	Terminal io.Writer
}

// New returns a Clipboard over the system clipboard with OSC52 to stderr
func New() *Clipboard {
	return &Clipboard{Backend: systemBackend{}, Terminal: os.Stderr}
}

// Read returns the clipboard text, trimmed
func (c *Clipboard) Read() (string, error) {
	if c.Backend == nil || clipboard.Unsupported && isSystem(c.Backend) {
		return "", ErrAccessDenied
	}
	text, err := c.Backend.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return strings.TrimSpace(text), nil
}

// Write puts text on the clipboard
func (c *Clipboard) Write(text string) error {
	var sysErr error
	if c.Backend != nil {
		if sysErr = c.Backend.WriteAll(text); sysErr == nil {
			return nil
		}
	}

	if c.Terminal == nil {
		if sysErr == nil {
			return ErrAccessDenied
		}
		return fmt.Errorf("%w: %v", ErrAccessDenied, sysErr)
	}

	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.Terminal); err != nil {
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return nil
}

func isSystem(b Backend) bool {
	_, ok := b.(systemBackend)
	return ok
}
