package clipboard

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	text     string
	readErr  error
	writeErr error
}

func (f *fakeBackend) ReadAll() (string, error) { return f.text, f.readErr }

func (f *fakeBackend) WriteAll(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	return nil
}

func TestRead(t *testing.T) {
	c := &Clipboard{Backend: &fakeBackend{text: "  https://youtu.be/dQw4w9WgXcQ\n"}}
	got, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", got)
}

func TestReadDenied(t *testing.T) {
	c := &Clipboard{Backend: &fakeBackend{readErr: errors.New("no display")}}
	_, err := c.Read()
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = (&Clipboard{}).Read()
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestWrite(t *testing.T) {
	b := &fakeBackend{}
	var term bytes.Buffer
	c := &Clipboard{Backend: b, Terminal: &term}

	require.NoError(t, c.Write("https://img.youtube.com/vi/x/hqdefault.jpg"))
	assert.Equal(t, "https://img.youtube.com/vi/x/hqdefault.jpg", b.text)
	assert.Zero(t, term.Len(), "no escape sequence when the system clipboard works")
}

func TestWriteFallsBackToOSC52(t *testing.T) {
	t.Setenv("TMUX", "")
	var term bytes.Buffer
	c := &Clipboard{Backend: &fakeBackend{writeErr: errors.New("no xclip")}, Terminal: &term}

	require.NoError(t, c.Write("hello"))
	assert.Contains(t, term.String(), "\x1b]52;c;")
	assert.Contains(t, term.String(), "aGVsbG8=") // base64("hello")
}

func TestWriteDenied(t *testing.T) {
	c := &Clipboard{Backend: &fakeBackend{writeErr: errors.New("no xclip")}}
	assert.ErrorIs(t, c.Write("x"), ErrAccessDenied)
}
