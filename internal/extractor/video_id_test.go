package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rickID = "dQw4w9WgXcQ"

func TestExtractVideoIDShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  VideoID
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", rickID},
		{"watch no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", rickID},
		{"watch v not first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", rickID},
		{"watch trailing params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL123", rickID},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", rickID},
		{"music host", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&si=x", rickID},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", rickID},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abcdef", rickID},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", rickID},
		{"embed with start", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=10", rickID},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", rickID},
		{"legacy v path", "http://www.youtube.com/v/dQw4w9WgXcQ?version=3", rickID},
		{"legacy e path", "http://www.youtube.com/e/dQw4w9WgXcQ", rickID},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", rickID},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", rickID},
		{"generic segments", "https://www.youtube.com/user/RickAstley/dQw4w9WgXcQ", rickID},
		{"fragment", "https://youtu.be/dQw4w9WgXcQ#t=30", rickID},
		{"embedded in text", "check this out: https://youtu.be/dQw4w9WgXcQ it's great", rickID},
		{"inside html attribute", `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ"></iframe>`, rickID},
		{"dash and underscore", "https://youtu.be/a-b_c-d_e-f", "a-b_c-d_e-f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.input)
			require.True(t, ok, "expected an ID in %q", tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestExtractVideoIDNotFound(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not a url"},
		{"other site", "https://vimeo.com/123456789"},
		{"ten characters", "https://youtu.be/dQw4w9WgXc"},
		{"twelve characters", "https://youtu.be/dQw4w9WgXcQQ"},
		{"watch ten characters", "https://www.youtube.com/watch?v=dQw4w9WgXc"},
		{"watch twelve characters", "https://www.youtube.com/watch?v=dQw4w9WgXcQQ"},
		{"no v parameter", "https://www.youtube.com/watch?list=PL1234567890"},
		{"channel page", "https://www.youtube.com/@RickAstleyYT"},
		{"invalid characters", "https://youtu.be/dQw4w9W.XcQ"},
		{"bare id in strict mode", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.input)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestExtractorBareID(t *testing.T) {
	e := Extractor{AllowBareID: true}

	id, err := e.Extract("  dQw4w9WgXcQ\n")
	require.NoError(t, err)
	assert.Equal(t, VideoID(rickID), id)

	_, err = e.Extract("dQw4w9WgXcQQ")
	assert.ErrorIs(t, err, ErrExtractionFailed)

	// URL shapes still win over the bare form
	id, err = e.Extract("https://youtu.be/aaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, VideoID("aaaaaaaaaaa"), id)
}

func TestExtractNeverPanics(t *testing.T) {
	inputs := []string{
		"\x00\xff\xfe",
		"youtube.com/",
		"youtu.be/",
		"youtube.com/watch?v=",
		"////////////",
		"?v=&v=&v=",
		"日本語のテキスト youtube.com/watch?v=日本語日本語日本語日本",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, _ = Extractor{AllowBareID: true}.Extract(in)
		})
	}
}

func TestVideoIDValid(t *testing.T) {
	assert.True(t, VideoID(rickID).Valid())
	assert.False(t, VideoID("short").Valid())
	assert.False(t, VideoID("").Valid())
	assert.Equal(t, rickID, VideoID(rickID).String())
}
