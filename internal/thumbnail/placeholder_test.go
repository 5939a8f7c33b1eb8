package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorClassify(t *testing.T) {
	assert.Equal(t, Invalid, DefaultDetector.Classify(120))
	assert.Equal(t, Valid, DefaultDetector.Classify(1280))
	assert.Equal(t, Valid, DefaultDetector.Classify(480))
	assert.Equal(t, Valid, DefaultDetector.Classify(0))

	custom := Detector{PlaceholderWidth: 130}
	assert.Equal(t, Valid, custom.Classify(120))
	assert.Equal(t, Invalid, custom.Classify(130))

	assert.Equal(t, Invalid, Detector{}.Classify(120), "zero value falls back to the default width")
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "invalid", Invalid.String())
}

func jpegOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// newThumbServer serves a 120×90 placeholder with a 404 for maxresdefault,
// garbage for sddefault, and real-sized images for the rest.
func newThumbServer(t *testing.T) *httptest.Server {
	placeholder := jpegOf(t, 120, 90)
	hq := jpegOf(t, 480, 360)
	mq := jpegOf(t, 320, 180)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/maxresdefault.jpg"):
			w.Header().Set("Content-Type", "image/jpeg")
			w.WriteHeader(http.StatusNotFound)
			w.Write(placeholder)
		case strings.HasSuffix(r.URL.Path, "/hqdefault.jpg"):
			w.Write(hq)
		case strings.HasSuffix(r.URL.Path, "/mqdefault.jpg"):
			w.Write(mq)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
}

func candidatesAt(base string) []Candidate {
	cs := Generate(rickID)
	for i := range cs {
		cs[i].URL = base + "/vi/" + string(rickID) + "/" + cs[i].Resolution.Filename()
	}
	return cs
}

func TestProbe(t *testing.T) {
	srv := newThumbServer(t)
	defer srv.Close()

	p := NewProber(ProberOptions{Timeout: 5 * time.Second})
	cs := candidatesAt(srv.URL)
	ctx := context.Background()

	maxres := p.Probe(ctx, cs[0])
	assert.Equal(t, Invalid, maxres.Verdict)
	assert.Equal(t, 120, maxres.Width)
	assert.Equal(t, 90, maxres.Height)
	assert.NoError(t, maxres.Err)

	high := p.Probe(ctx, cs[1])
	assert.Equal(t, Valid, high.Verdict)
	assert.Equal(t, 480, high.Width)
	assert.NotEmpty(t, high.Data)

	standard := p.Probe(ctx, cs[3])
	assert.Equal(t, Pending, standard.Verdict)
	assert.Error(t, standard.Err)
}

func TestProbeAll(t *testing.T) {
	srv := newThumbServer(t)
	defer srv.Close()

	p := NewProber(ProberOptions{Timeout: 5 * time.Second})

	got := map[Resolution]Verdict{}
	for o := range p.ProbeAll(context.Background(), candidatesAt(srv.URL)) {
		got[o.Resolution] = o.Verdict
	}

	assert.Equal(t, map[Resolution]Verdict{
		Maxres:   Invalid,
		High:     Valid,
		Medium:   Valid,
		Standard: Pending,
	}, got)
}

func TestProbeCancelled(t *testing.T) {
	srv := newThumbServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewProber(ProberOptions{}).Probe(ctx, candidatesAt(srv.URL)[1])
	assert.Equal(t, Pending, o.Verdict)
	assert.Error(t, o.Err)
}
