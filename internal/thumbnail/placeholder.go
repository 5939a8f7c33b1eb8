package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// DefaultPlaceholderWidth is the natural width of YouTube's "no thumbnail" image (120×90)
const DefaultPlaceholderWidth = 120

// Verdict is the validity classification of a loaded candidate
type Verdict uint8

const (
	// Pending means no image has loaded, so there is no verdict yet
	Pending Verdict = iota
	Valid
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "pending"
	}
}

// MarshalText lets verdicts appear as strings in JSON output
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Detector applies the placeholder rule to a loaded image's natural width
type Detector struct {
	PlaceholderWidth int
}

// DefaultDetector uses the 120-pixel placeholder width
var DefaultDetector = Detector{PlaceholderWidth: DefaultPlaceholderWidth}

// Classify returns Invalid when naturalWidth is the placeholder width
func (d Detector) Classify(naturalWidth int) Verdict {
	pw := d.PlaceholderWidth
	if pw <= 0 {
		pw = DefaultPlaceholderWidth
	}
	if naturalWidth == pw {
		return Invalid
	}
	return Valid
}

// Outcome is the result of loading one candidate's image
type Outcome struct {
	Resolution Resolution `json:"-"`
	Tag        string     `json:"resolution"`
	Width      int        `json:"natural_width"`
	Height     int        `json:"natural_height"`
	Verdict    Verdict    `json:"verdict"`
	Err        error      `json:"-"`
	Data       []byte     `json:"-"`
}

// ProberOptions configures the HTTP client behind a Prober
type ProberOptions struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	Detector  Detector
	Transport http.RoundTripper
}

// Prober loads candidate images and classifies them
type Prober struct {
	client   *resty.Client
	detector Detector
}

// NewProber creates a Prober
func NewProber(opts ProberOptions) *Prober {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	detector := opts.Detector
	if detector.PlaceholderWidth <= 0 {
		detector = DefaultDetector
	}

	return &Prober{client: client, detector: detector}
}

// Detector returns the rule this prober classifies with
func (p *Prober) Detector() Detector {
	return p.detector
}

// Probe loads c's image and classifies it. The host answers missing sizes
// with a 404 whose body is the placeholder, so the body is decoded whatever
// the status. A load that yields no decodable image stays Pending.
func (p *Prober) Probe(ctx context.Context, c Candidate) Outcome {
	out := Outcome{Resolution: c.Resolution, Tag: c.Tag}

	resp, err := p.client.R().SetContext(ctx).Get(c.URL)
	if err != nil {
		out.Err = fmt.Errorf("failed to load %s: %w", c.Tag, err)
		return out
	}

	body := resp.Body()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		if resp.IsError() {
			out.Err = fmt.Errorf("failed to load %s: %s", c.Tag, resp.Status())
		} else {
			out.Err = fmt.Errorf("failed to decode %s: %w", c.Tag, err)
		}
		return out
	}

	out.Width = cfg.Width
	out.Height = cfg.Height
	out.Verdict = p.detector.Classify(cfg.Width)
	out.Data = body
	return out
}

// ProbeAll probes every candidate concurrently. Outcomes arrive in completion
// order, one per candidate, and the channel is closed when all are done.
func (p *Prober) ProbeAll(ctx context.Context, candidates []Candidate) <-chan Outcome {
	results := make(chan Outcome, len(candidates))

	var wg sync.WaitGroup
	for _, c := range candidates {
		wg.Add(1)
		go func(c Candidate) {
			defer wg.Done()
			results <- p.Probe(ctx, c)
		}(c)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
