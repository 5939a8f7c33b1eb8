// Package session holds the state of one extraction and the candidates it
// produced. Every transition returns a new State; a State is never mutated.
package session

import (
	"errors"
	"strings"

	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/thumbnail"
)

// ErrInputRequired is returned when submit is called with nothing to extract
var ErrInputRequired = errors.New("input required")

// Phase is the position in the Idle → Extracting → Found/NotFound machine
type Phase uint8

const (
	Idle Phase = iota
	Extracting
	Found
	NotFound
)

func (p Phase) String() string {
	switch p {
	case Extracting:
		return "extracting"
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "idle"
	}
}

// InvalidSet is the set of resolutions observed to be placeholders
type InvalidSet uint8

// Has reports whether r is in the set
func (s InvalidSet) Has(r thumbnail.Resolution) bool {
	return s&(1<<r) != 0
}

// With returns the set plus r
func (s InvalidSet) With(r thumbnail.Resolution) InvalidSet {
	return s | 1<<r
}

// Len returns the number of resolutions in the set
func (s InvalidSet) Len() int {
	n := 0
	for _, r := range thumbnail.Resolutions {
		if s.Has(r) {
			n++
		}
	}
	return n
}

// Tags lists the members in priority order
func (s InvalidSet) Tags() []string {
	tags := []string{}
	for _, r := range thumbnail.Resolutions {
		if s.Has(r) {
			tags = append(tags, r.String())
		}
	}
	return tags
}

// State is one session's value
type State struct {
	extractor  extractor.Extractor
	phase      Phase
	input      string
	id         extractor.VideoID
	invalid    InvalidSet
	generation uint64
	err        error
}

// New returns the Idle state
func New(ex extractor.Extractor) State {
	return State{extractor: ex}
}

func (s State) Phase() Phase               { return s.phase }
func (s State) Input() string              { return s.input }
func (s State) VideoID() extractor.VideoID { return s.id }
func (s State) Invalid() InvalidSet        { return s.invalid }
func (s State) Err() error                 { return s.err }

// Generation increases on every Begin. Load reports carry it so that
// reports from a previous session can be told apart.
func (s State) Generation() uint64 { return s.generation }

// Begin enters Extracting, clearing the previous identifier and invalid set.
// Blank input leaves the state untouched and returns ErrInputRequired.
func (s State) Begin(input string) (State, error) {
	if strings.TrimSpace(input) == "" {
		return s, ErrInputRequired
	}

	return State{
		extractor:  s.extractor,
		phase:      Extracting,
		input:      input,
		generation: s.generation + 1,
	}, nil
}

// Finish runs extraction on the recorded input and enters Found or NotFound
func (s State) Finish() State {
	if s.phase != Extracting {
		return s
	}

	next := s
	id, err := s.extractor.Extract(s.input)
	if err != nil {
		next.phase = NotFound
		next.err = err
		return next
	}

	next.phase = Found
	next.id = id
	return next
}

// Reset returns to Idle. The generation still advances so that loads
// still in flight for the cleared session are dropped.
func (s State) Reset() State {
	return State{extractor: s.extractor, generation: s.generation + 1}
}

// Submit is Begin followed by Finish
func (s State) Submit(input string) (State, error) {
	next, err := s.Begin(input)
	if err != nil {
		return s, err
	}
	next = next.Finish()
	return next, next.err
}

// ReportLoad records the natural width of r's loaded image. A placeholder
// adds r to the invalid set; anything else leaves the state as it was.
// Reports outside Found are ignored.
func (s State) ReportLoad(r thumbnail.Resolution, naturalWidth int, d thumbnail.Detector) State {
	if s.phase != Found || s.invalid.Has(r) {
		return s
	}
	if d.Classify(naturalWidth) != thumbnail.Invalid {
		return s
	}

	next := s
	next.invalid = s.invalid.With(r)
	return next
}

// Report applies a probe outcome for the session with the given generation.
// Outcomes from an older generation and pending outcomes are dropped.
func (s State) Report(generation uint64, o thumbnail.Outcome) State {
	if generation != s.generation || o.Verdict != thumbnail.Invalid {
		return s
	}
	if s.phase != Found || s.invalid.Has(o.Resolution) {
		return s
	}

	next := s
	next.invalid = s.invalid.With(o.Resolution)
	return next
}

// Candidates returns every generated candidate for the current identifier
func (s State) Candidates() []thumbnail.Candidate {
	if s.phase != Found {
		return []thumbnail.Candidate{}
	}
	return thumbnail.Generate(s.id)
}

// Visible returns the candidates not known to be placeholders, master first
func (s State) Visible() []thumbnail.Candidate {
	all := s.Candidates()
	visible := make([]thumbnail.Candidate, 0, len(all))
	for _, c := range all {
		if !s.invalid.Has(c.Resolution) {
			visible = append(visible, c)
		}
	}
	return visible
}
