package extractor

import (
	"errors"
	"regexp"
	"strings"
)

// ErrExtractionFailed is returned when the input contains no recognizable video reference
var ErrExtractionFailed = errors.New("could not extract video ID")

// VideoIDLength is the fixed length of a YouTube video identifier
const VideoIDLength = 11

// VideoID is an 11-character YouTube video identifier
type VideoID string

// String returns the identifier as a plain string
func (id VideoID) String() string { return string(id) }

// Valid reports whether id has the identifier shape
func (id VideoID) Valid() bool {
	return bareIDPattern.MatchString(string(id))
}

// videoURLPattern recognizes, in order: generic /<segment>/<segment>/<id> paths,
// /v/, /e/, /embed/, /shorts/ and /live/ paths, a v= query parameter anywhere in
// the query, and youtu.be short links. The identifier must be followed by a
// delimiter or the end of input, so 10- and 12-character segments never match.
var videoURLPattern = regexp.MustCompile(
	`(?:youtube(?:-nocookie)?\.com/(?:[^/\s]+/\S+/|(?:v|e(?:mbed)?|shorts|live)/|\S*?[?&]v=)|youtu\.be/)` +
		`([A-Za-z0-9_-]{11})(?:["&?/#\s]|$)`,
)

var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Extractor finds video identifiers in free text
type Extractor struct {
	// AllowBareID accepts input that is nothing but an identifier
	AllowBareID bool
}

// Extract returns the identifier found in input, or ErrExtractionFailed
func (e Extractor) Extract(input string) (VideoID, error) {
	if m := videoURLPattern.FindStringSubmatch(input); len(m) > 1 {
		return VideoID(m[1]), nil
	}

	if e.AllowBareID {
		if s := strings.TrimSpace(input); bareIDPattern.MatchString(s) {
			return VideoID(s), nil
		}
	}

	return "", ErrExtractionFailed
}

// ExtractVideoID is the strict form: only URL shapes are recognized
func ExtractVideoID(input string) (VideoID, bool) {
	id, err := Extractor{}.Extract(input)
	return id, err == nil
}
