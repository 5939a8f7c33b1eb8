package thumbnail

import (
	"fmt"

	"github.com/guiyumin/vthumb/internal/extractor"
)

// ImageHost serves every derived thumbnail URL
const ImageHost = "https://img.youtube.com"

// Resolution is one of the fixed thumbnail sizes YouTube publishes
type Resolution uint8

const (
	Maxres Resolution = iota
	High
	Medium
	Standard

	numResolutions
)

// Resolutions lists every resolution in priority order
var Resolutions = [numResolutions]Resolution{Maxres, High, Medium, Standard}

var resolutionSpecs = [numResolutions]struct {
	tag    string
	label  string
	suffix string
	width  int
	height int
}{
	Maxres:   {"maxres", "Max Resolution (HD)", "maxresdefault", 1280, 720},
	High:     {"high", "High Quality", "hqdefault", 480, 360},
	Medium:   {"medium", "Medium Quality", "mqdefault", 320, 180},
	Standard: {"standard", "Standard Quality", "sddefault", 640, 480},
}

// String returns the resolution tag (maxres, high, medium, standard)
func (r Resolution) String() string {
	if r >= numResolutions {
		return fmt.Sprintf("Resolution(%d)", r)
	}
	return resolutionSpecs[r].tag
}

// Filename is the image file name on the host, e.g. "hqdefault.jpg".
// It is empty for a Resolution outside Resolutions.
func (r Resolution) Filename() string {
	if r >= numResolutions {
		return ""
	}
	return resolutionSpecs[r].suffix + ".jpg"
}

// AssetName is the local file name for a download at r, e.g. "youtube_asset_high.jpg"
func (r Resolution) AssetName() string {
	return fmt.Sprintf("youtube_asset_%s.jpg", r)
}

// ParseResolution maps a tag back to its Resolution
func ParseResolution(tag string) (Resolution, error) {
	for _, r := range Resolutions {
		if resolutionSpecs[r].tag == tag {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown resolution: %q", tag)
}

// Candidate is one derived thumbnail before its existence is confirmed.
// Width and Height are the nominal size, for display only.
type Candidate struct {
	Resolution Resolution `json:"-"`
	Tag        string     `json:"resolution"`
	Label      string     `json:"label"`
	URL        string     `json:"url"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// URL derives the thumbnail URL for id at resolution r
func URL(id extractor.VideoID, r Resolution) string {
	if r >= numResolutions {
		return ""
	}
	return fmt.Sprintf("%s/vi/%s/%s", ImageHost, id, r.Filename())
}

// Generate returns the four candidates for id, master (maxres) first
func Generate(id extractor.VideoID) []Candidate {
	out := make([]Candidate, 0, numResolutions)
	for _, r := range Resolutions {
		spec := resolutionSpecs[r]
		out = append(out, Candidate{
			Resolution: r,
			Tag:        spec.tag,
			Label:      spec.label,
			URL:        URL(id, r),
			Width:      spec.width,
			Height:     spec.height,
		})
	}
	return out
}

// Filename is the default local file name for a downloaded candidate
func (c Candidate) Filename() string {
	return fmt.Sprintf("youtube_asset_%s.jpg", c.Tag)
}

// Size renders the nominal dimensions, e.g. "1280 × 720"
func (c Candidate) Size() string {
	return fmt.Sprintf("%d × %d", c.Width, c.Height)
}
