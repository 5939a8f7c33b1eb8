package session

import (
	"testing"

	"github.com/guiyumin/vthumb/internal/extractor"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func tags(cs []thumbnail.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Tag)
	}
	return out
}

func TestIdle(t *testing.T) {
	s := New(extractor.Extractor{})
	assert.Equal(t, Idle, s.Phase())
	assert.Empty(t, s.VideoID())
	assert.Empty(t, s.Visible())
	assert.Equal(t, 0, s.Invalid().Len())
}

func TestSubmitFound(t *testing.T) {
	s, err := New(extractor.Extractor{}).Submit(watchURL)
	require.NoError(t, err)

	assert.Equal(t, Found, s.Phase())
	assert.Equal(t, extractor.VideoID("dQw4w9WgXcQ"), s.VideoID())
	assert.Equal(t, []string{"maxres", "high", "medium", "standard"}, tags(s.Visible()))
	assert.Equal(t, uint64(1), s.Generation())
}

func TestSubmitNotFound(t *testing.T) {
	s, err := New(extractor.Extractor{}).Submit("not a url")
	assert.ErrorIs(t, err, extractor.ErrExtractionFailed)

	assert.Equal(t, NotFound, s.Phase())
	assert.Empty(t, s.VideoID())
	assert.Empty(t, s.Visible())
	assert.Equal(t, 0, s.Invalid().Len())
	assert.ErrorIs(t, s.Err(), extractor.ErrExtractionFailed)
}

func TestSubmitEmptyKeepsState(t *testing.T) {
	s, err := New(extractor.Extractor{}).Submit(watchURL)
	require.NoError(t, err)

	next, err := s.Submit("   ")
	assert.ErrorIs(t, err, ErrInputRequired)
	assert.Equal(t, s, next)
}

func TestBeginClearsPreviousSession(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	s = s.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector)
	require.True(t, s.Invalid().Has(thumbnail.Maxres))

	mid, err := s.Begin("https://youtu.be/aaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, Extracting, mid.Phase())
	assert.Empty(t, mid.VideoID())
	assert.Equal(t, 0, mid.Invalid().Len())
	assert.Empty(t, mid.Visible())

	done := mid.Finish()
	assert.Equal(t, Found, done.Phase())
	assert.Equal(t, extractor.VideoID("aaaaaaaaaaa"), done.VideoID())
}

func TestPlaceholderRemovesCandidate(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	s = s.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector)

	assert.Equal(t, []string{"high", "medium", "standard"}, tags(s.Visible()))
	assert.Equal(t, []string{"maxres"}, s.Invalid().Tags())
}

func TestLoadOrderDoesNotMatter(t *testing.T) {
	type report struct {
		res   thumbnail.Resolution
		width int
	}
	reports := []report{
		{thumbnail.Maxres, 120},
		{thumbnail.High, 480},
		{thumbnail.Medium, 320},
		{thumbnail.Standard, 640},
	}

	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	for _, order := range orders {
		s, _ := New(extractor.Extractor{}).Submit(watchURL)
		for _, i := range order {
			s = s.ReportLoad(reports[i].res, reports[i].width, thumbnail.DefaultDetector)
		}
		assert.Equal(t, []string{"high", "medium", "standard"}, tags(s.Visible()), "order %v", order)
	}
}

func TestInvalidIsMonotonic(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	s = s.ReportLoad(thumbnail.Standard, 120, thumbnail.DefaultDetector)

	// A later valid-looking report for the same resolution does not restore it
	s = s.ReportLoad(thumbnail.Standard, 640, thumbnail.DefaultDetector)
	assert.True(t, s.Invalid().Has(thumbnail.Standard))
	assert.NotContains(t, tags(s.Visible()), "standard")

	// Repeating the report is a no-op
	again := s.ReportLoad(thumbnail.Standard, 120, thumbnail.DefaultDetector)
	assert.Equal(t, s, again)
}

func TestReportLoadDoesNotMutateReceiver(t *testing.T) {
	before, _ := New(extractor.Extractor{}).Submit(watchURL)
	after := before.ReportLoad(thumbnail.High, 120, thumbnail.DefaultDetector)

	assert.False(t, before.Invalid().Has(thumbnail.High))
	assert.True(t, after.Invalid().Has(thumbnail.High))
}

func TestReportLoadIgnoredOutsideFound(t *testing.T) {
	s := New(extractor.Extractor{})
	assert.Equal(t, s, s.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector))

	nf, _ := s.Submit("garbage")
	assert.Equal(t, 0, nf.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector).Invalid().Len())
}

func TestResubmitSameIDResets(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	s = s.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector)

	s2, err := s.Submit(watchURL)
	require.NoError(t, err)
	assert.Equal(t, 0, s2.Invalid().Len())
	assert.Len(t, s2.Visible(), 4)
	assert.Greater(t, s2.Generation(), s.Generation())
}

func TestFailedSubmitAlsoResets(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	s = s.ReportLoad(thumbnail.Maxres, 120, thumbnail.DefaultDetector)

	nf, err := s.Submit("nope")
	assert.Error(t, err)
	assert.Empty(t, nf.VideoID())
	assert.Equal(t, 0, nf.Invalid().Len())
}

func TestReportDropsStaleGeneration(t *testing.T) {
	s, _ := New(extractor.Extractor{}).Submit(watchURL)
	old := s.Generation()

	s, _ = s.Submit(watchURL)
	stale := thumbnail.Outcome{Resolution: thumbnail.Maxres, Verdict: thumbnail.Invalid}

	assert.Equal(t, 0, s.Report(old, stale).Invalid().Len())
	assert.True(t, s.Report(s.Generation(), stale).Invalid().Has(thumbnail.Maxres))

	pending := thumbnail.Outcome{Resolution: thumbnail.High, Verdict: thumbnail.Pending}
	assert.Equal(t, s, s.Report(s.Generation(), pending))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "extracting", Extracting.String())
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
}

func TestResetAdvancesGeneration(t *testing.T) {
	s, err := New(extractor.Extractor{}).Submit(watchURL)
	require.NoError(t, err)
	gen := s.Generation()

	s = s.Reset()
	assert.Equal(t, Idle, s.Phase())
	assert.Empty(t, s.VideoID())
	assert.Greater(t, s.Generation(), gen)

	s, err = s.Submit(watchURL)
	require.NoError(t, err)
	s = s.Report(gen, thumbnail.Outcome{Resolution: thumbnail.High, Verdict: thumbnail.Invalid})
	assert.False(t, s.Invalid().Has(thumbnail.High), "load from the cleared session is dropped")
}
