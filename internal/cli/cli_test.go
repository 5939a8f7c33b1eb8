package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guiyumin/vthumb/internal/config"
	"github.com/guiyumin/vthumb/internal/downloader"
	"github.com/guiyumin/vthumb/internal/thumbnail"
	"github.com/guiyumin/vthumb/internal/webdav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidate(t *testing.T) {
	visible := thumbnail.Generate("dQw4w9WgXcQ")[1:]

	c, err := selectCandidate(visible, "")
	require.NoError(t, err)
	assert.Equal(t, thumbnail.High, c.Resolution, "defaults to the master")

	c, err = selectCandidate(visible, "standard")
	require.NoError(t, err)
	assert.Equal(t, thumbnail.Standard, c.Resolution)

	_, err = selectCandidate(visible, "maxres")
	assert.Error(t, err)

	_, err = selectCandidate(visible, "huge")
	assert.Error(t, err)

	_, err = selectCandidate(nil, "")
	assert.Error(t, err)
}

func TestResolveSinkLocal(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "/tmp/thumbs"
	c := thumbnail.Generate("dQw4w9WgXcQ")[0]

	sink, name, err := resolveSink(cfg, "", "", "", &c)
	require.NoError(t, err)
	assert.Equal(t, downloader.LocalSink{Dir: "/tmp/thumbs"}, sink)
	assert.Equal(t, "youtube_asset_maxres.jpg", name)

	sink, name, err = resolveSink(cfg, "cover.jpg", "./out", "", &c)
	require.NoError(t, err)
	assert.Equal(t, downloader.LocalSink{Dir: "./out"}, sink)
	assert.Equal(t, "cover.jpg", name)

	abs := filepath.Join(t.TempDir(), "cover.jpg")
	sink, name, err = resolveSink(cfg, abs, "", "", &c)
	require.NoError(t, err)
	assert.Equal(t, downloader.LocalSink{}, sink)
	assert.Equal(t, abs, name)

	_, name, err = resolveSink(cfg, "", "", "dQw4w9WgXcQ_", &c)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ_youtube_asset_maxres.jpg", name)
}

func TestResolveSinkRemote(t *testing.T) {
	cfg := config.Default()
	cfg.SetWebDAVServer("nas", config.WebDAVServer{URL: "http://nas.local/dav"})
	c := thumbnail.Generate("dQw4w9WgXcQ")[1]

	sink, name, err := resolveSink(cfg, "nas:/thumbs", "", "", &c)
	require.NoError(t, err)
	ws, ok := sink.(*webdav.Sink)
	require.True(t, ok)
	assert.Equal(t, "/thumbs", ws.Dir)
	assert.Equal(t, "youtube_asset_high.jpg", name)

	_, _, err = resolveSink(cfg, "nope:/thumbs", "", "", &c)
	assert.Error(t, err)
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# thumbnails to grab\nhttps://youtu.be/dQw4w9WgXcQ\n\n   https://www.youtube.com/shorts/abcdefghijk  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := readBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/shorts/abcdefghijk"}, urls)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0644))
	_, err = readBatchFile(empty)
	assert.Error(t, err)

	_, err = readBatchFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestTruncateURL(t *testing.T) {
	assert.Equal(t, "short", truncateURL("short", 10))
	assert.Equal(t, "https:...", truncateURL("https://youtu.be/dQw4w9WgXcQ", 9))
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("\n  # pasted\n  https://youtu.be/dQw4w9WgXcQ  \nhttps://vimeo.com/1\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", got)

	got, err = readInput(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

type rewriteTransport struct{ target *url.URL }

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// withFlags restores the command-line globals when the test ends
func withFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		output, outputDir, resolution         string
		jsonOut, skipProbe, dl, copyURL, open bool
		transport                             http.RoundTripper
	}{output, outputDir, resolution, jsonOut, skipProbe, doDownload, doCopy, doOpen, httpTransport}
	t.Cleanup(func() {
		output, outputDir, resolution = saved.output, saved.outputDir, saved.resolution
		jsonOut, skipProbe, doDownload, doCopy, doOpen = saved.jsonOut, saved.skipProbe, saved.dl, saved.copyURL, saved.open
		httpTransport = saved.transport
	})
}

// captureStdout returns what fn writes to os.Stdout
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	defer func() { os.Stdout = orig }()
	fn()
	w.Close()
	return <-done
}

func TestBatchJSONRunsDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	t.Setenv("VTHUMB_CONFIG", filepath.Join(t.TempDir(), "config.yml"))
	withFlags(t)
	dir := t.TempDir()
	jsonOut, doDownload, skipProbe = true, true, true
	doCopy, doOpen = false, false
	output, resolution, outputDir = "", "", dir
	httpTransport = rewriteTransport{target}

	list := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("https://youtu.be/dQw4w9WgXcQ\nhttps://vimeo.com/123\n"), 0644))

	var runErr error
	stdout := captureStdout(t, func() {
		runErr = runBatch(context.Background(), list)
	})
	require.NoError(t, runErr)
	assert.FileExists(t, filepath.Join(dir, "dQw4w9WgXcQ_youtube_asset_maxres.jpg"))

	var items []struct {
		Input   string `json:"input"`
		VideoID string `json:"video_id"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &items), "stdout holds only the JSON array")
	require.Len(t, items, 2)
	assert.Equal(t, "dQw4w9WgXcQ", items[0].VideoID)
	assert.Empty(t, items[0].Error)
	assert.NotEmpty(t, items[1].Error)
}

func TestBatchJSONReportsActionErrors(t *testing.T) {
	t.Setenv("VTHUMB_CONFIG", filepath.Join(t.TempDir(), "config.yml"))
	withFlags(t)
	jsonOut, doDownload, skipProbe = true, true, true
	doCopy, doOpen = false, false
	output, outputDir = "", t.TempDir()
	resolution = "huge"

	list := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("https://youtu.be/dQw4w9WgXcQ\n"), 0644))

	stdout := captureStdout(t, func() {
		require.NoError(t, runBatch(context.Background(), list))
	})

	var items []struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Error, "unknown resolution")
}
