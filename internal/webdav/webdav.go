package webdav

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	gowebdav "github.com/emersion/go-webdav"
	"github.com/guiyumin/vthumb/internal/config"
)

// Sink writes downloads to a WebDAV remote under Dir
type Sink struct {
	client *gowebdav.Client
	Dir    string
}

// NewSink connects to a configured remote
func NewSink(server config.WebDAVServer, dir string) (*Sink, error) {
	var hc gowebdav.HTTPClient
	if server.Username != "" {
		hc = gowebdav.HTTPClientWithBasicAuth(nil, server.Username, server.Password)
	}

	client, err := gowebdav.NewClient(hc, server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebDAV client: %w", err)
	}
	return &Sink{client: client, Dir: dir}, nil
}

// Create opens Dir/name on the remote for writing, creating Dir if needed
func (s *Sink) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	dir := path.Clean("/" + s.Dir)
	if dir != "/" {
		// Mkdir fails when the collection already exists; Create reports real problems
		_ = s.client.Mkdir(ctx, dir)
	}
	return s.client.Create(ctx, path.Join(dir, name))
}

// ParseRemote splits "name:/path" into the remote name and path.
// ok is false for local paths, including Windows drive letters.
func ParseRemote(output string) (name, remotePath string, ok bool) {
	i := strings.Index(output, ":")
	if i <= 1 {
		return "", "", false
	}
	name, remotePath = output[:i], output[i+1:]
	if strings.ContainsAny(name, `/\`) {
		return "", "", false
	}
	return name, remotePath, true
}
