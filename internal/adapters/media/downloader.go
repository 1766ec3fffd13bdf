package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

const defaultDownloadTimeout = 60 * time.Second

// Downloader fetches provider-protected media URLs with HTTP Basic auth.
type Downloader struct {
	username string
	password string
	dir      string
	http     *http.Client
	now      func() time.Time
	log      logger.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithDir stages files in dir instead of os.TempDir().
func WithDir(dir string) Option {
	return func(d *Downloader) {
		if dir != "" {
			d.dir = dir
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		if hc != nil {
			d.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDownloader creates a Downloader authenticating as username/password
// (the Twilio account SID and auth token).
func NewDownloader(username, password string, opts ...Option) *Downloader {
	d := &Downloader{
		username: username,
		password: password,
		dir:      os.TempDir(),
		http:     &http.Client{Timeout: defaultDownloadTimeout},
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir is where files are staged.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download saves the media at url into a request-unique file and returns its
// path. The caller owns the file and must Remove it.
func (d *Downloader) Download(ctx context.Context, url, contentType string, kind model.MediaKind) (path string, err error) {
	defer func() { metrics.RecordMediaDownload(string(kind), err == nil) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	req.SetBasicAuth(d.username, d.password)

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	name := fmt.Sprintf("%s-%s-%s%s",
		prefix(kind), strconv.FormatInt(d.now().UnixMilli(), 10), uuid.NewString()[:8], Extension(kind, contentType))
	path = filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // name is generated here
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if _, err = io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = Remove(path)
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err = f.Close(); err != nil {
		_ = Remove(path)
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	d.log.Debug(ctx, "media staged", logger.String("path", path), logger.String("kind", string(kind)))
	return path, nil
}

// Remove deletes path if it exists. A missing file is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
