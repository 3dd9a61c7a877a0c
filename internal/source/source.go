// Package source resolves a playlist descriptor to a readable local file, downloading remote playlists first.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/iptvx/internal/shared"
	"golang.org/x/text/transform"
)

// Descriptor names a playlist by local path or remote URL.
type Descriptor struct {
	Path string
	URL  string
}

// Location returns the descriptor's effective location; a local path takes precedence over a URL.
func (d Descriptor) Location() string {
	if d.Path != "" {
		return d.Path
	}
	return d.URL
}

// Redacted returns the location with URL credentials masked, for logs and run history.
func (d Descriptor) Redacted() string {
	return shared.RedactURL(d.Location())
}

// Remote reports whether the effective location is fetched over HTTP.
func (d Descriptor) Remote() bool {
	return shared.IsRemote(d.Location())
}

// Validate reports a usage error when neither a path nor a URL is set.
func (d Descriptor) Validate() error {
	if d.Location() == "" {
		return fmt.Errorf("%w: an input file (-i) or URL (-u) is required", shared.ErrMissingArgument)
	}
	return nil
}

// Progress is a download progress snapshot; Total is -1 when the server did not declare a length.
type Progress struct {
	Received int64
	Total    int64
}

// Fraction returns Received/Total in [0, 1], or -1 when Total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	if p.Received >= p.Total {
		return 1
	}
	return float64(p.Received) / float64(p.Total)
}

// ProgressFunc receives progress snapshots while a download runs.
type ProgressFunc func(Progress)

// Source is an acquired playlist on local disk.
type Source struct {
	Path       string
	Descriptor Descriptor
	Size       int64
	temporary  bool
}

// Remote reports whether the source was downloaded.
func (s *Source) Remote() bool {
	return s.temporary
}

// Open returns the playlist content with a leading UTF-8 byte order mark removed.
//
// All other bytes are passed through unchanged, so playlists in other encodings are copied verbatim.
func (s *Source) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	return &decodedFile{Reader: transform.NewReader(f, &bomStripper{}), f: f}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomStripper is a [transform.Transformer] that drops a leading UTF-8 BOM.
type bomStripper struct {
	checked bool
}

func (b *bomStripper) Reset() {
	b.checked = false
}

func (b *bomStripper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !b.checked {
		if !atEOF && len(src) < len(utf8BOM) && bytes.HasPrefix(utf8BOM, src) {
			return 0, 0, transform.ErrShortSrc
		}
		b.checked = true
		if bytes.HasPrefix(src, utf8BOM) {
			nSrc = len(utf8BOM)
		}
	}

	n := copy(dst, src[nSrc:])
	nDst, nSrc = n, nSrc+n
	if nSrc < len(src) {
		err = transform.ErrShortDst
	}
	return nDst, nSrc, err
}

// Close removes the downloaded file; local sources are left untouched.
func (s *Source) Close() error {
	if !s.temporary {
		return nil
	}
	s.temporary = false
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove downloaded playlist: %w", err)
	}
	return nil
}

type decodedFile struct {
	io.Reader
	f *os.File
}

func (d *decodedFile) Close() error {
	return d.f.Close()
}

// Options configures a [Fetcher].
type Options struct {
	Client    *http.Client
	UserAgent string
	TempDir   string
	Logger    *log.Logger
}

// Fetcher acquires playlists. A single attempt is made for remote sources; there is no retry.
type Fetcher struct {
	client    *http.Client
	userAgent string
	tempDir   string
	logger    *log.Logger
}

// NewFetcher creates a new [Fetcher]; a nil client uses [http.DefaultClient].
func NewFetcher(opts Options) *Fetcher {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &Fetcher{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		tempDir:   opts.TempDir,
		logger:    opts.Logger,
	}
}

// Acquire resolves d to a local [Source]. The caller must Close it to release any downloaded file.
func (f *Fetcher) Acquire(ctx context.Context, d Descriptor, progress ProgressFunc) (*Source, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if d.Remote() {
		return f.download(ctx, d, progress)
	}

	info, err := os.Stat(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrSourceUnavailable, d.Path)
	}
	return &Source{Path: d.Path, Descriptor: d, Size: info.Size()}, nil
}

func (f *Fetcher) download(ctx context.Context, d Descriptor, progress ProgressFunc) (*Source, error) {
	location := d.Redacted()
	f.logger.Info("connecting to server", "url", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Location(), nil)
	if err != nil {
		return nil, fetchError(location, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchError(location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrFetchFailed, location, resp.StatusCode)
	}

	total := resp.ContentLength

	tmp, err := os.CreateTemp(f.tempDir, "iptvx-*.m3u")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary file: %v", shared.ErrFetchFailed, err)
	}

	src := &Source{Path: tmp.Name(), Descriptor: d, temporary: true}
	fail := func(err error) (*Source, error) {
		tmp.Close()
		src.Close()
		return nil, err
	}

	counter := &progressReader{r: resp.Body, total: total, fn: progress}
	n, err := io.Copy(tmp, counter)
	if err != nil {
		return fail(fmt.Errorf("%w: download interrupted after %d bytes: %v", shared.ErrFetchFailed, n, err))
	}
	if total >= 0 && n != total {
		return fail(fmt.Errorf("%w: received %d of %d bytes", shared.ErrFetchFailed, n, total))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("%w: failed to write temporary file: %v", shared.ErrFetchFailed, err))
	}

	src.Size = n
	f.logger.Info("downloaded playlist", "url", location, "path", src.Path, "size", shared.FormatBytes(n))
	return src, nil
}

// fetchError wraps err as [shared.ErrFetchFailed]. A [url.Error] carries the unredacted URL, so only its cause is kept.
func fetchError(location string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrFetchFailed, uerr.Op, location, uerr.Err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrFetchFailed, location, err)
}

// progressReader counts bytes read and reports them to fn.
type progressReader struct {
	r        io.Reader
	received int64
	total    int64
	fn       ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.received += int64(n)
		if p.fn != nil {
			p.fn(Progress{Received: p.received, Total: p.total})
		}
	}
	return n, err
}
