// Package assets loads the images a chart references: the title icon and the
// status glyphs. References are file paths, http(s) URLs or data: URIs.
//
// Loading is asynchronous. Fetch starts a load and returns a Future; the
// renderer awaits futures in paint order, so every fetch can be in flight
// while earlier cells are being drawn.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Image types understood by the PDF engine.
const (
	TypePNG = "png"
	TypeJPG = "jpg"
)

// DefaultMaxBytes caps the size of a single asset.
const DefaultMaxBytes = 16 << 20

var (
	// ErrUnsupported is returned for references with an unknown scheme and
	// for data that no registered decoder recognises.
	ErrUnsupported = errors.New("assets: unsupported asset")
	// ErrTooLarge is returned when an asset exceeds the loader's byte limit.
	ErrTooLarge = errors.New("assets: asset too large")
)

// LoadError reports a reference that could not be turned into an image.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("assets: loading %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Asset is a decoded image, re-encoded in a format the PDF engine embeds
// without further conversion.
type Asset struct {
	Ref    string
	Type   string // TypePNG or TypeJPG
	Data   []byte
	Width  int // pixels
	Height int
}

// Reader returns a reader over the encoded image.
func (a *Asset) Reader() io.Reader { return bytes.NewReader(a.Data) }

// Future is the pending result of a Fetch.
type Future struct {
	done  chan struct{}
	asset *Asset
	err   error
}

// Await blocks until the asset is loaded or ctx is done.
func (f *Future) Await(ctx context.Context) (*Asset, error) {
	select {
	case <-f.done:
		return f.asset, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https references.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithBaseDir resolves relative file references against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithMaxBytes limits the encoded size of a single asset.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithMaxDimension scales images down so that neither side exceeds px
// pixels. Zero keeps the source size.
func WithMaxDimension(px int) Option {
	return func(l *Loader) { l.maxDim = px }
}

// WithLogger sets the logger.
func WithLogger(log hclog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// Loader fetches and decodes assets. Successful results are cached by
// reference for the lifetime of the Loader. A Loader is safe for concurrent use.
type Loader struct {
	client   *http.Client
	baseDir  string
	maxBytes int64
	maxDim   int
	log      hclog.Logger

	mu    sync.Mutex
	cache map[string]*Future
}

// NewLoader returns a Loader configured by opts.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
		log:      hclog.NewNullLogger(),
		cache:    make(map[string]*Future),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch starts loading ref unless it is already loading or loaded.
//
// The load is not tied to ctx: callers that give up stop waiting in Await,
// while the fetch completes for whoever shares the Loader. Failed loads are
// dropped from the cache so a later Fetch tries again.
func (l *Loader) Fetch(ctx context.Context, ref string) *Future {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.cache[ref]; ok {
		return f
	}
	f := &Future{done: make(chan struct{})}
	l.cache[ref] = f
	go func() {
		defer close(f.done)
		f.asset, f.err = l.load(context.WithoutCancel(ctx), ref)
		if f.err != nil {
			l.log.Debug("asset failed", "ref", ref, "error", f.err)
			l.evict(ref, f)
		}
	}()
	return f
}

func (l *Loader) evict(ref string, f *Future) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache[ref] == f {
		delete(l.cache, ref)
	}
}

// Prefetch starts loading every reference in refs.
func (l *Loader) Prefetch(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if ref != "" {
			l.Fetch(ctx, ref)
		}
	}
	l.log.Debug("prefetching assets", "count", len(refs))
}

// Load fetches ref and waits for it.
func (l *Loader) Load(ctx context.Context, ref string) (*Asset, error) {
	return l.Fetch(ctx, ref).Await(ctx)
}

func (l *Loader) load(ctx context.Context, ref string) (*Asset, error) {
	raw, err := l.read(ctx, ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	a, err := l.decode(raw)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	a.Ref = ref
	return a, nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrUnsupported)
	}
	if strings.HasPrefix(ref, "data:") {
		data, err := decodeDataURI(ref)
		if err == nil && int64(len(data)) > l.maxBytes {
			err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.maxBytes)
		}
		return data, err
	}
	u, err := url.Parse(ref)
	if err == nil && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "http", "https":
			return l.get(ctx, u.String())
		case "file":
			return l.readFile(u.Path)
		default:
			return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
		}
	}
	return l.readFile(ref)
}

func (l *Loader) readFile(name string) ([]byte, error) {
	if l.baseDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(l.baseDir, name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readAll(f)
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	return l.readAll(resp.Body)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.maxBytes)
	}
	return data, nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupported)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers emit unpadded or URL-safe payloads.
			if data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, fmt.Errorf("data URI: %w", err)
			}
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}

type decoder struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

var decoders = map[string]decoder{
	"png":  {png.Decode, png.DecodeConfig},
	"jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"gif":  {gif.Decode, gif.DecodeConfig},
	"bmp":  {bmp.Decode, bmp.DecodeConfig},
	"tiff": {tiff.Decode, tiff.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
}

// sniff names the image format of data from its magic bytes.
func sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	}
	return ""
}

// decode keeps JPEGs the engine can embed directly as they are and re-encodes every
// other image as an 8-bit NRGBA PNG.
func (l *Loader) decode(data []byte) (*Asset, error) {
	format := sniff(data)
	dec, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised image data", ErrUnsupported)
	}
	cfg, err := dec.config(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s header: %w", format, err)
	}

	fits := l.maxDim <= 0 || (cfg.Width <= l.maxDim && cfg.Height <= l.maxDim)
	if format == "jpeg" && fits && embeddable(cfg.ColorModel) {
		return &Asset{Type: TypeJPG, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, err := dec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	dst := normalize(img, l.maxDim)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	b := dst.Bounds()
	return &Asset{Type: TypePNG, Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func embeddable(m color.Model) bool {
	return m == color.GrayModel || m == color.YCbCrModel || m == color.CMYKModel
}

// normalize copies img into an NRGBA image with its origin at 0,0, scaling it
// down when a side exceeds maxDim.
func normalize(img image.Image, maxDim int) *image.NRGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
		return dst
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	return dst
}
