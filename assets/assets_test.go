package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadDataURI(t *testing.T) {
	data := encodePNG(t, testImage(4, 3))
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	a, err := NewLoader().Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, TypePNG, a.Type)
	assert.Equal(t, 4, a.Width)
	assert.Equal(t, 3, a.Height)
	assert.Equal(t, ref, a.Ref)
}

func TestLoadFileRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(8, 8), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "icon.jpg"), buf.Bytes(), 0o644))

	a, err := NewLoader(WithBaseDir(dir)).Load(context.Background(), "icon.jpg")
	require.NoError(t, err)
	assert.Equal(t, TypeJPG, a.Type)
	assert.Equal(t, buf.Bytes(), a.Data, "embeddable JPEGs are passed through")
}

func TestLoadBMPBecomesPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage(5, 2)))
	ref := "data:image/bmp;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	a, err := NewLoader().Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, TypePNG, a.Type)

	img, err := png.Decode(bytes.NewReader(a.Data))
	require.NoError(t, err)
	_, ok := img.(*image.NRGBA)
	assert.True(t, ok, "re-encoded as 8-bit NRGBA, got %T", img)
	assert.Equal(t, image.Rect(0, 0, 5, 2), img.Bounds())
}

func TestMaxDimensionScalesDown(t *testing.T) {
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, testImage(200, 100)))

	a, err := NewLoader(WithMaxDimension(50)).Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 50, a.Width)
	assert.Equal(t, 25, a.Height)
}

func TestLoadHTTP(t *testing.T) {
	data := encodePNG(t, testImage(2, 2))
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	ctx := context.Background()

	a, err := l.Load(ctx, srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Width)

	// A second fetch of the same reference is served from the cache.
	_, err = l.Load(ctx, srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = l.Load(ctx, srv.URL+"/missing.png")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, srv.URL+"/missing.png", le.Ref)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadOutlivesCancelledCaller(t *testing.T) {
	data := encodePNG(t, testImage(2, 2))
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	ref := srv.URL + "/icon.png"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, ref)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	a, err := l.Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Width)
	assert.Equal(t, int32(1), hits.Load(), "the cancelled caller's fetch is reused")
}

func TestFailedLoadIsRetried(t *testing.T) {
	data := encodePNG(t, testImage(2, 2))
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	ctx := context.Background()
	ref := srv.URL + "/icon.png"

	_, err := l.Load(ctx, ref)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	a, err := l.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Height)

	_, err = l.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "successes stay cached")
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(WithMaxBytes(16))
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		want error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.png"), os.ErrNotExist},
		{"unknown scheme", "ftp://example.com/a.png", ErrUnsupported},
		{"not an image", "data:text/plain,hello", ErrUnsupported},
		{"empty", "", ErrUnsupported},
		{"too large", "data:text/plain," + string(bytes.Repeat([]byte("a"), 32)), ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(ctx, tt.ref)
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPrefetchAndAwaitInOrder(t *testing.T) {
	release := make(chan struct{})
	data := encodePNG(t, testImage(1, 1))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	ctx := context.Background()
	refs := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}
	l.Prefetch(ctx, refs)

	// Every load is in flight before any of them completes.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	_, err := l.Fetch(ctx, refs[0]).Await(short)
	cancel()
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	for _, ref := range refs {
		a, err := l.Fetch(ctx, ref).Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, ref, a.Ref)
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "png", sniff([]byte("\x89PNG\r\n\x1a\nrest")))
	assert.Equal(t, "jpeg", sniff([]byte{0xff, 0xd8, 0xff}))
	assert.Equal(t, "webp", sniff([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, "", sniff([]byte("<svg")))
}
