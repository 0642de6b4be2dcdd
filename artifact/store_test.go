package artifact

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/models"
)

type putCall struct {
	bucket      string
	key         string
	size        int64
	contentType string
	cacheCtl    string
}

// fakePutter records uploads and optionally fails keys matching failSubstr.
type fakePutter struct {
	calls      []putCall
	failSubstr string
}

func (f *fakePutter) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.failSubstr != "" && strings.Contains(key, f.failSubstr) {
		return minio.UploadInfo{}, errors.New("simulated upload failure")
	}
	f.calls = append(f.calls, putCall{
		bucket:      bucket,
		key:         key,
		size:        size,
		contentType: opts.ContentType,
		cacheCtl:    opts.CacheControl,
	})
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func newTestStore(client putter, fetch fetchFunc) *Store {
	return &Store{
		cfg: config.ArtifactConfig{
			Bucket:  "relcis-artifacts",
			CDNBase: "https://cdn.example.com",
		},
		client: client,
		fetch:  fetch,
	}
}

func TestUploadScreenshot(t *testing.T) {
	client := &fakePutter{}
	s := newTestStore(client, nil)

	url, err := s.UploadScreenshot(context.Background(), []byte("png-bytes"), "https://example.com/page one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.calls) != 1 {
		t.Fatalf("uploads = %d, want 1", len(client.calls))
	}
	call := client.calls[0]
	if call.bucket != "relcis-artifacts" {
		t.Errorf("bucket = %q", call.bucket)
	}
	if !strings.HasPrefix(call.key, "screenshots/") || !strings.HasSuffix(call.key, ".png") {
		t.Errorf("key = %q, want screenshots/...png", call.key)
	}
	if call.contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", call.contentType)
	}
	if call.cacheCtl != "max-age=31536000" {
		t.Errorf("cache control = %q, want max-age=31536000", call.cacheCtl)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/screenshots/") {
		t.Errorf("url = %q, want CDN-prefixed", url)
	}
}

func TestUploadScreenshot_FailureIsTagged(t *testing.T) {
	client := &fakePutter{failSubstr: "screenshots/"}
	s := newTestStore(client, nil)

	_, err := s.UploadScreenshot(context.Background(), []byte("png"), "q")
	if !models.HasCode(err, models.ErrCodeUpload) {
		t.Fatalf("error = %v, want UPLOAD_FAILED", err)
	}
}

func TestUploadHTML(t *testing.T) {
	client := &fakePutter{}
	s := newTestStore(client, nil)

	url, err := s.UploadHTML(context.Background(), "<html></html>", "some query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := client.calls[0]
	if !strings.HasPrefix(call.key, "searchedHTML/some-query-") || !strings.HasSuffix(call.key, ".html") {
		t.Errorf("key = %q", call.key)
	}
	if !strings.Contains(url, "/searchedHTML/") {
		t.Errorf("url = %q", url)
	}
}

func TestMirrorImages_FillsPersistedURL(t *testing.T) {
	client := &fakePutter{}
	fetch := func(ctx context.Context, url string) ([]byte, string, error) {
		return []byte("jpeg-bytes"), "image/jpeg", nil
	}
	s := newTestStore(client, fetch)

	results := []models.ImageResult{
		{ImageURL: "https://img.example/a.jpg"},
		{ImageURL: "https://img.example/b.png"},
	}
	s.MirrorImages(context.Background(), results, "cats and dogs")

	for i, r := range results {
		if r.PersistedURL == "" {
			t.Errorf("result %d: PersistedURL empty, want CDN URL", i)
			continue
		}
		if !strings.HasPrefix(r.PersistedURL, "https://cdn.example.com/searchedImages/cats-and-dogs-") {
			t.Errorf("result %d: PersistedURL = %q", i, r.PersistedURL)
		}
		if r.ImageURL == "" {
			t.Errorf("result %d: original ImageURL was cleared", i)
		}
	}
	if len(client.calls) != 2 {
		t.Errorf("uploads = %d, want 2", len(client.calls))
	}
}

func TestMirrorImages_DegradesGracefully(t *testing.T) {
	client := &fakePutter{}
	fetch := func(ctx context.Context, url string) ([]byte, string, error) {
		if strings.Contains(url, "broken") {
			return nil, "", errors.New("connection reset")
		}
		return []byte("bytes"), "image/png", nil
	}
	s := newTestStore(client, fetch)

	results := []models.ImageResult{
		{ImageURL: "https://img.example/broken.jpg"},
		{ImageURL: "https://img.example/fine.png"},
		{ImageURL: ""},
	}
	s.MirrorImages(context.Background(), results, "q")

	if results[0].PersistedURL != "" {
		t.Errorf("failed fetch should leave PersistedURL empty, got %q", results[0].PersistedURL)
	}
	if results[0].ImageURL != "https://img.example/broken.jpg" {
		t.Errorf("original URL must survive a failed mirror")
	}
	if results[1].PersistedURL == "" {
		t.Errorf("healthy result should be mirrored")
	}
	if results[2].PersistedURL != "" {
		t.Errorf("empty ImageURL should be skipped")
	}
}

func TestMirrorImages_UploadFailureKeepsOriginal(t *testing.T) {
	client := &fakePutter{failSubstr: "searchedImages/"}
	fetch := func(ctx context.Context, url string) ([]byte, string, error) {
		return []byte("bytes"), "image/png", nil
	}
	s := newTestStore(client, fetch)

	results := []models.ImageResult{{ImageURL: "https://img.example/a.png"}}
	s.MirrorImages(context.Background(), results, "q")

	if results[0].PersistedURL != "" {
		t.Errorf("failed upload should leave PersistedURL empty")
	}
}

func TestStoreEnabled(t *testing.T) {
	var nilStore *Store
	if nilStore.Enabled() {
		t.Error("nil store reports enabled")
	}
	if (&Store{}).Enabled() {
		t.Error("store without bucket reports enabled")
	}
	if !newTestStore(&fakePutter{}, nil).Enabled() {
		t.Error("configured store reports disabled")
	}
}
