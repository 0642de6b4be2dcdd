package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/models"
)

// cacheControl marks artifacts immutable-for-a-year. Keys embed a random id,
// so objects are never rewritten in place.
const cacheControl = "max-age=31536000"

// putter is the slice of the object-storage client the store uses.
type putter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store uploads artifacts to an S3-compatible bucket and returns CDN URLs.
type Store struct {
	cfg    config.ArtifactConfig
	client putter
	fetch  fetchFunc
}

// NewStore connects to the configured S3-compatible endpoint.
func NewStore(cfg config.ArtifactConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: connect to %s: %w", cfg.Endpoint, err)
	}
	return &Store{cfg: cfg, client: client, fetch: fetchImage}, nil
}

// Enabled reports whether artifact persistence is configured at all.
func (s *Store) Enabled() bool {
	return s != nil && s.cfg.Bucket != ""
}

// UploadScreenshot persists a full-page PNG and returns its CDN URL.
// Screenshot persistence is the point of the screenshot operation, so a
// failed upload fails the request.
func (s *Store) UploadScreenshot(ctx context.Context, png []byte, tag string) (string, error) {
	key := objectKey(PrefixScreenshots, tag, "png")
	url, err := s.put(ctx, key, "image/png", png)
	if err != nil {
		return "", models.NewSearchError(
			models.ErrCodeUpload,
			"screenshot upload failed",
			err,
		)
	}
	return url, nil
}

// UploadHTML persists serialized page HTML and returns its CDN URL. Like
// screenshots, HTML uploads fail hard.
func (s *Store) UploadHTML(ctx context.Context, html string, tag string) (string, error) {
	key := objectKey(PrefixHTML, tag, "html")
	url, err := s.put(ctx, key, "text/html; charset=utf-8", []byte(html))
	if err != nil {
		return "", models.NewSearchError(
			models.ErrCodeUpload,
			"page html upload failed",
			err,
		)
	}
	return url, nil
}

// MirrorImages downloads each result's image and re-uploads it, filling
// PersistedURL with the mirror's CDN URL. Mirroring degrades gracefully: a
// failed fetch or upload leaves that result's PersistedURL empty and the
// original ImageURL untouched, and never fails the request.
func (s *Store) MirrorImages(ctx context.Context, results []models.ImageResult, query string) {
	for i := range results {
		if ctx.Err() != nil {
			return
		}
		src := results[i].ImageURL
		if src == "" {
			continue
		}

		body, contentType, err := s.fetch(ctx, src)
		if err != nil {
			slog.Warn("image mirror fetch failed, keeping original URL",
				"url", src, "error", err)
			continue
		}

		key := objectKey(PrefixImages, query, extFromURL(src))
		url, err := s.put(ctx, key, contentType, body)
		if err != nil {
			slog.Warn("image mirror upload failed, keeping original URL",
				"url", src, "error", err)
			continue
		}
		results[i].PersistedURL = url
	}
}

func (s *Store) put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			CacheControl: cacheControl,
		})
	if err != nil {
		return "", err
	}
	return s.publicURL(key), nil
}

// publicURL maps an object key to its CDN address.
func (s *Store) publicURL(key string) string {
	return strings.TrimRight(s.cfg.CDNBase, "/") + "/" + key
}
