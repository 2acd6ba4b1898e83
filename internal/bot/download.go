package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for image downloads
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (10MB)
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// ImageDownloader fetches uploaded files from Telegram's file storage.
type ImageDownloader struct {
	client  *resty.Client
	maxSize int64
}

// NewImageDownloader creates a new ImageDownloader with default settings.
func NewImageDownloader() *ImageDownloader {
	return &ImageDownloader{
		client:  resty.New().SetDebug(false).SetTimeout(DefaultDownloadTimeout),
		maxSize: DefaultMaxImageSize,
	}
}

// WithMaxSize sets a custom maximum file size.
func (d *ImageDownloader) WithMaxSize(maxSize int64) *ImageDownloader {
	d.maxSize = maxSize
	return d
}

// MaxSize returns the download limit in bytes.
func (d *ImageDownloader) MaxSize() int64 {
	return d.maxSize
}

// DownloadFromURL downloads file data from a URL.
// It respects context cancellation and enforces the size limit. Content
// type is not checked here; intake validates the declared type.
func (d *ImageDownloader) DownloadFromURL(ctx context.Context, fileURL string) ([]byte, error) {
	res, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", res.StatusCode())
	}

	if cl := res.RawResponse.ContentLength; cl > d.maxSize {
		return nil, fmt.Errorf("file too large: %d bytes exceeds limit of %d bytes", cl, d.maxSize)
	}

	// LimitReader enforces the limit even if Content-Length is missing or wrong
	data, err := io.ReadAll(io.LimitReader(body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("file too large: exceeds limit of %d bytes", d.maxSize)
	}

	return data, nil
}

// DownloadFromTelegramFileID downloads a file from Telegram using a file ID.
// It uses the provided function to resolve the file ID to a direct URL.
func (d *ImageDownloader) DownloadFromTelegramFileID(
	ctx context.Context,
	getFileDirectURL func(fileID string) (string, error),
	fileID string,
) ([]byte, error) {
	log.Info().Str("fileID", fileID).Msg("downloading telegram file")

	url, err := getFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	return d.DownloadFromURL(ctx, url)
}
