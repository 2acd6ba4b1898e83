package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFromTelegramFileID_Success(t *testing.T) {
	var handlerCalled bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/foo.jpeg" {
			handlerCalled = true
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("123"))
		} else {
			t.Errorf("invalid request to test server: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	getFileDirectURL := func(fileID string) (string, error) {
		return fmt.Sprintf("%s/%s.jpeg", ts.URL, fileID), nil
	}

	photoSize := tgbotapi.PhotoSize{
		FileID:       "foo",
		FileUniqueID: "1",
		Width:        371,
		Height:       495,
		FileSize:     28548,
	}

	data, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, photoSize.FileID)
	require.NoError(t, err)
	assert.Equal(t, []byte("123"), data)
	assert.True(t, handlerCalled)
}

func TestDownloadFromTelegramFileID_URLResolutionError(t *testing.T) {
	getFileDirectURL := func(fileID string) (string, error) {
		return "", fmt.Errorf("failed to get URL")
	}

	_, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, "test-file-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get file URL")
}

func TestImageDownloader_DownloadFromURL_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestImageDownloader_DownloadFromURL_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should have been canceled")
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageDownloader().DownloadFromURL(ctx, ts.URL)
	assert.Error(t, err)
}

func TestImageDownloader_DownloadFromURL_SizeLimit(t *testing.T) {
	largeData := make([]byte, 100)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		w.Write(largeData)
	}))
	defer ts.Close()

	downloader := NewImageDownloader().WithMaxSize(50)
	_, err := downloader.DownloadFromURL(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestImageDownloader_DownloadFromURL_ContentLengthExceedsLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "999999999")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	downloader := NewImageDownloader().WithMaxSize(1000)
	_, err := downloader.DownloadFromURL(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestImageDownloader_DownloadFromURL_ExactLimit(t *testing.T) {
	data := make([]byte, 64)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}))
	defer ts.Close()

	got, err := NewImageDownloader().WithMaxSize(64).DownloadFromURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Len(t, got, 64)
}
