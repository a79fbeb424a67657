package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/vigil/internal/util"
)

const (
	fetchAttempts    = 3
	fetchBaseBackoff = 500 * time.Millisecond
)

// fetchSleepFunc is swapped out by tests
var fetchSleepFunc = time.Sleep

// statusError is returned for non-2xx responses
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

// AudioLoader reads audio from local files or http(s) URLs
type AudioLoader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewAudioLoader creates a loader. Remote downloads are capped at maxBytes.
func NewAudioLoader(timeout time.Duration, userAgent string, maxBytes int64, proxy util.ProxyConfig) *AudioLoader {
	return &AudioLoader{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxy.Func(),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Load returns the audio at src, which is a file path or an http(s) URL
func (l *AudioLoader) Load(ctx context.Context, src, language string) (Audio, error) {
	if isRemote(src) {
		return l.FetchWithRetry(ctx, src, language)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return Audio{}, fmt.Errorf("read audio: %w", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return Audio{}, fmt.Errorf("audio %s exceeds %d bytes", src, l.maxBytes)
	}
	return Audio{Name: filepath.Base(src), Data: data, Language: language}, nil
}

// FetchWithRetry downloads remote audio, retrying transient failures with
// exponential backoff
func (l *AudioLoader) FetchWithRetry(ctx context.Context, rawURL, language string) (Audio, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(fetchBaseBackoff << (attempt - 1))
		}
		if err := ctx.Err(); err != nil {
			return Audio{}, err
		}

		audio, err := l.fetch(ctx, rawURL)
		if err == nil {
			audio.Language = language
			return audio, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return Audio{}, err
		}
	}
	return Audio{}, lastErr
}

func (l *AudioLoader) fetch(ctx context.Context, rawURL string) (Audio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Audio{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "audio/*,application/octet-stream;q=0.9,*/*;q=0.5")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Audio{}, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	// Read one byte past the limit to detect oversized bodies
	limit := l.maxBytes
	if limit <= 0 {
		limit = 1 << 62
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Audio{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return Audio{}, fmt.Errorf("audio exceeds %d bytes", limit)
	}

	return Audio{Name: audioName(resp.Request.URL), Data: data}, nil
}

// isRetryableFetchError reports whether a fetch error is transient:
// 429, 5xx or a network failure
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// audioName takes the last path element of the URL as the file name
func audioName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return u.Host
	}
	return name
}
