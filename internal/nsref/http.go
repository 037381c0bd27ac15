package nsref

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// maxDocumentSize bounds the size of a fetched namespace document.
const maxDocumentSize = 1 << 20

// HTTPConfig configures an HTTPResolver.
type HTTPConfig struct {
	Client     *http.Client
	Timeout    time.Duration // per request, when Client is nil (default: 10s)
	MaxRetries uint          // retries after the first attempt (default: 0)
	Delay      time.Duration // base delay between attempts (default: 500ms)
	Logger     *slog.Logger
}

// HTTPResolver fetches namespace documents over HTTP, retrying transient
// failures. Client errors (4xx) are not retried.
type HTTPResolver struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// NewHTTPResolver creates an HTTPResolver.
func NewHTTPResolver(cfg HTTPConfig) *HTTPResolver {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPResolver{
		client:   client,
		attempts: cfg.MaxRetries + 1,
		delay:    delay,
		logger:   logger,
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, ref string) (namespace.Map, error) {
	data, err := retry.DoWithData(
		func() ([]byte, error) {
			return r.fetch(ctx, ref)
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying namespace fetch", "ref", ref, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load @namespace reference %s: %w", ref, err)
	}
	return decodeMap(ref, data)
}

func (r *HTTPResolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}
